/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub_test

import (
	"encoding/json"
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"

	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

const proofLabel = "test-proof"

func TestKeyCorrectnessProof(t *testing.T) {
	pk, sk, err := bbs.GenerateKeyPair(3, nil)
	require.NoError(t, err)
	require.Equal(t, 3, pk.MessagesCount())

	proof := bbs.NewKeyCorrectnessProof(pk, sk, nil)
	require.NoError(t, proof.Verify(pk))

	t.Run("proof for another key", func(t *testing.T) {
		otherPK, _, err := bbs.GenerateKeyPair(3, nil)
		require.NoError(t, err)
		require.ErrorIs(t, proof.Verify(otherPK), bbs.ErrInvalidProof)
	})

	t.Run("tampered response", func(t *testing.T) {
		bad := &bbs.KeyCorrectnessProof{C: proof.C, Z: mlutil.Add(proof.Z, mlutil.One())}
		require.ErrorIs(t, bad.Verify(pk), bbs.ErrInvalidProof)
	})

	t.Run("JSON round trip", func(t *testing.T) {
		pkBytes, err := json.Marshal(pk)
		require.NoError(t, err)

		var pk2 bbs.PublicKey
		require.NoError(t, json.Unmarshal(pkBytes, &pk2))

		proofBytes, err := json.Marshal(proof)
		require.NoError(t, err)

		var proof2 bbs.KeyCorrectnessProof
		require.NoError(t, json.Unmarshal(proofBytes, &proof2))
		require.NoError(t, proof2.Verify(&pk2))

		pkBytes2, err := json.Marshal(&pk2)
		require.NoError(t, err)
		require.Equal(t, pkBytes, pkBytes2)
	})

	t.Run("zero messages", func(t *testing.T) {
		_, _, err := bbs.GenerateKeyPair(0, nil)
		require.ErrorIs(t, err, bbs.ErrMessageCount)
	})
}

func TestBlindedCommitment(t *testing.T) {
	pk, _, err := bbs.GenerateKeyPair(2, nil)
	require.NoError(t, err)

	linkSecret := mlutil.RandomZr(nil)
	nonce := []byte("nonce")

	bc, blinding := bbs.NewBlindedCommitment(pk, linkSecret, nonce, nil)
	require.NotNil(t, blinding)
	require.NoError(t, bc.Verify(pk, nonce))
	require.ErrorIs(t, bc.Verify(pk, []byte("other nonce")), bbs.ErrInvalidProof)

	data, err := json.Marshal(bc)
	require.NoError(t, err)

	var bc2 bbs.BlindedCommitment
	require.NoError(t, json.Unmarshal(data, &bc2))
	require.NoError(t, bc2.Verify(pk, nonce))
}

func TestBlindSignature(t *testing.T) {
	pk, sk, err := bbs.GenerateKeyPair(3, nil)
	require.NoError(t, err)

	messages := testMessages(t, "1", "30", "123456789")
	linkSecret := mlutil.RandomZr(nil)

	bc, blinding := bbs.NewBlindedCommitment(pk, linkSecret, []byte("n"), nil)

	blindSig, err := bbs.BlindSign(sk, pk, bc, messages, nil, nil)
	require.NoError(t, err)

	sig := blindSig.Unblind(blinding)
	require.NoError(t, sig.Verify(pk, linkSecret, messages, nil))

	t.Run("wrong link secret", func(t *testing.T) {
		require.ErrorIs(t, sig.Verify(pk, mlutil.RandomZr(nil), messages, nil), bbs.ErrInvalidSignature)
	})

	t.Run("missing unblinding", func(t *testing.T) {
		require.ErrorIs(t, blindSig.Verify(pk, linkSecret, messages, nil), bbs.ErrInvalidSignature)
	})

	t.Run("changed message", func(t *testing.T) {
		require.ErrorIs(t, sig.Verify(pk, linkSecret, testMessages(t, "1", "31", "123456789"), nil),
			bbs.ErrInvalidSignature)
	})

	t.Run("messages count", func(t *testing.T) {
		_, err := bbs.BlindSign(sk, pk, bc, messages[:2], nil, nil)
		require.ErrorIs(t, err, bbs.ErrMessageCount)
		require.ErrorIs(t, sig.Verify(pk, linkSecret, messages[:1], nil), bbs.ErrMessageCount)
	})

	t.Run("with tails base", func(t *testing.T) {
		tailsBase := mlutil.RandomG1()

		tailsSig, err := bbs.BlindSign(sk, pk, bc, messages, tailsBase, nil)
		require.NoError(t, err)

		unblinded := tailsSig.Unblind(blinding)
		require.NoError(t, unblinded.Verify(pk, linkSecret, messages, tailsBase))
		require.Error(t, unblinded.Verify(pk, linkSecret, messages, nil))
	})

	t.Run("JSON round trip", func(t *testing.T) {
		data, err := json.Marshal(sig)
		require.NoError(t, err)

		var sig2 bbs.Signature
		require.NoError(t, json.Unmarshal(data, &sig2))
		require.NoError(t, sig2.Verify(pk, linkSecret, messages, nil))
	})
}

func TestPoKOfSignature(t *testing.T) {
	pk, sk, err := bbs.GenerateKeyPair(4, nil)
	require.NoError(t, err)

	messages := testMessages(t, "10", "20", "30", "40")
	linkSecret := mlutil.RandomZr(nil)

	bc, blinding := bbs.NewBlindedCommitment(pk, linkSecret, []byte("n"), nil)
	blindSig, err := bbs.BlindSign(sk, pk, bc, messages, nil, nil)
	require.NoError(t, err)

	sig := blindSig.Unblind(blinding)

	revealedIdx := []int{0, 2}
	revealed := map[int]*bbs.SignatureMessage{0: messages[0], 2: messages[2]}

	prove := func(t *testing.T, in *bbs.PoKOfSignatureInput) (*bbs.SignatureProof, *ml.Zr) {
		t.Helper()

		pok, err := bbs.NewPoKOfSignature(pk, in)
		require.NoError(t, err)

		tr := mlutil.NewTranscript(proofLabel)
		pok.AppendToTranscript(tr)
		c := tr.Challenge()

		return pok.GenerateProof(c), c
	}

	verify := func(proof *bbs.SignatureProof, revealed map[int]*bbs.SignatureMessage, tails *bbs.ProofTails,
		c *ml.Zr) error {
		tr := mlutil.NewTranscript(proofLabel)
		if err := proof.AppendToTranscript(tr, pk, revealed, tails, c); err != nil {
			return err
		}

		if !tr.Challenge().Equals(c) {
			return bbs.ErrInvalidProof
		}

		return nil
	}

	t.Run("valid proof", func(t *testing.T) {
		proof, c := prove(t, &bbs.PoKOfSignatureInput{
			Signature:          sig,
			LinkSecret:         linkSecret,
			LinkSecretBlinding: mlutil.RandomZr(nil),
			Messages:           messages,
			Revealed:           revealedIdx,
		})

		require.Len(t, proof.ZMessages, 2)
		require.NoError(t, verify(proof, revealed, nil, c))

		t.Run("survives JSON", func(t *testing.T) {
			data, err := json.Marshal(proof)
			require.NoError(t, err)

			var proof2 bbs.SignatureProof
			require.NoError(t, json.Unmarshal(data, &proof2))
			require.NoError(t, verify(&proof2, revealed, nil, c))
		})

		t.Run("changed revealed message", func(t *testing.T) {
			changed := map[int]*bbs.SignatureMessage{0: messages[1], 2: messages[2]}
			require.ErrorIs(t, verify(proof, changed, nil, c), bbs.ErrInvalidProof)
		})

		t.Run("revealed set does not cover key", func(t *testing.T) {
			require.ErrorIs(t, verify(proof, map[int]*bbs.SignatureMessage{0: messages[0]}, nil, c),
				bbs.ErrMessageCount)
		})

		t.Run("unexpected tails", func(t *testing.T) {
			tails := &bbs.ProofTails{Commitment: mlutil.RandomG1(), Base: mlutil.RandomG1()}
			require.ErrorIs(t, verify(proof, revealed, tails, c), bbs.ErrInvalidProof)
		})
	})

	t.Run("shared link secret blinding gives equal responses", func(t *testing.T) {
		shared := mlutil.RandomZr(nil)

		pok1, err := bbs.NewPoKOfSignature(pk, &bbs.PoKOfSignatureInput{
			Signature: sig, LinkSecret: linkSecret, LinkSecretBlinding: shared, Messages: messages,
		})
		require.NoError(t, err)

		pok2, err := bbs.NewPoKOfSignature(pk, &bbs.PoKOfSignatureInput{
			Signature: sig, LinkSecret: linkSecret, LinkSecretBlinding: shared, Messages: messages,
			Revealed: []int{1},
		})
		require.NoError(t, err)

		tr := mlutil.NewTranscript(proofLabel)
		pok1.AppendToTranscript(tr)
		pok2.AppendToTranscript(tr)
		c := tr.Challenge()

		require.True(t, pok1.GenerateProof(c).ZLinkSecret.Equals(pok2.GenerateProof(c).ZLinkSecret))
		require.NotNil(t, pok1.MessageBlinding(1))
		require.Nil(t, pok2.MessageBlinding(1))
	})

	t.Run("with tails commitment", func(t *testing.T) {
		tailsBase := mlutil.RandomG1()
		hRev := mlutil.RandomG1()
		rho := mlutil.RandomZr(nil)

		tailsSig, err := bbs.BlindSign(sk, pk, bc, messages, tailsBase, nil)
		require.NoError(t, err)

		commitment := mlutil.AddG1(tailsBase, hRev.Mul(rho))

		proof, c := prove(t, &bbs.PoKOfSignatureInput{
			Signature:          tailsSig.Unblind(blinding),
			LinkSecret:         linkSecret,
			LinkSecretBlinding: mlutil.RandomZr(nil),
			Messages:           messages,
			Revealed:           revealedIdx,
			Tails:              &bbs.TailsCommitment{Commitment: commitment, Base: hRev, Secret: rho},
		})

		require.NotNil(t, proof.ZTails)
		require.NoError(t, verify(proof, revealed, &bbs.ProofTails{Commitment: commitment, Base: hRev}, c))

		other := &bbs.ProofTails{Commitment: mlutil.RandomG1(), Base: hRev}
		require.ErrorIs(t, verify(proof, revealed, other, c), bbs.ErrInvalidProof)
	})

	t.Run("invalid signature is rejected by the prover", func(t *testing.T) {
		_, err := bbs.NewPoKOfSignature(pk, &bbs.PoKOfSignatureInput{
			Signature: sig, LinkSecret: mlutil.RandomZr(nil), LinkSecretBlinding: mlutil.RandomZr(nil),
			Messages: messages,
		})
		require.ErrorIs(t, err, bbs.ErrInvalidSignature)
	})

	t.Run("revealed index out of range", func(t *testing.T) {
		_, err := bbs.NewPoKOfSignature(pk, &bbs.PoKOfSignatureInput{
			Signature: sig, LinkSecret: linkSecret, LinkSecretBlinding: mlutil.RandomZr(nil),
			Messages: messages, Revealed: []int{7},
		})
		require.Error(t, err)
	})
}

func testMessages(t *testing.T, encoded ...string) []*bbs.SignatureMessage {
	t.Helper()

	messages, err := bbs.ParseSignatureMessages(encoded)
	require.NoError(t, err)

	return messages
}
