/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub

import (
	"fmt"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// BlindedCommitment hides the link secret of a holder: U = HSk * linkSecret + HRand * blinding.
type BlindedCommitment struct {
	U     *ml.G1
	Proof *CommitmentProof
}

// CommitmentProof proves knowledge of the opening of a BlindedCommitment, bound to an issuer nonce.
type CommitmentProof struct {
	C         *ml.Zr
	ZSecret   *ml.Zr
	ZBlinding *ml.Zr
}

// NewBlindedCommitment commits to linkSecret under pk and proves the commitment is well formed.
// The returned blinding factor is needed to unblind the issued signature.
func NewBlindedCommitment(pk *PublicKey, linkSecret *ml.Zr, nonce []byte,
	rng io.Reader) (*BlindedCommitment, *ml.Zr) {
	blinding := mlutil.RandomZr(rng)

	u := mlutil.NewCommitmentBuilder(2).
		Add(pk.HSk, linkSecret).
		Add(pk.HRand, blinding).
		Build()

	committing := NewProverCommittingG1()
	committing.Commit(pk.HSk)
	committing.Commit(pk.HRand)
	committed := committing.Finish()

	c := commitmentChallenge(u, committed.Commitment(), nonce)
	responses := committed.GenerateProof(c, []*ml.Zr{linkSecret, blinding})

	return &BlindedCommitment{
		U: u,
		Proof: &CommitmentProof{
			C:         c,
			ZSecret:   responses.Responses[0],
			ZBlinding: responses.Responses[1],
		},
	}, blinding
}

// Verify checks the correctness proof of the commitment against pk and nonce.
func (bc *BlindedCommitment) Verify(pk *PublicKey, nonce []byte) error {
	if bc == nil || bc.U == nil || bc.Proof == nil {
		return fmt.Errorf("blinded commitment: %w", ErrInvalidProof)
	}

	proof := &ProofG1{Responses: []*ml.Zr{bc.Proof.ZSecret, bc.Proof.ZBlinding}}
	t := proof.Commitment([]*ml.G1{pk.HSk, pk.HRand}, bc.U, bc.Proof.C)

	if !commitmentChallenge(bc.U, t, nonce).Equals(bc.Proof.C) {
		return fmt.Errorf("blinded commitment: %w", ErrInvalidProof)
	}

	return nil
}

func commitmentChallenge(u, t *ml.G1, nonce []byte) *ml.Zr {
	return mlutil.NewTranscript(commitmentProofLabel).
		AppendG1(u, t).
		AppendBytes(nonce).
		Challenge()
}
