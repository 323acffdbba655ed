/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accumulator_test

import (
	"encoding/json"
	"fmt"
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

const capacity = 8

type memTails []*ml.G2

func (m memTails) Point(k uint32) (*ml.G2, error) {
	if k == 0 || int(k) > len(m) {
		return nil, fmt.Errorf("no point %d", k)
	}

	return m[k-1], nil
}

func newRegistry(t *testing.T) (*accumulator.PublicKey, *accumulator.PrivateKey, memTails) {
	t.Helper()

	pk, sk, err := accumulator.GenerateKeyPair(capacity, nil)
	require.NoError(t, err)

	var tails memTails

	require.NoError(t, sk.GenerateTails(capacity, func(k uint32, p *ml.G2) error {
		require.Equal(t, uint32(len(tails)+1), k)
		tails = append(tails, p)

		return nil
	}))
	require.Len(t, tails, int(accumulator.TailsSize(capacity)))

	return pk, sk, tails
}

func allIndexes() []uint32 {
	active := make([]uint32, capacity)
	for i := range active {
		active[i] = uint32(i + 1)
	}

	return active
}

func TestKeys(t *testing.T) {
	_, _, err := accumulator.GenerateKeyPair(0, nil)
	require.ErrorIs(t, err, accumulator.ErrCapacity)

	_, _, err = accumulator.GenerateKeyPair(accumulator.MaxCapacity+1, nil)
	require.ErrorIs(t, err, accumulator.ErrCapacity)

	pk, sk, tails := newRegistry(t)

	g := mlutil.Curve().GenG2

	t.Run("tails follow gamma powers", func(t *testing.T) {
		for k := uint32(1); k <= accumulator.TailsSize(capacity); k++ {
			p, err := tails.Point(k)
			require.NoError(t, err)

			if k == capacity+1 {
				require.True(t, g.Equals(p))
				continue
			}

			require.True(t, g.Mul(mlutil.Pow(sk.Gamma, uint64(k))).Equals(p))
		}
	})

	t.Run("index base", func(t *testing.T) {
		_, err := sk.IndexBase(capacity, 0)
		require.ErrorIs(t, err, accumulator.ErrIndexOutOfRange)

		_, err = sk.IndexBase(capacity, capacity+1)
		require.ErrorIs(t, err, accumulator.ErrIndexOutOfRange)

		base, err := sk.IndexBase(capacity, 3)
		require.NoError(t, err)
		require.False(t, base.Equals(mlutil.G1Identity()))
	})

	t.Run("JSON round trip", func(t *testing.T) {
		data, err := json.Marshal(pk)
		require.NoError(t, err)

		var pk2 accumulator.PublicKey
		require.NoError(t, json.Unmarshal(data, &pk2))
		require.True(t, pk.Z().Equals(pk2.Z()))

		skData, err := json.Marshal(sk)
		require.NoError(t, err)

		var sk2 accumulator.PrivateKey
		require.NoError(t, json.Unmarshal(skData, &sk2))
		require.True(t, sk.Gamma.Equals(sk2.Gamma))
	})
}

func TestMembership(t *testing.T) {
	pk, sk, tails := newRegistry(t)

	const index = uint32(3)

	base, err := sk.IndexBase(capacity, index)
	require.NoError(t, err)

	acc, err := sk.New(capacity, allIndexes())
	require.NoError(t, err)

	witness, err := accumulator.ComputeWitness(tails, capacity, index, allIndexes())
	require.NoError(t, err)

	issuerWitness, err := sk.Witness(capacity, index, allIndexes())
	require.NoError(t, err)
	require.True(t, issuerWitness.Equals(witness))

	require.True(t, accumulator.VerifyMembership(pk, base, acc, witness))

	t.Run("revoked index", func(t *testing.T) {
		revokedAcc, err := sk.Update(capacity, acc, nil, []uint32{index})
		require.NoError(t, err)
		require.False(t, accumulator.VerifyMembership(pk, base, revokedAcc, witness))
	})

	t.Run("other holder revoked needs witness update", func(t *testing.T) {
		newAcc, err := sk.Update(capacity, acc, nil, []uint32{5})
		require.NoError(t, err)
		require.False(t, accumulator.VerifyMembership(pk, base, newAcc, witness))

		updated, err := accumulator.UpdateWitness(tails, capacity, index, witness, nil, []uint32{5})
		require.NoError(t, err)
		require.True(t, accumulator.VerifyMembership(pk, base, newAcc, updated))

		full, err := accumulator.ComputeWitness(tails, capacity, index, []uint32{1, 2, 3, 4, 6, 7, 8})
		require.NoError(t, err)
		require.True(t, full.Equals(updated))
	})

	t.Run("delta round trip restores accumulator", func(t *testing.T) {
		empty, err := sk.New(capacity, nil)
		require.NoError(t, err)
		require.True(t, empty.Equals(mlutil.G2Identity()))

		issued, err := sk.Update(capacity, empty, []uint32{index}, nil)
		require.NoError(t, err)
		require.False(t, issued.Equals(empty))

		restored, err := sk.Update(capacity, issued, nil, []uint32{index})
		require.NoError(t, err)
		require.True(t, restored.Equals(empty))
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := sk.Update(capacity, acc, []uint32{capacity + 1}, nil)
		require.ErrorIs(t, err, accumulator.ErrIndexOutOfRange)

		_, err = accumulator.ComputeWitness(tails, capacity, 0, allIndexes())
		require.ErrorIs(t, err, accumulator.ErrIndexOutOfRange)
	})
}

func TestNonRevocationProof(t *testing.T) {
	pk, sk, tails := newRegistry(t)
	ck := accumulator.GenerateCredentialKey(nil)

	const index = uint32(2)

	base, err := sk.IndexBase(capacity, index)
	require.NoError(t, err)

	acc, err := sk.New(capacity, allIndexes())
	require.NoError(t, err)

	witness, err := accumulator.ComputeWitness(tails, capacity, index, allIndexes())
	require.NoError(t, err)

	prove := func(acc *ml.G2) (*accumulator.Proof, *ml.Zr, *ml.Zr) {
		rho := mlutil.RandomZr(nil)
		rhoBlinding := mlutil.RandomZr(nil)

		prover := accumulator.NewNonRevocationProver(ck, acc, accumulator.CommitIndexBase(ck, base, rho),
			witness, rhoBlinding)

		tr := mlutil.NewTranscript("nr")
		prover.AppendToTranscript(tr)
		c := tr.Challenge()

		return prover.GenerateProof(c), mlutil.Add(rhoBlinding, mlutil.Mul(c, rho)), c
	}

	verify := func(proof *accumulator.Proof, acc *ml.G2, zRho, c *ml.Zr) bool {
		tr := mlutil.NewTranscript("nr")
		require.NoError(t, proof.AppendToTranscript(tr, ck, pk, acc, zRho, c))

		return tr.Challenge().Equals(c)
	}

	t.Run("accumulated index", func(t *testing.T) {
		proof, zRho, c := prove(acc)
		require.True(t, verify(proof, acc, zRho, c))

		data, err := json.Marshal(proof)
		require.NoError(t, err)

		var proof2 accumulator.Proof
		require.NoError(t, json.Unmarshal(data, &proof2))
		require.True(t, verify(&proof2, acc, zRho, c))

		require.False(t, verify(proof, acc, mlutil.Add(zRho, mlutil.One()), c))
	})

	t.Run("revoked index", func(t *testing.T) {
		revokedAcc, err := sk.Update(capacity, acc, nil, []uint32{index})
		require.NoError(t, err)

		proof, zRho, c := prove(revokedAcc)
		require.False(t, verify(proof, revokedAcc, zRho, c))
	})

	t.Run("incomplete proof", func(t *testing.T) {
		tr := mlutil.NewTranscript("nr")
		err := (&accumulator.Proof{}).AppendToTranscript(tr, ck, pk, acc, mlutil.One(), mlutil.One())
		require.ErrorIs(t, err, accumulator.ErrInvalidProof)
	})
}
