/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rangeproof_test

import (
	"encoding/json"
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/rangeproof"
)

func generators() *rangeproof.Generators {
	return &rangeproof.Generators{G: mlutil.Curve().GenG1, H: mlutil.RandomG1()}
}

// prove runs the prover side and returns the proof, the challenge and the response a signature proof
// would have produced for the attribute.
func prove(t *testing.T, gens *rangeproof.Generators, p rangeproof.PredicateType,
	value, bound int64) (*rangeproof.Proof, *ml.Zr, *ml.Zr) {
	t.Helper()

	valueBlinding := mlutil.RandomZr(nil)

	prover, err := rangeproof.NewProver(gens, p, value, bound, valueBlinding)
	require.NoError(t, err)

	tr := mlutil.NewTranscript("test")
	prover.AppendToTranscript(tr)
	c := tr.Challenge()

	zValue := mlutil.Add(valueBlinding, mlutil.Mul(c, mlutil.ZrFromInt(value)))

	return prover.GenerateProof(c), c, zValue
}

func verify(t *testing.T, gens *rangeproof.Generators, proof *rangeproof.Proof, p rangeproof.PredicateType,
	bound int64, zValue, c *ml.Zr) bool {
	t.Helper()

	tr := mlutil.NewTranscript("test")
	require.NoError(t, proof.AppendToTranscript(tr, gens, p, bound, zValue, c))

	return tr.Challenge().Equals(c)
}

func TestParsePredicateType(t *testing.T) {
	for in, want := range map[string]rangeproof.PredicateType{
		">=": rangeproof.GE, "GE": rangeproof.GE,
		">": rangeproof.GT, "GT": rangeproof.GT,
		"<=": rangeproof.LE, "LE": rangeproof.LE,
		"<": rangeproof.LT, "LT": rangeproof.LT,
	} {
		got, err := rangeproof.ParsePredicateType(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := rangeproof.ParsePredicateType("==")
	require.ErrorIs(t, err, rangeproof.ErrUnknownPredicate)
}

func TestSatisfied(t *testing.T) {
	require.True(t, rangeproof.Satisfied(rangeproof.GE, 18, 18))
	require.False(t, rangeproof.Satisfied(rangeproof.GT, 18, 18))
	require.True(t, rangeproof.Satisfied(rangeproof.LE, -5, -5))
	require.False(t, rangeproof.Satisfied(rangeproof.LT, 7, 7))
	require.True(t, rangeproof.Satisfied(rangeproof.GE, 2147483647, -2147483648))
	require.False(t, rangeproof.Satisfied(rangeproof.PredicateType("=="), 1, 1))
}

func TestProof(t *testing.T) {
	gens := generators()

	tests := []struct {
		name  string
		p     rangeproof.PredicateType
		value int64
		bound int64
	}{
		{name: "greater or equal", p: rangeproof.GE, value: 28, bound: 18},
		{name: "greater or equal at bound", p: rangeproof.GE, value: 18, bound: 18},
		{name: "greater", p: rangeproof.GT, value: 19, bound: 18},
		{name: "less or equal", p: rangeproof.LE, value: -3, bound: 10},
		{name: "less", p: rangeproof.LT, value: 9, bound: 10},
		{name: "full range", p: rangeproof.GE, value: 2147483647, bound: -2147483648},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			proof, c, zValue := prove(t, gens, tc.p, tc.value, tc.bound)
			require.True(t, verify(t, gens, proof, tc.p, tc.bound, zValue, c))
		})
	}

	t.Run("not satisfied", func(t *testing.T) {
		_, err := rangeproof.NewProver(gens, rangeproof.GT, 18, 18, mlutil.RandomZr(nil))
		require.ErrorIs(t, err, rangeproof.ErrNotSatisfied)

		_, err = rangeproof.NewProver(gens, rangeproof.LE, 11, 10, mlutil.RandomZr(nil))
		require.ErrorIs(t, err, rangeproof.ErrNotSatisfied)
	})

	t.Run("other bound", func(t *testing.T) {
		proof, c, zValue := prove(t, gens, rangeproof.GE, 28, 18)

		err := proof.AppendToTranscript(mlutil.NewTranscript("test"), gens, rangeproof.GE, 20, zValue, c)
		require.ErrorIs(t, err, rangeproof.ErrInvalidProof)
	})

	t.Run("other attribute response", func(t *testing.T) {
		proof, c, _ := prove(t, gens, rangeproof.GE, 28, 18)
		require.False(t, verify(t, gens, proof, rangeproof.GE, 18, mlutil.RandomZr(nil), c))
	})

	t.Run("tampered bit", func(t *testing.T) {
		proof, c, zValue := prove(t, gens, rangeproof.GE, 28, 18)
		proof.Bits[3].Z0 = mlutil.RandomZr(nil)
		require.False(t, verify(t, gens, proof, rangeproof.GE, 18, zValue, c))
	})

	t.Run("truncated", func(t *testing.T) {
		proof, c, zValue := prove(t, gens, rangeproof.GE, 28, 18)
		proof.Bits = proof.Bits[1:]

		err := proof.AppendToTranscript(mlutil.NewTranscript("test"), gens, rangeproof.GE, 18, zValue, c)
		require.ErrorIs(t, err, rangeproof.ErrInvalidProof)
	})
}

func TestProofJSON(t *testing.T) {
	gens := generators()
	proof, c, zValue := prove(t, gens, rangeproof.LT, 100, 1000)

	data, err := json.Marshal(proof)
	require.NoError(t, err)

	var decoded rangeproof.Proof
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, verify(t, gens, &decoded, rangeproof.LT, 1000, zValue, c))

	require.Error(t, json.Unmarshal([]byte(`{"commitment":"!!"}`), &decoded))
}
