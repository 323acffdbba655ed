/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accumulator

import (
	"fmt"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// ComputeWitness computes the witness of index over the active indexes from the tails.
func ComputeWitness(tails Tails, capacity, index uint32, active []uint32) (*ml.G2, error) {
	return UpdateWitness(tails, capacity, index, mlutil.G2Identity(), active, nil)
}

// UpdateWitness applies the delta between two accumulator states to a witness.
// Only indexes whose state changes may be passed.
func UpdateWitness(tails Tails, capacity, index uint32, witness *ml.G2, issued, revoked []uint32) (*ml.G2, error) {
	if err := CheckIndex(capacity, index); err != nil {
		return nil, err
	}

	w := witness.Copy()

	for _, j := range issued {
		p, err := witnessTerm(tails, capacity, index, j)
		if err != nil {
			return nil, err
		}

		if p != nil {
			w.Add(p)
		}
	}

	for _, j := range revoked {
		p, err := witnessTerm(tails, capacity, index, j)
		if err != nil {
			return nil, err
		}

		if p != nil {
			w = mlutil.SubG2(w, p)
		}
	}

	return w, nil
}

func witnessTerm(tails Tails, capacity, index, j uint32) (*ml.G2, error) {
	if err := CheckIndex(capacity, j); err != nil {
		return nil, err
	}

	if j == index {
		return nil, nil
	}

	k := capacity + 1 - j + index

	p, err := tails.Point(k)
	if err != nil {
		return nil, fmt.Errorf("tails point %d: %w", k, err)
	}

	return p, nil
}
