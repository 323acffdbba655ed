/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accumulator

import (
	"sort"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// Tails gives access to the points g2*gamma^k, k in [1, 2L]. Point L+1 is a placeholder and never used.
type Tails interface {
	Point(k uint32) (*ml.G2, error)
}

// TailsSize returns the number of points in the tails of a registry of the given capacity.
func TailsSize(capacity uint32) uint32 {
	return 2 * capacity
}

// GenerateTails emits every tails point in order k = 1..2L. The secret point at L+1 is replaced by g2.
func (sk *PrivateKey) GenerateTails(capacity uint32, emit func(k uint32, p *ml.G2) error) error {
	if err := CheckCapacity(capacity); err != nil {
		return err
	}

	p := curve.GenG2.Copy()

	for k := uint32(1); k <= TailsSize(capacity); k++ {
		p = p.Mul(sk.Gamma)

		point := p
		if k == capacity+1 {
			point = curve.GenG2.Copy()
		}

		if err := emit(k, point); err != nil {
			return err
		}
	}

	return nil
}

// New computes the accumulator value over the active indexes from the registry secret.
func (sk *PrivateKey) New(capacity uint32, active []uint32) (*ml.G2, error) {
	return sk.Update(capacity, mlutil.G2Identity(), active, nil)
}

// Update applies a delta to an accumulator value: issued indexes are added and revoked ones removed.
// The caller guarantees that only indexes whose state changes are passed.
func (sk *PrivateKey) Update(capacity uint32, acc *ml.G2, issued, revoked []uint32) (*ml.G2, error) {
	added, err := sk.exponentSum(capacity, issued, 0)
	if err != nil {
		return nil, err
	}

	removed, err := sk.exponentSum(capacity, revoked, 0)
	if err != nil {
		return nil, err
	}

	return mlutil.AddG2(acc, curve.GenG2.Mul(mlutil.Sub(added, removed))), nil
}

// Witness computes the witness of index from the registry secret.
func (sk *PrivateKey) Witness(capacity, index uint32, active []uint32) (*ml.G2, error) {
	if err := CheckIndex(capacity, index); err != nil {
		return nil, err
	}

	others := make([]uint32, 0, len(active))

	for _, j := range active {
		if j != index {
			others = append(others, j)
		}
	}

	sum, err := sk.exponentSum(capacity, others, index)
	if err != nil {
		return nil, err
	}

	return curve.GenG2.Mul(sum), nil
}

// exponentSum returns sum(gamma^(L+1-j+shift)) over indexes.
func (sk *PrivateKey) exponentSum(capacity uint32, indexes []uint32, shift uint32) (*ml.Zr, error) {
	exps := make([]uint64, 0, len(indexes))

	for _, j := range indexes {
		if err := CheckIndex(capacity, j); err != nil {
			return nil, err
		}

		exps = append(exps, uint64(capacity)+1-uint64(j)+uint64(shift))
	}

	sort.Slice(exps, func(a, b int) bool { return exps[a] < exps[b] })

	sum := mlutil.Zero()
	power := mlutil.One()

	var last uint64

	for _, e := range exps {
		power = mlutil.Mul(power, mlutil.Pow(sk.Gamma, e-last))
		last = e

		sum = mlutil.Add(sum, power)
	}

	return sum, nil
}

// VerifyMembership checks e(g_i, acc) == e(g1, w) * z.
func VerifyMembership(pk *PublicKey, indexBase *ml.G1, acc, witness *ml.G2) bool {
	minusOne := mlutil.Neg(mlutil.One())

	return mlutil.PairingProduct(
		[]*ml.G1{indexBase, curve.GenG1.Mul(minusOne), pk.Z1.Mul(minusOne)},
		[]*ml.G2{acc, witness, pk.Z2},
	).IsUnity()
}
