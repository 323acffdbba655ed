/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mlutil

import (
	ml "github.com/IBM/mathlib"
)

// G1Identity returns the neutral element of G1.
func G1Identity() *ml.G1 {
	return curve.GenG1.Mul(Zero())
}

// G2Identity returns the neutral element of G2.
func G2Identity() *ml.G2 {
	return curve.GenG2.Mul(Zero())
}

// RandomG1 returns a random G1 element with a discarded discrete log.
func RandomG1() *ml.G1 {
	return curve.GenG1.Mul(RandomZr(nil))
}

// RandomG2 returns a random G2 element with a discarded discrete log.
func RandomG2() *ml.G2 {
	return curve.GenG2.Mul(RandomZr(nil))
}

// AddG1 returns a+b without modifying either argument.
func AddG1(a, b *ml.G1) *ml.G1 {
	res := a.Copy()
	res.Add(b)

	return res
}

// SubG1 returns a-b without modifying either argument.
func SubG1(a, b *ml.G1) *ml.G1 {
	return AddG1(a, b.Mul(Neg(One())))
}

// AddG2 returns a+b without modifying either argument.
func AddG2(a, b *ml.G2) *ml.G2 {
	res := a.Copy()
	res.Add(b)

	return res
}

// SubG2 returns a-b without modifying either argument.
func SubG2(a, b *ml.G2) *ml.G2 {
	return AddG2(a, b.Mul(Neg(One())))
}

// CommitmentBuilder accumulates a multi-exponentiation sum(bases[i] * scalars[i]) in G1.
type CommitmentBuilder struct {
	bases   []*ml.G1
	scalars []*ml.Zr
}

// NewCommitmentBuilder creates a builder sized for expectedSize terms.
func NewCommitmentBuilder(expectedSize int) *CommitmentBuilder {
	return &CommitmentBuilder{
		bases:   make([]*ml.G1, 0, expectedSize),
		scalars: make([]*ml.Zr, 0, expectedSize),
	}
}

// Add appends the term base * scalar.
func (cb *CommitmentBuilder) Add(base *ml.G1, scalar *ml.Zr) *CommitmentBuilder {
	cb.bases = append(cb.bases, base)
	cb.scalars = append(cb.scalars, scalar)

	return cb
}

// Build computes the sum of all added terms.
func (cb *CommitmentBuilder) Build() *ml.G1 {
	return SumOfG1Products(cb.bases, cb.scalars)
}

// SumOfG1Products returns sum(bases[i] * scalars[i]), or the identity for empty input.
func SumOfG1Products(bases []*ml.G1, scalars []*ml.Zr) *ml.G1 {
	res := G1Identity()

	for i := 0; i < len(bases); i++ {
		res.Add(bases[i].Mul(scalars[i]))
	}

	return res
}

// PairingProduct returns the final-exponentiated product e(p1[0], q2[0]) * ... * e(p1[n], q2[n]).
func PairingProduct(p1 []*ml.G1, q2 []*ml.G2) *ml.Gt {
	var res *ml.Gt

	for i := 0; i < len(p1); i += 2 {
		var p *ml.Gt

		if i+1 < len(p1) {
			p = curve.Pairing2(q2[i], p1[i], q2[i+1], p1[i+1])
		} else {
			p = curve.Pairing(q2[i], p1[i])
		}

		p = curve.FExp(p)

		if res == nil {
			res = p
		} else {
			res.Mul(p)
		}
	}

	return res
}

// CompareTwoPairings reports whether e(p1, q1) == e(p2, q2).
func CompareTwoPairings(p1 *ml.G1, q1 *ml.G2, p2 *ml.G1, q2 *ml.G2) bool {
	p := curve.Pairing2(q1, p1, q2, p2.Mul(Neg(One())))
	p = curve.FExp(p)

	return p.IsUnity()
}
