/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mlutil holds the scalar, group element and transcript helpers shared by the anoncreds primitives.
// All primitives work on the BLS12-381 curve instance of IBM/mathlib used for BBS+.
package mlutil

import (
	"crypto/rand"
	"io"
	"math/big"

	ml "github.com/IBM/mathlib"
	"golang.org/x/crypto/blake2b"
)

// nolint:gochecknoglobals
var curve = ml.Curves[ml.BLS12_381_BBS]

// Curve returns the curve every primitive operates on.
func Curve() *ml.Curve {
	return curve
}

// Order returns the prime order r of the curve groups.
func Order() *big.Int {
	return new(big.Int).SetBytes(curve.GroupOrder.Bytes())
}

// RandomZr returns a uniformly random scalar read from rng, or from crypto/rand when rng is nil.
func RandomZr(rng io.Reader) *ml.Zr {
	if rng == nil {
		rng = rand.Reader
	}

	return curve.NewRandomZr(rng)
}

// ZrFromInt returns the scalar for a small integer, negative values are taken mod r.
func ZrFromInt(v int64) *ml.Zr {
	return ZrFromBig(big.NewInt(v))
}

// ZrFromBig reduces v mod r and returns it as a scalar. Negative v maps to r-|v|.
func ZrFromBig(v *big.Int) *ml.Zr {
	reduced := new(big.Int).Mod(v, Order())

	return curve.NewZrFromBytes(reduced.FillBytes(make([]byte, curve.ScalarByteSize)))
}

// ZrToBig returns the canonical integer value of z in [0, r).
func ZrToBig(z *ml.Zr) *big.Int {
	return new(big.Int).SetBytes(z.Bytes())
}

// Zero returns the additive identity of the scalar field.
func Zero() *ml.Zr {
	return curve.NewZrFromInt(0)
}

// One returns the multiplicative identity of the scalar field.
func One() *ml.Zr {
	return curve.NewZrFromInt(1)
}

// Add returns a+b mod r.
func Add(a, b *ml.Zr) *ml.Zr {
	return curve.ModAdd(a, b, curve.GroupOrder)
}

// Sub returns a-b mod r.
func Sub(a, b *ml.Zr) *ml.Zr {
	return curve.ModSub(a, b, curve.GroupOrder)
}

// Mul returns a*b mod r.
func Mul(a, b *ml.Zr) *ml.Zr {
	return curve.ModMul(a, b, curve.GroupOrder)
}

// Neg returns -a mod r.
func Neg(a *ml.Zr) *ml.Zr {
	return curve.ModNeg(a, curve.GroupOrder)
}

// Inv returns 1/a mod r. The input is left untouched.
func Inv(a *ml.Zr) *ml.Zr {
	inv := a.Copy()
	inv.InvModP(curve.GroupOrder)

	return inv
}

// Pow returns a^n mod r for a non-negative n.
func Pow(a *ml.Zr, n uint64) *ml.Zr {
	res := One()
	base := a.Copy()

	for n > 0 {
		if n&1 == 1 {
			res = Mul(res, base)
		}

		base = Mul(base, base)
		n >>= 1
	}

	return res
}

// IsZero reports whether z is the zero scalar.
func IsZero(z *ml.Zr) bool {
	return ZrToBig(z).Sign() == 0
}

// HashToZr maps message to a scalar by reducing a 384-bit BLAKE2b digest mod r.
func HashToZr(message []byte) *ml.Zr {
	// We pass a null key so error is impossible here.
	h, _ := blake2b.New384(nil) //nolint:errcheck

	// blake2b.digest() does not return an error.
	_, _ = h.Write(message)
	okm := h.Sum(nil)

	return ZrFromBig(new(big.Int).SetBytes(okm))
}
