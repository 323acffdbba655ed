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

// PublicKey is the issuer verification key together with the generators signed messages are committed under.
type PublicKey struct {
	// W = g2 * x.
	W *ml.G2
	// BarG1 random, BarG2 = BarG1 * x. Used by the key correctness proof.
	BarG1 *ml.G1
	BarG2 *ml.G1
	// HRand blinds the signature.
	HRand *ml.G1
	// HSk commits the link secret.
	HSk *ml.G1
	// H holds one generator per attribute, in schema order.
	H []*ml.G1
}

// MessagesCount returns the number of attribute messages the key signs.
func (pk *PublicKey) MessagesCount() int {
	return len(pk.H)
}

// PrivateKey is the issuer signing key.
type PrivateKey struct {
	X *ml.Zr
}

// GenerateKeyPair creates a key pair able to sign messagesCount attributes.
func GenerateKeyPair(messagesCount int, rng io.Reader) (*PublicKey, *PrivateKey, error) {
	if messagesCount < 1 {
		return nil, nil, fmt.Errorf("generate key pair: %w", ErrMessageCount)
	}

	x := mlutil.RandomZr(rng)

	barG1 := curve.GenG1.Mul(mlutil.RandomZr(rng))

	h := make([]*ml.G1, messagesCount)
	for i := range h {
		h[i] = curve.GenG1.Mul(mlutil.RandomZr(rng))
	}

	pk := &PublicKey{
		W:     curve.GenG2.Mul(x),
		BarG1: barG1,
		BarG2: barG1.Mul(x),
		HRand: curve.GenG1.Mul(mlutil.RandomZr(rng)),
		HSk:   curve.GenG1.Mul(mlutil.RandomZr(rng)),
		H:     h,
	}

	return pk, &PrivateKey{X: x}, nil
}

// KeyCorrectnessProof proves that W and BarG2 share one discrete log, known to the issuer.
type KeyCorrectnessProof struct {
	C *ml.Zr
	Z *ml.Zr
}

// NewKeyCorrectnessProof builds a non-interactive Schnorr proof of knowledge of x over (g2, W) and (BarG1, BarG2).
func NewKeyCorrectnessProof(pk *PublicKey, sk *PrivateKey, rng io.Reader) *KeyCorrectnessProof {
	r := mlutil.RandomZr(rng)

	t1 := curve.GenG2.Mul(r)
	t2 := pk.BarG1.Mul(r)

	c := keyProofChallenge(pk, t1, t2)

	return &KeyCorrectnessProof{
		C: c,
		Z: mlutil.Add(r, mlutil.Mul(c, sk.X)),
	}
}

// Verify checks the proof against the public key.
func (p *KeyCorrectnessProof) Verify(pk *PublicKey) error {
	if p == nil || p.C == nil || p.Z == nil {
		return fmt.Errorf("key correctness proof: %w", ErrInvalidProof)
	}

	minusC := mlutil.Neg(p.C)

	t1 := curve.GenG2.Mul(p.Z)
	t1.Add(pk.W.Mul(minusC))

	t2 := pk.BarG1.Mul(p.Z)
	t2.Add(pk.BarG2.Mul(minusC))

	if !keyProofChallenge(pk, t1, t2).Equals(p.C) {
		return fmt.Errorf("key correctness proof: %w", ErrInvalidProof)
	}

	return nil
}

func keyProofChallenge(pk *PublicKey, t1 *ml.G2, t2 *ml.G1) *ml.Zr {
	return mlutil.NewTranscript(keyProofLabel).
		AppendG2(pk.W).
		AppendG1(pk.BarG1, pk.BarG2, pk.HRand, pk.HSk).
		AppendG1(pk.H...).
		AppendG2(t1).
		AppendG1(t2).
		Challenge()
}
