/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package accumulator implements a pairing based accumulator over the indexes of a revocation registry.
//
// A registry of capacity L has a secret gamma. Index j contributes g2*gamma^(L+1-j) to the accumulator value,
// the holder of index i keeps a witness sum(g2*gamma^(L+1-j+i)) over the other active indexes j and the base
// g_i = g1*gamma^i signed into their credential. Membership is checked by e(g_i, acc) = e(g1, w) * z with
// z = e(g1, g2)^gamma^(L+1). The tails hold g2*gamma^k for k in [1, 2L] and let holders maintain witnesses
// without the secret.
package accumulator

import (
	"errors"
	"fmt"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// MaxCapacity is the largest number of indexes a registry may hold.
const MaxCapacity = 1 << 20

// nolint:gochecknoglobals
var curve = ml.Curves[ml.BLS12_381_BBS]

var (
	// ErrCapacity is returned for a capacity outside [1, MaxCapacity].
	ErrCapacity = errors.New("invalid registry capacity")

	// ErrIndexOutOfRange is returned for an index outside [1, capacity].
	ErrIndexOutOfRange = errors.New("registry index out of range")

	// ErrInvalidProof is returned when a non-revocation proof is malformed.
	ErrInvalidProof = errors.New("invalid non-revocation proof")
)

// PrivateKey is the registry secret.
type PrivateKey struct {
	Gamma *ml.Zr
}

// PublicKey encodes z = e(Z1, Z2) = e(g1, g2)^gamma^(L+1) with Z1 = g1*gamma and Z2 = g2*gamma^L.
type PublicKey struct {
	Z1 *ml.G1
	Z2 *ml.G2
}

// GenerateKeyPair creates registry keys for the given capacity.
func GenerateKeyPair(capacity uint32, rng io.Reader) (*PublicKey, *PrivateKey, error) {
	if err := CheckCapacity(capacity); err != nil {
		return nil, nil, err
	}

	sk := &PrivateKey{Gamma: mlutil.RandomZr(rng)}

	return sk.PublicKey(capacity), sk, nil
}

// PublicKey derives the public key of a registry of the given capacity.
func (sk *PrivateKey) PublicKey(capacity uint32) *PublicKey {
	return &PublicKey{
		Z1: curve.GenG1.Mul(sk.Gamma),
		Z2: curve.GenG2.Mul(mlutil.Pow(sk.Gamma, uint64(capacity))),
	}
}

// IndexBase returns g_i = g1*gamma^i, the accumulator base signed into the credential at index i.
func (sk *PrivateKey) IndexBase(capacity, index uint32) (*ml.G1, error) {
	if err := CheckIndex(capacity, index); err != nil {
		return nil, err
	}

	return curve.GenG1.Mul(mlutil.Pow(sk.Gamma, uint64(index))), nil
}

// Z returns the target group element z.
func (pk *PublicKey) Z() *ml.Gt {
	return mlutil.PairingProduct([]*ml.G1{pk.Z1}, []*ml.G2{pk.Z2})
}

// CredentialKey holds the generators a credential definition uses to blind revocation data in proofs.
type CredentialKey struct {
	HRev *ml.G1
	HHat *ml.G2
}

// GenerateCredentialKey creates fresh blinding generators.
func GenerateCredentialKey(rng io.Reader) *CredentialKey {
	return &CredentialKey{
		HRev: curve.GenG1.Mul(mlutil.RandomZr(rng)),
		HHat: curve.GenG2.Mul(mlutil.RandomZr(rng)),
	}
}

// CheckCapacity validates a registry capacity.
func CheckCapacity(capacity uint32) error {
	if capacity == 0 || capacity > MaxCapacity {
		return fmt.Errorf("capacity %d: %w", capacity, ErrCapacity)
	}

	return nil
}

// CheckIndex validates a 1-based registry index.
func CheckIndex(capacity, index uint32) error {
	if index == 0 || index > capacity {
		return fmt.Errorf("index %d not in [1, %d]: %w", index, capacity, ErrIndexOutOfRange)
	}

	return nil
}
