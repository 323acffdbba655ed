/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bbs12381g2pub contains the BBS+ primitives behind anoncreds credential definitions: issuer keys with a
// key correctness proof, blinded link secret commitments, blind signatures and zero-knowledge proofs of knowledge
// of a signature with selective disclosure. Public keys live in G2 and signatures in G1 of BLS12-381.
package bbs12381g2pub

import (
	"errors"

	ml "github.com/IBM/mathlib"
)

// nolint:gochecknoglobals
var curve = ml.Curves[ml.BLS12_381_BBS]

var (
	// ErrInvalidSignature is returned when a signature does not verify.
	ErrInvalidSignature = errors.New("invalid BLS12-381 signature")

	// ErrInvalidProof is returned when a proof of knowledge does not verify.
	ErrInvalidProof = errors.New("invalid proof of knowledge")

	// ErrMessageCount is returned when the number of messages does not match the key.
	ErrMessageCount = errors.New("messages count does not match public key")
)

// Domain separation labels of the Fiat-Shamir transcripts.
const (
	keyProofLabel        = "anoncreds/bbs+/key-correctness"
	commitmentProofLabel = "anoncreds/bbs+/blinded-link-secret"
)
