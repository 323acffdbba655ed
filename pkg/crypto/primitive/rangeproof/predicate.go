/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rangeproof proves that a committed integer attribute satisfies an inequality against a public bound.
//
// The prover commits C = G*a + H*rho, derives a commitment to a non-negative difference delta and proves
// that delta is the sum of Bits committed bits, each shown to be 0 or 1 by an OR proof. The response for a
// is shared with the signature proof, which ties C to the signed attribute.
package rangeproof

import (
	"errors"
	"fmt"

	ml "github.com/IBM/mathlib"
)

// Bits is the length of the bit decomposition. Attributes and bounds are 32-bit signed integers, so every
// satisfied predicate has a difference below 2^32.
const Bits = 32

// nolint:gochecknoglobals
var curve = ml.Curves[ml.BLS12_381_BBS]

var (
	// ErrNotSatisfied is returned when the attribute does not satisfy the predicate.
	ErrNotSatisfied = errors.New("predicate not satisfied")

	// ErrUnknownPredicate is returned for an unsupported predicate type.
	ErrUnknownPredicate = errors.New("unknown predicate type")

	// ErrInvalidProof is returned when a range proof is malformed.
	ErrInvalidProof = errors.New("invalid range proof")
)

// PredicateType is an inequality operator.
type PredicateType string

// Supported predicate types.
const (
	GE PredicateType = ">="
	GT PredicateType = ">"
	LE PredicateType = "<="
	LT PredicateType = "<"
)

// ParsePredicateType accepts both operator and mnemonic spellings.
func ParsePredicateType(s string) (PredicateType, error) {
	switch s {
	case ">=", "GE":
		return GE, nil
	case ">", "GT":
		return GT, nil
	case "<=", "LE":
		return LE, nil
	case "<", "LT":
		return LT, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownPredicate)
	}
}

// form returns sign and offset such that delta = sign*value + offset must be non-negative.
func (p PredicateType) form(bound int64) (int64, int64, error) {
	switch p {
	case GE:
		return 1, -bound, nil
	case GT:
		return 1, -bound - 1, nil
	case LE:
		return -1, bound, nil
	case LT:
		return -1, bound - 1, nil
	default:
		return 0, 0, fmt.Errorf("%q: %w", string(p), ErrUnknownPredicate)
	}
}

// Satisfied reports whether value p bound holds.
func Satisfied(p PredicateType, value, bound int64) bool {
	sign, offset, err := p.form(bound)
	if err != nil {
		return false
	}

	delta := sign*value + offset

	return delta >= 0 && delta < 1<<Bits
}

// Generators are the Pedersen commitment bases. Nobody proving must know log_G(H).
type Generators struct {
	G *ml.G1
	H *ml.G1
}
