/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rangeproof

import (
	"fmt"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// BitProof shows that a bit commitment opens to 0 or 1. The challenge of the second branch is the proof
// challenge minus C0.
type BitProof struct {
	C0 *ml.Zr
	Z0 *ml.Zr
	Z1 *ml.Zr
}

// Proof is a range proof for one predicate.
type Proof struct {
	Commitment     *ml.G1
	ZRho           *ml.Zr
	BitCommitments []*ml.G1
	Bits           []*BitProof
}

// AppendToTranscript checks the bit decomposition against the predicate, recomputes the prover commitments
// and adds them to the transcript. zValue is the response for the attribute taken from the signature proof.
func (p *Proof) AppendToTranscript(t *mlutil.Transcript, gens *Generators, pt PredicateType, bound int64,
	zValue, challenge *ml.Zr) error {
	if err := p.checkShape(zValue); err != nil {
		return err
	}

	sign, offset, err := pt.form(bound)
	if err != nil {
		return err
	}

	// C_delta = sign*C + G*offset
	expected := mlutil.AddG1(p.Commitment.Mul(mlutil.ZrFromInt(sign)), gens.G.Mul(mlutil.ZrFromInt(offset)))

	sum := mlutil.G1Identity()
	for k, ck := range p.BitCommitments {
		sum.Add(ck.Mul(mlutil.Pow(mlutil.ZrFromInt(2), uint64(k))))
	}

	if !sum.Equals(expected) {
		return fmt.Errorf("bit decomposition does not match predicate: %w", ErrInvalidProof)
	}

	linkCommitment := mlutil.SubG1(Commit(gens, zValue, p.ZRho), p.Commitment.Mul(challenge))

	t.AppendG1(p.Commitment, linkCommitment)

	for k, ck := range p.BitCommitments {
		b := p.Bits[k]
		c1 := mlutil.Sub(challenge, b.C0)

		t.AppendG1(ck, simulated(gens, ck, false, b.Z0, b.C0), simulated(gens, ck, true, b.Z1, c1))
	}

	return nil
}

func (p *Proof) checkShape(zValue *ml.Zr) error {
	if p.Commitment == nil || p.ZRho == nil || zValue == nil {
		return fmt.Errorf("incomplete proof: %w", ErrInvalidProof)
	}

	if len(p.BitCommitments) != Bits || len(p.Bits) != Bits {
		return fmt.Errorf("expected %d bits: %w", Bits, ErrInvalidProof)
	}

	for k, b := range p.Bits {
		if p.BitCommitments[k] == nil || b == nil || b.C0 == nil || b.Z0 == nil || b.Z1 == nil {
			return fmt.Errorf("incomplete bit %d: %w", k, ErrInvalidProof)
		}
	}

	return nil
}
