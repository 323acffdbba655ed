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

// Commit returns G*value + H*blinding.
func Commit(gens *Generators, value, blinding *ml.Zr) *ml.G1 {
	return mlutil.NewCommitmentBuilder(2).Add(gens.G, value).Add(gens.H, blinding).Build()
}

// Prover holds the first message of a range proof until the challenge is known.
type Prover struct {
	commitment     *ml.G1
	rho            *ml.Zr
	rRho           *ml.Zr
	linkCommitment *ml.G1
	bits           []*bitProver
}

type bitProver struct {
	set        bool
	blinding   *ml.Zr
	commitment *ml.G1
	r          *ml.Zr
	// response and challenge of the simulated branch
	zSim *ml.Zr
	cSim *ml.Zr
	t0   *ml.G1
	t1   *ml.G1
}

// NewProver commits to value and to the bits of its distance from bound. valueBlinding is the blinding factor
// the signature proof uses for value, so both proofs answer with the same response.
func NewProver(gens *Generators, p PredicateType, value, bound int64, valueBlinding *ml.Zr) (*Prover, error) {
	sign, offset, err := p.form(bound)
	if err != nil {
		return nil, err
	}

	delta := sign*value + offset
	if delta < 0 || delta >= 1<<Bits {
		return nil, fmt.Errorf("%d %s %d: %w", value, p, bound, ErrNotSatisfied)
	}

	rho := mlutil.RandomZr(nil)
	rRho := mlutil.RandomZr(nil)

	pr := &Prover{
		commitment:     Commit(gens, mlutil.ZrFromInt(value), rho),
		rho:            rho,
		rRho:           rRho,
		linkCommitment: Commit(gens, valueBlinding, rRho),
		bits:           make([]*bitProver, Bits),
	}

	// the bit blindings must sum to the blinding of the delta commitment
	rest := mlutil.Mul(mlutil.ZrFromInt(sign), rho)

	for k := 0; k < Bits; k++ {
		var blinding *ml.Zr

		if k < Bits-1 {
			blinding = mlutil.RandomZr(nil)
			rest = mlutil.Sub(rest, mlutil.Mul(mlutil.Pow(mlutil.ZrFromInt(2), uint64(k)), blinding))
		} else {
			blinding = mlutil.Mul(rest, mlutil.Inv(mlutil.Pow(mlutil.ZrFromInt(2), uint64(k))))
		}

		pr.bits[k] = newBitProver(gens, (delta>>k)&1 == 1, blinding)
	}

	return pr, nil
}

func newBitProver(gens *Generators, set bool, blinding *ml.Zr) *bitProver {
	bit := mlutil.Zero()
	if set {
		bit = mlutil.One()
	}

	b := &bitProver{
		set:        set,
		blinding:   blinding,
		commitment: Commit(gens, bit, blinding),
		r:          mlutil.RandomZr(nil),
		zSim:       mlutil.RandomZr(nil),
		cSim:       mlutil.RandomZr(nil),
	}

	honest := gens.H.Mul(b.r)

	if set {
		b.t0 = simulated(gens, b.commitment, false, b.zSim, b.cSim)
		b.t1 = honest
	} else {
		b.t0 = honest
		b.t1 = simulated(gens, b.commitment, true, b.zSim, b.cSim)
	}

	return b
}

// simulated returns H*z - X*c where X is the commitment minus G*bit.
func simulated(gens *Generators, commitment *ml.G1, one bool, z, c *ml.Zr) *ml.G1 {
	x := commitment
	if one {
		x = mlutil.SubG1(commitment, gens.G)
	}

	return mlutil.SubG1(gens.H.Mul(z), x.Mul(c))
}

// AppendToTranscript adds the prover's first message to the challenge transcript.
func (pr *Prover) AppendToTranscript(t *mlutil.Transcript) {
	t.AppendG1(pr.commitment, pr.linkCommitment)

	for _, b := range pr.bits {
		t.AppendG1(b.commitment, b.t0, b.t1)
	}
}

// GenerateProof answers the challenge.
func (pr *Prover) GenerateProof(challenge *ml.Zr) *Proof {
	proof := &Proof{
		Commitment:     pr.commitment,
		ZRho:           mlutil.Add(pr.rRho, mlutil.Mul(challenge, pr.rho)),
		BitCommitments: make([]*ml.G1, len(pr.bits)),
		Bits:           make([]*BitProof, len(pr.bits)),
	}

	for k, b := range pr.bits {
		c := mlutil.Sub(challenge, b.cSim)
		z := mlutil.Add(b.r, mlutil.Mul(c, b.blinding))

		proof.BitCommitments[k] = b.commitment

		if b.set {
			proof.Bits[k] = &BitProof{C0: b.cSim, Z0: b.zSim, Z1: z}
		} else {
			proof.Bits[k] = &BitProof{C0: c, Z0: z, Z1: b.zSim}
		}
	}

	return proof
}
