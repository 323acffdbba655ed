/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub

import (
	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// ProverCommittingG1 is a proof of knowledge of messages in a vector commitment.
type ProverCommittingG1 struct {
	bases           []*ml.G1
	blindingFactors []*ml.Zr
}

// NewProverCommittingG1 creates a new ProverCommittingG1.
func NewProverCommittingG1() *ProverCommittingG1 {
	return &ProverCommittingG1{
		bases:           make([]*ml.G1, 0),
		blindingFactors: make([]*ml.Zr, 0),
	}
}

// Commit append a base point and randomly generated blinding factor.
func (pc *ProverCommittingG1) Commit(base *ml.G1) {
	pc.CommitWith(base, mlutil.RandomZr(nil))
}

// CommitWith appends a base point with a caller chosen blinding factor. Sharing a blinding factor between
// two proofs under one challenge yields equal responses, which proves the hidden values are equal.
func (pc *ProverCommittingG1) CommitWith(base *ml.G1, blinding *ml.Zr) {
	pc.bases = append(pc.bases, base)
	pc.blindingFactors = append(pc.blindingFactors, blinding)
}

// Finish helps to generate ProverCommittedG1 after commitment of all base points.
func (pc *ProverCommittingG1) Finish() *ProverCommittedG1 {
	commitment := mlutil.SumOfG1Products(pc.bases, pc.blindingFactors)

	return &ProverCommittedG1{
		bases:           pc.bases,
		blindingFactors: pc.blindingFactors,
		commitment:      commitment,
	}
}

// ProverCommittedG1 helps to generate a ProofG1.
type ProverCommittedG1 struct {
	bases           []*ml.G1
	blindingFactors []*ml.Zr
	commitment      *ml.G1
}

// Commitment returns the prover's first message.
func (g *ProverCommittedG1) Commitment() *ml.G1 {
	return g.commitment
}

// GenerateProof generates proof ProofG1 for all secrets: response = blinding + challenge * secret.
func (g *ProverCommittedG1) GenerateProof(challenge *ml.Zr, secrets []*ml.Zr) *ProofG1 {
	responses := make([]*ml.Zr, len(g.bases))

	for i := range g.blindingFactors {
		responses[i] = mlutil.Add(g.blindingFactors[i], mlutil.Mul(challenge, secrets[i]))
	}

	return &ProofG1{Responses: responses}
}

// ProofG1 is a proof of knowledge of the exponents of a public G1 element.
type ProofG1 struct {
	Responses []*ml.Zr
}

// Commitment recomputes the prover commitment sum(bases[i] * responses[i]) - public * challenge.
// The proof holds when the recomputed value hashes to the same challenge.
func (pg1 *ProofG1) Commitment(bases []*ml.G1, public *ml.G1, challenge *ml.Zr) *ml.G1 {
	points := make([]*ml.G1, 0, len(bases)+1)
	scalars := make([]*ml.Zr, 0, len(bases)+1)

	points = append(points, bases...)
	scalars = append(scalars, pg1.Responses...)

	points = append(points, public)
	scalars = append(scalars, mlutil.Neg(challenge))

	return mlutil.SumOfG1Products(points, scalars)
}
