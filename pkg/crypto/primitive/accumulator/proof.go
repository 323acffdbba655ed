/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accumulator

import (
	"fmt"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// CommitIndexBase blinds the index base of a credential: G = g_i + HRev*rho.
func CommitIndexBase(ck *CredentialKey, indexBase *ml.G1, rho *ml.Zr) *ml.G1 {
	return mlutil.AddG1(indexBase, ck.HRev.Mul(rho))
}

// NonRevocationProver proves that a blinded index base is accumulated, knowing the witness.
//
// With G = g_i + HRev*rho and W = w + HHat*rho' the prover shows knowledge of (rho, rho') such that
// e(G, acc) / (e(g1, W) * z) = e(HRev, acc)^rho * e(g1, HHat)^-rho'. The blinding of rho is shared with the
// signature proof, which binds G to the signed index base.
type NonRevocationProver struct {
	g          *ml.G1
	w          *ml.G2
	rhoPrime   *ml.Zr
	rPrime     *ml.Zr
	commitment *ml.Gt
}

// NewNonRevocationProver commits to the blinded witness. rhoBlinding must be the blinding factor the
// signature proof uses for rho.
func NewNonRevocationProver(ck *CredentialKey, acc *ml.G2, blindedBase *ml.G1, witness *ml.G2,
	rhoBlinding *ml.Zr) *NonRevocationProver {
	rhoPrime := mlutil.RandomZr(nil)
	rPrime := mlutil.RandomZr(nil)

	t := mlutil.PairingProduct(
		[]*ml.G1{ck.HRev.Mul(rhoBlinding), curve.GenG1.Mul(mlutil.Neg(rPrime))},
		[]*ml.G2{acc, ck.HHat},
	)

	return &NonRevocationProver{
		g:          blindedBase,
		w:          mlutil.AddG2(witness, ck.HHat.Mul(rhoPrime)),
		rhoPrime:   rhoPrime,
		rPrime:     rPrime,
		commitment: t,
	}
}

// AppendToTranscript adds the prover's first message to the challenge transcript.
func (p *NonRevocationProver) AppendToTranscript(t *mlutil.Transcript) {
	t.AppendG1(p.g).AppendG2(p.w).AppendGt(p.commitment)
}

// GenerateProof answers the challenge.
func (p *NonRevocationProver) GenerateProof(challenge *ml.Zr) *Proof {
	return &Proof{
		G:         p.g,
		W:         p.w,
		ZRhoPrime: mlutil.Add(p.rPrime, mlutil.Mul(challenge, p.rhoPrime)),
	}
}

// Proof is a non-revocation proof. The response for rho is carried by the signature proof.
type Proof struct {
	G         *ml.G1
	W         *ml.G2
	ZRhoPrime *ml.Zr
}

// AppendToTranscript recomputes the prover commitment against the accumulator and adds it to the transcript.
// A revoked or stale witness yields a commitment that does not hash to the challenge.
func (p *Proof) AppendToTranscript(t *mlutil.Transcript, ck *CredentialKey, pk *PublicKey, acc *ml.G2,
	zRho, challenge *ml.Zr) error {
	if p.G == nil || p.W == nil || p.ZRhoPrime == nil || zRho == nil {
		return fmt.Errorf("incomplete proof: %w", ErrInvalidProof)
	}

	first := mlutil.SubG1(ck.HRev.Mul(zRho), p.G.Mul(challenge))

	commitment := mlutil.PairingProduct(
		[]*ml.G1{first, curve.GenG1.Mul(mlutil.Neg(p.ZRhoPrime)), curve.GenG1.Mul(challenge), pk.Z1.Mul(challenge)},
		[]*ml.G2{acc, ck.HHat, p.W, pk.Z2},
	)

	t.AppendG1(p.G).AppendG2(p.W).AppendGt(commitment)

	return nil
}
