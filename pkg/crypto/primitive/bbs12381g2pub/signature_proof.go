/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub

import (
	"fmt"
	"sort"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// TailsCommitment publishes the accumulator base signed into a revocable credential in blinded form:
// Commitment = tailsBase + Base*Secret.
type TailsCommitment struct {
	Commitment *ml.G1
	Base       *ml.G1
	Secret     *ml.Zr
}

// PoKOfSignatureInput is everything a holder needs to prove possession of one signature.
type PoKOfSignatureInput struct {
	Signature  *Signature
	LinkSecret *ml.Zr
	// LinkSecretBlinding is shared by every signature proof of one presentation.
	LinkSecretBlinding *ml.Zr
	Messages           []*SignatureMessage
	// Revealed lists the indexes of disclosed messages.
	Revealed []int
	// Tails is set for revocable credentials.
	Tails *TailsCommitment
}

// PoKOfSignature is Proof of Knowledge of a Signature that is used by the prover to construct SignatureProof.
type PoKOfSignature struct {
	aPrime *ml.G1
	aBar   *ml.G1
	bPrime *ml.G1

	pokVC1   *ProverCommittedG1
	secrets1 []*ml.Zr

	pokVC2   *ProverCommittedG1
	secrets2 []*ml.Zr

	hidden           []int
	messageBlindings map[int]*ml.Zr
	tailsBlinding    *ml.Zr
}

// NewPoKOfSignature creates a new PoKOfSignature.
func NewPoKOfSignature(pk *PublicKey, in *PoKOfSignatureInput) (*PoKOfSignature, error) {
	var tailsBase *ml.G1

	if in.Tails != nil {
		tailsBase = mlutil.SubG1(in.Tails.Commitment, in.Tails.Base.Mul(in.Tails.Secret))
	}

	if err := in.Signature.Verify(pk, in.LinkSecret, in.Messages, tailsBase); err != nil {
		return nil, fmt.Errorf("verify input signature: %w", err)
	}

	revealed := make(map[int]bool, len(in.Revealed))

	for _, idx := range in.Revealed {
		if idx < 0 || idx >= len(in.Messages) {
			return nil, fmt.Errorf("revealed index %d out of range of %d messages", idx, len(in.Messages))
		}

		revealed[idx] = true
	}

	r1, r2 := mlutil.RandomZr(nil), mlutil.RandomZr(nil)
	r3 := mlutil.Inv(r1)

	b := ComputeB(pk, in.LinkSecret, in.Signature.S, in.Messages, tailsBase)
	bR1 := b.Mul(r1)

	aPrime := in.Signature.A.Mul(r1)
	aBar := mlutil.SubG1(bR1, aPrime.Mul(in.Signature.E))
	bPrime := mlutil.SubG1(bR1, pk.HRand.Mul(r2))

	sPrime := mlutil.Sub(in.Signature.S, mlutil.Mul(r2, r3))

	committing1 := NewProverCommittingG1()
	committing1.Commit(aPrime)
	committing1.Commit(pk.HRand)

	secrets1 := []*ml.Zr{mlutil.Neg(in.Signature.E), r2}

	pos := &PoKOfSignature{
		aPrime:           aPrime,
		aBar:             aBar,
		bPrime:           bPrime,
		pokVC1:           committing1.Finish(),
		secrets1:         secrets1,
		messageBlindings: make(map[int]*ml.Zr),
	}

	minusOne := mlutil.Neg(mlutil.One())

	committing2 := NewProverCommittingG1()
	committing2.Commit(bPrime)
	committing2.Commit(pk.HRand)
	committing2.CommitWith(pk.HSk.Mul(minusOne), in.LinkSecretBlinding)

	secrets2 := []*ml.Zr{r3, mlutil.Neg(sPrime), in.LinkSecret}

	for i, m := range in.Messages {
		if revealed[i] {
			continue
		}

		blinding := mlutil.RandomZr(nil)
		committing2.CommitWith(pk.H[i].Mul(minusOne), blinding)

		secrets2 = append(secrets2, m.FR)
		pos.hidden = append(pos.hidden, i)
		pos.messageBlindings[i] = blinding
	}

	if in.Tails != nil {
		pos.tailsBlinding = mlutil.RandomZr(nil)
		committing2.CommitWith(in.Tails.Base, pos.tailsBlinding)

		secrets2 = append(secrets2, in.Tails.Secret)
	}

	pos.pokVC2 = committing2.Finish()
	pos.secrets2 = secrets2

	return pos, nil
}

// MessageBlinding returns the blinding factor of a hidden message, or nil for a revealed one.
func (pos *PoKOfSignature) MessageBlinding(idx int) *ml.Zr {
	return pos.messageBlindings[idx]
}

// TailsBlinding returns the blinding factor of the tails commitment secret, nil for non-revocable credentials.
func (pos *PoKOfSignature) TailsBlinding() *ml.Zr {
	return pos.tailsBlinding
}

// AppendToTranscript adds the prover's first message to the challenge transcript.
func (pos *PoKOfSignature) AppendToTranscript(t *mlutil.Transcript) {
	t.AppendG1(pos.aPrime, pos.aBar, pos.bPrime, pos.pokVC1.Commitment(), pos.pokVC2.Commitment())
}

// GenerateProof generates SignatureProof from PoKOfSignature for the given challenge.
func (pos *PoKOfSignature) GenerateProof(challenge *ml.Zr) *SignatureProof {
	proof1 := pos.pokVC1.GenerateProof(challenge, pos.secrets1)
	proof2 := pos.pokVC2.GenerateProof(challenge, pos.secrets2)

	sp := &SignatureProof{
		APrime:      pos.aPrime,
		ABar:        pos.aBar,
		BPrime:      pos.bPrime,
		ZE:          proof1.Responses[0],
		ZR2:         proof1.Responses[1],
		ZR3:         proof2.Responses[0],
		ZS:          proof2.Responses[1],
		ZLinkSecret: proof2.Responses[2],
		ZMessages:   make(map[int]*ml.Zr, len(pos.hidden)),
	}

	const fixedResponses = 3

	for i, idx := range pos.hidden {
		sp.ZMessages[idx] = proof2.Responses[fixedResponses+i]
	}

	if pos.tailsBlinding != nil {
		sp.ZTails = proof2.Responses[len(proof2.Responses)-1]
	}

	return sp
}

// SignatureProof is the proof of knowledge of a signature sent from prover to verifier.
type SignatureProof struct {
	APrime *ml.G1
	ABar   *ml.G1
	BPrime *ml.G1

	ZE  *ml.Zr
	ZR2 *ml.Zr
	ZR3 *ml.Zr
	ZS  *ml.Zr

	ZLinkSecret *ml.Zr
	// ZMessages holds the responses of hidden messages keyed by message index.
	ZMessages map[int]*ml.Zr
	// ZTails is the response of the tails commitment secret of revocable credentials.
	ZTails *ml.Zr
}

// ProofTails is the verifier's view of a TailsCommitment.
type ProofTails struct {
	Commitment *ml.G1
	Base       *ml.G1
}

// AppendToTranscript checks the pairing equation of the proof and adds the recomputed prover commitments to
// the transcript. The proof holds when the transcript hashes to the challenge.
func (sp *SignatureProof) AppendToTranscript(t *mlutil.Transcript, pk *PublicKey,
	revealed map[int]*SignatureMessage, tails *ProofTails, challenge *ml.Zr) error {
	if err := sp.checkShape(pk, revealed, tails); err != nil {
		return err
	}

	if sp.APrime.Equals(mlutil.G1Identity()) {
		return fmt.Errorf("A' is the identity: %w", ErrInvalidProof)
	}

	if !mlutil.CompareTwoPairings(sp.APrime, pk.W, sp.ABar, curve.GenG2) {
		return fmt.Errorf("pairing check: %w", ErrInvalidProof)
	}

	proof1 := &ProofG1{Responses: []*ml.Zr{sp.ZE, sp.ZR2}}
	t1 := proof1.Commitment([]*ml.G1{sp.APrime, pk.HRand}, mlutil.SubG1(sp.ABar, sp.BPrime), challenge)

	minusOne := mlutil.Neg(mlutil.One())

	bases := []*ml.G1{sp.BPrime, pk.HRand, pk.HSk.Mul(minusOne)}
	responses := []*ml.Zr{sp.ZR3, sp.ZS, sp.ZLinkSecret}

	public := mlutil.NewCommitmentBuilder(len(revealed)+1).Add(curve.GenG1, mlutil.One())

	for _, idx := range sortedKeys(revealed) {
		public.Add(pk.H[idx], revealed[idx].FR)
	}

	for _, idx := range sortedKeys(sp.ZMessages) {
		bases = append(bases, pk.H[idx].Mul(minusOne))
		responses = append(responses, sp.ZMessages[idx])
	}

	y2 := public.Build()

	if tails != nil {
		bases = append(bases, tails.Base)
		responses = append(responses, sp.ZTails)
		y2.Add(tails.Commitment)
	}

	proof2 := &ProofG1{Responses: responses}
	t2 := proof2.Commitment(bases, y2, challenge)

	t.AppendG1(sp.APrime, sp.ABar, sp.BPrime, t1, t2)

	return nil
}

func (sp *SignatureProof) checkShape(pk *PublicKey, revealed map[int]*SignatureMessage, tails *ProofTails) error {
	if sp.APrime == nil || sp.ABar == nil || sp.BPrime == nil || sp.ZE == nil || sp.ZR2 == nil ||
		sp.ZR3 == nil || sp.ZS == nil || sp.ZLinkSecret == nil {
		return fmt.Errorf("incomplete signature proof: %w", ErrInvalidProof)
	}

	if len(revealed)+len(sp.ZMessages) != pk.MessagesCount() {
		return fmt.Errorf("revealed and hidden messages do not cover the key: %w", ErrMessageCount)
	}

	for idx, z := range sp.ZMessages {
		if idx < 0 || idx >= pk.MessagesCount() || z == nil {
			return fmt.Errorf("hidden message %d: %w", idx, ErrInvalidProof)
		}

		if _, ok := revealed[idx]; ok {
			return fmt.Errorf("message %d is both revealed and hidden: %w", idx, ErrInvalidProof)
		}
	}

	for idx := range revealed {
		if idx < 0 || idx >= pk.MessagesCount() {
			return fmt.Errorf("revealed message %d: %w", idx, ErrInvalidProof)
		}
	}

	if (tails == nil) != (sp.ZTails == nil) {
		return fmt.Errorf("tails commitment mismatch: %w", ErrInvalidProof)
	}

	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Ints(keys)

	return keys
}
