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

// Signature is a BBS+ signature (A, e, s) with A = B * 1/(x+e).
// For a blind signature issued to a holder, S holds the issuer's share of the blinding only.
type Signature struct {
	A *ml.G1
	E *ml.Zr
	S *ml.Zr
}

// BlindSign signs the holder commitment together with the attribute messages.
// tailsBase, when not nil, is an additional G1 element folded into B; revocable credentials sign the
// accumulator base of their registry index this way.
func BlindSign(sk *PrivateKey, pk *PublicKey, commitment *BlindedCommitment, messages []*SignatureMessage,
	tailsBase *ml.G1, rng io.Reader) (*Signature, error) {
	if len(messages) != pk.MessagesCount() {
		return nil, fmt.Errorf("blind sign: %w", ErrMessageCount)
	}

	e := mlutil.RandomZr(rng)
	s := mlutil.RandomZr(rng)

	cb := mlutil.NewCommitmentBuilder(len(messages) + 2)
	cb.Add(curve.GenG1, mlutil.One())
	cb.Add(commitment.U, mlutil.One())
	cb.Add(pk.HRand, s)

	for i, m := range messages {
		cb.Add(pk.H[i], m.FR)
	}

	b := cb.Build()

	if tailsBase != nil {
		b.Add(tailsBase)
	}

	exp := mlutil.Inv(mlutil.Add(sk.X, e))

	return &Signature{
		A: b.Mul(exp),
		E: e,
		S: s,
	}, nil
}

// Unblind completes a blind signature with the holder's blinding factor.
func (sig *Signature) Unblind(blinding *ml.Zr) *Signature {
	return &Signature{
		A: sig.A.Copy(),
		E: sig.E.Copy(),
		S: mlutil.Add(sig.S, blinding),
	}
}

// Verify checks an unblinded signature over linkSecret and messages: e(A, W + g2*e) == e(B, g2).
func (sig *Signature) Verify(pk *PublicKey, linkSecret *ml.Zr, messages []*SignatureMessage,
	tailsBase *ml.G1) error {
	if len(messages) != pk.MessagesCount() {
		return fmt.Errorf("verify signature: %w", ErrMessageCount)
	}

	b := ComputeB(pk, linkSecret, sig.S, messages, tailsBase)

	q := curve.GenG2.Mul(sig.E)
	q.Add(pk.W)

	if !mlutil.CompareTwoPairings(sig.A, q, b, curve.GenG2) {
		return ErrInvalidSignature
	}

	return nil
}

// ComputeB returns g1 + HSk*linkSecret + HRand*s + sum(H[i]*m[i]) (+ tailsBase).
func ComputeB(pk *PublicKey, linkSecret, s *ml.Zr, messages []*SignatureMessage, tailsBase *ml.G1) *ml.G1 {
	cb := mlutil.NewCommitmentBuilder(len(messages) + 3)
	cb.Add(curve.GenG1, mlutil.One())
	cb.Add(pk.HSk, linkSecret)
	cb.Add(pk.HRand, s)

	for i, m := range messages {
		cb.Add(pk.H[i], m.FR)
	}

	b := cb.Build()

	if tailsBase != nil {
		b.Add(tailsBase)
	}

	return b
}
