/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/encoding"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/rangeproof"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

type predicateRequest struct {
	referent  string
	attrName  string
	attrIndex int
	pType     rangeproof.PredicateType
	value     int32
	bound     int32
}

// subProofBuilder collects what one credential has to prove.
type subProofBuilder struct {
	entry    *CredentialEntry
	credDef  *CredentialDefinition
	messages []*bbs.SignatureMessage

	identifier acdoc.Identifier
	revealed   map[int]*bbs.SignatureMessage
	predicates []*predicateRequest
	nonRevoked bool

	pok          *bbs.PoKOfSignature
	tails        *bbs.TailsCommitment
	nonRevProver *accumulator.NonRevocationProver
	rangeProvers []*rangeproof.Prover
}

// CreatePresentation proves the referents of presReq from the credential entries named by proves. Self-attested
// values answer requested attributes without restrictions. schemas and credDefs are keyed by id.
func CreatePresentation(presReq *PresentationRequest, entries []*CredentialEntry, proves []*CredentialProve,
	selfAttested map[string]string, linkSecret *LinkSecret, schemas map[string]*Schema,
	credDefs map[string]*CredentialDefinition) (*Presentation, error) {
	pres, _, err := createPresentation(presReq, entries, proves, selfAttested, linkSecret, schemas, credDefs)

	return pres, err
}

// createPresentation also returns the entry index each sub proof is built from.
func createPresentation(presReq *PresentationRequest, entries []*CredentialEntry, proves []*CredentialProve,
	selfAttested map[string]string, linkSecret *LinkSecret, schemas map[string]*Schema,
	credDefs map[string]*CredentialDefinition) (*Presentation, []int, error) {
	if presReq == nil || linkSecret == nil {
		return nil, nil, errcode.Newf(errcode.InvalidRequest, "presentation request and link secret are required")
	}

	if err := presReq.Validate(); err != nil {
		return nil, nil, errcode.New(errcode.InvalidRequest, err)
	}

	requested := &acdoc.RequestedProof{
		RevealedAttrs:     map[string]acdoc.RevealedAttribute{},
		SelfAttestedAttrs: map[string]string{},
		UnrevealedAttrs:   map[string]acdoc.SubProofReferent{},
		Predicates:        map[string]acdoc.SubProofReferent{},
	}

	if err := addSelfAttested(presReq, proves, selfAttested, requested); err != nil {
		return nil, nil, err
	}

	builders, order, err := newSubProofBuilders(presReq, entries, proves, schemas, credDefs)
	if err != nil {
		return nil, nil, err
	}

	for _, p := range proves {
		if err = builders[p.EntryIndex].addReferent(presReq, p, slices.Index(order, p.EntryIndex), requested); err != nil {
			return nil, nil, err
		}
	}

	linkSecretBlinding := mlutil.RandomZr(nil)
	t := newPresentationTranscript(presReq.Nonce, len(order))

	for _, idx := range order {
		if err = builders[idx].commit(t, linkSecret.Scalar(), linkSecretBlinding); err != nil {
			return nil, nil, err
		}
	}

	c := t.Challenge()

	pres := &acdoc.Presentation{
		Proof:          acdoc.PresentationProof{AggregatedProof: acdoc.AggregatedProof{C: c}},
		RequestedProof: *requested,
	}

	for _, idx := range order {
		b := builders[idx]
		pres.Proof.Proofs = append(pres.Proof.Proofs, b.respond(c))
		pres.Identifiers = append(pres.Identifiers, b.identifier)
	}

	if len(requested.RevealedAttrGroups) == 0 {
		pres.RequestedProof.RevealedAttrGroups = nil
	}

	logger.Debugf("created presentation %q over %d credentials", presReq.Name, len(order))

	return pres, order, nil
}

func addSelfAttested(presReq *PresentationRequest, proves []*CredentialProve, selfAttested map[string]string,
	requested *acdoc.RequestedProof) error {
	for ref, value := range selfAttested {
		info, ok := presReq.RequestedAttributes[ref]
		if !ok {
			return errcode.Newf(errcode.InvalidRequest, "self-attested %q is not a requested attribute", ref)
		}

		if len(info.Restrictions) > 0 {
			return errcode.Newf(errcode.InvalidRequest, "requested attribute %q has restrictions and cannot be "+
				"self-attested", ref)
		}

		for _, p := range proves {
			if !p.IsPredicate && p.Referent == ref {
				return errcode.Newf(errcode.InvalidRequest, "attribute %q is both proven and self-attested", ref)
			}
		}

		requested.SelfAttestedAttrs[ref] = value
	}

	return nil
}

// newSubProofBuilders returns a builder per used entry and the entry indexes in sub proof order.
func newSubProofBuilders(presReq *PresentationRequest, entries []*CredentialEntry, proves []*CredentialProve,
	schemas map[string]*Schema, credDefs map[string]*CredentialDefinition) (map[int]*subProofBuilder, []int,
	error) {
	builders := map[int]*subProofBuilder{}

	for _, p := range proves {
		if p == nil || p.EntryIndex < 0 || p.EntryIndex >= len(entries) || entries[p.EntryIndex] == nil ||
			entries[p.EntryIndex].Credential == nil {
			return nil, nil, errcode.Newf(errcode.InvalidRequest, "prove references a missing credential entry")
		}

		if _, ok := builders[p.EntryIndex]; ok {
			continue
		}

		b, err := newSubProofBuilder(entries[p.EntryIndex], schemas, credDefs)
		if err != nil {
			return nil, nil, err
		}

		builders[p.EntryIndex] = b
	}

	order := maps.Keys(builders)
	slices.Sort(order)

	for _, p := range proves {
		interval := presReq.AttributeInterval(p.Referent)
		if p.IsPredicate {
			interval = presReq.PredicateInterval(p.Referent)
		}

		b := builders[p.EntryIndex]
		if interval != nil && b.credDef.SupportsRevocation() {
			b.nonRevoked = true
		}
	}

	for _, idx := range order {
		if err := builders[idx].setTimestamp(); err != nil {
			return nil, nil, err
		}
	}

	return builders, order, nil
}

func newSubProofBuilder(entry *CredentialEntry, schemas map[string]*Schema,
	credDefs map[string]*CredentialDefinition) (*subProofBuilder, error) {
	cred := entry.Credential

	if _, ok := schemas[cred.SchemaID]; !ok {
		return nil, errcode.Newf(errcode.MissingPublicInput, "schema %s", cred.SchemaID)
	}

	credDef, ok := credDefs[cred.CredDefID]
	if !ok {
		return nil, errcode.Newf(errcode.MissingPublicInput, "credential definition %s", cred.CredDefID)
	}

	if cred.IsRevocable() != credDef.SupportsRevocation() {
		return nil, errcode.Newf(errcode.InvalidRequest, "credential and definition %s disagree on revocation",
			cred.CredDefID)
	}

	messages, err := signatureMessages(credDef, cred.Values)
	if err != nil {
		return nil, err
	}

	return &subProofBuilder{
		entry:    entry,
		credDef:  credDef,
		messages: messages,
		identifier: acdoc.Identifier{
			SchemaID:  cred.SchemaID,
			CredDefID: cred.CredDefID,
			RevRegID:  cred.RevRegID,
		},
		revealed: map[int]*bbs.SignatureMessage{},
	}, nil
}

func (b *subProofBuilder) setTimestamp() error {
	if !b.nonRevoked {
		return nil
	}

	state := b.entry.RevocationState
	if state == nil || state.Witness == nil || state.Accumulator == nil {
		return errcode.Newf(errcode.InvalidRequest, "credential of %s needs a revocation state",
			b.identifier.RevRegID)
	}

	if b.entry.Timestamp != nil && *b.entry.Timestamp != state.Timestamp {
		return errcode.Newf(errcode.InvalidRequest, "entry timestamp %d differs from revocation state %d",
			*b.entry.Timestamp, state.Timestamp)
	}

	ts := state.Timestamp
	b.identifier.Timestamp = &ts

	return nil
}

func (b *subProofBuilder) addReferent(presReq *PresentationRequest, p *CredentialProve, subProofIndex int,
	requested *acdoc.RequestedProof) error {
	if p.IsPredicate {
		return b.addPredicate(presReq, p, subProofIndex, requested)
	}

	info, ok := presReq.RequestedAttributes[p.Referent]
	if !ok {
		return errcode.Newf(errcode.InvalidRequest, "%q is not a requested attribute", p.Referent)
	}

	if b.nonRevoked && !presReq.AttributeInterval(p.Referent).Contains(b.timestamp()) {
		logger.Warnf("revocation state of %q is outside the requested interval", p.Referent)
	}

	group := acdoc.RevealedAttributeGroup{SubProofIndex: subProofIndex, Values: map[string]acdoc.AttributeValue{}}

	for _, name := range info.AttrNames() {
		idx := b.credDef.AttributeIndex(name)
		if idx < 0 {
			return errcode.Newf(errcode.InvalidRequest, "credential has no attribute %q for %q", name, p.Referent)
		}

		_, value, _ := b.entry.Credential.Values.Lookup(name)

		if !p.Reveal {
			continue
		}

		b.revealed[idx] = b.messages[idx]

		if info.Name != "" {
			requested.RevealedAttrs[p.Referent] = acdoc.RevealedAttribute{
				SubProofIndex: subProofIndex,
				Raw:           value.Raw,
				Encoded:       value.Encoded,
			}
		} else {
			group.Values[name] = value
		}
	}

	switch {
	case !p.Reveal:
		requested.UnrevealedAttrs[p.Referent] = acdoc.SubProofReferent{SubProofIndex: subProofIndex}
	case info.Name == "":
		if requested.RevealedAttrGroups == nil {
			requested.RevealedAttrGroups = map[string]acdoc.RevealedAttributeGroup{}
		}

		requested.RevealedAttrGroups[p.Referent] = group
	}

	return nil
}

func (b *subProofBuilder) addPredicate(presReq *PresentationRequest, p *CredentialProve, subProofIndex int,
	requested *acdoc.RequestedProof) error {
	info, ok := presReq.RequestedPredicates[p.Referent]
	if !ok {
		return errcode.Newf(errcode.InvalidRequest, "%q is not a requested predicate", p.Referent)
	}

	pType, err := rangeproof.ParsePredicateType(info.PType)
	if err != nil {
		return errcode.New(errcode.InvalidRequest, err)
	}

	idx := b.credDef.AttributeIndex(info.Name)
	if idx < 0 {
		return errcode.Newf(errcode.InvalidRequest, "credential has no attribute %q for %q", info.Name, p.Referent)
	}

	_, value, _ := b.entry.Credential.Values.Lookup(info.Name)

	v, ok := encoding.Int32(value.Encoded)
	if !ok {
		return errcode.Newf(errcode.PredicateNotSatisfied, "attribute %q is not a 32-bit integer", info.Name)
	}

	if !rangeproof.Satisfied(pType, int64(v), int64(info.PValue)) {
		return errcode.Newf(errcode.PredicateNotSatisfied, "%s %s %d does not hold", info.Name, pType, info.PValue)
	}

	b.predicates = append(b.predicates, &predicateRequest{
		referent:  p.Referent,
		attrName:  acdoc.NormalizeAttrName(info.Name),
		attrIndex: idx,
		pType:     pType,
		value:     v,
		bound:     info.PValue,
	})

	requested.Predicates[p.Referent] = acdoc.SubProofReferent{SubProofIndex: subProofIndex}

	return nil
}

func (b *subProofBuilder) timestamp() int64 {
	if b.identifier.Timestamp == nil {
		return 0
	}

	return *b.identifier.Timestamp
}

// commit builds the first message of every proof of the credential and appends it to t.
func (b *subProofBuilder) commit(t *mlutil.Transcript, linkSecret, linkSecretBlinding *ml.Zr) error {
	for _, pr := range b.predicates {
		if _, ok := b.revealed[pr.attrIndex]; ok {
			return errcode.Newf(errcode.InvalidRequest, "attribute %q is revealed and used in predicate %q",
				pr.attrName, pr.referent)
		}
	}

	cred := b.entry.Credential

	var blindedBase *ml.G1

	if cred.IsRevocable() {
		rho := mlutil.RandomZr(nil)
		blindedBase = accumulator.CommitIndexBase(b.credDef.Value.Revocation, cred.Revocation.IndexBase, rho)
		b.tails = &bbs.TailsCommitment{Commitment: blindedBase, Base: b.credDef.Value.Revocation.HRev, Secret: rho}
	}

	pok, err := bbs.NewPoKOfSignature(b.credDef.Value.Primary, &bbs.PoKOfSignatureInput{
		Signature:          cred.Signature,
		LinkSecret:         linkSecret,
		LinkSecretBlinding: linkSecretBlinding,
		Messages:           b.messages,
		Revealed:           maps.Keys(b.revealed),
		Tails:              b.tails,
	})
	if err != nil {
		return errcode.Newf(errcode.CredentialValidationFailed, "credential of %s: %w", cred.CredDefID, err)
	}

	b.pok = pok

	appendSubProofHeader(t, &b.identifier, b.revealed, blindedBase)
	pok.AppendToTranscript(t)

	if b.nonRevoked {
		state := b.entry.RevocationState
		b.nonRevProver = accumulator.NewNonRevocationProver(b.credDef.Value.Revocation, state.Accumulator,
			blindedBase, state.Witness, pok.TailsBlinding())
		b.nonRevProver.AppendToTranscript(t)
	}

	gens := predicateGenerators(b.credDef)

	for _, pr := range b.predicates {
		prover, err := rangeproof.NewProver(gens, pr.pType, int64(pr.value), int64(pr.bound),
			pok.MessageBlinding(pr.attrIndex))
		if err != nil {
			return errcode.New(errcode.PredicateNotSatisfied, err)
		}

		appendPredicateHeader(t, pr.attrIndex, pr.pType, pr.bound)
		prover.AppendToTranscript(t)

		b.rangeProvers = append(b.rangeProvers, prover)
	}

	return nil
}

func (b *subProofBuilder) respond(c *ml.Zr) *acdoc.SubProof {
	sp := &acdoc.SubProof{PrimaryProof: b.pok.GenerateProof(c)}

	if b.tails != nil {
		sp.BlindedIndexBase = &acdoc.G1Point{Point: b.tails.Commitment}
	}

	if b.nonRevProver != nil {
		sp.NonRevocProof = b.nonRevProver.GenerateProof(c)
	}

	for i, pr := range b.predicates {
		sp.Predicates = append(sp.Predicates, &acdoc.PredicateProof{
			AttrName: pr.attrName,
			PType:    string(pr.pType),
			Value:    pr.bound,
			Proof:    b.rangeProvers[i].GenerateProof(c),
		})
	}

	return sp
}

func predicateGenerators(credDef *CredentialDefinition) *rangeproof.Generators {
	return &rangeproof.Generators{G: mlutil.Curve().GenG1, H: credDef.Value.Primary.HRand}
}
