/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"errors"
	"fmt"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/encoding"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/rangeproof"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// rejection is a verification failure. It is reported as false, not as an error.
type rejection struct {
	reason string
}

func (r *rejection) Error() string {
	return r.reason
}

func reject(format string, args ...interface{}) error {
	return &rejection{reason: fmt.Sprintf(format, args...)}
}

type verifier struct {
	pres        *Presentation
	presReq     *PresentationRequest
	revRegDefs  map[string]*RevocationRegistryDefinition
	statusLists []*RevocationStatusList
	overrides   []NonRevokedIntervalOverride
	subProofs   []*subProofCheck
}

type subProofCheck struct {
	id      *acdoc.Identifier
	proof   *acdoc.SubProof
	schema  *Schema
	credDef *CredentialDefinition

	revealed    map[int]*bbs.SignatureMessage
	revealedRaw map[string]string
	// predicateIndexes holds the attribute index of each predicate proof, -1 until a referent claims it.
	predicateIndexes []int

	intervals    []*acdoc.NonRevokedInterval
	restrictions [][]acdoc.Restriction

	revRegDef  *RevocationRegistryDefinition
	statusList *RevocationStatusList
}

// VerifyPresentation checks pres against presReq. schemas, credDefs and revRegDefs are keyed by id, status
// lists are matched by registry and timestamp. An invalid presentation yields false with a nil error; errors
// report malformed or missing inputs.
func VerifyPresentation(pres *Presentation, presReq *PresentationRequest, schemas map[string]*Schema,
	credDefs map[string]*CredentialDefinition, revRegDefs map[string]*RevocationRegistryDefinition,
	statusLists []*RevocationStatusList, overrides []NonRevokedIntervalOverride) (bool, error) {
	if pres == nil || presReq == nil {
		return false, errcode.Newf(errcode.InvalidRequest, "presentation and request are required")
	}

	if err := presReq.Validate(); err != nil {
		return false, errcode.New(errcode.InvalidRequest, err)
	}

	if err := pres.Validate(); err != nil {
		return false, errcode.New(errcode.Input, err)
	}

	v := &verifier{
		pres:        pres,
		presReq:     presReq,
		revRegDefs:  revRegDefs,
		statusLists: statusLists,
		overrides:   overrides,
	}

	err := v.verify(schemas, credDefs)

	var r *rejection
	if errors.As(err, &r) {
		logger.Warnf("presentation %q rejected: %s", presReq.Name, r.reason)

		return false, nil
	}

	if err != nil {
		return false, err
	}

	logger.Debugf("verified presentation %q", presReq.Name)

	return true, nil
}

func (v *verifier) verify(schemas map[string]*Schema, credDefs map[string]*CredentialDefinition) error {
	if err := v.loadSubProofs(schemas, credDefs); err != nil {
		return err
	}

	if err := v.checkReferents(); err != nil {
		return err
	}

	for i, sp := range v.subProofs {
		for _, p := range sp.predicateIndexes {
			if p < 0 {
				return reject("sub proof %d carries a predicate proof no referent asks for", i)
			}
		}

		if err := sp.checkRestrictions(); err != nil {
			return err
		}

		if err := v.checkRevocation(sp); err != nil {
			return err
		}
	}

	return v.checkChallenge()
}

func (v *verifier) loadSubProofs(schemas map[string]*Schema, credDefs map[string]*CredentialDefinition) error {
	for i, proof := range v.pres.Proof.Proofs {
		id := &v.pres.Identifiers[i]

		schema, ok := schemas[id.SchemaID]
		if !ok || schema == nil {
			return errcode.Newf(errcode.MissingPublicInput, "schema %s", id.SchemaID)
		}

		credDef, ok := credDefs[id.CredDefID]
		if !ok || credDef == nil {
			return errcode.Newf(errcode.MissingPublicInput, "credential definition %s", id.CredDefID)
		}

		if credDef.Value.Primary == nil {
			return errcode.Newf(errcode.Input, "credential definition %s has no primary key", id.CredDefID)
		}

		if credDef.SchemaID != id.SchemaID {
			return reject("credential definition %s is not for schema %s", id.CredDefID, id.SchemaID)
		}

		indexes := make([]int, len(proof.Predicates))
		for k := range indexes {
			indexes[k] = -1
		}

		v.subProofs = append(v.subProofs, &subProofCheck{
			id:               id,
			proof:            proof,
			schema:           schema,
			credDef:          credDef,
			revealed:         map[int]*bbs.SignatureMessage{},
			revealedRaw:      map[string]string{},
			predicateIndexes: indexes,
		})
	}

	return nil
}

func (v *verifier) subProof(index int) (*subProofCheck, error) {
	if index < 0 || index >= len(v.subProofs) {
		return nil, reject("sub proof index %d out of range", index)
	}

	return v.subProofs[index], nil
}

// checkReferents matches every referent of the request with exactly one answer and collects what each sub
// proof has to show.
func (v *verifier) checkReferents() error {
	if err := v.checkCoverage(); err != nil {
		return err
	}

	rp := &v.pres.RequestedProof

	for ref, attr := range rp.RevealedAttrs {
		info := v.presReq.RequestedAttributes[ref]
		if info.Name == "" {
			return reject("%q requests a group of names", ref)
		}

		sp, err := v.subProof(attr.SubProofIndex)
		if err != nil {
			return err
		}

		if err = sp.reveal(info.Name, attr.Raw, attr.Encoded); err != nil {
			return err
		}

		sp.addReferent(info.Restrictions, v.presReq.AttributeInterval(ref))
	}

	for ref, group := range rp.RevealedAttrGroups {
		info := v.presReq.RequestedAttributes[ref]
		if len(info.Names) == 0 || len(group.Values) != len(info.Names) {
			return reject("group %q does not answer the requested names", ref)
		}

		sp, err := v.subProof(group.SubProofIndex)
		if err != nil {
			return err
		}

		for _, name := range info.Names {
			_, value, ok := acdoc.CredentialValues(group.Values).Lookup(name)
			if !ok {
				return reject("group %q misses %q", ref, name)
			}

			if err = sp.reveal(name, value.Raw, value.Encoded); err != nil {
				return err
			}
		}

		sp.addReferent(info.Restrictions, v.presReq.AttributeInterval(ref))
	}

	for ref, sref := range rp.UnrevealedAttrs {
		info := v.presReq.RequestedAttributes[ref]

		sp, err := v.subProof(sref.SubProofIndex)
		if err != nil {
			return err
		}

		for _, name := range info.AttrNames() {
			if sp.credDef.AttributeIndex(name) < 0 {
				return reject("credential definition %s has no attribute %q", sp.id.CredDefID, name)
			}
		}

		sp.addReferent(info.Restrictions, v.presReq.AttributeInterval(ref))
	}

	for ref := range rp.SelfAttestedAttrs {
		if len(v.presReq.RequestedAttributes[ref].Restrictions) > 0 {
			return reject("self-attested %q has restrictions", ref)
		}
	}

	for ref, info := range v.presReq.RequestedPredicates {
		sp, err := v.subProof(rp.Predicates[ref].SubProofIndex)
		if err != nil {
			return err
		}

		if err = sp.claimPredicate(ref, &info); err != nil {
			return err
		}

		sp.addReferent(info.Restrictions, v.presReq.PredicateInterval(ref))
	}

	return nil
}

func (v *verifier) checkCoverage() error {
	rp := &v.pres.RequestedProof

	for ref := range v.presReq.RequestedAttributes {
		answers := 0

		if _, ok := rp.RevealedAttrs[ref]; ok {
			answers++
		}

		if _, ok := rp.RevealedAttrGroups[ref]; ok {
			answers++
		}

		if _, ok := rp.UnrevealedAttrs[ref]; ok {
			answers++
		}

		if _, ok := rp.SelfAttestedAttrs[ref]; ok {
			answers++
		}

		if answers != 1 {
			return reject("requested attribute %q has %d answers", ref, answers)
		}
	}

	answered := len(rp.RevealedAttrs) + len(rp.RevealedAttrGroups) + len(rp.UnrevealedAttrs) +
		len(rp.SelfAttestedAttrs)
	if answered != len(v.presReq.RequestedAttributes) {
		return reject("presentation answers attributes that were not requested")
	}

	for ref := range v.presReq.RequestedPredicates {
		if _, ok := rp.Predicates[ref]; !ok {
			return reject("requested predicate %q is not answered", ref)
		}
	}

	if len(rp.Predicates) != len(v.presReq.RequestedPredicates) {
		return reject("presentation answers predicates that were not requested")
	}

	return nil
}

func (sp *subProofCheck) addReferent(restrictions []acdoc.Restriction, interval *acdoc.NonRevokedInterval) {
	sp.restrictions = append(sp.restrictions, restrictions)
	sp.intervals = append(sp.intervals, interval)
}

func (sp *subProofCheck) reveal(name, raw, encoded string) error {
	idx := sp.credDef.AttributeIndex(name)
	if idx < 0 {
		return reject("credential definition %s has no attribute %q", sp.id.CredDefID, name)
	}

	if encoding.Encode(raw) != encoded {
		return reject("encoded value of %q does not match its raw value", name)
	}

	msg, err := bbs.ParseSignatureMessage(encoded)
	if err != nil {
		return reject("encoded value of %q: %v", name, err)
	}

	if prev, ok := sp.revealed[idx]; ok && !prev.FR.Equals(msg.FR) {
		return reject("attribute %q is revealed with two values", name)
	}

	sp.revealed[idx] = msg
	sp.revealedRaw[acdoc.NormalizeAttrName(name)] = raw

	return nil
}

func (sp *subProofCheck) claimPredicate(ref string, info *acdoc.PredicateInfo) error {
	pType, err := rangeproof.ParsePredicateType(info.PType)
	if err != nil {
		return errcode.New(errcode.InvalidRequest, err)
	}

	idx := sp.credDef.AttributeIndex(info.Name)
	if idx < 0 {
		return reject("credential definition %s has no attribute %q", sp.id.CredDefID, info.Name)
	}

	if _, ok := sp.revealed[idx]; ok {
		return reject("predicate %q is over a revealed attribute", ref)
	}

	norm := acdoc.NormalizeAttrName(info.Name)

	for k, pp := range sp.proof.Predicates {
		if sp.predicateIndexes[k] >= 0 || pp == nil || acdoc.NormalizeAttrName(pp.AttrName) != norm ||
			pp.Value != info.PValue {
			continue
		}

		if pt, err := rangeproof.ParsePredicateType(pp.PType); err != nil || pt != pType {
			continue
		}

		sp.predicateIndexes[k] = idx

		return nil
	}

	return reject("no proof for predicate %q", ref)
}

func (sp *subProofCheck) checkRestrictions() error {
	subject := &restrictionSubject{
		schemaID:  sp.id.SchemaID,
		schema:    sp.schema,
		credDefID: sp.id.CredDefID,
		credDef:   sp.credDef,
		revRegID:  sp.id.RevRegID,
		revealed:  sp.revealedRaw,
	}

	for _, restrictions := range sp.restrictions {
		ok, err := matchRestrictions(restrictions, subject)
		if err != nil {
			return err
		}

		if !ok {
			return reject("credential of %s does not satisfy the restrictions", sp.id.CredDefID)
		}
	}

	return nil
}

func (v *verifier) checkRevocation(sp *subProofCheck) error {
	proof := sp.proof

	if !sp.credDef.SupportsRevocation() {
		if proof.NonRevocProof != nil || proof.BlindedIndexBase != nil || sp.id.RevRegID != "" {
			return reject("credential definition %s does not support revocation", sp.id.CredDefID)
		}

		return nil
	}

	if proof.BlindedIndexBase == nil || proof.BlindedIndexBase.Point == nil || sp.id.RevRegID == "" {
		return reject("revocable credential of %s without registry binding", sp.id.CredDefID)
	}

	nonRev := proof.NonRevocProof
	if nonRev == nil {
		for _, interval := range sp.intervals {
			if interval != nil {
				return reject("missing non-revocation proof for %s", sp.id.RevRegID)
			}
		}

		return nil
	}

	if sp.id.Timestamp == nil {
		return reject("non-revocation proof for %s without timestamp", sp.id.RevRegID)
	}

	ts := *sp.id.Timestamp

	revRegDef, ok := v.revRegDefs[sp.id.RevRegID]
	if !ok || revRegDef == nil {
		return errcode.Newf(errcode.MissingPublicInput, "revocation registry definition %s", sp.id.RevRegID)
	}

	if revRegDef.CredDefID != sp.id.CredDefID {
		return reject("registry %s does not belong to %s", sp.id.RevRegID, sp.id.CredDefID)
	}

	if revRegDef.Value.PublicKeys.AccumKey == nil {
		return errcode.Newf(errcode.Input, "revocation registry definition %s has no accumulator key",
			sp.id.RevRegID)
	}

	statusList := v.statusList(sp.id.RevRegID, ts)
	if statusList == nil {
		return errcode.Newf(errcode.MissingPublicInput, "revocation status list of %s at %d", sp.id.RevRegID, ts)
	}

	for _, interval := range sp.intervals {
		if !v.intervalContains(sp.id.RevRegID, interval, ts) {
			return reject("status list of %s at %d is outside the requested interval", sp.id.RevRegID, ts)
		}
	}

	if nonRev.G == nil || !nonRev.G.Equals(proof.BlindedIndexBase.Point) {
		return reject("non-revocation proof of %s is over another index base", sp.id.RevRegID)
	}

	sp.revRegDef = revRegDef
	sp.statusList = statusList

	return nil
}

func (v *verifier) statusList(revRegDefID string, timestamp int64) *RevocationStatusList {
	for _, l := range v.statusLists {
		if l != nil && l.RevRegDefID == revRegDefID && l.Timestamp == timestamp {
			return l
		}
	}

	return nil
}

// intervalContains checks ts against interval. An override for the interval start moves it to the override
// timestamp.
func (v *verifier) intervalContains(revRegDefID string, interval *acdoc.NonRevokedInterval, ts int64) bool {
	if interval == nil {
		return true
	}

	effective := *interval

	if interval.From != nil {
		for _, o := range v.overrides {
			if o.RevRegDefID == revRegDefID && o.RequestedFromTs == *interval.From {
				from := o.OverrideRevStatusListTs
				effective.From = &from
			}
		}
	}

	return effective.Contains(ts)
}

// checkChallenge replays the transcript of the prover.
func (v *verifier) checkChallenge() error {
	c := v.pres.Proof.AggregatedProof.C
	if c == nil {
		return reject("missing challenge")
	}

	t := newPresentationTranscript(v.presReq.Nonce, len(v.subProofs))

	// Sub proofs share the link secret blinding and the challenge, so one holder yields one response.
	var linkSecretResponse *ml.Zr

	for i, sp := range v.subProofs {
		credDef := sp.credDef
		primary := sp.proof.PrimaryProof

		if primary.ZLinkSecret == nil {
			return reject("sub proof %d: missing link secret response", i)
		}

		if linkSecretResponse == nil {
			linkSecretResponse = primary.ZLinkSecret
		} else if !primary.ZLinkSecret.Equals(linkSecretResponse) {
			return reject("sub proof %d: link secret differs from sub proof 0", i)
		}

		var (
			blindedBase *ml.G1
			tailsView   *bbs.ProofTails
		)

		if sp.proof.BlindedIndexBase != nil {
			blindedBase = sp.proof.BlindedIndexBase.Point
			tailsView = &bbs.ProofTails{Commitment: blindedBase, Base: credDef.Value.Revocation.HRev}
		}

		appendSubProofHeader(t, sp.id, sp.revealed, blindedBase)

		if err := primary.AppendToTranscript(t, credDef.Value.Primary, sp.revealed, tailsView, c); err != nil {
			return reject("sub proof %d: %v", i, err)
		}

		if nonRev := sp.proof.NonRevocProof; nonRev != nil {
			err := nonRev.AppendToTranscript(t, credDef.Value.Revocation, sp.revRegDef.Value.PublicKeys.AccumKey,
				sp.statusList.CurrentAccumulator, primary.ZTails, c)
			if err != nil {
				return reject("sub proof %d: %v", i, err)
			}
		}

		gens := predicateGenerators(credDef)

		for k, pp := range sp.proof.Predicates {
			if pp.Proof == nil {
				return reject("sub proof %d: predicate %d has no proof", i, k)
			}

			pType, err := rangeproof.ParsePredicateType(pp.PType)
			if err != nil {
				return reject("sub proof %d: %v", i, err)
			}

			idx := sp.predicateIndexes[k]

			appendPredicateHeader(t, idx, pType, pp.Value)

			err = pp.Proof.AppendToTranscript(t, gens, pType, int64(pp.Value), primary.ZMessages[idx], c)
			if err != nil {
				return reject("sub proof %d: predicate on %q: %v", i, pp.AttrName, err)
			}
		}
	}

	if !t.Challenge().Equals(c) {
		return reject("challenge mismatch")
	}

	return nil
}
