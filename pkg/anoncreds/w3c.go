/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/encoding"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
	"github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds/w3c"
)

const uuidURNPrefix = "urn:uuid:"

// W3CCredentialEntry is a W3C credential available to a presentation, with the revocation state to prove it
// unrevoked at Timestamp.
type W3CCredentialEntry struct {
	Credential      *w3c.Credential
	Timestamp       *int64
	RevocationState *RevocationState
}

// CredentialToW3C maps a credential onto the W3C data model of version, 1.1 when empty. Attribute values must
// be canonically encoded. The issuance date is set by WithIssuanceDate and defaults to now.
func CredentialToW3C(cred *Credential, issuerID, version string, opts ...Opt) (*w3c.Credential, error) {
	o := applyOptions(opts)

	if cred == nil || cred.Signature == nil || issuerID == "" {
		return nil, errcode.Newf(errcode.InvalidRequest, "credential with a signature and issuer id are required")
	}

	if version == "" {
		version = W3CVersion11
	}

	subject := make(map[string]interface{}, len(cred.Values))

	for name, v := range cred.Values {
		if v.Encoded != encoding.Encode(v.Raw) {
			return nil, errcode.Newf(errcode.InvalidRequest, "attribute %q is not canonically encoded", name)
		}

		subject[name] = v.Raw
	}

	wc, err := w3c.NewCredential(version, issuerID, o.issued(), &w3c.CredentialSchema{
		Type:       w3c.TypeCredentialSchema,
		Definition: cred.CredDefID,
		Schema:     cred.SchemaID,
		Revocation: cred.RevRegID,
		Encoding:   w3c.EncodingAuto,
	}, subject)
	if err != nil {
		return nil, err
	}

	wc.ID = uuidURNPrefix + uuid.NewString()

	wc.Proof, err = w3c.NewProof(w3c.CryptosuiteSignature, w3c.PurposeAssertionMethod, cred.CredDefID,
		signatureProofValue(cred))
	if err != nil {
		return nil, err
	}

	return wc, nil
}

func signatureProofValue(cred *Credential) *w3c.SignatureProofValue {
	return &w3c.SignatureProofValue{
		Signature:  cred.Signature,
		RevRegID:   cred.RevRegID,
		Revocation: cred.Revocation,
	}
}

// CredentialFromW3C recovers the credential a W3C credential was mapped from.
func CredentialFromW3C(wc *w3c.Credential) (*Credential, error) {
	if wc == nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "W3C credential is required")
	}

	if err := wc.Validate(); err != nil {
		return nil, err
	}

	payload, err := wc.SignatureProof()
	if err != nil {
		return nil, err
	}

	attrs, err := wc.Attributes()
	if err != nil {
		return nil, err
	}

	values := make(acdoc.CredentialValues, len(attrs))

	for name, raw := range attrs {
		values[name] = acdoc.AttributeValue{Raw: raw, Encoded: encoding.Encode(raw)}
	}

	return &acdoc.Credential{
		SchemaID:   wc.CredentialSchema.Schema,
		CredDefID:  wc.CredentialSchema.Definition,
		RevRegID:   payload.RevRegID,
		Values:     values,
		Signature:  payload.Signature,
		Revocation: payload.Revocation,
	}, nil
}

// CreateW3CCredential issues a credential in the W3C data model of the WithW3CVersion version. Values are
// always encoded canonically.
func CreateW3CCredential(credDef *CredentialDefinition, credDefPrivate *CredentialDefinitionPrivate,
	offer *CredentialOffer, request *CredentialRequest, rawValues map[string]string,
	opts ...Opt) (*w3c.Credential, error) {
	o := applyOptions(opts)

	if o.encodedValues != nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "W3C credentials encode attribute values canonically")
	}

	cred, err := CreateCredential(credDef, credDefPrivate, offer, request, rawValues, opts...)
	if err != nil {
		return nil, err
	}

	return CredentialToW3C(cred, credDef.IssuerID, o.w3cVersion, opts...)
}

// ProcessW3CCredential unblinds and verifies an issued W3C credential like ProcessCredential. Only the proof
// value of the returned credential differs from wc.
func ProcessW3CCredential(wc *w3c.Credential, metadata *CredentialRequestMetadata, linkSecret *LinkSecret,
	credDef *CredentialDefinition, revRegDef *RevocationRegistryDefinition) (*w3c.Credential, error) {
	cred, err := CredentialFromW3C(wc)
	if err != nil {
		return nil, err
	}

	processed, err := ProcessCredential(cred, metadata, linkSecret, credDef, revRegDef)
	if err != nil {
		return nil, err
	}

	value, err := w3c.EncodeProofValue(signatureProofValue(processed))
	if err != nil {
		return nil, err
	}

	proof := *wc.Proof
	proof.ProofValue = value

	out := *wc
	out.Proof = &proof

	return &out, nil
}

// CreateW3CPresentation proves presReq like CreatePresentation over W3C credentials. W3C presentations carry
// no self-attested attributes. The version is set by WithW3CVersion.
func CreateW3CPresentation(presReq *PresentationRequest, entries []*W3CCredentialEntry, proves []*CredentialProve,
	linkSecret *LinkSecret, schemas map[string]*Schema, credDefs map[string]*CredentialDefinition,
	opts ...Opt) (*w3c.Presentation, error) {
	o := applyOptions(opts)

	plain := make([]*CredentialEntry, len(entries))

	for i, e := range entries {
		if e == nil || e.Credential == nil {
			continue
		}

		cred, err := CredentialFromW3C(e.Credential)
		if err != nil {
			return nil, err
		}

		plain[i] = &CredentialEntry{Credential: cred, Timestamp: e.Timestamp, RevocationState: e.RevocationState}
	}

	pres, order, err := createPresentation(presReq, plain, proves, nil, linkSecret, schemas, credDefs)
	if err != nil {
		return nil, err
	}

	wp, err := w3c.NewPresentation(o.w3cVersion)
	if err != nil {
		return nil, err
	}

	wp.ID = uuidURNPrefix + uuid.NewString()

	for i, idx := range order {
		vc, err := presentationCredential(entries[idx].Credential, o.w3cVersion, presReq, pres, i)
		if err != nil {
			return nil, err
		}

		wp.VerifiableCredential = append(wp.VerifiableCredential, vc)
	}

	wp.Proof, err = w3c.NewProof(w3c.CryptosuitePresentation, w3c.PurposeAuthentication, "",
		&w3c.PresentationProofValue{
			AggregatedProof: pres.Proof.AggregatedProof,
			RequestedProof:  pres.RequestedProof,
		})
	if err != nil {
		return nil, err
	}

	wp.Proof.Challenge = presReq.Nonce

	return wp, nil
}

// presentationCredential derives the credential of sub proof i from its source credential.
func presentationCredential(src *w3c.Credential, version string, presReq *PresentationRequest,
	pres *Presentation, i int) (*w3c.Credential, error) {
	issued, err := src.IssuedAt()
	if err != nil {
		return nil, err
	}

	id := pres.Identifiers[i]

	subject := map[string]interface{}{}
	for name, raw := range revealedSubject(presReq, &pres.RequestedProof, i) {
		subject[name] = raw
	}

	vc, err := w3c.NewCredential(version, src.Issuer, issued, &w3c.CredentialSchema{
		Type:       w3c.TypeCredentialSchema,
		Definition: id.CredDefID,
		Schema:     id.SchemaID,
		Revocation: id.RevRegID,
		Encoding:   w3c.EncodingAuto,
	}, subject)
	if err != nil {
		return nil, err
	}

	vc.Proof, err = w3c.NewProof(w3c.CryptosuitePresentationCredential, w3c.PurposeAssertionMethod, id.CredDefID,
		&w3c.CredentialPresentationProofValue{
			SubProof:  pres.Proof.Proofs[i],
			Timestamp: id.Timestamp,
		})
	if err != nil {
		return nil, err
	}

	return vc, nil
}

// revealedSubject returns the raw values sub proof i discloses, keyed by requested attribute name.
func revealedSubject(presReq *PresentationRequest, rp *acdoc.RequestedProof, i int) map[string]string {
	subject := map[string]string{}

	for ref, attr := range rp.RevealedAttrs {
		info, ok := presReq.RequestedAttributes[ref]
		if ok && attr.SubProofIndex == i && info.Name != "" {
			subject[info.Name] = attr.Raw
		}
	}

	for _, group := range rp.RevealedAttrGroups {
		if group.SubProofIndex != i {
			continue
		}

		for name, v := range group.Values {
			subject[name] = v.Raw
		}
	}

	return subject
}

// VerifyW3CPresentation checks a W3C presentation like VerifyPresentation. The presentation proof must carry
// the request nonce as challenge and every credential subject must hold exactly the values its sub proof
// discloses.
func VerifyW3CPresentation(wp *w3c.Presentation, presReq *PresentationRequest, schemas map[string]*Schema,
	credDefs map[string]*CredentialDefinition, revRegDefs map[string]*RevocationRegistryDefinition,
	statusLists []*RevocationStatusList, overrides []NonRevokedIntervalOverride) (bool, error) {
	if wp == nil || presReq == nil {
		return false, errcode.Newf(errcode.InvalidRequest, "presentation and request are required")
	}

	if err := wp.Validate(); err != nil {
		return false, err
	}

	payload, err := wp.PresentationProof()
	if err != nil {
		return false, err
	}

	if wp.Proof.Challenge != presReq.Nonce {
		logger.Warnf("W3C presentation %q rejected: challenge is not the request nonce", presReq.Name)

		return false, nil
	}

	pres := &acdoc.Presentation{
		Proof:          acdoc.PresentationProof{AggregatedProof: payload.AggregatedProof},
		RequestedProof: payload.RequestedProof,
	}

	for i, vc := range wp.VerifiableCredential {
		vcProof, err := vc.PresentationProof()
		if err != nil {
			return false, err
		}

		attrs, err := vc.Attributes()
		if err != nil {
			return false, err
		}

		if !maps.Equal(attrs, revealedSubject(presReq, &pres.RequestedProof, i)) {
			logger.Warnf("W3C presentation %q rejected: subject of credential %d differs from its disclosed "+
				"values", presReq.Name, i)

			return false, nil
		}

		pres.Proof.Proofs = append(pres.Proof.Proofs, vcProof.SubProof)
		pres.Identifiers = append(pres.Identifiers, acdoc.Identifier{
			SchemaID:  vc.CredentialSchema.Schema,
			CredDefID: vc.CredentialSchema.Definition,
			RevRegID:  vc.CredentialSchema.Revocation,
			Timestamp: vcProof.Timestamp,
		})
	}

	return VerifyPresentation(pres, presReq, schemas, credDefs, revRegDefs, statusLists, overrides)
}

func (o *options) issued() time.Time {
	if o.issuanceDate.IsZero() {
		return time.Now()
	}

	return o.issuanceDate
}
