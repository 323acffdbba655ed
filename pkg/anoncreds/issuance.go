/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/encoding"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// CreateCredentialOffer returns an offer with a fresh nonce.
func CreateCredentialOffer(schemaID, credDefID string, proof *KeyCorrectnessProof) (*CredentialOffer, error) {
	if schemaID == "" || credDefID == "" || proof == nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "schema id, credential definition id and key "+
			"correctness proof are required")
	}

	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}

	return &acdoc.CredentialOffer{
		SchemaID:            schemaID,
		CredDefID:           credDefID,
		KeyCorrectnessProof: proof,
		Nonce:               nonce,
	}, nil
}

// CreateCredentialRequest blinds linkSecret for the offered credential definition. Exactly one of entropy and
// proverDID must be set. The returned metadata must be kept to process the issued credential.
func CreateCredentialRequest(entropy, proverDID string, credDef *CredentialDefinition, linkSecret *LinkSecret,
	linkSecretID string, offer *CredentialOffer) (*CredentialRequest, *CredentialRequestMetadata, error) {
	if (entropy == "") == (proverDID == "") {
		return nil, nil, errcode.Newf(errcode.InvalidRequest, "exactly one of entropy and prover DID must be set")
	}

	if credDef == nil || offer == nil || linkSecret == nil {
		return nil, nil, errcode.Newf(errcode.InvalidRequest, "credential definition, offer and link secret "+
			"are required")
	}

	if offer.CredDefID != credDef.ID() {
		return nil, nil, errcode.Newf(errcode.InvalidRequest, "offer is for credential definition %s, not %s",
			offer.CredDefID, credDef.ID())
	}

	if !VerifyKeyCorrectnessProof(credDef, offer.KeyCorrectnessProof) {
		return nil, nil, errcode.Newf(errcode.InvalidRequest, "invalid key correctness proof in offer")
	}

	nonce, err := GenerateNonce()
	if err != nil {
		return nil, nil, err
	}

	blinded, blinding := bbs.NewBlindedCommitment(credDef.Value.Primary, linkSecret.Scalar(),
		[]byte(offer.Nonce), nil)

	logger.Debugf("created credential request for %s", offer.CredDefID)

	return &acdoc.CredentialRequest{
			Entropy:   entropy,
			ProverDID: proverDID,
			CredDefID: offer.CredDefID,
			BlindedMS: blinded,
			Nonce:     nonce,
		}, &acdoc.CredentialRequestMetadata{
			LinkSecretBlindingData: blinding,
			Nonce:                  nonce,
			LinkSecretName:         linkSecretID,
		}, nil
}

// CreateCredential signs rawValues for the holder of request. Values are encoded canonically unless
// WithEncodedValues supplies encodings. Credentials of revocable definitions require WithRevocationConfig.
func CreateCredential(credDef *CredentialDefinition, credDefPrivate *CredentialDefinitionPrivate,
	offer *CredentialOffer, request *CredentialRequest, rawValues map[string]string, opts ...Opt) (*Credential, error) {
	o := applyOptions(opts)

	if credDef == nil || credDefPrivate == nil || credDefPrivate.Value.Primary == nil || offer == nil ||
		request == nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "credential definition, private key, offer and request "+
			"are required")
	}

	if request.CredDefID != offer.CredDefID {
		return nil, errcode.Newf(errcode.InvalidRequest, "request is for %s, offer for %s", request.CredDefID,
			offer.CredDefID)
	}

	if (request.Entropy == "") == (request.ProverDID == "") {
		return nil, errcode.Newf(errcode.InvalidRequest, "request must carry exactly one of entropy and prover DID")
	}

	pk := credDef.Value.Primary

	if err := request.BlindedMS.Verify(pk, []byte(offer.Nonce)); err != nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "credential request: %w", err)
	}

	values, err := credentialValues(credDef, rawValues, o.encodedValues)
	if err != nil {
		return nil, err
	}

	messages, err := signatureMessages(credDef, values)
	if err != nil {
		return nil, err
	}

	cred := &acdoc.Credential{
		SchemaID:  offer.SchemaID,
		CredDefID: offer.CredDefID,
		Values:    values,
	}

	var tailsBase *ml.G1

	switch {
	case credDef.SupportsRevocation() && o.revocation == nil:
		return nil, errcode.Newf(errcode.InvalidRequest, "credential definition %s requires a revocation config",
			offer.CredDefID)
	case !credDef.SupportsRevocation() && o.revocation != nil:
		return nil, errcode.Newf(errcode.InvalidRequest, "credential definition %s does not support revocation",
			offer.CredDefID)
	case o.revocation != nil:
		cred.RevRegID, cred.Revocation, err = issueIntoRegistry(offer.CredDefID, o.revocation)
		if err != nil {
			return nil, err
		}

		tailsBase = cred.Revocation.IndexBase
	}

	cred.Signature, err = bbs.BlindSign(credDefPrivate.Value.Primary, pk, request.BlindedMS, messages, tailsBase, nil)
	if err != nil {
		return nil, errcode.Newf(errcode.Unexpected, "sign credential: %w", err)
	}

	logger.Debugf("issued credential of %s", offer.CredDefID)

	return cred, nil
}

func issueIntoRegistry(credDefID string, cfg *RevocationConfig) (string, *acdoc.CredentialRevocation, error) {
	if cfg.RegistryDefinition == nil || cfg.RegistryDefinitionPrivate == nil ||
		cfg.RegistryDefinitionPrivate.Value == nil || cfg.StatusList == nil {
		return "", nil, errcode.Newf(errcode.InvalidRequest, "incomplete revocation config")
	}

	regDef := cfg.RegistryDefinition
	revRegID := regDef.ID()

	if regDef.CredDefID != credDefID {
		return "", nil, errcode.Newf(errcode.InvalidRequest, "registry %s belongs to %s", revRegID,
			regDef.CredDefID)
	}

	if cfg.StatusList.RevRegDefID != revRegID {
		return "", nil, errcode.Newf(errcode.InvalidRequest, "status list belongs to %s, not %s",
			cfg.StatusList.RevRegDefID, revRegID)
	}

	capacity := regDef.Value.MaxCredNum

	if err := accumulator.CheckIndex(capacity, cfg.RegistryIndex); err != nil {
		return "", nil, errcode.New(errcode.IndexOutOfRange, err)
	}

	if cfg.StatusList.Revoked(cfg.RegistryIndex) {
		return "", nil, errcode.Newf(errcode.CredentialRevoked, "index %d of %s is revoked", cfg.RegistryIndex,
			revRegID)
	}

	sk := cfg.RegistryDefinitionPrivate.Value

	indexBase, err := sk.IndexBase(capacity, cfg.RegistryIndex)
	if err != nil {
		return "", nil, errcode.New(errcode.IndexOutOfRange, err)
	}

	witness, err := sk.Witness(capacity, cfg.RegistryIndex, cfg.StatusList.ActiveIndices())
	if err != nil {
		return "", nil, errcode.Newf(errcode.Unexpected, "compute witness: %w", err)
	}

	return revRegID, &acdoc.CredentialRevocation{
		Index:       cfg.RegistryIndex,
		IndexBase:   indexBase,
		Witness:     witness,
		Accumulator: cfg.StatusList.CurrentAccumulator.Copy(),
		Timestamp:   cfg.StatusList.Timestamp,
	}, nil
}

// credentialValues pairs raw values with their encodings. Every definition attribute needs a value.
func credentialValues(credDef *CredentialDefinition, raw, encoded map[string]string) (acdoc.CredentialValues,
	error) {
	values := make(acdoc.CredentialValues, len(raw))
	covered := make(map[string]bool, len(raw))

	for name, v := range raw {
		norm := acdoc.NormalizeAttrName(name)

		if credDef.AttributeIndex(norm) < 0 {
			return nil, errcode.Newf(errcode.InvalidRequest, "attribute %q is not in the credential definition", name)
		}

		if covered[norm] {
			return nil, errcode.Newf(errcode.InvalidRequest, "attribute %q has more than one value", name)
		}

		covered[norm] = true

		enc, ok := encoded[name]
		if !ok {
			enc = encoding.Encode(v)
		}

		values[name] = acdoc.AttributeValue{Raw: v, Encoded: enc}
	}

	for _, attr := range credDef.Value.Attributes {
		if !covered[attr] {
			return nil, errcode.Newf(errcode.MissingAttribute, "no value for attribute %q", attr)
		}
	}

	return values, nil
}

// signatureMessages returns the encoded values in the message order of the credential definition.
func signatureMessages(credDef *CredentialDefinition, values acdoc.CredentialValues) ([]*bbs.SignatureMessage,
	error) {
	messages := make([]*bbs.SignatureMessage, len(credDef.Value.Attributes))

	for i, attr := range credDef.Value.Attributes {
		_, v, ok := values.Lookup(attr)
		if !ok {
			return nil, errcode.Newf(errcode.MissingAttribute, "no value for attribute %q", attr)
		}

		m, err := bbs.ParseSignatureMessage(v.Encoded)
		if err != nil {
			return nil, errcode.Newf(errcode.Input, "attribute %q: %w", attr, err)
		}

		messages[i] = m
	}

	return messages, nil
}

// ProcessCredential unblinds an issued credential and verifies it under linkSecret. Revocable credentials
// need their registry definition and must carry a valid witness.
func ProcessCredential(cred *Credential, metadata *CredentialRequestMetadata, linkSecret *LinkSecret,
	credDef *CredentialDefinition, revRegDef *RevocationRegistryDefinition) (*Credential, error) {
	if cred == nil || cred.Signature == nil || metadata == nil || metadata.LinkSecretBlindingData == nil ||
		linkSecret == nil || credDef == nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "credential, metadata, link secret and credential "+
			"definition are required")
	}

	messages, err := signatureMessages(credDef, cred.Values)
	if err != nil {
		return nil, errcode.New(errcode.CredentialValidationFailed, err)
	}

	var tailsBase *ml.G1

	if cred.IsRevocable() {
		if err = checkCredentialWitness(cred, credDef, revRegDef); err != nil {
			return nil, err
		}

		tailsBase = cred.Revocation.IndexBase
	}

	sig := cred.Signature.Unblind(metadata.LinkSecretBlindingData)

	if err = sig.Verify(credDef.Value.Primary, linkSecret.Scalar(), messages, tailsBase); err != nil {
		return nil, errcode.Newf(errcode.CredentialValidationFailed, "credential signature: %w", err)
	}

	processed := *cred
	processed.Signature = sig

	return &processed, nil
}

func checkCredentialWitness(cred *Credential, credDef *CredentialDefinition,
	revRegDef *RevocationRegistryDefinition) error {
	if revRegDef == nil {
		return errcode.Newf(errcode.InvalidRequest, "revocable credential needs its registry definition")
	}

	if !credDef.SupportsRevocation() {
		return errcode.Newf(errcode.CredentialValidationFailed, "credential definition does not support revocation")
	}

	if cred.RevRegID != revRegDef.ID() {
		return errcode.Newf(errcode.InvalidRequest, "credential is in registry %s, not %s", cred.RevRegID,
			revRegDef.ID())
	}

	r := cred.Revocation

	if err := accumulator.CheckIndex(revRegDef.Value.MaxCredNum, r.Index); err != nil {
		return errcode.New(errcode.CredentialValidationFailed, err)
	}

	if r.IndexBase == nil || r.Witness == nil || r.Accumulator == nil ||
		!accumulator.VerifyMembership(revRegDef.Value.PublicKeys.AccumKey, r.IndexBase, r.Accumulator, r.Witness) {
		return errcode.Newf(errcode.CredentialValidationFailed, "credential witness does not verify")
	}

	return nil
}

// EncodeCredentialAttributes returns the canonical encodings of raw values, in order.
func EncodeCredentialAttributes(raw []string) []string {
	return encoding.EncodeAll(raw)
}
