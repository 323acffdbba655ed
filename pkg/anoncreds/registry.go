/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"golang.org/x/exp/slices"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// CreateSchema returns a new schema. Attribute names must be non-empty and unique, compared case-insensitively
// without white space.
func CreateSchema(issuerID, name, version string, attrNames []string) (*Schema, error) {
	if issuerID == "" || name == "" || version == "" {
		return nil, errcode.Newf(errcode.InvalidSchema, "issuer id, name and version are required")
	}

	schema := &acdoc.Schema{
		IssuerID:  issuerID,
		Name:      name,
		Version:   version,
		AttrNames: slices.Clone(attrNames),
	}

	if err := schema.Validate(); err != nil {
		return nil, errcode.New(errcode.InvalidSchema, err)
	}

	return schema, nil
}

// CreateCredentialDefinition generates issuer keys for schema. An empty schemaID defaults to the schema's
// content-derived id. Revocation support adds the generators of the accumulator base to the key.
func CreateCredentialDefinition(schemaID string, schema *Schema, issuerID, tag, signatureType string,
	supportRevocation bool) (*CredentialDefinition, *CredentialDefinitionPrivate, *KeyCorrectnessProof, error) {
	if err := schema.Validate(); err != nil {
		return nil, nil, nil, errcode.New(errcode.InvalidSchema, err)
	}

	sigType, err := acdoc.NormalizeSignatureType(signatureType)
	if err != nil {
		return nil, nil, nil, errcode.New(errcode.InvalidRequest, err)
	}

	if schemaID == "" {
		schemaID = schema.ID()
	}

	attributes := schema.NormalizedAttrNames()
	slices.Sort(attributes)

	pk, sk, err := bbs.GenerateKeyPair(len(attributes), nil)
	if err != nil {
		return nil, nil, nil, errcode.Newf(errcode.Unexpected, "generate issuer keys: %w", err)
	}

	credDef := &acdoc.CredentialDefinition{
		SchemaID: schemaID,
		Type:     sigType,
		Tag:      tag,
		IssuerID: issuerID,
		Value: acdoc.CredentialDefinitionValue{
			Primary:    pk,
			Attributes: attributes,
		},
	}

	if supportRevocation {
		credDef.Value.Revocation = accumulator.GenerateCredentialKey(nil)
	}

	logger.Infof("created credential definition %s with %d attributes, revocation %t", credDef.ID(),
		len(attributes), supportRevocation)

	return credDef,
		&acdoc.CredentialDefinitionPrivate{Value: acdoc.CredentialDefinitionPrivateValue{Primary: sk}},
		bbs.NewKeyCorrectnessProof(pk, sk, nil),
		nil
}

// VerifyKeyCorrectnessProof reports whether proof shows that the credential definition key is well formed.
func VerifyKeyCorrectnessProof(credDef *CredentialDefinition, proof *KeyCorrectnessProof) bool {
	if credDef == nil || credDef.Value.Primary == nil || proof == nil {
		return false
	}

	if err := proof.Verify(credDef.Value.Primary); err != nil {
		logger.Debugf("key correctness proof of %s rejected: %v", credDef.ID(), err)

		return false
	}

	return true
}

// CreateLinkSecret returns a new random link secret.
func CreateLinkSecret() *LinkSecret {
	for {
		v := mlutil.RandomZr(nil)
		if !mlutil.IsZero(v) {
			return acdoc.NewLinkSecret(v)
		}
	}
}
