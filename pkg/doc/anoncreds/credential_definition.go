/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"errors"
	"fmt"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
)

// Signature types.
const (
	SignatureTypeBBS = "BBS+"
	// SignatureTypeCL is accepted as an alias of SignatureTypeBBS.
	SignatureTypeCL = "CL"
)

// NormalizeSignatureType maps supported signature type tags to SignatureTypeBBS.
func NormalizeSignatureType(t string) (string, error) {
	switch t {
	case SignatureTypeBBS, SignatureTypeCL:
		return SignatureTypeBBS, nil
	default:
		return "", fmt.Errorf("unsupported signature type %q", t)
	}
}

// KeyCorrectnessProof proves that the issuer public key was generated from one secret.
type KeyCorrectnessProof = bbs.KeyCorrectnessProof

// CredentialDefinition binds a schema to issuer key material.
type CredentialDefinition struct {
	SchemaID string                    `json:"schemaId"`
	Type     string                    `json:"type"`
	Tag      string                    `json:"tag"`
	IssuerID string                    `json:"issuerId"`
	Value    CredentialDefinitionValue `json:"value"`
}

// CredentialDefinitionValue holds the public keys of a credential definition.
type CredentialDefinitionValue struct {
	Primary *bbs.PublicKey `json:"primary"`
	// Attributes lists the normalized attribute names. Attribute i is signed under generator H[i].
	Attributes []string                   `json:"attributes"`
	Revocation *accumulator.CredentialKey `json:"revocation,omitempty"`
}

// ID returns the content-derived credential definition identifier.
func (cd *CredentialDefinition) ID() string {
	return compositeID(cd.IssuerID, CredentialDefinitionMarker, cd.SchemaID, cd.Tag)
}

// SupportsRevocation reports whether credentials of this definition are revocable.
func (cd *CredentialDefinition) SupportsRevocation() bool {
	return cd.Value.Revocation != nil
}

// AttributeIndex returns the message index of an attribute, or -1 if the definition has no such attribute.
func (cd *CredentialDefinition) AttributeIndex(name string) int {
	norm := NormalizeAttrName(name)

	for i, attr := range cd.Value.Attributes {
		if attr == norm {
			return i
		}
	}

	return -1
}

func (cd *CredentialDefinition) validate() error {
	if _, err := NormalizeSignatureType(cd.Type); err != nil {
		return err
	}

	if cd.Value.Primary == nil {
		return errors.New("missing primary public key")
	}

	if len(cd.Value.Attributes) != cd.Value.Primary.MessagesCount() {
		return fmt.Errorf("%d attributes for %d generators", len(cd.Value.Attributes),
			cd.Value.Primary.MessagesCount())
	}

	return nil
}

// CredentialDefinitionFromJSON parses a CredentialDefinition.
func CredentialDefinitionFromJSON(data []byte) (*CredentialDefinition, error) {
	return fromJSON[CredentialDefinition](data, "credential definition")
}

// CredentialDefinitionPrivate holds the issuer secret key.
type CredentialDefinitionPrivate struct {
	Value CredentialDefinitionPrivateValue `json:"value"`
}

// CredentialDefinitionPrivateValue holds the issuer secret key.
type CredentialDefinitionPrivateValue struct {
	Primary *bbs.PrivateKey `json:"primary"`
}

func (cdp *CredentialDefinitionPrivate) validate() error {
	if cdp.Value.Primary == nil {
		return errors.New("missing primary private key")
	}

	return nil
}

// CredentialDefinitionPrivateFromJSON parses a CredentialDefinitionPrivate.
func CredentialDefinitionPrivateFromJSON(data []byte) (*CredentialDefinitionPrivate, error) {
	return fromJSON[CredentialDefinitionPrivate](data, "credential definition private")
}

// KeyCorrectnessProofFromJSON parses a KeyCorrectnessProof.
func KeyCorrectnessProofFromJSON(data []byte) (*KeyCorrectnessProof, error) {
	return fromJSON[KeyCorrectnessProof](data, "key correctness proof")
}
