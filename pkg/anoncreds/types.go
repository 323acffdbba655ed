/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// Entity types, see package github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds.
type (
	Schema                              = acdoc.Schema
	CredentialDefinition                = acdoc.CredentialDefinition
	CredentialDefinitionPrivate         = acdoc.CredentialDefinitionPrivate
	KeyCorrectnessProof                 = acdoc.KeyCorrectnessProof
	LinkSecret                          = acdoc.LinkSecret
	CredentialOffer                     = acdoc.CredentialOffer
	CredentialRequest                   = acdoc.CredentialRequest
	CredentialRequestMetadata           = acdoc.CredentialRequestMetadata
	Credential                          = acdoc.Credential
	RevocationRegistryDefinition        = acdoc.RevocationRegistryDefinition
	RevocationRegistryDefinitionPrivate = acdoc.RevocationRegistryDefinitionPrivate
	RevocationStatusList                = acdoc.RevocationStatusList
	RevocationState                     = acdoc.RevocationState
	RevocationConfig                    = acdoc.RevocationConfig
	PresentationRequest                 = acdoc.PresentationRequest
	Presentation                        = acdoc.Presentation
	CredentialEntry                     = acdoc.CredentialEntry
	CredentialProve                     = acdoc.CredentialProve
	NonRevokedIntervalOverride          = acdoc.NonRevokedIntervalOverride
	NonRevokedInterval                  = acdoc.NonRevokedInterval
	AttributeInfo                       = acdoc.AttributeInfo
	PredicateInfo                       = acdoc.PredicateInfo
	Restriction                         = acdoc.Restriction
	AttributeValue                      = acdoc.AttributeValue
	CredentialValues                    = acdoc.CredentialValues
	RevealedAttribute                   = acdoc.RevealedAttribute
)

// PresentationFromJSON parses a presentation received by a verifier.
func PresentationFromJSON(data []byte) (*Presentation, error) {
	return acdoc.PresentationFromJSON(data)
}

// PresentationRequestFromJSON parses a presentation request received by a prover.
func PresentationRequestFromJSON(data []byte) (*PresentationRequest, error) {
	return acdoc.PresentationRequestFromJSON(data)
}

// CredentialFromJSON parses an issued credential.
func CredentialFromJSON(data []byte) (*Credential, error) {
	return acdoc.CredentialFromJSON(data)
}

// RevocationStatusListFromJSON parses a published status list.
func RevocationStatusListFromJSON(data []byte) (*RevocationStatusList, error) {
	return acdoc.RevocationStatusListFromJSON(data)
}
