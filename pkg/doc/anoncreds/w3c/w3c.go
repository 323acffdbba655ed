/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package w3c maps anoncreds credentials and presentations onto the W3C verifiable credentials data model.
//
// A mapped credential carries its raw attribute values in credentialSubject and its anoncreds signature in a
// Data Integrity proof whose proofValue is the multibase base64url encoding of a JSON payload. Fields this
// package does not know are preserved across a JSON round trip.
package w3c

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/models/dataintegrity/models"
	"github.com/multiformats/go-multibase"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// Data model versions.
const (
	Version11 = "1.1"
	Version20 = "2.0"
)

// JSON-LD contexts.
const (
	ContextV1        = "https://www.w3.org/2018/credentials/v1"
	ContextV2        = "https://www.w3.org/ns/credentials/v2"
	AnonCredsContext = "https://raw.githubusercontent.com/hyperledger/anoncreds-spec/main/data/anoncreds-w3c-context.json"
)

// Types.
const (
	TypeVerifiableCredential   = "VerifiableCredential"
	TypeAnonCredsCredential    = "AnonCredsCredential"
	TypeVerifiablePresentation = "VerifiablePresentation"
	TypeAnonCredsPresentation  = "AnonCredsPresentation"
	TypeCredentialSchema       = "AnonCredsDefinition"
)

// EncodingAuto is the only attribute encoding of W3C credentials: values are encoded canonically.
const EncodingAuto = "auto"

// Proof types and cryptosuites.
const (
	ProofTypeDataIntegrity = "DataIntegrityProof"

	// CryptosuiteSignature proves an issued credential.
	CryptosuiteSignature = "anoncreds-2023"
	// CryptosuitePresentationCredential proves one credential of a presentation.
	CryptosuitePresentationCredential = "anoncredspresvc-2023"
	// CryptosuitePresentation carries the challenge shared by the credential proofs of a presentation.
	CryptosuitePresentation = "anoncredspresvp-2023"

	PurposeAssertionMethod = "assertionMethod"
	PurposeAuthentication  = "authentication"
)

// ContextForVersion returns the base context of a data model version.
func ContextForVersion(version string) (string, error) {
	switch version {
	case Version11:
		return ContextV1, nil
	case Version20:
		return ContextV2, nil
	default:
		return "", errcode.Newf(errcode.InvalidRequest, "unsupported W3C data model version %q", version)
	}
}

func versionOf(context []string) (string, error) {
	if len(context) == 0 {
		return "", fmt.Errorf("missing @context")
	}

	switch context[0] {
	case ContextV1:
		return Version11, nil
	case ContextV2:
		return Version20, nil
	default:
		return "", fmt.Errorf("unsupported base context %q", context[0])
	}
}

// Proof is a Data Integrity proof.
type Proof struct {
	models.Proof
	Cryptosuite string `json:"cryptosuite"`
}

// NewProof returns a Data Integrity proof of cryptosuite over payload.
func NewProof(cryptosuite, purpose, verificationMethod string, payload interface{}) (*Proof, error) {
	value, err := EncodeProofValue(payload)
	if err != nil {
		return nil, err
	}

	return &Proof{
		Proof: models.Proof{
			Type:               ProofTypeDataIntegrity,
			ProofPurpose:       purpose,
			VerificationMethod: verificationMethod,
			ProofValue:         value,
		},
		Cryptosuite: cryptosuite,
	}, nil
}

func (p *Proof) check(cryptosuite string) error {
	if p == nil {
		return errcode.Newf(errcode.Input, "missing proof")
	}

	if p.Type != ProofTypeDataIntegrity || p.Cryptosuite != cryptosuite {
		return errcode.Newf(errcode.Input, "expected a %s proof of cryptosuite %s, got %s/%s",
			ProofTypeDataIntegrity, cryptosuite, p.Type, p.Cryptosuite)
	}

	return nil
}

// EncodeProofValue encodes the JSON of payload as multibase base64url.
func EncodeProofValue(payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errcode.Newf(errcode.Input, "marshal proof value: %w", err)
	}

	value, err := multibase.Encode(multibase.Base64url, data)
	if err != nil {
		return "", errcode.Newf(errcode.Unexpected, "encode proof value: %w", err)
	}

	return value, nil
}

// DecodeProofValue decodes a multibase base64url proof value into payload.
func DecodeProofValue(value string, payload interface{}) error {
	enc, data, err := multibase.Decode(value)
	if err != nil {
		return errcode.Newf(errcode.Input, "decode proof value: %w", err)
	}

	if enc != multibase.Base64url {
		return errcode.Newf(errcode.Input, "proof value is not base64url encoded")
	}

	if err = json.Unmarshal(data, payload); err != nil {
		return errcode.Newf(errcode.Input, "parse proof value: %w", err)
	}

	return nil
}

// SignatureProofValue is the payload of an anoncreds-2023 proof.
type SignatureProofValue struct {
	Signature  *bbs.Signature              `json:"signature"`
	RevRegID   string                      `json:"rev_reg_id,omitempty"`
	Revocation *acdoc.CredentialRevocation `json:"rev_reg,omitempty"`
}

// CredentialPresentationProofValue is the payload of an anoncredspresvc-2023 proof: the sub proof of one
// credential and the timestamp of the status list it was proven against.
type CredentialPresentationProofValue struct {
	SubProof  *acdoc.SubProof `json:"sub_proof"`
	Timestamp *int64          `json:"timestamp,omitempty"`
}

// PresentationProofValue is the payload of an anoncredspresvp-2023 proof.
type PresentationProofValue struct {
	AggregatedProof acdoc.AggregatedProof `json:"aggregated"`
	RequestedProof  acdoc.RequestedProof  `json:"requested_proof"`
}
