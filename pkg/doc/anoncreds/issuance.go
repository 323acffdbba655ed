/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"encoding/json"
	"errors"
	"fmt"

	ml "github.com/IBM/mathlib"

	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// CredentialOffer is the first message of issuance. Its nonce binds the request that answers it.
type CredentialOffer struct {
	SchemaID            string               `json:"schema_id"`
	CredDefID           string               `json:"cred_def_id"`
	KeyCorrectnessProof *KeyCorrectnessProof `json:"key_correctness_proof"`
	Nonce               string               `json:"nonce"`
	MethodName          string               `json:"method_name,omitempty"`
}

func (o *CredentialOffer) validate() error {
	if o.CredDefID == "" || o.Nonce == "" || o.KeyCorrectnessProof == nil {
		return errors.New("incomplete credential offer")
	}

	return nil
}

// CredentialOfferFromJSON parses a CredentialOffer.
func CredentialOfferFromJSON(data []byte) (*CredentialOffer, error) {
	return fromJSON[CredentialOffer](data, "credential offer")
}

// CredentialRequest carries the holder's blinded link secret and its correctness proof.
type CredentialRequest struct {
	Entropy   string                 `json:"entropy,omitempty"`
	ProverDID string                 `json:"prover_did,omitempty"`
	CredDefID string                 `json:"cred_def_id"`
	BlindedMS *bbs.BlindedCommitment `json:"blinded_ms"`
	Nonce     string                 `json:"nonce"`
}

func (r *CredentialRequest) validate() error {
	if r.BlindedMS == nil || r.CredDefID == "" {
		return errors.New("incomplete credential request")
	}

	if (r.Entropy == "") == (r.ProverDID == "") {
		return errors.New("exactly one of entropy and prover_did must be set")
	}

	return nil
}

// CredentialRequestFromJSON parses a CredentialRequest.
func CredentialRequestFromJSON(data []byte) (*CredentialRequest, error) {
	return fromJSON[CredentialRequest](data, "credential request")
}

// CredentialRequestMetadata is kept by the holder to unblind the issued credential.
type CredentialRequestMetadata struct {
	// LinkSecretBlindingData is the blinding factor s' of the link secret commitment.
	LinkSecretBlindingData *ml.Zr
	Nonce                  string
	LinkSecretName         string
}

type rawCredentialRequestMetadata struct {
	LinkSecretBlindingData string `json:"link_secret_blinding_data"`
	Nonce                  string `json:"nonce"`
	LinkSecretName         string `json:"link_secret_name"`
}

// MarshalJSON marshals CredentialRequestMetadata to JSON.
func (m *CredentialRequestMetadata) MarshalJSON() ([]byte, error) {
	if m.LinkSecretBlindingData == nil {
		return nil, errors.New("marshal credential request metadata: missing blinding data")
	}

	return json.Marshal(&rawCredentialRequestMetadata{
		LinkSecretBlindingData: mlutil.ZrToString(m.LinkSecretBlindingData),
		Nonce:                  m.Nonce,
		LinkSecretName:         m.LinkSecretName,
	})
}

// UnmarshalJSON unmarshals CredentialRequestMetadata from JSON.
func (m *CredentialRequestMetadata) UnmarshalJSON(data []byte) error {
	var raw rawCredentialRequestMetadata

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	blinding, err := mlutil.ZrFromString(raw.LinkSecretBlindingData)
	if err != nil {
		return fmt.Errorf("link_secret_blinding_data: %w", err)
	}

	*m = CredentialRequestMetadata{
		LinkSecretBlindingData: blinding,
		Nonce:                  raw.Nonce,
		LinkSecretName:         raw.LinkSecretName,
	}

	return nil
}

// CredentialRequestMetadataFromJSON parses a CredentialRequestMetadata.
func CredentialRequestMetadataFromJSON(data []byte) (*CredentialRequestMetadata, error) {
	return fromJSON[CredentialRequestMetadata](data, "credential request metadata")
}
