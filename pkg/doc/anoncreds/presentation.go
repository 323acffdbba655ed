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

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/rangeproof"
)

// Presentation answers a PresentationRequest with one sub proof per credential used.
type Presentation struct {
	Proof          PresentationProof `json:"proof"`
	RequestedProof RequestedProof    `json:"requested_proof"`
	Identifiers    []Identifier      `json:"identifiers"`
}

// PresentationProof holds the sub proofs and the challenge they share.
type PresentationProof struct {
	Proofs          []*SubProof     `json:"proofs"`
	AggregatedProof AggregatedProof `json:"aggregated_proof"`
}

// SubProof proves one credential.
type SubProof struct {
	PrimaryProof *bbs.SignatureProof `json:"primary_proof"`
	// BlindedIndexBase is set for revocable credentials. It hides the registry index the signature covers.
	BlindedIndexBase *G1Point          `json:"blinded_index_base,omitempty"`
	Predicates       []*PredicateProof `json:"predicates,omitempty"`
	// NonRevocProof is set when the request asks for a non-revocation interval.
	NonRevocProof *accumulator.Proof `json:"non_revoc_proof,omitempty"`
}

// G1Point is a G1 element that marshals to its base64url compressed form.
type G1Point struct {
	Point *ml.G1
}

// MarshalJSON marshals G1Point to JSON.
func (p *G1Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(mlutil.G1ToString(p.Point))
}

// UnmarshalJSON unmarshals G1Point from JSON.
func (p *G1Point) UnmarshalJSON(data []byte) error {
	var s string

	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	point, err := mlutil.G1FromString(s)
	if err != nil {
		return err
	}

	p.Point = point

	return nil
}

// PredicateProof proves one predicate over an attribute hidden by the primary proof.
type PredicateProof struct {
	AttrName string            `json:"attr_name"`
	PType    string            `json:"p_type"`
	Value    int32             `json:"value"`
	Proof    *rangeproof.Proof `json:"proof"`
}

// AggregatedProof carries the Fiat-Shamir challenge of the presentation.
type AggregatedProof struct {
	C *ml.Zr
}

type rawAggregatedProof struct {
	C string `json:"c"`
}

// MarshalJSON marshals AggregatedProof to JSON.
func (a AggregatedProof) MarshalJSON() ([]byte, error) {
	if a.C == nil {
		return nil, errors.New("marshal aggregated proof: missing challenge")
	}

	return json.Marshal(&rawAggregatedProof{C: mlutil.ZrToString(a.C)})
}

// UnmarshalJSON unmarshals AggregatedProof from JSON.
func (a *AggregatedProof) UnmarshalJSON(data []byte) error {
	var raw rawAggregatedProof

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c, err := mlutil.ZrFromString(raw.C)
	if err != nil {
		return fmt.Errorf("c: %w", err)
	}

	a.C = c

	return nil
}

// RequestedProof maps request referents to the sub proofs answering them.
type RequestedProof struct {
	RevealedAttrs      map[string]RevealedAttribute      `json:"revealed_attrs"`
	RevealedAttrGroups map[string]RevealedAttributeGroup `json:"revealed_attr_groups,omitempty"`
	SelfAttestedAttrs  map[string]string                 `json:"self_attested_attrs"`
	UnrevealedAttrs    map[string]SubProofReferent       `json:"unrevealed_attrs"`
	Predicates         map[string]SubProofReferent       `json:"predicates"`
}

// RevealedAttribute is a disclosed attribute value.
type RevealedAttribute struct {
	SubProofIndex int    `json:"sub_proof_index"`
	Raw           string `json:"raw"`
	Encoded       string `json:"encoded"`
}

// RevealedAttributeGroup discloses the attributes of a names request from one credential.
type RevealedAttributeGroup struct {
	SubProofIndex int                       `json:"sub_proof_index"`
	Values        map[string]AttributeValue `json:"values"`
}

// SubProofReferent points at the sub proof answering a referent.
type SubProofReferent struct {
	SubProofIndex int `json:"sub_proof_index"`
}

// Identifier names the public entities a sub proof is checked against.
type Identifier struct {
	SchemaID  string `json:"schema_id"`
	CredDefID string `json:"cred_def_id"`
	RevRegID  string `json:"rev_reg_id,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

func (p *Presentation) validate() error {
	if len(p.Proof.Proofs) != len(p.Identifiers) {
		return fmt.Errorf("%d proofs for %d identifiers", len(p.Proof.Proofs), len(p.Identifiers))
	}

	for i, sp := range p.Proof.Proofs {
		if sp == nil || sp.PrimaryProof == nil {
			return fmt.Errorf("sub proof %d: missing primary proof", i)
		}
	}

	return nil
}

// Validate checks that every sub proof has an identifier and a primary proof.
func (p *Presentation) Validate() error {
	return p.validate()
}

// PresentationFromJSON parses a Presentation.
func PresentationFromJSON(data []byte) (*Presentation, error) {
	return fromJSON[Presentation](data, "presentation")
}

// CredentialEntry is a credential available to a presentation, with the revocation state to prove it
// unrevoked at Timestamp.
type CredentialEntry struct {
	Credential      *Credential
	Timestamp       *int64
	RevocationState *RevocationState
}

// CredentialProve assigns a request referent to a credential entry.
type CredentialProve struct {
	EntryIndex  int
	Referent    string
	IsPredicate bool
	// Reveal discloses the attribute value. Unrevealed attributes are proven possessed only.
	Reveal bool
}

// NonRevokedIntervalOverride lets a verifier accept a status list published at OverrideRevStatusListTs for
// requests whose interval starts at RequestedFromTs.
type NonRevokedIntervalOverride struct {
	RevRegDefID             string
	RequestedFromTs         int64
	OverrideRevStatusListTs int64
}
