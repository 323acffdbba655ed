/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package w3c

import (
	"fmt"

	jsonutil "github.com/hyperledger/aries-framework-go/component/models/util/json"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
)

// Presentation is an anoncreds presentation in the W3C data model. Each verifiable credential carries the sub
// proof of one credential, the presentation proof carries the challenge they share.
type Presentation struct {
	Context              []string      `json:"@context"`
	ID                   string        `json:"id,omitempty"`
	Types                []string      `json:"type"`
	VerifiableCredential []*Credential `json:"verifiableCredential"`
	Proof                *Proof        `json:"proof"`

	CustomFields CustomFields `json:"-"`
}

type rawPresentation Presentation

// NewPresentation returns an empty presentation of the given version.
func NewPresentation(version string) (*Presentation, error) {
	ctx, err := ContextForVersion(version)
	if err != nil {
		return nil, err
	}

	return &Presentation{
		Context: []string{ctx, AnonCredsContext},
		Types:   []string{TypeVerifiablePresentation, TypeAnonCredsPresentation},
	}, nil
}

// MarshalJSON marshals Presentation with its custom fields.
func (p *Presentation) MarshalJSON() ([]byte, error) {
	return jsonutil.MarshalWithCustomFields((*rawPresentation)(p), p.CustomFields)
}

// UnmarshalJSON unmarshals Presentation and collects its custom fields.
func (p *Presentation) UnmarshalJSON(data []byte) error {
	raw := &rawPresentation{}

	cf, err := unmarshalWithCustomFields(data, raw)
	if err != nil {
		return err
	}

	*p = Presentation(*raw)
	p.CustomFields = cf

	return nil
}

// Version returns the data model version selected by the base context.
func (p *Presentation) Version() string {
	v, err := versionOf(p.Context)
	if err != nil {
		return ""
	}

	return v
}

// PresentationProof decodes the payload of the presentation proof.
func (p *Presentation) PresentationProof() (*PresentationProofValue, error) {
	if err := p.Proof.check(CryptosuitePresentation); err != nil {
		return nil, err
	}

	payload := &PresentationProofValue{}

	if err := DecodeProofValue(p.Proof.ProofValue, payload); err != nil {
		return nil, err
	}

	if payload.AggregatedProof.C == nil {
		return nil, errcode.Newf(errcode.Input, "presentation proof has no challenge")
	}

	return payload, nil
}

func (p *Presentation) validate() error {
	if _, err := versionOf(p.Context); err != nil {
		return err
	}

	if !slices.Contains(p.Types, TypeVerifiablePresentation) {
		return fmt.Errorf("missing type %s", TypeVerifiablePresentation)
	}

	if p.Proof == nil {
		return fmt.Errorf("missing proof")
	}

	for i, c := range p.VerifiableCredential {
		if c == nil {
			return fmt.Errorf("verifiable credential %d is empty", i)
		}

		if err := c.validate(); err != nil {
			return fmt.Errorf("verifiable credential %d: %w", i, err)
		}
	}

	return nil
}

// Validate checks the contexts of the presentation and of its credentials.
func (p *Presentation) Validate() error {
	if err := p.validate(); err != nil {
		return errcode.New(errcode.Input, err)
	}

	return nil
}

// PresentationFromJSON parses and validates a Presentation.
func PresentationFromJSON(data []byte) (*Presentation, error) {
	p := &Presentation{}

	if err := p.UnmarshalJSON(data); err != nil {
		return nil, errcode.Newf(errcode.Input, "parse W3C presentation: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}
