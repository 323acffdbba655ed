/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package w3c

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hyperledger/aries-framework-go/component/models/dataintegrity/models"
	jsonutil "github.com/hyperledger/aries-framework-go/component/models/util/json"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// AttrTimestamp names the status list timestamp in ProofAttribute.
const AttrTimestamp = "timestamp"

const subjectID = "id"

// CredentialSchema names the anoncreds entities a credential is bound to.
type CredentialSchema struct {
	Type       string `json:"type"`
	Definition string `json:"definition"`
	Schema     string `json:"schema"`
	Revocation string `json:"revocation,omitempty"`
	Encoding   string `json:"encoding"`
}

// Credential is an anoncreds credential in the W3C data model. IssuanceDate is set for version 1.1, ValidFrom
// for version 2.0.
type Credential struct {
	Context           []string               `json:"@context"`
	ID                string                 `json:"id,omitempty"`
	Types             []string               `json:"type"`
	Issuer            string                 `json:"issuer"`
	IssuanceDate      string                 `json:"issuanceDate,omitempty"`
	ValidFrom         string                 `json:"validFrom,omitempty"`
	CredentialSchema  *CredentialSchema      `json:"credentialSchema"`
	CredentialSubject map[string]interface{} `json:"credentialSubject"`
	Proof             *Proof                 `json:"proof"`

	CustomFields CustomFields `json:"-"`
}

type rawCredential Credential

// NewCredential returns a credential of the given version carrying subject, with no proof.
func NewCredential(version, issuer string, issued time.Time, schema *CredentialSchema,
	subject map[string]interface{}) (*Credential, error) {
	ctx, err := ContextForVersion(version)
	if err != nil {
		return nil, err
	}

	c := &Credential{
		Context:           []string{ctx, AnonCredsContext},
		Types:             []string{TypeVerifiableCredential, TypeAnonCredsCredential},
		Issuer:            issuer,
		CredentialSchema:  schema,
		CredentialSubject: subject,
	}

	date := issued.UTC().Format(models.DateTimeFormat)

	if version == Version11 {
		c.IssuanceDate = date
	} else {
		c.ValidFrom = date
	}

	return c, nil
}

// MarshalJSON marshals Credential with its custom fields.
func (c *Credential) MarshalJSON() ([]byte, error) {
	return jsonutil.MarshalWithCustomFields((*rawCredential)(c), c.CustomFields)
}

// UnmarshalJSON unmarshals Credential and collects its custom fields.
func (c *Credential) UnmarshalJSON(data []byte) error {
	raw := &rawCredential{}

	cf, err := unmarshalWithCustomFields(data, raw)
	if err != nil {
		return err
	}

	*c = Credential(*raw)
	c.CustomFields = cf

	return nil
}

// Version returns the data model version selected by the base context.
func (c *Credential) Version() string {
	v, err := versionOf(c.Context)
	if err != nil {
		return ""
	}

	return v
}

// IssuedAt returns the issuance date, or the start of validity for version 2.0.
func (c *Credential) IssuedAt() (time.Time, error) {
	date := c.IssuanceDate
	if c.Version() == Version20 {
		date = c.ValidFrom
	}

	t, err := time.Parse(models.DateTimeFormat, date)
	if err != nil {
		return time.Time{}, errcode.Newf(errcode.Input, "credential date: %w", err)
	}

	return t, nil
}

// Attributes returns the raw attribute values of the subject. Numbers are converted to their decimal form,
// booleans to 1 or 0.
func (c *Credential) Attributes() (map[string]string, error) {
	subject := make(map[string]interface{}, len(c.CredentialSubject))

	for k, v := range c.CredentialSubject {
		if k != subjectID {
			subject[k] = v
		}
	}

	attrs := map[string]string{}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &attrs,
	})
	if err != nil {
		return nil, errcode.Newf(errcode.Unexpected, "subject decoder: %w", err)
	}

	if err = dec.Decode(subject); err != nil {
		return nil, errcode.Newf(errcode.Input, "credential subject: %w", err)
	}

	return attrs, nil
}

// IntegrityProofDetails returns the Data Integrity proof of the credential.
func (c *Credential) IntegrityProofDetails() (*Proof, error) {
	if c.Proof == nil {
		return nil, errcode.Newf(errcode.Input, "credential has no proof")
	}

	if c.Proof.Type != ProofTypeDataIntegrity {
		return nil, errcode.Newf(errcode.Input, "credential proof is a %s, not a %s", c.Proof.Type,
			ProofTypeDataIntegrity)
	}

	return c.Proof, nil
}

// SignatureProof decodes the payload of an issued credential proof.
func (c *Credential) SignatureProof() (*SignatureProofValue, error) {
	if err := c.Proof.check(CryptosuiteSignature); err != nil {
		return nil, err
	}

	if c.CredentialSchema == nil {
		return nil, errcode.Newf(errcode.Input, "credential has no credentialSchema")
	}

	payload := &SignatureProofValue{}

	if err := DecodeProofValue(c.Proof.ProofValue, payload); err != nil {
		return nil, err
	}

	if payload.Signature == nil {
		return nil, errcode.Newf(errcode.Input, "proof value has no signature")
	}

	if payload.RevRegID != c.CredentialSchema.Revocation {
		return nil, errcode.Newf(errcode.Input, "proof is for registry %q, credential schema names %q",
			payload.RevRegID, c.CredentialSchema.Revocation)
	}

	if (payload.RevRegID == "") != (payload.Revocation == nil) {
		return nil, errcode.Newf(errcode.Input, "rev_reg_id and rev_reg must be set together")
	}

	return payload, nil
}

// PresentationProof decodes the payload of a credential proof within a presentation.
func (c *Credential) PresentationProof() (*CredentialPresentationProofValue, error) {
	if err := c.Proof.check(CryptosuitePresentationCredential); err != nil {
		return nil, err
	}

	payload := &CredentialPresentationProofValue{}

	if err := DecodeProofValue(c.Proof.ProofValue, payload); err != nil {
		return nil, err
	}

	if payload.SubProof == nil || payload.SubProof.PrimaryProof == nil {
		return nil, errcode.Newf(errcode.Input, "proof value has no primary proof")
	}

	return payload, nil
}

// ProofAttribute returns schema_id, cred_def_id, rev_reg_id, rev_reg_index or timestamp. Values a credential
// does not carry are empty; the registry index of a credential in a presentation is hidden.
func (c *Credential) ProofAttribute(name string) (string, error) {
	if c.CredentialSchema == nil {
		return "", errcode.Newf(errcode.Input, "credential has no credentialSchema")
	}

	switch name {
	case acdoc.AttrSchemaID:
		return c.CredentialSchema.Schema, nil
	case acdoc.AttrCredDefID:
		return c.CredentialSchema.Definition, nil
	case acdoc.AttrRevRegID:
		return c.CredentialSchema.Revocation, nil
	case acdoc.AttrRevRegIndex, AttrTimestamp:
	default:
		return "", fmt.Errorf("%q: %w", name, acdoc.ErrUnknownAttribute)
	}

	proof, err := c.IntegrityProofDetails()
	if err != nil {
		return "", err
	}

	if proof.Cryptosuite == CryptosuitePresentationCredential {
		return c.presentationProofAttribute(name)
	}

	payload, err := c.SignatureProof()
	if err != nil || payload.Revocation == nil {
		return "", err
	}

	if name == acdoc.AttrRevRegIndex {
		return strconv.FormatUint(uint64(payload.Revocation.Index), 10), nil
	}

	return strconv.FormatInt(payload.Revocation.Timestamp, 10), nil
}

func (c *Credential) presentationProofAttribute(name string) (string, error) {
	payload, err := c.PresentationProof()
	if err != nil || name == acdoc.AttrRevRegIndex || payload.Timestamp == nil {
		return "", err
	}

	return strconv.FormatInt(*payload.Timestamp, 10), nil
}

func (c *Credential) validate() error {
	if _, err := versionOf(c.Context); err != nil {
		return err
	}

	if !slices.Contains(c.Context, AnonCredsContext) {
		return fmt.Errorf("missing context %s", AnonCredsContext)
	}

	if !slices.Contains(c.Types, TypeVerifiableCredential) {
		return fmt.Errorf("missing type %s", TypeVerifiableCredential)
	}

	if c.CredentialSchema == nil || c.CredentialSchema.Type != TypeCredentialSchema {
		return fmt.Errorf("credentialSchema must be of type %s", TypeCredentialSchema)
	}

	if c.CredentialSchema.Definition == "" || c.CredentialSchema.Schema == "" {
		return fmt.Errorf("credentialSchema must name a definition and a schema")
	}

	if c.CredentialSchema.Encoding != EncodingAuto {
		return fmt.Errorf("unsupported attribute encoding %q", c.CredentialSchema.Encoding)
	}

	if c.Proof == nil {
		return fmt.Errorf("missing proof")
	}

	return nil
}

// Validate checks the contexts, the credential schema and the presence of a proof.
func (c *Credential) Validate() error {
	if err := c.validate(); err != nil {
		return errcode.New(errcode.Input, err)
	}

	return nil
}

// CredentialFromJSON parses and validates a Credential.
func CredentialFromJSON(data []byte) (*Credential, error) {
	c := &Credential{}

	if err := c.UnmarshalJSON(data); err != nil {
		return nil, errcode.Newf(errcode.Input, "parse W3C credential: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}
