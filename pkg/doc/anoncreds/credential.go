/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	ml "github.com/IBM/mathlib"

	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// AttributeValue is a raw attribute value with the encoding that is signed.
type AttributeValue struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded"`
}

// CredentialValues maps schema attribute names to values.
type CredentialValues map[string]AttributeValue

// Lookup returns the value of an attribute compared by normalized name.
func (v CredentialValues) Lookup(name string) (string, AttributeValue, bool) {
	if val, ok := v[name]; ok {
		return name, val, true
	}

	norm := NormalizeAttrName(name)

	for k, val := range v {
		if NormalizeAttrName(k) == norm {
			return k, val, true
		}
	}

	return "", AttributeValue{}, false
}

// Credential is a signed set of attribute values. Revocation is set for credentials of revocable definitions.
type Credential struct {
	SchemaID   string                `json:"schema_id"`
	CredDefID  string                `json:"cred_def_id"`
	RevRegID   string                `json:"rev_reg_id,omitempty"`
	Values     CredentialValues      `json:"values"`
	Signature  *bbs.Signature        `json:"signature"`
	Revocation *CredentialRevocation `json:"rev_reg,omitempty"`
}

// CredentialRevocation binds a credential to a registry index.
type CredentialRevocation struct {
	Index uint32
	// IndexBase is g1^(gamma^Index), signed together with the attributes.
	IndexBase *ml.G1
	// Witness is the membership witness of Index in Accumulator, the value of the status list the credential
	// was issued against.
	Witness     *ml.G2
	Accumulator *ml.G2
	Timestamp   int64
}

type rawCredentialRevocation struct {
	Index       uint32 `json:"index"`
	IndexBase   string `json:"g_i"`
	Witness     string `json:"witness"`
	Accumulator string `json:"accum"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

// MarshalJSON marshals CredentialRevocation to JSON.
func (r *CredentialRevocation) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawCredentialRevocation{
		Index:       r.Index,
		IndexBase:   mlutil.G1ToString(r.IndexBase),
		Witness:     mlutil.G2ToString(r.Witness),
		Accumulator: mlutil.G2ToString(r.Accumulator),
		Timestamp:   r.Timestamp,
	})
}

// UnmarshalJSON unmarshals CredentialRevocation from JSON.
func (r *CredentialRevocation) UnmarshalJSON(data []byte) error {
	var raw rawCredentialRevocation

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d := &mlutil.Decoder{}

	*r = CredentialRevocation{
		Index:       raw.Index,
		IndexBase:   d.G1("g_i", raw.IndexBase),
		Witness:     d.G2("witness", raw.Witness),
		Accumulator: d.G2("accum", raw.Accumulator),
		Timestamp:   raw.Timestamp,
	}

	return d.Err()
}

// IsRevocable reports whether the credential is bound to a revocation registry.
func (c *Credential) IsRevocable() bool {
	return c.Revocation != nil
}

// Credential attribute names understood by Attribute.
const (
	AttrSchemaID    = "schema_id"
	AttrCredDefID   = "cred_def_id"
	AttrRevRegID    = "rev_reg_id"
	AttrRevRegIndex = "rev_reg_index"
)

// ErrUnknownAttribute is returned by attribute getters for unsupported names.
var ErrUnknownAttribute = errors.New("unknown attribute")

// Attribute returns a credential attribute by name. Registry attributes of non-revocable credentials are empty.
func (c *Credential) Attribute(name string) (string, error) {
	switch name {
	case AttrSchemaID:
		return c.SchemaID, nil
	case AttrCredDefID:
		return c.CredDefID, nil
	case AttrRevRegID:
		return c.RevRegID, nil
	case AttrRevRegIndex:
		if c.Revocation == nil {
			return "", nil
		}

		return strconv.FormatUint(uint64(c.Revocation.Index), 10), nil
	default:
		return "", fmt.Errorf("%q: %w", name, ErrUnknownAttribute)
	}
}

func (c *Credential) validate() error {
	if c.Signature == nil {
		return errors.New("missing signature")
	}

	if (c.RevRegID == "") != (c.Revocation == nil) {
		return errors.New("rev_reg_id and rev_reg must be set together")
	}

	return nil
}

// CredentialFromJSON parses a Credential.
func CredentialFromJSON(data []byte) (*Credential, error) {
	return fromJSON[Credential](data, "credential")
}
