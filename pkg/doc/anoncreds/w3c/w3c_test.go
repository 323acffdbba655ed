/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package w3c_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
	"github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds/w3c"
)

const credentialJSON = `{
  "@context": [
    "https://www.w3.org/2018/credentials/v1",
    "https://raw.githubusercontent.com/hyperledger/anoncreds-spec/main/data/anoncreds-w3c-context.json"
  ],
  "id": "urn:uuid:5e1c1f0a-5a1b-4f4e-9d0b-2f7c8d9e0a11",
  "type": ["VerifiableCredential", "AnonCredsCredential"],
  "issuer": "did:example:issuer",
  "issuanceDate": "2023-11-02T10:00:00Z",
  "credentialSchema": {
    "type": "AnonCredsDefinition",
    "definition": "did:example:issuer/anoncreds/v0/CLAIM_DEF/s/default",
    "schema": "did:example:issuer/anoncreds/v0/SCHEMA/gvt/1.0",
    "encoding": "auto"
  },
  "credentialSubject": {"id": "did:example:holder", "name": "Alice", "age": 28, "member": true},
  "credentialStatus": {"type": "Custom", "id": "urn:status:1"},
  "proof": {
    "type": "DataIntegrityProof",
    "cryptosuite": "anoncreds-2023",
    "proofPurpose": "assertionMethod",
    "verificationMethod": "did:example:issuer/anoncreds/v0/CLAIM_DEF/s/default",
    "proofValue": "ueyJzaWduYXR1cmUiOm51bGx9"
  },
  "refreshService": {"type": "Manual"}
}`

func parseCredential(t *testing.T) *w3c.Credential {
	t.Helper()

	c, err := w3c.CredentialFromJSON([]byte(credentialJSON))
	require.NoError(t, err)

	return c
}

func TestCredentialJSON(t *testing.T) {
	c := parseCredential(t)

	require.Equal(t, w3c.Version11, c.Version())
	require.Len(t, c.CustomFields, 2)
	require.Contains(t, c.CustomFields, "credentialStatus")
	require.Contains(t, c.CustomFields, "refreshService")
	require.Equal(t, "anoncreds-2023", c.Proof.Cryptosuite)
	require.Equal(t, "assertionMethod", c.Proof.ProofPurpose)

	details, err := c.IntegrityProofDetails()
	require.NoError(t, err)
	require.Equal(t, c.CredentialSchema.Definition, details.VerificationMethod)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, credentialJSON, string(data))

	issued, err := c.IssuedAt()
	require.NoError(t, err)
	require.True(t, time.Date(2023, 11, 2, 10, 0, 0, 0, time.UTC).Equal(issued))

	t.Run("subject attributes", func(t *testing.T) {
		attrs, err := c.Attributes()
		require.NoError(t, err)
		require.Equal(t, map[string]string{"name": "Alice", "age": "28", "member": "1"}, attrs)

		nested := *c
		nested.CredentialSubject = map[string]interface{}{"address": map[string]interface{}{"city": "Berlin"}}

		_, err = nested.Attributes()
		require.Equal(t, errcode.Input, errcode.KindOf(err))
	})

	t.Run("not a data integrity proof", func(t *testing.T) {
		other := *c
		proof := *c.Proof
		proof.Type = "Ed25519Signature2020"
		other.Proof = &proof

		_, err := other.IntegrityProofDetails()
		require.Equal(t, errcode.Input, errcode.KindOf(err))
	})

	t.Run("empty signature payload", func(t *testing.T) {
		_, err := c.SignatureProof()
		require.Equal(t, errcode.Input, errcode.KindOf(err))
	})

	t.Run("invalid documents", func(t *testing.T) {
		for name, edit := range map[string]func(m map[string]interface{}){
			"base context": func(m map[string]interface{}) {
				m["@context"] = []string{"https://example.com/v1", w3c.AnonCredsContext}
			},
			"anoncreds context": func(m map[string]interface{}) { m["@context"] = []string{w3c.ContextV1} },
			"type":              func(m map[string]interface{}) { m["type"] = []string{"AnonCredsCredential"} },
			"schema type": func(m map[string]interface{}) {
				m["credentialSchema"].(map[string]interface{})["type"] = "JsonSchema"
			},
			"encoding": func(m map[string]interface{}) {
				m["credentialSchema"].(map[string]interface{})["encoding"] = "none"
			},
			"proof":  func(m map[string]interface{}) { delete(m, "proof") },
			"syntax": func(m map[string]interface{}) { m["issuer"] = []int{1} },
		} {
			var m map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(credentialJSON), &m))

			edit(m)

			data, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = w3c.CredentialFromJSON(data)
			require.Equal(t, errcode.Input, errcode.KindOf(err), name)
		}
	})
}

func TestProofValue(t *testing.T) {
	g1, g2 := mlutil.Curve().GenG1, mlutil.Curve().GenG2

	payload := &w3c.SignatureProofValue{
		Signature: &bbs.Signature{A: g1, E: mlutil.One(), S: mlutil.ZrFromInt(7)},
		RevRegID:  "did:example:issuer/anoncreds/v0/REV_REG_DEF/d/r1",
		Revocation: &acdoc.CredentialRevocation{
			Index:       3,
			IndexBase:   g1,
			Witness:     g2,
			Accumulator: g2,
			Timestamp:   1000,
		},
	}

	p, err := w3c.NewProof(w3c.CryptosuiteSignature, w3c.PurposeAssertionMethod, "cred-def", payload)
	require.NoError(t, err)
	require.Equal(t, w3c.ProofTypeDataIntegrity, p.Type)
	require.True(t, strings.HasPrefix(p.ProofValue, "u"))

	c := parseCredential(t)
	c.Proof = p
	c.CredentialSchema.Revocation = payload.RevRegID

	decoded, err := c.SignatureProof()
	require.NoError(t, err)
	require.True(t, decoded.Signature.A.Equals(g1))
	require.Equal(t, uint32(3), decoded.Revocation.Index)

	for name, want := range map[string]string{
		acdoc.AttrSchemaID:    "did:example:issuer/anoncreds/v0/SCHEMA/gvt/1.0",
		acdoc.AttrRevRegID:    payload.RevRegID,
		acdoc.AttrRevRegIndex: "3",
		w3c.AttrTimestamp:     "1000",
	} {
		got, err := c.ProofAttribute(name)
		require.NoError(t, err)
		require.Equal(t, want, got, name)
	}

	_, err = c.ProofAttribute("name")
	require.ErrorIs(t, err, acdoc.ErrUnknownAttribute)

	t.Run("registry mismatch", func(t *testing.T) {
		other := *c
		other.CredentialSchema = &w3c.CredentialSchema{Type: w3c.TypeCredentialSchema, Definition: "d", Schema: "s",
			Encoding: w3c.EncodingAuto}

		_, err := other.SignatureProof()
		require.Equal(t, errcode.Input, errcode.KindOf(err))
	})

	t.Run("wrong cryptosuite", func(t *testing.T) {
		_, err := c.PresentationProof()
		require.Equal(t, errcode.Input, errcode.KindOf(err))
	})

	t.Run("not base64url", func(t *testing.T) {
		var v w3c.SignatureProofValue

		err := w3c.DecodeProofValue("z"+strings.Repeat("1", 8), &v)
		require.Equal(t, errcode.Input, errcode.KindOf(err))

		err = w3c.DecodeProofValue("", &v)
		require.Equal(t, errcode.Input, errcode.KindOf(err))
	})
}

func TestPresentationJSON(t *testing.T) {
	p, err := w3c.NewPresentation(w3c.Version20)
	require.NoError(t, err)
	require.Equal(t, w3c.Version20, p.Version())

	_, err = w3c.NewPresentation("1.0")
	require.Equal(t, errcode.InvalidRequest, errcode.KindOf(err))

	p.VerifiableCredential = []*w3c.Credential{parseCredential(t)}
	p.Proof = &w3c.Proof{Cryptosuite: w3c.CryptosuitePresentation}
	p.Proof.Type = w3c.ProofTypeDataIntegrity
	p.Proof.Challenge = "1234"
	p.Proof.ProofValue = "ueyJhZ2dyZWdhdGVkIjp7fX0"
	p.CustomFields = w3c.CustomFields{"holder": "did:example:holder"}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	parsed, err := w3c.PresentationFromJSON(data)
	require.NoError(t, err)
	require.Equal(t, "did:example:holder", parsed.CustomFields["holder"])
	require.Equal(t, "1234", parsed.Proof.Challenge)
	require.Len(t, parsed.VerifiableCredential[0].CustomFields, 2)

	_, err = parsed.PresentationProof()
	require.Equal(t, errcode.Input, errcode.KindOf(err))

	parsed.Types = []string{"AnonCredsPresentation"}
	require.Equal(t, errcode.Input, errcode.KindOf(parsed.Validate()))
}
