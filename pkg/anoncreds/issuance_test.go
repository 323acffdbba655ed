/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/encoding"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
)

func TestIssuance(t *testing.T) {
	iss := newIssuer(t, "gvt", gvtAttrs, false)
	linkSecret := anoncreds.CreateLinkSecret()

	cred := iss.issue(t, linkSecret, 0, gvtValues("Alice", "28"))
	require.False(t, cred.IsRevocable())
	require.Equal(t, "28", cred.Values["age"].Encoded)
	require.Equal(t, encoding.Encode("Alice"), cred.Values["name"].Encoded)

	offer, err := anoncreds.CreateCredentialOffer(iss.schema.ID(), iss.credDef.ID(), iss.kcp)
	require.NoError(t, err)

	t.Run("request needs exactly one of entropy and prover DID", func(t *testing.T) {
		_, _, err := anoncreds.CreateCredentialRequest("", "", iss.credDef, linkSecret, "ls", offer)
		requireKind(t, err, errcode.InvalidRequest)

		_, _, err = anoncreds.CreateCredentialRequest("e", "did:example:holder", iss.credDef, linkSecret, "ls", offer)
		requireKind(t, err, errcode.InvalidRequest)

		req, _, err := anoncreds.CreateCredentialRequest("", "did:example:holder", iss.credDef, linkSecret, "ls",
			offer)
		require.NoError(t, err)
		require.Equal(t, "did:example:holder", req.ProverDID)
	})

	t.Run("offer of another definition", func(t *testing.T) {
		other := newIssuer(t, "other", gvtAttrs, false)

		_, _, err := anoncreds.CreateCredentialRequest("e", "", other.credDef, linkSecret, "ls", offer)
		requireKind(t, err, errcode.InvalidRequest)
	})

	req, meta, err := anoncreds.CreateCredentialRequest("e", "", iss.credDef, linkSecret, "ls", offer)
	require.NoError(t, err)

	t.Run("missing attribute", func(t *testing.T) {
		values := gvtValues("Alice", "28")
		delete(values, "height")

		_, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, values)
		requireKind(t, err, errcode.MissingAttribute)
	})

	t.Run("unknown attribute", func(t *testing.T) {
		values := gvtValues("Alice", "28")
		values["eyes"] = "green"

		_, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, values)
		requireKind(t, err, errcode.InvalidRequest)
	})

	t.Run("request for another nonce", func(t *testing.T) {
		otherOffer, err := anoncreds.CreateCredentialOffer(iss.schema.ID(), iss.credDef.ID(), iss.kcp)
		require.NoError(t, err)

		_, err = anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, otherOffer, req, gvtValues("Alice", "28"))
		requireKind(t, err, errcode.InvalidRequest)
	})

	t.Run("link secret other than requested", func(t *testing.T) {
		issued, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Alice", "28"))
		require.NoError(t, err)

		_, err = anoncreds.ProcessCredential(issued, meta, anoncreds.CreateLinkSecret(), iss.credDef, nil)
		requireKind(t, err, errcode.CredentialValidationFailed)
	})

	t.Run("tampered value", func(t *testing.T) {
		issued, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Alice", "28"))
		require.NoError(t, err)

		issued.Values["age"] = anoncreds.AttributeValue{Raw: "17", Encoded: "17"}

		_, err = anoncreds.ProcessCredential(issued, meta, linkSecret, iss.credDef, nil)
		requireKind(t, err, errcode.CredentialValidationFailed)
	})

	t.Run("caller supplied encodings", func(t *testing.T) {
		issued, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Alice", "28"),
			anoncreds.WithEncodedValues(map[string]string{"name": "42"}))
		require.NoError(t, err)
		require.Equal(t, "42", issued.Values["name"].Encoded)

		_, err = anoncreds.ProcessCredential(issued, meta, linkSecret, iss.credDef, nil)
		require.NoError(t, err)
	})

	t.Run("revocation config for a non-revocable definition", func(t *testing.T) {
		_, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Alice", "28"),
			anoncreds.WithRevocationConfig(&anoncreds.RevocationConfig{}))
		requireKind(t, err, errcode.InvalidRequest)
	})
}

func TestRevocableIssuance(t *testing.T) {
	iss := newIssuer(t, "gvt", gvtAttrs, true)
	linkSecret := anoncreds.CreateLinkSecret()

	cred := iss.issue(t, linkSecret, 3, gvtValues("Alice", "28"))
	require.True(t, cred.IsRevocable())
	require.Equal(t, iss.revRegDef.ID(), cred.RevRegID)
	require.Equal(t, uint32(3), cred.Revocation.Index)

	index, err := cred.Attribute("rev_reg_index")
	require.NoError(t, err)
	require.Equal(t, "3", index)

	offer, err := anoncreds.CreateCredentialOffer(iss.schema.ID(), iss.credDef.ID(), iss.kcp)
	require.NoError(t, err)

	req, _, err := anoncreds.CreateCredentialRequest("e", "", iss.credDef, linkSecret, "ls", offer)
	require.NoError(t, err)

	config := func(index uint32) anoncreds.Opt {
		return anoncreds.WithRevocationConfig(&anoncreds.RevocationConfig{
			RegistryDefinition:        iss.revRegDef,
			RegistryDefinitionPrivate: iss.revRegDefPriv,
			StatusList:                iss.statusList,
			RegistryIndex:             index,
		})
	}

	t.Run("missing revocation config", func(t *testing.T) {
		_, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Bob", "30"))
		requireKind(t, err, errcode.InvalidRequest)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Bob", "30"),
			config(registrySize+1))
		requireKind(t, err, errcode.IndexOutOfRange)

		_, err = anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Bob", "30"),
			config(0))
		requireKind(t, err, errcode.IndexOutOfRange)
	})

	t.Run("revoked index", func(t *testing.T) {
		iss.revoke(t, issuedAt+1, 5)

		_, err := anoncreds.CreateCredential(iss.credDef, iss.credDefPriv, offer, req, gvtValues("Bob", "30"),
			config(5))
		requireKind(t, err, errcode.CredentialRevoked)
	})

	t.Run("processing needs the registry definition", func(t *testing.T) {
		_, err := anoncreds.ProcessCredential(cred, &anoncreds.CredentialRequestMetadata{
			LinkSecretBlindingData: cred.Signature.S,
		}, linkSecret, iss.credDef, nil)
		requireKind(t, err, errcode.InvalidRequest)
	})
}
