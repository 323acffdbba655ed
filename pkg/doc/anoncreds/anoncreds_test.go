/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

const issuerID = "did:example:issuer"

func TestSchema(t *testing.T) {
	schema, err := acdoc.SchemaFromJSON([]byte(`{"issuerId":"did:example:issuer","name":"gvt","version":"1.0",` +
		`"attrNames":["First Name","age"]}`))
	require.NoError(t, err)
	require.Equal(t, "did:example:issuer/anoncreds/v0/SCHEMA/gvt/1.0", schema.ID())
	require.Equal(t, []string{"firstname", "age"}, schema.NormalizedAttrNames())
	require.True(t, schema.HasAttr("FIRSTNAME"))
	require.False(t, schema.HasAttr("name"))

	_, err = acdoc.SchemaFromJSON([]byte(`{"issuerId":"i","name":"n","version":"1","attrNames":["a","A"]}`))
	require.Equal(t, errcode.Input, errcode.KindOf(err))

	_, err = acdoc.SchemaFromJSON([]byte(`{"attrNames":`))
	require.Equal(t, errcode.Input, errcode.KindOf(err))
}

func TestCredentialDefinitionJSON(t *testing.T) {
	pk, sk, err := bbs.GenerateKeyPair(2, nil)
	require.NoError(t, err)

	credDef := &acdoc.CredentialDefinition{
		SchemaID: issuerID + "/anoncreds/v0/SCHEMA/gvt/1.0",
		Type:     acdoc.SignatureTypeBBS,
		Tag:      "default",
		IssuerID: issuerID,
		Value: acdoc.CredentialDefinitionValue{
			Primary:    pk,
			Attributes: []string{"age", "name"},
			Revocation: accumulator.GenerateCredentialKey(nil),
		},
	}

	data, err := json.Marshal(credDef)
	require.NoError(t, err)

	parsed, err := acdoc.CredentialDefinitionFromJSON(data)
	require.NoError(t, err)
	require.Equal(t, credDef.ID(), parsed.ID())
	require.True(t, parsed.SupportsRevocation())
	require.Equal(t, 1, parsed.AttributeIndex("Name"))
	require.Equal(t, -1, parsed.AttributeIndex("height"))

	again, err := json.Marshal(parsed)
	require.NoError(t, err)
	require.Equal(t, data, again)

	t.Run("private part", func(t *testing.T) {
		priv := &acdoc.CredentialDefinitionPrivate{Value: acdoc.CredentialDefinitionPrivateValue{Primary: sk}}

		data, err := json.Marshal(priv)
		require.NoError(t, err)

		parsed, err := acdoc.CredentialDefinitionPrivateFromJSON(data)
		require.NoError(t, err)
		require.True(t, parsed.Value.Primary.X.Equals(sk.X))
	})

	t.Run("key correctness proof", func(t *testing.T) {
		data, err := json.Marshal(bbs.NewKeyCorrectnessProof(pk, sk, nil))
		require.NoError(t, err)

		kcp, err := acdoc.KeyCorrectnessProofFromJSON(data)
		require.NoError(t, err)
		require.NoError(t, kcp.Verify(pk))
	})
}

func TestLinkSecret(t *testing.T) {
	ls := acdoc.NewLinkSecret(mlutil.ZrFromInt(123456789))
	require.Equal(t, "123456789", ls.Decimal())

	for _, s := range []string{fmt.Sprint(ls), fmt.Sprintf("%v %+v %#v %s %d", ls, ls, ls, ls, ls)} {
		require.NotContains(t, s, "123456789")
	}

	_, err := json.Marshal(ls)
	require.ErrorIs(t, err, acdoc.ErrLinkSecretMarshal)

	_, err = json.Marshal(struct{ LS *acdoc.LinkSecret }{LS: ls})
	require.ErrorIs(t, err, acdoc.ErrLinkSecretMarshal)

	parsed, err := acdoc.LinkSecretFromDecimal(ls.Decimal())
	require.NoError(t, err)
	require.True(t, parsed.Scalar().Equals(ls.Scalar()))

	_, err = acdoc.LinkSecretFromDecimal("0")
	require.Equal(t, errcode.Input, errcode.KindOf(err))

	_, err = acdoc.LinkSecretFromDecimal("twelve")
	require.Equal(t, errcode.Input, errcode.KindOf(err))
}

func TestRevocationStatusList(t *testing.T) {
	list := &acdoc.RevocationStatusList{
		IssuerID:           issuerID,
		RevRegDefID:        "did:example:issuer/anoncreds/v0/REV_REG_DEF/x/y",
		RevocationList:     acdoc.RevocationList{false, true, false, false},
		CurrentAccumulator: mlutil.RandomG2(),
		Timestamp:          1000,
	}

	data, err := json.Marshal(list)
	require.NoError(t, err)
	require.Contains(t, string(data), `"revocationList":[0,1,0,0]`)

	parsed, err := acdoc.RevocationStatusListFromJSON(data)
	require.NoError(t, err)
	require.Equal(t, list.RevocationList, parsed.RevocationList)

	again, err := json.Marshal(parsed)
	require.NoError(t, err)
	require.Equal(t, data, again)

	require.True(t, list.Revoked(2))
	require.False(t, list.Revoked(1))
	require.True(t, list.Revoked(0))
	require.True(t, list.Revoked(5))
	require.Equal(t, []uint32{1, 3, 4}, list.ActiveIndices())

	later := list.WithTimestamp(2000)
	later.RevocationList[0] = true
	later.RevocationList[1] = false
	require.False(t, list.RevocationList[0])

	issued, revoked, err := list.Delta(later)
	require.NoError(t, err)
	require.Equal(t, []uint32{2}, issued)
	require.Equal(t, []uint32{1}, revoked)

	_, _, err = list.Delta(&acdoc.RevocationStatusList{RevocationList: acdoc.RevocationList{true}})
	require.Error(t, err)

	_, err = acdoc.RevocationStatusListFromJSON([]byte(statusListJSON(`"revocationList":[0,2]`)))
	require.Equal(t, errcode.Input, errcode.KindOf(err))
}

func statusListJSON(field string) string {
	return `{"issuerId":"i","revRegDefId":"r",` + field + `,"currentAccumulator":"` +
		mlutil.G2ToString(mlutil.RandomG2()) + `","timestamp":1}`
}

func TestPresentationRequest(t *testing.T) {
	req, err := acdoc.PresentationRequestFromJSON([]byte(`{
		"name": "proof", "version": "1.0", "nonce": "1234",
		"requested_attributes": {
			"a1": {"name": "name", "restrictions": [{"schema_name": "gvt"}]},
			"a2": {"names": ["age", "sex"], "non_revoked": {"from": 5}}
		},
		"requested_predicates": {"p1": {"name": "age", "p_type": ">=", "p_value": 18}},
		"non_revoked": {"to": 10}
	}`))
	require.NoError(t, err)

	info := req.RequestedAttributes["a1"]
	require.Equal(t, []string{"name"}, info.AttrNames())
	require.Equal(t, int64(10), *req.AttributeInterval("a1").To)
	require.Equal(t, int64(5), *req.AttributeInterval("a2").From)
	require.Equal(t, int64(10), *req.PredicateInterval("p1").To)

	require.True(t, req.AttributeInterval("a1").Contains(10))
	require.False(t, req.AttributeInterval("a1").Contains(11))
	require.False(t, req.AttributeInterval("a2").Contains(4))

	var open *acdoc.NonRevokedInterval
	require.True(t, open.Contains(1))

	for _, bad := range []string{
		`{"name":"p","version":"1","requested_attributes":{},"requested_predicates":{}}`,
		`{"name":"p","version":"1","nonce":"1","requested_attributes":{"a":{"name":"x","names":["y"]}},` +
			`"requested_predicates":{}}`,
		`{"name":"p","version":"1","nonce":"1","requested_attributes":{},` +
			`"requested_predicates":{"p":{"name":"age","p_type":"!=","p_value":1}}}`,
	} {
		_, err = acdoc.PresentationRequestFromJSON([]byte(bad))
		require.Equal(t, errcode.Input, errcode.KindOf(err), bad)
	}
}

func TestAttrRestriction(t *testing.T) {
	name, marker, ok := acdoc.AttrRestriction("attr::First Name::value")
	require.True(t, ok)
	require.False(t, marker)
	require.Equal(t, "First Name", name)

	name, marker, ok = acdoc.AttrRestriction("attr::age::marker")
	require.True(t, ok)
	require.True(t, marker)
	require.Equal(t, "age", name)

	_, _, ok = acdoc.AttrRestriction("attr::age")
	require.False(t, ok)

	_, _, ok = acdoc.AttrRestriction("schema_id")
	require.False(t, ok)
}

func TestCredentialAttributes(t *testing.T) {
	cred := &acdoc.Credential{
		SchemaID:  "s",
		CredDefID: "c",
		Values: acdoc.CredentialValues{
			"First Name": {Raw: "Alice", Encoded: "1"},
		},
	}

	key, value, ok := cred.Values.Lookup("firstname")
	require.True(t, ok)
	require.Equal(t, "First Name", key)
	require.Equal(t, "Alice", value.Raw)

	v, err := cred.Attribute(acdoc.AttrCredDefID)
	require.NoError(t, err)
	require.Equal(t, "c", v)

	v, err = cred.Attribute(acdoc.AttrRevRegIndex)
	require.NoError(t, err)
	require.Empty(t, v)

	_, err = cred.Attribute("issuer")
	require.ErrorIs(t, err, acdoc.ErrUnknownAttribute)

	_, err = acdoc.CredentialFromJSON([]byte(`{"schema_id":"s","cred_def_id":"c","values":{}}`))
	require.Equal(t, errcode.Input, errcode.KindOf(err))
}
