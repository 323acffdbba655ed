/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

type testIssuer struct {
	schema      *Schema
	credDef     *CredentialDefinition
	credDefPriv *CredentialDefinitionPrivate
	kcp         *KeyCorrectnessProof
}

func newTestIssuer(t *testing.T, name string, attrs []string) *testIssuer {
	t.Helper()

	schema, err := CreateSchema("did:example:issuer", name, "1.0", attrs)
	require.NoError(t, err)

	credDef, credDefPriv, kcp, err := CreateCredentialDefinition(schema.ID(), schema, "did:example:issuer",
		"default", "CL", false)
	require.NoError(t, err)

	return &testIssuer{schema: schema, credDef: credDef, credDefPriv: credDefPriv, kcp: kcp}
}

func (iss *testIssuer) issue(t *testing.T, linkSecret *LinkSecret, values map[string]string) *Credential {
	t.Helper()

	offer, err := CreateCredentialOffer(iss.schema.ID(), iss.credDef.ID(), iss.kcp)
	require.NoError(t, err)

	req, meta, err := CreateCredentialRequest("entropy", "", iss.credDef, linkSecret, "default", offer)
	require.NoError(t, err)

	issued, err := CreateCredential(iss.credDef, iss.credDefPriv, offer, req, values)
	require.NoError(t, err)

	cred, err := ProcessCredential(issued, meta, linkSecret, iss.credDef, nil)
	require.NoError(t, err)

	return cred
}

// proveWith builds a presentation like createPresentation but lets every entry commit to its own link secret
// and blinding.
func proveWith(t *testing.T, presReq *PresentationRequest, entries []*CredentialEntry, proves []*CredentialProve,
	schemas map[string]*Schema, credDefs map[string]*CredentialDefinition, secrets []*LinkSecret,
	blindings []*ml.Zr) *Presentation {
	t.Helper()

	requested := &acdoc.RequestedProof{
		RevealedAttrs:     map[string]acdoc.RevealedAttribute{},
		SelfAttestedAttrs: map[string]string{},
		UnrevealedAttrs:   map[string]acdoc.SubProofReferent{},
		Predicates:        map[string]acdoc.SubProofReferent{},
	}

	builders, order, err := newSubProofBuilders(presReq, entries, proves, schemas, credDefs)
	require.NoError(t, err)

	for _, p := range proves {
		require.NoError(t, builders[p.EntryIndex].addReferent(presReq, p, slices.Index(order, p.EntryIndex),
			requested))
	}

	tr := newPresentationTranscript(presReq.Nonce, len(order))

	for _, idx := range order {
		require.NoError(t, builders[idx].commit(tr, secrets[idx].Scalar(), blindings[idx]))
	}

	c := tr.Challenge()

	pres := &acdoc.Presentation{
		Proof:          acdoc.PresentationProof{AggregatedProof: acdoc.AggregatedProof{C: c}},
		RequestedProof: *requested,
	}

	for _, idx := range order {
		pres.Proof.Proofs = append(pres.Proof.Proofs, builders[idx].respond(c))
		pres.Identifiers = append(pres.Identifiers, builders[idx].identifier)
	}

	return pres
}

func TestVerifyPresentationLinkSecretBinding(t *testing.T) {
	gvt := newTestIssuer(t, "gvt", []string{"name", "age"})
	emp := newTestIssuer(t, "employment", []string{"employer"})

	alice, bob := CreateLinkSecret(), CreateLinkSecret()

	aliceGvt := gvt.issue(t, alice, map[string]string{"name": "Alice", "age": "28"})
	aliceEmp := emp.issue(t, alice, map[string]string{"employer": "ACME"})
	bobEmp := emp.issue(t, bob, map[string]string{"employer": "Initech"})

	nonce, err := GenerateNonce()
	require.NoError(t, err)

	presReq := &PresentationRequest{
		Name:    "binding",
		Version: "1.0",
		Nonce:   nonce,
		RequestedAttributes: map[string]AttributeInfo{
			"attr1_referent": {Name: "name", Restrictions: []Restriction{{"schema_name": "gvt"}}},
			"attr2_referent": {Name: "employer", Restrictions: []Restriction{{"schema_name": "employment"}}},
		},
		RequestedPredicates: map[string]PredicateInfo{},
	}

	proves := []*CredentialProve{
		{EntryIndex: 0, Referent: "attr1_referent", Reveal: true},
		{EntryIndex: 1, Referent: "attr2_referent", Reveal: true},
	}

	schemas := map[string]*Schema{gvt.schema.ID(): gvt.schema, emp.schema.ID(): emp.schema}
	credDefs := map[string]*CredentialDefinition{gvt.credDef.ID(): gvt.credDef, emp.credDef.ID(): emp.credDef}

	verify := func(pres *Presentation) bool {
		ok, err := VerifyPresentation(pres, presReq, schemas, credDefs, nil, nil, nil)
		require.NoError(t, err)

		return ok
	}

	t.Run("one holder", func(t *testing.T) {
		blinding := mlutil.RandomZr(nil)

		pres := proveWith(t, presReq, []*CredentialEntry{{Credential: aliceGvt}, {Credential: aliceEmp}}, proves,
			schemas, credDefs, []*LinkSecret{alice, alice}, []*ml.Zr{blinding, blinding})
		require.True(t, verify(pres))
	})

	t.Run("two holders", func(t *testing.T) {
		entries := []*CredentialEntry{{Credential: aliceGvt}, {Credential: bobEmp}}

		pres := proveWith(t, presReq, entries, proves, schemas, credDefs, []*LinkSecret{alice, bob},
			[]*ml.Zr{mlutil.RandomZr(nil), mlutil.RandomZr(nil)})
		require.False(t, verify(pres))

		blinding := mlutil.RandomZr(nil)

		pres = proveWith(t, presReq, entries, proves, schemas, credDefs, []*LinkSecret{alice, bob},
			[]*ml.Zr{blinding, blinding})
		require.False(t, verify(pres))
	})

	t.Run("missing link secret response", func(t *testing.T) {
		blinding := mlutil.RandomZr(nil)

		pres := proveWith(t, presReq, []*CredentialEntry{{Credential: aliceGvt}, {Credential: aliceEmp}}, proves,
			schemas, credDefs, []*LinkSecret{alice, alice}, []*ml.Zr{blinding, blinding})
		pres.Proof.Proofs[1].PrimaryProof.ZLinkSecret = nil
		require.False(t, verify(pres))
	})
}
