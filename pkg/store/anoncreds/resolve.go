/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// PublicInputs are the public entities a presentation is verified against.
type PublicInputs struct {
	Schemas     map[string]*acdoc.Schema
	CredDefs    map[string]*acdoc.CredentialDefinition
	RevRegDefs  map[string]*acdoc.RevocationRegistryDefinition
	StatusLists []*acdoc.RevocationStatusList
}

// Resolve loads the public entities named by the identifiers of a presentation.
func (s *Store) Resolve(pres *acdoc.Presentation) (*PublicInputs, error) {
	if pres == nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "presentation is required")
	}

	return s.ResolveIdentifiers(pres.Identifiers...)
}

// ResolveIdentifiers loads the entities named by ids. A status list is loaded for every identifier with a
// registry and a timestamp, each entity is loaded once.
func (s *Store) ResolveIdentifiers(ids ...acdoc.Identifier) (*PublicInputs, error) {
	in := &PublicInputs{
		Schemas:    map[string]*acdoc.Schema{},
		CredDefs:   map[string]*acdoc.CredentialDefinition{},
		RevRegDefs: map[string]*acdoc.RevocationRegistryDefinition{},
	}

	type listKey struct {
		revRegDefID string
		timestamp   int64
	}

	lists := map[listKey]bool{}

	for _, id := range ids {
		if err := in.addSchema(s, id.SchemaID); err != nil {
			return nil, err
		}

		if err := in.addCredDef(s, id.CredDefID); err != nil {
			return nil, err
		}

		if id.RevRegID == "" {
			continue
		}

		if err := in.addRevRegDef(s, id.RevRegID); err != nil {
			return nil, err
		}

		if id.Timestamp == nil || lists[listKey{id.RevRegID, *id.Timestamp}] {
			continue
		}

		list, err := s.GetRevocationStatusList(id.RevRegID, *id.Timestamp)
		if err != nil {
			return nil, err
		}

		lists[listKey{id.RevRegID, *id.Timestamp}] = true
		in.StatusLists = append(in.StatusLists, list)
	}

	return in, nil
}

func (in *PublicInputs) addSchema(s *Store, id string) error {
	if _, ok := in.Schemas[id]; ok {
		return nil
	}

	schema, err := s.GetSchema(id)
	if err != nil {
		return err
	}

	in.Schemas[id] = schema

	return nil
}

func (in *PublicInputs) addCredDef(s *Store, id string) error {
	if _, ok := in.CredDefs[id]; ok {
		return nil
	}

	credDef, err := s.GetCredentialDefinition(id)
	if err != nil {
		return err
	}

	in.CredDefs[id] = credDef

	return nil
}

func (in *PublicInputs) addRevRegDef(s *Store, id string) error {
	if _, ok := in.RevRegDefs[id]; ok {
		return nil
	}

	revRegDef, err := s.GetRevocationRegistryDefinition(id)
	if err != nil {
		return err
	}

	in.RevRegDefs[id] = revRegDef

	return nil
}
