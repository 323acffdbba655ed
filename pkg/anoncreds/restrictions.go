/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// markerPresent is the only value an attr::<name>::marker restriction accepts.
const markerPresent = "1"

// restrictionSubject is what a restriction is evaluated against: the public entities of a sub proof and the
// attribute values it reveals, keyed by normalized name.
type restrictionSubject struct {
	schemaID  string
	schema    *Schema
	credDefID string
	credDef   *CredentialDefinition
	revRegID  string
	revealed  map[string]string
}

// matchRestrictions reports whether the subject satisfies at least one of restrictions. An empty list always
// matches.
func matchRestrictions(restrictions []acdoc.Restriction, subject *restrictionSubject) (bool, error) {
	if len(restrictions) == 0 {
		return true, nil
	}

	for _, r := range restrictions {
		ok, err := subject.match(r)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

func (s *restrictionSubject) match(r acdoc.Restriction) (bool, error) {
	for key, want := range r {
		ok, err := s.matchKey(key, want)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func (s *restrictionSubject) matchKey(key, want string) (bool, error) {
	switch key {
	case acdoc.RestrictionSchemaID:
		return s.schemaID == want, nil
	case acdoc.RestrictionSchemaIssuerID:
		return s.schema.IssuerID == want, nil
	case acdoc.RestrictionSchemaName:
		return s.schema.Name == want, nil
	case acdoc.RestrictionSchemaVersion:
		return s.schema.Version == want, nil
	case acdoc.RestrictionIssuerID:
		return s.credDef.IssuerID == want, nil
	case acdoc.RestrictionCredDefID:
		return s.credDefID == want, nil
	case acdoc.RestrictionRevRegID:
		return s.revRegID == want, nil
	}

	name, isMarker, ok := acdoc.AttrRestriction(key)
	if !ok {
		return false, errcode.Newf(errcode.InvalidRequest, "restriction %q: %w", key, acdoc.ErrUnknownRestriction)
	}

	if isMarker {
		if want != markerPresent {
			return false, errcode.Newf(errcode.InvalidRequest, "restriction %q expects %q, got %q", key,
				markerPresent, want)
		}

		return s.credDef.AttributeIndex(name) >= 0, nil
	}

	raw, revealed := s.revealed[acdoc.NormalizeAttrName(name)]

	return revealed && raw == want, nil
}
