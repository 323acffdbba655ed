/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/rangeproof"
)

// NonRevokedInterval bounds the timestamp of the status list a credential is proven against. Unset bounds are
// open.
type NonRevokedInterval struct {
	From *int64 `json:"from,omitempty"`
	To   *int64 `json:"to,omitempty"`
}

// Contains reports whether from <= timestamp <= to.
func (i *NonRevokedInterval) Contains(timestamp int64) bool {
	if i == nil {
		return true
	}

	if i.From != nil && timestamp < *i.From {
		return false
	}

	return i.To == nil || timestamp <= *i.To
}

// Restriction is a set of conditions that must all hold for a credential. The keys are schema_id,
// schema_issuer_id, schema_name, schema_version, issuer_id, cred_def_id, rev_reg_id, attr::<name>::value and
// attr::<name>::marker.
type Restriction map[string]string

// Restriction keys.
const (
	RestrictionSchemaID       = "schema_id"
	RestrictionSchemaIssuerID = "schema_issuer_id"
	RestrictionSchemaName     = "schema_name"
	RestrictionSchemaVersion  = "schema_version"
	RestrictionIssuerID       = "issuer_id"
	RestrictionCredDefID      = "cred_def_id"
	RestrictionRevRegID       = "rev_reg_id"

	restrictionAttrPrefix   = "attr::"
	restrictionValueSuffix  = "::value"
	restrictionMarkerSuffix = "::marker"
)

// ErrUnknownRestriction is returned for restriction keys that cannot be evaluated.
var ErrUnknownRestriction = errors.New("unknown restriction")

// AttrRestriction parses an attr::<name>::value or attr::<name>::marker key.
func AttrRestriction(key string) (string, bool, bool) {
	if !strings.HasPrefix(key, restrictionAttrPrefix) {
		return "", false, false
	}

	rest := strings.TrimPrefix(key, restrictionAttrPrefix)

	switch {
	case strings.HasSuffix(rest, restrictionValueSuffix):
		return strings.TrimSuffix(rest, restrictionValueSuffix), false, true
	case strings.HasSuffix(rest, restrictionMarkerSuffix):
		return strings.TrimSuffix(rest, restrictionMarkerSuffix), true, true
	default:
		return "", false, false
	}
}

// AttributeInfo describes a requested attribute. Exactly one of Name and Names is set.
type AttributeInfo struct {
	Name  string   `json:"name,omitempty"`
	Names []string `json:"names,omitempty"`
	// Restrictions are alternatives: a credential must satisfy at least one.
	Restrictions []Restriction       `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// AttrNames returns the requested names.
func (a *AttributeInfo) AttrNames() []string {
	if a.Name != "" {
		return []string{a.Name}
	}

	return a.Names
}

// PredicateInfo describes a requested predicate over an integer attribute.
type PredicateInfo struct {
	Name         string              `json:"name"`
	PType        string              `json:"p_type"`
	PValue       int32               `json:"p_value"`
	Restrictions []Restriction       `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// PresentationRequest is a verifier's request for attributes and predicates.
type PresentationRequest struct {
	Name                string                   `json:"name"`
	Version             string                   `json:"version"`
	Nonce               string                   `json:"nonce"`
	RequestedAttributes map[string]AttributeInfo `json:"requested_attributes"`
	RequestedPredicates map[string]PredicateInfo `json:"requested_predicates"`
	NonRevoked          *NonRevokedInterval      `json:"non_revoked,omitempty"`
	Ver                 string                   `json:"ver,omitempty"`
}

// AttributeInterval returns the interval that applies to a requested attribute.
func (r *PresentationRequest) AttributeInterval(referent string) *NonRevokedInterval {
	if info, ok := r.RequestedAttributes[referent]; ok && info.NonRevoked != nil {
		return info.NonRevoked
	}

	return r.NonRevoked
}

// PredicateInterval returns the interval that applies to a requested predicate.
func (r *PresentationRequest) PredicateInterval(referent string) *NonRevokedInterval {
	if info, ok := r.RequestedPredicates[referent]; ok && info.NonRevoked != nil {
		return info.NonRevoked
	}

	return r.NonRevoked
}

func (r *PresentationRequest) validate() error {
	if r.Nonce == "" {
		return errors.New("missing nonce")
	}

	for ref, info := range r.RequestedAttributes {
		if (info.Name == "") == (len(info.Names) == 0) {
			return fmt.Errorf("requested attribute %q: exactly one of name and names must be set", ref)
		}
	}

	for ref, info := range r.RequestedPredicates {
		if _, err := rangeproof.ParsePredicateType(info.PType); err != nil {
			return fmt.Errorf("requested predicate %q: %w", ref, err)
		}
	}

	return nil
}

// Validate checks the structure of the request.
func (r *PresentationRequest) Validate() error {
	return r.validate()
}

// PresentationRequestFromJSON parses a PresentationRequest.
func PresentationRequestFromJSON(data []byte) (*PresentationRequest, error) {
	return fromJSON[PresentationRequest](data, "presentation request")
}
