/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"errors"
	"fmt"
)

// Schema lists the attribute names of a credential type.
type Schema struct {
	IssuerID  string   `json:"issuerId"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	AttrNames []string `json:"attrNames"`
}

// ID returns the content-derived schema identifier.
func (s *Schema) ID() string {
	return compositeID(s.IssuerID, SchemaMarker, s.Name, s.Version)
}

// NormalizedAttrNames returns the normalized attribute names in schema order.
func (s *Schema) NormalizedAttrNames() []string {
	names := make([]string, len(s.AttrNames))
	for i, name := range s.AttrNames {
		names[i] = NormalizeAttrName(name)
	}

	return names
}

// HasAttr reports whether the schema declares name.
func (s *Schema) HasAttr(name string) bool {
	norm := NormalizeAttrName(name)

	for _, n := range s.AttrNames {
		if NormalizeAttrName(n) == norm {
			return true
		}
	}

	return false
}

// Validate checks that the attribute names are non-empty and unique after normalization.
func (s *Schema) Validate() error {
	return s.validate()
}

func (s *Schema) validate() error {
	if len(s.AttrNames) == 0 {
		return errors.New("schema has no attributes")
	}

	seen := make(map[string]struct{}, len(s.AttrNames))

	for _, name := range s.AttrNames {
		norm := NormalizeAttrName(name)
		if norm == "" {
			return errors.New("empty attribute name")
		}

		if _, ok := seen[norm]; ok {
			return fmt.Errorf("duplicate attribute name %q", name)
		}

		seen[norm] = struct{}{}
	}

	return nil
}

// SchemaFromJSON parses a Schema.
func SchemaFromJSON(data []byte) (*Schema, error) {
	return fromJSON[Schema](data, "schema")
}
