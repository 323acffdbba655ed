/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds defines the anonymous credential entities and their canonical JSON form.
//
// Public entities are immutable values: operations that change them return new values. Re-serializing a
// parsed public entity yields the bytes it was parsed from when they were produced by this package.
package anoncreds

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
)

const idMarker = "anoncreds/v0"

// Entity markers used in content-derived identifiers.
const (
	SchemaMarker                       = "SCHEMA"
	CredentialDefinitionMarker         = "CLAIM_DEF"
	RevocationRegistryDefinitionMarker = "REV_REG_DEF"
)

func compositeID(issuerID, marker string, parts ...string) string {
	return strings.Join(append([]string{issuerID, idMarker, marker}, parts...), "/")
}

type validator interface {
	validate() error
}

func fromJSON[T any](data []byte, kind string) (*T, error) {
	v := new(T)

	if err := json.Unmarshal(data, v); err != nil {
		return nil, errcode.Newf(errcode.Input, "parse %s: %w", kind, err)
	}

	if val, ok := any(v).(validator); ok {
		if err := val.validate(); err != nil {
			return nil, errcode.Newf(errcode.Input, "parse %s: %w", kind, err)
		}
	}

	return v, nil
}

// NormalizeAttrName returns the form attribute names are compared in: lower case without white space.
func NormalizeAttrName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return unicode.ToLower(r)
	}, name)
}
