/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package errcode defines the error kinds returned by anoncreds operations.
package errcode

import (
	"errors"
	"fmt"
)

// Kind is the error kind of an anoncreds error.
type Kind int32

const (
	// Unexpected is the kind of errors that fit no other kind.
	Unexpected Kind = iota
	// Input is the kind of malformed JSON or value encodings.
	Input
	// InvalidSchema is the kind of empty or duplicate attribute names.
	InvalidSchema
	// InvalidRequest is the kind of requests that are inconsistent with their definition or offer.
	InvalidRequest
	// MissingAttribute is returned when a schema attribute has no value.
	MissingAttribute
	// CredentialValidationFailed is returned when an issued credential does not verify.
	CredentialValidationFailed
	// CredentialRevoked is returned when issuing into a revoked registry index.
	CredentialRevoked
	// ConflictingDelta is returned when an index is issued and revoked in one update.
	ConflictingDelta
	// IndexOutOfRange is returned for registry indexes outside [1, maxCredNum].
	IndexOutOfRange
	// WitnessUnavailable is returned when no witness exists for an index.
	WitnessUnavailable
	// PredicateNotSatisfied is returned when a credential value does not satisfy a requested predicate.
	PredicateNotSatisfied
	// MissingPublicInput is returned when verification lacks a referenced public entity.
	MissingPublicInput
	// IntegrityCheckFailed is returned when tails content does not match its hash.
	IntegrityCheckFailed
	// Io is the kind of tails file and entity storage access failures.
	Io
)

// nolint:gochecknoglobals
var kindNames = map[Kind]string{
	Unexpected:                 "Unexpected",
	Input:                      "Input",
	InvalidSchema:              "InvalidSchema",
	InvalidRequest:             "InvalidRequest",
	MissingAttribute:           "MissingAttribute",
	CredentialValidationFailed: "CredentialValidationFailed",
	CredentialRevoked:          "CredentialRevoked",
	ConflictingDelta:           "ConflictingDelta",
	IndexOutOfRange:            "IndexOutOfRange",
	WitnessUnavailable:         "WitnessUnavailable",
	PredicateNotSatisfied:      "PredicateNotSatisfied",
	MissingPublicInput:         "MissingPublicInput",
	IntegrityCheckFailed:       "IntegrityCheckFailed",
	Io:                         "Io",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int32(k))
}

// Error is an error with a kind.
type Error interface {
	error
	// Kind returns the error kind.
	Kind() Kind
}

// New returns an error of the given kind wrapping err.
func New(kind Kind, err error) Error {
	return &kindError{err, kind}
}

// Newf returns an error of the given kind with a formatted message. %w verbs wrap as with fmt.Errorf.
func Newf(kind Kind, format string, args ...interface{}) Error {
	return &kindError{fmt.Errorf(format, args...), kind}
}

type kindError struct {
	error
	kind Kind
}

func (e *kindError) Kind() Kind {
	return e.kind
}

func (e *kindError) Unwrap() error {
	return e.error
}

// KindOf returns the kind of the outermost Error in err's chain, Unexpected if there is none.
func KindOf(err error) Kind {
	var kerr Error
	if errors.As(err, &kerr) {
		return kerr.Kind()
	}

	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
