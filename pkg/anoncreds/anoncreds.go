/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds implements anonymous credential issuance, revocation and presentation.
//
// Issuers publish schemas, credential definitions and revocation registries, and sign credentials over a
// holder's blinded link secret. Holders prove possession of one or more credentials in zero knowledge,
// disclosing selected attributes, proving predicates over hidden integer attributes and proving that their
// credentials are not revoked. Operations are synchronous and safe for concurrent use on distinct inputs.
// Updates of one revocation registry must be serialized by the caller.
package anoncreds

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/tails"
	"github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds/w3c"
)

var logger = log.New("anoncreds")

// TimestampNow requests the current time wherever an operation takes a timestamp.
const TimestampNow int64 = -1

const nonceBits = 80

// nolint:gochecknoglobals
var defaultTailsReader = tails.NewReader()

// W3C data model versions.
const (
	W3CVersion11 = w3c.Version11
	W3CVersion20 = w3c.Version20
)

type options struct {
	encodedValues map[string]string
	revocation    *RevocationConfig
	tailsReader   *tails.Reader
	w3cVersion    string
	issuanceDate  time.Time
}

// Opt is an operation option.
type Opt func(opts *options)

// WithEncodedValues supplies attribute encodings instead of the canonical encoding.
func WithEncodedValues(encoded map[string]string) Opt {
	return func(opts *options) {
		opts.encodedValues = encoded
	}
}

// WithRevocationConfig issues a revocable credential into the registry index of cfg.
func WithRevocationConfig(cfg *RevocationConfig) Opt {
	return func(opts *options) {
		opts.revocation = cfg
	}
}

// WithTailsReader sets the reader tails files are opened with. A shared caching reader is used by default.
func WithTailsReader(r *tails.Reader) Opt {
	return func(opts *options) {
		opts.tailsReader = r
	}
}

// WithW3CVersion selects the W3C data model version of produced credentials and presentations.
func WithW3CVersion(version string) Opt {
	return func(opts *options) {
		opts.w3cVersion = version
	}
}

// WithIssuanceDate sets the issuance date of W3C credentials. It defaults to the current time.
func WithIssuanceDate(t time.Time) Opt {
	return func(opts *options) {
		opts.issuanceDate = t
	}
}

func applyOptions(opts []Opt) *options {
	o := &options{
		tailsReader: defaultTailsReader,
		w3cVersion:  W3CVersion11,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// GenerateNonce returns a random 80-bit nonce as a decimal string.
func GenerateNonce() (string, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), nonceBits))
	if err != nil {
		return "", errcode.Newf(errcode.Unexpected, "generate nonce: %w", err)
	}

	return n.String(), nil
}

func resolveTimestamp(timestamp int64) int64 {
	if timestamp == TimestampNow {
		return time.Now().Unix()
	}

	return timestamp
}
