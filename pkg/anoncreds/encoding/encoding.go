/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package encoding maps raw credential attribute values to the integers that are signed.
//
// A value that parses as a 32-bit signed integer encodes to its canonical decimal, so that predicates can be
// proven over it. Any other value encodes to the decimal of its SHA-256 digest read as a big-endian integer.
package encoding

import (
	"crypto/sha256"
	"math/big"
	"strconv"
)

// Encode returns the canonical encoding of a raw attribute value.
func Encode(raw string) string {
	if v, ok := Int32(raw); ok {
		return strconv.FormatInt(int64(v), 10)
	}

	digest := sha256.Sum256([]byte(raw))

	return new(big.Int).SetBytes(digest[:]).String()
}

// EncodeAll encodes each raw value in order.
func EncodeAll(raw []string) []string {
	encoded := make([]string, len(raw))
	for i, v := range raw {
		encoded[i] = Encode(v)
	}

	return encoded
}

// Int32 parses raw as a decimal 32-bit signed integer. Leading '+' and leading zeros are accepted, surrounding
// whitespace is not.
func Int32(raw string) (int32, bool) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, false
	}

	return int32(v), true
}
