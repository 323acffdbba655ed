/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mlutil

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	ml "github.com/IBM/mathlib"
)

// ErrInvalidEncoding is returned when a string does not hold a valid scalar or group element.
var ErrInvalidEncoding = errors.New("invalid encoding")

// G1ToString encodes p as base64url of its compressed form.
func G1ToString(p *ml.G1) string {
	return base64.RawURLEncoding.EncodeToString(p.Compressed())
}

// G1FromString decodes a G1 element produced by G1ToString.
func G1FromString(s string) (*ml.G1, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(b) != curve.CompressedG1ByteSize {
		return nil, fmt.Errorf("G1 element: %w", ErrInvalidEncoding)
	}

	p, err := curve.NewG1FromCompressed(b)
	if err != nil {
		return nil, fmt.Errorf("G1 element: %w", err)
	}

	return p, nil
}

// G2ToString encodes q as base64url of its compressed form.
func G2ToString(q *ml.G2) string {
	return base64.RawURLEncoding.EncodeToString(q.Compressed())
}

// G2FromString decodes a G2 element produced by G2ToString.
func G2FromString(s string) (*ml.G2, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(b) != curve.CompressedG2ByteSize {
		return nil, fmt.Errorf("G2 element: %w", ErrInvalidEncoding)
	}

	q, err := curve.NewG2FromCompressed(b)
	if err != nil {
		return nil, fmt.Errorf("G2 element: %w", err)
	}

	return q, nil
}

// ZrToString encodes z as base64url of its fixed-size big-endian form.
func ZrToString(z *ml.Zr) string {
	return base64.RawURLEncoding.EncodeToString(ZrToBig(z).FillBytes(make([]byte, curve.ScalarByteSize)))
}

// ZrFromString decodes a scalar produced by ZrToString. Non-canonical values are rejected.
func ZrFromString(s string) (*ml.Zr, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(b) != curve.ScalarByteSize {
		return nil, fmt.Errorf("scalar: %w", ErrInvalidEncoding)
	}

	v := new(big.Int).SetBytes(b)
	if v.Cmp(Order()) >= 0 {
		return nil, fmt.Errorf("scalar out of range: %w", ErrInvalidEncoding)
	}

	return ZrFromBig(v), nil
}

// ZrToDecimal renders z as a decimal string.
func ZrToDecimal(z *ml.Zr) string {
	return ZrToBig(z).String()
}

// ZrFromDecimal parses a decimal integer, reducing it mod r.
func ZrFromDecimal(s string) (*ml.Zr, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("decimal scalar %q: %w", s, ErrInvalidEncoding)
	}

	return ZrFromBig(v), nil
}

// Decoder decodes a sequence of encoded values and keeps the first error.
type Decoder struct {
	err error
}

// G1 decodes a G1 element.
func (d *Decoder) G1(field, s string) *ml.G1 {
	if d.err != nil {
		return nil
	}

	p, err := G1FromString(s)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}

	return p
}

// G2 decodes a G2 element.
func (d *Decoder) G2(field, s string) *ml.G2 {
	if d.err != nil {
		return nil
	}

	q, err := G2FromString(s)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}

	return q
}

// Zr decodes a scalar.
func (d *Decoder) Zr(field, s string) *ml.Zr {
	if d.err != nil {
		return nil
	}

	z, err := ZrFromString(s)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}

	return z
}

// G1s decodes a slice of G1 elements.
func (d *Decoder) G1s(field string, ss []string) []*ml.G1 {
	res := make([]*ml.G1, len(ss))

	for i, s := range ss {
		res[i] = d.G1(fmt.Sprintf("%s[%d]", field, i), s)
	}

	return res
}

// Zrs decodes a slice of scalars.
func (d *Decoder) Zrs(field string, ss []string) []*ml.Zr {
	res := make([]*ml.Zr, len(ss))

	for i, s := range ss {
		res[i] = d.Zr(fmt.Sprintf("%s[%d]", field, i), s)
	}

	return res
}

// Err returns the first decoding error.
func (d *Decoder) Err() error {
	return d.err
}

// G1sToStrings encodes a slice of G1 elements.
func G1sToStrings(ps []*ml.G1) []string {
	res := make([]string, len(ps))

	for i, p := range ps {
		res[i] = G1ToString(p)
	}

	return res
}

// ZrsToStrings encodes a slice of scalars.
func ZrsToStrings(zs []*ml.Zr) []string {
	res := make([]string, len(zs))

	for i, z := range zs {
		res[i] = ZrToString(z)
	}

	return res
}
