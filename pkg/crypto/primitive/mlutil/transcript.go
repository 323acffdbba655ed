/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mlutil

import (
	"encoding/binary"

	ml "github.com/IBM/mathlib"
)

// Transcript accumulates length-prefixed proof inputs and derives a Fiat-Shamir challenge from them.
type Transcript struct {
	buf []byte
}

// NewTranscript starts a transcript under a domain separation label.
func NewTranscript(label string) *Transcript {
	t := &Transcript{}
	t.AppendBytes([]byte(label))

	return t
}

// AppendBytes appends a length-prefixed byte string.
func (t *Transcript) AppendBytes(b []byte) *Transcript {
	t.buf = binary.BigEndian.AppendUint32(t.buf, uint32(len(b)))
	t.buf = append(t.buf, b...)

	return t
}

// AppendString appends a length-prefixed string.
func (t *Transcript) AppendString(s string) *Transcript {
	return t.AppendBytes([]byte(s))
}

// AppendUint64 appends an 8 byte big-endian integer.
func (t *Transcript) AppendUint64(v uint64) *Transcript {
	t.buf = binary.BigEndian.AppendUint64(t.buf, v)

	return t
}

// AppendG1 appends compressed G1 elements.
func (t *Transcript) AppendG1(ps ...*ml.G1) *Transcript {
	for _, p := range ps {
		t.AppendBytes(p.Compressed())
	}

	return t
}

// AppendG2 appends compressed G2 elements.
func (t *Transcript) AppendG2(qs ...*ml.G2) *Transcript {
	for _, q := range qs {
		t.AppendBytes(q.Compressed())
	}

	return t
}

// AppendGt appends target group elements.
func (t *Transcript) AppendGt(gs ...*ml.Gt) *Transcript {
	for _, g := range gs {
		t.AppendBytes(g.Bytes())
	}

	return t
}

// AppendZr appends scalars.
func (t *Transcript) AppendZr(zs ...*ml.Zr) *Transcript {
	for _, z := range zs {
		t.AppendBytes(ZrToBig(z).FillBytes(make([]byte, curve.ScalarByteSize)))
	}

	return t
}

// Bytes returns the accumulated transcript.
func (t *Transcript) Bytes() []byte {
	return t.buf
}

// Challenge hashes the transcript to a scalar.
func (t *Transcript) Challenge() *ml.Zr {
	return HashToZr(t.buf)
}
