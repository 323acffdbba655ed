/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"errors"
	"fmt"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// ErrLinkSecretMarshal is returned on any attempt to marshal a link secret to JSON.
var ErrLinkSecretMarshal = errors.New("link secret must not be serialized")

// LinkSecret is the holder secret blinded into every credential. Its fmt representations are redacted and it
// refuses JSON marshalling. Decimal exports it for holder-side storage.
type LinkSecret struct {
	value *ml.Zr
}

// NewLinkSecret returns a LinkSecret holding value.
func NewLinkSecret(value *ml.Zr) *LinkSecret {
	return &LinkSecret{value: value.Copy()}
}

// LinkSecretFromDecimal parses a link secret exported with Decimal.
func LinkSecretFromDecimal(s string) (*LinkSecret, error) {
	v, err := mlutil.ZrFromDecimal(s)
	if err != nil {
		return nil, errcode.Newf(errcode.Input, "parse link secret: %w", err)
	}

	if mlutil.IsZero(v) {
		return nil, errcode.Newf(errcode.Input, "parse link secret: zero value")
	}

	return &LinkSecret{value: v}, nil
}

// Decimal returns the secret as a decimal string.
func (ls *LinkSecret) Decimal() string {
	return mlutil.ZrToDecimal(ls.value)
}

// Scalar returns a copy of the secret scalar.
func (ls *LinkSecret) Scalar() *ml.Zr {
	return ls.value.Copy()
}

func (ls *LinkSecret) String() string {
	return "LinkSecret(redacted)"
}

// GoString implements fmt.GoStringer.
func (ls *LinkSecret) GoString() string {
	return ls.String()
}

// Format implements fmt.Formatter so that no verb prints the secret.
func (ls *LinkSecret) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(ls.String()))
}

// MarshalJSON always fails.
func (ls *LinkSecret) MarshalJSON() ([]byte, error) {
	return nil, ErrLinkSecretMarshal
}

// MarshalText always fails.
func (ls *LinkSecret) MarshalText() ([]byte, error) {
	return nil, ErrLinkSecretMarshal
}
