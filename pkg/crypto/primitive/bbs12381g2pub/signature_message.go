/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub

import (
	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// SignatureMessage defines a message to be used for a signature check.
type SignatureMessage struct {
	FR *ml.Zr
}

// ParseSignatureMessage parses the decimal encoding of an attribute into a SignatureMessage.
func ParseSignatureMessage(encoded string) (*SignatureMessage, error) {
	fr, err := mlutil.ZrFromDecimal(encoded)
	if err != nil {
		return nil, err
	}

	return &SignatureMessage{FR: fr}, nil
}

// ParseSignatureMessages parses every encoded attribute in order.
func ParseSignatureMessages(encoded []string) ([]*SignatureMessage, error) {
	messages := make([]*SignatureMessage, len(encoded))

	for i, e := range encoded {
		m, err := ParseSignatureMessage(e)
		if err != nil {
			return nil, err
		}

		messages[i] = m
	}

	return messages, nil
}
