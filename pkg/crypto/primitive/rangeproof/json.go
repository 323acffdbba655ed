/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rangeproof

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

type rawBitProof struct {
	C0 string `json:"c0"`
	Z0 string `json:"z0"`
	Z1 string `json:"z1"`
}

type rawProof struct {
	Commitment     string        `json:"commitment"`
	ZRho           string        `json:"z_rho"`
	BitCommitments []string      `json:"bit_commitments"`
	Bits           []rawBitProof `json:"bits"`
}

// MarshalJSON marshals Proof to JSON.
func (p *Proof) MarshalJSON() ([]byte, error) {
	raw := &rawProof{
		Commitment:     mlutil.G1ToString(p.Commitment),
		ZRho:           mlutil.ZrToString(p.ZRho),
		BitCommitments: mlutil.G1sToStrings(p.BitCommitments),
		Bits:           make([]rawBitProof, len(p.Bits)),
	}

	for i, b := range p.Bits {
		raw.Bits[i] = rawBitProof{
			C0: mlutil.ZrToString(b.C0),
			Z0: mlutil.ZrToString(b.Z0),
			Z1: mlutil.ZrToString(b.Z1),
		}
	}

	return json.Marshal(raw)
}

// UnmarshalJSON unmarshals Proof from JSON.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw rawProof

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal range proof: %w", err)
	}

	d := &mlutil.Decoder{}
	p.Commitment = d.G1("commitment", raw.Commitment)
	p.ZRho = d.Zr("z_rho", raw.ZRho)
	p.BitCommitments = d.G1s("bit_commitments", raw.BitCommitments)
	p.Bits = make([]*BitProof, len(raw.Bits))

	for i, b := range raw.Bits {
		p.Bits[i] = &BitProof{
			C0: d.Zr("c0", b.C0),
			Z0: d.Zr("z0", b.Z0),
			Z1: d.Zr("z1", b.Z1),
		}
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal range proof: %w", err)
	}

	return nil
}
