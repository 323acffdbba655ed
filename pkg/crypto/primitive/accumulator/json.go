/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accumulator

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

type rawPublicKey struct {
	Z1 string `json:"z1"`
	Z2 string `json:"z2"`
}

// MarshalJSON marshals PublicKey to JSON.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawPublicKey{Z1: mlutil.G1ToString(pk.Z1), Z2: mlutil.G2ToString(pk.Z2)})
}

// UnmarshalJSON unmarshals PublicKey from JSON.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var raw rawPublicKey

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal accumulator public key: %w", err)
	}

	d := &mlutil.Decoder{}
	pk.Z1 = d.G1("z1", raw.Z1)
	pk.Z2 = d.G2("z2", raw.Z2)

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal accumulator public key: %w", err)
	}

	return nil
}

type rawPrivateKey struct {
	Gamma string `json:"gamma"`
}

// MarshalJSON marshals PrivateKey to JSON.
func (sk *PrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawPrivateKey{Gamma: mlutil.ZrToString(sk.Gamma)})
}

// UnmarshalJSON unmarshals PrivateKey from JSON.
func (sk *PrivateKey) UnmarshalJSON(data []byte) error {
	var raw rawPrivateKey

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal accumulator private key: %w", err)
	}

	gamma, err := mlutil.ZrFromString(raw.Gamma)
	if err != nil {
		return fmt.Errorf("unmarshal accumulator private key: %w", err)
	}

	sk.Gamma = gamma

	return nil
}

type rawCredentialKey struct {
	HRev string `json:"h_rev"`
	HHat string `json:"h_hat"`
}

// MarshalJSON marshals CredentialKey to JSON.
func (ck *CredentialKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawCredentialKey{HRev: mlutil.G1ToString(ck.HRev), HHat: mlutil.G2ToString(ck.HHat)})
}

// UnmarshalJSON unmarshals CredentialKey from JSON.
func (ck *CredentialKey) UnmarshalJSON(data []byte) error {
	var raw rawCredentialKey

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal revocation key: %w", err)
	}

	d := &mlutil.Decoder{}
	ck.HRev = d.G1("h_rev", raw.HRev)
	ck.HHat = d.G2("h_hat", raw.HHat)

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal revocation key: %w", err)
	}

	return nil
}

type rawProof struct {
	G         string `json:"g"`
	W         string `json:"w"`
	ZRhoPrime string `json:"z_rho_prime"`
}

// MarshalJSON marshals Proof to JSON.
func (p *Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawProof{
		G:         mlutil.G1ToString(p.G),
		W:         mlutil.G2ToString(p.W),
		ZRhoPrime: mlutil.ZrToString(p.ZRhoPrime),
	})
}

// UnmarshalJSON unmarshals Proof from JSON.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw rawProof

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal non-revocation proof: %w", err)
	}

	d := &mlutil.Decoder{}
	p.G = d.G1("g", raw.G)
	p.W = d.G2("w", raw.W)
	p.ZRhoPrime = d.Zr("z_rho_prime", raw.ZRhoPrime)

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal non-revocation proof: %w", err)
	}

	return nil
}
