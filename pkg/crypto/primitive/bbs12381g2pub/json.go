/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs12381g2pub

import (
	"encoding/json"
	"fmt"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

type rawPublicKey struct {
	W     string   `json:"w"`
	BarG1 string   `json:"bar_g1"`
	BarG2 string   `json:"bar_g2"`
	HRand string   `json:"h_rand"`
	HSk   string   `json:"h_sk"`
	H     []string `json:"h"`
}

// MarshalJSON marshals PublicKey to JSON.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawPublicKey{
		W:     mlutil.G2ToString(pk.W),
		BarG1: mlutil.G1ToString(pk.BarG1),
		BarG2: mlutil.G1ToString(pk.BarG2),
		HRand: mlutil.G1ToString(pk.HRand),
		HSk:   mlutil.G1ToString(pk.HSk),
		H:     mlutil.G1sToStrings(pk.H),
	})
}

// UnmarshalJSON unmarshals PublicKey from JSON.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var raw rawPublicKey

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal public key: %w", err)
	}

	if len(raw.H) == 0 {
		return fmt.Errorf("unmarshal public key: %w", ErrMessageCount)
	}

	d := &mlutil.Decoder{}

	*pk = PublicKey{
		W:     d.G2("w", raw.W),
		BarG1: d.G1("bar_g1", raw.BarG1),
		BarG2: d.G1("bar_g2", raw.BarG2),
		HRand: d.G1("h_rand", raw.HRand),
		HSk:   d.G1("h_sk", raw.HSk),
		H:     d.G1s("h", raw.H),
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal public key: %w", err)
	}

	return nil
}

type rawPrivateKey struct {
	X string `json:"x"`
}

// MarshalJSON marshals PrivateKey to JSON.
func (sk *PrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawPrivateKey{X: mlutil.ZrToString(sk.X)})
}

// UnmarshalJSON unmarshals PrivateKey from JSON.
func (sk *PrivateKey) UnmarshalJSON(data []byte) error {
	var raw rawPrivateKey

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal private key: %w", err)
	}

	x, err := mlutil.ZrFromString(raw.X)
	if err != nil {
		return fmt.Errorf("unmarshal private key: %w", err)
	}

	sk.X = x

	return nil
}

type rawKeyCorrectnessProof struct {
	C string `json:"c"`
	Z string `json:"z"`
}

// MarshalJSON marshals KeyCorrectnessProof to JSON.
func (p *KeyCorrectnessProof) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawKeyCorrectnessProof{C: mlutil.ZrToString(p.C), Z: mlutil.ZrToString(p.Z)})
}

// UnmarshalJSON unmarshals KeyCorrectnessProof from JSON.
func (p *KeyCorrectnessProof) UnmarshalJSON(data []byte) error {
	var raw rawKeyCorrectnessProof

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal key correctness proof: %w", err)
	}

	d := &mlutil.Decoder{}
	p.C = d.Zr("c", raw.C)
	p.Z = d.Zr("z", raw.Z)

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal key correctness proof: %w", err)
	}

	return nil
}

type rawBlindedCommitment struct {
	U         string `json:"u"`
	C         string `json:"c"`
	ZSecret   string `json:"z_secret"`
	ZBlinding string `json:"z_blinding"`
}

// MarshalJSON marshals BlindedCommitment to JSON.
func (bc *BlindedCommitment) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawBlindedCommitment{
		U:         mlutil.G1ToString(bc.U),
		C:         mlutil.ZrToString(bc.Proof.C),
		ZSecret:   mlutil.ZrToString(bc.Proof.ZSecret),
		ZBlinding: mlutil.ZrToString(bc.Proof.ZBlinding),
	})
}

// UnmarshalJSON unmarshals BlindedCommitment from JSON.
func (bc *BlindedCommitment) UnmarshalJSON(data []byte) error {
	var raw rawBlindedCommitment

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal blinded commitment: %w", err)
	}

	d := &mlutil.Decoder{}

	*bc = BlindedCommitment{
		U: d.G1("u", raw.U),
		Proof: &CommitmentProof{
			C:         d.Zr("c", raw.C),
			ZSecret:   d.Zr("z_secret", raw.ZSecret),
			ZBlinding: d.Zr("z_blinding", raw.ZBlinding),
		},
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal blinded commitment: %w", err)
	}

	return nil
}

type rawSignature struct {
	A string `json:"a"`
	E string `json:"e"`
	S string `json:"s"`
}

// MarshalJSON marshals Signature to JSON.
func (sig *Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawSignature{
		A: mlutil.G1ToString(sig.A),
		E: mlutil.ZrToString(sig.E),
		S: mlutil.ZrToString(sig.S),
	})
}

// UnmarshalJSON unmarshals Signature from JSON.
func (sig *Signature) UnmarshalJSON(data []byte) error {
	var raw rawSignature

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal signature: %w", err)
	}

	d := &mlutil.Decoder{}

	*sig = Signature{
		A: d.G1("a", raw.A),
		E: d.Zr("e", raw.E),
		S: d.Zr("s", raw.S),
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal signature: %w", err)
	}

	return nil
}

type rawSignatureProof struct {
	APrime      string         `json:"a_prime"`
	ABar        string         `json:"a_bar"`
	BPrime      string         `json:"b_prime"`
	ZE          string         `json:"z_e"`
	ZR2         string         `json:"z_r2"`
	ZR3         string         `json:"z_r3"`
	ZS          string         `json:"z_s"`
	ZLinkSecret string         `json:"z_link_secret"`
	ZMessages   map[int]string `json:"z_m"`
	ZTails      string         `json:"z_tails,omitempty"`
}

// MarshalJSON marshals SignatureProof to JSON.
func (sp *SignatureProof) MarshalJSON() ([]byte, error) {
	raw := &rawSignatureProof{
		APrime:      mlutil.G1ToString(sp.APrime),
		ABar:        mlutil.G1ToString(sp.ABar),
		BPrime:      mlutil.G1ToString(sp.BPrime),
		ZE:          mlutil.ZrToString(sp.ZE),
		ZR2:         mlutil.ZrToString(sp.ZR2),
		ZR3:         mlutil.ZrToString(sp.ZR3),
		ZS:          mlutil.ZrToString(sp.ZS),
		ZLinkSecret: mlutil.ZrToString(sp.ZLinkSecret),
		ZMessages:   make(map[int]string, len(sp.ZMessages)),
	}

	for idx, z := range sp.ZMessages {
		raw.ZMessages[idx] = mlutil.ZrToString(z)
	}

	if sp.ZTails != nil {
		raw.ZTails = mlutil.ZrToString(sp.ZTails)
	}

	return json.Marshal(raw)
}

// UnmarshalJSON unmarshals SignatureProof from JSON.
func (sp *SignatureProof) UnmarshalJSON(data []byte) error {
	var raw rawSignatureProof

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal signature proof: %w", err)
	}

	d := &mlutil.Decoder{}

	*sp = SignatureProof{
		APrime:      d.G1("a_prime", raw.APrime),
		ABar:        d.G1("a_bar", raw.ABar),
		BPrime:      d.G1("b_prime", raw.BPrime),
		ZE:          d.Zr("z_e", raw.ZE),
		ZR2:         d.Zr("z_r2", raw.ZR2),
		ZR3:         d.Zr("z_r3", raw.ZR3),
		ZS:          d.Zr("z_s", raw.ZS),
		ZLinkSecret: d.Zr("z_link_secret", raw.ZLinkSecret),
		ZMessages:   make(map[int]*ml.Zr, len(raw.ZMessages)),
	}

	for idx, z := range raw.ZMessages {
		sp.ZMessages[idx] = d.Zr(fmt.Sprintf("z_m[%d]", idx), z)
	}

	if raw.ZTails != "" {
		sp.ZTails = d.Zr("z_tails", raw.ZTails)
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("unmarshal signature proof: %w", err)
	}

	return nil
}
