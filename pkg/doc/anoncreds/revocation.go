/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
)

// RegistryTypeCLAccum is the only supported revocation registry type.
const RegistryTypeCLAccum = "CL_ACCUM"

// RevocationRegistryDefinition holds the accumulator public key and locates the tails file.
type RevocationRegistryDefinition struct {
	IssuerID     string                            `json:"issuerId"`
	RevocDefType string                            `json:"revocDefType"`
	Tag          string                            `json:"tag"`
	CredDefID    string                            `json:"credDefId"`
	Value        RevocationRegistryDefinitionValue `json:"value"`
}

// RevocationRegistryDefinitionValue is the value part of a RevocationRegistryDefinition.
type RevocationRegistryDefinitionValue struct {
	PublicKeys    RevocationRegistryPublicKeys `json:"publicKeys"`
	MaxCredNum    uint32                       `json:"maxCredNum"`
	TailsLocation string                       `json:"tailsLocation"`
	TailsHash     string                       `json:"tailsHash"`
}

// RevocationRegistryPublicKeys holds the accumulator public key.
type RevocationRegistryPublicKeys struct {
	AccumKey *accumulator.PublicKey `json:"accumKey"`
}

// ID returns the content-derived registry definition identifier.
func (d *RevocationRegistryDefinition) ID() string {
	return compositeID(d.IssuerID, RevocationRegistryDefinitionMarker, d.CredDefID, d.Tag)
}

// Registry definition attribute names understood by Attribute.
const (
	AttrID            = "id"
	AttrMaxCredNum    = "maxCredNum"
	AttrTailsLocation = "tailsLocation"
	AttrTailsHash     = "tailsHash"
)

// Attribute returns a registry definition attribute by name.
func (d *RevocationRegistryDefinition) Attribute(name string) (string, error) {
	switch name {
	case AttrID:
		return d.ID(), nil
	case AttrMaxCredNum:
		return strconv.FormatUint(uint64(d.Value.MaxCredNum), 10), nil
	case AttrTailsLocation:
		return d.Value.TailsLocation, nil
	case AttrTailsHash:
		return d.Value.TailsHash, nil
	default:
		return "", fmt.Errorf("%q: %w", name, ErrUnknownAttribute)
	}
}

func (d *RevocationRegistryDefinition) validate() error {
	if d.RevocDefType != RegistryTypeCLAccum {
		return fmt.Errorf("unsupported registry type %q", d.RevocDefType)
	}

	if d.Value.PublicKeys.AccumKey == nil {
		return errors.New("missing accumulator key")
	}

	return accumulator.CheckCapacity(d.Value.MaxCredNum)
}

// RevocationRegistryDefinitionFromJSON parses a RevocationRegistryDefinition.
func RevocationRegistryDefinitionFromJSON(data []byte) (*RevocationRegistryDefinition, error) {
	return fromJSON[RevocationRegistryDefinition](data, "revocation registry definition")
}

// RevocationRegistryDefinitionPrivate holds the accumulator secret.
type RevocationRegistryDefinitionPrivate struct {
	Value *accumulator.PrivateKey `json:"value"`
}

func (p *RevocationRegistryDefinitionPrivate) validate() error {
	if p.Value == nil {
		return errors.New("missing accumulator private key")
	}

	return nil
}

// RevocationRegistryDefinitionPrivateFromJSON parses a RevocationRegistryDefinitionPrivate.
func RevocationRegistryDefinitionPrivateFromJSON(data []byte) (*RevocationRegistryDefinitionPrivate, error) {
	return fromJSON[RevocationRegistryDefinitionPrivate](data, "revocation registry definition private")
}

// RevocationList is the status bit list of a registry. Element i describes index i+1 and is true when revoked.
// It marshals to a JSON array of 0 and 1.
type RevocationList []bool

// MarshalJSON marshals RevocationList to JSON.
func (l RevocationList) MarshalJSON() ([]byte, error) {
	bits := make([]int, len(l))

	for i, revoked := range l {
		if revoked {
			bits[i] = 1
		}
	}

	return json.Marshal(bits)
}

// UnmarshalJSON unmarshals RevocationList from JSON.
func (l *RevocationList) UnmarshalJSON(data []byte) error {
	var ints []int

	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}

	list := make(RevocationList, len(ints))

	for i, v := range ints {
		switch v {
		case 0:
		case 1:
			list[i] = true
		default:
			return fmt.Errorf("revocation list entry %d is %d", i, v)
		}
	}

	*l = list

	return nil
}

// RevocationStatusList is the accumulator value and revocation bits of a registry at a timestamp.
type RevocationStatusList struct {
	IssuerID           string
	RevRegDefID        string
	RevocationList     RevocationList
	CurrentAccumulator *ml.G2
	Timestamp          int64
}

type rawRevocationStatusList struct {
	IssuerID           string         `json:"issuerId"`
	RevRegDefID        string         `json:"revRegDefId"`
	RevocationList     RevocationList `json:"revocationList"`
	CurrentAccumulator string         `json:"currentAccumulator"`
	Timestamp          int64          `json:"timestamp"`
}

// MarshalJSON marshals RevocationStatusList to JSON.
func (l *RevocationStatusList) MarshalJSON() ([]byte, error) {
	if l.CurrentAccumulator == nil {
		return nil, errors.New("marshal revocation status list: missing accumulator")
	}

	return json.Marshal(&rawRevocationStatusList{
		IssuerID:           l.IssuerID,
		RevRegDefID:        l.RevRegDefID,
		RevocationList:     l.RevocationList,
		CurrentAccumulator: mlutil.G2ToString(l.CurrentAccumulator),
		Timestamp:          l.Timestamp,
	})
}

// UnmarshalJSON unmarshals RevocationStatusList from JSON.
func (l *RevocationStatusList) UnmarshalJSON(data []byte) error {
	var raw rawRevocationStatusList

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	acc, err := mlutil.G2FromString(raw.CurrentAccumulator)
	if err != nil {
		return fmt.Errorf("currentAccumulator: %w", err)
	}

	*l = RevocationStatusList{
		IssuerID:           raw.IssuerID,
		RevRegDefID:        raw.RevRegDefID,
		RevocationList:     raw.RevocationList,
		CurrentAccumulator: acc,
		Timestamp:          raw.Timestamp,
	}

	return nil
}

// Revoked reports whether index is revoked. Indexes outside the list are reported revoked.
func (l *RevocationStatusList) Revoked(index uint32) bool {
	if index == 0 || int(index) > len(l.RevocationList) {
		return true
	}

	return l.RevocationList[index-1]
}

// ActiveIndices returns the indexes that are not revoked, ascending.
func (l *RevocationStatusList) ActiveIndices() []uint32 {
	var active []uint32

	for i, revoked := range l.RevocationList {
		if !revoked {
			active = append(active, uint32(i+1))
		}
	}

	return active
}

// Delta returns the indexes issued and revoked between l and a later list of the same registry.
func (l *RevocationStatusList) Delta(later *RevocationStatusList) ([]uint32, []uint32, error) {
	if len(l.RevocationList) != len(later.RevocationList) {
		return nil, nil, fmt.Errorf("status lists of %d and %d entries", len(l.RevocationList),
			len(later.RevocationList))
	}

	var issued, revoked []uint32

	for i := range l.RevocationList {
		switch {
		case l.RevocationList[i] && !later.RevocationList[i]:
			issued = append(issued, uint32(i+1))
		case !l.RevocationList[i] && later.RevocationList[i]:
			revoked = append(revoked, uint32(i+1))
		}
	}

	return issued, revoked, nil
}

// WithTimestamp returns a copy of the list with another timestamp.
func (l *RevocationStatusList) WithTimestamp(timestamp int64) *RevocationStatusList {
	c := *l
	c.RevocationList = append(RevocationList(nil), l.RevocationList...)
	c.CurrentAccumulator = l.CurrentAccumulator.Copy()
	c.Timestamp = timestamp

	return &c
}

func (l *RevocationStatusList) validate() error {
	if l.RevRegDefID == "" {
		return errors.New("missing revRegDefId")
	}

	return accumulator.CheckCapacity(uint32(len(l.RevocationList)))
}

// RevocationStatusListFromJSON parses a RevocationStatusList.
func RevocationStatusListFromJSON(data []byte) (*RevocationStatusList, error) {
	return fromJSON[RevocationStatusList](data, "revocation status list")
}

// RevocationState is a holder's witness against one status list.
type RevocationState struct {
	Witness     *ml.G2
	Accumulator *ml.G2
	Timestamp   int64
}

type rawRevocationState struct {
	Witness   string    `json:"witness"`
	RevReg    rawRevReg `json:"rev_reg"`
	Timestamp int64     `json:"timestamp"`
}

type rawRevReg struct {
	Accum string `json:"accum"`
}

// MarshalJSON marshals RevocationState to JSON.
func (s *RevocationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rawRevocationState{
		Witness:   mlutil.G2ToString(s.Witness),
		RevReg:    rawRevReg{Accum: mlutil.G2ToString(s.Accumulator)},
		Timestamp: s.Timestamp,
	})
}

// UnmarshalJSON unmarshals RevocationState from JSON.
func (s *RevocationState) UnmarshalJSON(data []byte) error {
	var raw rawRevocationState

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d := &mlutil.Decoder{}

	*s = RevocationState{
		Witness:     d.G2("witness", raw.Witness),
		Accumulator: d.G2("rev_reg.accum", raw.RevReg.Accum),
		Timestamp:   raw.Timestamp,
	}

	return d.Err()
}

// RevocationStateFromJSON parses a RevocationState.
func RevocationStateFromJSON(data []byte) (*RevocationState, error) {
	return fromJSON[RevocationState](data, "revocation state")
}

// RevocationConfig binds a credential being issued to a registry index.
type RevocationConfig struct {
	RegistryDefinition        *RevocationRegistryDefinition
	RegistryDefinitionPrivate *RevocationRegistryDefinitionPrivate
	StatusList                *RevocationStatusList
	RegistryIndex             uint32
}
