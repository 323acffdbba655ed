/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/tails"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

// CreateRevocationRegistryDefinition creates a registry of maxCredNum indexes for a revocable credential
// definition and writes its tails file into tailsDirPath.
func CreateRevocationRegistryDefinition(credDef *CredentialDefinition, credDefID, issuerID, tag,
	registryType string, maxCredNum uint32, tailsDirPath string) (*RevocationRegistryDefinition,
	*RevocationRegistryDefinitionPrivate, error) {
	if registryType != acdoc.RegistryTypeCLAccum {
		return nil, nil, errcode.Newf(errcode.InvalidRequest, "unsupported registry type %q", registryType)
	}

	if credDef == nil || !credDef.SupportsRevocation() {
		return nil, nil, errcode.Newf(errcode.InvalidRequest, "credential definition does not support revocation")
	}

	if credDefID == "" {
		credDefID = credDef.ID()
	}

	pk, sk, err := accumulator.GenerateKeyPair(maxCredNum, nil)
	if err != nil {
		return nil, nil, errcode.New(errcode.InvalidRequest, err)
	}

	location, tailsHash, err := tails.Write(tailsDirPath, maxCredNum, func(emit func(uint32, *ml.G2) error) error {
		return sk.GenerateTails(maxCredNum, emit)
	})
	if err != nil {
		return nil, nil, err
	}

	regDef := &acdoc.RevocationRegistryDefinition{
		IssuerID:     issuerID,
		RevocDefType: acdoc.RegistryTypeCLAccum,
		Tag:          tag,
		CredDefID:    credDefID,
		Value: acdoc.RevocationRegistryDefinitionValue{
			PublicKeys:    acdoc.RevocationRegistryPublicKeys{AccumKey: pk},
			MaxCredNum:    maxCredNum,
			TailsLocation: location,
			TailsHash:     tailsHash,
		},
	}

	logger.Infof("created revocation registry %s of %d credentials, tails %s", regDef.ID(), maxCredNum, tailsHash)

	return regDef, &acdoc.RevocationRegistryDefinitionPrivate{Value: sk}, nil
}

// CreateRevocationStatusList returns the first status list of a registry. With issuanceByDefault every index
// starts issued, otherwise every index starts revoked and must be issued with UpdateRevocationStatusList.
// TimestampNow uses the current time.
func CreateRevocationStatusList(credDef *CredentialDefinition, revRegDefID string,
	revRegDef *RevocationRegistryDefinition, revRegDefPrivate *RevocationRegistryDefinitionPrivate,
	issuerID string, issuanceByDefault bool, timestamp int64) (*RevocationStatusList, error) {
	if err := checkRegistry(credDef, revRegDef, revRegDefPrivate); err != nil {
		return nil, err
	}

	if revRegDefID == "" {
		revRegDefID = revRegDef.ID()
	}

	capacity := revRegDef.Value.MaxCredNum
	list := make(acdoc.RevocationList, capacity)

	acc := mlutil.G2Identity()

	if issuanceByDefault {
		var err error

		acc, err = revRegDefPrivate.Value.New(capacity, allIndices(capacity))
		if err != nil {
			return nil, errcode.Newf(errcode.Unexpected, "compute accumulator: %w", err)
		}
	} else {
		for i := range list {
			list[i] = true
		}
	}

	return &acdoc.RevocationStatusList{
		IssuerID:           issuerID,
		RevRegDefID:        revRegDefID,
		RevocationList:     list,
		CurrentAccumulator: acc,
		Timestamp:          resolveTimestamp(timestamp),
	}, nil
}

// UpdateRevocationStatusList returns a new status list with issued and revoked applied to current. Indexes
// already in the requested state are ignored. The accumulator is updated from the registry secret.
func UpdateRevocationStatusList(credDef *CredentialDefinition, revRegDef *RevocationRegistryDefinition,
	revRegDefPrivate *RevocationRegistryDefinitionPrivate, current *RevocationStatusList,
	issued, revoked []uint32, timestamp int64) (*RevocationStatusList, error) {
	if err := checkRegistry(credDef, revRegDef, revRegDefPrivate); err != nil {
		return nil, err
	}

	capacity := revRegDef.Value.MaxCredNum

	if current == nil || current.CurrentAccumulator == nil || uint32(len(current.RevocationList)) != capacity {
		return nil, errcode.Newf(errcode.InvalidRequest, "status list does not match registry of %d", capacity)
	}

	if current.RevRegDefID != revRegDef.ID() {
		return nil, errcode.Newf(errcode.InvalidRequest, "status list of %s cannot be updated by %s",
			current.RevRegDefID, revRegDef.ID())
	}

	applyIssued, applyRevoked, err := effectiveDelta(capacity, current, issued, revoked)
	if err != nil {
		return nil, err
	}

	ts := resolveTimestamp(timestamp)
	if ts < current.Timestamp {
		return nil, errcode.Newf(errcode.InvalidRequest, "timestamp %d precedes current %d", ts, current.Timestamp)
	}

	acc, err := revRegDefPrivate.Value.Update(capacity, current.CurrentAccumulator, applyIssued, applyRevoked)
	if err != nil {
		return nil, errcode.Newf(errcode.Unexpected, "update accumulator: %w", err)
	}

	next := current.WithTimestamp(ts)
	next.CurrentAccumulator = acc

	for _, i := range applyIssued {
		next.RevocationList[i-1] = false
	}

	for _, i := range applyRevoked {
		next.RevocationList[i-1] = true
	}

	logger.Debugf("updated status list of %s: %d issued, %d revoked", current.RevRegDefID, len(applyIssued),
		len(applyRevoked))

	return next, nil
}

// effectiveDelta validates a requested delta and keeps the indexes whose state changes.
func effectiveDelta(capacity uint32, current *RevocationStatusList, issued, revoked []uint32) ([]uint32,
	[]uint32, error) {
	requested := make(map[uint32]bool, len(issued)+len(revoked))

	for _, i := range issued {
		if err := accumulator.CheckIndex(capacity, i); err != nil {
			return nil, nil, errcode.New(errcode.IndexOutOfRange, err)
		}

		requested[i] = false
	}

	for _, i := range revoked {
		if err := accumulator.CheckIndex(capacity, i); err != nil {
			return nil, nil, errcode.New(errcode.IndexOutOfRange, err)
		}

		if r, ok := requested[i]; ok && !r {
			return nil, nil, errcode.Newf(errcode.ConflictingDelta, "index %d is both issued and revoked", i)
		}

		requested[i] = true
	}

	var applyIssued, applyRevoked []uint32

	for i := uint32(1); i <= capacity; i++ {
		revoke, ok := requested[i]
		if !ok || current.Revoked(i) == revoke {
			continue
		}

		if revoke {
			applyRevoked = append(applyRevoked, i)
		} else {
			applyIssued = append(applyIssued, i)
		}
	}

	return applyIssued, applyRevoked, nil
}

// UpdateRevocationStatusListTimestampOnly returns current re-published at timestamp.
func UpdateRevocationStatusListTimestampOnly(timestamp int64, current *RevocationStatusList) (
	*RevocationStatusList, error) {
	if current == nil || current.CurrentAccumulator == nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "status list is required")
	}

	ts := resolveTimestamp(timestamp)
	if ts < current.Timestamp {
		return nil, errcode.Newf(errcode.InvalidRequest, "timestamp %d precedes current %d", ts, current.Timestamp)
	}

	return current.WithTimestamp(ts), nil
}

// CreateOrUpdateRevocationState computes the witness of index against statusList. Given the state and the
// status list it was computed for, only the delta between the lists is applied. Without them the witness is
// computed from the active indexes, which fails with WitnessUnavailable for a revoked index.
func CreateOrUpdateRevocationState(revRegDef *RevocationRegistryDefinition, statusList *RevocationStatusList,
	index uint32, tailsPath string, oldState *RevocationState, oldStatusList *RevocationStatusList,
	opts ...Opt) (*RevocationState, error) {
	o := applyOptions(opts)

	if revRegDef == nil || statusList == nil || statusList.CurrentAccumulator == nil {
		return nil, errcode.Newf(errcode.InvalidRequest, "registry definition and status list are required")
	}

	capacity := revRegDef.Value.MaxCredNum

	if err := accumulator.CheckIndex(capacity, index); err != nil {
		return nil, errcode.New(errcode.IndexOutOfRange, err)
	}

	if statusList.RevRegDefID != revRegDef.ID() || uint32(len(statusList.RevocationList)) != capacity {
		return nil, errcode.Newf(errcode.InvalidRequest, "status list does not belong to %s", revRegDef.ID())
	}

	incremental := oldState != nil && oldStatusList != nil

	if statusList.Revoked(index) {
		return nil, errcode.Newf(errcode.WitnessUnavailable, "index %d is not issued at %d", index,
			statusList.Timestamp)
	}

	if incremental {
		if err := checkPreviousState(revRegDef, statusList, oldState, oldStatusList); err != nil {
			return nil, err
		}
	}

	tailsFile, err := o.tailsReader.Open(tailsPath, revRegDef.Value.TailsHash, capacity)
	if err != nil {
		return nil, err
	}

	var witness *ml.G2

	if incremental {
		issued, revoked, deltaErr := oldStatusList.Delta(statusList)
		if deltaErr != nil {
			return nil, errcode.New(errcode.InvalidRequest, deltaErr)
		}

		witness, err = accumulator.UpdateWitness(tailsFile, capacity, index, oldState.Witness, issued, revoked)
	} else {
		witness, err = accumulator.ComputeWitness(tailsFile, capacity, index, statusList.ActiveIndices())
	}

	if err != nil {
		return nil, errcode.Newf(errcode.KindOf(err), "compute witness: %w", err)
	}

	return &acdoc.RevocationState{
		Witness:     witness,
		Accumulator: statusList.CurrentAccumulator.Copy(),
		Timestamp:   statusList.Timestamp,
	}, nil
}

// checkPreviousState requires oldState to be the state computed for oldStatusList, an earlier list of the
// registry of statusList.
func checkPreviousState(revRegDef *RevocationRegistryDefinition, statusList *RevocationStatusList,
	oldState *RevocationState, oldStatusList *RevocationStatusList) error {
	if oldStatusList.RevRegDefID != revRegDef.ID() {
		return errcode.Newf(errcode.InvalidRequest, "previous status list does not belong to %s", revRegDef.ID())
	}

	if oldStatusList.Timestamp > statusList.Timestamp {
		return errcode.Newf(errcode.InvalidRequest, "previous status list at %d follows %d", oldStatusList.Timestamp,
			statusList.Timestamp)
	}

	if oldState.Witness == nil || oldState.Timestamp != oldStatusList.Timestamp || oldState.Accumulator == nil ||
		oldStatusList.CurrentAccumulator == nil || !oldState.Accumulator.Equals(oldStatusList.CurrentAccumulator) {
		return errcode.Newf(errcode.InvalidRequest, "previous state was not computed for the status list at %d",
			oldStatusList.Timestamp)
	}

	return nil
}

func checkRegistry(credDef *CredentialDefinition, revRegDef *RevocationRegistryDefinition,
	revRegDefPrivate *RevocationRegistryDefinitionPrivate) error {
	if credDef == nil || revRegDef == nil || revRegDefPrivate == nil || revRegDefPrivate.Value == nil {
		return errcode.Newf(errcode.InvalidRequest, "credential definition and registry keys are required")
	}

	if !credDef.SupportsRevocation() {
		return errcode.Newf(errcode.InvalidRequest, "credential definition does not support revocation")
	}

	if err := accumulator.CheckCapacity(revRegDef.Value.MaxCredNum); err != nil {
		return errcode.New(errcode.InvalidRequest, err)
	}

	return nil
}

func allIndices(capacity uint32) []uint32 {
	indices := make([]uint32, capacity)
	for i := range indices {
		indices[i] = uint32(i + 1)
	}

	return indices
}
