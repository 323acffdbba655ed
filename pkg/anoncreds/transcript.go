/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"strconv"

	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	bbs "github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/mlutil"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/rangeproof"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

const presentationLabel = "anoncreds/presentation/v1"

// The prover and the verifier feed the transcript in the same order: request nonce, then per sub proof the
// identifier, the revealed messages, the blinded index base, the signature proof, the non-revocation proof and
// the predicate proofs.

func newPresentationTranscript(nonce string, subProofs int) *mlutil.Transcript {
	return mlutil.NewTranscript(presentationLabel).
		AppendString(nonce).
		AppendUint64(uint64(subProofs))
}

func appendSubProofHeader(t *mlutil.Transcript, id *acdoc.Identifier, revealed map[int]*bbs.SignatureMessage,
	blindedIndexBase *ml.G1) {
	timestamp := ""
	if id.Timestamp != nil {
		timestamp = strconv.FormatInt(*id.Timestamp, 10)
	}

	t.AppendString(id.SchemaID).AppendString(id.CredDefID).AppendString(id.RevRegID).AppendString(timestamp)

	t.AppendUint64(uint64(len(revealed)))

	for _, idx := range sortedIndexes(revealed) {
		t.AppendUint64(uint64(idx)).AppendZr(revealed[idx].FR)
	}

	if blindedIndexBase != nil {
		t.AppendG1(blindedIndexBase)
	}
}

func appendPredicateHeader(t *mlutil.Transcript, attrIndex int, p rangeproof.PredicateType, bound int32) {
	t.AppendUint64(uint64(attrIndex)).AppendString(string(p)).AppendString(strconv.FormatInt(int64(bound), 10))
}

func sortedIndexes[V any](m map[int]V) []int {
	keys := maps.Keys(m)
	slices.Sort(keys)

	return keys
}
