/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds persists the public anoncreds entities a verifier resolves presentations against.
package anoncreds

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bluele/gcache"
	"github.com/btcsuite/btcutil/base58"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	acdoc "github.com/hyperledger/anoncreds-go/pkg/doc/anoncreds"
)

const (
	// NameSpace for the anoncreds store.
	NameSpace = "anoncreds"

	// DefaultCacheSize is the number of records kept in the front cache.
	DefaultCacheSize = 64

	entityTag    = "entity"
	registryTag  = "revregdef"
	timestampTag = "timestamp"

	schemaKey     = "schema_"
	credDefKey    = "creddef_"
	revRegDefKey  = "revregdef_"
	statusListKey = "statuslist_"
)

var logger = log.New("anoncreds/store")

type provider interface {
	StorageProvider() storage.Provider
}

type storeOpts struct {
	cacheSize int
}

// Opt configures a Store.
type Opt func(opts *storeOpts)

// WithCacheSize sets the number of records kept in memory. Zero disables caching.
func WithCacheSize(size int) Opt {
	return func(opts *storeOpts) {
		opts.cacheSize = size
	}
}

// Store keeps schemas, credential definitions, revocation registry definitions and status lists under the
// identifiers presentations name them by. It is safe for concurrent use.
type Store struct {
	store storage.Store
	cache gcache.Cache
}

// New returns a new anoncreds store.
func New(ctx provider, opts ...Opt) (*Store, error) {
	o := &storeOpts{cacheSize: DefaultCacheSize}

	for _, opt := range opts {
		opt(o)
	}

	store, err := ctx.StorageProvider().OpenStore(NameSpace)
	if err != nil {
		return nil, fmt.Errorf("failed to open anoncreds store: %w", err)
	}

	err = ctx.StorageProvider().SetStoreConfig(NameSpace,
		storage.StoreConfiguration{TagNames: []string{entityTag, registryTag, timestampTag}})
	if err != nil {
		return nil, fmt.Errorf("failed to set store configuration: %w", err)
	}

	s := &Store{store: store}

	if o.cacheSize > 0 {
		s.cache = gcache.New(o.cacheSize).LRU().LoaderFunc(func(key interface{}) (interface{}, error) {
			return store.Get(key.(string))
		}).Build()
	}

	return s, nil
}

// SaveSchema stores a schema under id, or under its content id when id is empty.
func (s *Store) SaveSchema(id string, schema *acdoc.Schema) error {
	if id == "" {
		id = schema.ID()
	}

	return s.put(schemaKey+id, schema, storage.Tag{Name: entityTag, Value: "schema"})
}

// GetSchema returns the schema with id.
func (s *Store) GetSchema(id string) (*acdoc.Schema, error) {
	data, err := s.get(schemaKey+id, "schema", id)
	if err != nil {
		return nil, err
	}

	return acdoc.SchemaFromJSON(data)
}

// SaveCredentialDefinition stores a credential definition under id, or under its content id when id is empty.
func (s *Store) SaveCredentialDefinition(id string, credDef *acdoc.CredentialDefinition) error {
	if id == "" {
		id = credDef.ID()
	}

	return s.put(credDefKey+id, credDef, storage.Tag{Name: entityTag, Value: "creddef"})
}

// GetCredentialDefinition returns the credential definition with id.
func (s *Store) GetCredentialDefinition(id string) (*acdoc.CredentialDefinition, error) {
	data, err := s.get(credDefKey+id, "credential definition", id)
	if err != nil {
		return nil, err
	}

	return acdoc.CredentialDefinitionFromJSON(data)
}

// SaveRevocationRegistryDefinition stores a revocation registry definition under id, or under its content id
// when id is empty.
func (s *Store) SaveRevocationRegistryDefinition(id string, revRegDef *acdoc.RevocationRegistryDefinition) error {
	if id == "" {
		id = revRegDef.ID()
	}

	return s.put(revRegDefKey+id, revRegDef, storage.Tag{Name: entityTag, Value: "revregdef"})
}

// GetRevocationRegistryDefinition returns the revocation registry definition with id.
func (s *Store) GetRevocationRegistryDefinition(id string) (*acdoc.RevocationRegistryDefinition, error) {
	data, err := s.get(revRegDefKey+id, "revocation registry definition", id)
	if err != nil {
		return nil, err
	}

	return acdoc.RevocationRegistryDefinitionFromJSON(data)
}

// SaveRevocationStatusList stores a status list under its registry and timestamp. Lists published at the same
// timestamp replace each other.
func (s *Store) SaveRevocationStatusList(statusList *acdoc.RevocationStatusList) error {
	if statusList.RevRegDefID == "" {
		return errcode.Newf(errcode.InvalidRequest, "status list has no registry definition id")
	}

	return s.put(statusListDataKey(statusList.RevRegDefID, statusList.Timestamp), statusList,
		storage.Tag{Name: entityTag, Value: "statuslist"},
		storage.Tag{Name: registryTag, Value: tagValue(statusList.RevRegDefID)},
		storage.Tag{Name: timestampTag, Value: strconv.FormatInt(statusList.Timestamp, 10)})
}

// GetRevocationStatusList returns the status list of a registry published at timestamp.
func (s *Store) GetRevocationStatusList(revRegDefID string, timestamp int64) (*acdoc.RevocationStatusList, error) {
	data, err := s.get(statusListDataKey(revRegDefID, timestamp), "revocation status list",
		fmt.Sprintf("%s@%d", revRegDefID, timestamp))
	if err != nil {
		return nil, err
	}

	return acdoc.RevocationStatusListFromJSON(data)
}

// LatestRevocationStatusList returns the status list of a registry with the largest timestamp.
func (s *Store) LatestRevocationStatusList(revRegDefID string) (*acdoc.RevocationStatusList, error) {
	itr, err := s.store.Query(registryTag + ":" + tagValue(revRegDefID))
	if err != nil {
		return nil, errcode.Newf(errcode.Io, "query status lists: %w", err)
	}

	defer storage.Close(itr, logger)

	var (
		latest   []byte
		found    bool
		latestTS int64
	)

	more, err := itr.Next()

	for ; err == nil && more; more, err = itr.Next() {
		var ts int64

		ts, err = iteratorTimestamp(itr)
		if err != nil {
			break
		}

		if found && ts <= latestTS {
			continue
		}

		latest, err = itr.Value()
		if err != nil {
			break
		}

		found, latestTS = true, ts
	}

	if err != nil {
		return nil, errcode.Newf(errcode.Io, "iterate status lists: %w", err)
	}

	if !found {
		return nil, errcode.Newf(errcode.MissingPublicInput, "no revocation status list for %s: %w", revRegDefID,
			storage.ErrDataNotFound)
	}

	return acdoc.RevocationStatusListFromJSON(latest)
}

func iteratorTimestamp(itr storage.Iterator) (int64, error) {
	tags, err := itr.Tags()
	if err != nil {
		return 0, err
	}

	for _, tag := range tags {
		if tag.Name == timestampTag {
			return strconv.ParseInt(tag.Value, 10, 64)
		}
	}

	return 0, errors.New("status list record has no timestamp tag")
}

func (s *Store) put(key string, entity interface{}, tags ...storage.Tag) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return errcode.Newf(errcode.Input, "failed to marshal %s: %w", key, err)
	}

	if err = s.store.Put(key, data, tags...); err != nil {
		return errcode.Newf(errcode.Io, "failed to put %s: %w", key, err)
	}

	if s.cache != nil {
		if err = s.cache.Set(key, data); err != nil {
			logger.Warnf("cache %s: %v", key, err)
		}
	}

	logger.Debugf("stored %s", key)

	return nil
}

func (s *Store) get(key, kind, id string) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if s.cache != nil {
		var v interface{}

		v, err = s.cache.Get(key)
		if err == nil {
			data = v.([]byte)
		}
	} else {
		data, err = s.store.Get(key)
	}

	switch {
	case errors.Is(err, storage.ErrDataNotFound):
		return nil, errcode.Newf(errcode.MissingPublicInput, "%s %s: %w", kind, id, err)
	case err != nil:
		return nil, errcode.Newf(errcode.Io, "failed to get %s %s: %w", kind, id, err)
	}

	return data, nil
}

func statusListDataKey(revRegDefID string, timestamp int64) string {
	return statusListKey + revRegDefID + "_" + strconv.FormatInt(timestamp, 10)
}

// tagValue maps an identifier to a tag value. Tag values cannot hold the ':' of DID based identifiers.
func tagValue(id string) string {
	sum := sha256.Sum256([]byte(id))

	return base58.Encode(sum[:])
}
