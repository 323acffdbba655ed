/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package tails

import (
	"errors"
	"os"

	"github.com/bluele/gcache"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
)

const (
	// DefaultCacheSize is the number of verified tails files a Reader keeps.
	DefaultCacheSize = 8

	// DefaultMaxCachedFileSize is the largest tails file, in bytes, a Reader keeps. With the defaults the cache
	// holds at most 128 MiB.
	DefaultMaxCachedFileSize = 16 << 20
)

type readerOpts struct {
	cacheSize   int
	maxFileSize int
}

// Opt configures a Reader.
type Opt func(opts *readerOpts)

// WithCacheSize sets the number of verified tails files kept in memory. Zero disables caching.
func WithCacheSize(size int) Opt {
	return func(opts *readerOpts) {
		opts.cacheSize = size
	}
}

// WithMaxCachedFileSize sets the size in bytes above which a tails file is read on every Open. The cache holds
// at most cache size times this many bytes.
func WithMaxCachedFileSize(size int) Opt {
	return func(opts *readerOpts) {
		opts.maxFileSize = size
	}
}

// Reader opens tails files and caches their verified content by hash. It is safe for concurrent use.
type Reader struct {
	cache       gcache.Cache
	maxFileSize int
}

// NewReader returns a new Reader.
func NewReader(opts ...Opt) *Reader {
	o := &readerOpts{cacheSize: DefaultCacheSize, maxFileSize: DefaultMaxCachedFileSize}

	for _, opt := range opts {
		opt(o)
	}

	r := &Reader{maxFileSize: o.maxFileSize}
	if o.cacheSize > 0 {
		r.cache = gcache.New(o.cacheSize).LRU().Build()
	}

	return r
}

// Open reads the tails file at path and checks it against tailsHash and the registry capacity.
func (r *Reader) Open(path, tailsHash string, capacity uint32) (*File, error) {
	if f, ok := r.cached(tailsHash, capacity); ok {
		return f, nil
	}

	content, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errcode.Newf(errcode.Io, "read tails file: %w", err)
	}

	if got := Hash(content); got != tailsHash {
		return nil, errcode.Newf(errcode.IntegrityCheckFailed, "tails hash mismatch: file %s, expected %s",
			got, tailsHash)
	}

	f, err := parse(content, capacity)
	if err != nil {
		return nil, err
	}

	if r.cache != nil && len(content) <= r.maxFileSize {
		if err = r.cache.Set(tailsHash, f); err != nil {
			logger.Warnf("cache tails %s: %v", tailsHash, err)
		}
	}

	return f, nil
}

func (r *Reader) cached(tailsHash string, capacity uint32) (*File, bool) {
	if r.cache == nil {
		return nil, false
	}

	v, err := r.cache.Get(tailsHash)
	if err != nil {
		if !errors.Is(err, gcache.KeyNotFoundError) {
			logger.Warnf("tails cache: %v", err)
		}

		return nil, false
	}

	f, ok := v.(*File)
	if !ok || f.capacity != capacity {
		return nil, false
	}

	return f, true
}
