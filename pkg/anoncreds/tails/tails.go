/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package tails writes and reads revocation tails files.
//
// A tails file holds a 2-byte big-endian version followed by the compressed G2 points g2^(gamma^k) for
// k = 1..2L of a registry of capacity L. The file is named after, and addressed by, the base58 SHA-256 hash
// of its content.
package tails

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	ml "github.com/IBM/mathlib"
	"github.com/btcsuite/btcutil/base58"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/errcode"
	"github.com/hyperledger/anoncreds-go/pkg/crypto/primitive/accumulator"
)

// Version is the tails file format version.
const Version uint16 = 2

const headerSize = 2

var logger = log.New("anoncreds/tails")

// nolint:gochecknoglobals
var curve = ml.Curves[ml.BLS12_381_BBS]

// Generator produces the points of a tails file in order.
type Generator func(emit func(k uint32, p *ml.G2) error) error

// Write generates the tails of a registry of the given capacity into dir. It returns the path of the file and
// its hash.
func Write(dir string, capacity uint32, generate Generator) (string, string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil { //nolint:gomnd
		return "", "", errcode.Newf(errcode.Io, "create tails dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "tails-*")
	if err != nil {
		return "", "", errcode.Newf(errcode.Io, "create tails file: %w", err)
	}

	defer func() {
		// after a successful rename the temp name is gone
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warnf("remove temporary tails file %s: %v", tmp.Name(), rmErr)
		}
	}()

	digest, err := writeTo(tmp, capacity, generate)

	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = errcode.Newf(errcode.Io, "close tails file: %w", closeErr)
	}

	if err != nil {
		return "", "", err
	}

	tailsHash := base58.Encode(digest.Sum(nil))
	path := filepath.Join(dir, tailsHash)

	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", "", errcode.Newf(errcode.Io, "rename tails file: %w", err)
	}

	logger.Debugf("wrote %d tails points to %s", accumulator.TailsSize(capacity), path)

	return path, tailsHash, nil
}

func writeTo(f io.Writer, capacity uint32, generate Generator) (hash.Hash, error) {
	digest := sha256.New()
	w := bufio.NewWriter(io.MultiWriter(f, digest))

	header := make([]byte, headerSize)
	binary.BigEndian.PutUint16(header, Version)

	if _, err := w.Write(header); err != nil {
		return nil, errcode.Newf(errcode.Io, "write tails header: %w", err)
	}

	next := uint32(1)

	err := generate(func(k uint32, p *ml.G2) error {
		if k != next {
			return fmt.Errorf("tails point %d out of order", k)
		}

		next++

		if _, err := w.Write(p.Compressed()); err != nil {
			return errcode.Newf(errcode.Io, "write tails point %d: %w", k, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if next-1 != accumulator.TailsSize(capacity) {
		return nil, errcode.Newf(errcode.Unexpected, "generated %d tails points, expected %d",
			next-1, accumulator.TailsSize(capacity))
	}

	if err = w.Flush(); err != nil {
		return nil, errcode.Newf(errcode.Io, "flush tails file: %w", err)
	}

	return digest, nil
}

// Hash returns the tails hash of content.
func Hash(content []byte) string {
	digest := sha256.Sum256(content)

	return base58.Encode(digest[:])
}

// File is an integrity-checked tails file held in memory. Points are decompressed on demand.
type File struct {
	content  []byte
	capacity uint32
}

// Capacity returns the registry capacity the file was generated for.
func (f *File) Capacity() uint32 {
	return f.capacity
}

// Point returns g2^(gamma^k) for k in [1, 2L].
func (f *File) Point(k uint32) (*ml.G2, error) {
	if k == 0 || k > accumulator.TailsSize(f.capacity) {
		return nil, errcode.Newf(errcode.IndexOutOfRange, "tails point %d of %d", k,
			accumulator.TailsSize(f.capacity))
	}

	size := uint32(curve.CompressedG2ByteSize)
	start := headerSize + (k-1)*size

	p, err := curve.NewG2FromCompressed(f.content[start : start+size])
	if err != nil {
		return nil, errcode.Newf(errcode.IntegrityCheckFailed, "tails point %d: %w", k, err)
	}

	return p, nil
}

func parse(content []byte, capacity uint32) (*File, error) {
	if len(content) < headerSize {
		return nil, errcode.Newf(errcode.IntegrityCheckFailed, "tails file too short")
	}

	if v := binary.BigEndian.Uint16(content); v != Version {
		return nil, errcode.Newf(errcode.IntegrityCheckFailed, "unsupported tails version %d", v)
	}

	expected := headerSize + int(accumulator.TailsSize(capacity))*curve.CompressedG2ByteSize
	if len(content) != expected {
		return nil, errcode.Newf(errcode.IntegrityCheckFailed,
			"tails file has %d bytes, capacity %d needs %d", len(content), capacity, expected)
	}

	return &File{content: content, capacity: capacity}, nil
}
