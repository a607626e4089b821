// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/gvariant/lib/variant"
)

// Digest is a 32-byte BLAKE3 fingerprint of a value.
type Digest [32]byte

// fingerprintKey is the BLAKE3 key of the value fingerprint domain:
// the ASCII domain name, zero-padded to 32 bytes. Changing it changes
// every fingerprint.
var fingerprintKey = [32]byte{
	'g', 'v', 'a', 'r', 'i', 'a', 'n', 't', '.', 'v', 'a', 'l', 'u', 'e', '.',
	'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r', 'i', 'n', 't', 0, 0, 0, 0, 0, 0,
}

// Fingerprint computes the keyed BLAKE3 hash of the type signature and
// little-endian serialization of value. The signature is
// NUL-terminated, so equal values of different types never share a
// fingerprint, and values that are Equal always do.
func Fingerprint(value variant.Value) Digest {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("codec: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(value.Type().String()))
	hasher.Write([]byte{0})
	hasher.Write(value.Serialize(binary.LittleEndian))
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the hex encoding of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a 64-character hex string.
func ParseDigest(text string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
