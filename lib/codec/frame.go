// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/gvariant/lib/compress"
	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// frameMagic opens every binary frame.
var frameMagic = [4]byte{'G', 'V', 'B', '1'}

// MaxFrameSize bounds the signature and uncompressed payload lengths
// accepted by [ReadFrame].
const MaxFrameSize = 256 << 20

// ErrBadFrame reports input that is not a binary frame.
var ErrBadFrame = errors.New("codec: not a gvariant frame")

// WriteFrame writes value as one self-describing binary frame:
//
//	magic "GVB1"
//	compression tag (1 byte)
//	signature length (uvarint) and signature text
//	uncompressed payload length (uvarint)
//	payload, the little-endian serialization compressed with tag
//
// A payload that does not shrink under the requested algorithm is
// written uncompressed and tagged [compress.None].
func WriteFrame(w io.Writer, value variant.Value, tag compress.Tag) error {
	if !value.IsValid() {
		return &UnsupportedTypeError{Type: "invalid variant.Value"}
	}
	data := value.Serialize(binary.LittleEndian)
	payload, err := compress.Compress(data, tag)
	if errors.Is(err, compress.ErrIncompressible) {
		payload, tag = data, compress.None
	} else if err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	sig := value.Type().String()
	header := make([]byte, 0, len(frameMagic)+1+2*binary.MaxVarintLen64+len(sig))
	header = append(header, frameMagic[:]...)
	header = append(header, byte(tag))
	header = binary.AppendUvarint(header, uint64(len(sig)))
	header = append(header, sig...)
	header = binary.AppendUvarint(header, uint64(len(data)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

// IsFrame reports whether data starts with the frame magic.
func IsFrame(data []byte) bool {
	return bytes.HasPrefix(data, frameMagic[:])
}

// ReadFrame reads one frame written by [WriteFrame]. The payload runs
// to the end of r.
func ReadFrame(r io.Reader) (variant.Value, error) {
	reader := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(reader, magic[:]); err != nil {
		return variant.Value{}, fmt.Errorf("reading frame magic: %w", err)
	}
	if magic != frameMagic {
		return variant.Value{}, ErrBadFrame
	}

	tagByte, err := reader.ReadByte()
	if err != nil {
		return variant.Value{}, fmt.Errorf("reading frame tag: %w", err)
	}
	tag := compress.Tag(tagByte)

	sigLength, err := readFrameLength(reader, "signature")
	if err != nil {
		return variant.Value{}, err
	}
	sigText := make([]byte, sigLength)
	if _, err := io.ReadFull(reader, sigText); err != nil {
		return variant.Value{}, fmt.Errorf("reading frame signature: %w", err)
	}
	sig, err := signature.Parse(string(sigText))
	if err != nil {
		return variant.Value{}, fmt.Errorf("frame signature: %w", err)
	}
	if !sig.IsDefinite() {
		return variant.Value{}, fmt.Errorf("frame signature %s is not a definite type", sig)
	}

	size, err := readFrameLength(reader, "payload")
	if err != nil {
		return variant.Value{}, err
	}
	var payload bytes.Buffer
	if _, err := payload.ReadFrom(io.LimitReader(reader, MaxFrameSize+1)); err != nil {
		return variant.Value{}, fmt.Errorf("reading frame payload: %w", err)
	}

	data, err := compress.Decompress(payload.Bytes(), tag, int(size))
	if err != nil {
		return variant.Value{}, fmt.Errorf("frame payload: %w", err)
	}
	return variant.Deserialize(sig, data, binary.LittleEndian)
}

func readFrameLength(reader *bufio.Reader, what string) (uint64, error) {
	length, err := binary.ReadUvarint(reader)
	if err != nil {
		return 0, fmt.Errorf("reading frame %s length: %w", what, err)
	}
	if length > MaxFrameSize {
		return 0, fmt.Errorf("frame %s length %d exceeds limit %d", what, length, MaxFrameSize)
	}
	return length, nil
}
