// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bureau-foundation/gvariant/lib/compress"
	"github.com/bureau-foundation/gvariant/lib/signature"
)

var envelopeSamples = []string{
	"true",
	"uint32 7",
	"[uint16 1, 2, 3]",
	"('a', uint64 2)",
	"{'id': <uint32 1>, 'name': <'Item'>}",
	"@mi nothing",
	"@ms 'x'",
	"[@ax [], [int64 1, -1]]",
	"(int16 -3, 2.5, objectpath '/a', signature 'a{sv}', handle 4)",
	"<[<byte 0x01>, <@a{sq} {'k': 9}>]>",
}

func TestSerializedRoundtrip(t *testing.T) {
	for _, text := range envelopeSamples {
		t.Run(text, func(t *testing.T) {
			original := mustParseValue(t, text)
			envelope := NewSerialized(original)
			if envelope.Signature != original.Type() {
				t.Errorf("Signature = %s, want %s", envelope.Signature, original.Type())
			}
			if !bytes.Equal(envelope.Data, original.Serialize(binary.LittleEndian)) {
				t.Errorf("Data = %x, want the little-endian serialization %x", envelope.Data, original.Serialize(binary.LittleEndian))
			}
			decoded, err := envelope.Value()
			if err != nil {
				t.Fatalf("Value() failed: %v", err)
			}
			if !decoded.Equal(original) {
				t.Errorf("Value() = %s, want %s", decoded.Print(true), original.Print(true))
			}
		})
	}
}

// TestSerializedBigEndianHost simulates a big-endian host: the payload
// must still be little-endian, and decoding on either host must agree.
func TestSerializedBigEndianHost(t *testing.T) {
	for _, text := range envelopeSamples {
		t.Run(text, func(t *testing.T) {
			original := mustParseValue(t, text)
			bigEndian := NewSerialized(original, WithByteOrder(binary.BigEndian))
			littleEndian := NewSerialized(original, WithByteOrder(binary.LittleEndian))
			if !bytes.Equal(bigEndian.Data, littleEndian.Data) {
				t.Errorf("big-endian host payload %x differs from little-endian %x", bigEndian.Data, littleEndian.Data)
			}

			for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
				decoded, err := bigEndian.Value(WithByteOrder(order))
				if err != nil {
					t.Fatalf("Value(%s) failed: %v", order, err)
				}
				if !decoded.Equal(original) {
					t.Errorf("Value(%s) = %s, want %s", order, decoded.Print(true), original.Print(true))
				}
			}
		})
	}
}

func TestSerializedIndefinite(t *testing.T) {
	envelope := Serialized{Signature: signature.Any}
	if _, err := envelope.Value(); err == nil {
		t.Error("Value() of an indefinite signature should fail")
	}
}

func TestPrettyRoundtrip(t *testing.T) {
	for _, text := range envelopeSamples {
		t.Run(text, func(t *testing.T) {
			original := mustParseValue(t, text)
			decoded, err := NewPretty(original).Value()
			if err != nil {
				t.Fatalf("Pretty(%q).Value() failed: %v", NewPretty(original), err)
			}
			if !decoded.Equal(original) {
				t.Errorf("Pretty roundtrip = %s, want %s", decoded.Print(true), original.Print(true))
			}
		})
	}
}

func TestVariantEnvelope(t *testing.T) {
	value := mustParseValue(t, "(1, 'a')")
	wrapped := NewVariant(value)
	if _, ok := wrapped.Envelope(true).(Pretty); !ok {
		t.Errorf("Envelope(true) = %T, want Pretty", wrapped.Envelope(true))
	}
	if _, ok := wrapped.Envelope(false).(Serialized); !ok {
		t.Errorf("Envelope(false) = %T, want Serialized", wrapped.Envelope(false))
	}

	encoded, err := Marshal(wrapped)
	if err != nil || !encoded.Equal(value) {
		t.Errorf("Marshal(Variant) = %s, %v, want %s", encoded.Print(true), err, value.Print(true))
	}

	var decoded Serialized
	if err := Unmarshal(mustParseValue(t, "<uint16 3>"), &decoded); err != nil {
		t.Fatalf("Unmarshal into Serialized failed: %v", err)
	}
	if decoded.Signature != signature.Uint16 {
		t.Errorf("Unmarshal into Serialized signature = %s, want q", decoded.Signature)
	}
}

func TestFrameRoundtrip(t *testing.T) {
	for _, tag := range []compress.Tag{compress.None, compress.LZ4, compress.Zstd} {
		for _, text := range envelopeSamples {
			t.Run(tag.String()+"/"+text, func(t *testing.T) {
				original := mustParseValue(t, text)
				var buffer bytes.Buffer
				if err := WriteFrame(&buffer, original, tag); err != nil {
					t.Fatalf("WriteFrame failed: %v", err)
				}
				decoded, err := ReadFrame(&buffer)
				if err != nil {
					t.Fatalf("ReadFrame failed: %v", err)
				}
				if !decoded.Equal(original) {
					t.Errorf("ReadFrame = %s, want %s", decoded.Print(true), original.Print(true))
				}
			})
		}
	}
}

func TestFrameCompresses(t *testing.T) {
	names := make([]string, 512)
	for index := range names {
		names[index] = "repeated-name"
	}
	value, err := Marshal(names)
	if err != nil {
		t.Fatal(err)
	}
	var plain, compressed bytes.Buffer
	if err := WriteFrame(&plain, value, compress.None); err != nil {
		t.Fatal(err)
	}
	if err := WriteFrame(&compressed, value, compress.Zstd); err != nil {
		t.Fatal(err)
	}
	if compressed.Len() >= plain.Len() {
		t.Errorf("zstd frame = %d bytes, want fewer than %d", compressed.Len(), plain.Len())
	}
	if tag := compress.Tag(compressed.Bytes()[4]); tag != compress.Zstd {
		t.Errorf("frame tag = %s, want zstd", tag)
	}
}

func TestFrameErrors(t *testing.T) {
	if IsFrame([]byte("NOPEpayload")) {
		t.Error("IsFrame(bad magic) = true, want false")
	}
	if _, err := ReadFrame(bytes.NewReader([]byte("NOPEpayload"))); err != ErrBadFrame {
		t.Errorf("ReadFrame(bad magic) error = %v, want ErrBadFrame", err)
	}

	var buffer bytes.Buffer
	if err := WriteFrame(&buffer, mustParseValue(t, "uint32 7"), compress.None); err != nil {
		t.Fatal(err)
	}
	if !IsFrame(buffer.Bytes()) {
		t.Error("IsFrame(frame) = false, want true")
	}
	truncated := buffer.Bytes()[:buffer.Len()-1]
	if _, err := ReadFrame(bytes.NewReader(truncated)); err == nil {
		t.Error("ReadFrame(truncated) should fail")
	}

	// A byte of tiny incompressible data written with lz4 falls back
	// to an uncompressed payload.
	buffer.Reset()
	if err := WriteFrame(&buffer, mustParseValue(t, "byte 0x01"), compress.LZ4); err != nil {
		t.Fatal(err)
	}
	if tag := compress.Tag(buffer.Bytes()[4]); tag != compress.None {
		t.Errorf("frame tag for one byte = %s, want none", tag)
	}
}
