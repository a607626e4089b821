// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func TestTagString(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{None, "none"},
		{LZ4, "lz4"},
		{Zstd, "zstd"},
		{Tag(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tag.String(); got != tt.want {
				t.Errorf("Tag(%d).String() = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestParseTag(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd"} {
		t.Run(name, func(t *testing.T) {
			tag, err := ParseTag(name)
			if err != nil {
				t.Fatalf("ParseTag(%q) failed: %v", name, err)
			}
			if tag.String() != name {
				t.Errorf("roundtrip: ParseTag(%q).String() = %q", name, tag.String())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseTag("gzip"); err == nil {
			t.Error("ParseTag(\"gzip\") should fail")
		}
	})
}

func TestNonePassesThrough(t *testing.T) {
	data := []byte("uncompressed data should pass through unchanged")

	compressed, err := Compress(data, None)
	if err != nil {
		t.Fatalf("Compress(none) failed: %v", err)
	}
	if &compressed[0] != &data[0] {
		t.Error("None should return the same slice, not a copy")
	}

	decompressed, err := Decompress(compressed, None, len(data))
	if err != nil {
		t.Fatalf("Decompress(none) failed: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("none roundtrip failed")
	}

	if _, err := Decompress(data, None, len(data)+5); err == nil {
		t.Error("Decompress(none) with wrong size should fail")
	}
}

func TestRoundtrip(t *testing.T) {
	data := []byte(strings.Repeat("{'name': <'gvariant'>, 'count': <uint32 7>} ", 200))

	for _, tag := range []Tag{LZ4, Zstd} {
		t.Run(tag.String(), func(t *testing.T) {
			compressed, err := Compress(data, tag)
			if err != nil {
				t.Fatalf("Compress(%s) failed: %v", tag, err)
			}
			if len(compressed) >= len(data) {
				t.Errorf("Compress(%s) = %d bytes, want fewer than %d", tag, len(compressed), len(data))
			}

			decompressed, err := Decompress(compressed, tag, len(data))
			if err != nil {
				t.Fatalf("Decompress(%s) failed: %v", tag, err)
			}
			if !bytes.Equal(decompressed, data) {
				t.Errorf("%s roundtrip mismatch", tag)
			}

			if _, err := Decompress(compressed, tag, len(data)+1); err == nil {
				t.Errorf("Decompress(%s) with wrong size should fail", tag)
			}
		})
	}
}

func TestIncompressible(t *testing.T) {
	data := make([]byte, 4096)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	for _, tag := range []Tag{LZ4, Zstd} {
		t.Run(tag.String(), func(t *testing.T) {
			_, err := Compress(data, tag)
			if !errors.Is(err, ErrIncompressible) {
				t.Errorf("Compress(random, %s) error = %v, want ErrIncompressible", tag, err)
			}
		})
	}
}

func TestUnsupportedTag(t *testing.T) {
	if _, err := Compress([]byte("x"), Tag(42)); err == nil {
		t.Error("Compress with unknown tag should fail")
	}
	if _, err := Decompress([]byte("x"), Tag(42), 1); err == nil {
		t.Error("Decompress with unknown tag should fail")
	}
}

func TestSelect(t *testing.T) {
	random := make([]byte, 4096)
	if _, err := rand.Read(random); err != nil {
		t.Fatal(err)
	}

	if got := Select(nil); got != None {
		t.Errorf("Select(empty) = %s, want none", got)
	}
	if got := Select(random); got != None {
		t.Errorf("Select(random) = %s, want none", got)
	}
	repetitive := bytes.Repeat([]byte("abcdefgh"), 1024)
	if got := Select(repetitive); got != Zstd {
		t.Errorf("Select(repetitive) = %s, want zstd", got)
	}
}

func TestCompressAuto(t *testing.T) {
	random := make([]byte, 1024)
	if _, err := rand.Read(random); err != nil {
		t.Fatal(err)
	}
	payload, tag, err := CompressAuto(random)
	if err != nil {
		t.Fatalf("CompressAuto(random) failed: %v", err)
	}
	if tag != None || !bytes.Equal(payload, random) {
		t.Errorf("CompressAuto(random) = (%d bytes, %s), want the input with none", len(payload), tag)
	}

	repetitive := bytes.Repeat([]byte("gvariant"), 512)
	payload, tag, err = CompressAuto(repetitive)
	if err != nil {
		t.Fatalf("CompressAuto(repetitive) failed: %v", err)
	}
	decompressed, err := Decompress(payload, tag, len(repetitive))
	if err != nil {
		t.Fatalf("Decompress(%s) failed: %v", tag, err)
	}
	if !bytes.Equal(decompressed, repetitive) {
		t.Error("CompressAuto roundtrip mismatch")
	}
}

func BenchmarkCompressZstd(b *testing.B) {
	data := bytes.Repeat([]byte("{'key': <int64 42>} "), 4096)
	b.SetBytes(int64(len(data)))
	for b.Loop() {
		if _, err := Compress(data, Zstd); err != nil {
			b.Fatal(err)
		}
	}
}
