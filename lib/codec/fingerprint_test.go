// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"testing"
)

func TestFingerprint(t *testing.T) {
	first := Fingerprint(mustParseValue(t, "{'a': <1>, 'b': <'x'>}"))
	second := Fingerprint(mustParseValue(t, "{'a': <1>, 'b': <'x'>}"))
	if first != second {
		t.Errorf("Fingerprint of equal values differs: %s vs %s", first, second)
	}

	// Same serialization, different type.
	asInt32 := Fingerprint(mustParseValue(t, "1"))
	asUint32 := Fingerprint(mustParseValue(t, "uint32 1"))
	if asInt32 == asUint32 {
		t.Error("Fingerprint(int32 1) == Fingerprint(uint32 1)")
	}

	reordered := Fingerprint(mustParseValue(t, "{'b': <'x'>, 'a': <1>}"))
	if reordered == first {
		t.Error("Fingerprint ignores dictionary order")
	}
}

func TestParseDigest(t *testing.T) {
	digest := Fingerprint(mustParseValue(t, "'hello'"))
	text := digest.String()
	if len(text) != 64 {
		t.Fatalf("Digest.String() = %q, want 64 hex characters", text)
	}
	parsed, err := ParseDigest(text)
	if err != nil {
		t.Fatalf("ParseDigest(%q) failed: %v", text, err)
	}
	if parsed != digest {
		t.Errorf("ParseDigest(%q) = %s, want %s", text, parsed, digest)
	}

	for _, bad := range []string{"zz", "abcd", text + "00"} {
		if _, err := ParseDigest(bad); err == nil {
			t.Errorf("ParseDigest(%q) should fail", bad)
		}
	}
}
