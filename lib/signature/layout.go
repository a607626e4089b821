// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package signature

// Alignment returns the alignment in bytes of values of a definite
// type in the binary format: 1, 2, 4 or 8. Containers align to their
// most strictly aligned member; the unit tuple aligns to 1.
func (t Type) Alignment() int {
	alignment, _ := layout(t.text)
	return alignment
}

// FixedSize returns the serialized size of a fixed-size type, or 0 if
// values of the type vary in size. Strings, boxed values, maybes and
// arrays are never fixed-size. A tuple is fixed-size when all of its
// members are; its size includes trailing padding to its alignment.
// The unit tuple occupies one byte.
func (t Type) FixedSize() int {
	_, size := layout(t.text)
	return size
}

// IsFixedSize reports whether [Type.FixedSize] is non-zero.
func (t Type) IsFixedSize() bool { return t.FixedSize() > 0 }

func layout(text string) (alignment, fixedSize int) {
	if text == "" {
		return 1, 0
	}
	switch text[0] {
	case 'b', 'y':
		return 1, 1
	case 'n', 'q':
		return 2, 2
	case 'i', 'u', 'h':
		return 4, 4
	case 'x', 't', 'd':
		return 8, 8
	case 's', 'o', 'g':
		return 1, 0
	case 'v':
		return 8, 0
	case 'a', 'm':
		elementAlignment, _ := layout(text[1:])
		return elementAlignment, 0
	case '(', '{':
		members := splitMembers(text[1 : len(text)-1])
		if len(members) == 0 {
			return 1, 1
		}
		alignment = 1
		offset := 0
		fixed := true
		for _, member := range members {
			memberAlignment, memberSize := layout(member.text)
			alignment = max(alignment, memberAlignment)
			if memberSize == 0 {
				fixed = false
				continue
			}
			offset = Align(offset, memberAlignment) + memberSize
		}
		if !fixed {
			return alignment, 0
		}
		return alignment, Align(offset, alignment)
	}
	return 1, 0
}

// Align rounds offset up to the next multiple of alignment, which
// must be a power of two.
func Align(offset, alignment int) int {
	return (offset + alignment - 1) &^ (alignment - 1)
}
