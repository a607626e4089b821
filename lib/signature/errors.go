// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package signature

import "fmt"

// SyntaxError reports an invalid signature string.
type SyntaxError struct {
	Signature string
	Offset    int
	Message   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid signature %q at offset %d: %s", e.Signature, e.Offset, e.Message)
}

// ShapeError reports a decomposition applied to a type of the wrong
// shape, such as asking a string type for its element type.
type ShapeError struct {
	Type Type
	Want string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("type %q is not %s", e.Type.text, e.Want)
}
