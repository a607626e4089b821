// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// hostByteOrder is the native byte order of this machine.
var hostByteOrder binary.ByteOrder = func() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}()
