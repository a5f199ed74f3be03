// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seed

import (
	"bytes"
	"testing"
)

func TestBufferZeroizesOnClose(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5}
	b := NewBuffer(src)
	if !bytes.Equal(b.Bytes(), src) {
		t.Fatal("Buffer did not preserve its contents before Close")
	}
	b.Close()
	for _, v := range b.bytes {
		if v != 0 {
			t.Fatal("Buffer contents were not zeroized on Close")
		}
	}
	if b.Bytes() != nil {
		t.Fatal("Bytes() must return nil after Close")
	}
}

func TestBufferCloseIsIdempotent(t *testing.T) {
	b := NewBuffer([]byte{1, 2, 3})
	b.Close()
	b.Close()
}

func TestBufferDoesNotAliasSource(t *testing.T) {
	src := []byte{9, 9, 9}
	b := NewBuffer(src)
	src[0] = 0
	if b.Bytes()[0] != 9 {
		t.Fatal("Buffer aliased the caller's source slice")
	}
	b.Close()
}
