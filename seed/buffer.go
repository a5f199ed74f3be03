// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seed

import "sync"

// Buffer is a locked, zeroize-on-drop holder for sensitive key material
// (spec §5 Sensitive memory): the plaintext seed, a derived key, or Argon2id
// output. Callers must call Close when done; Buffer does not rely on a
// finalizer since the timing of a GC-triggered wipe is not guaranteed.
type Buffer struct {
	mu     sync.Mutex
	bytes  []byte
	locked bool
	closed bool
}

// NewBuffer copies src into a new locked Buffer. The caller's copy of src is
// not touched; callers that generated src themselves are responsible for
// zeroizing it separately.
func NewBuffer(src []byte) *Buffer {
	b := &Buffer{bytes: make([]byte, len(src))}
	copy(b.bytes, src)
	b.locked = lockMemory(b.bytes)
	return b
}

// Bytes returns the buffer's live contents. The returned slice aliases the
// Buffer's internal storage and must not be retained past Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	return b.bytes
}

// Locked reports whether the OS honored the memory-lock request; false does
// not mean the buffer is unsafe, only that the platform has no mlock
// equivalent or the process lacked permission.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Close zeroizes and unlocks the buffer. Safe to call more than once.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	zero(b.bytes)
	if b.locked {
		unlockMemory(b.bytes)
	}
	b.closed = true
}
