// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !unix

package seed

func lockMemory(b []byte) bool {
	return false
}

func unlockMemory(b []byte) {}
