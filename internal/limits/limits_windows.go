// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build windows

package limits

// SetLimits is a no-op on Windows: there is no RLIMIT_CORE equivalent to
// set, and Windows does not produce core dumps by default.
func SetLimits() error {
	return InitCryptoProvider()
}
