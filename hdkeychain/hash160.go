// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain

import "golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for BIP-32/141 HASH160

func ripemd160sum(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}
