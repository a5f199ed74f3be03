// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain

import (
	"github.com/RenAndKiwi/nostring/bech32"
	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/errs"
)

// P2WPKHAddress computes the native segwit v0 address for k's public key
// under params, e.g. "tb1q..." on testnet (spec §4.D derive_address).
func (k *ExtendedKey) P2WPKHAddress(params chaincfg.Params) (string, error) {
	program := hash160(k.pubKeyBytes())
	groups, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", errs.Wrap(errs.InvalidXpub, "regrouping witness program", err)
	}
	data := append([]byte{0x00}, groups...) // witness version 0
	return bech32.Encode(params.Bech32HRP, data, bech32.Bech32)
}
