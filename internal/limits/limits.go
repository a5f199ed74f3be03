// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package limits

import "sync"

var (
	cryptoProviderOnce sync.Once
	cryptoProviderErr  error
)

// InitCryptoProvider performs any process-wide crypto backend
// initialization exactly once. NoString's cryptography (secp256k1, HKDF,
// ChaCha20-Poly1305, Argon2) is all pure Go and needs no provider handle,
// so this is a placement for the idiom rather than a real backend --
// recorded once, idempotently, so a future backend swap has a single call
// site and the spec's crypto_provider_missing Fatal kind has somewhere to
// originate from.
func InitCryptoProvider() error {
	cryptoProviderOnce.Do(func() {
		cryptoProviderErr = nil
	})
	return cryptoProviderErr
}
