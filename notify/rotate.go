// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import "github.com/RenAndKiwi/nostring/nostrkey"

// RotateServiceKey replaces the DM/gift-wrap service identity with a fresh
// random keypair (spec §3's ServiceKey entry implies the service identity
// is distinct from any owner/heir identity and can be regenerated without
// touching the inheritance policy). Callers must persist the returned pair
// and update every Deliverer/RelayStore built from the old key.
func RotateServiceKey() (*nostrkey.KeyPair, error) {
	return nostrkey.GenerateServiceKey()
}
