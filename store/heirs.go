// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "encoding/hex"

var heirsPrefix = []byte("heirs/")

// Heir is the persisted record for one heir (spec §4.I heirs table,
// primary key fingerprint, "includes contact fields").
type Heir struct {
	Fingerprint    [4]byte
	Label          string
	Xpub           string
	DerivationPath string
	TimelockBlocks uint32
	Npub           string
	Email          string
}

func heirKey(fp [4]byte) []byte {
	return append(append([]byte(nil), heirsPrefix...), hex.EncodeToString(fp[:])...)
}

// PutHeir inserts or replaces a heir record.
func (t *Tx) PutHeir(h Heir) error {
	raw, err := encode(h)
	if err != nil {
		return err
	}
	return t.put(heirKey(h.Fingerprint), raw)
}

// RemoveHeir deletes a heir record by fingerprint (spec §6.6
// remove_heir).
func (t *Tx) RemoveHeir(fp [4]byte) error {
	return t.delete(heirKey(fp))
}

// ListHeirs returns every persisted heir (spec §6.6 list_heirs).
func ListHeirs(r Reader) ([]Heir, error) {
	pairs, err := r.iteratePrefix(heirsPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Heir, 0, len(pairs))
	for _, kv := range pairs {
		var h Heir
		if err := decode(kv[1], &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}
