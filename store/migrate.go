// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "encoding/binary"

// schemaVersionKey holds the current schema version as a big-endian
// uint32 (spec §4.I "idempotent migrations"; supplemented by a
// schema_version table per SPEC_FULL.md).
var schemaVersionKey = []byte("schema_version")

// migration is one idempotent schema step: it must check for its own end
// state before acting, so running it twice is a no-op (spec §4.I: "each
// step checks for its end state before acting").
type migration struct {
	version uint32
	apply   func(tx *Tx) error
}

// migrations is the ordered sequence of schema steps. Each step's apply
// function is itself idempotent; migrate() additionally skips any step
// whose version is already recorded, so the whole sequence is safe to run
// against a fresh or already-migrated store (spec §8: "migration
// idempotence").
var migrations = []migration{
	{version: 1, apply: func(tx *Tx) error { return nil }}, // reserves schema v1; tables are created lazily by key prefix
}

func (s *Store) migrate() error {
	return s.Update(func(tx *Tx) error {
		current, err := tx.currentSchemaVersion()
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if m.version <= current {
				continue
			}
			if err := m.apply(tx); err != nil {
				return err
			}
			if err := tx.setSchemaVersion(m.version); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t *Tx) currentSchemaVersion() (uint32, error) {
	raw, ok, err := t.get(schemaVersionKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return binary.BigEndian.Uint32(raw), nil
}

func (t *Tx) setSchemaVersion(v uint32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return t.put(schemaVersionKey, buf)
}
