// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"testing"
	"time"

	"github.com/RenAndKiwi/nostring/notify"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.Update(func(tx *Tx) error { return tx.SetConfig("network", "testnet") }); err != nil {
		t.Fatal(err)
	}
	var got string
	var ok bool
	err := s.View(func(r Reader) error {
		var err error
		got, ok, err = GetConfig(r, "network")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != "testnet" {
		t.Fatalf("got (%q, %v)", got, ok)
	}
}

func TestHeirsCRUD(t *testing.T) {
	s := openTestStore(t)
	fp := [4]byte{0x7c, 0xee, 0x98, 0x9c}
	h := Heir{Fingerprint: fp, Label: "alice", Xpub: "tpub_alice", TimelockBlocks: 26280}

	if err := s.Update(func(tx *Tx) error { return tx.PutHeir(h) }); err != nil {
		t.Fatal(err)
	}

	var heirs []Heir
	if err := s.View(func(r Reader) error {
		var err error
		heirs, err = ListHeirs(r)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if len(heirs) != 1 || heirs[0].Label != "alice" {
		t.Fatalf("got %+v", heirs)
	}

	if err := s.Update(func(tx *Tx) error { return tx.RemoveHeir(fp) }); err != nil {
		t.Fatal(err)
	}
	if err := s.View(func(r Reader) error {
		var err error
		heirs, err = ListHeirs(r)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if len(heirs) != 0 {
		t.Fatalf("expected no heirs after removal, got %+v", heirs)
	}
}

func TestAppendOnlyLogsAssignSequentialIDs(t *testing.T) {
	s := openTestStore(t)
	var ids []uint64
	err := s.Update(func(tx *Tx) error {
		for i := 0; i < 3; i++ {
			id, err := tx.AppendSpendEvent(SpendEvent{Txid: "deadbeef", ObservedAt: time.Now()})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("expected sequential ids 1,2,3, got %v", ids)
	}

	var events []SpendEvent
	if err := s.View(func(r Reader) error {
		var err error
		events, err = ListSpendEvents(r)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}

func TestDeliveryLogReaderCooldown(t *testing.T) {
	s := openTestStore(t)
	fp := [4]byte{1, 2, 3, 4}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.Update(func(tx *Tx) error {
		_, err := tx.AppendDeliveryLog(DeliveryLogEntry{
			Fingerprint: fp,
			Channel:     notify.ChannelNostr,
			Level:       notify.LevelCritical,
			Success:     true,
			At:          now,
		})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	var within bool
	err = s.View(func(r Reader) error {
		reader := DeliveryLogReader{R: r}
		within = notify.WithinCooldown(reader, fp, notify.ChannelNostr, notify.LevelCritical, notify.DeliveryCooldown, now.Add(time.Hour))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !within {
		t.Fatal("expected cooldown to still be active one hour later")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatal(err)
	}
	if err := s.migrate(); err != nil {
		t.Fatal(err)
	}
	var version uint32
	err := s.Update(func(tx *Tx) error {
		v, err := tx.currentSchemaVersion()
		version = v
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if version != migrations[len(migrations)-1].version {
		t.Fatalf("got schema version %d, want %d", version, migrations[len(migrations)-1].version)
	}
}
