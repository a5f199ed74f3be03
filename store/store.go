// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store implements the durable store (spec §4.I): a transactional
// key-value + table API backed by a single local goleveldb database file,
// with idempotent migrations and write-through discipline.
package store

import (
	"encoding/binary"
	"encoding/json"

	"github.com/RenAndKiwi/nostring/errs"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Store is the single local database file the core persists everything to
// (spec §6.5: "no other state is persisted by the core").
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the database file at path and runs
// every pending migration. leveldb's own write-ahead log lets a reader
// (status refresh) proceed concurrently with a writer (poll cycle), per
// spec §4.I.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errs.Wrap(errs.StoreCorruption, "failed to open database file", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens an in-memory store, used by tests that want real
// transactional semantics without a filesystem.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errs.Wrap(errs.StoreCorruption, "failed to open in-memory database", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx is a single read-write transaction. Every mutation of the in-memory
// model goes through Update so that the whole write lands atomically
// (spec §4.I write-through discipline).
type Tx struct {
	txn *leveldb.Transaction
}

// Update runs fn inside one write transaction, committing on success and
// discarding on error or panic.
func (s *Store) Update(fn func(tx *Tx) error) (err error) {
	txn, err := s.db.OpenTransaction()
	if err != nil {
		return errs.Wrap(errs.StoreCorruption, "failed to open write transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			txn.Discard()
			panic(p)
		}
	}()
	if err := fn(&Tx{txn: txn}); err != nil {
		txn.Discard()
		return err
	}
	if err := txn.Commit(); err != nil {
		return errs.Wrap(errs.StoreCorruption, "failed to commit write transaction", err)
	}
	return nil
}

// View runs fn against a read snapshot; readers may proceed concurrently
// with an in-flight Update.
func (s *Store) View(fn func(r Reader) error) error {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return errs.Wrap(errs.StoreCorruption, "failed to take read snapshot", err)
	}
	defer snap.Release()
	return fn(dbReader{db: snap})
}

// Reader is the read-only subset both Tx and a top-level snapshot satisfy.
type Reader interface {
	get(key []byte) ([]byte, bool, error)
	iteratePrefix(prefix []byte) ([][2][]byte, error)
}

type dbReader struct{ db *leveldb.Snapshot }

func (r dbReader) get(key []byte) ([]byte, bool, error) {
	v, err := r.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.StoreCorruption, "read failed", err)
	}
	return v, true, nil
}

func (r dbReader) iteratePrefix(prefix []byte) ([][2][]byte, error) {
	it := r.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	var out [][2][]byte
	for it.Next() {
		k := append([]byte(nil), it.Key()...)
		v := append([]byte(nil), it.Value()...)
		out = append(out, [2][]byte{k, v})
	}
	if err := it.Error(); err != nil {
		return nil, errs.Wrap(errs.StoreCorruption, "iteration failed", err)
	}
	return out, nil
}

func (t *Tx) get(key []byte) ([]byte, bool, error) {
	v, err := t.txn.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.StoreCorruption, "read failed", err)
	}
	return v, true, nil
}

func (t *Tx) iteratePrefix(prefix []byte) ([][2][]byte, error) {
	it := t.txn.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	var out [][2][]byte
	for it.Next() {
		k := append([]byte(nil), it.Key()...)
		v := append([]byte(nil), it.Value()...)
		out = append(out, [2][]byte{k, v})
	}
	if err := it.Error(); err != nil {
		return nil, errs.Wrap(errs.StoreCorruption, "iteration failed", err)
	}
	return out, nil
}

func (t *Tx) put(key []byte, value []byte) error {
	if err := t.txn.Put(key, value, nil); err != nil {
		return errs.Wrap(errs.StoreCorruption, "write failed", err)
	}
	return nil
}

func (t *Tx) delete(key []byte) error {
	if err := t.txn.Delete(key, nil); err != nil {
		return errs.Wrap(errs.StoreCorruption, "delete failed", err)
	}
	return nil
}

// nextAutoincrement reads and bumps a per-table counter in one
// transaction, used by every append-only log table's primary key.
func (t *Tx) nextAutoincrement(counterKey []byte) (uint64, error) {
	raw, ok, err := t.get(counterKey)
	if err != nil {
		return 0, err
	}
	var next uint64 = 1
	if ok {
		next = binary.BigEndian.Uint64(raw) + 1
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := t.put(counterKey, buf); err != nil {
		return 0, err
	}
	return next, nil
}

func encode(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Wrap(errs.StoreCorruption, "failed to encode record", err)
	}
	return b, nil
}

func decode(raw []byte, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errs.Wrap(errs.StoreCorruption, "failed to decode record", err)
	}
	return nil
}
