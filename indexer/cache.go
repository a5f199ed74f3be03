// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
)

// DefaultClassifiedTxidCacheSize bounds how many already-classified spend
// txids the orchestrator keeps in memory, so a long-lived process does not
// re-run spend classification against the same transaction every polling
// cycle (spec §4.J step 2 classifies "new" spends only).
const DefaultClassifiedTxidCacheSize = 4096

// ClassifiedTxidCache remembers which txids have already been through
// spend classification, bounded by a fixed capacity with least-recently-
// used eviction.
type ClassifiedTxidCache struct {
	seen *lru.Cache[chainhash.Hash]
}

// NewClassifiedTxidCache builds a cache holding up to capacity entries.
func NewClassifiedTxidCache(capacity uint) *ClassifiedTxidCache {
	return &ClassifiedTxidCache{seen: lru.NewCache[chainhash.Hash](capacity)}
}

// MarkClassified records that txid has been classified this run.
func (c *ClassifiedTxidCache) MarkClassified(txid chainhash.Hash) {
	c.seen.Add(txid)
}

// AlreadyClassified reports whether txid was previously marked.
func (c *ClassifiedTxidCache) AlreadyClassified(txid chainhash.Hash) bool {
	return c.seen.Contains(txid)
}
