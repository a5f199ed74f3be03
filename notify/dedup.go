// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"fmt"

	"github.com/decred/dcrd/container/apbf"
)

// dedupFalsePositiveRate bounds the chance a (heir, channel, level) triple
// is wrongly treated as "already notified this generation" — cheap enough
// to tolerate an occasional redundant delivery check against the store,
// never a missed one the other direction (the filter never reports
// "not seen" for something it has seen).
const dedupFalsePositiveRate = 0.001

// generationsTracked bounds how many polling cycles a dedup entry survives
// before aging out, so a transient filter doesn't grow unbounded across a
// long-running process.
const generationsTracked = 4

// CycleDedup avoids a store round trip to re-check "did I already notify
// (heir, channel, level) this generation" on every polling tick, using an
// age-partitioned bloom filter that ages entries out after a bounded
// number of generations. It is an optimization only: the delivery log
// remains the authoritative rate-limit source (see RateLimiter).
type CycleDedup struct {
	filter *apbf.Filter
}

// NewCycleDedup builds a dedup filter sized for capacity distinct
// (heir, channel, level) triples per generation.
func NewCycleDedup(capacity uint32) *CycleDedup {
	return &CycleDedup{filter: apbf.NewFilter(capacity, generationsTracked, dedupFalsePositiveRate)}
}

// Seen reports whether key was already marked this generation window.
func (d *CycleDedup) Seen(heirFingerprint [4]byte, ch Channel, level Level) bool {
	return d.filter.Contains(dedupKey(heirFingerprint, ch, level))
}

// Mark records key as handled for the current generation.
func (d *CycleDedup) Mark(heirFingerprint [4]byte, ch Channel, level Level) {
	d.filter.Add(dedupKey(heirFingerprint, ch, level))
}

// NextGeneration ages the filter forward by one polling cycle.
func (d *CycleDedup) NextGeneration() {
	d.filter.NextGeneration()
}

func dedupKey(fp [4]byte, ch Channel, level Level) []byte {
	return []byte(fmt.Sprintf("%x:%s:%s", fp, ch, level))
}
