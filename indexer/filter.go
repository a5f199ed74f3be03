// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"

	"github.com/RenAndKiwi/nostring/errs"
	"github.com/RenAndKiwi/nostring/gcs"
)

// FilterCheckProbability is the false-positive rate (1/2^P) used for the
// BIP158-style pre-check filter: low enough to rule out most heights
// cheaply, high enough that a mismatch is decisive.
const FilterCheckProbability = 19

// filteredElectrumClient wraps a Client with a per-height GCS filter cache
// so a caller can skip ScriptHistory round trips for heights that provably
// do not touch a watched script (spec domain stack: gcs as an "optional
// cheap pre-check before a full script_history round trip").
type filteredElectrumClient struct {
	Client
	filterKey [gcs.KeySize]byte
	filters   map[uint32]*gcs.Filter
}

// NewFilteredClient adapts an existing Client into a FilterClient, given
// the filter key the indexer's block-filter service commits to.
func NewFilteredClient(c Client, filterKey [gcs.KeySize]byte) FilterClient {
	return &filteredElectrumClient{Client: c, filterKey: filterKey, filters: make(map[uint32]*gcs.Filter)}
}

// RegisterFilter installs a decoded block filter for height, typically
// fetched out-of-band from the indexer's filter-header chain.
func (c *filteredElectrumClient) RegisterFilter(height uint32, filter *gcs.Filter) {
	c.filters[height] = filter
}

// MayContain implements FilterClient. A missing filter for height is
// treated as "cannot rule out" rather than an error, since the pre-check
// is strictly optional.
func (c *filteredElectrumClient) MayContain(ctx context.Context, height uint32, scriptPubKey []byte) (bool, error) {
	f, ok := c.filters[height]
	if !ok {
		return true, nil
	}
	return f.Match(c.filterKey, scriptPubKey), nil
}

// BuildFilterForBlock constructs a GCS filter over a block's scripts,
// mirroring how a filter-serving indexer would build the filter this
// client later matches against.
func BuildFilterForBlock(filterKey [gcs.KeySize]byte, scripts [][]byte) (*gcs.Filter, error) {
	f, err := gcs.NewFilter(FilterCheckProbability, filterKey, scripts)
	if err != nil {
		return nil, errs.Wrap(errs.IndexerUnavailable, "failed to build block filter", err)
	}
	return f, nil
}
