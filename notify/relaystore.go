// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RenAndKiwi/nostring/errs"
)

// SplitPublication is one owner split's locked-share publication for one
// heir, grouped by SplitID (spec §4.G: "a split_id groups publications for
// a single owner split").
type SplitPublication struct {
	SplitID       string
	HeirPub       [32]byte
	LockedShares  []string // ordered Codex32/SLIP-39 share strings
}

// RelayStore publishes locked-share redundancy payloads to a configured
// relay set (spec §4.G "locked-share relay storage").
type RelayStore struct {
	ServiceSecret [32]byte
	ServicePub    [32]byte
	Relays        []string
	Now           func() time.Time
}

// Publish encrypts pub's locked shares to the heir's public key and
// publishes to every configured relay, succeeding if at least one relay
// accepts (spec §4.G: "success requires acceptance by at least one
// relay").
func (r *RelayStore) Publish(ctx context.Context, pub SplitPublication) (acceptedRelays []string, err error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	payload, err := json.Marshal(struct {
		SplitID string   `json:"split_id"`
		Shares  []string `json:"shares"`
	}{SplitID: pub.SplitID, Shares: pub.LockedShares})
	if err != nil {
		return nil, errs.Wrap(errs.RelayTimeout, "failed to encode publication", err)
	}

	ciphertext, err := EncryptDM(r.ServiceSecret, pub.HeirPub, payload)
	if err != nil {
		return nil, err
	}
	evt := &Event{
		Kind:    kindGiftWrap,
		Content: ciphertext,
	}
	if err := SignEvent(evt, r.ServiceSecret, r.ServicePub, now); err != nil {
		return nil, err
	}

	accepted, err := PublishToRelays(ctx, evt, r.Relays)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return nil, errs.New(errs.RelayTimeout, "no relay accepted the publication")
	}
	return accepted, nil
}
