// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package procsurface

import (
	"crypto/sha256"
	"encoding/json"
	"sort"
	"sync"

	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/checkin"
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/RenAndKiwi/nostring/hdkeychain"
	"github.com/RenAndKiwi/nostring/indexer"
	"github.com/RenAndKiwi/nostring/notify"
	"github.com/RenAndKiwi/nostring/nostrkey"
	"github.com/RenAndKiwi/nostring/policy"
	"github.com/RenAndKiwi/nostring/presigned"
	"github.com/RenAndKiwi/nostring/seed"
	"github.com/RenAndKiwi/nostring/store"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // BIP-32 fingerprint = first4(ripemd160(sha256(pubkey)))
)

const (
	configKeyEncryptedSeed = "encrypted_seed"
	configKeyWatchOnlyXpub = "watch_only_xpub"
	configKeyNetwork       = "network"
	configKeyServiceKey    = "service_key_secret"
)

// Session holds everything the process surface needs across calls: the
// unlocked/locked wallet state, the compiled policy, the pre-signed stack,
// and the transport/notification handles a shell wires up once at
// startup. Nothing here is itself exported JSON; Dispatcher methods shape
// what crosses the process-surface boundary.
type Session struct {
	mu sync.Mutex

	Store        *store.Store
	Indexer      indexer.Client
	Network      chaincfg.Params
	Email        notify.EmailConfig
	FeeRateSatVB float64

	unlocked         bool
	master           *hdkeychain.ExtendedKey // nil when locked or watch-only
	watchOnlyXpub    string
	ownerFingerprint [4]byte
	ownerPath        string

	descriptor    *policy.Descriptor
	stack         *presigned.Stack
	activeUtxo    *checkin.InheritanceUtxo
	currentIndex  uint32 // receive-branch index the watched scriptPubKey was derived at
	pendingIndex  uint32 // index BuildCheckinPsbt derived the unsigned PSBT's output at

	serviceKey *nostrkey.KeyPair
	relays     []string
	thresholds notify.Thresholds
	dedup      *notify.CycleDedup
	cache      *indexer.ClassifiedTxidCache
}

// NewSession builds a Session bound to an already-opened store and
// indexer client, for the given network and configured check-in fee rate.
func NewSession(s *store.Store, idx indexer.Client, network chaincfg.Params, feeRateSatVB float64) *Session {
	return &Session{
		Store:        s,
		Indexer:      idx,
		Network:      network,
		FeeRateSatVB: feeRateSatVB,
		stack:        presigned.NewStack(),
		thresholds:   notify.DefaultThresholds(),
		dedup:        notify.NewCycleDedup(1024),
		cache:        indexer.NewClassifiedTxidCache(indexer.DefaultClassifiedTxidCacheSize),
	}
}

func (s *Session) requireUnlocked() error {
	if !s.unlocked || s.master == nil {
		return errs.New(errs.NotUnlocked, "wallet is locked")
	}
	return nil
}

func (s *Session) requireDescriptor() error {
	if s.descriptor == nil {
		return errs.New(errs.NoDescriptor, "no descriptor compiled yet; add at least one heir")
	}
	return nil
}

// ownerAccountKey returns the owner's BIP-84 account key, deriving it fresh
// from the in-memory master each call rather than caching it, so nothing
// beyond the top-level master key lingers in memory longer than it has to.
func (s *Session) ownerAccountKey() (*hdkeychain.ExtendedKey, error) {
	if err := s.requireUnlocked(); err != nil {
		return nil, err
	}
	return hdkeychain.Derive(s.master, hdkeychain.BIP84AccountPath(s.Network.HDCoinType))
}

func fingerprintOf(pub []byte) [4]byte {
	sum := sha256.Sum256(pub)
	h := ripemd160.New()
	h.Write(sum[:])
	digest := h.Sum(nil)
	var fp [4]byte
	copy(fp[:], digest[:4])
	return fp
}

// persistEncryptedSeed writes es as the wallet's only on-disk secret
// material (spec §6.5: the core persists nothing beyond what store.Store
// holds).
func (s *Session) persistEncryptedSeed(es *seed.EncryptedSeed) error {
	raw, err := json.Marshal(es)
	if err != nil {
		return errs.Wrap(errs.StoreCorruption, "encoding encrypted seed", err)
	}
	return s.Store.Update(func(tx *store.Tx) error {
		if err := tx.SetConfig(configKeyEncryptedSeed, string(raw)); err != nil {
			return err
		}
		return tx.SetConfig(configKeyNetwork, string(s.Network.Name))
	})
}

func (s *Session) loadEncryptedSeed() (*seed.EncryptedSeed, bool, error) {
	var raw string
	var ok bool
	err := s.Store.View(func(r store.Reader) error {
		var err error
		raw, ok, err = store.GetConfig(r, configKeyEncryptedSeed)
		return err
	})
	if err != nil || !ok {
		return nil, ok, err
	}
	var es seed.EncryptedSeed
	if err := json.Unmarshal([]byte(raw), &es); err != nil {
		return nil, true, errs.Wrap(errs.StoreCorruption, "decoding encrypted seed", err)
	}
	return &es, true, nil
}

// recompileDescriptor rebuilds s.descriptor from the owner key plus every
// persisted heir (spec §4.D: recompiled whenever the heir set changes).
func (s *Session) recompileDescriptor() error {
	ownerAccount, err := s.ownerAccountKey()
	if err != nil {
		return err
	}
	ownerNeutered, err := ownerAccount.Neuter(s.Network)
	if err != nil {
		return errs.Wrap(errs.InvalidXpub, "neutering owner account key", err)
	}
	ownerXpub := ownerNeutered.String()
	ownerPub, err := ownerAccount.ECPubKey()
	if err != nil {
		return errs.Wrap(errs.InvalidXpub, "deriving owner pubkey", err)
	}
	s.ownerFingerprint = fingerprintOf(ownerPub.SerializeCompressed())
	s.ownerPath = "84h/" + itoa(int(s.Network.HDCoinType)) + "h/0h"

	var heirs []store.Heir
	if err := s.Store.View(func(r store.Reader) error {
		var err error
		heirs, err = store.ListHeirs(r)
		return err
	}); err != nil {
		return err
	}
	if len(heirs) == 0 {
		s.descriptor = nil
		return nil
	}

	policyHeirs := make([]policy.Heir, 0, len(heirs))
	for _, h := range heirs {
		policyHeirs = append(policyHeirs, policy.Heir{
			Label:          h.Label,
			Fingerprint:    h.Fingerprint,
			Xpub:           h.Xpub,
			DerivationPath: h.DerivationPath,
			TimelockBlocks: h.TimelockBlocks,
		})
	}
	// ListHeirs returns fingerprint-key order; CompilePolicy takes ascending timelocks.
	sort.Slice(policyHeirs, func(i, j int) bool { return policyHeirs[i].TimelockBlocks < policyHeirs[j].TimelockBlocks })

	d, err := policy.CompilePolicy(ownerXpub, s.ownerPath, policyHeirs)
	if err != nil {
		return err
	}
	s.descriptor = d
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

