// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package policy implements the miniscript policy and descriptor engine
// (spec §4.D): compiling an owner key and ascending-timelock heir list into
// a wsh(...) descriptor, deriving its witness script and address, and
// rendering the human-readable descriptor backup.
package policy

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/RenAndKiwi/nostring/bech32"
	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/RenAndKiwi/nostring/hdkeychain"
)

// MaxRelativeTimelock is the largest BIP-68 block-count value this engine
// accepts; bit 22 (the "time-based" flag) and above must stay clear, and the
// spec further restricts to "non-sequence-friendly bounds" of 0x7FFF.
const MaxRelativeTimelock = 0x7FFF

// Heir is one beneficiary in a cascade, ordered by ascending timelock
// (spec §4.D).
type Heir struct {
	Label           string
	Fingerprint     [4]byte
	Xpub            string // extended public key string (tpub/xpub)
	DerivationPath  string // origin path, e.g. "84h/1h/0h"
	TimelockBlocks  uint32
}

// Descriptor is a compiled policy: its miniscript, the wsh(...) descriptor
// string with checksum, and the inputs used to build it.
type Descriptor struct {
	Miniscript string
	Raw        string // "wsh(...)" with no checksum suffix
	Checksum   string
	Full       string // Raw + "#" + Checksum
	OwnerXpub  string
	Heirs      []Heir
}

// CompilePolicy validates and compiles the owner/heir set into a Descriptor
// (spec §4.D). Heirs must be supplied in ascending timelock order; the
// engine itself does not silently reorder them, since a reordering would
// change which branch is "closest" in the cascade.
func CompilePolicy(ownerXpub, ownerPath string, heirs []Heir) (*Descriptor, error) {
	if len(heirs) == 0 {
		return nil, errs.New(errs.DescriptorCompileError, "at least one heir is required")
	}

	seenKeys := map[string]bool{ownerXpub: true}
	prevTimelock := uint32(0)
	for _, h := range heirs {
		if h.Xpub == ownerXpub {
			return nil, errs.New(errs.DuplicateKey, "owner key reused as heir").WithItem(h.Label)
		}
		if seenKeys[h.Xpub] {
			return nil, errs.New(errs.DuplicateKey, "heir key reused").WithItem(h.Label)
		}
		seenKeys[h.Xpub] = true
		if h.TimelockBlocks == 0 || h.TimelockBlocks > MaxRelativeTimelock {
			return nil, errs.New(errs.TimelockOutOfRange, "timelock out of range").WithItem(h.Label)
		}
		if h.TimelockBlocks <= prevTimelock {
			return nil, errs.New(errs.NonMonotonicTimelocks, "heirs must be strictly ascending by timelock").WithItem(h.Label)
		}
		prevTimelock = h.TimelockBlocks
	}

	ownerFrag := keyOrigin(ownerXpub, ownerPath)
	ms := buildCascade(ownerFrag, heirs)
	raw := "wsh(" + ms + ")"
	cs, err := DescriptorChecksum(raw)
	if err != nil {
		return nil, errs.Wrap(errs.DescriptorCompileError, "computing descriptor checksum", err)
	}

	return &Descriptor{
		Miniscript: ms,
		Raw:        raw,
		Checksum:   cs,
		Full:       raw + "#" + cs,
		OwnerXpub:  ownerXpub,
		Heirs:      heirs,
	}, nil
}

// keyOrigin renders a key with its BIP-32 origin info and /<0;1>/* multipath
// suffix (spec §4.D: "Keys within a descriptor are written with origin info
// and /<0;1>/* multipath"). path is the origin derivation path without its
// leading "m/", e.g. "84h/1h/0h".
func keyOrigin(xpub, path string) string {
	if path == "" {
		return fmt.Sprintf("%s/<0;1>/*", xpub)
	}
	return fmt.Sprintf("[%s]%s/<0;1>/*", path, xpub)
}

// buildCascade implements spec §4.D's compilation rule:
//   m=1: or_d(pk(owner), and_v(v:pk(heir1), older(b1)))
//   m>=2: right-nest or_i alternatives, each heir guarded by its own
//         older(bi), with the owner path as the outermost or_d.
func buildCascade(ownerFrag string, heirs []Heir) string {
	heirBranch := heirAlternatives(heirs)
	return fmt.Sprintf("or_d(pk(%s),%s)", ownerFrag, heirBranch)
}

func heirAlternatives(heirs []Heir) string {
	leaf := andVOlder(heirs[len(heirs)-1])
	for i := len(heirs) - 2; i >= 0; i-- {
		leaf = fmt.Sprintf("or_i(%s,%s)", andVOlder(heirs[i]), leaf)
	}
	return leaf
}

func andVOlder(h Heir) string {
	return fmt.Sprintf("and_v(v:pk(%s),older(%d))", keyOrigin(h.Xpub, h.DerivationPath), h.TimelockBlocks)
}

// DeriveAddress derives the P2WSH address for a descriptor at the given
// multipath index (spec §4.D derive_address). receive selects the "0" or
// "1" multipath branch (external/internal, per the /<0;1>/* suffix).
func DeriveAddress(d *Descriptor, receive bool, index uint32, ownerMaster *hdkeychain.ExtendedKey, heirExtKeys []*hdkeychain.ExtendedKey, params chaincfg.Params) (string, error) {
	witnessScript, err := BuildWitnessScript(d, receive, index, ownerMaster, heirExtKeys)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(witnessScript)
	groups, err := bech32.ConvertBits(sum[:], 8, 5, true)
	if err != nil {
		return "", errs.Wrap(errs.DescriptorCompileError, "regrouping witness program", err)
	}
	data := append([]byte{0x00}, groups...)
	return bech32.Encode(params.Bech32HRP, data, bech32.Bech32)
}

var cascadeMemoMu sync.Mutex
var cascadeMemo = map[string]string{}

// CompileCascadeMemo caches buildCascade results keyed by the owner
// fragment plus each heir's xpub and timelock, so a caller compiling the
// same policy repeatedly does not recompute the miniscript string.
// CompilePolicy and DeriveAddress call buildCascade/BuildWitnessScript
// directly and do not go through this cache.
func CompileCascadeMemo(ownerFrag string, heirs []Heir) string {
	var key strings.Builder
	key.WriteString(ownerFrag)
	for _, h := range heirs {
		fmt.Fprintf(&key, "|%s|%d", h.Xpub, h.TimelockBlocks)
	}
	k := key.String()

	cascadeMemoMu.Lock()
	defer cascadeMemoMu.Unlock()
	if cached, ok := cascadeMemo[k]; ok {
		return cached
	}
	result := buildCascade(ownerFrag, heirs)
	cascadeMemo[k] = result
	return result
}

// sortHeirsByTimelock returns a copy of heirs in ascending cascade order,
// for in-package callers holding heirs in arbitrary add-order; it is
// unexported, and CompilePolicy itself never reorders its input.
func sortHeirsByTimelock(heirs []Heir) []Heir {
	out := append([]Heir(nil), heirs...)
	sort.Slice(out, func(i, j int) bool { return out[i].TimelockBlocks < out[j].TimelockBlocks })
	return out
}
