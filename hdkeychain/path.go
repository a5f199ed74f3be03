// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RenAndKiwi/nostring/errs"
)

// PathSegment is one component of a derivation path: an index plus whether
// it is hardened.
type PathSegment struct {
	Index    uint32
	Hardened bool
}

// Value returns the raw BIP-32 child index this segment derives with.
func (s PathSegment) Value() uint32 {
	if s.Hardened {
		return HardenedKeyStart + s.Index
	}
	return s.Index
}

func (s PathSegment) String() string {
	if s.Hardened {
		return strconv.FormatUint(uint64(s.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}

// ParsePath parses a derivation path like "m/84'/0'/0'/0/0" into segments.
func ParsePath(path string) ([]PathSegment, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, errs.New(errs.InvalidXpub, "derivation path must start with \"m\"")
	}
	segments := make([]PathSegment, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H")
		numPart := strings.TrimRight(p, "'hH")
		n, err := strconv.ParseUint(numPart, 10, 32)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidXpub, "parsing path segment", err).WithItem(p)
		}
		segments = append(segments, PathSegment{Index: uint32(n), Hardened: hardened})
	}
	return segments, nil
}

// Derive walks k through every segment of path in order.
func Derive(k *ExtendedKey, path []PathSegment) (*ExtendedKey, error) {
	cur := k
	for i, seg := range path {
		next, err := cur.Child(seg.Value())
		if err != nil {
			return nil, errs.Wrap(errs.InvalidXpub, fmt.Sprintf("deriving segment %d (%s)", i, seg), err)
		}
		cur = next
	}
	return cur, nil
}

// BIP84AccountPath returns the canonical Bitcoin account path m/84'/coin'/0'
// (spec §4.C Derivation).
func BIP84AccountPath(coinType uint32) []PathSegment {
	return []PathSegment{
		{Index: 84, Hardened: true},
		{Index: coinType, Hardened: true},
		{Index: 0, Hardened: true},
	}
}

// BIP84AddressPath extends an account path with change/index, both
// non-hardened.
func BIP84AddressPath(change, index uint32) []PathSegment {
	return []PathSegment{
		{Index: change, Hardened: false},
		{Index: index, Hardened: false},
	}
}

// NIP06Path returns the NIP-06 Nostr key path m/44'/1237'/0'/0/0 (spec §4.C
// Derivation): hardened through the account level, then non-hardened.
func NIP06Path(account uint32) []PathSegment {
	return []PathSegment{
		{Index: 44, Hardened: true},
		{Index: 1237, Hardened: true},
		{Index: account, Hardened: true},
		{Index: 0, Hardened: false},
		{Index: 0, Hardened: false},
	}
}
