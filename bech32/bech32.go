// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bech32 implements the bech32 and bech32m checksummed encodings
// (BIP-173, BIP-350) used for Bitcoin segwit addresses and, via the same
// charset and convertBits regrouping, reused by codex32.
package bech32

import (
	"strings"

	"github.com/RenAndKiwi/nostring/errs"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var charsetRev [128]int8

func init() {
	for i := range charsetRev {
		charsetRev[i] = -1
	}
	for i, c := range charset {
		charsetRev[c] = int8(i)
	}
}

// Encoding distinguishes the original bech32 checksum constant (BIP-173)
// from bech32m (BIP-350, used by segwit v1+/taproot).
type Encoding int

const (
	Bech32 Encoding = iota
	Bech32M
)

func constant(enc Encoding) uint32 {
	if enc == Bech32M {
		return 0x2bc830a3
	}
	return 1
}

func polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		b := byte(chk >> 25)
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 != 0 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, byte(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, byte(c)&31)
	}
	return out
}

func createChecksum(hrp string, data []byte, enc Encoding) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ constant(enc)
	cs := make([]byte, 6)
	for i := range cs {
		cs[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return cs
}

func verifyChecksum(hrp string, data []byte, enc Encoding) bool {
	values := append(hrpExpand(hrp), data...)
	return polymod(values) == constant(enc)
}

// Encode renders hrp and 5-bit groups data as a bech32 or bech32m string.
func Encode(hrp string, data []byte, enc Encoding) (string, error) {
	if strings.ToLower(hrp) != hrp && strings.ToUpper(hrp) != hrp {
		return "", errs.New(errs.InvalidShare, "mixed-case human-readable prefix")
	}
	hrp = strings.ToLower(hrp)
	cs := createChecksum(hrp, data, enc)
	combined := append(append([]byte{}, data...), cs...)
	var b strings.Builder
	b.WriteString(hrp)
	b.WriteByte('1')
	for _, v := range combined {
		if int(v) >= len(charset) {
			return "", errs.New(errs.InvalidShare, "data value out of range")
		}
		b.WriteByte(charset[v])
	}
	return b.String(), nil
}

// Decode parses a bech32 or bech32m string, validating its checksum against
// the requested encoding variant.
func Decode(s string, enc Encoding) (hrp string, data []byte, err error) {
	if len(s) < 8 || len(s) > 1023 {
		return "", nil, errs.New(errs.InvalidShare, "invalid length")
	}
	lower := strings.ToLower(s)
	if lower != s && strings.ToUpper(s) != s {
		return "", nil, errs.New(errs.InvalidShare, "mixed case")
	}
	s = lower

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 || sep+7 > len(s) {
		return "", nil, errs.New(errs.InvalidShare, "missing separator")
	}
	hrp = s[:sep]
	body := s[sep+1:]

	decoded := make([]byte, len(body))
	for i, c := range body {
		if c >= 128 || charsetRev[c] < 0 {
			return "", nil, errs.New(errs.InvalidShare, "invalid alphabet character")
		}
		decoded[i] = byte(charsetRev[c])
	}
	if !verifyChecksum(hrp, decoded, enc) {
		return "", nil, errs.New(errs.AuthenticationFailed, "bad checksum")
	}
	return hrp, decoded[:len(decoded)-6], nil
}

// ConvertBits regroups data from fromBits-wide groups to toBits-wide groups,
// as used to move between 8-bit payload bytes and 5-bit bech32 groups.
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	acc := uint32(0)
	bits := uint(0)
	maxv := uint32(1<<toBits) - 1
	var out []byte
	for _, b := range data {
		if b>>fromBits != 0 {
			return nil, errs.New(errs.InvalidShare, "input value exceeds fromBits width")
		}
		acc = (acc << fromBits) | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxv))
		}
	} else if bits >= fromBits || (acc<<(toBits-bits))&maxv != 0 {
		return nil, errs.New(errs.InvalidShare, "non-zero padding")
	}
	return out, nil
}
