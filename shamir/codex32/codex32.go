// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codex32 implements the BIP-93 Codex32 share encoding: a
// human-readable, BCH-checksummed, bech32-style format for Shamir shares
// (spec §4.B). A share reads "ms1<threshold><identifier><index><payload><checksum>",
// e.g. "ms12fcndzc3xqrqu..." — human-readable prefix "ms", separator "1",
// then 5-bit groups from the bech32 charset.
package codex32

import (
	"math/big"
	"strings"

	"github.com/RenAndKiwi/nostring/errs"
)

// HRP is the fixed human-readable prefix for every Codex32 share.
const HRP = "ms"

// charset is the bech32 5-bit alphabet Codex32 reuses verbatim.
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

// checksumLen is the length, in 5-bit groups, of a Codex32 checksum.
const checksumLen = 13

// genConst is the BCH generator used by the long (Codex32) bech32 checksum,
// operating on a 65-bit accumulator (GF(32) polynomial of degree 13). The
// generators are 65 bits wide -- one bit past what a uint64 can hold -- so
// the accumulator is carried in a big.Int rather than a machine word.
var genConst = [5]*big.Int{
	bigFromHex("19dc500ce73fde210"),
	bigFromHex("1bfae00def77fe529"),
	bigFromHex("1fbd920fffe7bee52"),
	bigFromHex("1739640bdeee3fdad"),
	bigFromHex("4de610d336753007"),
}

// mask60 isolates the low 60 bits of the accumulator between shifts.
var mask60 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 60), big.NewInt(1))

func bigFromHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("codex32: invalid generator constant " + s)
	}
	return n
}

// polymod is the generalized bech32 BCH checksum accumulator shared by
// both the short (bech32/bech32m) and long (Codex32) checksums; only the
// generator constants, accumulator width, and final constant differ. The
// Codex32 checksum is 13 groups long, giving a 65-bit residue, so chk is
// kept as a big.Int rather than a fixed-width integer.
func polymod(values []byte) *big.Int {
	chk := big.NewInt(1)
	top := new(big.Int)
	masked := new(big.Int)
	for _, v := range values {
		top.Rsh(chk, 60)
		masked.And(chk, mask60)
		chk = new(big.Int).Xor(new(big.Int).Lsh(masked, 5), big.NewInt(int64(v)))
		for i := 0; i < 5; i++ {
			if top.Bit(i) != 0 {
				chk.Xor(chk, genConst[i])
			}
		}
	}
	return chk
}

// finalConst is XORed into the target value the checksum is solved
// against; BIP-93 fixes it to 1 for Codex32 (mirroring bech32's use of 1
// and bech32m's use of 0x2bc830a3 for their own checksum lengths).
var finalConst = big.NewInt(1)

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

func createChecksum(data []byte) []byte {
	values := append(hrpExpand(HRP), data...)
	values = append(values, make([]byte, checksumLen)...)
	mod := new(big.Int).Xor(polymod(values), finalConst)
	shifted := new(big.Int)
	cs := make([]byte, checksumLen)
	for i := range cs {
		shift := uint(5 * (checksumLen - 1 - i))
		cs[i] = byte(shifted.Rsh(mod, shift).Int64() & 31)
	}
	return cs
}

func verifyChecksum(data []byte) bool {
	values := append(hrpExpand(HRP), data...)
	return polymod(values).Cmp(finalConst) == 0
}

// Share is the decoded form of a Codex32 string.
type Share struct {
	Threshold  byte   // '0' for a raw (non-shared) backup, else the Shamir k
	Identifier string // 4 bech32 characters
	Index      byte   // share x-coordinate, or 's' (encoded as 0) for the secret
	IsSecret   bool
	Payload    []byte // decoded raw bytes
}

// Encode renders a Share as a Codex32 string.
func Encode(s Share) (string, error) {
	if len(s.Identifier) != 4 {
		return "", errs.New(errs.InvalidShare, "identifier must be 4 characters")
	}
	thresholdChar, ok := charToVal(thresholdDigit(s.Threshold))
	if !ok {
		return "", errs.New(errs.InvalidShare, "unknown threshold digit")
	}

	data := make([]byte, 0, 1+4+1+bytesToGroupsLen(len(s.Payload)))
	data = append(data, thresholdChar)
	for _, c := range strings.ToLower(s.Identifier) {
		v, ok := charToVal(byte(c))
		if !ok {
			return "", errs.New(errs.InvalidShare, "identifier has invalid character")
		}
		data = append(data, v)
	}
	if s.IsSecret {
		v, _ := charToVal('s')
		data = append(data, v)
	} else {
		v, ok := indexToChar(s.Index)
		if !ok {
			return "", errs.New(errs.InvalidShare, "index out of range")
		}
		data = append(data, v)
	}

	groups, err := bytesToGroups(s.Payload)
	if err != nil {
		return "", err
	}
	data = append(data, groups...)

	cs := createChecksum(data)
	data = append(data, cs...)

	var b strings.Builder
	b.WriteString(HRP)
	b.WriteByte('1')
	for _, v := range data {
		b.WriteByte(charset[v])
	}
	return b.String(), nil
}

// Decode parses a Codex32 string, validating its checksum.
func Decode(s string) (Share, error) {
	if len(s) < len(HRP)+1+1+4+1+checksumLen {
		return Share{}, errs.New(errs.InvalidShare, "too short to be a Codex32 share")
	}
	lower := strings.ToLower(s)
	if lower != s && strings.ToUpper(s) != s {
		return Share{}, errs.New(errs.InvalidShare, "mixed case")
	}
	s = lower

	sep := strings.LastIndexByte(s, '1')
	if sep < 0 || s[:sep] != HRP {
		return Share{}, errs.New(errs.InvalidShare, "missing or wrong human-readable prefix")
	}

	body := s[sep+1:]
	data := make([]byte, len(body))
	for i, c := range body {
		v, ok := charToVal(byte(c))
		if !ok {
			return Share{}, errs.New(errs.InvalidShare, "invalid alphabet character")
		}
		data[i] = v
	}
	if !verifyChecksum(data) {
		return Share{}, errs.New(errs.AuthenticationFailed, "bad checksum")
	}

	payloadGroups := data[:len(data)-checksumLen]
	if len(payloadGroups) < 6 {
		return Share{}, errs.New(errs.InvalidShare, "share too short")
	}
	thresholdVal := payloadGroups[0]
	identVals := payloadGroups[1:5]
	indexVal := payloadGroups[5]
	groups := payloadGroups[6:]

	threshold, ok := thresholdFromDigit(valToChar(thresholdVal))
	if !ok {
		return Share{}, errs.New(errs.InvalidShare, "unknown threshold digit")
	}

	ident := make([]byte, 4)
	for i, v := range identVals {
		ident[i] = valToChar(v)
	}

	payload, err := groupsToBytes(groups)
	if err != nil {
		return Share{}, err
	}

	isSecret := valToChar(indexVal) == 's'
	var index byte
	if !isSecret {
		index, ok = charToIndex(valToChar(indexVal))
		if !ok {
			return Share{}, errs.New(errs.InvalidShare, "invalid share index character")
		}
	}

	return Share{
		Threshold:  threshold,
		Identifier: string(ident),
		Index:      index,
		IsSecret:   isSecret,
		Payload:    payload,
	}, nil
}

func charToVal(c byte) (byte, bool) {
	if c >= 128 || charsetRev[c] < 0 {
		return 0, false
	}
	return byte(charsetRev[c]), true
}

func valToChar(v byte) byte {
	return charset[v]
}

// thresholdDigit maps a numeric threshold (0 for raw, 2..9) to its bech32
// character, per BIP-93 ("0" means the share set has no Shamir split).
func thresholdDigit(k byte) byte {
	if k == 0 {
		return '0'
	}
	return byte('0' + k)
}

func thresholdFromDigit(c byte) (byte, bool) {
	if c < '0' || c > '9' {
		return 0, false
	}
	return c - '0', true
}

// indexToChar/charToIndex map a 1..=30 share index onto the bech32
// alphabet, skipping the reserved "secret" character 's'.
func indexToChar(i byte) (byte, bool) {
	if int(i) >= len("023456789acdefghjklmnpqrtuvwxyz") {
		return 0, false
	}
	return charToVal(byte("023456789acdefghjklmnpqrtuvwxyz"[clampIndex(i)]))
}

func charToIndex(c byte) (byte, bool) {
	idx := strings.IndexByte("023456789acdefghjklmnpqrtuvwxyz", c)
	if idx < 0 {
		return 0, false
	}
	return byte(idx), true
}

func clampIndex(i byte) int {
	if int(i) >= len("023456789acdefghjklmnpqrtuvwxyz") {
		return 0
	}
	return int(i)
}

// bytesToGroups converts raw payload bytes into 5-bit groups (8->5 bit
// regrouping used throughout bech32-family encodings).
func bytesToGroups(data []byte) ([]byte, error) {
	return convertBits(data, 8, 5, true)
}

func groupsToBytes(groups []byte) ([]byte, error) {
	return convertBits(groups, 5, 8, false)
}

func bytesToGroupsLen(n int) int {
	return (n*8 + 4) / 5
}

// convertBits performs the generic bit-regrouping used by bech32-family
// formats to move between 8-bit bytes and 5-bit groups.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	acc := uint32(0)
	bits := uint(0)
	maxv := uint32(1<<toBits) - 1
	var out []byte
	for _, b := range data {
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
		return nil, errs.New(errs.InvalidShare, "non-zero padding in Codex32 payload")
	}
	return out, nil
}
