// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package slip39 implements the SLIP-39 share encoding: a mnemonic of
// wordlist-indexed 10-bit groups plus an RS1024 Reed-Solomon checksum over
// the customization string "shamir" (spec §4.B). NoString only uses the
// single-group profile; multi-group SLIP-39 is out of scope (spec §9 open
// questions).
package slip39

import (
	"strings"

	"github.com/RenAndKiwi/nostring/errs"
)

const customizationString = "shamir"
const checksumWords = 3

var wordIndex map[string]int

func init() {
	wordIndex = make(map[string]int, len(wordlist))
	for i, w := range wordlist {
		wordIndex[w] = i
	}
}

// rs1024Polymod is the generalized Reed-Solomon checksum accumulator used
// by SLIP-39's customized BCH code over GF(1024).
func rs1024Polymod(values []int) int {
	gen := [10]int{
		0xE0E040, 0x1C1C080, 0x3838100, 0x7070200, 0xE0E0009,
		0x1C0C2412, 0x38086C24, 0x3090FC48, 0x21B1F890, 0x3F3F120,
	}
	chk := 1
	for _, v := range values {
		b := chk >> 20
		chk = (chk&0xFFFFF)<<10 ^ v
		for i := 0; i < 10; i++ {
			if (b>>uint(i))&1 != 0 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func customizationValues() []int {
	out := make([]int, len(customizationString))
	for i, c := range customizationString {
		out[i] = int(c)
	}
	return out
}

func createChecksum(data []int) []int {
	values := append(customizationValues(), data...)
	values = append(values, 0, 0, 0)
	mod := rs1024Polymod(values) ^ 1
	cs := make([]int, checksumWords)
	for i := range cs {
		cs[i] = (mod >> uint(10*(2-i))) & 1023
	}
	return cs
}

func verifyChecksum(data []int) bool {
	values := append(customizationValues(), data...)
	return rs1024Polymod(values) == 1
}

// Encode renders a Shamir share's bytes as a SLIP-39 mnemonic. index and
// threshold are packed as the first two words, matching SLIP-39's share
// header layout (group/member fields collapse to a single index/threshold
// pair here since NoString never uses groups).
func Encode(index, threshold byte, payload []byte) (string, error) {
	groups, err := bytesToGroups(payload)
	if err != nil {
		return "", err
	}
	data := make([]int, 0, 2+len(groups))
	data = append(data, int(index), int(threshold))
	for _, g := range groups {
		data = append(data, int(g))
	}
	cs := createChecksum(data)
	data = append(data, cs...)

	words := make([]string, len(data))
	for i, v := range data {
		if v < 0 || v >= len(wordlist) {
			return "", errs.New(errs.InvalidShare, "value out of wordlist range")
		}
		words[i] = wordlist[v]
	}
	return strings.Join(words, " "), nil
}

// Decode parses a SLIP-39 mnemonic, validating its checksum and rejecting
// unknown words.
func Decode(mnemonic string) (index, threshold byte, payload []byte, err error) {
	fields := strings.Fields(strings.ToLower(mnemonic))
	if len(fields) < 2+checksumWords {
		return 0, 0, nil, errs.New(errs.InvalidShare, "mnemonic too short")
	}

	data := make([]int, len(fields))
	for i, w := range fields {
		v, ok := wordIndex[w]
		if !ok {
			return 0, 0, nil, errs.New(errs.InvalidShare, "unknown word").WithItem(w)
		}
		data[i] = v
	}

	if !verifyChecksum(data) {
		return 0, 0, nil, errs.New(errs.AuthenticationFailed, "bad checksum")
	}

	body := data[:len(data)-checksumWords]
	index = byte(body[0])
	threshold = byte(body[1])
	groups := make([]int, len(body)-2)
	copy(groups, body[2:])
	payload, err = groupsToBytes(groups)
	if err != nil {
		return 0, 0, nil, err
	}
	return index, threshold, payload, nil
}

// bytesToGroups/groupsToBytes regroup bytes into 10-bit values and back,
// analogous to bech32-family 5-bit regrouping but at 10 bits per word.
func bytesToGroups(data []byte) ([]int, error) {
	acc, bits := 0, uint(0)
	var out []int
	for _, b := range data {
		acc = (acc << 8) | int(b)
		bits += 8
		for bits >= 10 {
			bits -= 10
			out = append(out, (acc>>bits)&1023)
		}
	}
	if bits > 0 {
		out = append(out, (acc<<(10-bits))&1023)
	}
	return out, nil
}

func groupsToBytes(groups []int) ([]byte, error) {
	acc, bits := 0, uint(0)
	var out []byte
	for _, g := range groups {
		acc = (acc << 10) | g
		bits += 10
		for bits >= 8 {
			bits -= 8
			out = append(out, byte((acc>>bits)&0xFF))
		}
	}
	if (acc<<(8-bits))&0xFF != 0 {
		return nil, errs.New(errs.InvalidShare, "non-zero padding in SLIP-39 payload")
	}
	return out, nil
}
