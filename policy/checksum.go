// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"strings"

	"github.com/RenAndKiwi/nostring/errs"
)

// inputCharset is the descriptor-language character set; a character's
// position here determines its 5-bit value (low 5 bits) and group class
// (bits 5-6), matching the reference output descriptor checksum algorithm.
const inputCharset = "0123456789()[],'/*abcdefgh@:$%{}IJKLMNOPQRSTUVWXYZ&+-.;<=>?!^_|~" +
	"ijklmnopqrstuvwxyzABCDEFGH`#\"\\ "

const checksumCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

func polyModDescriptor(c uint64, val int) uint64 {
	c0 := byte(c >> 35)
	c = ((c & 0x7ffffffff) << 5) ^ uint64(val)
	if c0&1 != 0 {
		c ^= 0xf5dee51989
	}
	if c0&2 != 0 {
		c ^= 0xa9fdca3312
	}
	if c0&4 != 0 {
		c ^= 0x1bab10e32d
	}
	if c0&8 != 0 {
		c ^= 0x3706b1677a
	}
	if c0&16 != 0 {
		c ^= 0x644d626ffd
	}
	return c
}

// DescriptorChecksum computes the 8-character descriptor checksum for a
// descriptor string without its "#checksum" suffix.
func DescriptorChecksum(descriptor string) (string, error) {
	c := uint64(1)
	cls := 0
	clsCount := 0
	for _, ch := range descriptor {
		pos := strings.IndexRune(inputCharset, ch)
		if pos < 0 {
			return "", errs.New(errs.DescriptorCompileError, "character not valid in a descriptor").WithItem(string(ch))
		}
		c = polyModDescriptor(c, pos&31)
		cls = cls*3 + (pos >> 5)
		clsCount++
		if clsCount == 3 {
			c = polyModDescriptor(c, cls)
			cls = 0
			clsCount = 0
		}
	}
	if clsCount > 0 {
		c = polyModDescriptor(c, cls)
	}
	for i := 0; i < 8; i++ {
		c = polyModDescriptor(c, 0)
	}
	c ^= 1

	out := make([]byte, 8)
	for j := 0; j < 8; j++ {
		out[j] = checksumCharset[(c>>uint(5*(7-j)))&31]
	}
	return string(out), nil
}
