// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/RenAndKiwi/nostring/hdkeychain"
)

// Opcode values used by the fragments this engine compiles; named the way
// txscript names them, kept local since the full opcode table isn't needed.
const (
	opIf                   = 0x63
	opNotIf                = 0x64
	opElse                 = 0x67
	opEndIf                = 0x68
	opVerify               = 0x69
	opIfDup                = 0x73
	opCheckSig             = 0xac
	opCheckSigVerify       = 0xad
	opCheckSequenceVerify  = 0xb2
)

type scriptBuilder struct {
	buf []byte
}

func (b *scriptBuilder) op(o byte) *scriptBuilder {
	b.buf = append(b.buf, o)
	return b
}

func (b *scriptBuilder) pushData(data []byte) *scriptBuilder {
	n := len(data)
	switch {
	case n == 0:
		b.buf = append(b.buf, 0x00)
	case n < 0x4c:
		b.buf = append(b.buf, byte(n))
		b.buf = append(b.buf, data...)
	case n <= 0xff:
		b.buf = append(b.buf, 0x4c, byte(n))
		b.buf = append(b.buf, data...)
	default:
		b.buf = append(b.buf, 0x4d, byte(n), byte(n>>8))
		b.buf = append(b.buf, data...)
	}
	return b
}

func (b *scriptBuilder) pushInt(n int64) *scriptBuilder {
	if n == 0 {
		return b.op(0x00)
	}
	return b.pushData(scriptNum(n))
}

// scriptNum encodes n as a minimally-sized little-endian Script number.
func scriptNum(n int64) []byte {
	if n == 0 {
		return nil
	}
	neg := n < 0
	abs := n
	if neg {
		abs = -abs
	}
	var result []byte
	for abs > 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}
	if result[len(result)-1]&0x80 != 0 {
		if neg {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if neg {
		result[len(result)-1] |= 0x80
	}
	return result
}

// BuildWitnessScript compiles d's cascade into a concrete witness script
// using the owner and heir account keys, each derived at the given
// multipath branch (receive: false selects the "1" change branch) and
// index (spec §4.D: or_d/and_v/older fragment scripts, right-nested with
// or_i for m >= 2 heirs).
func BuildWitnessScript(d *Descriptor, receive bool, index uint32, ownerAccount *hdkeychain.ExtendedKey, heirAccounts []*hdkeychain.ExtendedKey) ([]byte, error) {
	if len(heirAccounts) != len(d.Heirs) {
		return nil, errs.New(errs.DescriptorCompileError, "heir key count does not match descriptor")
	}
	branch := uint32(1)
	if receive {
		branch = 0
	}

	ownerPub, err := leafPubKey(ownerAccount, branch, index)
	if err != nil {
		return nil, errs.Wrap(errs.DescriptorCompileError, "deriving owner leaf key", err)
	}

	heirScripts := make([][]byte, len(d.Heirs))
	for i, h := range d.Heirs {
		pub, err := leafPubKey(heirAccounts[i], branch, index)
		if err != nil {
			return nil, errs.Wrap(errs.DescriptorCompileError, "deriving heir leaf key", err).WithItem(h.Label)
		}
		heirScripts[i] = andVOlderScript(pub, h.TimelockBlocks)
	}

	heirAlt := heirScripts[len(heirScripts)-1]
	for i := len(heirScripts) - 2; i >= 0; i-- {
		heirAlt = orIScript(heirScripts[i], heirAlt)
	}

	ownerScript := (&scriptBuilder{}).pushData(ownerPub).op(opCheckSig).buf
	return orDScript(ownerScript, heirAlt), nil
}

func leafPubKey(account *hdkeychain.ExtendedKey, branch, index uint32) ([]byte, error) {
	branchKey, err := account.Child(branch)
	if err != nil {
		return nil, err
	}
	leaf, err := branchKey.Child(index)
	if err != nil {
		return nil, err
	}
	pub, err := leaf.ECPubKey()
	if err != nil {
		return nil, err
	}
	return pub.SerializeCompressed(), nil
}

func andVOlderScript(pub []byte, timelock uint32) []byte {
	b := &scriptBuilder{}
	b.pushData(pub).op(opCheckSigVerify)
	b.pushInt(int64(timelock)).op(opCheckSequenceVerify)
	return b.buf
}

func orIScript(x, z []byte) []byte {
	b := &scriptBuilder{}
	b.op(opIf)
	b.buf = append(b.buf, x...)
	b.op(opElse)
	b.buf = append(b.buf, z...)
	b.op(opEndIf)
	return b.buf
}

func orDScript(x, z []byte) []byte {
	b := &scriptBuilder{}
	b.buf = append(b.buf, x...)
	b.op(opIfDup).op(opNotIf)
	b.buf = append(b.buf, z...)
	b.op(opEndIf)
	return b.buf
}
