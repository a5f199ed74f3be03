// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shamir implements Shamir secret sharing over GF(256) (spec §4.A):
// split a byte secret into n shares of which any k recombine it, and any
// fewer than k are statistically independent of the secret.
package shamir

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/RenAndKiwi/nostring/errs"
	"github.com/RenAndKiwi/nostring/gf256"
)

// Scheme identifies the share encoding a Share was produced for (spec §3).
// Unknown variants are errors, never a silent default.
type Scheme int

const (
	SchemeRaw Scheme = iota
	SchemeCodex32
	SchemeSLIP39
)

// Share is one point of a Shamir sharing of a secret (spec §3).
type Share struct {
	Scheme     Scheme
	Threshold  byte
	Index      byte // x-coordinate, 1..=255; 0 is reserved for the secret itself
	Identifier string
	Payload    []byte
}

// Split builds n shares of secret such that any k of them recombine it and
// any fewer are independent of it. randSource must be cryptographically
// secure; rand.Reader satisfies that, anything else is a caller error.
func Split(secret []byte, k, n int, identifier string, randSource io.Reader) ([]Share, error) {
	if k < 2 {
		return nil, errs.New(errs.ThresholdTooLow, "threshold must be at least 2")
	}
	if n > 255 {
		return nil, errs.New(errs.InvalidShare, "n must not exceed 255")
	}
	if k > n {
		return nil, errs.New(errs.ThresholdTooLow, "threshold must not exceed share count")
	}
	if randSource == nil {
		randSource = rand.Reader
	}

	shares := make([]Share, n)
	for i := range shares {
		shares[i] = Share{
			Threshold:  byte(k),
			Index:      byte(i + 1),
			Identifier: identifier,
			Payload:    make([]byte, len(secret)),
		}
	}

	// Each secret byte gets its own random degree-(k-1) polynomial with
	// that byte as the constant term; shares[i] collects the evaluation of
	// every byte's polynomial at x = i+1.
	coeffs := make([]byte, k)
	for byteIdx, secretByte := range secret {
		coeffs[0] = secretByte
		if _, err := io.ReadFull(randSource, coeffs[1:]); err != nil {
			return nil, errs.Wrap(errs.InvalidShare, "reading random coefficients", err)
		}
		for i := range shares {
			shares[i].Payload[byteIdx] = gf256.Eval(coeffs, shares[i].Index)
		}
	}
	return shares, nil
}

// Combine recombines k or more shares into the original secret via Lagrange
// interpolation at x=0, independently per byte position.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, errs.New(errs.InsufficientShares, "no shares provided")
	}
	k := int(shares[0].Threshold)
	if len(shares) < k {
		return nil, errs.New(errs.InsufficientShares, "fewer shares than threshold")
	}

	seen := make(map[byte]bool, len(shares))
	payloadLen := len(shares[0].Payload)
	ident := shares[0].Identifier
	for _, s := range shares {
		if seen[s.Index] {
			return nil, errs.New(errs.InconsistentShares, "duplicate share index").WithItem(fmt.Sprintf("%d", s.Index))
		}
		seen[s.Index] = true
		if len(s.Payload) != payloadLen {
			return nil, errs.New(errs.InconsistentShares, "mismatched payload length")
		}
		if s.Identifier != ident {
			return nil, errs.New(errs.InconsistentShares, "mismatched identifier")
		}
	}

	use := shares[:k]
	secret := make([]byte, payloadLen)
	for byteIdx := 0; byteIdx < payloadLen; byteIdx++ {
		secret[byteIdx] = lagrangeAtZero(use, byteIdx)
	}
	return secret, nil
}

// lagrangeAtZero evaluates the Lagrange interpolation polynomial through
// the given shares' byteIdx'th payload byte, at x=0, entirely in GF(256).
func lagrangeAtZero(shares []Share, byteIdx int) byte {
	var result byte
	for i, si := range shares {
		xi := si.Index
		yi := si.Payload[byteIdx]

		num := byte(1)
		den := byte(1)
		for j, sj := range shares {
			if i == j {
				continue
			}
			xj := sj.Index
			// term = xj / (xj - xi); xi - xi... using GF256 sub (XOR) since
			// we're evaluating at x=0: (0 - xj) / (xi - xj) = xj/(xi^xj).
			num = gf256.Mul(num, xj)
			den = gf256.Mul(den, gf256.Sub(xi, xj))
		}
		term, ok := gf256.Div(num, den)
		if !ok {
			// den is zero only if two shares share an x-coordinate, which
			// Combine already rejected above.
			continue
		}
		result = gf256.Add(result, gf256.Mul(yi, term))
	}
	return result
}
