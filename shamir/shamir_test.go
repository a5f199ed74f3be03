// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamir

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/RenAndKiwi/nostring/errs"
)

func TestSplitCombineRoundTrip(t *testing.T) {
	secret := []byte("correct horse battery staple seed bytes")
	cases := []struct{ k, n int }{
		{2, 2}, {2, 5}, {3, 5}, {5, 5}, {3, 255},
	}
	for _, c := range cases {
		shares, err := Split(secret, c.k, c.n, "test", rand.Reader)
		if err != nil {
			t.Fatalf("Split(k=%d,n=%d): %v", c.k, c.n, err)
		}
		if len(shares) != c.n {
			t.Fatalf("got %d shares, want %d", len(shares), c.n)
		}
		got, err := Combine(shares[:c.k])
		if err != nil {
			t.Fatalf("Combine: %v", err)
		}
		if !bytes.Equal(got, secret) {
			t.Fatalf("Combine(k=%d,n=%d) = %q, want %q", c.k, c.n, got, secret)
		}
	}
}

func TestCombineAnySubsetOfK(t *testing.T) {
	secret := []byte{1, 2, 3, 4}
	shares, err := Split(secret, 3, 5, "id", rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	subsets := [][]int{{0, 1, 2}, {1, 2, 3}, {0, 2, 4}, {2, 3, 4}}
	for _, idx := range subsets {
		subset := []Share{shares[idx[0]], shares[idx[1]], shares[idx[2]]}
		got, err := Combine(subset)
		if err != nil {
			t.Fatalf("subset %v: %v", idx, err)
		}
		if !bytes.Equal(got, secret) {
			t.Fatalf("subset %v: got %v, want %v", idx, got, secret)
		}
	}
}

func TestSplitRejectsBadParams(t *testing.T) {
	secret := []byte{1}
	if _, err := Split(secret, 1, 5, "", rand.Reader); err == nil {
		t.Fatal("k=1 should be rejected")
	}
	if _, err := Split(secret, 6, 5, "", rand.Reader); err == nil {
		t.Fatal("k>n should be rejected")
	}
	if _, err := Split(secret, 2, 256, "", rand.Reader); err == nil {
		t.Fatal("n>255 should be rejected")
	}
}

func TestCombineInsufficientShares(t *testing.T) {
	shares, err := Split([]byte{9, 9}, 3, 5, "", rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Combine(shares[:2])
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InsufficientShares {
		t.Fatalf("want InsufficientShares, got %v", err)
	}
}

func TestCombineInconsistentShares(t *testing.T) {
	shares, err := Split([]byte{1, 2, 3}, 2, 2, "", rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	dup := []Share{shares[0], shares[0]}
	_, err = Combine(dup)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InconsistentShares {
		t.Fatalf("want InconsistentShares for duplicate index, got %v", err)
	}

	mismatched := []Share{shares[0], {Threshold: 2, Index: 2, Payload: []byte{1}}}
	_, err = Combine(mismatched)
	if !errors.As(err, &e) || e.Kind != errs.InconsistentShares {
		t.Fatalf("want InconsistentShares for mismatched length, got %v", err)
	}
}

func TestLessThanKSharesDoNotRevealSecret(t *testing.T) {
	// Statistical independence isn't testable by example, but we can at
	// least assert that Combine given k-1 shares refuses outright rather
	// than return a wrong answer silently.
	shares, err := Split([]byte{200}, 4, 4, "", rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Combine(shares[:3]); err == nil {
		t.Fatal("combine with k-1 shares must fail, not silently return a guess")
	}
}
