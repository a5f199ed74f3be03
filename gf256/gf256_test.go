// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gf256

import "testing"

func TestMulDivRoundTrip(t *testing.T) {
	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			prod := Mul(byte(a), byte(b))
			got, ok := Div(prod, byte(b))
			if !ok {
				t.Fatalf("Div(%d,%d) reported failure", prod, b)
			}
			if got != byte(a) {
				t.Fatalf("Mul(%d,%d)=%d then Div by %d = %d, want %d", a, b, prod, b, got, a)
			}
		}
	}
}

func TestInvIdentity(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv, ok := Inv(byte(a))
		if !ok {
			t.Fatalf("Inv(%d) reported failure", a)
		}
		if got := Mul(byte(a), inv); got != 1 {
			t.Fatalf("Mul(%d, Inv(%d)=%d) = %d, want 1", a, a, inv, got)
		}
	}
}

func TestInvZeroIsCallerError(t *testing.T) {
	if _, ok := Inv(0); ok {
		t.Fatal("Inv(0) should report failure")
	}
	if _, ok := Div(5, 0); ok {
		t.Fatal("Div by zero should report failure")
	}
}

func TestMulZero(t *testing.T) {
	for a := 0; a < 256; a++ {
		if Mul(byte(a), 0) != 0 || Mul(0, byte(a)) != 0 {
			t.Fatalf("Mul with zero operand must be zero, a=%d", a)
		}
	}
}

func TestEvalConstantTerm(t *testing.T) {
	coeffs := []byte{42, 7, 9}
	if got := Eval(coeffs, 0); got != 42 {
		t.Fatalf("Eval at x=0 = %d, want constant term 42", got)
	}
}
