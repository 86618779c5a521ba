package buf

import (
	"math"
	"strings"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(-1, 1); ok {
		t.Fatalf("expected rejection of a negative size")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	tests := []struct {
		a, b   int
		want   int
		wantOK bool
	}{
		{3, 4, 12, true},
		{0, math.MaxInt, 0, true},
		{math.MaxInt, 0, 0, true},
		{math.MaxInt, 2, 0, false},
		{1 << 32, 1 << 32, 0, false},
		{-1, 4, 0, false},
	}
	for _, tt := range tests {
		got, ok := MulOverflowSafe(tt.a, tt.b)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("MulOverflowSafe(%d,%d)=%d,%v want %d,%v", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCheckSpan(t *testing.T) {
	if end, err := CheckSpan(48, 24, 24); err != nil || end != 48 {
		t.Fatalf("CheckSpan(48,24,24)=%d,%v want 48,nil", end, err)
	}

	tests := []struct {
		name        string
		bufLen      int
		off, n      int
		wantErrPart string
	}{
		{"negative offset", 10, -1, 1, "negative offset"},
		{"negative length", 10, 0, -1, "negative length"},
		{"overflow", math.MaxInt, math.MaxInt, 1, "overflow"},
		{"past end", 10, 8, 4, "bounds"},
	}
	for _, tt := range tests {
		_, err := CheckSpan(tt.bufLen, tt.off, tt.n)
		if err == nil || !strings.Contains(err.Error(), tt.wantErrPart) {
			t.Errorf("%s: got %v, want error containing %q", tt.name, err, tt.wantErrPart)
		}
	}
}

func TestHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}
	if !Has(data, 5, 0) {
		t.Fatalf("Has should accept an empty range at the end")
	}
	if Has(data, -1, 1) {
		t.Fatalf("Has should reject negative offset")
	}
}
