package domain

import (
	"errors"
	"math"
	"testing"
)

func TestAddAmounts(t *testing.T) {
	sum, err := AddAmounts(100, 250)
	if err != nil {
		t.Fatalf("AddAmounts error: %v", err)
	}
	if sum != 350 {
		t.Fatalf("expected 350, got %d", sum)
	}

	if _, err := AddAmounts(math.MaxInt64, 1); !errors.Is(err, ErrMoneyOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := AddAmounts(-1, 1); !errors.Is(err, ErrMoneyNegative) {
		t.Fatalf("expected negative error, got %v", err)
	}
}

func TestSubtractAmounts(t *testing.T) {
	got, err := SubtractAmounts(500, 200)
	if err != nil {
		t.Fatalf("SubtractAmounts error: %v", err)
	}
	if got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}

	if _, err := SubtractAmounts(200, 500); !errors.Is(err, ErrMoneyUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
}

func TestMultiplyPrice(t *testing.T) {
	got, err := MultiplyPrice(149000, 2)
	if err != nil {
		t.Fatalf("MultiplyPrice error: %v", err)
	}
	if got != 298000 {
		t.Fatalf("expected 298000, got %d", got)
	}

	if got, err := MultiplyPrice(5000, 0); err != nil || got != 0 {
		t.Fatalf("expected 0 for zero quantity, got %d (%v)", got, err)
	}
	if _, err := MultiplyPrice(math.MaxInt64, 2); !errors.Is(err, ErrMoneyOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestPercentOfRoundsHalfUp(t *testing.T) {
	cases := []struct {
		amount  int64
		percent int64
		want    int64
	}{
		{298000, 10, 29800},
		{100, 50, 50},
		{1, 50, 1},  // 0.5 rounds up
		{1, 49, 0},  // 0.49 rounds down
		{3, 50, 2},  // 1.5 rounds up
		{0, 10, 0},
		{100, 0, 0},
		{100, -5, 0},
		{-100, 10, 0},
		{100, 150, 100}, // percent capped at 100
	}
	for _, tc := range cases {
		if got := PercentOf(tc.amount, tc.percent); got != tc.want {
			t.Fatalf("PercentOf(%d, %d) = %d, want %d", tc.amount, tc.percent, got, tc.want)
		}
	}
}

func TestClampAmount(t *testing.T) {
	if got := ClampAmount(-5, 100); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampAmount(500, 100); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
	if got := ClampAmount(50, 100); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}
