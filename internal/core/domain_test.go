package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateExpiration(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		month, year int
		ok          bool
	}{
		{1, 2025, true},
		{12, 2044, true},
		{6, 2030, true},
		{0, 2025, false},
		{13, 2025, false},
		{6, 2024, false}, // before current year
		{6, 2045, false}, // past the 20-year window
	}
	for i, tc := range cases {
		err := ValidateExpiration(tc.month, tc.year, now)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("case %d expected error", i)
			}
			if !errors.Is(err, ErrInvalidExpiration) {
				t.Fatalf("case %d expected ErrInvalidExpiration, got %v", i, err)
			}
		}
	}
}

func TestValidateExpirationMonth(t *testing.T) {
	for _, month := range []int{1, 12} {
		if err := ValidateExpirationMonth(month); err != nil {
			t.Errorf("month %d: %v", month, err)
		}
	}
	for _, month := range []int{0, 13, -1} {
		if err := ValidateExpirationMonth(month); !errors.Is(err, ErrInvalidExpiration) {
			t.Errorf("month %d: expected ErrInvalidExpiration, got %v", month, err)
		}
	}
}

func TestExpirationYears(t *testing.T) {
	years := ExpirationYears(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if len(years) != 20 || years[0] != 2025 || years[19] != 2044 {
		t.Fatalf("unexpected years: %v", years)
	}
}

func TestCardTypeIconName(t *testing.T) {
	cases := map[CardType]string{
		Visa:       "visa",
		Mastercard: "mastercard",
		"Amex":     "amex",
		"":         "",
	}
	for in, want := range cases {
		if got := in.IconName(); got != want {
			t.Fatalf("IconName(%q) = %q, want %q", in, got, want)
		}
	}
	if !Discover.IsKnown() || CardType("Amex").IsKnown() {
		t.Fatalf("unexpected IsKnown results")
	}
}

func TestCardDisplayValues(t *testing.T) {
	c := Card{
		Limit:           5000,
		ExpirationMonth: 6,
		ExpirationYear:  2025,
	}
	if got := c.ExpirationLabel(); got != "06/25" {
		t.Fatalf("ExpirationLabel = %q", got)
	}
	if got := c.CreditLimitLabel(); got != "Credit Limit: $5,000.00" {
		t.Fatalf("CreditLimitLabel = %q", got)
	}
	if got := c.DisplayColor(); got != DefaultCardColor {
		t.Fatalf("expected default color, got %+v", got)
	}

	c.Color = EncodeColor(Color{R: 10, G: 20, B: 30, A: 255})
	if got := c.DisplayColor(); got != (Color{R: 10, G: 20, B: 30, A: 255}) {
		t.Fatalf("unexpected display color %+v", got)
	}
}

func TestCardSummary(t *testing.T) {
	s := CardSummary{Card: Card{Limit: 1000}, Balance: 250.5, TransactionCount: 3}
	if got := s.AvailableCredit(); got != 749.5 {
		t.Fatalf("AvailableCredit = %v", got)
	}
	if got := s.BalanceLabel(); got != "Balance: $250.50" {
		t.Fatalf("BalanceLabel = %q", got)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Fatalf("expected distinct ids, got %q and %q", a, b)
	}
}
