package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Visa       CardType = "Visa"
	Mastercard CardType = "Mastercard"
	Discover   CardType = "Discover"
	Citibank   CardType = "Citibank"
)

// ExpirationYearSpan is the number of selectable expiration years, starting at the current year.
const ExpirationYearSpan = 20

type (
	// CardType is the issuer label shown on a card. It only selects the display icon,
	// so unknown labels are stored as given.
	CardType string

	Card struct {
		ID              string
		Name            string
		Number          string
		Type            CardType
		Limit           float64
		Color           []byte // opaque, see EncodeColor
		ExpirationMonth int
		ExpirationYear  int
		CreatedAt       time.Time
	}

	Transaction struct {
		ID        string
		CardID    string
		Name      string
		Amount    float64
		Timestamp time.Time // date chosen by the user
		Photo     []byte    // compressed image, stored verbatim
		CreatedAt time.Time
	}
)

var (
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrPersistence          = errors.New("persistence error")
	ErrMissingCard          = errors.New("transaction references a missing card")
	ErrCardNotFound         = errors.New("card not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrInvalidExpiration    = errors.New("invalid expiration")
)

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

// CardTypes returns the issuer labels offered when adding a card.
func CardTypes() []CardType {
	return []CardType{Visa, Mastercard, Discover, Citibank}
}

// IconName returns the asset name used to render the issuer logo.
func (t CardType) IconName() string {
	return strings.ToLower(string(t))
}

func (t CardType) IsKnown() bool {
	for _, known := range CardTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ExpirationYears returns the years a card may expire in, relative to now.
func ExpirationYears(now time.Time) []int {
	years := make([]int, ExpirationYearSpan)
	for i := range years {
		years[i] = now.Year() + i
	}
	return years
}

func ValidateExpirationMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d must be between 1 and 12", ErrInvalidExpiration, month)
	}
	return nil
}

// ValidateExpiration checks month and year against the selectable ranges.
func ValidateExpiration(month, year int, now time.Time) error {
	if err := ValidateExpirationMonth(month); err != nil {
		return err
	}
	first := now.Year()
	last := first + ExpirationYearSpan - 1
	if year < first || year > last {
		return fmt.Errorf("%w: year %d must be between %d and %d", ErrInvalidExpiration, year, first, last)
	}
	return nil
}

func (c Card) Validate(now time.Time) error {
	return ValidateExpiration(c.ExpirationMonth, c.ExpirationYear, now)
}

// ExpirationLabel formats the expiration as printed on the card face (MM/YY).
func (c Card) ExpirationLabel() string {
	return fmt.Sprintf("%02d/%02d", c.ExpirationMonth, c.ExpirationYear%100)
}

// DisplayColor decodes the stored color, falling back to DefaultCardColor.
func (c Card) DisplayColor() Color {
	if color, ok := DecodeColor(c.Color); ok {
		return color
	}
	return DefaultCardColor
}

func (c Card) CreditLimitLabel() string {
	return "Credit Limit: " + FormatCurrency(c.Limit)
}
