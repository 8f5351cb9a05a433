package valueobject

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	IDR Currency = "IDR" // Indonesian Rupiah (default)
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = IDR

var hundred = decimal.NewFromInt(100)

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyIDR creates Money in IDR
func NewMoneyIDR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: IDR}
}

// NewMoneyIDRFromInt creates Money in IDR from whole rupiah
func NewMoneyIDRFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount), currency: IDR}
}

// Amount input limits. They match the DECIMAL(18,4) storage columns.
const (
	MaxAmountIntegerDigits  = 14
	MaxAmountFractionDigits = 4
)

var (
	plainAmountPattern   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	groupedAmountPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// ParseMoneyIDR parses a user-entered rupiah amount.
//
// Input uses the en-US convention: "." is the decimal point and "," may only
// group thousands (1,000,000.50). Surrounding whitespace and an "Rp" prefix
// are ignored. Indonesian grouping such as "1.000.000" or "1,5" is rejected,
// as is exponent notation. At most MaxAmountIntegerDigits integer digits and
// MaxAmountFractionDigits fraction digits are accepted.
func ParseMoneyIDR(raw string) (Money, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimPrefix(s, "rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, errors.New("amount is empty")
	}

	switch {
	case plainAmountPattern.MatchString(s):
	case groupedAmountPattern.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		return Money{}, fmt.Errorf("invalid amount %q: expected digits with an optional decimal point", raw)
	}

	intPart, fracPart, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if len(strings.TrimLeft(intPart, "0")) > MaxAmountIntegerDigits {
		return Money{}, fmt.Errorf("invalid amount %q: more than %d integer digits", raw, MaxAmountIntegerDigits)
	}
	if len(fracPart) > MaxAmountFractionDigits {
		return Money{}, fmt.Errorf("invalid amount %q: more than %d decimal places", raw, MaxAmountFractionDigits)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoneyIDR(d), nil
}

// ZeroIDR returns a zero-value Money in IDR
func ZeroIDR() Money {
	return Money{amount: decimal.Zero, currency: IDR}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Sub(other.amount),
		currency: m.currency,
	}, nil
}

// MustSubtract subtracts two Money values, panics if currencies don't match
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// ApplyRate returns m * percent / 100
func (m Money) ApplyRate(percent decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(percent).Div(hundred),
		currency: m.currency,
	}
}

// NonNegative returns m, or zero when m is negative
func (m Money) NonNegative() Money {
	if m.amount.IsNegative() {
		return Money{amount: decimal.Zero, currency: m.currency}
	}
	return m
}

// RoundToUnit rounds half away from zero to a whole currency unit.
// Rupiah has no sub-unit in circulation, so every stored amount is whole.
func (m Money) RoundToUnit() Money {
	return Money{
		amount:   m.amount.Round(0),
		currency: m.currency,
	}
}

// Equals checks if two Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns the plain amount without currency, e.g. "93500"
func (m Money) String() string {
	return m.amount.String()
}
