// Package money provides an exact two-decimal currency amount.
//
// Amounts are stored as a count of minor units (cents) in an int64, so sums and
// equal splits never drift the way binary floating point does. Parsing and
// formatting go through shopspring/decimal.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Places is the number of decimal places every Money value carries.
const Places = 2

var (
	// ErrTooPrecise is returned when a value has more than two decimal places.
	ErrTooPrecise = errors.New("amount has more than two decimal places")
	// ErrOutOfRange is returned when a value does not fit in int64 minor units.
	ErrOutOfRange = errors.New("amount out of range")
	// ErrInvalidParts is returned when Split is asked for zero or fewer parts.
	ErrInvalidParts = errors.New("cannot split into fewer than one part")
	// ErrOverflow is returned when arithmetic leaves the int64 minor-unit range.
	ErrOverflow = errors.New("amount overflows")
)

// Money is a signed currency amount in minor units.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

// Cent is the smallest representable amount.
const Cent Money = 1

// FromCents returns the amount for the given number of minor units.
func FromCents(cents int64) Money {
	return Money(cents)
}

// Parse reads a decimal string such as "12.5" or "-3.07".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts d to Money. d must have at most two decimal places.
func FromDecimal(d decimal.Decimal) (Money, error) {
	scaled := d.Shift(Places)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%s: %w", d.String(), ErrTooPrecise)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("%s: %w", d.String(), ErrOutOfRange)
	}
	return Money(scaled.IntPart()), nil
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the amount as a decimal with exactly two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -Places)
}

// String formats the amount with two decimal places, e.g. "-3.07".
func (m Money) String() string {
	return m.Decimal().StringFixed(Places)
}

// Neg returns -m.
func (m Money) Neg() Money {
	return -m
}

// Abs returns |m|.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// IsZero reports whether m is zero.
func (m Money) IsZero() bool {
	return m == 0
}

// Split divides m into n parts that differ by at most one minor unit and sum
// exactly to m. The first |m mod n| parts carry the extra unit.
func (m Money) Split(n int) ([]Money, error) {
	if n < 1 {
		return nil, ErrInvalidParts
	}
	base := int64(m) / int64(n)
	rem := int64(m) % int64(n)

	step := int64(1)
	if rem < 0 {
		step, rem = -1, -rem
	}

	parts := make([]Money, n)
	for i := range parts {
		parts[i] = Money(base)
		if int64(i) < rem {
			parts[i] += Money(step)
		}
	}
	return parts, nil
}

// Add returns a + b, or ErrOverflow if the result does not fit.
func Add(a, b Money) (Money, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%s + %s: %w", a, b, ErrOverflow)
	}
	return sum, nil
}

// Sub returns a - b, or ErrOverflow if the result does not fit.
func Sub(a, b Money) (Money, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, fmt.Errorf("%s - %s: %w", a, b, ErrOverflow)
	}
	return diff, nil
}

// Mul returns m * n, or ErrOverflow if the result does not fit.
func Mul(m Money, n int64) (Money, error) {
	if m == 0 || n == 0 {
		return 0, nil
	}
	product := int64(m) * n
	if product/n != int64(m) || (m == math.MinInt64 && n == -1) {
		return 0, fmt.Errorf("%s * %d: %w", m, n, ErrOverflow)
	}
	return Money(product), nil
}

// Sum adds the given amounts, or returns ErrOverflow if any partial sum does
// not fit.
func Sum(amounts ...Money) (Money, error) {
	var total Money
	for _, a := range amounts {
		var err error
		if total, err = Add(total, a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// MarshalJSON encodes the amount as a JSON number with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount %s: %w", string(data), err)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// UnmarshalYAML accepts a scalar decimal value.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	v, err := Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = v
	return nil
}

// MarshalYAML encodes the amount as a two-decimal string.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
