package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// moneyPlaces is the fixed scale for every Money value: 10^-8, the
// smallest unit the exchange represents ("satoshi").
const moneyPlaces = 8

// Money is an exact fixed-point amount with eight fractional digits.
// Every constructor and every arithmetic result is re-quantized to that
// scale with banker's rounding, so a Money never carries more precision
// than the exchange can express. The zero value is 0.00000000.
type Money struct {
	dec decimal.Decimal
}

// Satoshi is one unit of the smallest representable amount (1e-8).
var Satoshi = MustMoney("0.00000001")

// ParseMoney parses a decimal string exactly. No float64 is involved at
// any point; the text is the source of truth.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return quantized(d), nil
}

// MustMoney parses a decimal string and panics on failure. For constants
// and tests only.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func quantized(d decimal.Decimal) Money {
	return Money{dec: d.RoundBank(moneyPlaces)}
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return quantized(m.dec.Add(o.dec))
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return quantized(m.dec.Sub(o.dec))
}

// Mul returns m * o, rounded back to eight places.
func (m Money) Mul(o Money) Money {
	return quantized(m.dec.Mul(o.dec))
}

// Div returns m / o, rounded to eight places with banker's rounding.
// Dividing by zero is a precondition violation and panics: callers must
// guard (a buy price is only divided into a balance after discovery
// confirmed it is present and non-zero).
func (m Money) Div(o Money) Money {
	if o.dec.IsZero() {
		panic("domain: money division by zero")
	}
	// QuoRem gives the quotient truncated at eight places plus the exact
	// remainder, which lets us apply half-to-even on the true value
	// instead of on a re-rounded approximation.
	q, r := m.dec.QuoRem(o.dec, moneyPlaces)
	if r.IsZero() {
		return Money{dec: q}
	}
	ulp := decimal.New(1, -moneyPlaces)
	if q.Sign() < 0 || (q.Sign() == 0 && r.Sign() < 0) {
		ulp = ulp.Neg()
	}
	// |2r| vs |o * 1e-8|: above half rounds away, below keeps the
	// truncation, an exact tie goes to the even neighbor.
	twice := r.Abs().Mul(decimal.New(2, 0))
	step := o.dec.Abs().Mul(decimal.New(1, -moneyPlaces))
	switch twice.Cmp(step) {
	case 1:
		q = q.Add(ulp)
	case 0:
		if lastPlaceOdd(q) {
			q = q.Add(ulp)
		}
	}
	return Money{dec: q}
}

// lastPlaceOdd reports whether the digit of d at the eighth fractional
// place is odd.
func lastPlaceOdd(d decimal.Decimal) bool {
	scaled := d.Shift(moneyPlaces)
	units := scaled.Mod(decimal.New(10, 0)).Abs()
	return units.Mod(decimal.New(2, 0)).IsPositive()
}

// Cmp compares m and o: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int { return m.dec.Cmp(o.dec) }

// Equal reports m == o.
func (m Money) Equal(o Money) bool { return m.dec.Equal(o.dec) }

// GreaterThan reports m > o.
func (m Money) GreaterThan(o Money) bool { return m.dec.GreaterThan(o.dec) }

// GreaterThanOrEqual reports m >= o.
func (m Money) GreaterThanOrEqual(o Money) bool { return m.dec.GreaterThanOrEqual(o.dec) }

// LessThanOrEqual reports m <= o.
func (m Money) LessThanOrEqual(o Money) bool { return m.dec.LessThanOrEqual(o.dec) }

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool { return m.dec.IsZero() }

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool { return m.dec.IsPositive() }

// String renders m with exactly eight fractional digits, the way the
// exchange prints amounts.
func (m Money) String() string {
	return m.dec.StringFixed(moneyPlaces)
}

// Float64 returns an approximate float64 value. Only for the metrics
// boundary; never feed the result back into trading arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.dec.Float64()
	return f
}

// UnmarshalYAML parses Money from a yaml scalar, so config amounts are
// read exactly from their textual form.
func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("money: expected scalar, got %v", node.Kind)
	}
	parsed, err := ParseMoney(node.Value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML renders Money as its fixed-point string.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
