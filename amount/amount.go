// Package amount converts between atomic units, as used by the wallet
// service, and the human readable amounts shown in the shell.
package amount

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDivisor is the number of atomic units in one FED.
	DefaultDivisor = 100000000
	// DefaultPlaces is the number of decimals shown for a FED amount.
	DefaultPlaces = 8

	fallbackPlaces = 2

	// divisionPrecision bounds the quotient before it is fixed for display.
	divisionPrecision = 18
)

// ErrInvalidAmount is returned when a human readable amount can not be
// turned into atomic units.
var ErrInvalidAmount = errors.New("invalid amount")

// Converter converts amounts for one denomination.
// A zero Divisor disables scaling altogether.
type Converter struct {
	Divisor int64
	Places  int
}

// Default is the FED denomination.
var Default = Converter{Divisor: DefaultDivisor, Places: DefaultPlaces}

func (c Converter) places() int32 {
	if c.Places <= 0 {
		return fallbackPlaces
	}
	return int32(c.Places)
}

// ForMortal formats an atomic amount for display, fixed to the configured
// number of decimals.
func (c Converter) ForMortal(atomic int64) string {
	if c.Divisor == 0 {
		return strconv.FormatInt(atomic, 10)
	}
	return decimal.NewFromInt(atomic).
		DivRound(decimal.NewFromInt(c.Divisor), divisionPrecision).
		StringFixed(c.places())
}

// ForImmortal parses a human readable amount, rounds it half away from zero
// to the configured number of decimals and returns it in atomic units.
func (c Converter) ForImmortal(human string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(human))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, human)
	}
	return c.atomic(d)
}

// FromFloat converts a configured float amount, such as a minimum fee, to
// atomic units.
func (c Converter) FromFloat(v float64) (int64, error) {
	return c.atomic(decimal.NewFromFloat(v))
}

// MeetsMinimum reports whether an atomic amount is at least minimum, given
// in human readable units.
func (c Converter) MeetsMinimum(atomic int64, minimum float64) (bool, error) {
	floor, err := c.FromFloat(minimum)
	if err != nil {
		return false, err
	}
	return atomic >= floor, nil
}

func (c Converter) atomic(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, d.String())
	}
	if c.Divisor == 0 {
		return d.IntPart(), nil
	}
	scaled := d.Round(c.places()).Mul(decimal.NewFromInt(c.Divisor)).Truncate(0)
	v := scaled.BigInt()
	if !v.IsInt64() {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return v.Int64(), nil
}

// ForMortal formats an atomic amount with the Default converter.
func ForMortal(atomic int64) string {
	return Default.ForMortal(atomic)
}

// ForImmortal parses a human readable amount with the Default converter.
func ForImmortal(human string) (int64, error) {
	return Default.ForImmortal(human)
}
