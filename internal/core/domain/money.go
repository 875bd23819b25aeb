package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for every amount and balance.
const Scale = 4

const (
	// maxIntegerDigits matches NUMERIC(19,4) in the ledger schema.
	maxIntegerDigits = 15
	// maxSignificantDigits bounds the coefficient of untrusted input before rounding.
	maxSignificantDigits = 38
)

// ErrAmountOutOfRange is returned for values the ledger cannot store.
var ErrAmountOutOfRange = errors.New("amount out of range")

// Round4 rounds half away from zero to Scale fractional digits.
func Round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// NormalizeAmount bounds an untrusted decimal and rounds it with Round4.
// Values smaller in magnitude than half a unit of the last place become zero.
func NormalizeAmount(d decimal.Decimal) (decimal.Decimal, error) {
	if d.Sign() == 0 {
		return decimal.Zero, nil
	}
	digits := d.NumDigits()
	if digits > maxSignificantDigits {
		return decimal.Zero, ErrAmountOutOfRange
	}

	// Position of the most significant digit relative to the decimal point.
	msd := digits + int(d.Exponent())
	if msd > maxIntegerDigits {
		return decimal.Zero, ErrAmountOutOfRange
	}
	if msd < -Scale {
		return decimal.Zero, nil
	}

	rounded := Round4(d)
	if rounded.NumDigits()+int(rounded.Exponent()) > maxIntegerDigits {
		return decimal.Zero, ErrAmountOutOfRange
	}
	return rounded, nil
}
