package extjson

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Format selects the notation and layout used by Render.
// Friendly and JSONCompatible are mutually exclusive; Friendly is used when
// neither is set. Indent may be combined with either.
type Format uint8

const (
	Friendly Format = 1 << iota
	JSONCompatible
	Indent

	// Exact keeps every digit of Double and Decimal values so the text
	// parses back to the same number. Used for stored documents.
	Exact
)

// IsJSON reports whether f selects the JSON-compatible notation.
func (f Format) IsJSON() bool {
	return f&JSONCompatible != 0
}

// IsExact reports whether f keeps full numeric precision.
func (f Format) IsExact() bool {
	return f&Exact != 0
}

// IsIndented reports whether f selects the indented layout.
func (f Format) IsIndented() bool {
	return f&Indent != 0
}

const (
	// maxFractionDigits is the most fractional digits a rendered number keeps.
	maxFractionDigits = 17

	// friendlyDateLayout is the round-trip layout used inside ISODate(...).
	friendlyDateLayout = "2006-01-02T15:04:05.0000000Z"

	// jsonDateLayout is the millisecond layout used in JSON-compatible mode.
	jsonDateLayout = "2006-01-02T15:04:05.000Z"
)

// FormatDouble renders f in fixed notation with at least one and at most 17
// fractional digits, trailing zeros removed. Non-finite values render as
// NaN, Infinity and -Infinity.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > maxFractionDigits {
		s = strconv.FormatFloat(f, 'f', maxFractionDigits, 64)
		s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	}
	return withFraction(s)
}

// FormatDecimal renders d with at least one and at most 17 fractional
// digits, trailing zeros removed.
func FormatDecimal(d decimal.Decimal) string {
	return withFraction(d.Round(maxFractionDigits).String())
}

func formatDoubleExact(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return FormatDouble(f)
	}
	return withFraction(strconv.FormatFloat(f, 'f', -1, 64))
}

func withFraction(s string) string {
	if strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}
