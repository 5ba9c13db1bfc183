package value

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Value is a sealed interface over the typed document variants.
// Only the types declared in this package implement it.
type Value interface {
	Kind() Kind
	value() // Sealed
}

// Kind identifies the active variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt32
	KindInt64
	KindDouble
	KindDecimal
	KindString
	KindBoolean
	KindDateTime
	KindBinary
	KindObjectID
	KindGuid
	KindMinValue
	KindMaxValue
	KindDocument
	KindArray
)

var kindNames = [...]string{
	KindNull:     "Null",
	KindInt32:    "Int32",
	KindInt64:    "Int64",
	KindDouble:   "Double",
	KindDecimal:  "Decimal",
	KindString:   "String",
	KindBoolean:  "Boolean",
	KindDateTime: "DateTime",
	KindBinary:   "Binary",
	KindObjectID: "ObjectId",
	KindGuid:     "Guid",
	KindMinValue: "MinValue",
	KindMaxValue: "MaxValue",
	KindDocument: "Document",
	KindArray:    "Array",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// IsNumber reports whether the kind is one of the four numeric kinds.
func (k Kind) IsNumber() bool {
	switch k {
	case KindInt32, KindInt64, KindDouble, KindDecimal:
		return true
	}
	return false
}

// Null is the null value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) value()     {}

// Int32 is a 32-bit signed integer.
type Int32 int32

func (Int32) Kind() Kind { return KindInt32 }
func (Int32) value()     {}

// Int64 is a 64-bit signed integer.
type Int64 int64

func (Int64) Kind() Kind { return KindInt64 }
func (Int64) value()     {}

// Double is an IEEE-754 binary64 number.
type Double float64

func (Double) Kind() Kind { return KindDouble }
func (Double) value()     {}

// Decimal is a base-10 number limited to the 96-bit decimal range.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) Kind() Kind { return KindDecimal }
func (Decimal) value()     {}

// String is a UTF-8 string.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

// Boolean is true or false.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }
func (Boolean) value()     {}

// DateTime is a UTC instant with 100ns resolution.
// Construct with NewDateTime so the invariants hold.
type DateTime struct {
	time.Time
}

func (DateTime) Kind() Kind { return KindDateTime }
func (DateTime) value()     {}

// Binary is an opaque byte sequence.
type Binary []byte

func (Binary) Kind() Kind { return KindBinary }
func (Binary) value()     {}

// ObjectID is a 12-byte identifier rendered as 24 lowercase hex characters.
type ObjectID [12]byte

func (ObjectID) Kind() Kind { return KindObjectID }
func (ObjectID) value()     {}

// Guid is a 128-bit identifier.
type Guid uuid.UUID

func (Guid) Kind() Kind { return KindGuid }
func (Guid) value()     {}

// String returns the dashed lowercase form.
func (g Guid) String() string {
	return uuid.UUID(g).String()
}

// MinValue sorts before every other value.
type MinValue struct{}

func (MinValue) Kind() Kind { return KindMinValue }
func (MinValue) value()     {}

// MaxValue sorts after every other value.
type MaxValue struct{}

func (MaxValue) Kind() Kind { return KindMaxValue }
func (MaxValue) value()     {}

// Array is an ordered sequence of values. Duplicates and nulls are allowed.
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (Array) value()     {}

// Tick is the DateTime resolution.
const Tick = 100 * time.Nanosecond

// NewDateTime converts t to UTC and truncates it to Tick resolution.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(Tick)}
}

// MinDateTime and MaxDateTime bound the instants a DateTime may hold.
var (
	MinDateTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDateTime = time.Date(9999, 12, 31, 23, 59, 59, 999999900, time.UTC)
)

// DateTimeInRange reports whether d lies within MinDateTime..MaxDateTime.
// Instants outside it have no four-digit ISO year and cannot be rendered
// back to parseable text.
func DateTimeInRange(d DateTime) bool {
	return !d.Before(MinDateTime) && !d.After(MaxDateTime)
}

// decimalMax is the largest magnitude a 96-bit decimal can hold.
var decimalMax = decimal.RequireFromString("79228162514264337593543950335")

// MaxDecimalScale is the largest number of fractional digits a Decimal keeps.
const MaxDecimalScale = 28

// DecimalInRange reports whether d fits the 96-bit decimal range.
func DecimalInRange(d decimal.Decimal) bool {
	return d.Abs().Cmp(decimalMax) <= 0
}

// NewDecimal rounds d to MaxDecimalScale fractional digits.
// It returns false when d is outside the decimal range.
func NewDecimal(d decimal.Decimal) (Decimal, bool) {
	if !DecimalInRange(d) {
		return Decimal{}, false
	}
	if -d.Exponent() > MaxDecimalScale {
		d = d.Round(MaxDecimalScale)
	}
	return Decimal{Decimal: d}, true
}

// MustDecimal parses s as a Decimal and panics on failure. Intended for
// literals in tests and fixtures.
func MustDecimal(s string) Decimal {
	d, ok := NewDecimal(decimal.RequireFromString(s))
	if !ok {
		panic("value: decimal out of range: " + s)
	}
	return d
}
