package testutil

import (
	"time"

	"github.com/roach88/litedocs/internal/value"
)

// SampleDocument returns a document holding one value of every kind, with
// nested containers. It is rebuilt on every call so tests may mutate it.
func SampleDocument() *value.Document {
	return value.NewDocument(
		value.F("_id", value.MustObjectID("c969ce7c86ebf1670512579b")),
		value.F("null", value.Null{}),
		value.F("int", value.Int32(-2147483648)),
		value.F("long", value.Int64(9223372036854775807)),
		value.F("double", value.Double(3.14159265359)),
		value.F("decimal", value.MustDecimal("79228162514264337593543950335")),
		value.F("string", value.String("tab\there \"quoted\" \\ \x01")),
		value.F("bool", value.Boolean(true)),
		value.F("date", value.NewDateTime(SampleDate())),
		value.F("binary", value.Binary{0x01, 0x02, 0x03, 0xff}),
		value.F("guid", value.MustGuid("16880f92-6092-43ec-b9cc-6def44f03dcc")),
		value.F("min", value.MinValue{}),
		value.F("max", value.MaxValue{}),
		value.F("nested", value.NewDocument(
			value.F("a", value.Int32(1)),
			value.F("empty", value.NewDocument()),
		)),
		value.F("array", value.Array{
			value.Int32(1),
			value.String("x"),
			value.Array{},
			value.NewDocument(value.F("k", value.Boolean(false))),
		}),
	)
}

// SampleDate is the instant stored under "date" in SampleDocument.
func SampleDate() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 123456700, time.UTC)
}

// Person builds a small document used by query, store and session tests.
func Person(id int32, name string, age int32, city string) *value.Document {
	return value.NewDocument(
		value.F("_id", value.Int32(id)),
		value.F("name", value.String(name)),
		value.F("age", value.Int32(age)),
		value.F("address", value.NewDocument(value.F("city", value.String(city)))),
	)
}

// People returns five Person documents with ids 1 to 5.
//
//	1 Ada     36 London
//	2 Grace   45 New York
//	3 Linus   28 Helsinki
//	4 Barbara 52 New York
//	5 Alan    41 London
func People() []*value.Document {
	return []*value.Document{
		Person(1, "Ada", 36, "London"),
		Person(2, "Grace", 45, "New York"),
		Person(3, "Linus", 28, "Helsinki"),
		Person(4, "Barbara", 52, "New York"),
		Person(5, "Alan", 41, "London"),
	}
}
