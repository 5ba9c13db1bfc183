package value

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TypeMismatchError is returned by the As* accessors when the value holds a
// different variant than requested.
type TypeMismatchError struct {
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

// IsTypeMismatch returns true if err is or wraps a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var tm *TypeMismatchError
	return errors.As(err, &tm)
}

func mismatch(want Kind, v Value) error {
	got := KindNull
	if v != nil {
		got = v.Kind()
	}
	return &TypeMismatchError{Want: want, Got: got}
}

// AsInt32 returns the int32 held by v.
func AsInt32(v Value) (int32, error) {
	if n, ok := v.(Int32); ok {
		return int32(n), nil
	}
	return 0, mismatch(KindInt32, v)
}

// AsInt64 returns the int64 held by v.
func AsInt64(v Value) (int64, error) {
	if n, ok := v.(Int64); ok {
		return int64(n), nil
	}
	return 0, mismatch(KindInt64, v)
}

// AsDouble returns the float64 held by v.
func AsDouble(v Value) (float64, error) {
	if n, ok := v.(Double); ok {
		return float64(n), nil
	}
	return 0, mismatch(KindDouble, v)
}

// AsDecimal returns the decimal held by v.
func AsDecimal(v Value) (decimal.Decimal, error) {
	if n, ok := v.(Decimal); ok {
		return n.Decimal, nil
	}
	return decimal.Zero, mismatch(KindDecimal, v)
}

// AsString returns the string held by v.
func AsString(v Value) (string, error) {
	if s, ok := v.(String); ok {
		return string(s), nil
	}
	return "", mismatch(KindString, v)
}

// AsBoolean returns the bool held by v.
func AsBoolean(v Value) (bool, error) {
	if b, ok := v.(Boolean); ok {
		return bool(b), nil
	}
	return false, mismatch(KindBoolean, v)
}

// AsDateTime returns the UTC instant held by v.
func AsDateTime(v Value) (time.Time, error) {
	if t, ok := v.(DateTime); ok {
		return t.Time, nil
	}
	return time.Time{}, mismatch(KindDateTime, v)
}

// AsBinary returns the bytes held by v.
func AsBinary(v Value) ([]byte, error) {
	if b, ok := v.(Binary); ok {
		return []byte(b), nil
	}
	return nil, mismatch(KindBinary, v)
}

// AsObjectID returns the identifier held by v.
func AsObjectID(v Value) (ObjectID, error) {
	if id, ok := v.(ObjectID); ok {
		return id, nil
	}
	return ObjectID{}, mismatch(KindObjectID, v)
}

// AsGuid returns the guid held by v.
func AsGuid(v Value) (Guid, error) {
	if g, ok := v.(Guid); ok {
		return g, nil
	}
	return Guid{}, mismatch(KindGuid, v)
}

// AsDocument returns the document held by v.
func AsDocument(v Value) (*Document, error) {
	if d, ok := v.(*Document); ok {
		return d, nil
	}
	return nil, mismatch(KindDocument, v)
}

// AsArray returns the array held by v.
func AsArray(v Value) (Array, error) {
	if a, ok := v.(Array); ok {
		return a, nil
	}
	return nil, mismatch(KindArray, v)
}
