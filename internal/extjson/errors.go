package extjson

import (
	"errors"
	"fmt"
)

// ParseError reports malformed text.
//
// Line is the number of newlines before Offset (0-based). Column is Offset
// minus the index of the last newline before Offset, or Offset+1 when there
// is none, so it is 1-based on every line.
type ParseError struct {
	Offset   int    // rune index of the failure
	Line     int    // 0-based
	Column   int    // 1-based
	Found    string // offending character, escaped; empty at end of input
	Expected string // description of what was expected
}

func (e *ParseError) Error() string {
	found := "end of input"
	if e.Found != "" {
		found = fmt.Sprintf("'%s'", e.Found)
	}
	if e.Expected == "" {
		return fmt.Sprintf("parse error at (%d, %d): unexpected %s", e.Line, e.Column, found)
	}
	return fmt.Sprintf("parse error at (%d, %d): unexpected %s, expected %s", e.Line, e.Column, found, e.Expected)
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// CoercionError reports a marker object whose payload cannot be converted
// to its target type.
type CoercionError struct {
	Marker  string // e.g. "$oid"
	Payload string // payload as written, for diagnostics
	Err     error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coerce %s %q: %v", e.Marker, e.Payload, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// IsCoercionError returns true if err is or wraps a CoercionError.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}

// errPayloadNotText is wrapped by CoercionError when a marker payload has
// the wrong shape.
var errPayloadNotText = errors.New("payload must be a string")

// errDateOutOfRange is wrapped by CoercionError when a $date payload falls
// outside years 0001 to 9999.
var errDateOutOfRange = errors.New("date outside years 0001 to 9999")
