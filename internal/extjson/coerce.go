package extjson

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/litedocs/internal/value"
)

// Marker keys recognized by Coerce.
const (
	markerBinary        = "$binary"
	markerObjectID      = "$oid"
	markerGuid          = "$guid"
	markerDate          = "$date"
	markerNumberLong    = "$numberLong"
	markerNumberDecimal = "$numberDecimal"
	markerNumberDouble  = "$numberDouble"
	markerMinValue      = "$minValue"
	markerMaxValue      = "$maxValue"
)

// IsMarkerKey reports whether key turns a one-entry object into a scalar.
func IsMarkerKey(key string) bool {
	switch key {
	case markerBinary, markerObjectID, markerGuid, markerDate,
		markerNumberLong, markerNumberDecimal, markerNumberDouble,
		markerMinValue, markerMaxValue:
		return true
	}
	return false
}

// Coerce converts a generic node into a typed value. A map with exactly one
// entry under a marker key collapses into the scalar it stands for; every
// other map becomes a Document.
func Coerce(n Node) (value.Value, error) {
	switch t := n.(type) {
	case nil, NullNode:
		return value.Null{}, nil
	case BoolNode:
		return value.Boolean(t), nil
	case Int32Node:
		return value.Int32(t), nil
	case Int64Node:
		return value.Int64(t), nil
	case DoubleNode:
		return value.Double(t), nil
	case DecimalNode:
		return value.Decimal{Decimal: t.Decimal}, nil
	case TextNode:
		return value.String(t), nil
	case BytesNode:
		return value.Binary(t), nil
	case IdentifierNode:
		return value.ObjectID(t), nil
	case GuidNode:
		return value.Guid(t), nil
	case DateTimeNode:
		return value.NewDateTime(t.Time), nil
	case SentinelNode:
		if t == SentinelMax {
			return value.MaxValue{}, nil
		}
		return value.MinValue{}, nil
	case SeqNode:
		arr := make(value.Array, len(t))
		for i, item := range t {
			v, err := Coerce(item)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case *MapNode:
		if key, payload, ok := t.single(); ok && IsMarkerKey(key) {
			return coerceMarker(key, payload)
		}
		return CoerceDocument(t)
	}
	return nil, fmt.Errorf("coerce: unsupported node type %T", n)
}

// CoerceDocument converts a map into a Document without collapsing the map
// itself; nested marker objects are still collapsed.
func CoerceDocument(m *MapNode) (*value.Document, error) {
	doc := value.NewDocument()
	for _, k := range m.Keys() {
		n, _ := m.Get(k)
		v, err := Coerce(n)
		if err != nil {
			return nil, err
		}
		doc.Set(k, v)
	}
	return doc, nil
}

// ParseDocument parses text and coerces the result into a Document.
func ParseDocument(text string) (*value.Document, error) {
	m, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return CoerceDocument(m)
}

// ParseValue parses and coerces a single value of any kind.
func ParseValue(text string) (value.Value, error) {
	n, err := ParseNode(text)
	if err != nil {
		return nil, err
	}
	return Coerce(n)
}

func coerceMarker(key string, payload Node) (value.Value, error) {
	fail := func(err error) error {
		return &CoercionError{Marker: key, Payload: payloadText(payload), Err: err}
	}

	switch key {
	case markerMinValue:
		return value.MinValue{}, nil
	case markerMaxValue:
		return value.MaxValue{}, nil

	case markerNumberLong:
		switch p := payload.(type) {
		case Int32Node:
			return value.Int64(p), nil
		case Int64Node:
			return value.Int64(p), nil
		}
		s, ok := payload.(TextNode)
		if !ok {
			return nil, fail(errPayloadNotText)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
		if err != nil {
			return nil, fail(err)
		}
		return value.Int64(n), nil

	case markerNumberDecimal:
		var d decimal.Decimal
		switch p := payload.(type) {
		case Int32Node:
			d = decimal.NewFromInt(int64(p))
		case Int64Node:
			d = decimal.NewFromInt(int64(p))
		case DecimalNode:
			d = p.Decimal
		case DoubleNode:
			d = decimal.NewFromFloat(float64(p))
		case TextNode:
			var err error
			d, err = decimal.NewFromString(normalizeNumber(strings.TrimSpace(string(p))))
			if err != nil {
				return nil, fail(err)
			}
		default:
			return nil, fail(errPayloadNotText)
		}
		dec, ok := value.NewDecimal(d)
		if !ok {
			return nil, fail(fmt.Errorf("outside decimal range"))
		}
		return dec, nil

	case markerNumberDouble:
		switch p := payload.(type) {
		case DoubleNode:
			return value.Double(p), nil
		case Int32Node:
			return value.Double(p), nil
		case Int64Node:
			return value.Double(p), nil
		case DecimalNode:
			return value.Double(p.InexactFloat64()), nil
		}
		s, ok := payload.(TextNode)
		if !ok {
			return nil, fail(errPayloadNotText)
		}
		f, err := parseDoubleText(strings.TrimSpace(string(s)))
		if err != nil {
			return nil, fail(err)
		}
		return value.Double(f), nil

	case markerDate:
		var t time.Time
		switch p := payload.(type) {
		case Int32Node:
			t = time.UnixMilli(int64(p))
		case Int64Node:
			t = time.UnixMilli(int64(p))
		case TextNode:
			var err error
			if t, err = parseDate(strings.TrimSpace(string(p))); err != nil {
				return nil, fail(err)
			}
		default:
			return nil, fail(errPayloadNotText)
		}
		dt := value.NewDateTime(t)
		if !value.DateTimeInRange(dt) {
			return nil, fail(errDateOutOfRange)
		}
		return dt, nil
	}

	s, ok := payload.(TextNode)
	if !ok {
		return nil, fail(errPayloadNotText)
	}
	switch key {
	case markerBinary:
		b, err := base64.StdEncoding.DecodeString(string(s))
		if err != nil {
			return nil, fail(err)
		}
		return value.Binary(b), nil
	case markerObjectID:
		id, err := value.ObjectIDFromHex(string(s))
		if err != nil {
			return nil, fail(err)
		}
		return id, nil
	case markerGuid:
		g, err := value.ParseGuid(string(s))
		if err != nil {
			return nil, fail(err)
		}
		return g, nil
	}
	return nil, fail(fmt.Errorf("unknown marker"))
}

// dateLayouts are tried in order for $date payloads. All are read as UTC
// unless the text carries an offset.
var dateLayouts = []string{
	time.RFC3339Nano,
	jsonDateLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseDoubleText(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "nan":
		return math.NaN(), nil
	case "infinity", "+infinity":
		return math.Inf(1), nil
	case "-infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

// payloadText renders a marker payload for error messages.
func payloadText(n Node) string {
	if s, ok := n.(TextNode); ok {
		return string(s)
	}
	v, err := Coerce(n)
	if err != nil {
		return fmt.Sprintf("%T", n)
	}
	return Render(v, JSONCompatible)
}
