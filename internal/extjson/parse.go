package extjson

import (
	"encoding/base64"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/litedocs/internal/value"
)

// Parse reads text whose top level is an object literal and returns the
// generic tree. Marker objects are kept as ordinary maps; see Coerce.
//
// Keys containing '.' are split into nested maps, so {"a.b": 1} and
// {"a": {"b": 1}} produce the same tree. Anything other than whitespace
// after the closing brace is an error.
func Parse(text string) (*MapNode, error) {
	s := newScanner(text)
	s.skipSpace()
	if s.peek() != '{' || s.eof() {
		return nil, s.errorf(s.pos, "'{'")
	}
	m, err := s.object()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if !s.eof() {
		return nil, s.errorf(s.pos, "end of input")
	}
	return m, nil
}

// ParseNode reads a single value of any kind, e.g. `ObjectId("...")` or `5`.
func ParseNode(text string) (Node, error) {
	s := newScanner(text)
	s.skipSpace()
	n, err := s.value()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if !s.eof() {
		return nil, s.errorf(s.pos, "end of input")
	}
	return n, nil
}

func (s *scanner) object() (*MapNode, error) {
	s.pos++ // '{'
	m := NewMapNode()

	s.skipSpace()
	if s.peek() == '}' {
		s.pos++
		return m, nil
	}

	for {
		s.skipSpace()
		keyAt := s.pos
		key, err := s.key()
		if err != nil {
			return nil, err
		}
		if err := s.expect(':', "':'"); err != nil {
			return nil, err
		}
		s.skipSpace()
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		if err := s.assign(m, key, v, keyAt); err != nil {
			return nil, err
		}

		s.skipSpace()
		switch {
		case s.eof():
			return nil, s.errorf(s.pos, "',' or '}'")
		case s.peek() == ',':
			s.pos++
		case s.peek() == '}':
			s.pos++
			return m, nil
		default:
			return nil, s.errorf(s.pos, "',' or '}'")
		}
	}
}

// key reads a quoted key or a bare key running up to the next ':'.
func (s *scanner) key() (string, error) {
	start := s.pos
	if r := s.peek(); r == '"' || r == '\'' {
		k, err := s.stringLiteral()
		if err != nil {
			return "", err
		}
		if k == "" {
			return "", s.errorf(start, "non-empty key")
		}
		return k, nil
	}

	for !s.eof() {
		switch s.src[s.pos] {
		case ':':
			k := strings.TrimRight(string(s.src[start:s.pos]), " \t\r\n")
			if k == "" {
				return "", s.errorf(start, "key")
			}
			return k, nil
		case '{', '}', '[', ']', ',', '"', '\'':
			if s.pos == start {
				return "", s.errorf(s.pos, "key")
			}
			return "", s.errorf(s.pos, "':'")
		}
		s.pos++
	}
	return "", s.errorf(s.pos, "':'")
}

// assign stores v under a possibly dotted key, creating or reusing nested
// maps for every segment but the last.
func (s *scanner) assign(m *MapNode, key string, v Node, keyAt int) error {
	segments := strings.Split(key, ".")
	cur := m
	for i, seg := range segments {
		if seg == "" {
			return s.errorf(keyAt, "non-empty key segment")
		}
		if i == len(segments)-1 {
			cur.Set(seg, v)
			return nil
		}
		existing, ok := cur.Get(seg)
		if !ok {
			next := NewMapNode()
			cur.Set(seg, next)
			cur = next
			continue
		}
		next, isMap := existing.(*MapNode)
		if !isMap {
			return s.errorf(keyAt, "key segment "+strconv.Quote(seg)+" to name an object")
		}
		cur = next
	}
	return nil
}

func (s *scanner) array() (SeqNode, error) {
	s.pos++ // '['
	seq := SeqNode{}

	s.skipSpace()
	if s.peek() == ']' {
		s.pos++
		return seq, nil
	}

	for {
		s.skipSpace()
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)

		s.skipSpace()
		switch {
		case s.eof():
			return nil, s.errorf(s.pos, "',' or ']'")
		case s.peek() == ',':
			s.pos++
		case s.peek() == ']':
			s.pos++
			return seq, nil
		default:
			return nil, s.errorf(s.pos, "',' or ']'")
		}
	}
}

func (s *scanner) value() (Node, error) {
	if s.eof() {
		return nil, s.errorf(s.pos, "value")
	}
	r := s.peek()
	switch {
	case r == '"' || r == '\'':
		str, err := s.stringLiteral()
		if err != nil {
			return nil, err
		}
		return TextNode(str), nil
	case r == '{':
		return s.object()
	case r == '[':
		return s.array()
	case r == '-' || r == '+' || r == '.' || isDigit(r):
		return s.bareNumber()
	case r == '_' || isLetter(r):
		return s.keywordOrConstructor()
	}
	return nil, s.errorf(s.pos, "value")
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// bareNumber reads a number that is not wrapped in a constructor. Integer
// tokens become the narrowest of Int32, Int64, Decimal and Double that holds
// them. Other tokens become Decimal unless the Double reading renders to the
// same text.
func (s *scanner) bareNumber() (Node, error) {
	start := s.pos
	tok, integer, ok := s.numberToken(true)
	if !ok {
		return nil, s.errorf(start, "number")
	}
	if !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n', ',', '}', ']':
		default:
			return nil, s.errorf(s.pos, "',', '}' or ']' after number")
		}
	}

	if integer {
		if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
			return Int32Node(n), nil
		}
		if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return Int64Node(n), nil
		}
	}

	// Decimal has no negative zero.
	if !integer {
		if f, err := strconv.ParseFloat(tok, 64); err == nil && f == 0 && math.Signbit(f) {
			return DoubleNode(f), nil
		}
	}

	if d, err := decimal.NewFromString(normalizeNumber(tok)); err == nil && value.DecimalInRange(d) {
		dec, _ := value.NewDecimal(d)
		if !integer {
			if f, err := strconv.ParseFloat(tok, 64); err == nil && FormatDouble(f) == FormatDecimal(dec.Decimal) {
				return DoubleNode(f), nil
			}
		}
		return DecimalNode{Decimal: dec.Decimal}, nil
	}

	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, s.errorf(start, "number within double range")
	}
	return DoubleNode(f), nil
}

// normalizeNumber rewrites a number token into a form decimal.NewFromString
// accepts: no leading '+', digits on both sides of the point.
func normalizeNumber(tok string) string {
	tok = strings.TrimPrefix(tok, "+")
	sign := ""
	if strings.HasPrefix(tok, "-") {
		sign, tok = "-", tok[1:]
	}
	if strings.HasPrefix(tok, ".") {
		tok = "0" + tok
	}
	if i := strings.IndexByte(tok, '.'); i >= 0 && (i == len(tok)-1 || !isDigit(rune(tok[i+1]))) {
		tok = tok[:i+1] + "0" + tok[i+1:]
	}
	return sign + tok
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,7})?Z$`)

// keywordOrConstructor reads null, true, false or a constructor call. All
// names are case-insensitive.
func (s *scanner) keywordOrConstructor() (Node, error) {
	start := s.pos
	name := strings.ToLower(s.word())

	switch name {
	case "null":
		return NullNode{}, nil
	case "true":
		return BoolNode(true), nil
	case "false":
		return BoolNode(false), nil
	}

	switch name {
	case "int", "long", "double", "decimal", "binary", "objectid", "guid", "isodate", "minvalue", "maxvalue":
	default:
		return nil, s.errorf(start, "value")
	}

	if err := s.expect('(', "'('"); err != nil {
		return nil, err
	}
	s.skipSpace()
	argAt := s.pos

	var n Node
	switch name {
	case "int", "long":
		tok, integer, ok := s.numberToken(false)
		if !ok || !integer {
			return nil, s.errorf(argAt, "integer")
		}
		if name == "int" {
			v, err := strconv.ParseInt(tok, 10, 32)
			if err != nil {
				return nil, s.errorf(argAt, "32-bit integer")
			}
			n = Int32Node(v)
		} else {
			v, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, s.errorf(argAt, "64-bit integer")
			}
			n = Int64Node(v)
		}

	case "double":
		f, err := s.doubleArg()
		if err != nil {
			return nil, err
		}
		n = DoubleNode(f)

	case "decimal":
		tok, _, ok := s.numberToken(true)
		if !ok {
			return nil, s.errorf(argAt, "number")
		}
		d, err := decimal.NewFromString(normalizeNumber(tok))
		if err != nil {
			return nil, s.errorf(argAt, "number")
		}
		dec, inRange := value.NewDecimal(d)
		if !inRange {
			return nil, s.errorf(argAt, "number within decimal range")
		}
		n = DecimalNode{Decimal: dec.Decimal}

	case "binary":
		str, err := s.stringLiteral()
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return nil, s.errorf(argAt, "base64 string")
		}
		n = BytesNode(b)

	case "objectid":
		str, err := s.stringLiteral()
		if err != nil {
			return nil, err
		}
		id, err := value.ObjectIDFromHex(str)
		if err != nil {
			return nil, s.errorf(argAt, "24 hex characters")
		}
		n = IdentifierNode(id)

	case "guid":
		str, err := s.stringLiteral()
		if err != nil {
			return nil, err
		}
		g, err := value.ParseGuid(str)
		if err != nil {
			return nil, s.errorf(argAt, "guid")
		}
		n = GuidNode(g)

	case "isodate":
		str, err := s.stringLiteral()
		if err != nil {
			return nil, err
		}
		if !isoDatePattern.MatchString(str) {
			return nil, s.errorf(argAt, "ISO-8601 UTC date")
		}
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return nil, s.errorf(argAt, "ISO-8601 UTC date")
		}
		dt := value.NewDateTime(t)
		if !value.DateTimeInRange(dt) {
			return nil, s.errorf(argAt, "date between years 0001 and 9999")
		}
		n = DateTimeNode{Time: dt.Time}

	case "minvalue":
		n = SentinelMin
	case "maxvalue":
		n = SentinelMax
	}

	if err := s.expect(')', "')'"); err != nil {
		return nil, err
	}
	return n, nil
}

// doubleArg reads the argument of Double(...), which also admits NaN,
// Infinity and -Infinity.
func (s *scanner) doubleArg() (float64, error) {
	at := s.pos
	neg := false
	if s.peek() == '-' && s.pos+1 < len(s.src) && isLetter(s.src[s.pos+1]) {
		neg = true
		s.pos++
	}
	if isLetter(s.peek()) {
		switch strings.ToLower(s.word()) {
		case "nan":
			if !neg {
				return math.NaN(), nil
			}
		case "infinity":
			if neg {
				return math.Inf(-1), nil
			}
			return math.Inf(1), nil
		}
		return 0, s.errorf(at, "number")
	}

	tok, _, ok := s.numberToken(true)
	if !ok {
		return 0, s.errorf(at, "number")
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, s.errorf(at, "number within double range")
	}
	return f, nil
}
