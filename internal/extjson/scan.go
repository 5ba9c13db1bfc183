package extjson

import (
	"strconv"
	"strings"
	"unicode"
)

// scanner walks a rune slice. It never backtracks past a consumed token.
type scanner struct {
	src []rune
	pos int
}

func newScanner(text string) *scanner {
	return &scanner{src: []rune(text)}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

// expect consumes r after optional whitespace.
func (s *scanner) expect(r rune, expected string) error {
	s.skipSpace()
	if s.peek() != r || s.eof() {
		return s.errorf(s.pos, expected)
	}
	s.pos++
	return nil
}

// errorf builds a ParseError for the character at offset.
func (s *scanner) errorf(offset int, expected string) *ParseError {
	line, last := 0, -1
	for i := 0; i < offset && i < len(s.src); i++ {
		if s.src[i] == '\n' {
			line++
			last = i
		}
	}
	found := ""
	if offset < len(s.src) {
		found = EscapeString(string(s.src[offset]))
	}
	return &ParseError{
		Offset:   offset,
		Line:     line,
		Column:   offset - last,
		Found:    found,
		Expected: expected,
	}
}

// word consumes an identifier: a letter followed by letters, digits or '_'.
func (s *scanner) word() string {
	start := s.pos
	for !s.eof() {
		r := s.src[s.pos]
		if !(unicode.IsLetter(r) || r == '_' || (s.pos > start && unicode.IsDigit(r))) {
			break
		}
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// numberToken consumes [-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)? and reports
// whether the token is a plain integer. It returns false for ok when no
// number starts at the current position.
func (s *scanner) numberToken(allowExponent bool) (tok string, integer, ok bool) {
	start := s.pos
	p := s.pos
	at := func(i int) rune {
		if i < len(s.src) {
			return s.src[i]
		}
		return 0
	}

	if at(p) == '-' || at(p) == '+' {
		p++
	}
	intDigits := 0
	for isDigit(at(p)) {
		p++
		intDigits++
	}
	integer = true
	if at(p) == '.' {
		q := p + 1
		fracDigits := 0
		for isDigit(at(q)) {
			q++
			fracDigits++
		}
		if intDigits == 0 && fracDigits == 0 {
			return "", false, false
		}
		p = q
		integer = false
	} else if intDigits == 0 {
		return "", false, false
	}
	if allowExponent && (at(p) == 'e' || at(p) == 'E') {
		q := p + 1
		if at(q) == '-' || at(q) == '+' {
			q++
		}
		expDigits := 0
		for isDigit(at(q)) {
			q++
			expDigits++
		}
		if expDigits > 0 {
			p = q
			integer = false
		}
	}

	s.pos = p
	return string(s.src[start:p]), integer, true
}

// stringLiteral consumes a '"' or '\'' delimited string.
func (s *scanner) stringLiteral() (string, error) {
	quote := s.peek()
	if s.eof() || (quote != '"' && quote != '\'') {
		return "", s.errorf(s.pos, "string")
	}
	s.pos++

	var b strings.Builder
	for !s.eof() {
		r := s.src[s.pos]
		switch {
		case r == quote:
			s.pos++
			return b.String(), nil
		case r == '\\':
			if err := s.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
			s.pos++
		}
	}
	return "", s.errorf(s.pos, "closing quote")
}

// escape consumes a backslash sequence at the current position.
func (s *scanner) escape(b *strings.Builder) error {
	s.pos++ // backslash
	if s.eof() {
		return s.errorf(s.pos, "escape character")
	}
	r := s.src[s.pos]
	switch r {
	case 'b':
		b.WriteRune('\b')
	case 'f':
		b.WriteRune('\f')
	case 'n':
		b.WriteRune('\n')
	case 'r':
		b.WriteRune('\r')
	case 't':
		b.WriteRune('\t')
	case '"', '\'', '\\':
		b.WriteRune(r)
	case 'u':
		u, err := s.hex4(s.pos + 1)
		if err != nil {
			return err
		}
		s.pos += 4
		switch {
		case u >= 0xDC00 && u < 0xE000:
			return s.errorf(s.pos-3, "unpaired surrogate")
		case u >= 0xD800 && u < 0xDC00:
			// A high surrogate must be followed by a low surrogate escape.
			if s.pos+2 < len(s.src) && s.src[s.pos+1] == '\\' && s.src[s.pos+2] == 'u' {
				if lo, err := s.hex4(s.pos + 3); err == nil && lo >= 0xDC00 && lo < 0xE000 {
					b.WriteRune((u-0xD800)<<10 + (lo - 0xDC00) + 0x10000)
					s.pos += 7
					return nil
				}
			}
			return s.errorf(s.pos+1, "unpaired surrogate")
		}
		b.WriteRune(u)
	default:
		return s.errorf(s.pos, `one of b f n r t " ' \ u`)
	}
	s.pos++
	return nil
}

func (s *scanner) hex4(at int) (rune, error) {
	if at+4 > len(s.src) {
		return 0, s.errorf(min(at, len(s.src)), "4 hex digits")
	}
	n, err := strconv.ParseUint(string(s.src[at:at+4]), 16, 32)
	if err != nil {
		return 0, s.errorf(at, "4 hex digits")
	}
	return rune(n), nil
}
