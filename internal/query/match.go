package query

import (
	"strings"

	"github.com/roach88/litedocs/internal/value"
)

// Match reports whether doc satisfies p. A nil predicate matches every
// document.
//
// Fields are looked up by dot path and a missing field reads as Null.
// Range operators only match values of the same kind class as their bound
// (all numbers form one class) unless the bound is MinValue or MaxValue.
// Contains and StartsWith only match strings.
func Match(p Predicate, doc *value.Document) bool {
	switch t := p.(type) {
	case nil, All:
		return true
	case Eq:
		return value.Compare(lookup(doc, t.Field), t.Value) == 0
	case Gt:
		v := lookup(doc, t.Field)
		return ordered(v, t.Value) && value.Compare(v, t.Value) > 0
	case Gte:
		v := lookup(doc, t.Field)
		return ordered(v, t.Value) && value.Compare(v, t.Value) >= 0
	case Lt:
		v := lookup(doc, t.Field)
		return ordered(v, t.Value) && value.Compare(v, t.Value) < 0
	case Lte:
		v := lookup(doc, t.Field)
		return ordered(v, t.Value) && value.Compare(v, t.Value) <= 0
	case Between:
		v := lookup(doc, t.Field)
		return ordered(v, t.Low) && ordered(v, t.High) &&
			value.Compare(v, t.Low) >= 0 && value.Compare(v, t.High) <= 0
	case In:
		v := lookup(doc, t.Field)
		for _, candidate := range t.Values {
			if value.Compare(v, candidate) == 0 {
				return true
			}
		}
		return false
	case Contains:
		s, ok := lookup(doc, t.Field).(value.String)
		return ok && strings.Contains(string(s), t.Substring)
	case StartsWith:
		s, ok := lookup(doc, t.Field).(value.String)
		return ok && strings.HasPrefix(string(s), t.Prefix)
	case And:
		return Match(t.Left, doc) && Match(t.Right, doc)
	case Or:
		return Match(t.Left, doc) || Match(t.Right, doc)
	case Not:
		return !Match(t.Inner, doc)
	}
	return false
}

// Filter returns the documents of docs that satisfy p, in order.
func Filter(p Predicate, docs []*value.Document) []*value.Document {
	out := []*value.Document{}
	for _, d := range docs {
		if Match(p, d) {
			out = append(out, d)
		}
	}
	return out
}

func lookup(doc *value.Document, path string) value.Value {
	if v, ok := doc.Lookup(path); ok && v != nil {
		return v
	}
	return value.Null{}
}

func ordered(v, bound value.Value) bool {
	switch bound.(type) {
	case value.MinValue, value.MaxValue:
		return true
	case nil:
		return false
	}
	return value.SameClass(v, bound)
}
