package query

import (
	"fmt"
	"strings"

	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/value"
)

// Predicate is a node of a compiled filter.
//
// This is a sealed interface. Only types in this package implement it:
//   - All: matches every document
//   - Eq, Gt, Gte, Lt, Lte: field compared with a literal
//   - Between: inclusive range
//   - In: field equals any literal of a set
//   - Contains, StartsWith: string matching
//   - And, Or, Not: boolean combinators
type Predicate interface {
	fmt.Stringer
	predicateNode() // Sealed
}

// All matches every document.
type All struct{}

// Eq matches when the field equals Value. A missing field equals Null.
type Eq struct {
	Field string
	Value value.Value
}

// Gt matches when the field is greater than Value.
type Gt struct {
	Field string
	Value value.Value
}

// Gte matches when the field is greater than or equal to Value.
type Gte struct {
	Field string
	Value value.Value
}

// Lt matches when the field is less than Value.
type Lt struct {
	Field string
	Value value.Value
}

// Lte matches when the field is less than or equal to Value.
type Lte struct {
	Field string
	Value value.Value
}

// Between matches Low <= field <= High.
type Between struct {
	Field string
	Low   value.Value
	High  value.Value
}

// In matches when the field equals any of Values.
type In struct {
	Field  string
	Values value.Array
}

// Contains matches string fields containing Substring.
type Contains struct {
	Field     string
	Substring string
}

// StartsWith matches string fields beginning with Prefix.
type StartsWith struct {
	Field  string
	Prefix string
}

// And matches when both sides match.
type And struct {
	Left  Predicate
	Right Predicate
}

// Or matches when either side matches.
type Or struct {
	Left  Predicate
	Right Predicate
}

// Not inverts Inner.
type Not struct {
	Inner Predicate
}

func (All) predicateNode()        {}
func (Eq) predicateNode()         {}
func (Gt) predicateNode()         {}
func (Gte) predicateNode()        {}
func (Lt) predicateNode()         {}
func (Lte) predicateNode()        {}
func (Between) predicateNode()    {}
func (In) predicateNode()         {}
func (Contains) predicateNode()   {}
func (StartsWith) predicateNode() {}
func (And) predicateNode()        {}
func (Or) predicateNode()         {}
func (Not) predicateNode()        {}

func literal(v value.Value) string {
	return extjson.Render(v, extjson.Friendly)
}

func (All) String() string          { return "all" }
func (p Eq) String() string         { return p.Field + " = " + literal(p.Value) }
func (p Gt) String() string         { return p.Field + " > " + literal(p.Value) }
func (p Gte) String() string        { return p.Field + " >= " + literal(p.Value) }
func (p Lt) String() string         { return p.Field + " < " + literal(p.Value) }
func (p Lte) String() string        { return p.Field + " <= " + literal(p.Value) }
func (p Contains) String() string   { return p.Field + " contains " + literal(value.String(p.Substring)) }
func (p StartsWith) String() string { return p.Field + " like " + literal(value.String(p.Prefix)) }
func (p Not) String() string        { return "not(" + p.Inner.String() + ")" }

func (p Between) String() string {
	return fmt.Sprintf("%s between [%s, %s]", p.Field, literal(p.Low), literal(p.High))
}

func (p In) String() string {
	return p.Field + " in " + literal(p.Values)
}

func (p And) String() string {
	return "(" + p.Left.String() + " and " + p.Right.String() + ")"
}

func (p Or) String() string {
	return "(" + p.Left.String() + " or " + p.Right.String() + ")"
}

// Walk visits p and its descendants depth-first, parents before children.
// Children of a node are skipped when fn returns false for it.
func Walk(p Predicate, fn func(Predicate) bool) {
	if p == nil || !fn(p) {
		return
	}
	switch t := p.(type) {
	case And:
		Walk(t.Left, fn)
		Walk(t.Right, fn)
	case Or:
		Walk(t.Left, fn)
		Walk(t.Right, fn)
	case Not:
		Walk(t.Inner, fn)
	}
}

// Fields returns the distinct field paths referenced by p, in first-seen
// order.
func Fields(p Predicate) []string {
	seen := make(map[string]bool)
	fields := []string{}
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	Walk(p, func(n Predicate) bool {
		if f, ok := fieldOf(n); ok {
			add(f)
		}
		return true
	})
	return fields
}

func fieldOf(p Predicate) (string, bool) {
	switch t := p.(type) {
	case Eq:
		return t.Field, true
	case Gt:
		return t.Field, true
	case Gte:
		return t.Field, true
	case Lt:
		return t.Field, true
	case Lte:
		return t.Field, true
	case Between:
		return t.Field, true
	case In:
		return t.Field, true
	case Contains:
		return t.Field, true
	case StartsWith:
		return t.Field, true
	}
	return "", false
}

// Depth returns the height of the predicate tree. A nil predicate has
// depth zero.
func Depth(p Predicate) int {
	switch t := p.(type) {
	case And:
		return 1 + max(Depth(t.Left), Depth(t.Right))
	case Or:
		return 1 + max(Depth(t.Left), Depth(t.Right))
	case Not:
		return 1 + Depth(t.Inner)
	case nil:
		return 0
	}
	return 1
}

// Describe renders p across several lines, one node per line, indented by
// nesting level. Used by the explain command.
func Describe(p Predicate) string {
	var b strings.Builder
	describe(&b, p, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func describe(b *strings.Builder, p Predicate, level int) {
	pad := strings.Repeat("  ", level)
	switch t := p.(type) {
	case And:
		b.WriteString(pad + "and\n")
		describe(b, t.Left, level+1)
		describe(b, t.Right, level+1)
	case Or:
		b.WriteString(pad + "or\n")
		describe(b, t.Left, level+1)
		describe(b, t.Right, level+1)
	case Not:
		b.WriteString(pad + "not\n")
		describe(b, t.Inner, level+1)
	case nil:
		b.WriteString(pad + "all\n")
	default:
		b.WriteString(pad + t.String() + "\n")
	}
}
