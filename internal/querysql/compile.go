package querysql

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/value"
)

// ErrNotPushable is returned when no part of a predicate can be expressed
// in SQL. The caller falls back to scanning every document.
var ErrNotPushable = errors.New("predicate cannot be pushed down")

// numericSlack widens numeric bounds relative to their magnitude. Documents
// store Decimal values as JSON numbers, which SQLite reads as doubles.
const numericSlack = 1e-9

// Fragment is a compiled WHERE clause over the JSON column.
type Fragment struct {
	SQL    string
	Params []any

	// Exact is true when the rows selected by SQL are precisely the
	// documents the predicate matches. Otherwise SQL selects a superset
	// and every row must be rechecked with query.Match.
	Exact bool
}

// SQLCompiler compiles predicates to parameterized SQLite conditions over a
// column holding the JSON-compatible rendering of each document.
//
// Values are never interpolated; every literal and path is a ? parameter.
type SQLCompiler struct {
	Column string
}

// NewSQLCompiler returns a compiler for the body_json column.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Column: "body_json"}
}

// Compile converts p to a WHERE fragment. A nil predicate or All compiles
// to an exact "1 = 1". Conjuncts that cannot be expressed are dropped,
// making the fragment inexact; when nothing can be expressed the error is
// ErrNotPushable.
func (c *SQLCompiler) Compile(p query.Predicate) (Fragment, error) {
	if p == nil {
		return Fragment{SQL: "1 = 1", Exact: true}, nil
	}
	frag, ok := c.compilePredicate(p)
	if !ok {
		return Fragment{}, fmt.Errorf("compile %s: %w", p, ErrNotPushable)
	}
	return frag, nil
}

// Select builds the ordered document query for one collection. The first
// parameter is the collection id. LIMIT and OFFSET are only emitted for an
// exact fragment; for an inexact one the caller pages after rechecking.
//
// Rows are ordered by insertion sequence for deterministic paging.
func (c *SQLCompiler) Select(frag Fragment, collectionID int64, skip, limit int) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT body FROM documents WHERE collection_id = ?")
	params := []any{collectionID}
	if frag.SQL != "" && frag.SQL != "1 = 1" {
		b.WriteString(" AND (" + frag.SQL + ")")
		params = append(params, frag.Params...)
	}
	b.WriteString(" ORDER BY seq ASC")

	if frag.Exact && (limit > 0 || skip > 0) {
		if limit <= 0 {
			limit = -1
		}
		b.WriteString(" LIMIT ? OFFSET ?")
		params = append(params, limit, max(skip, 0))
	}
	return b.String(), params
}

// Count builds a COUNT query. Only meaningful for an exact fragment.
func (c *SQLCompiler) Count(frag Fragment, collectionID int64) (string, []any) {
	params := []any{collectionID}
	where := ""
	if frag.SQL != "" && frag.SQL != "1 = 1" {
		where = " AND (" + frag.SQL + ")"
		params = append(params, frag.Params...)
	}
	return "SELECT COUNT(*) FROM documents WHERE collection_id = ?" + where, params
}

func (c *SQLCompiler) compilePredicate(p query.Predicate) (Fragment, bool) {
	switch pred := p.(type) {
	case query.All:
		return Fragment{SQL: "1 = 1", Exact: true}, true
	case query.Eq:
		return c.compileEq(pred.Field, pred.Value)
	case query.Gt:
		return c.compileRange(pred.Field, pred.Value, ">")
	case query.Gte:
		return c.compileRange(pred.Field, pred.Value, ">=")
	case query.Lt:
		return c.compileRange(pred.Field, pred.Value, "<")
	case query.Lte:
		return c.compileRange(pred.Field, pred.Value, "<=")
	case query.Between:
		return c.compileBetween(pred)
	case query.In:
		return c.compileIn(pred)
	case query.Contains:
		return c.compileContains(pred)
	case query.StartsWith:
		return c.compileStartsWith(pred)
	case query.And:
		return c.compileAnd(pred)
	case query.Or:
		return c.compileOr(pred)
	case query.Not:
		return c.compileNot(pred)
	}
	return Fragment{}, false
}

// compileEq handles the literal kinds whose JSON rendering is a native
// JSON scalar. Other kinds render as marker objects and are not pushed.
func (c *SQLCompiler) compileEq(field string, v value.Value) (Fragment, bool) {
	path, ok := jsonPath(field)
	if !ok {
		return Fragment{}, false
	}

	switch t := v.(type) {
	case value.Null:
		return Fragment{
			SQL:    fmt.Sprintf("(json_type(%[1]s, ?) IS NULL OR json_type(%[1]s, ?) = 'null')", c.Column),
			Params: []any{path, path},
			Exact:  true,
		}, true

	case value.Boolean:
		kind := "false"
		if t {
			kind = "true"
		}
		return Fragment{
			SQL:    fmt.Sprintf("coalesce(json_type(%s, ?), 'null') = '%s'", c.Column, kind),
			Params: []any{path},
			Exact:  true,
		}, true

	case value.String:
		// Dates also render as JSON strings, so a match is rechecked.
		return Fragment{
			SQL:    fmt.Sprintf("(json_type(%[1]s, ?) = 'text' AND json_extract(%[1]s, ?) = ?)", c.Column),
			Params: []any{path, path, string(t)},
		}, true
	}

	f, ok := finite(v)
	if !ok {
		return Fragment{}, false
	}
	lo, hi := window(f)
	return Fragment{
		SQL:    fmt.Sprintf("(json_type(%[1]s, ?) IN ('integer', 'real') AND json_extract(%[1]s, ?) BETWEEN ? AND ?)", c.Column),
		Params: []any{path, path, lo, hi},
	}, true
}

// compileRange pushes string and numeric bounds. Non-finite doubles in
// documents render as marker objects and are kept for the recheck.
func (c *SQLCompiler) compileRange(field string, bound value.Value, op string) (Fragment, bool) {
	path, ok := jsonPath(field)
	if !ok {
		return Fragment{}, false
	}

	if s, isString := bound.(value.String); isString {
		return Fragment{
			SQL:    fmt.Sprintf("(json_type(%[1]s, ?) = 'text' AND json_extract(%[1]s, ?) %[2]s ?)", c.Column, op),
			Params: []any{path, path, string(s)},
		}, true
	}

	f, ok := finite(bound)
	if !ok {
		return Fragment{}, false
	}
	lo, hi := window(f)
	edge := lo
	if op == "<" || op == "<=" {
		edge = hi
	}
	cmp := strings.TrimSuffix(op, "=") + "="
	return Fragment{
		SQL: fmt.Sprintf("(json_type(%[1]s, ?) = 'object' OR (json_type(%[1]s, ?) IN ('integer', 'real') AND json_extract(%[1]s, ?) %[2]s ?))",
			c.Column, cmp),
		Params: []any{path, path, path, edge},
	}, true
}

func (c *SQLCompiler) compileBetween(b query.Between) (Fragment, bool) {
	low, ok := c.compileRange(b.Field, b.Low, ">=")
	if !ok {
		return Fragment{}, false
	}
	high, ok := c.compileRange(b.Field, b.High, "<=")
	if !ok {
		return Fragment{}, false
	}
	return Fragment{
		SQL:    low.SQL + " AND " + high.SQL,
		Params: append(low.Params, high.Params...),
	}, true
}

func (c *SQLCompiler) compileIn(in query.In) (Fragment, bool) {
	parts := make([]string, 0, len(in.Values))
	var params []any
	exact := true
	for _, v := range in.Values {
		frag, ok := c.compileEq(in.Field, v)
		if !ok {
			return Fragment{}, false
		}
		parts = append(parts, frag.SQL)
		params = append(params, frag.Params...)
		exact = exact && frag.Exact
	}
	if len(parts) == 0 {
		return Fragment{}, false
	}
	return Fragment{SQL: "(" + strings.Join(parts, " OR ") + ")", Params: params, Exact: exact}, true
}

func (c *SQLCompiler) compileContains(p query.Contains) (Fragment, bool) {
	path, ok := jsonPath(p.Field)
	if !ok {
		return Fragment{}, false
	}
	return Fragment{
		SQL:    fmt.Sprintf("(json_type(%[1]s, ?) = 'text' AND instr(json_extract(%[1]s, ?), ?) > 0)", c.Column),
		Params: []any{path, path, p.Substring},
	}, true
}

func (c *SQLCompiler) compileStartsWith(p query.StartsWith) (Fragment, bool) {
	path, ok := jsonPath(p.Field)
	if !ok {
		return Fragment{}, false
	}
	return Fragment{
		SQL:    fmt.Sprintf("(json_type(%[1]s, ?) = 'text' AND substr(json_extract(%[1]s, ?), 1, ?) = ?)", c.Column),
		Params: []any{path, path, utf8.RuneCountInString(p.Prefix), p.Prefix},
	}, true
}

// compileAnd keeps whichever sides can be pushed. Dropping a side keeps
// the result a superset but makes it inexact.
func (c *SQLCompiler) compileAnd(and query.And) (Fragment, bool) {
	left, lok := c.compilePredicate(and.Left)
	right, rok := c.compilePredicate(and.Right)
	switch {
	case lok && rok:
		return Fragment{
			SQL:    "(" + left.SQL + " AND " + right.SQL + ")",
			Params: append(left.Params, right.Params...),
			Exact:  left.Exact && right.Exact,
		}, true
	case lok:
		left.Exact = false
		return left, true
	case rok:
		right.Exact = false
		return right, true
	}
	return Fragment{}, false
}

func (c *SQLCompiler) compileOr(or query.Or) (Fragment, bool) {
	left, ok := c.compilePredicate(or.Left)
	if !ok {
		return Fragment{}, false
	}
	right, ok := c.compilePredicate(or.Right)
	if !ok {
		return Fragment{}, false
	}
	return Fragment{
		SQL:    "(" + left.SQL + " OR " + right.SQL + ")",
		Params: append(left.Params, right.Params...),
		Exact:  left.Exact && right.Exact,
	}, true
}

// compileNot only negates exact fragments; the complement of a superset
// could drop matching rows. Exact fragments never evaluate to NULL.
func (c *SQLCompiler) compileNot(not query.Not) (Fragment, bool) {
	inner, ok := c.compilePredicate(not.Inner)
	if !ok || !inner.Exact {
		return Fragment{}, false
	}
	return Fragment{SQL: "NOT (" + inner.SQL + ")", Params: inner.Params, Exact: true}, true
}

// jsonPath converts a dot path to a SQLite JSON path with every segment
// quoted, e.g. address.city -> $."address"."city".
func jsonPath(field string) (string, bool) {
	if field == "" || strings.ContainsAny(field, `"\`) {
		return "", false
	}
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range strings.Split(field, ".") {
		if seg == "" {
			return "", false
		}
		b.WriteString(`."` + seg + `"`)
	}
	return b.String(), true
}

// finite returns the numeric value of v as a float when v is a finite
// number.
func finite(v value.Value) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case value.Int32:
		f = float64(t)
	case value.Int64:
		f = float64(t)
	case value.Double:
		f = float64(t)
	case value.Decimal:
		f = t.InexactFloat64()
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func window(f float64) (lo, hi float64) {
	slack := max(math.Abs(f), 1) * numericSlack
	return f - slack, f + slack
}
