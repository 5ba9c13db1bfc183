package query

import (
	"fmt"
	"strings"

	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/value"
)

// Operator keys.
const (
	OpGt       = "$gt"
	OpGte      = "$gte"
	OpLt       = "$lt"
	OpLte      = "$lte"
	OpBetween  = "$between"
	OpIn       = "$in"
	OpOr       = "$or"
	OpNe       = "$ne"
	OpLike     = "$like"
	OpContains = "$contains"
)

// Compile converts a filter document into a predicate.
//
// An empty or nil filter compiles to a nil Predicate; callers that need a
// concrete predicate use CompileOrAll. Errors are *UnsupportedOperatorError
// or *OperandShapeError.
func Compile(filter *value.Document) (Predicate, error) {
	return compileDocument("", filter)
}

// CompileOrAll is Compile with All substituted for an empty filter.
func CompileOrAll(filter *value.Document) (Predicate, error) {
	p, err := Compile(filter)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return All{}, nil
	}
	return p, nil
}

// CompileText parses filter text and compiles it. Blank text compiles to
// All. Parse and coercion errors are returned wrapped.
func CompileText(text string) (Predicate, error) {
	if strings.TrimSpace(text) == "" {
		return All{}, nil
	}
	doc, err := extjson.ParseDocument(text)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return CompileOrAll(doc)
}

// AndOf combines p and q with And. A nil operand is absent: when one side
// is nil the other is returned unchanged.
func AndOf(p, q Predicate) Predicate {
	switch {
	case p == nil:
		return q
	case q == nil:
		return p
	}
	return And{Left: p, Right: q}
}

// OrOf combines p and q with Or, treating nil operands like AndOf does.
func OrOf(p, q Predicate) Predicate {
	switch {
	case p == nil:
		return q
	case q == nil:
		return p
	}
	return Or{Left: p, Right: q}
}

func compileDocument(prefix string, doc *value.Document) (Predicate, error) {
	var result Predicate
	for _, f := range doc.Fields() {
		path := f.Key
		if prefix != "" {
			path = prefix + "." + f.Key
		}
		p, err := compileField(path, f.Value)
		if err != nil {
			return nil, err
		}
		result = AndOf(result, p)
	}
	return result, nil
}

// compileField compiles the condition v on path. v is an operator document,
// a sub-filter, or a literal.
func compileField(path string, v value.Value) (Predicate, error) {
	sub, ok := v.(*value.Document)
	if !ok {
		return Eq{Field: path, Value: orNull(v)}, nil
	}
	if sub.Len() == 1 {
		op := sub.Keys()[0]
		if strings.HasPrefix(op, "$") {
			operand, _ := sub.Get(op)
			return compileOperator(path, op, orNull(operand))
		}
	}
	return compileSubFilter(path, sub)
}

// compileSubFilter compiles sub with its keys nested under path. An empty
// sub-filter matches fields equal to the empty document.
func compileSubFilter(path string, sub *value.Document) (Predicate, error) {
	p, err := compileDocument(path, sub)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return Eq{Field: path, Value: value.NewDocument()}, nil
	}
	return p, nil
}

func compileOperator(path, op string, operand value.Value) (Predicate, error) {
	switch op {
	case OpGt:
		return Gt{Field: path, Value: operand}, nil
	case OpGte:
		return Gte{Field: path, Value: operand}, nil
	case OpLt:
		return Lt{Field: path, Value: operand}, nil
	case OpLte:
		return Lte{Field: path, Value: operand}, nil

	case OpBetween:
		arr, ok := operand.(value.Array)
		if !ok || len(arr) != 2 {
			return nil, &OperandShapeError{Path: path, Operator: op, Want: "an array of two values"}
		}
		return Between{Field: path, Low: orNull(arr[0]), High: orNull(arr[1])}, nil

	case OpIn:
		arr, ok := operand.(value.Array)
		if !ok || len(arr) == 0 {
			return nil, &OperandShapeError{Path: path, Operator: op, Want: "a non-empty array"}
		}
		values := make(value.Array, len(arr))
		for i, item := range arr {
			values[i] = orNull(item)
		}
		return In{Field: path, Values: values}, nil

	case OpLike:
		s, ok := operand.(value.String)
		if !ok {
			return nil, &OperandShapeError{Path: path, Operator: op, Want: "a string"}
		}
		return StartsWith{Field: path, Prefix: string(s)}, nil

	case OpContains:
		s, ok := operand.(value.String)
		if !ok {
			return nil, &OperandShapeError{Path: path, Operator: op, Want: "a string"}
		}
		return Contains{Field: path, Substring: string(s)}, nil

	case OpNe:
		return compileNotEqual(path, operand)

	case OpOr:
		return compileOr(path, operand)
	}
	return nil, &UnsupportedOperatorError{Path: path, Operator: op}
}

// compileNotEqual negates equality. For a document operand the field
// matches when it is null or fails the sub-filter.
func compileNotEqual(path string, operand value.Value) (Predicate, error) {
	if _, ok := operand.(*value.Document); !ok {
		return Not{Inner: Eq{Field: path, Value: operand}}, nil
	}
	sub, err := compileField(path, operand)
	if err != nil {
		return nil, err
	}
	return Or{Left: Eq{Field: path, Value: value.Null{}}, Right: Not{Inner: sub}}, nil
}

// compileOr folds the alternatives left to right. Sub-filter alternatives
// are guarded so a null field never satisfies them.
func compileOr(path string, operand value.Value) (Predicate, error) {
	arr, ok := operand.(value.Array)
	if !ok || len(arr) == 0 {
		return nil, &OperandShapeError{Path: path, Operator: OpOr, Want: "a non-empty array"}
	}

	var result Predicate
	for _, alt := range arr {
		if _, isDoc := alt.(*value.Document); !isDoc {
			result = OrOf(result, Eq{Field: path, Value: orNull(alt)})
			continue
		}
		sub, err := compileField(path, alt)
		if err != nil {
			return nil, err
		}
		guard := Not{Inner: Eq{Field: path, Value: value.Null{}}}
		result = OrOf(result, And{Left: guard, Right: sub})
	}
	return result, nil
}

func orNull(v value.Value) value.Value {
	if v == nil {
		return value.Null{}
	}
	return v
}
