package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/litedocs/internal/value"
)

func TestPredicate_String(t *testing.T) {
	tests := []struct {
		p    Predicate
		want string
	}{
		{All{}, "all"},
		{Eq{Field: "name", Value: value.String("Ada")}, `name = "Ada"`},
		{Gt{Field: "age", Value: value.Int32(1)}, "age > Int(1)"},
		{Gte{Field: "age", Value: value.Int64(1)}, "age >= Long(1)"},
		{Lt{Field: "age", Value: value.Double(1.5)}, "age < Double(1.5)"},
		{Lte{Field: "age", Value: value.Null{}}, "age <= null"},
		{Between{Field: "age", Low: value.Int32(18), High: value.Int32(65)}, "age between [Int(18), Int(65)]"},
		{In{Field: "tags", Values: value.Array{value.String("a"), value.String("b")}}, `tags in ["a", "b"]`},
		{Contains{Field: "name", Substring: `a"b`}, `name contains "a\"b"`},
		{StartsWith{Field: "name", Prefix: "Gr"}, `name like "Gr"`},
		{Not{Inner: All{}}, "not(all)"},
		{
			Or{
				Left:  Eq{Field: "x", Value: value.Int32(1)},
				Right: And{Left: Not{Inner: Eq{Field: "x", Value: value.Null{}}}, Right: Gt{Field: "x", Value: value.Int32(5)}},
			},
			"(x = Int(1) or (not(x = null) and x > Int(5)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.String())
		})
	}
}

func TestPredicate_Sealed(t *testing.T) {
	var p Predicate = Eq{Field: "a", Value: value.Int32(1)}

	switch p.(type) {
	case Eq:
		// Expected
	case All, Gt, Gte, Lt, Lte, Between, In, Contains, StartsWith, And, Or, Not:
		t.Fatal("unexpected type")
	}
}

func TestWalk(t *testing.T) {
	p := And{
		Left:  Or{Left: Eq{Field: "a"}, Right: Not{Inner: Gt{Field: "b"}}},
		Right: Contains{Field: "a"},
	}

	var visited []string
	Walk(p, func(n Predicate) bool {
		switch n.(type) {
		case And:
			visited = append(visited, "and")
		case Or:
			visited = append(visited, "or")
		case Not:
			visited = append(visited, "not")
		default:
			f, _ := fieldOf(n)
			visited = append(visited, f)
		}
		return true
	})
	assert.Equal(t, []string{"and", "or", "a", "not", "b", "a"}, visited)

	var count int
	Walk(p, func(n Predicate) bool {
		count++
		_, isOr := n.(Or)
		return !isOr
	})
	assert.Equal(t, 3, count, "and, or (children skipped), contains")

	Walk(nil, func(Predicate) bool {
		t.Fatal("nil predicate must not be visited")
		return true
	})
}

func TestFields(t *testing.T) {
	p := mustCompile(t, `{"a": 1, "b": {"c": {"$or": [1, {"$gt": 2}]}}, "d.x": 3}`)

	assert.Equal(t, []string{"a", "b.c", "d.x"}, Fields(p))
	assert.Empty(t, Fields(All{}))
	assert.NotNil(t, Fields(nil))
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth(nil))
	assert.Equal(t, 1, Depth(All{}))
	assert.Equal(t, 3, Depth(mustCompile(t, `{"x": {"$ne": {"$lt": 3}}}`)))
}

func TestDescribe(t *testing.T) {
	p := mustCompile(t, `{"name": "Ada", "age": {"$ne": 3}}`)

	want := "and\n" +
		"  name = \"Ada\"\n" +
		"  not\n" +
		"    age = Int(3)"
	assert.Equal(t, want, Describe(p))
	assert.Equal(t, "all", Describe(nil))
}
