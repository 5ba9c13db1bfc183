package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/testutil"
	"github.com/roach88/litedocs/internal/value"
)

func TestInsert_AssignsObjectIDFirst(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := s.Collection("things")

	doc := value.NewDocument(value.F("name", value.String("x")))
	id, err := c.Insert(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, testutil.IDFor(1), id)
	assert.Equal(t, []string{"_id", "name"}, doc.Keys())

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, value.Equal(doc, got))
}

func TestInsert_CreatesCollection(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, err := s.Collection("fresh").Insert(ctx, testutil.Person(1, "Ada", 36, "London"))
	require.NoError(t, err)

	names, err := s.CollectionNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names)
}

func TestInsert_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	_, err := c.Insert(ctx, testutil.Person(1, "Other", 1, "Nowhere"))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestInsert_NumericallyEqualIDsCollide(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := s.Collection("nums")

	_, err := c.Insert(ctx, value.NewDocument(value.F("_id", value.Int32(7))))
	require.NoError(t, err)

	for _, id := range []value.Value{
		value.Int64(7),
		value.Double(7),
		value.MustDecimal("7.00"),
	} {
		_, err := c.Insert(ctx, value.NewDocument(value.F("_id", id)))
		assert.ErrorIs(t, err, ErrDuplicateID, "id %v", id)
	}

	// The string "7" is a different id.
	_, err = c.Insert(ctx, value.NewDocument(value.F("_id", value.String("7"))))
	assert.NoError(t, err)
}

func TestInsert_InvalidID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := s.Collection("bad")

	for _, id := range []value.Value{
		value.Null{},
		value.MinValue{},
		value.MaxValue{},
		value.NewDocument(),
		value.Array{value.Int32(1)},
	} {
		_, err := c.Insert(ctx, value.NewDocument(value.F("_id", id)))
		assert.ErrorIs(t, err, ErrInvalidID, "id kind %s", id.Kind())
	}

	_, err := c.Insert(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestInsert_RejectsDateOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	late := value.NewDateTime(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC))
	nested := value.NewDocument(
		value.F("_id", value.Int32(10)),
		value.F("events", value.Array{
			value.NewDocument(value.F("at", late)),
		}),
	)

	_, err := c.Insert(ctx, nested)
	require.ErrorIs(t, err, ErrInvalidDocument)
	assert.Contains(t, err.Error(), "events.0.at")

	_, err = c.Upsert(ctx, value.NewDocument(value.F("_id", value.Int32(11)), value.F("at", late)))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	err = c.Update(ctx, value.NewDocument(value.F("_id", value.Int32(1)), value.F("at", late)))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	// Nothing was written, so the collection still reads back.
	docs, err := c.Find(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 5)
	_, err = c.Get(ctx, value.Int32(1))
	require.NoError(t, err)
}

func TestInsert_FailureLeavesDocumentUntouched(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := s.Collection("things")

	// Take the id the generator will hand out next.
	_, err := c.Insert(ctx, value.NewDocument(value.F("_id", testutil.IDFor(1))))
	require.NoError(t, err)

	doc := value.NewDocument(value.F("name", value.String("x")))
	_, err = c.Insert(ctx, doc)
	require.ErrorIs(t, err, ErrDuplicateID)

	assert.False(t, doc.Has("_id"))
	assert.Equal(t, []string{"name"}, doc.Keys())

	// A retry gets the next id.
	id, err := c.Insert(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, testutil.IDFor(2), id)
	assert.Equal(t, []string{"_id", "name"}, doc.Keys())
}

func TestGet_RoundTripsEveryKind(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := s.Collection("kinds")

	doc := testutil.SampleDocument()
	doc.Set("tiny", value.Double(1e-20))
	doc.Set("precise", value.MustDecimal("0.1234567890123456789012345678"))
	doc.Set("nan", value.Double(math.NaN()))

	id, err := c.Insert(ctx, doc)
	require.NoError(t, err)

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, value.Equal(doc, got), "stored document differs")
}

func TestGet_NotFound(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	_, err := c.Get(ctx, value.Int32(99))
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = s.Collection("missing").Get(ctx, value.Int32(1))
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	changed := testutil.Person(3, "Linus", 29, "Portland")
	require.NoError(t, c.Update(ctx, changed))

	got, err := c.Get(ctx, value.Int32(3))
	require.NoError(t, err)
	assert.True(t, value.Equal(changed, got))

	// Update keeps insertion order.
	docs, err := c.Find(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{
		value.Int32(1), value.Int32(2), value.Int32(3), value.Int32(4), value.Int32(5),
	}, ids(docs))
}

func TestUpdate_Errors(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	err := c.Update(ctx, testutil.Person(99, "Nobody", 0, ""))
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	err = c.Update(ctx, value.NewDocument(value.F("name", value.String("no id"))))
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	inserted, err := c.Upsert(ctx, testutil.Person(2, "Grace Hopper", 45, "Arlington"))
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = c.Upsert(ctx, testutil.Person(6, "Edsger", 72, "Austin"))
	require.NoError(t, err)
	assert.True(t, inserted)

	got, err := c.Get(ctx, value.Int32(2))
	require.NoError(t, err)
	name, _ := got.Get("name")
	assert.Equal(t, value.String("Grace Hopper"), name)

	n, err := c.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestUpsert_WithoutIDInserts(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := s.Collection("things")

	doc := value.NewDocument(value.F("k", value.Int32(1)))
	inserted, err := c.Upsert(ctx, doc)
	require.NoError(t, err)
	assert.True(t, inserted)

	id, ok := doc.Get("_id")
	require.True(t, ok)
	assert.Equal(t, testutil.IDFor(1), id)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	deleted, err := c.Delete(ctx, value.Int32(4))
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(ctx, value.Int32(4))
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = c.Delete(ctx, value.Null{})
	assert.ErrorIs(t, err, ErrInvalidID)

	n, err := c.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestFind_AgreesWithMatch(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	filters := []string{
		``,
		`{}`,
		`{"name": "Ada"}`,
		`{"age": {"$gt": 40}}`,
		`{"age": {"$between": [30, 45]}}`,
		`{"address.city": "London"}`,
		`{"address": {"city": "New York"}}`,
		`{"name": {"$in": ["Ada", "Alan", "Zed"]}}`,
		`{"name": {"$like": "A"}}`,
		`{"name": {"$contains": "ar"}}`,
		`{"age": {"$ne": 36}}`,
		`{"age": {"$or": [28, {"$gte": 50}]}}`,
		`{"missing": null}`,
		`{"missing": {"$ne": null}}`,
		`{"age": {"$lt": "text"}}`,
		`{"_id": {"$lte": 2}, "address.city": "London"}`,
	}

	for _, filter := range filters {
		t.Run(filter, func(t *testing.T) {
			p, err := query.CompileText(filter)
			require.NoError(t, err)

			docs, err := c.Find(ctx, p, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, ids(query.Filter(p, testutil.People())), ids(docs))

			n, err := c.Count(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, len(docs), n)
		})
	}
}

func TestFind_Paging(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedPeople(t, s)

	tests := []struct {
		name        string
		filter      string
		skip, limit int
		want        []int32
	}{
		{"all first page", ``, 0, 2, []int32{1, 2}},
		{"all second page", ``, 2, 2, []int32{3, 4}},
		{"all last page", ``, 4, 2, []int32{5}},
		{"all past end", ``, 10, 2, []int32{}},
		{"all skip only", ``, 3, 0, []int32{4, 5}},
		{"rechecked first page", `{"age": {"$gt": 30}}`, 0, 2, []int32{1, 2}},
		{"rechecked second page", `{"age": {"$gt": 30}}`, 2, 2, []int32{4, 5}},
		{"rechecked past end", `{"age": {"$gt": 30}}`, 4, 2, []int32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := query.CompileText(tt.filter)
			require.NoError(t, err)

			docs, err := c.Find(ctx, p, tt.skip, tt.limit)
			require.NoError(t, err)

			want := make([]value.Value, 0, len(tt.want))
			for _, id := range tt.want {
				want = append(want, value.Int32(id))
			}
			assert.Equal(t, want, ids(docs))
		})
	}
}

func TestFind_MissingCollection(t *testing.T) {
	s := createTestStore(t)

	docs, err := s.Collection("missing").Find(context.Background(), query.All{}, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	n, err := s.Collection("missing").Count(context.Background(), query.All{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFind_UnpushablePredicate(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := s.Collection("ids")

	oid := value.MustObjectID("c969ce7c86ebf1670512579b")
	_, err := c.Insert(ctx, value.NewDocument(value.F("_id", value.Int32(1)), value.F("ref", oid)))
	require.NoError(t, err)
	_, err = c.Insert(ctx, value.NewDocument(value.F("_id", value.Int32(2)), value.F("ref", testutil.IDFor(9))))
	require.NoError(t, err)

	docs, err := c.Find(ctx, query.Eq{Field: "ref", Value: oid}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Int32(1)}, ids(docs))
}

func TestIDKey(t *testing.T) {
	tests := []struct {
		name string
		id   value.Value
		want string
	}{
		{"int32", value.Int32(42), "n:42"},
		{"int64", value.Int64(-42), "n:-42"},
		{"double whole", value.Double(42), "n:42"},
		{"double fraction", value.Double(0.5), "n:0.5"},
		{"decimal trailing zeros", value.MustDecimal("42.000"), "n:42"},
		{"string", value.String("42"), "s:42"},
		{"empty string", value.String(""), "s:"},
		{"bool", value.Boolean(true), "true"},
		{"objectid", testutil.IDFor(1), `ObjectId("000000000000000000000001")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idKey(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := idKey(nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

