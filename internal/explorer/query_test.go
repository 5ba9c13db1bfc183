package explorer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/store"
	"github.com/roach88/litedocs/internal/testutil"
	"github.com/roach88/litedocs/internal/value"
)

func openPeopleDB(t *testing.T) Database {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "explorer.db"),
		store.WithIDGenerator(testutil.NewSequentialIDs()),
		store.WithTracerProvider(tracenoop.NewTracerProvider()),
		store.WithMeterProvider(metricnoop.NewMeterProvider()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := s.Collection("people")
	for _, doc := range testutil.People() {
		_, err := c.Insert(context.Background(), doc)
		require.NoError(t, err)
	}
	return StoreDatabase(s)
}

func resultIDs(q *Query) []value.Value {
	out := []value.Value{}
	for _, doc := range q.Results() {
		id, _ := doc.Get("_id")
		out = append(out, id)
	}
	return out
}

func int32s(ns ...int32) []value.Value {
	out := []value.Value{}
	for _, n := range ns {
		out = append(out, value.Int32(n))
	}
	return out
}

func TestQuery_Paging(t *testing.T) {
	db := openPeopleDB(t)

	tests := []struct {
		name      string
		filter    string
		pageSize  int
		page      int
		wantIDs   []value.Value
		wantCount int
		wantPages int
	}{
		{"all first page", ``, 2, 1, int32s(1, 2), 5, 3},
		{"all middle page", ``, 2, 2, int32s(3, 4), 5, 3},
		{"all last page", ``, 2, 3, int32s(5), 5, 3},
		{"page past end", ``, 2, 9, int32s(), 5, 3},
		{"filtered", `{"address.city": "London"}`, 1, 2, int32s(5), 2, 2},
		{"nothing matches", `{"name": "Nobody"}`, 10, 1, int32s(), 0, 0},
		{"defaults", `{}`, 0, 0, int32s(1, 2, 3, 4, 5), 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(db.Collection("people"))
			q.Filter = tt.filter
			q.PageSize = tt.pageSize
			q.Page = tt.page

			require.NoError(t, q.Run(context.Background(), false))
			assert.Equal(t, tt.wantIDs, resultIDs(q))
			assert.Equal(t, tt.wantCount, q.Count())
			assert.Equal(t, tt.wantPages, q.PageCount())
		})
	}
}

func TestQuery_CountOnly(t *testing.T) {
	db := openPeopleDB(t)
	q := NewQuery(db.Collection("people"))
	q.Filter = `{"age": {"$gt": 40}}`

	require.NoError(t, q.Run(context.Background(), true))
	assert.Equal(t, 3, q.Count())
	assert.Zero(t, q.PageCount())
	assert.Empty(t, q.Results())
	assert.Empty(t, q.Text())
}

func TestQuery_FailedRunKeepsPreviousResults(t *testing.T) {
	db := openPeopleDB(t)
	q := NewQuery(db.Collection("people"))
	q.Filter = `{"name": "Ada"}`
	require.NoError(t, q.Run(context.Background(), false))
	before := q.Text()

	tests := []struct {
		filter string
		check  func(error) bool
	}{
		{`{"name": `, extjson.IsParseError},
		{`{"_id": {"$oid": "nothex"}}`, extjson.IsCoercionError},
		{`{"name": {"$regex": "A"}}`, query.IsUnsupportedOperator},
		{`{"age": {"$in": []}}`, query.IsOperandShape},
	}
	for _, tt := range tests {
		q.Filter = tt.filter
		err := q.Run(context.Background(), false)
		require.Error(t, err, tt.filter)
		assert.True(t, tt.check(err), "filter %s: unexpected error %v", tt.filter, err)
		assert.Equal(t, before, q.Text())
		assert.Equal(t, int32s(1), resultIDs(q))
		assert.Equal(t, 1, q.Count())
	}
}

func TestQuery_DocumentAt(t *testing.T) {
	db := openPeopleDB(t)
	q := NewQuery(db.Collection("people"))
	q.Format = extjson.Friendly
	require.NoError(t, q.Run(context.Background(), false))

	text := q.Text()
	lines := strings.SplitAfter(text, "\n")
	require.Len(t, lines, 6) // five documents and a trailing empty string

	at := func(caret int) value.Value {
		doc, ok := q.DocumentAt(caret)
		if !ok {
			return nil
		}
		id, _ := doc.Get("_id")
		return id
	}

	first := len(lines[0]) - 1 // offset of the first newline
	assert.Equal(t, value.Int32(1), at(0))
	assert.Equal(t, value.Int32(1), at(first))
	assert.Equal(t, value.Int32(2), at(first+1))
	assert.Equal(t, value.Int32(3), at(strings.Index(text, "Linus")))
	assert.Equal(t, value.Int32(5), at(len(text)-1))
	assert.Nil(t, at(len(text)))
}

func TestQuery_DocumentAt_NoResults(t *testing.T) {
	q := NewQuery(nil)
	_, ok := q.DocumentAt(0)
	assert.False(t, ok)
}

type blockingCollection struct {
	Collection
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCollection) Name() string { return "slow" }

func (b *blockingCollection) Count(ctx context.Context, p query.Predicate) (int, error) {
	close(b.entered)
	<-b.release
	return 0, nil
}

func (b *blockingCollection) Find(ctx context.Context, p query.Predicate, skip, limit int) ([]*value.Document, error) {
	return []*value.Document{}, nil
}

func TestQuery_RefusesOverlappingRuns(t *testing.T) {
	coll := &blockingCollection{entered: make(chan struct{}), release: make(chan struct{})}
	q := NewQuery(coll)

	done := make(chan error, 1)
	go func() { done <- q.Run(context.Background(), false) }()
	<-coll.entered

	assert.ErrorIs(t, q.Run(context.Background(), false), ErrQueryRunning)

	close(coll.release)
	require.NoError(t, <-done)

	// The flag is cleared once the first run returns.
	coll.entered = make(chan struct{})
	coll.release = make(chan struct{})
	close(coll.release)
	assert.NoError(t, q.Run(context.Background(), false))
}
