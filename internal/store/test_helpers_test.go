package store

import (
	"context"
	"path/filepath"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/roach88/litedocs/internal/testutil"
	"github.com/roach88/litedocs/internal/value"
)

// createTestStore opens a store in a temp dir with deterministic ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs()),
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedPeople inserts testutil.People into the "people" collection.
func seedPeople(t *testing.T, s *Store) *Collection {
	t.Helper()
	c := s.Collection("people")
	for _, doc := range testutil.People() {
		if _, err := c.Insert(context.Background(), doc); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}
	return c
}

// ids returns the _id of each document.
func ids(docs []*value.Document) []value.Value {
	out := make([]value.Value, 0, len(docs))
	for _, d := range docs {
		id, _ := d.Get("_id")
		out = append(out, id)
	}
	return out
}
