package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/value"
)

// Session is the open state of one database: its open queries and the
// edits that keep them fresh.
type Session struct {
	db       Database
	log      *slog.Logger
	pageSize int
	format   extjson.Format

	mu      sync.Mutex
	queries []*Query
}

// Option configures NewSession.
type Option func(*Session)

// WithLogger sets the session logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithPageSize sets the page size of queries opened by the session.
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithFormat sets the results format of queries opened by the session.
func WithFormat(f extjson.Format) Option {
	return func(s *Session) { s.format = f }
}

// NewSession opens a session over db.
func NewSession(db Database, opts ...Option) *Session {
	s := &Session{
		db:       db,
		log:      slog.Default(),
		pageSize: DefaultPageSize,
		format:   extjson.Friendly | extjson.Indent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collections returns the collection names of the database.
func (s *Session) Collections(ctx context.Context) ([]string, error) {
	return s.db.CollectionNames(ctx)
}

// AddCollection creates an empty collection.
func (s *Session) AddCollection(ctx context.Context, name string) error {
	if err := s.db.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("add collection: %w", err)
	}
	return nil
}

// RenameCollection renames a collection. Open queries on it follow the
// new name.
func (s *Session) RenameCollection(ctx context.Context, oldName, newName string) error {
	if err := s.db.RenameCollection(ctx, oldName, newName); err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	coll := s.db.Collection(newName)
	for _, q := range s.queriesOn(oldName) {
		q.setCollection(coll)
	}
	return nil
}

// DropCollection deletes a collection and closes its open queries.
func (s *Session) DropCollection(ctx context.Context, name string) error {
	if err := s.db.DropCollection(ctx, name); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	for _, q := range s.queriesOn(name) {
		s.CloseQuery(q)
	}
	return nil
}

// OpenQuery opens a query showing the first page of a collection. The
// query is not run.
func (s *Session) OpenQuery(collection string) *Query {
	q := NewQuery(s.db.Collection(collection))
	q.PageSize = s.pageSize
	q.Format = s.format
	q.log = s.log

	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	return q
}

// CloseQuery forgets q. Edits no longer re-run it.
func (s *Session) CloseQuery(q *Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = slices.DeleteFunc(s.queries, func(o *Query) bool { return o == q })
}

// Queries returns the open queries in the order they were opened.
func (s *Session) Queries() []*Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queries)
}

// AddDocument parses text as a document and inserts it. Returns the
// document's _id.
func (s *Session) AddDocument(ctx context.Context, collection, text string) (value.Value, error) {
	doc, err := extjson.ParseDocument(text)
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}
	id, err := s.db.Collection(collection).Insert(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}
	s.refresh(ctx, collection)
	return id, nil
}

// SaveDocument parses text as a document and upserts it by _id. Reports
// whether the document was inserted.
func (s *Session) SaveDocument(ctx context.Context, collection, text string) (bool, error) {
	doc, err := extjson.ParseDocument(text)
	if err != nil {
		return false, fmt.Errorf("save document: %w", err)
	}
	inserted, err := s.db.Collection(collection).Upsert(ctx, doc)
	if err != nil {
		return false, fmt.Errorf("save document: %w", err)
	}
	s.refresh(ctx, collection)
	return inserted, nil
}

// RemoveDocument deletes doc by its _id. Reports whether it existed.
func (s *Session) RemoveDocument(ctx context.Context, collection string, doc *value.Document) (bool, error) {
	id, ok := doc.Get("_id")
	if !ok {
		id = value.Null{}
	}
	deleted, err := s.db.Collection(collection).Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove document: %w", err)
	}
	s.refresh(ctx, collection)
	return deleted, nil
}

// refresh re-runs the open queries on collection. The edit has already
// been committed, so failures are logged rather than returned.
func (s *Session) refresh(ctx context.Context, collection string) {
	for _, q := range s.queriesOn(collection) {
		err := q.Run(ctx, false)
		switch {
		case err == nil:
		case errors.Is(err, ErrQueryRunning):
			s.log.Debug("query refresh skipped", "collection", collection, "filter", q.Filter)
		default:
			s.log.Warn("query refresh failed", "collection", collection, "filter", q.Filter, "error", err)
		}
	}
}

func (s *Session) queriesOn(collection string) []*Query {
	name := s.db.Collection(collection).Name()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Query
	for _, q := range s.queries {
		if q.Collection() == name {
			out = append(out, q)
		}
	}
	return out
}
