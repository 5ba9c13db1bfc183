package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/value"
)

// DefaultPageSize is used when a Query has no positive PageSize.
const DefaultPageSize = 20

// Query is a paged filter over one collection.
//
// Filter, PageSize, Page and Format are read at the start of each Run and
// must not be changed while a run is in progress.
type Query struct {
	Filter   string
	PageSize int
	Page     int // 1-based
	Format   extjson.Format

	log     *slog.Logger
	running atomic.Bool

	mu        sync.RWMutex
	coll      Collection
	count     int
	pageCount int
	results   []*value.Document
	text      string
	anchors   []extjson.Anchor
}

// NewQuery returns a query over coll showing the first page of every
// document.
func NewQuery(coll Collection) *Query {
	return &Query{
		PageSize: DefaultPageSize,
		Page:     1,
		Format:   extjson.Friendly | extjson.Indent,
		log:      slog.Default(),
		coll:     coll,
		results:  []*value.Document{},
	}
}

// Collection returns the name of the queried collection.
func (q *Query) Collection() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.coll.Name()
}

func (q *Query) setCollection(coll Collection) {
	q.mu.Lock()
	q.coll = coll
	q.mu.Unlock()
}

// Run evaluates the query. With countOnly it only refreshes Count.
//
// Returns ErrQueryRunning if another Run on q has not finished.
func (q *Query) Run(ctx context.Context, countOnly bool) error {
	if !q.running.CompareAndSwap(false, true) {
		return ErrQueryRunning
	}
	defer q.running.Store(false)

	q.mu.RLock()
	coll := q.coll
	q.mu.RUnlock()

	p, err := query.CompileText(q.Filter)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	count, err := coll.Count(ctx, p)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	if countOnly {
		q.mu.Lock()
		q.count = count
		q.mu.Unlock()
		return nil
	}

	size, page := q.paging()
	docs, err := coll.Find(ctx, p, size*(page-1), size)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	text, anchors := extjson.RenderResults(docs, q.Format)

	q.mu.Lock()
	q.count = count
	q.pageCount = pageCount(count, size)
	q.results = docs
	q.text = text
	q.anchors = anchors
	q.mu.Unlock()

	q.log.Debug("query run",
		"collection", coll.Name(),
		"predicate", p.String(),
		"count", count,
		"page", page,
		"returned", len(docs),
	)
	return nil
}

func (q *Query) paging() (size, page int) {
	size, page = q.PageSize, q.Page
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return size, page
}

func pageCount(count, size int) int {
	return (count + size - 1) / size
}

// Count returns the number of matching documents from the last run.
func (q *Query) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.count
}

// PageCount returns the number of pages from the last full run.
func (q *Query) PageCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pageCount
}

// Results returns the documents of the current page.
func (q *Query) Results() []*value.Document {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*value.Document, len(q.results))
	copy(out, q.results)
	return out
}

// Text returns the rendered results, one document per line group.
func (q *Query) Text() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.text
}

// DocumentAt returns the result document whose text contains the rune
// offset caret. A caret just past the last character of a document still
// belongs to that document.
func (q *Query) DocumentAt(caret int) (*value.Document, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	id, ok := extjson.DocumentIDAt(q.anchors, caret)
	if !ok {
		return nil, false
	}
	for _, doc := range q.results {
		docID, _ := doc.Get("_id")
		if value.Equal(docID, id) {
			return doc, true
		}
	}
	return nil, false
}
