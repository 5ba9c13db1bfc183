package explorer

import (
	"context"
	"errors"

	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/store"
	"github.com/roach88/litedocs/internal/value"
)

// ErrQueryRunning is returned by Query.Run when the query is already
// running.
var ErrQueryRunning = errors.New("query is already running")

// Collection is the storage a Query reads and a Session edits.
type Collection interface {
	Name() string
	Count(ctx context.Context, p query.Predicate) (int, error)
	Find(ctx context.Context, p query.Predicate, skip, limit int) ([]*value.Document, error)
	Insert(ctx context.Context, doc *value.Document) (value.Value, error)
	Upsert(ctx context.Context, doc *value.Document) (bool, error)
	Delete(ctx context.Context, id value.Value) (bool, error)
}

// Database is a set of named collections.
type Database interface {
	CollectionNames(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string) error
	RenameCollection(ctx context.Context, oldName, newName string) error
	DropCollection(ctx context.Context, name string) error
	Collection(name string) Collection
}

// StoreDatabase adapts a store.Store to Database.
func StoreDatabase(s *store.Store) Database {
	return storeDatabase{s}
}

type storeDatabase struct {
	*store.Store
}

func (d storeDatabase) Collection(name string) Collection {
	return d.Store.Collection(name)
}
