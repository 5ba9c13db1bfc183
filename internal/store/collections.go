package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// normalizeName returns the canonical (NFC, trimmed) form of a collection
// name, so visually identical names cannot coexist.
func normalizeName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" || strings.HasPrefix(n, "$") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}

// CollectionNames returns every collection name in byte order.
//
// Returns an empty slice (not nil) for an empty database.
func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM collections
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return names, nil
}

// CreateCollection adds an empty collection. Returns ErrCollectionExists
// when the name is taken.
func (s *Store) CreateCollection(ctx context.Context, name string) (err error) {
	ctx, span := s.tel.start(ctx, "create_collection", name)
	defer func() { s.tel.end(ctx, span, "create_collection", name, err) }()

	n, err := normalizeName(name)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`, n)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("create collection %q: %w", n, ErrCollectionExists)
	}

	s.log.Info("collection created", "collection", n)
	return nil
}

// RenameCollection renames oldName to newName, keeping its documents.
func (s *Store) RenameCollection(ctx context.Context, oldName, newName string) (err error) {
	ctx, span := s.tel.start(ctx, "rename_collection", oldName)
	defer func() { s.tel.end(ctx, span, "rename_collection", oldName, err) }()

	from, err := normalizeName(oldName)
	if err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	to, err := normalizeName(newName)
	if err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	if from == to {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rename collection: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, ok, err := collectionID(ctx, tx, to); err != nil {
		return fmt.Errorf("rename collection: %w", err)
	} else if ok {
		return fmt.Errorf("rename collection %q: %w", to, ErrCollectionExists)
	}

	res, err := tx.ExecContext(ctx, `UPDATE collections SET name = ? WHERE name = ?`, to, from)
	if err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("rename collection %q: %w", from, ErrCollectionNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rename collection: commit: %w", err)
	}

	s.log.Info("collection renamed", "from", from, "to", to)
	return nil
}

// DropCollection deletes a collection and all of its documents.
func (s *Store) DropCollection(ctx context.Context, name string) (err error) {
	ctx, span := s.tel.start(ctx, "drop_collection", name)
	defer func() { s.tel.end(ctx, span, "drop_collection", name, err) }()

	n, err := normalizeName(name)
	if err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, n)
	if err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("drop collection %q: %w", n, ErrCollectionNotFound)
	}

	s.log.Info("collection dropped", "collection", n)
	return nil
}

// Collection returns a handle for name. The collection need not exist:
// reads of a missing collection are empty and the first insert creates it.
func (s *Store) Collection(name string) *Collection {
	n := norm.NFC.String(strings.TrimSpace(name))
	return &Collection{s: s, name: n}
}

// collectionID looks up the row id of a collection by normalized name.
func collectionID(ctx context.Context, q queryer, name string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM collections WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup collection %q: %w", name, err)
	}
	return id, true, nil
}

// ensureCollection returns the id of name, creating the collection when
// it does not exist.
func ensureCollection(ctx context.Context, q queryer, name string) (int64, error) {
	if _, err := normalizeName(name); err != nil {
		return 0, err
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO collections (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`, name); err != nil {
		return 0, fmt.Errorf("create collection %q: %w", name, err)
	}
	id, _, err := collectionID(ctx, q, name)
	return id, err
}
