package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/querysql"
	"github.com/roach88/litedocs/internal/value"
)

// Collection is a handle on one named collection of a Store.
type Collection struct {
	s    *Store
	name string
}

// Name returns the normalized collection name.
func (c *Collection) Name() string {
	return c.name
}

// Insert stores a new document and returns its _id. A document without an
// _id is given a fresh ObjectId, set as its first field once the insert
// commits; doc is left untouched on failure. Returns ErrDuplicateID when
// the _id is taken. Creates the collection if needed.
func (c *Collection) Insert(ctx context.Context, doc *value.Document) (id value.Value, err error) {
	ctx, span := c.s.tel.start(ctx, "insert", c.name)
	defer func() { c.s.tel.end(ctx, span, "insert", c.name, err) }()

	id, key, stored, err := c.assignID(doc)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	body, bodyJSON, err := marshalDocument(stored)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert document: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	collID, err := ensureCollection(ctx, tx, c.name)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (collection_id, doc_id, body, body_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection_id, doc_id) DO NOTHING
	`, collID, key, body, bodyJSON)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("insert document %s: %w", key, ErrDuplicateID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert document: commit: %w", err)
	}
	if stored != doc {
		doc.Prepend("_id", id)
	}

	c.s.log.Debug("document inserted", "collection", c.name, "id", key)
	return id, nil
}

// Upsert replaces the document with the same _id, or inserts doc when
// there is none. Reports whether doc was inserted.
func (c *Collection) Upsert(ctx context.Context, doc *value.Document) (inserted bool, err error) {
	ctx, span := c.s.tel.start(ctx, "upsert", c.name)
	defer func() { c.s.tel.end(ctx, span, "upsert", c.name, err) }()

	id, key, stored, err := c.assignID(doc)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	body, bodyJSON, err := marshalDocument(stored)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}

	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("upsert document: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	collID, err := ensureCollection(ctx, tx, c.name)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE documents SET body = ?, body_json = ?
		WHERE collection_id = ? AND doc_id = ?
	`, body, bodyJSON, collID, key)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		inserted = true
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (collection_id, doc_id, body, body_json)
			VALUES (?, ?, ?, ?)
		`, collID, key, body, bodyJSON); err != nil {
			return false, fmt.Errorf("upsert document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("upsert document: commit: %w", err)
	}
	if stored != doc {
		doc.Prepend("_id", id)
	}

	c.s.log.Debug("document upserted", "collection", c.name, "id", key, "inserted", inserted)
	return inserted, nil
}

// Update replaces the stored document with the same _id. Returns
// ErrDocumentNotFound when there is none.
func (c *Collection) Update(ctx context.Context, doc *value.Document) (err error) {
	ctx, span := c.s.tel.start(ctx, "update", c.name)
	defer func() { c.s.tel.end(ctx, span, "update", c.name, err) }()

	id, ok := documentID(doc)
	if !ok {
		return fmt.Errorf("update document: %w: missing _id", ErrInvalidID)
	}
	key, err := idKey(id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	body, bodyJSON, err := marshalDocument(doc)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	res, err := c.s.db.ExecContext(ctx, `
		UPDATE documents SET body = ?, body_json = ?
		WHERE doc_id = ? AND collection_id = (SELECT id FROM collections WHERE name = ?)
	`, body, bodyJSON, key, c.name)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("update document %s: %w", key, ErrDocumentNotFound)
	}
	return nil
}

// Delete removes the document with the given _id and reports whether it
// existed.
func (c *Collection) Delete(ctx context.Context, id value.Value) (deleted bool, err error) {
	ctx, span := c.s.tel.start(ctx, "delete", c.name)
	defer func() { c.s.tel.end(ctx, span, "delete", c.name, err) }()

	key, err := idKey(id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}

	res, err := c.s.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE doc_id = ? AND collection_id = (SELECT id FROM collections WHERE name = ?)
	`, key, c.name)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	affected, _ := res.RowsAffected()

	c.s.log.Debug("document deleted", "collection", c.name, "id", key, "deleted", affected > 0)
	return affected > 0, nil
}

// Get returns the document with the given _id, or ErrDocumentNotFound.
func (c *Collection) Get(ctx context.Context, id value.Value) (*value.Document, error) {
	key, err := idKey(id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	var body string
	err = c.s.db.QueryRowContext(ctx, `
		SELECT d.body FROM documents d
		JOIN collections c ON d.collection_id = c.id
		WHERE c.name = ? AND d.doc_id = ?
	`, c.name, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", key, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return unmarshalDocument(body)
}

// Count returns the number of documents matching p.
func (c *Collection) Count(ctx context.Context, p query.Predicate) (n int, err error) {
	ctx, span := c.s.tel.start(ctx, "count", c.name, attribute.String(attrPredicate, describe(p)))
	defer func() { c.s.tel.end(ctx, span, "count", c.name, err) }()

	collID, ok, err := collectionID(ctx, c.s.db, c.name)
	if err != nil || !ok {
		return 0, err
	}

	frag := c.s.fragment(p)
	span.SetAttributes(attribute.Bool(attrExact, frag.Exact))
	if frag.Exact {
		sqlText, params := c.s.compiler.Count(frag, collID)
		if err := c.s.db.QueryRowContext(ctx, sqlText, params...).Scan(&n); err != nil {
			return 0, fmt.Errorf("count documents: %w", err)
		}
		return n, nil
	}

	err = c.scan(ctx, frag, collID, p, 0, 0, func(*value.Document) { n++ })
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Find returns the documents matching p in insertion order, skipping the
// first skip matches and returning at most limit. A limit of zero or less
// means no limit.
//
// Returns an empty slice (not nil) when nothing matches.
func (c *Collection) Find(ctx context.Context, p query.Predicate, skip, limit int) (docs []*value.Document, err error) {
	ctx, span := c.s.tel.start(ctx, "find", c.name, attribute.String(attrPredicate, describe(p)))
	defer func() { c.s.tel.end(ctx, span, "find", c.name, err) }()

	docs = []*value.Document{}
	collID, ok, err := collectionID(ctx, c.s.db, c.name)
	if err != nil || !ok {
		return docs, err
	}

	frag := c.s.fragment(p)
	span.SetAttributes(attribute.Bool(attrExact, frag.Exact))

	err = c.scan(ctx, frag, collID, p, skip, limit, func(d *value.Document) {
		docs = append(docs, d)
	})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	c.s.tel.returned.Record(ctx, int64(len(docs)), metricCollection(c.name))
	return docs, nil
}

// scan runs the pushdown query and feeds matching documents to fn. For an
// exact fragment SQL does the paging; otherwise rows are rechecked with
// query.Match and paged here.
func (c *Collection) scan(ctx context.Context, frag querysql.Fragment, collID int64, p query.Predicate, skip, limit int, fn func(*value.Document)) error {
	sqlText, params := c.s.compiler.Select(frag, collID, skip, limit)
	rows, err := c.s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var read, matched, rejected int
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		read++

		doc, err := unmarshalDocument(body)
		if err != nil {
			return err
		}
		if !frag.Exact {
			if !query.Match(p, doc) {
				rejected++
				continue
			}
			matched++
			if matched <= skip {
				continue
			}
			if limit > 0 && matched > skip+limit {
				break
			}
		}
		fn(doc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}

	if rejected > 0 {
		c.s.tel.rechecked.Add(ctx, int64(rejected), metricCollection(c.name))
	}
	c.s.log.Debug("scan",
		"collection", c.name,
		"predicate", describe(p),
		"exact", frag.Exact,
		"rows", read,
		"rejected", rejected,
	)
	return nil
}

// fragment compiles p for pushdown. A predicate with nothing pushable
// becomes an inexact full scan.
func (s *Store) fragment(p query.Predicate) querysql.Fragment {
	frag, err := s.compiler.Compile(p)
	if err != nil {
		s.log.Debug("predicate not pushable", "predicate", describe(p), "depth", query.Depth(p))
		return querysql.Fragment{SQL: "1 = 1", Exact: false}
	}
	return frag
}

// assignID returns the _id of doc, its key and the document to store.
// When doc has no _id, stored is a copy carrying a fresh ObjectId.
func (c *Collection) assignID(doc *value.Document) (id value.Value, key string, stored *value.Document, err error) {
	if doc == nil {
		return nil, "", nil, fmt.Errorf("%w: nil document", ErrInvalidID)
	}
	id, ok := documentID(doc)
	stored = doc
	if !ok {
		// Write the generated id into a copy; the caller's doc gets it
		// after commit.
		id = c.s.ids.Next()
		stored = doc.Clone()
		stored.Prepend("_id", id)
	}
	key, err = idKey(id)
	if err != nil {
		return nil, "", nil, err
	}
	return id, key, stored, nil
}

func describe(p query.Predicate) string {
	if p == nil {
		return query.All{}.String()
	}
	return p.String()
}
