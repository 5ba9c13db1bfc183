package store

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/value"
)

// IDGenerator supplies _id values for documents inserted without one.
type IDGenerator interface {
	Next() value.ObjectID
}

type objectIDs struct{}

func (objectIDs) Next() value.ObjectID {
	return value.NewObjectID()
}

// marshalDocument returns the body and body_json column values for doc.
// It refuses documents whose body could not be parsed back.
func marshalDocument(doc *value.Document) (body, bodyJSON string, err error) {
	if err := checkStorable(doc, ""); err != nil {
		return "", "", err
	}
	body = extjson.RenderDocument(doc, extjson.Friendly|extjson.Exact)
	bodyJSON = extjson.RenderDocument(doc, extjson.JSONCompatible)
	return body, bodyJSON, nil
}

// checkStorable walks v looking for DateTime values outside the
// representable year range.
func checkStorable(v value.Value, path string) error {
	switch v := v.(type) {
	case value.DateTime:
		if !value.DateTimeInRange(v) {
			return fmt.Errorf("%w: %s: date outside years 0001 to 9999", ErrInvalidDocument, path)
		}
	case *value.Document:
		for _, f := range v.Fields() {
			if err := checkStorable(f.Value, joinPath(path, f.Key)); err != nil {
				return err
			}
		}
	case value.Array:
		for i, elem := range v {
			if err := checkStorable(elem, joinPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// unmarshalDocument parses a stored body.
func unmarshalDocument(body string) (*value.Document, error) {
	doc, err := extjson.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

// documentID returns the _id of doc.
func documentID(doc *value.Document) (value.Value, bool) {
	return doc.Get("_id")
}

// idKey returns the doc_id column value for id.
//
// Finite numbers are keyed by their decimal value so that equal numbers of
// different kinds collide. Strings get an "s:" prefix to keep them apart
// from the friendly renderings used for every other kind.
func idKey(id value.Value) (string, error) {
	switch t := id.(type) {
	case value.Int32:
		return "n:" + decimal.NewFromInt(int64(t)).String(), nil
	case value.Int64:
		return "n:" + decimal.NewFromInt(int64(t)).String(), nil
	case value.Double:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "n:" + extjson.FormatDouble(f), nil
		}
		return "n:" + decimal.NewFromFloat(f).String(), nil
	case value.Decimal:
		return "n:" + t.Decimal.String(), nil
	case value.String:
		return "s:" + string(t), nil
	case value.Boolean, value.DateTime, value.Binary, value.ObjectID, value.Guid:
		return extjson.Render(t, extjson.Friendly), nil
	}
	kind := "null"
	if id != nil {
		kind = id.Kind().String()
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidID, kind)
}
