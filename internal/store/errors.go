package store

import "errors"

var (
	// ErrCollectionExists is returned when creating or renaming onto a
	// name that is already taken.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrCollectionNotFound is returned when renaming or dropping a
	// collection that does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidName is returned for empty collection names and names
	// starting with "$".
	ErrInvalidName = errors.New("invalid collection name")

	// ErrDuplicateID is returned by Insert when the _id is taken.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrDocumentNotFound is returned by Get and Update for unknown ids.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidID is returned for _id values that cannot be keys: null,
	// MinValue, MaxValue, documents and arrays.
	ErrInvalidID = errors.New("invalid document id")

	// ErrInvalidDocument is returned by writes when a document holds a
	// value that cannot be stored, such as a date past year 9999.
	ErrInvalidDocument = errors.New("invalid document")
)
