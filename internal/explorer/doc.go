// Package explorer is the browsing layer over a document database.
//
// A Session holds the open queries of one database. A Query owns a filter
// text, a page size and a page number; Run compiles the filter, counts the
// matches, fetches one page and renders it as results text with anchors so
// that a caret position in the text can be mapped back to the document it
// falls in.
//
// Document edits made through a Session (AddDocument, SaveDocument,
// RemoveDocument) re-run every open query on the edited collection, so
// result pages never show stale contents after an edit from this session.
//
// CONCURRENCY:
//
// A Query refuses overlapping runs: a second Run while one is in flight
// returns ErrQueryRunning instead of queueing. Accessors (Count, Results,
// Text, DocumentAt) are safe to call while a run is in progress and return
// the state of the last successful run. A failed run leaves that state
// untouched.
package explorer
