// Package query compiles filter documents into predicate trees.
//
// A filter is an ordinary Document. Every entry contributes one predicate
// and the predicates of all entries are AND-ed together:
//
//	{"name": "Ada"}                      name = "Ada"
//	{"age": {"$gt": 30}}                 age > Int(30)
//	{"address": {"city": "London"}}      address.city = "London"
//	{"x": {"$or": [1, {"$gt": 5}]}}      (x = Int(1) or (not(x = null) and x > Int(5)))
//
// A nested document with exactly one "$"-prefixed key is an operator; any
// other nested document recurses with the key appended to the field path.
// Recognized operators are $gt, $gte, $lt, $lte, $between, $in, $or, $ne,
// $like (prefix match) and $contains (substring match).
//
// Predicate is a sealed interface. Backends switch over the concrete
// variants exhaustively; Match is the reference evaluator and the store
// uses it to recheck rows returned by SQL pushdown.
//
// Predicates are immutable once built and safe to share between
// goroutines.
package query
