// Package extjson reads and writes the extended-JSON text form of litedocs
// values.
//
// Two notations are supported:
//
//   - Friendly: constructor syntax for types JSON cannot express natively,
//     e.g. Long(5), ObjectId("c969ce7c86ebf1670512579b"), ISODate("...").
//   - JSONCompatible: plain JSON, with those types written as single-key
//     marker objects such as {"$oid" : "..."}.
//
// Both notations are accepted by the same parser. Parsing happens in two
// passes: Parse produces a generic Node tree that keeps marker objects as
// ordinary maps, and Coerce collapses marker objects into typed values. The
// parser cannot know an object literal is a marker until it has seen all of
// its keys, which is why the passes are separate.
//
// Every function in this package is pure; none of them keep state between
// calls.
package extjson
