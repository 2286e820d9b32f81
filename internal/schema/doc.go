// Package schema validates and imports untyped documents against a
// declarative schema description.
//
// A document is made of plain values: nil, string, bool, int, int64,
// float64, []any and *Map (an insertion-ordered string-keyed map). A Schema
// is an ordered list of properties, each described by a Field. A Field's
// Shape is a tagged variant: nil for a primitive, Object for a nested schema,
// Collection for a uniform member spec applied to every element of an array
// or value of a map. One recursive walker (Import / ImportField) interprets
// any schema, so the package knows nothing about the documents it is used on.
//
// Every ValidationError carries the ':'-joined path of the offending
// property, e.g. "handlers:init:0:command".
package schema
