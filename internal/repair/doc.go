// Package repair turns malformed model-generated SPARQL into queries a
// Virtuoso endpoint has a fighting chance of parsing.
//
// Sequence-to-sequence models trained on Wikidata-style vocabularies emit
// queries with bracket-delimited graph patterns, undefined prefixes,
// broken CURIEs, incomplete triples, and unbalanced braces. Repair applies
// a fixed, ordered sequence of text-rewrite passes that address each of
// these failure modes. The function is total: it never fails, never
// performs I/O, and always returns a string. In the worst case the result
// is still malformed but closer to well-formed; downstream query execution
// is the actual validity oracle.
package repair
