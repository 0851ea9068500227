// Package index holds the two retrieval indices built over passages:
// a BM25 inverted index for lexical search and an in-memory vector index
// for dense semantic search.
//
// Both indices are built once from a passage snapshot and are immutable
// afterwards, which makes concurrent searches lock-free. A reindex
// builds fresh instances and swaps them in at the engine level.
package index
