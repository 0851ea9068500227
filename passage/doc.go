// Package passage turns structured source documents into the atomic
// retrievable units the indices work on. Generation is deterministic:
// the same document always yields the same passage ids and texts, which
// is what makes reindexing able to reuse previously computed embeddings.
package passage
