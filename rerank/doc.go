// Package rerank re-scores the fused candidate pool and folds passages
// into document-level results.
//
// When a cross-encoder endpoint is configured, candidate texts are
// scored in batches against the query. Without one, or when the scorer
// fails mid-query, a lexical heuristic stands in so a search never
// fails just because a model service is down. The aggregator then
// groups passages by document and picks how many documents to return
// from the shape of the score curve.
package rerank
