// Package router implements the metadata pre-filter of the pipeline.
//
// Each document contributes a token set built from its routing metadata
// (type, product family, technologies, segments, commitment, keywords
// and title words) expanded through the bilingual synonym table. At
// query time the query is tokenized and expanded the same way, and
// every document gets a score from token overlap, cross-language
// synonym matches, and a set of mutually exclusive intent/segment
// detectors carrying large fixed bonuses and penalties.
//
// The router never fails: it returns a bounded ranked candidate pool,
// and an empty pool tells the orchestrator to widen retrieval to the
// whole corpus.
package router
