package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Used on the query path.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. Batch processing is more efficient than calling EmbedText
	// repeatedly; the returned slice preserves input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// PairScorer scores (query, passage) pairs with a cross-encoder.
// Implementations must be thread-safe for concurrent use.
type PairScorer interface {
	// ScorePairs returns one relevance score per text, higher is more
	// relevant to the query. The returned slice preserves input order.
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Provider aggregates model services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// PairScorer returns the cross-encoder scoring service, or nil when
	// no rerank endpoint is configured. A nil scorer means heuristic
	// reranking only.
	PairScorer() PairScorer

	// Close releases resources held by the provider and its services.
	Close() error
}
