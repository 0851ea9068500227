// Package mock provides test double implementations of the ai service
// interfaces.
//
// The mocks allow tests to run without external model services and
// enable controlled, deterministic behavior:
//
//   - MockEmbedder: returns deterministic vectors derived from a text hash
//   - MockPairScorer: scores pairs by lexical overlap with the query
//   - MockProvider: aggregates both
//
// Custom behavior is injected via function fields:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
package mock
