package mock

import "github.com/poiesic/telsearch/ai"

// MockProvider aggregates mock services for tests.
type MockProvider struct {
	embedder *MockEmbedder
	scorer   *MockPairScorer
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		scorer:   NewMockPairScorer(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// PairScorer returns the mock cross-encoder service.
func (p *MockProvider) PairScorer() ai.PairScorer {
	return p.scorer
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock embedder for assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockPairScorer returns the concrete mock scorer for assertions.
func (p *MockProvider) GetMockPairScorer() *MockPairScorer {
	return p.scorer
}
