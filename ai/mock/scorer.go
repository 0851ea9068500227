package mock

import (
	"context"
	"strings"
)

// MockPairScorer is a test double for ai.PairScorer.
// It allows custom behavior injection via a function field.
type MockPairScorer struct {
	// ScorePairsFunc is called by ScorePairs if set.
	// If nil, uses default lexical-overlap scoring.
	ScorePairsFunc func(ctx context.Context, query string, texts []string) ([]float64, error)

	callCount int
}

// NewMockPairScorer creates a mock scorer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockPairScorer() *MockPairScorer {
	return &MockPairScorer{}
}

// ScorePairs scores each text by the fraction of query words it contains.
// Deterministic, so tests can assert relative ordering.
func (m *MockPairScorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	m.callCount++

	if m.ScorePairsFunc != nil {
		return m.ScorePairsFunc(ctx, query, texts)
	}

	words := strings.Fields(strings.ToLower(query))
	scores := make([]float64, len(texts))
	for i, text := range texts {
		if len(words) == 0 {
			continue
		}
		lower := strings.ToLower(text)
		hits := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		scores[i] = float64(hits) / float64(len(words))
	}
	return scores, nil
}

// CallCount returns the number of times ScorePairs was called.
func (m *MockPairScorer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockPairScorer) Reset() {
	m.callCount = 0
	m.ScorePairsFunc = nil
}
