package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/ai"
)

func newTestScorer(t *testing.T, handler http.HandlerFunc) ai.PairScorer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ai.NewConfig(ai.WithRerankHost(srv.URL), ai.WithRerankModel("test-reranker"))
	scorer, err := NewPairScorer(cfg)
	require.NoError(t, err)
	return scorer
}

func TestScorePairs(t *testing.T) {
	t.Run("scores come back in input order", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/rerank", r.URL.Path)
			var req rerankRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "prix fibre", req.Query)
			require.Len(t, req.Texts, 2)
			// Service answers best-first, out of input order.
			json.NewEncoder(w).Encode([]rerankResult{
				{Index: 1, Score: 0.9},
				{Index: 0, Score: 0.2},
			})
		})

		scores, err := scorer.ScorePairs(context.Background(), "prix fibre", []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, []float64{0.2, 0.9}, scores)
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no call expected")
		})
		scores, err := scorer.ScorePairs(context.Background(), "q", nil)
		require.NoError(t, err)
		assert.Nil(t, scores)
	})

	t.Run("service error surfaces", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		})
		_, err := scorer.ScorePairs(context.Background(), "q", []string{"a"})
		assert.Error(t, err)
	})

	t.Run("out of range index rejected", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]rerankResult{{Index: 5, Score: 1}})
		})
		_, err := scorer.ScorePairs(context.Background(), "q", []string{"a"})
		assert.Error(t, err)
	})
}

func TestNewPairScorerRequiresHost(t *testing.T) {
	_, err := NewPairScorer(ai.DefaultConfig())
	assert.Error(t, err)
}
