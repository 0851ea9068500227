package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/poiesic/telsearch/ai"
)

// PairScorer implements ai.PairScorer against a rerank HTTP endpoint.
type PairScorer struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

var _ ai.PairScorer = (*PairScorer)(nil)

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
	Model string   `json:"model,omitempty"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NewPairScorer creates a scorer for the configured rerank host.
//
// Returns ai.PairScorer interface to enforce abstraction.
func NewPairScorer(config *ai.Config) (ai.PairScorer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.RerankHost == "" {
		return nil, fmt.Errorf("tei: RerankHost is required")
	}
	return &PairScorer{
		endpoint: config.RerankHost + "/rerank",
		model:    config.RerankModel,
		client:   &http.Client{Timeout: config.RerankTimeout},
		logger:   slog.Default().With("component", "tei-scorer"),
	}, nil
}

// ScorePairs scores each text against the query. Scores come back in
// input order regardless of the order the service returns them in.
func (s *PairScorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts, Model: s.model})
	if err != nil {
		return nil, fmt.Errorf("tei: encoding rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tei: building rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tei: rerank call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error("rerank service error", "status", resp.StatusCode, "body", string(payload))
		return nil, fmt.Errorf("tei: rerank service returned status %d", resp.StatusCode)
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("tei: decoding rerank response: %w", err)
	}

	scores := make([]float64, len(texts))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("tei: rerank response index %d out of range", r.Index)
		}
		scores[r.Index] = r.Score
	}
	return scores, nil
}
