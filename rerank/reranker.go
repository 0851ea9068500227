package rerank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/telsearch/ai"
	"github.com/poiesic/telsearch/core"
)

const (
	// maxPassageChars bounds what is sent to the cross-encoder; its
	// quality degrades on long inputs and the tail of a passage rarely
	// changes its relevance.
	maxPassageChars  = 450
	defaultBatchSize = 16
)

// Reranker re-scores candidates with a cross-encoder, falling back to
// HeuristicScore when no scorer is configured or a scoring call fails.
type Reranker struct {
	scorer    ai.PairScorer
	batchSize int
	logger    *slog.Logger
}

// Option configures a Reranker.
type Option func(*Reranker) error

// WithPairScorer sets the cross-encoder. A nil scorer is valid and
// selects the heuristic path.
func WithPairScorer(scorer ai.PairScorer) Option {
	return func(r *Reranker) error {
		r.scorer = scorer
		return nil
	}
}

// WithBatchSize overrides how many pairs go to the scorer per call.
func WithBatchSize(n int) Option {
	return func(r *Reranker) error {
		if n <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		r.batchSize = n
		return nil
	}
}

// WithLogger sets the logger for fallback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reranker) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// NewReranker creates a reranker. Without options it runs purely on
// the heuristic.
func NewReranker(opts ...Option) (*Reranker, error) {
	r := &Reranker{
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxPassageChars {
		return text
	}
	return string(runes[:maxPassageChars])
}

// Rerank returns a new slice with Rerank and Final filled in, sorted
// best first. The boolean reports whether the cross-encoder actually
// scored this query; false means the heuristic stood in.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []core.ScoredCandidate) ([]core.ScoredCandidate, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	out := make([]core.ScoredCandidate, len(candidates))
	copy(out, candidates)

	used := false
	if r.scorer != nil {
		if err := r.scoreWithModel(ctx, query, out); err != nil {
			r.logger.Warn("cross-encoder unavailable, using heuristic scores",
				"error", err,
				"candidates", len(out))
		} else {
			used = true
		}
	}
	if !used {
		for i := range out {
			out[i].Rerank = HeuristicScore(query, out[i].Passage.Text)
		}
	}

	for i := range out {
		out[i].Final = out[i].Rerank
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Final > out[j].Final
	})
	return out, used
}

func (r *Reranker) scoreWithModel(ctx context.Context, query string, candidates []core.ScoredCandidate) error {
	for start := 0; start < len(candidates); start += r.batchSize {
		end := start + r.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = truncate(c.Passage.Text)
		}
		scores, err := r.scorer.ScorePairs(ctx, query, texts)
		if err != nil {
			return err
		}
		if len(scores) != len(texts) {
			return fmt.Errorf("scorer returned %d scores for %d texts", len(scores), len(texts))
		}
		for i := range batch {
			batch[i].Rerank = scores[i]
		}
	}
	return nil
}
