// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/telsearch/ai"
	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/storage"
)

// Config holds configuration for a reembedding run.
type Config struct {
	// BatchSize is the number of passages per embedding call.
	BatchSize int

	// ReportInterval is how often to report progress (number of passages).
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder replaces the stored vector of every passage in the
// repository with a fresh embedding.
type Reembedder struct {
	repo     storage.PassageRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a reembedder.
// progress: where to write progress output (typically os.Stderr).
func NewReembedder(repo storage.PassageRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run reembeds every stored passage. Each batch is embedded and written
// back before the next one starts, so an interrupted run leaves a
// mixed-model store; rerun to make it consistent.
func (r *Reembedder) Run(ctx context.Context) error {
	if r.config.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	passages, err := r.repo.AllPassages(ctx)
	if err != nil {
		return fmt.Errorf("failed to load passages: %w", err)
	}
	if len(passages) == 0 {
		fmt.Fprintf(r.progress, "No passages found in database (0 passages)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d passages (batch size: %d)\n",
		len(passages), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(passages), r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for start := 0; start < len(passages); start += r.config.BatchSize {
		end := min(start+r.config.BatchSize, len(passages))
		batch := passages[start:end]

		if err := r.processBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch at %d: %w", start, err)
		}

		processed += len(batch)
		tracker.Update(processed)
	}
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d passages in %v (%.1f passages/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())
	return nil
}

func (r *Reembedder) processBatch(ctx context.Context, batch []*core.Passage) error {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.embedder.EmbedTexts(ctx, texts)
		if embedErr == nil && len(vectors) != len(batch) {
			embedErr = fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	for i, p := range batch {
		p.Vector = vectors[i]
	}

	err = RetryWithBackoff(ctx, func() error {
		return r.repo.PutPassages(ctx, batch...)
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("storing failed: %w", err)
	}
	return nil
}
