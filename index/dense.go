package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/telsearch/ai"
	"github.com/poiesic/telsearch/core"
)

const (
	defaultEmbedBatchSize = 32
)

// DenseIndex searches pre-computed passage embeddings by cosine
// similarity. Vectors are L2-normalized at build time, so similarity is
// a plain dot product.
type DenseIndex struct {
	ids      []core.ID
	vectors  [][]float32
	embedder ai.Embedder
	logger   *slog.Logger
}

// DenseOption configures a dense index build.
type DenseOption func(*denseBuildConfig)

type denseBuildConfig struct {
	batchSize int
	workers   int
	logger    *slog.Logger
}

// WithEmbedBatchSize sets how many passages one embedding call carries.
func WithEmbedBatchSize(n int) DenseOption {
	return func(c *denseBuildConfig) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithEmbedWorkers sets the number of concurrent embedding calls.
func WithEmbedWorkers(n int) DenseOption {
	return func(c *denseBuildConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithDenseLogger sets the logger used for build diagnostics.
func WithDenseLogger(logger *slog.Logger) DenseOption {
	return func(c *denseBuildConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// BuildDense embeds every passage that does not already carry a vector
// and assembles the index. Passages with stored vectors are reused
// without another embedding call, which is what makes reindexing cheap:
// content-derived passage ids mean unchanged passages keep their
// embedding across rebuilds.
//
// The passages slice is mutated: computed vectors are written back so
// the caller can persist them. A failing embedder fails the build; the
// engine treats that as "dense unavailable", not as a fatal error.
func BuildDense(ctx context.Context, passages []core.Passage, embedder ai.Embedder, opts ...DenseOption) (*DenseIndex, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}

	cfg := &denseBuildConfig{
		batchSize: defaultEmbedBatchSize,
		workers:   max(1, runtime.NumCPU()/2),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var pending []int
	for i := range passages {
		if len(passages[i].Vector) == 0 {
			pending = append(pending, i)
		}
	}

	if len(pending) > 0 {
		if err := embedPending(ctx, passages, pending, embedder, cfg); err != nil {
			return nil, err
		}
	}
	cfg.logger.Debug("dense build complete",
		"passages", len(passages), "embedded", len(pending), "reused", len(passages)-len(pending))

	idx := &DenseIndex{embedder: embedder, logger: cfg.logger}
	for i := range passages {
		if len(passages[i].Vector) == 0 {
			continue
		}
		normalize(passages[i].Vector)
		idx.ids = append(idx.ids, passages[i].Id)
		idx.vectors = append(idx.vectors, passages[i].Vector)
	}
	return idx, nil
}

func embedPending(ctx context.Context, passages []core.Passage, pending []int, embedder ai.Embedder, cfg *denseBuildConfig) error {
	pool, err := ants.NewPool(cfg.workers)
	if err != nil {
		return fmt.Errorf("creating embed worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(pending); start += cfg.batchSize {
		end := min(start+cfg.batchSize, len(pending))
		batch := pending[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed || ctx.Err() != nil {
				return
			}

			texts := make([]string, len(batch))
			for i, idx := range batch {
				texts[i] = passages[idx].Text
			}
			vectors, err := embedder.EmbedTexts(ctx, texts)
			if err == nil && len(vectors) != len(batch) {
				err = fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			for i, idx := range batch {
				passages[idx].Vector = vectors[i]
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("embedding passages: %w", firstErr)
	}
	return ctx.Err()
}

// Len returns the number of indexed vectors.
func (d *DenseIndex) Len() int {
	return len(d.ids)
}

// Search embeds the query and returns the topK most similar passages by
// cosine similarity, descending.
func (d *DenseIndex) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 || len(d.ids) == 0 {
		return nil, nil
	}

	vec, err := d.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vec) == 0 {
		return nil, nil
	}
	normalize(vec)

	hits := make([]Hit, 0, len(d.ids))
	for i, v := range d.vectors {
		hits = append(hits, Hit{ID: d.ids[i], Score: float64(dot(vec, v))})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
