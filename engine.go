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


// Package telsearch assembles the retrieval pipeline: query analysis,
// rule routing, sparse and dense retrieval, intent-weighted fusion,
// reranking and document aggregation, over a corpus of telecom
// agreement documents.
package telsearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/telsearch/ai"
	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/index"
	"github.com/poiesic/telsearch/passage"
	"github.com/poiesic/telsearch/query"
	"github.com/poiesic/telsearch/rank"
	"github.com/poiesic/telsearch/rerank"
	"github.com/poiesic/telsearch/router"
	"github.com/poiesic/telsearch/storage"
)

const (
	defaultRetrieveLimit = 50
	defaultRerankLimit   = 30
	defaultFinalLimit    = 10
	defaultDenseTimeout  = 3 * time.Second
	defaultRerankTimeout = 5 * time.Second
)

// snapshot is one immutable view of the indexed corpus. Queries read a
// snapshot end to end; Rebuild swaps in a fresh one atomically, so
// searches never observe a half-built index.
type snapshot struct {
	passages []core.Passage
	byID     map[core.ID]*core.Passage
	docs     map[string]*core.Document
	sparse   *index.SparseIndex
	dense    *index.DenseIndex
	router   *router.Router
	booster  *rank.Booster
}

// Engine is the top-level search service.
type Engine struct {
	passageRepo  storage.PassageRepository
	documentRepo storage.DocumentRepository
	provider     ai.Provider
	analyzer     *query.Analyzer
	generator    *passage.Generator
	reranker     *rerank.Reranker
	logger       *slog.Logger

	retrieveLimit int
	rerankLimit   int
	finalLimit    int
	denseTimeout  time.Duration
	rerankTimeout time.Duration

	ruleMinScore   float64
	sparseMinNorm  float64
	denseMinCosine float64

	snap    atomic.Pointer[snapshot]
	buildMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithRetrieveLimit sets the per-pool retrieval depth.
func WithRetrieveLimit(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("retrieve limit must be positive, got %d", n)
		}
		e.retrieveLimit = n
		return nil
	}
}

// WithRerankLimit sets how many fused candidates reach the reranker.
func WithRerankLimit(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("rerank limit must be positive, got %d", n)
		}
		e.rerankLimit = n
		return nil
	}
}

// WithFinalLimit caps the documents and passages in a result.
func WithFinalLimit(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("final limit must be positive, got %d", n)
		}
		e.finalLimit = n
		return nil
	}
}

// WithDenseTimeout bounds the per-query dense retrieval time. On
// expiry the query continues sparse-only.
func WithDenseTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("dense timeout must be positive, got %s", d)
		}
		e.denseTimeout = d
		return nil
	}
}

// WithRerankTimeout bounds the per-query cross-encoder time. On expiry
// the heuristic scores stand in.
func WithRerankTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("rerank timeout must be positive, got %s", d)
		}
		e.rerankTimeout = d
		return nil
	}
}

// WithCascadeThresholds overrides the per-layer acceptance thresholds
// used by Cascade: the raw rule score, the saturated sparse score and
// the dense cosine.
func WithCascadeThresholds(rule, sparseNorm, denseCosine float64) Option {
	return func(e *Engine) error {
		if rule < 0 {
			return fmt.Errorf("rule threshold must be non-negative, got %g", rule)
		}
		if sparseNorm < 0 || sparseNorm > 1 {
			return fmt.Errorf("sparse threshold must be in [0,1], got %g", sparseNorm)
		}
		if denseCosine < -1 || denseCosine > 1 {
			return fmt.Errorf("dense threshold must be in [-1,1], got %g", denseCosine)
		}
		e.ruleMinScore = rule
		e.sparseMinNorm = sparseNorm
		e.denseMinCosine = denseCosine
		return nil
	}
}

// NewEngine creates an engine over the given repositories and model
// provider. Call Load or Rebuild before searching.
func NewEngine(
	passageRepo storage.PassageRepository,
	documentRepo storage.DocumentRepository,
	provider ai.Provider,
	opts ...Option,
) (*Engine, error) {
	if passageRepo == nil {
		return nil, ErrPassageRepositoryRequired
	}
	if documentRepo == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		passageRepo:  passageRepo,
		documentRepo: documentRepo,
		provider:     provider,
		logger:       slog.Default(),

		retrieveLimit: defaultRetrieveLimit,
		rerankLimit:   defaultRerankLimit,
		finalLimit:    defaultFinalLimit,
		denseTimeout:  defaultDenseTimeout,
		rerankTimeout: defaultRerankTimeout,

		ruleMinScore:   defaultRuleMinScore,
		sparseMinNorm:  defaultSparseMinNorm,
		denseMinCosine: defaultDenseMinCosine,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	analyzer, err := query.NewAnalyzer(query.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.analyzer = analyzer

	generator, err := passage.NewGenerator(passage.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.generator = generator

	reranker, err := rerank.NewReranker(
		rerank.WithPairScorer(provider.PairScorer()),
		rerank.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}
	e.reranker = reranker

	return e, nil
}

// Rebuild regenerates passages from the given documents, embeds what
// changed, persists everything and swaps the search snapshot. Queries
// keep running against the previous snapshot until the swap.
func (e *Engine) Rebuild(ctx context.Context, docs []*core.Document) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if err := e.documentRepo.PutDocuments(ctx, docs...); err != nil {
		return fmt.Errorf("storing documents: %w", err)
	}

	passages := e.generator.GenerateAll(docs)

	// Reuse stored vectors. Passage IDs are positional within a
	// document, so an edited passage keeps its ID; only a stored
	// passage with the exact same text still has a valid embedding.
	ids := make([]core.ID, len(passages))
	for i := range passages {
		ids[i] = passages[i].Id
	}
	stored, err := e.passageRepo.GetPassages(ctx, ids...)
	if err != nil {
		return fmt.Errorf("loading stored passages: %w", err)
	}
	type storedEmbedding struct {
		text   string
		vector []float32
	}
	embeddings := make(map[core.ID]storedEmbedding, len(stored))
	for _, p := range stored {
		if len(p.Vector) > 0 {
			embeddings[p.Id] = storedEmbedding{text: p.Text, vector: p.Vector}
		}
	}
	reused := 0
	for i := range passages {
		if s, ok := embeddings[passages[i].Id]; ok && s.text == passages[i].Text {
			passages[i].Vector = s.vector
			reused++
		}
	}

	snap := e.buildSnapshot(ctx, docs, passages)

	// Persist after the dense build so freshly embedded vectors are
	// stored too.
	for _, doc := range docs {
		if err := e.passageRepo.DeletePassagesByDoc(ctx, doc.DocID); err != nil {
			return fmt.Errorf("clearing passages of %s: %w", doc.DocID, err)
		}
	}
	ptrs := make([]*core.Passage, len(snap.passages))
	for i := range snap.passages {
		ptrs[i] = &snap.passages[i]
	}
	if err := e.passageRepo.PutPassages(ctx, ptrs...); err != nil {
		return fmt.Errorf("storing passages: %w", err)
	}

	e.snap.Store(snap)
	e.logger.Info("rebuilt search snapshot",
		"documents", len(docs),
		"passages", len(snap.passages),
		"vectors_reused", reused,
		"dense_available", snap.dense != nil)
	return nil
}

// Load warms the search snapshot from storage without regenerating
// passages. Stored vectors are kept; passages that never got one are
// embedded now.
func (e *Engine) Load(ctx context.Context) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	docs, err := e.documentRepo.AllDocuments(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	stored, err := e.passageRepo.AllPassages(ctx)
	if err != nil {
		return fmt.Errorf("loading passages: %w", err)
	}

	passages := make([]core.Passage, len(stored))
	for i, p := range stored {
		passages[i] = *p
	}

	snap := e.buildSnapshot(ctx, docs, passages)
	e.snap.Store(snap)
	e.logger.Info("loaded search snapshot",
		"documents", len(docs),
		"passages", len(passages),
		"dense_available", snap.dense != nil)
	return nil
}

// buildSnapshot assembles the immutable per-corpus structures. The
// dense index is best-effort: an unreachable embedding service
// degrades search to sparse-plus-rules instead of failing the build.
func (e *Engine) buildSnapshot(ctx context.Context, docs []*core.Document, passages []core.Passage) *snapshot {
	sparse := index.BuildSparse(passages)

	dense, err := index.BuildDense(ctx, passages, e.provider.Embedder(), index.WithDenseLogger(e.logger))
	if err != nil {
		e.logger.Warn("dense index unavailable, continuing without it", "error", err)
		dense = nil
	}

	rt, err := router.New(docs, router.WithLogger(e.logger))
	if err != nil {
		// Only option validation can fail here; with defaults it never does.
		e.logger.Error("rule router unavailable", "error", err)
		rt = nil
	}

	booster, err := rank.NewBooster(passages, rank.WithBoosterLogger(e.logger))
	if err != nil {
		e.logger.Error("signature booster unavailable", "error", err)
		booster = nil
	}

	byID := make(map[core.ID]*core.Passage, len(passages))
	for i := range passages {
		byID[passages[i].Id] = &passages[i]
	}
	docsByID := make(map[string]*core.Document, len(docs))
	for _, doc := range docs {
		docsByID[doc.DocID] = doc
	}

	return &snapshot{
		passages: passages,
		byID:     byID,
		docs:     docsByID,
		sparse:   sparse,
		dense:    dense,
		router:   rt,
		booster:  booster,
	}
}

// Search runs the full pipeline for one query.
func (e *Engine) Search(ctx context.Context, rawQuery string) (*core.SearchResult, error) {
	return e.SearchWithMonitor(ctx, rawQuery, nil)
}

// SearchWithMonitor runs the full pipeline with stage callbacks.
func (e *Engine) SearchWithMonitor(ctx context.Context, rawQuery string, monitor SearchMonitor) (*core.SearchResult, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, ErrEmptyQuery
	}
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(rawQuery)
	analysis := e.analyzer.Analyze(rawQuery)
	monitor.AfterAnalysis(analysis)

	var (
		ruleCands  []router.Candidate
		sparseHits []index.Hit
		denseHits  []index.Hit
		denseErr   error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if snap.router != nil {
			ruleCands = snap.router.Route(analysis.Raw)
		}
	}()
	go func() {
		defer wg.Done()
		sparseHits = snap.sparse.SearchTokens(index.QueryTokens(analysis.Expanded), e.retrieveLimit)
	}()
	go func() {
		defer wg.Done()
		if snap.dense == nil {
			return
		}
		dctx, cancel := context.WithTimeout(ctx, e.denseTimeout)
		defer cancel()
		denseHits, denseErr = snap.dense.Search(dctx, analysis.Normalized, e.retrieveLimit)
	}()
	wg.Wait()

	denseUsed := snap.dense != nil && denseErr == nil
	if denseErr != nil {
		e.logger.Warn("dense retrieval failed, continuing sparse-only",
			"query", rawQuery, "error", denseErr)
		denseHits = nil
	}
	monitor.AfterRetrieval(ruleCands, sparseHits, denseHits)

	ruleScores := make(map[string]float64, len(ruleCands))
	for _, c := range ruleCands {
		ruleScores[c.DocID] = c.Score
	}
	candidates := rank.FuseWithRules(sparseHits, denseHits, ruleScores, analysis, func(id core.ID) *core.Passage {
		return snap.byID[id]
	})
	retrieved := len(candidates)
	candidates = query.FilterCandidates(candidates, analysis)
	filtered := len(candidates)
	if snap.booster != nil {
		candidates = snap.booster.Apply(candidates, analysis)
	}
	monitor.AfterFusion(candidates)

	if len(candidates) > e.rerankLimit {
		candidates = candidates[:e.rerankLimit]
	}
	rctx, cancel := context.WithTimeout(ctx, e.rerankTimeout)
	defer cancel()
	reranked, crossUsed := e.reranker.Rerank(rctx, analysis.Normalized, candidates)
	monitor.AfterRerank(reranked, crossUsed)

	matches := rerank.SelectTop(rerank.Aggregate(reranked), e.finalLimit)
	passages := reranked
	if len(passages) > e.finalLimit {
		passages = passages[:e.finalLimit]
	}

	result := &core.SearchResult{
		Query:            analysis,
		Documents:        matches,
		Passages:         passages,
		RetrievedCount:   retrieved,
		FilteredCount:    filtered,
		DenseUsed:        denseUsed,
		CrossEncoderUsed: crossUsed,
	}
	monitor.Finish(result)
	return result, nil
}

// Explanation carries every intermediate stage of one query, for
// debugging relevance.
type Explanation struct {
	Analysis         core.QueryAnalysis
	RuleCandidates   []router.Candidate
	SparseHits       []index.Hit
	DenseHits        []index.Hit
	Fused            []core.ScoredCandidate
	Reranked         []core.ScoredCandidate
	CrossEncoderUsed bool
	Result           *core.SearchResult
}

// Explain runs Search while capturing each stage.
func (e *Engine) Explain(ctx context.Context, rawQuery string) (*Explanation, error) {
	rec := &recordingMonitor{}
	result, err := e.SearchWithMonitor(ctx, rawQuery, rec)
	if err != nil {
		return nil, err
	}
	return &Explanation{
		Analysis:         rec.analysis,
		RuleCandidates:   rec.rules,
		SparseHits:       rec.sparse,
		DenseHits:        rec.dense,
		Fused:            rec.fused,
		Reranked:         rec.reranked,
		CrossEncoderUsed: rec.crossUsed,
		Result:           result,
	}, nil
}

// Document returns a source document from the current snapshot.
func (e *Engine) Document(docID string) *core.Document {
	snap := e.snap.Load()
	if snap == nil {
		return nil
	}
	return snap.docs[docID]
}
