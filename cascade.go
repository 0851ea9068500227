package telsearch

import (
	"context"
	"strings"

	"github.com/poiesic/telsearch/index"
)

// Cascade layers, cheapest first. Each layer answers alone when it is
// confident enough; the full hybrid pipeline is the fallback for
// everything else.
const (
	LayerRule     = "rule"
	LayerSparse   = "sparse"
	LayerDense    = "dense"
	LayerNotFound = "not_found"
)

const (
	// defaultRuleMinScore is the raw router score a document needs to
	// win outright. A single strong detector match scores above it; a
	// few incidental token overlaps do not.
	defaultRuleMinScore = 20.0

	// defaultSparseMinNorm is the acceptance threshold on the
	// saturated sparse score.
	defaultSparseMinNorm = 0.55

	// sparseNormK is the half-saturation constant: a raw score equal
	// to it maps to 0.5.
	sparseNormK = 10.0

	// defaultDenseMinCosine is the cosine floor for the dense layer.
	defaultDenseMinCosine = 0.1
)

// CascadeResult names the single best document and the layer that
// settled the query.
type CascadeResult struct {
	DocID string
	Score float64
	Layer string
	Found bool
}

// sparseNorm maps an unbounded lexical score into (0,1) so a fixed
// acceptance threshold makes sense across queries of different length.
func sparseNorm(score float64) float64 {
	return score / (score + sparseNormK)
}

// Cascade answers a query with the cheapest sufficiently confident
// layer: rule routing, then lexical search, then dense retrieval.
// Unlike Search it returns at most one document and never blends
// evidence across layers.
func (e *Engine) Cascade(ctx context.Context, rawQuery string) (*CascadeResult, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, ErrEmptyQuery
	}
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	analysis := e.analyzer.Analyze(rawQuery)

	if snap.router != nil {
		if cands := snap.router.Route(analysis.Raw); len(cands) > 0 && cands[0].Score >= e.ruleMinScore {
			e.logger.Debug("cascade settled by rule layer",
				"doc", cands[0].DocID, "score", cands[0].Score)
			return &CascadeResult{
				DocID: cands[0].DocID,
				Score: cands[0].Score,
				Layer: LayerRule,
				Found: true,
			}, nil
		}
	}

	hits := snap.sparse.SearchTokens(index.QueryTokens(analysis.Expanded), 1)
	if len(hits) > 0 {
		if norm := sparseNorm(hits[0].Score); norm >= e.sparseMinNorm {
			if p := snap.byID[hits[0].ID]; p != nil {
				e.logger.Debug("cascade settled by sparse layer",
					"doc", p.DocID, "score", norm)
				return &CascadeResult{
					DocID: p.DocID,
					Score: norm,
					Layer: LayerSparse,
					Found: true,
				}, nil
			}
		}
	}

	if snap.dense != nil {
		dctx, cancel := context.WithTimeout(ctx, e.denseTimeout)
		defer cancel()
		denseHits, err := snap.dense.Search(dctx, analysis.Normalized, 1)
		if err != nil {
			e.logger.Warn("cascade dense layer failed", "query", rawQuery, "error", err)
		} else if len(denseHits) > 0 && denseHits[0].Score >= e.denseMinCosine {
			if p := snap.byID[denseHits[0].ID]; p != nil {
				e.logger.Debug("cascade settled by dense layer",
					"doc", p.DocID, "score", denseHits[0].Score)
				return &CascadeResult{
					DocID: p.DocID,
					Score: denseHits[0].Score,
					Layer: LayerDense,
					Found: true,
				}, nil
			}
		}
	}

	return &CascadeResult{Layer: LayerNotFound}, nil
}
