package rank

import (
	"math"
	"sort"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/index"
)

const (
	exactMatchBoost = 2.0
	nearMatchBoost  = 1.5
	freeMatchBoost  = 1.5

	// nearPriceDA is the tolerance, in dinars, under which a tariff
	// still counts as the one the user asked about.
	nearPriceDA = 100
	// nearSpeedRatio is the relative tolerance for speed matching.
	nearSpeedRatio = 0.1

	ruleBlendWeight = 1.25
	// noRulePenalty damps candidates from documents the rule router
	// did not surface at all.
	noRulePenalty = 0.7
)

// MinMaxNormalize rescales a retrieval pool to [0,1]. A single-score
// pool maps to 0.5 so one weak hit is not mistaken for a perfect one.
// An empty pool yields an empty map.
func MinMaxNormalize(hits []index.Hit) map[core.ID]float64 {
	if len(hits) == 0 {
		return map[core.ID]float64{}
	}
	min, max := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < min {
			min = h.Score
		}
		if h.Score > max {
			max = h.Score
		}
	}
	normalized := make(map[core.ID]float64, len(hits))
	for _, h := range hits {
		if max == min {
			normalized[h.ID] = 0.5
			continue
		}
		normalized[h.ID] = (h.Score - min) / (max - min)
	}
	return normalized
}

// numericBoost returns the multiplier earned by structured-field
// agreement with the query. Only parsed fields participate; a price
// that merely appears in the passage text earns nothing.
func numericBoost(p *core.Passage, analysis core.QueryAnalysis) float64 {
	boost := 1.0
	if p.HasPrice {
		for _, price := range analysis.Prices {
			diff := math.Abs(float64(p.Price - price))
			switch {
			case diff == 0:
				boost = math.Max(boost, exactMatchBoost)
			case diff <= nearPriceDA:
				boost = math.Max(boost, nearMatchBoost)
			}
		}
	}
	if p.HasSpeed {
		for _, speed := range analysis.Speeds {
			if speed <= 0 {
				continue
			}
			diff := math.Abs(p.SpeedMbps - speed)
			switch {
			case diff < 1e-6:
				boost = math.Max(boost, exactMatchBoost)
			case diff/speed <= nearSpeedRatio:
				boost = math.Max(boost, nearMatchBoost)
			}
		}
	}
	if analysis.WantsFree && p.IsFree {
		boost = math.Max(boost, freeMatchBoost)
	}
	return boost
}

// Fuse blends the sparse and dense pools into one candidate list,
// weighted by intent and boosted by structured-field matches. The
// lookup resolves passage IDs; hits it cannot resolve are dropped.
// The result is sorted by hybrid score, best first, with pool order
// as the deterministic tie-break.
func Fuse(sparse, dense []index.Hit, analysis core.QueryAnalysis, lookup func(core.ID) *core.Passage) []core.ScoredCandidate {
	return fuse(sparse, dense, nil, analysis, lookup)
}

// FuseWithRules is Fuse plus the rule router's document scores. Rule
// scores are min-max normalized across the routed documents and added
// with their own weight; candidates from documents the router never
// scored are dampened instead.
func FuseWithRules(sparse, dense []index.Hit, ruleScores map[string]float64, analysis core.QueryAnalysis, lookup func(core.ID) *core.Passage) []core.ScoredCandidate {
	return fuse(sparse, dense, normalizeRules(ruleScores), analysis, lookup)
}

func normalizeRules(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return nil
	}
	first := true
	var min, max float64
	for _, s := range scores {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	normalized := make(map[string]float64, len(scores))
	for doc, s := range scores {
		if max == min {
			normalized[doc] = 0.5
			continue
		}
		normalized[doc] = (s - min) / (max - min)
	}
	return normalized
}

func fuse(sparse, dense []index.Hit, ruleByDoc map[string]float64, analysis core.QueryAnalysis, lookup func(core.ID) *core.Passage) []core.ScoredCandidate {
	sparseNorm := MinMaxNormalize(sparse)
	denseNorm := MinMaxNormalize(dense)
	weights := WeightsFor(analysis.Intent)

	// Union in first-seen order: sparse pool, then dense additions.
	// That order is the tie-break after sorting by score.
	seen := make(map[core.ID]bool, len(sparse)+len(dense))
	ids := make([]core.ID, 0, len(sparse)+len(dense))
	for _, h := range sparse {
		if !seen[h.ID] {
			seen[h.ID] = true
			ids = append(ids, h.ID)
		}
	}
	for _, h := range dense {
		if !seen[h.ID] {
			seen[h.ID] = true
			ids = append(ids, h.ID)
		}
	}

	candidates := make([]core.ScoredCandidate, 0, len(ids))
	for _, id := range ids {
		passage := lookup(id)
		if passage == nil {
			continue
		}
		c := core.ScoredCandidate{
			Passage: passage,
			Sparse:  sparseNorm[id],
			Dense:   denseNorm[id],
		}
		hybrid := weights.Dense*c.Dense + weights.Sparse*c.Sparse
		if ruleByDoc != nil {
			if rule, ok := ruleByDoc[passage.DocID]; ok {
				c.Rule = rule
				hybrid += ruleBlendWeight * rule
			} else {
				hybrid *= noRulePenalty
			}
		}
		c.NumericBoost = numericBoost(passage, analysis)
		c.Hybrid = hybrid * c.NumericBoost
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Hybrid > candidates[j].Hybrid
	})
	return candidates
}
