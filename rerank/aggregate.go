package rerank

import (
	"sort"

	"github.com/poiesic/telsearch/core"
)

const (
	bestPassageWeight = 0.5
	maxHybridWeight   = 0.3
	meanHybridWeight  = 0.2

	// topNGapRatio is the relative score gap under which the next
	// document still joins the result.
	topNGapRatio = 0.05
	// topNCeiling bounds how far the result can grow on a flat curve.
	topNCeiling = 3

	// supportDepth is how many passages count toward a document's
	// supporting-evidence mean.
	supportDepth = 3
)

// Aggregate folds reranked passages into one match per document,
// sorted best first. The document score blends the best passage's
// rerank score with the strength and depth of the document's hybrid
// support, so a document backed by several good passages outranks one
// that surfaced a single lucky line.
func Aggregate(candidates []core.ScoredCandidate) []core.DocumentMatch {
	if len(candidates) == 0 {
		return nil
	}

	order := make([]string, 0)
	grouped := make(map[string][]core.ScoredCandidate)
	for _, c := range candidates {
		docID := c.Passage.DocID
		if _, ok := grouped[docID]; !ok {
			order = append(order, docID)
		}
		grouped[docID] = append(grouped[docID], c)
	}

	matches := make([]core.DocumentMatch, 0, len(order))
	for _, docID := range order {
		group := grouped[docID]

		best := group[0]
		maxHybrid := group[0].Hybrid
		for _, c := range group[1:] {
			if c.Rerank > best.Rerank {
				best = c
			}
			if c.Hybrid > maxHybrid {
				maxHybrid = c.Hybrid
			}
		}

		hybrids := make([]float64, len(group))
		for i, c := range group {
			hybrids[i] = c.Hybrid
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(hybrids)))
		top := hybrids
		if len(top) > supportDepth {
			top = top[:supportDepth]
		}
		sum := 0.0
		for _, h := range top {
			sum += h
		}
		// Always divided by the full depth: a document with a single
		// passage earns a third of the mean term, so breadth of
		// support counts, not just the best line.
		meanHybrid := sum / float64(supportDepth)

		support := make([]core.ScoredCandidate, 0, len(group)-1)
		for _, c := range group {
			if c.Passage.Id != best.Passage.Id {
				support = append(support, c)
			}
		}
		sort.SliceStable(support, func(i, j int) bool {
			return support[i].Final > support[j].Final
		})

		matches = append(matches, core.DocumentMatch{
			DocID:   docID,
			Score:   bestPassageWeight*best.Rerank + maxHybridWeight*maxHybrid + meanHybridWeight*meanHybrid,
			Best:    best,
			Support: support,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// DynamicTopN decides how many documents to return from a sorted match
// list. It starts at one and grows while the next document scores
// within topNGapRatio of the previous one, up to topNCeiling and the
// caller's max. A clear leader yields exactly one document.
func DynamicTopN(matches []core.DocumentMatch, max int) int {
	if len(matches) == 0 || max <= 0 {
		return 0
	}
	limit := len(matches)
	if max < limit {
		limit = max
	}
	if topNCeiling < limit {
		limit = topNCeiling
	}

	n := 1
	for n < limit {
		prev := matches[n-1].Score
		if prev <= 0 {
			break
		}
		if (prev-matches[n].Score)/prev >= topNGapRatio {
			break
		}
		n++
	}
	return n
}

// SelectTop trims a sorted match list to its dynamic top-N.
func SelectTop(matches []core.DocumentMatch, max int) []core.DocumentMatch {
	n := DynamicTopN(matches, max)
	return matches[:n]
}
