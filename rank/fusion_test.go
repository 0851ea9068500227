package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/index"
)

func passageLookup(passages []*core.Passage) func(core.ID) *core.Passage {
	byID := make(map[core.ID]*core.Passage, len(passages))
	for _, p := range passages {
		byID[p.Id] = p
	}
	return func(id core.ID) *core.Passage { return byID[id] }
}

func TestMinMaxNormalize(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		assert.Empty(t, MinMaxNormalize(nil))
	})

	t.Run("single score maps to midpoint", func(t *testing.T) {
		got := MinMaxNormalize([]index.Hit{{ID: 1, Score: 7.3}})
		assert.Equal(t, map[core.ID]float64{1: 0.5}, got)
	})

	t.Run("uniform scores map to midpoint", func(t *testing.T) {
		got := MinMaxNormalize([]index.Hit{{ID: 1, Score: 2}, {ID: 2, Score: 2}})
		assert.Equal(t, 0.5, got[1])
		assert.Equal(t, 0.5, got[2])
	})

	t.Run("scores span the unit interval", func(t *testing.T) {
		got := MinMaxNormalize([]index.Hit{
			{ID: 1, Score: 10},
			{ID: 2, Score: 5},
			{ID: 3, Score: 0},
		})
		assert.Equal(t, 1.0, got[1])
		assert.Equal(t, 0.5, got[2])
		assert.Equal(t, 0.0, got[3])
	})
}

func TestWeightsFor(t *testing.T) {
	for intent, w := range intentWeights {
		assert.InDelta(t, 1.0, w.Dense+w.Sparse, 1e-9, intent.String())
	}
	assert.Equal(t, Weights{Dense: 0.2, Sparse: 0.8}, WeightsFor(core.IntentPrice))
	assert.Equal(t, Weights{Dense: 0.1, Sparse: 0.9}, WeightsFor(core.IntentDocuments))
	assert.Equal(t, WeightsFor(core.IntentGeneral), WeightsFor(core.Intent(99)))
}

func TestFuseNumericBoost(t *testing.T) {
	exact := &core.Passage{Id: 1, DocID: "exact", Price: 1100, HasPrice: true}
	near := &core.Passage{Id: 2, DocID: "near", Price: 1150, HasPrice: true}
	far := &core.Passage{Id: 3, DocID: "far", Price: 1500, HasPrice: true}
	lookup := passageLookup([]*core.Passage{exact, near, far})

	analysis := core.QueryAnalysis{Intent: core.IntentPrice, Prices: []int{1100}}
	hits := []index.Hit{{ID: 1, Score: 3}, {ID: 2, Score: 3}, {ID: 3, Score: 3}}

	got := Fuse(hits, nil, analysis, lookup)
	require.Len(t, got, 3)

	boosts := map[string]float64{}
	for _, c := range got {
		boosts[c.Passage.DocID] = c.NumericBoost
	}
	assert.Equal(t, 2.0, boosts["exact"])
	assert.Equal(t, 1.5, boosts["near"])
	assert.Equal(t, 1.0, boosts["far"])

	// Equal retrieval scores, so the boost alone decides the order.
	assert.Equal(t, "exact", got[0].Passage.DocID)
	assert.Equal(t, "near", got[1].Passage.DocID)
	assert.Equal(t, "far", got[2].Passage.DocID)
}

func TestFuseSpeedAndFreeBoosts(t *testing.T) {
	gig := &core.Passage{Id: 1, DocID: "gig", SpeedMbps: 1500, HasSpeed: true}
	nearby := &core.Passage{Id: 2, DocID: "close", SpeedMbps: 1400, HasSpeed: true}
	free := &core.Passage{Id: 3, DocID: "free", IsFree: true}
	lookup := passageLookup([]*core.Passage{gig, nearby, free})
	hits := []index.Hit{{ID: 1, Score: 1}, {ID: 2, Score: 1}, {ID: 3, Score: 1}}

	got := Fuse(hits, nil, core.QueryAnalysis{
		Intent: core.IntentSpeed,
		Speeds: []float64{1500},
	}, lookup)
	boosts := map[string]float64{}
	for _, c := range got {
		boosts[c.Passage.DocID] = c.NumericBoost
	}
	assert.Equal(t, 2.0, boosts["gig"])
	assert.Equal(t, 1.5, boosts["close"])
	assert.Equal(t, 1.0, boosts["free"])

	got = Fuse(hits, nil, core.QueryAnalysis{Intent: core.IntentPrice, WantsFree: true}, lookup)
	for _, c := range got {
		if c.Passage.DocID == "free" {
			assert.Equal(t, 1.5, c.NumericBoost)
		} else {
			assert.Equal(t, 1.0, c.NumericBoost)
		}
	}
}

func TestFuseIntentWeighting(t *testing.T) {
	lexical := &core.Passage{Id: 1, DocID: "lexical"}
	semantic := &core.Passage{Id: 2, DocID: "semantic"}
	lookup := passageLookup([]*core.Passage{lexical, semantic})

	sparse := []index.Hit{{ID: 1, Score: 10}, {ID: 2, Score: 1}}
	dense := []index.Hit{{ID: 2, Score: 0.9}, {ID: 1, Score: 0.1}}

	docHeavy := Fuse(sparse, dense, core.QueryAnalysis{Intent: core.IntentDocuments}, lookup)
	require.Len(t, docHeavy, 2)
	assert.Equal(t, "lexical", docHeavy[0].Passage.DocID)

	general := Fuse(sparse, dense, core.QueryAnalysis{Intent: core.IntentGeneral}, lookup)
	require.Len(t, general, 2)
	assert.Equal(t, "semantic", general[0].Passage.DocID)
}

func TestFuseDropsUnresolvedHits(t *testing.T) {
	known := &core.Passage{Id: 1, DocID: "known"}
	lookup := passageLookup([]*core.Passage{known})

	got := Fuse([]index.Hit{{ID: 1, Score: 2}, {ID: 42, Score: 9}}, nil, core.QueryAnalysis{}, lookup)
	require.Len(t, got, 1)
	assert.Equal(t, "known", got[0].Passage.DocID)
}

func TestFuseEmptyPools(t *testing.T) {
	got := Fuse(nil, nil, core.QueryAnalysis{Intent: core.IntentPrice}, func(core.ID) *core.Passage { return nil })
	assert.Empty(t, got)
}

func TestFuseWithRules(t *testing.T) {
	a := &core.Passage{Id: 1, DocID: "doc_a"}
	b := &core.Passage{Id: 2, DocID: "doc_b"}
	c := &core.Passage{Id: 3, DocID: "doc_c"}
	lookup := passageLookup([]*core.Passage{a, b, c})

	hits := []index.Hit{{ID: 1, Score: 2}, {ID: 2, Score: 2}, {ID: 3, Score: 2}}
	rules := map[string]float64{"doc_a": 50, "doc_b": 10}

	got := FuseWithRules(hits, nil, rules, core.QueryAnalysis{Intent: core.IntentGeneral}, lookup)
	require.Len(t, got, 3)

	assert.Equal(t, "doc_a", got[0].Passage.DocID)
	assert.Equal(t, 1.0, got[0].Rule)

	// Equal lexical scores normalize to 0.5, weighted by the general
	// sparse weight 0.3; doc_b earns no rule bonus, doc_c is dampened
	// for never being routed.
	byDoc := map[string]core.ScoredCandidate{}
	for _, cand := range got {
		byDoc[cand.Passage.DocID] = cand
	}
	assert.InDelta(t, 0.15+1.25, byDoc["doc_a"].Hybrid, 1e-9)
	assert.InDelta(t, 0.15, byDoc["doc_b"].Hybrid, 1e-9)
	assert.InDelta(t, 0.15*0.7, byDoc["doc_c"].Hybrid, 1e-9)
	assert.Zero(t, byDoc["doc_c"].Rule)
}
