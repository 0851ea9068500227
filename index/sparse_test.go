package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/core"
)

func passageWithText(id, text string) core.Passage {
	return core.Passage{
		Id:    core.IDFromContent(id),
		DocID: id,
		Type:  core.PassageGeneral,
		Text:  text,
	}
}

func TestSparseSearch(t *testing.T) {
	passages := []core.Passage{
		passageWithText("d1", "Idoom Fibre 1.5 Gbps à 1100 DA par mois"),
		passageWithText("d2", "Idoom ADSL 20 Mbps à 1600 DA par mois"),
		passageWithText("d3", "Documents requis pour nouvelle souscription"),
	}
	idx := BuildSparse(passages)
	require.Equal(t, 3, idx.Len())

	t.Run("relevant passage ranks first", func(t *testing.T) {
		hits := idx.Search("prix fibre 1100 da", 10)
		require.NotEmpty(t, hits)
		assert.Equal(t, passages[0].Id, hits[0].ID)
	})

	t.Run("scores descend", func(t *testing.T) {
		hits := idx.Search("idoom fibre adsl", 10)
		for i := 1; i < len(hits); i++ {
			assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
		}
	})

	t.Run("topK caps results", func(t *testing.T) {
		hits := idx.Search("idoom", 1)
		assert.Len(t, hits, 1)
	})

	t.Run("empty query yields empty result", func(t *testing.T) {
		assert.Nil(t, idx.Search("", 10))
	})

	t.Run("all stopword query yields empty result", func(t *testing.T) {
		assert.Nil(t, idx.Search("quel est le", 10))
	})

	t.Run("no matching term yields empty result", func(t *testing.T) {
		assert.Nil(t, idx.Search("satellite", 10))
	})
}

func TestSparseTieBreakByInsertionOrder(t *testing.T) {
	// Identical passages score identically; insertion order decides.
	passages := []core.Passage{
		passageWithText("d1", "modem wifi"),
		passageWithText("d2", "modem wifi"),
	}
	idx := BuildSparse(passages)
	hits := idx.Search("modem", 10)
	require.Len(t, hits, 2)
	assert.Equal(t, passages[0].Id, hits[0].ID)
	assert.Equal(t, passages[1].Id, hits[1].ID)
}

func TestSparseMonotonicity(t *testing.T) {
	// Adding one more occurrence of a query term never decreases the
	// passage's score, the rest of the corpus held fixed.
	base := []core.Passage{
		passageWithText("d1", "offre fibre pour le personnel"),
		passageWithText("d2", "offre adsl pour les retraités"),
		passageWithText("d3", "documents requis"),
	}
	more := []core.Passage{
		passageWithText("d1", "offre fibre fibre pour le personnel"),
		base[1],
		base[2],
	}

	scoreOf := func(idx *SparseIndex, id core.ID) float64 {
		for _, h := range idx.Search("fibre", 10) {
			if h.ID == id {
				return h.Score
			}
		}
		return 0
	}

	before := scoreOf(BuildSparse(base), base[0].Id)
	after := scoreOf(BuildSparse(more), more[0].Id)
	assert.GreaterOrEqual(t, after, before)
	assert.Positive(t, before)
}

func TestSparseStructuredFields(t *testing.T) {
	withFields := core.Passage{
		Id:          core.IDFromContent("offer"),
		DocID:       "conv_p",
		EntityCode:  "P",
		Type:        core.PassageOffer,
		Text:        "[Etab=P][Type=offer] Idoom Fibre",
		Price:       1100,
		HasPrice:    true,
		SpeedMbps:   1500,
		HasSpeed:    true,
		Beneficiary: core.BeneficiaryRetirees,
		Offer:       core.OfferFibre,
	}
	plain := passageWithText("other", "Idoom Fibre offre standard")
	idx := BuildSparse([]core.Passage{plain, withFields})

	t.Run("price field matches lexically", func(t *testing.T) {
		hits := idx.Search("1100 da", 10)
		require.NotEmpty(t, hits)
		assert.Equal(t, withFields.Id, hits[0].ID)
	})

	t.Run("speed field matches in gbps form", func(t *testing.T) {
		hits := idx.Search("1.5 gbps", 10)
		require.NotEmpty(t, hits)
		assert.Equal(t, withFields.Id, hits[0].ID)
	})

	t.Run("beneficiary synonyms match", func(t *testing.T) {
		hits := idx.Search("pensionnés", 10)
		require.NotEmpty(t, hits)
		assert.Equal(t, withFields.Id, hits[0].ID)
	})
}

func TestSparseFieldBoost(t *testing.T) {
	// Same term frequency, but for one passage the term is a structured
	// field; that one must score higher.
	tagged := core.Passage{
		Id:         core.IDFromContent("tagged"),
		DocID:      "d1",
		EntityCode: "fibre", // contrived: term appears as a field
		Type:       core.PassageGeneral,
		Text:       "offre spéciale",
	}
	plain := passageWithText("d2", "offre spéciale fibre")
	taggedCopy := tagged
	plainCopy := plain

	boosted := BuildSparse([]core.Passage{taggedCopy, plainCopy})
	hits := boosted.Search("fibre", 10)
	require.Len(t, hits, 2)

	flat := BuildSparse([]core.Passage{tagged, plain}, WithFieldBoost(1.0))
	flatHits := flat.Search("fibre", 10)
	require.Len(t, flatHits, 2)

	var boostedTagged, flatTagged float64
	for _, h := range hits {
		if h.ID == tagged.Id {
			boostedTagged = h.Score
		}
	}
	for _, h := range flatHits {
		if h.ID == tagged.Id {
			flatTagged = h.Score
		}
	}
	assert.Greater(t, boostedTagged, flatTagged)
}

func TestQueryTokens(t *testing.T) {
	tokens := QueryTokens("Quel est le prix de la Fibre ?")
	assert.Equal(t, []string{"prix", "fibre"}, tokens)
}

func TestSparseLargeCorpusTopK(t *testing.T) {
	var passages []core.Passage
	for i := 0; i < 100; i++ {
		passages = append(passages, passageWithText(fmt.Sprintf("d%d", i), "offre fibre"))
	}
	idx := BuildSparse(passages)
	assert.Len(t, idx.Search("fibre", 7), 7)
}
