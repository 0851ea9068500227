package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.Intent
	}{
		{"price french", "combien coute la fibre", core.IntentPrice},
		{"price arabic", "سعر الانترنت في المنزل", core.IntentPrice},
		{"speed", "quel debit pour le vdsl", core.IntentSpeed},
		{"documents", "quels documents fournir pour le dossier", core.IntentDocuments},
		{"beneficiary", "offres pour les retraites", core.IntentBeneficiary},
		{"general fallback", "bonjour je voudrais des informations", core.IntentGeneral},
		{"empty", "", core.IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := ClassifyIntent(tt.query)
			assert.Equal(t, tt.want, cls.Intent)
			assert.Greater(t, cls.Confidence, 0.0)
			assert.LessOrEqual(t, cls.Confidence, 1.0)
		})
	}
}

func TestClassifyIntentPriorityBreaksEqualCounts(t *testing.T) {
	// One price trigger and one speed trigger: the priority bonus tips
	// the equal counts toward price.
	cls := ClassifyIntent("prix et debit de l'offre")
	assert.Equal(t, core.IntentPrice, cls.Intent)
	assert.Less(t, cls.Confidence, 1.0)
}

func TestClassifyIntentNoTriggerConfidence(t *testing.T) {
	cls := ClassifyIntent("merci beaucoup")
	assert.Equal(t, core.IntentGeneral, cls.Intent)
	assert.Equal(t, 0.5, cls.Confidence)
}

func TestClassifyIntentSingleIntentFullConfidence(t *testing.T) {
	cls := ClassifyIntent("quels documents fournir pour le dossier")
	assert.Equal(t, core.IntentDocuments, cls.Intent)
	assert.InDelta(t, 1.0, cls.Confidence, 1e-9)
}

func TestEntityDetect(t *testing.T) {
	d := NewEntityDetector(nil)

	t.Run("single entity", func(t *testing.T) {
		det := d.Detect("offre fibre pour établissement P")
		assert.Equal(t, []string{"P"}, det.Entities)
		assert.Equal(t, 0.85, det.Confidence)
		assert.True(t, det.HardFilter)
	})

	t.Run("exclusivity raises confidence", func(t *testing.T) {
		det := d.Detect("uniquement pour l'établissement V")
		assert.Equal(t, []string{"V"}, det.Entities)
		assert.Equal(t, 0.95, det.Confidence)
		assert.True(t, det.HardFilter)
	})

	t.Run("multiple entities disable hard filter", func(t *testing.T) {
		det := d.Detect("convention P et convention V")
		assert.Equal(t, []string{"P", "V"}, det.Entities)
		assert.Equal(t, 0.6, det.Confidence)
		assert.False(t, det.HardFilter)
	})

	t.Run("tag form", func(t *testing.T) {
		det := d.Detect("fibre etab = p")
		assert.Equal(t, []string{"P"}, det.Entities)
		assert.True(t, det.HardFilter)
	})

	t.Run("unknown code ignored", func(t *testing.T) {
		det := d.Detect("établissement Z propose quoi")
		assert.Empty(t, det.Entities)
		assert.False(t, det.HardFilter)
	})

	t.Run("no entity mention", func(t *testing.T) {
		det := d.Detect("prix de la fibre 1 gbps")
		assert.Empty(t, det.Entities)
		assert.Zero(t, det.Confidence)
	})
}

func TestFilterHardFilter(t *testing.T) {
	passages := []core.Passage{
		{EntityCode: "P", Text: "offre fibre"},
		{EntityCode: "V", Text: "offre adsl"},
		{EntityCode: "p", Text: "documents requis"},
		{EntityCode: "F", Text: "offre 4g"},
	}

	t.Run("keeps only matching entity", func(t *testing.T) {
		det := Detection{Entities: []string{"P"}, Confidence: 0.85, HardFilter: true}
		got := Filter(passages, det)
		require.Len(t, got, 2)
		for _, p := range got {
			assert.True(t, p.EntityCode == "P" || p.EntityCode == "p")
		}
	})

	t.Run("no hard filter passes through", func(t *testing.T) {
		det := Detection{Entities: []string{"P", "V"}, Confidence: 0.6}
		got := Filter(passages, det)
		assert.Equal(t, passages, got)
	})

	t.Run("empty detection passes through", func(t *testing.T) {
		got := Filter(passages, Detection{})
		assert.Equal(t, passages, got)
	})
}

func TestAnalyzerAnalyze(t *testing.T) {
	a, err := NewAnalyzer()
	require.NoError(t, err)

	t.Run("price query with entity and speed", func(t *testing.T) {
		got := a.Analyze("Prix fibre 1.5 Gbps établissement P")

		assert.Equal(t, core.IntentPrice, got.Intent)
		assert.Greater(t, got.IntentConfidence, 0.5)
		assert.Equal(t, []string{"P"}, got.Entities)
		assert.True(t, got.HardFilter)
		assert.Empty(t, got.Prices)
		assert.Equal(t, []float64{1500}, got.Speeds)
		assert.False(t, got.WantsFree)
		assert.Equal(t, textnorm.LangFrench, got.Lang)
		assert.Equal(t, core.BeneficiaryUnknown, got.Beneficiary)
	})

	t.Run("explicit price", func(t *testing.T) {
		got := a.Analyze("offre fibre à 1100 DA")
		assert.Equal(t, []int{1100}, got.Prices)
	})

	t.Run("free offer query", func(t *testing.T) {
		got := a.Analyze("installation gratuite pour la fibre")
		assert.True(t, got.WantsFree)
	})

	t.Run("beneficiary detection", func(t *testing.T) {
		got := a.Analyze("quelles offres pour les ayants droit")
		assert.Equal(t, core.BeneficiaryDependents, got.Beneficiary)

		got = a.Analyze("fibre pour les retraités")
		assert.Equal(t, core.BeneficiaryRetirees, got.Beneficiary)

		got = a.Analyze("offre pour les cadres supérieurs")
		assert.Equal(t, core.BeneficiarySeniorExecutives, got.Beneficiary)
	})

	t.Run("arabic query", func(t *testing.T) {
		got := a.Analyze("سعر الألياف البصرية")
		assert.Equal(t, textnorm.LangArabic, got.Lang)
		assert.Equal(t, core.IntentPrice, got.Intent)
	})

	t.Run("never empty interpretation", func(t *testing.T) {
		got := a.Analyze("")
		assert.Equal(t, core.IntentGeneral, got.Intent)
		assert.Empty(t, got.Entities)
		assert.False(t, got.HardFilter)
	})
}

func TestFilterCandidates(t *testing.T) {
	p1 := &core.Passage{EntityCode: "P"}
	p2 := &core.Passage{EntityCode: "V"}
	candidates := []core.ScoredCandidate{{Passage: p1}, {Passage: p2}}

	filtered := FilterCandidates(candidates, core.QueryAnalysis{
		Entities:   []string{"V"},
		HardFilter: true,
	})
	require.Len(t, filtered, 1)
	assert.Equal(t, "V", filtered[0].Passage.EntityCode)

	passthrough := FilterCandidates(candidates, core.QueryAnalysis{})
	assert.Equal(t, candidates, passthrough)
}

func TestAnalyzerOptions(t *testing.T) {
	t.Run("custom entity codes", func(t *testing.T) {
		a, err := NewAnalyzer(WithEntityCodes([]string{"ZZ"}))
		require.NoError(t, err)

		got := a.Analyze("convention zz pour la fibre")
		assert.Equal(t, []string{"ZZ"}, got.Entities)

		got = a.Analyze("convention p pour la fibre")
		assert.Empty(t, got.Entities)
	})

	t.Run("empty entity codes rejected", func(t *testing.T) {
		_, err := NewAnalyzer(WithEntityCodes(nil))
		assert.Error(t, err)
	})

	t.Run("nil logger rejected", func(t *testing.T) {
		_, err := NewAnalyzer(WithLogger(nil))
		assert.Error(t, err)
	})
}
