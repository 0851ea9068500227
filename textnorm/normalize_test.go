package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/core"
)

func TestDetectLang(t *testing.T) {
	t.Run("french", func(t *testing.T) {
		assert.Equal(t, LangFrench, DetectLang("Quel est le prix de la fibre 1.5 Gbps ?"))
	})

	t.Run("arabic", func(t *testing.T) {
		assert.Equal(t, LangArabic, DetectLang("ما هو سعر الألياف البصرية؟"))
	})

	t.Run("mixed", func(t *testing.T) {
		assert.Equal(t, LangMixed, DetectLang("سعر offre fibre والتركيب"))
	})

	t.Run("no letters defaults to french", func(t *testing.T) {
		assert.Equal(t, LangFrench, DetectLang("1100 ?"))
	})
}

func TestNormalizeArabic(t *testing.T) {
	t.Run("strips diacritics", func(t *testing.T) {
		assert.Equal(t, "مجانا", NormalizeArabic("مَجَّانًا"))
	})

	t.Run("folds alef and taa marbouta", func(t *testing.T) {
		assert.Equal(t, "اشتراك مدرسه", NormalizeArabic("أشتراك مدرسة"))
	})

	t.Run("removes tatweel", func(t *testing.T) {
		assert.Equal(t, "سعر", NormalizeArabic("ســـعر"))
	})

	t.Run("latin acronyms pass through", func(t *testing.T) {
		assert.Equal(t, "عرض 4g lte", NormalizeArabic("عرض 4G LTE"))
	})
}

func TestNormalizeFrench(t *testing.T) {
	assert.Equal(t, "débit de l'offre wi-fi", NormalizeFrench("  Débit de l'Offre Wi-Fi "))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "etablissement agree", Fold("Établissement Agréé"))
}

func TestTokenize(t *testing.T) {
	t.Run("drops single letters keeps digits", func(t *testing.T) {
		tokens := Tokenize("l'offre à 1 100 DA")
		assert.Equal(t, []string{"offre", "1", "100", "DA"}, tokens)
	})

	t.Run("keeps latin acronyms in arabic", func(t *testing.T) {
		tokens := Tokenize("عرض 4G بدون التزام")
		assert.Contains(t, tokens, "4G")
		assert.Contains(t, tokens, "عرض")
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize("  ... "))
	})
}

func TestNormalizeBeneficiary(t *testing.T) {
	cases := []struct {
		in   string
		want core.BeneficiaryCategory
	}{
		{"Cadres Supérieurs", core.BeneficiarySeniorExecutives},
		{"personnel retraité", core.BeneficiaryRetirees},
		{"Personnel en exercice", core.BeneficiaryActiveStaff},
		{"Ayants droit", core.BeneficiaryDependents},
		{"Tout le personnel et retraités", core.BeneficiaryEveryone},
		{"partenaires externes", core.BeneficiaryOther},
		{"", core.BeneficiaryUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeBeneficiary(tc.in))
		})
	}
}

func TestExpandBeneficiaryQuery(t *testing.T) {
	t.Run("adds synonyms for detected term", func(t *testing.T) {
		expanded := ExpandBeneficiaryQuery("offre pour les retraités")
		assert.Contains(t, expanded, "retraités")
		assert.Contains(t, expanded, "pensionnés")
	})

	t.Run("untouched without beneficiary term", func(t *testing.T) {
		q := "prix fibre 1.5 gbps"
		assert.Equal(t, q, ExpandBeneficiaryQuery(q))
	})
}

func TestSynonyms(t *testing.T) {
	t.Run("known term capped at five", func(t *testing.T) {
		syns := Synonyms("Fibre")
		require.NotEmpty(t, syns)
		assert.LessOrEqual(t, len(syns), 5)
	})

	t.Run("unknown term", func(t *testing.T) {
		assert.Nil(t, Synonyms("xyzzy"))
	})
}

func TestExpandTokens(t *testing.T) {
	expanded := ExpandTokens([]string{"prix", "fibre"}, 3)
	assert.Contains(t, expanded, "prix")
	assert.Contains(t, expanded, "fibre")
	assert.Contains(t, expanded, "tarif")
	// Original tokens come first.
	assert.Equal(t, "prix", expanded[0])
}

func TestCrossLanguageMatches(t *testing.T) {
	docTokens := map[string]bool{"سعر": true, "فايبر": true}
	n := CrossLanguageMatches([]string{"prix", "fibre", "modem"}, docTokens)
	assert.Equal(t, 2, n)
}

func TestHasArabic(t *testing.T) {
	assert.True(t, HasArabic([]string{"offre", "سعر"}))
	assert.False(t, HasArabic([]string{"offre", "prix"}))
}
