package textnorm

import (
	"strings"

	"github.com/poiesic/telsearch/core"
)

// beneficiarySynonyms lists the French phrasings observed in agreements
// for each eligibility class. Keys are folded; matching is
// accent-insensitive.
var beneficiarySynonyms = map[core.BeneficiaryCategory][]string{
	core.BeneficiarySeniorExecutives: {
		"cadres supérieurs", "cadres dirigeants", "hauts cadres",
		"cadres de direction", "personnel d'encadrement supérieur",
	},
	core.BeneficiaryRetirees: {
		"retraités", "personnel retraité", "anciens employés",
		"pensionnés", "retraités de l'entreprise",
	},
	core.BeneficiaryActiveStaff: {
		"actifs", "personnel actif", "employés en activité",
		"personnel en exercice", "travailleurs actifs", "salariés",
	},
	core.BeneficiaryDependents: {
		"ayants droit", "ayant droit", "membres de la famille",
		"conjoints et enfants", "famille du personnel", "ascendants",
	},
	core.BeneficiaryEveryone: {
		"tous", "tout le personnel", "ensemble du personnel",
		"tous les employés", "personnel et retraités",
	},
}

// NormalizeBeneficiary maps a raw beneficiary cell to its category.
// Broad classes win over narrow ones: an offer for "tout le personnel et
// retraités" is classified as everyone, not retirees.
func NormalizeBeneficiary(s string) core.BeneficiaryCategory {
	if strings.TrimSpace(s) == "" {
		return core.BeneficiaryUnknown
	}
	folded := Fold(s)
	switch {
	case strings.Contains(folded, "tous") || strings.Contains(folded, "ensemble") ||
		strings.Contains(folded, "tout le personnel"):
		return core.BeneficiaryEveryone
	case strings.Contains(folded, "cadre") &&
		(strings.Contains(folded, "superieur") || strings.Contains(folded, "dirigeant") ||
			strings.Contains(folded, "direction")):
		return core.BeneficiarySeniorExecutives
	case strings.Contains(folded, "retrait") || strings.Contains(folded, "pension"):
		return core.BeneficiaryRetirees
	case strings.Contains(folded, "actif") || strings.Contains(folded, "exercice") ||
		strings.Contains(folded, "salarie") || strings.Contains(folded, "activite"):
		return core.BeneficiaryActiveStaff
	case strings.Contains(folded, "ayant") || strings.Contains(folded, "famille") ||
		strings.Contains(folded, "conjoint") || strings.Contains(folded, "ascendant"):
		return core.BeneficiaryDependents
	}
	return core.BeneficiaryOther
}

// BeneficiarySynonyms returns the known phrasings for a category.
func BeneficiarySynonyms(cat core.BeneficiaryCategory) []string {
	return beneficiarySynonyms[cat]
}

// ExpandBeneficiaryQuery appends up to three synonym phrasings per
// beneficiary term detected in the query, so lexical retrieval matches
// agreements that phrase eligibility differently.
func ExpandBeneficiaryQuery(query string) string {
	folded := Fold(query)
	var extra []string
	for cat, synonyms := range beneficiarySynonyms {
		matched := false
		for _, syn := range synonyms {
			if strings.Contains(folded, Fold(syn)) {
				matched = true
				break
			}
		}
		if !matched && NormalizeBeneficiary(query) == cat {
			matched = true
		}
		if !matched {
			continue
		}
		n := 0
		for _, syn := range synonyms {
			if strings.Contains(folded, Fold(syn)) {
				continue
			}
			extra = append(extra, syn)
			n++
			if n == 3 {
				break
			}
		}
	}
	if len(extra) == 0 {
		return query
	}
	return query + " " + strings.Join(extra, " ")
}
