package query

import (
	"regexp"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

// intentTriggers maps each intent to the patterns that vote for it.
// Patterns run over the folded query; each match counts as one trigger.
var intentTriggers = map[core.Intent][]*regexp.Regexp{
	core.IntentPrice: compileAll(
		`\bprix\b`, `\btarif`, `\bcombien\b`, `\bcoute`, `\bcout\b`,
		`\bda\b`, `\bdinar`, `\bgratuit`, `\bpayant`, `\bmoins cher`,
		`سعر`, `ثمن`, `تسعير`, `بكم`, `مجان`,
	),
	core.IntentSpeed: compileAll(
		`\bdebit`, `\bvitesse`, `\bmbps\b`, `\bgbps\b`, `\bmega\b`,
		`\bgiga\b`, `\brapide`, `\blent`, `سرعه`, `تدفق`,
	),
	core.IntentDocuments: compileAll(
		`\bdocument`, `\bdossier`, `\bpapier`, `\battestation`, `\bcarte\b`,
		`\bjustificatif`, `\bfournir`, `\brequis`, `\bpiece`, `\bformulaire`,
		`وثائق`, `ملف`, `اوراق`, `وثيقه`,
	),
	core.IntentBeneficiary: compileAll(
		`\bbeneficiaire`, `\bretraite`, `\bactif`, `\bcadre`, `\bayant`,
		`\bfamille`, `\bpersonnel\b`, `\beligible`, `\bdroit\b`,
		`مستفيد`, `متقاعد`, `موظف`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Classification is an intent with its confidence.
type Classification struct {
	Intent     core.Intent
	Confidence float64
}

// ClassifyIntent counts trigger matches per intent. The highest count
// wins; ties break by fixed intent priority. Score adds a small
// priority-proportional bonus so confidence also reflects specificity.
// A query firing nothing is general with confidence 0.5.
func ClassifyIntent(query string) Classification {
	folded := textnorm.Fold(textnorm.NormalizeArabic(query))

	scores := make(map[core.Intent]float64)
	total := 0.0
	for intent, triggers := range intentTriggers {
		count := 0
		for _, re := range triggers {
			if re.MatchString(folded) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		score := float64(count) + float64(intent.Priority())*0.1
		scores[intent] = score
		total += score
	}

	if len(scores) == 0 {
		return Classification{Intent: core.IntentGeneral, Confidence: 0.5}
	}

	best := core.IntentGeneral
	bestScore := 0.0
	// Iterate in priority order so equal scores resolve to the higher
	// priority intent deterministically.
	for _, intent := range core.Intents() {
		if s, ok := scores[intent]; ok && s > bestScore {
			best = intent
			bestScore = s
		}
	}

	return Classification{Intent: best, Confidence: bestScore / total}
}
