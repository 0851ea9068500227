package rerank

import (
	"strings"

	"github.com/poiesic/telsearch/textnorm"
)

const (
	substringBonus = 0.2
	lengthBonus    = 0.1

	// Passages in this length band tend to be complete statements
	// rather than fragments or whole-table dumps.
	idealMinLen = 50
	idealMaxLen = 300
)

// HeuristicScore approximates cross-encoder relevance from lexical
// overlap alone. The score is term coverage of the query, plus a bonus
// when the whole normalized query appears verbatim, plus a small bonus
// for comfortably sized passages. Range [0, 1.3].
func HeuristicScore(query, text string) float64 {
	queryTokens := textnorm.TokenizeFolded(query)
	if len(queryTokens) == 0 {
		return 0
	}
	textTokens := make(map[string]bool)
	for _, tok := range textnorm.TokenizeFolded(text) {
		textTokens[tok] = true
	}

	covered := 0
	for _, tok := range queryTokens {
		if textTokens[tok] {
			covered++
		}
	}
	score := float64(covered) / float64(len(queryTokens))

	foldedQuery := textnorm.Fold(textnorm.NormalizeArabic(query))
	foldedText := textnorm.Fold(textnorm.NormalizeArabic(text))
	if foldedQuery != "" && strings.Contains(foldedText, foldedQuery) {
		score += substringBonus
	}
	if n := len([]rune(text)); n >= idealMinLen && n <= idealMaxLen {
		score += lengthBonus
	}
	return score
}
