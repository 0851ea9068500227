package rank

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

const (
	minSignatureLen   = 4
	minSignatureCount = 3
	minConcentration  = 0.6
	minLocalRatio     = 0.01

	signatureTokenWeight = 0.1
	entityTermWeight     = 0.05
	baseTokenWeight      = 0.1

	// maxSignatureGain caps the summed contributions so a single
	// passage stuffed with rare terms cannot dominate the pool.
	maxSignatureGain = 1.0

	entityMismatchDamping = 0.5
)

// baseSignatureTokens always count as discriminant, whatever the
// corpus statistics say. They name niche offers that only a handful of
// agreements carry.
var baseSignatureTokens = map[string]bool{
	"gamer":         true,
	"parrainage":    true,
	"scolaire":      true,
	"locataire":     true,
	"edahabia":      true,
	"wifi6":         true,
	"modernisation": true,
	"basculement":   true,
	"timbre":        true,
}

// Booster scores candidates by discriminant vocabulary: terms rare in
// the corpus but concentrated in one establishment's passages. Mined
// once per snapshot; Boost is read-only and safe for concurrent use.
type Booster struct {
	// idf maps every mined term to log((N+1)/(df+1))+1.
	idf map[string]float64
	// entityTerms maps an entity code to its discriminant terms.
	entityTerms map[string]map[string]bool
	logger      *slog.Logger
}

// BoosterOption configures a Booster.
type BoosterOption func(*Booster) error

// WithBoosterLogger sets the logger used during mining.
func WithBoosterLogger(logger *slog.Logger) BoosterOption {
	return func(b *Booster) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		b.logger = logger
		return nil
	}
}

type termStats struct {
	df       int
	count    int
	byEntity map[string]int
}

// ngrams emits the unigrams, bigrams and trigrams of a token slice,
// joined by single spaces.
func ngrams(tokens []string) []string {
	out := make([]string, 0, len(tokens)*3)
	for i := range tokens {
		out = append(out, tokens[i])
		if i+1 < len(tokens) {
			out = append(out, tokens[i]+" "+tokens[i+1])
		}
		if i+2 < len(tokens) {
			out = append(out, tokens[i]+" "+tokens[i+1]+" "+tokens[i+2])
		}
	}
	return out
}

// NewBooster mines the discriminant vocabulary of a passage corpus.
func NewBooster(passages []core.Passage, opts ...BoosterOption) (*Booster, error) {
	b := &Booster{
		idf:         make(map[string]float64),
		entityTerms: make(map[string]map[string]bool),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	stats := make(map[string]*termStats)
	entityTotals := make(map[string]int)
	for _, p := range passages {
		terms := ngrams(textnorm.TokenizeFolded(p.Text))
		entityTotals[p.EntityCode] += len(terms)

		seenInPassage := make(map[string]bool, len(terms))
		for _, term := range terms {
			st := stats[term]
			if st == nil {
				st = &termStats{byEntity: make(map[string]int)}
				stats[term] = st
			}
			st.count++
			st.byEntity[p.EntityCode]++
			if !seenInPassage[term] {
				st.df++
				seenInPassage[term] = true
			}
		}
	}

	n := len(passages)
	discriminant := 0
	for term, st := range stats {
		b.idf[term] = math.Log(float64(n+1)/float64(st.df+1)) + 1

		if len([]rune(term)) < minSignatureLen || st.count < minSignatureCount {
			continue
		}
		dominant, dominantCount := "", 0
		for entity, c := range st.byEntity {
			if c > dominantCount {
				dominant, dominantCount = entity, c
			}
		}
		if dominant == "" || entityTotals[dominant] == 0 {
			continue
		}
		concentration := float64(dominantCount) / float64(st.count)
		localRatio := float64(dominantCount) / float64(entityTotals[dominant])
		if concentration <= minConcentration || localRatio <= minLocalRatio {
			continue
		}
		if b.entityTerms[dominant] == nil {
			b.entityTerms[dominant] = make(map[string]bool)
		}
		b.entityTerms[dominant][term] = true
		discriminant++
	}

	b.logger.Debug("mined signature vocabulary",
		"passages", n,
		"terms", len(stats),
		"discriminant", discriminant,
		"entities", len(b.entityTerms))
	return b, nil
}

func (b *Booster) termIDF(term string) float64 {
	if idf, ok := b.idf[term]; ok {
		return idf
	}
	return 1.0
}

// Boost computes the signature multiplier for one candidate against
// the query's term set. The base multiplier is 1 plus the capped sum
// of contributions; it is then halved when the query names entities
// and the passage belongs to none of them.
func (b *Booster) Boost(p *core.Passage, analysis core.QueryAnalysis) float64 {
	queryTerms := make(map[string]bool)
	for _, term := range ngrams(textnorm.TokenizeFolded(analysis.Raw)) {
		queryTerms[term] = true
	}

	foldedText := textnorm.Fold(textnorm.NormalizeArabic(p.Text))

	sum := 0.0
	for _, tok := range p.SignatureTokens {
		if queryTerms[textnorm.Fold(tok)] {
			sum += b.termIDF(textnorm.Fold(tok)) * signatureTokenWeight
		}
	}
	for term := range b.entityTerms[p.EntityCode] {
		if queryTerms[term] {
			sum += b.termIDF(term) * entityTermWeight
		}
	}
	for tok := range baseSignatureTokens {
		if queryTerms[tok] && strings.Contains(foldedText, tok) {
			sum += b.termIDF(tok) * baseTokenWeight
		}
	}

	boost := 1 + math.Min(sum, maxSignatureGain)

	if len(analysis.Entities) > 0 && p.EntityCode != "" {
		matched := false
		for _, entity := range analysis.Entities {
			if strings.EqualFold(p.EntityCode, entity) {
				matched = true
				break
			}
		}
		if !matched {
			boost *= entityMismatchDamping
		}
	}
	return boost
}

// Apply returns a new candidate slice with signature boosts folded
// into the hybrid scores, re-sorted best first.
func (b *Booster) Apply(candidates []core.ScoredCandidate, analysis core.QueryAnalysis) []core.ScoredCandidate {
	out := make([]core.ScoredCandidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].SignatureBoost = b.Boost(out[i].Passage, analysis)
		out[i].Hybrid *= out[i].SignatureBoost
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Hybrid > out[j].Hybrid
	})
	return out
}
