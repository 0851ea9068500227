package query

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

// Analyzer composes intent classification, entity detection and numeric
// extraction into one query interpretation.
type Analyzer struct {
	detector *EntityDetector
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithEntityCodes replaces the default entity vocabulary.
func WithEntityCodes(codes []string) Option {
	return func(a *Analyzer) error {
		if len(codes) == 0 {
			return fmt.Errorf("entity codes cannot be empty")
		}
		a.detector = NewEntityDetector(codes)
		return nil
	}
}

// WithLogger sets the logger used for analysis diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// NewAnalyzer creates an analyzer with the default entity vocabulary.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		detector: NewEntityDetector(nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// detectBeneficiary looks for an eligibility class named in the query.
// Unlike textnorm.NormalizeBeneficiary it answers Unknown for queries
// that simply don't talk about beneficiaries.
func detectBeneficiary(folded string) core.BeneficiaryCategory {
	switch {
	case strings.Contains(folded, "cadre") &&
		(strings.Contains(folded, "superieur") || strings.Contains(folded, "dirigeant")):
		return core.BeneficiarySeniorExecutives
	case strings.Contains(folded, "retrait") || strings.Contains(folded, "pension"):
		return core.BeneficiaryRetirees
	case strings.Contains(folded, "ayant") && strings.Contains(folded, "droit"),
		strings.Contains(folded, "famille du personnel"):
		return core.BeneficiaryDependents
	case strings.Contains(folded, "actif") || strings.Contains(folded, "en exercice"):
		return core.BeneficiaryActiveStaff
	case strings.Contains(folded, "tout le personnel") || strings.Contains(folded, "ensemble du personnel"):
		return core.BeneficiaryEveryone
	}
	return core.BeneficiaryUnknown
}

// Analyze derives the full interpretation of a raw query. It never
// fails: unparseable fragments simply leave their fields empty.
func (a *Analyzer) Analyze(raw string) core.QueryAnalysis {
	lang := textnorm.DetectLang(raw)
	normalized := textnorm.Normalize(raw, lang)
	folded := textnorm.Fold(textnorm.NormalizeArabic(raw))

	cls := ClassifyIntent(raw)
	det := a.detector.Detect(raw)

	analysis := core.QueryAnalysis{
		Raw:        raw,
		Normalized: normalized,
		Expanded:   textnorm.ExpandBeneficiaryQuery(normalized),
		Lang:       lang,

		Intent:           cls.Intent,
		IntentConfidence: cls.Confidence,

		Entities:         det.Entities,
		EntityConfidence: det.Confidence,
		HardFilter:       det.HardFilter,

		Prices:      textnorm.ExtractPrices(raw),
		Speeds:      textnorm.ExtractSpeeds(raw),
		WantsFree:   textnorm.MentionsFree(raw),
		Beneficiary: detectBeneficiary(folded),
	}

	a.logger.Debug("analyzed query",
		"intent", analysis.Intent.String(),
		"intent_confidence", analysis.IntentConfidence,
		"entities", analysis.Entities,
		"hard_filter", analysis.HardFilter,
		"lang", analysis.Lang)
	return analysis
}

// FilterCandidates applies the entity hard filter to scored candidates,
// keeping the input untouched when the filter is off.
func FilterCandidates(candidates []core.ScoredCandidate, analysis core.QueryAnalysis) []core.ScoredCandidate {
	if !analysis.HardFilter || len(analysis.Entities) != 1 {
		return candidates
	}
	entity := analysis.Entities[0]
	filtered := make([]core.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Passage != nil && strings.EqualFold(c.Passage.EntityCode, entity) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
