package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

// DefaultEntityCodes lists the partner establishment codes present in
// the agreement corpus.
var DefaultEntityCodes = []string{
	"P", "V", "F", "A", "N", "O", "I", "AD", "AC", "AY",
	"E", "H", "J", "K", "L", "M", "Q", "R", "S", "T", "U", "W", "X",
}

var (
	exclusivityPattern = regexp.MustCompile(`\b(uniquement|seulement|exclusivement|specifiquement)\b`)
	genericEntity      = regexp.MustCompile(`\b(?:etablissement|entreprise|convention|organisme)\s+([a-z]{1,2})\b`)
	tagEntity          = regexp.MustCompile(`\betab\s*=?\s*([a-z]{1,2})\b`)
)

// Detection is the outcome of entity detection on one query.
type Detection struct {
	// Entities holds the matched codes, alphabetical.
	Entities   []string
	Confidence float64
	// HardFilter is true only when exactly one entity matched; only
	// then does filtering exclude non-matching passages.
	HardFilter bool
}

// EntityDetector finds explicit establishment mentions in queries.
// Matching is accent-insensitive.
type EntityDetector struct {
	codes    map[string]bool
	patterns map[string][]*regexp.Regexp
}

// NewEntityDetector builds a detector for the given codes.
// Empty codes fall back to DefaultEntityCodes.
func NewEntityDetector(codes []string) *EntityDetector {
	if len(codes) == 0 {
		codes = DefaultEntityCodes
	}
	d := &EntityDetector{
		codes:    make(map[string]bool, len(codes)),
		patterns: make(map[string][]*regexp.Regexp, len(codes)),
	}
	for _, code := range codes {
		upper := strings.ToUpper(code)
		lower := strings.ToLower(code)
		d.codes[upper] = true
		d.patterns[upper] = []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`\betablissement\s+%s\b`, lower)),
			regexp.MustCompile(fmt.Sprintf(`\bconvention\s+%s\b`, lower)),
			regexp.MustCompile(fmt.Sprintf(`\bentite\s+%s\b`, lower)),
		}
	}
	return d
}

// Detect finds entity codes in the query. Confidence is 0.95 for a
// single entity with an exclusivity phrase, 0.85 for a single entity
// without one, and 0.6 when several entities matched (which also
// disables the hard filter).
func (d *EntityDetector) Detect(query string) Detection {
	folded := textnorm.Fold(query)

	found := make(map[string]bool)
	for code, patterns := range d.patterns {
		for _, re := range patterns {
			if re.MatchString(folded) {
				found[code] = true
				break
			}
		}
	}

	// Generic and tag-style captures, validated against known codes.
	for _, re := range []*regexp.Regexp{genericEntity, tagEntity} {
		for _, m := range re.FindAllStringSubmatch(folded, -1) {
			code := strings.ToUpper(m[1])
			if d.codes[code] {
				found[code] = true
			}
		}
	}

	if len(found) == 0 {
		return Detection{}
	}

	entities := make([]string, 0, len(found))
	for code := range found {
		entities = append(entities, code)
	}
	sort.Strings(entities)

	if len(entities) > 1 {
		return Detection{Entities: entities, Confidence: 0.6}
	}

	confidence := 0.85
	if exclusivityPattern.MatchString(folded) {
		confidence = 0.95
	}
	return Detection{Entities: entities, Confidence: confidence, HardFilter: true}
}

// Filter removes passages of other entities when the detection carries
// a hard filter; otherwise it returns the input unchanged. The matching
// passages all survive.
func Filter(passages []core.Passage, det Detection) []core.Passage {
	if !det.HardFilter || len(det.Entities) != 1 {
		return passages
	}
	entity := det.Entities[0]
	filtered := make([]core.Passage, 0, len(passages))
	for _, p := range passages {
		if strings.EqualFold(p.EntityCode, entity) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
