package router

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

const (
	// defaultPoolSize bounds the candidate pool the router returns.
	defaultPoolSize = 15

	// maxIndexedTokens caps how many raw metadata tokens per document
	// get synonym expansion; maxQueryTokens does the same for queries.
	maxIndexedTokens = 50
	maxQueryTokens   = 20
	synonymsPerToken = 3

	tokenMatchWeight    = 1.5
	crossLanguageWeight = 1.0
)

// Agreement bonuses for query tokens hitting named metadata fields.
// The lower value applies when the hit came through a synonym.
const (
	docTypeBonus       = 5.0
	docTypeSynBonus    = 3.0
	familyBonus        = 5.0
	familySynBonus     = 3.0
	segmentBonus       = 3.0
	segmentSynBonus    = 2.0
	technologyBonus    = 2.0
	technologySynBonus = 1.5
)

// Candidate is one routed document with its rule score.
type Candidate struct {
	DocIndex int
	DocID    string
	Score    float64
}

// docMeta is the folded, precomputed routing view of one document.
type docMeta struct {
	tokens       map[string]bool
	docTypeTerms map[string]bool
	familyTerms  map[string]bool
	segmentTerms map[string]bool
	techTerms    map[string]bool

	isPayment     bool
	isEquipment   bool
	isSchool      bool
	isLTE         bool
	isReferral    bool
	isBusiness    bool
	isTenant      bool
	isResidential bool
	isGamer       bool

	hasTax           bool
	hasModernisation bool
	hasMigration     bool
	hasInterruption  bool
}

// Router scores documents by routing metadata.
type Router struct {
	docIDs   []string
	meta     []docMeta
	poolSize int
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router) error

// WithPoolSize bounds the returned candidate pool.
func WithPoolSize(n int) Option {
	return func(r *Router) error {
		if n <= 0 {
			return fmt.Errorf("pool size must be positive, got %d", n)
		}
		r.poolSize = n
		return nil
	}
}

// WithLogger sets the logger used for routing diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// New builds the routing index over the given documents.
func New(docs []*core.Document, opts ...Option) (*Router, error) {
	r := &Router{
		poolSize: defaultPoolSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	for _, doc := range docs {
		r.docIDs = append(r.docIDs, doc.DocID)
		r.meta = append(r.meta, buildMeta(doc))
	}
	return r, nil
}

func tokenSet(texts ...string) map[string]bool {
	set := make(map[string]bool)
	for _, text := range texts {
		for _, tok := range textnorm.TokenizeFolded(text) {
			set[tok] = true
		}
	}
	return set
}

// titleTokens keeps the informative title words: length 4 and up for
// Latin words, 3 and up for Arabic ones.
func titleTokens(titleFR, titleAR string) []string {
	var out []string
	for _, tok := range textnorm.TokenizeFolded(titleFR) {
		if len([]rune(tok)) >= 4 {
			out = append(out, tok)
		}
	}
	for _, tok := range textnorm.TokenizeFolded(titleAR) {
		if len([]rune(tok)) >= 3 {
			out = append(out, tok)
		}
	}
	return out
}

func buildMeta(doc *core.Document) docMeta {
	raw := []string{doc.DocType, doc.ProductFamily, doc.CommitmentType, doc.UsageFocus}
	raw = append(raw, doc.Technologies...)
	raw = append(raw, doc.Segments...)
	raw = append(raw, doc.KeywordsFR...)
	raw = append(raw, doc.KeywordsAR...)

	var tokens []string
	for _, text := range raw {
		tokens = append(tokens, textnorm.TokenizeFolded(text)...)
	}
	tokens = append(tokens, titleTokens(doc.TitleFR, doc.TitleAR)...)
	if len(tokens) > maxIndexedTokens {
		tokens = tokens[:maxIndexedTokens]
	}

	set := make(map[string]bool)
	for _, tok := range textnorm.ExpandTokens(tokens, synonymsPerToken) {
		set[tok] = true
	}

	// One folded blob for trait detection.
	blob := textnorm.Fold(strings.Join(append(raw, doc.TitleFR, doc.TitleAR), " "))

	famTerms := tokenSet(doc.ProductFamily)
	techTerms := tokenSet(doc.Technologies...)

	m := docMeta{
		tokens:       set,
		docTypeTerms: tokenSet(doc.DocType),
		familyTerms:  famTerms,
		segmentTerms: tokenSet(doc.Segments...),
		techTerms:    techTerms,

		isPayment: strings.Contains(blob, "paiement") || strings.Contains(blob, "facturation") ||
			strings.Contains(blob, "edahabia"),
		// "ont" only counts as a whole product-family or technology
		// token; as a substring it matches montant, sont, dont.
		isEquipment: famTerms["ont"] || techTerms["ont"] || strings.Contains(blob, "modem") ||
			strings.Contains(blob, "equipement"),
		isSchool: strings.Contains(blob, "ecole") || strings.Contains(blob, "scolaire") ||
			strings.Contains(blob, "مدرسه"),
		isLTE:      strings.Contains(blob, "4g") || strings.Contains(blob, "lte"),
		isReferral: strings.Contains(blob, "parrainage"),
		isBusiness: strings.Contains(blob, "professionnel") || strings.Contains(blob, "entreprise") ||
			strings.Contains(blob, "business"),
		isTenant: strings.Contains(blob, "locataire"),
		isResidential: strings.Contains(blob, "residentiel") || strings.Contains(blob, "particulier") ||
			strings.Contains(blob, "grand public"),
		isGamer: strings.Contains(blob, "gamer") || strings.Contains(blob, "gaming"),

		hasTax:           strings.Contains(blob, "timbre") || strings.Contains(blob, "fiscal"),
		hasModernisation: strings.Contains(blob, "modernisation") || strings.Contains(blob, "عصرنه"),
		hasMigration:     strings.Contains(blob, "basculement") || strings.Contains(blob, "migration"),
		hasInterruption:  strings.Contains(blob, "interruption") || strings.Contains(blob, "انقطاع"),
	}
	return m
}

// Len returns the number of routed documents.
func (r *Router) Len() int {
	return len(r.docIDs)
}

// Route scores every document against the query and returns the ranked
// candidate pool. Non-positive scores are dropped; an empty pool means
// the caller should search the whole corpus instead.
func (r *Router) Route(query string) []Candidate {
	qTokens := textnorm.TokenizeFolded(query)
	if len(qTokens) == 0 {
		return nil
	}
	if len(qTokens) > maxQueryTokens {
		qTokens = qTokens[:maxQueryTokens]
	}

	origSet := make(map[string]bool, len(qTokens))
	for _, tok := range qTokens {
		origSet[tok] = true
	}
	expanded := textnorm.ExpandTokens(qTokens, synonymsPerToken)
	expandedSet := make(map[string]bool, len(expanded))
	for _, tok := range expanded {
		expandedSet[tok] = true
	}

	folded := textnorm.Fold(query)
	sig := detectSignals(expandedSet, folded)

	var pool []Candidate
	for i := range r.meta {
		m := &r.meta[i]

		direct := 0
		for _, tok := range expanded {
			if m.tokens[tok] {
				direct++
			}
		}
		cross := textnorm.CrossLanguageMatches(qTokens, m.tokens)

		score := tokenMatchWeight*float64(direct) + crossLanguageWeight*float64(cross)
		score += detectorScore(sig, *m)
		score += fieldAgreement(origSet, expandedSet, m.docTypeTerms, docTypeBonus, docTypeSynBonus)
		score += fieldAgreement(origSet, expandedSet, m.familyTerms, familyBonus, familySynBonus)
		score += fieldAgreement(origSet, expandedSet, m.segmentTerms, segmentBonus, segmentSynBonus)
		score += fieldAgreement(origSet, expandedSet, m.techTerms, technologyBonus, technologySynBonus)

		if score > 0 {
			pool = append(pool, Candidate{DocIndex: i, DocID: r.docIDs[i], Score: score})
		}
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score > pool[j].Score
		}
		return pool[i].DocIndex < pool[j].DocIndex
	})
	if len(pool) > r.poolSize {
		pool = pool[:r.poolSize]
	}

	r.logger.Debug("routed query", "candidates", len(pool))
	return pool
}

// fieldAgreement pays the full bonus when an original query token hits
// the field, the synonym bonus when only an expansion does.
func fieldAgreement(orig, expanded, field map[string]bool, full, syn float64) float64 {
	for tok := range field {
		if orig[tok] {
			return full
		}
	}
	for tok := range field {
		if expanded[tok] {
			return syn
		}
	}
	return 0
}
