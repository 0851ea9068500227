package index

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

const (
	defaultK1 = 1.5
	defaultB  = 0.75

	// defaultFieldBoost multiplies a term's contribution when the term
	// also matches one of the passage's structured fields.
	defaultFieldBoost = 1.2
)

// stopwords never contribute to lexical scores. A query made only of
// these yields an empty result rather than an error.
var stopwords = map[string]bool{
	"le": true, "la": true, "les": true, "de": true, "des": true, "du": true,
	"un": true, "une": true, "et": true, "ou": true, "en": true, "au": true,
	"aux": true, "ce": true, "cette": true, "ces": true, "est": true,
	"sont": true, "pour": true, "avec": true, "sur": true, "dans": true,
	"que": true, "qui": true, "quel": true, "quelle": true, "quels": true,
	"في": true, "من": true, "على": true, "ما": true, "هو": true, "هي": true,
	"هل": true, "عن": true,
}

// Hit is one scored passage reference.
type Hit struct {
	ID    core.ID
	Score float64
}

type posting struct {
	doc int
	tf  int
}

// SparseIndex is a BM25 inverted index over passage text plus serialized
// structured fields, so tags like the entity code and "1100 DA" match
// lexically.
type SparseIndex struct {
	k1         float64
	b          float64
	fieldBoost float64

	ids      []core.ID
	lengths  []int
	avgLen   float64
	postings map[string][]posting
	// fieldTerms[i] holds the folded tokens of passage i's structured
	// fields, the targets of field boosting.
	fieldTerms []map[string]bool
}

// SparseOption configures a SparseIndex build.
type SparseOption func(*SparseIndex)

// WithBM25Params overrides the k1 and b parameters.
func WithBM25Params(k1, b float64) SparseOption {
	return func(s *SparseIndex) {
		s.k1 = k1
		s.b = b
	}
}

// WithFieldBoost overrides the structured-field boost factor.
func WithFieldBoost(factor float64) SparseOption {
	return func(s *SparseIndex) {
		s.fieldBoost = factor
	}
}

// fieldText serializes the structured fields of a passage into indexable
// text: entity code, beneficiary phrasings, offer type, price and speed
// in their spoken forms, signature tokens and keywords.
func fieldText(p *core.Passage) string {
	var parts []string
	if p.EntityCode != "" {
		parts = append(parts, p.EntityCode, "etablissement "+p.EntityCode)
	}
	if p.Beneficiary != core.BeneficiaryUnknown {
		parts = append(parts, p.Beneficiary.String())
		parts = append(parts, textnorm.BeneficiarySynonyms(p.Beneficiary)...)
	}
	if p.Offer != core.OfferUnknown {
		parts = append(parts, p.Offer.String())
	}
	if p.HasPrice {
		parts = append(parts, fmt.Sprintf("%d da", p.Price))
	}
	if p.IsFree {
		parts = append(parts, "gratuit")
	}
	if p.HasSpeed {
		parts = append(parts, fmt.Sprintf("%d mbps", int(p.SpeedMbps)))
		if p.SpeedMbps >= 1000 {
			parts = append(parts, fmt.Sprintf("%g gbps", p.SpeedMbps/1000))
		}
	}
	parts = append(parts, p.SignatureTokens...)
	parts = append(parts, p.Keywords...)
	return strings.Join(parts, " ")
}

// BuildSparse builds the index over the given passages. The passage
// order defines tie-breaking: equal scores keep insertion order.
func BuildSparse(passages []core.Passage, opts ...SparseOption) *SparseIndex {
	s := &SparseIndex{
		k1:         defaultK1,
		b:          defaultB,
		fieldBoost: defaultFieldBoost,
		postings:   make(map[string][]posting),
	}
	for _, opt := range opts {
		opt(s)
	}

	total := 0
	for i := range passages {
		p := &passages[i]
		fields := fieldText(p)
		tokens := textnorm.TokenizeFolded(p.Text + " " + fields)

		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			if stopwords[tok] {
				continue
			}
			counts[tok]++
		}

		doc := len(s.ids)
		s.ids = append(s.ids, p.Id)
		length := 0
		for tok, tf := range counts {
			s.postings[tok] = append(s.postings[tok], posting{doc: doc, tf: tf})
			length += tf
		}
		s.lengths = append(s.lengths, length)
		total += length

		ft := make(map[string]bool)
		for _, tok := range textnorm.TokenizeFolded(fields) {
			ft[tok] = true
		}
		s.fieldTerms = append(s.fieldTerms, ft)
	}

	if len(passages) > 0 {
		s.avgLen = float64(total) / float64(len(passages))
	}
	// Postings are appended in doc order already; keep them sorted for
	// deterministic iteration.
	for tok := range s.postings {
		sort.Slice(s.postings[tok], func(i, j int) bool {
			return s.postings[tok][i].doc < s.postings[tok][j].doc
		})
	}
	return s
}

// Len returns the number of indexed passages.
func (s *SparseIndex) Len() int {
	return len(s.ids)
}

func (s *SparseIndex) idf(df int) float64 {
	n := float64(len(s.ids))
	return math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

// QueryTokens folds and tokenizes a query, dropping stopwords. Exposed
// so the router and cascade share the exact same tokenization.
func QueryTokens(query string) []string {
	var tokens []string
	for _, tok := range textnorm.TokenizeFolded(query) {
		if stopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Search runs BM25 over the index and returns the topK hits in
// descending score order. An empty or all-stopword query returns nil.
func (s *SparseIndex) Search(query string, topK int) []Hit {
	return s.SearchTokens(QueryTokens(query), topK)
}

// SearchTokens is Search over pre-tokenized input.
func (s *SparseIndex) SearchTokens(tokens []string, topK int) []Hit {
	if len(tokens) == 0 || len(s.ids) == 0 || topK <= 0 {
		return nil
	}

	scores := make(map[int]float64)
	for _, tok := range tokens {
		plist := s.postings[tok]
		if len(plist) == 0 {
			continue
		}
		idf := s.idf(len(plist))
		for _, post := range plist {
			dl := float64(s.lengths[post.doc])
			tf := float64(post.tf)
			contrib := idf * tf * (s.k1 + 1) / (tf + s.k1*(1-s.b+s.b*dl/s.avgLen))
			if s.fieldTerms[post.doc][tok] {
				contrib *= s.fieldBoost
			}
			scores[post.doc] += contrib
		}
	}
	if len(scores) == 0 {
		return nil
	}

	docs := make([]int, 0, len(scores))
	for doc := range scores {
		docs = append(docs, doc)
	}
	// Descending score, ties by insertion order.
	sort.Slice(docs, func(i, j int) bool {
		si, sj := scores[docs[i]], scores[docs[j]]
		if si != sj {
			return si > sj
		}
		return docs[i] < docs[j]
	})

	if len(docs) > topK {
		docs = docs[:topK]
	}
	hits := make([]Hit, len(docs))
	for i, doc := range docs {
		hits[i] = Hit{ID: s.ids[doc], Score: scores[doc]}
	}
	return hits
}
