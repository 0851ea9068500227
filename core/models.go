package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from content so that regeneration is stable.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PassageType identifies the kind of fact a passage carries.
type PassageType int

const (
	// PassageGeneral covers purpose and summary statements.
	PassageGeneral PassageType = iota + 1
	// PassageBeneficiary covers eligibility statements.
	PassageBeneficiary
	// PassageOffer covers internet offer rows.
	PassageOffer
	// PassageTelephony covers fixed-line telephony rows.
	PassageTelephony
	// PassageEquipment covers equipment table rows.
	PassageEquipment
	// PassageDocuments covers required-document items and roll-ups.
	PassageDocuments
	// PassageNote covers free-text notes.
	PassageNote
	// PassageOther covers anything that fits no other type.
	PassageOther
)

func (t PassageType) String() string {
	switch t {
	case PassageGeneral:
		return "general"
	case PassageBeneficiary:
		return "beneficiary"
	case PassageOffer:
		return "offer"
	case PassageTelephony:
		return "telephony"
	case PassageEquipment:
		return "equipment"
	case PassageDocuments:
		return "documents"
	case PassageNote:
		return "note"
	case PassageOther:
		return "other"
	}
	return "unknown"
}

// Intent classifies what a query is asking for.
type Intent int

const (
	IntentGeneral Intent = iota + 1
	IntentBeneficiary
	IntentDocuments
	IntentSpeed
	IntentPrice
)

func (i Intent) String() string {
	switch i {
	case IntentGeneral:
		return "general"
	case IntentBeneficiary:
		return "beneficiary"
	case IntentDocuments:
		return "documents"
	case IntentSpeed:
		return "speed"
	case IntentPrice:
		return "price"
	}
	return "unknown"
}

// Priority orders intents for deterministic tie-breaking.
// Price questions outrank speed, then documents, beneficiary, general.
func (i Intent) Priority() int {
	switch i {
	case IntentPrice:
		return 5
	case IntentSpeed:
		return 4
	case IntentDocuments:
		return 3
	case IntentBeneficiary:
		return 2
	case IntentGeneral:
		return 1
	}
	return 0
}

// Intents lists all intents in priority order, highest first.
func Intents() []Intent {
	return []Intent{IntentPrice, IntentSpeed, IntentDocuments, IntentBeneficiary, IntentGeneral}
}

// BeneficiaryCategory is the normalized eligibility class of an offer.
type BeneficiaryCategory int

const (
	BeneficiaryUnknown BeneficiaryCategory = iota
	BeneficiarySeniorExecutives
	BeneficiaryRetirees
	BeneficiaryActiveStaff
	BeneficiaryDependents
	BeneficiaryEveryone
	BeneficiaryOther
)

func (b BeneficiaryCategory) String() string {
	switch b {
	case BeneficiarySeniorExecutives:
		return "cadres_superieurs"
	case BeneficiaryRetirees:
		return "retraites"
	case BeneficiaryActiveStaff:
		return "actifs"
	case BeneficiaryDependents:
		return "ayants_droit"
	case BeneficiaryEveryone:
		return "tous"
	case BeneficiaryOther:
		return "autre"
	}
	return ""
}

// OfferType is the normalized access technology of an offer row.
type OfferType int

const (
	OfferUnknown OfferType = iota
	OfferFibre
	OfferVDSL
	OfferADSL
	OfferFixedLine
)

func (o OfferType) String() string {
	switch o {
	case OfferFibre:
		return "fibre"
	case OfferVDSL:
		return "vdsl"
	case OfferADSL:
		return "adsl"
	case OfferFixedLine:
		return "fixe"
	}
	return ""
}

// Passage is the atomic retrievable unit. Passages are generated in bulk
// from documents at index build time and are immutable afterwards;
// a reindex replaces them wholesale.
type Passage struct {
	Id         ID
	DocID      string
	EntityCode string
	Type       PassageType
	Text       string

	// Normalized fields extracted once at generation time. Boosting
	// reads these, never the raw text.
	Price       int
	HasPrice    bool
	SpeedMbps   float64
	HasSpeed    bool
	IsFree      bool
	Beneficiary BeneficiaryCategory
	Offer       OfferType

	SignatureTokens []string
	Keywords        []string

	// Vector is the embedding for dense search (populated at build).
	Vector []float32
}

// OfferRow is one internet offer line of a source document.
type OfferRow struct {
	Type        string `json:"type"`
	Speed       string `json:"speed"`
	Price       string `json:"price"`
	Beneficiary string `json:"beneficiary"`
}

// TelephonyRow is one fixed-line telephony offer of a source document.
type TelephonyRow struct {
	Line        string `json:"line"`
	Price       string `json:"price"`
	Beneficiary string `json:"beneficiary"`
}

// EquipmentRow is one equipment table line of a source document.
type EquipmentRow struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Beneficiary string `json:"beneficiary"`
}

// RequiredDocuments lists paperwork per subscription action.
type RequiredDocuments struct {
	New    []string `json:"new"`
	Switch []string `json:"switch"`
}

// Document is the owning source unit, supplied as structured JSON by the
// upstream extraction step. Documents carry presentation and routing
// metadata; they are never scored directly, only their passages are.
type Document struct {
	DocID         string   `json:"doc_id"`
	Establishment string   `json:"establishment"`
	EntityCode    string   `json:"entity_code"`
	Language      string   `json:"language,omitempty"`
	Category      string   `json:"category,omitempty"`
	Purpose       []string `json:"purpose,omitempty"`
	Beneficiaries []string `json:"beneficiaries,omitempty"`

	InternetOffers    []OfferRow        `json:"internet_offers,omitempty"`
	TelephonyOffers   []TelephonyRow    `json:"telephony_offers,omitempty"`
	Equipment         []EquipmentRow    `json:"equipment,omitempty"`
	RequiredDocuments RequiredDocuments `json:"required_documents,omitempty"`
	Notes             []string          `json:"notes,omitempty"`

	// Routing metadata consumed by the rule router.
	DocType        string   `json:"doc_type,omitempty"`
	ProductFamily  string   `json:"product_family,omitempty"`
	Technologies   []string `json:"technologies,omitempty"`
	Segments       []string `json:"segments,omitempty"`
	CommitmentType string   `json:"commitment_type,omitempty"`
	UsageFocus     string   `json:"usage_focus,omitempty"`
	TitleFR        string   `json:"title_fr,omitempty"`
	TitleAR        string   `json:"title_ar,omitempty"`
	KeywordsFR     []string `json:"keywords_fr,omitempty"`
	KeywordsAR     []string `json:"keywords_ar,omitempty"`
}

// QueryAnalysis is the derived interpretation of one query.
// It is ephemeral and never persisted.
type QueryAnalysis struct {
	Raw        string
	Normalized string
	// Expanded is the normalized query plus beneficiary synonyms,
	// used for lexical retrieval.
	Expanded string
	Lang     string

	Intent           Intent
	IntentConfidence float64

	Entities         []string
	EntityConfidence float64
	// HardFilter is true only when exactly one entity was detected
	// unambiguously; it turns the entity match into an exclusion filter.
	HardFilter bool

	Prices      []int
	Speeds      []float64
	WantsFree   bool
	Beneficiary BeneficiaryCategory
}

// ScoredCandidate is a passage plus the component scores accumulated
// through the pipeline. Candidates are immutable: each stage emits a new
// slice rather than mutating in place, and Final is always a pure
// function of the components.
type ScoredCandidate struct {
	Passage *Passage

	Sparse float64
	Dense  float64
	Rule   float64

	Hybrid         float64
	NumericBoost   float64
	SignatureBoost float64
	Rerank         float64
	Final          float64
}

// DocumentMatch is one document-level aggregate in a result.
type DocumentMatch struct {
	DocID string
	Score float64
	// Best is the highest reranked passage of the document.
	Best ScoredCandidate
	// Support holds the other retrieved passages of the same document,
	// ordered by their final score.
	Support []ScoredCandidate
}

// SearchResult is the immutable outcome of one query.
type SearchResult struct {
	Query     QueryAnalysis
	Documents []DocumentMatch
	Passages  []ScoredCandidate

	// RetrievedCount is the pool size before the entity hard filter,
	// FilteredCount the size after it.
	RetrievedCount int
	FilteredCount  int

	DenseUsed        bool
	CrossEncoderUsed bool
}

// Empty reports whether the result carries no document at all.
func (r *SearchResult) Empty() bool {
	return r == nil || len(r.Documents) == 0
}
