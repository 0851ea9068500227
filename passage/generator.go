package passage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/textnorm"
)

// signatureTokens lists the discriminant phrases tied to each
// eligibility class. They are attached to generated passages so the
// signature booster can seed its mining with known-good vocabulary.
var signatureTokens = map[core.BeneficiaryCategory][]string{
	core.BeneficiarySeniorExecutives: {"cadres supérieurs", "encadrement supérieur"},
	core.BeneficiaryRetirees:         {"retraités", "pensionnés"},
	core.BeneficiaryActiveStaff:      {"personnel actif", "en exercice"},
	core.BeneficiaryDependents:       {"ayants droit", "ouverture de droit"},
	core.BeneficiaryEveryone:         {"tout le personnel"},
}

// Generator emits passages from documents.
type Generator struct {
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a passage generator.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// emitter tracks per-type indices so passage ids stay stable across
// regenerations of the same document.
type emitter struct {
	doc      *core.Document
	passages []core.Passage
	counters map[core.PassageType]int
}

func (e *emitter) emit(p core.Passage) {
	n := e.counters[p.Type]
	e.counters[p.Type] = n + 1
	p.DocID = e.doc.DocID
	p.EntityCode = e.doc.EntityCode
	p.Id = core.IDFromContent(fmt.Sprintf("%s/%s/%d", e.doc.DocID, p.Type, n))
	p.Keywords = e.doc.KeywordsFR
	e.passages = append(e.passages, p)
}

// tag renders the structured prefix embedded in passage text, so plain
// lexical search can match entity and type directly.
func tag(entity string, t core.PassageType, beneficiary core.BeneficiaryCategory) string {
	var b strings.Builder
	if entity != "" {
		fmt.Fprintf(&b, "[Etab=%s]", entity)
	}
	fmt.Fprintf(&b, "[Type=%s]", t)
	if s := beneficiary.String(); s != "" {
		fmt.Fprintf(&b, "[Benef=%s]", s)
	}
	return b.String()
}

// Generate emits the passages of one document: purpose lines,
// beneficiary statements, offer/telephony/equipment rows, required
// document items with per-action roll-ups, and notes. Malformed rows
// degrade to partial passages; they never fail the document.
func (g *Generator) Generate(doc *core.Document) ([]core.Passage, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	e := &emitter{doc: doc, counters: make(map[core.PassageType]int)}

	for _, line := range doc.Purpose {
		if strings.TrimSpace(line) == "" {
			continue
		}
		text := fmt.Sprintf("%s Convention %s. %s",
			tag(doc.EntityCode, core.PassageGeneral, core.BeneficiaryUnknown),
			doc.Establishment, strings.TrimSpace(line))
		e.emit(core.Passage{Type: core.PassageGeneral, Text: text})
	}

	for _, line := range doc.Beneficiaries {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cat := textnorm.NormalizeBeneficiary(line)
		text := fmt.Sprintf("%s Bénéficiaires: %s",
			tag(doc.EntityCode, core.PassageBeneficiary, cat), strings.TrimSpace(line))
		e.emit(core.Passage{
			Type:            core.PassageBeneficiary,
			Text:            text,
			Beneficiary:     cat,
			SignatureTokens: signatureTokens[cat],
		})
	}

	for _, row := range doc.InternetOffers {
		g.emitOffer(e, row)
	}

	for _, row := range doc.TelephonyOffers {
		if row.Line == "" && row.Price == "" {
			continue
		}
		p := core.Passage{Type: core.PassageTelephony, Beneficiary: textnorm.NormalizeBeneficiary(row.Beneficiary)}
		desc := row.Line
		if desc == "" {
			desc = "Ligne téléphonique"
		}
		if price, ok := textnorm.ParsePrice(row.Price); ok {
			p.Price = textnorm.SnapPrice(price)
			p.HasPrice = true
			p.IsFree = p.Price == 0
			desc = fmt.Sprintf("%s à %s", desc, priceLabel(p.Price))
		}
		p.Text = fmt.Sprintf("%s Téléphonie: %s%s",
			tag(doc.EntityCode, core.PassageTelephony, p.Beneficiary), desc, beneficiarySuffix(row.Beneficiary))
		p.SignatureTokens = signatureTokens[p.Beneficiary]
		e.emit(p)
	}

	for _, row := range doc.Equipment {
		if row.Name == "" {
			continue
		}
		p := core.Passage{Type: core.PassageEquipment, Beneficiary: textnorm.NormalizeBeneficiary(row.Beneficiary)}
		desc := row.Name
		if price, ok := textnorm.ParsePrice(row.Price); ok {
			p.Price = price
			p.HasPrice = true
			p.IsFree = price == 0
			desc = fmt.Sprintf("%s à %s", desc, priceLabel(price))
		}
		p.Text = fmt.Sprintf("%s Équipement: %s%s",
			tag(doc.EntityCode, core.PassageEquipment, p.Beneficiary), desc, beneficiarySuffix(row.Beneficiary))
		p.SignatureTokens = signatureTokens[p.Beneficiary]
		e.emit(p)
	}

	g.emitDocuments(e, "New", "nouvelle souscription", doc.RequiredDocuments.New)
	g.emitDocuments(e, "Switch", "basculement d'une offre existante", doc.RequiredDocuments.Switch)

	for _, note := range doc.Notes {
		if strings.TrimSpace(note) == "" {
			continue
		}
		text := fmt.Sprintf("%s Note: %s",
			tag(doc.EntityCode, core.PassageNote, core.BeneficiaryUnknown), strings.TrimSpace(note))
		e.emit(core.Passage{Type: core.PassageNote, Text: text})
	}

	if len(e.passages) == 0 {
		g.logger.Warn("document yielded no passages", "doc_id", doc.DocID)
	}
	return e.passages, nil
}

func (g *Generator) emitOffer(e *emitter, row core.OfferRow) {
	if row.Type == "" && row.Speed == "" && row.Price == "" {
		return
	}
	p := core.Passage{
		Type:        core.PassageOffer,
		Offer:       normalizeOfferType(row.Type),
		Beneficiary: textnorm.NormalizeBeneficiary(row.Beneficiary),
	}

	name := strings.TrimSpace(row.Type)
	if name == "" {
		name = "Internet"
	}
	parts := []string{fmt.Sprintf("Idoom %s", name)}

	if speed, ok := textnorm.ParseSpeed(row.Speed); ok {
		p.SpeedMbps = textnorm.SnapSpeed(speed)
		p.HasSpeed = true
		parts = append(parts, speedLabel(p.SpeedMbps))
	}
	if price, ok := textnorm.ParsePrice(row.Price); ok {
		p.Price = textnorm.SnapPrice(price)
		p.HasPrice = true
		p.IsFree = p.Price == 0
		parts = append(parts, "à "+priceLabel(p.Price))
	}

	p.Text = fmt.Sprintf("%s %s%s",
		tag(e.doc.EntityCode, core.PassageOffer, p.Beneficiary),
		strings.Join(parts, " "), beneficiarySuffix(row.Beneficiary))
	p.SignatureTokens = signatureTokens[p.Beneficiary]
	e.emit(p)
}

// emitDocuments emits one roll-up passage per action plus one passage
// per required document item, so both "what do I need" and item-level
// queries have an exact lexical target.
func (g *Generator) emitDocuments(e *emitter, action, actionLabel string, items []string) {
	var kept []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, strings.TrimSpace(item))
		}
	}
	if len(kept) == 0 {
		return
	}

	prefix := fmt.Sprintf("%s[Action=%s]", tag(e.doc.EntityCode, core.PassageDocuments, core.BeneficiaryUnknown), action)
	e.emit(core.Passage{
		Type: core.PassageDocuments,
		Text: fmt.Sprintf("%s Documents requis pour %s: %s", prefix, actionLabel, strings.Join(kept, "; ")),
	})
	for _, item := range kept {
		e.emit(core.Passage{
			Type: core.PassageDocuments,
			Text: fmt.Sprintf("%s Document requis pour %s: %s", prefix, actionLabel, item),
		})
	}
}

// GenerateAll runs Generate over a corpus, skipping invalid documents
// with a log line instead of failing the batch.
func (g *Generator) GenerateAll(docs []*core.Document) []core.Passage {
	var passages []core.Passage
	for _, doc := range docs {
		ps, err := g.Generate(doc)
		if err != nil {
			id := ""
			if doc != nil {
				id = doc.DocID
			}
			g.logger.Warn("skipping invalid document", "doc_id", id, "err", err)
			continue
		}
		passages = append(passages, ps...)
	}
	return passages
}

func normalizeOfferType(s string) core.OfferType {
	folded := textnorm.Fold(s)
	switch {
	case strings.Contains(folded, "fibre") || strings.Contains(folded, "ftth"):
		return core.OfferFibre
	case strings.Contains(folded, "vdsl"):
		return core.OfferVDSL
	case strings.Contains(folded, "adsl"):
		return core.OfferADSL
	case strings.Contains(folded, "fixe") || strings.Contains(folded, "telephon"):
		return core.OfferFixedLine
	}
	return core.OfferUnknown
}

func priceLabel(price int) string {
	if price == 0 {
		return "titre gratuit"
	}
	return fmt.Sprintf("%d DA par mois", price)
}

func speedLabel(mbps float64) string {
	if mbps >= 1000 {
		g := mbps / 1000
		if g == float64(int(g)) {
			return fmt.Sprintf("%d Gbps", int(g))
		}
		return fmt.Sprintf("%.1f Gbps", g)
	}
	if mbps == float64(int(mbps)) {
		return fmt.Sprintf("%d Mbps", int(mbps))
	}
	return fmt.Sprintf("%.1f Mbps", mbps)
}

func beneficiarySuffix(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return fmt.Sprintf(" pour %s", raw)
}
