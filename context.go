package telsearch

import (
	"strings"

	"github.com/poiesic/telsearch/core"
)

// maxSupportPassages caps the extra evidence per document so the
// assembled context stays within a small prompt budget.
const maxSupportPassages = 2

// BuildContext renders a search result as a plain-text evidence block
// for a downstream answer generator: one section per matched document,
// headed by its title and establishment, with the best passage first
// and up to two supporting passages after it.
func (e *Engine) BuildContext(result *core.SearchResult) string {
	if result.Empty() {
		return ""
	}
	snap := e.snap.Load()

	var b strings.Builder
	for i, match := range result.Documents {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("### ")
		b.WriteString(documentHeading(snap, match.DocID))
		b.WriteString("\n")

		if match.Best.Passage != nil {
			b.WriteString(match.Best.Passage.Text)
			b.WriteString("\n")
		}
		for j, sup := range match.Support {
			if j >= maxSupportPassages {
				break
			}
			if sup.Passage == nil {
				continue
			}
			b.WriteString(sup.Passage.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// documentHeading prefers the French title, then the establishment
// name, then the raw identifier.
func documentHeading(snap *snapshot, docID string) string {
	if snap != nil {
		if doc := snap.docs[docID]; doc != nil {
			switch {
			case doc.TitleFR != "":
				if doc.Establishment != "" {
					return doc.TitleFR + " (" + doc.Establishment + ")"
				}
				return doc.TitleFR
			case doc.Establishment != "":
				return doc.Establishment
			}
		}
	}
	return docID
}
