package badger

import (
	"fmt"

	"github.com/poiesic/telsearch/core"
)

// Key prefixes for different data types
const (
	passageRecordPrefix = "pasrec"
	passageDocPrefix    = "pasdoc"
	documentPrefix      = "docrec"
)

// makePassageKey generates a key for a passage by ID.
func makePassageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", passageRecordPrefix, id))
}

// makePassageDocKey generates a composite key for the document index.
// Format: prefix:docID:passageID
func makePassageDocKey(docID string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", passageDocPrefix, docID, id))
}

// makePartialPassageDocKey generates the iteration prefix for one
// document's passages. The trailing separator keeps "doc" from
// matching "doc2".
func makePartialPassageDocKey(docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", passageDocPrefix, docID))
}

// makeDocumentKey generates a key for a document by its ID.
func makeDocumentKey(docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, docID))
}
