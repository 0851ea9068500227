package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &Document{DocID: "conv_p", Establishment: "Etablissement P"}
		require.NoError(t, ValidateDocument(doc))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateDocument(nil)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("missing doc id", func(t *testing.T) {
		err := ValidateDocument(&Document{})
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.ErrorIs(t, err, ErrEmptyDocID)
	})
}

func TestValidatePassage(t *testing.T) {
	valid := Passage{
		Id:    IDFromContent("conv_p/offer/0"),
		DocID: "conv_p",
		Type:  PassageOffer,
		Text:  "[Etab=P][Type=Offer] Idoom Fibre 1.5 Gbps à 1100 DA",
	}

	t.Run("valid passage", func(t *testing.T) {
		p := valid
		require.NoError(t, ValidatePassage(&p))
	})

	t.Run("nil passage", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePassage(nil), ErrInvalidPassage)
	})

	t.Run("empty text", func(t *testing.T) {
		p := valid
		p.Text = ""
		err := ValidatePassage(&p)
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("empty doc id", func(t *testing.T) {
		p := valid
		p.DocID = ""
		assert.ErrorIs(t, ValidatePassage(&p), ErrEmptyDocID)
	})

	t.Run("unknown type", func(t *testing.T) {
		p := valid
		p.Type = PassageType(99)
		assert.ErrorIs(t, ValidatePassage(&p), ErrInvalidPassageType)
	})
}
