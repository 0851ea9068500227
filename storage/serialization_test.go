package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/core"
)

func TestIDRoundtrip(t *testing.T) {
	id := core.IDFromContent("doc_p/offer/0")
	got, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestPassageRoundtrip(t *testing.T) {
	passage := &core.Passage{
		Id:              core.IDFromContent("doc_p/offer/1"),
		DocID:           "doc_p",
		EntityCode:      "P",
		Type:            core.PassageOffer,
		Text:            "[Etab=P][Type=offre] Idoom Fibre 1.5 Gbps à 1100 DA par mois",
		Price:           1100,
		HasPrice:        true,
		SpeedMbps:       1500,
		HasSpeed:        true,
		Beneficiary:     core.BeneficiaryEveryone,
		Offer:           core.OfferFibre,
		SignatureTokens: []string{"fibre", "gbps"},
		Keywords:        []string{"internet", "ألياف"},
		Vector:          []float32{0.1, -0.5, 0.25},
	}

	got, err := UnmarshalPassage(MarshalPassage(passage))
	require.NoError(t, err)
	assert.Equal(t, passage, got)
}

func TestPassageRoundtripZeroValues(t *testing.T) {
	passage := &core.Passage{
		Id:    1,
		DocID: "doc_min",
		Type:  core.PassageNote,
		Text:  "note",
	}
	got, err := UnmarshalPassage(MarshalPassage(passage))
	require.NoError(t, err)
	assert.Equal(t, passage, got)
	assert.False(t, got.HasPrice)
	assert.Empty(t, got.Vector)
}

func TestUnmarshalPassageTruncated(t *testing.T) {
	data := MarshalPassage(&core.Passage{
		Id:    7,
		DocID: "doc_p",
		Text:  "contenu du passage",
	})
	_, err := UnmarshalPassage(data[:len(data)/2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestDocumentRoundtrip(t *testing.T) {
	doc := &core.Document{
		DocID:         "doc_p",
		Establishment: "Etablissement P",
		EntityCode:    "P",
		Purpose:       []string{"Convention internet et téléphonie"},
		Beneficiaries: []string{"tous les employés"},
		InternetOffers: []core.OfferRow{
			{Type: "fibre", Speed: "1.5 Gbps", Price: "1100 DA/mois", Beneficiary: "tous"},
		},
		RequiredDocuments: core.RequiredDocuments{
			New: []string{"attestation de travail", "pièce d'identité"},
		},
		DocType:      "convention",
		Technologies: []string{"ftth"},
		TitleAR:      "اتفاقية الانترنت",
	}

	data, err := MarshalDocument(doc)
	require.NoError(t, err)
	got, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestUnmarshalDocumentInvalid(t *testing.T) {
	_, err := UnmarshalDocument([]byte("{not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
