// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types that hit storage. Passages carry their
// embedding vectors, so the compact binary form matters: a corpus of a
// few thousand passages with 768-dim vectors stays in the low tens of
// megabytes.

var (
	stringSliceMUS = ord.NewSliceSer[string](ord.String)
	vectorMUS      = ord.NewSliceSer[float32](raw.Float32)
)

// IDMUS serializes IDs as varint uint64.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// PassageMUS serializes Passages field by field in declaration order.
// The format has no version tag; a format change means a reindex,
// which the build pipeline can always do from the source documents.
var PassageMUS = passageMUS{}

type passageMUS struct{}

func (passageMUS) Marshal(p Passage, bs []byte) (n int) {
	n = IDMUS.Marshal(p.Id, bs)
	n += ord.String.Marshal(p.DocID, bs[n:])
	n += ord.String.Marshal(p.EntityCode, bs[n:])
	n += varint.Int.Marshal(int(p.Type), bs[n:])
	n += ord.String.Marshal(p.Text, bs[n:])
	n += varint.Int.Marshal(p.Price, bs[n:])
	n += ord.Bool.Marshal(p.HasPrice, bs[n:])
	n += raw.Float64.Marshal(p.SpeedMbps, bs[n:])
	n += ord.Bool.Marshal(p.HasSpeed, bs[n:])
	n += ord.Bool.Marshal(p.IsFree, bs[n:])
	n += varint.Int.Marshal(int(p.Beneficiary), bs[n:])
	n += varint.Int.Marshal(int(p.Offer), bs[n:])
	n += stringSliceMUS.Marshal(p.SignatureTokens, bs[n:])
	n += stringSliceMUS.Marshal(p.Keywords, bs[n:])
	n += vectorMUS.Marshal(p.Vector, bs[n:])
	return n
}

func (passageMUS) Unmarshal(bs []byte) (p Passage, n int, err error) {
	var m int
	if p.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if p.DocID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.EntityCode, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	var typ int
	if typ, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	p.Type = PassageType(typ)
	if p.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.Price, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.HasPrice, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.SpeedMbps, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.HasSpeed, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.IsFree, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	var benef int
	if benef, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	p.Beneficiary = BeneficiaryCategory(benef)
	var offer int
	if offer, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	p.Offer = OfferType(offer)
	if p.SignatureTokens, m, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.Keywords, m, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if p.Vector, m, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	// Zero-length slices decode as non-nil; normalize so a round-trip
	// of a zero value compares equal to the original.
	if len(p.SignatureTokens) == 0 {
		p.SignatureTokens = nil
	}
	if len(p.Keywords) == 0 {
		p.Keywords = nil
	}
	if len(p.Vector) == 0 {
		p.Vector = nil
	}
	return
}

func (passageMUS) Size(p Passage) (size int) {
	size = IDMUS.Size(p.Id)
	size += ord.String.Size(p.DocID)
	size += ord.String.Size(p.EntityCode)
	size += varint.Int.Size(int(p.Type))
	size += ord.String.Size(p.Text)
	size += varint.Int.Size(p.Price)
	size += ord.Bool.Size(p.HasPrice)
	size += raw.Float64.Size(p.SpeedMbps)
	size += ord.Bool.Size(p.HasSpeed)
	size += ord.Bool.Size(p.IsFree)
	size += varint.Int.Size(int(p.Beneficiary))
	size += varint.Int.Size(int(p.Offer))
	size += stringSliceMUS.Size(p.SignatureTokens)
	size += stringSliceMUS.Size(p.Keywords)
	size += vectorMUS.Size(p.Vector)
	return size
}
