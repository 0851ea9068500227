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

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - DocID must not be empty
//
// NOT validated (a document with empty tables still yields partial
// passages, or none at all, without failing the build):
//   - Offer/telephony/equipment rows
//   - Routing metadata
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocID)
	}

	return nil
}

// ValidatePassage validates a Passage according to domain rules.
//
// Validation rules:
//   - DocID must not be empty
//   - Text must not be empty
//   - Type must be a known PassageType
//
// NOT validated (populated later in the build):
//   - Vector (can be empty until the passage is embedded)
func ValidatePassage(p *Passage) error {
	if p == nil {
		return fmt.Errorf("%w: passage is nil", ErrInvalidPassage)
	}

	if p.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyDocID)
	}

	if p.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyText)
	}

	if err := ValidatePassageType(p.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, err)
	}

	return nil
}

// ValidatePassageType validates that a PassageType has a valid value.
func ValidatePassageType(t PassageType) error {
	switch t {
	case PassageGeneral, PassageBeneficiary, PassageOffer, PassageTelephony,
		PassageEquipment, PassageDocuments, PassageNote, PassageOther:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidPassageType, t)
}
