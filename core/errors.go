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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidPassage indicates a Passage failed validation.
	ErrInvalidPassage = errors.New("invalid passage")

	// ErrEmptyDocID indicates the DocID field is empty.
	ErrEmptyDocID = errors.New("doc id cannot be empty")

	// ErrEmptyText indicates the passage Text field is empty.
	ErrEmptyText = errors.New("passage text cannot be empty")

	// ErrInvalidPassageType indicates an invalid PassageType value.
	ErrInvalidPassageType = errors.New("invalid passage type")
)
