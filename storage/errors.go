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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested passage or document does
	// not exist in the store.
	ErrNotFound = errors.New("record not found")

	// ErrSerializationFailed indicates that a record could not be
	// encoded for storage or decoded from it. Decoding failures usually
	// mean the on-disk format predates the current passage layout; the
	// fix is a reindex.
	ErrSerializationFailed = errors.New("serialization failed")
)
