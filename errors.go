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


package telsearch

import "errors"

var (
	// ErrPassageRepositoryRequired indicates a nil passage repository.
	ErrPassageRepositoryRequired = errors.New("passage repository is required")

	// ErrDocumentRepositoryRequired indicates a nil document repository.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrAIProviderRequired indicates a nil model provider.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrEmptyQuery indicates a blank search query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNotReady indicates that no index snapshot has been built yet.
	ErrNotReady = errors.New("no index snapshot: load or rebuild first")
)
