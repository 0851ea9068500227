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


// Package ai provides abstractions for the model services the retrieval
// pipeline consumes.
//
// Two services are defined:
//
//   - Embedder: generates vector embeddings from text, used by the dense
//     index at build time and per query
//   - PairScorer: scores (query, passage) pairs, used by the
//     cross-encoder reranker
//
// Both services are optional at runtime: a missing or failing embedder
// leaves the pipeline on lexical retrieval only, and a missing scorer
// falls back to heuristic reranking. Neither failure is fatal.
//
// # Implementation Packages
//
//   - ai/openai: embedder backed by an OpenAI-compatible API via langchaingo
//   - ai/tei: pair scorer backed by a text-embeddings-inference rerank endpoint
//   - ai/mock: deterministic test doubles
//
// Public constructors (openai.NewEmbedder, tei.NewPairScorer,
// openai.NewProvider) return interface types to enforce abstraction.
// Mock constructors return concrete types so tests can inject behavior
// and assert call counts.
package ai
