// Copyright 2025 Kestrel Works
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


// Package ai provides abstractions for the AI services Granary consumes.
//
// The package defines interfaces for text embedding and answer
// completion. The core ingestion and query logic depends on these
// abstractions rather than concrete implementations.
//
//   - Embedder: maps text to fixed-length embedding vectors
//   - Completer: generates a natural-language answer from a prompt
//   - Provider: aggregates both for convenient initialization
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with no external dependencies
//
// Production constructors (openai.NewProvider, openai.NewEmbedder)
// return interface types to enforce abstraction. Mock constructors
// return concrete types so tests can inject behavior and inspect call
// counts.
//
// Embedder failures are classified into two sentinel errors: transient
// rate limiting (ErrEmbedderRateLimited, retryable after backoff) and
// everything else (ErrEmbedderUnavailable). Callers decide the retry
// policy; this package only classifies.
package ai
