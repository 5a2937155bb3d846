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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.Provider interface using the langchaingo
// library to communicate with OpenAI or OpenAI-compatible services (such as
// Ollama, LocalAI, vLLM, or OpenRouter).
//
// # Usage
//
//	config := ai.DefaultConfig()
//	// Or customize:
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	    ai.WithCompletionModel("qwen2.5:3b"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    // handle error
//	}
//	defer provider.Close()
//
//	embedder := provider.Embedder()
//	completer := provider.Completer()
//
// # Error Classification
//
// Transport and API failures from the embedding service are classified into
// the sentinel errors declared in the ai package: responses indicating rate
// limiting map to ai.ErrEmbedderRateLimited, everything else maps to
// ai.ErrEmbedderUnavailable. Callers decide retry behavior from these
// sentinels, not from provider-specific error strings.
package openai
