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


package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kestrelworks/granary/ai"
	"github.com/kestrelworks/granary/core"
)

// DefaultMaxContext is the number of top matches handed to the
// completion model.
const DefaultMaxContext = 5

// Answer is the response to a question together with the units it was
// grounded on.
type Answer struct {
	Text    string
	Sources []*core.SearchResult
}

// Answerer answers questions from stored knowledge using retrieval plus
// a completion model.
type Answerer struct {
	searcher   *Searcher
	completer  ai.Completer
	maxContext int
	logger     *slog.Logger
}

// AnswererOption configures an Answerer.
type AnswererOption func(*Answerer) error

// WithMaxContext sets how many top matches are included in the prompt.
// Default is DefaultMaxContext.
func WithMaxContext(n int) AnswererOption {
	return func(a *Answerer) error {
		if n < 1 {
			n = 1
		}
		a.maxContext = n
		return nil
	}
}

// WithAnswererLogger sets a custom logger.
// Default is slog.Default().
func WithAnswererLogger(logger *slog.Logger) AnswererOption {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates a new answerer on top of a searcher.
func NewAnswerer(searcher *Searcher, completer ai.Completer, opts ...AnswererOption) (*Answerer, error) {
	if searcher == nil {
		return nil, ErrStoreRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}

	a := &Answerer{
		searcher:   searcher,
		completer:  completer,
		maxContext: DefaultMaxContext,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Answer retrieves the most relevant units for the question and asks the
// completion model to answer from them. When nothing relevant is stored,
// the model is not called and a fixed response is returned.
func (a *Answerer) Answer(ctx context.Context, question string) (*Answer, error) {
	matches, err := a.searcher.FindSimilar(ctx, question, a.maxContext)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		a.logger.Debug("no relevant units for question")
		return &Answer{Text: "I don't have any stored knowledge relevant to that question."}, nil
	}

	prompt := buildPrompt(question, matches)

	text, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &Answer{Text: text, Sources: matches}, nil
}

// buildPrompt assembles the retrieved units into a grounded prompt.
func buildPrompt(question string, matches []*core.SearchResult) string {
	var sb strings.Builder

	sb.WriteString("Answer the question using only the context below. ")
	sb.WriteString("If the context does not contain the answer, say you don't know.\n\nContext:\n")

	for i, match := range matches {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, match.Record.Text)
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")

	return sb.String()
}
