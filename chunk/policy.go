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


package chunk

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy indicates a chunk policy failed validation. It is a
// configuration error and fatal at startup.
var ErrInvalidPolicy = errors.New("invalid chunk policy")

// Kind selects one of the closed set of chunking strategies.
type Kind int

const (
	// KindFixedSize slides a fixed character window over the content.
	KindFixedSize Kind = iota + 1
	// KindDocumentStructure emits one unit per structural segment.
	KindDocumentStructure
	// KindSemantic merges sentence segments by lexical similarity.
	KindSemantic
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFixedSize:
		return "fixed_size"
	case KindDocumentStructure:
		return "document"
	case KindSemantic:
		return "semantic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Defaults match the original deployment configuration.
const (
	DefaultSize                = 5000
	DefaultOverlap             = 200
	DefaultSemanticTargetSize  = 500
	DefaultSimilarityThreshold = 0.5
)

// Policy is the tagged-variant configuration for a split. Only the
// fields relevant to the selected Kind are consulted.
type Policy struct {
	Kind Kind

	// FixedSize parameters. Also used as the fallback for
	// DocumentStructure when a document reports no structure.
	Size    int
	Overlap int

	// Semantic parameters.
	TargetSize          int
	SimilarityThreshold float64

	// Similarity overrides the merge similarity function. Nil selects
	// LexicalCosine.
	Similarity SimilarityFunc
}

// FixedSize builds a fixed-window policy.
func FixedSize(size, overlap int) Policy {
	return Policy{Kind: KindFixedSize, Size: size, Overlap: overlap}
}

// DocumentStructure builds a structure-driven policy. size and overlap
// configure the fallback window for unstructured documents.
func DocumentStructure(size, overlap int) Policy {
	return Policy{Kind: KindDocumentStructure, Size: size, Overlap: overlap}
}

// Semantic builds a similarity-merge policy.
func Semantic(targetSize int, similarityThreshold float64) Policy {
	return Policy{
		Kind:                KindSemantic,
		TargetSize:          targetSize,
		SimilarityThreshold: similarityThreshold,
	}
}

// Validate checks the policy parameters for the selected kind.
// All failures wrap ErrInvalidPolicy.
func (p Policy) Validate() error {
	switch p.Kind {
	case KindFixedSize, KindDocumentStructure:
		if p.Size <= 0 {
			return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidPolicy, p.Size)
		}
		if p.Overlap < 0 {
			return fmt.Errorf("%w: overlap cannot be negative, got %d", ErrInvalidPolicy, p.Overlap)
		}
		if p.Overlap >= p.Size {
			return fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidPolicy, p.Overlap, p.Size)
		}
		return nil
	case KindSemantic:
		if p.TargetSize <= 0 {
			return fmt.Errorf("%w: target size must be positive, got %d", ErrInvalidPolicy, p.TargetSize)
		}
		if p.SimilarityThreshold < 0 || p.SimilarityThreshold > 1 {
			return fmt.Errorf("%w: similarity threshold must be in [0, 1], got %g", ErrInvalidPolicy, p.SimilarityThreshold)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidPolicy, int(p.Kind))
	}
}
