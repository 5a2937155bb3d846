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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - SourceID must not be empty
//   - ContentHash must not be empty and must match RawContent
//   - Origin must be valid
//   - Path must be set for file-origin documents
//
// NOT validated:
//   - RawContent (empty content is a valid document that yields zero units)
//   - Boundaries (an empty slice just means no structure was reported)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingSourceID)
	}

	if err := ValidateOrigin(doc.Origin); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.Origin == OriginFile && doc.Path == "" {
		return fmt.Errorf("%w: file origin requires a path", ErrInvalidDocument)
	}

	if doc.ContentHash == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingContentHash)
	}

	if doc.ContentHash != HashContent(doc.RawContent) {
		return fmt.Errorf("%w: content hash does not match raw content", ErrInvalidDocument)
	}

	return nil
}

// ValidateUnit validates a Unit according to domain rules.
//
// Validation rules:
//   - UnitID and SourceID must not be empty
//   - Text must not be empty
//   - Span must be a non-empty half-open range
func ValidateUnit(unit *Unit) error {
	if unit == nil {
		return fmt.Errorf("%w: unit is nil", ErrInvalidUnit)
	}

	if unit.UnitID == "" {
		return fmt.Errorf("%w: unit id cannot be empty", ErrInvalidUnit)
	}

	if unit.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUnit, ErrMissingSourceID)
	}

	if unit.Text == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidUnit)
	}

	if unit.Span.Start < 0 || unit.Span.End <= unit.Span.Start {
		return fmt.Errorf("%w: %w: [%d, %d)", ErrInvalidUnit, ErrInvalidSpan, unit.Span.Start, unit.Span.End)
	}

	return nil
}

// ValidateOrigin validates that an Origin has a valid value.
func ValidateOrigin(origin Origin) error {
	if origin != OriginText && origin != OriginFile {
		return fmt.Errorf("%w: value %d", ErrInvalidOrigin, origin)
	}
	return nil
}
