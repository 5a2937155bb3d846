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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidUnit indicates a Unit failed validation.
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrInvalidOrigin indicates an invalid Origin value.
	ErrInvalidOrigin = errors.New("invalid origin")

	// ErrMissingSourceID indicates the SourceID field is empty.
	ErrMissingSourceID = errors.New("source id cannot be empty")

	// ErrMissingContentHash indicates the ContentHash field is empty.
	ErrMissingContentHash = errors.New("content hash cannot be empty")

	// ErrInvalidSpan indicates a unit span is not a valid half-open range.
	ErrInvalidSpan = errors.New("invalid span")
)
