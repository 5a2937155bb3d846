// Package chunk splits document text into ordered retrievable units.
//
// Three mutually exclusive policies are supported:
//   - FixedSize: a sliding character window with configurable overlap
//   - DocumentStructure: one unit per structural segment (e.g. PDF page),
//     falling back to the fixed-size default when no structure is present
//   - Semantic: sentence segments greedily merged while the running unit
//     stays under a target size and lexically similar to the next segment
//
// Splitting is a pure function: identical input always yields identical
// units, and empty or whitespace-only input yields zero units without
// error.
package chunk
