package chunk

import (
	"math"
	"strings"
)

// SimilarityFunc scores how well a candidate segment fits the running
// unit, in [0, 1]. The first argument is the accumulated unit text so
// far, the second the next segment.
type SimilarityFunc func(unit, segment string) float64

// Stop words excluded from similarity scoring
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// LexicalCosine is the default merge similarity: cosine similarity of
// term-frequency maps over lowercased, punctuation-trimmed tokens with
// stop words removed. Returns 0 when either side has no content words.
func LexicalCosine(unit, segment string) float64 {
	a := termFrequencies(unit)
	b := termFrequencies(segment)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, fa := range a {
		normA += float64(fa * fa)
		if fb, ok := b[term]; ok {
			dot += float64(fa * fb)
		}
	}
	for _, fb := range b {
		normB += float64(fb * fb)
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// termFrequencies splits text into words, lowercases, trims punctuation,
// removes stop words, and counts occurrences.
func termFrequencies(text string) map[string]int {
	words := strings.Fields(text)
	freqs := make(map[string]int, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			freqs[cleaned]++
		}
	}

	return freqs
}
