package chunk

import (
	"strings"
	"unicode"

	"github.com/kestrelworks/granary/core"
)

// Split divides a document's raw content into ordered units under the
// given policy. Offsets in unit spans are rune positions into the raw
// content. Empty or whitespace-only content yields zero units and no
// error.
func Split(doc core.Document, policy Policy) ([]core.Unit, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(doc.RawContent) == "" {
		return nil, nil
	}

	runes := []rune(doc.RawContent)

	switch policy.Kind {
	case KindFixedSize:
		return splitFixed(doc, runes, policy.Size, policy.Overlap), nil
	case KindDocumentStructure:
		if len(doc.Boundaries) == 0 {
			return splitFixed(doc, runes, policy.Size, policy.Overlap), nil
		}
		return splitStructural(doc, runes), nil
	case KindSemantic:
		return splitSemantic(doc, runes, policy), nil
	default:
		// Validate rejects unknown kinds.
		return nil, ErrInvalidPolicy
	}
}

// splitFixed slides a window of size runes, advancing by size-overlap.
// The last window may be shorter; every window but the first starts
// exactly overlap runes before its predecessor's end.
func splitFixed(doc core.Document, runes []rune, size, overlap int) []core.Unit {
	step := size - overlap
	units := make([]core.Unit, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		units = append(units, makeUnit(doc, uint64(len(units)), runes, start, end))
		if end == len(runes) {
			break
		}
	}

	return units
}

// splitStructural emits one unit per structural segment, dropping
// segments that are empty after trimming.
func splitStructural(doc core.Document, runes []rune) []core.Unit {
	bounds := doc.Boundaries
	if bounds[0] != 0 {
		bounds = append([]int{0}, bounds...)
	}

	units := make([]core.Unit, 0, len(bounds))
	for i, start := range bounds {
		end := len(runes)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		ts, te, ok := trimRange(runes, clamp(start, len(runes)), clamp(end, len(runes)))
		if !ok {
			continue
		}
		units = append(units, makeUnit(doc, uint64(len(units)), runes, ts, te))
	}
	return units
}

// splitSemantic cuts the content into sentence-like segments, then
// greedily merges adjacent segments while the merged unit stays within
// the target size and the next segment stays similar to the running
// unit. A single oversized segment becomes its own unit unsplit.
func splitSemantic(doc core.Document, runes []rune, policy Policy) []core.Unit {
	segs := sentenceSegments(runes)
	if len(segs) == 0 {
		return nil
	}

	similarity := policy.Similarity
	if similarity == nil {
		similarity = LexicalCosine
	}

	var units []core.Unit
	cur := segs[0]
	for _, seg := range segs[1:] {
		mergedLen := seg.end - cur.start
		unitText := string(runes[cur.start:cur.end])
		segText := string(runes[seg.start:seg.end])

		if mergedLen <= policy.TargetSize && similarity(unitText, segText) >= policy.SimilarityThreshold {
			cur.end = seg.end
			continue
		}

		units = append(units, makeUnit(doc, uint64(len(units)), runes, cur.start, cur.end))
		cur = seg
	}
	units = append(units, makeUnit(doc, uint64(len(units)), runes, cur.start, cur.end))

	return units
}

// segment is a trimmed [start, end) rune range.
type segment struct {
	start int
	end   int
}

// sentenceSegments splits runes on sentence-ending punctuation,
// grouping consecutive enders with the sentence they close. Trailing
// text without an ender becomes a final segment.
func sentenceSegments(runes []rune) []segment {
	var segs []segment
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isSentenceEnd(runes[i+1]) {
			i++
		}
		if ts, te, ok := trimRange(runes, start, i+1); ok {
			segs = append(segs, segment{start: ts, end: te})
		}
		start = i + 1
	}

	if ts, te, ok := trimRange(runes, start, len(runes)); ok {
		segs = append(segs, segment{start: ts, end: te})
	}

	return segs
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// trimRange narrows [start, end) to exclude surrounding whitespace.
// ok is false when nothing remains.
func trimRange(runes []rune, start, end int) (int, int, bool) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return start, end, start < end
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func makeUnit(doc core.Document, seq uint64, runes []rune, start, end int) core.Unit {
	return core.Unit{
		UnitID:        core.UnitID(doc.ContentHash, seq),
		SourceID:      doc.SourceID,
		SequenceIndex: seq,
		Text:          string(runes[start:end]),
		Span:          core.Span{Start: start, End: end},
	}
}
