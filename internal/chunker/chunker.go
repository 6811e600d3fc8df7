// Package chunker splits document text into overlapping, sentence-aware
// segments used as retrieval units.
package chunker

import (
	"strings"
	"unicode"
)

const (
	DefaultTargetSize = 500
	DefaultOverlap    = 50
)

// wideTerminators end a sentence on their own; narrowTerminators only
// count when followed by whitespace, so "3.14" or "v1.2" never splits.
const (
	wideTerminators   = "。！？"
	narrowTerminators = ".!?"
)

// Split cuts text into segments of at most targetSize runes. Before each
// cut it walks the window backwards looking for the last sentence
// terminator, so segments prefer to end on sentence boundaries. Each
// segment re-includes the last overlap runes of its predecessor.
func Split(text string, targetSize, overlap int) []string {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= targetSize {
		overlap = targetSize / 2
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= targetSize {
		return []string{text}
	}

	var segments []string
	start := 0
	for start < n {
		end := start + targetSize
		if end >= n {
			segments = append(segments, string(runes[start:n]))
			break
		}

		cut := sentenceCut(runes, start, end)
		segments = append(segments, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			// no forward progress possible, skip the overlap
			next = cut
		}
		start = next

		// short tail after a no-progress cut: emit it rather than loop
		if n-start < overlap {
			if start < n {
				segments = append(segments, string(runes[start:n]))
			}
			break
		}
	}
	return segments
}

// sentenceCut returns the position just after the last sentence
// terminator inside (start, end), or end when the window holds none.
func sentenceCut(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		r := runes[i]
		if strings.ContainsRune(wideTerminators, r) {
			return i + 1
		}
		if strings.ContainsRune(narrowTerminators, r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}
	return end
}
