// Package chunk splits normalized transcript text into overlapping
// fixed-size windows used as retrieval units.
package chunk

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cadenza-ai/mentor/core"
)

// ErrInvalidWindow indicates a size/overlap combination that cannot
// produce a forward-moving window.
var ErrInvalidWindow = fmt.Errorf("chunk: overlap must satisfy 0 <= overlap < size")

// Split cuts text into chunks of at most size characters with the given
// overlap between consecutive chunks. Chunk i starts at i*(size-overlap);
// the final chunk is truncated to the remaining text, never padded.
// Empty input yields zero chunks.
//
// Split is deterministic and stateless: the same input always produces
// identical output.
func Split(sourceID, text string, size, overlap int) ([]core.Chunk, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidWindow, size, overlap)
	}

	if len(text) == 0 {
		return nil, nil
	}

	stride := size - overlap
	chunks := make([]core.Chunk, 0, (len(text)+stride-1)/stride)

	for start, seq := 0, 0; start < len(text); start, seq = start+stride, seq+1 {
		end := start + size
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, core.Chunk{
			SourceID: sourceID,
			Seq:      seq,
			Start:    start,
			End:      end,
			Text:     text[start:end],
		})

		if end == len(text) {
			break
		}
	}

	return chunks, nil
}

// Normalize cleans raw transcript text before chunking: control
// characters are dropped, runs of whitespace collapse to a single
// space, and the result is trimmed.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// skip
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}

	return b.String()
}
