// Package chunker splits course text into overlapping, sentence-aligned
// chunks sized for embedding and retrieval.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

// Chunker accumulates whole sentences up to a character budget and starts
// each following chunk inside the previous one's tail so consecutive chunks
// share context. Output is a pure function of the input text and the
// configured budget/overlap, which keeps re-ingestion checks deterministic.
type Chunker struct {
	chunkSize int // Character budget per chunk
	overlap   int // Character budget for trailing-sentence overlap
}

// New creates a Chunker. A non-positive chunkSize falls back to the
// default budget of 800; a negative overlap clamps to 0.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Chunk splits text into ordered chunks. Sentences are never split: a
// single sentence longer than the budget is emitted whole. Empty or
// whitespace-only input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		// Greedily take sentences while the joined length stays in budget.
		// Always take at least one so oversized sentences pass through whole.
		j := i
		size := 0
		for j < len(sentences) {
			add := len(sentences[j])
			if j > i {
				add++ // joining space
			}
			if size+add > c.chunkSize && j > i {
				break
			}
			size += add
			j++
		}
		chunks = append(chunks, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Back up by whole trailing sentences that fit in the overlap budget.
		start := j
		overlapSize := 0
		for start > i {
			add := len(sentences[start-1])
			if overlapSize > 0 {
				add++
			}
			if overlapSize+add > c.overlap {
				break
			}
			overlapSize += add
			start--
		}
		if start == i {
			// The whole chunk fits inside the overlap window; advance past it
			// instead of stalling.
			start = j
		}
		i = start
	}
	return chunks
}

// splitSentences normalizes whitespace and splits on sentence-ending
// punctuation followed by whitespace. A trailing fragment without terminal
// punctuation is kept as its own sentence.
func splitSentences(text string) []string {
	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if normalized == "" {
		return nil
	}

	var sentences []string
	runes := []rune(normalized)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		// Swallow runs of terminal punctuation ("?!", "...").
		end := i
		for end+1 < len(runes) && isSentenceEnd(runes[end+1]) {
			end++
		}
		if end+1 < len(runes) && !unicode.IsSpace(runes[end+1]) {
			i = end
			continue // mid-token punctuation, e.g. "3.14" or "e.g."
		}
		sentence := strings.TrimSpace(string(runes[start : end+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		i = end + 1
		start = i + 1
	}
	if start < len(runes) {
		if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
