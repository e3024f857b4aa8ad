package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_SingleShortText(t *testing.T) {
	c := New(800, 100)
	chunks := c.Chunk("This is a short sentence. And another one.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "This is a short sentence. And another one.", chunks[0])
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New(800, 100)

	assert.Nil(t, c.Chunk(""))
	assert.Nil(t, c.Chunk("   \n\t  "))
}

func TestChunk_RespectsBudget(t *testing.T) {
	// Ten sentences of ~40 chars each against a 100-char budget: every chunk
	// must stay within budget because no single sentence exceeds it.
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString("The quick brown fox jumps over the dog. ")
	}

	c := New(100, 0)
	chunks := c.Chunk(sb.String())

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100, "chunk %d over budget", i)
	}
}

func TestChunk_OversizedSentenceEmittedWhole(t *testing.T) {
	long := strings.Repeat("word ", 50) + "end."
	c := New(100, 20)
	chunks := c.Chunk(long)

	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(long), chunks[0])
}

func TestChunk_OverlapIsSharedContext(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here. Fourth sentence here."
	c := New(45, 25)
	chunks := c.Chunk(text)

	require.Greater(t, len(chunks), 1)
	for i := 0; i < len(chunks)-1; i++ {
		// The next chunk must start with whole trailing sentences of this one.
		firstSentence := strings.SplitAfter(chunks[i+1], ".")[0]
		assert.True(t, strings.HasSuffix(chunks[i], firstSentence),
			"chunk %d does not end with the start of chunk %d", i, i+1)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta! Eta theta iota? Kappa lambda mu. " +
		"Nu xi omicron. Pi rho sigma. Tau upsilon phi."
	c := New(60, 20)

	first := c.Chunk(text)
	second := c.Chunk(text)

	assert.Equal(t, first, second)
}

func TestChunk_NormalizesWhitespace(t *testing.T) {
	c := New(800, 100)
	chunks := c.Chunk("Line one\nwraps here.   Line two\t\tfollows.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Line one wraps here. Line two follows.", chunks[0])
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic terminators",
			in:   "One. Two! Three?",
			want: []string{"One.", "Two!", "Three?"},
		},
		{
			name: "trailing fragment kept",
			in:   "Complete sentence. trailing fragment without period",
			want: []string{"Complete sentence.", "trailing fragment without period"},
		},
		{
			name: "decimal numbers not split",
			in:   "Pi is roughly 3.14 in value. Next sentence.",
			want: []string{"Pi is roughly 3.14 in value.", "Next sentence."},
		},
		{
			name: "ellipsis as one terminator",
			in:   "Wait for it... done.",
			want: []string{"Wait for it...", "done."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.in))
		})
	}
}
