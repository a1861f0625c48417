package rag

import (
	"strings"
	"unicode"
)

// Chunk is one retrieval unit: the anchor sentence that gets scored, plus
// the surrounding window of neighbors handed to the LLM as context.
type Chunk struct {
	Index        int
	SentenceText string
	WindowText   string
	PageNumber   int
}

// Chunker splits page text into sentence-anchored chunks. Each retained
// sentence becomes one chunk whose window covers up to Window neighbors on
// either side, clamped at page boundaries.
type Chunker struct {
	Window         int
	MinSentenceLen int
}

func NewChunker(window, minSentenceLen int) *Chunker {
	return &Chunker{Window: window, MinSentenceLen: minSentenceLen}
}

// ChunkPage builds chunks for a single page. Indexes start at startIndex so
// chunks across pages share one document-wide ordering.
func (c *Chunker) ChunkPage(text string, pageNumber, startIndex int) []Chunk {
	sentences := splitSentences(text)

	kept := sentences[:0]
	for _, s := range sentences {
		if len([]rune(s)) >= c.MinSentenceLen {
			kept = append(kept, s)
		}
	}

	chunks := make([]Chunk, 0, len(kept))
	for i, sentence := range kept {
		lo := i - c.Window
		if lo < 0 {
			lo = 0
		}
		hi := i + c.Window + 1
		if hi > len(kept) {
			hi = len(kept)
		}
		chunks = append(chunks, Chunk{
			Index:        startIndex + i,
			SentenceText: sentence,
			WindowText:   strings.Join(kept[lo:hi], " "),
			PageNumber:   pageNumber,
		})
	}
	return chunks
}

// ChunkPages chunks every page in order. Page numbers are 1-based positions
// in the input slice.
func (c *Chunker) ChunkPages(pages []string) []Chunk {
	var all []Chunk
	for i, page := range pages {
		all = append(all, c.ChunkPage(page, i+1, len(all))...)
	}
	return all
}

// splitSentences breaks text on terminal punctuation followed by
// whitespace. Trailing text without a terminator still yields a sentence.
func splitSentences(text string) []string {
	var (
		out []string
		cur strings.Builder
	)
	runes := []rune(text)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for i, r := range runes {
		cur.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()
	return out
}
