package rag

import (
	"fmt"
	"math"
	"strings"
)

const citationTextLimit = 200

// retrievedChunk is a fused result joined back to its stored content.
type retrievedChunk struct {
	DocumentID   string
	PageNumber   int
	SentenceText string
	WindowText   string
	Score        float64
}

// BuildPrompt assembles the grounded generation prompt: numbered context
// windows followed by the question, with instructions to answer only from
// the supplied context.
func BuildPrompt(question string, chunks []retrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text := chunk.WindowText
		if text == "" {
			text = chunk.SentenceText
		}
		pageInfo := ""
		if chunk.PageNumber > 0 {
			pageInfo = fmt.Sprintf(" (Page %d)", chunk.PageNumber)
		}
		parts = append(parts, fmt.Sprintf("[Source %d%s]:\n%s", i+1, pageInfo, text))
	}
	contextText := strings.Join(parts, "\n\n")

	return fmt.Sprintf(`You are an expert document analyst. Answer the user's question using ONLY the provided context.

Guidelines:
- Be concise and accurate
- Cite sources using [Source N] notation inline in your answer
- If the context doesn't contain enough information, say "I don't have enough information in the provided documents to answer that."
- Do NOT make up information not present in the context

Context:
%s

Question: %s

Answer:`, contextText, question)
}

// BuildCitations converts retrieved chunks to citations, deduplicating by
// (document, page) while preserving rank order. Chunk text is truncated and
// scores rounded for presentation.
func BuildCitations(chunks []retrievedChunk, filenames map[string]string) []Citation {
	citations := make([]Citation, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		key := fmt.Sprintf("%s_%d", chunk.DocumentID, chunk.PageNumber)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		filename, ok := filenames[chunk.DocumentID]
		if !ok {
			filename = "Unknown"
		}
		citations = append(citations, Citation{
			DocumentID:     chunk.DocumentID,
			Filename:       filename,
			PageNumber:     chunk.PageNumber,
			ChunkText:      truncateRunes(chunk.SentenceText, citationTextLimit),
			RelevanceScore: math.Round(chunk.Score*1e4) / 1e4,
		})
	}
	return citations
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
