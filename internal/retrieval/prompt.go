package retrieval

import (
	"fmt"
	"strings"
)

// NoContextFound keeps the prompt template well-formed when retrieval comes
// back empty; downstream templates must never see an empty context block.
const NoContextFound = "No relevant context found."

const contextDelimiter = "\n---\n"

// BuildContext renders ranked chunks as an attributed context block, in rank
// order. It is a pure formatter: filtering and truncation already happened in
// the ranker.
func BuildContext(sources []Source) string {
	if len(sources) == 0 {
		return NoContextFound
	}

	blocks := make([]string, 0, len(sources))
	for _, s := range sources {
		blocks = append(blocks, fmt.Sprintf("Source: %s\nContent: %s", s.FileName, s.Text))
	}
	return strings.Join(blocks, contextDelimiter)
}

// BuildPrompt assembles the generation prompt for a support question.
func BuildPrompt(question, contextBlock string) string {
	var b strings.Builder
	b.WriteString("You are a helpful customer support assistant. Answer the question using only the context below. ")
	b.WriteString("If the context does not contain the answer, say you could not find it in the available documents. ")
	b.WriteString("Cite the source file name when you use it.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
