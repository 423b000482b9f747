package service

import (
	"fmt"
	"strings"

	"github.com/poliq-ai/poliq/internal/domain"
)

// SnippetMaxChars caps the single-line snippet shown per citation.
const SnippetMaxChars = 400

// BuildContextBlock concatenates the merged text of every retrieved
// record, tagged with its corpus and source document, into the policy
// context handed to the chat model.
func BuildContextBlock(records []domain.RetrievedRecord) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, fmt.Sprintf("[CORPUS: %s] [DOCUMENT: %s]\n%s\n----\n", r.CorpusName, r.SourceDocument, r.MergedText))
	}
	return strings.Join(parts, "\n")
}

// ProjectSources builds the compact citation list: one entry per unique
// (corpus, document) pair, first occurrence wins, with the merged text
// flattened to a single capped line.
func ProjectSources(records []domain.RetrievedRecord) []domain.SourceItem {
	type key struct {
		corpus   string
		document string
	}

	seen := make(map[key]bool, len(records))
	sources := make([]domain.SourceItem, 0, len(records))
	for _, r := range records {
		k := key{corpus: r.CorpusName, document: r.SourceDocument}
		if seen[k] {
			continue
		}
		seen[k] = true
		sources = append(sources, domain.SourceItem{
			Corpus:       r.CorpusName,
			DocumentName: r.SourceDocument,
			Snippet:      snippet(r.MergedText),
		})
	}
	return sources
}

// snippet flattens newlines and caps the length for citation display.
func snippet(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	flat := strings.Join(lines, " ")
	runes := []rune(flat)
	if len(runes) > SnippetMaxChars {
		return string(runes[:SnippetMaxChars])
	}
	return flat
}

// historyToText flattens stored chat history into a simple text block
// for the prompt.
func historyToText(history []domain.Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content))
	}
	return strings.Join(lines, "\n")
}
