package text

import (
	"strings"
	"unicode/utf8"
)

// ChunkBySentence splits text into chunks at sentence boundaries, grouping
// consecutive sentences while staying within maxChars bytes per chunk.
// If maxChars is 0, no splitting is performed.
// Sentences that individually exceed maxChars are kept intact as a single chunk.
func ChunkBySentence(text string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{text}
	}
	return ChunkByCost(text, maxChars, func(s string) int { return len(s) })
}

// ChunkByCost is ChunkBySentence with a caller supplied cost, e.g. the
// encoded token count of a chunk. cost is evaluated on candidate joined
// chunks, so it need not be additive.
func ChunkByCost(text string, maxCost int, cost func(string) int) []string {
	sentences := SplitSentences(text)
	if len(sentences) <= 1 || maxCost <= 0 {
		return []string{text}
	}

	var chunks []string
	current := ""

	for _, s := range sentences {
		if current == "" {
			current = s
			continue
		}
		if candidate := current + joiner(current) + s; cost(candidate) <= maxCost {
			current = candidate
			continue
		}
		chunks = append(chunks, current)
		current = s
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

// joiner returns the separator placed after prev: a space, except after a
// CJK terminator.
func joiner(prev string) string {
	if r, _ := utf8.DecodeLastRuneInString(prev); isCJKTerminator(r) {
		return ""
	}
	return " "
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return isCJKTerminator(r)
}

func isCJKTerminator(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}

// SplitSentences splits text on sentence-ending punctuation (ASCII and CJK),
// keeping the terminator attached to its sentence. A run of terminators
// stays with the sentence it ends. Empty segments are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	for i, r := range text {
		if !isTerminator(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if next, _ := utf8.DecodeRuneInString(text[end:]); isTerminator(next) {
			continue
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	// Trailing text after the last terminator (if any).
	if start < len(text) {
		if s := strings.TrimSpace(text[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}
