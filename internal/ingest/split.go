package ingest

import (
	"strings"
	"unicode"
)

const fallbackMaxChars = 2000

// SplitText cuts text into chunks of at most maxChars runes. Paragraphs are
// packed together until the limit; an overlong paragraph is split at the
// latest word boundary past a quarter of the limit.
func SplitText(text string, maxChars int) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = fallbackMaxChars
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, para := range splitParagraphs(clean) {
		runes := []rune(para)
		if len(runes) > maxChars {
			flush()
			chunks = append(chunks, splitLong(runes, maxChars)...)
			continue
		}
		if currentLen > 0 && currentLen+2+len(runes) > maxChars {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(para)
		currentLen += len(runes)
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paras = append(paras, block)
		}
	}
	return paras
}

// splitLong hard-splits a single run of text, backtracking from each limit to
// the nearest whitespace so words stay whole.
func splitLong(runes []rune, maxChars int) []string {
	minChars := maxChars / 4

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + minChars
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks
}
