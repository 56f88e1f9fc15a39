package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

// buildSnippet extracts a bounded excerpt for a search hit: centered on the
// earliest token match, or the document's leading text when there is no
// query. With highlight set, every token occurrence is wrapped in <mark>.
func buildSnippet(doc domain.CaseDocument, normalizedText string, maxChars int, highlight bool) string {
	source := strings.TrimSpace(doc.Headnote)
	if source == "" {
		source = strings.TrimSpace(doc.FullText)
	}
	if source == "" || maxChars <= 0 {
		return ""
	}

	tokens := splitAlphaNumLower(normalizedText)
	matchIdx := firstMatchIndex(source, tokens)

	start := 0
	if matchIdx > 0 {
		start = matchIdx - maxChars/3
		if start < 0 {
			start = 0
		}
	}
	end := start + maxChars
	if end > len(source) {
		end = len(source)
	}
	start = alignRuneStart(source, start)
	end = alignRuneStart(source, end)

	snippet := source[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(source) {
		snippet = snippet + "..."
	}

	if highlight && len(tokens) > 0 {
		snippet = markTokens(snippet, tokens)
	}
	return snippet
}

// firstMatchIndex returns the byte offset of the earliest case-insensitive
// token occurrence, or -1 when nothing matches.
func firstMatchIndex(source string, tokens []string) int {
	lower := strings.ToLower(source)
	matchIdx := -1
	for _, token := range tokens {
		i := strings.Index(lower, token)
		if i >= 0 && (matchIdx < 0 || i < matchIdx) {
			matchIdx = i
		}
	}
	if matchIdx >= len(source) {
		return -1
	}
	return matchIdx
}

func markTokens(snippet string, tokens []string) string {
	quoted := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token != "" {
			quoted = append(quoted, regexp.QuoteMeta(token))
		}
	}
	if len(quoted) == 0 {
		return snippet
	}
	re, err := regexp.Compile("(?i)(" + strings.Join(quoted, "|") + ")")
	if err != nil {
		return snippet
	}
	return re.ReplaceAllString(snippet, "<mark>$1</mark>")
}

func alignRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
