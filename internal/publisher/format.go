package publisher

import (
	"strings"
	"unicode"
)

// Message assembly for Telegram: hashtag line first, then the summary body,
// normalized, HTML-escaped and truncated to the API limit.

const (
	maxMessageRunes = 4000
	truncateAtRunes = 3997
	uppercaseCutoff = 0.7
)

// FormatMessage builds the outgoing message text from an annotated article.
// Case normalization and HTML escaping apply to the summary only; the hashtag
// line passes through untouched.
func FormatMessage(hashtags, summary string) string {
	summary = escapeHTML(normalizeCase(summary))

	var b strings.Builder
	if hashtags != "" {
		b.WriteString(hashtags)
		b.WriteByte('\n')
	}
	b.WriteString(summary)
	return truncate(b.String())
}

// normalizeCase converts shouting text to sentence case. Text where more
// than 70% of letters are uppercase was almost certainly pasted from an
// all-caps headline.
func normalizeCase(s string) string {
	var letters, upper int
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 || float64(upper)/float64(letters) <= uppercaseCutoff {
		return s
	}

	runes := []rune(strings.ToLower(s))
	startOfSentence := true
	for i, r := range runes {
		if startOfSentence && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			startOfSentence = false
		}
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			startOfSentence = true
		}
	}
	return string(runes)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// truncate caps the message at the Telegram length limit, marking the cut
// with an ellipsis.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxMessageRunes {
		return s
	}
	return string(runes[:truncateAtRunes]) + "..."
}
