package annotate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// The quality gate: a deterministic set of structural checks a generated
// summary must pass before being accepted. The emoji+hashtag first-line
// requirement is an intentional strict contract.

const (
	minSummaryRunes   = 30
	maxSummaryLines   = 15
	maxParagraphRunes = 200
	emojiWindowRunes  = 10
)

var (
	hashtagTokenRe    = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	danglingSuffixes  = []string{"...", "…", ",", ":", ";", "-"}
	incompleteMarkers = []string{"продолжение следует", "читайте далее", "подробнее"}
)

// isEmoji reports whether r is a pictographic emoji (emoticons, symbols and
// pictographs, transport, regional indicators).
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F:
		return true
	case r >= 0x1F300 && r <= 0x1F5FF:
		return true
	case r >= 0x1F680 && r <= 0x1F6FF:
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF:
		return true
	}
	return false
}

func containsEmoji(s string) bool {
	for _, r := range s {
		if isEmoji(r) {
			return true
		}
	}
	return false
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// ValidateSummary reports whether the summary passes the quality gate.
func ValidateSummary(summary string) bool {
	if utf8.RuneCountInString(summary) < minSummaryRunes {
		return false
	}

	trimmed := strings.TrimSpace(summary)
	for _, suffix := range danglingSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return false
		}
	}
	if strings.HasSuffix(trimmed, "?") {
		return false
	}

	lower := strings.ToLower(summary)
	for _, marker := range incompleteMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	firstLine := summary
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		firstLine = summary[:i]
	}
	if !containsEmoji(headRunes(firstLine, emojiWindowRunes)) {
		return false
	}
	if !hashtagTokenRe.MatchString(firstLine) {
		return false
	}

	if strings.Count(summary, "\n") > maxSummaryLines {
		return false
	}
	for _, paragraph := range strings.Split(summary, "\n\n") {
		if utf8.RuneCountInString(strings.TrimSpace(paragraph)) > maxParagraphRunes {
			return false
		}
	}
	return true
}
