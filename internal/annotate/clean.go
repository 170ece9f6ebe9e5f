package annotate

import (
	"regexp"
	"strings"
)

// Post-processing applied to every non-empty raw summary, in order: lead-in
// prefix strip, political-reference and whitespace normalization, quote
// reformatting, percent emphasis, then the quality gate. A summary that
// fails the gate is discarded: a malformed summary is worse than no summary.

var leadInPrefixes = []string{
	"вот краткая сводка:", "сводка новости:", "краткое содержание:",
	"резюме:", "основные моменты:", "итак,", "в итоге,", "вот резюме:",
}

var politicalFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)бывш(ий|его|ему) президент(а|у|ом)? США Дональд(а|у|ом)? Трамп(а|у|ом)?`), "президент США Дональд Трамп"},
	{regexp.MustCompile(`(?i)экс-президент(а|у|ом)? США Дональд(а|у|ом)? Трамп(а|у|ом)?`), "президент США Дональд Трамп"},
	{regexp.MustCompile(`(?i)Дональд Трамп, бывший президент США`), "Дональд Трамп, президент США"},
	{regexp.MustCompile(`(?i)45(-й)? президент США`), "президент США"},
	// Citation format only, so case-sensitive.
	{regexp.MustCompile(`ТРАМП,`), "ТРАМП:"},
}

var (
	spaceBeforePunctRe = regexp.MustCompile(`\s+([.,;:!?])`)
	multiSpaceRe       = regexp.MustCompile(`[ \t]{2,}`)
	multiNewlineRe     = regexp.MustCompile(`\n{3,}`)
	trailingRuleRe     = regexp.MustCompile(`\n+_{5,}\s*$`)
	percentRe          = regexp.MustCompile(`(\+\d+(?:\.\d+)?%|-\d+(?:\.\d+)?%)`)
)

// Speaker reformatting: `Имя Фамилия заявил: «цитата»` becomes `Имя Фамилия: цитата`.
// Two name shapes, the longer one first.
var quoteSpeakerRes = []*regexp.Regexp{
	regexp.MustCompile(`([А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+)\s+(?:сказал|заявил|отметил|подчеркнул|сообщил)(?:а|и|о)?[,:]?\s*[«"“]([^«»"“”]+)[»"”]`),
	regexp.MustCompile(`([А-ЯЁ][а-яё]+)\s+(?:сказал|заявил|отметил|подчеркнул|сообщил)(?:а|и|о)?[,:]?\s*[«"“]([^«»"“”]+)[»"”]`),
}

// CleanSummary runs the full post-processing pipeline. It returns "" when
// the input is empty or the result fails the quality gate.
func CleanSummary(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = stripLeadIn(s)
	s = fixPoliticalReferences(s)
	s = reformatQuotes(s)
	s = percentRe.ReplaceAllString(s, "**$1**")

	if !ValidateSummary(s) {
		return ""
	}
	return s
}

// stripLeadIn removes the first matching boilerplate lead-in phrase.
func stripLeadIn(s string) string {
	lower := strings.ToLower(s)
	for _, prefix := range leadInPrefixes {
		if strings.HasPrefix(lower, prefix) {
			// Lowercasing Cyrillic and ASCII preserves byte offsets.
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}

// fixPoliticalReferences applies the operator-fixed canonical phrasing and
// normalizes whitespace and line breaks.
func fixPoliticalReferences(s string) string {
	for _, fix := range politicalFixes {
		s = fix.re.ReplaceAllString(s, fix.replacement)
	}

	s = spaceBeforePunctRe.ReplaceAllString(s, "$1")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = multiNewlineRe.ReplaceAllString(s, "\n\n")
	s = trailingRuleRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func reformatQuotes(s string) string {
	for _, re := range quoteSpeakerRes {
		s = re.ReplaceAllString(s, "$1: $2")
	}
	return s
}
