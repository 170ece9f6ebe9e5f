package sources

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// BrowserHeaders returns a browser-like header set. Some sources reject
// requests that do not look like a real browser.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "ru-RU,ru;q=0.9,en;q=0.8",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}

var (
	fullDateRe   = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	shortDateRe  = regexp.MustCompile(`\d{2}\.\d{2}`)
	urlDateRe    = regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})/`)
	urlDateRevRe = regexp.MustCompile(`/(\d{2})/(\d{2})/(\d{4})/`)
	dateClassRe  = regexp.MustCompile(`(?i)(date|time|published)`)
	quoteRe      = regexp.MustCompile(`(?s)["«»“”]([^"«»“”]{20,}?)["«»“”]`)
	tagClassRe   = regexp.MustCompile(`(?i)(tag|category|label)`)
	prevClassRe  = regexp.MustCompile(`(?i)(preview|summary|description)`)
)

// ParseDate recognizes the two literal formats sources use: DD.MM.YYYY and
// DD.MM (year defaults to the current year). Anything else reports no date.
func ParseDate(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if m := fullDateRe.FindString(text); m != "" {
		if t, err := time.Parse("02.01.2006", m); err == nil {
			return t, true
		}
	}
	if m := shortDateRe.FindString(text); m != "" {
		if t, err := time.Parse("02.01.2006", m+"."+strconv.Itoa(now.Year())); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dateFromURL extracts a date segment from an article URL. Both /YYYY/MM/DD/
// and /DD/MM/YYYY/ layouts occur in the wild.
func dateFromURL(u string) (time.Time, bool) {
	var year, month, day int
	if m := urlDateRe.FindStringSubmatch(u); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := urlDateRevRe.FindStringSubmatch(u); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// resolveURL joins href against base, returning href unchanged on parse errors.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// classMatches reports whether the selection's class attribute matches re.
func classMatches(sel *goquery.Selection, re *regexp.Regexp) bool {
	if re == nil {
		return false
	}
	return re.MatchString(sel.AttrOr("class", ""))
}

// extractQuotes collects quotation elements plus quotation-mark-pair
// substrings of 20+ characters. Duplicates are allowed; downstream prompt
// building takes only the first few long entries.
func extractQuotes(doc *goquery.Document, content string) []string {
	var quotes []string
	doc.Find("blockquote, q, cite").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if utf8.RuneCountInString(text) > 20 {
			quotes = append(quotes, text)
		}
	})
	for _, m := range quoteRe.FindAllStringSubmatch(content, -1) {
		quotes = append(quotes, strings.TrimSpace(m[1]))
	}
	return quotes
}

// extractTags collects short tag/category labels, lowercased, de-duplicated.
func extractTags(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var tags []string
	doc.Find("a, span").Each(func(_ int, sel *goquery.Selection) {
		if !classMatches(sel, tagClassRe) {
			return
		}
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if text == "" || utf8.RuneCountInString(text) >= 50 || seen[text] {
			return
		}
		seen[text] = true
		tags = append(tags, text)
	})
	return tags
}

// truncateRunes caps s at max runes.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// responseSnippet renders a short, log-safe slice of a response body.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
