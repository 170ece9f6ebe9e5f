package sources

import (
	"testing"
	"time"
)

func TestParseDateFullFormat(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	got, ok := ParseDate("Опубликовано 15.03.2026 в 10:00", now)
	if !ok {
		t.Fatalf("expected a date")
	}
	if got.Day() != 15 || got.Month() != time.March || got.Year() != 2026 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateShortFormatUsesCurrentYear(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	got, ok := ParseDate("15.03", now)
	if !ok {
		t.Fatalf("expected a date")
	}
	if got.Year() != 2026 {
		t.Fatalf("expected current year, got %d", got.Year())
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, ok := ParseDate("вчера в полдень", time.Now()); ok {
		t.Fatalf("expected no date")
	}
}

func TestDateFromURLBothLayouts(t *testing.T) {
	got, ok := dateFromURL("https://example.com/2026/03/15/article")
	if !ok || got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Fatalf("year-first layout: ok=%v got=%v", ok, got)
	}

	got, ok = dateFromURL("https://example.com/economics/15/03/2026/abcdef")
	if !ok || got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Fatalf("day-first layout: ok=%v got=%v", ok, got)
	}

	if _, ok := dateFromURL("https://example.com/99/99/2026/x"); ok {
		t.Fatalf("expected invalid month/day rejected")
	}
}

func TestResolveURL(t *testing.T) {
	if got := resolveURL("https://example.com", "/read/123"); got != "https://example.com/read/123" {
		t.Fatalf("got %q", got)
	}
	if got := resolveURL("https://example.com", "https://other.com/a"); got != "https://other.com/a" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("привет мир", 6); got != "привет" {
		t.Fatalf("got %q", got)
	}
}
