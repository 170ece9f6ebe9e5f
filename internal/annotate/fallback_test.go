package annotate

import (
	"strings"
	"testing"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

func TestFallbackHashtagsFromKeywords(t *testing.T) {
	a := &domain.Article{
		Title:   "Рубль укрепился",
		Content: "Курс доллара снизился, нефть подорожала.",
	}
	got := FallbackHashtags(a, "")

	if !strings.HasPrefix(got, "🇷🇺 ") {
		t.Fatalf("expected russia emoji prefix, got %q", got)
	}
	for _, tag := range []string{"#рубль", "#доллар", "#нефть"} {
		if !strings.Contains(got, tag) {
			t.Fatalf("expected %s in %q", tag, got)
		}
	}
}

func TestFallbackHashtagsDefaultsWhenNoMatch(t *testing.T) {
	a := &domain.Article{Title: "Прогноз погоды", Content: "Завтра дождь."}
	got := FallbackHashtags(a, "")
	if got != "💰 #новости #экономика" {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackHashtagsCapsGeneratedTags(t *testing.T) {
	a := &domain.Article{
		Content: "рубль доллар нефть газ санкции россия экономика",
	}
	got := FallbackHashtags(a, "")
	if strings.Count(got, "#") != maxFallbackTags {
		t.Fatalf("expected %d tags, got %q", maxFallbackTags, got)
	}
}

func TestFallbackHashtagsAppendsCustomTags(t *testing.T) {
	a := &domain.Article{Content: "рубль"}
	got := FallbackHashtags(a, "#инвестор мусор #рубль")
	if !strings.HasSuffix(got, "#инвестор") {
		t.Fatalf("expected custom tag appended once, got %q", got)
	}
	if strings.Count(got, "#рубль") != 1 {
		t.Fatalf("expected duplicate custom tag skipped, got %q", got)
	}
}

func TestEnsureLeadingEmoji(t *testing.T) {
	got := ensureLeadingEmoji("#санкции #россия", "россия вводит ответные меры, рубль стабилен")
	if !strings.HasPrefix(got, "🇷🇺") {
		t.Fatalf("got %q", got)
	}

	got = ensureLeadingEmoji("🇺🇸#доллар", "доллар")
	if got != "🇺🇸#доллар" {
		t.Fatalf("expected existing emoji kept, got %q", got)
	}

	// An emoji anywhere in the line counts, not just the first rune.
	got = ensureLeadingEmoji("#россия 🇷🇺", "россия")
	if got != "#россия 🇷🇺" {
		t.Fatalf("expected line with trailing emoji untouched, got %q", got)
	}

	got = ensureLeadingEmoji("#ввп", "рост экономики")
	if !strings.HasPrefix(got, "💰") {
		t.Fatalf("expected default emoji, got %q", got)
	}
}
