package publisher

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatMessageHashtagsFirst(t *testing.T) {
	got := FormatMessage("#a #b", "Текст сводки.")
	if got != "#a #b\nТекст сводки." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMessageWithoutHashtags(t *testing.T) {
	got := FormatMessage("", "Текст сводки.")
	if got != "Текст сводки." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMessageKeepsHashtagLineIntact(t *testing.T) {
	got := FormatMessage("🇷🇺#США #ФРС", "ВАЖНАЯ НОВОСТЬ. РЫНОК РЕЗКО ВЫРОС НА ФОНЕ РЕШЕНИЯ.")
	if !strings.HasPrefix(got, "🇷🇺#США #ФРС\n") {
		t.Fatalf("hashtag line must pass through untouched, got %q", got)
	}
	if !strings.Contains(got, "Важная новость. Рынок резко вырос") {
		t.Fatalf("expected summary sentence-cased, got %q", got)
	}
}

func TestFormatMessageEscapesSummaryOnly(t *testing.T) {
	got := FormatMessage("#M&A", `цена <b> выросла`)
	if got != "#M&A\nцена &lt;b&gt; выросла" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMessageEscapesHTML(t *testing.T) {
	got := FormatMessage("", `цена <b> & "рост"`)
	if got != "цена &lt;b&gt; &amp; &quot;рост&quot;" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMessageTruncatesLongText(t *testing.T) {
	got := FormatMessage("", strings.Repeat("а", 4500))
	if n := utf8.RuneCountInString(got); n != 4000 {
		t.Fatalf("expected 4000 runes, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix")
	}
}

func TestNormalizeCaseFixesShouting(t *testing.T) {
	got := normalizeCase("ВАЖНАЯ НОВОСТЬ. РЫНОК ВЫРОС!")
	if got != "Важная новость. Рынок вырос!" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeCaseKeepsMixedText(t *testing.T) {
	in := "Индекс РТС вырос. ЦБ сохранил ставку."
	if got := normalizeCase(in); got != in {
		t.Fatalf("expected mixed-case text untouched, got %q", got)
	}
}
