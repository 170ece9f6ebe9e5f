package annotate

import (
	"strings"
	"testing"
)

func TestStripLeadInRemovesBoilerplate(t *testing.T) {
	got := stripLeadIn("Вот краткая сводка: рынок вырос")
	if got != "рынок вырос" {
		t.Fatalf("got %q", got)
	}
	// Only a leading match is stripped.
	got = stripLeadIn("рынок вырос, резюме: без изменений")
	if got != "рынок вырос, резюме: без изменений" {
		t.Fatalf("got %q", got)
	}
}

func TestFixPoliticalReferences(t *testing.T) {
	got := fixPoliticalReferences("Бывший президент США Дональд Трамп заявил о пошлинах")
	if !strings.HasPrefix(got, "президент США Дональд Трамп") {
		t.Fatalf("got %q", got)
	}

	got = fixPoliticalReferences("Экс-президент США Дональд Трамп подписал указ")
	if !strings.HasPrefix(got, "президент США Дональд Трамп") {
		t.Fatalf("got %q", got)
	}

	got = fixPoliticalReferences("45-й президент США выступил")
	if got != "президент США выступил" {
		t.Fatalf("got %q", got)
	}
}

func TestFixPoliticalReferencesNormalizesWhitespace(t *testing.T) {
	got := fixPoliticalReferences("Рынок вырос .  Сильно.\n\n\n\nНовый абзац.")
	if got != "Рынок вырос. Сильно.\n\nНовый абзац." {
		t.Fatalf("got %q", got)
	}

	got = fixPoliticalReferences("Текст.\n______")
	if got != "Текст." {
		t.Fatalf("expected trailing rule removed, got %q", got)
	}
}

func TestReformatQuotes(t *testing.T) {
	got := reformatQuotes("Антон Силуанов заявил: «бюджет сбалансирован»")
	if got != "Антон Силуанов: бюджет сбалансирован" {
		t.Fatalf("got %q", got)
	}

	got = reformatQuotes("Песков отметил, «работа продолжается»")
	if got != "Песков: работа продолжается" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanSummaryEmphasizesPercents(t *testing.T) {
	got := CleanSummary("📈 #акции Акции Сбербанка выросли на +15% после публикации отчетности.")
	if !strings.Contains(got, "**+15%**") {
		t.Fatalf("got %q", got)
	}

	got = CleanSummary("📉 #акции Бумаги просели на -3.5% на фоне общей коррекции рынка.")
	if !strings.Contains(got, "**-3.5%**") {
		t.Fatalf("got %q", got)
	}
}

func TestCleanSummaryDiscardsInvalidResult(t *testing.T) {
	if got := CleanSummary("короткий текст"); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
	if got := CleanSummary(""); got != "" {
		t.Fatalf("expected empty input to stay empty")
	}
}
