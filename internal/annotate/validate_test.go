package annotate

import (
	"strings"
	"testing"
)

const validSummary = "📈 #рынок Индекс Мосбиржи вырос на фоне укрепления рубля и роста цен на нефть."

func TestValidateSummaryAcceptsWellFormed(t *testing.T) {
	if !ValidateSummary(validSummary) {
		t.Fatalf("expected valid summary to pass")
	}
}

func TestValidateSummaryRejectsTooShort(t *testing.T) {
	if ValidateSummary("📈 #рынок Рост.") {
		t.Fatalf("expected short summary rejected")
	}
}

func TestValidateSummaryRejectsDanglingEndings(t *testing.T) {
	for _, suffix := range []string{"...", "…", ",", ":", ";", "-", "?"} {
		s := strings.TrimSuffix(validSummary, ".") + suffix
		if ValidateSummary(s) {
			t.Fatalf("expected summary ending in %q rejected", suffix)
		}
	}
}

func TestValidateSummaryRejectsIncompleteMarkers(t *testing.T) {
	s := validSummary + "\n\nПродолжение следует."
	if ValidateSummary(s) {
		t.Fatalf("expected marker to fail validation")
	}
}

func TestValidateSummaryRequiresLeadingEmoji(t *testing.T) {
	if ValidateSummary("#рынок Индекс Мосбиржи вырос на фоне укрепления рубля и нефти.") {
		t.Fatalf("expected missing emoji rejected")
	}
	// Emoji outside the first ten characters does not count.
	if ValidateSummary("Индекс Мосбиржи 📈 #рынок вырос на фоне укрепления рубля и нефти.") {
		t.Fatalf("expected late emoji rejected")
	}
}

func TestValidateSummaryRequiresHashtagInFirstLine(t *testing.T) {
	if ValidateSummary("📈 Индекс Мосбиржи вырос на фоне укрепления рубля и роста нефти.") {
		t.Fatalf("expected missing hashtag rejected")
	}
}

func TestValidateSummaryMatchesCyrillicHashtags(t *testing.T) {
	if !ValidateSummary("📈 #рубль Индекс Мосбиржи вырос на фоне укрепления рубля и нефти.") {
		t.Fatalf("expected cyrillic hashtag recognized")
	}
}

func TestValidateSummaryRejectsTooManyLines(t *testing.T) {
	s := validSummary + strings.Repeat("\nстрока", 16)
	if ValidateSummary(s) {
		t.Fatalf("expected line overflow rejected")
	}
}

func TestValidateSummaryRejectsOverlongParagraph(t *testing.T) {
	s := validSummary + "\n\n" + strings.Repeat("а", 201)
	if ValidateSummary(s) {
		t.Fatalf("expected overlong paragraph rejected")
	}
}
