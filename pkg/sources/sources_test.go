package sources

import (
	"strings"
	"testing"
)

const validSourcesYAML = `
sources:
  - id: smartlab
    name: Smart-Lab
    base_url: https://smart-lab.ru
    listing_url: https://smart-lab.ru/news/
    link_pattern: '/read/\d+'
    item_class_pattern: '(?i)(news|item)'
  - id: rbc
    base_url: https://www.rbc.ru
    link_class_pattern: '(?i)item__link'
    date_from_url: true
`

func TestParseRegistry(t *testing.T) {
	reg, err := ParseRegistry([]byte(validSourcesYAML))
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(all))
	}

	cfg, ok := reg.ByID("rbc")
	if !ok {
		t.Fatalf("expected rbc source")
	}
	if cfg.Name != "rbc" {
		t.Fatalf("expected name defaulted to id, got %q", cfg.Name)
	}
	if cfg.ListingURL != "https://www.rbc.ru" {
		t.Fatalf("expected listing url defaulted to base url, got %q", cfg.ListingURL)
	}
	if !cfg.DateFromURL {
		t.Fatalf("expected date_from_url set")
	}
}

func TestParseRegistryRejectsDuplicateIDs(t *testing.T) {
	raw := strings.ReplaceAll(validSourcesYAML, "id: rbc", "id: smartlab")
	if _, err := ParseRegistry([]byte(raw)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestParseRegistryRequiresPatterns(t *testing.T) {
	raw := `
sources:
  - id: bare
    base_url: https://example.com
`
	if _, err := ParseRegistry([]byte(raw)); err == nil {
		t.Fatalf("expected missing pattern error")
	}
}

func TestParseRegistryRejectsEmptyFile(t *testing.T) {
	if _, err := ParseRegistry([]byte("sources: []")); err == nil {
		t.Fatalf("expected empty sources error")
	}
}

func TestParseRegistryRejectsBadRegex(t *testing.T) {
	raw := `
sources:
  - id: broken
    base_url: https://example.com
    link_pattern: '(['
`
	if _, err := ParseRegistry([]byte(raw)); err == nil {
		t.Fatalf("expected regex compile error")
	}
}
