package sources

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package sources contains the per-site adapter configs and their loader.
// Parsing rules are data: each source declares the URL/class patterns its
// pages use, and one generic scraper interprets them.

// SourceConfig declares the parsing rules for one news site.
type SourceConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	BaseURL    string `yaml:"base_url"`
	ListingURL string `yaml:"listing_url"`

	// LinkPattern matches article hrefs on the listing page.
	LinkPattern string `yaml:"link_pattern"`
	// LinkClassPattern matches the class attribute of article anchors.
	LinkClassPattern string `yaml:"link_class_pattern"`
	// ItemClassPattern matches the class attribute of listing containers
	// that wrap an article anchor.
	ItemClassPattern string `yaml:"item_class_pattern"`
	// DateFromURL enables extracting the publication date from a
	// /YYYY/MM/DD/ segment of the article URL.
	DateFromURL bool `yaml:"date_from_url"`

	linkRe      *regexp.Regexp
	linkClassRe *regexp.Regexp
	itemClassRe *regexp.Regexp
}

type sourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// Registry materializes source definitions loaded from the config file.
type Registry struct {
	sources []SourceConfig
	idx     map[string]SourceConfig
}

// LoadRegistry loads source definitions from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	return ParseRegistry(raw)
}

// ParseRegistry decodes and validates source definitions from YAML bytes.
func ParseRegistry(raw []byte) (*Registry, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode sources file: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	reg := &Registry{
		sources: make([]SourceConfig, 0, len(f.Sources)),
		idx:     make(map[string]SourceConfig, len(f.Sources)),
	}
	for i := range f.Sources {
		cfg := sanitizeSource(f.Sources[i])
		if err := cfg.compile(); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", cfg.ID)
		}
		reg.sources = append(reg.sources, cfg)
		reg.idx[cfg.ID] = cfg
	}
	return reg, nil
}

func sanitizeSource(cfg SourceConfig) SourceConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.ListingURL = strings.TrimSpace(cfg.ListingURL)
	if cfg.ListingURL == "" {
		cfg.ListingURL = cfg.BaseURL
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	return cfg
}

// compile validates required fields and compiles the declared patterns.
func (cfg *SourceConfig) compile() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required for source %q", cfg.ID)
	}
	if cfg.LinkPattern == "" && cfg.LinkClassPattern == "" {
		return fmt.Errorf("source %q needs link_pattern or link_class_pattern", cfg.ID)
	}

	var err error
	if cfg.LinkPattern != "" {
		if cfg.linkRe, err = regexp.Compile(cfg.LinkPattern); err != nil {
			return fmt.Errorf("link_pattern for source %q: %w", cfg.ID, err)
		}
	}
	if cfg.LinkClassPattern != "" {
		if cfg.linkClassRe, err = regexp.Compile(cfg.LinkClassPattern); err != nil {
			return fmt.Errorf("link_class_pattern for source %q: %w", cfg.ID, err)
		}
	}
	if cfg.ItemClassPattern != "" {
		if cfg.itemClassRe, err = regexp.Compile(cfg.ItemClassPattern); err != nil {
			return fmt.Errorf("item_class_pattern for source %q: %w", cfg.ID, err)
		}
	}
	return nil
}

// All returns the configured sources in file order.
func (r *Registry) All() []SourceConfig {
	if r == nil {
		return nil
	}
	out := make([]SourceConfig, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source config for the given id, if loaded.
func (r *Registry) ByID(id string) (SourceConfig, bool) {
	if r == nil {
		return SourceConfig{}, false
	}
	cfg, ok := r.idx[strings.TrimSpace(id)]
	return cfg, ok
}
