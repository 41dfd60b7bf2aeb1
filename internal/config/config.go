// Package config holds the engine configuration, loaded from YAML with
// defaults applied for every omitted field.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	derrors "github.com/doclens/doclens/internal/errors"
)

// Config is the complete doclens configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	BM25    BM25Config    `yaml:"bm25"`
	Matcher MatcherConfig `yaml:"matcher"`
	Search  SearchConfig  `yaml:"search"`
	Extract ExtractConfig `yaml:"extract"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig locates the corpus and the metadata database.
type PathsConfig struct {
	// DataDir is the directory scanned for .txt documents.
	DataDir string `yaml:"data_dir"`

	// StorePath is the SQLite metadata database file.
	StorePath string `yaml:"store_path"`
}

// BM25Config holds the Okapi parameters.
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`

	// MinTokenLength is the shortest token kept by the tokenizer.
	MinTokenLength int `yaml:"min_token_length"`
}

// MatcherConfig tunes fuzzy entity matching.
type MatcherConfig struct {
	// SimilarityThreshold is the minimum sequence-similarity ratio
	// for a fuzzy match (0-1).
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// SearchConfig tunes the orchestrator.
type SearchConfig struct {
	// Candidates is how many BM25 candidates feed the metadata tiers.
	Candidates int `yaml:"candidates"`

	// MinCandidates is the adaptive strategy's lower bound before it
	// falls through to the next sub-strategy.
	MinCandidates int `yaml:"min_candidates"`

	// MaxCandidates caps adaptive result sets.
	MaxCandidates int `yaml:"max_candidates"`

	// SubstringCap bounds the per-type canonical scan in the
	// substring extraction tier.
	SubstringCap int `yaml:"substring_cap"`

	// Weights for the metadata boost score.
	PersonWeight   float64 `yaml:"person_weight"`
	LocationWeight float64 `yaml:"location_weight"`
	OrgWeight      float64 `yaml:"org_weight"`
	DateWeight     float64 `yaml:"date_weight"`
}

// ExtractConfig tunes metadata extraction.
type ExtractConfig struct {
	// NERBound caps the characters fed to the recognizer per document.
	NERBound int `yaml:"ner_bound"`

	// Workers sizes the extraction pool. 0 = half the CPUs.
	Workers int `yaml:"workers"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:   "data",
			StorePath: filepath.Join("data", "metadata.db"),
		},
		BM25: BM25Config{
			K1:             1.5,
			B:              0.75,
			MinTokenLength: 2,
		},
		Matcher: MatcherConfig{
			SimilarityThreshold: 0.85,
		},
		Search: SearchConfig{
			Candidates:     500,
			MinCandidates:  50,
			MaxCandidates:  100,
			SubstringCap:   2000,
			PersonWeight:   2.0,
			LocationWeight: 1.5,
			OrgWeight:      1.5,
			DateWeight:     1.0,
		},
		Extract: ExtractConfig{
			NERBound: 100_000,
			Workers:  0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path
// returns the defaults unchanged; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, derrors.Wrap(derrors.ErrCodeConfigNotFound, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, derrors.New(derrors.ErrCodeConfigInvalid,
			fmt.Sprintf("parse %s: %v", path, err), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the engine depends on.
func (c *Config) Validate() error {
	fail := func(msg string) error {
		return derrors.New(derrors.ErrCodeConfigInvalid, msg, nil)
	}

	if c.BM25.K1 <= 0 {
		return fail("bm25.k1 must be positive")
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return fail("bm25.b must be in [0, 1]")
	}
	if c.Matcher.SimilarityThreshold <= 0 || c.Matcher.SimilarityThreshold > 1 {
		return fail("matcher.similarity_threshold must be in (0, 1]")
	}
	if c.Search.Candidates < 1 {
		return fail("search.candidates must be at least 1")
	}
	if c.Search.MinCandidates > c.Search.MaxCandidates {
		return fail("search.min_candidates must not exceed search.max_candidates")
	}
	if c.Search.SubstringCap < 0 {
		return fail("search.substring_cap must not be negative")
	}
	return nil
}
