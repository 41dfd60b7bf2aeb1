package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1.5, cfg.BM25.K1)
	assert.Equal(t, 0.75, cfg.BM25.B)
	assert.Equal(t, 0.85, cfg.Matcher.SimilarityThreshold)
	assert.Equal(t, 500, cfg.Search.Candidates)
	assert.Equal(t, 2.0, cfg.Search.PersonWeight)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("bm25:\n  k1: 1.2\nsearch:\n  min_candidates: 10\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.2, cfg.BM25.K1)
	assert.Equal(t, 10, cfg.Search.MinCandidates)
	// Untouched fields keep defaults.
	assert.Equal(t, 0.75, cfg.BM25.B)
	assert.Equal(t, 100, cfg.Search.MaxCandidates)
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bm25: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.BM25.K1 = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Matcher.SimilarityThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Search.MinCandidates = 200
	assert.Error(t, cfg.Validate())
}
