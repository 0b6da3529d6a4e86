package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_ShippedConfig(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("ELASTICSEARCH_URL", "")
	t.Setenv("REDIS_ADDRESS", "")

	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "matching-workers", cfg.App.Name)
	assert.False(t, cfg.Database.Postgres.Enabled())
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
	assert.False(t, cfg.Database.Redis.Enabled())
	assert.Equal(t, 0.4, cfg.Matching.MinimumScore)
	assert.Equal(t, 10000, cfg.Workers["find-best-matches"].Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "calculate-match-score"))
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "cache:6379")
	path := writeConfig(t, `
database:
  redis:
    address: ${TEST_REDIS_ADDR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  version: 2.0.0\n"))
	require.NoError(t, err)

	assert.Equal(t, "matching-workers", cfg.App.Name)
	assert.Equal(t, 0.4, cfg.Matching.MinimumScore)
	assert.Equal(t, 20, cfg.Matching.MaxResults)
	assert.Equal(t, "workers", cfg.Matching.CandidateIndex)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "matching-workers", cfg.Tracing.ServiceName)

	w := GetWorkerConfig(cfg, "unknown")
	assert.Equal(t, 30*time.Second, GetDuration(w.Timeout))
}

func TestLoadFromFile_MinimumScore(t *testing.T) {
	t.Run("partial matching section keeps the default", func(t *testing.T) {
		cfg, err := LoadFromFile(writeConfig(t, "matching:\n  max_results: 5\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultMinimumScore, cfg.Matching.MinimumScore)
		assert.Equal(t, 5, cfg.Matching.MaxResults)
	})

	t.Run("explicit zero is kept", func(t *testing.T) {
		cfg, err := LoadFromFile(writeConfig(t, "matching:\n  minimum_score: 0\n"))
		require.NoError(t, err)
		assert.Equal(t, 0.0, cfg.Matching.MinimumScore)
	})
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"minimum score above one", "matching:\n  minimum_score: 1.5\n"},
		{"negative concurrency", "matching:\n  concurrency: -1\n"},
		{"camunda without broker", "camunda:\n  enabled: true\n"},
		{"tracing without endpoint", "tracing:\n  enabled: true\n"},
		{"postgres without user", "database:\n  postgres:\n    host: db\n    database: matching\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_USER", "")
			_, err := LoadFromFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
