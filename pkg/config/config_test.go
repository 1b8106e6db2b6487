package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{Provider: "hashing", Dimensions: 256},
		Cohort:    CohortConfig{SimilarMaxResults: 10},
		Search:    SearchConfig{DefaultLimit: 10, MaxLimit: 50},
		Indexing:  IndexingConfig{Workers: 4},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "zero dimensions",
			mutate:  func(c *Config) { c.Embedding.Dimensions = 0 },
			wantErr: "EMBEDDING_DIMENSIONS",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "openai" },
			wantErr: "EMBEDDING_PROVIDER",
		},
		{
			name:    "gigachat provider without key",
			mutate:  func(c *Config) { c.Embedding.Provider = "gigachat" },
			wantErr: "GIGACHAT_API_KEY",
		},
		{
			name: "gigachat provider with key",
			mutate: func(c *Config) {
				c.Embedding.Provider = "gigachat"
				c.GigaChat.APIKey = "secret"
			},
		},
		{
			name:    "max below default limit",
			mutate:  func(c *Config) { c.Search.MaxLimit = 5 },
			wantErr: "invalid search limits",
		},
		{
			name:    "no workers",
			mutate:  func(c *Config) { c.Indexing.Workers = 0 },
			wantErr: "INDEXING_WORKERS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetThreshold(t *testing.T) {
	const key = "COHORT_TEST_THRESHOLD"

	t.Run("unset means not configured", func(t *testing.T) {
		t.Setenv(key, "")
		v, err := getThreshold(key)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("valid value", func(t *testing.T) {
		t.Setenv(key, "0.75")
		v, err := getThreshold(key)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.InDelta(t, 0.75, *v, 1e-9)
	})

	t.Run("zero is a configured threshold", func(t *testing.T) {
		t.Setenv(key, "0")
		v, err := getThreshold(key)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Zero(t, *v)
	})

	for _, raw := range []string{"abc", "NaN", "-0.2", "1.5"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			t.Setenv(key, raw)
			_, err := getThreshold(key)
			assert.Error(t, err)
		})
	}
}

func TestLoad_ThresholdsFromEnvironment(t *testing.T) {
	t.Setenv("COHORT_SIMILAR_MIN_SIMILARITY", "0.6")
	t.Setenv("COHORT_MEDICATION_THRESHOLD", "")
	t.Setenv("COHORT_LAB_THRESHOLD", "0.8")
	t.Setenv("EMBEDDING_PROVIDER", "Hashing")
	t.Setenv("EMBEDDING_DIMENSIONS", "64")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Cohort.SimilarMinSimilarity)
	assert.InDelta(t, 0.6, *cfg.Cohort.SimilarMinSimilarity, 1e-9)
	assert.Nil(t, cfg.Cohort.MedicationThreshold)
	require.NotNil(t, cfg.Cohort.LabThreshold)
	assert.InDelta(t, 0.8, *cfg.Cohort.LabThreshold, 1e-9)
	assert.Equal(t, "hashing", cfg.Embedding.Provider)
	assert.Equal(t, 64, cfg.Embedding.Dimensions)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "clinic", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=clinic sslmode=disable", cfg.DSN())

	cfg.URL = "postgres://u:p@db:5432/clinic"
	assert.Equal(t, "postgres://u:p@db:5432/clinic", cfg.DSN())
}
