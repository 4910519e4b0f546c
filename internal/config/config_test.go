package config

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.EmbeddingDimension)
	assert.Equal(t, IndexBackendQdrant, cfg.IndexBackend)
	assert.Equal(t, "rare-beauty-products", cfg.IndexName)
	assert.Equal(t, "cosine", cfg.IndexMetric)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.Equal(t, "data/rare_beauty_master.csv", cfg.MasterCSV)
	assert.Equal(t, "data/ingestion_checkpoint.json", cfg.CheckpointFile)
	assert.Equal(t, CheckpointBackendFile, cfg.CheckpointBackend)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 100, cfg.UpsertBatchSize)
	assert.Equal(t, 3, cfg.EmbedMaxAttempts)
	assert.Equal(t, time.Second, cfg.EmbedBaseDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, 30, cfg.SearchTopK)
	assert.Equal(t, "https://www.rarebeauty.com", cfg.ShopURL)
	assert.Equal(t, 500*time.Millisecond, cfg.ScrapeInterval)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "test-key-123")
	t.Setenv("INDEX_BACKEND", "MEMORY")
	t.Setenv("INDEX_NAME", "shades")
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("EMBED_BASE_DELAY", "250ms")
	t.Setenv("BATCH_DELAY", "2")
	t.Setenv("QDRANT_USE_TLS", "true")
	t.Setenv("CHECKPOINT_BACKEND", "bolt")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "test-key-123", cfg.OpenAIKey)
	assert.Equal(t, IndexBackendMemory, cfg.IndexBackend)
	assert.Equal(t, "shades", cfg.IndexName)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.EmbedBaseDelay)
	assert.Equal(t, 2*time.Second, cfg.BatchDelay)
	assert.True(t, cfg.QdrantUseTLS)
	assert.Equal(t, CheckpointBackendBolt, cfg.CheckpointBackend)
	assert.Equal(t, "data/ingestion_checkpoint.db", cfg.CheckpointFile)
}

func TestLoad_CheckpointFileDefaults(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		file     string
		expected string
	}{
		{name: "file backend", backend: "", expected: "data/ingestion_checkpoint.json"},
		{name: "bolt backend", backend: "bolt", expected: "data/ingestion_checkpoint.db"},
		{name: "bolt backend uppercase", backend: "BOLT", expected: "data/ingestion_checkpoint.db"},
		{name: "explicit path wins", backend: "bolt", file: "state/run.bolt", expected: "state/run.bolt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CHECKPOINT_BACKEND", tt.backend)
			t.Setenv("CHECKPOINT_FILE", tt.file)

			cfg := Load()
			assert.Equal(t, tt.expected, cfg.CheckpointFile)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue int
		expected     int
	}{
		{name: "valid integer", value: "42", defaultValue: 10, expected: 42},
		{name: "invalid integer uses default", value: "abc", defaultValue: 10, expected: 10},
		{name: "empty uses default", value: "", defaultValue: 7, expected: 7},
		{name: "negative integer", value: "-3", defaultValue: 10, expected: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_KEY", tt.value)
			assert.Equal(t, tt.expected, getEnvInt("TEST_INT_KEY", tt.defaultValue))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		expected     bool
	}{
		{name: "true", value: "true", defaultValue: false, expected: true},
		{name: "numeric false", value: "0", defaultValue: true, expected: false},
		{name: "invalid uses default", value: "maybe", defaultValue: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_KEY", tt.value)
			assert.Equal(t, tt.expected, getEnvBool("TEST_BOOL_KEY", tt.defaultValue))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "go duration", value: "1m30s", expected: 90 * time.Second},
		{name: "fractional seconds", value: "0.5", expected: 500 * time.Millisecond},
		{name: "garbage uses default", value: "soon", expected: time.Second},
		{name: "empty uses default", value: "", expected: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION_KEY", tt.value)
			assert.Equal(t, tt.expected, getEnvDuration("TEST_DURATION_KEY", time.Second))
		})
	}
}

func TestValidateForIngest(t *testing.T) {
	valid := func() *Config {
		return &Config{
			OpenAIKey:          "sk-test",
			EmbeddingDimension: 1536,
			IndexBackend:       IndexBackendMemory,
			IndexName:          "products",
			IndexMetric:        "cosine",
			MasterCSV:          "data/master.csv",
			CheckpointFile:     "data/checkpoint.json",
			CheckpointBackend:  CheckpointBackendFile,
			BatchSize:          100,
			UpsertBatchSize:    100,
			EmbedMaxAttempts:   3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		setting string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no credentials", mutate: func(c *Config) { c.OpenAIKey = "" }, setting: "OPENAI_API_KEY"},
		{name: "azure only", mutate: func(c *Config) {
			c.OpenAIKey = ""
			c.AzureOpenAIEndpoint = "https://example.openai.azure.com"
			c.AzureOpenAIKey = "azure-key"
		}},
		{name: "no index name", mutate: func(c *Config) { c.IndexName = "" }, setting: "INDEX_NAME"},
		{name: "unknown backend", mutate: func(c *Config) { c.IndexBackend = "pinecone" }, setting: "INDEX_BACKEND"},
		{name: "unknown metric", mutate: func(c *Config) { c.IndexMetric = "manhattan" }, setting: "INDEX_METRIC"},
		{name: "zero batch size", mutate: func(c *Config) { c.BatchSize = 0 }, setting: "BATCH_SIZE"},
		{name: "zero attempts", mutate: func(c *Config) { c.EmbedMaxAttempts = 0 }, setting: "EMBED_MAX_ATTEMPTS"},
		{name: "unknown checkpoint backend", mutate: func(c *Config) { c.CheckpointBackend = "redis" }, setting: "CHECKPOINT_BACKEND"},
		{name: "qdrant without host", mutate: func(c *Config) {
			c.IndexBackend = IndexBackendQdrant
			c.QdrantHost = ""
		}, setting: "QDRANT_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.ValidateForIngest()
			if tt.setting == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingSetting))
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.setting, cfgErr.Setting)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{level: "debug", expected: zerolog.DebugLevel},
		{level: "WARN", expected: zerolog.WarnLevel},
		{level: "bogus", expected: zerolog.InfoLevel},
		{level: "", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level, Version: "test"}
			logger := cfg.SetupLogger()
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}
}

func clearEnv(t *testing.T) {
	vars := []string{
		"PORT", "VERSION", "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_KEY", "EMBEDDING_MODEL", "EMBEDDING_DIMENSION",
		"INDEX_BACKEND", "INDEX_NAME", "INDEX_METRIC", "QDRANT_HOST", "QDRANT_PORT",
		"QDRANT_USE_TLS", "MASTER_CSV", "CHECKPOINT_FILE", "CHECKPOINT_BACKEND",
		"BATCH_SIZE", "UPSERT_BATCH_SIZE", "EMBED_MAX_ATTEMPTS", "EMBED_BASE_DELAY",
		"BATCH_DELAY", "SEARCH_TOP_K", "QUERY_CACHE_TTL", "SHOP_URL", "SCRAPE_INTERVAL",
	}

	for _, v := range vars {
		t.Setenv(v, "")
	}
}
