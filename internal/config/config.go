package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Supported backends
const (
	IndexBackendQdrant = "qdrant"
	IndexBackendMemory = "memory"

	CheckpointBackendFile = "file"
	CheckpointBackendBolt = "bolt"
)

// ErrMissingSetting is wrapped by every ConfigurationError
var ErrMissingSetting = errors.New("missing required setting")

// ConfigurationError reports a setting that prevents a run from starting
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s is not set", e.Setting)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrMissingSetting
}

// Config holds all configuration for the application
type Config struct {
	Port     string
	Version  string
	LogLevel string

	// Embedding provider
	OpenAIKey                      string
	OpenAIBaseURL                  string // Optional OpenAI-compatible endpoint
	AzureOpenAIEndpoint            string
	AzureOpenAIKey                 string
	AzureOpenAIEmbeddingDeployment string
	EmbeddingModel                 string
	EmbeddingDimension             int
	OpenAITimeout                  int // OpenAI API timeout in seconds

	// Vector index
	IndexBackend      string
	IndexName         string
	IndexMetric       string
	QdrantHost        string
	QdrantPort        int
	QdrantAPIKey      string
	QdrantUseTLS      bool
	IndexReadyTimeout time.Duration

	// Catalog scraping
	ShopURL        string
	ScrapeInterval time.Duration

	// Ingestion
	MasterCSV         string
	CheckpointFile    string
	CheckpointBackend string
	BatchSize         int
	UpsertBatchSize   int
	EmbedMaxAttempts  int
	EmbedBaseDelay    time.Duration
	BatchDelay        time.Duration

	// Search
	SearchTopK    int
	QueryCacheTTL time.Duration
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	checkpointBackend := strings.ToLower(getEnv("CHECKPOINT_BACKEND", CheckpointBackendFile))

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Version:  getEnv("VERSION", "1.0.0"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenAIKey:                      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:                  os.Getenv("OPENAI_BASE_URL"),
		AzureOpenAIEndpoint:            os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIKey:                 os.Getenv("AZURE_OPENAI_KEY"),
		AzureOpenAIEmbeddingDeployment: getEnv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "text-embedding-3-small"),
		EmbeddingModel:                 getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimension:             getEnvInt("EMBEDDING_DIMENSION", 1536),
		OpenAITimeout:                  getEnvInt("OPENAI_TIMEOUT", 60),

		IndexBackend:      strings.ToLower(getEnv("INDEX_BACKEND", IndexBackendQdrant)),
		IndexName:         getEnv("INDEX_NAME", "rare-beauty-products"),
		IndexMetric:       strings.ToLower(getEnv("INDEX_METRIC", "cosine")),
		QdrantHost:        getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:        getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		QdrantUseTLS:      getEnvBool("QDRANT_USE_TLS", false),
		IndexReadyTimeout: getEnvDuration("INDEX_READY_TIMEOUT", 60*time.Second),

		ShopURL:        getEnv("SHOP_URL", "https://www.rarebeauty.com"),
		ScrapeInterval: getEnvDuration("SCRAPE_INTERVAL", 500*time.Millisecond),

		MasterCSV:         getEnv("MASTER_CSV", "data/rare_beauty_master.csv"),
		CheckpointFile:    getEnv("CHECKPOINT_FILE", defaultCheckpointFile(checkpointBackend)),
		CheckpointBackend: checkpointBackend,
		BatchSize:         getEnvInt("BATCH_SIZE", 100),
		UpsertBatchSize:   getEnvInt("UPSERT_BATCH_SIZE", 100),
		EmbedMaxAttempts:  getEnvInt("EMBED_MAX_ATTEMPTS", 3),
		EmbedBaseDelay:    getEnvDuration("EMBED_BASE_DELAY", time.Second),
		BatchDelay:        getEnvDuration("BATCH_DELAY", 500*time.Millisecond),

		SearchTopK:    getEnvInt("SEARCH_TOP_K", 30),
		QueryCacheTTL: getEnvDuration("QUERY_CACHE_TTL", 10*time.Minute),
	}
}

// defaultCheckpointFile keeps the bbolt database apart from the JSON
// checkpoint, which bbolt cannot open
func defaultCheckpointFile(backend string) string {
	if backend == CheckpointBackendBolt {
		return "data/ingestion_checkpoint.db"
	}
	return "data/ingestion_checkpoint.json"
}

// UseAzureOpenAI reports whether Azure OpenAI is fully configured
func (c *Config) UseAzureOpenAI() bool {
	return c.AzureOpenAIEndpoint != "" && c.AzureOpenAIKey != ""
}

// HasOpenAIFallback reports whether the OpenAI platform key is set
func (c *Config) HasOpenAIFallback() bool {
	return c.OpenAIKey != ""
}

// ValidateForIngest checks the settings needed before any ingestion work starts
func (c *Config) ValidateForIngest() error {
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	if c.MasterCSV == "" {
		return &ConfigurationError{Setting: "MASTER_CSV"}
	}
	if c.BatchSize <= 0 {
		return &ConfigurationError{Setting: "BATCH_SIZE", Reason: "must be positive"}
	}
	if c.UpsertBatchSize <= 0 {
		return &ConfigurationError{Setting: "UPSERT_BATCH_SIZE", Reason: "must be positive"}
	}
	if c.EmbedMaxAttempts <= 0 {
		return &ConfigurationError{Setting: "EMBED_MAX_ATTEMPTS", Reason: "must be positive"}
	}
	switch c.CheckpointBackend {
	case CheckpointBackendFile, CheckpointBackendBolt:
	default:
		return &ConfigurationError{Setting: "CHECKPOINT_BACKEND", Reason: fmt.Sprintf("unsupported backend %q", c.CheckpointBackend)}
	}
	if c.CheckpointFile == "" {
		return &ConfigurationError{Setting: "CHECKPOINT_FILE"}
	}
	return nil
}

// ValidateForSearch checks the settings needed by the recommendation API
func (c *Config) ValidateForSearch() error {
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	return c.validateIndex()
}

func (c *Config) validateEmbedding() error {
	if !c.UseAzureOpenAI() && !c.HasOpenAIFallback() {
		return &ConfigurationError{Setting: "OPENAI_API_KEY", Reason: "set OPENAI_API_KEY or AZURE_OPENAI_ENDPOINT + AZURE_OPENAI_KEY"}
	}
	if c.EmbeddingDimension <= 0 {
		return &ConfigurationError{Setting: "EMBEDDING_DIMENSION", Reason: "must be positive"}
	}
	return nil
}

func (c *Config) validateIndex() error {
	if c.IndexName == "" {
		return &ConfigurationError{Setting: "INDEX_NAME"}
	}
	switch c.IndexBackend {
	case IndexBackendQdrant:
		if c.QdrantHost == "" {
			return &ConfigurationError{Setting: "QDRANT_HOST"}
		}
	case IndexBackendMemory:
	default:
		return &ConfigurationError{Setting: "INDEX_BACKEND", Reason: fmt.Sprintf("unsupported backend %q", c.IndexBackend)}
	}
	switch c.IndexMetric {
	case "cosine", "dotproduct", "euclidean":
	default:
		return &ConfigurationError{Setting: "INDEX_METRIC", Reason: fmt.Sprintf("unsupported metric %q", c.IndexMetric)}
	}
	return nil
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as boolean with a default fallback
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("500ms", "2s") or plain seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "catalog").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
