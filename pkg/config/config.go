package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	GigaChat  GigaChatConfig
	Embedding EmbeddingConfig
	Cache     CacheConfig
	Cohort    CohortConfig
	Search    SearchConfig
	Indexing  IndexingConfig
	Metrics   MetricsConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string
}

type DatabaseConfig struct {
	// URL, when set, takes precedence over the individual fields.
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int32
	MinConns       int32
	ConnectRetries int
}

// DSN returns the connection string for pgx.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

// Enabled reports whether an LLM is configured at all. Without one, summaries
// fall back to a fixed message and extraction uses the dictionary only.
func (c GigaChatConfig) Enabled() bool {
	return c.APIKey != ""
}

type EmbeddingConfig struct {
	// Provider is "hashing" (local, deterministic) or "gigachat".
	Provider    string
	Model       string
	Dimensions  int
	HTTPTimeout time.Duration
	// BreakerFailureRatio trips the circuit once this share of calls fail.
	BreakerFailureRatio float64
	BreakerMinRequests  uint32
	BreakerOpenTimeout  time.Duration
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// CohortConfig holds the similarity thresholds per use case. A nil threshold
// is not configured: callers must then pass it explicitly.
type CohortConfig struct {
	SimilarMinSimilarity *float64
	SimilarMaxResults    int
	MedicationThreshold  *float64
	LabThreshold         *float64
	UseANNIndex          bool
	// IndexRefresh is how often the exact index pulls embeddings written by
	// other processes. Zero disables it.
	IndexRefresh time.Duration
}

type SearchConfig struct {
	DefaultLimit  int
	MaxLimit      int
	SummaryNotes  int
	ExcerptLength int
}

type IndexingConfig struct {
	Workers        int
	DictionaryPath string
	UseLLMExtract  bool
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for containers
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	minConns, _ := strconv.Atoi(getEnv("DB_MIN_CONNS", "0"))
	connectRetries, _ := strconv.Atoi(getEnv("DB_CONNECT_RETRIES", "5"))
	dims, _ := strconv.Atoi(getEnv("EMBEDDING_DIMENSIONS", "256"))
	embedTimeout, _ := strconv.Atoi(getEnv("EMBEDDING_HTTP_TIMEOUT", "60"))
	breakerRatio, _ := strconv.ParseFloat(getEnv("EMBEDDING_BREAKER_FAILURE_RATIO", "0.6"), 64)
	breakerMin, _ := strconv.Atoi(getEnv("EMBEDDING_BREAKER_MIN_REQUESTS", "5"))
	breakerOpen, _ := strconv.Atoi(getEnv("EMBEDDING_BREAKER_OPEN_SECONDS", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, _ := strconv.Atoi(getEnv("EMBEDDING_CACHE_TTL_MINUTES", "1440"))
	searchLimit, _ := strconv.Atoi(getEnv("SEARCH_DEFAULT_LIMIT", "10"))
	searchMax, _ := strconv.Atoi(getEnv("SEARCH_MAX_LIMIT", "50"))
	summaryNotes, _ := strconv.Atoi(getEnv("SEARCH_SUMMARY_NOTES", "3"))
	excerptLen, _ := strconv.Atoi(getEnv("SEARCH_EXCERPT_LENGTH", "500"))
	workers, _ := strconv.Atoi(getEnv("INDEXING_WORKERS", "4"))
	maxResults, _ := strconv.Atoi(getEnv("COHORT_SIMILAR_MAX_RESULTS", "10"))
	indexRefresh, _ := strconv.Atoi(getEnv("COHORT_INDEX_REFRESH_SECONDS", "10"))

	similar, err := getThreshold("COHORT_SIMILAR_MIN_SIMILARITY")
	if err != nil {
		return nil, err
	}
	medication, err := getThreshold("COHORT_MEDICATION_THRESHOLD")
	if err != nil {
		return nil, err
	}
	lab, err := getThreshold("COHORT_LAB_THRESHOLD")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "pediatric_ml"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       int32(maxConns),
			MinConns:       int32(minConns),
			ConnectRetries: connectRetries,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
		},
		Embedding: EmbeddingConfig{
			Provider:            strings.ToLower(getEnv("EMBEDDING_PROVIDER", "hashing")),
			Model:               getEnv("EMBEDDING_MODEL", "Embeddings"),
			Dimensions:          dims,
			HTTPTimeout:         time.Duration(embedTimeout) * time.Second,
			BreakerFailureRatio: breakerRatio,
			BreakerMinRequests:  uint32(breakerMin),
			BreakerOpenTimeout:  time.Duration(breakerOpen) * time.Second,
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			TTL:           time.Duration(cacheTTL) * time.Minute,
		},
		Cohort: CohortConfig{
			SimilarMinSimilarity: similar,
			SimilarMaxResults:    maxResults,
			MedicationThreshold:  medication,
			LabThreshold:         lab,
			UseANNIndex:          getEnv("COHORT_USE_ANN_INDEX", "false") == "true",
			IndexRefresh:         time.Duration(indexRefresh) * time.Second,
		},
		Search: SearchConfig{
			DefaultLimit:  searchLimit,
			MaxLimit:      searchMax,
			SummaryNotes:  summaryNotes,
			ExcerptLength: excerptLen,
		},
		Indexing: IndexingConfig{
			Workers:        workers,
			DictionaryPath: getEnv("EXTRACTION_DICTIONARY_PATH", ""),
			UseLLMExtract:  getEnv("EXTRACTION_USE_LLM", "false") == "true",
		},
		Metrics: MetricsConfig{
			Enabled: getEnv("METRICS_ENABLED", "false") == "true",
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would make the service misbehave rather than fail fast.
func (c *Config) Validate() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.Embedding.Dimensions)
	}
	switch c.Embedding.Provider {
	case "hashing", "gigachat":
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be \"hashing\" or \"gigachat\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "gigachat" && !c.GigaChat.Enabled() {
		return fmt.Errorf("EMBEDDING_PROVIDER=gigachat requires GIGACHAT_API_KEY")
	}
	if c.Cohort.SimilarMaxResults <= 0 {
		return fmt.Errorf("COHORT_SIMILAR_MAX_RESULTS must be positive, got %d", c.Cohort.SimilarMaxResults)
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("invalid search limits: default=%d max=%d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Indexing.Workers <= 0 {
		return fmt.Errorf("INDEXING_WORKERS must be positive, got %d", c.Indexing.Workers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getThreshold returns nil for an unset threshold; set values must lie in [0,1].
func getThreshold(key string) (*float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s is not a number: %w", key, err)
	}
	if v < 0 || v > 1 || math.IsNaN(v) {
		return nil, fmt.Errorf("%s must be in [0,1], got %v", key, v)
	}
	return &v, nil
}
