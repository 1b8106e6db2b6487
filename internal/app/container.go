// Package app wires repositories, embedders and services into one container
// shared by the server and the command line tools.
package app

import (
	"context"
	"fmt"
	"time"

	"clinical-intel/internal/cohort"
	"clinical-intel/internal/embedding"
	"clinical-intel/internal/extraction"
	"clinical-intel/internal/lock"
	"clinical-intel/internal/repository"
	"clinical-intel/internal/service"
	"clinical-intel/internal/vectorindex"
	"clinical-intel/pkg/config"
	"clinical-intel/pkg/postgres"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	memoryCacheEntries = 10000
	reindexLockTTL     = 30 * time.Minute
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	LLM    *service.LLMService

	Embedder  embedding.Embedder
	Extractor extraction.TermExtractor
	Index     vectorindex.Index

	PatientRepo    *repository.PatientRepository
	NoteRepo       *repository.NoteRepository
	LabRepo        *repository.LabRepository
	MedicationRepo *repository.MedicationRepository
	TermRepo       *repository.TermRepository
	EmbeddingRepo  *repository.EmbeddingRepository

	PatientService    *service.PatientService
	CohortService     *service.CohortService
	SearchService     *service.SearchService
	ExtractionService *service.ExtractionService
	IndexingService   *service.IndexingService
	AnalyticsService  *service.AnalyticsService

	logger *zap.Logger
}

// New connects to Postgres, applies migrations and builds every service.
// Redis and GigaChat are optional.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, logger: logger}

	db, err := postgres.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	c.DB = db
	if err := postgres.Migrate(ctx, db, cfg.Embedding.Dimensions, logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if cfg.GigaChat.Enabled() {
		llm, err := service.NewLLMService(&cfg.GigaChat, logger)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
		}
		c.LLM = llm
	} else {
		logger.Info("GigaChat is not configured, summaries and LLM extraction are disabled")
	}

	if cfg.Cache.RedisAddr != "" {
		client, err := embedding.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			c.logger.Warn("Redis unavailable, falling back to in-process cache and locks", zap.Error(err))
		} else {
			c.Redis = client
		}
	}

	if err := c.initEmbedder(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initExtractor(); err != nil {
		c.Close()
		return nil, err
	}

	c.PatientRepo = repository.NewPatientRepository(db, logger)
	c.NoteRepo = repository.NewNoteRepository(db, logger)
	c.LabRepo = repository.NewLabRepository(db, logger)
	c.MedicationRepo = repository.NewMedicationRepository(db, logger)
	c.TermRepo = repository.NewTermRepository(db, logger)
	c.EmbeddingRepo = repository.NewEmbeddingRepository(db, logger)
	analyticsRepo := repository.NewAnalyticsRepository(db, logger)

	// The in-memory index is exact, mirrored on every local reindex and
	// refreshed from Postgres for reindexes run elsewhere. The pgvector index
	// trades exactness for not holding vectors in memory.
	var mirror vectorindex.Index
	if cfg.Cohort.UseANNIndex {
		c.Index = c.EmbeddingRepo
	} else {
		synced := vectorindex.NewSynced(c.EmbeddingRepo, cfg.Cohort.IndexRefresh, logger.With(zap.String("component", "vectorindex")))
		c.Index = synced
		mirror = synced
	}

	var completer extraction.Completer
	if c.LLM != nil {
		completer = c.LLM
	}

	store := repository.NewCohortStore(c.PatientRepo, c.TermRepo, c.MedicationRepo, c.LabRepo)
	engine := cohort.NewEngine(c.Index, store, logger.With(zap.String("component", "cohort")))

	c.PatientService = service.NewPatientService(c.PatientRepo, logger)
	c.CohortService = service.NewCohortService(engine, c.PatientService, &cfg.Cohort, logger)
	c.SearchService = service.NewSearchService(c.NoteRepo, c.Embedder, completer, &cfg.Search, logger)
	c.ExtractionService = service.NewExtractionService(c.Extractor, c.NoteRepo, c.TermRepo, logger)
	c.IndexingService = service.NewIndexingService(c.PatientRepo, c.NoteRepo, c.EmbeddingRepo, c.Embedder, c.ExtractionService, mirror, cfg.Indexing.Workers, logger)
	c.AnalyticsService = service.NewAnalyticsService(analyticsRepo, logger)
	if c.Redis != nil {
		c.IndexingService.UseLocker(lock.NewRedis(c.Redis, reindexLockTTL))
	}

	if _, err := c.IndexingService.Warm(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initEmbedder() error {
	cfg := c.Config

	// Hashing embeddings are cheaper to recompute than to fetch.
	var cache embedding.Cache
	if cfg.Embedding.Provider == "gigachat" {
		if c.Redis != nil {
			cache = embedding.NewRedisCache(c.Redis, cfg.Cache.TTL)
		} else {
			cache = embedding.NewMemoryCache(memoryCacheEntries)
		}
	}

	var tokens embedding.TokenSource
	if c.LLM != nil {
		tokens = c.LLM
	}

	embedder, err := embedding.NewFromConfig(cfg.Embedding, cfg.GigaChat, tokens, cache, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder
	c.logger.Info("Embedder ready",
		zap.String("name", embedder.Name()),
		zap.Int("dimensions", embedder.Dimensions()),
	)
	return nil
}

func (c *Container) initExtractor() error {
	dict, err := extraction.LoadDictionary(c.Config.Indexing.DictionaryPath)
	if err != nil {
		return fmt.Errorf("failed to load term dictionary: %w", err)
	}
	dictionary := extraction.NewDictionaryExtractor(dict)

	if c.Config.Indexing.UseLLMExtract && c.LLM != nil {
		c.Extractor = extraction.NewMerge(dictionary, extraction.NewLLMExtractor(c.LLM))
	} else {
		c.Extractor = dictionary
	}
	return nil
}

// Close releases every connection the container opened.
func (c *Container) Close() {
	if c.LLM != nil {
		if err := c.LLM.Close(); err != nil {
			c.logger.Warn("Failed to close LLM client", zap.Error(err))
		}
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
