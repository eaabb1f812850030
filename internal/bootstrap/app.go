package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-validator/internal/analysis"
	"contract-validator/internal/contracts"
	"contract-validator/internal/docx"
	"contract-validator/internal/legalcontext"
	"contract-validator/internal/llm"
	"contract-validator/internal/llm/anthropic"
	"contract-validator/internal/llm/gemini"
	"contract-validator/internal/llm/openai"
	"contract-validator/internal/reviews"
	"contract-validator/internal/services/health"
	"contract-validator/internal/shared/config"
	"contract-validator/internal/shared/server"
	"contract-validator/internal/shared/storage/db"
	"contract-validator/internal/shared/storage/object"
	localstore "contract-validator/internal/shared/storage/object/local"
	s3store "contract-validator/internal/shared/storage/object/s3"
	"contract-validator/internal/submissions"
)

const validatorMaxTokens = 10

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Store             object.ObjectStore
	ContextClient     llm.ChatClient
	AnalysisClient    llm.ChatClient
	ReviewService     *reviews.Service
	SubmissionService *submissions.Service
	ReviewHandler     *reviews.Handler
	SubmissionHandler *submissions.Handler

	closers []func() error
}

// Build constructs every client, service and handler once and mounts them
// on the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app, err := BuildPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ArchiveEnabled {
		if err := buildArchive(ctx, app); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	app.ReviewHandler = reviews.NewHandler(app.ReviewService, app.SubmissionService)
	if app.SubmissionService != nil {
		app.SubmissionHandler = submissions.NewHandler(app.SubmissionService)
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		ReviewHandler:     app.ReviewHandler,
		SubmissionHandler: app.SubmissionHandler,
		Health:            health.NewService(app.pinger()),
	})
	return app, nil
}

// BuildPipeline constructs the AI clients and the review service without
// storage or HTTP wiring.
func BuildPipeline(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := cfg.Validate(); err != nil {
		if !isDevLike(cfg.Env) {
			return nil, err
		}
		log.Printf("bootstrap: %v; unconfigured AI clients will fail at call time", err)
	}

	app := &App{Config: cfg}

	contextClient, err := buildContextClient(cfg)
	if err != nil {
		return nil, err
	}
	analysisClient, model, closer, err := buildAnalysisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	app.ContextClient = contextClient
	app.AnalysisClient = analysisClient

	var validator contracts.Validator
	if cfg.ValidateContracts {
		validator = contracts.FallbackValidator{
			Primary:  contracts.AIValidator{Client: analysisClient, Model: model, MaxTokens: validatorMaxTokens},
			Fallback: contracts.HeuristicValidator{},
		}
	}

	app.ReviewService = &reviews.Service{
		Reader:    docx.NewReader(cfg.MaxFileSize, cfg.AllowedFileTypes),
		Validator: validator,
		Context: &legalcontext.Service{
			Client:      contextClient,
			Model:       cfg.PerplexityModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
		Analyzer: &analysis.Service{
			Client:      analysisClient,
			Model:       model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
	}
	return app, nil
}

// Close releases clients and the database pool.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) pinger() health.Pinger {
	if a.DB == nil {
		return nil
	}
	return a.DB
}

func buildContextClient(cfg config.Config) (llm.ChatClient, error) {
	if strings.TrimSpace(cfg.PerplexityAPIKey) == "" {
		return llm.PlaceholderClient{}, nil
	}
	return openai.NewClient(openai.Options{
		APIKey:  cfg.PerplexityAPIKey,
		BaseURL: cfg.PerplexityBaseURL,
		Name:    "perplexity",
		Timeout: cfg.AnalysisTimeout,
	})
}

func buildAnalysisClient(ctx context.Context, cfg config.Config) (llm.ChatClient, string, func() error, error) {
	switch cfg.AnalysisProvider {
	case config.ProviderGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return llm.PlaceholderClient{}, cfg.GeminiModel, nil, nil
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.AnalysisTimeout)
		if err != nil {
			return nil, "", nil, err
		}
		return client, cfg.GeminiModel, client.Close, nil
	case config.ProviderOpenAI:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return llm.PlaceholderClient{}, cfg.OpenAIModel, nil, nil
		}
		client, err := openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Name:    "openai",
			Timeout: cfg.AnalysisTimeout,
		})
		return client, cfg.OpenAIModel, nil, err
	default:
		if strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
			return llm.PlaceholderClient{}, cfg.ClaudeModel, nil, nil
		}
		client, err := anthropic.NewClient(anthropic.Options{
			APIKey:  cfg.AnthropicAPIKey,
			Timeout: cfg.AnalysisTimeout,
		})
		return client, cfg.ClaudeModel, nil, err
	}
}

func buildArchive(ctx context.Context, app *App) error {
	sqlDB, err := buildDB(ctx, app.Config)
	if err != nil {
		return err
	}
	app.DB = sqlDB

	store, err := buildStore(ctx, app.Config)
	if err != nil {
		return err
	}
	app.Store = store

	var repo submissions.Repo
	if sqlDB != nil {
		repo = &submissions.PGRepo{DB: sqlDB}
	} else {
		repo = submissions.NewMemoryRepo()
	}
	app.SubmissionService = submissions.NewService(repo, store)
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("bootstrap: DATABASE_URL empty; using in-memory submissions repo")
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; using in-memory submissions repo: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
