// Package bootstrap wires configuration into a runnable application: repos
// fall back to memory when no database is configured, the model client falls
// back to a placeholder when no provider is configured.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/analytics"
	"resume-tailor/internal/extension"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/generated"
	"resume-tailor/internal/health"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/llm"
	openai "resume-tailor/internal/llm/openai"
	"resume-tailor/internal/modify"
	"resume-tailor/internal/pipeline"
	"resume-tailor/internal/prefs"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/render"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/retention"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/server"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
	s3store "resume-tailor/internal/shared/storage/object/s3"
	"resume-tailor/internal/uploads"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	Quota        *quota.Service
	Resumes      *resumes.Service
	Extract      *extract.Service
	Jobs         *jobs.Service
	Modify       *modify.Service
	Render       *render.Service
	Generated    *generated.Service
	Uploads      *uploads.Service
	Prefs        *prefs.Service
	Analytics    *analytics.Service
	Orchestrator *pipeline.Orchestrator
	Retention    *retention.Manager
}

// Build prepares dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Store: store}

	var resumeRepo resumes.Repo
	var generatedRepo generated.Repo
	var uploadRepo uploads.Repo
	var runRepo pipeline.Repo
	var prefsRepo prefs.Repo
	var feedbackRepo analytics.Repo
	if sqlDB != nil {
		resumeRepo = &resumes.PGRepo{DB: sqlDB}
		generatedRepo = &generated.PGRepo{DB: sqlDB}
		uploadRepo = &uploads.PGRepo{DB: sqlDB}
		runRepo = &pipeline.PGRepo{DB: sqlDB}
		prefsRepo = &prefs.PGRepo{DB: sqlDB}
		feedbackRepo = &analytics.PGRepo{DB: sqlDB}
		app.Quota = quota.NewPostgresService(quota.NewPGStore(sqlDB))
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		generatedRepo = generated.NewMemoryRepo()
		uploadRepo = uploads.NewMemoryRepo()
		runRepo = pipeline.NewMemoryRepo()
		prefsRepo = prefs.NewMemoryRepo()
		feedbackRepo = analytics.NewMemoryRepo()
		app.Quota = quota.NewService()
	}

	app.Resumes = resumes.NewService(resumeRepo)
	app.Extract = extract.NewService(llmClient)
	app.Jobs = jobs.NewService(llmClient)
	app.Modify = modify.NewService(llmClient)
	app.Render = render.NewService(render.NewChromeEngine(), render.NewDocxTemplateRenderer(cfg.RenderTemplateDir))
	app.Generated = generated.NewService(generatedRepo, store)
	app.Uploads = uploads.NewService(uploadRepo, store)
	if cfg.TempUploadTTL > 0 {
		app.Uploads.TTL = cfg.TempUploadTTL
	}
	app.Prefs = prefs.NewService(prefsRepo)
	app.Analytics = analytics.NewService(feedbackRepo, runRepo, app.Generated)

	app.Orchestrator = pipeline.NewOrchestrator(
		app.Quota, app.Resumes, app.Jobs, app.Modify,
		app.Render, app.Generated, runRepo)
	app.Orchestrator.Timeouts = pipeline.Timeouts{
		Analyze: cfg.AnalyzeTimeout,
		Modify:  cfg.ModifyTimeout,
		Render:  cfg.RenderTimeout,
	}
	if cfg.PipelineMaxRetries >= 0 {
		app.Orchestrator.MaxRetries = cfg.PipelineMaxRetries
	}

	app.Retention = retention.NewManager(
		retention.Target{Name: "generated_resumes", Sweeper: app.Generated},
		retention.Target{Name: "temp_uploads", Sweeper: app.Uploads},
	)
	if cfg.RetentionInterval > 0 {
		app.Retention.Interval = cfg.RetentionInterval
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Health: &health.Service{
			ModelProbe:   modelProbe(cfg),
			StorageProbe: storageProbe(store),
		},
		Handlers: []server.RouteRegistrar{
			resumes.NewHandler(app.Resumes, app.Extract),
			jobs.NewHandler(app.Jobs),
			pipeline.NewHandler(app.Orchestrator),
			generated.NewHandler(app.Generated),
			extension.NewHandler(app.Orchestrator, app.Resumes, app.Quota),
			uploads.NewHandler(app.Uploads),
			prefs.NewHandler(app.Prefs),
			analytics.NewHandler(app.Analytics),
		},
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
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

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider == "openai" && strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
	}
	if !isDevLike(cfg.Env) && cfg.LLMProvider == "openai" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	log.Printf("bootstrap: no model provider configured; using placeholder client")
	return llm.PlaceholderClient{}, nil
}

// modelProbe reports whether a real model provider is wired.
func modelProbe(cfg config.Config) health.Probe {
	configured := cfg.LLMProvider == "openai" && strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != ""
	return func(ctx context.Context) error {
		if !configured {
			return fmt.Errorf("model provider not configured")
		}
		return nil
	}
}

// storageProbe round-trips a tiny object through the store.
func storageProbe(store object.ObjectStore) health.Probe {
	return func(ctx context.Context) error {
		key, _, _, err := store.Save(ctx, "healthz", "probe.txt", strings.NewReader("ok"))
		if err != nil {
			return err
		}
		reader, err := store.Open(ctx, key)
		if err != nil && !isNotExist(err) {
			return err
		}
		if reader != nil {
			_, _ = io.Copy(io.Discard, reader)
			reader.Close()
		}
		return store.Delete(ctx, key)
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
