package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"mindmap-backend/internal/llm"
	"mindmap-backend/internal/llm/gemini"
	"mindmap-backend/internal/llm/openai"
	"mindmap-backend/internal/mindmap"
	"mindmap-backend/internal/services/health"
	"mindmap-backend/internal/shared/config"
	"mindmap-backend/internal/shared/server"
	"mindmap-backend/internal/shared/server/flash"
	"mindmap-backend/internal/shared/storage/object"
	localstore "mindmap-backend/internal/shared/storage/object/local"
	"mindmap-backend/internal/shared/telemetry"
	"mindmap-backend/internal/web"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Store          object.Store
	LLM            llm.Completer
	MindmapService *mindmap.Service
	MindmapHandler *mindmap.Handler
}

// Option customizes Build.
type Option func(*options)

type options struct {
	llm llm.Completer
}

// WithLLM replaces the provider client built from config.
func WithLLM(c llm.Completer) Option {
	return func(o *options) { o.llm = c }
}

// Build prepares dependencies and the router. Config must already be valid
// unless an LLM is supplied via WithLLM.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	store, err := localstore.New(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	completer := o.llm
	if completer == nil {
		completer, err = BuildLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	svc := mindmap.NewService(store, completer, cfg.StrictSchema)
	handler := mindmap.NewHandler(svc, flash.New(cfg.SecretKey, cfg.Env == "production"))

	app := &App{
		Config:         cfg,
		Store:          store,
		LLM:            completer,
		MindmapService: svc,
		MindmapHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Templates:      tmpl,
		Health:         health.NewService(store.BaseDir(), cfg.LLMProvider, cfg.LLMModel),
		MindmapHandler: handler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"provider":      cfg.LLMProvider,
		"model":         cfg.LLMModel,
		"upload_dir":    store.BaseDir(),
		"strict_schema": cfg.StrictSchema,
	})
	return app, nil
}

// BuildLLM constructs the completion client for the configured provider.
func BuildLLM(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini, "":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
