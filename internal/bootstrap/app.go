package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/audio"
	"docchat-backend/internal/chat"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/llm"
	openai "docchat-backend/internal/llm/openai"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/server"
	"docchat-backend/internal/shared/storage/object"
	localstore "docchat-backend/internal/shared/storage/object/local"
	s3store "docchat-backend/internal/shared/storage/object/s3"
	"docchat-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	Uploads          *localstore.Store
	Archive          object.ObjectStore
	Provider         llm.Provider
	DocumentsRepo    *documents.MemoryRepo
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
	AudioStore       *audio.Store
	ChatService      *chat.Service
	ChatHandler      *chat.Handler
}

// Build prepares dependencies from cfg and wires the router.
func Build(cfg config.Config) (*App, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	return BuildWithProvider(cfg, provider)
}

// BuildWithProvider is Build with an explicit AI provider.
func BuildWithProvider(cfg config.Config, provider llm.Provider) (*App, error) {
	if provider == nil {
		return nil, fmt.Errorf("bootstrap: provider is required")
	}
	ctx := context.Background()

	uploads := localstore.New(cfg.UploadDir)
	if err := uploads.EnsureDir(); err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	audioStore := audio.NewStore(cfg.AudioDir, cfg.PublicBaseURL)
	if err := audioStore.EnsureDir(); err != nil {
		return nil, fmt.Errorf("audio dir: %w", err)
	}
	if cfg.TempDir != "" {
		if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
			return nil, fmt.Errorf("temp dir: %w", err)
		}
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repo := documents.NewMemoryRepo(documents.Policy{
		MaxEntries: cfg.DocumentStoreMaxEntries,
		TTL:        cfg.DocumentTTL,
	})
	docSvc := &documents.Service{
		Uploads:         uploads,
		Archive:         archive,
		Repo:            repo,
		ContextMaxChars: cfg.ContextMaxChars,
		Now:             time.Now,
	}
	chatSvc := &chat.Service{
		Context:  docSvc,
		Provider: provider,
		Audio:    audioStore,
		TempDir:  cfg.TempDir,
	}

	app := &App{
		Config:           cfg,
		Uploads:          uploads,
		Archive:          archive,
		Provider:         provider,
		DocumentsRepo:    repo,
		DocumentsService: docSvc,
		DocumentsHandler: documents.NewHandler(docSvc, cfg.MaxUploadBytes),
		AudioStore:       audioStore,
		ChatService:      chatSvc,
		ChatHandler:      chat.NewHandler(chatSvc, cfg.MaxUploadBytes),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Documents: app.DocumentsHandler,
		Chat:      app.ChatHandler,
		Audio:     app.AudioStore,
	})

	return app, nil
}

func buildProvider(cfg config.Config) (llm.Provider, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.provider_placeholder", map[string]any{
				"env":    cfg.Env,
				"reason": "OPENAI_API_KEY empty",
			})
			return llm.PlaceholderProvider{}, nil
		}
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return openai.NewClient(openai.Config{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Timeout:   time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
		ChatModel: cfg.ChatModel,
		TTSModel:  cfg.TTSModel,
		TTSVoice:  cfg.TTSVoice,
		STTModel:  cfg.STTModel,
	})
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ArchiveStore {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("archive store: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}
