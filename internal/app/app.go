package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/asefahmed500/Cally-IO-sub000/features/chat"
	"github.com/asefahmed500/Cally-IO-sub000/features/document"
	"github.com/asefahmed500/Cally-IO-sub000/features/job"
	"github.com/asefahmed500/Cally-IO-sub000/features/lead"
	"github.com/asefahmed500/Cally-IO-sub000/features/stats"
	"github.com/asefahmed500/Cally-IO-sub000/internal/adapter/gemini"
	"github.com/asefahmed500/Cally-IO-sub000/internal/config"
	"github.com/asefahmed500/Cally-IO-sub000/internal/middleware"
	"github.com/asefahmed500/Cally-IO-sub000/internal/retrieval"
	"github.com/asefahmed500/Cally-IO-sub000/internal/settings"
	"github.com/asefahmed500/Cally-IO-sub000/internal/worker"
)

type App struct {
	Handler         http.Handler
	DocumentService *document.Service
	IngestConsumer  *worker.IngestConsumer

	port    int
	closers []func() error
}

// New wires every feature against the bootstrapped dependencies. All
// external clients are constructed here, once; handlers only receive
// services.
func New(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	taskPub TaskPublisher,
) (*App, error) {
	a := &App{port: cfg.ServerPort}

	// Feature: Settings
	settingsRepo := settings.NewPostgresRepo(db)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(settingsService)

	seedSettings(ctx, cfg, settingsService)

	// Adapters: Gemini
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: %w", err)
	}
	a.closers = append(a.closers, embedder.Close)

	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.ChatModel)
	if err != nil {
		return nil, fmt.Errorf("gemini generator: %w", err)
	}
	a.closers = append(a.closers, generator.Close)

	// Feature: Job (dead letters)
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub)
	jobHandler := job.NewHandler(jobService)

	// Feature: Document
	documentRepo := document.NewPostgresRepo(db)
	documentService := document.NewService(documentRepo, taskPub, vecStore)
	documentHandler := document.NewHandler(documentService, cfg.UploadDir, cfg.MaxUploadSizeMB)
	a.DocumentService = documentService

	// Feature: Lead
	leadRepo := lead.NewPostgresRepo(db)
	leadHandler := lead.NewHandler(lead.NewService(leadRepo))

	// Feature: Retrieval & Chat
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	retrievalService := retrieval.NewService(embedder, vecStore, generator, settingsService,
		retrieval.Defaults{Threshold: cfg.SimilarityThreshold, TopK: cfg.TopK}, queryLogger)

	chatRepo := chat.NewPostgresRepo(db)
	chatHandler := chat.NewHandler(chat.NewService(chatRepo, retrievalService))

	// Feature: Stats
	statsHandler := stats.NewHandler(documentRepo, leadRepo, chatRepo, jobRepo, vecStore)

	// Worker: background ingestion
	a.IngestConsumer = worker.NewIngestConsumer(embedder, vecStore, documentRepo, jobService,
		cfg.ChunkSize, cfg.ChunkOverlap)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Owner-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /documents/upload", middleware.CorrelationID(enableCORS(documentHandler.Upload)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(documentHandler.List)))
	mux.Handle("GET /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Get)))
	mux.Handle("DELETE /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Delete)))
	mux.Handle("POST /documents/{id}/reingest", middleware.CorrelationID(enableCORS(documentHandler.Reingest)))

	mux.Handle("POST /leads", middleware.CorrelationID(enableCORS(leadHandler.Create)))
	mux.Handle("GET /leads", middleware.CorrelationID(enableCORS(leadHandler.List)))
	mux.Handle("GET /leads/{id}", middleware.CorrelationID(enableCORS(leadHandler.Get)))
	mux.Handle("PUT /leads/{id}", middleware.CorrelationID(enableCORS(leadHandler.Update)))
	mux.Handle("PATCH /leads/{id}/status", middleware.CorrelationID(enableCORS(leadHandler.UpdateStatus)))
	mux.Handle("DELETE /leads/{id}", middleware.CorrelationID(enableCORS(leadHandler.Delete)))

	mux.Handle("POST /chat", middleware.CorrelationID(enableCORS(chatHandler.Ask)))
	mux.Handle("GET /chat/history", middleware.CorrelationID(enableCORS(chatHandler.History)))
	mux.Handle("POST /chat/search", middleware.CorrelationID(enableCORS(chatHandler.Search)))

	mux.Handle("GET /settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("PUT /settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))

	mux.Handle("GET /jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	a.Handler = mux
	return a, nil
}

// seedSettings copies the environment Gemini key into the settings row when
// the row has none, so the dashboard shows the effective key.
func seedSettings(ctx context.Context, cfg *config.Config, svc *settings.Service) {
	if cfg.GeminiAPIKey == "" {
		return
	}
	set, err := svc.Get(ctx)
	if err != nil {
		slog.Warn("failed to fetch settings for seeding", "error", err)
		return
	}
	if set.GeminiAPIKey != "" {
		return
	}
	set.GeminiAPIKey = cfg.GeminiAPIKey
	if err := svc.Update(ctx, set); err != nil {
		slog.Warn("failed to seed gemini api key", "error", err)
		return
	}
	slog.Info("seeded gemini api key from environment")
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases the Gemini clients.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("failed to close client", "error", err)
		}
	}
}
