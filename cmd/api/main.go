package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"titlechat/internal/chat"
	"titlechat/internal/config"
	"titlechat/internal/conversation"
	"titlechat/internal/database"
	"titlechat/internal/handlers"
	"titlechat/internal/llm"
	"titlechat/internal/logging"
	"titlechat/internal/records"
	"titlechat/internal/region"
	"titlechat/internal/session"
)

const (
	sessionTTL  = 2 * time.Hour
	maxSessions = 10000
)

func main() {
	logger, err := logging.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}

	// 1. Load the environment. A missing API key only disables /chat's model path.
	cfg := config.Load(logger)
	if l, err := logging.New(cfg.LogLevel); err == nil {
		logger = l
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// 2. Region bundles: built-ins plus an optional directory of extras.
	var extra fs.FS
	if cfg.RegionsDir != "" {
		extra = os.DirFS(cfg.RegionsDir)
	}
	regions, err := region.Default(extra, logger)
	if err != nil {
		logger.Fatal("region: load built-in bundles", zap.Error(err))
	}

	// 3. Instruction profiles for the completion proxy.
	profiles, err := llm.LoadProfiles(cfg.PromptsPath)
	if err != nil {
		logger.Fatal("llm: load prompts", zap.Error(err))
	}
	completer := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	chatSvc := chat.NewService(regions, profiles, completer, cfg.HasCompletionKey(), logger)

	// 4. Transcript store. Sessions still work without it.
	var (
		transcript session.Transcript
		history    handlers.TranscriptReader
	)
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Warn("database: cannot create directory", zap.Error(err))
	}
	db, err := database.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Warn("database: transcripts disabled", zap.Error(err))
	} else {
		defer db.Close()
		transcript = db
		history = db
	}

	// 5. Sessions run the conversation against the local records file.
	store := records.NewFileStore(cfg.ClientCSVPath)
	sessions := session.NewManager(func() *conversation.Machine {
		return conversation.NewMachine(store, regions, chatSvc, logger)
	}, transcript, maxSessions, sessionTTL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 6. Router and server.
	router := handlers.NewRouter(handlers.Deps{
		Records:        store,
		Chat:           chatSvc,
		Regions:        regions,
		Sessions:       sessions,
		Transcripts:    history,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server: listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server: stopped with error", zap.Error(err))
		return
	}
	logger.Info("server: shutdown complete")
}
