package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/park285/chess960-arena/internal/arena"
	"github.com/park285/chess960-arena/internal/config"
	"github.com/park285/chess960-arena/internal/directory"
	"github.com/park285/chess960-arena/internal/history"
	"github.com/park285/chess960-arena/internal/hub"
	"github.com/park285/chess960-arena/internal/notify"
	"github.com/park285/chess960-arena/internal/obslog"
	"github.com/park285/chess960-arena/internal/rating"
	"github.com/park285/chess960-arena/internal/session"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	// persistent stores when a database is configured; in-memory otherwise
	var ratingStore rating.Store
	var historyStore history.Store
	if cfg.DatabaseURL != "" {
		ratingStore, err = rating.NewPGStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("rating store init error: %v", err)
		}
		historyStore, err = history.NewPGStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("history store init error: %v", err)
		}
	} else {
		obslog.L().Warn("no_database_configured", zap.String("fallback", "memory"))
		ratingStore = rating.NewMemoryStore()
		historyStore = history.NewMemoryStore()
	}

	var archive *session.Archive
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		archive, err = session.OpenArchive(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		defer func() { _ = archive.Close() }()
	}

	dir := directory.New()
	mgr := arena.New(arena.Params{
		Ratings:          rating.NewService(ratingStore),
		History:          historyStore,
		Directory:        dir,
		Archive:          archive,
		Webhook:          notify.New(cfg.WebhookURL),
		Chess960:         cfg.Chess960,
		DefaultTolerance: cfg.DefaultTolerance,
	})
	srv := hub.New(mgr, dir)

	go func() {
		obslog.L().Info("server_listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Bool("chess960", cfg.Chess960),
		)
		if err := srv.Start(cfg.ListenAddr); err != nil {
			obslog.L().Info("server_stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obslog.L().Error("shutdown_error", zap.Error(err))
	}
}
