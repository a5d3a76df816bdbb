package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kurobon/gitgraph/internal/config"
	_ "github.com/kurobon/gitgraph/internal/git/commands" // Register commands
	"github.com/kurobon/gitgraph/internal/logging"
	"github.com/kurobon/gitgraph/internal/server"
	"github.com/kurobon/gitgraph/internal/state"
)

func main() {
	configPath := flag.String("config", os.Getenv("GITGRAPH_CONFIG"), "YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	// Initialize Core Dependencies
	sessionManager := state.NewSessionManager(cfg, logger)
	srv := server.NewServer(sessionManager, logger)

	// Pre-open the configured repository so clients can attach immediately
	if session, err := sessionManager.OpenSession(cfg.RepoPath); err != nil {
		logger.Warn("failed to open default repository", "path", cfg.RepoPath, "error", err)
		logger.Warn("clients will need to open one via /api/session/open")
	} else {
		logger.Info("default repository ready", "session", session.ID, "path", session.Repo.Path())
		if err := srv.WatchSession(session.ID); err != nil {
			logger.Warn("live refresh disabled", "session", session.ID, "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.ListenAndServe(ctx, cfg.ListenAddr, srv); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
