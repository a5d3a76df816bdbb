package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/server"
	"github.com/kurobon/gitgraph/internal/state"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the commit graph over HTTP",
		Long: `Open the repository in a session and serve its graph over HTTP.
Websocket clients on /api/ws receive a new graph whenever the repository
changes on disk or an operation runs through /api/command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			sm := state.NewSessionManager(cfg, logger)
			srv := server.NewServer(sm, logger)

			session, err := sm.OpenSession(cfg.RepoPath)
			if err != nil {
				logger.Warn("no repository at startup", "path", cfg.RepoPath, "error", err)
			} else if err := srv.WatchSession(session.ID); err != nil {
				logger.Warn("live refresh disabled", "session", session.ID, "error", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx, cfg.ListenAddr, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
