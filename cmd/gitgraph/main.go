package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/git"
	_ "github.com/kurobon/gitgraph/internal/git/commands" // Register commands
	"github.com/kurobon/gitgraph/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	repoPath   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "gitgraph",
		Short: "Commit graph viewer and history editor",
		Long: `gitgraph lays out the commit history of a repository as a graph of
lanes, the way a visual history client draws it.

Examples:
  # Show the graph of the current branch
  gitgraph log

  # Show every branch and tag of another repository
  gitgraph -C ~/src/project log --all

  # List refs
  gitgraph refs

  # Rewrite a commit message
  gitgraph op reword HEAD~2 "Fix typo"

  # Serve the graph over HTTP and websockets
  gitgraph serve --addr :9000`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("GITGRAPH_CONFIG"), "YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.repoPath, "repo", "C", "", "repository path (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newLogCmd(opts))
	cmd.AddCommand(newRefsCmd(opts))
	cmd.AddCommand(newOpCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// load reads the configuration and applies flag overrides.
func (o *globalOptions) load() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.repoPath != "" {
		cfg.RepoPath = o.repoPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openRepository opens the configured repository.
func (o *globalOptions) openRepository() (*git.Repository, *config.Config, error) {
	cfg, logger, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	repo, err := git.Open(cfg.RepoPath,
		git.WithMaxWalk(cfg.MaxWalk),
		git.WithCacheSize(cfg.CacheSize),
		git.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("not a git repository (or any parent): %s: %w", cfg.RepoPath, err)
	}
	return repo, cfg, nil
}
