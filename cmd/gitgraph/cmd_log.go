package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/render"
)

func newLogCmd(opts *globalOptions) *cobra.Command {
	var (
		all     bool
		branch  string
		start   string
		skip    int
		limit   int
		author  bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the commit graph",
		Long: `Show the commit graph of the repository, newest commits first.

Without a scope the graph starts at HEAD. --all starts from every branch,
remote branch and tag. --limit 0 uses the configured default window.

Examples:
  gitgraph log
  gitgraph log --all --limit 50
  gitgraph log --branch origin/main --skip 100
  gitgraph log --start v1.2.0 --author`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := logScope(all, branch, start)
			if err != nil {
				return err
			}

			repo, cfg, err := opts.openRepository()
			if err != nil {
				return err
			}

			builder := graph.NewBuilder(repo, repo, graph.WithLogger(repo.Logger()))
			g, err := builder.BuildGraph(cmd.Context(), scope, skip, cfg.ClampLimit(limit))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color := false
			if f, ok := out.(*os.File); ok && !noColor {
				color = render.IsTerminal(f)
			}
			return render.Write(out, g, render.Options{Color: color, Author: author})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "start from all refs")
	cmd.Flags().StringVar(&branch, "branch", "", "start from a branch")
	cmd.Flags().StringVar(&start, "start", "", "start from a revision")
	cmd.Flags().IntVar(&skip, "skip", 0, "skip this many commits")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many commits")
	cmd.Flags().BoolVar(&author, "author", false, "show author names")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	return cmd
}

func logScope(all bool, branch, start string) (graph.Scope, error) {
	set := 0
	for _, on := range []bool{all, branch != "", start != ""} {
		if on {
			set++
		}
	}
	if set > 1 {
		return graph.Scope{}, fmt.Errorf("--all, --branch and --start are mutually exclusive")
	}
	switch {
	case all:
		return graph.AllRefs(), nil
	case branch != "":
		return graph.Branch(branch), nil
	case start != "":
		return graph.Start(start), nil
	default:
		return graph.Start("HEAD"), nil
	}
}
