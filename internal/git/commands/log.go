package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/render"
)

// defaultLogLimit caps log output when no --limit is given.
const defaultLogLimit = 100

func init() {
	git.RegisterCommand("log", func() git.Command { return &LogCommand{} })
}

// LogCommand prints the commit graph as text.
type LogCommand struct{}

func (c *LogCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	scope := graph.Start("HEAD")
	skip, limit := 0, defaultLogLimit
	opts := render.Options{}

	cmdArgs := args[1:]
	value := func(i int) (string, error) {
		if i+1 >= len(cmdArgs) {
			return "", fmt.Errorf("option %s needs a value", cmdArgs[i])
		}
		return cmdArgs[i+1], nil
	}
	for i := 0; i < len(cmdArgs); i++ {
		switch arg := cmdArgs[i]; arg {
		case "--all":
			scope = graph.AllRefs()
		case "--branch", "--start":
			v, err := value(i)
			if err != nil {
				return "", err
			}
			i++
			if arg == "--branch" {
				scope = graph.Branch(v)
			} else {
				scope = graph.Start(v)
			}
		case "--skip", "--limit":
			v, err := value(i)
			if err != nil {
				return "", err
			}
			i++
			n, err := strconv.Atoi(v)
			if err != nil {
				return "", fmt.Errorf("invalid %s value %q", arg, v)
			}
			if arg == "--skip" {
				skip = n
			} else {
				limit = n
			}
		case "--author":
			opts.Author = true
		case "-h", "--help":
			return c.Help(), nil
		default:
			return "", fmt.Errorf("unknown option %s", arg)
		}
	}

	g, err := graph.NewBuilder(repo, repo, graph.WithLogger(repo.Logger())).BuildGraph(ctx, scope, skip, limit)
	if err != nil {
		return "", err
	}
	return render.Render(g, opts), nil
}

func (c *LogCommand) Help() string {
	return `usage: log [--all | --branch <name> | --start <rev>] [--skip <n>] [--limit <n>] [--author]

Show the commit graph. Without a scope, history starts at HEAD.
--limit 0 shows everything.`
}
