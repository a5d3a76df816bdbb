package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("help", func() git.Command { return &HelpCommand{} })
}

// HelpCommand lists commands or shows the help of one.
type HelpCommand struct{}

var _ git.Command = (*HelpCommand)(nil)

var descriptions = map[string]string{
	"branch":      "List, create, rename or delete branches",
	"checkout":    "Switch branches or detach HEAD",
	"cherry-pick": "Apply the changes introduced by existing commits",
	"help":        "Display help information",
	"log":         "Show the commit graph",
	"redate":      "Change the author date of a commit",
	"reset":       "Move the current branch to another commit",
	"revert":      "Undo a commit with a new commit",
	"reword":      "Change the message of a commit",
	"squash":      "Fold the last commits into one",
	"tag":         "List, create or delete tags",
}

func (c *HelpCommand) Execute(_ context.Context, _ *git.Repository, args []string) (string, error) {
	if len(args) > 1 {
		text, err := git.GetCommandHelp(args[1])
		if err != nil {
			return "", fmt.Errorf("unknown command '%s'", args[1])
		}
		return text, nil
	}

	cmds := git.GetSupportedCommands()
	width := 0
	for _, name := range cmds {
		width = max(width, len(name))
	}

	var sb strings.Builder
	sb.WriteString("usage: <command> [<args>]\n\nCommands:\n")
	for _, name := range cmds {
		desc, ok := descriptions[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "   %-*s   %s\n", width, name, desc)
	}
	sb.WriteString("\nType 'help <command>' for more information about a command.")
	return sb.String(), nil
}

func (c *HelpCommand) Help() string {
	return "usage: help [<command>]\n\nList the available commands, or show the help of one."
}
