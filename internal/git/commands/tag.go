package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("tag", func() git.Command { return &TagCommand{} })
}

// TagCommand lists, creates and deletes tags.
type TagCommand struct{}

var _ git.Command = (*TagCommand)(nil)

func (c *TagCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	var (
		deleteMode bool
		annotate   bool
		message    string
		names      []string
	)
	cmdArgs := args[1:]
	for i := 0; i < len(cmdArgs); i++ {
		switch arg := cmdArgs[i]; arg {
		case "-h", "--help":
			return c.Help(), nil
		case "-d", "--delete":
			deleteMode = true
		case "-a", "--annotate":
			annotate = true
		case "-m", "--message":
			if i+1 >= len(cmdArgs) {
				return "", fmt.Errorf("option %s needs a value", arg)
			}
			i++
			message = cmdArgs[i]
			annotate = true
		default:
			if strings.HasPrefix(arg, "-") {
				return "", fmt.Errorf("unknown option: %s", arg)
			}
			names = append(names, arg)
		}
	}

	repo.Lock()
	defer repo.Unlock()
	raw := repo.Raw()

	if deleteMode {
		if len(names) != 1 {
			return "", fmt.Errorf("usage: tag -d <name>")
		}
		if err := raw.DeleteTag(names[0]); err != nil {
			return "", fmt.Errorf("tag '%s' not found", names[0])
		}
		return "Deleted tag " + names[0], nil
	}

	if len(names) == 0 {
		return listTags(raw)
	}
	if len(names) > 2 {
		return "", fmt.Errorf("too many arguments")
	}

	name := names[0]
	rev := "HEAD"
	if len(names) == 2 {
		rev = names[1]
	}
	target, err := resolveCommit(raw, rev)
	if err != nil {
		return "", err
	}

	if !annotate {
		if _, err := raw.CreateTag(name, target.Hash, nil); err != nil {
			return "", err
		}
		return fmt.Sprintf("Created tag %s at %s", name, short(target)), nil
	}

	if message == "" {
		return "", fmt.Errorf("annotated tag %s needs a message (-m)", name)
	}
	_, err = raw.CreateTag(name, target.Hash, &gogit.CreateTagOptions{
		Tagger:  git.Signature(raw, time.Now()),
		Message: message,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created annotated tag %s at %s", name, short(target)), nil
}

func listTags(raw *gogit.Repository) (string, error) {
	iter, err := raw.Tags()
	if err != nil {
		return "", err
	}
	var names []string
	err = iter.ForEach(func(r *plumbing.Reference) error {
		names = append(names, r.Name().Short())
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n + "\n")
	}
	return sb.String(), nil
}

func (c *TagCommand) Help() string {
	return `usage: tag [-a -m <message>] <name> [<commit>]
       tag -d <name>

List tags, or create or delete one. -m implies -a.`
}
