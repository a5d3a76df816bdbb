package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Command is a history operation run against a repository.
type Command interface {
	Execute(ctx context.Context, repo *Repository, args []string) (string, error)
	Help() string
}

// CommandFactory creates a fresh command instance per invocation.
type CommandFactory func() Command

var (
	registryMu sync.RWMutex
	registry   = make(map[string]CommandFactory)
)

// RegisterCommand registers a command factory under name.
func RegisterCommand(name string, factory CommandFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Dispatch runs the named command. args[0] is the command name.
func Dispatch(ctx context.Context, repo *Repository, name string, args []string) (string, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("'%s' is not a recognized command. See 'help'", name)
	}
	return factory().Execute(ctx, repo, args)
}

// GetSupportedCommands returns all registered command names, sorted.
func GetSupportedCommands() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cmds := make([]string, 0, len(registry))
	for k := range registry {
		cmds = append(cmds, k)
	}
	sort.Strings(cmds)
	return cmds
}

// GetCommandHelp returns the help text of a command.
func GetCommandHelp(name string) (string, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("command %q not found", name)
	}
	return factory().Help(), nil
}

// ParseCommand splits raw input into the command name and its arguments.
// A leading "git" is optional. The returned args always start with the
// command name.
func ParseCommand(input string) (string, []string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return "", nil
	}
	if parts[0] == "git" {
		parts = parts[1:]
		if len(parts) == 0 {
			return "help", []string{"help"}
		}
	}
	switch parts[0] {
	case "-h", "--help":
		return "help", []string{"help"}
	}
	return parts[0], parts
}
