package git

import (
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	fallbackName  = "gitgraph"
	fallbackEmail = "gitgraph@localhost"
)

// Signature returns the identity used for new commits: user.name and
// user.email from the repository config, then the global config, then a
// fixed fallback.
func Signature(repo *gogit.Repository, when time.Time) *object.Signature {
	sig := &object.Signature{Name: fallbackName, Email: fallbackEmail, When: when}

	scopes := []func() (*config.Config, error){
		func() (*config.Config, error) { return config.LoadConfig(config.GlobalScope) },
		repo.Config,
	}
	for _, load := range scopes {
		cfg, err := load()
		if err != nil {
			continue
		}
		if cfg.User.Name != "" {
			sig.Name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			sig.Email = cfg.User.Email
		}
	}
	return sig
}
