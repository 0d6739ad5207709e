// Package codespace creates codespaces for resolved repository branches.
package codespace

import (
	"context"
	"errors"
	"fmt"

	"github.com/luanzeba/gh-csm/internal/gh"
	"pkt.systems/pslog"
)

// ErrCreateFailed wraps any failure reported while creating a codespace.
var ErrCreateFailed = errors.New("codespace creation failed")

// Platform creates codespaces.
type Platform interface {
	CreateCodespace(ctx context.Context, opts gh.CreateOptions) (string, error)
}

// BranchResolver picks the branch for a repository.
type BranchResolver interface {
	Resolve(ctx context.Context, repo string) (string, error)
}

// Creator creates codespaces. It never creates repositories.
type Creator struct {
	Platform Platform
	Resolver BranchResolver
}

// NewCreator returns a creator backed by p, resolving branches with r.
func NewCreator(p Platform, r BranchResolver) *Creator {
	return &Creator{Platform: p, Resolver: r}
}

// Create creates a codespace for opts.Repo at opts.Branch and returns its
// name. Calling it twice creates two codespaces.
func (c *Creator) Create(ctx context.Context, opts gh.CreateOptions) (string, error) {
	if opts.Repo == "" || opts.Branch == "" {
		return "", fmt.Errorf("%w: repository and branch are required", ErrCreateFailed)
	}
	log := pslog.Ctx(ctx).With("repo", opts.Repo, "branch", opts.Branch)
	log.Debug("creating codespace", "machine", opts.Machine)

	name, err := c.Platform.CreateCodespace(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: no codespace name returned", ErrCreateFailed)
	}

	log.Info("codespace created", "codespace", name)
	return name, nil
}

// Provision resolves the branch when opts.Branch is empty, then creates the
// codespace. The resolved branch is returned alongside the name.
func (c *Creator) Provision(ctx context.Context, opts gh.CreateOptions) (name, branch string, err error) {
	if opts.Branch == "" {
		if c.Resolver == nil {
			return "", "", fmt.Errorf("%w: no branch given and no resolver configured", ErrCreateFailed)
		}
		opts.Branch, err = c.Resolver.Resolve(ctx, opts.Repo)
		if err != nil {
			return "", "", err
		}
	}

	name, err = c.Create(ctx, opts)
	if err != nil {
		return "", opts.Branch, err
	}
	return name, opts.Branch, nil
}
