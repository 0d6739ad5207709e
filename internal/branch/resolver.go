// Package branch decides which branch a new codespace is created from.
//
// Resolution order:
//  1. the repository's configured default branch
//  2. the first existing branch among Candidates
//  3. a freshly seeded "main" branch, for repositories with no commits
package branch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/luanzeba/gh-csm/internal/gh"
	"pkt.systems/pslog"
)

// SeedBranch is the branch pushed into empty repositories.
const SeedBranch = "main"

// Candidates are tried in order when a repository reports no
// default branch.
var Candidates = []string{"main", "master", "develop"}

var (
	ErrInvalidRepo     = errors.New("repository must be in owner/name form")
	ErrRepoNotFound    = errors.New("repository not found")
	ErrBootstrapFailed = errors.New("cannot bootstrap empty repository")
)

// Platform is the part of the GitHub CLI the resolver needs.
type Platform interface {
	ViewRepo(ctx context.Context, repo string) (*gh.Repository, error)
	BranchExists(ctx context.Context, repo, branch string) (bool, error)
}

// Seeder pushes an initial commit to an empty repository.
type Seeder interface {
	Seed(ctx context.Context, repo, branch string) error
}

// Resolver resolves the branch for codespace creation.
type Resolver struct {
	Platform Platform
	Seeder   Seeder
}

// NewResolver returns a resolver using p for queries and s for bootstrapping.
func NewResolver(p Platform, s Seeder) *Resolver {
	return &Resolver{Platform: p, Seeder: s}
}

// Resolve returns the branch to create a codespace from.
func (r *Resolver) Resolve(ctx context.Context, repo string) (string, error) {
	if err := ValidateRepo(repo); err != nil {
		return "", err
	}
	log := pslog.Ctx(ctx).With("repo", repo)

	info, err := r.Platform.ViewRepo(ctx, repo)
	if err != nil {
		if errors.Is(err, gh.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", repo, ErrRepoNotFound)
		}
		return "", fmt.Errorf("failed to query %s: %w", repo, err)
	}

	if info.DefaultBranch != "" {
		log.Debug("using default branch", "branch", info.DefaultBranch)
		return info.DefaultBranch, nil
	}

	for _, candidate := range Candidates {
		exists, err := r.Platform.BranchExists(ctx, repo, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check branch %s of %s: %w", candidate, repo, err)
		}
		if exists {
			log.Debug("using existing branch", "branch", candidate)
			return candidate, nil
		}
	}

	log.Info("repository has no branches, seeding", "branch", SeedBranch)
	if r.Seeder == nil {
		return "", fmt.Errorf("%s: %w: no seeder configured", repo, ErrBootstrapFailed)
	}
	if err := r.Seeder.Seed(ctx, repo, SeedBranch); err != nil {
		return "", fmt.Errorf("%s: %w: %w", repo, ErrBootstrapFailed, err)
	}
	return SeedBranch, nil
}

// ValidateRepo checks that repo looks like owner/name.
func ValidateRepo(repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") || strings.ContainsAny(repo, " \t\n") {
		return fmt.Errorf("%q: %w", repo, ErrInvalidRepo)
	}
	return nil
}

// RepoName returns the name part of owner/name.
func RepoName(repo string) string {
	if i := strings.LastIndex(repo, "/"); i >= 0 {
		return repo[i+1:]
	}
	return repo
}
