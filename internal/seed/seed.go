// Package seed pushes the initial commit into empty GitHub repositories so
// that a codespace can be created from them.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"pkt.systems/pslog"
)

const (
	readmeFile    = "README.md"
	commitMessage = "Initial commit"
)

// Author identifies the seed commit's author.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor signs seed commits when no author is configured.
var DefaultAuthor = Author{Name: "gh-csm", Email: "gh-csm@users.noreply.github.com"}

// Seeder creates a one-file commit in a scratch directory and pushes it.
type Seeder struct {
	// Token returns the credential used for HTTPS pushes. An empty token
	// pushes without authentication.
	Token func(ctx context.Context) (string, error)
	// RemoteURL maps owner/name to a git URL. Defaults to GitHubURL.
	RemoteURL func(repo string) string
	Author    Author
	// TempDir is the parent of the scratch directory; empty means os.TempDir.
	TempDir string
	// Now is the commit timestamp source.
	Now func() time.Time
}

// GitHubURL returns the HTTPS clone URL of owner/name on github.com.
func GitHubURL(repo string) string {
	return "https://github.com/" + repo + ".git"
}

// Readme returns the content of the seeded README.md.
func Readme(repo string) string {
	return "# " + repo[strings.LastIndex(repo, "/")+1:] + "\n"
}

// Seed commits README.md to branch and pushes it to repo.
func (s *Seeder) Seed(ctx context.Context, repo, branch string) error {
	log := pslog.Ctx(ctx).With("repo", repo, "branch", branch)

	dir, err := os.MkdirTemp(s.TempDir, "gh-csm-seed-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	r, hash, err := s.commit(dir, repo, branch)
	if err != nil {
		return err
	}
	log.Debug("seed commit created", "commit", hash.String())

	auth, err := s.auth(ctx)
	if err != nil {
		return err
	}

	remoteURL := GitHubURL
	if s.RemoteURL != nil {
		remoteURL = s.RemoteURL
	}
	if _, err := r.CreateRemote(&gitconfig.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{remoteURL(repo)},
	}); err != nil {
		return fmt.Errorf("failed to add remote: %w", err)
	}

	ref := plumbing.NewBranchReferenceName(branch)
	err = r.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(ref + ":" + ref)},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %s: %w", branch, err)
	}

	log.Info("seeded empty repository")
	return nil
}

func (s *Seeder) commit(dir, repo, branch string) (*git.Repository, plumbing.Hash, error) {
	r, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to init scratch repository: %w", err)
	}

	// point HEAD at the seed branch before the first commit
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := r.Storer.SetReference(head); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to set HEAD: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, readmeFile), []byte(Readme(repo)), 0644); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to write %s: %w", readmeFile, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, plumbing.ZeroHash, err
	}
	if _, err := wt.Add(readmeFile); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to stage %s: %w", readmeFile, err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	author := s.Author
	if author.Name == "" || author.Email == "" {
		author = DefaultAuthor
	}
	hash, err := wt.Commit(commitMessage, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  now(),
		},
	})
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to commit: %w", err)
	}
	return r, hash, nil
}

func (s *Seeder) auth(ctx context.Context) (transport.AuthMethod, error) {
	if s.Token == nil {
		return nil, nil
	}
	token, err := s.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get push credentials: %w", err)
	}
	if token == "" {
		return nil, nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: token}, nil
}
