// Package localgit manages branches of the git repository in the working
// directory.
package localgit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	ErrNotRepository  = errors.New("not a git repository")
	ErrNoCommits      = errors.New("repository has no commits yet")
	ErrBranchExists   = errors.New("branch already exists")
	ErrBranchNotFound = errors.New("branch not found")
	ErrCurrentBranch  = errors.New("cannot delete the checked-out branch")
	ErrNotMerged      = errors.New("branch is not fully merged")
)

// Branch is a local or remote-tracking branch.
type Branch struct {
	Name    string `json:"name"`
	Remote  bool   `json:"remote"`
	Current bool   `json:"current"`
	Hash    string `json:"hash"`
}

// Repo is an opened working-directory repository.
type Repo struct {
	r *git.Repository
}

// Open finds the repository containing dir.
func Open(dir string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotRepository)
	}
	if err != nil {
		return nil, err
	}
	return &Repo{r: r}, nil
}

// CreateBranch creates name at HEAD and checks it out. The worktree is
// untouched since both point at the same commit.
func (r *Repo) CreateBranch(name string) error {
	ref := plumbing.NewBranchReferenceName(name)
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("invalid branch name %q: %w", name, err)
	}
	if _, err := r.r.Reference(ref, false); err == nil {
		return fmt.Errorf("%s: %w", name, ErrBranchExists)
	}

	head, err := r.r.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return ErrNoCommits
	}
	if err != nil {
		return err
	}

	if err := r.r.Storer.SetReference(plumbing.NewHashReference(ref, head.Hash())); err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := r.r.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, ref)); err != nil {
		return fmt.Errorf("failed to check out %s: %w", name, err)
	}
	return nil
}

// Branches lists local branches, then remote-tracking ones, each sorted by
// name.
func (r *Repo) Branches() ([]Branch, error) {
	current := ""
	if head, err := r.r.Head(); err == nil && head.Name().IsBranch() {
		current = head.Name().Short()
	}

	refs, err := r.r.References()
	if err != nil {
		return nil, err
	}
	var branches []Branch
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		// skips origin/HEAD
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		switch {
		case ref.Name().IsBranch():
			name := ref.Name().Short()
			branches = append(branches, Branch{Name: name, Current: name == current, Hash: ref.Hash().String()})
		case ref.Name().IsRemote():
			branches = append(branches, Branch{Name: ref.Name().Short(), Remote: true, Hash: ref.Hash().String()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(branches, func(i, j int) bool {
		if branches[i].Remote != branches[j].Remote {
			return !branches[i].Remote
		}
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

// DeleteBranch removes the local branch name. Unless force is set, the
// branch must be reachable from HEAD.
func (r *Repo) DeleteBranch(name string, force bool) error {
	ref := plumbing.NewBranchReferenceName(name)
	branchRef, err := r.r.Reference(ref, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("%s: %w", name, ErrBranchNotFound)
	}
	if err != nil {
		return err
	}

	head, err := r.r.Head()
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return err
	}
	if head != nil && head.Name() == ref {
		return fmt.Errorf("%s: %w", name, ErrCurrentBranch)
	}

	if !force && head != nil && branchRef.Hash() != head.Hash() {
		merged, err := r.isAncestor(branchRef.Hash(), head.Hash())
		if err != nil {
			return err
		}
		if !merged {
			return fmt.Errorf("%s: %w", name, ErrNotMerged)
		}
	}

	if err := r.r.Storer.RemoveReference(ref); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	if err := r.r.DeleteBranch(name); err != nil && !errors.Is(err, git.ErrBranchNotFound) {
		return fmt.Errorf("failed to remove %s from config: %w", name, err)
	}
	return nil
}

func (r *Repo) isAncestor(ancestor, of plumbing.Hash) (bool, error) {
	a, err := r.r.CommitObject(ancestor)
	if err != nil {
		return false, err
	}
	b, err := r.r.CommitObject(of)
	if err != nil {
		return false, err
	}
	return a.IsAncestor(b)
}
