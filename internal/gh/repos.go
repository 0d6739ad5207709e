package gh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Repository is the subset of gh repo view output the tool uses.
type Repository struct {
	NameWithOwner string
	DefaultBranch string
	IsEmpty       bool
	Visibility    string
	URL           string
}

type repositoryJSON struct {
	NameWithOwner    string `json:"nameWithOwner"`
	DefaultBranchRef *struct {
		Name string `json:"name"`
	} `json:"defaultBranchRef"`
	IsEmpty    bool   `json:"isEmpty"`
	Visibility string `json:"visibility"`
	URL        string `json:"url"`
}

const repoFields = "nameWithOwner,defaultBranchRef,isEmpty,visibility,url"

// ParseRepository decodes the JSON printed by gh repo view. A null
// defaultBranchRef yields an empty DefaultBranch.
func ParseRepository(data []byte) (*Repository, error) {
	var raw repositoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	repo := &Repository{
		NameWithOwner: raw.NameWithOwner,
		IsEmpty:       raw.IsEmpty,
		Visibility:    raw.Visibility,
		URL:           raw.URL,
	}
	if raw.DefaultBranchRef != nil {
		repo.DefaultBranch = strings.TrimSpace(raw.DefaultBranchRef.Name)
	}
	return repo, nil
}

// ViewRepo returns repository metadata. Missing or inaccessible
// repositories yield an error wrapping ErrNotFound.
func (c *Client) ViewRepo(ctx context.Context, repo string) (*Repository, error) {
	result, err := c.Run(ctx, "repo", "view", repo, "--json", repoFields)
	if err != nil {
		return nil, err
	}
	return ParseRepository(result.Stdout)
}

// BranchExists reports whether branch exists in repo.
func (c *Client) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	path := fmt.Sprintf("repos/%s/branches/%s", repo, url.PathEscape(branch))
	result, err := c.Run(ctx, "api", path, "--silent")
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	// empty repositories answer 409 for any branch lookup
	if result != nil && strings.Contains(string(result.Stderr), "HTTP 409") {
		return false, nil
	}
	return false, err
}

// RepoCreateOptions are the arguments to gh repo create.
type RepoCreateOptions struct {
	Name        string
	Description string
	Visibility  string
	License     string
	AddReadme   bool
}

// Args returns the gh arguments for the options.
func (o RepoCreateOptions) Args() []string {
	args := []string{"repo", "create", o.Name}
	if o.Description != "" {
		args = append(args, "--description", o.Description)
	}
	switch strings.ToLower(o.Visibility) {
	case "public":
		args = append(args, "--public")
	case "internal":
		args = append(args, "--internal")
	default:
		args = append(args, "--private")
	}
	if o.AddReadme {
		args = append(args, "--add-readme")
	}
	if o.License != "" {
		args = append(args, "--license", o.License)
	}
	return args
}

// CreateRepo creates a repository and returns the URL gh prints.
func (c *Client) CreateRepo(ctx context.Context, opts RepoCreateOptions) (string, error) {
	result, err := c.Run(ctx, opts.Args()...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

// RepoSummary is one row of gh repo list.
type RepoSummary struct {
	NameWithOwner string `json:"nameWithOwner"`
	Description   string `json:"description"`
	Visibility    string `json:"visibility"`
	IsArchived    bool   `json:"isArchived"`
}

// ListRepos lists repositories of owner, or of the authenticated user
// when owner is empty.
func (c *Client) ListRepos(ctx context.Context, owner string, limit int) ([]RepoSummary, error) {
	args := []string{"repo", "list"}
	if owner != "" {
		args = append(args, owner)
	}
	if limit <= 0 {
		limit = 20
	}
	args = append(args, "--limit", strconv.Itoa(limit), "--json", "nameWithOwner,description,visibility,isArchived")

	result, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	var repos []RepoSummary
	if err := json.Unmarshal(result.Stdout, &repos); err != nil {
		return nil, fmt.Errorf("failed to parse repositories: %w", err)
	}
	return repos, nil
}

// CloneRepo clones repo into dir (or the repo name when dir is empty).
func (c *Client) CloneRepo(ctx context.Context, repo, dir string) error {
	args := []string{"repo", "clone", repo}
	if dir != "" {
		args = append(args, dir)
	}
	_, err := c.RunWithStderr(ctx, args...)
	return err
}

// ForkRepo forks repo into the authenticated account without cloning.
func (c *Client) ForkRepo(ctx context.Context, repo string) (string, error) {
	result, err := c.Run(ctx, "repo", "fork", repo, "--clone=false")
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out == "" {
		out = strings.TrimSpace(string(result.Stderr))
	}
	return out, nil
}

// ArchiveRepo archives repo.
func (c *Client) ArchiveRepo(ctx context.Context, repo string) error {
	_, err := c.Run(ctx, "repo", "archive", repo, "--yes")
	return err
}

// DeleteRepo permanently deletes repo.
func (c *Client) DeleteRepo(ctx context.Context, repo string) error {
	_, err := c.Run(ctx, "repo", "delete", repo, "--yes")
	return err
}

// RepoFromURL returns owner/name from a repository URL such as the one
// printed by gh repo create. It returns "" when url has no owner and name.
func RepoFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "/" + strings.TrimSuffix(parts[1], ".git")
}
