package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PullRequest is one row of gh pr list.
type PullRequest struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	HeadRefName string `json:"headRefName"`
	State       string `json:"state"`
	URL         string `json:"url"`
}

// PullRequestOptions are the arguments to gh pr create. An empty Repo
// means the repository of the current directory.
type PullRequestOptions struct {
	Repo  string
	Title string
	Body  string
	Base  string
	Head  string
	Draft bool
}

// Args returns the gh arguments for the options. The body is always
// passed so gh never opens an editor.
func (o PullRequestOptions) Args() []string {
	args := []string{"pr", "create", "--title", o.Title, "--body", o.Body}
	if o.Base != "" {
		args = append(args, "--base", o.Base)
	}
	if o.Head != "" {
		args = append(args, "--head", o.Head)
	}
	if o.Draft {
		args = append(args, "--draft")
	}
	return withRepo(args, o.Repo)
}

// MergeMethods are the accepted values for MergePullRequest.
var MergeMethods = []string{"squash", "merge", "rebase"}

// CreatePullRequest opens a pull request and returns its URL.
func (c *Client) CreatePullRequest(ctx context.Context, opts PullRequestOptions) (string, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return "", fmt.Errorf("pull request title is required")
	}
	result, err := c.Run(ctx, opts.Args()...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

// ListPullRequests lists open pull requests.
func (c *Client) ListPullRequests(ctx context.Context, repo string, limit int) ([]PullRequest, error) {
	if limit <= 0 {
		limit = 30
	}
	args := withRepo([]string{"pr", "list", "--limit", strconv.Itoa(limit), "--json", "number,title,headRefName,state,url"}, repo)

	result, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	var prs []PullRequest
	if err := json.Unmarshal(result.Stdout, &prs); err != nil {
		return nil, fmt.Errorf("failed to parse pull requests: %w", err)
	}
	return prs, nil
}

// MergePullRequest merges pull request number with method, squash when
// method is empty.
func (c *Client) MergePullRequest(ctx context.Context, repo string, number int, method string) error {
	if method == "" {
		method = "squash"
	}
	valid := false
	for _, m := range MergeMethods {
		if m == method {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown merge method %q (want one of %s)", method, strings.Join(MergeMethods, ", "))
	}

	args := withRepo([]string{"pr", "merge", strconv.Itoa(number), "--" + method}, repo)
	_, err := c.Run(ctx, args...)
	return err
}

// withRepo appends --repo when repo is set.
func withRepo(args []string, repo string) []string {
	if repo == "" {
		return args
	}
	return append(args, "--repo", repo)
}
