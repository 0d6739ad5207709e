package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Issue is one row of gh issue list.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	URL    string `json:"url"`
}

// IssueOptions are the arguments to gh issue create.
type IssueOptions struct {
	Repo   string
	Title  string
	Body   string
	Labels []string
}

// Args returns the gh arguments for the options.
func (o IssueOptions) Args() []string {
	args := []string{"issue", "create", "--title", o.Title, "--body", o.Body}
	for _, label := range o.Labels {
		args = append(args, "--label", label)
	}
	return withRepo(args, o.Repo)
}

// CreateIssue opens an issue and returns its URL.
func (c *Client) CreateIssue(ctx context.Context, opts IssueOptions) (string, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return "", fmt.Errorf("issue title is required")
	}
	result, err := c.Run(ctx, opts.Args()...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

// ListIssues lists open issues.
func (c *Client) ListIssues(ctx context.Context, repo string, limit int) ([]Issue, error) {
	if limit <= 0 {
		limit = 30
	}
	args := withRepo([]string{"issue", "list", "--limit", strconv.Itoa(limit), "--json", "number,title,state,url"}, repo)

	result, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	var issues []Issue
	if err := json.Unmarshal(result.Stdout, &issues); err != nil {
		return nil, fmt.Errorf("failed to parse issues: %w", err)
	}
	return issues, nil
}
