package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	prRepo        string
	prTitle       string
	prBody        string
	prBase        string
	prDraft       bool
	prListLimit   int
	prListJSON    bool
	prMergeMethod string
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Manage pull requests",
	Long: `Manage pull requests. Without --repo, gh uses the repository of the
current directory.`,
}

var prCreateCmd = &cobra.Command{
	Use:   "create --title <title>",
	Short: "Open a pull request from the current branch",
	Args:  cobra.NoArgs,
	RunE:  runPRCreate,
}

var prListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open pull requests",
	Args:  cobra.NoArgs,
	RunE:  runPRList,
}

var prMergeCmd = &cobra.Command{
	Use:   "merge <number>",
	Short: "Merge a pull request",
	Args:  cobra.ExactArgs(1),
	RunE:  runPRMerge,
}

func init() {
	prCmd.PersistentFlags().StringVarP(&prRepo, "repo", "R", "", "Repository (owner/name or alias)")
	prCreateCmd.Flags().StringVarP(&prTitle, "title", "t", "", "Pull request title")
	prCreateCmd.Flags().StringVarP(&prBody, "body", "b", "", "Pull request description")
	prCreateCmd.Flags().StringVarP(&prBase, "base", "B", "", "Branch to merge into")
	prCreateCmd.Flags().BoolVarP(&prDraft, "draft", "d", false, "Open as draft")
	_ = prCreateCmd.MarkFlagRequired("title")
	prListCmd.Flags().IntVarP(&prListLimit, "limit", "L", 30, "Maximum number of pull requests")
	prListCmd.Flags().BoolVar(&prListJSON, "json", false, "Print JSON")
	prMergeCmd.Flags().StringVar(&prMergeMethod, "method", "squash", "Merge method: "+strings.Join(gh.MergeMethods, ", "))

	prCmd.AddCommand(prCreateCmd, prListCmd, prMergeCmd)
	rootCmd.AddCommand(prCmd)
}

// optionalRepo expands an alias in a --repo value. Empty stays empty so gh
// falls back to the current directory.
func optionalRepo(arg string) (string, error) {
	if arg == "" {
		return "", nil
	}
	return resolveRepo(arg)
}

func runPRCreate(cmd *cobra.Command, args []string) error {
	repo, err := optionalRepo(prRepo)
	if err != nil {
		return err
	}

	url, err := cli.gh.CreatePullRequest(cmd.Context(), gh.PullRequestOptions{
		Repo:  repo,
		Title: prTitle,
		Body:  prBody,
		Base:  prBase,
		Draft: prDraft,
	})
	if err != nil {
		return err
	}
	cli.out.Success("Pull request created: %s", url)
	return nil
}

func runPRList(cmd *cobra.Command, args []string) error {
	repo, err := optionalRepo(prRepo)
	if err != nil {
		return err
	}
	prs, err := cli.gh.ListPullRequests(cmd.Context(), repo, prListLimit)
	if err != nil {
		return err
	}

	if prListJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(prs)
	}
	return renderPullRequests(prs)
}

func renderPullRequests(prs []gh.PullRequest) error {
	if len(prs) == 0 {
		cli.out.Info("No open pull requests.")
		return nil
	}
	t := terminal.NewTable("#", "TITLE", "BRANCH", "STATE")
	for _, pr := range prs {
		t.AddRow(strconv.Itoa(pr.Number), pr.Title, pr.HeadRefName, pr.State)
	}
	return t.Render(os.Stdout)
}

// parseNumber accepts "12" or "#12".
func parseNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid number %q", arg)
	}
	return n, nil
}

func runPRMerge(cmd *cobra.Command, args []string) error {
	repo, err := optionalRepo(prRepo)
	if err != nil {
		return err
	}
	number, err := parseNumber(args[0])
	if err != nil {
		return err
	}

	if err := cli.gh.MergePullRequest(cmd.Context(), repo, number, prMergeMethod); err != nil {
		return err
	}
	cli.out.Success("Pull request #%d merged", number)
	return nil
}
