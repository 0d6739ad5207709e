package cmd

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	issueRepo      string
	issueTitle     string
	issueBody      string
	issueLabels    []string
	issueListLimit int
	issueListJSON  bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues",
	Long: `Manage issues. Without --repo, gh uses the repository of the current
directory.`,
}

var issueCreateCmd = &cobra.Command{
	Use:   "create --title <title>",
	Short: "Open an issue",
	Args:  cobra.NoArgs,
	RunE:  runIssueCreate,
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open issues",
	Args:  cobra.NoArgs,
	RunE:  runIssueList,
}

func init() {
	issueCmd.PersistentFlags().StringVarP(&issueRepo, "repo", "R", "", "Repository (owner/name or alias)")
	issueCreateCmd.Flags().StringVarP(&issueTitle, "title", "t", "", "Issue title")
	issueCreateCmd.Flags().StringVarP(&issueBody, "body", "b", "", "Issue description")
	issueCreateCmd.Flags().StringSliceVarP(&issueLabels, "label", "l", nil, "Labels to add")
	_ = issueCreateCmd.MarkFlagRequired("title")
	issueListCmd.Flags().IntVarP(&issueListLimit, "limit", "L", 30, "Maximum number of issues")
	issueListCmd.Flags().BoolVar(&issueListJSON, "json", false, "Print JSON")

	issueCmd.AddCommand(issueCreateCmd, issueListCmd)
	rootCmd.AddCommand(issueCmd)
}

func runIssueCreate(cmd *cobra.Command, args []string) error {
	repo, err := optionalRepo(issueRepo)
	if err != nil {
		return err
	}

	url, err := cli.gh.CreateIssue(cmd.Context(), gh.IssueOptions{
		Repo:   repo,
		Title:  issueTitle,
		Body:   issueBody,
		Labels: issueLabels,
	})
	if err != nil {
		return err
	}
	cli.out.Success("Issue created: %s", url)
	return nil
}

func runIssueList(cmd *cobra.Command, args []string) error {
	repo, err := optionalRepo(issueRepo)
	if err != nil {
		return err
	}
	issues, err := cli.gh.ListIssues(cmd.Context(), repo, issueListLimit)
	if err != nil {
		return err
	}

	if issueListJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(issues)
	}
	return renderIssues(issues)
}

func renderIssues(issues []gh.Issue) error {
	if len(issues) == 0 {
		cli.out.Info("No open issues.")
		return nil
	}
	t := terminal.NewTable("#", "TITLE", "STATE")
	for _, issue := range issues {
		t.AddRow(strconv.Itoa(issue.Number), issue.Title, issue.State)
	}
	return t.Render(os.Stdout)
}
