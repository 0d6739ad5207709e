package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/menu"
	"github.com/luanzeba/gh-csm/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	repoDescription string
	repoVisibility  string
	repoLicense     string
	repoNoReadme    bool
	repoListLimit   int
	repoListJSON    bool
	repoYes         bool
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage repositories",
}

var repoCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a repository",
	Long: `Create a repository with a README. Visibility and license default to
the values in the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepoCreate,
}

var repoListCmd = &cobra.Command{
	Use:   "list [owner]",
	Short: "List repositories",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepoList,
}

var repoViewCmd = &cobra.Command{
	Use:   "view <repo>",
	Short: "Show repository details",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoView,
}

var repoCloneCmd = &cobra.Command{
	Use:   "clone <repo> [directory]",
	Short: "Clone a repository",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRepoClone,
}

var repoForkCmd = &cobra.Command{
	Use:   "fork <repo>",
	Short: "Fork a repository into your account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoFork,
}

var repoArchiveCmd = &cobra.Command{
	Use:   "archive <repo>",
	Short: "Archive a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoArchive,
}

var repoDeleteCmd = &cobra.Command{
	Use:   "delete <repo>",
	Short: "Permanently delete a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoDelete,
}

func init() {
	repoCreateCmd.Flags().StringVarP(&repoDescription, "description", "d", "", "Repository description")
	repoCreateCmd.Flags().StringVar(&repoVisibility, "visibility", "", "public, private or internal (default from config)")
	repoCreateCmd.Flags().StringVar(&repoLicense, "license", "", "License template (default from config)")
	repoCreateCmd.Flags().BoolVar(&repoNoReadme, "no-readme", false, "Don't add a README")
	repoListCmd.Flags().IntVarP(&repoListLimit, "limit", "L", 30, "Maximum number of repositories")
	repoListCmd.Flags().BoolVar(&repoListJSON, "json", false, "Print JSON")
	repoArchiveCmd.Flags().BoolVarP(&repoYes, "yes", "y", false, "Skip confirmation prompt")
	repoDeleteCmd.Flags().BoolVarP(&repoYes, "yes", "y", false, "Skip confirmation prompt")

	repoCmd.AddCommand(repoCreateCmd, repoListCmd, repoViewCmd, repoCloneCmd, repoForkCmd, repoArchiveCmd, repoDeleteCmd)
	rootCmd.AddCommand(repoCmd)
}

// repoCreateOptions fills repository defaults from the config.
func repoCreateOptions(name string) gh.RepoCreateOptions {
	return gh.RepoCreateOptions{
		Name:       name,
		Visibility: cli.cfg.Defaults.Visibility,
		License:    cli.cfg.Defaults.License,
		AddReadme:  true,
	}
}

func runRepoCreate(cmd *cobra.Command, args []string) error {
	opts := repoCreateOptions(args[0])
	opts.Description = repoDescription
	if repoVisibility != "" {
		opts.Visibility = repoVisibility
	}
	if cmd.Flags().Changed("license") {
		opts.License = repoLicense
	}
	opts.AddReadme = !repoNoReadme

	url, err := cli.gh.CreateRepo(cmd.Context(), opts)
	if err != nil {
		return err
	}
	cli.out.Success("Created repository %s", url)
	return nil
}

func runRepoList(cmd *cobra.Command, args []string) error {
	owner := ""
	if len(args) > 0 {
		owner = args[0]
	}

	repos, err := cli.gh.ListRepos(cmd.Context(), owner, repoListLimit)
	if err != nil {
		return err
	}

	if repoListJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(repos)
	}
	return renderRepos(repos)
}

func renderRepos(repos []gh.RepoSummary) error {
	if len(repos) == 0 {
		cli.out.Info("No repositories found.")
		return nil
	}
	t := terminal.NewTable("REPOSITORY", "VISIBILITY", "ARCHIVED", "DESCRIPTION")
	for _, r := range repos {
		t.AddRow(r.NameWithOwner, r.Visibility, strconv.FormatBool(r.IsArchived), r.Description)
	}
	return t.Render(os.Stdout)
}

func runRepoView(cmd *cobra.Command, args []string) error {
	repo, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	info, err := cli.gh.ViewRepo(cmd.Context(), repo)
	if err != nil {
		return err
	}
	printRepo(info)
	return nil
}

func printRepo(info *gh.Repository) {
	defaultBranch := info.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "(none)"
	}
	cli.out.Heading(info.NameWithOwner)
	fmt.Printf("  URL:            %s\n", info.URL)
	fmt.Printf("  Visibility:     %s\n", info.Visibility)
	fmt.Printf("  Default branch: %s\n", defaultBranch)
	fmt.Printf("  Empty:          %t\n", info.IsEmpty)
}

func runRepoClone(cmd *cobra.Command, args []string) error {
	repo, err := resolveRepo(args[0])
	if err != nil {
		return err
	}
	dir := ""
	if len(args) > 1 {
		dir = args[1]
	}

	if err := cli.gh.CloneRepo(cmd.Context(), repo, dir); err != nil {
		return err
	}
	cli.out.Success("Cloned %s", repo)
	return nil
}

func runRepoFork(cmd *cobra.Command, args []string) error {
	repo, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	out, err := cli.gh.ForkRepo(cmd.Context(), repo)
	if err != nil {
		return err
	}
	cli.out.Success("Forked %s %s", repo, out)
	return nil
}

// confirmRepo asks before a destructive repository operation unless --yes
// or auto_confirm is set.
func confirmRepo(question string) bool {
	if repoYes || cli.cfg.Defaults.AutoConfirm {
		return true
	}
	ok, err := menu.NewSession(os.Stdin, os.Stdout).Confirm(question, false)
	return err == nil && ok
}

func runRepoArchive(cmd *cobra.Command, args []string) error {
	repo, err := resolveRepo(args[0])
	if err != nil {
		return err
	}
	if !confirmRepo(fmt.Sprintf("Archive %s?", repo)) {
		cli.out.Info("Cancelled.")
		return nil
	}

	if err := cli.gh.ArchiveRepo(cmd.Context(), repo); err != nil {
		return err
	}
	cli.out.Success("Archived %s", repo)
	return nil
}

func runRepoDelete(cmd *cobra.Command, args []string) error {
	repo, err := resolveRepo(args[0])
	if err != nil {
		return err
	}
	if !confirmRepo(fmt.Sprintf("Permanently delete %s?", repo)) {
		cli.out.Info("Cancelled.")
		return nil
	}

	if err := cli.gh.DeleteRepo(cmd.Context(), repo); err != nil {
		return err
	}
	cli.out.Success("Deleted %s", repo)
	return nil
}
