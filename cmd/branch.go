package cmd

import (
	"encoding/json"
	"os"

	"github.com/luanzeba/gh-csm/internal/localgit"
	"github.com/luanzeba/gh-csm/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	branchForce    bool
	branchListJSON bool
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage branches of the repository in the current directory",
}

var branchCreateCmd = &cobra.Command{
	Use:         "create <name>",
	Short:       "Create a branch at HEAD and check it out",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipAuth: "true"},
	RunE:        runBranchCreate,
}

var branchListCmd = &cobra.Command{
	Use:         "list",
	Aliases:     []string{"ls"},
	Short:       "List local and remote-tracking branches",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAuth: "true"},
	RunE:        runBranchList,
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a local branch",
	Long: `Delete a local branch. A branch with commits that are not reachable
from HEAD is kept unless --force is given.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipAuth: "true"},
	RunE:        runBranchDelete,
}

func init() {
	branchListCmd.Flags().BoolVar(&branchListJSON, "json", false, "Print JSON")
	branchDeleteCmd.Flags().BoolVarP(&branchForce, "force", "f", false, "Delete even if not merged")

	branchCmd.AddCommand(branchCreateCmd, branchListCmd, branchDeleteCmd)
	rootCmd.AddCommand(branchCmd)
}

func openWorkdir() (*localgit.Repo, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return localgit.Open(dir)
}

func runBranchCreate(cmd *cobra.Command, args []string) error {
	repo, err := openWorkdir()
	if err != nil {
		return err
	}
	if err := repo.CreateBranch(args[0]); err != nil {
		return err
	}
	cli.out.Success("Branch '%s' created and checked out", args[0])
	return nil
}

func runBranchList(cmd *cobra.Command, args []string) error {
	repo, err := openWorkdir()
	if err != nil {
		return err
	}
	branches, err := repo.Branches()
	if err != nil {
		return err
	}

	if branchListJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(branches)
	}
	return renderBranches(branches)
}

func renderBranches(branches []localgit.Branch) error {
	if len(branches) == 0 {
		cli.out.Info("No branches yet.")
		return nil
	}
	t := terminal.NewTable("", "BRANCH", "COMMIT")
	for _, b := range branches {
		mark := ""
		if b.Current {
			mark = "*"
		}
		t.AddRow(mark, b.Name, b.Hash[:7])
	}
	return t.Render(os.Stdout)
}

func runBranchDelete(cmd *cobra.Command, args []string) error {
	repo, err := openWorkdir()
	if err != nil {
		return err
	}
	if err := repo.DeleteBranch(args[0], branchForce); err != nil {
		return err
	}
	cli.out.Success("Branch '%s' deleted", args[0])
	return nil
}
