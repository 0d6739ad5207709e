package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <repo>",
	Short: "Print the branch a new codespace would use",
	Long: `Resolve the branch for a repository the same way create does and
print it.

Empty repositories are seeded with a README on main, so this command may
push a commit.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	repo, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	name, err := newResolver().Resolve(cmd.Context(), repo)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
