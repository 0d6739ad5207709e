package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/luanzeba/gh-csm/internal/menu"
	"github.com/luanzeba/gh-csm/internal/state"
	"github.com/spf13/cobra"
)

var (
	deleteForce bool
	deleteAll   bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete [codespace-names...]",
	Short: "Delete codespaces interactively",
	Long: `Delete one or more codespaces.

Without arguments, opens an interactive picker with multi-select.
Use Tab or Space to select multiple codespaces, Enter to confirm.

If the current codespace is deleted, the selection is cleared.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete all codespaces (requires --force)")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var toDelete []string

	switch {
	case deleteAll:
		if !deleteForce {
			return fmt.Errorf("--all requires --force flag")
		}
		codespaces, err := cli.gh.ListCodespaces(ctx)
		if err != nil {
			return err
		}
		for _, cs := range codespaces {
			toDelete = append(toDelete, cs.Name)
		}
	case len(args) > 0:
		toDelete = args
	default:
		selected, err := pickCodespaces(ctx, "Select codespaces to delete", true)
		if err != nil {
			return err
		}
		toDelete = selected
	}

	if len(toDelete) == 0 {
		cli.out.Info("No codespaces selected.")
		return nil
	}

	if !deleteForce && !cli.cfg.Defaults.AutoConfirm {
		fmt.Printf("Delete %d codespace(s):\n", len(toDelete))
		for _, name := range toDelete {
			fmt.Printf("  - %s\n", name)
		}
		ok, err := menu.NewSession(os.Stdin, os.Stdout).Confirm("Confirm?", false)
		if err != nil || !ok {
			cli.out.Info("Cancelled.")
			return nil
		}
	}

	return deleteCodespaces(ctx, toDelete)
}

// deleteCodespaces deletes every name, reporting each result, and clears the
// current selection if it was deleted.
func deleteCodespaces(ctx context.Context, names []string) error {
	var deleted, failed []string
	for _, name := range names {
		if err := cli.gh.DeleteCodespace(ctx, name); err != nil {
			cli.out.Failure("Deleting %s failed: %v", name, err)
			failed = append(failed, name)
			continue
		}
		cli.out.Success("Deleted %s", name)
		deleted = append(deleted, name)
	}

	if err := state.ClearIf(deleted...); err != nil {
		cli.out.Warning("failed to clear current codespace: %v", err)
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to delete %d codespace(s)", len(failed))
	}
	return nil
}
