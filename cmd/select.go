package cmd

import (
	"fmt"

	"github.com/luanzeba/gh-csm/internal/state"
	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select [codespace-name]",
	Short: "Select the current codespace",
	Long: `Select a codespace as the current working codespace.

If no codespace name is provided, an interactive picker is shown (fzf when
installed). The selected codespace is stored in ~/.config/gh-csm/current
and used by other commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		selected, err := pickCodespaces(ctx, "Select a codespace", false)
		if err != nil {
			return err
		}
		name = selected[0]
	}

	exists, err := cli.gh.CodespaceExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("codespace %q not found", name)
	}

	if err := state.Set(name); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}

	cli.out.Success("Selected codespace: %s", name)
	return nil
}
