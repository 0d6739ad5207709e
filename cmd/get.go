package cmd

import (
	"fmt"

	"github.com/luanzeba/gh-csm/internal/state"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current codespace name",
	Long: `Print the name of the currently selected codespace.

This is useful for scripts and shell prompts.
Exit code 1 if no codespace is selected.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAuth: "true"},
	RunE:        runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	name, err := state.Get()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
