package cmd

import (
	"encoding/json"
	"os"

	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/state"
	"github.com/luanzeba/gh-csm/internal/terminal"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List codespaces",
	Long:    `List your codespaces. The current selection is marked with "*".`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	codespaces, err := cli.gh.ListCodespaces(cmd.Context())
	if err != nil {
		return err
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(codespaces)
	}

	return renderCodespaces(codespaces)
}

func renderCodespaces(codespaces []gh.Codespace) error {
	if len(codespaces) == 0 {
		cli.out.Info("No codespaces found.")
		return nil
	}

	current, _ := state.Get()
	t := terminal.NewTable("", "NAME", "REPOSITORY", "BRANCH", "STATE", "MACHINE")
	for _, cs := range codespaces {
		mark := ""
		if cs.Name == current {
			mark = "*"
		}
		t.AddRow(mark, cs.Name, cs.Repository, cs.Branch, cs.State, cs.MachineName)
	}
	return t.Render(os.Stdout)
}
