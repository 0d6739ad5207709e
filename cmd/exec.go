package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luanzeba/gh-csm/internal/remote"
	"github.com/spf13/cobra"
)

var (
	execScript string
	execJSON   bool
)

var execCmd = &cobra.Command{
	Use:   "exec [codespace-name] --script <file|->",
	Short: "Run a script in a codespace",
	Long: `Run a script in a codespace through bash.

The script is read from a file, or from stdin with "--script -". Its stdout
and stderr are printed as they were produced remotely, and gh-csm exits with
the script's exit code. --json prints a single object with stdout, stderr
and exit_code instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringVarP(&execScript, "script", "s", "", "Script file, or - for stdin")
	execCmd.Flags().BoolVar(&execJSON, "json", false, "Print the result as JSON")
	_ = execCmd.MarkFlagRequired("script")
	rootCmd.AddCommand(execCmd)
}

func readScript(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runExec(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	script, err := readScript(execScript, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	name, err := codespaceArg(ctx, args)
	if err != nil {
		return err
	}

	var executor remote.Executor = cli.gh
	res, err := executor.ExecuteRemote(ctx, name, script)
	if err != nil {
		return err
	}

	if execJSON {
		if err := remote.WriteResult(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
	}

	if !res.Success() {
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}
