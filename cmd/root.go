package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/luanzeba/gh-csm/internal/config"
	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/terminal"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"
)

var (
	configFile string
	tokensFile string
)

// skipAuth marks commands that work without gh credentials.
const skipAuth = "skip-auth"

var rootCmd = &cobra.Command{
	Use:   "gh-csm",
	Short: "Codespaces and repository manager",
	Long: `gh-csm is a GitHub CLI extension for managing codespaces and repositories.

Run it without a subcommand to open the interactive menu. Features:
- Branch resolution for empty and legacy repositories
- Codespace lifecycle commands with an interactive picker
- Remote script execution with the script's exit code
- Cost estimates for running codespaces`,
	Args:              cobra.NoArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runMenu,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.config/gh-csm/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&tokensFile, "tokens", "", "Token file (default ~/.config/gh-csm/tokens)")
}

// app holds what every command needs. It is built once per invocation.
type app struct {
	cfg   *config.Config
	creds config.Credentials
	gh    *gh.Client
	out   *terminal.Printer
}

var cli *app

// setup loads the config and token file once and checks gh authentication.
func setup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := terminal.NewPrinter(os.Stdout)

	cfg, err := config.Load(configFile)
	if err != nil {
		out.Warning("failed to load config: %v", err)
		cfg = config.DefaultConfig()
	}

	creds, err := config.LoadCredentials(ctx, tokensFile)
	if err != nil {
		out.Warning("failed to load token file: %v", err)
	}

	cli = &app{
		cfg:   cfg,
		creds: creds,
		gh:    gh.NewClient(creds.ActiveToken()),
		out:   out,
	}

	if cmd.Annotations[skipAuth] == "true" {
		return nil
	}
	if _, err := cli.gh.AuthStatus(ctx); err != nil {
		return err
	}
	pslog.Ctx(ctx).Debug("gh authenticated", "token_file", creds.ActiveToken() != "")
	return nil
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitError carries a process exit code through cobra.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
