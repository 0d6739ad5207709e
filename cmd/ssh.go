package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/state"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"
)

var (
	sshRetry      bool
	sshRetryDelay time.Duration
	sshMaxRetries int
)

var sshCmd = &cobra.Command{
	Use:   "ssh [codespace-name]",
	Short: "SSH into a codespace",
	Long: `SSH into a codespace.

By default, connects to the currently selected codespace.
Use --retry to automatically reconnect on disconnect.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSSH,
}

func init() {
	sshCmd.Flags().BoolVar(&sshRetry, "retry", false, "Automatically reconnect on disconnect (default from config)")
	sshCmd.Flags().DurationVar(&sshRetryDelay, "retry-delay", 0, "Time to wait before reconnecting (default from config)")
	sshCmd.Flags().IntVar(&sshMaxRetries, "max-retries", 0, "Maximum reconnection attempts, 0 for unlimited (default from config)")
	rootCmd.AddCommand(sshCmd)
}

func runSSH(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, err := codespaceArg(ctx, args)
	if err != nil {
		return err
	}

	retry := sshRetry
	if !cmd.Flags().Changed("retry") {
		if cs, err := cli.gh.GetCodespace(ctx, name); err == nil {
			retry = cli.cfg.GetEffectiveSSHRetry(cs.Repository)
		}
	}
	return connect(ctx, name, retry)
}

// connect opens an SSH session to name, reconnecting when retry is set.
func connect(ctx context.Context, name string, retry bool) error {
	cs, err := cli.gh.GetCodespace(ctx, name)
	if err != nil {
		return err
	}

	if err := state.Set(name); err != nil {
		cli.out.Warning("failed to update current codespace: %v", err)
	}

	cli.out.Info("Connecting to %s (%s @ %s)...", cs.Name, cs.Repository, cs.Branch)
	setTabTitle(cs)

	if !retry {
		return cli.gh.SSH(ctx, name)
	}
	return sshWithRetry(ctx, cs)
}

func sshWithRetry(ctx context.Context, cs *gh.Codespace) error {
	delay := cli.cfg.RetryDelay()
	if sshRetryDelay > 0 {
		delay = sshRetryDelay
	}
	maxRetries := cli.cfg.SSH.MaxRetries
	if sshMaxRetries > 0 {
		maxRetries = sshMaxRetries
	}
	log := pslog.Ctx(ctx).With("codespace", cs.Name)

	retries := 0
	for {
		// refresh tab title on reconnect
		setTabTitle(cs)

		err := cli.gh.SSH(ctx, cs.Name)
		if err == nil {
			cli.out.Info("SSH session ended normally.")
			return nil
		}
		if ctx.Err() != nil {
			fmt.Println()
			cli.out.Info("Disconnected.")
			return nil
		}
		log.Debug("ssh session failed", "err", err, "attempt", retries+1)

		retries++
		if maxRetries > 0 && retries >= maxRetries {
			return fmt.Errorf("max retries (%d) reached, giving up", maxRetries)
		}

		attempt := fmt.Sprintf("%d", retries+1)
		if maxRetries > 0 {
			attempt = fmt.Sprintf("%d/%d", retries+1, maxRetries)
		}
		cli.out.Warning("Connection lost. Reconnecting in %s... (attempt %s)", delay, attempt)

		select {
		case <-ctx.Done():
			cli.out.Info("Reconnection cancelled.")
			return nil
		case <-time.After(delay):
		}
	}
}
