package cmd

import (
	"context"

	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/spf13/cobra"
)

// lifecycleOp is a codespace operation that takes only the name.
type lifecycleOp struct {
	use   string
	short string
	doing string
	done  string
	run   func(c *gh.Client, ctx context.Context, name string) error
}

var lifecycleOps = []lifecycleOp{
	{"start", "Start a stopped codespace", "Starting", "Started", (*gh.Client).StartCodespace},
	{"stop", "Stop a running codespace", "Stopping", "Stopped", (*gh.Client).StopCodespace},
	{"rebuild", "Rebuild a codespace's dev container", "Rebuilding", "Rebuilt", (*gh.Client).RebuildCodespace},
}

func init() {
	for _, op := range lifecycleOps {
		rootCmd.AddCommand(newLifecycleCmd(op))
	}
}

func newLifecycleCmd(op lifecycleOp) *cobra.Command {
	return &cobra.Command{
		Use:   op.use + " [codespace-name]",
		Short: op.short,
		Long: op.short + `.

Without a name, the current codespace is used, or one is picked interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, err := codespaceArg(ctx, args)
			if err != nil {
				return err
			}
			return runLifecycle(ctx, op, name)
		},
	}
}

func runLifecycle(ctx context.Context, op lifecycleOp, name string) error {
	cli.out.Info("%s %s...", op.doing, name)
	if err := op.run(cli.gh, ctx, name); err != nil {
		return err
	}
	cli.out.Success("%s %s", op.done, name)
	return nil
}
