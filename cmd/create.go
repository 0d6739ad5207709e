package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	createMachine            string
	createLocation           string
	createDevcontainer       string
	createBranch             string
	createIdleTimeout        time.Duration
	createDefaultPermissions bool
	createNoSSH              bool
)

var createCmd = &cobra.Command{
	Use:   "create <repo>",
	Short: "Create a codespace and optionally SSH into it",
	Long: `Create a new codespace for the specified repository.

Repo can be a full name (owner/repo) or an alias defined in config.
Without --branch the branch is resolved: the repository's default branch,
then the first of main, master and develop that exists. A repository with
no commits is seeded with a README on main first.

After creation:
1. The codespace becomes the current selection
2. Post-create hooks from the config run
3. An SSH session opens, unless --no-ssh is given

Settings like machine type and permissions can be configured per-repo in
~/.config/gh-csm/config.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createMachine, "machine", "m", "", "Machine type (default from config)")
	createCmd.Flags().StringVarP(&createLocation, "location", "l", "", "Location (default from config)")
	createCmd.Flags().StringVarP(&createDevcontainer, "devcontainer", "d", "", "Devcontainer path (default from config)")
	createCmd.Flags().StringVarP(&createBranch, "branch", "b", "", "Branch to create codespace from (default: resolved)")
	createCmd.Flags().DurationVar(&createIdleTimeout, "idle-timeout", 0, "Idle timeout, e.g. 30m (default from config)")
	createCmd.Flags().BoolVarP(&createDefaultPermissions, "default-permissions", "y", false, "Accept default permissions (skip prompt)")
	createCmd.Flags().BoolVar(&createNoSSH, "no-ssh", false, "Don't SSH after creation")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repo, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	// flags override per-repo config, which overrides defaults
	opts := createOptions(repo)
	flags := cmd.Flags()
	if flags.Changed("machine") {
		opts.Machine = createMachine
	}
	if flags.Changed("location") {
		opts.Location = createLocation
	}
	if flags.Changed("devcontainer") {
		opts.Devcontainer = createDevcontainer
	}
	if flags.Changed("branch") {
		opts.Branch = createBranch
	}
	if flags.Changed("idle-timeout") {
		opts.IdleTimeout = createIdleTimeout
	}
	if flags.Changed("default-permissions") {
		opts.DefaultPermissions = createDefaultPermissions
	}

	cli.out.Info("Creating codespace for %s...", repo)
	name, resolved, err := newCreator().Provision(ctx, opts)
	if err != nil {
		return err
	}
	cli.out.Success("Created codespace %s (%s @ %s)", name, repo, resolved)

	afterCreate(ctx, name, repo, resolved)

	if createNoSSH {
		return nil
	}
	return connect(ctx, name, cli.cfg.GetEffectiveSSHRetry(repo))
}
