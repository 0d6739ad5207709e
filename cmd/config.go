package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/luanzeba/gh-csm/internal/config"
	"github.com/spf13/cobra"
)

var (
	configEdit bool
	configInit bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit configuration",
	Long: `View or edit the gh-csm configuration file.

Without flags, prints the current configuration, including CSM_*
environment overrides.
Use --edit to open in $EDITOR.
Use --init to create a default config file.

Config location: ~/.config/gh-csm/config.yaml`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAuth: "true"},
	RunE:        runConfig,
}

func init() {
	configCmd.Flags().BoolVarP(&configEdit, "edit", "e", false, "Open config in $EDITOR")
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	rootCmd.AddCommand(configCmd)
}

func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.Path()
}

func runConfig(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if configInit {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		if err := config.Save(config.DefaultConfig(), path); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		cli.out.Success("Created config at %s", path)
		return nil
	}

	if configEdit {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vim"
		}

		// Create default config if it doesn't exist
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
		}

		editCmd := exec.CommandContext(cmd.Context(), editor, path)
		editCmd.Stdin = os.Stdin
		editCmd.Stdout = os.Stdout
		editCmd.Stderr = os.Stderr
		return editCmd.Run()
	}

	data, err := config.Marshal(cli.cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "# Config file: %s\n\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
