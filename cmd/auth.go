package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/luanzeba/gh-csm/internal/sshkey"
	"github.com/spf13/cobra"
)

var (
	sshKeyName  string
	sshKeyEmail string
	sshKeyTitle string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "GitHub authentication and SSH keys",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gh authentication status",
	Long: `Show the gh authentication report and which credential gh-csm passes
to gh. A token from the token file overrides gh's stored login.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAuth: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return showAuthStatus(cmd.Context())
	},
}

var authLoginCmd = &cobra.Command{
	Use:         "login",
	Short:       "Log in to GitHub with the browser flow",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAuth: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return login(cmd.Context())
	},
}

var sshKeyCmd = &cobra.Command{
	Use:   "ssh-key",
	Short: "Generate, upload and test SSH keys for GitHub",
}

var sshKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an ed25519 key in ~/.ssh",
	Long: `Generate an unencrypted ed25519 key pair in ~/.ssh. Existing key files
are never overwritten.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAuth: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := sshkey.DefaultDir()
		if err != nil {
			return err
		}
		email := sshKeyEmail
		if email == "" {
			email = cli.cfg.Author.Email
		}
		_, err = generateKey(dir, sshKeyName, email)
		return err
	},
}

var sshKeyAddCmd = &cobra.Command{
	Use:   "add <public-key-file>",
	Short: "Add a public key to your GitHub account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := sshKeyTitle
		if title == "" {
			title = defaultKeyTitle()
		}
		return addKey(cmd.Context(), args[0], title)
	},
}

var sshKeyTestCmd = &cobra.Command{
	Use:         "test",
	Short:       "Test SSH authentication with github.com",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAuth: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return testSSH(cmd.Context())
	},
}

func init() {
	sshKeyGenerateCmd.Flags().StringVarP(&sshKeyName, "name", "n", sshkey.DefaultName, "Key file name in ~/.ssh")
	sshKeyGenerateCmd.Flags().StringVarP(&sshKeyEmail, "email", "C", "", "Key comment (default author.email from config)")
	sshKeyAddCmd.Flags().StringVarP(&sshKeyTitle, "title", "t", "", "Key title on GitHub (default gh-csm-<hostname>)")

	sshKeyCmd.AddCommand(sshKeyGenerateCmd, sshKeyAddCmd, sshKeyTestCmd)
	authCmd.AddCommand(authStatusCmd, authLoginCmd, sshKeyCmd)
	rootCmd.AddCommand(authCmd)
}

func showAuthStatus(ctx context.Context) error {
	status, err := cli.gh.AuthStatus(ctx)
	if err != nil {
		cli.out.Failure("GitHub CLI not authenticated")
		return err
	}
	cli.out.Success("GitHub CLI authenticated")
	fmt.Println(status)

	switch {
	case cli.creds.ActiveToken() == "":
		cli.out.Info("Credential: gh login")
	case cli.creds.Active == "secondary":
		cli.out.Info("Credential: token file (secondary)")
	default:
		cli.out.Info("Credential: token file (primary)")
	}
	return nil
}

func login(ctx context.Context) error {
	if cli.creds.ActiveToken() != "" {
		cli.out.Warning("A token from the token file is active; gh-csm keeps using it after login.")
	}
	cli.out.Info("Starting GitHub login...")
	if err := cli.gh.AuthLogin(ctx); err != nil {
		return fmt.Errorf("GitHub login failed: %w", err)
	}
	cli.out.Success("GitHub login complete")
	return nil
}

func generateKey(dir, name, email string) (*sshkey.KeyPair, error) {
	kp, err := sshkey.Generate(dir, name, email)
	if err != nil {
		return nil, err
	}
	cli.out.Success("SSH key generated: %s", kp.PrivatePath)
	fmt.Printf("  Public key:  %s\n", kp.PublicPath)
	fmt.Printf("  Fingerprint: %s\n\n", kp.Fingerprint)
	fmt.Println(kp.AuthorizedKey)
	return kp, nil
}

func defaultKeyTitle() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "gh-csm"
	}
	return "gh-csm-" + host
}

func addKey(ctx context.Context, path, title string) error {
	fp, err := sshkey.Fingerprint(path)
	if err != nil {
		return err
	}
	if err := cli.gh.AddSSHKey(ctx, path, title); err != nil {
		return err
	}
	cli.out.Success("Added %s (%s) as %q", filepath.Base(path), fp, title)
	return nil
}

func testSSH(ctx context.Context) error {
	cli.out.Info("Testing SSH connectivity to GitHub...")
	ok, output, err := (&sshkey.Checker{}).CheckGitHub(ctx)
	if err != nil {
		return err
	}
	if !ok {
		if output != "" {
			fmt.Println(output)
		}
		return fmt.Errorf("SSH authentication with %s failed", sshkey.GitHubHost)
	}
	cli.out.Success("SSH connection successful")
	fmt.Println(output)
	return nil
}
