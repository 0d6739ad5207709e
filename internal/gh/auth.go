package gh

import (
	"context"
	"errors"
	"strings"
)

// ErrNotAuthenticated means gh has no usable credentials.
var ErrNotAuthenticated = errors.New("GitHub CLI not authenticated (run 'gh auth login' first)")

// AuthStatus returns gh's human readable auth report. It returns
// ErrNotAuthenticated when gh is logged out.
func (c *Client) AuthStatus(ctx context.Context) (string, error) {
	result, err := c.Run(ctx, "auth", "status")
	if err != nil {
		return "", ErrNotAuthenticated
	}
	// gh has printed the status on stderr in some versions
	out := strings.TrimSpace(string(result.Stdout))
	if out == "" {
		out = strings.TrimSpace(string(result.Stderr))
	}
	return out, nil
}

// AuthToken returns the token gh is using for github.com.
func (c *Client) AuthToken(ctx context.Context) (string, error) {
	result, err := c.Run(ctx, "auth", "token")
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(result.Stdout))
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// AuthLogin runs the browser based gh login attached to the terminal.
func (c *Client) AuthLogin(ctx context.Context) error {
	return c.RunInteractive(ctx, "auth", "login", "--web")
}

// AddSSHKey uploads the public key at path to the authenticated account.
func (c *Client) AddSSHKey(ctx context.Context, path, title string) error {
	args := []string{"ssh-key", "add", path}
	if title != "" {
		args = append(args, "--title", title)
	}
	_, err := c.Run(ctx, args...)
	return err
}
