// Package gh provides helpers for interacting with the GitHub CLI.
package gh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when gh reports that the requested repository,
// branch or codespace does not exist or is not visible to the caller.
var ErrNotFound = errors.New("not found")

// notFoundMarkers are stderr fragments gh prints for missing resources.
var notFoundMarkers = []string{
	"Could not resolve to a Repository",
	"HTTP 404",
}

// Result holds the output from a gh command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Client runs the gh binary. The zero value uses "gh" from PATH and the
// inherited environment.
type Client struct {
	// Binary overrides the gh executable, mainly for tests.
	Binary string
	// Env holds extra KEY=VALUE pairs appended to os.Environ().
	Env []string
}

// NewClient returns a client that authenticates with token when it is set.
func NewClient(token string) *Client {
	c := &Client{}
	if token != "" {
		c.Env = []string{"GH_TOKEN=" + token}
	}
	return c
}

func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	bin := c.Binary
	if bin == "" {
		bin = "gh"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Run executes a gh command and captures both stdout and stderr.
// If the command fails, the error includes the stderr content.
func (c *Client) Run(ctx context.Context, args ...string) (*Result, error) {
	return c.RunWithInput(ctx, nil, args...)
}

// RunWithInput is like Run but feeds stdin to the command.
func (c *Client) RunWithInput(ctx context.Context, stdin io.Reader, args ...string) (*Result, error) {
	cmd := c.command(ctx, args...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		return result, wrapError(args, err, stderr.String())
	}

	return result, nil
}

// RunWithStderr executes a gh command, streaming stderr to the terminal
// in real-time while also capturing it. Useful for long-running commands
// like codespace creation where gh prints progress.
func (c *Client) RunWithStderr(ctx context.Context, args ...string) (*Result, error) {
	cmd := c.command(ctx, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		// stderr was already shown, only classify it
		if isNotFound(stderr.String()) {
			return result, fmt.Errorf("gh %s failed: %w: %w", args[0], ErrNotFound, err)
		}
		return result, fmt.Errorf("gh %s failed: %w", args[0], err)
	}

	return result, nil
}

// RunInteractive attaches the command to the terminal.
func (c *Client) RunInteractive(ctx context.Context, args ...string) error {
	cmd := c.command(ctx, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// wrapError creates a formatted error that includes stderr content if available.
func wrapError(args []string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if isNotFound(stderr) {
		return fmt.Errorf("gh %s failed: %w: %s", args[0], ErrNotFound, stderr)
	}
	if stderr != "" {
		return fmt.Errorf("gh %s failed: %w\n%s", args[0], err, stderr)
	}
	return fmt.Errorf("gh %s failed: %w", args[0], err)
}

func isNotFound(stderr string) bool {
	for _, marker := range notFoundMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}
