package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/luanzeba/gh-csm/internal/remote"
)

// Codespace represents a GitHub Codespace.
type Codespace struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	State       string    `json:"state"`
	Repository  string    `json:"repository"`
	Branch      string    `json:"branch"`
	MachineName string    `json:"machineName"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUsedAt  time.Time `json:"lastUsedAt"`
}

// codespaceJSON is used for parsing the gh cs list output
type codespaceJSON struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	State       string `json:"state"`
	Repository  string `json:"repository"`
	GitStatus   struct {
		Ref string `json:"ref"`
	} `json:"gitStatus"`
	MachineName string    `json:"machineName"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUsedAt  time.Time `json:"lastUsedAt"`
}

const codespaceFields = "name,displayName,state,repository,gitStatus,machineName,createdAt,lastUsedAt"

// CreateOptions are the arguments to gh codespace create.
type CreateOptions struct {
	Repo               string
	Branch             string
	Machine            string
	Location           string
	Devcontainer       string
	IdleTimeout        time.Duration
	DefaultPermissions bool
}

// Args returns the gh arguments for the options.
func (o CreateOptions) Args() []string {
	args := []string{"codespace", "create", "-R", o.Repo}
	if o.Branch != "" {
		args = append(args, "-b", o.Branch)
	}
	if o.Machine != "" {
		args = append(args, "-m", o.Machine)
	}
	if o.Location != "" {
		args = append(args, "-l", o.Location)
	}
	if o.Devcontainer != "" {
		args = append(args, "--devcontainer-path", o.Devcontainer)
	}
	if o.IdleTimeout > 0 {
		args = append(args, "--idle-timeout", o.IdleTimeout.String())
	}
	if o.DefaultPermissions {
		args = append(args, "--default-permissions")
	}
	return append(args, "--status")
}

// ParseCodespaces decodes the JSON printed by gh codespace list.
func ParseCodespaces(data []byte) ([]Codespace, error) {
	var raw []codespaceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse codespaces: %w", err)
	}

	codespaces := make([]Codespace, len(raw))
	for i, cs := range raw {
		codespaces[i] = Codespace{
			Name:        cs.Name,
			DisplayName: cs.DisplayName,
			State:       cs.State,
			Repository:  cs.Repository,
			Branch:      cs.GitStatus.Ref,
			MachineName: cs.MachineName,
			CreatedAt:   cs.CreatedAt,
			LastUsedAt:  cs.LastUsedAt,
		}
	}
	return codespaces, nil
}

// ListCodespaces returns all codespaces for the authenticated user.
func (c *Client) ListCodespaces(ctx context.Context) ([]Codespace, error) {
	result, err := c.Run(ctx, "codespace", "list", "--json", codespaceFields)
	if err != nil {
		return nil, err
	}
	return ParseCodespaces(result.Stdout)
}

// CodespaceExists checks if a codespace with the given name exists.
func (c *Client) CodespaceExists(ctx context.Context, name string) (bool, error) {
	_, err := c.GetCodespace(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetCodespace returns the codespace with the given name.
func (c *Client) GetCodespace(ctx context.Context, name string) (*Codespace, error) {
	codespaces, err := c.ListCodespaces(ctx)
	if err != nil {
		return nil, err
	}

	for _, cs := range codespaces {
		if cs.Name == name {
			return &cs, nil
		}
	}
	return nil, fmt.Errorf("codespace %q: %w", name, ErrNotFound)
}

// CreateCodespace creates a codespace and returns its name. gh prints
// progress on stderr and the new name on stdout.
func (c *Client) CreateCodespace(ctx context.Context, opts CreateOptions) (string, error) {
	result, err := c.RunWithStderr(ctx, opts.Args()...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

// StartCodespace starts a stopped codespace. gh has no start subcommand,
// so this goes through the REST API.
func (c *Client) StartCodespace(ctx context.Context, name string) error {
	_, err := c.Run(ctx, "api", "-X", "POST", "user/codespaces/"+name+"/start", "--silent")
	return err
}

// StopCodespace stops a running codespace.
func (c *Client) StopCodespace(ctx context.Context, name string) error {
	_, err := c.Run(ctx, "codespace", "stop", "-c", name)
	return err
}

// DeleteCodespace deletes a codespace without prompting.
func (c *Client) DeleteCodespace(ctx context.Context, name string) error {
	_, err := c.Run(ctx, "codespace", "delete", "-c", name, "--force")
	return err
}

// RebuildCodespace rebuilds the codespace's dev container.
func (c *Client) RebuildCodespace(ctx context.Context, name string) error {
	_, err := c.Run(ctx, "codespace", "rebuild", "-c", name)
	return err
}

// SSHArgs returns the gh arguments for an SSH session, with extra ssh
// arguments appended after "--".
func SSHArgs(name string, sshArgs ...string) []string {
	args := []string{"codespace", "ssh", "-c", name}
	if len(sshArgs) > 0 {
		args = append(args, "--")
		args = append(args, sshArgs...)
	}
	return args
}

// SSH opens an interactive shell in the codespace.
func (c *Client) SSH(ctx context.Context, name string, sshArgs ...string) error {
	return c.RunInteractive(ctx, SSHArgs(name, sshArgs...)...)
}

// ExecuteRemote runs script in the codespace through bash on stdin. A
// non-zero remote exit status is reported in the result, not as an error.
func (c *Client) ExecuteRemote(ctx context.Context, name string, script []byte) (*remote.Result, error) {
	cmd := c.command(ctx, SSHArgs(name, "bash", "-s")...)
	cmd.Stdin = bytes.NewReader(script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &remote.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("remote exec on %s failed: %w", name, err)
	}
	return result, nil
}
