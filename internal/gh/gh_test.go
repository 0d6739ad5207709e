package gh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeGH writes a shell script standing in for the gh binary.
func fakeGH(t *testing.T, body string) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write fake gh: %v", err)
	}
	return &Client{Binary: path}
}

func TestParseCodespaces(t *testing.T) {
	data := []byte(`[{
		"name": "super-robot-123",
		"displayName": "super robot",
		"state": "Available",
		"repository": "acme/widgets",
		"gitStatus": {"ref": "main"},
		"machineName": "basicLinux32gb",
		"createdAt": "2026-01-02T03:04:05Z",
		"lastUsedAt": "2026-01-02T05:04:05Z"
	}]`)

	codespaces, err := ParseCodespaces(data)
	if err != nil {
		t.Fatalf("ParseCodespaces() failed: %v", err)
	}
	if len(codespaces) != 1 {
		t.Fatalf("ParseCodespaces() returned %d codespaces, want 1", len(codespaces))
	}

	cs := codespaces[0]
	if cs.Name != "super-robot-123" || cs.Repository != "acme/widgets" || cs.Branch != "main" {
		t.Errorf("ParseCodespaces() = %+v", cs)
	}
	want := time.Date(2026, 1, 2, 5, 4, 5, 0, time.UTC)
	if !cs.LastUsedAt.Equal(want) {
		t.Errorf("LastUsedAt = %v, want %v", cs.LastUsedAt, want)
	}
}

func TestParseRepository(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"configured default", `{"nameWithOwner":"acme/widgets","defaultBranchRef":{"name":"trunk"}}`, "trunk"},
		{"null default", `{"nameWithOwner":"acme/empty-repo","defaultBranchRef":null,"isEmpty":true}`, ""},
		{"empty name", `{"nameWithOwner":"acme/empty-repo","defaultBranchRef":{"name":""}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := ParseRepository([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseRepository() failed: %v", err)
			}
			if repo.DefaultBranch != tt.want {
				t.Errorf("DefaultBranch = %q, want %q", repo.DefaultBranch, tt.want)
			}
		})
	}
}

func TestViewRepoNotFound(t *testing.T) {
	c := fakeGH(t, `echo "GraphQL: Could not resolve to a Repository with the name 'acme/nope'. (repository)" >&2; exit 1`)

	_, err := c.ViewRepo(context.Background(), "acme/nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ViewRepo() error = %v, want ErrNotFound", err)
	}
}

func TestViewRepoOtherFailure(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
	}{
		{"network", "error connecting to api.github.com"},
		{"missing binary", "git: command not found"},
		{"missing template", "error: license template not found"},
		{"server error", "gh: Not Found in cache, retry (HTTP 502)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeGH(t, `echo "`+tt.stderr+`" >&2; exit 1`)

			_, err := c.ViewRepo(context.Background(), "acme/widgets")
			if err == nil {
				t.Fatal("ViewRepo() should fail")
			}
			if errors.Is(err, ErrNotFound) {
				t.Errorf("ViewRepo() error = %v, should not be ErrNotFound", err)
			}
			if !strings.Contains(err.Error(), tt.stderr) {
				t.Errorf("ViewRepo() error = %v, should include stderr", err)
			}
		})
	}
}

func TestBranchExists(t *testing.T) {
	c := fakeGH(t, `case "$2" in
  repos/acme/widgets/branches/master) exit 0 ;;
  repos/acme/empty/branches/*) echo "gh: Git Repository is empty. (HTTP 409)" >&2; exit 1 ;;
  repos/acme/broken/branches/*) echo "gh: Server Error (HTTP 500)" >&2; exit 1 ;;
  *) echo "gh: Branch not found (HTTP 404)" >&2; exit 1 ;;
esac`)
	ctx := context.Background()

	tests := []struct {
		repo    string
		branch  string
		want    bool
		wantErr bool
	}{
		{"acme/widgets", "master", true, false},
		{"acme/widgets", "main", false, false},
		{"acme/empty", "main", false, false},
		{"acme/broken", "main", false, true},
	}

	for _, tt := range tests {
		got, err := c.BranchExists(ctx, tt.repo, tt.branch)
		if (err != nil) != tt.wantErr {
			t.Errorf("BranchExists(%s, %s) error = %v, wantErr %v", tt.repo, tt.branch, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("BranchExists(%s, %s) = %v, want %v", tt.repo, tt.branch, got, tt.want)
		}
	}
}

func TestCreateOptionsArgs(t *testing.T) {
	opts := CreateOptions{
		Repo:               "acme/widgets",
		Branch:             "main",
		Machine:            "basicLinux32gb",
		Devcontainer:       ".devcontainer/devcontainer.json",
		IdleTimeout:        30 * time.Minute,
		DefaultPermissions: true,
	}

	want := []string{
		"codespace", "create", "-R", "acme/widgets",
		"-b", "main",
		"-m", "basicLinux32gb",
		"--devcontainer-path", ".devcontainer/devcontainer.json",
		"--idle-timeout", "30m0s",
		"--default-permissions",
		"--status",
	}
	if got := opts.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestCreateCodespaceTrimsName(t *testing.T) {
	c := fakeGH(t, `echo "  acme-widgets-x7q9  "`)

	name, err := c.CreateCodespace(context.Background(), CreateOptions{Repo: "acme/widgets", Branch: "main"})
	if err != nil {
		t.Fatalf("CreateCodespace() failed: %v", err)
	}
	if name != "acme-widgets-x7q9" {
		t.Errorf("CreateCodespace() = %q, want acme-widgets-x7q9", name)
	}
}

func TestGetCodespaceNotFound(t *testing.T) {
	c := fakeGH(t, `echo '[{"name":"other","repository":"acme/widgets"}]'`)

	_, err := c.GetCodespace(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCodespace() error = %v, want ErrNotFound", err)
	}

	exists, err := c.CodespaceExists(context.Background(), "other")
	if err != nil || !exists {
		t.Errorf("CodespaceExists(other) = %v, %v; want true, nil", exists, err)
	}
}

func TestExecuteRemote(t *testing.T) {
	c := fakeGH(t, `script=$(cat)
echo "ran: $script"
echo "warning" >&2
exit 4`)

	res, err := c.ExecuteRemote(context.Background(), "acme-widgets-x7q9", []byte("uname -a"))
	if err != nil {
		t.Fatalf("ExecuteRemote() failed: %v", err)
	}
	if res.ExitCode != 4 {
		t.Errorf("ExitCode = %d, want 4", res.ExitCode)
	}
	if res.Stdout != "ran: uname -a\n" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if res.Stderr != "warning\n" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}

func TestNewClientSetsToken(t *testing.T) {
	c := NewClient("ghp_secret")
	fake := fakeGH(t, `echo "$GH_TOKEN"`)
	c.Binary = fake.Binary

	res, err := c.Run(context.Background(), "auth", "token")
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got := strings.TrimSpace(string(res.Stdout)); got != "ghp_secret" {
		t.Errorf("GH_TOKEN = %q, want ghp_secret", got)
	}
}

func TestAuthStatusLoggedOut(t *testing.T) {
	c := fakeGH(t, `echo "You are not logged into any GitHub hosts." >&2; exit 1`)

	if _, err := c.AuthStatus(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("AuthStatus() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestRepoCreateOptionsArgs(t *testing.T) {
	got := RepoCreateOptions{Name: "demo", Visibility: "Public", AddReadme: true, License: "mit"}.Args()
	want := []string{"repo", "create", "demo", "--public", "--add-readme", "--license", "mit"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}

	got = RepoCreateOptions{Name: "demo"}.Args()
	want = []string{"repo", "create", "demo", "--private"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() default visibility = %v, want %v", got, want)
	}
}

func TestRepoFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/widgets", "acme/widgets"},
		{"https://github.com/acme/widgets.git\n", "acme/widgets"},
		{"https://github.com/acme", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RepoFromURL(tt.url); got != tt.want {
			t.Errorf("RepoFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
