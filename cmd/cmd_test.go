package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luanzeba/gh-csm/internal/branch"
	"github.com/luanzeba/gh-csm/internal/config"
	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/state"
	"github.com/luanzeba/gh-csm/internal/terminal"
)

// useFakeGH points the package's client at a shell script standing in
// for gh and returns the printer's output buffer.
func useFakeGH(t *testing.T, body string) *bytes.Buffer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.Repos["acme/widgets"] = config.Repo{Alias: "w"}
	cli = &app{
		cfg: cfg,
		gh:  &gh.Client{Binary: path},
		out: terminal.NewPrinter(&out),
	}
	t.Cleanup(func() { cli = nil })
	return &out
}

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"menu"}, {"create"}, {"resolve"}, {"list"}, {"start"}, {"stop"},
		{"delete"}, {"rebuild"}, {"ssh"}, {"exec"}, {"select"}, {"get"},
		{"repo", "create"}, {"repo", "list"}, {"repo", "view"}, {"repo", "clone"},
		{"repo", "fork"}, {"repo", "archive"}, {"repo", "delete"},
		{"metrics"}, {"auth", "status"}, {"auth", "login"}, {"config"},
		{"auth", "ssh-key", "generate"}, {"auth", "ssh-key", "add"}, {"auth", "ssh-key", "test"},
		{"branch", "create"}, {"branch", "list"}, {"branch", "delete"},
		{"pr", "create"}, {"pr", "list"}, {"pr", "merge"},
		{"issue", "create"}, {"issue", "list"},
	} {
		found, _, err := rootCmd.Find(path)
		if err != nil || found == rootCmd {
			t.Errorf("command %q not registered", strings.Join(path, " "))
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{&ExitError{Code: 4}, 4},
		{fmt.Errorf("wrapped: %w", &ExitError{Code: 2}), 2},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestReadScript(t *testing.T) {
	got, err := readScript("-", strings.NewReader("echo hi\n"))
	if err != nil || string(got) != "echo hi\n" {
		t.Errorf("readScript(-) = (%q, %v)", got, err)
	}

	path := filepath.Join(t.TempDir(), "setup.sh")
	if err := os.WriteFile(path, []byte("make\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = readScript(path, nil)
	if err != nil || string(got) != "make\n" {
		t.Errorf("readScript(file) = (%q, %v)", got, err)
	}

	if _, err := readScript(filepath.Join(t.TempDir(), "missing.sh"), nil); err == nil {
		t.Error("readScript() of a missing file should fail")
	}
}

func TestResolveRepo(t *testing.T) {
	useFakeGH(t, "exit 0")

	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"w", "acme/widgets", false},
		{"acme/api", "acme/api", false},
		{"widgets", "", true},
	}
	for _, tt := range tests {
		got, err := resolveRepo(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveRepo(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveRepo(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}
	if _, err := resolveRepo("widgets"); !errors.Is(err, branch.ErrInvalidRepo) {
		t.Errorf("resolveRepo(widgets) error = %v, want ErrInvalidRepo", err)
	}
}

func runExecWith(t *testing.T, script string, json bool) (stdout, stderr string, err error) {
	t.Helper()
	execScript = "-"
	execJSON = json
	t.Cleanup(func() { execScript, execJSON = "", false })

	var out, errOut bytes.Buffer
	execCmd.SetContext(context.Background())
	execCmd.SetIn(strings.NewReader(script))
	execCmd.SetOut(&out)
	execCmd.SetErr(&errOut)

	err = runExec(execCmd, []string{"acme-widgets-x7q9"})
	return out.String(), errOut.String(), err
}

func TestExecPassesThroughExitCode(t *testing.T) {
	useFakeGH(t, `cat >/dev/null; echo built; echo warning >&2; exit 3`)

	stdout, stderr, err := runExecWith(t, "make\n", false)
	if ExitCode(err) != 3 {
		t.Fatalf("runExec() error = %v, want exit status 3", err)
	}
	if stdout != "built\n" {
		t.Errorf("stdout = %q, want %q", stdout, "built\n")
	}
	if stderr != "warning\n" {
		t.Errorf("stderr = %q, want %q", stderr, "warning\n")
	}
}

func TestExecJSON(t *testing.T) {
	useFakeGH(t, `cat; exit 0`)

	stdout, _, err := runExecWith(t, "echo hi\n", true)
	if err != nil {
		t.Fatalf("runExec() failed: %v", err)
	}
	want := `{"stdout":"echo hi\n","stderr":"","exit_code":0}`
	if strings.TrimSpace(stdout) != want {
		t.Errorf("stdout = %s, want %s", stdout, want)
	}
}

func TestDeleteCodespacesClearsSelection(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	out := useFakeGH(t, `case "$4" in bad) echo "HTTP 500" >&2; exit 1;; esac`)

	if err := state.Set("acme-widgets-x7q9"); err != nil {
		t.Fatal(err)
	}

	err := deleteCodespaces(context.Background(), []string{"acme-widgets-x7q9", "bad"})
	if err == nil || !strings.Contains(err.Error(), "failed to delete 1 codespace") {
		t.Errorf("deleteCodespaces() error = %v, want one failure", err)
	}
	if _, err := state.Get(); !errors.Is(err, state.ErrNoCodespace) {
		t.Errorf("selection not cleared after deleting it: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted acme-widgets-x7q9") {
		t.Errorf("output missing success line:\n%s", out.String())
	}
}

func TestCreateOptionsFromConfig(t *testing.T) {
	useFakeGH(t, "exit 0")
	yes := true
	cli.cfg.Repos["acme/api"] = config.Repo{Machine: "premiumLinux64gb", Branch: "develop", DefaultPermissions: &yes}

	opts := createOptions("acme/api")
	if opts.Machine != "premiumLinux64gb" || opts.Branch != "develop" || !opts.DefaultPermissions {
		t.Errorf("createOptions(acme/api) = %+v", opts)
	}
	if opts.Location != "EuropeWest" {
		t.Errorf("location = %q, want EuropeWest", opts.Location)
	}

	opts = createOptions("acme/other")
	if opts.Branch != "" {
		t.Errorf("unconfigured repo branch = %q, want empty", opts.Branch)
	}
}

func runMenuWith(t *testing.T, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	menuCmd.SetContext(context.Background())
	menuCmd.SetIn(strings.NewReader(input))
	menuCmd.SetOut(&out)
	t.Cleanup(func() {
		menuCmd.SetIn(nil)
		menuCmd.SetOut(nil)
	})

	err := runMenu(menuCmd, nil)
	return out.String(), err
}

func TestMenuExitAndInvalidChoice(t *testing.T) {
	useFakeGH(t, "exit 0")

	tests := []struct {
		name      string
		input     string
		wantMenus int
		wantError bool
	}{
		{"exit", "0\n", 1, false},
		{"unknown choice redisplays", "99\n0\n", 2, true},
		{"end of input exits", "", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runMenuWith(t, tt.input)
			if err != nil {
				t.Fatalf("runMenu() error = %v, want nil (exit status 0)", err)
			}
			if ExitCode(err) != 0 {
				t.Errorf("ExitCode = %d, want 0", ExitCode(err))
			}
			if got := strings.Count(out, "GitHub Codespaces Manager"); got != tt.wantMenus {
				t.Errorf("menu shown %d times, want %d:\n%s", got, tt.wantMenus, out)
			}
			if got := strings.Contains(out, "Invalid choice 99"); got != tt.wantError {
				t.Errorf("error line shown = %v, want %v:\n%s", got, tt.wantError, out)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{"#7", 7, false},
		{" 3 ", 3, false},
		{"0", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.arg)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseNumber(%q) = (%d, %v), want %d, wantErr %v", tt.arg, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestOptionalRepo(t *testing.T) {
	useFakeGH(t, "exit 0")

	if got, err := optionalRepo(""); err != nil || got != "" {
		t.Errorf("optionalRepo(\"\") = (%q, %v), want empty", got, err)
	}
	if got, err := optionalRepo("w"); err != nil || got != "acme/widgets" {
		t.Errorf("optionalRepo(w) = (%q, %v), want acme/widgets", got, err)
	}
	if _, err := optionalRepo("widgets"); !errors.Is(err, branch.ErrInvalidRepo) {
		t.Errorf("optionalRepo(widgets) error = %v, want ErrInvalidRepo", err)
	}
}

func TestMergePRFromMenu(t *testing.T) {
	useFakeGH(t, `case "$*" in
  "pr merge 7 --rebase --repo acme/widgets") exit 0 ;;
  *) echo "unexpected: $*" >&2; exit 1 ;;
esac`)
	cli.cfg.Defaults.AutoConfirm = true

	// branch/PR menu, merge, alias, number, method, back, exit
	out, err := runMenuWith(t, "3\n6\nw\n#7\nrebase\n0\n0\n")
	if err != nil {
		t.Fatalf("runMenu() failed: %v", err)
	}
	if !strings.Contains(out, "Pull request #7 merged") {
		t.Errorf("merge not reported:\n%s", out)
	}
}
