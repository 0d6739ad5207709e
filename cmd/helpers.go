package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/luanzeba/gh-csm/internal/branch"
	"github.com/luanzeba/gh-csm/internal/codespace"
	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/seed"
	"github.com/luanzeba/gh-csm/internal/state"
	"github.com/luanzeba/gh-csm/internal/terminal"
	"pkt.systems/pslog"
)

// PrintError reports a failed command on stderr, with a hint for the
// failures users can fix themselves.
func PrintError(err error) {
	p := terminal.NewPrinter(os.Stderr)
	p.Failure("%v", err)

	switch {
	case errors.Is(err, gh.ErrNotAuthenticated):
		p.Info("Run 'gh auth login' and try again.")
	case errors.Is(err, branch.ErrRepoNotFound):
		p.Info("Check the repository name and that your token can see it.")
	case errors.Is(err, state.ErrNoCodespace):
		p.Info("Use 'gh csm select' or pass a codespace name.")
	}
}

// resolveRepo expands aliases and rejects anything that is not owner/name.
func resolveRepo(arg string) (string, error) {
	repo := cli.cfg.ResolveAlias(arg)
	if err := branch.ValidateRepo(repo); err != nil {
		return "", err
	}
	return repo, nil
}

// pushToken is the credential used to seed empty repositories.
func pushToken(ctx context.Context) (string, error) {
	if token := cli.creds.ActiveToken(); token != "" {
		return token, nil
	}
	return cli.gh.AuthToken(ctx)
}

func newResolver() *branch.Resolver {
	seeder := &seed.Seeder{
		Token:  pushToken,
		Author: seed.Author{Name: cli.cfg.Author.Name, Email: cli.cfg.Author.Email},
	}
	return branch.NewResolver(cli.gh, seeder)
}

func newCreator() *codespace.Creator {
	return codespace.NewCreator(cli.gh, newResolver())
}

// createOptions fills the codespace settings for repo from the config.
func createOptions(repo string) gh.CreateOptions {
	return gh.CreateOptions{
		Repo:               repo,
		Branch:             cli.cfg.GetEffectiveBranch(repo),
		Machine:            cli.cfg.GetEffectiveMachine(repo),
		Location:           cli.cfg.Defaults.Location,
		Devcontainer:       cli.cfg.GetEffectiveDevcontainer(repo),
		IdleTimeout:        cli.cfg.IdleTimeout(),
		DefaultPermissions: cli.cfg.GetEffectiveDefaultPermissions(repo),
	}
}

// afterCreate remembers the new codespace and runs post-create hooks.
func afterCreate(ctx context.Context, name, repo, branchName string) {
	if err := state.Set(name); err != nil {
		cli.out.Warning("failed to save current codespace: %v", err)
	}

	fields := terminal.TitleFields{Repo: repo, Branch: branchName, Name: name}
	for _, hook := range cli.cfg.Hooks.PostCreate {
		if err := runHook(ctx, hook, fields); err != nil {
			cli.out.Warning("hook failed: %v", err)
		}
	}
}

// runHook executes a hook command with placeholder substitution.
// Supported placeholders: {name}, {repo}, {branch}, {short_repo}
func runHook(ctx context.Context, hook string, f terminal.TitleFields) error {
	command := terminal.FormatTitle(hook, f)
	cli.out.Info("Running hook: %s", command)
	pslog.Ctx(ctx).Debug("running hook", "command", command, "codespace", f.Name)

	hookCmd := exec.CommandContext(ctx, "sh", "-c", command)
	hookCmd.Env = append(os.Environ(), "CSM_CODESPACE="+f.Name)
	hookCmd.Stdout = os.Stdout
	hookCmd.Stderr = os.Stderr
	return hookCmd.Run()
}

// codespaceArg returns the codespace named in args, the current selection,
// or one picked interactively.
func codespaceArg(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}

	name, err := state.Get()
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, state.ErrNoCodespace) {
		return "", err
	}
	if !terminal.IsInteractive() {
		return "", fmt.Errorf("no codespace specified: %w", state.ErrNoCodespace)
	}

	picked, err := pickCodespaces(ctx, "Select a codespace", false)
	if err != nil {
		return "", err
	}
	return picked[0], nil
}

// pickCodespaces lets the user choose from the codespace list with fzf or
// the built-in picker, depending on terminal.picker.
func pickCodespaces(ctx context.Context, title string, multi bool) ([]string, error) {
	codespaces, err := cli.gh.ListCodespaces(ctx)
	if err != nil {
		return nil, err
	}
	if len(codespaces) == 0 {
		return nil, fmt.Errorf("no codespaces found")
	}

	if useFzf() {
		return fzfCodespaces(ctx, title, codespaces, multi)
	}

	options := make([]terminal.Option, len(codespaces))
	for i, cs := range codespaces {
		options[i] = terminal.Option{Label: codespaceLabel(cs), Value: cs.Name}
	}
	if multi {
		return terminal.PickMany(os.Stdin, os.Stdout, title, options)
	}
	name, err := terminal.Pick(os.Stdin, os.Stdout, title, options)
	if err != nil {
		return nil, err
	}
	return []string{name}, nil
}

func useFzf() bool {
	switch cli.cfg.Terminal.Picker {
	case "builtin":
		return false
	case "fzf":
		return true
	}
	_, err := exec.LookPath("fzf")
	return err == nil
}

func codespaceLabel(cs gh.Codespace) string {
	return fmt.Sprintf("%s  %s:%s  %s", cs.Name, cs.Repository, cs.Branch, cs.State)
}

func fzfCodespaces(ctx context.Context, title string, codespaces []gh.Codespace, multi bool) ([]string, error) {
	// Build fzf input: "name | repo | branch | state"
	var lines []string
	for _, cs := range codespaces {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s", cs.Name, cs.Repository, cs.Branch, cs.State))
	}

	args := []string{
		"--header", title,
		"--delimiter", "\t",
		"--with-nth", "2,3,4",
		"--preview", "gh cs view -c {1}",
		"--preview-window", "right:50%:wrap",
	}
	if multi {
		args = append([]string{"--multi"}, args...)
	}

	fzfCmd := exec.CommandContext(ctx, "fzf", args...)
	fzfCmd.Stdin = strings.NewReader(strings.Join(lines, "\n"))
	fzfCmd.Stderr = os.Stderr

	output, err := fzfCmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			return nil, terminal.ErrCancelled
		}
		return nil, fmt.Errorf("fzf failed: %w", err)
	}

	var selected []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if name, _, _ := strings.Cut(line, "\t"); name != "" {
			selected = append(selected, name)
		}
	}
	if len(selected) == 0 {
		return nil, terminal.ErrCancelled
	}
	return selected, nil
}

// setTabTitle sets the terminal title for cs when enabled in the config.
func setTabTitle(cs *gh.Codespace) {
	if !cli.cfg.Terminal.SetTabTitle {
		return
	}
	terminal.MaybeSetTabTitle(cli.cfg.Terminal.TitleFormat, terminal.TitleFields{
		Repo:   cs.Repository,
		Branch: cs.Branch,
		Name:   cs.Name,
		State:  cs.State,
	})
}
