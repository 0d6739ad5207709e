// Package terminal renders status lines, tables, pickers and tab titles.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// TitleFields are the values substituted into a title template.
type TitleFields struct {
	Repo   string
	Branch string
	Name   string
	State  string
}

// DefaultTitleFormat is used when no template is configured.
const DefaultTitleFormat = "CS: {short_repo}:{branch}"

// SetTabTitle writes the OSC 1 sequence that sets the tab title.
func SetTabTitle(w io.Writer, title string) {
	fmt.Fprintf(w, "\033]1;%s\007", title)
}

// FormatTitle formats a title string using the provided template.
// Supported placeholders:
//   - {repo}: repository name (e.g., "acme/widgets")
//   - {short_repo}: short repository name (e.g., "widgets")
//   - {branch}: branch name
//   - {name}: codespace name
//   - {state}: codespace state
func FormatTitle(template string, f TitleFields) string {
	if template == "" {
		template = DefaultTitleFormat
	}

	shortRepo := f.Repo
	if i := strings.LastIndex(f.Repo, "/"); i >= 0 {
		shortRepo = f.Repo[i+1:]
	}

	return strings.NewReplacer(
		"{repo}", f.Repo,
		"{short_repo}", shortRepo,
		"{branch}", f.Branch,
		"{name}", f.Name,
		"{state}", f.State,
	).Replace(template)
}

// supportedPrograms understand OSC title sequences.
var supportedPrograms = []string{
	"ghostty",
	"iTerm.app",
	"Apple_Terminal",
	"WezTerm",
	"Alacritty",
	"kitty",
	"vscode",
}

// SupportsTitles reports whether the terminal described by termProgram and
// term accepts OSC title sequences.
func SupportsTitles(termProgram, term string) bool {
	for _, t := range supportedPrograms {
		if termProgram == t || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	// most xterm-compatible terminals support OSC
	return strings.HasPrefix(term, "xterm") || strings.HasPrefix(term, "tmux")
}

// MaybeSetTabTitle sets the title on stdout when it is a capable terminal.
func MaybeSetTabTitle(template string, f TitleFields) {
	if !IsTerminal(os.Stdout) || !SupportsTitles(os.Getenv("TERM_PROGRAM"), os.Getenv("TERM")) {
		return
	}
	SetTabTitle(os.Stdout, FormatTitle(template, f))
}
