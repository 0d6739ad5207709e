package terminal

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes colored status lines. Color is dropped automatically when
// the writer is not a terminal.
type Printer struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	heading lipgloss.Style
	key     lipgloss.Style
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		info:    r.NewStyle().Foreground(lipgloss.Color("4")),
		heading: r.NewStyle().Bold(true),
		key:     r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Success prints a green "✓" line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Failure prints a red "✗" line.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.w, p.failure.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warning prints a yellow "⚠" line.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintln(p.w, p.warning.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// Info prints a blue line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, p.info.Render(fmt.Sprintf(format, args...)))
}

// Heading prints a bold line.
func (p *Printer) Heading(text string) {
	fmt.Fprintln(p.w, p.heading.Render(text))
}

// Prompt prints a question without a trailing newline.
func (p *Printer) Prompt(text string) {
	fmt.Fprint(p.w, p.info.Render("? "+text)+" ")
}

// Key renders a menu key, right aligned to width.
func (p *Printer) Key(key string, width int) string {
	return p.key.Render(fmt.Sprintf("%*s.", width, key))
}
