package terminal

import (
	"errors"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ErrCancelled is returned when the user leaves a picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

const maxLabelWidth = 72

// Option is a single picker entry.
type Option struct {
	Label string
	Value string
}

// pickerModel is the bubbletea model behind Pick and PickMany.
type pickerModel struct {
	title     string
	options   []Option
	cursor    int
	multi     bool
	selected  map[int]bool
	done      bool
	cancelled bool

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

func newPickerModel(title string, options []Option, multi bool) pickerModel {
	return pickerModel{
		title:         title,
		options:       options,
		multi:         multi,
		selected:      map[int]bool{},
		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		hintStyle:     lipgloss.NewStyle().Faint(true),
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case " ", "tab":
		if m.multi {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.title)
	b.WriteString("\n\n")

	for i, opt := range m.options {
		label := runewidth.Truncate(opt.Label, maxLabelWidth, "…")

		prefix := "  "
		if i == m.cursor {
			prefix = m.cursorStyle.Render("> ")
		}
		if m.multi {
			box := "[ ] "
			if m.selected[i] {
				box = m.selectedStyle.Render("[x] ")
			}
			prefix += box
		}
		if i == m.cursor {
			label = m.cursorStyle.Render(label)
		}
		b.WriteString(prefix + label + "\n")
	}

	hint := "↑/↓ move • enter select • esc cancel"
	if m.multi {
		hint = "↑/↓ move • space toggle • enter confirm • esc cancel"
	}
	b.WriteString("\n" + m.hintStyle.Render(hint) + "\n")
	return b.String()
}

// chosen returns the picked values in list order.
func (m pickerModel) chosen() []string {
	if !m.multi {
		return []string{m.options[m.cursor].Value}
	}
	var values []string
	for i, opt := range m.options {
		if m.selected[i] {
			values = append(values, opt.Value)
		}
	}
	return values
}

func runPicker(in io.Reader, out io.Writer, m pickerModel) ([]string, error) {
	if len(m.options) == 0 {
		return nil, errors.New("nothing to choose from")
	}

	final, err := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, err
	}

	result := final.(pickerModel)
	if result.cancelled || !result.done {
		return nil, ErrCancelled
	}
	return result.chosen(), nil
}

// Pick shows options and returns the value of the one the user selects.
func Pick(in io.Reader, out io.Writer, title string, options []Option) (string, error) {
	values, err := runPicker(in, out, newPickerModel(title, options, false))
	if err != nil {
		return "", err
	}
	return values[0], nil
}

// PickMany shows options with checkboxes and returns the toggled values.
func PickMany(in io.Reader, out io.Writer, title string, options []Option) ([]string, error) {
	return runPicker(in, out, newPickerModel(title, options, true))
}
