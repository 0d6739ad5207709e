package terminal

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var testOptions = []Option{
	{Label: "acme-widgets-x7q9  acme/widgets:main", Value: "acme-widgets-x7q9"},
	{Label: "acme-api-p2k1  acme/api:develop", Value: "acme-api-p2k1"},
	{Label: "acme-docs-r8m3  acme/docs:main", Value: "acme-docs-r8m3"},
}

func press(m pickerModel, keys ...tea.KeyMsg) pickerModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(pickerModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyJ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
)

func TestPickerSingleSelect(t *testing.T) {
	m := press(newPickerModel("Select a codespace", testOptions, false), keyDown, keyJ, keyUp, keyEnter)

	if !m.done {
		t.Fatal("picker not done after enter")
	}
	if got := m.chosen(); !reflect.DeepEqual(got, []string{"acme-api-p2k1"}) {
		t.Errorf("chosen() = %v, want [acme-api-p2k1]", got)
	}
}

func TestPickerCursorStaysInBounds(t *testing.T) {
	m := press(newPickerModel("", testOptions, false), keyUp, keyUp)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after moving up from top, want 0", m.cursor)
	}

	m = press(m, keyDown, keyDown, keyDown, keyDown)
	if m.cursor != len(testOptions)-1 {
		t.Errorf("cursor = %d after moving past bottom, want %d", m.cursor, len(testOptions)-1)
	}
}

func TestPickerMultiSelect(t *testing.T) {
	m := press(newPickerModel("Delete codespaces", testOptions, true),
		keySpace, keyDown, keyDown, keySpace, keyEnter)

	want := []string{"acme-widgets-x7q9", "acme-docs-r8m3"}
	if got := m.chosen(); !reflect.DeepEqual(got, want) {
		t.Errorf("chosen() = %v, want %v", got, want)
	}
}

func TestPickerToggleTwiceDeselects(t *testing.T) {
	m := press(newPickerModel("", testOptions, true), keySpace, keySpace, keyEnter)
	if got := m.chosen(); len(got) != 0 {
		t.Errorf("chosen() = %v, want none", got)
	}
}

func TestPickerCancel(t *testing.T) {
	m := press(newPickerModel("", testOptions, false), keyDown, keyEsc)
	if !m.cancelled {
		t.Error("picker not cancelled after esc")
	}
	if m.View() != "" {
		t.Error("cancelled picker should render nothing")
	}
}

func TestPickerView(t *testing.T) {
	view := newPickerModel("Select a codespace", testOptions, true).View()

	if !strings.HasPrefix(view, "Select a codespace\n") {
		t.Errorf("view does not start with title:\n%s", view)
	}
	for _, opt := range testOptions {
		if !strings.Contains(view, opt.Label) {
			t.Errorf("view missing %q", opt.Label)
		}
	}
	if !strings.Contains(view, "space toggle") {
		t.Errorf("multi-select view missing toggle hint:\n%s", view)
	}
}
