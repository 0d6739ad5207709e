package terminal

import (
	"bytes"
	"testing"
)

func TestFormatTitle(t *testing.T) {
	fields := TitleFields{Repo: "acme/widgets", Branch: "main", Name: "super-robot", State: "Available"}

	tests := []struct {
		name     string
		template string
		fields   TitleFields
		want     string
	}{
		{"full format", "CS: {repo}:{branch}", fields, "CS: acme/widgets:main"},
		{"short repo", "CS: {short_repo}:{branch}", fields, "CS: widgets:main"},
		{"name only", "{name}", fields, "super-robot"},
		{"state", "{name} [{state}]", fields, "super-robot [Available]"},
		{"default template", "", fields, "CS: widgets:main"},
		{"no owner", "{short_repo}", TitleFields{Repo: "widgets"}, "widgets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTitle(tt.template, tt.fields)
			if got != tt.want {
				t.Errorf("FormatTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetTabTitle(t *testing.T) {
	var buf bytes.Buffer
	SetTabTitle(&buf, "CS: widgets:main")
	if got, want := buf.String(), "\033]1;CS: widgets:main\007"; got != want {
		t.Errorf("SetTabTitle() wrote %q, want %q", got, want)
	}
}

func TestSupportsTitles(t *testing.T) {
	tests := []struct {
		program string
		term    string
		want    bool
	}{
		{"ghostty", "", true},
		{"", "xterm-256color", true},
		{"", "xterm-ghostty", true},
		{"", "tmux-256color", true},
		{"", "dumb", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := SupportsTitles(tt.program, tt.term); got != tt.want {
			t.Errorf("SupportsTitles(%q, %q) = %v, want %v", tt.program, tt.term, got, tt.want)
		}
	}
}
