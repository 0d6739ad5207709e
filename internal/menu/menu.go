// Package menu runs numbered interactive menus on a line-oriented input.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luanzeba/gh-csm/internal/terminal"
	"pkt.systems/pslog"
)

// ExitKey leaves the current menu.
const ExitKey = 0

// Item is one numbered menu entry.
type Item struct {
	Key   int
	Label string
	Run   func(ctx context.Context) error
}

// Menu is a titled list of items. Exit labels the 0 entry and defaults to
// "Exit".
type Menu struct {
	Title string
	Items []Item
	Exit  string
}

func (m Menu) find(key int) (Item, bool) {
	for _, item := range m.Items {
		if item.Key == key {
			return item, true
		}
	}
	return Item{}, false
}

// Session shares one reader and printer between a menu and its handlers,
// so prompts inside handlers consume the same input stream.
type Session struct {
	in *bufio.Reader
	p  *terminal.Printer
}

// NewSession reads choices from in and writes menus to out.
func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewReader(in), p: terminal.NewPrinter(out)}
}

// Printer returns the session's status printer.
func (s *Session) Printer() *terminal.Printer {
	return s.p
}

// Run displays m until the user picks 0 or input ends. Invalid choices and
// handler failures are reported and the menu is shown again.
func (s *Session) Run(ctx context.Context, m Menu) error {
	log := pslog.Ctx(ctx).With("menu", m.Title)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.render(m)

		line, err := s.readLine()
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(s.p.Writer())
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		choice, convErr := strconv.Atoi(line)
		if convErr != nil {
			s.p.Failure("Invalid choice %q. Enter a number from the menu.", line)
			continue
		}
		if choice == ExitKey {
			return nil
		}

		item, ok := m.find(choice)
		if !ok {
			s.p.Failure("Invalid choice %d. Enter a number from the menu.", choice)
			continue
		}

		log.Debug("menu choice", "key", item.Key, "label", item.Label)
		if err := item.Run(ctx); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			}
			s.p.Failure("%v", err)
		}
	}
}

func (s *Session) render(m Menu) {
	fmt.Fprintln(s.p.Writer())
	s.p.Heading(m.Title)

	width := len(strconv.Itoa(ExitKey))
	for _, item := range m.Items {
		if w := len(strconv.Itoa(item.Key)); w > width {
			width = w
		}
	}
	for _, item := range m.Items {
		fmt.Fprintf(s.p.Writer(), "  %s %s\n", s.p.Key(strconv.Itoa(item.Key), width), item.Label)
	}
	exit := m.Exit
	if exit == "" {
		exit = "Exit"
	}
	fmt.Fprintf(s.p.Writer(), "  %s %s\n", s.p.Key(strconv.Itoa(ExitKey), width), exit)
	s.p.Prompt("Choose an option:")
}

// readLine returns the next trimmed line. io.EOF is returned with whatever
// was read before it.
func (s *Session) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	return strings.TrimSpace(line), err
}

// Prompt asks question and returns the answer, or def when the answer is
// empty. io.EOF is returned when input ends before a line is read.
func (s *Session) Prompt(question, def string) (string, error) {
	if def != "" {
		s.p.Prompt(fmt.Sprintf("%s [%s]:", question, def))
	} else {
		s.p.Prompt(question + ":")
	}

	line, err := s.readLine()
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Require prompts until a non-empty answer is given.
func (s *Session) Require(question string) (string, error) {
	for {
		answer, err := s.Prompt(question, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		s.p.Warning("A value is required.")
	}
}

// Confirm asks a yes/no question.
func (s *Session) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := s.Prompt(question+" ("+hint+")", "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		s.p.Warning("Please answer y or n.")
	}
}

// Choose lists options numbered from 1 and returns the chosen index.
// Choosing 0 returns -1.
func (s *Session) Choose(question string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	width := len(strconv.Itoa(len(options)))
	for i, opt := range options {
		fmt.Fprintf(s.p.Writer(), "  %s %s\n", s.p.Key(strconv.Itoa(i+1), width), opt)
	}
	fmt.Fprintf(s.p.Writer(), "  %s %s\n", s.p.Key("0", width), "Cancel")

	for {
		answer, err := s.Prompt(question, "")
		if err != nil {
			return -1, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 0 && n <= len(options) {
			return n - 1, nil
		}
		s.p.Failure("Please enter a number between 0 and %d.", len(options))
	}
}
