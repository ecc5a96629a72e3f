package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdin is shared so piped input is not lost between prompts.
var stdin = bufio.NewReader(os.Stdin)

// ErrPasswordMismatch is returned when a confirmed password differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	return confirm(stdin, StyleWarning.Render(prompt))
}

// ConfirmDanger is Confirm styled for destructive or secret-revealing actions.
func ConfirmDanger(prompt string) bool {
	return confirm(stdin, StyleError.Render("⚠ "+prompt))
}

func confirm(in *bufio.Reader, prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// ReadPassword reads a password without echo. When stdin is not a terminal
// a single line is read instead, so passwords can be piped in.
func ReadPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, StyleWarning.Render(prompt)+" ")
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimRight(line, "\r\n"), nil
	}
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// NewPassword asks for a password twice.
func NewPassword(prompt string) (string, error) {
	pw, err := ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	again, err := ReadPassword("Repeat:")
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", ErrPasswordMismatch
	}
	return pw, nil
}
