package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompt reads one trimmed line. A final line without newline is accepted.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	_, err := fmt.Fprintf(w, "%s: ", label)
	if err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo on a terminal and falls back to a plain
// line when input is piped.
func promptPassword(r *bufio.Reader, w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return prompt(r, w, "Password")
	}

	_, err := fmt.Fprint(w, "Password: ")
	if err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// valueOrPrompt keeps a flag value when set and asks otherwise.
func valueOrPrompt(r *bufio.Reader, w io.Writer, value, label string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	return prompt(r, w, label)
}
