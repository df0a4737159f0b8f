/*
Package input reads user input (lines and passwords) for CLI commands.
*/
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal is a terminal used for input. If `nil`, stdin is used.
var Terminal *term.Terminal

// ReadWriter combines a reader and a writer into a terminal backend.
type ReadWriter struct {
	io.Reader
	io.Writer
}

// ReadLine reads line from the input without trailing '\n'.
func ReadLine(prompt string) (string, error) {
	if Terminal != nil {
		_, err := Terminal.Write([]byte(prompt))
		if err != nil {
			return "", err
		}
		raw, err := Terminal.ReadLine()
		return strings.TrimRight(raw, "\r\n"), err
	}
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword reads user password with prompt. Echo is disabled when stdin
// is a terminal, piped input is read as a line.
func ReadPassword(prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine(prompt)
	}
	fmt.Fprint(os.Stderr, prompt)
	rawPass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(string(rawPass), "\r\n"), nil
}

// ConfirmPassword asks for a new password twice.
func ConfirmPassword(prompt string) (string, error) {
	pass, err := ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	again, err := ReadPassword("Confirm password > ")
	if err != nil {
		return "", err
	}
	if pass != again {
		return "", fmt.Errorf("passwords don't match")
	}
	return pass, nil
}
