package cmd

import (
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// readSecret is swapped in tests.
var readSecret = func() ([]byte, error) {
	return term.ReadPassword(int(syscall.Stdin))
}

// promptPassphrase reads a passphrase without echo. Returns "" without error
// when stdin is not a terminal, so piped invocations fall through to the
// flag or environment value.
func promptPassphrase(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", nil
	}
	fmt.Print(prompt)
	b, err := readSecret()
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("cannot read passphrase: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
