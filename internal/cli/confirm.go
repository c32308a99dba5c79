package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotConfirmed is returned when a destructive command is declined or
// cannot be confirmed.
var ErrNotConfirmed = errors.New("not confirmed")

// Confirmer asks the user to approve destructive operations.
type Confirmer struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
	AssumeYes   bool
}

// NewConfirmer prompts on stdin/stderr when stdin is a terminal.
func NewConfirmer(assumeYes bool) *Confirmer {
	return &Confirmer{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		AssumeYes:   assumeYes,
	}
}

// Confirm returns nil when the operation may proceed.
// Without a terminal the only way to proceed is --yes.
func (c *Confirmer) Confirm(prompt string) error {
	if c.AssumeYes {
		return nil
	}
	if !c.Interactive {
		return fmt.Errorf("%w: stdin is not a terminal, pass --yes to proceed", ErrNotConfirmed)
	}

	fmt.Fprintf(c.Out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return ErrNotConfirmed
}
