// Package confirm asks an operator to approve destructive actions.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrDeclined is returned when the operator does not approve an action.
var ErrDeclined = errors.New("confirm: declined")

// ErrNotInteractive is returned by a Prompter whose input is not a terminal.
var ErrNotInteractive = errors.New("confirm: stdin is not a terminal; pass --yes to proceed")

// Confirmer asks a yes/no question. A false answer with a nil error means
// the operator declined.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Func adapts a plain function to Confirmer.
type Func func(ctx context.Context, question string) (bool, error)

// Confirm calls f.
func (f Func) Confirm(ctx context.Context, question string) (bool, error) { return f(ctx, question) }

// Always approves every question.
var Always Confirmer = Func(func(context.Context, string) (bool, error) { return true, nil })

// Never declines every question.
var Never Confirmer = Func(func(context.Context, string) (bool, error) { return false, nil })

// Ask runs c and folds a declined answer into ErrDeclined.
func Ask(ctx context.Context, c Confirmer, question string) error {
	ok, err := c.Confirm(ctx, question)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// Prompter asks on a terminal and reads a y/N answer.
type Prompter struct {
	In    io.Reader
	Out   io.Writer
	IsTTY func() bool
}

// NewPrompter creates a Prompter bound to stdin and the given output.
func NewPrompter(out io.Writer) *Prompter {
	return &Prompter{
		In:    os.Stdin,
		Out:   out,
		IsTTY: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

// Confirm prints the question and waits for an answer. Only "y" or "yes"
// approves.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if p.IsTTY != nil && !p.IsTTY() {
		return false, ErrNotInteractive
	}
	fmt.Fprintf(p.Out, "%s [y/N]: ", question)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(p.In).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
