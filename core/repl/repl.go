// Package repl reads command lines from a terminal or a script and runs
// them in a shell.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/pipesh/core/shell"
)

// Options control the interactive loop.
type Options struct {
	Prompt             string
	ContinuationPrompt string
	Color              bool
	// Terminal reports whether stdin and stdout are a terminal.
	Terminal bool
}

// REPL feeds lines into a shell until input ends or exit runs.
type REPL struct {
	sh     *shell.Shell
	opts   Options
	styler *Styler
}

// New creates a loop over sh.
func New(sh *shell.Shell, opts Options) *REPL {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.ContinuationPrompt == "" {
		opts.ContinuationPrompt = "> "
	}
	return &REPL{sh: sh, opts: opts, styler: NewStyler(opts.Color)}
}

func (r *REPL) prompt(t *shell.Tokenizer) string {
	if t.NeedsMore() {
		return r.opts.ContinuationPrompt
	}
	return r.styler.ExpandPrompt(r.opts.Prompt, CurrentPromptInfo(r.sh.Proc))
}

// Interactive reads lines with a line editor. It returns the status of the
// last pipeline, or the code passed to exit.
func (r *REPL) Interactive(ctx context.Context) (int, error) {
	proc := r.sh.Proc
	cfg := &readline.Config{
		Stdin:                  readline.NewCancelableStdin(proc.Stdin()),
		Stdout:                 proc.Stdout(),
		Stderr:                 proc.Stderr(),
		AutoComplete:           r.sh.Completer(),
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		FuncIsTerminal: func() bool {
			return r.opts.Terminal
		},
	}
	if err := cfg.Init(); err != nil {
		return 1, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return 1, err
	}
	defer rl.Close()
	// history is kept by the shell, readline only mirrors it for navigation
	for _, line := range r.sh.History.Entries() {
		_ = rl.SaveHistory(line)
	}

	t := r.sh.NewTokenizer()
	status := 0
	for {
		rl.SetPrompt(r.prompt(t))
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return status, nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt drops the line and anything still open.
			t.Reset()
			continue

		case err != nil:
			r.sh.Logger.Printf("Error readline: %v", err)
			return status, err
		}

		ready, entry := r.push(t, line)
		if !ready {
			continue
		}
		_ = rl.SaveHistory(entry)

		var exitErr *shell.ExitError
		status, err = r.run(ctx, t, entry)
		if errors.As(err, &exitErr) {
			return exitErr.Code, nil
		}
	}
}

// Script runs every line of in without prompting. An unterminated quote at
// the end of input is a syntax error.
func (r *REPL) Script(ctx context.Context, in io.Reader) (int, error) {
	t := r.sh.NewTokenizer()
	status := 0

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		ready, entry := r.push(t, scanner.Text())
		if !ready {
			continue
		}

		var exitErr *shell.ExitError
		var err error
		status, err = r.run(ctx, t, entry)
		if errors.As(err, &exitErr) {
			return exitErr.Code, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return status, err
	}

	if !t.IsEmpty() {
		var exitErr *shell.ExitError
		var err error
		status, err = r.run(ctx, t, strings.TrimRight(t.Input(), "\n"))
		if errors.As(err, &exitErr) {
			return exitErr.Code, nil
		}
	}
	return status, nil
}

// push adds one physical line to t. It reports whether t holds a complete
// line and, if so, the text to keep in the history.
func (r *REPL) push(t *shell.Tokenizer, line string) (bool, string) {
	t.Push(line + "\n")
	if t.NeedsMore() {
		return false, ""
	}
	if t.IsEmpty() {
		t.Reset()
		return false, ""
	}
	return true, strings.TrimRight(t.Input(), "\n")
}

// run executes the line in t and reports errors to the user. Only an exit
// request is passed back.
func (r *REPL) run(ctx context.Context, t *shell.Tokenizer, entry string) (int, error) {
	defer t.Reset()

	if err := r.sh.History.Add(entry); err != nil {
		r.sh.Logger.Printf("saving history: %v", err)
	}

	status, err := r.sh.RunTokenizer(ctx, t)

	var exitErr *shell.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		return status, err
	default:
		fmt.Fprintf(r.sh.Proc.Stderr(), "%s %v\n", r.styler.Error("pipesh:"), err)
	}
	return status, nil
}
