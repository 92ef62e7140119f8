package shell

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/josephlewis42/pipesh/core/history"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/vos"
)

const (
	// StatusSyntax is reported for lines that fail to parse.
	StatusSyntax = 2
	// StatusNotFound is reported by stages whose command could not be found.
	StatusNotFound = 127
	// StatusCannotExecute is reported when a found command could not start.
	StatusCannotExecute = 126
)

// Shell resolves, builds and runs command lines against a process context.
type Shell struct {
	Proc    *vos.Process
	History *history.Log
	Events  logger.Recorder
	// Logger receives diagnostics that are not meant for the user.
	Logger *log.Logger
}

var _ Builder = (*Shell)(nil)

// New creates a shell with an in-memory history and no event log.
func New(proc *vos.Process) *Shell {
	return &Shell{
		Proc:    proc,
		History: history.New(0),
		Events:  logger.NopRecorder{},
		Logger:  log.New(io.Discard, "[pipesh] ", 0),
	}
}

// NewTokenizer creates a tokenizer whose Finish builds pipelines for s.
func (s *Shell) NewTokenizer() *Tokenizer {
	return NewTokenizer(s)
}

// Resolve classifies a stage's words against the shell's process.
func (s *Shell) Resolve(words []string) Resolved {
	return Resolve(s.Proc, words)
}

// Run parses, builds and executes one complete line and returns the exit
// status of the pipeline's last stage. Blank lines do nothing.
func (s *Shell) Run(ctx context.Context, line string) (int, error) {
	t := s.NewTokenizer()
	t.Push(line)
	if t.IsEmpty() {
		return 0, nil
	}
	return s.RunTokenizer(ctx, t)
}

// RunTokenizer finishes t and executes the resulting pipeline.
func (s *Shell) RunTokenizer(ctx context.Context, t *Tokenizer) (int, error) {
	p, err := t.Finish()
	if err != nil {
		s.record(&logger.SyntaxError{Line: t.Input(), Error: err.Error()})

		var pe *ParseError
		if errors.As(err, &pe) {
			return StatusSyntax, err
		}
		return 1, err
	}
	return p.Execute(ctx)
}

func (s *Shell) record(event logger.LogType) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Record(event); err != nil {
		s.Logger.Printf("recording event: %v", err)
	}
}
