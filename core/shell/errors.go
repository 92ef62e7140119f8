package shell

import (
	"errors"
	"fmt"
)

// ParseErrorKind classifies syntax errors.
type ParseErrorKind int

const (
	// UnterminatedQuote means the input ended inside a quote or after a
	// trailing escape.
	UnterminatedQuote ParseErrorKind = iota
	// EmptyStage means a pipe had no command on one side.
	EmptyStage
	// EmptyPipeline means the line held no command at all.
	EmptyPipeline
	// MissingRedirectTarget means a redirection operator had no word after it.
	MissingRedirectTarget
	// BadFileDescriptor means a redirection named an unsupported descriptor.
	BadFileDescriptor
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnterminatedQuote:
		return "unterminated quote"
	case EmptyStage:
		return "empty pipeline stage"
	case EmptyPipeline:
		return "empty pipeline"
	case MissingRedirectTarget:
		return "missing redirect target"
	case BadFileDescriptor:
		return "bad file descriptor"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", int(k))
	}
}

// ParseError is a syntax error at a byte offset of the input.
type ParseError struct {
	Kind   ParseErrorKind
	Offset int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("syntax error: %v at offset %d: %s", e.Kind, e.Offset, e.Detail)
	}
	return fmt.Sprintf("syntax error: %v at offset %d", e.Kind, e.Offset)
}

// Is matches any *ParseError with the same kind.
func (e *ParseError) Is(target error) bool {
	var pe *ParseError
	if errors.As(target, &pe) {
		return pe.Kind == e.Kind
	}
	return false
}

// IoError is a redirect target that could not be opened.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// SpawnError is a child process that could not be started.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// RuntimeError is a failure moving bytes for a running stage.
type RuntimeError struct {
	Name string
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ExitError is returned when the exit builtin ran but the process did not
// terminate, because Process.Exit was unset or returned.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
