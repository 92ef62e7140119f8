package shell

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// Argv is a command name followed by its arguments.
type Argv []string

// Args returns the full argument vector.
func (a Argv) Args() Argv { return a }

// Name returns the command name as typed.
func (a Argv) Name() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// Resolved is one of Builtin, External or Invalid.
type Resolved interface {
	Name() string
	Args() Argv
	isResolved()
}

// Builtin runs inside the shell.
type Builtin struct {
	Argv
}

// External is an executable file found on disk.
type External struct {
	Argv
	Path string
}

// Invalid names nothing that can be run.
type Invalid struct {
	Argv
}

func (Builtin) isResolved()  {}
func (External) isResolved() {}
func (Invalid) isResolved()  {}

// Resolve classifies a stage by its first word: builtins first, then the
// search path, otherwise Invalid.
func Resolve(proc *vos.Process, words []string) Resolved {
	argv := Argv(append([]string(nil), words...))
	name := argv.Name()

	if _, ok := AllBuiltins[name]; ok {
		return Builtin{Argv: argv}
	}
	if path, err := LookPath(proc, name); err == nil {
		return External{Argv: argv, Path: path}
	}
	return Invalid{Argv: argv}
}

func isRegularFile(proc *vos.Process, path string) bool {
	info, err := proc.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LookPath searches for a regular file named file in the directories named
// by the PATH environment variable, left to right. If file contains a slash,
// it is tried directly and the PATH is not consulted. The result is always
// absolute.
func LookPath(proc *vos.Process, file string) (string, error) {
	if file == "" {
		return "", ErrNotFound
	}
	if strings.Contains(file, "/") {
		if isRegularFile(proc, file) {
			return proc.Abs(file), nil
		}
		return "", ErrNotFound
	}
	for _, dir := range proc.SearchPath() {
		path := filepath.Join(dir, file)
		if isRegularFile(proc, path) {
			return path, nil
		}
	}
	return "", ErrNotFound
}
