package vos

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Process is the mutable state of the running shell. The working directory
// is only changed through Chdir and is read at resolution and spawn time.
type Process struct {
	VIO
	Env VEnv
	Fs  VFS

	// Exit, if set, terminates the shell process with the given code.
	Exit func(code int)

	dir string
}

// NewProcess creates a process rooted at dir. dir must be absolute.
func NewProcess(fs VFS, env VEnv, dir string, vio VIO) *Process {
	if vio == nil {
		vio = NewNullIO()
	}
	p := &Process{
		VIO: vio,
		Env: env,
		Fs:  fs,
		dir: filepath.Clean(dir),
	}
	_ = p.Env.Setenv(EnvPwd, p.dir)
	return p
}

// NewOSProcess snapshots the running process: its environment, working
// directory, file system and standard streams.
func NewOSProcess() (*Process, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	p := NewProcess(afero.NewOsFs(), NewOSEnv(), wd, NewOSIO())
	p.Exit = os.Exit
	return p, nil
}

// Getwd returns the working directory.
func (p *Process) Getwd() string {
	return p.dir
}

// Getenv reads an environment variable.
func (p *Process) Getenv(key string) string {
	return p.Env.Getenv(key)
}

// Environ lists the environment handed to child processes.
func (p *Process) Environ() []string {
	return p.Env.Environ()
}

// Abs resolves path against the working directory.
func (p *Process) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.dir, path)
}

// Chdir changes the working directory. The directory is left untouched on
// failure.
func (p *Process) Chdir(dir string) error {
	target := p.Abs(dir)
	info, err := p.Fs.Stat(target)
	if err != nil {
		return &fs.PathError{Op: "chdir", Path: dir, Err: fs.ErrNotExist}
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: dir, Err: fmt.Errorf("not a directory")}
	}
	p.dir = target
	return p.Env.Setenv(EnvPwd, target)
}

// Stat stats path relative to the working directory.
func (p *Process) Stat(path string) (os.FileInfo, error) {
	return p.Fs.Stat(p.Abs(path))
}

// OpenFile opens path relative to the working directory.
func (p *Process) OpenFile(path string, flag int, perm os.FileMode) (afero.File, error) {
	return p.Fs.OpenFile(p.Abs(path), flag, perm)
}

// SearchPath returns the directories of the executable search path. Empty
// elements mean the working directory.
func (p *Process) SearchPath() []string {
	var dirs []string
	for _, dir := range strings.Split(p.Getenv(EnvPath), string(os.PathListSeparator)) {
		if dir == "" {
			dir = "."
		}
		dirs = append(dirs, p.Abs(dir))
	}
	return dirs
}
