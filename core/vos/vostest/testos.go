// Package vostest builds processes for tests.
package vostest

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/spf13/afero"
)

// Output captures what a test process writes.
type Output struct {
	Stdout Buffer
	Stderr Buffer
}

// Buffer is a bytes.Buffer that can be written from several goroutines.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards everything written so far.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// NewMemProcess creates a process over an in-memory file system rooted at
// /home/user with PATH set to path. Nothing it resolves can be spawned.
func NewMemProcess(t *testing.T, path string) (*vos.Process, *Output) {
	t.Helper()

	memfs := afero.NewMemMapFs()
	if err := memfs.MkdirAll("/home/user", 0755); err != nil {
		t.Fatal(err)
	}

	env := vos.NewMapEnvFromEnvList([]string{
		"HOME=/home/user",
		"PATH=" + path,
	})

	out := &Output{}
	vio := vos.NewVIOAdapter(nil, &out.Stdout, &out.Stderr)
	return vos.NewProcess(memfs, env, "/home/user", vio), out
}

// NewOSProcess creates a process over the real file system, working in a
// fresh temporary directory with the host's PATH. stdin may be nil.
func NewOSProcess(t *testing.T, stdin []byte) (*vos.Process, *Output) {
	t.Helper()

	dir := t.TempDir()
	env := vos.NewMapEnvFromEnvList([]string{
		"HOME=" + dir,
		"PATH=" + os.Getenv(vos.EnvPath),
		"LC_ALL=C",
	})

	out := &Output{}
	vio := vos.NewVIOAdapter(bytes.NewReader(stdin), &out.Stdout, &out.Stderr)
	return vos.NewProcess(afero.NewOsFs(), env, dir, vio), out
}
