// Package history keeps the shell's append-only list of accepted input lines.
package history

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/spf13/afero"
)

const filePerm = 0600

// Log is an in-memory history list, optionally mirrored to a file that
// every Add appends to.
type Log struct {
	mu      sync.Mutex
	entries []string
	// flushed counts entries already written by AppendNew.
	flushed int

	fs    afero.Fs
	path  string
	limit int
}

// New creates a history that only lives in memory. limit caps the number of
// entries kept, zero means unlimited.
func New(limit int) *Log {
	return &Log{limit: limit}
}

// Open loads the history stored at path and appends future entries to it.
// A missing file starts an empty history. If the file holds more than limit
// entries it is trimmed and rewritten.
func Open(fs afero.Fs, path string, limit int) (*Log, error) {
	l := &Log{fs: fs, path: path, limit: limit}

	lines, err := readLines(fs, path)
	switch {
	case os.IsNotExist(err):
		return l, nil
	case err != nil:
		return nil, err
	}

	l.entries = lines
	if l.trim() {
		if err := writeFile(fs, path, l.entries); err != nil {
			return nil, err
		}
	}
	l.flushed = len(l.entries)
	return l, nil
}

// Add records a line. Blank lines are ignored.
func (l *Log) Add(line string) error {
	line = strings.TrimRight(line, "\n")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, line)
	l.trim()

	if l.path == "" {
		return nil
	}
	fd, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}
	if _, err := fd.WriteString(line + "\n"); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// Entries returns a copy of the history, oldest first.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.entries...)
}

// Entry is a numbered history line. Numbers start at 1.
type Entry struct {
	Number int
	Line   string
}

// Last returns the last n entries with their numbers. A negative n returns
// every entry.
func (l *Log) Last(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if n >= 0 && n < len(l.entries) {
		start = len(l.entries) - n
	}

	var out []Entry
	for i := start; i < len(l.entries); i++ {
		out = append(out, Entry{Number: i + 1, Line: l.entries[i]})
	}
	return out
}

// Clear drops every in-memory entry. The backing file is left alone.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.flushed = 0
}

// ReadFile appends the lines of path to the history.
func (l *Log) ReadFile(fs afero.Fs, path string) error {
	lines, err := readLines(fs, path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, lines...)
	l.trim()
	return nil
}

// WriteFile replaces path with the whole history.
func (l *Log) WriteFile(fs afero.Fs, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := writeFile(fs, path, l.entries); err != nil {
		return err
	}
	l.flushed = len(l.entries)
	return nil
}

// AppendNew appends the entries added since the last AppendNew or WriteFile
// to path.
func (l *Log) AppendNew(fs afero.Fs, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.flushed > len(l.entries) {
		l.flushed = len(l.entries)
	}
	fresh := l.entries[l.flushed:]
	if len(fresh) == 0 {
		return nil
	}

	fd, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}
	if _, err := fd.Write(encode(fresh)); err != nil {
		fd.Close()
		return err
	}
	if err := fd.Close(); err != nil {
		return err
	}
	l.flushed = len(l.entries)
	return nil
}

// trim drops the oldest entries past the limit and reports whether it did.
// Callers hold mu or own l exclusively.
func (l *Log) trim() bool {
	if l.limit <= 0 || len(l.entries) <= l.limit {
		return false
	}
	drop := len(l.entries) - l.limit
	l.entries = append([]string(nil), l.entries[drop:]...)
	l.flushed -= drop
	if l.flushed < 0 {
		l.flushed = 0
	}
	return true
}

func readLines(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func encode(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// writeFile replaces path atomically when it lives on the host file system.
func writeFile(fs afero.Fs, path string, lines []string) error {
	if _, ok := fs.(*afero.OsFs); ok {
		return renameio.WriteFile(path, encode(lines), filePerm)
	}
	return afero.WriteFile(fs, path, encode(lines), filePerm)
}
