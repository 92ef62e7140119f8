package shell

import (
	"sort"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/spf13/afero"
)

// Completer suggests completions for the word under the cursor: commands in
// command position, file names everywhere else.
type Completer struct {
	sh *Shell
}

// Completer creates a completer reading the shell's current state.
func (s *Shell) Completer() *Completer {
	return &Completer{sh: s}
}

// Do returns the suffixes that complete the word ending at pos and the
// length of that word, as readline expects.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	prefix := head[strings.LastIndexAny(head, " \t|<>")+1:]

	t := NewTokenizer(nil)
	t.Push(head[:len(head)-len(prefix)])
	if t.Err() != nil {
		return nil, 0
	}

	var candidates []string
	switch {
	case t.NeedsMore():
		// only an operator waiting for its target can be completed
		rest, _ := t.Remainder()
		rest = strings.TrimSpace(rest)
		if !strings.HasSuffix(rest, ">") && !strings.HasSuffix(rest, "<") {
			return nil, 0
		}
		candidates = c.files(prefix)
	case commandPosition(t.Tokens()) && !strings.Contains(prefix, "/"):
		candidates = c.commands(prefix)
	default:
		candidates = c.files(prefix)
	}

	if len(candidates) == 0 {
		return nil, 0
	}
	out := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, []rune(cand))
	}
	return out, len([]rune(prefix))
}

// commandPosition reports whether the next word would name a command.
func commandPosition(tokens []Spanned) bool {
	seenWord := false
	for _, st := range tokens {
		switch st.Token.(type) {
		case PipeToken:
			seenWord = false
		case WordToken:
			seenWord = true
		}
	}
	return !seenWord
}

// commands lists builtins and executables on the search path starting
// with prefix.
func (c *Completer) commands(prefix string) []string {
	seen := make(map[string]bool)
	for _, name := range BuiltinNames() {
		if strings.HasPrefix(name, prefix) {
			seen[name] = true
		}
	}

	proc := c.sh.Proc
	for _, dir := range proc.SearchPath() {
		entries, err := afero.ReadDir(proc.Fs, dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.Mode().IsRegular() && strings.HasPrefix(entry.Name(), prefix) {
				seen[entry.Name()] = true
			}
		}
	}

	var out []string
	for name := range seen {
		out = append(out, name[len(prefix):]+" ")
	}
	sort.Strings(out)
	return out
}

// files lists the entries of the directory prefix points into. Hidden
// entries only show up once the prefix asks for them.
func (c *Completer) files(prefix string) []string {
	proc := c.sh.Proc

	dir, base := ".", prefix
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dir, base = prefix[:i+1], prefix[i+1:]
	}
	dir = expandHome(dir, proc.Getenv(vos.EnvHome))

	entries, err := afero.ReadDir(proc.Fs, proc.Abs(dir))
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if entry.IsDir() {
			out = append(out, name[len(base):]+"/")
		} else {
			out = append(out, name[len(base):]+" ")
		}
	}
	sort.Strings(out)
	return out
}
