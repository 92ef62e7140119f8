package shell

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

type sessionTestSuite map[string]sessionTest

// sessionTest is a list of lines typed into one shell.
type sessionTest struct {
	Lines []string
}

// Run types every session into a fresh shell and compares the transcript
// with the golden file named after the session.
func (sts sessionTestSuite) Run(t *testing.T) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range sts {
		t.Run(tn, func(t *testing.T) {
			sh := newMemShell(t)

			var transcript bytes.Buffer
			for _, line := range tc.Lines {
				fmt.Fprintf(&transcript, "$ %s\n", line)

				if err := sh.History.Add(line); err != nil {
					t.Fatal(err)
				}
				status, err := sh.Run(context.Background(), line)

				transcript.WriteString(sh.stdout())
				transcript.WriteString(sh.stderr())
				if err != nil {
					fmt.Fprintln(&transcript, err)
				}
				if status != 0 {
					fmt.Fprintf(&transcript, "[status %d]\n", status)
				}
			}

			g.Assert(t, tn, transcript.Bytes())
		})
	}
}

func TestSession(t *testing.T) {
	sessionTestSuite{
		"builtins": {Lines: []string{
			"echo hello   world",
			"pwd",
			"type echo ls nosuch",
		}},
		"cd": {Lines: []string{
			"cd docs",
			"pwd",
			"cd /nonexistent",
			"pwd",
			"cd ~",
			"pwd",
		}},
		"history": {Lines: []string{
			"echo one",
			"echo two",
			"history",
			"history 1",
			"history x",
		}},
		"errors": {Lines: []string{
			"nosuchcommand arg",
			`echo "abc`,
			"echo a |",
			"| echo",
			"echo 3> f",
			"echo >",
		}},
	}.Run(t)
}
