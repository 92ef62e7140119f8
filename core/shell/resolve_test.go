package shell

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/josephlewis42/pipesh/core/vos/vostest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolveProc(t *testing.T) *vos.Process {
	t.Helper()

	proc, _ := vostest.NewMemProcess(t, "/usr/local/bin:/usr/bin:/bin")
	for path, contents := range map[string]string{
		"/usr/bin/ls":          "ls",
		"/bin/ls":              "old ls",
		"/bin/cat":             "cat",
		"/usr/local/bin/echo":  "not the builtin",
		"/home/user/script.sh": "#!/bin/sh",
	} {
		require.NoError(t, afero.WriteFile(proc.Fs, path, []byte(contents), 0755))
	}
	require.NoError(t, proc.Fs.MkdirAll("/usr/local/bin/cat", 0755))
	return proc
}

func TestResolve(t *testing.T) {
	cases := map[string]struct {
		words []string
		want  Resolved
	}{
		"builtin": {
			words: []string{"echo", "hi"},
			want:  Builtin{Argv: Argv{"echo", "hi"}},
		},
		"builtins before path": {
			words: []string{"type"},
			want:  Builtin{Argv: Argv{"type"}},
		},
		"first path match wins": {
			words: []string{"ls", "-l"},
			want:  External{Argv: Argv{"ls", "-l"}, Path: "/usr/bin/ls"},
		},
		"directories are skipped": {
			words: []string{"cat"},
			want:  External{Argv: Argv{"cat"}, Path: "/bin/cat"},
		},
		"not found": {
			words: []string{"nosuchcommand", "x"},
			want:  Invalid{Argv: Argv{"nosuchcommand", "x"}},
		},
		"relative path": {
			words: []string{"./script.sh"},
			want:  External{Argv: Argv{"./script.sh"}, Path: "/home/user/script.sh"},
		},
		"absolute path": {
			words: []string{"/bin/ls"},
			want:  External{Argv: Argv{"/bin/ls"}, Path: "/bin/ls"},
		},
		"path to directory": {
			words: []string{"/usr/local/bin/cat"},
			want:  Invalid{Argv: Argv{"/usr/local/bin/cat"}},
		},
		"slash names skip the path": {
			words: []string{"./ls"},
			want:  Invalid{Argv: Argv{"./ls"}},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			proc := newResolveProc(t)

			got := Resolve(proc, tc.words)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	proc := newResolveProc(t)

	first := Resolve(proc, []string{"ls"})
	second := Resolve(proc, []string{"ls"})

	assert.Equal(t, first, second)
}

func TestResolve_CopiesWords(t *testing.T) {
	proc := newResolveProc(t)
	words := []string{"ls", "a"}

	got := Resolve(proc, words)
	words[1] = "changed"

	assert.Equal(t, Argv{"ls", "a"}, got.Args())
}

func TestResolve_EmptyPathElementIsWorkingDir(t *testing.T) {
	proc, _ := vostest.NewMemProcess(t, "/bin:")
	require.NoError(t, afero.WriteFile(proc.Fs, "/home/user/tool", nil, 0755))

	got := Resolve(proc, []string{"tool"})

	assert.Equal(t, External{Argv: Argv{"tool"}, Path: "/home/user/tool"}, got)
}

func TestResolve_FollowsWorkingDirectory(t *testing.T) {
	proc, _ := vostest.NewMemProcess(t, ".")
	require.NoError(t, afero.WriteFile(proc.Fs, "/srv/tool", nil, 0755))

	assert.IsType(t, Invalid{}, Resolve(proc, []string{"tool"}))

	require.NoError(t, proc.Chdir("/srv"))
	assert.Equal(t, External{Argv: Argv{"tool"}, Path: "/srv/tool"}, Resolve(proc, []string{"tool"}))
}

func TestLookPath_Empty(t *testing.T) {
	proc := newResolveProc(t)

	_, err := LookPath(proc, "")

	assert.ErrorIs(t, err, ErrNotFound)
}
