package shell

import (
	"context"
	"errors"
	"testing"

	"github.com/josephlewis42/pipesh/core/vos/vostest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memShell struct {
	*Shell
	out *vostest.Output
}

func newMemShell(t *testing.T) *memShell {
	t.Helper()

	proc, out := vostest.NewMemProcess(t, "/bin")
	require.NoError(t, afero.WriteFile(proc.Fs, "/bin/ls", nil, 0755))
	require.NoError(t, proc.Fs.MkdirAll("/home/user/docs", 0755))
	require.NoError(t, proc.Fs.MkdirAll("/tmp", 0755))
	return &memShell{Shell: New(proc), out: out}
}

// run adds line to the history like the interactive loop does and runs it.
func (s *memShell) run(t *testing.T, line string) int {
	t.Helper()

	require.NoError(t, s.History.Add(line))
	status, err := s.Run(context.Background(), line)
	require.NoError(t, err)
	return status
}

func (s *memShell) stdout() string {
	defer s.out.Stdout.Reset()
	return s.out.Stdout.String()
}

func (s *memShell) stderr() string {
	defer s.out.Stderr.Reset()
	return s.out.Stderr.String()
}

func TestEcho(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"no args":          {line: "echo", want: "\n"},
		"collapses blanks": {line: "echo 4  5   6", want: "4 5 6\n"},
		"quoted blanks":    {line: `echo "a   b"`, want: "a   b\n"},
		"adjacent quotes":  {line: `echo 'hello'"world"`, want: "helloworld\n"},
		"empty args":       {line: `echo '' x`, want: " x\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			sh := newMemShell(t)

			assert.Equal(t, 0, sh.run(t, tc.line))
			assert.Equal(t, tc.want, sh.stdout())
		})
	}
}

func TestCdPwd(t *testing.T) {
	sh := newMemShell(t)

	assert.Equal(t, 0, sh.run(t, "pwd"))
	assert.Equal(t, "/home/user\n", sh.stdout())

	assert.Equal(t, 0, sh.run(t, "cd docs"))
	assert.Equal(t, 0, sh.run(t, "pwd"))
	assert.Equal(t, "/home/user/docs\n", sh.stdout())
	assert.Equal(t, "/home/user/docs", sh.Proc.Getenv("PWD"))

	assert.Equal(t, 0, sh.run(t, "cd .."))
	assert.Equal(t, "/home/user", sh.Proc.Getwd())

	assert.Equal(t, 0, sh.run(t, "cd /tmp"))
	assert.Equal(t, "/tmp", sh.Proc.Getwd())

	assert.Equal(t, 0, sh.run(t, "cd"))
	assert.Equal(t, "/home/user", sh.Proc.Getwd())
}

func TestCd_Home(t *testing.T) {
	cases := map[string]string{
		"tilde":       "~",
		"tilde slash": "~/",
		"subdir":      "~/docs",
	}

	for tn, arg := range cases {
		t.Run(tn, func(t *testing.T) {
			sh := newMemShell(t)
			require.Equal(t, 0, sh.run(t, "cd /tmp"))

			assert.Equal(t, 0, sh.run(t, "cd "+arg))
			assert.Contains(t, sh.Proc.Getwd(), "/home/user")
			assert.Empty(t, sh.stderr())
		})
	}
}

func TestCd_Failure(t *testing.T) {
	cases := map[string]struct {
		line    string
		wantErr string
	}{
		"missing": {
			line:    "cd /nonexistent",
			wantErr: "cd: /nonexistent: No such file or directory\n",
		},
		"file": {
			line:    "cd /bin/ls",
			wantErr: "cd: /bin/ls: No such file or directory\n",
		},
		"too many": {
			line:    "cd a b",
			wantErr: "cd: too many arguments\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			sh := newMemShell(t)

			assert.Equal(t, 1, sh.run(t, tc.line))
			assert.Equal(t, tc.wantErr, sh.stderr())
			assert.Equal(t, "/home/user", sh.Proc.Getwd())
		})
	}
}

func TestType(t *testing.T) {
	sh := newMemShell(t)

	assert.Equal(t, 0, sh.run(t, "type echo ls"))
	assert.Equal(t, "echo is a shell builtin\nls is /bin/ls\n", sh.stdout())

	assert.Equal(t, 1, sh.run(t, "type nosuch type"))
	assert.Equal(t, "nosuch: not found\ntype is a shell builtin\n", sh.stdout())
}

func TestHistory(t *testing.T) {
	sh := newMemShell(t)
	sh.run(t, "echo one")
	sh.run(t, "echo two")
	sh.stdout()

	assert.Equal(t, 0, sh.run(t, "history"))
	assert.Equal(t, "    1  echo one\n    2  echo two\n    3  history\n", sh.stdout())

	assert.Equal(t, 0, sh.run(t, "history 2"))
	assert.Equal(t, "    3  history\n    4  history 2\n", sh.stdout())

	assert.Equal(t, 0, sh.run(t, "history 0"))
	assert.Equal(t, "", sh.stdout())
}

func TestHistory_NonNumeric(t *testing.T) {
	sh := newMemShell(t)
	sh.run(t, "echo one")
	sh.stdout()

	assert.Equal(t, 1, sh.run(t, "history abc"))
	assert.Equal(t, "history: abc: numeric argument required\n", sh.stderr())
	assert.Equal(t, "    1  echo one\n    2  history abc\n", sh.stdout())
}

func TestHistory_ClearAndFiles(t *testing.T) {
	sh := newMemShell(t)
	sh.run(t, "echo one")

	assert.Equal(t, 0, sh.run(t, "history -w saved"))
	saved, err := afero.ReadFile(sh.Proc.Fs, "/home/user/saved")
	require.NoError(t, err)
	assert.Equal(t, "echo one\nhistory -w saved\n", string(saved))

	assert.Equal(t, 0, sh.run(t, "history -c"))
	assert.Empty(t, sh.History.Entries())

	assert.Equal(t, 0, sh.run(t, "history -r saved"))
	assert.Equal(t, []string{"history -r saved", "echo one", "history -w saved"}, sh.History.Entries())
}

func TestHistory_BadFlag(t *testing.T) {
	sh := newMemShell(t)

	assert.Equal(t, 2, sh.run(t, "history -z"))
	assert.Contains(t, sh.stderr(), "Options:")
}

func TestExit(t *testing.T) {
	cases := map[string]struct {
		line       string
		wantCode   int
		wantStderr string
	}{
		"default":     {line: "exit", wantCode: 0},
		"code":        {line: "exit 3", wantCode: 3},
		"non-numeric": {line: "exit abc", wantCode: StatusBadExit, wantStderr: "exit: abc: numeric argument required\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			sh := newMemShell(t)

			status, err := sh.Run(context.Background(), tc.line)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tc.wantCode, exitErr.Code)
			assert.Equal(t, tc.wantCode, status)
			assert.Equal(t, tc.wantStderr, sh.stderr())
		})
	}
}

func TestExit_UsesProcessHook(t *testing.T) {
	sh := newMemShell(t)
	var got []int
	sh.Proc.Exit = func(code int) { got = append(got, code) }

	_, err := sh.Run(context.Background(), "exit 7")

	assert.Error(t, err)
	assert.Equal(t, []int{7}, got)
}

func TestExit_TooManyArguments(t *testing.T) {
	sh := newMemShell(t)

	status, err := sh.Run(context.Background(), "exit 1 2")

	require.NoError(t, err)
	assert.Equal(t, 1, status)
	assert.Equal(t, "exit: too many arguments\n", sh.stderr())
}

func TestBuiltinNames(t *testing.T) {
	assert.Equal(t, []string{"cd", "echo", "exit", "history", "pwd", "type"}, BuiltinNames())
}
