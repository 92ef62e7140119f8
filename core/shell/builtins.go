package shell

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/pborman/getopt/v2"
)

// StatusBadExit is the exit code used when exit is given a non-numeric code.
const StatusBadExit = 255

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

// Invocation is what a builtin runs against: the shell and the writers its
// stdout and stderr fan out to.
type Invocation struct {
	*Shell
	Stdout io.Writer
	Stderr io.Writer

	exitCode *int
}

// Exit ends the shell with code. When the process has no Exit hook, or the
// hook returns, the stage reports an *ExitError instead.
func (inv *Invocation) Exit(code int) {
	inv.exitCode = &code
	if inv.Proc.Exit != nil {
		inv.Proc.Exit(code)
	}
}

type ShellBuiltin interface {
	Main(inv *Invocation, args []string) int
}

type ShellBuiltinFunc func(inv *Invocation, args []string) int

func (f ShellBuiltinFunc) Main(inv *Invocation, args []string) int {
	return f(inv, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames lists the builtins in sorted order.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exit quits the shell
func Exit(inv *Invocation, args []string) int {
	code := 0
	switch len(args) {
	case 1:
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(inv.Stderr, "%s: %s: numeric argument required\n", args[0], args[1])
			n = StatusBadExit
		}
		code = n
	default:
		fmt.Fprintf(inv.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	inv.Exit(code)
	return code
}

// Echo writes its arguments separated by single spaces.
func Echo(inv *Invocation, args []string) int {
	fmt.Fprintln(inv.Stdout, strings.Join(args[1:], " "))
	return 0
}

// Pwd prints the working directory.
func Pwd(inv *Invocation, args []string) int {
	fmt.Fprintln(inv.Stdout, inv.Proc.Getwd())
	return 0
}

// Cd is the cd shell builtin
func Cd(inv *Invocation, args []string) int {
	home := inv.Proc.Getenv(vos.EnvHome)

	var dir string
	switch len(args) {
	case 1:
		if home == "" {
			fmt.Fprintf(inv.Stderr, "%s: HOME not set\n", args[0])
			return 1
		}
		dir = home
	case 2:
		dir = args[1]
	default:
		fmt.Fprintf(inv.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	if err := inv.Proc.Chdir(expandHome(dir, home)); err != nil {
		fmt.Fprintf(inv.Stderr, "%s: %s: No such file or directory\n", args[0], dir)
		return 1
	}
	return 0
}

// expandHome replaces a leading ~ with home, which always gets a trailing
// slash.
func expandHome(dir, home string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	if !strings.HasSuffix(home, "/") {
		home += "/"
	}
	return home + strings.TrimPrefix(dir[1:], "/")
}

// Type reports how each argument would be run.
func Type(inv *Invocation, args []string) int {
	status := 0
	for _, name := range args[1:] {
		switch r := inv.Resolve([]string{name}).(type) {
		case Builtin:
			fmt.Fprintf(inv.Stdout, "%s is a shell builtin\n", name)
		case External:
			fmt.Fprintf(inv.Stdout, "%s is %s\n", name, r.Path)
		default:
			fmt.Fprintf(inv.Stdout, "%s: not found\n", name)
			status = 1
		}
	}
	return status
}

// History lists or manipulates the history log.
func History(inv *Invocation, args []string) int {
	opts := getopt.New()
	opts.SetProgram(args[0])
	opts.SetParameters("[N]")
	clear := opts.Bool('c', "clear the history by deleting all entries")
	readFrom := opts.String('r', "", "append the contents of FILE to the history", "FILE")
	writeTo := opts.String('w', "", "write the history to FILE", "FILE")
	appendTo := opts.String('a', "", "append entries added since the last -a or -w to FILE", "FILE")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := inv.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "Display or manipulate the history list")
		fmt.Fprintln(w, "Display the history list with line numbers, optionally only the last N.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return 2
		}
		return 0
	}

	fs := inv.Proc.Fs
	optionChosen := false
	if *clear {
		inv.History.Clear()
		optionChosen = true
	}
	if *readFrom != "" {
		optionChosen = true
		if err := inv.History.ReadFile(fs, inv.Proc.Abs(*readFrom)); err != nil {
			fmt.Fprintf(inv.Stderr, "%s: %s: %v\n", args[0], *readFrom, err)
			return 1
		}
	}
	if *writeTo != "" {
		optionChosen = true
		if err := inv.History.WriteFile(fs, inv.Proc.Abs(*writeTo)); err != nil {
			fmt.Fprintf(inv.Stderr, "%s: %s: %v\n", args[0], *writeTo, err)
			return 1
		}
	}
	if *appendTo != "" {
		optionChosen = true
		if err := inv.History.AppendNew(fs, inv.Proc.Abs(*appendTo)); err != nil {
			fmt.Fprintf(inv.Stderr, "%s: %s: %v\n", args[0], *appendTo, err)
			return 1
		}
	}
	if optionChosen {
		return 0
	}

	status := 0
	limit := -1
	if rest := opts.Args(); len(rest) > 0 {
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 0 {
			fmt.Fprintf(inv.Stderr, "%s: %s: numeric argument required\n", args[0], rest[0])
			status = 1
		} else {
			limit = n
		}
	}

	for _, entry := range inv.History.Last(limit) {
		fmt.Fprintf(inv.Stdout, "% 5d  %s\n", entry.Number, entry.Line)
	}
	return status
}

func init() {
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["echo"] = ShellBuiltinFunc(Echo)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["type"] = ShellBuiltinFunc(Type)
	AllBuiltins["history"] = ShellBuiltinFunc(History)
}
