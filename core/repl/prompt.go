package repl

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/pipesh/core/vos"
)

const (
	EnvUser    = "USER"
	EnvLogname = "LOGNAME"

	DefaultPrompt = `\u@\h:\w\$ `
)

// PromptInfo is what prompt escapes expand to.
type PromptInfo struct {
	User     string
	Hostname string
	Home     string
	Dir      string
	Root     bool
}

// CurrentPromptInfo reads the prompt values from proc and the host.
func CurrentPromptInfo(proc *vos.Process) PromptInfo {
	user := proc.Getenv(EnvUser)
	if user == "" {
		user = proc.Getenv(EnvLogname)
	}
	host, _ := os.Hostname()
	if i := strings.IndexByte(host, '.'); i >= 0 {
		host = host[:i]
	}

	return PromptInfo{
		User:     user,
		Hostname: host,
		Home:     proc.Getenv(vos.EnvHome),
		Dir:      proc.Getwd(),
		Root:     os.Geteuid() == 0,
	}
}

// Styler colors the parts of the prompt.
type Styler struct {
	host *color.Color
	dir  *color.Color
	err  *color.Color
}

// NewStyler creates a Styler that colors only if enabled is true.
func NewStyler(enabled bool) *Styler {
	s := &Styler{
		host: color.New(color.FgGreen, color.Bold),
		dir:  color.New(color.FgBlue, color.Bold),
		err:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{s.host, s.dir, s.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Error formats the prefix of an error message.
func (s *Styler) Error(prefix string) string {
	return s.err.Sprint(prefix)
}

// ExpandPrompt replaces \u, \h, \w and \$ in template.
func (s *Styler) ExpandPrompt(template string, info PromptInfo) string {
	dir := info.Dir
	if info.Home != "" && (dir == info.Home || strings.HasPrefix(dir, strings.TrimSuffix(info.Home, "/")+"/")) {
		dir = "~" + strings.TrimPrefix(dir, info.Home)
	}

	dollar := "$"
	if info.Root {
		dollar = "#"
	}

	return strings.NewReplacer(
		`\u`, s.host.Sprint(info.User),
		`\h`, s.host.Sprint(info.Hostname),
		`\w`, s.dir.Sprint(dir),
		`\$`, dollar,
	).Replace(template)
}
