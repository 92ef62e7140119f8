package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/josephlewis42/pipesh/core/config"
	"github.com/josephlewis42/pipesh/core/history"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/repl"
	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const logPrefix = "[pipesh] "

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runShell runs -c, a script file or the standard input, whichever was
// given, and returns the last status.
func runShell(cmd *cobra.Command, args []string) (int, error) {
	interactive := commandLine == "" && len(args) == 0 && isTerminal(os.Stdin) && isTerminal(os.Stdout)

	hints := log.New(io.Discard, "", 0)
	if interactive {
		hints = log.New(cmd.ErrOrStderr(), logPrefix, 0)
	}
	cfg, err := config.LoadOrDefault(cfgPath, hints)
	if err != nil {
		return 1, err
	}

	proc, err := vos.NewOSProcess()
	if err != nil {
		return 1, err
	}
	// exit unwinds through the loop so the logs get closed
	proc.Exit = nil
	if cfg.PathOverride != "" {
		if err := proc.Env.Setenv(vos.EnvPath, cfg.PathOverride); err != nil {
			return 1, err
		}
	}

	sh := shell.New(proc)

	if cfg.LogFile != "" && cfg.Dir() != "" {
		fd, err := cfg.OpenAppLog()
		if err != nil {
			return 1, err
		}
		defer fd.Close()
		sh.Logger = log.New(fd, logPrefix, log.LstdFlags)
	}

	if cfg.EventLog != "" && cfg.Dir() != "" {
		fd, err := cfg.OpenEventLog()
		if err != nil {
			return 1, err
		}
		defer fd.Close()
		sh.Events = logger.NewJsonLinesLogRecorder(fd).NewSession()
	}

	// Only interactive input is remembered across sessions.
	if interactive {
		if sh.History, err = cfg.OpenHistory(); err != nil {
			return 1, err
		}
	} else {
		sh.History = history.New(cfg.HistoryLimit)
	}

	r := repl.New(sh, repl.Options{
		Prompt:             cfg.Prompt,
		ContinuationPrompt: cfg.ContinuationPrompt,
		Color:              cfg.UseColor(isTerminal(os.Stderr)),
		Terminal:           interactive,
	})

	ctx := context.Background()
	switch {
	case commandLine != "":
		return r.Script(ctx, strings.NewReader(commandLine))

	case len(args) > 0:
		fd, err := os.Open(args[0])
		if err != nil {
			return 1, err
		}
		defer fd.Close()
		return r.Script(ctx, fd)

	case interactive:
		// Interrupts belong to the foreground pipeline. Ignored signals stay
		// ignored in children, so SIGINT is caught instead.
		signal.Notify(make(chan os.Signal, 1), os.Interrupt)
		defer signal.Reset(os.Interrupt)
		return r.Interactive(ctx)

	default:
		return r.Script(ctx, proc.Stdin())
	}
}
