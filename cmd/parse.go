package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"
)

// parseCmd shows how a line would run without running it.
var parseCmd = &cobra.Command{
	Use:   "parse LINE...",
	Short: "Show the tokens and stages of a command line.",
	Long: `Tokenizes the arguments, joined by spaces, as a single command line and
prints its tokens and the command each stage resolves to. Nothing is run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		proc, err := vos.NewOSProcess()
		if err != nil {
			return err
		}
		return describeLine(cmd.OutOrStdout(), proc, strings.Join(args, " "))
	},
}

func describeLine(w io.Writer, proc *vos.Process, line string) error {
	t := shell.NewTokenizer(nil)
	t.Push(line)
	tokens, err := t.Flush()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKENS")
	for _, st := range tokens {
		kind, text := describeToken(st.Token)
		fmt.Fprintf(tw, "%d-%d\t%s\t%s\n", st.Span.Start, st.Span.End, kind, text)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stages, err := shell.SplitStages(tokens)
	if err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGES")
	for i, stage := range stages {
		kind, command := describeCommand(shell.Resolve(proc, stage.Words))

		var redirects []string
		for _, r := range stage.Redirects {
			redirects = append(redirects, r.Operator()+" "+quoteWord(r.Target))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, kind, command, strings.Join(redirects, " "))
	}
	return tw.Flush()
}

func describeToken(tok shell.Token) (string, string) {
	switch tok := tok.(type) {
	case shell.WordToken:
		return "word", quoteWord(tok.Text)
	case shell.RedirectToken:
		return "redirect", tok.Operator() + " " + quoteWord(tok.Target)
	default:
		return "pipe", tok.String()
	}
}

func describeCommand(r shell.Resolved) (string, string) {
	args := quoteWords(r.Args())
	switch r := r.(type) {
	case shell.Builtin:
		return "builtin", strings.Join(args, " ")
	case shell.External:
		return "external", strings.Join(append([]string{r.Path}, args[1:]...), " ")
	default:
		return "invalid", strings.Join(args, " ")
	}
}

func quoteWords(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = quoteWord(w)
	}
	return out
}

// quoteWord renders w so it would tokenize back to itself.
func quoteWord(w string) string {
	quoted, err := syntax.Quote(w, syntax.LangPOSIX)
	if err != nil {
		// control characters have no POSIX quoting
		return strconv.Quote(w)
	}
	return quoted
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
