// Package shell tokenizes, resolves and runs pipelines of simple commands.
//
// The steps follow
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
// with most of the language left out:
//
// 1. Input is broken into tokens: words, pipes and redirections. Quote
// removal happens while tokenizing, there are no expansions.
//
// 2. Tokens are split on pipes into stages and each stage's first word is
// resolved to a builtin, an executable file or nothing.
//
// 3. Redirection targets are opened and removed from the argument list.
//
// 4. Every stage is started with its stdin and stdout wired to its
// neighbours, and the shell waits for the last one to collect the exit
// status.
package shell
