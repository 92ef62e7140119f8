package shell

import (
	"errors"
	"strconv"
	"strings"
)

// Builder turns committed tokens into a runnable pipeline.
type Builder interface {
	Build(tokens []Spanned) (*Pipeline, error)
}

// Tokenizer splits input that may arrive a piece at a time. Tokens are
// committed once no further input could change them; everything after the
// last committed token is the remainder and is scanned again on every Push.
type Tokenizer struct {
	builder Builder

	src string
	// offset is where the remainder starts.
	offset    int
	committed []Spanned

	needMore bool
	err      error
}

// NewTokenizer creates an empty tokenizer. Finish hands its tokens to b.
func NewTokenizer(b Builder) *Tokenizer {
	return &Tokenizer{builder: b}
}

// Push appends input and commits every token it completes.
func (t *Tokenizer) Push(s string) {
	t.src += s
	t.scan(false)
}

// IsEmpty reports whether nothing but blanks has been pushed.
func (t *Tokenizer) IsEmpty() bool {
	if len(t.committed) > 0 {
		return false
	}
	rest := t.src[t.offset:]
	for i := 0; i < len(rest); i++ {
		if !isBlank(rest[i]) {
			return false
		}
	}
	return true
}

// NeedsMore reports whether the input stops inside a quote, escape or
// redirection that later input could complete.
func (t *Tokenizer) NeedsMore() bool {
	return t.needMore && t.err == nil
}

// Err returns the syntax error that stopped the last scan, if any.
func (t *Tokenizer) Err() error {
	return t.err
}

// Tokens returns the committed tokens.
func (t *Tokenizer) Tokens() []Spanned {
	return append([]Spanned(nil), t.committed...)
}

// Input returns everything pushed so far.
func (t *Tokenizer) Input() string {
	return t.src
}

// Remainder returns the input after the last committed token and where it
// starts.
func (t *Tokenizer) Remainder() (string, int) {
	return t.src[t.offset:], t.offset
}

// Flush ends the input and returns every token. Anything left open is a
// syntax error.
func (t *Tokenizer) Flush() ([]Spanned, error) {
	t.src += "\n"
	t.scan(true)
	if t.err != nil {
		return nil, t.err
	}
	return t.Tokens(), nil
}

// Finish ends the input and builds the pipeline it describes.
func (t *Tokenizer) Finish() (*Pipeline, error) {
	tokens, err := t.Flush()
	if err != nil {
		return nil, err
	}
	if t.builder == nil {
		return nil, errors.New("tokenizer has no builder")
	}
	return t.builder.Build(tokens)
}

// Reset discards all input and tokens.
func (t *Tokenizer) Reset() {
	*t = Tokenizer{builder: t.builder}
}

func (t *Tokenizer) scan(final bool) {
	t.needMore = false
	t.err = nil

	l := &lexer{src: t.src, pos: t.offset, final: final}
	for {
		l.skipBlanks()
		if l.atEnd() {
			t.offset = l.pos
			// a line ending in an escaped newline goes on
			t.needMore = l.joined && !final
			return
		}

		start := l.pos
		tok, err := nextToken(l)
		switch {
		case errors.Is(err, errNeedMore):
			t.needMore = true
			t.offset = start
			return
		case err != nil:
			t.err = err
			t.offset = start
			return
		}

		t.committed = append(t.committed, Spanned{Token: tok, Span: Span{Start: start, End: l.pos}})
		t.offset = l.pos
	}
}

// nextToken tries a redirection, then a pipe, then a plain word.
func nextToken(l *lexer) (Token, error) {
	if tok, ok, err := l.redirect(); ok || err != nil {
		return tok, err
	}

	if l.src[l.pos] == '|' {
		l.pos++
		return PipeToken{}, nil
	}

	w, ok, err := l.word()
	switch {
	case err != nil:
		return nil, err
	case !ok:
		return nil, &ParseError{Kind: MissingRedirectTarget, Offset: l.pos, Detail: "unexpected " + strconv.Quote(l.src[l.pos:l.pos+1])}
	}
	return WordToken{Text: w}, nil
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// redirect matches [n]>, [n]>>, [n]>|, [n]<, &> or &>> followed by a target
// word. ok is false if the cursor is not at a redirection.
func (l *lexer) redirect() (tok RedirectToken, ok bool, err error) {
	src := l.src
	start := l.pos

	i := start
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	digits := src[start:i]
	if i >= len(src) {
		return tok, false, nil
	}

	switch {
	case digits == "" && strings.HasPrefix(src[i:], "&>"):
		tok = RedirectToken{Dir: Out, Fd: 1, Both: true}
		i += 2
		if i < len(src) && src[i] == '>' {
			tok.Append = true
			i++
		}
	case src[i] == '>':
		tok = RedirectToken{Dir: Out, Fd: 1}
		i++
		if i < len(src) && src[i] == '>' {
			tok.Append = true
			i++
		} else if i < len(src) && src[i] == '|' {
			// noclobber is not supported, the marker is accepted and ignored
			i++
		}
	case src[i] == '<':
		tok = RedirectToken{Dir: In, Fd: 0}
		i++
	default:
		return tok, false, nil
	}

	if i >= len(src) && !l.final {
		// > may still become >> or >|
		return tok, true, errNeedMore
	}

	if digits != "" {
		fd, convErr := strconv.Atoi(digits)
		if convErr != nil || !validFd(tok.Dir, fd) {
			return tok, true, &ParseError{Kind: BadFileDescriptor, Offset: start, Detail: src[start:i]}
		}
		tok.Fd = fd
	}

	l.pos = i
	l.skipBlanks()
	target, found, err := l.word()
	switch {
	case err != nil:
		return tok, true, err
	case !found && l.atEnd() && !l.final:
		return tok, true, errNeedMore
	case !found:
		return tok, true, &ParseError{Kind: MissingRedirectTarget, Offset: start, Detail: src[start:i]}
	}
	tok.Target = target
	return tok, true, nil
}

func validFd(dir Direction, fd int) bool {
	if dir == In {
		return fd == 0
	}
	return fd == 1 || fd == 2
}
