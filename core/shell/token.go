package shell

import (
	"fmt"
	"strconv"
)

// Token is one of WordToken, PipeToken or RedirectToken.
type Token interface {
	fmt.Stringer
	isToken()
}

// WordToken is a command name or argument with quoting removed.
type WordToken struct {
	Text string
}

// PipeToken separates pipeline stages.
type PipeToken struct{}

// Direction of a redirection.
type Direction int

const (
	// In redirects a file to an input descriptor.
	In Direction = iota
	// Out redirects an output descriptor to a file.
	Out
)

// RedirectToken connects a descriptor of a stage to a file.
type RedirectToken struct {
	Dir Direction
	// Fd is 0 for input and 1 or 2 for output.
	Fd     int
	Append bool
	// Both is set by &> and &>>, which send stdout and stderr to Target.
	Both   bool
	Target string
}

func (WordToken) isToken()     {}
func (PipeToken) isToken()     {}
func (RedirectToken) isToken() {}

func (t WordToken) String() string {
	return strconv.Quote(t.Text)
}

func (PipeToken) String() string {
	return "|"
}

// Operator returns the redirection operator in canonical form.
func (t RedirectToken) Operator() string {
	switch {
	case t.Dir == In:
		return "<"
	case t.Both && t.Append:
		return "&>>"
	case t.Both:
		return "&>"
	case t.Append:
		return strconv.Itoa(t.Fd) + ">>"
	default:
		return strconv.Itoa(t.Fd) + ">"
	}
}

func (t RedirectToken) String() string {
	return t.Operator() + strconv.Quote(t.Target)
}

// Span is a half open byte range of the tokenizer's input.
type Span struct {
	Start, End int
}

// Spanned is a committed token and where it came from.
type Spanned struct {
	Token Token
	Span  Span
}

// Stage is one command of a ParsedLine.
type Stage struct {
	Words     []string
	Redirects []RedirectToken
}

// ParsedLine is a command line split on pipes. Every stage has a word.
type ParsedLine []Stage

// SplitStages groups tokens between pipes into stages.
func SplitStages(tokens []Spanned) (ParsedLine, error) {
	var (
		line ParsedLine
		cur  Stage
		// offset of the first token of cur, for error reporting
		curStart int
	)

	for _, st := range tokens {
		switch tok := st.Token.(type) {
		case PipeToken:
			if len(cur.Words) == 0 {
				return nil, &ParseError{Kind: EmptyStage, Offset: st.Span.Start}
			}
			line = append(line, cur)
			cur = Stage{}
			curStart = st.Span.End
		case WordToken:
			cur.Words = append(cur.Words, tok.Text)
		case RedirectToken:
			cur.Redirects = append(cur.Redirects, tok)
		}
	}

	if len(cur.Words) == 0 {
		if len(line) == 0 && len(cur.Redirects) == 0 {
			return nil, &ParseError{Kind: EmptyPipeline}
		}
		return nil, &ParseError{Kind: EmptyStage, Offset: curStart}
	}
	return append(line, cur), nil
}
