package shell

import (
	"errors"
	"strings"
)

const (
	singleQuote = '\''
	doubleQuote = '"'
	backslash   = '\\'
)

// errNeedMore means the input ends inside a word, quote or operator that
// more input could complete.
var errNeedMore = errors.New("need more input")

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// isMeta reports whether the unquoted byte at src[i] starts an operator and
// therefore ends the current word.
func isMeta(src string, i int) bool {
	switch src[i] {
	case '|', '<', '>':
		return true
	case '&':
		return i+1 < len(src) && src[i+1] == '>'
	}
	return false
}

// lexer is a cursor over shell input. When final is false, running out of
// input inside a construct yields errNeedMore instead of a result.
type lexer struct {
	src   string
	pos   int
	final bool
	// joined is set if the last thing skipped was an escaped newline.
	joined bool
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// skipBlanks advances past whitespace and escaped newlines.
func (l *lexer) skipBlanks() {
	l.joined = false
	for l.pos < len(l.src) {
		switch {
		case isBlank(l.src[l.pos]):
			l.joined = false
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "\\\n"):
			l.joined = true
			l.pos += 2
		default:
			return
		}
	}
}

// word reads the quoted, escaped and plain fragments that make up one word.
// ok is false if the cursor was not at a word.
func (l *lexer) word() (w string, ok bool, err error) {
	var sb strings.Builder
	start := l.pos

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isBlank(c) || isMeta(l.src, l.pos):
			return sb.String(), l.pos > start, nil
		case c == singleQuote:
			err = l.singleQuoted(&sb)
		case c == doubleQuote:
			err = l.doubleQuoted(&sb)
		case c == backslash:
			err = l.escaped(&sb)
		default:
			sb.WriteByte(c)
			l.pos++
		}
		if err != nil {
			return "", false, err
		}
	}

	switch {
	case l.pos == start:
		return "", false, nil
	case !l.final:
		// The next push may extend the word.
		return "", false, errNeedMore
	}
	return sb.String(), true, nil
}

// singleQuoted copies everything up to the closing quote verbatim.
func (l *lexer) singleQuoted(sb *strings.Builder) error {
	open := l.pos
	end := strings.IndexByte(l.src[open+1:], singleQuote)
	if end < 0 {
		return l.unterminated(open, "'")
	}
	sb.WriteString(l.src[open+1 : open+1+end])
	l.pos = open + end + 2
	return nil
}

// doubleQuoted copies up to the closing quote. A backslash only escapes
// $ ` " \ and newline; before anything else it is kept.
func (l *lexer) doubleQuoted(sb *strings.Builder) error {
	open := l.pos
	l.pos++

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case doubleQuote:
			l.pos++
			return nil
		case backslash:
			if l.pos+1 >= len(l.src) {
				return l.unterminated(open, `"`)
			}
			switch next := l.src[l.pos+1]; next {
			case '$', '`', doubleQuote, backslash:
				sb.WriteByte(next)
			case '\n':
				// line continuation
			default:
				sb.WriteByte(backslash)
				sb.WriteByte(next)
			}
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return l.unterminated(open, `"`)
}

// escaped takes the byte after an unquoted backslash literally. An escaped
// newline joins lines and contributes nothing.
func (l *lexer) escaped(sb *strings.Builder) error {
	if l.pos+1 >= len(l.src) {
		if !l.final {
			return errNeedMore
		}
		sb.WriteByte(backslash)
		l.pos++
		return nil
	}

	if next := l.src[l.pos+1]; next != '\n' {
		sb.WriteByte(next)
	}
	l.pos += 2
	return nil
}

func (l *lexer) unterminated(offset int, quote string) error {
	if !l.final {
		return errNeedMore
	}
	return &ParseError{Kind: UnterminatedQuote, Offset: offset, Detail: "missing closing " + quote}
}
