package shell

import (
	"os"
	"sync"

	"github.com/spf13/afero"
)

// Endpoint is where a stage stream goes: Inherited, *FileEndpoint,
// *PipeRead, *PipeWrite or None.
type Endpoint interface {
	isEndpoint()
}

// Inherited is the shell's own stream.
type Inherited struct{}

// None is a stream that reads as empty and discards writes.
type None struct{}

// FileEndpoint is a redirect target opened at build time.
type FileEndpoint struct {
	Path   string
	Append bool
	File   afero.File

	once sync.Once
}

// Close releases the file. It is safe to call more than once.
func (f *FileEndpoint) Close() error {
	var err error
	f.once.Do(func() { err = f.File.Close() })
	return err
}

// pipeEnd is one end of an OS pipe, closed at most once.
type pipeEnd struct {
	f    *os.File
	once sync.Once
}

func (p *pipeEnd) Close() error {
	var err error
	p.once.Do(func() { err = p.f.Close() })
	return err
}

// PipeRead is the read end of the pipe from the previous stage.
type PipeRead struct {
	end *pipeEnd
}

// PipeWrite is the write end of the pipe to the next stage.
type PipeWrite struct {
	end *pipeEnd
}

func (Inherited) isEndpoint()     {}
func (None) isEndpoint()          {}
func (*FileEndpoint) isEndpoint() {}
func (*PipeRead) isEndpoint()     {}
func (*PipeWrite) isEndpoint()    {}

// Command is a resolved stage with the redirections of its line attached.
// Unset streams are filled in when the pipeline runs.
type Command struct {
	Resolved Resolved
	// Stdin is nil or the file of the last input redirection.
	Stdin Endpoint
	// Stdout and Stderr are fan-out sets; every endpoint gets a copy.
	Stdout []Endpoint
	Stderr []Endpoint
}

// Pipeline is a built command line ready to execute. It owns the files its
// redirections opened.
type Pipeline struct {
	Commands []*Command

	sh    *Shell
	files []*FileEndpoint
}

// Build splits tokens into stages, resolves each command and opens every
// redirect target. Nothing is spawned; on failure all opened files are
// closed again.
func (s *Shell) Build(tokens []Spanned) (*Pipeline, error) {
	line, err := SplitStages(tokens)
	if err != nil {
		return nil, err
	}
	return s.BuildLine(line)
}

// BuildLine resolves and opens the redirections of an already split line.
func (s *Shell) BuildLine(line ParsedLine) (*Pipeline, error) {
	if len(line) == 0 {
		return nil, &ParseError{Kind: EmptyPipeline}
	}

	p := &Pipeline{sh: s}
	for _, stage := range line {
		cmd := &Command{Resolved: s.Resolve(stage.Words)}
		for _, r := range stage.Redirects {
			if err := p.attach(cmd, r); err != nil {
				p.Close()
				return nil, err
			}
		}
		p.Commands = append(p.Commands, cmd)
	}
	return p, nil
}

func (p *Pipeline) attach(cmd *Command, r RedirectToken) error {
	flag := os.O_RDONLY
	if r.Dir == Out {
		flag = os.O_WRONLY | os.O_CREATE
		if r.Append {
			flag |= os.O_APPEND
		} else {
			flag |= os.O_TRUNC
		}
	}

	f, err := p.sh.Proc.OpenFile(r.Target, flag, 0644)
	if err != nil {
		return &IoError{Path: r.Target, Err: err}
	}
	ep := &FileEndpoint{Path: r.Target, Append: r.Append, File: f}
	p.files = append(p.files, ep)

	switch {
	case r.Dir == In:
		// the last input redirection wins
		cmd.Stdin = ep
	case r.Both:
		cmd.Stdout = append(cmd.Stdout, ep)
		cmd.Stderr = append(cmd.Stderr, ep)
	case r.Fd == 2:
		cmd.Stderr = append(cmd.Stderr, ep)
	default:
		cmd.Stdout = append(cmd.Stdout, ep)
	}
	return nil
}

// Close releases every file the pipeline opened.
func (p *Pipeline) Close() {
	for _, f := range p.files {
		f.Close()
	}
}
