package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/vos"
	"golang.org/x/sync/errgroup"
)

// link is the OS pipe between stage i and stage i+1.
type link struct {
	r, w *pipeEnd
}

// streams is the resolved stdio of one stage.
type streams struct {
	stdin          Endpoint
	stdout, stderr []Endpoint
}

// stage is a started pipeline stage. In-process stages have no cmd, their
// status is known once they are started.
type stage struct {
	argv   Argv
	cmd    *exec.Cmd
	status int
	// fwd runs the tasks pumping the stage's input and draining its output.
	fwd errgroup.Group
}

// Execute runs the pipeline and returns the exit status of its last stage.
//
// Stages start left to right. The shell waits for the last stage and the
// tasks forwarding its streams, then kills and reaps whatever earlier stage
// is still running.
func (p *Pipeline) Execute(ctx context.Context) (int, error) {
	defer p.Close()

	n := len(p.Commands)
	links := make([]*link, 0, n)
	defer func() {
		for _, l := range links {
			l.r.Close()
			l.w.Close()
		}
	}()
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			p.sh.record(&logger.StageFailure{Command: p.Commands[i].Resolved.Args(), Error: err.Error()})
			return StatusCannotExecute, &SpawnError{Name: p.Commands[i].Resolved.Name(), Err: err}
		}
		links = append(links, &link{r: &pipeEnd{f: r}, w: &pipeEnd{f: w}})
	}

	var started []*stage
	for i, cmd := range p.Commands {
		st, err := p.start(ctx, cmd, p.streamsFor(i, links))
		if err != nil {
			if st != nil {
				started = append(started, st)
			}
			p.reap(started)

			var exitErr *ExitError
			if errors.As(err, &exitErr) {
				return exitErr.Code, err
			}
			p.sh.record(&logger.StageFailure{Command: cmd.Resolved.Args(), Error: err.Error()})
			return StatusCannotExecute, err
		}
		started = append(started, st)
	}

	status := started[n-1].wait()
	p.reap(started[:n-1])

	p.sh.record(&logger.PipelineExit{Stages: n, Status: status})
	return status, nil
}

// streamsFor picks the stdio of stage i. Explicit redirections win over the
// pipes. A pipe end nobody is going to use is closed right away so its peer
// sees EOF or EPIPE.
func (p *Pipeline) streamsFor(i int, links []*link) streams {
	cmd := p.Commands[i]
	last := i == len(p.Commands)-1

	var s streams
	switch {
	case cmd.Stdin != nil:
		s.stdin = cmd.Stdin
		if i > 0 {
			links[i-1].r.Close()
		}
	case i == 0:
		s.stdin = Inherited{}
	case len(p.Commands[i-1].Stdout) > 0:
		s.stdin = None{}
		links[i-1].r.Close()
	default:
		s.stdin = &PipeRead{end: links[i-1].r}
	}

	switch {
	case len(cmd.Stdout) > 0:
		s.stdout = cmd.Stdout
		if !last {
			links[i].w.Close()
		}
	case last:
		s.stdout = []Endpoint{Inherited{}}
	default:
		s.stdout = []Endpoint{&PipeWrite{end: links[i].w}}
	}

	s.stderr = cmd.Stderr
	if len(s.stderr) == 0 {
		s.stderr = []Endpoint{Inherited{}}
	}
	return s
}

func (p *Pipeline) start(ctx context.Context, cmd *Command, s streams) (*stage, error) {
	switch r := cmd.Resolved.(type) {
	case External:
		return p.startExternal(ctx, r, s)

	case Builtin:
		p.sh.record(&logger.RunCommand{Command: r.Argv, Builtin: true})
		return p.runInProcess(r.Argv, s, func(inv *Invocation) int {
			return AllBuiltins[r.Name()].Main(inv, r.Argv)
		})

	case Invalid:
		p.sh.record(&logger.UnknownCommand{Command: r.Argv})
		return p.runInProcess(r.Argv, s, func(inv *Invocation) int {
			fmt.Fprintf(inv.Stdout, "%s: command not found\n", r.Name())
			return StatusNotFound
		})

	default:
		return nil, fmt.Errorf("unknown command type %T", r)
	}
}

// runInProcess runs a builtin, or the not-found report, synchronously. Output
// bound for the next stage is buffered and written to the pipe by a
// forwarding task so a full pipe never blocks the shell.
func (p *Pipeline) runInProcess(argv Argv, s streams, main func(inv *Invocation) int) (*stage, error) {
	st := &stage{argv: argv}

	// nothing in-process reads its input
	if in, ok := s.stdin.(*PipeRead); ok {
		in.end.Close()
	}

	stdout := p.bufferOutput(st, s.stdout, p.sh.Proc.Stdout())
	stderr := p.bufferOutput(st, s.stderr, p.sh.Proc.Stderr())

	inv := &Invocation{Shell: p.sh, Stdout: stdout.w, Stderr: stderr.w}
	st.status = main(inv)

	stdout.flush()
	stderr.flush()

	if inv.exitCode != nil {
		return st, &ExitError{Code: *inv.exitCode}
	}
	return st, nil
}

// bufferedOutput is where an in-process stage writes one of its streams.
type bufferedOutput struct {
	w io.Writer
	// flush hands what was written for pipes to forwarding tasks.
	flush func()
}

func (p *Pipeline) bufferOutput(st *stage, set []Endpoint, inherited io.Writer) bufferedOutput {
	var (
		writers []io.Writer
		pipes   []*pipeEnd
		buf     bytes.Buffer
	)
	for _, ep := range set {
		switch ep := ep.(type) {
		case Inherited:
			writers = append(writers, inherited)
		case *FileEndpoint:
			writers = append(writers, ep.File)
		case *PipeWrite:
			pipes = append(pipes, ep.end)
		}
	}
	if len(pipes) > 0 {
		writers = append(writers, &buf)
	}

	return bufferedOutput{
		w: io.MultiWriter(writers...),
		flush: func() {
			for _, end := range pipes {
				end := end
				st.fwd.Go(func() error {
					defer end.Close()
					_, err := end.f.Write(buf.Bytes())
					return p.forwardErr(st, err)
				})
			}
		},
	}
}

func (p *Pipeline) startExternal(ctx context.Context, r External, s streams) (*stage, error) {
	proc := p.sh.Proc
	st := &stage{argv: r.Argv}

	cmd := exec.CommandContext(ctx, r.Path)
	cmd.Args = r.Argv
	cmd.Dir = proc.Getwd()
	cmd.Env = proc.Environ()
	st.cmd = cmd

	w := &wiring{p: p, st: st}
	defer w.closeChildEnds()

	switch in := s.stdin.(type) {
	case Inherited:
		if f, ok := vos.OSFile(proc.Stdin()); ok {
			cmd.Stdin = f
		} else {
			cmd.Stdin = proc.Stdin()
		}
	case *PipeRead:
		cmd.Stdin = in.end.f
		w.childEnds = append(w.childEnds, in.end)
	case *FileEndpoint:
		if f, ok := vos.OSFile(in.File); ok {
			cmd.Stdin = f
			break
		}
		pr, pw, err := os.Pipe()
		if err != nil {
			return nil, &SpawnError{Name: r.Name(), Err: err}
		}
		cmd.Stdin = pr
		w.childEnds = append(w.childEnds, pr)
		w.taskEnds = append(w.taskEnds, pw)
		w.tasks = append(w.tasks, func() error {
			defer pw.Close()
			_, err := io.Copy(pw, in.File)
			return p.forwardErr(st, err)
		})
	}

	var err error
	if cmd.Stdout, err = w.output(s.stdout, proc.Stdout()); err != nil {
		w.abortTasks()
		return nil, err
	}
	if cmd.Stderr, err = w.output(s.stderr, proc.Stderr()); err != nil {
		w.abortTasks()
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		w.abortTasks()
		return nil, &SpawnError{Name: r.Name(), Err: err}
	}

	p.sh.record(&logger.RunCommand{Command: r.Argv, ResolvedCommandPath: r.Path})
	for _, task := range w.tasks {
		st.fwd.Go(task)
	}
	return st, nil
}

// wiring collects what an external stage needs around its Start call.
type wiring struct {
	p  *Pipeline
	st *stage

	// childEnds are closed by the shell once the child holds its copies.
	childEnds []io.Closer
	// taskEnds belong to forwarding tasks, which never run if the child
	// fails to start.
	taskEnds []io.Closer
	tasks    []func() error
}

func (w *wiring) closeChildEnds() {
	for _, c := range w.childEnds {
		c.Close()
	}
}

func (w *wiring) abortTasks() {
	for _, c := range w.taskEnds {
		c.Close()
	}
}

// output decides what a child writes one stream to. A single endpoint
// backed by an OS file is handed over directly. Anything else goes through
// a pipe drained by a task copying to every endpoint.
func (w *wiring) output(set []Endpoint, inherited io.Writer) (io.Writer, error) {
	if len(set) == 1 {
		switch ep := set[0].(type) {
		case *PipeWrite:
			w.childEnds = append(w.childEnds, ep.end)
			return ep.end.f, nil
		case Inherited:
			if f, ok := vos.OSFile(inherited); ok {
				return f, nil
			}
		case *FileEndpoint:
			if f, ok := vos.OSFile(ep.File); ok {
				return f, nil
			}
		}
	}

	var (
		writers []io.Writer
		pipes   []*pipeEnd
	)
	for _, ep := range set {
		switch ep := ep.(type) {
		case Inherited:
			writers = append(writers, inherited)
		case *FileEndpoint:
			writers = append(writers, ep.File)
		case *PipeWrite:
			writers = append(writers, ep.end.f)
			pipes = append(pipes, ep.end)
		}
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Name: w.st.argv.Name(), Err: err}
	}
	w.childEnds = append(w.childEnds, pw)
	w.taskEnds = append(w.taskEnds, pr)
	for _, end := range pipes {
		w.taskEnds = append(w.taskEnds, end)
	}

	sink := io.MultiWriter(writers...)
	w.tasks = append(w.tasks, func() error {
		defer func() {
			pr.Close()
			for _, end := range pipes {
				end.Close()
			}
		}()
		_, err := io.Copy(sink, pr)
		return w.p.forwardErr(w.st, err)
	})
	return pw, nil
}

// forwardErr turns a forwarding failure into a logged *RuntimeError. A
// reader that went away is not a failure.
func (p *Pipeline) forwardErr(st *stage, err error) error {
	if err == nil || errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	rtErr := &RuntimeError{Name: st.argv.Name(), Err: err}
	p.sh.Logger.Printf("%v", rtErr)
	p.sh.record(&logger.StageFailure{Command: st.argv, Error: err.Error()})
	return rtErr
}

// wait blocks until the stage and its forwarding tasks are done.
func (st *stage) wait() int {
	if st.cmd != nil {
		st.status = exitStatus(st.cmd.Wait())
	}
	if err := st.fwd.Wait(); err != nil && st.status == 0 {
		st.status = 1
	}
	return st.status
}

// reap kills stages that may still be running, then waits for them and
// their forwarding tasks.
func (p *Pipeline) reap(stages []*stage) {
	for _, st := range stages {
		if st.cmd != nil && st.cmd.Process != nil {
			if err := st.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				p.sh.Logger.Printf("killing %s: %v", st.argv.Name(), err)
			}
		}
	}
	for _, st := range stages {
		st.wait()
	}
}

// exitStatus maps the result of Wait to a shell status. Children killed by
// a signal report 128 plus the signal number.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return exitErr.ExitCode()
	}
	return 1
}
