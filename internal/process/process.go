package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

var (
	// ErrNotRunning is returned when an operation requires a live daemon.
	ErrNotRunning = errors.New("process not running")

	// ErrAlreadyStarted is returned when starting a daemon handle twice.
	ErrAlreadyStarted = errors.New("process already started")
)

// State is the lifecycle position of a daemon handle.
type State int

const (
	StateCreated State = iota // handle built, process not started
	StateRunning
	StateExited // exited on its own, normally or with an error code
	StateKilled // ended by a signal
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Process is one run of the racer daemon: the exec.Cmd, its stdio pipes,
// and exit bookkeeping filled in by a background wait. State and exit code
// may be read from any goroutine; pipe I/O is the session's to serialize.
type Process struct {
	ID      string
	Cmd     *exec.Cmd
	Stdin   io.WriteCloser
	Stdout  io.ReadCloser
	Stderr  io.ReadCloser
	Started time.Time

	done     chan struct{} // closed once the process is reaped
	state    atomic.Int32
	exitCode atomic.Int32 // -1 until exit

	mu      sync.Mutex
	exitErr error
}

// newProcess wraps a not-yet-started command. Launcher.Start runs it.
func newProcess(id string, cmd *exec.Cmd) *Process {
	p := &Process{
		ID:   id,
		Cmd:  cmd,
		done: make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))
	p.exitCode.Store(-1)
	return p
}

// start runs the command and begins waiting for its exit in the background.
func (p *Process) start() error {
	if p.State() != StateCreated {
		return ErrAlreadyStarted
	}

	if err := p.Cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.Cmd.Path, err)
	}
	p.Started = time.Now()
	p.state.Store(int32(StateRunning))

	go p.reap()
	return nil
}

// reap waits for exit, records how the process ended, and closes done.
// Runs once per handle, spawned by start.
func (p *Process) reap() {
	err := p.Cmd.Wait()

	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()

	code := 0
	state := StateExited
	var exit *exec.ExitError
	switch {
	case errors.As(err, &exit):
		code = exit.ExitCode()
		if ws, ok := exit.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			state = StateKilled
		}
	case err != nil:
		code = -1
	}

	p.exitCode.Store(int32(code))
	p.state.Store(int32(state))
	close(p.done)
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// IsRunning is the non-blocking liveness check. Exit is detected by the
// background wait, not by polling the OS on every call.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// ExitCode returns the exit code, or -1 if the process has not exited.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// ExitError returns the error from waiting on the process, if any.
func (p *Process) ExitError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Done returns a channel closed when the process has been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// PID returns the OS process ID, or -1 before start.
func (p *Process) PID() int {
	if p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// Signal delivers sig to a running process.
func (p *Process) Signal(sig os.Signal) error {
	if p.Cmd.Process == nil || !p.IsRunning() {
		return fmt.Errorf("signal %v: %w", sig, ErrNotRunning)
	}
	return p.Cmd.Process.Signal(sig)
}

// Terminate asks the daemon to exit with SIGTERM.
func (p *Process) Terminate() error {
	return p.Signal(syscall.SIGTERM)
}

// Kill ends the daemon with SIGKILL.
func (p *Process) Kill() error {
	return p.Signal(syscall.SIGKILL)
}

// drain reads the remaining stdout and stderr to EOF and waits for the
// reap. Called during restart so the old daemon cannot linger on a full
// pipe buffer.
func (p *Process) drain() {
	var wg sync.WaitGroup
	for _, r := range []io.Reader{p.Stdout, p.Stderr} {
		if r == nil {
			continue
		}
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			_, _ = io.Copy(io.Discard, r)
		}(r)
	}
	wg.Wait()
	<-p.done
}

// Close releases the stdio pipes without killing the process.
func (p *Process) Close() error {
	pipes := []struct {
		name string
		c    io.Closer
	}{
		{"stdin", p.Stdin},
		{"stdout", p.Stdout},
		{"stderr", p.Stderr},
	}

	var errs []error
	for _, pipe := range pipes {
		if pipe.c == nil {
			continue
		}
		if err := pipe.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", pipe.name, err))
		}
	}
	return errors.Join(errs...)
}
