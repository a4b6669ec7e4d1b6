package racer

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dshills/racerkit/internal/log"
	"github.com/dshills/racerkit/internal/process"
	"github.com/dshills/racerkit/internal/protocol"
)

// Session owns one racer daemon and exchanges requests with it. A single
// mutex spans the scratch-file write, the command send and the response
// read, so at most one exchange is ever in flight.
type Session struct {
	mu       sync.Mutex
	launcher *process.Launcher
	proc     *process.Process
	lines    <-chan string
	quit     chan struct{}

	// stale is set when a read timeout fires. The daemon may still be
	// alive with an unread reply in the pipe, so the stream is no longer
	// aligned with requests and must not be read again until
	// RestartServer swaps in a fresh process and stream.
	stale bool

	readTimeout time.Duration
	logger      *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithReadTimeout bounds each response read. Zero (the default) disables
// the timeout; a hung daemon then blocks the calling goroutine until
// RestartServer is invoked from elsewhere. When the timeout fires, the
// session stops serving queries until RestartServer: the abandoned reply
// may still arrive on the old stream, and reading it would hand one
// request's answer to the next.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.readTimeout = d
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a session and starts the racer daemon.
func NewSession(launcher *process.Launcher, opts ...Option) (*Session, error) {
	s := &Session{
		launcher: launcher,
		logger:   log.Null,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("session")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.startLocked(); err != nil {
		return nil, err
	}

	return s, nil
}

// startLocked starts a fresh daemon and attaches its output stream.
// Must hold mu.
func (s *Session) startLocked() error {
	proc, err := s.launcher.Start()
	if err != nil {
		return err
	}
	s.attach(proc)
	return nil
}

// attach replaces the current process handle and starts a reader goroutine
// feeding response lines into a channel. The channel closes on pipe EOF,
// which is how a mid-request crash is detected. The quit channel releases
// a reader left blocked on an abandoned stream when the handle is replaced.
func (s *Session) attach(proc *process.Process) {
	if s.quit != nil {
		close(s.quit)
	}

	lines := make(chan string)
	quit := make(chan struct{})
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(proc.Stdout)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-quit:
				return
			}
		}
	}()

	s.proc = proc
	s.lines = lines
	s.quit = quit
	s.stale = false
}

// aliveLocked reports whether the daemon can serve a request: the process
// is running and the response stream is still aligned with requests.
// Must hold mu.
func (s *Session) aliveLocked() bool {
	return !s.stale && s.launcher.IsAlive(s.proc)
}

// Complete queries the daemon for completion candidates at the request
// position. The buffer contents are mirrored to a scratch file because the
// daemon only reads from disk; the scratch file is removed on every exit
// path. An empty batch yields an empty slice and no error.
func (s *Session) Complete(req RequestContext) ([]CompletionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.aliveLocked() {
		return nil, ErrServerNotRunning
	}

	scratch, err := writeScratch(req.Contents)
	if err != nil {
		return nil, fmt.Errorf("write scratch file: %w", err)
	}
	defer func() {
		_ = os.Remove(scratch)
	}()

	if err := s.send("complete",
		strconv.Itoa(req.Line),
		strconv.Itoa(req.StartColumn),
		req.Filepath,
		scratch,
	); err != nil {
		return nil, err
	}

	matches, err := s.readBatch()
	if err != nil {
		return nil, err
	}

	items := make([]CompletionItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, CompletionItem{
			InsertionText: m.Name,
			MenuText:      m.Name,
			Kind:          m.Kind,
			ExtraMenuInfo: m.Snippet,
		})
	}
	return items, nil
}

// GoToDefinition resolves the definition of the symbol at the request
// position. The first match line in the batch wins; a batch with no matches
// is ErrDefinitionNotFound.
func (s *Session) GoToDefinition(req RequestContext) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.aliveLocked() {
		return Location{}, ErrServerNotRunning
	}

	if err := s.send("find-definition",
		strconv.Itoa(req.Line),
		strconv.Itoa(req.Column),
		req.Filepath,
	); err != nil {
		return Location{}, err
	}

	matches, err := s.readBatch()
	if err != nil {
		return Location{}, err
	}
	if len(matches) == 0 {
		return Location{}, ErrDefinitionNotFound
	}

	m := matches[0]
	return Location{
		Filepath: m.Filepath,
		Line:     m.Line,
		Column:   m.Column,
	}, nil
}

// StartServer starts the daemon if it is not already alive.
func (s *Session) StartServer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.launcher.IsAlive(s.proc) {
		return ErrServerAlreadyRunning
	}
	return s.startLocked()
}

// StopServer terminates the daemon. Safe to call when already stopped.
func (s *Session) StopServer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.launcher.Stop(s.proc)
}

// RestartServer reaps the current daemon and starts a fresh one. This is
// the recovery path for crashes and hung exchanges.
func (s *Session) RestartServer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proc, err := s.launcher.Restart(s.proc)
	if err != nil {
		return err
	}
	s.attach(proc)
	return nil
}

// IsServerRunning reports whether the daemon is alive.
func (s *Session) IsServerRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.launcher.IsAlive(s.proc)
}

// send writes one encoded request line to the daemon. A write failure means
// the pipe is gone, which is a liveness condition.
func (s *Session) send(command string, args ...string) error {
	line := protocol.EncodeCommand(command, args...)
	s.logger.Debug("send: %q", line)

	if _, err := s.proc.Stdin.Write([]byte(line)); err != nil {
		return fmt.Errorf("%w: %v", ErrServerNotRunning, err)
	}
	return nil
}

// readBatch consumes response lines until the terminator, collecting match
// lines and ignoring everything else. EOF before the terminator means the
// daemon died mid-request; a read past the configured timeout means it
// hung. Both surface as ErrServerNotRunning.
func (s *Session) readBatch() ([]protocol.Match, error) {
	var matches []protocol.Match

	var deadline <-chan time.Time
	if s.readTimeout > 0 {
		timer := time.NewTimer(s.readTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return nil, fmt.Errorf("%w: response stream closed before terminator", ErrServerNotRunning)
			}
			if protocol.IsTerminator(line) {
				return matches, nil
			}
			if m, ok := protocol.ParseMatch(line); ok {
				matches = append(matches, m)
			}
		case <-deadline:
			// The reply, if it ever arrives, belongs to this request.
			// Mark the stream stale so it cannot be read as the answer
			// to a later one.
			s.stale = true
			return nil, fmt.Errorf("%w: no response within %s", ErrServerNotRunning, s.readTimeout)
		}
	}
}

// writeScratch mirrors buffer contents to a transient on-disk file.
func writeScratch(contents string) (string, error) {
	f, err := os.CreateTemp("", "racerkit-*.rs")
	if err != nil {
		return "", err
	}

	if _, err := f.WriteString(contents); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}

	return f.Name(), nil
}
