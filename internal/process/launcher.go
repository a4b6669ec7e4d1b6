// Package process manages the racer daemon as a child process: binary and
// source-path resolution, launch with piped stdio, termination, and the
// drain-then-respawn restart used to recover from crashes and hung exchanges.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/uuid"

	"github.com/dshills/racerkit/internal/log"
)

// RustSrcEnv is the environment variable the racer daemon reads to locate
// the Rust standard library sources.
const RustSrcEnv = "RUST_SRC_PATH"

// daemonArg is the sub-mode argument that puts racer into its long-running
// request/response server mode.
const daemonArg = "daemon"

// Sentinel errors for launcher construction. Both are configuration
// preconditions: a Launcher refuses to come up without them.
var (
	// ErrBinaryNotFound indicates the racer binary could not be located.
	ErrBinaryNotFound = errors.New("racer binary not found")

	// ErrSourcePathNotFound indicates the Rust source path is unset or
	// does not exist.
	ErrSourcePathNotFound = errors.New("rust source path not found")
)

// LauncherConfig configures a Launcher.
type LauncherConfig struct {
	// BinaryPath is an explicit path to the racer binary.
	// When empty, the binary is resolved from $PATH.
	BinaryPath string

	// RustSourcePath is the Rust standard library source location.
	// When empty, $RUST_SRC_PATH is used.
	RustSourcePath string

	// Logger receives lifecycle events. Defaults to log.Null.
	Logger *log.Logger
}

// Launcher starts and stops racer daemon processes. It owns binary and
// source-path resolution; the session layer owns which single process is
// current at any time.
type Launcher struct {
	binary  string
	rustSrc string
	logger  *log.Logger
}

// NewLauncher resolves the racer binary and Rust source path and returns a
// ready Launcher. Resolution failures are fatal: no Launcher is returned.
func NewLauncher(cfg LauncherConfig) (*Launcher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Null
	}

	binary, err := resolveBinary(cfg.BinaryPath)
	if err != nil {
		return nil, err
	}

	rustSrc, err := resolveRustSource(cfg.RustSourcePath)
	if err != nil {
		return nil, err
	}

	return &Launcher{
		binary:  binary,
		rustSrc: rustSrc,
		logger:  logger.WithComponent("launcher"),
	}, nil
}

// resolveBinary locates the racer executable.
func resolveBinary(configured string) (string, error) {
	if configured != "" {
		info, err := os.Stat(configured)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, configured)
		}
		return configured, nil
	}

	path, err := exec.LookPath("racer")
	if err != nil {
		return "", ErrBinaryNotFound
	}
	return path, nil
}

// resolveRustSource locates the Rust standard library sources.
func resolveRustSource(configured string) (string, error) {
	path := configured
	if path == "" {
		path = os.Getenv(RustSrcEnv)
	}
	if path == "" {
		return "", ErrSourcePathNotFound
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourcePathNotFound, path)
	}
	return path, nil
}

// Binary returns the resolved racer binary path.
func (l *Launcher) Binary() string {
	return l.binary
}

// RustSourcePath returns the resolved Rust source path.
func (l *Launcher) RustSourcePath() string {
	return l.rustSrc
}

// Start launches a fresh racer daemon with piped stdin/stdout/stderr and an
// environment augmented with RUST_SRC_PATH.
func (l *Launcher) Start() (*Process, error) {
	cmd := exec.Command(l.binary, daemonArg)
	cmd.Env = append(os.Environ(), RustSrcEnv+"="+l.rustSrc)

	proc := newProcess(uuid.New().String(), cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	proc.Stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	proc.Stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}
	proc.Stderr = stderr

	if err := proc.start(); err != nil {
		_ = proc.Close()
		return nil, err
	}

	l.logger.Info("started racer daemon pid=%d id=%s", proc.PID(), proc.ID)
	return proc, nil
}

// Stop sends SIGTERM to the process. It does not wait for the process to
// exit or drain its output; use Restart for the full reap-and-respawn path.
func (l *Launcher) Stop(p *Process) error {
	if p == nil || !p.IsRunning() {
		return nil
	}
	if err := p.Terminate(); err != nil {
		return err
	}
	l.logger.Info("stopped racer daemon pid=%d", p.PID())
	return nil
}

// Restart terminates the current process, drains its remaining output and
// error streams to EOF so it is fully reaped, and starts a fresh daemon.
// This is the recovery path after a crash or a hung protocol exchange.
func (l *Launcher) Restart(p *Process) (*Process, error) {
	if p != nil {
		if p.IsRunning() {
			_ = p.Terminate()
		}
		p.drain()
		l.logger.Info("drained racer daemon pid=%d exit=%d", p.PID(), p.ExitCode())
	}

	return l.Start()
}

// IsAlive reports whether the process exists and has not exited. It does not
// distinguish a crash from a normal exit.
func (l *Launcher) IsAlive(p *Process) bool {
	return p != nil && p.IsRunning()
}
