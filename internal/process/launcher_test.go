package process

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/racerkit/internal/log"
)

// writeFakeRacer writes an executable shell script that mimics the racer
// daemon: it echoes a MATCH line and END for every request line it reads.
func writeFakeRacer(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "racer")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake racer: %v", err)
	}
	return path
}

const echoDaemon = `#!/bin/sh
while read line; do
  echo "MATCH a,1,0,/f,fn,foo()"
  echo "END"
done
`

func newTestLauncher(t *testing.T, script string) *Launcher {
	t.Helper()
	l, err := NewLauncher(LauncherConfig{
		BinaryPath:     writeFakeRacer(t, script),
		RustSourcePath: t.TempDir(),
		Logger:         log.Null,
	})
	if err != nil {
		t.Fatalf("NewLauncher: %v", err)
	}
	return l
}

func TestNewLauncher_MissingBinary(t *testing.T) {
	_, err := NewLauncher(LauncherConfig{
		BinaryPath:     filepath.Join(t.TempDir(), "no-such-racer"),
		RustSourcePath: t.TempDir(),
	})
	if !errors.Is(err, ErrBinaryNotFound) {
		t.Errorf("expected ErrBinaryNotFound, got %v", err)
	}
}

func TestNewLauncher_MissingSourcePath(t *testing.T) {
	t.Setenv(RustSrcEnv, "")

	_, err := NewLauncher(LauncherConfig{
		BinaryPath: writeFakeRacer(t, echoDaemon),
	})
	if !errors.Is(err, ErrSourcePathNotFound) {
		t.Errorf("expected ErrSourcePathNotFound for unset path, got %v", err)
	}

	_, err = NewLauncher(LauncherConfig{
		BinaryPath:     writeFakeRacer(t, echoDaemon),
		RustSourcePath: filepath.Join(t.TempDir(), "missing"),
	})
	if !errors.Is(err, ErrSourcePathNotFound) {
		t.Errorf("expected ErrSourcePathNotFound for nonexistent path, got %v", err)
	}
}

func TestNewLauncher_SourcePathFromEnv(t *testing.T) {
	src := t.TempDir()
	t.Setenv(RustSrcEnv, src)

	l, err := NewLauncher(LauncherConfig{
		BinaryPath: writeFakeRacer(t, echoDaemon),
	})
	if err != nil {
		t.Fatalf("NewLauncher: %v", err)
	}
	if l.RustSourcePath() != src {
		t.Errorf("RustSourcePath() = %q, want %q", l.RustSourcePath(), src)
	}
}

func TestLauncher_StartAndStop(t *testing.T) {
	l := newTestLauncher(t, echoDaemon)

	proc, err := l.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !l.IsAlive(proc) {
		t.Error("expected process to be alive after Start")
	}
	if proc.PID() <= 0 {
		t.Errorf("expected positive pid, got %d", proc.PID())
	}
	if proc.ID == "" {
		t.Error("expected non-empty process ID")
	}

	if err := l.Stop(proc); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case <-proc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("process did not exit after Stop")
	}

	if l.IsAlive(proc) {
		t.Error("expected process to be dead after Stop")
	}
}

func TestLauncher_RoundTrip(t *testing.T) {
	l := newTestLauncher(t, echoDaemon)

	proc, err := l.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = l.Stop(proc) }()

	if _, err := proc.Stdin.Write([]byte("complete 1 0 /f /tmp/s\n")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	r := bufio.NewReader(proc.Stdout)
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if line != "MATCH a,1,0,/f,fn,foo()\n" {
		t.Errorf("unexpected response line %q", line)
	}
}

func TestLauncher_RestartAfterCrash(t *testing.T) {
	// Daemon that exits immediately, simulating a crash.
	l := newTestLauncher(t, "#!/bin/sh\nexit 3\n")

	proc, err := l.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-proc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("process did not crash")
	}

	if l.IsAlive(proc) {
		t.Error("expected IsAlive false after crash")
	}
	if proc.ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", proc.ExitCode())
	}

	// Restart must drain and reap the old handle, then produce a live one.
	fresh, err := l.Restart(proc)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	defer func() { _ = fresh.Kill() }()

	if fresh.ID == proc.ID {
		t.Error("expected a fresh process handle after restart")
	}
}

func TestLauncher_RestartWhileRunning(t *testing.T) {
	l := newTestLauncher(t, echoDaemon)

	proc, err := l.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	fresh, err := l.Restart(proc)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	defer func() { _ = fresh.Kill() }()

	if proc.IsRunning() {
		t.Error("old process still running after Restart")
	}
	if !fresh.IsRunning() {
		t.Error("new process not running after Restart")
	}
}

func TestLauncher_StopNilProcess(t *testing.T) {
	l := newTestLauncher(t, echoDaemon)
	if err := l.Stop(nil); err != nil {
		t.Errorf("Stop(nil) = %v, want nil", err)
	}
}

func TestProcess_StateTransitions(t *testing.T) {
	l := newTestLauncher(t, "#!/bin/sh\nexit 0\n")

	proc, err := l.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	<-proc.Done()

	if proc.State() != StateExited {
		t.Errorf("expected state %v, got %v", StateExited, proc.State())
	}
	if proc.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", proc.ExitCode())
	}
	if proc.ExitError() != nil {
		t.Errorf("expected nil exit error, got %v", proc.ExitError())
	}
	if err := proc.Terminate(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning signaling a dead process, got %v", err)
	}
}

func TestProcess_KilledState(t *testing.T) {
	l := newTestLauncher(t, "#!/bin/sh\nsleep 30\n")

	proc, err := l.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := proc.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	select {
	case <-proc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("process did not die")
	}

	if proc.State() != StateKilled {
		t.Errorf("expected state %v, got %v", StateKilled, proc.State())
	}
}
