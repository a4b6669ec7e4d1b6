// Package racer provides the completion session that drives a racer daemon.
//
// The racer daemon answers Rust code-completion and definition-lookup
// queries over a synchronous, newline-delimited protocol on its stdin and
// stdout pipes. The protocol has no request identifiers: it is strictly one
// request, then one response batch. The Session therefore serializes every
// interaction with the daemon, including server lifecycle operations, under
// a single mutex.
//
// # Quick Start
//
//	launcher, err := process.NewLauncher(process.LauncherConfig{
//	    RustSourcePath: "/path/to/rust/src",
//	})
//	if err != nil {
//	    return err // configuration precondition failed
//	}
//
//	session, err := racer.NewSession(launcher)
//	if err != nil {
//	    return err
//	}
//	defer session.StopServer()
//
//	items, err := session.Complete(racer.RequestContext{
//	    Filepath:    "/src/main.rs",
//	    Line:        10,
//	    StartColumn: 5,
//	    Contents:    bufferContents,
//	})
//
// # Scratch Files
//
// The daemon only reads source from disk, while the editor's buffer may
// contain unsaved changes. Complete writes the buffer to a temporary scratch
// file for the duration of one request and removes it on every exit path.
//
// # Crash Recovery
//
// A daemon that exits mid-request surfaces as ErrServerNotRunning, never as
// an empty result. The same goes for a daemon that outlives the configured
// read timeout: its eventual reply belongs to the request that gave up, so
// the session refuses further queries rather than misattribute it. The only
// recovery for a stuck or crashed daemon is RestartServer, which reaps the
// old process and starts a fresh one with a fresh response stream.
//
// # Thread Safety
//
// Session is safe for concurrent use. All public operations block for the
// full critical section; none are lock-free.
package racer
