package racer

import "errors"

// Standard errors returned by the completion session.
var (
	// ErrServerNotRunning indicates the racer daemon is not alive. It is
	// also returned when the daemon dies mid-request (pipe closed before
	// the terminator line arrived) or stops responding past the
	// configured read timeout.
	ErrServerNotRunning = errors.New("racer server not running")

	// ErrServerAlreadyRunning indicates StartServer was called while a
	// daemon is alive.
	ErrServerAlreadyRunning = errors.New("racer server already running")

	// ErrDefinitionNotFound indicates a find-definition batch contained
	// no match lines. Recoverable; the caller may retry or report it.
	ErrDefinitionNotFound = errors.New("definition not found")

	// ErrUnknownSubcommand indicates a subcommand outside the dispatch
	// table.
	ErrUnknownSubcommand = errors.New("unknown subcommand")
)
