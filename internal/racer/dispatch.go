package racer

import "fmt"

// Subcommand identifies one host-facing session operation. The set is
// closed: dispatch is exhaustive over these values.
type Subcommand int

const (
	// SubGoToDefinition jumps to the definition of the symbol at the cursor.
	SubGoToDefinition Subcommand = iota
	// SubGoToDeclaration is an alias for SubGoToDefinition; the racer
	// protocol does not distinguish declarations from definitions.
	SubGoToDeclaration
	// SubGoTo is a generic jump, also aliased to SubGoToDefinition.
	SubGoTo
	// SubStartServer starts the racer daemon.
	SubStartServer
	// SubStopServer stops the racer daemon.
	SubStopServer
	// SubRestartServer restarts the racer daemon.
	SubRestartServer
	// SubServerRunning reports daemon liveness.
	SubServerRunning
)

// String returns the host-facing subcommand name.
func (sc Subcommand) String() string {
	switch sc {
	case SubGoToDefinition:
		return "GoToDefinition"
	case SubGoToDeclaration:
		return "GoToDeclaration"
	case SubGoTo:
		return "GoTo"
	case SubStartServer:
		return "StartServer"
	case SubStopServer:
		return "StopServer"
	case SubRestartServer:
		return "RestartServer"
	case SubServerRunning:
		return "ServerRunning"
	default:
		return fmt.Sprintf("unknown(%d)", int(sc))
	}
}

// ParseSubcommand maps a host-facing name to its Subcommand.
func ParseSubcommand(name string) (Subcommand, error) {
	switch name {
	case "GoToDefinition":
		return SubGoToDefinition, nil
	case "GoToDeclaration":
		return SubGoToDeclaration, nil
	case "GoTo":
		return SubGoTo, nil
	case "StartServer":
		return SubStartServer, nil
	case "StopServer":
		return SubStopServer, nil
	case "RestartServer":
		return SubRestartServer, nil
	case "ServerRunning":
		return SubServerRunning, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSubcommand, name)
	}
}

// Result carries the output of Execute. Exactly one field is set for
// subcommands that produce a value; lifecycle subcommands leave both nil.
type Result struct {
	// Location is set by the go-to family.
	Location *Location

	// Running is set by ServerRunning.
	Running *bool
}

// Execute dispatches one subcommand against the session. The go-to family
// all route to GoToDefinition.
func (s *Session) Execute(sub Subcommand, req RequestContext) (Result, error) {
	switch sub {
	case SubGoToDefinition, SubGoToDeclaration, SubGoTo:
		loc, err := s.GoToDefinition(req)
		if err != nil {
			return Result{}, err
		}
		return Result{Location: &loc}, nil
	case SubStartServer:
		return Result{}, s.StartServer()
	case SubStopServer:
		return Result{}, s.StopServer()
	case SubRestartServer:
		return Result{}, s.RestartServer()
	case SubServerRunning:
		running := s.IsServerRunning()
		return Result{Running: &running}, nil
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrUnknownSubcommand, sub)
	}
}
