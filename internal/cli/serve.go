package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dshills/racerkit/internal/config"
	"github.com/dshills/racerkit/internal/log"
	"github.com/dshills/racerkit/internal/racer"
)

// runServe handles `racerkit serve`: a long-lived loop executing subcommand
// lines from stdin against one shared session, with config live-reload.
func runServe(cmd *cobra.Command, args []string) error {
	session, logger, err := buildSession(cmd)
	if err != nil {
		return err
	}

	srv := &server{
		session: session,
		logger:  logger,
	}
	defer func() { _ = srv.stop() }()

	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	watcher, err := config.NewWatcher(cfgPath, srv.applyConfig, logger)
	if err != nil {
		logger.Warn("config watch disabled: %v", err)
	} else {
		watcher.Start()
		defer func() { _ = watcher.Close() }()
	}

	return srv.loop(cmd.InOrStdin(), cmd.OutOrStdout())
}

// server holds the serve loop's mutable session, swapped on config reload.
type server struct {
	mu      sync.Mutex
	session *racer.Session
	logger  *log.Logger
}

func (s *server) current() *racer.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *server) stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.StopServer()
}

// applyConfig swaps in a session built from the reloaded config. The old
// daemon is stopped; in-flight requests on it finish first because
// StopServer takes the session lock.
func (s *server) applyConfig(cfg config.Config) {
	fresh, err := newSessionFromConfig(cfg, s.logger)
	if err != nil {
		s.logger.Error("config change rejected: %v", err)
		return
	}

	s.mu.Lock()
	old := s.session
	s.session = fresh
	s.mu.Unlock()

	if err := old.StopServer(); err != nil {
		s.logger.Warn("stopping replaced daemon: %v", err)
	}
	s.logger.Info("daemon relaunched with updated config")
}

// loop reads subcommand lines until EOF. Each line is
//
//	<Subcommand> [file line col]
//
// and produces exactly one output line: a location, a status, or an error.
func (s *server) loop(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply := s.execLine(line)
		fmt.Fprintln(out, reply)
	}
	return scanner.Err()
}

// execLine parses and executes one request line.
func (s *server) execLine(line string) string {
	fields := strings.Fields(line)

	sub, err := racer.ParseSubcommand(fields[0])
	if err != nil {
		return "ERR " + err.Error()
	}

	req, err := parseRequest(sub, fields[1:])
	if err != nil {
		return "ERR " + err.Error()
	}

	res, err := s.current().Execute(sub, req)
	if err != nil {
		return "ERR " + err.Error()
	}

	switch {
	case res.Location != nil:
		return fmt.Sprintf("OK %s:%d:%d", res.Location.Filepath, res.Location.Line, res.Location.Column)
	case res.Running != nil:
		return fmt.Sprintf("OK running=%t", *res.Running)
	default:
		return "OK"
	}
}

// parseRequest builds the RequestContext for a subcommand's arguments.
// Only the go-to family takes arguments: file, line, col.
func parseRequest(sub racer.Subcommand, args []string) (racer.RequestContext, error) {
	switch sub {
	case racer.SubGoToDefinition, racer.SubGoToDeclaration, racer.SubGoTo:
		if len(args) != 3 {
			return racer.RequestContext{}, fmt.Errorf("%v expects: file line col", sub)
		}
		line, err := strconv.Atoi(args[1])
		if err != nil {
			return racer.RequestContext{}, fmt.Errorf("bad line number %q", args[1])
		}
		col, err := strconv.Atoi(args[2])
		if err != nil {
			return racer.RequestContext{}, fmt.Errorf("bad column %q", args[2])
		}
		return racer.RequestContext{Filepath: args[0], Line: line, Column: col}, nil
	default:
		if len(args) != 0 {
			return racer.RequestContext{}, fmt.Errorf("%v takes no arguments", sub)
		}
		return racer.RequestContext{}, nil
	}
}
