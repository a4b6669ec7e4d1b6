// Package cli implements the racerkit command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/racerkit/internal/config"
	"github.com/dshills/racerkit/internal/log"
	"github.com/dshills/racerkit/internal/process"
	"github.com/dshills/racerkit/internal/racer"
)

// NewRootCommand builds the racerkit command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "racerkit",
		Short: "Rust code completion and navigation via the racer daemon",
		Long: `Racerkit drives a long-running racer daemon over its line protocol
and adapts its answers into completion candidates and go-to locations.

The racer binary is resolved from the config file, $RACERKIT_RACER_BINARY,
or $PATH; the Rust source tree from the config file, $RACERKIT_RUST_SRC_PATH,
or $RUST_SRC_PATH.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	completeCmd := &cobra.Command{
		Use:   "complete",
		Short: "List completion candidates at a position",
		RunE:  runComplete,
	}
	completeCmd.Flags().StringP("file", "f", "", "Source file path (required)")
	completeCmd.Flags().IntP("line", "l", 0, "1-based cursor line (required)")
	completeCmd.Flags().IntP("col", "c", 0, "1-based completion start column (required)")
	completeCmd.Flags().Bool("stdin", false, "Read buffer contents from stdin instead of the file")
	_ = completeCmd.MarkFlagRequired("file")
	_ = completeCmd.MarkFlagRequired("line")
	_ = completeCmd.MarkFlagRequired("col")

	definitionCmd := &cobra.Command{
		Use:     "definition",
		Aliases: []string{"def"},
		Short:   "Find the definition of the symbol at a position",
		RunE:    runDefinition,
	}
	definitionCmd.Flags().StringP("file", "f", "", "Source file path (required)")
	definitionCmd.Flags().IntP("line", "l", 0, "1-based cursor line (required)")
	definitionCmd.Flags().IntP("col", "c", 0, "1-based cursor column (required)")
	_ = definitionCmd.MarkFlagRequired("file")
	_ = definitionCmd.MarkFlagRequired("line")
	_ = definitionCmd.MarkFlagRequired("col")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an interactive session for editor integration",
		Long: `Serve keeps one racer daemon alive and executes subcommand lines read
from stdin, one per line:

  GoToDefinition <file> <line> <col>
  GoToDeclaration <file> <line> <col>
  GoTo <file> <line> <col>
  StartServer | StopServer | RestartServer | ServerRunning

The config file is watched; on change the daemon is relaunched with the
new settings.`,
		RunE: runServe,
	}

	rootCmd.AddCommand(completeCmd, definitionCmd, serveCmd)
	return rootCmd
}

// buildSession loads config and constructs the launcher and session shared
// by all commands.
func buildSession(cmd *cobra.Command) (*racer.Session, *log.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.Logging.Level),
		Prefix: "racerkit",
	})

	session, err := newSessionFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return session, logger, nil
}

// newSessionFromConfig wires a launcher and session from one Config.
func newSessionFromConfig(cfg config.Config, logger *log.Logger) (*racer.Session, error) {
	launcher, err := process.NewLauncher(process.LauncherConfig{
		BinaryPath:     cfg.Racer.BinaryPath,
		RustSourcePath: cfg.Racer.RustSourcePath,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("racer setup: %w", err)
	}

	timeout, err := cfg.ReadTimeout()
	if err != nil {
		return nil, err
	}

	return racer.NewSession(launcher,
		racer.WithReadTimeout(timeout),
		racer.WithLogger(logger),
	)
}
