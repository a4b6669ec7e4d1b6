// Package main is the entry point for the racerkit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/dshills/racerkit/internal/cli"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
