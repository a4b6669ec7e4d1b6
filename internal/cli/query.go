package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/racerkit/internal/racer"
)

// runComplete handles `racerkit complete`.
func runComplete(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	line, _ := cmd.Flags().GetInt("line")
	col, _ := cmd.Flags().GetInt("col")
	fromStdin, _ := cmd.Flags().GetBool("stdin")

	contents, err := readBuffer(cmd.InOrStdin(), file, fromStdin)
	if err != nil {
		return err
	}

	session, _, err := buildSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = session.StopServer() }()

	items, err := session.Complete(racer.RequestContext{
		Filepath:    file,
		Line:        line,
		StartColumn: col,
		Contents:    contents,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, item := range items {
		fmt.Fprintf(out, "%s\t%s\t%s\n", item.InsertionText, item.Kind, item.ExtraMenuInfo)
	}
	return nil
}

// runDefinition handles `racerkit definition`.
func runDefinition(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	line, _ := cmd.Flags().GetInt("line")
	col, _ := cmd.Flags().GetInt("col")

	session, _, err := buildSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = session.StopServer() }()

	loc, err := session.GoToDefinition(racer.RequestContext{
		Filepath: file,
		Line:     line,
		Column:   col,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d\n", loc.Filepath, loc.Line, loc.Column)
	return nil
}

// readBuffer returns the buffer contents for a completion request, either
// the unsaved text piped on stdin or the on-disk file.
func readBuffer(stdin io.Reader, file string, fromStdin bool) (string, error) {
	if fromStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read buffer: %w", err)
	}
	return string(data), nil
}
