// Package protocol implements the line-oriented wire protocol spoken by the
// racer daemon.
//
// Requests are a single line of space-joined words terminated by a newline.
// Responses are zero or more lines, each either a match line of the form
//
//	MATCH name,line,col,filepath,kind,snippet
//
// or diagnostic chatter to be ignored, followed by the terminator line "END".
// The protocol has no quoting or escaping rules: argument values (file paths
// in particular) must not contain spaces or newlines. That is a constraint of
// the racer protocol itself, preserved here rather than worked around.
package protocol

import (
	"strconv"
	"strings"
)

const (
	// matchPrefix marks a response line carrying one candidate.
	matchPrefix = "MATCH "

	// terminator marks the end of one response batch.
	terminator = "END"

	// matchFieldCount is the number of comma-separated fields after the
	// prefix. The split is bounded so commas inside the snippet survive.
	matchFieldCount = 6
)

// Match is one parsed completion or definition candidate.
// Line and Column are 1-based; the wire format carries a 0-based column,
// which is shifted during parsing so consumers never see the raw value.
type Match struct {
	Name     string
	Line     int
	Column   int
	Filepath string
	Kind     string
	Snippet  string
}

// EncodeCommand serializes a command and its arguments into one request line.
// Arguments are emitted in the order given, space-joined, newline-terminated.
func EncodeCommand(command string, args ...string) string {
	if len(args) == 0 {
		return command + "\n"
	}
	return command + " " + strings.Join(args, " ") + "\n"
}

// ParseMatch decodes one response line. It returns the parsed match and true
// for well-formed match lines, and the zero Match and false for anything else
// (the terminator, diagnostic output, or malformed match lines). It never
// panics regardless of input.
func ParseMatch(line string) (Match, bool) {
	rest, ok := strings.CutPrefix(line, matchPrefix)
	if !ok {
		return Match{}, false
	}

	parts := strings.SplitN(rest, ",", matchFieldCount)
	if len(parts) != matchFieldCount {
		return Match{}, false
	}

	lineNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return Match{}, false
	}
	colNum, err := strconv.Atoi(parts[2])
	if err != nil {
		return Match{}, false
	}

	return Match{
		Name:     parts[0],
		Line:     lineNum,
		Column:   colNum + 1, // racer reports 0-based columns
		Filepath: parts[3],
		Kind:     parts[4],
		Snippet:  parts[5],
	}, true
}

// IsTerminator reports whether line is the end-of-batch sentinel.
func IsTerminator(line string) bool {
	return line == terminator
}
