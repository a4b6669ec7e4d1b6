package protocol

import (
	"strings"
	"testing"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
		want    string
	}{
		{
			name:    "complete request",
			command: "complete",
			args:    []string{"12", "4", "/src/main.rs", "/tmp/scratch"},
			want:    "complete 12 4 /src/main.rs /tmp/scratch\n",
		},
		{
			name:    "find-definition request",
			command: "find-definition",
			args:    []string{"3", "8", "/src/lib.rs"},
			want:    "find-definition 3 8 /src/lib.rs\n",
		},
		{
			name:    "no arguments",
			command: "daemon",
			want:    "daemon\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeCommand(tt.command, tt.args...)
			if got != tt.want {
				t.Errorf("EncodeCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMatch(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Match
		wantOK bool
	}{
		{
			name: "basic match",
			line: "MATCH a,1,0,/f,fn,foo()",
			want: Match{
				Name:     "a",
				Line:     1,
				Column:   1, // 0-based on the wire, shifted to 1-based
				Filepath: "/f",
				Kind:     "fn",
				Snippet:  "foo()",
			},
			wantOK: true,
		},
		{
			name: "snippet containing commas is not re-split",
			line: "MATCH a,1,0,/f,fn,foo(a, b)",
			want: Match{
				Name:     "a",
				Line:     1,
				Column:   1,
				Filepath: "/f",
				Kind:     "fn",
				Snippet:  "foo(a, b)",
			},
			wantOK: true,
		},
		{
			name: "full path and kind",
			line: "MATCH Vec,128,11,/rust/src/libcollections/vec.rs,Struct,pub struct Vec<T>",
			want: Match{
				Name:     "Vec",
				Line:     128,
				Column:   12,
				Filepath: "/rust/src/libcollections/vec.rs",
				Kind:     "Struct",
				Snippet:  "pub struct Vec<T>",
			},
			wantOK: true,
		},
		{
			name: "terminator is not a match",
			line: "END",
		},
		{
			name: "diagnostic chatter is not a match",
			line: "racer: searching /rust/src",
		},
		{
			name: "empty line is not a match",
			line: "",
		},
		{
			name: "too few fields",
			line: "MATCH a,1,0,/f,fn",
		},
		{
			name: "non-numeric line number",
			line: "MATCH a,x,0,/f,fn,foo()",
		},
		{
			name: "non-numeric column",
			line: "MATCH a,1,x,/f,fn,foo()",
		},
		{
			name: "prefix without space is not a match",
			line: "MATCHa,1,0,/f,fn,foo()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMatch(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseMatch(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !tt.wantOK {
				if got != (Match{}) {
					t.Errorf("ParseMatch(%q) = %+v, want zero Match", tt.line, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseMatch(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

// TestParseMatch_Total feeds arbitrary garbage and ensures the parser never
// panics: every input yields either a match or (zero, false).
func TestParseMatch_Total(t *testing.T) {
	inputs := []string{
		"MATCH ",
		"MATCH ,,,,,",
		"MATCH \x00,\xff,0,/f,fn,s",
		strings.Repeat("MATCH a,1,0,/f,fn,s\n", 100),
		strings.Repeat(",", 1000),
		"END ",
		" END",
	}

	for _, in := range inputs {
		got, ok := ParseMatch(in)
		if !ok && got != (Match{}) {
			t.Errorf("ParseMatch(%q) = %+v with ok=false, want zero Match", in, got)
		}
	}
}

func TestParseMatch_Idempotent(t *testing.T) {
	line := "MATCH a,1,0,/f,fn,foo()"
	first, ok1 := ParseMatch(line)
	second, ok2 := ParseMatch(line)
	if !ok1 || !ok2 || first != second {
		t.Errorf("ParseMatch not idempotent: %+v vs %+v", first, second)
	}
}

func TestIsTerminator(t *testing.T) {
	if !IsTerminator("END") {
		t.Error("expected END to be the terminator")
	}
	for _, line := range []string{"", "END ", " END", "end", "MATCH a,1,0,/f,fn,s"} {
		if IsTerminator(line) {
			t.Errorf("IsTerminator(%q) = true, want false", line)
		}
	}
}
