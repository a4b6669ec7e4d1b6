package racer

// RequestContext carries one query from the host editor. Line, Column and
// StartColumn are 1-based. Contents holds the full buffer, which may differ
// from the on-disk file.
type RequestContext struct {
	// Filepath is the on-disk path of the buffer's file.
	Filepath string

	// Line is the cursor line.
	Line int

	// Column is the cursor column, used by definition lookups.
	Column int

	// StartColumn is the column where the completion candidate begins,
	// used by completion requests.
	StartColumn int

	// Contents is the buffer text, possibly unsaved.
	Contents string
}

// CompletionItem is one completion candidate adapted for the host.
type CompletionItem struct {
	// InsertionText is the text inserted when the candidate is accepted.
	InsertionText string

	// MenuText is the text shown in the completion menu.
	MenuText string

	// Kind is racer's free-form category tag (fn, Struct, Module, ...).
	Kind string

	// ExtraMenuInfo is the one-line context snippet from the source.
	ExtraMenuInfo string
}

// Location is a resolved go-to target. Line and Column are 1-based.
type Location struct {
	Filepath string
	Line     int
	Column   int
}
