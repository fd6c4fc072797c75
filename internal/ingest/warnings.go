package ingest

import "fmt"

type WarningKind string

const (
	WarnMissingIdentifier WarningKind = "MISSING_IDENTIFIER"
	WarnRowSkipped        WarningKind = "ROW_SKIPPED"
)

// Warning is a non-fatal row-level problem found during an import step.
// Warnings are accumulated and returned next to the parsed result; they are
// never logged-and-forgotten. Row is 1-based counting the header row, so the
// first data row is 2 (lines up with spreadsheet row numbers).
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Row    int         `json:"row"`
	Reason string      `json:"reason,omitempty"`
}

// ParseError means the delimited text itself is malformed. It is fatal to the
// whole parse call and its message is meant to be shown to the user verbatim.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s csv: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
