package diag

import (
	"sigil/internal/source"
)

// Section attaches annotated prose, optionally anchored at a secondary
// location, underneath the diagnostic header.
type Section struct {
	Span source.Span // zero span means "no location, prose only"
	Msg  string
}

// FixEdit is one concrete text edit of an autofix.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix describes an automated correction a driver can apply.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one structured error or warning with its source location.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Sections []Section
	Fixes    []Fix
}
