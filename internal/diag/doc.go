// Package diag defines the diagnostic model shared by the checker core.
//
// Diagnostic is the central record: a severity, a stable numeric Code, a
// formatted header, the primary source span, and optional sections that add
// annotated secondary locations. Producers start a diagnostic with Begin,
// which returns nil when the code is suppressed so call-sites can skip the
// formatting work; Bag collects the results with a cap, stable sort and
// deduplication.
//
// The package performs no formatting or IO. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver and the CLI.
package diag
