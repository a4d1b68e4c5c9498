package diag

import "sigil/internal/source"

// Reporter receives finished diagnostics from the checker. Implementations:
// BagReporter (accumulates into a Bag), NopReporter.
type Reporter interface {
	Report(d Diagnostic)
	// Suppressed reports whether the code is muted at the location, letting
	// call-sites skip expensive message formatting entirely.
	Suppressed(code Code, primary source.Span) bool
}

// BagReporter stores everything in a Bag, honoring an optional suppressed
// code set.
type BagReporter struct {
	Bag      *Bag
	Suppress map[Code]bool
}

func (r *BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

func (r *BagReporter) Suppressed(code Code, _ source.Span) bool {
	return r.Suppress[code]
}

// NopReporter drops everything. Every code counts as suppressed, so
// producers short-circuit their formatting.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

func (NopReporter) Suppressed(Code, source.Span) bool { return true }
