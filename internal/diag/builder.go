package diag

import "sigil/internal/source"

// Builder accumulates one diagnostic before emitting it. Begin returns nil
// when the category is suppressed; callers are expected to guard with
// `if e := Begin(...); e != nil { ... }` and skip formatting otherwise.
type Builder struct {
	reporter Reporter
	diag     Diagnostic
}

// Begin starts a diagnostic at the code's default severity, or returns nil
// when the reporter suppresses the code at this location.
func Begin(r Reporter, code Code, primary source.Span) *Builder {
	if r == nil || r.Suppressed(code, primary) {
		return nil
	}
	return &Builder{
		reporter: r,
		diag: Diagnostic{
			Severity: code.DefaultSeverity(),
			Code:     code,
			Primary:  primary,
		},
	}
}

// Header sets the formatted one-line message.
func (b *Builder) Header(msg string) *Builder {
	if b == nil {
		return nil
	}
	b.diag.Message = msg
	return b
}

// Section adds annotated prose with a secondary location.
func (b *Builder) Section(span source.Span, msg string) *Builder {
	if b == nil {
		return nil
	}
	b.diag.Sections = append(b.diag.Sections, Section{Span: span, Msg: msg})
	return b
}

// Note adds prose without a location.
func (b *Builder) Note(msg string) *Builder {
	return b.Section(source.Span{}, msg)
}

// Fix attaches an automated correction.
func (b *Builder) Fix(title string, edits ...FixEdit) *Builder {
	if b == nil {
		return nil
	}
	b.diag.Fixes = append(b.diag.Fixes, Fix{Title: title, Edits: edits})
	return b
}

// Emit hands the finished diagnostic to the reporter.
func (b *Builder) Emit() {
	if b == nil {
		return
	}
	b.reporter.Report(b.diag)
}
