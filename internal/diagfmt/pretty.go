// Package diagfmt renders diagnostics for human consumption. The data
// model stays in internal/diag; everything here is presentation.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sigil/internal/diag"
	"sigil/internal/source"
)

// PrettyOpts controls rendering.
type PrettyOpts struct {
	Color       bool
	ContextLine bool // print the offending source line with a caret underline
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	posColor  = color.New(color.Bold)
)

// Pretty writes the bag's diagnostics. Call bag.Sort() first for a stable
// order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		position(fs, d.Primary, opts),
		severity(d.Severity, opts),
		d.Code,
		d.Message,
	)
	if opts.ContextLine {
		writeContext(w, fs, d.Primary)
	}
	for _, section := range d.Sections {
		if section.Span == (source.Span{}) {
			fmt.Fprintf(w, "    %s\n", section.Msg)
			continue
		}
		fmt.Fprintf(w, "    %s: %s\n", position(fs, section.Span, opts), section.Msg)
		if opts.ContextLine {
			writeContext(w, fs, section.Span)
		}
	}
	for _, fix := range d.Fixes {
		fmt.Fprintf(w, "    fix: %s\n", fix.Title)
	}
}

// writeContext prints the source line with a caret underline sized by the
// rendered width of the spanned text.
func writeContext(w io.Writer, fs *source.FileSet, span source.Span) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "    %s\n", line)

	prefix := line
	if int(start.Col-1) <= len(line) {
		prefix = line[:start.Col-1]
	}
	pad := runewidth.StringWidth(prefix)

	spanned := ""
	if start.Line == end.Line && int(end.Col-1) <= len(line) && start.Col <= end.Col {
		spanned = line[start.Col-1 : end.Col-1]
	}
	carets := runewidth.StringWidth(spanned)
	if carets < 1 {
		carets = 1
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), strings.Repeat("^", carets))
}

func position(fs *source.FileSet, span source.Span, opts PrettyOpts) string {
	if fs == nil || fs.Get(span.File) == nil {
		return span.String()
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	text := fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
	if opts.Color {
		return posColor.Sprint(text)
	}
	return text
}

func severity(sev diag.Severity, opts PrettyOpts) string {
	text := sev.String()
	if !opts.Color {
		return text
	}
	switch sev {
	case diag.SevError:
		return errColor.Sprint(text)
	case diag.SevWarning:
		return warnColor.Sprint(text)
	default:
		return infoColor.Sprint(text)
	}
}
