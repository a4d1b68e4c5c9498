package names

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Ref is a small handle for an interned name. Equality is handle equality.
type Ref uint32

// NoName marks the absence of a name.
const NoName Ref = 0

// IsValid reports whether the ref points at an interned name.
func (r Ref) IsValid() bool { return r != NoName }

// Kind distinguishes the two flavors of names the checker works with.
type Kind uint8

const (
	// UTF8 names come straight from program text.
	UTF8 Kind = iota
	// Unique names are synthesized by the checker; they carry a tag and a
	// numeric discriminator and never collide with source identifiers.
	Unique
)

// UniqueKind tags a synthesized name with the reason it was created.
type UniqueKind uint8

const (
	UniqueNone UniqueKind = iota
	// UniqueSingleton names the companion singleton class of a class.
	UniqueSingleton
	// UniqueMangleRename is used when a duplicate definition with a
	// conflicting kind has to be moved out of the way.
	UniqueMangleRename
	// UniqueTypeTemplate is reserved for singleton-scoped type parameters.
	UniqueTypeTemplate
)

func (k UniqueKind) String() string {
	switch k {
	case UniqueSingleton:
		return "singleton"
	case UniqueMangleRename:
		return "mangled"
	case UniqueTypeTemplate:
		return "template"
	default:
		return "unique"
	}
}

type entry struct {
	kind     Kind
	raw      string     // UTF8 only
	uniq     UniqueKind // Unique only
	original Ref        // Unique only
	num      uint32     // Unique only
}

type uniqueKey struct {
	uniq     UniqueKind
	original Ref
	num      uint32
}

// Table uniques identifier strings and synthesized names to small handles.
// Index 0 is reserved for NoName.
type Table struct {
	entries []entry
	index   map[string]Ref
	uindex  map[uniqueKey]Ref
}

// NewTable builds a table with the well-known names pre-interned.
func NewTable() *Table {
	t := &Table{
		entries: make([]entry, 1, 128),
		index:   map[string]Ref{"": NoName},
		uindex:  make(map[uniqueKey]Ref),
	}
	internWellKnown(t)
	return t
}

// Intern inserts a UTF-8 name and returns its ref; repeated calls with the
// same string return the same ref.
func (t *Table) Intern(s string) Ref {
	if id, ok := t.index[s]; ok {
		return id
	}
	// Own copy, so the handle does not pin the caller's buffer.
	cpy := string([]byte(s))
	id := t.next()
	t.entries = append(t.entries, entry{kind: UTF8, raw: cpy})
	t.index[cpy] = id
	return id
}

// InternBytes inserts raw bytes as a UTF-8 name.
func (t *Table) InternBytes(b []byte) Ref {
	return t.Intern(string(b))
}

// Unique returns the synthesized name (uniq, original, num), creating it on
// first use.
func (t *Table) Unique(uniq UniqueKind, original Ref, num uint32) Ref {
	key := uniqueKey{uniq: uniq, original: original, num: num}
	if id, ok := t.uindex[key]; ok {
		return id
	}
	id := t.next()
	t.entries = append(t.entries, entry{kind: Unique, uniq: uniq, original: original, num: num})
	t.uindex[key] = id
	return id
}

func (t *Table) next() Ref {
	value, err := safecast.Conv[uint32](len(t.entries))
	if err != nil {
		panic(fmt.Errorf("names table overflow: %w", err))
	}
	return Ref(value)
}

// Kind reports the flavor of the name.
func (t *Table) Kind(r Ref) Kind {
	if !t.Has(r) {
		return UTF8
	}
	return t.entries[r].kind
}

// UniqueInfo returns the tag, original name and discriminator of a unique
// name. ok is false for UTF-8 names.
func (t *Table) UniqueInfo(r Ref) (uniq UniqueKind, original Ref, num uint32, ok bool) {
	if !t.Has(r) || t.entries[r].kind != Unique {
		return UniqueNone, NoName, 0, false
	}
	e := t.entries[r]
	return e.uniq, e.original, e.num, true
}

// Value renders the name as a string. Unique names use an angle-bracketed
// form that cannot appear in source.
func (t *Table) Value(r Ref) string {
	if !t.Has(r) {
		return ""
	}
	e := t.entries[r]
	if e.kind == UTF8 {
		return e.raw
	}
	return fmt.Sprintf("<%s:%s#%d>", e.uniq, t.Value(e.original), e.num)
}

// MustValue is Value that panics for an invalid ref.
func (t *Table) MustValue(r Ref) string {
	if !t.Has(r) {
		panic("names: invalid Ref")
	}
	return t.Value(r)
}

// IsConstant reports whether the name starts with an uppercase letter, the
// source language's marker for constants. Unique names inherit the answer
// from their original name; this partitions fuzzy search.
func (t *Table) IsConstant(r Ref) bool {
	if !t.Has(r) {
		return false
	}
	e := t.entries[r]
	if e.kind == Unique {
		return t.IsConstant(e.original)
	}
	if e.raw == "" {
		return false
	}
	c := e.raw[0]
	return c >= 'A' && c <= 'Z'
}

// Has reports whether the ref is allocated. NoName is not a valid name.
func (t *Table) Has(r Ref) bool {
	return r != NoName && int(r) < len(t.entries)
}

// Len reports the number of entries including the NoName sentinel.
func (t *Table) Len() int { return len(t.entries) }

// Snapshot returns every UTF-8 name in allocation order; unique names are
// rendered. The serializer does not use it; it goes through Export.
func (t *Table) Snapshot() []string {
	out := make([]string, len(t.entries))
	for i := range t.entries {
		out[i] = t.Value(Ref(i)) // #nosec G115 -- bounded by table size
	}
	return out
}

// ShowRaw renders a name for debug output, marking the flavor.
func (t *Table) ShowRaw(r Ref) string {
	if !t.Has(r) {
		return "<none>"
	}
	e := t.entries[r]
	if e.kind == UTF8 {
		var b strings.Builder
		b.WriteString(e.raw)
		return b.String()
	}
	return t.Value(r)
}

// Clone deep-copies the table. Refs remain valid in both copies.
func (t *Table) Clone() *Table {
	cp := &Table{
		entries: append([]entry(nil), t.entries...),
		index:   make(map[string]Ref, len(t.index)),
		uindex:  make(map[uniqueKey]Ref, len(t.uindex)),
	}
	for k, v := range t.index {
		cp.index[k] = v
	}
	for k, v := range t.uindex {
		cp.uindex[k] = v
	}
	return cp
}

// ExportedName is the serialized form of one table entry.
type ExportedName struct {
	Kind     uint8
	Raw      string
	Uniq     uint8
	Original uint32
	Num      uint32
}

// Export dumps the table in allocation order, sentinel included, for the
// serializer.
func (t *Table) Export() []ExportedName {
	out := make([]ExportedName, len(t.entries))
	for i, e := range t.entries {
		out[i] = ExportedName{
			Kind:     uint8(e.kind),
			Raw:      e.raw,
			Uniq:     uint8(e.uniq),
			Original: uint32(e.original),
			Num:      e.num,
		}
	}
	return out
}

// TableFromExport rebuilds a table from an Export dump. Refs are preserved
// exactly; the dump must start with the sentinel entry.
func TableFromExport(dump []ExportedName) *Table {
	t := &Table{
		entries: make([]entry, 0, len(dump)),
		index:   map[string]Ref{"": NoName},
		uindex:  make(map[uniqueKey]Ref),
	}
	for i, e := range dump {
		ent := entry{
			kind:     Kind(e.Kind),
			raw:      e.Raw,
			uniq:     UniqueKind(e.Uniq),
			original: Ref(e.Original),
			num:      e.Num,
		}
		t.entries = append(t.entries, ent)
		if i == 0 {
			continue
		}
		if ent.kind == UTF8 {
			t.index[ent.raw] = Ref(i) // #nosec G115
		} else {
			t.uindex[uniqueKey{uniq: ent.uniq, original: ent.original, num: ent.num}] = Ref(i) // #nosec G115
		}
	}
	return t
}
