package core

import (
	"sort"

	"sigil/internal/names"
)

// sortMembers orders entries by rendered name, then ref. The ref tiebreaker
// only matters for mangle-renamed duplicates.
func sortMembers(table *names.Table, entries []MemberEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ni, nj := table.Value(entries[i].Name), table.Value(entries[j].Name)
		if ni != nj {
			return ni < nj
		}
		return entries[i].Sym < entries[j].Sym
	})
}
