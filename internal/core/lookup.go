package core

import (
	"sigil/internal/names"
)

// transitiveDepthLimit bounds ancestor walks; inheritance chains deeper
// than this indicate a cycle in a malformed program.
const transitiveDepthLimit = 100

// FindMemberTransitive walks self, then mixins in order, then the
// superclass chain, returning the first member with the name. Static-field
// aliases along the way are dealiased.
func (gs *GlobalState) FindMemberTransitive(sym SymbolRef, name names.Ref) SymbolRef {
	return gs.findMemberTransitive(sym, name, false, transitiveDepthLimit)
}

// FindConcreteMethodTransitive is FindMemberTransitive skipping abstract
// methods.
func (gs *GlobalState) FindConcreteMethodTransitive(sym SymbolRef, name names.Ref) SymbolRef {
	return gs.findMemberTransitive(sym, name, true, transitiveDepthLimit)
}

func (gs *GlobalState) findMemberTransitive(sym SymbolRef, name names.Ref, skipAbstract bool, depth int) SymbolRef {
	if depth == 0 {
		// Cycle in the ancestor graph; absence is the recoverable answer.
		return NoSymbol
	}
	data := gs.Symbol(sym)
	if found := gs.FindMember(sym, name); found.Exists() {
		found = gs.Dealias(found)
		if !skipAbstract || !gs.Symbol(found).IsMethod() || !gs.Symbol(found).IsAbstract() {
			return found
		}
	}
	for _, mixin := range data.Mixins {
		if found := gs.FindMember(mixin, name); found.Exists() {
			found = gs.Dealias(found)
			if !skipAbstract || !gs.Symbol(found).IsMethod() || !gs.Symbol(found).IsAbstract() {
				return found
			}
		}
		// Before linearization each mixin may carry its own ancestors.
		if !gs.Symbol(mixin).IsClassLinearizationComputed() {
			if found := gs.findMemberTransitive(mixin, name, skipAbstract, depth-1); found.Exists() {
				return found
			}
		}
	}
	super := data.SuperOrRebind
	if data.IsClass() && super.Exists() && super != sym {
		return gs.findMemberTransitive(super, name, skipAbstract, depth-1)
	}
	return NoSymbol
}
