package core

import "fmt"

// SanityCheckSymbol validates the structural invariants of one symbol.
// Violations are bugs in the checker and panic.
func (gs *GlobalState) SanityCheckSymbol(ref SymbolRef) {
	data := gs.Symbol(ref)

	kindBits := 0
	for _, bit := range []Flags{FlagClass, FlagMethod, FlagField, FlagStaticField, FlagTypeMember, FlagTypeArgument} {
		if data.Flags&bit != 0 {
			kindBits++
		}
	}
	if kindBits != 1 {
		panic(fmt.Sprintf("core: symbol %d has %d kind bits", ref, kindBits))
	}

	if !data.IsClass() {
		if len(data.Mixins) != 0 {
			panic("core: mixins on a non-class symbol")
		}
	}
	if !data.IsMethod() && len(data.Arguments) != 0 {
		panic("core: arguments on a non-method symbol")
	}
	if data.IsTypeMember() || data.IsTypeArgument() {
		variance := data.Flags & (FlagTypeCovariant | FlagTypeInvariant | FlagTypeContravariant)
		if variance != FlagTypeCovariant && variance != FlagTypeInvariant && variance != FlagTypeContravariant {
			panic("core: type parameter without exactly one variance bit")
		}
	}
	if data.IsMethod() {
		vis := data.Flags & (FlagMethodProtected | FlagMethodPrivate)
		if vis == FlagMethodProtected|FlagMethodPrivate {
			panic("core: method both protected and private")
		}
	}
	for _, child := range data.Members {
		if !child.Exists() || int(child) >= len(gs.symbols) {
			panic("core: dangling member reference")
		}
	}
}

// SanityCheck validates every allocated symbol.
func (gs *GlobalState) SanityCheck() {
	for i := 1; i < len(gs.symbols); i++ {
		gs.SanityCheckSymbol(SymbolRef(i)) // #nosec G115
	}
}
