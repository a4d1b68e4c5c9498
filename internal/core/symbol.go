package core

import (
	"fmt"

	"sigil/internal/names"
	"sigil/internal/source"
)

// ArgKind classifies a method parameter.
type ArgKind uint8

const (
	ArgRequired ArgKind = iota
	ArgOptional
	ArgRest
	ArgKeywordRest
	ArgBlock
)

func (k ArgKind) String() string {
	switch k {
	case ArgRequired:
		return "required"
	case ArgOptional:
		return "optional"
	case ArgRest:
		return "rest"
	case ArgKeywordRest:
		return "keyword-rest"
	case ArgBlock:
		return "block"
	default:
		return "invalid"
	}
}

// ArgInfo is the per-parameter record of a method symbol.
type ArgInfo struct {
	Name       names.Ref
	Loc        source.Span
	Kind       ArgKind
	HasDefault bool
	Type       TypeID
	Rebind     SymbolRef
}

// Symbol is one record per declared entity. Kind-specific accessors assert
// the kind bit; a mismatch is a bug in the checker and panics.
type Symbol struct {
	Owner SymbolRef
	Name  names.Ref
	Flags Flags

	// For classes: the superclass. For methods: the optional rebind target.
	SuperOrRebind SymbolRef

	// Mixins, for classes only. Rewritten in place to the transitive
	// linearized module list once FlagClassLinearizationComputed is set.
	Mixins []SymbolRef

	// Ordered type members (classes) or type arguments (methods).
	TypeParams []SymbolRef

	// Members maps a name to the child symbol. Keys are unique; iteration
	// order is not semantic (MembersStableOrderSlow exists for serializers).
	Members map[names.Ref]SymbolRef

	Arguments  []ArgInfo
	ResultType TypeID

	// Locs lists the spans where this symbol was declared or reopened.
	Locs []source.Span

	// UniqueCounter allocates discriminators for synthetic child names.
	UniqueCounter uint32

	// Intrinsic, when non-nil, handles dispatched calls on this method.
	// All intrinsics are statically allocated.
	Intrinsic IntrinsicMethod
}

func (s *Symbol) kind() Flags { return s.Flags & kindMask }

func (s *Symbol) IsClass() bool        { return s.Flags&FlagClass != 0 }
func (s *Symbol) IsMethod() bool       { return s.Flags&FlagMethod != 0 }
func (s *Symbol) IsField() bool        { return s.Flags&FlagField != 0 }
func (s *Symbol) IsStaticField() bool  { return s.Flags&FlagStaticField != 0 }
func (s *Symbol) IsTypeMember() bool   { return s.Flags&FlagTypeMember != 0 }
func (s *Symbol) IsTypeArgument() bool { return s.Flags&FlagTypeArgument != 0 }

func (s *Symbol) mustBe(kind Flags, what string) {
	if s.Flags&kind == 0 {
		panic(fmt.Sprintf("core: %s accessor on %v symbol", what, s.kind()))
	}
}

// SuperClass returns the superclass of a class symbol.
func (s *Symbol) SuperClass() SymbolRef {
	s.mustBe(FlagClass, "superclass")
	return s.SuperOrRebind
}

// SetSuperClass records the superclass of a class symbol.
func (s *Symbol) SetSuperClass(super SymbolRef) {
	s.mustBe(FlagClass, "superclass")
	s.SuperOrRebind = super
}

// Rebind returns the rebind target of a method symbol.
func (s *Symbol) Rebind() SymbolRef {
	s.mustBe(FlagMethod, "rebind")
	return s.SuperOrRebind
}

// SetRebind records the rebind target of a method symbol.
func (s *Symbol) SetRebind(rebind SymbolRef) {
	s.mustBe(FlagMethod, "rebind")
	s.SuperOrRebind = rebind
}

// IsClassModule reports whether the class symbol is a module. The
// module/class bit must have been decided.
func (s *Symbol) IsClassModule() bool {
	s.mustBe(FlagClass, "module")
	if s.Flags&FlagClassModule != 0 {
		return true
	}
	if s.Flags&FlagClassClass != 0 {
		return false
	}
	panic("core: module/class bit not decided")
}

// IsClassModuleSet reports whether the module/class bit has been decided.
func (s *Symbol) IsClassModuleSet() bool {
	s.mustBe(FlagClass, "module")
	return s.Flags&(FlagClassModule|FlagClassClass) != 0
}

// SetIsModule decides the module/class bit. The bit is set-once; flipping it
// is a checker bug.
func (s *Symbol) SetIsModule(isModule bool) {
	s.mustBe(FlagClass, "module")
	if isModule {
		if s.Flags&FlagClassClass != 0 {
			panic("core: class bit already set")
		}
		s.Flags |= FlagClassModule
	} else {
		if s.Flags&FlagClassModule != 0 {
			panic("core: module bit already set")
		}
		s.Flags |= FlagClassClass
	}
}

func (s *Symbol) IsClassLinearizationComputed() bool {
	s.mustBe(FlagClass, "linearization")
	return s.Flags&FlagClassLinearizationComputed != 0
}

func (s *Symbol) IsAbstract() bool {
	s.mustBe(FlagMethod, "abstract")
	return s.Flags&FlagMethodAbstract != 0
}

func (s *Symbol) IsPublic() bool {
	s.mustBe(FlagMethod, "visibility")
	return !s.IsProtected() && !s.IsPrivate()
}

func (s *Symbol) IsProtected() bool {
	s.mustBe(FlagMethod, "visibility")
	return s.Flags&FlagMethodProtected != 0
}

func (s *Symbol) IsPrivate() bool {
	s.mustBe(FlagMethod, "visibility")
	return s.Flags&FlagMethodPrivate != 0
}

// IsTypeAlias reports whether the symbol is a type-aliased static field.
// Relaxed to accept classes and type members so call-sites can ask about any
// constant without checking the kind first.
func (s *Symbol) IsTypeAlias() bool {
	if s.Flags&(FlagClass|FlagStaticField|FlagTypeMember) == 0 {
		panic("core: type-alias accessor on non-constant symbol")
	}
	return s.IsStaticField() && s.Flags&FlagStaticFieldTypeAlias != 0
}

// SetTypeAlias marks a static field as a type alias.
func (s *Symbol) SetTypeAlias() {
	s.mustBe(FlagStaticField, "type-alias")
	s.Flags |= FlagStaticFieldTypeAlias
}

// Variance of a type member or type argument. Exactly one variance bit must
// be set.
func (s *Symbol) Variance() Variance {
	if s.Flags&(FlagTypeMember|FlagTypeArgument) == 0 {
		panic("core: variance accessor on non-type-parameter symbol")
	}
	switch {
	case s.Flags&FlagTypeInvariant != 0:
		return Invariant
	case s.Flags&FlagTypeCovariant != 0:
		return CoVariant
	case s.Flags&FlagTypeContravariant != 0:
		return ContraVariant
	}
	panic("core: type parameter without variance")
}

// SetVariance decides the variance bit; the three are mutually exclusive.
func (s *Symbol) SetVariance(v Variance) {
	if s.Flags&(FlagTypeMember|FlagTypeArgument) == 0 {
		panic("core: variance accessor on non-type-parameter symbol")
	}
	if s.Flags&(FlagTypeCovariant|FlagTypeInvariant|FlagTypeContravariant) != 0 {
		panic("core: variance already decided")
	}
	switch v {
	case CoVariant:
		s.Flags |= FlagTypeCovariant
	case ContraVariant:
		s.Flags |= FlagTypeContravariant
	default:
		s.Flags |= FlagTypeInvariant
	}
}

// IsFixed reports whether a type member has a fixed binding.
func (s *Symbol) IsFixed() bool {
	if s.Flags&(FlagTypeMember|FlagTypeArgument) == 0 {
		panic("core: fixed accessor on non-type-parameter symbol")
	}
	return s.Flags&FlagTypeFixed != 0
}

func (s *Symbol) IsDSLSynthesized() bool {
	return s.Flags&FlagDSLSynthesized != 0
}

// Loc returns the last entry of Locs. AddLoc updates an already-listed
// file's entry in place, so after a reopen in an earlier-listed file this is
// not the most recent declaration span.
func (s *Symbol) Loc() source.Span {
	if len(s.Locs) == 0 {
		return source.Span{}
	}
	return s.Locs[len(s.Locs)-1]
}

// AddLoc records a declaration span. A new span in an already-seen file
// replaces that file's entry, so reopened definitions do not grow the list.
func (s *Symbol) AddLoc(loc source.Span) {
	if loc == (source.Span{}) {
		return
	}
	for i := range s.Locs {
		if s.Locs[i].File == loc.File {
			s.Locs[i] = loc
			return
		}
	}
	s.Locs = append(s.Locs, loc)
}

// SetPublic clears both visibility bits; public is their absence.
func (s *Symbol) SetPublic() {
	s.mustBe(FlagMethod, "visibility")
	s.Flags &^= FlagMethodPrivate | FlagMethodProtected
}

func (s *Symbol) SetProtected() {
	s.mustBe(FlagMethod, "visibility")
	s.Flags |= FlagMethodProtected
}

func (s *Symbol) SetPrivate() {
	s.mustBe(FlagMethod, "visibility")
	s.Flags |= FlagMethodPrivate
}

func (s *Symbol) IsFinalMethod() bool {
	s.mustBe(FlagMethod, "final")
	return s.Flags&FlagMethodFinal != 0
}

func (s *Symbol) IsOverride() bool {
	s.mustBe(FlagMethod, "override")
	return s.Flags&FlagMethodOverride != 0
}

func (s *Symbol) IsOverridable() bool {
	s.mustBe(FlagMethod, "overridable")
	return s.Flags&FlagMethodOverridable != 0
}

func (s *Symbol) IsImplementation() bool {
	s.mustBe(FlagMethod, "implementation")
	return s.Flags&FlagMethodImplementation != 0
}

func (s *Symbol) IsIncompatibleOverride() bool {
	s.mustBe(FlagMethod, "incompatible-override")
	return s.Flags&FlagMethodIncompatibleOverride != 0
}

func (s *Symbol) HasGeneratedSig() bool {
	s.mustBe(FlagMethod, "generated-sig")
	return s.Flags&FlagMethodGeneratedSig != 0
}

func (s *Symbol) IsGenericMethod() bool {
	s.mustBe(FlagMethod, "generic")
	return s.Flags&FlagMethodGeneric != 0
}

func (s *Symbol) IsOverloaded() bool {
	s.mustBe(FlagMethod, "overloaded")
	return s.Flags&FlagMethodOverloaded != 0
}

func (s *Symbol) SetOverloaded() {
	s.mustBe(FlagMethod, "overloaded")
	s.Flags |= FlagMethodOverloaded
}

func (s *Symbol) IsClassAbstract() bool {
	s.mustBe(FlagClass, "abstract")
	return s.Flags&FlagClassAbstract != 0
}

func (s *Symbol) SetClassAbstract() {
	s.mustBe(FlagClass, "abstract")
	s.Flags |= FlagClassAbstract
}

func (s *Symbol) IsClassInterface() bool {
	s.mustBe(FlagClass, "interface")
	return s.Flags&FlagClassInterface != 0
}

func (s *Symbol) SetClassInterface() {
	s.mustBe(FlagClass, "interface")
	s.Flags |= FlagClassInterface
}
