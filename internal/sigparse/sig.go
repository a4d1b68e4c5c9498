// Package sigparse turns signature DSL expression trees into structured
// per-method signatures and writes them back into the symbol table.
package sigparse

import (
	"sigil/internal/core"
	"sigil/internal/names"
	"sigil/internal/source"
)

// Seen records which DSL verbs a signature used.
type Seen struct {
	Sig                  bool
	Proc                 bool
	Params               bool
	Returns              bool
	Void                 bool
	Abstract             bool
	Override             bool
	Overridable          bool
	Implementation       bool
	IncompatibleOverride bool
	Final                bool
	Generated            bool
	Checked              bool
	Bind                 bool
}

// ArgSpec is one declared parameter: its name, location, type, and optional
// rebind extracted from a nested proc.
type ArgSpec struct {
	Loc    source.Span
	Name   names.Ref
	Type   core.TypeID
	Rebind core.SymbolRef
}

// TypeArgSpec is one method-level type parameter. Type starts out as a
// fresh type variable owned by the todo symbol; resolution replaces the
// owner.
type TypeArgSpec struct {
	Name names.Ref
	Loc  source.Span
	Type core.TypeID
}

// ParsedSig is the structured result of parsing one signature.
type ParsedSig struct {
	Seen     Seen
	ArgTypes []ArgSpec
	Returns  core.TypeID
	TypeArgs []TypeArgSpec
	Bind     core.SymbolRef
}

// enterTypeArgByName finds or appends the spec for a type parameter name.
func (sig *ParsedSig) enterTypeArgByName(name names.Ref) *TypeArgSpec {
	for i := range sig.TypeArgs {
		if sig.TypeArgs[i].Name == name {
			return &sig.TypeArgs[i]
		}
	}
	sig.TypeArgs = append(sig.TypeArgs, TypeArgSpec{Name: name})
	return &sig.TypeArgs[len(sig.TypeArgs)-1]
}

// FindTypeArgByName returns the spec for a type parameter name, or the zero
// spec when unspecified.
func (sig *ParsedSig) FindTypeArgByName(name names.Ref) TypeArgSpec {
	for i := range sig.TypeArgs {
		if sig.TypeArgs[i].Name == name {
			return sig.TypeArgs[i]
		}
	}
	return TypeArgSpec{}
}
