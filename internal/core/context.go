package core

import "sigil/internal/source"

// Context bundles the state with the symbol whose body is being processed.
// By convention a plain Context is used for reads.
type Context struct {
	GS    *GlobalState
	Owner SymbolRef
	File  source.FileID
}

// MutableContext marks call paths that are allowed to mutate the state.
type MutableContext struct {
	Context
}

// WithOwner returns a context for a nested scope.
func (ctx Context) WithOwner(owner SymbolRef) Context {
	ctx.Owner = owner
	return ctx
}

// WithOwner returns a mutable context for a nested scope.
func (ctx MutableContext) WithOwner(owner SymbolRef) MutableContext {
	ctx.Owner = owner
	return ctx
}
