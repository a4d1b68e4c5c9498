package sigparse

import (
	"sigil/internal/core"
	"sigil/internal/source"
)

// Apply writes a parsed signature back into its method symbol: result type,
// per-argument types matched by name, type arguments, rebind, and the
// method flags derived from the seen verbs.
func Apply(ctx core.MutableContext, sig *ParsedSig, method core.SymbolRef) {
	gs := ctx.GS
	data := gs.Symbol(method)
	if !data.IsMethod() {
		panic("sigparse: applying a signature to a non-method symbol")
	}

	for i := range sig.TypeArgs {
		spec := &sig.TypeArgs[i]
		arg := gs.EnterTypeArgument(method, spec.Name, spec.Loc, core.Invariant)
		if spec.Type.Exists() {
			// The pre-pass minted the variable against todo; adopt it.
			gs.RebindTypeVar(spec.Type, arg)
		}
	}

	data = gs.Symbol(method)
	for _, spec := range sig.ArgTypes {
		found := false
		for i := range data.Arguments {
			if data.Arguments[i].Name == spec.Name {
				data.Arguments[i].Type = spec.Type
				data.Arguments[i].Rebind = spec.Rebind
				if spec.Loc != (source.Span{}) {
					data.Arguments[i].Loc = spec.Loc
				}
				found = true
				break
			}
		}
		if !found {
			data.Arguments = append(data.Arguments, core.ArgInfo{
				Name:   spec.Name,
				Loc:    spec.Loc,
				Kind:   core.ArgRequired,
				Type:   spec.Type,
				Rebind: spec.Rebind,
			})
		}
	}

	if sig.Seen.Returns || sig.Seen.Void {
		if !sig.Returns.Exists() {
			panic("sigparse: signature saw returns or void but produced no type")
		}
		data.ResultType = sig.Returns
	}

	if sig.Seen.Abstract {
		data.Flags |= core.FlagMethodAbstract
	}
	if sig.Seen.Override {
		data.Flags |= core.FlagMethodOverride
	}
	if sig.Seen.Overridable {
		data.Flags |= core.FlagMethodOverridable
	}
	if sig.Seen.Implementation {
		data.Flags |= core.FlagMethodImplementation
	}
	if sig.Seen.IncompatibleOverride {
		data.Flags |= core.FlagMethodIncompatibleOverride
	}
	if sig.Seen.Final {
		data.Flags |= core.FlagMethodFinal
	}
	if sig.Seen.Generated {
		data.Flags |= core.FlagMethodGeneratedSig
	}
	if len(sig.TypeArgs) > 0 {
		data.Flags |= core.FlagMethodGeneric
	}
	if sig.Bind.Exists() {
		data.SetRebind(sig.Bind)
	}
}
