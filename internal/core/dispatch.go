package core

import (
	"fmt"

	"sigil/internal/diag"
	"sigil/internal/names"
	"sigil/internal/source"
)

// TypeArg is one argument of a dispatched call, with the location it was
// written at.
type TypeArg struct {
	Type TypeID
	Loc  source.Span
}

// DispatchArgs describes a synthetic call for DispatchCall.
type DispatchArgs struct {
	Name    names.Ref
	Recv    TypeID
	CallLoc source.Span
	RecvLoc source.Span
	Args    []TypeArg
}

// Dispatched is the result of resolving a call: the return type, the method
// it landed on, and structured errors for the caller to forward.
type Dispatched struct {
	ReturnType TypeID
	Method     SymbolRef
	Errors     []diag.Diagnostic
}

// IntrinsicMethod handles a dispatched call on a method symbol in the
// checker itself. All implementations are statically allocated; symbols
// hold shared references.
type IntrinsicMethod interface {
	Apply(gs *GlobalState, args DispatchArgs) Dispatched
}

// DispatchCall resolves a method on the receiver's class through the
// symbol table and produces its return type. The signature parser uses it
// for generic instantiation, written as a [] call on a singleton.
func (gs *GlobalState) DispatchCall(args DispatchArgs) Dispatched {
	recv := gs.TypeOf(args.Recv)
	if recv.Kind == TypeUntyped {
		return Dispatched{ReturnType: args.Recv}
	}
	if recv.Kind != TypeClass && recv.Kind != TypeApplied {
		return Dispatched{
			ReturnType: gs.UntypedUntracked(),
			Errors: []diag.Diagnostic{{
				Severity: diag.SevError,
				Code:     diag.ResolverError,
				Message:  fmt.Sprintf("Cannot call `%s` on a non-class type", gs.Names.Value(args.Name)),
				Primary:  args.CallLoc,
			}},
		}
	}

	method := gs.FindMemberTransitive(recv.Sym, args.Name)
	if !method.Exists() {
		return Dispatched{
			ReturnType: gs.UntypedUntracked(),
			Errors: []diag.Diagnostic{{
				Severity: diag.SevError,
				Code:     diag.ResolverError,
				Message: fmt.Sprintf("Method `%s` does not exist on `%s`",
					gs.Names.Value(args.Name), gs.ShowSymbol(recv.Sym)),
				Primary: args.CallLoc,
			}},
		}
	}

	data := gs.Symbol(method)
	if !data.IsMethod() {
		return Dispatched{ReturnType: gs.UntypedUntracked(), Method: method}
	}
	if data.Intrinsic != nil {
		out := data.Intrinsic.Apply(gs, args)
		out.Method = method
		return out
	}
	ret := data.ResultType
	if !ret.Exists() {
		ret = gs.UntypedUntracked()
	}
	return Dispatched{ReturnType: ret, Method: method}
}

// genericInstantiate is the shared intrinsic behind `Class[...]`. The
// receiver is a singleton class; the result is the meta-type of the
// attached class applied to the unwrapped arguments.
var genericInstantiate IntrinsicMethod = instantiateIntrinsic{}

type instantiateIntrinsic struct{}

func (instantiateIntrinsic) Apply(gs *GlobalState, args DispatchArgs) Dispatched {
	recv := gs.TypeOf(args.Recv)
	attached := gs.AttachedClass(recv.Sym)
	if !attached.Exists() {
		return Dispatched{
			ReturnType: gs.UntypedUntracked(),
			Errors: []diag.Diagnostic{{
				Severity: diag.SevError,
				Code:     diag.ResolverInvalidTypeDeclaration,
				Message:  "Expected a class or module",
				Primary:  args.RecvLoc,
			}},
		}
	}

	var errs []diag.Diagnostic
	arity := gs.TypeArity(attached)
	if len(args.Args) != arity {
		errs = append(errs, diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.ResolverInvalidTypeDeclaration,
			Message: fmt.Sprintf("Wrong number of type parameters for `%s`. Expected: `%d`, got: `%d`",
				gs.ShowSymbol(attached), arity, len(args.Args)),
			Primary: args.CallLoc,
		})
	}

	targs := make([]TypeID, arity)
	for i := range targs {
		if i >= len(args.Args) {
			targs[i] = gs.UntypedUntracked()
			continue
		}
		arg := gs.TypeOf(args.Args[i].Type)
		if arg.Kind != TypeMeta {
			errs = append(errs, diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.ResolverInvalidTypeDeclaration,
				Message:  "Expected a type as a type argument",
				Primary:  args.Args[i].Loc,
			})
			targs[i] = gs.UntypedUntracked()
			continue
		}
		targs[i] = TypeID(arg.A)
	}

	return Dispatched{
		ReturnType: gs.MetaTypeOf(gs.AppliedTypeOf(attached, targs)),
		Errors:     errs,
	}
}
