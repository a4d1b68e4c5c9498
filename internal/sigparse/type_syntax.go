package sigparse

import (
	"fmt"

	"sigil/internal/ast"
	"sigil/internal/core"
	"sigil/internal/diag"
	"sigil/internal/names"
)

type resultType struct {
	typ    core.TypeID
	rebind core.SymbolRef
}

// GetResultType parses one type expression into a type term. Failures
// substitute untyped so downstream analysis continues.
func GetResultType(ctx core.MutableContext, expr ast.Node, sig *ParsedSig, allowSelfType bool, untypedBlame core.SymbolRef) core.TypeID {
	return getResultTypeAndBind(ctx, expr, sig, allowSelfType, false, untypedBlame).typ
}

// getResultLiteral parses an element of `T.enum([...])`.
func getResultLiteral(ctx core.MutableContext, expr ast.Node) core.TypeID {
	gs := ctx.GS
	lit := ast.AsLiteral(expr)
	if lit == nil {
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, expr.Span()); e != nil {
			e.Header("Unsupported type literal").Emit()
		}
		return gs.UntypedUntracked()
	}
	var result core.TypeID
	switch lit.Kind {
	case ast.LitInt:
		result = gs.IntLiteralType(lit.Int)
	case ast.LitFloat:
		result = gs.FloatLiteralType(lit.Float)
	case ast.LitSymbol:
		result = gs.SymbolLiteralType(lit.Name)
	case ast.LitString:
		result = gs.StringLiteralType(lit.Name)
	case ast.LitTrue:
		result = gs.TrueLiteralType()
	case ast.LitFalse:
		result = gs.FalseLiteralType()
	case ast.LitNil:
		result = gs.NilType()
	default:
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, expr.Span()); e != nil {
			e.Header("Unsupported type literal").Emit()
		}
		result = gs.UntypedUntracked()
	}
	gs.SanityCheckType(result)
	return result
}

// interpretTCombinator handles the `T.<func>` type constructors.
func interpretTCombinator(ctx core.MutableContext, send *ast.Send, sig *ParsedSig, allowSelfType bool, untypedBlame core.SymbolRef) core.TypeID {
	gs := ctx.GS
	switch send.Fn {
	case names.Nilable:
		if len(send.Args) != 1 {
			// Arity errors on T.nilable surface during inference.
			return gs.UntypedUntracked()
		}
		return gs.AnyType(GetResultType(ctx, send.Args[0], sig, allowSelfType, untypedBlame), gs.NilType())

	case names.All:
		if len(send.Args) == 0 {
			return gs.UntypedUntracked()
		}
		result := GetResultType(ctx, send.Args[0], sig, allowSelfType, untypedBlame)
		for _, arg := range send.Args[1:] {
			result = gs.AllType(result, GetResultType(ctx, arg, sig, allowSelfType, untypedBlame))
		}
		return result

	case names.Any:
		if len(send.Args) == 0 {
			return gs.UntypedUntracked()
		}
		result := GetResultType(ctx, send.Args[0], sig, allowSelfType, untypedBlame)
		for _, arg := range send.Args[1:] {
			result = gs.AnyType(result, GetResultType(ctx, arg, sig, allowSelfType, untypedBlame))
		}
		return result

	case names.TypeParameter:
		if len(send.Args) != 1 {
			return gs.UntypedUntracked()
		}
		lit := ast.AsLiteral(send.Args[0])
		if lit == nil || !lit.IsSymbol() {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("type_parameter requires a symbol").Emit()
			}
			return gs.UntypedUntracked()
		}
		found := sig.FindTypeArgByName(lit.Name)
		if !found.Type.Exists() {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, lit.Span()); e != nil {
				e.Header("Unspecified type parameter").Emit()
			}
			return gs.UntypedUntracked()
		}
		return found.Type

	case names.Enum:
		if len(send.Args) != 1 {
			return gs.UntypedUntracked()
		}
		arr, ok := send.Args[0].(*ast.ArrayLit)
		if !ok {
			if !gs.Config().Features.EnumLiteralUnion {
				// Legacy quirk: a non-array argument silently degrades to
				// Object instead of erroring.
				return gs.ClassTypeOf(core.SymObject)
			}
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("enum must be passed a literal array. e.g. enum([1,\"foo\",MyClass])").Emit()
			}
			return gs.UntypedUntracked()
		}
		if len(arr.Elems) == 0 {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("enum([]) is invalid").Emit()
			}
			return gs.UntypedUntracked()
		}
		if gs.Config().Features.EnumLiteralUnion {
			if e := diag.Begin(gs.Reporter(), diag.ResolverEnumDeprecated, send.Loc); e != nil {
				e.Header("T.enum is deprecated; use a union of literal types instead").Emit()
			}
		}
		result := getResultLiteral(ctx, arr.Elems[0])
		for _, elem := range arr.Elems[1:] {
			result = gs.AnyType(result, getResultLiteral(ctx, elem))
		}
		return result

	case names.ClassOf:
		if len(send.Args) != 1 {
			return gs.UntypedUntracked()
		}
		obj := ast.AsConstantLit(send.Args[0])
		if obj == nil {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("T.class_of needs a Class as its argument").Emit()
			}
			return gs.UntypedUntracked()
		}
		maybeAliased := obj.Symbol
		if gs.Symbol(maybeAliased).IsTypeAlias() {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("T.class_of can't be used with a T.type_alias").Emit()
			}
			return gs.UntypedUntracked()
		}
		if gs.Symbol(maybeAliased).IsTypeMember() {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("T.class_of can't be used with a T.type_member").Emit()
			}
			return gs.UntypedUntracked()
		}
		sym := gs.Dealias(maybeAliased)
		if gs.Symbol(sym).IsStaticField() {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("T.class_of can't be used with a constant field").Emit()
			}
			return gs.UntypedUntracked()
		}
		if !gs.Symbol(sym).IsClass() {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
				e.Header("Unknown class").Emit()
			}
			return gs.UntypedUntracked()
		}
		return gs.ClassTypeOf(gs.SingletonClass(sym))

	case names.Untyped:
		return gs.UntypedType(untypedBlame)

	case names.SelfType:
		if allowSelfType {
			return gs.SelfTypeType()
		}
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
			e.Header("Only top-level T.self_type is supported").Emit()
		}
		return gs.UntypedUntracked()

	case names.Noreturn:
		return gs.BottomType()

	default:
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, send.Loc); e != nil {
			e.Header(fmt.Sprintf("Unsupported method `T.%s`", gs.Names.Value(send.Fn))).Emit()
		}
		return gs.UntypedUntracked()
	}
}

func getResultTypeAndBind(ctx core.MutableContext, expr ast.Node, sig *ParsedSig, allowSelfType, allowRebind bool, untypedBlame core.SymbolRef) resultType {
	gs := ctx.GS
	ownerData := gs.Symbol(ctx.Owner)
	if !ownerData.IsClass() {
		panic("sigparse: type syntax parsed outside a class owner")
	}

	var result resultType
	switch node := expr.(type) {
	case *ast.ArrayLit:
		elems := make([]core.TypeID, 0, len(node.Elems))
		for _, el := range node.Elems {
			elems = append(elems, GetResultType(ctx, el, sig, false, untypedBlame))
		}
		result.typ = gs.TupleTypeOf(elems)

	case *ast.HashLit:
		var keys, values []core.TypeID
		for i, ktree := range node.Keys {
			val := GetResultType(ctx, node.Values[i], sig, false, untypedBlame)
			lit := ast.AsLiteral(ktree)
			if lit != nil && (lit.IsSymbol() || lit.IsString()) {
				keys = append(keys, getResultLiteral(ctx, lit))
				values = append(values, val)
			} else {
				if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, ktree.Span()); e != nil {
					e.Header("Malformed type declaration. Shape keys must be literals").Emit()
				}
			}
		}
		result.typ = gs.ShapeTypeOf(keys, values)

	case *ast.ConstantLit:
		result.typ = constantResultType(ctx, node)

	case *ast.Send:
		result = sendResultType(ctx, node, sig, allowSelfType, allowRebind, untypedBlame)

	case *ast.Local:
		if node.IsSelfReference() {
			result.typ = gs.SelfTypeOf(ctx.Owner)
		} else {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
				e.Header("Unsupported type syntax").Emit()
			}
			result.typ = gs.UntypedUntracked()
		}

	default:
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, expr.Span()); e != nil {
			e.Header("Unsupported type syntax").Emit()
		}
		result.typ = gs.UntypedUntracked()
	}

	if !result.typ.Exists() {
		panic("sigparse: type syntax produced no type")
	}
	gs.SanityCheckType(result.typ)
	return result
}

// constantResultType resolves a bare constant reference in type position.
func constantResultType(ctx core.MutableContext, node *ast.ConstantLit) core.TypeID {
	gs := ctx.GS
	maybeAliased := node.Symbol
	if !maybeAliased.Exists() {
		panic("sigparse: unresolved ConstantLit reached type syntax")
	}

	if gs.Symbol(maybeAliased).IsTypeAlias() {
		return gs.Symbol(maybeAliased).ResultType
	}

	sym := gs.Dealias(maybeAliased)
	data := gs.Symbol(sym)
	switch {
	case data.IsClass():
		if gs.TypeArity(sym) > 0 && !silencedGeneric(ctx, sym) {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
				e.Header(fmt.Sprintf("Malformed type declaration. Generic class without type arguments `%s`",
					gs.ShowSymbol(maybeAliased))).Emit()
			}
		}
		if sym == core.SymStubModule {
			// Stubs are kept as proper type terms rather than untyped:
			// two different unresolved constants must hash differently.
			return gs.UnresolvedClassTypeOf(node.UnresolvedScope, node.UnresolvedPath)
		}
		return gs.ExternalTypeOf(sym)

	case data.IsTypeMember():
		return typeMemberResultType(ctx, node, sym)

	case data.IsStaticField():
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
			e.Header(fmt.Sprintf("Constant `%s` is not a class or type alias", gs.ShowSymbol(maybeAliased))).
				Section(data.Loc(), "If you are trying to define a type alias, you should use `type_alias` here").
				Emit()
		}
		return gs.UntypedUntracked()

	default:
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
			e.Header(fmt.Sprintf("Malformed type declaration. Not a class type `%s`", gs.ShowSymbol(maybeAliased))).Emit()
		}
		return gs.UntypedUntracked()
	}
}

// typeMemberResultType validates that a type member or template is used in
// its defining class, in a method of the matching kind.
func typeMemberResultType(ctx core.MutableContext, node *ast.ConstantLit, sym core.SymbolRef) core.TypeID {
	gs := ctx.GS
	symOwner := gs.Symbol(sym).Owner

	isTypeTemplate := gs.IsSingletonClass(symOwner)
	ctxIsSingleton := gs.IsSingletonClass(ctx.Owner)

	// Compare the singleton of the member's owner with the singleton of
	// the surrounding class: equal means we are inside the defining class.
	symOwnerSingleton := symOwner
	if !isTypeTemplate {
		symOwnerSingleton = gs.LookupSingletonClass(symOwner)
	}
	ctxSingleton := ctx.Owner
	if !ctxIsSingleton {
		ctxSingleton = gs.LookupSingletonClass(ctx.Owner)
	}
	usedOnSourceClass := symOwnerSingleton == ctxSingleton
	if !symOwnerSingleton.Exists() && !ctxSingleton.Exists() {
		// Neither side has a singleton yet; fall back to the classes
		// themselves.
		usedOnSourceClass = symOwner == ctx.Owner
	}

	// Valid only inside the defining class, with templates in singleton
	// methods and members in instance methods.
	if usedOnSourceClass && (isTypeTemplate == ctxIsSingleton) {
		return gs.LambdaParamType(sym)
	}

	if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclarationTyped, node.Loc); e != nil {
		typeSource := "type_member"
		if isTypeTemplate {
			typeSource = "type_template"
		}
		typeStr := gs.ShowSymbol(sym)
		switch {
		case usedOnSourceClass && ctxIsSingleton:
			e.Header(fmt.Sprintf("`%s` type `%s` used in a singleton method definition", typeSource, typeStr))
		case usedOnSourceClass:
			e.Header(fmt.Sprintf("`%s` type `%s` used in an instance method definition", typeSource, typeStr))
		default:
			e.Header(fmt.Sprintf("`%s` type `%s` used outside of the class definition", typeSource, typeStr))
		}
		e.Emit()
	}
	return gs.UntypedUntracked()
}

// sendResultType handles nested procs, T combinators, and generic
// application written as `C[...]`.
func sendResultType(ctx core.MutableContext, node *ast.Send, sig *ParsedSig, allowSelfType, allowRebind bool, untypedBlame core.SymbolRef) resultType {
	gs := ctx.GS
	var result resultType

	if isTProc(node) {
		nested := ParseSig(ctx, node, sig, false, untypedBlame)
		if nested.Bind.Exists() {
			if !allowRebind {
				if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
					e.Header("Using `bind` is not permitted here").Emit()
				}
			} else {
				result.rebind = nested.Bind
			}
		}

		targs := make([]core.TypeID, 0, len(nested.ArgTypes)+1)
		if !nested.Returns.Exists() {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
				e.Header("Malformed T.proc: You must specify a return type").Emit()
			}
			targs = append(targs, gs.UntypedUntracked())
		} else {
			targs = append(targs, nested.Returns)
		}
		for _, arg := range nested.ArgTypes {
			targs = append(targs, arg.Type)
		}

		arity := len(targs) - 1
		if arity > core.MaxProcArity {
			if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
				e.Header(fmt.Sprintf("Malformed T.proc: Too many arguments (max `%d`)", core.MaxProcArity)).Emit()
			}
			result.typ = gs.UntypedUntracked()
			return result
		}
		result.typ = gs.AppliedTypeOf(core.ProcClass(arity), targs)
		return result
	}

	recvi := ast.AsConstantLit(node.Recv)
	if recvi == nil {
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
			e.Header("Malformed type declaration. Unknown type syntax. Expected a ClassName or T.<func>").Emit()
		}
		result.typ = gs.UntypedUntracked()
		return result
	}
	if recvi.Symbol == core.SymT {
		result.typ = interpretTCombinator(ctx, node, sig, allowSelfType, untypedBlame)
		return result
	}

	if recvi.Symbol == core.SymMagic && node.Fn == names.CallWithSplat {
		// No recovery path: splats cannot be typed statically.
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclarationTyped, recvi.Loc); e != nil {
			e.Header("Splats are unsupported by the static checker and banned in typed code").Emit()
		}
		result.typ = gs.UntypedUntracked()
		return result
	}

	if node.Fn != names.SquareBrackets {
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
			e.Header("Malformed type declaration. Unknown type syntax. Expected a ClassName or T.<func>").Emit()
		}
		result.typ = gs.UntypedUntracked()
		return result
	}

	targs := make([]core.TypeArg, 0, len(node.Args))
	for _, arg := range node.Args {
		targs = append(targs, core.TypeArg{
			Type: gs.MetaTypeOf(GetResultType(ctx, arg, sig, false, untypedBlame)),
			Loc:  arg.Span(),
		})
	}

	if corrected := legacyGenericFix(recvi.Symbol); corrected.Exists() {
		if e := diag.Begin(gs.Reporter(), diag.ResolverBadStdlibGeneric, node.Loc); e != nil {
			e.Header(fmt.Sprintf("Use `%s[...]`, not `%s[...]` to declare a typed `%s`",
				gs.ShowSymbol(corrected), gs.ShowSymbol(recvi.Symbol), gs.ShowSymbol(recvi.Symbol))).
				Note(fmt.Sprintf("`%s[...]` will not work in the runtime type system.", gs.ShowSymbol(recvi.Symbol))).
				Fix(fmt.Sprintf("Replace with `%s`", gs.ShowSymbol(corrected)),
					diag.FixEdit{Span: recvi.Loc, NewText: gs.ShowSymbol(corrected)}).
				Emit()
		}
		result.typ = gs.UntypedUntracked()
		return result
	}

	sym := gs.Dealias(recvi.Symbol)
	if !gs.Symbol(sym).IsClass() {
		if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
			e.Header("Expected a class or module").Emit()
		}
		result.typ = gs.UntypedUntracked()
		return result
	}

	// Generic instantiation reuses the dispatch machinery: a synthetic []
	// call on the singleton, so user-defined generics behave exactly like
	// the built-ins.
	ctype := gs.ClassTypeOf(gs.SingletonClass(sym))
	dispatched := gs.DispatchCall(core.DispatchArgs{
		Name:    names.SquareBrackets,
		Recv:    ctype,
		CallLoc: node.Loc,
		RecvLoc: recvi.Loc,
		Args:    targs,
	})
	for _, err := range dispatched.Errors {
		gs.Reporter().Report(err)
	}
	out := dispatched.ReturnType

	if gs.IsUntyped(out) {
		result.typ = out
		return result
	}
	if d := gs.TypeOf(out); d.Kind == core.TypeMeta {
		result.typ = core.TypeID(d.A)
		return result
	}

	if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidTypeDeclaration, node.Loc); e != nil {
		e.Header("Malformed type declaration. Unknown type syntax. Expected a ClassName or T.<func>").Emit()
	}
	result.typ = gs.UntypedUntracked()
	return result
}

// legacyGenericFix maps legacy stdlib generics to their typed shims.
func legacyGenericFix(sym core.SymbolRef) core.SymbolRef {
	switch sym {
	case core.SymArray:
		return core.SymTArray
	case core.SymHash:
		return core.SymTHash
	case core.SymEnumerable:
		return core.SymTEnumerable
	case core.SymEnumerator:
		return core.SymTEnumerator
	case core.SymRange:
		return core.SymTRange
	case core.SymSet:
		return core.SymTSet
	default:
		return core.NoSymbol
	}
}

// silencedGeneric exempts the configured legacy stdlib names from the
// "generic class without type arguments" error.
func silencedGeneric(ctx core.MutableContext, sym core.SymbolRef) bool {
	gs := ctx.GS
	for _, name := range gs.Config().SilencedGenerics {
		ref := gs.FindMember(core.SymRoot, gs.Names.Intern(name))
		if ref.Exists() && ref == sym {
			return true
		}
	}
	return false
}
