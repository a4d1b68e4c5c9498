package sigparse

import (
	"fmt"

	"sigil/internal/ast"
	"sigil/internal/core"
	"sigil/internal/diag"
	"sigil/internal/names"
)

// IsSig reports whether the send is a signature block: `sig { ... }` with
// no arguments, invoked on self or on the Sorbet module.
func IsSig(ctx core.Context, send *ast.Send) bool {
	if send.Fn != names.Sig {
		return false
	}
	if send.Block == nil {
		return false
	}
	if len(send.Args) != 0 {
		return false
	}

	// self.sig
	if local, ok := send.Recv.(*ast.Local); ok && local.IsSelfReference() {
		return true
	}

	// Sorbet.sig
	if recv := ast.AsConstantLit(send.Recv); recv != nil && recv.Symbol == core.SymSorbet {
		return true
	}

	return false
}

// isTProc reports whether any send in the receiver chain is `T.proc`.
func isTProc(send *ast.Send) bool {
	for send != nil {
		if send.Fn == names.Proc {
			if recv := ast.AsConstantLit(send.Recv); recv != nil && recv.Symbol == core.SymT {
				return true
			}
		}
		send = ast.AsSend(send.Recv)
	}
	return false
}

// ParseSig parses a `sig { ... }` block or a bare `T.proc...` chain into a
// ParsedSig. parent is non-nil only for nested signatures, where type
// parameters resolve against the outermost sig. Type-syntax errors never
// abort parsing; the poisoned component becomes untyped and parsing
// continues.
func ParseSig(ctx core.MutableContext, sigSend *ast.Send, parent *ParsedSig, allowSelfType bool, untypedBlame core.SymbolRef) ParsedSig {
	gs := ctx.GS
	var sig ParsedSig

	var sends []*ast.Send

	if isTProc(sigSend) {
		sends = append(sends, sigSend)
	} else {
		sig.Seen.Sig = true
		if sigSend.Fn != names.Sig {
			panic("sigparse: ParseSig on a non-sig send")
		}
		block := sigSend.Block
		if block == nil {
			panic("sigparse: sig send without a block")
		}
		switch body := block.Body.(type) {
		case *ast.Send:
			sends = append(sends, body)
		case *ast.InsSeq:
			for _, stat := range body.Stats {
				send := ast.AsSend(stat)
				if send == nil {
					return sig
				}
				sends = append(sends, send)
			}
			send := ast.AsSend(body.Expr)
			if send == nil {
				return sig
			}
			sends = append(sends, send)
		default:
			return sig
		}
	}
	if len(sends) == 0 {
		panic("sigparse: signature without sends")
	}

	// Extract type parameters early; every other verb may reference them.
	for _, send := range sends {
		for tsend := send; tsend != nil; tsend = ast.AsSend(tsend.Recv) {
			if tsend.Fn != names.TypeParameters {
				continue
			}
			if parent != nil {
				if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, tsend.Loc); e != nil {
					e.Header("Malformed signature; Type parameters can only be specified in outer sig").Emit()
				}
				break
			}
			for _, arg := range tsend.Args {
				lit := ast.AsLiteral(arg)
				if lit == nil || !lit.IsSymbol() {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, arg.Span()); e != nil {
						e.Header("Malformed signature; Type parameters are specified with symbols").Emit()
					}
					continue
				}
				spec := sig.enterTypeArgByName(lit.Name)
				if spec.Type.Exists() {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, arg.Span()); e != nil {
						e.Header(fmt.Sprintf("Malformed signature; Type argument `%s` was specified twice",
							gs.Names.Value(lit.Name))).Emit()
					}
				}
				spec.Type = gs.NewTypeVar(core.SymTodo)
				spec.Loc = arg.Span()
			}
		}
	}
	if parent == nil {
		parent = &sig
	}

	for _, send := range sends {
		for send != nil {
			// One "unknown verb" error per send, so a bad verb does not
			// also produce a receiver error.
			reportedInvalidMethod := false
			switch send.Fn {
			case names.Proc:
				sig.Seen.Proc = true

			case names.Bind:
				if sig.Seen.Bind {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
						e.Header("Malformed `bind`: Multiple calls to `.bind`").Emit()
					}
					sig.Bind = core.NoSymbol
				}
				sig.Seen.Bind = true

				if len(send.Args) != 1 {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
						e.Header(fmt.Sprintf("Wrong number of args to `bind`. Expected: `1`, got: `%d`", len(send.Args))).Emit()
					}
					break
				}

				bind := GetResultType(ctx, send.Args[0], parent, allowSelfType, untypedBlame)
				if gs.TypeKindOf(bind) != core.TypeClass {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
						e.Header("Malformed `bind`: Can only bind to simple class names").Emit()
					}
				} else {
					sig.Bind = gs.TypeOf(bind).Sym
				}

			case names.Params:
				if sig.Seen.Params {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
						e.Header("Malformed `params`: Multiple calls to `.params`").Emit()
					}
					sig.ArgTypes = nil
				}
				sig.Seen.Params = true

				if len(send.Args) == 0 {
					break
				}
				if len(send.Args) > 1 {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
						e.Header(fmt.Sprintf("Wrong number of args to `params`. Expected: `0-1`, got: `%d`", len(send.Args))).Emit()
					}
				}

				hash, ok := send.Args[0].(*ast.HashLit)
				if !ok {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
						e.Header("`params` expects keyword arguments").
							Note("All parameters must be given names in `params` even if they are positional").
							Emit()
					}
					break
				}

				for i, key := range hash.Keys {
					value := hash.Values[i]
					lit := ast.AsLiteral(key)
					if lit == nil || !lit.IsSymbol() {
						continue
					}
					result := getResultTypeAndBind(ctx, value, parent, allowSelfType, true, untypedBlame)
					sig.ArgTypes = append(sig.ArgTypes, ArgSpec{
						Loc:    key.Span(),
						Name:   lit.Name,
						Type:   result.typ,
						Rebind: result.rebind,
					})
				}

			case names.TypeParameters:
				// Handled in the pre-pass.

			case names.Abstract:
				sig.Seen.Abstract = true
			case names.Override:
				sig.Seen.Override = true
			case names.Implementation:
				sig.Seen.Implementation = true
			case names.IncompatibleOverride:
				sig.Seen.IncompatibleOverride = true
			case names.Overridable:
				sig.Seen.Overridable = true
			case names.Final:
				sig.Seen.Final = true

			case names.Returns:
				sig.Seen.Returns = true
				if len(send.Args) != 1 {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
						e.Header(fmt.Sprintf("Wrong number of args to `returns`. Expected: `1`, got: `%d`", len(send.Args))).Emit()
					}
					break
				}

				if lit := ast.AsLiteral(send.Args[0]); lit != nil && lit.IsNil() {
					if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Args[0].Span()); e != nil {
						e.Header("You probably meant .returns(NilClass)").Emit()
					}
					sig.Returns = gs.NilType()
					break
				}

				sig.Returns = GetResultType(ctx, send.Args[0], parent, allowSelfType, untypedBlame)

			case names.Void:
				sig.Seen.Void = true
				sig.Returns = gs.VoidType()

			case names.Checked:
				sig.Seen.Checked = true

			case names.Soft:
				// Accepted runtime-only marker; nothing to record.

			case names.Generated:
				sig.Seen.Generated = true

			default:
				if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
					reportedInvalidMethod = true
					e.Header(fmt.Sprintf("Malformed signature: `%s` is invalid in this context", gs.Names.Value(send.Fn))).
						Section(send.Loc, "Consult the signature syntax reference for the supported builder methods").
						Emit()
				}
			}

			recv := ast.AsSend(send.Recv)
			if recv == nil && !reportedInvalidMethod {
				if local, ok := send.Recv.(*ast.Local); !ok || !local.IsSelfReference() {
					if !sig.Seen.Proc {
						if e := diag.Begin(gs.Reporter(), diag.ResolverInvalidMethodSignature, send.Loc); e != nil {
							e.Header(fmt.Sprintf("Malformed signature: `%s` being invoked on an invalid receiver",
								gs.Names.Value(send.Fn))).Emit()
						}
					}
				}
				break
			}
			send = recv
		}
	}

	if !sig.Seen.Sig && !sig.Seen.Proc {
		panic("sigparse: parsed signature saw neither sig nor proc")
	}
	return sig
}
