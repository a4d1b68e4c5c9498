package core

import (
	"fmt"
	"strings"

	"sigil/internal/names"
)

// ShowSymbol renders the fully qualified name of a symbol for user output.
func (gs *GlobalState) ShowSymbol(ref SymbolRef) string {
	if !ref.Exists() {
		return "<none>"
	}
	if ref == SymRoot {
		return "<root>"
	}
	var parts []string
	cur := ref
	for cur.Exists() && cur != SymRoot {
		data := gs.Symbol(cur)
		parts = append(parts, gs.Names.Value(data.Name))
		if cur == data.Owner {
			break
		}
		cur = data.Owner
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// ShowType renders a type term for user output.
func (gs *GlobalState) ShowType(id TypeID) string {
	if !id.Exists() {
		return "<none>"
	}
	d := gs.TypeOf(id)
	switch d.Kind {
	case TypeClass:
		return gs.ShowSymbol(d.Sym)
	case TypeApplied:
		args := gs.TypeArgs(id)
		shown := make([]string, len(args))
		for i, a := range args {
			shown[i] = gs.ShowType(a)
		}
		return gs.ShowSymbol(d.Sym) + "[" + strings.Join(shown, ", ") + "]"
	case TypeTuple:
		elems := gs.TupleElems(id)
		shown := make([]string, len(elems))
		for i, e := range elems {
			shown[i] = gs.ShowType(e)
		}
		return "[" + strings.Join(shown, ", ") + "]"
	case TypeShape:
		keys, values := gs.ShapeKeysValues(id)
		parts := make([]string, len(keys))
		for i := range keys {
			parts[i] = gs.ShowType(keys[i]) + " => " + gs.ShowType(values[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TypeLiteral:
		return gs.showLiteral(id, d)
	case TypeOr:
		return "T.any(" + gs.ShowType(TypeID(d.A)) + ", " + gs.ShowType(TypeID(d.B)) + ")"
	case TypeAnd:
		return "T.all(" + gs.ShowType(TypeID(d.A)) + ", " + gs.ShowType(TypeID(d.B)) + ")"
	case TypeVar:
		return "T.type_parameter(:" + gs.Names.Value(gs.Symbol(d.Sym).Name) + ")"
	case TypeLambdaParam:
		return gs.ShowSymbol(d.Sym)
	case TypeSelf:
		return "T.self_type"
	case TypeMeta:
		return "<Type: " + gs.ShowType(TypeID(d.A)) + ">"
	case TypeUnresolved:
		scope, path := gs.UnresolvedPath(id)
		parts := make([]string, 0, len(path)+1)
		if scope.Exists() && scope != SymRoot {
			parts = append(parts, gs.ShowSymbol(scope))
		}
		for _, n := range path {
			parts = append(parts, gs.Names.Value(n))
		}
		return strings.Join(parts, "::") + " (unresolved)"
	case TypeUntyped:
		return "T.untyped"
	case TypeBottom:
		return "T.noreturn"
	case TypeTop:
		return "<top>"
	default:
		return fmt.Sprintf("<%s>", d.Kind)
	}
}

func (gs *GlobalState) showLiteral(id TypeID, d TypeDesc) string {
	switch d.Sym {
	case SymInteger:
		return fmt.Sprintf("Integer(%d)", gs.LiteralValueInt(id))
	case SymFloat:
		return fmt.Sprintf("Float(%g)", gs.LiteralValueFloat(id))
	case SymSymbol:
		return "Symbol(:" + gs.Names.Value(names.Ref(d.A)) + ")"
	case SymString:
		return fmt.Sprintf("String(%q)", gs.Names.Value(names.Ref(d.A)))
	case SymTrueClass:
		return "TrueClass(true)"
	case SymFalseClass:
		return "FalseClass(false)"
	default:
		return "<literal>"
	}
}
