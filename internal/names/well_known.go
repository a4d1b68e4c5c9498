package names

// Well-known names used by the signature parser and the symbol table. They
// are interned in fixed order by NewTable, so the refs below are stable
// across every table.
var (
	Sig                  Ref
	Proc                 Ref
	Params               Ref
	Returns              Ref
	Void                 Ref
	Bind                 Ref
	Abstract             Ref
	Override             Ref
	Overridable          Ref
	Implementation       Ref
	IncompatibleOverride Ref
	Final                Ref
	Generated            Ref
	Checked              Ref
	Soft                 Ref
	TypeParameters       Ref
	TypeParameter        Ref
	Nilable              Ref
	Any                  Ref
	All                  Ref
	Untyped              Ref
	Noreturn             Ref
	SelfType             Ref
	ClassOf              Ref
	Enum                 Ref
	SquareBrackets       Ref
	CallWithSplat        Ref
	AttachedClass        Ref
)

func internWellKnown(t *Table) {
	Sig = t.Intern("sig")
	Proc = t.Intern("proc")
	Params = t.Intern("params")
	Returns = t.Intern("returns")
	Void = t.Intern("void")
	Bind = t.Intern("bind")
	Abstract = t.Intern("abstract")
	Override = t.Intern("override")
	Overridable = t.Intern("overridable")
	Implementation = t.Intern("implementation")
	IncompatibleOverride = t.Intern("incompatible_override")
	Final = t.Intern("final")
	Generated = t.Intern("generated")
	Checked = t.Intern("checked")
	Soft = t.Intern("soft")
	TypeParameters = t.Intern("type_parameters")
	TypeParameter = t.Intern("type_parameter")
	Nilable = t.Intern("nilable")
	Any = t.Intern("any")
	All = t.Intern("all")
	Untyped = t.Intern("untyped")
	Noreturn = t.Intern("noreturn")
	SelfType = t.Intern("self_type")
	ClassOf = t.Intern("class_of")
	Enum = t.Intern("enum")
	SquareBrackets = t.Intern("[]")
	CallWithSplat = t.Intern("call_with_splat")
	AttachedClass = t.Intern("<attached class>")
}
