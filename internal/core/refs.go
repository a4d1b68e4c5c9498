// Package core is the heart of the checker: the globally addressed symbol
// table, the lattice of type terms, and the GlobalState that owns both.
// Handles (SymbolRef, TypeID, names.Ref) are small integers into arenas the
// GlobalState owns; all mutation funnels through it.
package core

// SymbolRef is a small handle addressing a Symbol inside a GlobalState.
type SymbolRef uint32

// NoSymbol marks the absence of a symbol reference.
const NoSymbol SymbolRef = 0

// Exists reports whether the ref points at an allocated symbol.
func (r SymbolRef) Exists() bool { return r != NoSymbol }

// Reserved symbols, allocated by every GlobalState in this exact order. The
// prelude in prelude.go enforces the numbering.
const (
	SymRoot SymbolRef = iota + 1
	// SymTodo denotes "not yet resolved"; resolution replaces it.
	SymTodo
	SymTop // the hierarchy root class (BasicObject)
	SymObject
	SymNilClass
	SymTrueClass
	SymFalseClass
	SymInteger
	SymFloat
	SymString
	SymSymbol
	SymVoid
	SymStubModule
	SymMagic
	SymSorbet
	SymT
	SymArray
	SymHash
	SymSet
	SymStruct
	SymFile
	SymRange
	SymEnumerable
	SymEnumerator
	SymTArray
	SymTHash
	SymTSet
	SymTRange
	SymTEnumerable
	SymTEnumerator
	SymProc0
	// SymProc1..SymProc10 follow SymProc0 contiguously.
)

// MaxProcArity bounds the number of parameters a proc type can carry.
const MaxProcArity = 10

// lastReserved is the highest prelude symbol.
const lastReserved = SymProc0 + MaxProcArity

// ProcClass returns the reserved class for procs of the given arity.
// Panics when arity exceeds MaxProcArity; callers diagnose first.
func ProcClass(arity int) SymbolRef {
	if arity < 0 || arity > MaxProcArity {
		panic("core: proc arity out of range")
	}
	return SymProc0 + SymbolRef(arity) // #nosec G115 -- bounded above
}
