package diag

import (
	"fmt"
)

// Code is a compact, stable identifier for a diagnostic category. The closed
// set below is the contract the signature parser and resolver emit against;
// ranges are reserved per producing phase.
type Code uint16

const (
	UnknownCode Code = 0

	// Namer range: symbol-table construction.
	NamerInfo            Code = 4000
	NamerDuplicateSymbol Code = 4001
	NamerRedefinedKind   Code = 4002

	// Resolver range: signature parsing and type syntax.
	ResolverError                       Code = 5000
	ResolverInvalidMethodSignature      Code = 5001
	ResolverInvalidTypeDeclaration      Code = 5002
	ResolverInvalidTypeDeclarationTyped Code = 5003
	ResolverBadStdlibGeneric            Code = 5004
	ResolverEnumDeprecated              Code = 5005
	ResolverStubConstant                Code = 5006
)

func (c Code) String() string {
	return fmt.Sprintf("SIG%04d", uint16(c))
}

// DefaultSeverity maps a code to the severity it is reported with unless a
// producer overrides it.
func (c Code) DefaultSeverity() Severity {
	switch c {
	case NamerInfo:
		return SevInfo
	case ResolverEnumDeprecated:
		return SevWarning
	default:
		return SevError
	}
}
