package core

// Flags is the packed symbol attribute bitfield. The layout is part of the
// hashing contract: kind bits grow down from the MSB, per-kind attribute
// bits grow up from the LSB.
type Flags uint32

const (
	// Kind bits. Exactly one is set on every allocated symbol.
	FlagClass        Flags = 0x8000_0000
	FlagMethod       Flags = 0x4000_0000
	FlagField        Flags = 0x2000_0000
	FlagStaticField  Flags = 0x1000_0000
	FlagTypeArgument Flags = 0x0800_0000
	FlagTypeMember   Flags = 0x0400_0000

	// Applies to every kind.
	FlagDSLSynthesized Flags = 0x0000_0001

	// Class flags.
	FlagClassClass                 Flags = 0x0000_0010
	FlagClassModule                Flags = 0x0000_0020
	FlagClassAbstract              Flags = 0x0000_0040
	FlagClassInterface             Flags = 0x0000_0080
	FlagClassLinearizationComputed Flags = 0x0000_0100

	// Method flags.
	FlagMethodProtected            Flags = 0x0000_0010
	FlagMethodPrivate              Flags = 0x0000_0020
	FlagMethodOverloaded           Flags = 0x0000_0040
	FlagMethodAbstract             Flags = 0x0000_0080
	FlagMethodGeneric              Flags = 0x0000_0100
	FlagMethodGeneratedSig         Flags = 0x0000_0200
	FlagMethodOverridable          Flags = 0x0000_0400
	FlagMethodFinal                Flags = 0x0000_0800
	FlagMethodOverride             Flags = 0x0000_1000
	FlagMethodImplementation       Flags = 0x0000_2000
	FlagMethodIncompatibleOverride Flags = 0x0000_4000

	// Type member / type argument flags.
	FlagTypeCovariant     Flags = 0x0000_0010
	FlagTypeInvariant     Flags = 0x0000_0020
	FlagTypeContravariant Flags = 0x0000_0040
	FlagTypeFixed         Flags = 0x0000_0080

	// Static field flags.
	FlagStaticFieldTypeAlias Flags = 0x0000_0010

	kindMask Flags = FlagClass | FlagMethod | FlagField | FlagStaticField |
		FlagTypeArgument | FlagTypeMember
)

// Variance of a type member or type argument.
type Variance int8

const (
	Invariant     Variance = 0
	CoVariant     Variance = 1
	ContraVariant Variance = -1
)
