package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"sigil/internal/diag"
)

// Features toggles behaviors that are still being migrated across large
// codebases.
type Features struct {
	// EnumLiteralUnion makes T.enum([...]) produce the union of the element
	// literal types together with a deprecation warning. When off, no
	// warning is emitted and a non-array argument silently yields plain
	// Object instead of an error; a literal array still builds the union
	// and enum([]) is still an error.
	EnumLiteralUnion bool `toml:"enum-literal-union"`
}

// Config carries everything the checker core reads from the environment.
type Config struct {
	// TrackBlame keeps the blame symbol passed to UntypedType (the owning
	// method for T.untyped), so untyped usages can be attributed later.
	// Untyped produced on error recovery carries no blame either way.
	TrackBlame bool `toml:"track-blame"`

	// MaxDiagnostics caps the diagnostic bag.
	MaxDiagnostics int `toml:"max-diagnostics"`

	// SilencedGenerics lists class names exempt from the "generic class
	// without type arguments" error. The historical set covers legacy
	// stdlib names.
	SilencedGenerics []string `toml:"silenced-generics"`

	// SuppressedCodes lists diagnostic codes muted globally.
	SuppressedCodes []uint16 `toml:"suppressed-codes"`

	Features Features `toml:"features"`
}

// Default returns the configuration used when no sigil.toml is present.
func Default() Config {
	return Config{
		TrackBlame:       true,
		MaxDiagnostics:   100,
		SilencedGenerics: []string{"Hash", "Array", "Set", "Struct", "File"},
		Features: Features{
			EnumLiteralUnion: true,
		},
	}
}

// Load reads a sigil.toml, layering it over the defaults. Unknown keys are
// rejected so typos do not silently disable behavior.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = 100
	}
	return cfg, nil
}

// Suppressions converts the configured code list into the set the diag
// reporter consumes.
func (c Config) Suppressions() map[diag.Code]bool {
	if len(c.SuppressedCodes) == 0 {
		return nil
	}
	out := make(map[diag.Code]bool, len(c.SuppressedCodes))
	for _, code := range c.SuppressedCodes {
		out[diag.Code(code)] = true
	}
	return out
}
