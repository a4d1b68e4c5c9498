package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"sigil/internal/config"
)

// loadConfig resolves --config, falling back to ./sigil.toml and then the
// built-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("sigil.toml"); err == nil {
		return config.Load("sigil.toml")
	} else if !errors.Is(err, os.ErrNotExist) {
		return config.Default(), err
	}
	return config.Default(), nil
}
