package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/core"
	"sigil/internal/diag"
	"sigil/internal/driver"
)

var snapshotCacheDir string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write and inspect symbol-table snapshots",
}

var snapshotWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Serialize a fresh state into the snapshot cache",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		gs := core.NewGlobalState(cfg, diag.NopReporter{})
		data, digest, err := driver.EncodeSnapshot(gs)
		if err != nil {
			return err
		}
		cache, err := openSnapshotCache()
		if err != nil {
			return err
		}
		if err := cache.Put(digest, data); err != nil {
			return err
		}
		fmt.Printf("%x (%d bytes, %d symbols)\n", digest, len(data), gs.SymbolCount())
		return nil
	},
}

var snapshotInfoCmd = &cobra.Command{
	Use:   "info <digest>",
	Short: "Describe a cached snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cache, err := openSnapshotCache()
		if err != nil {
			return err
		}
		raw, err := hex.DecodeString(args[0])
		if err != nil || len(raw) != len(driver.Digest{}) {
			return fmt.Errorf("bad digest %q", args[0])
		}
		var digest driver.Digest
		copy(digest[:], raw)
		data, ok, err := cache.Get(digest)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("snapshot %s not cached", args[0])
		}
		gs, err := driver.DecodeSnapshot(data, cfg, diag.NopReporter{})
		if err != nil {
			return err
		}
		fmt.Printf("%d bytes, %d symbols, %d names\n", len(data), gs.SymbolCount(), gs.Names.Len())
		return nil
	},
}

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotCacheDir, "cache-dir", "", "override the snapshot cache directory")
	snapshotCmd.AddCommand(snapshotWriteCmd)
	snapshotCmd.AddCommand(snapshotInfoCmd)
}

func openSnapshotCache() (*driver.Cache, error) {
	if snapshotCacheDir != "" {
		return driver.OpenCacheAt(snapshotCacheDir)
	}
	return driver.OpenCache("sigil")
}
