package driver

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"sigil/internal/config"
	"sigil/internal/core"
	"sigil/internal/diag"
)

// Bump when the payload layout changes; stale cache entries miss instead of
// decoding garbage.
const snapshotSchemaVersion uint16 = 1

// Digest identifies a snapshot by content.
type Digest [32]byte

// SnapshotPayload is the on-disk envelope around a core snapshot.
type SnapshotPayload struct {
	Schema  uint16
	Symbols int
	Image   *core.Snapshot
}

// EncodeSnapshot serializes the state and returns the bytes with their
// content digest.
func EncodeSnapshot(gs *core.GlobalState) ([]byte, Digest, error) {
	payload := SnapshotPayload{
		Schema:  snapshotSchemaVersion,
		Symbols: gs.SymbolCount(),
		Image:   gs.ExportSnapshot(),
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&payload); err != nil {
		return nil, Digest{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), sha256.Sum256(buf.Bytes()), nil
}

// DecodeSnapshot rebuilds a GlobalState from snapshot bytes.
func DecodeSnapshot(data []byte, cfg config.Config, reporter diag.Reporter) (*core.GlobalState, error) {
	var payload SnapshotPayload
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if payload.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d, want %d", payload.Schema, snapshotSchemaVersion)
	}
	return core.RestoreSnapshot(payload.Image, cfg, reporter), nil
}

// Cache stores snapshots by digest under an app cache directory.
type Cache struct {
	dir string
}

// OpenCache initializes the cache at the standard location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenCacheAt uses an explicit directory; tests and the CLI --cache-dir
// flag go through here.
func OpenCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, fmt.Sprintf("%x.mp", key))
}

// Put writes snapshot bytes atomically: temp file plus rename.
func (c *Cache) Put(key Digest, data []byte) error {
	if c == nil {
		return nil
	}
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, c.pathFor(key))
}

// Get reads snapshot bytes; ok is false on a miss.
func (c *Cache) Get(key Digest) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := os.ReadFile(c.pathFor(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
