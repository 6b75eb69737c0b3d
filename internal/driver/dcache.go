package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// diskCacheSchemaVersion is bumped whenever FilePayload's shape changes,
// so a cache directory left over from an older schema is ignored rather
// than decoded into a mismatched struct.
const diskCacheSchemaVersion uint16 = 1

// ContentHash is a file's content digest, used as the disk cache's key and
// as the "has this file changed since the last run" check.
type ContentHash [sha256.Size]byte

// HashContent computes the ContentHash of a file's raw bytes.
func HashContent(content []byte) ContentHash {
	return sha256.Sum256(content)
}

// DiskCache stores one FilePayload per file content hash on disk,
// msgpack-encoded. Grounded on the teacher's internal/driver/dcache.go —
// same RWMutex-guarded directory-of-files design, same atomic
// write-to-temp-then-rename Put, generalized from the teacher's
// ModuleMeta-shaped payload to this core's per-file diagnostic summary.
// Thread-safe for concurrent access; the driver itself consults it
// sequentially, from compileFile.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// FilePayload is what corec remembers about a file between runs: enough
// to report "N files unchanged since the last run" without re-deriving
// it, and a seed for a future incremental pipeline that skips unchanged,
// previously-clean files outright (not yet implemented — see DESIGN.md).
type FilePayload struct {
	Schema      uint16
	Path        string
	ContentHash ContentHash
	Broken      bool
	ErrorCount  int
	DiagCount   int
}

// OpenDiskCache opens (creating if needed) a disk cache rooted at dir —
// ordinarily internal/config.CacheConfig.Dir.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open disk cache at %q: %w", dir, err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key ContentHash) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes payload to the cache.
func (c *DiskCache) Put(key ContentHash, payload *FilePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the cache. ok is false (with
// no error) both when the key was never written and when it was written
// under an older schema version.
func (c *DiskCache) Get(key ContentHash, out *FilePayload) (ok bool, err error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}
