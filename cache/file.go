package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore is a persistent Store backed by a single JSON file holding
// a top-level object of key/value pairs. Writes are atomic: the whole
// file is rewritten to a temp file in the same directory and renamed
// into place, so a crash mid-write never leaves a corrupt or partial
// cache file behind.
type FileStore[V any] struct {
	mu   sync.Mutex
	path string
	data map[string]V
}

// OpenFileStore loads path into memory, creating an empty store if the
// file does not yet exist.
func OpenFileStore[V any](path string) (*FileStore[V], error) {
	fs := &FileStore[V]{path: path, data: make(map[string]V)}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("cache: read %s: %w", path, err)
	}
	if len(b) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(b, &fs.data); err != nil {
		return nil, fmt.Errorf("cache: decode %s: %w", path, err)
	}
	return fs, nil
}

func (f *FileStore[V]) Get(key string) (V, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

func (f *FileStore[V]) Set(key string, value V) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	old, had := f.data[key]
	f.data[key] = value
	if err := f.flushLocked(); err != nil {
		if had {
			f.data[key] = old
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *FileStore[V]) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flushLocked()
}

func (f *FileStore[V]) Iterate(fn func(key string, value V) bool) error {
	f.mu.Lock()
	snapshot := make(map[string]V, len(f.data))
	for k, v := range f.data {
		snapshot[k] = v
	}
	f.mu.Unlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			break
		}
	}
	return nil
}

func (f *FileStore[V]) Destroy() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = nil
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: remove %s: %w", f.path, err)
	}
	return nil
}

// flushLocked rewrites the whole file under f.mu. It writes to a
// sibling temp file named with a random UUID and renames it over the
// target, which is atomic on the same filesystem.
func (f *FileStore[V]) flushLocked() error {
	b, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("cache: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: rename %s to %s: %w", tmp, f.path, err)
	}
	return nil
}

// DefaultPath returns the default on-disk location for a cache
// identified by purpose (e.g. "authority", "replay", "ticket"),
// preferring the platform user cache directory and falling back to a
// per-user file under the system temp directory.
func DefaultPath(purpose string) string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "com.padl.gss.BrowserID", purpose+".json")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf(".browserid.%s.%d.json", purpose, os.Getuid()))
}
