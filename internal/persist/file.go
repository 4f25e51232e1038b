package persist

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	fileSuffix     = ".json"
	tempSuffix     = ".tmp"
	watchDebounce  = 100 * time.Millisecond
	storageDirMode = 0o755
	storageMode    = 0o600
)

// FileStorage stores one JSON file per key inside a directory. It remembers
// the digest of its own last write per key so Watch can skip self-inflicted
// events.
type FileStorage struct {
	mu      sync.Mutex
	dir     string
	quota   int64
	written map[string][sha256.Size]byte
}

func NewFileStorage(dir string, quotaBytes int64) (*FileStorage, error) {
	if err := os.MkdirAll(dir, storageDirMode); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrUnavailable, dir, err)
	}
	return &FileStorage{dir: dir, quota: quotaBytes, written: make(map[string][sha256.Size]byte)}, nil
}

func (f *FileStorage) Dir() string {
	return f.dir
}

func (f *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, key, err)
	}
	return data, nil
}

func (f *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(key)
	if f.quota > 0 {
		used, err := f.usage()
		if err != nil {
			return err
		}
		if info, err := os.Stat(path); err == nil {
			used -= info.Size()
		}
		if used+int64(len(value)) > f.quota {
			return ErrQuotaExceeded
		}
	}

	tmp := path + tempSuffix
	if err := os.WriteFile(tmp, value, storageMode); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrUnavailable, key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replacing %s: %v", ErrUnavailable, key, err)
	}
	f.written[key] = sha256.Sum256(value)
	return nil
}

func (f *FileStorage) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %v", ErrUnavailable, key, err)
	}
	delete(f.written, key)
	return nil
}

// Watch reports keys whose files were changed by another process until ctx is
// cancelled. Events for a key are held until the key has been quiet for the
// debounce window, so a truncate followed by a write is reported once, after
// the final write.
func (f *FileStorage) Watch(ctx context.Context, onChange func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(f.dir); err != nil {
		return fmt.Errorf("watching %s: %w", f.dir, err)
	}

	ticker := time.NewTicker(watchDebounce / 2)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if key, ok := keyFromPath(event.Name); ok {
				pending[key] = time.Now()
			}
		case now := <-ticker.C:
			for _, key := range settledKeys(pending, now) {
				if !f.isOwnWrite(key) {
					onChange(key)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", f.dir, err)
		}
	}
}

// settledKeys removes and returns the keys whose last event is at least one
// debounce window old.
func settledKeys(pending map[string]time.Time, now time.Time) []string {
	var keys []string
	for key, last := range pending {
		if now.Sub(last) >= watchDebounce {
			keys = append(keys, key)
			delete(pending, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// isOwnWrite reports whether the file for key still holds exactly what this
// storage last wrote, or is absent after this storage removed it.
func (f *FileStorage) isOwnWrite(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	digest, tracked := f.written[key]
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return !tracked
	}
	if err != nil || !tracked {
		return false
	}
	return sha256.Sum256(data) == digest
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileSuffix)
}

func (f *FileStorage) usage() (int64, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("%w: listing %s: %v", ErrUnavailable, f.dir, err)
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// keyFromPath maps a file name back to its key. Names that are not the
// canonical escaping of their key are not storage files.
func keyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	escaped := strings.TrimSuffix(name, fileSuffix)
	key, err := url.PathUnescape(escaped)
	if err != nil || url.PathEscape(key) != escaped {
		return "", false
	}
	return key, true
}
