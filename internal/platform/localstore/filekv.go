// Package localstore is a small key/value store kept as one file per key in a
// directory shared by every process using the same vault. Writes from other
// processes are delivered through Watch.
package localstore

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	apperrors "dsaboost/internal/platform/errors"
)

var validKey = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Change describes a key written or removed by another process.
type Change struct {
	Key     string
	Value   []byte
	Removed bool
}

type FileKV struct {
	dir    string
	logger *slog.Logger

	mu  sync.Mutex
	own map[string][32]byte
}

var removedMarker = sha256.Sum256([]byte("\x00removed"))

func NewFileKV(dir string, logger *slog.Logger) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local store dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileKV{dir: dir, logger: logger, own: map[string][32]byte{}}, nil
}

func (s *FileKV) Dir() string { return s.dir }

func (s *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, nil
}

// Set replaces the value atomically so readers never observe a partial write.
func (s *FileKV) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+key+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}

	s.mu.Lock()
	s.own[key] = sha256.Sum256(value)
	s.mu.Unlock()

	if err := os.Rename(tmpName, filepath.Join(s.dir, key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key. Removing a missing key is not an error.
func (s *FileKV) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	s.own[key] = removedMarker
	s.mu.Unlock()
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Watch calls fn for every change made to the directory by someone else
// until ctx is cancelled. Changes matching this store's own last write for
// the key are skipped.
func (s *FileKV) Watch(ctx context.Context, fn func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if change, ok := s.translate(event); ok {
					fn(change)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("local store watch error", "component", "localstore", "error", err)
			}
		}
	}()
	return nil
}

func (s *FileKV) translate(event fsnotify.Event) (Change, bool) {
	key := filepath.Base(event.Name)
	if strings.HasPrefix(key, ".") || !validKey.MatchString(key) {
		return Change{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if _, err := os.Stat(event.Name); err == nil {
			return Change{}, false
		}
		if s.isOwn(key, removedMarker) {
			return Change{}, false
		}
		return Change{Key: key, Removed: true}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		raw, err := os.ReadFile(event.Name)
		if err != nil {
			return Change{}, false
		}
		if s.isOwn(key, sha256.Sum256(raw)) {
			return Change{}, false
		}
		return Change{Key: key, Value: raw}, true
	}
	return Change{}, false
}

func (s *FileKV) isOwn(key string, sum [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.own[key]
	return ok && last == sum
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: invalid key %q", apperrors.ErrInvalidInput, key)
	}
	return nil
}
