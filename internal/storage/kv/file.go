package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const fileStoreName = "store.json"

var _ Store = (*File)(nil)

// File is a Memory mirrored to a single JSON document in the data folder.
// Every mutation rewrites the document through a temp file + rename.
type File struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// NewFile opens (or creates) the store under folder.
func NewFile(folder string) (*File, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("[kv NewFile] create data folder: %w", err)
	}

	f := &File{
		path:    filepath.Join(folder, fileStoreName),
		entries: make(map[string]string),
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[kv NewFile] read %s: %w", f.path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.entries); err != nil {
			return nil, fmt.Errorf("[kv NewFile] decode %s: %w", f.path, err)
		}
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.entries[key]
	if !ok {
		return nil, notFound(key)
	}
	return []byte(v), nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	f.entries[key] = string(value)
	if err := f.flush(); err != nil {
		if existed {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	if !existed {
		return nil
	}
	delete(f.entries, key)
	if err := f.flush(); err != nil {
		f.entries[key] = prev
		return err
	}
	return nil
}

func (f *File) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return matchingKeys(f.entries, prefix), nil
}

func (f *File) Close() error { return nil }

// flush must be called with mu held
func (f *File) flush() error {
	data, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("[kv File.flush] encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), fileStoreName+".*")
	if err != nil {
		return fmt.Errorf("[kv File.flush] temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[kv File.flush] write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[kv File.flush] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("[kv File.flush] rename: %w", err)
	}
	return nil
}
