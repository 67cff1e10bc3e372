// Package kv is the persistent key-value layer behind the credential store and
// the built-in station collection. Values are opaque bytes, normally JSON.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jrsteele09/go-station-dashboard/internal/config"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
)

// Store is a flat key-value namespace. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns apperrors.ErrNotFound when key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	// Delete succeeds when key is already absent
	Delete(ctx context.Context, key string) error

	// Keys lists keys starting with prefix in lexical order
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// Open builds the store selected by the storage configuration.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.GetStorageBackend() {
	case config.StorageBackendMemory:
		return NewMemory(), nil
	case config.StorageBackendFile, "":
		return NewFile(cfg.GetDataFolder())
	case config.StorageBackendRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
	case config.StorageBackendPostgres:
		return NewPostgres(ctx, cfg.GetPostgresDSN())
	default:
		return nil, fmt.Errorf("[kv Open] unknown storage backend %q", cfg.GetStorageBackend())
	}
}

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var out T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("[kv GetJSON] decode %s: %w", key, err)
	}
	return out, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("[kv SetJSON] encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

func notFound(key string) error {
	return apperrors.Wrapf(apperrors.ErrNotFound, "key %q", key)
}

func matchingKeys[V any](m map[string]V, prefix string) []string {
	keys := make([]string, 0)
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
