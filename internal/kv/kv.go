// Package kv is the string key/value port backing the local fallback store.
// Implementations are interchangeable and injected, so the catalog can be
// tested against the in-memory store.
package kv

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/casadecor/portfolio-backend/config"
)

// Store is a synchronous whole-value key/value store. Get reports presence
// with its second return instead of an error, since missing keys are an
// expected case on every read path.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Keys returns all keys starting with prefix, in no particular order.
	Keys(prefix string) ([]string, error)
}

// Open builds the configured Store implementation.
func Open(cfg config.LocalStoreConfig) (Store, error) {
	switch cfg.Kind {
	case "file":
		store, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		logrus.WithField("path", cfg.Path).Info("Using file-backed local store")
		return store, nil
	case "redis":
		store, err := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		logrus.WithField("addr", cfg.RedisAddr).Info("Using redis-backed local store")
		return store, nil
	case "memory":
		logrus.Info("Using in-memory local store (state is lost on restart)")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown local store kind %q", cfg.Kind)
	}
}
