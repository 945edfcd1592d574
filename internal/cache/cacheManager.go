package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/data/redisStore"
	"github.com/getai/ragstore/pkg/logging"
)

// Manager is a read-through JSON cache. Every storage failure degrades to a
// miss (Get) or a skipped write (Set); callers never see a cache error.
type Manager struct {
	store      *redisStore.Store
	defaultTTL time.Duration
	logger     *logging.Logger
}

func NewManager(store *redisStore.Store) *Manager {
	return &Manager{
		store:      store,
		defaultTTL: config.CacheDefaultTTL,
		logger:     logging.New("Cache Manager"),
	}
}

// Key builds the cache key from a prefix and the call parameters. Marshalling
// a map sorts its keys, so parameter order never changes the key.
func Key(prefix string, params map[string]any) string {
	payload, err := json.Marshal(params)
	if err != nil {
		payload = []byte(prefix)
	}
	sum := sha1.Sum(payload)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Get unmarshals the cached value into out and reports a hit.
func (m *Manager) Get(ctx context.Context, prefix string, params map[string]any, out any) bool {
	if m.store == nil {
		return false
	}
	key := Key(prefix, params)
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if !redisStore.IsNil(err) {
			m.logger.Warn("Cache read failed, treating as miss", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		m.logger.Warn("Corrupt cache entry, evicting", "key", key, "error", err)
		m.Delete(ctx, prefix, params)
		return false
	}
	return true
}

// Set stores the value under the default TTL and reports success.
func (m *Manager) Set(ctx context.Context, prefix string, params map[string]any, value any) bool {
	return m.SetWithTTL(ctx, prefix, params, value, m.defaultTTL)
}

func (m *Manager) SetWithTTL(ctx context.Context, prefix string, params map[string]any, value any, ttl time.Duration) bool {
	if m.store == nil {
		return false
	}
	key := Key(prefix, params)
	payload, err := json.Marshal(value)
	if err != nil {
		m.logger.Warn("Cache value not serializable, skipping", "key", key, "error", err)
		return false
	}
	if err := m.store.Set(ctx, key, payload, ttl); err != nil {
		m.logger.Warn("Cache write failed, skipping", "key", key, "error", err)
		return false
	}
	return true
}

// Delete reports whether an entry actually existed for the key.
func (m *Manager) Delete(ctx context.Context, prefix string, params map[string]any) bool {
	if m.store == nil {
		return false
	}
	key := Key(prefix, params)
	deleted, err := m.store.Del(ctx, key)
	if err != nil {
		m.logger.Warn("Cache delete failed", "key", key, "error", err)
		return false
	}
	return deleted > 0
}

// Clear drops every entry under prefix, or the whole cache keyspace when
// prefix is empty. Returns the number of keys removed.
func (m *Manager) Clear(ctx context.Context, prefix string) int {
	if m.store == nil {
		return 0
	}
	pattern := "*"
	if prefix != "" {
		pattern = prefix + ":*"
	}
	keys, err := m.store.Keys(ctx, pattern)
	if err != nil {
		m.logger.Warn("Cache scan failed, nothing cleared", "pattern", pattern, "error", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	deleted, err := m.store.Del(ctx, keys...)
	if err != nil {
		m.logger.Warn("Cache clear failed", "pattern", pattern, "error", err)
		return 0
	}
	return int(deleted)
}
