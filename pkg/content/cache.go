package content

import (
	"container/list"
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss is returned by a Store for keys it does not hold.
var ErrCacheMiss = errors.New("content: cache miss")

// Store holds cached bodies.
// A zero ttl means the entry does not expire.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedSource caches bodies from another Source.
// Concurrent misses for the same id share one lookup. Missing objects are not cached.
type CachedSource struct {
	next  Source
	store Store
	group singleflight.Group
	ttl   time.Duration
}

// NewCachedSource wraps next with store. ttl applies to every entry.
func NewCachedSource(next Source, store Store, ttl time.Duration) *CachedSource {
	return &CachedSource{next: next, store: store, ttl: ttl}
}

// Content implements Source.
func (c *CachedSource) Content(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", ErrInvalidID
	}

	key := strconv.FormatInt(id, 10)
	if body, err := c.store.Get(ctx, key); err == nil {
		return body, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		body, err := c.next.Content(ctx, id)
		if err != nil {
			return "", err
		}
		// Best-effort cache the result.
		_ = c.store.Set(ctx, key, body, c.ttl)
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached body of id.
func (c *CachedSource) Invalidate(ctx context.Context, id int64) error {
	return c.store.Delete(ctx, strconv.FormatInt(id, 10))
}

type memoryEntry struct {
	expiresAt time.Time
	key       string
	value     string
}

// MemoryStore is an in-process Store with LRU eviction once maxEntries is reached.
// Expired entries are dropped when read.
type MemoryStore struct {
	items      map[string]*list.Element
	order      *list.List
	maxEntries int
	mu         sync.Mutex
}

// NewMemoryStore creates a MemoryStore. maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return "", ErrCacheMiss
	}

	e := elem.Value.(*memoryEntry)
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.remove(elem)
		return "", ErrCacheMiss
	}

	m.order.MoveToFront(elem)
	return e.value, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*memoryEntry)
		e.value = value
		e.expiresAt = expiresAt
		m.order.MoveToFront(elem)
		return nil
	}

	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.items[key] = m.order.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Len returns the number of held entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// remove drops elem. Caller must hold the mutex.
func (m *MemoryStore) remove(elem *list.Element) {
	m.order.Remove(elem)
	delete(m.items, elem.Value.(*memoryEntry).key)
}

// RedisStore is a Store backed by Redis. Keys are namespaced with a prefix.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to "mailhelper:content".
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "mailhelper:content"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return v, nil
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, max(ttl, 0)).Err()
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisStore) key(k string) string {
	return r.prefix + ":" + k
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Store  = (*RedisStore)(nil)
	_ Source = (*CachedSource)(nil)
	_ Source = (*PostgresSource)(nil)
	_ Source = MapSource(nil)
)
