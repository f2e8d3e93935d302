package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"funnelworks/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUpdateConflict  = errors.New("session updated concurrently, retries exhausted")
)

// UpdateFunc mutates a session in place. Returning an error aborts the write.
// For Remove it only inspects the session; an error keeps it stored.
type UpdateFunc func(s *model.ToolSession) error

// SessionCache stores ephemeral tool sessions with a TTL.
// Update runs fn atomically per session.
type SessionCache interface {
	Create(ctx context.Context, session *model.ToolSession) error
	Get(ctx context.Context, id string) (*model.ToolSession, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*model.ToolSession, error)
	Remove(ctx context.Context, id string, fn UpdateFunc) (*model.ToolSession, error)
	Delete(ctx context.Context, id string) error
}

const maxUpdateRetries = 5

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session cache
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (c *sessionCache) Create(ctx context.Context, session *model.ToolSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.ToolSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.ToolSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Update uses WATCH/MULTI so two concurrent submits cannot both commit
func (c *sessionCache) Update(ctx context.Context, id string, fn UpdateFunc) (*model.ToolSession, error) {
	key := c.key(id)
	var updated *model.ToolSession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var session model.ToolSession
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}
		payload, err := json.Marshal(&session)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		if err == nil {
			updated = &session
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := c.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrUpdateConflict
}

// Remove deletes the session only if fn accepts it, under the same WATCH as the read
func (c *sessionCache) Remove(ctx context.Context, id string, fn UpdateFunc) (*model.ToolSession, error) {
	key := c.key(id)
	var removed *model.ToolSession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var session model.ToolSession
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err == nil {
			removed = &session
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := c.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, err
		}
		return removed, nil
	}
	return nil, ErrUpdateConflict
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memorySessionCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionCache creates an in-process session cache.
// Sessions are stored serialised so callers never share pointers.
func NewMemorySessionCache(ttl time.Duration, now func() time.Time) SessionCache {
	if now == nil {
		now = time.Now
	}
	return &memorySessionCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *memorySessionCache) load(id string) (*model.ToolSession, error) {
	e, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		delete(c.entries, id)
		return nil, nil
	}
	var session model.ToolSession
	if err := json.Unmarshal(e.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *memorySessionCache) store(session *model.ToolSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.entries[session.ID] = memoryEntry{data: data, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *memorySessionCache) Create(ctx context.Context, session *model.ToolSession) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(session)
}

func (c *memorySessionCache) Get(ctx context.Context, id string) (*model.ToolSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(id)
}

func (c *memorySessionCache) Update(ctx context.Context, id string, fn UpdateFunc) (*model.ToolSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.load(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := c.store(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *memorySessionCache) Remove(ctx context.Context, id string, fn UpdateFunc) (*model.ToolSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.load(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	delete(c.entries, id)
	return session, nil
}

func (c *memorySessionCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
