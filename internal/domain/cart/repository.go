// internal/domain/cart/repository.go
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/casemandu/storefront/internal/infrastructure/database/redis"
)

// Repository persists one cart per browser session. Update is the only write
// path and must apply fn atomically with respect to other writers.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisRepository stores carts as JSON under <namespace>:cart:<session>
type RedisRepository struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisRepository creates a Redis backed cart repository
func NewRedisRepository(client *redis.Client, namespace string, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (r *RedisRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:cart:%s", r.namespace, sessionID)
}

// Load returns the stored cart or an empty one
func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*Cart, error) {
	var c Cart
	if _, err := r.client.GetJSON(ctx, r.key(sessionID), &c); err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return &c, nil
}

// Update applies fn inside a WATCH transaction
func (r *RedisRepository) Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	c, err := redis.UpdateJSON(ctx, r.client, r.key(sessionID), r.ttl, func(c *Cart) error {
		if c.Items == nil {
			c.Items = []LineItem{}
		}
		if err := fn(c); err != nil {
			return err
		}
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return c, nil
}

// Delete removes the stored cart
func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// MemoryRepository keeps carts in process memory. Used when Redis is
// disabled and in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[string]Cart
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]Cart)}
}

// Load returns a copy of the stored cart or an empty one
func (r *MemoryRepository) Load(_ context.Context, sessionID string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := clone(r.carts[sessionID])
	return &c, nil
}

// Update applies fn to a copy and stores it only when fn succeeds
func (r *MemoryRepository) Update(_ context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := clone(r.carts[sessionID])
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()
	r.carts[sessionID] = clone(c)
	return &c, nil
}

// Delete removes the stored cart
func (r *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

func clone(c Cart) Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
