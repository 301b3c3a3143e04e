// internal/domain/checkout/draft.go
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/casemandu/storefront/internal/infrastructure/database/redis"
)

// Draft is the per-session checkout state kept between page loads
type Draft struct {
	District    string    `json:"district"`
	PromoCode   string    `json:"promoCode"`
	DiscountPct float64   `json:"discount"`
	MaxAmount   float64   `json:"maxAmount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PromoLocked reports whether a promo code was already applied
func (d *Draft) PromoLocked() bool {
	return d.DiscountPct > 0
}

// DraftRepository persists one draft per browser session
type DraftRepository interface {
	Load(ctx context.Context, sessionID string) (*Draft, error)
	Update(ctx context.Context, sessionID string, fn func(*Draft) error) (*Draft, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisDraftRepository stores drafts as JSON under <namespace>:checkout:<session>
type RedisDraftRepository struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisDraftRepository creates a Redis backed draft repository
func NewRedisDraftRepository(client *redis.Client, namespace string, ttl time.Duration) *RedisDraftRepository {
	return &RedisDraftRepository{client: client, namespace: namespace, ttl: ttl}
}

func (r *RedisDraftRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:checkout:%s", r.namespace, sessionID)
}

// Load returns the stored draft or an empty one
func (r *RedisDraftRepository) Load(ctx context.Context, sessionID string) (*Draft, error) {
	var d Draft
	if _, err := r.client.GetJSON(ctx, r.key(sessionID), &d); err != nil {
		return nil, fmt.Errorf("failed to load checkout draft: %w", err)
	}
	return &d, nil
}

// Update applies fn inside a WATCH transaction
func (r *RedisDraftRepository) Update(ctx context.Context, sessionID string, fn func(*Draft) error) (*Draft, error) {
	d, err := redis.UpdateJSON(ctx, r.client, r.key(sessionID), r.ttl, func(d *Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		d.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update checkout draft: %w", err)
	}
	return d, nil
}

// Delete removes the stored draft
func (r *RedisDraftRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)); err != nil {
		return fmt.Errorf("failed to delete checkout draft: %w", err)
	}
	return nil
}

// MemoryDraftRepository keeps drafts in process memory
type MemoryDraftRepository struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

// NewMemoryDraftRepository creates an empty in-memory repository
func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{drafts: make(map[string]Draft)}
}

// Load returns a copy of the stored draft
func (r *MemoryDraftRepository) Load(_ context.Context, sessionID string) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.drafts[sessionID]
	return &d, nil
}

// Update applies fn to a copy and stores it only when fn succeeds
func (r *MemoryDraftRepository) Update(_ context.Context, sessionID string, fn func(*Draft) error) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.drafts[sessionID]
	if err := fn(&d); err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now().UTC()
	r.drafts[sessionID] = d
	return &d, nil
}

// Delete removes the stored draft
func (r *MemoryDraftRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, sessionID)
	return nil
}
