package handshake

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Mem is the in-process Store. go-cache handles expiry; the mutex makes
// Consume's read+delete atomic, which go-cache alone does not guarantee.
type Mem struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMem creates a memory store. ttl <= 0 falls back to DefaultTTL.
func NewMem(ttl time.Duration) *Mem {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Mem{c: gocache.New(ttl, time.Minute)}
}

func (m *Mem) Record(_ context.Context, id, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c.SetDefault(id, secret)
	return nil
}

func (m *Mem) Consume(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.c.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	m.c.Delete(id)
	s, _ := v.(string)
	return s, nil
}
