// Package memory is the in-process UserRepository, used in tests and local
// development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/soundfolio/accounts/internal/store/core"
)

type Repo struct {
	mu    sync.RWMutex
	users map[string]*core.User // by local id
}

func New() *Repo {
	return &Repo{users: make(map[string]*core.User)}
}

func (r *Repo) FindByID(_ context.Context, id string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return clone(u), nil
}

func (r *Repo) FindBySocialID(_ context.Context, providerID string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Social != nil && u.Social.ProviderID == providerID {
			return clone(u), nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *Repo) Create(_ context.Context, u *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c := clone(u)
	c.CreatedAt = now
	c.UpdatedAt = now
	r.users[c.ID] = c
	return nil
}

func (r *Repo) Save(_ context.Context, u *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	c := clone(u)
	c.UpdatedAt = time.Now().UTC()
	r.users[c.ID] = c
	return nil
}

// Count is a test helper: number of stored users.
func (r *Repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// clone keeps callers from mutating stored state through shared pointers.
func clone(u *core.User) *core.User {
	c := *u
	if u.Social != nil {
		sc := *u.Social
		c.Social = &sc
	}
	if u.Scrobble != nil {
		sc := *u.Scrobble
		c.Scrobble = &sc
	}
	return &c
}
