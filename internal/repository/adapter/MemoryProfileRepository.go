package adapter

import (
	"context"
	"sync"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/repository/port"
)

// MemoryProfileRepository is the in-process profile store used by the memory driver.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]chat.Profile
}

func NewMemoryProfileRepository(seed ...chat.Profile) *MemoryProfileRepository {
	r := &MemoryProfileRepository{profiles: make(map[string]chat.Profile, len(seed))}
	for _, p := range seed {
		r.profiles[p.ID] = p
	}
	return r
}

var _ repository.ProfileRepository = (*MemoryProfileRepository)(nil)

func (r *MemoryProfileRepository) FindByID(ctx context.Context, id string) (*chat.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return &p, nil
}

func (r *MemoryProfileRepository) FindByIDs(ctx context.Context, ids []string) (map[string]chat.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]chat.Profile, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *MemoryProfileRepository) Upsert(ctx context.Context, p chat.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}
