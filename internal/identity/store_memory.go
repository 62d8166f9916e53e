package identity

import (
	"context"
	"sync"

	dErrors "sentinela/pkg/domain-errors"
)

// InMemoryStore keeps profiles in a map for tests and DSN-less deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]Profile)}
}

// Seed inserts or replaces a profile.
func (s *InMemoryStore) Seed(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *InMemoryStore) FindByID(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	return &p, nil
}

func (s *InMemoryStore) ListAdmins(_ context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var admins []Profile
	for _, p := range s.profiles {
		if p.Role.In(AdminRoles...) {
			admins = append(admins, p)
		}
	}
	return admins, nil
}
