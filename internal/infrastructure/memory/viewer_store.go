package memory

import (
	"context"
	"sync"

	"github.com/stayhaven/viewer-service/internal/application/viewer"
	"github.com/stayhaven/viewer-service/internal/domain"
)

// ViewerStore is the in-memory implementation, used in dev and tests.
type ViewerStore struct {
	mu   sync.RWMutex
	byID map[string]domain.Viewer
}

func NewViewerStore() *ViewerStore {
	return &ViewerStore{byID: make(map[string]domain.Viewer)}
}

func (s *ViewerStore) FindAndUpdate(ctx context.Context, id string, p viewer.Patch) (domain.Viewer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[id]
	if !ok {
		return domain.Viewer{}, false, nil
	}

	v.Token = p.Token
	if p.Identity != nil {
		v.Name = p.Identity.DisplayName
		v.Email = p.Identity.Email
		v.Avatar = p.Identity.AvatarURL
	}
	s.byID[id] = v
	return v, true, nil
}

func (s *ViewerStore) Insert(ctx context.Context, v domain.Viewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		return domain.ErrInternal(nil)
	}
	s.byID[v.ID] = v
	return nil
}

func (s *ViewerStore) Find(ctx context.Context, id string) (domain.Viewer, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.byID[id]
	return v, ok, nil
}

// Seed pre-populates a record, test and dev convenience.
func (s *ViewerStore) Seed(v domain.Viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[v.ID] = v
}
