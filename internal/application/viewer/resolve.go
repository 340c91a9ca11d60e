package viewer

import (
	"context"

	"github.com/stayhaven/viewer-service/internal/domain"
)

// ResolveViewer is the read-only counterpart of the cookie path: it maps
// a raw cookie to the current viewer record without rotating anything.
// Used by collaborators that only need to know who is asking.
func (s *Service) ResolveViewer(ctx context.Context, rawCookie string) (domain.Viewer, bool) {
	var zero domain.Viewer

	id, err := s.cookies.Decode(rawCookie)
	if err != nil {
		return zero, false
	}
	v, found, err := s.store.Find(ctx, id)
	if err != nil || !found {
		return zero, false
	}
	return v, true
}
