package viewer

import (
	"context"
)

// LogOut ends the session. The cookie is always cleared, whatever state
// the request arrived in. When the cookie identifies a viewer, the stored
// session token is rotated best-effort so the old opaque token stops
// authorizing sensitive operations immediately, not just at next login.
func (s *Service) LogOut(ctx context.Context, rawCookie string) Result {
	id, err := s.cookies.Decode(rawCookie)
	if err != nil {
		return Result{DidRequest: true, Cookie: CookieClear}
	}

	if token, terr := s.tokens.NewToken(); terr == nil {
		if _, _, serr := s.store.FindAndUpdate(ctx, id, Patch{Token: token}); serr != nil {
			s.audit("viewer_logout_rotate_failed", map[string]string{"viewer_id": id, "error": serr.Error()})
		}
	}

	s.audit("viewer_logout", map[string]string{"viewer_id": id})
	if perr := s.pub.PublishLoggedOut(ctx, LoggedOutEvent{ViewerID: id}); perr != nil {
		s.audit("event_publish_failed", map[string]string{"viewer_id": id, "error": perr.Error()})
	}

	return Result{DidRequest: true, Cookie: CookieClear}
}
