package viewer

import (
	"context"

	"github.com/stayhaven/viewer-service/internal/domain"
)

// LogIn resolves a viewer from either an authorization code or a session
// cookie. A non-empty code always wins; otherwise the cookie is tried.
// Every failure degrades to an anonymous result so the client can still
// render as a guest.
func (s *Service) LogIn(ctx context.Context, code, rawCookie string) Result {
	if code != "" {
		return s.logInViaCode(ctx, code)
	}
	return s.logInViaCookie(ctx, rawCookie)
}

func (s *Service) logInViaCode(ctx context.Context, code string) Result {
	v, isNew, err := s.reconcile(ctx, code)
	if err != nil {
		s.audit("viewer_login_failed", map[string]string{"error": err.Error()})
		return Result{DidRequest: true}
	}

	encoded, err := s.cookies.Encode(v.ID)
	if err != nil {
		s.audit("viewer_login_failed", map[string]string{
			"viewer_id": v.ID,
			"error":     domain.ErrTokenSignFailed(err).Error(),
		})
		return Result{DidRequest: true}
	}

	s.audit("viewer_login", map[string]string{"viewer_id": v.ID})
	if err := s.pub.PublishLoggedIn(ctx, LoggedInEvent{ViewerID: v.ID, Email: v.Email, NewViewer: isNew}); err != nil {
		s.audit("event_publish_failed", map[string]string{"viewer_id": v.ID, "error": err.Error()})
	}

	return Result{Viewer: &v, DidRequest: true, Cookie: CookieSet, CookieValue: encoded}
}

// reconcile runs the code path: exchange the code, rotate the token, then
// update-or-insert the viewer record. The tagged FindAndUpdate result
// decides between the returning-viewer and first-login branches; the
// first-login branch reads the record back rather than trusting the
// insert payload.
func (s *Service) reconcile(ctx context.Context, code string) (domain.Viewer, bool, error) {
	var zero domain.Viewer

	ident, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return zero, false, domain.ErrIdentityExchange(err)
	}
	if !ident.Complete() {
		return zero, false, domain.ErrIncompleteIdentity()
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return zero, false, domain.ErrRandomFailed(err)
	}

	v, found, err := s.store.FindAndUpdate(ctx, ident.ExternalID, Patch{Token: token, Identity: &ident})
	if err != nil {
		return zero, false, domain.ErrStoreUnavailable(err)
	}
	if found {
		return v, false, nil
	}

	if err := s.store.Insert(ctx, domain.NewViewer(ident, token)); err != nil {
		return zero, false, domain.ErrStoreUnavailable(err)
	}
	v, found, err = s.store.Find(ctx, ident.ExternalID)
	if err != nil {
		return zero, false, domain.ErrStoreUnavailable(err)
	}
	if !found {
		return zero, false, domain.ErrViewerNotFound()
	}
	return v, true, nil
}
