package viewer

import (
	"context"
)

// logInViaCookie resumes a session from the signed cookie alone. A cookie
// that fails verification, or one whose viewer no longer exists, is
// cleared so the client stops presenting it. Transient store failures
// leave the cookie in place so a healthy retry can still succeed.
func (s *Service) logInViaCookie(ctx context.Context, rawCookie string) Result {
	id, err := s.cookies.Decode(rawCookie)
	if err != nil {
		if rawCookie == "" {
			// Plain guest request, nothing to clear.
			return Result{DidRequest: true}
		}
		s.audit("viewer_resume_rejected", map[string]string{"error": err.Error()})
		return Result{DidRequest: true, Cookie: CookieClear}
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		s.audit("viewer_resume_failed", map[string]string{"viewer_id": id, "error": err.Error()})
		return Result{DidRequest: true}
	}

	v, found, err := s.store.FindAndUpdate(ctx, id, Patch{Token: token})
	if err != nil {
		s.audit("viewer_resume_failed", map[string]string{"viewer_id": id, "error": err.Error()})
		return Result{DidRequest: true}
	}
	if !found {
		s.audit("viewer_resume_stale", map[string]string{"viewer_id": id})
		return Result{DidRequest: true, Cookie: CookieClear}
	}

	s.audit("viewer_resume", map[string]string{"viewer_id": v.ID})
	return Result{Viewer: &v, DidRequest: true}
}
