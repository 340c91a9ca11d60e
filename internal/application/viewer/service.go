package viewer

import (
	"github.com/stayhaven/viewer-service/internal/domain"
)

// CookieOp tells the transport layer what to do with the session cookie.
type CookieOp int

const (
	CookieNone CookieOp = iota
	CookieSet
	CookieClear
)

// Result is the outcome of a login, resume or logout attempt. DidRequest
// is always true once the service has been asked: failures degrade to an
// anonymous result rather than an error surface, so a broken provider or
// store never blocks the page from rendering.
type Result struct {
	Viewer      *domain.Viewer
	DidRequest  bool
	Cookie      CookieOp
	CookieValue string
}

type Service struct {
	identity IdentityClient
	store    ViewerStore
	tokens   TokenSource
	cookies  CookieCodec
	pub      EventPublisher
	audit    func(action string, fields map[string]string)
}

func NewService(identity IdentityClient, store ViewerStore, tokens TokenSource, cookies CookieCodec, pub EventPublisher) *Service {
	return &Service{
		identity: identity,
		store:    store,
		tokens:   tokens,
		cookies:  cookies,
		pub:      pub,
		audit:    func(string, map[string]string) {},
	}
}

// WithAudit installs a sink for security-relevant actions
// (login, failed login, resume, logout).
func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// AuthURL returns the provider login URL the client should redirect to.
func (s *Service) AuthURL() (string, error) {
	u := s.identity.AuthURL()
	if u == "" {
		return "", domain.ErrAuthURLUnconfigured()
	}
	return u, nil
}
