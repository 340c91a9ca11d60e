package viewer

import (
	"context"

	"github.com/stayhaven/viewer-service/internal/domain"
)

/*
IdentityClient
--------------
External identity provider port. The OAuth/OIDC handshake itself lives
behind this boundary; the resolver only ever sees a normalized bundle.
*/
type IdentityClient interface {
	// AuthURL returns the static provider login URL ("" if unconfigured).
	AuthURL() string

	// Exchange trades an authorization code for a normalized identity.
	Exchange(ctx context.Context, code string) (domain.ExternalIdentity, error)
}

/*
ViewerStore
-----------
Persistence port for viewer records, keyed by external identity id.
FindAndUpdate is a tagged result: found=false means no prior record
existed and nothing was written; callers follow up with an explicit
Insert rather than relying on upsert semantics.
*/
type Patch struct {
	// Token is rotated on every successful login.
	Token string
	// Identity, when set, refreshes name/email/avatar from a fresh
	// provider round-trip. Nil on the cookie-resume path.
	Identity *domain.ExternalIdentity
}

type ViewerStore interface {
	FindAndUpdate(ctx context.Context, id string, p Patch) (domain.Viewer, bool, error)
	Insert(ctx context.Context, v domain.Viewer) error
	Find(ctx context.Context, id string) (domain.Viewer, bool, error)
}

/*
TokenSource
-----------
Opaque session token generator. Never deterministic from caller input.
*/
type TokenSource interface {
	NewToken() (string, error)
}

/*
CookieCodec
-----------
Signed, tamper-evident envelope around a viewer id. Decode fails for
absent, malformed or foreign-signed input; callers treat that as
"no session", not as an error surface.
*/
type CookieCodec interface {
	Encode(viewerID string) (string, error)
	Decode(raw string) (string, error)
}

/*
EventPublisher
--------------
Login lifecycle events for downstream consumers. Publishing is
best-effort; a broker outage never fails a login.
*/
type EventPublisher interface {
	PublishLoggedIn(ctx context.Context, evt LoggedInEvent) error
	PublishLoggedOut(ctx context.Context, evt LoggedOutEvent) error
}

type LoggedInEvent struct {
	ViewerID  string
	Email     string
	NewViewer bool
}

type LoggedOutEvent struct {
	ViewerID string
}
