package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stayhaven/viewer-service/internal/application/viewer"
)

// NoopPublisher logs lifecycle events instead of publishing them.
// Used in dev when no broker is configured.
type NoopPublisher struct {
	lg zerolog.Logger
}

func NewNoopPublisher(lg zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{lg: lg}
}

func (p *NoopPublisher) PublishLoggedIn(ctx context.Context, evt viewer.LoggedInEvent) error {
	p.lg.Info().
		Str("viewer_id", evt.ViewerID).
		Bool("new_viewer", evt.NewViewer).
		Msg("noop publish: viewer.logged_in")
	return nil
}

func (p *NoopPublisher) PublishLoggedOut(ctx context.Context, evt viewer.LoggedOutEvent) error {
	p.lg.Info().
		Str("viewer_id", evt.ViewerID).
		Msg("noop publish: viewer.logged_out")
	return nil
}
