package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/stayhaven/viewer-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
}

type ViewerHandler interface {
	LogIn(w http.ResponseWriter, r *http.Request)
	LogOut(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	AuthURL(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Viewer ViewerHandler

	// RateLimit caps login attempts per IP per minute; 0 disables.
	RateLimit int
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Viewer == nil {
		return nil, fmt.Errorf("nil Viewer handler")
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", deps.Health.Healthz)

	r.Route("/viewer/v1", func(r chi.Router) {
		// login hits the identity provider; keep it behind a per-IP limit
		if deps.RateLimit > 0 {
			r.With(httprate.LimitByIP(deps.RateLimit, time.Minute)).Post("/login", deps.Viewer.LogIn)
		} else {
			r.Post("/login", deps.Viewer.LogIn)
		}
		r.Post("/logout", deps.Viewer.LogOut)
		r.Get("/me", deps.Viewer.Me)
		r.Get("/auth-url", deps.Viewer.AuthURL)
	})

	return r, nil
}
