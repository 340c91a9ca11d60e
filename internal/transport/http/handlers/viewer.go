package http_handlers

import (
	"net/http"
	"time"

	"github.com/stayhaven/viewer-service/internal/application/viewer"
	"github.com/stayhaven/viewer-service/internal/infrastructure/security"
	"github.com/stayhaven/viewer-service/internal/logger"
	"github.com/stayhaven/viewer-service/internal/transport/http/dto"
	"github.com/stayhaven/viewer-service/internal/transport/http/response"
)

type ViewerHandler struct {
	svc           *viewer.Service
	cookieTTL     time.Duration
	secureCookies bool
}

func NewViewerHandler(svc *viewer.Service, cookieTTL time.Duration, secureCookies bool) *ViewerHandler {
	return &ViewerHandler{
		svc:           svc,
		cookieTTL:     cookieTTL,
		secureCookies: secureCookies,
	}
}

// applyCookie translates the service's cookie instruction into response
// headers. CookieNone leaves whatever the client already holds.
func (h *ViewerHandler) applyCookie(w http.ResponseWriter, res viewer.Result) {
	switch res.Cookie {
	case viewer.CookieSet:
		security.SetViewerCookie(w, res.CookieValue, h.cookieTTL, h.secureCookies)
	case viewer.CookieClear:
		security.ClearViewerCookie(w, h.secureCookies)
	}
}

func (h *ViewerHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req dto.LogInRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res := h.svc.LogIn(r.Context(), req.Code, security.ReadViewerCookie(r))
	h.applyCookie(w, res)

	if res.Viewer != nil {
		logger.WithCtx(r.Context()).Info().
			Str("viewer_id", res.Viewer.ID).
			Msg("viewer_logged_in")
	}

	response.OK(w, dto.NewViewerData(res.Viewer, res.DidRequest))
}

func (h *ViewerHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	res := h.svc.LogOut(r.Context(), security.ReadViewerCookie(r))
	h.applyCookie(w, res)

	logger.WithCtx(r.Context()).Info().Msg("viewer_logged_out")

	response.OK(w, dto.NewViewerData(nil, res.DidRequest))
}

func (h *ViewerHandler) Me(w http.ResponseWriter, r *http.Request) {
	v, ok := h.svc.ResolveViewer(r.Context(), security.ReadViewerCookie(r))
	if !ok {
		response.OK(w, dto.NewViewerData(nil, true))
		return
	}
	response.OK(w, dto.NewViewerData(&v, true))
}

func (h *ViewerHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.AuthURL()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.AuthURLData{AuthURL: u})
}
