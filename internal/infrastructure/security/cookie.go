package security

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stayhaven/viewer-service/internal/domain"
)

const ViewerCookieName = "viewer"

// CookieSigner signs and verifies the persistent viewer cookie. The
// payload is only the viewer id; possession of a validly signed cookie
// is what authorizes a silent resume.
type CookieSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewCookieSigner(secret string, issuer string, ttl time.Duration) *CookieSigner {
	return &CookieSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

type viewerClaims struct {
	jwt.RegisteredClaims
}

func (s *CookieSigner) Encode(viewerID string) (string, error) {
	now := time.Now()
	claims := viewerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   viewerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *CookieSigner) Decode(raw string) (string, error) {
	if raw == "" {
		return "", domain.ErrInvalidCookie(errors.New("empty cookie"))
	}

	parsed, err := jwt.ParseWithClaims(raw, &viewerClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrInvalidCookie(errors.New("unexpected signing method"))
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", domain.ErrInvalidCookie(err)
	}

	claims, ok := parsed.Claims.(*viewerClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidCookie(errors.New("missing subject"))
	}
	return claims.Subject, nil
}

// SetViewerCookie writes the signed cookie with a one-year lifetime.
func SetViewerCookie(w http.ResponseWriter, value string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ViewerCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func ClearViewerCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ViewerCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func ReadViewerCookie(r *http.Request) string {
	c, err := r.Cookie(ViewerCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
