package security

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/stayhaven/viewer-service/internal/domain"
)

// RandomTokenSource issues opaque session tokens: 16 random bytes,
// hex-encoded to 32 lowercase characters.
type RandomTokenSource struct{}

func (RandomTokenSource) NewToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	return hex.EncodeToString(buf), nil
}
