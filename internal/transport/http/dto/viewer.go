package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stayhaven/viewer-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("auth_code", validateAuthCode)
}

// validateAuthCode accepts the printable-ASCII shape of provider
// authorization codes; anything else is a malformed request.
func validateAuthCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	for _, c := range code {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

// -------- Requests --------

// LogInRequest carries an optional authorization code. An empty body is
// a cookie-only login attempt.
type LogInRequest struct {
	Code string `json:"code,omitempty" validate:"omitempty,max=512,auth_code"`
}

func (r *LogInRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	if err := validate.Struct(r); err != nil {
		return domain.New(domain.KindValidation, "invalid_field", "code has invalid format")
	}
	return nil
}

type LogOutRequest struct{}

// -------- Responses --------

// ViewerData is the standard viewer payload. Every identity field is
// omitted for an anonymous result; hasWallet is a pointer so "unknown"
// disappears from the JSON instead of reading as false.
type ViewerData struct {
	ID         string `json:"id,omitempty"`
	Token      string `json:"token,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	HasWallet  *bool  `json:"hasWallet,omitempty"`
	DidRequest bool   `json:"didRequest"`
}

func NewViewerData(v *domain.Viewer, didRequest bool) ViewerData {
	d := ViewerData{DidRequest: didRequest}
	if v == nil {
		return d
	}
	d.ID = v.ID
	d.Token = v.Token
	d.Avatar = v.Avatar
	switch v.HasWallet() {
	case domain.WalletLinked:
		t := true
		d.HasWallet = &t
	case domain.WalletNone:
		f := false
		d.HasWallet = &f
	}
	return d
}

// AuthURLData is returned by the auth-url endpoint.
type AuthURLData struct {
	AuthURL string `json:"authUrl"`
}
