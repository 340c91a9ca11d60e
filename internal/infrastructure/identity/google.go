package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stayhaven/viewer-service/internal/domain"
)

const (
	authEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint    = "https://oauth2.googleapis.com/token"
	userinfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleClient trades Google OAuth 2.0 authorization codes for a
// normalized identity bundle.
type GoogleClient struct {
	clientID     string
	clientSecret string
	redirectURI  string

	httpClient  *http.Client
	tokenURL    string
	userinfoURL string
}

type Option func(*GoogleClient)

// WithHTTPClient overrides the default client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GoogleClient) { c.httpClient = hc }
}

// WithEndpoints points the client at alternate token/userinfo URLs,
// mainly for tests against httptest servers.
func WithEndpoints(tokenURL, userinfoURL string) Option {
	return func(c *GoogleClient) {
		c.tokenURL = tokenURL
		c.userinfoURL = userinfoURL
	}
}

func NewGoogleClient(clientID, clientSecret, redirectURI string, opts ...Option) *GoogleClient {
	c := &GoogleClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokenURL:    tokenEndpoint,
		userinfoURL: userinfoEndpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthURL returns the static authorization URL the client redirects the
// browser to, or "" when credentials are not configured.
func (c *GoogleClient) AuthURL() string {
	if c.clientID == "" || c.clientSecret == "" {
		return ""
	}
	params := url.Values{
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
	}
	return authEndpoint + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Exchange performs the two provider round-trips (code -> access token,
// access token -> profile) and returns the normalized bundle. Partial
// profiles are returned as-is; completeness is the caller's judgment.
func (c *GoogleClient) Exchange(ctx context.Context, code string) (domain.ExternalIdentity, error) {
	var zero domain.ExternalIdentity

	tok, err := c.exchangeCode(ctx, code)
	if err != nil {
		return zero, err
	}
	info, err := c.fetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return zero, err
	}

	return domain.ExternalIdentity{
		ExternalID:  info.Sub,
		DisplayName: info.Name,
		Email:       info.Email,
		AvatarURL:   info.Picture,
	}, nil
}

func (c *GoogleClient) exchangeCode(ctx context.Context, code string) (tokenResponse, error) {
	var tok tokenResponse

	data := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return tok, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tok, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tok, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return tok, fmt.Errorf("token exchange failed: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return tok, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return tok, errors.New("token response missing access_token")
	}
	return tok, nil
}

func (c *GoogleClient) fetchUserInfo(ctx context.Context, accessToken string) (userInfo, error) {
	var info userInfo

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return info, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return info, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return info, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("userinfo request failed: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return info, fmt.Errorf("failed to parse userinfo: %w", err)
	}
	if info.Sub == "" {
		return info, errors.New("invalid userinfo: missing sub")
	}
	return info, nil
}
