package domain

// ExternalIdentity is the normalized profile returned by the OAuth
// provider after a code exchange. It contains facts only, no decisions.
type ExternalIdentity struct {
	ExternalID  string // provider-scoped unique user identifier (sub)
	DisplayName string
	Email       string
	AvatarURL   string
}

// Complete reports whether every field the resolver requires is present.
// A partial bundle is a provider failure, not a degraded success.
func (id ExternalIdentity) Complete() bool {
	return id.ExternalID != "" &&
		id.DisplayName != "" &&
		id.Email != "" &&
		id.AvatarURL != ""
}

// Viewer is the persisted account record, keyed by the external identity id.
// income, listings and bookings are owned by the booking/listing domains;
// this service initializes them empty and never modifies them.
type Viewer struct {
	ID            string
	Name          string
	Email         string
	Avatar        string
	Token         string // current opaque session token, rotated on login
	WalletBinding string // owned by the payment collaborator, read-only here
	Income        int64
	Listings      []string
	Bookings      []string
}

// WalletStatus is the tri-state answer to "does this viewer have a wallet".
// "known not to have one" and "could not be determined" are distinct.
type WalletStatus int

const (
	WalletUnknown WalletStatus = iota
	WalletNone
	WalletLinked
)

// HasWallet reports the wallet capability of the viewer.
func (v Viewer) HasWallet() WalletStatus {
	if v.ID == "" {
		return WalletUnknown
	}
	if v.WalletBinding == "" {
		return WalletNone
	}
	return WalletLinked
}

// NewViewer builds a first-login record: identity fields plus token,
// with the booking/listing accumulators zeroed.
func NewViewer(id ExternalIdentity, token string) Viewer {
	return Viewer{
		ID:       id.ExternalID,
		Name:     id.DisplayName,
		Email:    id.Email,
		Avatar:   id.AvatarURL,
		Token:    token,
		Income:   0,
		Listings: []string{},
		Bookings: []string{},
	}
}
