package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stayhaven/viewer-service/internal/application/viewer"
	"github.com/stayhaven/viewer-service/internal/domain"
)

// ViewerStore persists viewers in the viewers table. Listings and
// bookings are jsonb columns so the accumulators round-trip without a
// driver-specific array type. FindAndUpdate is a single UPDATE with
// RETURNING; zero rows affected is the tagged "not found" branch.
type ViewerStore struct {
	db *sql.DB
}

func NewViewerStore(db *sql.DB) *ViewerStore {
	return &ViewerStore{db: db}
}

// ---------- helpers ----------

type viewerRow struct {
	ID       string
	Name     string
	Email    string
	Avatar   string
	Token    string
	WalletID sql.NullString
	Income   int64
	Listings []byte
	Bookings []byte
}

func scanViewerRow(row *sql.Row) (viewerRow, error) {
	var vr viewerRow
	err := row.Scan(
		&vr.ID,
		&vr.Name,
		&vr.Email,
		&vr.Avatar,
		&vr.Token,
		&vr.WalletID,
		&vr.Income,
		&vr.Listings,
		&vr.Bookings,
	)
	return vr, err
}

func toDomainViewer(vr viewerRow) (domain.Viewer, error) {
	v := domain.Viewer{
		ID:            vr.ID,
		Name:          vr.Name,
		Email:         vr.Email,
		Avatar:        vr.Avatar,
		Token:         vr.Token,
		WalletBinding: vr.WalletID.String,
		Income:        vr.Income,
		Listings:      []string{},
		Bookings:      []string{},
	}
	if len(vr.Listings) > 0 {
		if err := json.Unmarshal(vr.Listings, &v.Listings); err != nil {
			return domain.Viewer{}, err
		}
	}
	if len(vr.Bookings) > 0 {
		if err := json.Unmarshal(vr.Bookings, &v.Bookings); err != nil {
			return domain.Viewer{}, err
		}
	}
	return v, nil
}

const viewerColumns = "id, name, email, avatar, token, wallet_id, income, listings, bookings"

// ---------- viewer.ViewerStore ----------

func (s *ViewerStore) FindAndUpdate(ctx context.Context, id string, p viewer.Patch) (domain.Viewer, bool, error) {
	var zero domain.Viewer
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, false, domain.ErrMissingField("id")
	}

	var row *sql.Row
	if p.Identity != nil {
		const q = `
UPDATE viewers
SET token = $2, name = $3, email = $4, avatar = $5
WHERE id = $1
RETURNING ` + viewerColumns + `;
`
		row = s.db.QueryRowContext(ctx, q, id, p.Token, p.Identity.DisplayName, p.Identity.Email, p.Identity.AvatarURL)
	} else {
		const q = `
UPDATE viewers
SET token = $2
WHERE id = $1
RETURNING ` + viewerColumns + `;
`
		row = s.db.QueryRowContext(ctx, q, id, p.Token)
	}

	vr, err := scanViewerRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, domain.ErrStoreUnavailable(err)
	}
	v, err := toDomainViewer(vr)
	if err != nil {
		return zero, false, domain.ErrInternal(err)
	}
	return v, true, nil
}

func (s *ViewerStore) Insert(ctx context.Context, v domain.Viewer) error {
	if strings.TrimSpace(v.ID) == "" {
		return domain.ErrMissingField("id")
	}

	listings, err := json.Marshal(v.Listings)
	if err != nil {
		return domain.ErrInternal(err)
	}
	bookings, err := json.Marshal(v.Bookings)
	if err != nil {
		return domain.ErrInternal(err)
	}

	var walletID any
	if v.WalletBinding != "" {
		walletID = v.WalletBinding
	}

	const q = `
INSERT INTO viewers (id, name, email, avatar, token, wallet_id, income, listings, bookings)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
`
	if _, err := s.db.ExecContext(ctx, q, v.ID, v.Name, v.Email, v.Avatar, v.Token, walletID, v.Income, listings, bookings); err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	return nil
}

func (s *ViewerStore) Find(ctx context.Context, id string) (domain.Viewer, bool, error) {
	var zero domain.Viewer
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, false, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + viewerColumns + `
FROM viewers
WHERE id = $1
LIMIT 1;
`
	vr, err := scanViewerRow(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, domain.ErrStoreUnavailable(err)
	}
	v, err := toDomainViewer(vr)
	if err != nil {
		return zero, false, domain.ErrInternal(err)
	}
	return v, true, nil
}
