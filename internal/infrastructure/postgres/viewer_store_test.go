package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stayhaven/viewer-service/internal/application/viewer"
	"github.com/stayhaven/viewer-service/internal/domain"
)

var cols = []string{"id", "name", "email", "avatar", "token", "wallet_id", "income", "listings", "bookings"}

func newStoreForTest(t *testing.T) (*ViewerStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewViewerStore(db), mock
}

func adaRow() *sqlmock.Rows {
	return sqlmock.NewRows(cols).AddRow(
		"viewer-1", "Ada Lovelace", "ada@example.com", "https://img.example.com/ada.png",
		"tok-2", "wallet-acct-1", int64(4200), []byte(`["listing-1"]`), []byte(`[]`),
	)
}

func TestFindAndUpdate_TokenOnly(t *testing.T) {
	t.Parallel()

	s, mock := newStoreForTest(t)

	mock.ExpectQuery(`UPDATE viewers\s+SET token = \$2\s+WHERE id = \$1\s+RETURNING`).
		WithArgs("viewer-1", "tok-2").
		WillReturnRows(adaRow())

	v, found, err := s.FindAndUpdate(context.Background(), "viewer-1", viewer.Patch{Token: "tok-2"})
	if err != nil || !found {
		t.Fatalf("expected found record, got found=%v err=%v", found, err)
	}
	if v.Token != "tok-2" || v.WalletBinding != "wallet-acct-1" {
		t.Fatalf("unexpected record %+v", v)
	}
	if v.Income != 4200 || len(v.Listings) != 1 || len(v.Bookings) != 0 {
		t.Fatalf("accumulators did not round-trip: %+v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindAndUpdate_WithIdentity(t *testing.T) {
	t.Parallel()

	s, mock := newStoreForTest(t)

	mock.ExpectQuery(`UPDATE viewers\s+SET token = \$2, name = \$3, email = \$4, avatar = \$5\s+WHERE id = \$1\s+RETURNING`).
		WithArgs("viewer-1", "tok-2", "Ada L.", "ada@example.com", "https://img.example.com/ada2.png").
		WillReturnRows(adaRow())

	ident := domain.ExternalIdentity{
		ExternalID:  "viewer-1",
		DisplayName: "Ada L.",
		Email:       "ada@example.com",
		AvatarURL:   "https://img.example.com/ada2.png",
	}
	_, found, err := s.FindAndUpdate(context.Background(), "viewer-1", viewer.Patch{Token: "tok-2", Identity: &ident})
	if err != nil || !found {
		t.Fatalf("expected found record, got found=%v err=%v", found, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindAndUpdate_NotFound(t *testing.T) {
	t.Parallel()

	s, mock := newStoreForTest(t)

	mock.ExpectQuery(`UPDATE viewers`).
		WithArgs("missing", "tok-1").
		WillReturnError(sql.ErrNoRows)

	_, found, err := s.FindAndUpdate(context.Background(), "missing", viewer.Patch{Token: "tok-1"})
	if err != nil {
		t.Fatalf("zero rows is not an error, got %v", err)
	}
	if found {
		t.Fatalf("expected found=false")
	}
}

func TestFindAndUpdate_EmptyID(t *testing.T) {
	t.Parallel()

	s, _ := newStoreForTest(t)

	_, _, err := s.FindAndUpdate(context.Background(), "  ", viewer.Patch{Token: "tok-1"})
	if !domain.Is(err, "missing_field") {
		t.Fatalf("expected missing_field, got %v", err)
	}
}

func TestInsert(t *testing.T) {
	t.Parallel()

	s, mock := newStoreForTest(t)

	mock.ExpectExec(`INSERT INTO viewers`).
		WithArgs("viewer-1", "Ada Lovelace", "ada@example.com", "https://img.example.com/ada.png",
			"tok-1", nil, int64(0), []byte(`[]`), []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	nv := domain.NewViewer(domain.ExternalIdentity{
		ExternalID:  "viewer-1",
		DisplayName: "Ada Lovelace",
		Email:       "ada@example.com",
		AvatarURL:   "https://img.example.com/ada.png",
	}, "tok-1")

	if err := s.Insert(context.Background(), nv); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	s, mock := newStoreForTest(t)

	mock.ExpectQuery(`SELECT .* FROM viewers\s+WHERE id = \$1`).
		WithArgs("viewer-1").
		WillReturnRows(adaRow())

	v, found, err := s.Find(context.Background(), "viewer-1")
	if err != nil || !found {
		t.Fatalf("expected record, got found=%v err=%v", found, err)
	}
	if v.HasWallet() != domain.WalletLinked {
		t.Fatalf("expected linked wallet, got %v", v.HasWallet())
	}
}

func TestFind_NullWallet(t *testing.T) {
	t.Parallel()

	s, mock := newStoreForTest(t)

	rows := sqlmock.NewRows(cols).AddRow(
		"viewer-1", "Ada Lovelace", "ada@example.com", "https://img.example.com/ada.png",
		"tok-1", nil, int64(0), []byte(`[]`), []byte(`[]`),
	)
	mock.ExpectQuery(`SELECT .* FROM viewers`).
		WithArgs("viewer-1").
		WillReturnRows(rows)

	v, found, err := s.Find(context.Background(), "viewer-1")
	if err != nil || !found {
		t.Fatalf("expected record, got found=%v err=%v", found, err)
	}
	if v.HasWallet() != domain.WalletNone {
		t.Fatalf("expected no wallet, got %v", v.HasWallet())
	}
}

func TestFind_Missing(t *testing.T) {
	t.Parallel()

	s, mock := newStoreForTest(t)

	mock.ExpectQuery(`SELECT .* FROM viewers`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, found, err := s.Find(context.Background(), "missing")
	if err != nil {
		t.Fatalf("zero rows is not an error, got %v", err)
	}
	if found {
		t.Fatalf("expected found=false")
	}
}
