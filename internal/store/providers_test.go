package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var providerRowColumns = []string{
	"id", "slug", "name", "contact_email", "contact_phone", "website",
	"facebook_url", "instagram_url", "address_line1", "town", "county",
	"postcode", "is_active", "is_claimed", "claim_status", "auto_approved",
	"booking_enabled", "commission_rate", "created_at", "updated_at",
}

func providerRow(id int64, claimed bool) []driver.Value {
	status := ClaimStatusUnclaimed
	if claimed {
		status = ClaimStatusApproved
	}
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, "little-kickers", "Little Kickers", nil, nil, nil, nil, nil, nil,
		"Winchester", nil, "SO23 9EH", true, claimed, status, false, false,
		7.0, now, now,
	}
}

func TestProviderByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(`FROM providers\s+WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(providerRowColumns).AddRow(providerRow(1, true)...))

	got, err := s.ProviderByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProviderByID error: %v", err)
	}
	if !got.IsClaimed || got.ClaimStatus != ClaimStatusApproved {
		t.Fatalf("unexpected claim state: %+v", got)
	}
	if got.CommissionRate != 7.0 {
		t.Fatalf("unexpected commission rate: %v", got.CommissionRate)
	}
}

func TestProviderByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(`FROM providers\s+WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(providerRowColumns))

	_, err = s.ProviderByID(context.Background(), 404)
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestSearchProvidersMatchesNameTownPostcode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE $1 OR town ILIKE $1 OR postcode ILIKE $1`)).
		WithArgs("%kick%", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "town", "postcode", "is_claimed", "claim_status"}).
			AddRow(int64(1), "Little Kickers", "little-kickers", "Winchester", "SO23 9EH", false, ClaimStatusUnclaimed))

	got, err := s.SearchProviders(context.Background(), "kick", 10)
	if err != nil {
		t.Fatalf("SearchProviders error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "little-kickers" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestHasActiveClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE provider_id = $1 AND status = $2 AND expires_at > NOW()`)).
		WithArgs(int64(5), ClaimStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	pending, err := s.HasActiveClaim(context.Background(), 5)
	if err != nil {
		t.Fatalf("HasActiveClaim error: %v", err)
	}
	if !pending {
		t.Fatal("expected pending claim")
	}
}

func TestCreateProviderClaimForcesPendingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	expires := time.Now().Add(72 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO provider_claims`)).
		WithArgs(int64(5), "Jo Smith", "jo@example.com", nil, "owner", nil, nil,
			nil, nil, ClaimStatusPending, "token-123", expires).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(int64(88), time.Now()))

	claim, err := s.CreateProviderClaim(context.Background(), ProviderClaim{
		ProviderID:        5,
		ClaimantName:      "Jo Smith",
		ClaimantEmail:     "jo@example.com",
		Relationship:      "owner",
		Status:            "approved", // ignored; claims always start pending
		VerificationToken: "token-123",
		ExpiresAt:         expires,
	})
	if err != nil {
		t.Fatalf("CreateProviderClaim error: %v", err)
	}
	if claim.ID != 88 {
		t.Fatalf("expected claim id 88, got %d", claim.ID)
	}
	if claim.Status != ClaimStatusPending {
		t.Fatalf("expected pending status, got %q", claim.Status)
	}
}

func TestApproveProviderMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE providers`)).
		WithArgs(ClaimStatusApproved, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.ApproveProvider(context.Background(), 404)
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}
