package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrProviderNotFound signals a missing provider record.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrProviderAlreadyClaimed indicates the provider has an approved claim.
	ErrProviderAlreadyClaimed = errors.New("provider already claimed")
	// ErrClaimPending indicates an active claim is already awaiting review.
	ErrClaimPending = errors.New("claim already pending for provider")
)

// Claim status values.
const (
	ClaimStatusUnclaimed = "unclaimed"
	ClaimStatusPending   = "pending"
	ClaimStatusApproved  = "approved"
	ClaimStatusRejected  = "rejected"
)

// Provider is the business entity that may own one or more class listings.
type Provider struct {
	ID             int64     `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	ContactEmail   *string   `json:"contactEmail,omitempty"`
	ContactPhone   *string   `json:"contactPhone,omitempty"`
	Website        *string   `json:"website,omitempty"`
	FacebookURL    *string   `json:"facebookUrl,omitempty"`
	InstagramURL   *string   `json:"instagramUrl,omitempty"`
	AddressLine1   *string   `json:"addressLine1,omitempty"`
	Town           *string   `json:"town,omitempty"`
	County         *string   `json:"county,omitempty"`
	Postcode       *string   `json:"postcode,omitempty"`
	IsActive       bool      `json:"isActive"`
	IsClaimed      bool      `json:"isClaimed"`
	ClaimStatus    string    `json:"claimStatus"`
	AutoApproved   bool      `json:"autoApproved"`
	BookingEnabled bool      `json:"bookingEnabled"`
	CommissionRate float64   `json:"commissionRate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProviderSummary is the trimmed shape returned by provider search.
type ProviderSummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Town        *string `json:"town"`
	Postcode    *string `json:"postcode"`
	IsClaimed   bool    `json:"isClaimed"`
	ClaimStatus string  `json:"claimStatus"`
}

// ProviderClaim records a request to take ownership of a provider listing.
type ProviderClaim struct {
	ID                int64     `json:"id"`
	ProviderID        int64     `json:"providerId"`
	ClaimantName      string    `json:"claimantName"`
	ClaimantEmail     string    `json:"claimantEmail"`
	ClaimantPhone     *string   `json:"claimantPhone,omitempty"`
	Relationship      string    `json:"relationship"`
	Website           *string   `json:"website,omitempty"`
	ProofURL          *string   `json:"proofUrl,omitempty"`
	Message           *string   `json:"message,omitempty"`
	FranchiseID       *int64    `json:"franchiseId,omitempty"`
	Status            string    `json:"status"`
	VerificationToken string    `json:"-"`
	ExpiresAt         time.Time `json:"expiresAt"`
	AutoApproved      bool      `json:"autoApproved"`
	CreatedAt         time.Time `json:"createdAt"`
}

const providerColumns = `
	id, slug, name, contact_email, contact_phone, website, facebook_url,
	instagram_url, address_line1, town, county, postcode, is_active, is_claimed,
	claim_status, auto_approved, booking_enabled, commission_rate, created_at,
	updated_at`

// ProviderByID fetches a provider, claimed or not.
func (s *Store) ProviderByID(ctx context.Context, id int64) (Provider, error) {
	var p Provider
	err := s.db.QueryRowContext(ctx, `SELECT`+providerColumns+`
		FROM providers
		WHERE id = $1`, id).Scan(
		&p.ID, &p.Slug, &p.Name, &p.ContactEmail, &p.ContactPhone, &p.Website,
		&p.FacebookURL, &p.InstagramURL, &p.AddressLine1, &p.Town, &p.County,
		&p.Postcode, &p.IsActive, &p.IsClaimed, &p.ClaimStatus, &p.AutoApproved,
		&p.BookingEnabled, &p.CommissionRate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Provider{}, ErrProviderNotFound
		}
		return Provider{}, fmt.Errorf("select provider: %w", err)
	}
	return p, nil
}

// SearchProviders matches the term against provider name, town or postcode.
// An empty term returns providers ordered by name.
func (s *Store) SearchProviders(ctx context.Context, search string, limit int) ([]ProviderSummary, error) {
	query := `
		SELECT id, name, slug, town, postcode, is_claimed, claim_status
		FROM providers`

	var args []any
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		query += " WHERE name ILIKE $1 OR town ILIKE $1 OR postcode ILIKE $1"
	}

	args = append(args, limit)
	query += fmt.Sprintf("\n\t\tORDER BY name ASC\n\t\tLIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search providers: %w", err)
	}
	defer rows.Close()

	var summaries []ProviderSummary
	for rows.Next() {
		var p ProviderSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Town, &p.Postcode, &p.IsClaimed, &p.ClaimStatus); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		summaries = append(summaries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return summaries, nil
}

// HasActiveClaim reports whether the provider already has a pending,
// unexpired claim.
func (s *Store) HasActiveClaim(ctx context.Context, providerID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM provider_claims
			WHERE provider_id = $1 AND status = $2 AND expires_at > NOW()
		)`, providerID, ClaimStatusPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending claim: %w", err)
	}
	return exists, nil
}

// CreateProviderClaim persists a new claim in pending state.
func (s *Store) CreateProviderClaim(ctx context.Context, claim ProviderClaim) (ProviderClaim, error) {
	claim.Status = ClaimStatusPending

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO provider_claims (
			provider_id, claimant_name, claimant_email, claimant_phone,
			relationship, website, proof_url, message, franchise_id, status,
			verification_token, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`, claim.ProviderID, claim.ClaimantName, claim.ClaimantEmail, claim.ClaimantPhone,
		claim.Relationship, claim.Website, claim.ProofURL, claim.Message,
		claim.FranchiseID, claim.Status, claim.VerificationToken, claim.ExpiresAt,
	).Scan(&claim.ID, &claim.CreatedAt)
	if err != nil {
		return ProviderClaim{}, fmt.Errorf("insert provider claim: %w", err)
	}
	return claim, nil
}

// ApproveProvider marks the provider as claimed with an approved status.
func (s *Store) ApproveProvider(ctx context.Context, providerID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE providers
		SET is_claimed = TRUE, claim_status = $1, auto_approved = TRUE, updated_at = NOW()
		WHERE id = $2
	`, ClaimStatusApproved, providerID)
	if err != nil {
		return fmt.Errorf("approve provider: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve provider result: %w", err)
	}
	if affected == 0 {
		return ErrProviderNotFound
	}
	return nil
}
