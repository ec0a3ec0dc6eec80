package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"parenthelper/shared/go/models"
)

var (
	// ErrFranchiseNotFound signals a missing franchise record.
	ErrFranchiseNotFound = errors.New("franchise not found")
	// ErrFranchiseExists indicates the franchise slug is already taken.
	ErrFranchiseExists = errors.New("franchise already exists")
	// ErrDiscountCodeExists indicates the discount code collides with an existing one.
	ErrDiscountCodeExists = errors.New("discount code already exists")
)

const franchiseColumns = `
	id, name, slug, logo_url, default_discount_percent, signup_link_slug,
	stripe_promotion_id, notes, created_at, updated_at`

// ListFranchises returns franchises ordered by name, optionally narrowed by a
// case-insensitive name substring.
func (s *Store) ListFranchises(ctx context.Context, search string, limit int) ([]models.Franchise, error) {
	query := `SELECT` + franchiseColumns + `
		FROM franchises`

	var args []any
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		query += " WHERE name ILIKE $1"
	}

	args = append(args, limit)
	query += fmt.Sprintf("\n\t\tORDER BY name ASC\n\t\tLIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select franchises: %w", err)
	}
	defer rows.Close()

	var franchises []models.Franchise
	for rows.Next() {
		f, err := scanFranchise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan franchise: %w", err)
		}
		franchises = append(franchises, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate franchises: %w", err)
	}
	return franchises, nil
}

// FranchiseByID fetches a single franchise.
func (s *Store) FranchiseByID(ctx context.Context, id int64) (models.Franchise, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+franchiseColumns+`
		FROM franchises
		WHERE id = $1`, id)

	f, err := scanFranchise(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Franchise{}, ErrFranchiseNotFound
		}
		return models.Franchise{}, fmt.Errorf("select franchise: %w", err)
	}
	return f, nil
}

// CreateFranchise inserts a new franchise brand.
func (s *Store) CreateFranchise(ctx context.Context, f models.Franchise) (models.Franchise, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO franchises (name, slug, logo_url, default_discount_percent, signup_link_slug, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, f.Name, f.Slug, f.LogoURL, f.DefaultDiscountPercent, f.SignupLinkSlug, f.Notes,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Franchise{}, ErrFranchiseExists
		}
		return models.Franchise{}, fmt.Errorf("insert franchise: %w", err)
	}
	return f, nil
}

// UpdateFranchise applies the present fields of the update to an existing
// franchise and returns the updated row.
func (s *Store) UpdateFranchise(ctx context.Context, id int64, update models.FranchiseUpdate) (models.Franchise, error) {
	var (
		sets []string
		args []any
	)

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.LogoURL != nil {
		set("logo_url", *update.LogoURL)
	}
	if update.DefaultDiscountPercent != nil {
		set("default_discount_percent", *update.DefaultDiscountPercent)
	}
	if update.SignupLinkSlug != nil {
		set("signup_link_slug", *update.SignupLinkSlug)
	}
	if update.Notes != nil {
		set("notes", *update.Notes)
	}

	if len(sets) == 0 {
		return s.FranchiseByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE franchises
		SET %s
		WHERE id = $%d
		RETURNING`+franchiseColumns, strings.Join(sets, ", "), len(args))

	f, err := scanFranchise(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Franchise{}, ErrFranchiseNotFound
		}
		return models.Franchise{}, fmt.Errorf("update franchise: %w", err)
	}
	return f, nil
}

// FranchiseProviders lists the providers linked to a franchise.
func (s *Store) FranchiseProviders(ctx context.Context, franchiseID int64) ([]models.FranchiseProvider, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.town, p.postcode, p.slug
		FROM provider_franchises pf
		INNER JOIN providers p ON p.id = pf.provider_id
		WHERE pf.franchise_id = $1
		ORDER BY p.name ASC`, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("select franchise providers: %w", err)
	}
	defer rows.Close()

	var links []models.FranchiseProvider
	for rows.Next() {
		var fp models.FranchiseProvider
		if err := rows.Scan(&fp.ProviderID, &fp.ProviderName, &fp.Town, &fp.Postcode, &fp.Slug); err != nil {
			return nil, fmt.Errorf("scan franchise provider: %w", err)
		}
		links = append(links, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate franchise providers: %w", err)
	}
	return links, nil
}

// AttachProvider links a provider to a franchise. Attaching an already linked
// pair is a no-op.
func (s *Store) AttachProvider(ctx context.Context, franchiseID, providerID int64) error {
	if _, err := s.ProviderByID(ctx, providerID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_franchises (provider_id, franchise_id)
		VALUES ($1, $2)
		ON CONFLICT (provider_id, franchise_id) DO NOTHING
	`, providerID, franchiseID); err != nil {
		return fmt.Errorf("attach provider: %w", err)
	}
	return nil
}

// DetachProvider removes the link between a provider and a franchise.
func (s *Store) DetachProvider(ctx context.Context, franchiseID, providerID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM provider_franchises
		WHERE franchise_id = $1 AND provider_id = $2
	`, franchiseID, providerID); err != nil {
		return fmt.Errorf("detach provider: %w", err)
	}
	return nil
}

const discountCodeColumns = `
	id, franchise_id, code, description, discount_percent, max_redemptions,
	redemption_count, stripe_coupon_id, stripe_promotion_id, status, expires_at,
	created_at, updated_at`

// DiscountCodes lists a franchise's discount codes, oldest first.
func (s *Store) DiscountCodes(ctx context.Context, franchiseID int64) ([]models.FranchiseDiscountCode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT`+discountCodeColumns+`
		FROM franchise_discount_codes
		WHERE franchise_id = $1
		ORDER BY created_at ASC`, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("select discount codes: %w", err)
	}
	defer rows.Close()

	var codes []models.FranchiseDiscountCode
	for rows.Next() {
		var c models.FranchiseDiscountCode
		if err := rows.Scan(
			&c.ID, &c.FranchiseID, &c.Code, &c.Description, &c.DiscountPercent,
			&c.MaxRedemptions, &c.RedemptionCount, &c.StripeCouponID,
			&c.StripePromotionID, &c.Status, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan discount code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discount codes: %w", err)
	}
	return codes, nil
}

// CreateDiscountCode persists a new discount code.
func (s *Store) CreateDiscountCode(ctx context.Context, c models.FranchiseDiscountCode) (models.FranchiseDiscountCode, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO franchise_discount_codes (
			franchise_id, code, description, discount_percent, max_redemptions,
			stripe_coupon_id, stripe_promotion_id, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, redemption_count, status, created_at, updated_at
	`, c.FranchiseID, c.Code, c.Description, c.DiscountPercent, c.MaxRedemptions,
		c.StripeCouponID, c.StripePromotionID, c.ExpiresAt,
	).Scan(&c.ID, &c.RedemptionCount, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.FranchiseDiscountCode{}, ErrDiscountCodeExists
		}
		return models.FranchiseDiscountCode{}, fmt.Errorf("insert discount code: %w", err)
	}
	return c, nil
}

// CreateInvite persists a franchise signup invite.
func (s *Store) CreateInvite(ctx context.Context, inv models.FranchiseInvite) (models.FranchiseInvite, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO franchise_invites (franchise_id, invite_type, email, code, source_campaign)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at, updated_at
	`, inv.FranchiseID, inv.InviteType, inv.Email, inv.Code, inv.SourceCampaign,
	).Scan(&inv.ID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return models.FranchiseInvite{}, fmt.Errorf("insert franchise invite: %w", err)
	}
	return inv, nil
}

// MarkInviteSent stamps the invite's sent_at once the email goes out.
func (s *Store) MarkInviteSent(ctx context.Context, inviteID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE franchise_invites
		SET sent_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, inviteID); err != nil {
		return fmt.Errorf("mark invite sent: %w", err)
	}
	return nil
}

func scanFranchise(row rowScanner) (models.Franchise, error) {
	var f models.Franchise
	err := row.Scan(
		&f.ID, &f.Name, &f.Slug, &f.LogoURL, &f.DefaultDiscountPercent,
		&f.SignupLinkSlug, &f.StripePromotionID, &f.Notes, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}
