// Package providers implements the provider claim workflow: a listing moves
// from unclaimed to pending on submission, and on to approved either by
// auto-approval or by manual review outside this service.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"parenthelper/internal/mailer"
	"parenthelper/internal/store"
	"parenthelper/shared/go/models"
)

// claimTTL bounds how long a submitted claim stays actionable.
const claimTTL = 72 * time.Hour

// DefaultSearchLimit applies when the caller does not supply a limit.
const DefaultSearchLimit = 10

// Store captures the persistence needs for provider workflows.
type Store interface {
	ProviderByID(ctx context.Context, id int64) (store.Provider, error)
	SearchProviders(ctx context.Context, search string, limit int) ([]store.ProviderSummary, error)
	HasActiveClaim(ctx context.Context, providerID int64) (bool, error)
	CreateProviderClaim(ctx context.Context, claim store.ProviderClaim) (store.ProviderClaim, error)
	ApproveProvider(ctx context.Context, providerID int64) error
	FranchiseByID(ctx context.Context, id int64) (models.Franchise, error)
}

// Notifier sends the claim notification emails.
type Notifier interface {
	SendClaimAdminNotification(ctx context.Context, n mailer.ClaimNotification) mailer.Outcome
	SendClaimantConfirmation(ctx context.Context, n mailer.ClaimNotification) mailer.Outcome
}

// ClaimRequest is a validated claim submission.
type ClaimRequest struct {
	FullName     string
	Email        string
	Phone        string
	Relationship string
	Website      string
	ProofURL     string
	Message      string
	FranchiseID  *int64
}

// ClaimResult reports what the claim submission did, including the outcome of
// each best-effort notification.
type ClaimResult struct {
	Claim         store.ProviderClaim
	AutoApproved  bool
	AdminEmail    mailer.Outcome
	ClaimantEmail mailer.Outcome
}

// Service coordinates provider search and the claim workflow.
type Service interface {
	Search(ctx context.Context, search string, limit int) ([]store.ProviderSummary, error)
	Claim(ctx context.Context, providerID int64, req ClaimRequest) (ClaimResult, error)
}

type service struct {
	store       Store
	notifier    Notifier
	autoApprove bool
}

// New constructs the provider Service. When autoApprove is set, successful
// claim submissions immediately mark the provider as claimed.
func New(store Store, notifier Notifier, autoApprove bool) Service {
	return &service{store: store, notifier: notifier, autoApprove: autoApprove}
}

func (s *service) Search(ctx context.Context, search string, limit int) ([]store.ProviderSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return s.store.SearchProviders(ctx, search, limit)
}

func (s *service) Claim(ctx context.Context, providerID int64, req ClaimRequest) (ClaimResult, error) {
	if err := ctx.Err(); err != nil {
		return ClaimResult{}, err
	}

	provider, err := s.store.ProviderByID(ctx, providerID)
	if err != nil {
		return ClaimResult{}, err
	}
	if provider.IsClaimed {
		return ClaimResult{}, store.ErrProviderAlreadyClaimed
	}

	pending, err := s.store.HasActiveClaim(ctx, providerID)
	if err != nil {
		return ClaimResult{}, err
	}
	if pending {
		return ClaimResult{}, store.ErrClaimPending
	}

	claim := store.ProviderClaim{
		ProviderID:        providerID,
		ClaimantName:      req.FullName,
		ClaimantEmail:     req.Email,
		ClaimantPhone:     optional(req.Phone),
		Relationship:      req.Relationship,
		Website:           optional(req.Website),
		ProofURL:          optional(req.ProofURL),
		Message:           optional(req.Message),
		FranchiseID:       req.FranchiseID,
		VerificationToken: uuid.NewString(),
		ExpiresAt:         time.Now().Add(claimTTL),
	}

	created, err := s.store.CreateProviderClaim(ctx, claim)
	if err != nil {
		return ClaimResult{}, err
	}

	franchiseName := ""
	if req.FranchiseID != nil {
		franchise, err := s.store.FranchiseByID(ctx, *req.FranchiseID)
		if err != nil {
			log.Warn().Err(err).Int64("franchiseId", *req.FranchiseID).Msg("franchise lookup for claim failed")
		} else {
			franchiseName = franchise.Name
		}
	}

	if s.autoApprove {
		if err := s.store.ApproveProvider(ctx, providerID); err != nil {
			return ClaimResult{}, fmt.Errorf("auto-approve provider: %w", err)
		}
	}

	notification := mailer.ClaimNotification{
		Provider:      provider,
		Claim:         created,
		AutoApproved:  s.autoApprove,
		FranchiseName: franchiseName,
	}

	result := ClaimResult{
		Claim:         created,
		AutoApproved:  s.autoApprove,
		AdminEmail:    s.notifier.SendClaimAdminNotification(ctx, notification),
		ClaimantEmail: s.notifier.SendClaimantConfirmation(ctx, notification),
	}
	return result, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
