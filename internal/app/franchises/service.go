// Package franchises covers franchise administration: brand CRUD, provider
// links, discount code issuance and bulk signup invites.
package franchises

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"parenthelper/internal/mailer"
	"parenthelper/internal/payments"
	"parenthelper/shared/go/models"
)

// DefaultListLimit applies when the caller does not supply a limit.
const DefaultListLimit = 50

// Code prefixes for generated discount and invite codes.
const (
	discountCodePrefix = "PHFR"
	inviteCodePrefix   = "INVITE"
)

// Store captures the persistence needs for franchise administration.
type Store interface {
	ListFranchises(ctx context.Context, search string, limit int) ([]models.Franchise, error)
	FranchiseByID(ctx context.Context, id int64) (models.Franchise, error)
	CreateFranchise(ctx context.Context, f models.Franchise) (models.Franchise, error)
	UpdateFranchise(ctx context.Context, id int64, update models.FranchiseUpdate) (models.Franchise, error)
	FranchiseProviders(ctx context.Context, franchiseID int64) ([]models.FranchiseProvider, error)
	AttachProvider(ctx context.Context, franchiseID, providerID int64) error
	DetachProvider(ctx context.Context, franchiseID, providerID int64) error
	DiscountCodes(ctx context.Context, franchiseID int64) ([]models.FranchiseDiscountCode, error)
	CreateDiscountCode(ctx context.Context, c models.FranchiseDiscountCode) (models.FranchiseDiscountCode, error)
	CreateInvite(ctx context.Context, inv models.FranchiseInvite) (models.FranchiseInvite, error)
	MarkInviteSent(ctx context.Context, inviteID int64) error
}

// InviteMailer sends franchise signup invitations.
type InviteMailer interface {
	SendFranchiseInvite(ctx context.Context, to, inviteCode string) mailer.Outcome
}

// IssueCodeRequest is a validated discount code submission.
type IssueCodeRequest struct {
	Code            string
	Description     string
	DiscountPercent float64
	MaxRedemptions  *int
	ExpiresAt       *time.Time
}

// IssueCodeResult is the persisted code plus whether the payment-provider
// mirror was attempted.
type IssueCodeResult struct {
	Code     models.FranchiseDiscountCode
	Mirrored bool
}

// InviteRequest is a validated bulk invite submission.
type InviteRequest struct {
	Emails         []string
	InviteType     string
	Code           string
	SourceCampaign string
}

// InviteResult reports the per-email send status.
type InviteResult struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Service coordinates franchise administration workflows.
type Service interface {
	List(ctx context.Context, search string, limit int) ([]models.Franchise, error)
	Create(ctx context.Context, f models.Franchise) (models.Franchise, error)
	Update(ctx context.Context, id int64, update models.FranchiseUpdate) (models.Franchise, error)
	Providers(ctx context.Context, franchiseID int64) ([]models.FranchiseProvider, error)
	AttachProvider(ctx context.Context, franchiseID, providerID int64) error
	DetachProvider(ctx context.Context, franchiseID, providerID int64) error
	DiscountCodes(ctx context.Context, franchiseID int64) ([]models.FranchiseDiscountCode, error)
	IssueDiscountCode(ctx context.Context, franchiseID int64, req IssueCodeRequest) (IssueCodeResult, error)
	Invite(ctx context.Context, franchiseID int64, req InviteRequest) ([]InviteResult, error)
}

type service struct {
	store   Store
	coupons payments.Coupons
	mailer  InviteMailer
}

// New constructs the franchise Service.
func New(store Store, coupons payments.Coupons, mailer InviteMailer) Service {
	return &service{store: store, coupons: coupons, mailer: mailer}
}

func (s *service) List(ctx context.Context, search string, limit int) ([]models.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.ListFranchises(ctx, search, limit)
}

func (s *service) Create(ctx context.Context, f models.Franchise) (models.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return models.Franchise{}, err
	}
	if strings.TrimSpace(f.Slug) == "" {
		f.Slug = slug.Make(f.Name)
	}
	return s.store.CreateFranchise(ctx, f)
}

func (s *service) Update(ctx context.Context, id int64, update models.FranchiseUpdate) (models.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return models.Franchise{}, err
	}
	return s.store.UpdateFranchise(ctx, id, update)
}

func (s *service) Providers(ctx context.Context, franchiseID int64) ([]models.FranchiseProvider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.FranchiseByID(ctx, franchiseID); err != nil {
		return nil, err
	}
	return s.store.FranchiseProviders(ctx, franchiseID)
}

func (s *service) AttachProvider(ctx context.Context, franchiseID, providerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.store.FranchiseByID(ctx, franchiseID); err != nil {
		return err
	}
	return s.store.AttachProvider(ctx, franchiseID, providerID)
}

func (s *service) DetachProvider(ctx context.Context, franchiseID, providerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DetachProvider(ctx, franchiseID, providerID)
}

func (s *service) DiscountCodes(ctx context.Context, franchiseID int64) ([]models.FranchiseDiscountCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.FranchiseByID(ctx, franchiseID); err != nil {
		return nil, err
	}
	return s.store.DiscountCodes(ctx, franchiseID)
}

func (s *service) IssueDiscountCode(ctx context.Context, franchiseID int64, req IssueCodeRequest) (IssueCodeResult, error) {
	if err := ctx.Err(); err != nil {
		return IssueCodeResult{}, err
	}

	if _, err := s.store.FranchiseByID(ctx, franchiseID); err != nil {
		return IssueCodeResult{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		generated, err := generateCode(discountCodePrefix)
		if err != nil {
			return IssueCodeResult{}, fmt.Errorf("generate discount code: %w", err)
		}
		code = generated
	}

	row := models.FranchiseDiscountCode{
		FranchiseID:     franchiseID,
		Code:            code,
		Description:     optional(req.Description),
		DiscountPercent: req.DiscountPercent,
		MaxRedemptions:  req.MaxRedemptions,
		ExpiresAt:       req.ExpiresAt,
	}

	mirrored := s.coupons.Enabled()
	if mirrored {
		couponID, err := s.coupons.CreateCoupon(ctx, req.DiscountPercent, req.MaxRedemptions)
		if err != nil {
			log.Error().Err(err).Str("code", code).Msg("stripe coupon creation failed")
		} else {
			row.StripeCouponID = &couponID
			promotionID, err := s.coupons.CreatePromotionCode(ctx, couponID, code)
			if err != nil {
				log.Error().Err(err).Str("code", code).Msg("stripe promotion code creation failed")
			} else {
				row.StripePromotionID = &promotionID
			}
		}
	}

	created, err := s.store.CreateDiscountCode(ctx, row)
	if err != nil {
		return IssueCodeResult{}, err
	}
	return IssueCodeResult{Code: created, Mirrored: mirrored}, nil
}

func (s *service) Invite(ctx context.Context, franchiseID int64, req InviteRequest) ([]InviteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.FranchiseByID(ctx, franchiseID); err != nil {
		return nil, err
	}

	inviteType := req.InviteType
	if inviteType == "" {
		inviteType = "email"
	}

	results := make([]InviteResult, 0, len(req.Emails))
	for _, email := range req.Emails {
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		if code == "" {
			generated, err := generateCode(inviteCodePrefix)
			if err != nil {
				return nil, fmt.Errorf("generate invite code: %w", err)
			}
			code = generated
		}

		invite, err := s.store.CreateInvite(ctx, models.FranchiseInvite{
			FranchiseID:    franchiseID,
			InviteType:     inviteType,
			Email:          email,
			Code:           code,
			SourceCampaign: optional(req.SourceCampaign),
		})
		if err != nil {
			return nil, err
		}

		switch s.mailer.SendFranchiseInvite(ctx, email, code) {
		case mailer.OutcomeDelivered:
			if err := s.store.MarkInviteSent(ctx, invite.ID); err != nil {
				log.Error().Err(err).Int64("inviteId", invite.ID).Msg("failed to stamp invite send time")
			}
			results = append(results, InviteResult{Email: email, Status: "sent"})
		case mailer.OutcomeSkipped:
			results = append(results, InviteResult{Email: email, Status: "skipped"})
		default:
			results = append(results, InviteResult{Email: email, Status: "error"})
		}
	}
	return results, nil
}

// generateCode produces codes of the form PREFIX-XXXXXX with six uppercase
// hex characters.
func generateCode(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
