package models

import "time"

// Franchise is a brand umbrella grouping multiple independently claimed providers.
type Franchise struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	Slug                   string    `json:"slug"`
	LogoURL                *string   `json:"logoUrl,omitempty"`
	DefaultDiscountPercent float64   `json:"defaultDiscountPercent"`
	SignupLinkSlug         *string   `json:"signupLinkSlug,omitempty"`
	StripePromotionID      *string   `json:"stripePromotionId,omitempty"`
	Notes                  *string   `json:"notes,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// FranchiseUpdate carries the optional fields of a partial franchise update.
type FranchiseUpdate struct {
	Name                   *string  `json:"name,omitempty"`
	LogoURL                *string  `json:"logoUrl,omitempty"`
	DefaultDiscountPercent *float64 `json:"defaultDiscountPercent,omitempty"`
	SignupLinkSlug         *string  `json:"signupLinkSlug,omitempty"`
	Notes                  *string  `json:"notes,omitempty"`
}

// FranchiseProvider is a provider row as seen through its franchise link.
type FranchiseProvider struct {
	ProviderID   int64   `json:"providerId"`
	ProviderName string  `json:"providerName"`
	Town         *string `json:"town"`
	Postcode     *string `json:"postcode"`
	Slug         string  `json:"slug"`
}

// FranchiseDiscountCode is a redeemable discount owned by a franchise,
// optionally mirrored to the payment provider's coupon system.
type FranchiseDiscountCode struct {
	ID                int64      `json:"id"`
	FranchiseID       int64      `json:"franchiseId"`
	Code              string     `json:"code"`
	Description       *string    `json:"description,omitempty"`
	DiscountPercent   float64    `json:"discountPercent"`
	MaxRedemptions    *int       `json:"maxRedemptions,omitempty"`
	RedemptionCount   int        `json:"redemptionCount"`
	StripeCouponID    *string    `json:"stripeCouponId,omitempty"`
	StripePromotionID *string    `json:"stripePromotionId,omitempty"`
	Status            string     `json:"status"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// FranchiseInvite tracks a signup invitation sent on behalf of a franchise.
type FranchiseInvite struct {
	ID             int64      `json:"id"`
	FranchiseID    int64      `json:"franchiseId"`
	InviteType     string     `json:"inviteType"`
	Email          string     `json:"email"`
	Code           string     `json:"code"`
	SourceCampaign *string    `json:"sourceCampaign,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	ClickedAt      *time.Time `json:"clickedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
