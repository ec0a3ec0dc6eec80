// Package payments mirrors franchise discount codes to Stripe's coupon and
// promotion-code objects. Mirroring is optional and best-effort; local
// issuance never depends on it.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const stripeBaseURL = "https://api.stripe.com"

// Coupons wraps the payment-provider operations used by discount issuance.
type Coupons interface {
	// Enabled reports whether mirrored coupon creation should be attempted.
	Enabled() bool
	CreateCoupon(ctx context.Context, percentOff float64, maxRedemptions *int) (string, error)
	CreatePromotionCode(ctx context.Context, couponID, code string) (string, error)
}

// StripeClient calls the Stripe REST API with form-encoded requests.
type StripeClient struct {
	secretKey  string
	enabled    bool
	baseURL    string
	httpClient *http.Client
}

// NewStripeClient builds a client. The client stays disabled unless both the
// feature flag and a secret key are present.
func NewStripeClient(secretKey string, enabled bool) *StripeClient {
	return &StripeClient{
		secretKey: secretKey,
		enabled:   enabled && secretKey != "",
		baseURL:   stripeBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether mirrored coupon creation should be attempted.
func (c *StripeClient) Enabled() bool {
	return c.enabled
}

type stripeObject struct {
	ID string `json:"id"`
}

// CreateCoupon creates a repeating 12-month percent-off coupon and returns
// its Stripe id.
func (c *StripeClient) CreateCoupon(ctx context.Context, percentOff float64, maxRedemptions *int) (string, error) {
	form := url.Values{}
	form.Set("percent_off", strconv.FormatFloat(percentOff, 'f', -1, 64))
	form.Set("duration", "repeating")
	form.Set("duration_in_months", "12")
	if maxRedemptions != nil {
		form.Set("max_redemptions", strconv.Itoa(*maxRedemptions))
	}

	obj, err := c.post(ctx, "/v1/coupons", form)
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

// CreatePromotionCode attaches a customer-facing code to a coupon and returns
// the promotion's Stripe id.
func (c *StripeClient) CreatePromotionCode(ctx context.Context, couponID, code string) (string, error) {
	form := url.Values{}
	form.Set("coupon", couponID)
	form.Set("code", code)

	obj, err := c.post(ctx, "/v1/promotion_codes", form)
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values) (stripeObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return stripeObject{}, fmt.Errorf("create stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return stripeObject{}, fmt.Errorf("send stripe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return stripeObject{}, fmt.Errorf("stripe %s failed: %s - %s", path, resp.Status, string(body))
	}

	var obj stripeObject
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return stripeObject{}, fmt.Errorf("decode stripe response: %w", err)
	}
	return obj, nil
}
