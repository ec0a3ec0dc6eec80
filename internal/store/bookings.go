package store

import (
	"context"
	"fmt"
	"time"
)

// BookingRequest is a parent's request to book sessions of a class, awaiting
// the provider's response.
type BookingRequest struct {
	ID                  int64      `json:"id"`
	ClassID             int64      `json:"classId"`
	ProviderID          int64      `json:"providerId"`
	ParentName          string     `json:"parentName"`
	ParentEmail         string     `json:"parentEmail"`
	ParentPhone         *string    `json:"parentPhone,omitempty"`
	ChildName           string     `json:"childName"`
	ChildAge            int        `json:"childAge"`
	BookingType         string     `json:"bookingType"`
	SessionsRequested   int        `json:"sessionsRequested"`
	PreferredDate       *time.Time `json:"preferredDate,omitempty"`
	SpecialRequirements *string    `json:"specialRequirements,omitempty"`
	TotalAmount         float64    `json:"totalAmount"`
	CommissionAmount    float64    `json:"commissionAmount"`
	ProviderAmount      float64    `json:"providerAmount"`
	Status              string     `json:"status"`
	ExpiresAt           time.Time  `json:"expiresAt"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// CreateBookingRequest persists a pending booking request.
func (s *Store) CreateBookingRequest(ctx context.Context, req BookingRequest) (BookingRequest, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO booking_requests (
			class_id, provider_id, parent_name, parent_email, parent_phone,
			child_name, child_age, booking_type, sessions_requested,
			preferred_date, special_requirements, total_amount,
			commission_amount, provider_amount, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, status, created_at
	`, req.ClassID, req.ProviderID, req.ParentName, req.ParentEmail, req.ParentPhone,
		req.ChildName, req.ChildAge, req.BookingType, req.SessionsRequested,
		req.PreferredDate, req.SpecialRequirements, req.TotalAmount,
		req.CommissionAmount, req.ProviderAmount, req.ExpiresAt,
	).Scan(&req.ID, &req.Status, &req.CreatedAt)
	if err != nil {
		return BookingRequest{}, fmt.Errorf("insert booking request: %w", err)
	}
	return req, nil
}
