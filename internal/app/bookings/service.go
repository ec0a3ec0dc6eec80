package bookings

import (
	"context"
	"errors"
	"math"
	"time"

	"parenthelper/internal/store"
)

// requestTTL bounds how long a provider has to respond before the request lapses.
const requestTTL = 72 * time.Hour

var (
	// ErrBookingUnavailable indicates the class does not accept direct bookings.
	ErrBookingUnavailable = errors.New("class does not accept booking requests")
)

// Store captures the persistence needs for booking workflows.
type Store interface {
	ClassByID(ctx context.Context, id int64) (store.Class, error)
	ProviderByID(ctx context.Context, id int64) (store.Provider, error)
	CreateBookingRequest(ctx context.Context, req store.BookingRequest) (store.BookingRequest, error)
}

// Request is a validated booking submission from a parent.
type Request struct {
	ParentName          string
	ParentEmail         string
	ParentPhone         string
	ChildName           string
	ChildAge            int
	BookingType         string
	SessionsRequested   int
	PreferredDate       *time.Time
	SpecialRequirements string
}

// Service coordinates booking request creation.
type Service interface {
	Create(ctx context.Context, classID int64, req Request) (store.BookingRequest, error)
}

type service struct {
	store Store
}

// New constructs the booking Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, classID int64, req Request) (store.BookingRequest, error) {
	if err := ctx.Err(); err != nil {
		return store.BookingRequest{}, err
	}

	class, err := s.store.ClassByID(ctx, classID)
	if err != nil {
		return store.BookingRequest{}, err
	}
	if !class.BookingEnabled || class.BookingPrice == nil || class.ProviderID == nil {
		return store.BookingRequest{}, ErrBookingUnavailable
	}

	provider, err := s.store.ProviderByID(ctx, *class.ProviderID)
	if err != nil {
		return store.BookingRequest{}, err
	}

	sessions := req.SessionsRequested
	if sessions <= 0 {
		sessions = 1
	}

	total := round2(*class.BookingPrice * float64(sessions))
	commission := round2(total * provider.CommissionRate / 100)

	booking := store.BookingRequest{
		ClassID:             classID,
		ProviderID:          provider.ID,
		ParentName:          req.ParentName,
		ParentEmail:         req.ParentEmail,
		ParentPhone:         optional(req.ParentPhone),
		ChildName:           req.ChildName,
		ChildAge:            req.ChildAge,
		BookingType:         req.BookingType,
		SessionsRequested:   sessions,
		PreferredDate:       req.PreferredDate,
		SpecialRequirements: optional(req.SpecialRequirements),
		TotalAmount:         total,
		CommissionAmount:    commission,
		ProviderAmount:      round2(total - commission),
		ExpiresAt:           time.Now().Add(requestTTL),
	}

	return s.store.CreateBookingRequest(ctx, booking)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
