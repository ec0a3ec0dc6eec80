package localcontext

import (
	"context"
	"errors"
	"strings"
	"testing"

	"parenthelper/internal/store"
)

type stubLister struct {
	classes []store.Class
	err     error
}

func (s *stubLister) ListClasses(ctx context.Context, filter store.ClassFilter) ([]store.Class, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.classes, nil
}

func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestForTownAggregates(t *testing.T) {
	lister := &stubLister{classes: []store.Class{
		{Venue: "Village Hall", ParkingAvailable: boolPtr(true), DistanceFromSearch: floatPtr(1.2)},
		{Venue: "Village Hall", ParkingAvailable: boolPtr(true), DistanceFromSearch: floatPtr(2.5)},
		{Venue: "Sports Centre", DistanceFromSearch: floatPtr(3.1)},
	}}
	svc := New(lister)

	got, err := svc.ForTown(context.Background(), "Winchester")
	if err != nil {
		t.Fatalf("ForTown error: %v", err)
	}

	if got.Venues != 2 {
		t.Fatalf("expected 2 distinct venues, got %d", got.Venues)
	}
	if got.ParkingSpots != 2 {
		t.Fatalf("expected 2 parking listings, got %d", got.ParkingSpots)
	}
	if got.AvgDistance != 2.3 {
		t.Fatalf("expected avg distance 2.3, got %v", got.AvgDistance)
	}
	if got.Population == nil || *got.Population != "45,000" {
		t.Fatalf("expected Winchester population, got %v", got.Population)
	}
	if got.NearestTrain == nil || *got.NearestTrain != "Winchester" {
		t.Fatalf("expected Winchester station, got %v", got.NearestTrain)
	}
}

func TestForTownTransitSentence(t *testing.T) {
	lister := &stubLister{classes: []store.Class{
		{Venue: "Church Hall", NearestTubeStation: strPtr("Andover"), ParkingAvailable: boolPtr(true)},
	}}
	svc := New(lister)

	got, err := svc.ForTown(context.Background(), "Andover")
	if err != nil {
		t.Fatalf("ForTown error: %v", err)
	}

	if !strings.Contains(got.Transport, "tube/train") {
		t.Fatalf("expected tube/train sentence, got %q", got.Transport)
	}
	if got.NearestTrain == nil || *got.NearestTrain != "Andover" {
		t.Fatalf("expected venue station to win, got %v", got.NearestTrain)
	}
}

func TestForTownParkingOnlySentence(t *testing.T) {
	lister := &stubLister{classes: []store.Class{
		{Venue: "Hall", ParkingAvailable: boolPtr(true)},
	}}
	svc := New(lister)

	got, err := svc.ForTown(context.Background(), "Romsey")
	if err != nil {
		t.Fatalf("ForTown error: %v", err)
	}

	if !strings.Contains(got.Transport, "offer parking for families") {
		t.Fatalf("expected parking sentence, got %q", got.Transport)
	}
	if got.Population != nil {
		t.Fatalf("unknown town must have null population, got %v", got.Population)
	}
}

func TestForTownListingFailureDegrades(t *testing.T) {
	lister := &stubLister{err: errors.New("db down")}
	svc := New(lister)

	got, err := svc.ForTown(context.Background(), "Winchester")
	if err != nil {
		t.Fatalf("enrichment must not fail the request: %v", err)
	}
	if got.Venues != 0 || got.ParkingSpots != 0 {
		t.Fatalf("expected empty aggregates, got %+v", got)
	}
	if got.Population == nil {
		t.Fatal("static town data must still be returned")
	}
}
