// Package localcontext derives per-town aggregate stats from the active class
// listings for that town. Nothing here is persisted; town listing counts are
// small enough to recompute on every call.
package localcontext

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"parenthelper/internal/store"
)

// ClassLister is the slice of the class store this service needs.
type ClassLister interface {
	ListClasses(ctx context.Context, filter store.ClassFilter) ([]store.Class, error)
}

// Context is the per-town enrichment payload.
type Context struct {
	Venues       int     `json:"venues"`
	ParkingSpots int     `json:"parkingSpots"`
	AvgDistance  float64 `json:"avgDistance"`
	Transport    string  `json:"transport"`
	Population   *string `json:"population"`
	NearestTrain *string `json:"nearestTrain"`
}

type townInfo struct {
	population string
	train      string
}

// Static supplement for towns we hold civic data on. Towns absent from the
// table yield null population/train fields rather than an error.
var townData = map[string]townInfo{
	"winchester":  {population: "45,000", train: "Winchester"},
	"andover":     {population: "52,000", train: "Andover"},
	"southampton": {population: "253,000", train: "Southampton Central"},
}

// Service computes town-level context.
type Service interface {
	ForTown(ctx context.Context, town string) (Context, error)
}

type service struct {
	classes ClassLister
}

// New constructs the local context Service.
func New(classes ClassLister) Service {
	return &service{classes: classes}
}

func (s *service) ForTown(ctx context.Context, town string) (Context, error) {
	if err := ctx.Err(); err != nil {
		return Context{}, err
	}

	result := Context{Transport: "Local classes available"}
	if info, ok := townData[strings.ToLower(town)]; ok {
		result.Population = &info.population
		result.NearestTrain = &info.train
	}

	listings, err := s.classes.ListClasses(ctx, store.ClassFilter{Town: town})
	if err != nil {
		// Enrichment is decorative; degrade to the empty payload.
		log.Error().Err(err).Str("town", town).Msg("local context class lookup failed")
		return result, nil
	}

	venues := make(map[string]struct{}, len(listings))
	var (
		parkingSpots  int
		distanceSum   float64
		distanceCount int
		transitVenue  *store.Class
	)

	for i := range listings {
		c := &listings[i]
		venues[c.Venue] = struct{}{}
		if c.ParkingAvailable != nil && *c.ParkingAvailable {
			parkingSpots++
		}
		if c.DistanceFromSearch != nil {
			distanceSum += *c.DistanceFromSearch
			distanceCount++
		}
		if transitVenue == nil && (c.NearestTubeStation != nil || c.TransportAccessibility != nil) {
			transitVenue = c
		}
	}

	result.Venues = len(venues)
	result.ParkingSpots = parkingSpots
	if distanceCount > 0 {
		result.AvgDistance = math.Round(distanceSum/float64(distanceCount)*10) / 10
	}

	if transitVenue != nil {
		mode := "bus"
		if transitVenue.NearestTubeStation != nil {
			mode = "tube/train"
			result.NearestTrain = transitVenue.NearestTubeStation
		}
		result.Transport = fmt.Sprintf("Most venues are accessible by %s. %d venues offer parking.", mode, parkingSpots)
	} else {
		result.Transport = fmt.Sprintf("%d venues in %s offer parking for families.", parkingSpots, town)
	}

	return result, nil
}
