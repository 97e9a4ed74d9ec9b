package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

const defaultGeocodeConcurrency = 4

type itineraryBuilder struct {
	geocoder    ports.Geocoder
	router      ports.Router
	concurrency int
	log         zerolog.Logger
}

// NewItineraryBuilder returns an ItineraryBuilder that geocodes missing stop
// coordinates with at most concurrency parallel calls before asking the router
// for the path. If concurrency <= 0, defaultGeocodeConcurrency is used.
func NewItineraryBuilder(geocoder ports.Geocoder, router ports.Router, concurrency int, log zerolog.Logger) ports.ItineraryBuilder {
	if concurrency <= 0 {
		concurrency = defaultGeocodeConcurrency
	}
	return &itineraryBuilder{
		geocoder:    geocoder,
		router:      router,
		concurrency: concurrency,
		log:         log,
	}
}

// Build resolves, routes and time-annotates stops. Either a complete itinerary
// is returned or an error; the input slice is not modified.
func (b *itineraryBuilder) Build(ctx context.Context, origin domain.Coordinate, stops []domain.Stop, startTime time.Time) (it domain.Itinerary, err error) {
	begin := time.Now()
	defer func() {
		metrics.ItineraryBuildDuration.Observe(time.Since(begin).Seconds())
		metrics.ItineraryBuildsTotal.WithLabelValues(buildResult(err)).Inc()
	}()

	if len(stops) == 0 {
		return domain.Itinerary{}, fmt.Errorf("build itinerary: %w: no stops", domain.ErrInvalidArgument)
	}
	if !origin.Valid() {
		return domain.Itinerary{}, fmt.Errorf("build itinerary: %w: origin out of range", domain.ErrInvalidArgument)
	}

	coords, err := b.resolveAll(ctx, stops)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("build itinerary: %w", err)
	}

	points := make([]domain.Coordinate, 0, len(stops)+1)
	points = append(points, origin)
	points = append(points, coords...)

	route, err := b.router.ComputeRoute(ctx, points)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("build itinerary: compute route: %w", err)
	}
	if len(route.Legs) != len(stops) {
		return domain.Itinerary{}, fmt.Errorf("build itinerary: %w: router returned %d legs for %d stops",
			domain.ErrServiceUnavailable, len(route.Legs), len(stops))
	}

	it = domain.Itinerary{
		Origin:    origin,
		Stops:     make([]domain.Stop, len(stops)),
		StartTime: startTime,
		Geometry:  route.Geometry,
	}

	var elapsed float64
	for i, s := range stops {
		c := coords[i]
		leg := route.Legs[i]
		elapsed += leg.DurationSeconds
		eta := startTime.Add(time.Duration(elapsed * float64(time.Second)))

		s.Coordinate = &c
		s.LegDistanceMeters = leg.DistanceMeters
		s.LegDurationSeconds = leg.DurationSeconds
		s.CumulativeETA = &eta
		it.Stops[i] = s

		it.TotalDistanceMeters += leg.DistanceMeters
		it.TotalDurationSeconds += leg.DurationSeconds
	}

	b.log.Debug().
		Int("stops", len(stops)).
		Float64("distance_m", it.TotalDistanceMeters).
		Float64("duration_s", it.TotalDurationSeconds).
		Msg("itinerary built")

	return it, nil
}

// resolveAll returns one coordinate per stop, geocoding the ones without a
// coordinate concurrently. The first failure cancels the remaining calls.
func (b *itineraryBuilder) resolveAll(ctx context.Context, stops []domain.Stop) ([]domain.Coordinate, error) {
	coords := make([]domain.Coordinate, len(stops))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, s := range stops {
		if s.Coordinate != nil {
			coords[i] = *s.Coordinate
			continue
		}
		g.Go(func() error {
			c, err := b.geocoder.Resolve(gctx, s.Address)
			if err != nil {
				b.log.Warn().Err(err).Str("stop_id", s.ID).Msg("stop could not be geocoded")
				return &domain.StopUnresolvedError{StopID: s.ID, Err: err}
			}
			coords[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return coords, nil
}

func buildResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrStopUnresolved):
		return "stop_unresolved"
	case errors.Is(err, domain.ErrNoRouteFound):
		return "no_route"
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
