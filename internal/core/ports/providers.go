package ports

import (
	"context"

	"github.com/99minutos/route-tracking/internal/core/domain"
)

// Geocoder resolves a free-text address into a coordinate.
// Implementations return domain.ErrNotFound when nothing matches and
// domain.ErrServiceUnavailable on transport failures. They never retry.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (domain.Coordinate, error)
}

// Leg is the segment between two consecutive route points.
type Leg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// RouteResult is the routing provider's answer for an ordered list of points.
// Legs has exactly len(points)-1 entries.
type RouteResult struct {
	TotalDistanceMeters  float64
	TotalDurationSeconds float64
	Legs                 []Leg
	Geometry             string
}

// Router computes a path through an ordered list of at least two points.
// Implementations return domain.ErrNoRouteFound or domain.ErrServiceUnavailable.
type Router interface {
	ComputeRoute(ctx context.Context, points []domain.Coordinate) (RouteResult, error)
}
