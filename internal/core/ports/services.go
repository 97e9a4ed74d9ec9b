package ports

import (
	"context"
	"time"

	"github.com/99minutos/route-tracking/internal/core/domain"
)

// ItineraryBuilder turns stops into a time-annotated itinerary. The build is
// all-or-nothing.
type ItineraryBuilder interface {
	Build(ctx context.Context, origin domain.Coordinate, stops []domain.Stop, startTime time.Time) (domain.Itinerary, error)
}

// PackageTracker drives packages through the status state machine.
type PackageTracker interface {
	Transition(ctx context.Context, packageID string, event domain.PackageEvent, reason string) (domain.PackageState, error)
	Get(ctx context.Context, packageID string) (*domain.PackageState, error)
}

// NotificationService delivers a single intent. Used by the dispatcher workers.
type NotificationService interface {
	Deliver(ctx context.Context, intent domain.NotificationIntent) error
}

// PlanInput carries everything needed to plan a new route.
type PlanInput struct {
	DriverID  string
	Origin    domain.Coordinate
	Stops     []domain.Stop
	StartTime time.Time
}

// ReorderResult is returned by RouteService.Reorder. When Committed is false
// Stops is an approximate preview whose leg values are stale.
type ReorderResult struct {
	Stops     []domain.Stop
	Committed bool
	Route     *domain.Route
}

// AdvanceResult describes the route after a stop was processed.
type AdvanceResult struct {
	Route     domain.Route
	Package   domain.PackageState
	NextStop  *domain.Stop
	Completed bool
}

// RouteService is the use-case surface for a driver's route.
type RouteService interface {
	Plan(ctx context.Context, in PlanInput) (*domain.Route, error)
	Get(ctx context.Context, routeID string) (*domain.Route, error)
	Packages(ctx context.Context, routeID string) ([]domain.PackageState, error)
	Reorder(ctx context.Context, routeID string, criterion domain.Criterion, commit bool) (*ReorderResult, error)
	Start(ctx context.Context, routeID string) (*domain.Route, error)
	Advance(ctx context.Context, routeID string, outcome domain.Outcome, reason string) (*AdvanceResult, error)
	CurrentStop(ctx context.Context, routeID string) (*domain.Stop, error)
}
