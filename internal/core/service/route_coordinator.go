package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

// StopAdvance is the result of processing the current stop.
type StopAdvance struct {
	Package   domain.PackageState
	NextStop  *domain.Stop
	Completed bool
}

// RouteProgressCoordinator tracks which stop of one driver's itinerary is next
// and drives the package of each visited stop through the tracker.
// All methods are safe for concurrent use; calls are serialized.
type RouteProgressCoordinator struct {
	mu         sync.Mutex
	routeID    string
	tracker    ports.PackageTracker
	onComplete func(routeID string, progress domain.RouteProgress)
	state      domain.RouteState
	progress   domain.RouteProgress
	log        zerolog.Logger
}

// NewRouteProgressCoordinator returns a coordinator in the not started state.
func NewRouteProgressCoordinator(routeID string, tracker ports.PackageTracker, log zerolog.Logger) *RouteProgressCoordinator {
	return &RouteProgressCoordinator{
		routeID: routeID,
		tracker: tracker,
		state:   domain.RouteNotStarted,
		log:     log.With().Str("route_id", routeID).Logger(),
	}
}

// RestoreRouteProgressCoordinator rebuilds a coordinator from a persisted route.
func RestoreRouteProgressCoordinator(route domain.Route, tracker ports.PackageTracker, log zerolog.Logger) *RouteProgressCoordinator {
	c := NewRouteProgressCoordinator(route.ID, tracker, log)
	c.state = route.State
	c.progress = route.Progress.Clone()
	return c
}

// OnComplete registers fn to be called once when the last stop is processed.
func (c *RouteProgressCoordinator) OnComplete(fn func(routeID string, progress domain.RouteProgress)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComplete = fn
}

// Start begins the route at its first stop.
func (c *RouteProgressCoordinator) Start(it domain.Itinerary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.RouteNotStarted {
		return fmt.Errorf("start route %s: %w: route is %s", c.routeID, domain.ErrInvalidState, c.state)
	}
	if len(it.Stops) == 0 {
		return fmt.Errorf("start route %s: %w", c.routeID, domain.ErrEmptyItinerary)
	}

	c.progress = domain.RouteProgress{
		Itinerary:        it.Clone(),
		CurrentStopIndex: 0,
		CompletedStopIDs: []string{},
		FailedStopIDs:    []string{},
	}
	c.state = domain.RouteInProgress

	c.log.Info().Int("stops", len(it.Stops)).Msg("route started")
	return nil
}

// Advance records the outcome of the current stop. The stop index only moves
// after the tracker has persisted the package transition, so a failed call can
// be retried for the same stop.
func (c *RouteProgressCoordinator) Advance(ctx context.Context, outcome domain.Outcome, reason string) (StopAdvance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.RouteInProgress {
		return StopAdvance{}, fmt.Errorf("advance route %s: %w: route is %s", c.routeID, domain.ErrInvalidState, c.state)
	}
	event, err := outcome.Event()
	if err != nil {
		return StopAdvance{}, fmt.Errorf("advance route %s: %w", c.routeID, err)
	}

	stop := c.progress.Itinerary.Stops[c.progress.CurrentStopIndex]

	pkg, err := c.tracker.Transition(ctx, stop.ID, event, reason)
	if err != nil {
		return StopAdvance{}, fmt.Errorf("advance route %s: stop %s: %w", c.routeID, stop.ID, err)
	}

	c.record(stop.ID, outcome)
	metrics.RouteStopsProcessedTotal.WithLabelValues(string(outcome)).Inc()

	res := StopAdvance{Package: pkg}
	if c.state == domain.RouteCompleted {
		res.Completed = true
		c.complete()
		return res, nil
	}

	next := c.progress.Itinerary.Stops[c.progress.CurrentStopIndex]
	res.NextStop = &next
	return res, nil
}

// Reconcile skips over stops whose package already reached a terminal status,
// which happens when a transition was persisted but the route snapshot was not.
func (c *RouteProgressCoordinator) Reconcile(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.state == domain.RouteInProgress {
		stop := c.progress.Itinerary.Stops[c.progress.CurrentStopIndex]
		pkg, err := c.tracker.Get(ctx, stop.ID)
		if err != nil {
			return fmt.Errorf("reconcile route %s: %w", c.routeID, err)
		}
		switch pkg.Status {
		case domain.StatusDelivered:
			c.record(stop.ID, domain.OutcomeDelivered)
		case domain.StatusFailedDelivery:
			c.record(stop.ID, domain.OutcomeFailed)
		default:
			return nil
		}
		c.log.Warn().Str("stop_id", stop.ID).Msg("stop already processed, progress reconciled")
		if c.state == domain.RouteCompleted {
			c.complete()
		}
	}
	return nil
}

// CurrentStop returns the next stop to visit.
func (c *RouteProgressCoordinator) CurrentStop() (domain.Stop, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case domain.RouteCompleted:
		return domain.Stop{}, fmt.Errorf("current stop of route %s: %w", c.routeID, domain.ErrRouteComplete)
	case domain.RouteNotStarted:
		return domain.Stop{}, fmt.Errorf("current stop of route %s: %w: route not started", c.routeID, domain.ErrInvalidState)
	}
	return c.progress.Itinerary.Stops[c.progress.CurrentStopIndex], nil
}

// State returns the route lifecycle state.
func (c *RouteProgressCoordinator) State() domain.RouteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns a snapshot of the route progress.
func (c *RouteProgressCoordinator) Progress() domain.RouteProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Clone()
}

// record must be called with mu held.
func (c *RouteProgressCoordinator) record(stopID string, outcome domain.Outcome) {
	p := c.progress.Clone()
	if outcome == domain.OutcomeDelivered {
		p.CompletedStopIDs = append(p.CompletedStopIDs, stopID)
	} else {
		p.FailedStopIDs = append(p.FailedStopIDs, stopID)
	}
	p.CurrentStopIndex++
	c.progress = p

	if p.CurrentStopIndex == len(p.Itinerary.Stops) {
		c.state = domain.RouteCompleted
	}
}

// complete must be called with mu held.
func (c *RouteProgressCoordinator) complete() {
	metrics.RoutesCompletedTotal.Inc()
	c.log.Info().
		Int("delivered", len(c.progress.CompletedStopIDs)).
		Int("failed", len(c.progress.FailedStopIDs)).
		Msg("route completed")
	if c.onComplete != nil {
		c.onComplete(c.routeID, c.progress.Clone())
	}
}
