package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

// RouteService plans routes and keeps one RouteProgressCoordinator per active
// route. Packages are the source of truth for delivery status; route snapshots
// are saved after every change and reconciled on load. Writes to one route
// (reorder commit, start, advance) are serialized by a per-route mutex, so a
// RouteService must be the only writer of the routes it serves.
type RouteService struct {
	builder  ports.ItineraryBuilder
	tracker  ports.PackageTracker
	packages ports.PackageRepository
	routes   ports.RouteRepository
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string

	mu           sync.Mutex
	coordinators map[string]*RouteProgressCoordinator
	routeLocks   map[string]*sync.Mutex
}

func NewRouteService(
	builder ports.ItineraryBuilder,
	tracker ports.PackageTracker,
	packages ports.PackageRepository,
	routes ports.RouteRepository,
	log zerolog.Logger,
) *RouteService {
	return &RouteService{
		builder:      builder,
		tracker:      tracker,
		packages:     packages,
		routes:       routes,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		coordinators: make(map[string]*RouteProgressCoordinator),
		routeLocks:   make(map[string]*sync.Mutex),
	}
}

var _ ports.RouteService = (*RouteService)(nil)

// Plan builds the itinerary for in.Stops, stores the route and registers every
// stop's package as pending pickup on it. Packages that already belong to a
// stored route, or that left pending pickup, are rejected with
// domain.ErrInvalidState.
func (s *RouteService) Plan(ctx context.Context, in ports.PlanInput) (*domain.Route, error) {
	if in.DriverID == "" {
		return nil, fmt.Errorf("plan route: %w: driver id is required", domain.ErrInvalidArgument)
	}
	if err := uniqueStopIDs(in.Stops); err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}
	owners, err := s.claimable(ctx, in.Stops)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}
	start := in.StartTime
	if start.IsZero() {
		start = s.now()
	}

	it, err := s.builder.Build(ctx, in.Origin, in.Stops, start)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	now := s.now()
	route := domain.Route{
		ID:        s.newID(),
		DriverID:  in.DriverID,
		State:     domain.RouteNotStarted,
		Progress:  domain.RouteProgress{Itinerary: it, CompletedStopIDs: []string{}, FailedStopIDs: []string{}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.routes.Save(ctx, route); err != nil {
		return nil, fmt.Errorf("plan route: save: %w", err)
	}

	for i, stop := range it.Stops {
		idx := i
		if err := s.packages.Register(ctx, domain.PackageState{
			PackageID:         stop.ID,
			RouteID:           route.ID,
			Recipient:         stop.Recipient,
			Status:            domain.StatusPendingPickup,
			LastTransitionAt:  now,
			AssignedStopIndex: &idx,
		}, owners[stop.ID]); err != nil {
			// Packages registered so far now point at a missing route and
			// are claimable again by the next plan.
			s.discard(ctx, route.ID)
			return nil, fmt.Errorf("plan route: register package %s: %w", stop.ID, err)
		}
	}

	s.log.Info().
		Str("route_id", route.ID).
		Str("driver_id", route.DriverID).
		Int("stops", len(it.Stops)).
		Msg("route planned")

	return &route, nil
}

// Get returns the latest snapshot of a route.
func (s *RouteService) Get(ctx context.Context, routeID string) (*domain.Route, error) {
	c, route, err := s.coordinator(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	r := snapshot(*route, c)
	return &r, nil
}

// Packages returns the packages assigned to a route in itinerary order. Stop
// indexes come from the stored itinerary; the per-package copies may lag behind
// a reorder commit.
func (s *RouteService) Packages(ctx context.Context, routeID string) ([]domain.PackageState, error) {
	if routeID == "" {
		return nil, fmt.Errorf("list route packages: %w: empty route id", domain.ErrInvalidArgument)
	}
	route, err := s.routes.Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("list route packages: %w", err)
	}
	pkgs, err := s.packages.ListByRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("list route packages: %w", err)
	}

	pos := make(map[string]int, len(route.Progress.Itinerary.Stops))
	for i, stop := range route.Progress.Itinerary.Stops {
		pos[stop.ID] = i
	}
	out := make([]domain.PackageState, 0, len(pkgs))
	for _, p := range pkgs {
		idx, ok := pos[p.PackageID]
		if !ok {
			continue
		}
		p.AssignedStopIndex = &idx
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.PackageState) int {
		return cmp.Compare(*a.AssignedStopIndex, *b.AssignedStopIndex)
	})
	return out, nil
}

// Reorder re-sequences a route that has not started yet. Without commit only the
// approximate order is returned. With commit the itinerary is rebuilt in the new
// order so that leg values and ETAs are correct again, then stored.
func (s *RouteService) Reorder(ctx context.Context, routeID string, criterion domain.Criterion, commit bool) (*ports.ReorderResult, error) {
	if commit {
		defer s.lockRoute(routeID)()
	}
	c, route, err := s.coordinator(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("reorder route: %w", err)
	}
	if st := c.State(); st != domain.RouteNotStarted {
		return nil, fmt.Errorf("reorder route: %w: route is %s", domain.ErrInvalidState, st)
	}

	current := route.Progress.Itinerary
	stops, err := Reorder(current.Stops, criterion)
	if err != nil {
		return nil, fmt.Errorf("reorder route: %w", err)
	}
	if !commit {
		return &ports.ReorderResult{Stops: stops}, nil
	}

	it, err := s.builder.Build(ctx, current.Origin, stops, current.StartTime)
	if err != nil {
		return nil, fmt.Errorf("reorder route: rebuild: %w", err)
	}

	updated := *route
	updated.Progress = domain.RouteProgress{Itinerary: it, CompletedStopIDs: []string{}, FailedStopIDs: []string{}}
	updated.UpdatedAt = s.now()
	if err := s.routes.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("reorder route: save: %w", err)
	}

	s.mu.Lock()
	delete(s.coordinators, routeID)
	s.mu.Unlock()

	// The stored itinerary is authoritative from here on.
	for i, stop := range it.Stops {
		if err := s.packages.AssignStop(ctx, stop.ID, routeID, i); err != nil {
			s.log.Warn().Err(err).
				Str("route_id", routeID).
				Str("package_id", stop.ID).
				Msg("failed to update package stop index")
		}
	}

	s.log.Info().Str("route_id", routeID).Str("criterion", string(criterion)).Msg("route reordered")
	return &ports.ReorderResult{Stops: it.Stops, Committed: true, Route: &updated}, nil
}

// Start marks every pending package as departed and begins the route.
func (s *RouteService) Start(ctx context.Context, routeID string) (*domain.Route, error) {
	defer s.lockRoute(routeID)()
	c, route, err := s.coordinator(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("start route: %w", err)
	}
	if st := c.State(); st != domain.RouteNotStarted {
		return nil, fmt.Errorf("start route: %w: route is %s", domain.ErrInvalidState, st)
	}

	it := route.Progress.Itinerary
	for _, stop := range it.Stops {
		pkg, err := s.tracker.Get(ctx, stop.ID)
		if err != nil {
			return nil, fmt.Errorf("start route: %w", err)
		}
		if pkg.Status != domain.StatusPendingPickup {
			continue
		}
		if _, err := s.tracker.Transition(ctx, stop.ID, domain.EventDriverDeparts, ""); err != nil {
			return nil, fmt.Errorf("start route: %w", err)
		}
	}

	if err := c.Start(it); err != nil {
		return nil, fmt.Errorf("start route: %w", err)
	}

	r := s.persist(ctx, *route, c)
	return &r, nil
}

// Advance processes the current stop of a route with the given outcome.
func (s *RouteService) Advance(ctx context.Context, routeID string, outcome domain.Outcome, reason string) (*ports.AdvanceResult, error) {
	defer s.lockRoute(routeID)()
	c, route, err := s.coordinator(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("advance route: %w", err)
	}

	res, err := c.Advance(ctx, outcome, reason)
	if err != nil {
		return nil, fmt.Errorf("advance route: %w", err)
	}

	r := s.persist(ctx, *route, c)
	return &ports.AdvanceResult{
		Route:     r,
		Package:   res.Package,
		NextStop:  res.NextStop,
		Completed: res.Completed,
	}, nil
}

// CurrentStop returns the next stop the driver should visit.
func (s *RouteService) CurrentStop(ctx context.Context, routeID string) (*domain.Stop, error) {
	c, _, err := s.coordinator(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("current stop: %w", err)
	}
	stop, err := c.CurrentStop()
	if err != nil {
		return nil, err
	}
	return &stop, nil
}

// coordinator returns the cached coordinator for routeID, restoring it from the
// stored snapshot on first use, and reconciles it with the package states.
func (s *RouteService) coordinator(ctx context.Context, routeID string) (*RouteProgressCoordinator, *domain.Route, error) {
	if routeID == "" {
		return nil, nil, fmt.Errorf("%w: empty route id", domain.ErrInvalidArgument)
	}

	route, err := s.routes.Get(ctx, routeID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	c, ok := s.coordinators[routeID]
	if !ok {
		c = RestoreRouteProgressCoordinator(*route, s.tracker, s.log)
		c.OnComplete(s.routeCompleted)
		s.coordinators[routeID] = c
	}
	s.mu.Unlock()

	// Packages may have been moved outside the route (manual transitions).
	if err := c.Reconcile(ctx); err != nil {
		return nil, nil, err
	}
	return c, route, nil
}

// lockRoute takes the write lock of routeID and returns its release.
func (s *RouteService) lockRoute(routeID string) func() {
	s.mu.Lock()
	l, ok := s.routeLocks[routeID]
	if !ok {
		l = &sync.Mutex{}
		s.routeLocks[routeID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// claimable checks that every stop's package may join a new route and returns
// the route each existing package is currently assigned to.
func (s *RouteService) claimable(ctx context.Context, stops []domain.Stop) (map[string]string, error) {
	owners := make(map[string]string, len(stops))
	for _, stop := range stops {
		pkg, err := s.packages.Get(ctx, stop.ID)
		if errors.Is(err, domain.ErrPackageNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if pkg.Status != domain.StatusPendingPickup {
			return nil, fmt.Errorf("%w: package %s is %s", domain.ErrInvalidState, stop.ID, pkg.Status)
		}
		if pkg.RouteID == "" {
			continue
		}
		_, err = s.routes.Get(ctx, pkg.RouteID)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: package %s belongs to route %s", domain.ErrInvalidState, stop.ID, pkg.RouteID)
		case errors.Is(err, domain.ErrRouteNotFound):
			owners[stop.ID] = pkg.RouteID
		default:
			return nil, err
		}
	}
	return owners, nil
}

// discard removes a route whose plan could not be completed.
func (s *RouteService) discard(ctx context.Context, routeID string) {
	if err := s.routes.Delete(context.WithoutCancel(ctx), routeID); err != nil {
		s.log.Error().Err(err).Str("route_id", routeID).Msg("failed to discard incomplete route")
	}
}

// persist saves the coordinator's view of the route. A failed save is logged:
// package states are authoritative and Reconcile recovers the index on reload.
func (s *RouteService) persist(ctx context.Context, route domain.Route, c *RouteProgressCoordinator) domain.Route {
	r := snapshot(route, c)
	r.UpdatedAt = s.now()
	if err := s.routes.Save(ctx, r); err != nil {
		s.log.Warn().Err(err).Str("route_id", r.ID).Msg("failed to save route progress")
	}
	return r
}

func (s *RouteService) routeCompleted(routeID string, progress domain.RouteProgress) {
	s.log.Info().
		Str("route_id", routeID).
		Strs("completed_stop_ids", progress.CompletedStopIDs).
		Strs("failed_stop_ids", progress.FailedStopIDs).
		Msg("route completion signalled")
}

func snapshot(route domain.Route, c *RouteProgressCoordinator) domain.Route {
	route.State = c.State()
	if route.State != domain.RouteNotStarted {
		route.Progress = c.Progress()
	}
	return route
}

func uniqueStopIDs(stops []domain.Stop) error {
	seen := make(map[string]struct{}, len(stops))
	for _, st := range stops {
		if st.ID == "" {
			return fmt.Errorf("%w: stop without id", domain.ErrInvalidArgument)
		}
		if _, ok := seen[st.ID]; ok {
			return fmt.Errorf("%w: duplicate stop id %s", domain.ErrInvalidArgument, st.ID)
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}

// IsRetryable reports whether err is a transient condition the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrServiceUnavailable) ||
		errors.Is(err, domain.ErrPackageBusy) ||
		errors.Is(err, domain.ErrConcurrentUpdate)
}
