package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests.
// ---------------------------------------------------------------------------

type stubGeocoder struct {
	mu     sync.Mutex
	byAddr map[string]domain.Coordinate
	errFor map[string]error
	calls  []string
}

func (g *stubGeocoder) Resolve(ctx context.Context, address string) (domain.Coordinate, error) {
	g.mu.Lock()
	g.calls = append(g.calls, address)
	g.mu.Unlock()

	if err := g.errFor[address]; err != nil {
		return domain.Coordinate{}, err
	}
	if c, ok := g.byAddr[address]; ok {
		return c, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	return domain.Coordinate{}, domain.ErrNotFound
}

type stubRouter struct {
	legs   []ports.Leg
	err    error
	points [][]domain.Coordinate
}

func (r *stubRouter) ComputeRoute(_ context.Context, points []domain.Coordinate) (ports.RouteResult, error) {
	r.points = append(r.points, slices.Clone(points))
	if r.err != nil {
		return ports.RouteResult{}, r.err
	}
	legs := r.legs
	if legs == nil {
		legs = make([]ports.Leg, len(points)-1)
		for i := range legs {
			legs[i] = ports.Leg{DistanceMeters: 1000, DurationSeconds: 60}
		}
	}
	res := ports.RouteResult{Legs: legs, Geometry: "poly"}
	for _, l := range legs {
		res.TotalDistanceMeters += l.DistanceMeters
		res.TotalDurationSeconds += l.DurationSeconds
	}
	return res, nil
}

type stubPackageRepo struct {
	mu          sync.Mutex
	byID        map[string]domain.PackageState
	getErr      error
	updateErr   error
	assignErr   error
	registerErr map[string]error
	updates     []domain.StatusHistoryEntry
}

func newStubPackageRepo() *stubPackageRepo {
	return &stubPackageRepo{byID: make(map[string]domain.PackageState)}
}

func (r *stubPackageRepo) seed(id string, status domain.PackageStatus) {
	r.byID[id] = domain.PackageState{PackageID: id, Status: status, Recipient: "recipient " + id}
}

func (r *stubPackageRepo) Register(_ context.Context, st domain.PackageState, prevRouteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.registerErr[st.PackageID]; err != nil {
		return err
	}
	if existing, ok := r.byID[st.PackageID]; ok {
		if existing.RouteID != prevRouteID {
			return domain.ErrConcurrentUpdate
		}
		existing.RouteID = st.RouteID
		existing.Recipient = st.Recipient
		existing.AssignedStopIndex = st.AssignedStopIndex
		r.byID[st.PackageID] = existing
		return nil
	}
	r.byID[st.PackageID] = st
	return nil
}

func (r *stubPackageRepo) Get(_ context.Context, id string) (*domain.PackageState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	st, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	return &st, nil
}

func (r *stubPackageRepo) ListByRoute(_ context.Context, routeID string) ([]domain.PackageState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PackageState
	for _, st := range r.byID {
		if st.RouteID == routeID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *stubPackageRepo) UpdateStatus(_ context.Context, from domain.PackageStatus, next domain.PackageState, entry domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if r.byID[next.PackageID].Status != from {
		return domain.ErrConcurrentUpdate
	}
	r.byID[next.PackageID] = next
	r.updates = append(r.updates, entry)
	return nil
}

func (r *stubPackageRepo) AssignStop(_ context.Context, id, routeID string, idx int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assignErr != nil {
		return r.assignErr
	}
	st, ok := r.byID[id]
	if !ok {
		return domain.ErrPackageNotFound
	}
	st.RouteID = routeID
	st.AssignedStopIndex = &idx
	r.byID[id] = st
	return nil
}

func (r *stubPackageRepo) status(id string) domain.PackageStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Status
}

type stubRouteRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.Route
	saveErr error
	saves   int
	deleted []string
}

func newStubRouteRepo() *stubRouteRepo {
	return &stubRouteRepo{byID: make(map[string]domain.Route)}
}

func (r *stubRouteRepo) Save(_ context.Context, route domain.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	route.Progress = route.Progress.Clone()
	r.byID[route.ID] = route
	return nil
}

func (r *stubRouteRepo) Get(_ context.Context, id string) (*domain.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRouteNotFound
	}
	route.Progress = route.Progress.Clone()
	return &route, nil
}

func (r *stubRouteRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubRouteRepo) stored(id string) (domain.Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.byID[id]
	return route, ok
}

type stubLocker struct {
	mu       sync.Mutex
	err      error
	held     map[string]bool
	acquired int
	released int
}

func (l *stubLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return nil, domain.ErrPackageBusy
	}
	l.held[key] = true
	l.acquired++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
	}, nil
}

type stubNotifier struct {
	mu      sync.Mutex
	intents []domain.NotificationIntent
}

func (n *stubNotifier) Notify(in domain.NotificationIntent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = append(n.intents, in)
}

// stubTracker is used where the coordinator needs a tracker without storage.
type stubTracker struct {
	err      error
	statuses map[string]domain.PackageStatus
	calls    []string
}

func (t *stubTracker) Transition(_ context.Context, id string, ev domain.PackageEvent, _ string) (domain.PackageState, error) {
	t.calls = append(t.calls, id+":"+string(ev))
	if t.err != nil {
		return domain.PackageState{}, t.err
	}
	next := domain.StatusDelivered
	if ev == domain.EventArriveAndFail {
		next = domain.StatusFailedDelivery
	}
	if t.statuses != nil {
		t.statuses[id] = next
	}
	return domain.PackageState{PackageID: id, Status: next, LastTransitionAt: time.Now()}, nil
}

func (t *stubTracker) Get(_ context.Context, id string) (*domain.PackageState, error) {
	st, ok := t.statuses[id]
	if !ok {
		return nil, errors.New("unknown package")
	}
	return &domain.PackageState{PackageID: id, Status: st}, nil
}

func coord(lat, lng float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lng: lng}
}

func threeStopItinerary() domain.Itinerary {
	return domain.Itinerary{
		Origin: domain.Coordinate{Lat: 19.4326, Lng: -99.1332},
		Stops: []domain.Stop{
			{ID: "1234", Coordinate: coord(19.42, -99.16)},
			{ID: "5678", Coordinate: coord(19.40, -99.15)},
			{ID: "9012", Coordinate: coord(19.36, -99.15)},
		},
	}
}
