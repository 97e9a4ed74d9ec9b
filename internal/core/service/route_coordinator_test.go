package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/core/domain"
)

func startedCoordinator(t *testing.T, tracker *stubTracker) *RouteProgressCoordinator {
	t.Helper()
	c := NewRouteProgressCoordinator("route-1", tracker, zerolog.Nop())
	if err := c.Start(threeStopItinerary()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return c
}

func TestCoordinator_Start_EmptyItinerary(t *testing.T) {
	c := NewRouteProgressCoordinator("route-1", &stubTracker{}, zerolog.Nop())

	if err := c.Start(domain.Itinerary{}); !errors.Is(err, domain.ErrEmptyItinerary) {
		t.Errorf("expected ErrEmptyItinerary, got: %v", err)
	}
	if c.State() != domain.RouteNotStarted {
		t.Errorf("expected not_started, got %s", c.State())
	}
}

func TestCoordinator_Start_Twice(t *testing.T) {
	c := startedCoordinator(t, &stubTracker{})

	if err := c.Start(threeStopItinerary()); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got: %v", err)
	}
}

func TestCoordinator_Advance_NotStarted(t *testing.T) {
	c := NewRouteProgressCoordinator("route-1", &stubTracker{}, zerolog.Nop())

	if _, err := c.Advance(context.Background(), domain.OutcomeDelivered, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got: %v", err)
	}
}

func TestCoordinator_Advance_CompletesOnLastStopOnly(t *testing.T) {
	tracker := &stubTracker{}
	c := startedCoordinator(t, tracker)

	completions := 0
	c.OnComplete(func(string, domain.RouteProgress) { completions++ })

	for i := 0; i < 3; i++ {
		res, err := c.Advance(context.Background(), domain.OutcomeDelivered, "")
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		last := i == 2
		if res.Completed != last {
			t.Errorf("advance %d: expected completed=%v", i, last)
		}
		if !last {
			if c.State() != domain.RouteInProgress {
				t.Errorf("advance %d: expected in_progress, got %s", i, c.State())
			}
			if res.NextStop == nil || res.NextStop.ID != threeStopItinerary().Stops[i+1].ID {
				t.Errorf("advance %d: unexpected next stop %+v", i, res.NextStop)
			}
		}
	}

	if c.State() != domain.RouteCompleted {
		t.Errorf("expected completed, got %s", c.State())
	}
	if completions != 1 {
		t.Errorf("expected exactly one completion signal, got %d", completions)
	}
	if got := c.Progress().CurrentStopIndex; got != 3 {
		t.Errorf("expected index 3, got %d", got)
	}
}

func TestCoordinator_Advance_LastStopThenCurrentStopIsRouteComplete(t *testing.T) {
	c := startedCoordinator(t, &stubTracker{})
	ctx := context.Background()

	_, _ = c.Advance(ctx, domain.OutcomeDelivered, "")
	_, _ = c.Advance(ctx, domain.OutcomeFailed, "gate closed")
	res, err := c.Advance(ctx, domain.OutcomeDelivered, "")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !res.Completed || c.State() != domain.RouteCompleted {
		t.Fatal("expected route completed")
	}

	p := c.Progress()
	if !p.Completed("9012") {
		t.Error("expected last stop in completed ids")
	}
	if p.Completed("5678") {
		t.Error("failed stop must not be in completed ids")
	}
	if len(p.FailedStopIDs) != 1 || p.FailedStopIDs[0] != "5678" {
		t.Errorf("expected failed ids [5678], got %v", p.FailedStopIDs)
	}

	if _, err := c.CurrentStop(); !errors.Is(err, domain.ErrRouteComplete) {
		t.Errorf("expected ErrRouteComplete, got: %v", err)
	}
	if _, err := c.Advance(ctx, domain.OutcomeDelivered, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState after completion, got: %v", err)
	}
}

func TestCoordinator_Advance_TrackerFailureKeepsIndex(t *testing.T) {
	tracker := &stubTracker{err: errors.New("persist failed")}
	c := startedCoordinator(t, tracker)

	if _, err := c.Advance(context.Background(), domain.OutcomeDelivered, ""); err == nil {
		t.Fatal("expected error")
	}
	p := c.Progress()
	if p.CurrentStopIndex != 0 || len(p.CompletedStopIDs) != 0 {
		t.Errorf("expected no progress, got %+v", p)
	}

	tracker.err = nil
	res, err := c.Advance(context.Background(), domain.OutcomeDelivered, "")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Package.PackageID != "1234" {
		t.Errorf("expected retry on the same stop, got %s", res.Package.PackageID)
	}
	if len(tracker.calls) != 2 || tracker.calls[0] != tracker.calls[1] {
		t.Errorf("expected two identical tracker calls, got %v", tracker.calls)
	}
}

func TestCoordinator_Advance_MapsOutcomeToEvent(t *testing.T) {
	tracker := &stubTracker{}
	c := startedCoordinator(t, tracker)

	_, _ = c.Advance(context.Background(), domain.OutcomeFailed, "no answer")
	if tracker.calls[0] != "1234:"+string(domain.EventArriveAndFail) {
		t.Errorf("unexpected call %s", tracker.calls[0])
	}

	if _, err := c.Advance(context.Background(), "lost", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got: %v", err)
	}
	if c.Progress().CurrentStopIndex != 1 {
		t.Error("invalid outcome must not advance")
	}
}

func TestCoordinator_CurrentStop(t *testing.T) {
	c := NewRouteProgressCoordinator("route-1", &stubTracker{}, zerolog.Nop())
	if _, err := c.CurrentStop(); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState before start, got: %v", err)
	}

	_ = c.Start(threeStopItinerary())
	s, err := c.CurrentStop()
	if err != nil || s.ID != "1234" {
		t.Errorf("expected first stop, got %+v err=%v", s, err)
	}
}

func TestCoordinator_ProgressIsSnapshot(t *testing.T) {
	c := startedCoordinator(t, &stubTracker{})

	p := c.Progress()
	p.Itinerary.Stops[0].ID = "tampered"
	p.CurrentStopIndex = 2

	s, _ := c.CurrentStop()
	if s.ID != "1234" {
		t.Error("progress snapshot leaked internal state")
	}
}

func TestCoordinator_Reconcile_SkipsTerminalPackages(t *testing.T) {
	tracker := &stubTracker{statuses: map[string]domain.PackageStatus{
		"1234": domain.StatusDelivered,
		"5678": domain.StatusFailedDelivery,
		"9012": domain.StatusInTransit,
	}}
	route := domain.Route{
		ID:    "route-1",
		State: domain.RouteInProgress,
		Progress: domain.RouteProgress{
			Itinerary:        threeStopItinerary(),
			CompletedStopIDs: []string{},
		},
	}
	c := RestoreRouteProgressCoordinator(route, tracker, zerolog.Nop())

	if err := c.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	p := c.Progress()
	if p.CurrentStopIndex != 2 {
		t.Errorf("expected index 2, got %d", p.CurrentStopIndex)
	}
	if !p.Completed("1234") || len(p.FailedStopIDs) != 1 {
		t.Errorf("unexpected progress %+v", p)
	}
	if len(tracker.calls) != 0 {
		t.Error("reconcile must not transition packages")
	}
}
