package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

var origin = domain.Coordinate{Lat: 19.4326, Lng: -99.1332}

func TestItineraryBuilder_Build_CumulativeETAs(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	router := &stubRouter{legs: []ports.Leg{
		{DistanceMeters: 5000, DurationSeconds: 300},
		{DistanceMeters: 1700, DurationSeconds: 450},
		{DistanceMeters: 3800, DurationSeconds: 200},
	}}
	b := NewItineraryBuilder(&stubGeocoder{}, router, 2, zerolog.Nop())

	it, err := b.Build(context.Background(), origin, threeStopItinerary().Stops, start)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	wantETA := []time.Time{
		start.Add(300 * time.Second),
		start.Add(750 * time.Second),
		start.Add(950 * time.Second),
	}
	for i, s := range it.Stops {
		if s.CumulativeETA == nil || !s.CumulativeETA.Equal(wantETA[i]) {
			t.Errorf("stop %d: expected ETA %v, got %v", i, wantETA[i], s.CumulativeETA)
		}
	}
	if it.TotalDurationSeconds != 950 {
		t.Errorf("expected total duration 950, got %v", it.TotalDurationSeconds)
	}
	if it.TotalDistanceMeters != 10500 {
		t.Errorf("expected total distance 10500, got %v", it.TotalDistanceMeters)
	}
	if it.Stops[1].LegDistanceMeters != 1700 || it.Stops[1].LegDurationSeconds != 450 {
		t.Errorf("legs not zipped in order: %+v", it.Stops[1])
	}
	if !it.StartTime.Equal(start) || it.Origin != origin {
		t.Errorf("unexpected origin/start %+v %v", it.Origin, it.StartTime)
	}
}

func TestItineraryBuilder_Build_TotalsMatchLegSums(t *testing.T) {
	router := &stubRouter{legs: []ports.Leg{
		{DistanceMeters: 1234.5, DurationSeconds: 61.5},
		{DistanceMeters: 10, DurationSeconds: 0},
		{DistanceMeters: 99.9, DurationSeconds: 7.25},
	}}
	b := NewItineraryBuilder(&stubGeocoder{}, router, 0, zerolog.Nop())
	start := time.Now()

	it, err := b.Build(context.Background(), origin, threeStopItinerary().Stops, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var dist, dur float64
	for i, s := range it.Stops {
		dist += s.LegDistanceMeters
		dur += s.LegDurationSeconds
		want := start.Add(time.Duration(dur * float64(time.Second)))
		if !s.CumulativeETA.Equal(want) {
			t.Errorf("stop %d: expected ETA %v, got %v", i, want, *s.CumulativeETA)
		}
	}
	if dist != it.TotalDistanceMeters || dur != it.TotalDurationSeconds {
		t.Errorf("totals %v/%v do not match sums %v/%v", it.TotalDistanceMeters, it.TotalDurationSeconds, dist, dur)
	}
}

func TestItineraryBuilder_Build_GeocodesMissingCoordinatesInOrder(t *testing.T) {
	geo := &stubGeocoder{byAddr: map[string]domain.Coordinate{
		"Av. Reforma 222":  {Lat: 19.427, Lng: -99.1676},
		"Insurgentes 1602": {Lat: 19.36, Lng: -99.18},
	}}
	router := &stubRouter{}
	b := NewItineraryBuilder(geo, router, 4, zerolog.Nop())

	stops := []domain.Stop{
		{ID: "a", Address: "Av. Reforma 222"},
		{ID: "b", Coordinate: coord(19.40, -99.15)},
		{ID: "c", Address: "Insurgentes 1602"},
	}

	it, err := b.Build(context.Background(), origin, stops, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(geo.calls) != 2 {
		t.Errorf("expected 2 geocode calls, got %d", len(geo.calls))
	}

	pts := router.points[0]
	want := []domain.Coordinate{origin, {Lat: 19.427, Lng: -99.1676}, {Lat: 19.40, Lng: -99.15}, {Lat: 19.36, Lng: -99.18}}
	if len(pts) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(pts))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d: expected %+v, got %+v", i, want[i], pts[i])
		}
	}
	if it.Stops[0].Coordinate == nil || *it.Stops[0].Coordinate != want[1] {
		t.Errorf("expected stop a to carry its resolved coordinate")
	}
	if stops[0].Coordinate != nil || stops[0].CumulativeETA != nil {
		t.Error("input stops must not be mutated")
	}
}

func TestItineraryBuilder_Build_UnresolvedStop(t *testing.T) {
	geo := &stubGeocoder{
		byAddr: map[string]domain.Coordinate{"Av. Reforma 222": {Lat: 19.4, Lng: -99.1}},
		errFor: map[string]error{"Calle Inexistente 0": domain.ErrNotFound},
	}
	router := &stubRouter{}
	b := NewItineraryBuilder(geo, router, 4, zerolog.Nop())

	stops := []domain.Stop{
		{ID: "1234", Address: "Av. Reforma 222"},
		{ID: "9012", Address: "Calle Inexistente 0"},
	}

	it, err := b.Build(context.Background(), origin, stops, time.Now())

	var su *domain.StopUnresolvedError
	if !errors.As(err, &su) {
		t.Fatalf("expected StopUnresolvedError, got: %v", err)
	}
	if su.StopID != "9012" {
		t.Errorf("expected stop 9012, got %s", su.StopID)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Error("expected the geocoder cause to be preserved")
	}
	if len(it.Stops) != 0 {
		t.Error("expected no itinerary on failure")
	}
	if len(router.points) != 0 {
		t.Error("router must not be called when geocoding fails")
	}
}

func TestItineraryBuilder_Build_GeocoderOutageIsStillUnresolvedAndRetryable(t *testing.T) {
	geo := &stubGeocoder{errFor: map[string]error{"x": domain.ErrServiceUnavailable}}
	b := NewItineraryBuilder(geo, &stubRouter{}, 1, zerolog.Nop())

	_, err := b.Build(context.Background(), origin, []domain.Stop{{ID: "s1", Address: "x"}}, time.Now())
	if !errors.Is(err, domain.ErrStopUnresolved) || !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected unresolved + unavailable, got: %v", err)
	}
	if !IsRetryable(err) {
		t.Error("expected outage to be retryable")
	}
}

func TestItineraryBuilder_Build_RoutingErrorPassesThrough(t *testing.T) {
	b := NewItineraryBuilder(&stubGeocoder{}, &stubRouter{err: domain.ErrNoRouteFound}, 1, zerolog.Nop())

	_, err := b.Build(context.Background(), origin, threeStopItinerary().Stops, time.Now())
	if !errors.Is(err, domain.ErrNoRouteFound) {
		t.Errorf("expected ErrNoRouteFound, got: %v", err)
	}
	if errors.Is(err, domain.ErrStopUnresolved) {
		t.Error("routing failures must not be reported as unresolved stops")
	}
}

func TestItineraryBuilder_Build_LegCountMismatch(t *testing.T) {
	router := &stubRouter{legs: []ports.Leg{{DistanceMeters: 1, DurationSeconds: 1}}}
	b := NewItineraryBuilder(&stubGeocoder{}, router, 1, zerolog.Nop())

	_, err := b.Build(context.Background(), origin, threeStopItinerary().Stops, time.Now())
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got: %v", err)
	}
}

func TestItineraryBuilder_Build_NoStops(t *testing.T) {
	b := NewItineraryBuilder(&stubGeocoder{}, &stubRouter{}, 1, zerolog.Nop())

	_, err := b.Build(context.Background(), origin, nil, time.Now())
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got: %v", err)
	}
}

func TestItineraryBuilder_Build_CancelledContext(t *testing.T) {
	geo := &stubGeocoder{}
	router := &stubRouter{}
	b := NewItineraryBuilder(geo, router, 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx, origin, []domain.Stop{{ID: "a", Address: "unknown"}}, time.Now())
	if err == nil {
		t.Fatal("expected an error for a cancelled build")
	}
	if len(router.points) != 0 {
		t.Error("router must not be called after cancellation")
	}
}
