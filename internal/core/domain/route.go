package domain

import (
	"fmt"
	"slices"
	"time"
)

// Coordinate represents a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Stop is one delivery destination within a route. Its ID is the package id.
// Leg fields and CumulativeETA are only meaningful inside a built Itinerary.
type Stop struct {
	ID                 string      `json:"id" bson:"id"`
	Address            string      `json:"address,omitempty" bson:"address,omitempty"`
	Coordinate         *Coordinate `json:"coordinate,omitempty" bson:"coordinate,omitempty"`
	Recipient          string      `json:"recipient,omitempty" bson:"recipient,omitempty"`
	LegDistanceMeters  float64     `json:"leg_distance_meters" bson:"leg_distance_meters"`
	LegDurationSeconds float64     `json:"leg_duration_seconds" bson:"leg_duration_seconds"`
	CumulativeETA      *time.Time  `json:"cumulative_eta,omitempty" bson:"cumulative_eta,omitempty"`
}

// Itinerary is an ordered, time-annotated sequence of stops from an origin.
// It is replaced wholesale whenever the order changes.
type Itinerary struct {
	Origin               Coordinate `json:"origin" bson:"origin"`
	Stops                []Stop     `json:"stops" bson:"stops"`
	TotalDistanceMeters  float64    `json:"total_distance_meters" bson:"total_distance_meters"`
	TotalDurationSeconds float64    `json:"total_duration_seconds" bson:"total_duration_seconds"`
	StartTime            time.Time  `json:"start_time" bson:"start_time"`
	Geometry             string     `json:"geometry,omitempty" bson:"geometry,omitempty"`
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (it Itinerary) Clone() Itinerary {
	out := it
	out.Stops = make([]Stop, len(it.Stops))
	for i, s := range it.Stops {
		out.Stops[i] = s.clone()
	}
	return out
}

func (s Stop) clone() Stop {
	if s.Coordinate != nil {
		c := *s.Coordinate
		s.Coordinate = &c
	}
	if s.CumulativeETA != nil {
		t := *s.CumulativeETA
		s.CumulativeETA = &t
	}
	return s
}

// Criterion selects how RouteOptimizer orders stops.
type Criterion string

const (
	CriterionEfficient        Criterion = "efficient"
	CriterionShortestDistance Criterion = "shortest_distance"
	CriterionFastestTime      Criterion = "fastest_time"
)

// Outcome is the result of visiting a stop.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
)

// Event maps a stop outcome to the package event it triggers.
func (o Outcome) Event() (PackageEvent, error) {
	switch o {
	case OutcomeDelivered:
		return EventArriveAndSucceed, nil
	case OutcomeFailed:
		return EventArriveAndFail, nil
	}
	return "", fmt.Errorf("%w: unknown outcome %q", ErrInvalidArgument, o)
}

// RouteState is the lifecycle of a driver's route.
type RouteState string

const (
	RouteNotStarted RouteState = "not_started"
	RouteInProgress RouteState = "in_progress"
	RouteCompleted  RouteState = "completed"
)

// RouteProgress is the driver's position within an itinerary.
// CurrentStopIndex is in [0, len(stops)] and equals len(stops) once complete.
// Failed stops advance the index but are only recorded in FailedStopIDs.
type RouteProgress struct {
	Itinerary        Itinerary `json:"itinerary" bson:"itinerary"`
	CurrentStopIndex int       `json:"current_stop_index" bson:"current_stop_index"`
	CompletedStopIDs []string  `json:"completed_stop_ids" bson:"completed_stop_ids"`
	FailedStopIDs    []string  `json:"failed_stop_ids" bson:"failed_stop_ids"`
}

// Completed reports whether stopID was delivered.
func (p RouteProgress) Completed(stopID string) bool {
	return slices.Contains(p.CompletedStopIDs, stopID)
}

// Clone returns a deep copy of the progress snapshot.
func (p RouteProgress) Clone() RouteProgress {
	return RouteProgress{
		Itinerary:        p.Itinerary.Clone(),
		CurrentStopIndex: p.CurrentStopIndex,
		CompletedStopIDs: slices.Clone(p.CompletedStopIDs),
		FailedStopIDs:    slices.Clone(p.FailedStopIDs),
	}
}

// Route is the persisted aggregate for one driver's route.
type Route struct {
	ID        string        `json:"id" bson:"_id"`
	DriverID  string        `json:"driver_id" bson:"driver_id"`
	State     RouteState    `json:"state" bson:"state"`
	Progress  RouteProgress `json:"progress" bson:"progress"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}
