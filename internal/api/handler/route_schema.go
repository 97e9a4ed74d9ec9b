package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type coordinateRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type stopRequest struct {
	PackageID  string             `json:"package_id" validate:"required"`
	Address    string             `json:"address"    validate:"required_without=Coordinate"`
	Coordinate *coordinateRequest `json:"coordinate"`
	Recipient  string             `json:"recipient"`
}

type planRouteRequest struct {
	DriverID  string            `json:"driver_id"  validate:"required"`
	Origin    coordinateRequest `json:"origin"`
	StartTime *time.Time        `json:"start_time"`
	Stops     []stopRequest     `json:"stops"      validate:"required,min=1,max=200,dive"`
}

type reorderRequest struct {
	Criterion string `json:"criterion" validate:"required,oneof=efficient shortest_distance fastest_time"`
	Commit    bool   `json:"commit"`
}

type advanceRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=delivered failed"`
	Reason  string `json:"reason"`
}

type transitionRequest struct {
	Event  string `json:"event"  validate:"required,oneof=driver_departs arrive_and_succeed arrive_and_fail"`
	Reason string `json:"reason"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract does not follow domain changes.

type coordinateResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type stopResponse struct {
	PackageID          string              `json:"package_id"`
	Address            string              `json:"address,omitempty"`
	Coordinate         *coordinateResponse `json:"coordinate,omitempty"`
	Recipient          string              `json:"recipient,omitempty"`
	LegDistanceMeters  float64             `json:"leg_distance_meters"`
	LegDurationSeconds float64             `json:"leg_duration_seconds"`
	ETA                *time.Time          `json:"eta,omitempty"`
}

type itineraryResponse struct {
	Origin               coordinateResponse `json:"origin"`
	Stops                []stopResponse     `json:"stops"`
	TotalDistanceMeters  float64            `json:"total_distance_meters"`
	TotalDurationSeconds float64            `json:"total_duration_seconds"`
	StartTime            time.Time          `json:"start_time"`
	Geometry             string             `json:"geometry,omitempty"`
}

type routeLinks struct {
	Self        string `json:"self"`
	Packages    string `json:"packages"`
	CurrentStop string `json:"current_stop"`
}

type routeResponse struct {
	ID               string            `json:"id"`
	DriverID         string            `json:"driver_id"`
	State            string            `json:"state"`
	CurrentStopIndex int               `json:"current_stop_index"`
	CompletedStopIDs []string          `json:"completed_stop_ids"`
	FailedStopIDs    []string          `json:"failed_stop_ids"`
	Itinerary        itineraryResponse `json:"itinerary"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Links            routeLinks        `json:"_links"`
}

type statusHistoryItemResponse struct {
	Status    string    `json:"status"`
	Event     string    `json:"event,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

type packageResponse struct {
	PackageID         string                      `json:"package_id"`
	RouteID           string                      `json:"route_id,omitempty"`
	Recipient         string                      `json:"recipient,omitempty"`
	Status            string                      `json:"status"`
	LastTransitionAt  time.Time                   `json:"last_transition_at"`
	AssignedStopIndex *int                        `json:"assigned_stop_index,omitempty"`
	FailureReason     string                      `json:"failure_reason,omitempty"`
	History           []statusHistoryItemResponse `json:"history"`
}

type reorderResponse struct {
	Committed bool           `json:"committed"`
	Stops     []stopResponse `json:"stops"`
	Route     *routeResponse `json:"route,omitempty"`
}

type advanceResponse struct {
	Package   packageResponse `json:"package"`
	NextStop  *stopResponse   `json:"next_stop,omitempty"`
	Completed bool            `json:"completed"`
	Route     routeResponse   `json:"route"`
}
