package domain

import (
	"fmt"
	"time"
)

// PackageStatus represents the delivery state of a single package.
type PackageStatus string

const (
	StatusPendingPickup  PackageStatus = "pending_pickup"
	StatusInTransit      PackageStatus = "in_transit"
	StatusDelivered      PackageStatus = "delivered"
	StatusFailedDelivery PackageStatus = "failed_delivery"
)

// PackageEvent is a driver action that moves a package between statuses.
type PackageEvent string

const (
	EventDriverDeparts    PackageEvent = "driver_departs"
	EventArriveAndSucceed PackageEvent = "arrive_and_succeed"
	EventArriveAndFail    PackageEvent = "arrive_and_fail"
)

// validTransitions is the complete package state machine. Statuses without an
// entry are terminal.
var validTransitions = map[PackageStatus]map[PackageEvent]PackageStatus{
	StatusPendingPickup: {
		EventDriverDeparts: StatusInTransit,
	},
	StatusInTransit: {
		EventArriveAndSucceed: StatusDelivered,
		EventArriveAndFail:    StatusFailedDelivery,
	},
}

// Valid reports whether s is one of the known statuses.
func (s PackageStatus) Valid() bool {
	switch s {
	case StatusPendingPickup, StatusInTransit, StatusDelivered, StatusFailedDelivery:
		return true
	}
	return false
}

// Terminal reports whether no event is accepted from s.
func (s PackageStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusFailedDelivery
}

// Next returns the status reached by applying event to s.
func (s PackageStatus) Next(event PackageEvent) (PackageStatus, error) {
	next, ok := validTransitions[s][event]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrIllegalTransition, event, s)
	}
	return next, nil
}

// Valid reports whether e is one of the known events.
func (e PackageEvent) Valid() bool {
	switch e {
	case EventDriverDeparts, EventArriveAndSucceed, EventArriveAndFail:
		return true
	}
	return false
}

// StatusHistoryEntry records a single status transition on a package.
type StatusHistoryEntry struct {
	Status    PackageStatus `json:"status" bson:"status"`
	Event     PackageEvent  `json:"event,omitempty" bson:"event,omitempty"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
	Reason    string        `json:"reason,omitempty" bson:"reason,omitempty"`
}

// PackageState is the tracked state of one package. Values are snapshots; the
// tracker produces a new one on every transition.
type PackageState struct {
	PackageID         string               `json:"package_id" bson:"_id"`
	RouteID           string               `json:"route_id,omitempty" bson:"route_id,omitempty"`
	Recipient         string               `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Status            PackageStatus        `json:"status" bson:"status"`
	LastTransitionAt  time.Time            `json:"last_transition_at" bson:"last_transition_at"`
	AssignedStopIndex *int                 `json:"assigned_stop_index" bson:"assigned_stop_index"`
	FailureReason     string               `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	History           []StatusHistoryEntry `json:"history,omitempty" bson:"history,omitempty"`
}

// NotificationIntent asks the notification sink to tell a recipient about a
// status change.
type NotificationIntent struct {
	PackageID  string        `json:"package_id"`
	NewStatus  PackageStatus `json:"new_status"`
	Recipient  string        `json:"recipient"`
	OccurredAt time.Time     `json:"occurred_at"`
}
