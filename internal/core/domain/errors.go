package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by the geocoder when an address has no match.
	ErrNotFound = errors.New("address not found")
	// ErrNoRouteFound is returned by the router when the points cannot be connected.
	ErrNoRouteFound = errors.New("no route found")
	// ErrServiceUnavailable covers transport failures, timeouts and non-2xx
	// provider answers. Callers may retry with backoff.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrStopUnresolved marks a build that failed because a stop could not be geocoded.
	ErrStopUnresolved = errors.New("stop unresolved")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrInvalidState      = errors.New("invalid route state")
	ErrEmptyItinerary    = errors.New("itinerary has no stops")
	ErrRouteComplete     = errors.New("route complete")
	ErrInvalidArgument   = errors.New("invalid argument")

	ErrPackageNotFound = errors.New("package not found")
	ErrRouteNotFound   = errors.New("route not found")
	// ErrPackageBusy is returned when another transition holds the package lock.
	ErrPackageBusy = errors.New("package is being updated")
	// ErrConcurrentUpdate is returned when the stored status changed between
	// read and write.
	ErrConcurrentUpdate = errors.New("package status changed concurrently")
	// ErrForbidden is returned when a driver acts on a route assigned to someone else.
	ErrForbidden = errors.New("access forbidden")
)

// StopUnresolvedError carries the id of the stop whose address could not be
// resolved, together with the geocoder error.
type StopUnresolvedError struct {
	StopID string
	Err    error
}

func (e *StopUnresolvedError) Error() string {
	return fmt.Sprintf("stop %s unresolved: %v", e.StopID, e.Err)
}

// Is lets errors.Is(err, ErrStopUnresolved) match.
func (e *StopUnresolvedError) Is(target error) bool {
	return target == ErrStopUnresolved
}

func (e *StopUnresolvedError) Unwrap() error {
	return e.Err
}
