package ports

import (
	"context"
	"time"

	"github.com/99minutos/route-tracking/internal/core/domain"
)

// PackageRepository is the package CRUD backend.
type PackageRepository interface {
	// Register inserts the package as pending pickup, or moves it to
	// state.RouteID if it is still assigned to prevRouteID ("" for none).
	// The stored status is never overwritten. Returns domain.ErrConcurrentUpdate
	// when the package was assigned elsewhere in the meantime.
	Register(ctx context.Context, state domain.PackageState, prevRouteID string) error
	Get(ctx context.Context, packageID string) (*domain.PackageState, error)
	ListByRoute(ctx context.Context, routeID string) ([]domain.PackageState, error)
	// UpdateStatus applies next only if the stored status still equals from,
	// and appends entry to the history. Returns domain.ErrConcurrentUpdate otherwise.
	UpdateStatus(ctx context.Context, from domain.PackageStatus, next domain.PackageState, entry domain.StatusHistoryEntry) error
	AssignStop(ctx context.Context, packageID, routeID string, stopIndex int) error
}

// RouteRepository persists route snapshots.
type RouteRepository interface {
	Save(ctx context.Context, route domain.Route) error
	Get(ctx context.Context, routeID string) (*domain.Route, error)
	Delete(ctx context.Context, routeID string) error
}

// Locker provides mutual exclusion per key across processes.
type Locker interface {
	// Acquire returns domain.ErrPackageBusy when the key is already held.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Notifier accepts notification intents without blocking the caller.
type Notifier interface {
	Notify(intent domain.NotificationIntent)
}

// NotificationSink delivers a notification to the outside world.
type NotificationSink interface {
	Send(ctx context.Context, intent domain.NotificationIntent) error
}

// NotificationDedup remembers which intents were already delivered.
type NotificationDedup interface {
	IsDuplicate(ctx context.Context, packageID string, status domain.PackageStatus, ts time.Time) (bool, error)
	Mark(ctx context.Context, packageID string, status domain.PackageStatus, ts time.Time) error
}
