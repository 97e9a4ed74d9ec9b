package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

type packageTracker struct {
	repo     ports.PackageRepository
	locker   ports.Locker
	notifier ports.Notifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewPackageTracker returns a PackageTracker backed by repo. Transitions on the
// same package are serialized through locker.
func NewPackageTracker(
	repo ports.PackageRepository,
	locker ports.Locker,
	notifier ports.Notifier,
	log zerolog.Logger,
) ports.PackageTracker {
	return &packageTracker{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Get returns the current state of a package.
func (t *packageTracker) Get(ctx context.Context, packageID string) (*domain.PackageState, error) {
	if packageID == "" {
		return nil, fmt.Errorf("get package: %w: empty package id", domain.ErrInvalidArgument)
	}
	st, err := t.repo.Get(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	return st, nil
}

// Transition applies event to the package and persists the result before
// returning it. A notification intent is queued only after persistence succeeds.
func (t *packageTracker) Transition(ctx context.Context, packageID string, event domain.PackageEvent, reason string) (domain.PackageState, error) {
	if packageID == "" {
		return domain.PackageState{}, fmt.Errorf("transition: %w: empty package id", domain.ErrInvalidArgument)
	}
	if !event.Valid() {
		return domain.PackageState{}, fmt.Errorf("transition: %w: unknown event %q", domain.ErrInvalidArgument, event)
	}

	release, err := t.locker.Acquire(ctx, packageID)
	if err != nil {
		metrics.PackageTransitionErrorsTotal.WithLabelValues("busy").Inc()
		return domain.PackageState{}, fmt.Errorf("transition %s: %w", packageID, err)
	}
	defer release()

	current, err := t.repo.Get(ctx, packageID)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			metrics.PackageTransitionErrorsTotal.WithLabelValues("not_found").Inc()
		}
		return domain.PackageState{}, fmt.Errorf("transition %s: %w", packageID, err)
	}

	nextStatus, err := current.Status.Next(event)
	if err != nil {
		metrics.PackageTransitionErrorsTotal.WithLabelValues("illegal_transition").Inc()
		return domain.PackageState{}, fmt.Errorf("transition %s: %w", packageID, err)
	}

	now := t.now()
	entry := domain.StatusHistoryEntry{
		Status:    nextStatus,
		Event:     event,
		Timestamp: now,
	}

	next := *current
	next.Status = nextStatus
	next.LastTransitionAt = now
	next.History = append(slices.Clone(current.History), entry)
	if event == domain.EventArriveAndFail {
		next.FailureReason = reason
		entry.Reason = reason
		next.History[len(next.History)-1] = entry
	}

	if err := t.repo.UpdateStatus(ctx, current.Status, next, entry); err != nil {
		reasonLabel := "persist_failed"
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			reasonLabel = "conflict"
		}
		metrics.PackageTransitionErrorsTotal.WithLabelValues(reasonLabel).Inc()
		return domain.PackageState{}, fmt.Errorf("transition %s: persist: %w", packageID, err)
	}

	metrics.PackageTransitionsTotal.WithLabelValues(string(current.Status), string(nextStatus)).Inc()

	t.notifier.Notify(domain.NotificationIntent{
		PackageID:  packageID,
		NewStatus:  nextStatus,
		Recipient:  next.Recipient,
		OccurredAt: now,
	})

	t.log.Info().
		Str("package_id", packageID).
		Str("from", string(current.Status)).
		Str("to", string(nextStatus)).
		Str("event", string(event)).
		Msg("package transitioned")

	return next, nil
}
