package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

type notificationService struct {
	sink  ports.NotificationSink
	dedup ports.NotificationDedup
	log   zerolog.Logger
}

// NewNotificationService returns a NotificationService that de-duplicates
// intents before handing them to sink.
func NewNotificationService(sink ports.NotificationSink, dedup ports.NotificationDedup, log zerolog.Logger) ports.NotificationService {
	return &notificationService{sink: sink, dedup: dedup, log: log}
}

// Deliver sends one intent. Dedup store failures are logged and do not stop
// delivery.
func (s *notificationService) Deliver(ctx context.Context, in domain.NotificationIntent) error {
	isDup, err := s.dedup.IsDuplicate(ctx, in.PackageID, in.NewStatus, in.OccurredAt)
	if err != nil {
		s.log.Warn().Err(err).Str("package_id", in.PackageID).Msg("dedup check failed, sending anyway")
	} else if isDup {
		metrics.NotificationsTotal.WithLabelValues("duplicate").Inc()
		s.log.Debug().Str("package_id", in.PackageID).Str("status", string(in.NewStatus)).Msg("duplicate notification skipped")
		return nil
	}

	if err := s.sink.Send(ctx, in); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("deliver notification: %w", err)
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()

	if err := s.dedup.Mark(ctx, in.PackageID, in.NewStatus, in.OccurredAt); err != nil {
		s.log.Warn().Err(err).Str("package_id", in.PackageID).Msg("failed to set dedup key")
	}
	return nil
}
