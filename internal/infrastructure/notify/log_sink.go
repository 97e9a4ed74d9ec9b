package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

// Kind classifies a notification by the status it announces.
type Kind string

const (
	KindOutForDelivery Kind = "out_for_delivery"
	KindDelivered      Kind = "delivered"
	KindDeliveryFailed Kind = "delivery_failed"
	KindStatusChanged  Kind = "status_changed"
)

// KindFor maps a package status to the notification a recipient receives.
func KindFor(status domain.PackageStatus) Kind {
	switch status {
	case domain.StatusInTransit:
		return KindOutForDelivery
	case domain.StatusDelivered:
		return KindDelivered
	case domain.StatusFailedDelivery:
		return KindDeliveryFailed
	}
	return KindStatusChanged
}

// LogSink writes notifications as structured log lines. It stands in for a push
// or SMS transport.
type LogSink struct {
	log zerolog.Logger
}

var _ ports.NotificationSink = (*LogSink)(nil)

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(_ context.Context, in domain.NotificationIntent) error {
	s.log.Info().
		Str("kind", string(KindFor(in.NewStatus))).
		Str("package_id", in.PackageID).
		Str("recipient", in.Recipient).
		Str("status", string(in.NewStatus)).
		Time("occurred_at", in.OccurredAt).
		Msg("notification sent")
	return nil
}
