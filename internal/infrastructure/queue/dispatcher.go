package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes notification intents to a fixed set of workers using
// consistent hashing on the package id, preserving per-package ordering.
type Dispatcher struct {
	workers []chan domain.NotificationIntent
	service ports.NotificationService
	log     zerolog.Logger
}

var _ ports.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.NotificationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.NotificationIntent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.NotificationIntent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify hands the intent to the worker responsible for its package. It never
// blocks: when the worker's buffer is full the intent is dropped and logged.
func (d *Dispatcher) Notify(intent domain.NotificationIntent) {
	idx := d.shardIndex(intent.PackageID)
	select {
	case d.workers[idx] <- intent:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("package_id", intent.PackageID).
			Str("status", string(intent.NewStatus)).
			Int("worker_id", idx).
			Msg("notification queue full, intent dropped")
	}
}

// shardIndex maps a package id deterministically to a worker index.
func (d *Dispatcher) shardIndex(packageID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(packageID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.NotificationIntent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case intent, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.service.Deliver(ctx, intent); err != nil {
				d.log.Error().Err(err).
					Str("package_id", intent.PackageID).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
