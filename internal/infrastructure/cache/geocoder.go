package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

// GeocodeStore is the storage used by CachedGeocoder.
type GeocodeStore interface {
	Get(ctx context.Context, address string) (domain.Coordinate, bool, error)
	Put(ctx context.Context, address string, coord domain.Coordinate) error
}

// CachedGeocoder serves repeated addresses from a store and falls back to the
// wrapped geocoder. Store failures are logged and never fail a resolve; only
// successful resolutions are cached.
type CachedGeocoder struct {
	next  ports.Geocoder
	store GeocodeStore
	log   zerolog.Logger
}

var _ ports.Geocoder = (*CachedGeocoder)(nil)

func NewCachedGeocoder(next ports.Geocoder, store GeocodeStore, log zerolog.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, store: store, log: log}
}

func (g *CachedGeocoder) Resolve(ctx context.Context, address string) (domain.Coordinate, error) {
	if Normalize(address) == "" {
		return g.next.Resolve(ctx, address)
	}

	coord, ok, err := g.store.Get(ctx, address)
	switch {
	case err != nil:
		metrics.GeocodeCacheTotal.WithLabelValues("error").Inc()
		g.log.Warn().Err(err).Msg("geocode cache read failed")
	case ok:
		metrics.GeocodeCacheTotal.WithLabelValues("hit").Inc()
		return coord, nil
	default:
		metrics.GeocodeCacheTotal.WithLabelValues("miss").Inc()
	}

	coord, err = g.next.Resolve(ctx, address)
	if err != nil {
		return domain.Coordinate{}, err
	}

	if err := g.store.Put(ctx, address, coord); err != nil {
		g.log.Warn().Err(err).Msg("geocode cache write failed")
	}
	return coord, nil
}
