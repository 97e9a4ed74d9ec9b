package service

import (
	"fmt"
	"slices"

	"github.com/99minutos/route-tracking/internal/core/domain"
)

// Reorder returns a new ordering of stops for the given criterion.
//
// ShortestDistance and FastestTime sort by the leg values captured in the most
// recent itinerary build. Leg cost depends on the previous stop, so those values
// are stale for the new order: rebuild the itinerary before using its ETAs.
// Equal keys keep their original relative order. Efficient keeps the order as is.
func Reorder(stops []domain.Stop, criterion domain.Criterion) ([]domain.Stop, error) {
	out := slices.Clone(stops)

	switch criterion {
	case domain.CriterionEfficient:
		return out, nil
	case domain.CriterionShortestDistance:
		slices.SortStableFunc(out, func(a, b domain.Stop) int {
			return compareFloat(a.LegDistanceMeters, b.LegDistanceMeters)
		})
		return out, nil
	case domain.CriterionFastestTime:
		slices.SortStableFunc(out, func(a, b domain.Stop) int {
			return compareFloat(a.LegDurationSeconds, b.LegDurationSeconds)
		})
		return out, nil
	default:
		return nil, fmt.Errorf("reorder: %w: unknown criterion %q", domain.ErrInvalidArgument, criterion)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
