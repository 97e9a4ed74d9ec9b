package handler

import (
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

func toPlanInput(r planRouteRequest) ports.PlanInput {
	in := ports.PlanInput{
		DriverID: r.DriverID,
		Origin:   domain.Coordinate{Lat: r.Origin.Lat, Lng: r.Origin.Lng},
		Stops:    make([]domain.Stop, 0, len(r.Stops)),
	}
	if r.StartTime != nil {
		in.StartTime = r.StartTime.UTC()
	}
	for _, s := range r.Stops {
		stop := domain.Stop{ID: s.PackageID, Address: s.Address, Recipient: s.Recipient}
		if s.Coordinate != nil {
			stop.Coordinate = &domain.Coordinate{Lat: s.Coordinate.Lat, Lng: s.Coordinate.Lng}
		}
		in.Stops = append(in.Stops, stop)
	}
	return in
}

func toStopResponse(s domain.Stop) stopResponse {
	resp := stopResponse{
		PackageID:          s.ID,
		Address:            s.Address,
		Recipient:          s.Recipient,
		LegDistanceMeters:  s.LegDistanceMeters,
		LegDurationSeconds: s.LegDurationSeconds,
		ETA:                s.CumulativeETA,
	}
	if s.Coordinate != nil {
		resp.Coordinate = &coordinateResponse{Lat: s.Coordinate.Lat, Lng: s.Coordinate.Lng}
	}
	return resp
}

func toStopResponses(stops []domain.Stop) []stopResponse {
	out := make([]stopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, toStopResponse(s))
	}
	return out
}

func toRouteResponse(r domain.Route) routeResponse {
	it := r.Progress.Itinerary
	self := "/v1/routes/" + r.ID
	return routeResponse{
		ID:               r.ID,
		DriverID:         r.DriverID,
		State:            string(r.State),
		CurrentStopIndex: r.Progress.CurrentStopIndex,
		CompletedStopIDs: nonNil(r.Progress.CompletedStopIDs),
		FailedStopIDs:    nonNil(r.Progress.FailedStopIDs),
		Itinerary: itineraryResponse{
			Origin:               coordinateResponse{Lat: it.Origin.Lat, Lng: it.Origin.Lng},
			Stops:                toStopResponses(it.Stops),
			TotalDistanceMeters:  it.TotalDistanceMeters,
			TotalDurationSeconds: it.TotalDurationSeconds,
			StartTime:            it.StartTime,
			Geometry:             it.Geometry,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Links: routeLinks{
			Self:        self,
			Packages:    self + "/packages",
			CurrentStop: self + "/current-stop",
		},
	}
}

func toPackageResponse(p domain.PackageState) packageResponse {
	history := make([]statusHistoryItemResponse, 0, len(p.History))
	for _, h := range p.History {
		history = append(history, statusHistoryItemResponse{
			Status:    string(h.Status),
			Event:     string(h.Event),
			Timestamp: h.Timestamp,
			Reason:    h.Reason,
		})
	}
	return packageResponse{
		PackageID:         p.PackageID,
		RouteID:           p.RouteID,
		Recipient:         p.Recipient,
		Status:            string(p.Status),
		LastTransitionAt:  p.LastTransitionAt,
		AssignedStopIndex: p.AssignedStopIndex,
		FailureReason:     p.FailureReason,
		History:           history,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
