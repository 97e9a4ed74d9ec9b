package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

const (
	providerOSRM   = "osrm"
	defaultProfile = "driving"
	maxOSRMBody    = 8 << 20
)

// OSRMConfig configures the routing adapter.
type OSRMConfig struct {
	BaseURL   string
	Profile   string
	UserAgent string
	Timeout   time.Duration
}

// OSRMClient computes routes with an OSRM /route/v1 endpoint.
// It is safe for concurrent use and never retries.
type OSRMClient struct {
	session   *http.Client
	baseURL   string
	profile   string
	userAgent string
}

var _ ports.Router = (*OSRMClient)(nil)

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
		Legs     []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
	Waypoints []struct {
		Name     string    `json:"name"`
		Location []float64 `json:"location"`
	} `json:"waypoints"`
}

func NewOSRMClient(cfg OSRMConfig) (*OSRMClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("osrm: base url is empty")
	}
	profile := cfg.Profile
	if profile == "" {
		profile = defaultProfile
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OSRMClient{
		session:   &http.Client{Timeout: timeout},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		profile:   profile,
		userAgent: cfg.UserAgent,
	}, nil
}

// ComputeRoute requests the path through points in order. The result has one
// leg per consecutive pair of points.
func (o *OSRMClient) ComputeRoute(ctx context.Context, points []domain.Coordinate) (_ ports.RouteResult, err error) {
	defer func() {
		metrics.ProviderRequestsTotal.WithLabelValues(providerOSRM, outcome(err)).Inc()
	}()

	if len(points) < 2 {
		return ports.RouteResult{}, fmt.Errorf("compute route: %w: need at least 2 points, got %d", domain.ErrInvalidArgument, len(points))
	}

	req, err := newRequest(ctx, o.endpoint(points), o.userAgent)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("compute route: %w", err)
	}

	resp, err := do(ctx, o.session, providerOSRM, req)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) {
			// OSRM answers unroutable requests with 400 and a code in the body.
			if he.Code == http.StatusBadRequest && noRouteCode(he.Body) {
				return ports.RouteResult{}, fmt.Errorf("compute route: %w", domain.ErrNoRouteFound)
			}
			return ports.RouteResult{}, fmt.Errorf("compute route: %w: %v", domain.ErrServiceUnavailable, he)
		}
		return ports.RouteResult{}, fmt.Errorf("compute route: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOSRMBody)).Decode(&decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("compute route: %w: decode response: %v", domain.ErrServiceUnavailable, err)
	}

	switch decoded.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return ports.RouteResult{}, fmt.Errorf("compute route: %w: %s", domain.ErrNoRouteFound, decoded.Message)
	default:
		return ports.RouteResult{}, fmt.Errorf("compute route: %w: provider code %q", domain.ErrServiceUnavailable, decoded.Code)
	}
	if len(decoded.Routes) == 0 {
		return ports.RouteResult{}, fmt.Errorf("compute route: %w", domain.ErrNoRouteFound)
	}

	route := decoded.Routes[0]
	if len(route.Legs) != len(points)-1 {
		return ports.RouteResult{}, fmt.Errorf("compute route: %w: got %d legs for %d points",
			domain.ErrServiceUnavailable, len(route.Legs), len(points))
	}

	out := ports.RouteResult{
		TotalDistanceMeters:  route.Distance,
		TotalDurationSeconds: route.Duration,
		Geometry:             route.Geometry,
		Legs:                 make([]ports.Leg, len(route.Legs)),
	}
	for i, l := range route.Legs {
		if !nonNegative(l.Distance) || !nonNegative(l.Duration) {
			return ports.RouteResult{}, fmt.Errorf("compute route: %w: invalid leg %d", domain.ErrServiceUnavailable, i)
		}
		out.Legs[i] = ports.Leg{DistanceMeters: l.Distance, DurationSeconds: l.Duration}
	}
	return out, nil
}

// endpoint builds /route/v1/{profile}/{lng,lat;lng,lat...}. OSRM expects
// longitude first.
func (o *OSRMClient) endpoint(points []domain.Coordinate) string {
	pairs := make([]string, len(points))
	for i, p := range points {
		pairs[i] = strconv.FormatFloat(p.Lng, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
	}
	return fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline&steps=false",
		o.baseURL, o.profile, strings.Join(pairs, ";"))
}

func noRouteCode(body string) bool {
	var r struct {
		Code string `json:"code"`
	}
	if json.Unmarshal([]byte(body), &r) != nil {
		return false
	}
	return r.Code == "NoRoute" || r.Code == "NoSegment"
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
