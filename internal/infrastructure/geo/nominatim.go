package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/99minutos/route-tracking/internal/api/metrics"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

const providerNominatim = "nominatim"

// NominatimConfig configures the geocoding adapter. UserAgent is mandatory per
// the provider's usage policy.
type NominatimConfig struct {
	BaseURL     string
	UserAgent   string
	CountryCode string
	Timeout     time.Duration
}

// NominatimClient resolves addresses with a Nominatim /search endpoint.
// It is safe for concurrent use and never retries.
type NominatimClient struct {
	session     *http.Client
	baseURL     string
	userAgent   string
	countryCode string
}

var _ ports.Geocoder = (*NominatimClient)(nil)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimClient(cfg NominatimConfig) (*NominatimClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("nominatim: base url is empty")
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, errors.New("nominatim: user agent is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &NominatimClient{
		session:     &http.Client{Timeout: timeout},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		countryCode: cfg.CountryCode,
	}, nil
}

// Resolve returns the best-ranked match for address.
func (n *NominatimClient) Resolve(ctx context.Context, address string) (_ domain.Coordinate, err error) {
	defer func() {
		metrics.ProviderRequestsTotal.WithLabelValues(providerNominatim, outcome(err)).Inc()
	}()

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinate{}, fmt.Errorf("geocode: %w: empty address", domain.ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	if n.countryCode != "" {
		q.Set("countrycodes", n.countryCode)
	}

	req, err := newRequest(ctx, n.baseURL+"/search?"+q.Encode(), n.userAgent)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode: %w", err)
	}

	resp, err := do(ctx, n.session, providerNominatim, req)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) {
			return domain.Coordinate{}, fmt.Errorf("geocode %q: %w: %v", address, domain.ErrServiceUnavailable, he)
		}
		return domain.Coordinate{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: %w: decode response: %v", address, domain.ErrServiceUnavailable, err)
	}
	if len(places) == 0 {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: %w", address, domain.ErrNotFound)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: %w: invalid coordinate %q,%q",
			address, domain.ErrServiceUnavailable, places[0].Lat, places[0].Lon)
	}

	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinate{}, fmt.Errorf("geocode %q: %w: coordinate out of range", address, domain.ErrServiceUnavailable)
	}
	return c, nil
}
