// Package routing wraps the OpenRouteService HTTP API: truck-profile
// directions for trip planning and free-text geocoding for location
// search. It is the only blocking I/O the planning core performs, so
// every call carries a bounded timeout.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/openhaul/planner/backend/internal/domain"
)

// ErrProvider is returned for any routing-provider failure: network
// errors, non-200 responses, or an empty route list. The orchestration
// pipeline wraps it into a planning failure with the message preserved.
var ErrProvider = errors.New("routing provider error")

// ProfileDrivingHGV is the heavy-goods-vehicle routing profile used for
// all trip planning.
const ProfileDrivingHGV = "driving-hgv"

const (
	defaultBaseURL      = "https://api.openrouteservice.org"
	defaultTimeout      = 30 * time.Second
	searchTimeout       = 10 * time.Second
	searchRadiusMeters  = 5000.0
	maxGeocodeResults   = 10
	transientRetries    = 2
	transientRetryDelay = 250 * time.Millisecond
)

// Route is the provider's answer for an ordered set of waypoints.
type Route struct {
	Polyline           string
	TotalDistanceMiles float64
	TotalDurationHours float64
	// Segments has one entry per leg between consecutive waypoints,
	// in waypoint order.
	Segments []Leg
}

// Leg is the distance and duration between two consecutive waypoints.
type Leg struct {
	DistanceMiles float64
	DurationHours float64
}

// SearchResult is one normalized geocoding hit.
type SearchResult struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Address string        `json:"address"`
	Lat     float64       `json:"lat"`
	Lng     float64       `json:"lng"`
	Context RegionContext `json:"context"`
}

// RegionContext is the administrative breakdown of a geocoding hit.
type RegionContext struct {
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	County   string `json:"county,omitempty"`
	Locality string `json:"locality,omitempty"`
}

// Client talks to OpenRouteService. Construct with NewClient.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the provider base URL. Tests point this at an
// httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// directionsRequest is the JSON body for the directions endpoint.
type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
	Radiuses    []float64   `json:"radiuses"`
}

// directionsResponse covers the fields we read from the provider.
type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// PlanRoute requests a route through the given waypoints in order.
// Distances come back in miles (requested via units), durations in
// seconds and are converted to hours. Transient network failures are
// retried a small bounded number of times; HTTP error responses are not.
func (c *Client) PlanRoute(ctx context.Context, locations []domain.Location, profile string) (Route, error) {
	if c.apiKey == "" {
		return Route{}, fmt.Errorf("%w: OpenRouteService API key is not configured; set OPENROUTESERVICE_API_KEY", ErrProvider)
	}

	coordinates := make([][]float64, 0, len(locations))
	radiuses := make([]float64, 0, len(locations))
	for _, loc := range locations {
		// Provider order is [lng, lat].
		coordinates = append(coordinates, []float64{loc.Lng, loc.Lat})
		radiuses = append(radiuses, searchRadiusMeters)
	}

	body, err := json.Marshal(directionsRequest{
		Coordinates: coordinates,
		Units:       "mi",
		Radiuses:    radiuses,
	})
	if err != nil {
		return Route{}, fmt.Errorf("routing.Client.PlanRoute: marshal request: %w", err)
	}

	var parsed directionsResponse
	endpoint := c.baseURL + "/v2/directions/" + profile

	// Only network-level failures are retryable; a non-200 response is a
	// definitive provider answer.
	backoff := retry.WithMaxRetries(transientRetries, retry.NewExponential(transientRetryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: failed to contact OpenRouteService: %v", ErrProvider, err))
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: failed to read OpenRouteService response: %v", ErrProvider, err))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: OpenRouteService error (%d): %s", ErrProvider, resp.StatusCode, respBody)
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Errorf("%w: OpenRouteService returned invalid JSON", ErrProvider)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProvider) {
			return Route{}, err
		}
		return Route{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if len(parsed.Routes) == 0 {
		return Route{}, fmt.Errorf("%w: OpenRouteService returned no routes for the given coordinates", ErrProvider)
	}

	route := parsed.Routes[0]
	result := Route{
		Polyline:           route.Geometry,
		TotalDistanceMiles: route.Summary.Distance,
		TotalDurationHours: route.Summary.Duration / 3600.0,
	}
	for _, seg := range route.Segments {
		result.Segments = append(result.Segments, Leg{
			DistanceMiles: seg.Distance,
			DurationHours: seg.Duration / 3600.0,
		})
	}
	return result, nil
}

// geocodeResponse covers the fields we read from the geocoding endpoint.
type geocodeResponse struct {
	Features []struct {
		ID       string `json:"id"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			ID       string `json:"id"`
			GID      string `json:"gid"`
			Label    string `json:"label"`
			Name     string `json:"name"`
			Country  string `json:"country"`
			Region   string `json:"region"`
			County   string `json:"county"`
			Locality string `json:"locality"`
		} `json:"properties"`
	} `json:"features"`
}

// SearchLocations geocodes a free-text query, returning up to limit
// normalized results. An empty query returns no results without calling
// the provider. Independent of trip planning.
func (c *Client) SearchLocations(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return []SearchResult{}, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: OpenRouteService API key is not configured; set OPENROUTESERVICE_API_KEY", ErrProvider)
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxGeocodeResults {
		limit = maxGeocodeResults
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("text", query)
	params.Set("size", strconv.Itoa(limit))

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("routing.Client.SearchLocations: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to contact OpenRouteService geocoder: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read OpenRouteService geocoder response: %v", ErrProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: OpenRouteService geocoding error (%d): %s", ErrProvider, resp.StatusCode, respBody)
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: OpenRouteService geocoding returned invalid JSON", ErrProvider)
	}

	results := []SearchResult{}
	for _, feature := range parsed.Features {
		coords := feature.Geometry.Coordinates
		if len(coords) < 2 {
			continue
		}
		label := feature.Properties.Label
		if label == "" {
			label = feature.Properties.Name
		}
		if label == "" {
			label = query
		}
		id := feature.Properties.ID
		if id == "" {
			id = feature.Properties.GID
		}
		if id == "" {
			id = feature.ID
		}
		if id == "" {
			id = label
		}
		results = append(results, SearchResult{
			ID:      id,
			Label:   label,
			Address: label,
			Lat:     coords[1],
			Lng:     coords[0],
			Context: RegionContext{
				Country:  feature.Properties.Country,
				Region:   feature.Properties.Region,
				County:   feature.Properties.County,
				Locality: feature.Properties.Locality,
			},
		})
	}
	return results, nil
}
