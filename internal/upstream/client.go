// Package upstream is the typed client for the external transit API. All
// aggregation endpoints read through it; the raw proxy bypasses it on
// purpose and relays bodies untouched.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakdoczlapie/transit-admin-backend/internal/gateway"
	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
)

// ErrNotFound is returned when the upstream API answers 404 for an entity
// lookup.
var ErrNotFound = errors.New("upstream: not found")

// StatusError carries an upstream non-2xx response so handlers can surface
// the status and body verbatim instead of collapsing it into a 500.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Journey search widening. When a search with an explicit radius comes back
// empty, the radius grows in 500 m steps until results appear or the cap is
// reached.
const (
	DefaultSearchRadius = 1000
	MaxSearchRadius     = 25000
	SearchRadiusStep    = 500
)

// Client talks to the external transit API over HTTP.
type Client struct {
	baseURL  string
	client   *http.Client
	paths    *gateway.Client
	validate *validator.Validate
}

// New creates a client for the given base URL (including the /api/v1
// suffix) with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		paths:    gateway.NewWithBase(""),
		validate: models.NewValidator(),
	}
}

// Operators lists all operator names.
func (c *Client) Operators(ctx context.Context) ([]models.Operator, error) {
	var operators []models.Operator
	if err := c.getJSON(ctx, c.paths.Operators(), &operators); err != nil {
		return nil, err
	}
	return operators, nil
}

// OperatorData fetches an operator's routes with stops, schedules and
// reports embedded.
func (c *Client) OperatorData(ctx context.Context, name string) ([]models.Route, error) {
	var routes []models.Route
	if err := c.getJSON(ctx, c.paths.OperatorData(name), &routes); err != nil {
		return nil, err
	}
	for i := range routes {
		if err := c.validate.Struct(routes[i]); err != nil {
			return nil, fmt.Errorf("invalid route in operator %s payload: %w", name, err)
		}
	}
	return routes, nil
}

// RouteByID fetches a single route, optionally scoped to one destination
// branch. Returns ErrNotFound on 404.
func (c *Client) RouteByID(ctx context.Context, id int64, destination string) (*models.Route, error) {
	var route models.Route
	if err := c.getJSON(ctx, c.paths.RouteByID(id, destination), &route); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(route); err != nil {
		return nil, fmt.Errorf("invalid route %d payload: %w", id, err)
	}
	return &route, nil
}

// RouteReports lists the reports filed against a route.
func (c *Client) RouteReports(ctx context.Context, id int64) ([]models.Report, error) {
	var reports []models.Report
	if err := c.getJSON(ctx, c.paths.RouteReports(id), &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// RouteTracks lists the GPS samples recorded for a route.
func (c *Client) RouteTracks(ctx context.Context, id int64) ([]models.Track, error) {
	var tracks []models.Track
	if err := c.getJSON(ctx, c.paths.RouteTracks(id), &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Stops lists stops, optionally limited to a radius around a point.
func (c *Client) Stops(ctx context.Context, filter *gateway.StopsFilter) ([]models.Stop, error) {
	var stops []models.Stop
	if err := c.getJSON(ctx, c.paths.Stops(filter), &stops); err != nil {
		return nil, err
	}
	return stops, nil
}

// SearchJourneys runs a journey search. When the filter carries a radius and
// the search comes back empty, the radius widens in steps until results
// appear or MaxSearchRadius is reached. The last (empty) result is returned
// when even the widest search finds nothing.
func (c *Client) SearchJourneys(ctx context.Context, filter gateway.RoutesFilter) ([]models.JourneySearchResult, error) {
	radius := DefaultSearchRadius
	if filter.Radius != nil {
		radius = *filter.Radius
	}

	for {
		filter.Radius = &radius
		var results []models.JourneySearchResult
		if err := c.getJSON(ctx, c.paths.Routes(&filter), &results); err != nil {
			return nil, err
		}
		if len(results) > 0 || radius >= MaxSearchRadius {
			return results, nil
		}
		radius += SearchRadiusStep
		if radius > MaxSearchRadius {
			radius = MaxSearchRadius
		}
	}
}

// CreateReport submits a report against a route, forwarding the caller's
// Authorization header. Upstream rejections come back as *StatusError.
func (c *Client) CreateReport(ctx context.Context, routeID int64, input models.CreateReportInput, authorization string) (*models.Report, error) {
	var report models.Report
	if err := c.postJSON(ctx, c.paths.RouteReports(routeID), input, authorization, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateTrack submits a GPS sample for a route.
func (c *Client) CreateTrack(ctx context.Context, routeID int64, input models.CreateTrackInput, authorization string) (*models.Track, error) {
	var track models.Track
	if err := c.postJSON(ctx, c.paths.RouteTracks(routeID), input, authorization, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// DeleteReport removes a report by ID, forwarding the caller's Authorization
// header. Returns ErrNotFound on 404.
func (c *Client) DeleteReport(ctx context.Context, id int64, authorization string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+c.paths.Report(id), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach upstream API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, authorization string, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach upstream API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}
