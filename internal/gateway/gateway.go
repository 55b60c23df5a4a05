// Package gateway builds endpoint paths and query strings for the external
// transit API. Pure formatting: no state, no I/O. Builders escape path
// segments (operator names may contain non-ASCII characters), omit query
// parameters that are unset and never emit a bare "?".
package gateway

import (
	"net/url"
	"strconv"
)

// DefaultBasePath is the same-origin base the dashboard proxies under.
const DefaultBasePath = "/api/v1"

// Client builds request paths against a fixed base path.
type Client struct {
	base string
}

// New returns a builder for the same-origin proxy base.
func New() *Client {
	return &Client{base: DefaultBasePath}
}

// NewWithBase returns a builder for an arbitrary base. The upstream client
// uses an empty base and joins the result onto the external URL.
func NewWithBase(base string) *Client {
	return &Client{base: base}
}

// Operators returns the path listing all operators.
func (c *Client) Operators() string {
	return c.base + "/operators"
}

// OperatorData returns the path for an operator's full route payload
// (routes with stops, schedules and reports embedded).
func (c *Client) OperatorData(name string) string {
	return c.base + "/operators/" + url.PathEscape(name)
}

// OperatorRoutes returns the path for an operator's routes.
func (c *Client) OperatorRoutes(name string) string {
	return c.OperatorData(name) + "/routes"
}

// OperatorReports returns the path for an operator's reports.
func (c *Client) OperatorReports(name string) string {
	return c.OperatorData(name) + "/reports"
}

// OperatorSchedules returns the path for an operator's schedules.
func (c *Client) OperatorSchedules(name string) string {
	return c.OperatorData(name) + "/schedules"
}

// OperatorStops returns the path for an operator's stops.
func (c *Client) OperatorStops(name string) string {
	return c.OperatorData(name) + "/stops"
}

// RoutesFilter narrows the journey search. Nil fields are not serialized.
type RoutesFilter struct {
	FromLatitude   *float64
	FromLongitude  *float64
	ToLatitude     *float64
	ToLongitude    *float64
	Radius         *int
	TransferRadius *int
	MaxTransfers   *int
}

// Routes returns the journey search path, with filter parameters when set.
func (c *Client) Routes(filter *RoutesFilter) string {
	path := c.base + "/routes"
	if filter == nil {
		return path
	}
	q := url.Values{}
	addFloat(q, "fromLatitude", filter.FromLatitude)
	addFloat(q, "fromLongitude", filter.FromLongitude)
	addFloat(q, "toLatitude", filter.ToLatitude)
	addFloat(q, "toLongitude", filter.ToLongitude)
	addInt(q, "radius", filter.Radius)
	addInt(q, "transferRadius", filter.TransferRadius)
	addInt(q, "maxTransfers", filter.MaxTransfers)
	return withQuery(path, q)
}

// RouteByID returns the path for a single route, optionally scoped to one
// destination branch.
func (c *Client) RouteByID(id int64, destination string) string {
	path := c.base + "/routes/" + strconv.FormatInt(id, 10)
	if destination == "" {
		return path
	}
	q := url.Values{}
	q.Set("destination", destination)
	return withQuery(path, q)
}

// RouteReports returns the path for listing or creating a route's reports.
func (c *Client) RouteReports(id int64) string {
	return c.base + "/routes/" + strconv.FormatInt(id, 10) + "/reports"
}

// RouteTracks returns the path for listing or creating a route's GPS tracks.
func (c *Client) RouteTracks(id int64) string {
	return c.base + "/routes/" + strconv.FormatInt(id, 10) + "/tracks"
}

// StopsFilter narrows the stop listing to a radius around a point.
type StopsFilter struct {
	Latitude  *float64
	Longitude *float64
	Radius    *int
}

// Stops returns the stop listing path, with filter parameters when set.
func (c *Client) Stops(filter *StopsFilter) string {
	path := c.base + "/stops"
	if filter == nil {
		return path
	}
	q := url.Values{}
	addFloat(q, "latitude", filter.Latitude)
	addFloat(q, "longitude", filter.Longitude)
	addInt(q, "radius", filter.Radius)
	return withQuery(path, q)
}

// StopByID returns the path for a single stop.
func (c *Client) StopByID(id int64) string {
	return c.base + "/stops/" + strconv.FormatInt(id, 10)
}

// Report returns the path addressing a single report (delete).
func (c *Client) Report(id int64) string {
	return c.base + "/reports/" + strconv.FormatInt(id, 10)
}

func addFloat(q url.Values, key string, v *float64) {
	if v != nil {
		q.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

func addInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
