package models

// Coordinates is a WGS84 point as the upstream API serializes it.
type Coordinates struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180" validate:"min=-180,max=180"`
}

// Operator is a transit operator identifier. The upstream API uses the bare
// name as the partition key for every route/stop/report/track query.
type Operator = string

// Condition is a tag modifying a schedule entry (e.g. "school days only").
// Attached many-to-many to schedules.
type Condition struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// Schedule is one scheduled visit of a run at a stop. Time is a wall-clock
// HH:MM[:SS] string with no date component.
type Schedule struct {
	ID          int64       `json:"id"`
	Time        string      `json:"time" validate:"required"`
	Sequence    *int        `json:"sequence,omitempty"`
	Destination *string     `json:"destination,omitempty"`
	Conditions  []Condition `json:"conditions,omitempty"`
	RouteStopID *int64      `json:"route_stop_id,omitempty"`
	Run         *int        `json:"run,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

// Stop is a physical stop on a route.
type Stop struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name" validate:"required"`
	Type        string       `json:"type,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Schedules   []Schedule   `json:"schedules,omitempty"`
	Distance    *float64     `json:"distance,omitempty"`
}

// Endpoint is the departure or arrival point of a journey leg.
type Endpoint struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Time        string      `json:"time"`
	Distance    *float64    `json:"distance,omitempty"`
}

// Route type values accepted by the upstream API.
const (
	RouteTypeBus   = "bus"
	RouteTypeTrain = "train"
	RouteTypeTram  = "tram"
)

// Route is a transit line. In journey search results the same shape doubles
// as a leg, carrying Run, Departure, Arrival and TravelTime.
type Route struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name" validate:"required"`
	Operator     string     `json:"operator,omitempty"`
	Type         string     `json:"type,omitempty"`
	Stops        []Stop     `json:"stops,omitempty"`
	Schedules    []Schedule `json:"schedules,omitempty"`
	Destinations []string   `json:"destinations,omitempty"`
	Reports      []Report   `json:"reports,omitempty"`
	Run          *int       `json:"run,omitempty"`
	Departure    *Endpoint  `json:"departure,omitempty"`
	Arrival      *Endpoint  `json:"arrival,omitempty"`
	TravelTime   *int       `json:"travel_time,omitempty"`
}

// DisplayType returns the route type, defaulting to bus when absent.
func (r Route) DisplayType() string {
	if r.Type == "" {
		return RouteTypeBus
	}
	return r.Type
}

// Track is a single GPS sample tied to a route and run.
type Track struct {
	ID          int64        `json:"id"`
	CreatedAt   string       `json:"created_at" validate:"required"`
	RouteID     int64        `json:"route_id"`
	Run         int          `json:"run"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// CreateTrackInput is the payload for submitting a GPS sample for a route.
type CreateTrackInput struct {
	Run         int         `json:"run" binding:"required"`
	Coordinates Coordinates `json:"coordinates" binding:"required"`
}

// JourneySearchResult is one candidate multi-leg journey between two
// coordinates. Routes are ordered legs; Transfers = len(Routes) - 1.
type JourneySearchResult struct {
	Departure  Endpoint `json:"departure"`
	Arrival    Endpoint `json:"arrival"`
	TravelTime int      `json:"travel_time"`
	Transfers  int      `json:"transfers"`
	Routes     []Route  `json:"routes"`
}
