// Package journey computes display times for multi-leg journey search
// results. The route search itself is the upstream API's job; this package
// only shifts the precomputed times by the known-delay heuristic.
package journey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
)

// DelayEstimateMinutes is the fixed offset applied to a leg that has a delay
// report. The magnitude is a placeholder and deliberately not read from the
// report content.
const DelayEstimateMinutes = 5

// FormatClock truncates a wall-clock string to HH:MM for display.
func FormatClock(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

// AddMinutes shifts an HH:MM[:SS] wall-clock string by the given number of
// minutes, wrapping at 24:00. Seconds are dropped; there is no date to carry
// the overflow into.
func AddMinutes(t string, minutes int) (string, error) {
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid clock time %q", t)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid clock time %q: %w", t, err)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("invalid clock time %q: %w", t, err)
	}

	total := hours*60 + mins + minutes
	total = ((total % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// PointTime is a named place with a display time.
type PointTime struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// StopTime is one intermediate stop of a leg with its display time. Time is
// empty when the stop carries no schedule on this leg.
type StopTime struct {
	Name string `json:"name"`
	Time string `json:"time,omitempty"`
}

// Leg is the presentational view of one route segment of a journey.
type Leg struct {
	Name         string     `json:"name"`
	Operator     string     `json:"operator,omitempty"`
	Type         string     `json:"type"`
	Run          *int       `json:"run,omitempty"`
	Delayed      bool       `json:"delayed"`
	DelayMinutes int        `json:"delay_minutes"`
	Departure    *PointTime `json:"departure,omitempty"`
	Arrival      *PointTime `json:"arrival,omitempty"`
	Stops        []StopTime `json:"stops,omitempty"`
}

// Option is one displayable journey with delay-adjusted leg times.
type Option struct {
	Departure  PointTime `json:"departure"`
	Arrival    PointTime `json:"arrival"`
	TravelTime int       `json:"travel_time"`
	Transfers  int       `json:"transfers"`
	Legs       []Leg     `json:"legs"`
}

// Present builds the display view of one search result. The underlying
// result is never mutated; delay shifting happens only on the copies here.
func Present(result models.JourneySearchResult) Option {
	option := Option{
		Departure:  PointTime{Name: result.Departure.Name, Time: FormatClock(result.Departure.Time)},
		Arrival:    PointTime{Name: result.Arrival.Name, Time: FormatClock(result.Arrival.Time)},
		TravelTime: result.TravelTime,
		Transfers:  result.Transfers,
		Legs:       make([]Leg, 0, len(result.Routes)),
	}
	for _, route := range result.Routes {
		option.Legs = append(option.Legs, presentLeg(route))
	}
	return option
}

// PresentAll presents every search result in order.
func PresentAll(results []models.JourneySearchResult) []Option {
	options := make([]Option, 0, len(results))
	for _, result := range results {
		options = append(options, Present(result))
	}
	return options
}

func presentLeg(route models.Route) Leg {
	delayMinutes := 0
	for _, report := range route.Reports {
		if report.Type == models.ReportTypeDelay {
			delayMinutes = DelayEstimateMinutes
			break
		}
	}

	leg := Leg{
		Name:         route.Name,
		Operator:     route.Operator,
		Type:         route.DisplayType(),
		Run:          route.Run,
		Delayed:      delayMinutes > 0,
		DelayMinutes: delayMinutes,
	}

	if route.Departure != nil {
		leg.Departure = &PointTime{Name: route.Departure.Name, Time: displayTime(route.Departure.Time, delayMinutes)}
	}
	if route.Arrival != nil {
		leg.Arrival = &PointTime{Name: route.Arrival.Name, Time: displayTime(route.Arrival.Time, delayMinutes)}
	}

	for _, stop := range route.Stops {
		st := StopTime{Name: stop.Name}
		if len(stop.Schedules) > 0 {
			st.Time = displayTime(stop.Schedules[0].Time, delayMinutes)
		}
		leg.Stops = append(leg.Stops, st)
	}
	return leg
}

func displayTime(t string, delayMinutes int) string {
	if delayMinutes == 0 {
		return FormatClock(t)
	}
	shifted, err := AddMinutes(t, delayMinutes)
	if err != nil {
		return FormatClock(t)
	}
	return shifted
}
