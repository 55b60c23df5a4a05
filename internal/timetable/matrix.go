// Package timetable reshapes a route's stop schedules into run-indexed
// matrices for tabular display. Routes interleave several circulations
// (runs) and several branch destinations at the same physical stops; the
// per-destination decomposition keeps each table dense instead of one sparse
// table full of empty (stop, run) cells.
package timetable

import (
	"math"
	"sort"

	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
)

// Matrix is a run-indexed timetable. StopSchedules maps stop id -> run ->
// schedule; a missing cell means no service for that (stop, run) pair.
type Matrix struct {
	Runs          []int                             `json:"runs"`
	StopSchedules map[int64]map[int]models.Schedule `json:"stop_schedules"`
}

// DestinationGroup is the directional timetable for one destination branch.
// Stops holds only the stops serving this destination, ordered by their
// minimum observed sequence number, with schedules filtered to the branch.
type DestinationGroup struct {
	Destination string        `json:"destination"`
	Stops       []models.Stop `json:"stops"`
	Matrix      Matrix        `json:"matrix"`
}

// BuildMatrix builds the all-destinations matrix: every stop gets a cell map,
// schedules without a run are ignored, and the run list is the strictly
// ascending set of distinct runs across all stops. When the same run appears
// twice at one stop the last schedule wins.
func BuildMatrix(stops []models.Stop) Matrix {
	runSet := make(map[int]struct{})
	stopSchedules := make(map[int64]map[int]models.Schedule, len(stops))

	for _, stop := range stops {
		cells := make(map[int]models.Schedule)
		for _, schedule := range stop.Schedules {
			if schedule.Run == nil {
				continue
			}
			runSet[*schedule.Run] = struct{}{}
			cells[*schedule.Run] = schedule
		}
		stopSchedules[stop.ID] = cells
	}

	return Matrix{Runs: sortedRuns(runSet), StopSchedules: stopSchedules}
}

// Runs returns the distinct runs across all schedules of the given stops,
// ascending. Used to populate the run picker on the report form.
func Runs(stops []models.Stop) []int {
	runSet := make(map[int]struct{})
	for _, stop := range stops {
		for _, schedule := range stop.Schedules {
			if schedule.Run != nil {
				runSet[*schedule.Run] = struct{}{}
			}
		}
	}
	return sortedRuns(runSet)
}

// BuildDestinationGroups groups schedules by destination and builds one
// matrix per destination. Only schedules carrying both a run and a
// destination participate; a schedule with a run but no destination shows up
// in the all-destinations matrix and in no group. Groups are ordered
// lexicographically by destination label.
func BuildDestinationGroups(stops []models.Stop) []DestinationGroup {
	type member struct {
		stop   models.Stop
		minSeq int
	}
	byDestination := make(map[string][]member)

	for _, stop := range stops {
		perDestination := make(map[string][]models.Schedule)
		for _, schedule := range stop.Schedules {
			if schedule.Run == nil || schedule.Destination == nil {
				continue
			}
			dest := *schedule.Destination
			perDestination[dest] = append(perDestination[dest], schedule)
		}

		for dest, schedules := range perDestination {
			// Stops with no sequence-bearing schedule for this
			// destination sort after every real sequence.
			minSeq := math.MaxInt
			for _, schedule := range schedules {
				if schedule.Sequence != nil && *schedule.Sequence < minSeq {
					minSeq = *schedule.Sequence
				}
			}
			scoped := stop
			scoped.Schedules = schedules
			byDestination[dest] = append(byDestination[dest], member{stop: scoped, minSeq: minSeq})
		}
	}

	destinations := make([]string, 0, len(byDestination))
	for dest := range byDestination {
		destinations = append(destinations, dest)
	}
	sort.Strings(destinations)

	groups := make([]DestinationGroup, 0, len(destinations))
	for _, dest := range destinations {
		members := byDestination[dest]
		// Members were appended in original stop order; the stable sort
		// keeps that order for equal sequence values.
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].minSeq < members[j].minSeq
		})

		groupStops := make([]models.Stop, 0, len(members))
		for _, m := range members {
			groupStops = append(groupStops, m.stop)
		}
		groups = append(groups, DestinationGroup{
			Destination: dest,
			Stops:       groupStops,
			Matrix:      BuildMatrix(groupStops),
		})
	}
	return groups
}

func sortedRuns(runSet map[int]struct{}) []int {
	runs := make([]int, 0, len(runSet))
	for run := range runSet {
		runs = append(runs, run)
	}
	sort.Ints(runs)
	return runs
}
