package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
)

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }

func schedule(id int64, time string, run *int, dest *string, seq *int) models.Schedule {
	return models.Schedule{ID: id, Time: time, Run: run, Destination: dest, Sequence: seq}
}

func TestBuildMatrixRunListDeterminism(t *testing.T) {
	// Runs arrive out of order and duplicated across stops; the derived
	// list must be strictly ascending with each run exactly once.
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{
			schedule(1, "10:00", intPtr(3), nil, nil),
			schedule(2, "08:00", intPtr(1), nil, nil),
		}},
		{ID: 2, Name: "B", Schedules: []models.Schedule{
			schedule(3, "09:00", intPtr(2), nil, nil),
			schedule(4, "08:10", intPtr(1), nil, nil),
			schedule(5, "11:00", nil, nil, nil), // no run, ignored
		}},
	}

	m := BuildMatrix(stops)
	assert.Equal(t, []int{1, 2, 3}, m.Runs)

	reversed := []models.Stop{stops[1], stops[0]}
	assert.Equal(t, m.Runs, BuildMatrix(reversed).Runs)
}

func TestBuildMatrixLastScheduleWinsOnDuplicateRun(t *testing.T) {
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{
			schedule(1, "08:00", intPtr(1), nil, nil),
			schedule(2, "08:05", intPtr(1), nil, nil),
		}},
	}

	m := BuildMatrix(stops)
	require.Contains(t, m.StopSchedules, int64(1))
	assert.Equal(t, int64(2), m.StopSchedules[1][1].ID)
	assert.Equal(t, []int{1}, m.Runs)
}

func TestBuildMatrixEmptyCells(t *testing.T) {
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{schedule(1, "08:00", intPtr(1), nil, nil)}},
		{ID: 2, Name: "B"},
	}

	m := BuildMatrix(stops)
	require.Contains(t, m.StopSchedules, int64(2))
	assert.Empty(t, m.StopSchedules[2], "stop without service still gets an entry")
}

func TestBuildMatrixIdempotent(t *testing.T) {
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{
			schedule(1, "08:00", intPtr(1), strPtr("X"), intPtr(1)),
			schedule(2, "09:00", intPtr(2), strPtr("Y"), intPtr(1)),
		}},
	}

	first := BuildMatrix(stops)
	second := BuildMatrix(stops)
	assert.Equal(t, first, second)

	firstGroups := BuildDestinationGroups(stops)
	secondGroups := BuildDestinationGroups(stops)
	assert.Equal(t, firstGroups, secondGroups)
}

func TestBuildDestinationGroupsCompleteness(t *testing.T) {
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{
			schedule(1, "08:00", intPtr(1), strPtr("X"), intPtr(1)),
			schedule(2, "09:00", intPtr(2), nil, nil),        // run without destination: no group
			schedule(3, "10:00", nil, strPtr("X"), intPtr(1)), // destination without run: no group
		}},
	}

	groups := BuildDestinationGroups(stops)
	require.Len(t, groups, 1)
	assert.Equal(t, "X", groups[0].Destination)
	assert.Equal(t, []int{1}, groups[0].Matrix.Runs)
	require.Len(t, groups[0].Stops, 1)
	require.Len(t, groups[0].Stops[0].Schedules, 1)
	assert.Equal(t, int64(1), groups[0].Stops[0].Schedules[0].ID)

	// The run-without-destination schedule still counts in the
	// all-destinations matrix.
	m := BuildMatrix(stops)
	assert.Equal(t, []int{1, 2}, m.Runs)
}

func TestBuildDestinationGroupsStopOrderingStability(t *testing.T) {
	// B and C have no sequence for destination X; their relative order
	// must match the original stop list.
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{schedule(1, "08:00", intPtr(1), strPtr("X"), intPtr(2))}},
		{ID: 2, Name: "B", Schedules: []models.Schedule{schedule(2, "08:10", intPtr(1), strPtr("X"), nil)}},
		{ID: 3, Name: "C", Schedules: []models.Schedule{schedule(3, "08:20", intPtr(1), strPtr("X"), nil)}},
		{ID: 4, Name: "D", Schedules: []models.Schedule{schedule(4, "07:50", intPtr(1), strPtr("X"), intPtr(1))}},
	}

	groups := BuildDestinationGroups(stops)
	require.Len(t, groups, 1)

	names := make([]string, 0, len(groups[0].Stops))
	for _, s := range groups[0].Stops {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"D", "A", "B", "C"}, names)
}

func TestBuildDestinationGroupsLexicographicOrder(t *testing.T) {
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{
			schedule(1, "08:00", intPtr(1), strPtr("Zabrze"), intPtr(1)),
			schedule(2, "09:00", intPtr(2), strPtr("Bytom"), intPtr(1)),
			schedule(3, "10:00", intPtr(3), strPtr("Gliwice"), intPtr(1)),
		}},
	}

	groups := BuildDestinationGroups(stops)
	require.Len(t, groups, 3)
	assert.Equal(t, "Bytom", groups[0].Destination)
	assert.Equal(t, "Gliwice", groups[1].Destination)
	assert.Equal(t, "Zabrze", groups[2].Destination)
}

func TestEndToEndScenario(t *testing.T) {
	// Route with stops A, B, C; two runs serving branches X and Y.
	stops := []models.Stop{
		{ID: 1, Name: "A", Schedules: []models.Schedule{
			schedule(1, "08:00", intPtr(1), strPtr("X"), intPtr(1)),
			schedule(3, "09:00", intPtr(2), strPtr("Y"), intPtr(1)),
		}},
		{ID: 2, Name: "B", Schedules: []models.Schedule{
			schedule(2, "08:10", intPtr(1), strPtr("X"), intPtr(2)),
		}},
		{ID: 3, Name: "C"},
	}

	m := BuildMatrix(stops)
	assert.Equal(t, []int{1, 2}, m.Runs)
	assert.Equal(t, "08:00", m.StopSchedules[1][1].Time)
	assert.Equal(t, "09:00", m.StopSchedules[1][2].Time)
	assert.Equal(t, "08:10", m.StopSchedules[2][1].Time)
	assert.Empty(t, m.StopSchedules[3])

	groups := BuildDestinationGroups(stops)
	require.Len(t, groups, 2)

	x := groups[0]
	assert.Equal(t, "X", x.Destination)
	assert.Equal(t, []int{1}, x.Matrix.Runs)
	require.Len(t, x.Stops, 2)
	assert.Equal(t, "A", x.Stops[0].Name)
	assert.Equal(t, "B", x.Stops[1].Name)

	y := groups[1]
	assert.Equal(t, "Y", y.Destination)
	assert.Equal(t, []int{2}, y.Matrix.Runs)
	require.Len(t, y.Stops, 1)
	assert.Equal(t, "A", y.Stops[0].Name)
}

func TestRuns(t *testing.T) {
	stops := []models.Stop{
		{ID: 1, Schedules: []models.Schedule{
			schedule(1, "08:00", intPtr(2), nil, nil),
			schedule(2, "09:00", nil, nil, nil),
		}},
		{ID: 2, Schedules: []models.Schedule{
			schedule(3, "08:10", intPtr(1), nil, nil),
			schedule(4, "10:00", intPtr(2), nil, nil),
		}},
	}

	assert.Equal(t, []int{1, 2}, Runs(stops))
	assert.Empty(t, Runs(nil))
}
