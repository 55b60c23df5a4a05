package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
	"github.com/jakdoczlapie/transit-admin-backend/internal/selection"
)

// trackFanout caps concurrent per-route requests against the upstream API.
const trackFanout = 8

// TransitSource is the slice of the upstream client the live tracker needs.
type TransitSource interface {
	OperatorData(ctx context.Context, name string) ([]models.Route, error)
	RouteTracks(ctx context.Context, id int64) ([]models.Track, error)
}

// LivePosition is the newest GPS sample of one vehicle, identified by its
// route and run.
type LivePosition struct {
	RouteID     int64               `json:"route_id"`
	RouteName   string              `json:"route_name"`
	Operator    string              `json:"operator"`
	Run         int                 `json:"run"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
	CreatedAt   string              `json:"created_at"`
}

// LiveReport is a rider report flattened out of its route, annotated with
// the route context and a display severity.
type LiveReport struct {
	ID          int64               `json:"id"`
	RouteID     int64               `json:"route_id"`
	RouteName   string              `json:"route_name"`
	Operator    string              `json:"operator"`
	Run         *int                `json:"run,omitempty"`
	Type        string              `json:"type"`
	Severity    models.Severity     `json:"severity"`
	Description *string             `json:"description,omitempty"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
	CreatedAt   string              `json:"created_at"`
}

// TrackSnapshot is the tracking view payload for one selection of operators.
type TrackSnapshot struct {
	Operators []string       `json:"operators"`
	Positions []LivePosition `json:"positions"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ReportSnapshot is the live report feed for one selection of operators.
// Reports are ordered newest first.
type ReportSnapshot struct {
	Operators []string     `json:"operators"`
	Reports   []LiveReport `json:"reports"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// LiveTracker polls the upstream API for the comparison operators' vehicle
// positions and reports, keeping an in-memory snapshot the live endpoints
// serve. A selection change triggers an immediate refresh.
type LiveTracker struct {
	source TransitSource
	store  *selection.Store
	logger *logrus.Logger

	trackInterval  time.Duration
	reportInterval time.Duration

	mu      sync.RWMutex
	tracks  TrackSnapshot
	reports ReportSnapshot

	// Per-feed in-flight guards: a slow upstream must not stack refreshes.
	trackBusy  atomic.Bool
	reportBusy atomic.Bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewLiveTracker creates a tracker polling at the given intervals.
func NewLiveTracker(source TransitSource, store *selection.Store, logger *logrus.Logger, trackInterval, reportInterval time.Duration) *LiveTracker {
	return &LiveTracker{
		source:         source,
		store:          store,
		logger:         logger,
		trackInterval:  trackInterval,
		reportInterval: reportInterval,
		stopCh:         make(chan struct{}),
	}
}

// Start begins polling and subscribes to selection changes.
func (t *LiveTracker) Start() {
	t.store.Subscribe(func(selection.State) {
		go t.RefreshTracks(context.Background())
		go t.RefreshReports(context.Background())
	})

	t.wg.Add(2)
	go t.loop(t.trackInterval, t.RefreshTracks)
	go t.loop(t.reportInterval, t.RefreshReports)

	go t.RefreshTracks(context.Background())
	go t.RefreshReports(context.Background())

	t.logger.WithFields(logrus.Fields{
		"track_interval":  t.trackInterval,
		"report_interval": t.reportInterval,
	}).Info("Live tracker started")
}

// Stop halts the polling loops. In-flight refreshes finish on their own.
func (t *LiveTracker) Stop() {
	close(t.stopCh)
	t.wg.Wait()
	t.logger.Info("Live tracker stopped")
}

func (t *LiveTracker) loop(interval time.Duration, refresh func(context.Context)) {
	defer t.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refresh(context.Background())
		case <-t.stopCh:
			return
		}
	}
}

// Tracks returns the latest tracking snapshot.
func (t *LiveTracker) Tracks() TrackSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracks
}

// Reports returns the latest report snapshot.
func (t *LiveTracker) Reports() ReportSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reports
}

// RefreshTracks rebuilds the tracking snapshot for the current comparison
// operators. Skips when a refresh is already running; drops the result when
// the selection changed underneath it.
func (t *LiveTracker) RefreshTracks(ctx context.Context) {
	if !t.trackBusy.CompareAndSwap(false, true) {
		return
	}
	defer t.trackBusy.Store(false)

	operators := t.store.State().Comparison
	key := selectionKey(operators)

	positions := t.collectPositions(ctx, operators)

	if selectionKey(t.store.State().Comparison) != key {
		return
	}

	t.mu.Lock()
	t.tracks = TrackSnapshot{Operators: operators, Positions: positions, UpdatedAt: time.Now()}
	t.mu.Unlock()
}

// RefreshReports rebuilds the live report feed for the current comparison
// operators.
func (t *LiveTracker) RefreshReports(ctx context.Context) {
	if !t.reportBusy.CompareAndSwap(false, true) {
		return
	}
	defer t.reportBusy.Store(false)

	operators := t.store.State().Comparison
	key := selectionKey(operators)

	reports := t.collectReports(ctx, operators)

	if selectionKey(t.store.State().Comparison) != key {
		return
	}

	t.mu.Lock()
	t.reports = ReportSnapshot{Operators: operators, Reports: reports, UpdatedAt: time.Now()}
	t.mu.Unlock()
}

func (t *LiveTracker) collectPositions(ctx context.Context, operators []string) []LivePosition {
	positions := make([]LivePosition, 0)

	for _, operator := range operators {
		routes, err := t.source.OperatorData(ctx, operator)
		if err != nil {
			t.logger.WithFields(logrus.Fields{
				"operator": operator,
				"error":    err.Error(),
			}).Warn("Failed to fetch operator routes for tracking")
			continue
		}

		type routeTracks struct {
			route  models.Route
			tracks []models.Track
		}

		p := pool.NewWithResults[routeTracks]().WithMaxGoroutines(trackFanout)
		for _, route := range routes {
			route := route
			p.Go(func() routeTracks {
				tracks, err := t.source.RouteTracks(ctx, route.ID)
				if err != nil {
					t.logger.WithFields(logrus.Fields{
						"route_id": route.ID,
						"error":    err.Error(),
					}).Warn("Failed to fetch route tracks")
					return routeTracks{route: route}
				}
				return routeTracks{route: route, tracks: tracks}
			})
		}

		for _, result := range p.Wait() {
			for _, track := range latestByRun(result.tracks) {
				positions = append(positions, LivePosition{
					RouteID:     result.route.ID,
					RouteName:   result.route.Name,
					Operator:    operator,
					Run:         track.Run,
					Coordinates: track.Coordinates,
					CreatedAt:   track.CreatedAt,
				})
			}
		}
	}

	sortPositions(positions)
	return positions
}

func (t *LiveTracker) collectReports(ctx context.Context, operators []string) []LiveReport {
	reports := make([]LiveReport, 0)

	for _, operator := range operators {
		routes, err := t.source.OperatorData(ctx, operator)
		if err != nil {
			t.logger.WithFields(logrus.Fields{
				"operator": operator,
				"error":    err.Error(),
			}).Warn("Failed to fetch operator routes for reports")
			continue
		}
		reports = append(reports, flattenReports(operator, routes)...)
	}

	sortReportsNewestFirst(reports)
	return reports
}

// ReportFeed flattens one operator's embedded reports into a newest-first
// feed. The report handler serves this directly; the tracker uses the same
// pieces across all comparison operators.
func ReportFeed(operator string, routes []models.Route) []LiveReport {
	reports := flattenReports(operator, routes)
	sortReportsNewestFirst(reports)
	return reports
}

// latestByRun keeps one track per run: the newest sample. Timestamps are
// upstream ISO 8601 strings, so lexicographic comparison orders them.
func latestByRun(tracks []models.Track) []models.Track {
	latest := make(map[int]models.Track)
	for _, track := range tracks {
		current, ok := latest[track.Run]
		if !ok || track.CreatedAt > current.CreatedAt {
			latest[track.Run] = track
		}
	}

	runs := make([]int, 0, len(latest))
	for run := range latest {
		runs = append(runs, run)
	}
	sort.Ints(runs)

	out := make([]models.Track, 0, len(latest))
	for _, run := range runs {
		out = append(out, latest[run])
	}
	return out
}

// flattenReports pulls the reports embedded in each route up into a flat
// feed, filling in route context and severity.
func flattenReports(operator string, routes []models.Route) []LiveReport {
	out := make([]LiveReport, 0)
	for _, route := range routes {
		for _, report := range route.Reports {
			routeID := route.ID
			if report.RouteID != nil {
				routeID = *report.RouteID
			}
			out = append(out, LiveReport{
				ID:          report.ID,
				RouteID:     routeID,
				RouteName:   route.Name,
				Operator:    operator,
				Run:         report.Run,
				Type:        report.Type,
				Severity:    models.ReportSeverity(report.Type),
				Description: report.Description,
				Coordinates: report.Coordinates,
				CreatedAt:   report.CreatedAt,
			})
		}
	}
	return out
}

func sortReportsNewestFirst(reports []LiveReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt > reports[j].CreatedAt
	})
}

func sortPositions(positions []LivePosition) {
	sort.SliceStable(positions, func(i, j int) bool {
		if positions[i].RouteID != positions[j].RouteID {
			return positions[i].RouteID < positions[j].RouteID
		}
		return positions[i].Run < positions[j].Run
	})
}

func selectionKey(operators []string) string {
	return strings.Join(operators, "|")
}
