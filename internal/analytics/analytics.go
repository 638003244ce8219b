// Package analytics implements the query engine (component F): daily
// active users, top event types, and cohort retention, each scoped to
// a half-open calendar-date interval.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
)

// DB is the capability contract the engine depends on.
type DB interface {
	Get(ctx context.Context) *gorm.DB
}

// Engine runs analytics queries against the event store.
type Engine struct {
	db DB
}

// New wraps a relational connection.
func New(db DB) *Engine {
	return &Engine{db: db}
}

// DAUPoint is one day's distinct active-user count.
type DAUPoint struct {
	Date        string `json:"date"`
	ActiveUsers int64  `json:"active_users"`
}

// TopEvent is one event type's row count within the queried interval.
type TopEvent struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// RetentionCohort reports a cohort and its retained counts per window.
type RetentionCohort struct {
	CohortStart    string
	Window0        int
	Windows        map[int]int
	RetentionRates map[int]float64
}

// MarshalJSON flattens Windows and RetentionRates into window_k /
// retention_rate_k keys (k = 1..len(Windows)), matching the wire shape
// spec §4.F and the original RetentionCohort model expose as named
// fields rather than a nested map.
func (c RetentionCohort) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2+2*len(c.Windows))
	out["cohort_start"] = c.CohortStart
	out["window_0"] = c.Window0
	for w, v := range c.Windows {
		out[fmt.Sprintf("window_%d", w)] = v
	}
	for w, v := range c.RetentionRates {
		out[fmt.Sprintf("retention_rate_%d", w)] = v
	}
	return json.Marshal(out)
}

// dateOnly truncates a time to UTC calendar-date granularity, matching
// the store's date-only grouping semantics.
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// dayExpr returns the dialect-specific SQL expression that formats
// occurred_at as a YYYY-MM-DD string. SQLite's DATE() and Postgres'
// DATE() diverge in what database/sql can scan: SQLite's is untyped
// TEXT (fine to scan into a string either way), but Postgres' DATE()
// returns a native date type that GORM's default scanner maps onto
// time.Time, not string — so both branches format explicitly to text
// up front rather than relying on either driver's implicit scan type.
func dayExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-%d', occurred_at)"
	}
	return "TO_CHAR(occurred_at, 'YYYY-MM-DD')"
}

// DAU groups by the calendar date of occurred_at across [from, to+1day)
// and counts distinct user_ids per day, ascending.
func (e *Engine) DAU(ctx context.Context, from, to time.Time) ([]DAUPoint, error) {
	if from.After(to) {
		return nil, apperrors.InvalidArgument("from must not be after to", nil)
	}

	fromDate := dateOnly(from)
	toExclusive := dateOnly(to).Add(24 * time.Hour)

	gormDB := e.db.Get(ctx)
	day := dayExpr(gormDB)

	type row struct {
		Date        string
		ActiveUsers int64
	}
	var rows []row

	err := gormDB.Raw(fmt.Sprintf(`
		SELECT %s AS date, COUNT(DISTINCT user_id) AS active_users
		FROM events
		WHERE occurred_at >= ? AND occurred_at < ?
		GROUP BY date
		ORDER BY date ASC
	`, day), fromDate, toExclusive).Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("failed to query dau", err)
	}

	points := make([]DAUPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, DAUPoint{Date: r.Date, ActiveUsers: r.ActiveUsers})
	}
	return points, nil
}

// TopEvents groups by event_type across [from, to+1day), ordered by
// count descending, limited to limit (1-100).
func (e *Engine) TopEvents(ctx context.Context, from, to time.Time, limit int) ([]TopEvent, error) {
	if from.After(to) {
		return nil, apperrors.InvalidArgument("from must not be after to", nil)
	}
	if limit < 1 || limit > 100 {
		return nil, apperrors.InvalidArgument("limit must be between 1 and 100", nil)
	}

	fromDate := dateOnly(from)
	toExclusive := dateOnly(to).Add(24 * time.Hour)

	var rows []TopEvent
	err := e.db.Get(ctx).Raw(`
		SELECT event_type, COUNT(*) AS count
		FROM events
		WHERE occurred_at >= ? AND occurred_at < ?
		GROUP BY event_type
		ORDER BY count DESC
		LIMIT ?
	`, fromDate, toExclusive, limit).Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("failed to query top events", err)
	}
	return rows, nil
}

// Retention computes one cohort starting at start and its retention
// across windows windows of the given kind (daily = 1 day, weekly = 7
// days). An empty cohort returns a nil slice.
func (e *Engine) Retention(ctx context.Context, start time.Time, windows int, kind string) ([]RetentionCohort, error) {
	if windows < 1 || windows > 10 {
		return nil, apperrors.InvalidArgument("windows must be between 1 and 10", nil)
	}

	step := 24 * time.Hour
	if kind == "weekly" {
		step = 7 * 24 * time.Hour
	}

	startDate := dateOnly(start)
	endOfStart := startDate.Add(24 * time.Hour)

	var cohortUsers []string
	err := e.db.Get(ctx).Raw(`
		SELECT DISTINCT user_id FROM events
		WHERE occurred_at >= ? AND occurred_at < ?
	`, startDate, endOfStart).Scan(&cohortUsers).Error
	if err != nil {
		return nil, apperrors.Internal("failed to query cohort", err)
	}
	if len(cohortUsers) == 0 {
		return nil, nil
	}

	cohort := RetentionCohort{
		CohortStart:    startDate.Format("2006-01-02"),
		Window0:        len(cohortUsers),
		Windows:        make(map[int]int, windows),
		RetentionRates: make(map[int]float64, windows),
	}

	for w := 1; w <= windows; w++ {
		windowStart := startDate.Add(time.Duration(w) * step)
		windowEnd := windowStart.Add(24 * time.Hour)

		var retained int64
		err := e.db.Get(ctx).Raw(`
			SELECT COUNT(DISTINCT user_id) FROM events
			WHERE occurred_at >= ? AND occurred_at < ? AND user_id IN ?
		`, windowStart, windowEnd, cohortUsers).Scan(&retained).Error
		if err != nil {
			return nil, apperrors.Internal("failed to query retention window", err)
		}

		cohort.Windows[w] = int(retained)
		cohort.RetentionRates[w] = round2(float64(retained) / float64(len(cohortUsers)) * 100)
	}

	return []RetentionCohort{cohort}, nil
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
