package mcp

import (
	"context"

	"github.com/meltforce/setlog/internal/analytics"
	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/models"
	"github.com/meltforce/setlog/internal/progress"
	"github.com/meltforce/setlog/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Local (in-process
// tracker) and HTTPClient (remote via REST API) both satisfy this interface.
type DataSource interface {
	Plans(ctx context.Context) (map[models.Day]catalog.DayPlan, error)
	State(ctx context.Context) (models.SessionState, error)
	Progress(ctx context.Context, day models.Day) (progress.Progress, error)
	AllProgress(ctx context.Context) ([]progress.Progress, error)
	History(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	Streak(ctx context.Context) (int, error)
	PersonalRecords(ctx context.Context) (map[string]float64, error)
	WeeklyVolume(ctx context.Context) ([]analytics.WeekBucket, error)
	Suggestions(ctx context.Context) ([]analytics.Suggestion, error)
	Summary(ctx context.Context) (analytics.Summary, error)
}

// Local adapts an in-process tracker to the DataSource interface.
type Local struct {
	tr *tracker.Tracker
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps a tracker for serving MCP directly from the data files.
func NewLocal(tr *tracker.Tracker) *Local {
	return &Local{tr: tr}
}

func (l *Local) Plans(context.Context) (map[models.Day]catalog.DayPlan, error) {
	return l.tr.Catalog().Plans(), nil
}

func (l *Local) State(context.Context) (models.SessionState, error) {
	return l.tr.State(), nil
}

func (l *Local) Progress(_ context.Context, day models.Day) (progress.Progress, error) {
	return l.tr.Progress(day)
}

func (l *Local) AllProgress(context.Context) ([]progress.Progress, error) {
	return l.tr.AllProgress(), nil
}

func (l *Local) History(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	return l.tr.History(limit), nil
}

func (l *Local) Streak(context.Context) (int, error) {
	return l.tr.Streak(), nil
}

func (l *Local) PersonalRecords(context.Context) (map[string]float64, error) {
	return l.tr.PersonalRecords(), nil
}

func (l *Local) WeeklyVolume(context.Context) ([]analytics.WeekBucket, error) {
	return l.tr.WeeklyVolume(), nil
}

func (l *Local) Suggestions(context.Context) ([]analytics.Suggestion, error) {
	return l.tr.Suggestions(), nil
}

func (l *Local) Summary(context.Context) (analytics.Summary, error) {
	return l.tr.Summary(), nil
}
