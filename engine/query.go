package engine

import (
	"context"
	"fmt"
	"glyco/engine/defs"
	"glyco/engine/pkg/aggregate"
	"glyco/engine/pkg/mg"
	"time"

	"go.uber.org/zap"
)

type QuerierStore interface {
	mg.DeviceStore
	mg.SnapshotStore
}

// Querier serves the read path: stored snapshots and the downsampled range
// view. Range queries bypass scoring entirely.
type Querier struct {
	Store QuerierStore

	Logger   *zap.Logger
	Location *time.Location
}

// DailyMetrics returns the stored snapshot for the date, or the
// empty-metrics sentinel when none exists.
func (q *Querier) DailyMetrics(ctx context.Context, userID, date string) (*defs.DailyMetrics, error) {
	return q.Store.ReadSnapshot(ctx, userID, date)
}

// RangeSummary merges every device's samples and aggregates them per UTC
// calendar day over [start, end).
func (q *Querier) RangeSummary(ctx context.Context, userID string, start, end int64) ([]aggregate.DaySummary, error) {
	drs, err := q.Store.ReadDevices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to read devices: %w", err)
	}

	maps := make([]defs.SampleMap, len(drs))
	for i, dr := range drs {
		maps[i] = dr.Samples
	}

	summaries := aggregate.Summarize(aggregate.Merge(maps...), start, end)

	q.Logger.Debug("computed range summary",
		zap.String("userID", userID),
		zap.Int64("start", start),
		zap.Int64("end", end),
		zap.Int("days", len(summaries)),
	)

	return summaries, nil
}
