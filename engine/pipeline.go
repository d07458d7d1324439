package engine

import (
	"context"
	"fmt"
	"glyco/engine/defs"
	"glyco/engine/pkg/aggregate"
	"glyco/engine/pkg/events"
	"glyco/engine/pkg/mg"
	"glyco/engine/pkg/score"
	"glyco/engine/pkg/stats"
	"glyco/engine/pkg/window"
	"time"

	"go.uber.org/zap"
)

type PipelineStore interface {
	mg.DeviceStore
	mg.SnapshotStore
}

// Pipeline computes and persists one day's metrics for one user: windowing,
// statistics, event detection and composite scoring run in sequence, each
// stage consuming the previous stage's outputs.
type Pipeline struct {
	Store PipelineStore

	Logger   *zap.Logger
	Location *time.Location
}

// ComputeDay recomputes the DailyMetrics snapshot for the day starting at
// dayStart. An empty day returns the empty-metrics sentinel without
// touching the store.
func (p *Pipeline) ComputeDay(ctx context.Context, userID string, dayStart int64) (*defs.DailyMetrics, error) {
	drs, err := p.Store.ReadDevices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to read devices: %w", err)
	}

	maps := make([]defs.SampleMap, len(drs))
	for i, dr := range drs {
		maps[i] = dr.Samples
	}
	day := window.DayWindow(aggregate.Merge(maps...), dayStart)

	date := time.UnixMilli(dayStart).In(p.Location).Format("2006-01-02")
	if len(day) == 0 {
		return defs.EmptyDailyMetrics(userID, date), nil
	}

	dm := p.computeMetrics(userID, date, day)
	if _, err := p.Store.WriteSnapshot(ctx, dm); err != nil {
		return nil, fmt.Errorf("unable to write snapshot: %w", err)
	}

	p.Logger.Debug("computed daily metrics",
		zap.String("userID", userID),
		zap.String("date", date),
		zap.Int("samples", len(day)),
		zap.Float64("metabolicScore", dm.MetabolicScore),
	)

	return dm, nil
}

func (p *Pipeline) computeMetrics(userID, date string, day defs.SampleMap) *defs.DailyMetrics {
	times, values := window.Series(day)
	n := len(values)

	summary := stats.GlucoseSummary(values)
	avg := stats.AverageGlucose(values)
	tir := stats.TimeInRange(values)
	hyper := stats.Hyperglycemia(values)
	hypo := stats.Hypoglycemia(values)

	dayEvents := events.DayEvents(times, values)
	broadPeaks := events.BroadPeaks(times, values)
	broadValleys := events.BroadValleys(times, values)
	unknown := events.UnknownEvents(times, values)
	circadian := events.CircadianFactor(times, values, p.Location)

	rushAndHyper := 0
	for _, ev := range dayEvents {
		if ev.Type == defs.EventHyperGlycemia || ev.Type == defs.EventGlucoseRush {
			rushAndHyper++
		}
	}

	longevity := score.LongevityFactor(circadian, summary.Deviation, rushAndHyper)
	focus := score.FocusVector(broadPeaks, broadValleys, longevity, p.Location)
	athletic := score.AthleticVector(tir, n)
	metabolic := score.MetabolicScore(summary.Deviation, avg, tir, n, focus)

	return &defs.DailyMetrics{
		UserID: userID,
		Date:   date,

		GlucoseVariability:        summary.Deviation,
		GlucoseVariabilityScore:   score.GlucoseVariabilityScore(summary.Average, summary.Deviation, n),
		GlucoseVariabilityPercent: score.GlucoseVariabilityPercent(summary.Average, summary.Deviation, n),
		AverageGlucose:            avg,
		HbA1c:                     stats.HbA1c(avg),

		TimeInRangeMinutes: tir,
		PercentageInTarget: score.PercentageInTarget(tir, n),
		TimeInTargetScore:  score.TimeInTargetScore(tir, n),

		HyperglycemiaCount:   hyper.Count,
		HyperglycemiaMinutes: hyper.Minutes,
		HypoglycemiaCount:    hypo.Count,
		HypoglycemiaMinutes:  hypo.Minutes,

		GlucoseRush:  stats.GlucoseRush(values),
		GlucoseDrops: stats.GlucoseDrops(values),

		CircadianFactor: circadian,
		LongevityFactor: longevity,
		FocusScore:      focus,
		AthleticScore:   athletic,
		MetabolicScore:  metabolic,

		SpikeBeans: score.Beans(broadPeaks, p.Location),
		CrashBeans: score.Beans(broadValleys, p.Location),

		Events:        dayEvents,
		UnknownEvents: unknown,

		Samples: day,
	}
}
