package engine

import (
	"context"
	"fmt"
	"glyco/engine/defs"
	"glyco/engine/pkg/mg"
	"glyco/engine/pkg/rewards"
	"glyco/engine/pkg/window"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ManualSensorID keys the synthetic device holding manual log entries.
const ManualSensorID = "manual"

const recomputeTimeout = 30 * time.Second

type IngesterStore interface {
	mg.DeviceStore
}

// Ingester merges sensor uploads and manual readings into device records
// and triggers metric recomputation for the affected days.
type Ingester struct {
	Store    IngesterStore
	Pipeline *Pipeline
	Notifier rewards.Notifier

	Logger   *zap.Logger
	Location *time.Location
}

// MergeSensorUpload validates and merges a raw sample batch into the
// (user, sensor) device record. Recomputation of the touched days and the
// reward notification run detached so the caller only waits for the merge.
func (ing *Ingester) MergeSensorUpload(ctx context.Context, userID, sensorID string, activationTime int64, samples defs.SampleMap) (*defs.DeviceRecord, error) {
	if userID == "" || sensorID == "" {
		return nil, defs.ErrValidation{Reason: "missing user or sensor id"}
	}
	for ts, v := range samples {
		if err := validateSample(ts, v); err != nil {
			return nil, err
		}
	}

	dr, err := ing.readOrCreateDevice(ctx, userID, sensorID, activationTime)
	if err != nil {
		return nil, err
	}

	merged := mergeSamples(dr.Samples, samples, dr.LatestReading.Timestamp)
	dr.Samples = merged
	dr.LatestReading = latestReading(merged)

	if _, err := ing.Store.UpsertDevice(ctx, dr); err != nil {
		return nil, fmt.Errorf("unable to upsert device record: %w", err)
	}

	ing.Logger.Debug("merged sensor upload",
		zap.String("userID", userID),
		zap.String("sensorID", sensorID),
		zap.Int("incoming", len(samples)),
		zap.Int("total", len(merged)),
	)

	go ing.afterIngest(userID, rewards.KindSensorSync, ing.touchedDays(samples))

	return dr, nil
}

// LogManualReading inserts a single reading and synchronously recomputes
// that day's metrics, which are returned to the caller.
func (ing *Ingester) LogManualReading(ctx context.Context, userID string, ts int64, value float64, profile defs.UserProfile) (*defs.DailyMetrics, error) {
	if userID == "" {
		return nil, defs.ErrValidation{Reason: "missing user id"}
	}
	if err := validateSample(ts, value); err != nil {
		return nil, err
	}

	dr, err := ing.readOrCreateDevice(ctx, userID, ManualSensorID, ts)
	if err != nil {
		return nil, err
	}

	dr.Samples[ts] = value
	dr.ManualReadingCount++
	dr.LatestReading = latestReading(dr.Samples)
	dr.Profile = profile

	if _, err := ing.Store.UpsertDevice(ctx, dr); err != nil {
		return nil, fmt.Errorf("unable to upsert device record: %w", err)
	}

	dm, err := ing.Pipeline.ComputeDay(ctx, userID, window.DayStart(ts, ing.Location))
	if err != nil {
		return nil, err
	}

	go ing.afterIngest(userID, rewards.KindManualLog, nil)

	return dm, nil
}

func (ing *Ingester) readOrCreateDevice(ctx context.Context, userID, sensorID string, activationTime int64) (*defs.DeviceRecord, error) {
	dr, err := ing.Store.ReadDevice(ctx, userID, sensorID)
	if err == mongo.ErrNoDocuments {
		return &defs.DeviceRecord{
			UserID:         userID,
			SensorID:       sensorID,
			ActivationTime: activationTime,
			Samples:        defs.SampleMap{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read device record: %w", err)
	}
	return dr, nil
}

// afterIngest runs recomputation and the reward hook on a detached context;
// failures are logged and never surface to the ingest caller.
func (ing *Ingester) afterIngest(userID, kind string, dayStarts []int64) {
	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	for _, dayStart := range dayStarts {
		if _, err := ing.Pipeline.ComputeDay(ctx, userID, dayStart); err != nil {
			ing.Logger.Debug("unable to recompute day",
				zap.String("userID", userID),
				zap.Int64("dayStart", dayStart),
				zap.Error(err),
			)
		}
	}

	if ing.Notifier == nil {
		return
	}
	if err := ing.Notifier.NotifyLog(ctx, userID, kind); err != nil {
		ing.Logger.Debug("unable to notify reward service",
			zap.String("userID", userID),
			zap.Error(err),
		)
	}
}

func (ing *Ingester) touchedDays(samples defs.SampleMap) []int64 {
	seen := map[int64]bool{}
	days := []int64{}
	for ts := range samples {
		day := window.DayStart(ts, ing.Location)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days
}

// mergeSamples unions incoming into existing. Zero-valued entries are
// stripped, and incoming timestamps inside the overlap guard window at or
// after the current max are discarded to absorb re-uploads of the same
// recent window. Later entries win on identical keys.
func mergeSamples(existing, incoming defs.SampleMap, currentMaxTimestamp int64) defs.SampleMap {
	merged := defs.SampleMap{}
	for ts, v := range existing {
		merged[ts] = v
	}
	for ts, v := range incoming {
		if v == 0 {
			continue
		}
		if currentMaxTimestamp > 0 && ts >= currentMaxTimestamp && ts-currentMaxTimestamp < defs.MergeOverlapMs {
			continue
		}
		merged[ts] = v
	}
	return merged
}

func latestReading(samples defs.SampleMap) defs.Reading {
	var latest defs.Reading
	for ts, v := range samples {
		if ts > latest.Timestamp {
			latest = defs.Reading{Timestamp: ts, Value: v}
		}
	}
	return latest
}

func validateSample(ts int64, v float64) error {
	if ts <= 0 {
		return defs.ErrValidation{Reason: fmt.Sprintf("timestamp %d does not parse to a valid instant", ts)}
	}
	if v < 0 || v > defs.MaxGlucose {
		return defs.ErrValidation{Reason: fmt.Sprintf("value %.1f outside [0, %.0f]", v, defs.MaxGlucose)}
	}
	return nil
}
