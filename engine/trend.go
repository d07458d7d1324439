package engine

import (
	"context"
	"glyco/engine/defs"
	"glyco/engine/pkg/mg"

	"go.uber.org/zap"
)

// TrendReporter compares the two most recent stored snapshots.
type TrendReporter struct {
	Store mg.SnapshotStore

	Logger *zap.Logger
}

// LatestScoreTrend reports the newest metabolic score and its direction
// relative to the previous snapshot. With fewer than two snapshots the
// trend is stable; with none the current score is the -1 sentinel.
func (tr *TrendReporter) LatestScoreTrend(ctx context.Context, userID string) (*defs.ScoreTrend, error) {
	dms, err := tr.Store.ReadRecentSnapshots(ctx, userID, 2)
	if err != nil {
		return nil, err
	}

	switch len(dms) {
	case 0:
		return &defs.ScoreTrend{CurrentScore: -1, Trend: defs.TrendStable}, nil
	case 1:
		return &defs.ScoreTrend{CurrentScore: dms[0].MetabolicScore, Trend: defs.TrendStable}, nil
	}

	diff := dms[0].MetabolicScore - dms[1].MetabolicScore
	trend := defs.TrendStable
	switch {
	case diff > 0:
		trend = defs.TrendImproving
	case diff < 0:
		trend = defs.TrendDeclining
	}

	tr.Logger.Debug("computed score trend",
		zap.String("userID", userID),
		zap.Float64("current", dms[0].MetabolicScore),
		zap.Float64("difference", diff),
	)

	return &defs.ScoreTrend{
		CurrentScore:    dms[0].MetabolicScore,
		ScoreDifference: diff,
		Trend:           trend,
	}, nil
}
