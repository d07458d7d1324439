package engine

import (
	"context"
	"glyco/engine/defs"
	"glyco/engine/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type PipelineTestSuite struct {
	suite.Suite
	store    *mocks.Store
	pipeline *Pipeline
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	suite.store = mocks.NewStore()
	suite.pipeline = &Pipeline{Store: suite.store, Logger: zap.NewExample(), Location: time.UTC}
}

func (suite *PipelineTestSuite) seedDevice(userID, sensorID string, samples defs.SampleMap) {
	_, err := suite.store.UpsertDevice(context.Background(), &defs.DeviceRecord{
		UserID:   userID,
		SensorID: sensorID,
		Samples:  samples,
	})
	assert.NoError(suite.T(), err)
}

func (suite *PipelineTestSuite) TestComputeDayEmptySentinel() {
	day := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC).UnixMilli()

	dm, err := suite.pipeline.ComputeDay(context.Background(), "u1", day)
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), float64(-1), dm.AverageGlucose)
	assert.Equal(suite.T(), float64(-1), dm.MetabolicScore)
	assert.Equal(suite.T(), float64(-1), dm.TimeInRangeMinutes)
	assert.Equal(suite.T(), -1, dm.HyperglycemiaCount)
	assert.Equal(suite.T(), -1, dm.GlucoseRush)
	assert.Empty(suite.T(), dm.Events)
	assert.Empty(suite.T(), dm.Samples)

	assert.Empty(suite.T(), suite.store.Snapshots, "empty days are never persisted")
}

func (suite *PipelineTestSuite) TestComputeDayMergesDevices() {
	day := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC).UnixMilli()
	noon := day + 12*3_600_000

	suite.seedDevice("u1", "s1", defs.SampleMap{noon: 90, noon + 900_000: 130})
	suite.seedDevice("u1", "s2", defs.SampleMap{noon + 1_800_000: 75})
	suite.seedDevice("u2", "s1", defs.SampleMap{noon: 300})

	dm, err := suite.pipeline.ComputeDay(context.Background(), "u1", day)
	assert.NoError(suite.T(), err)

	assert.Len(suite.T(), dm.Samples, 3, "only u1's devices merged")
	assert.InDelta(suite.T(), 98.33, dm.AverageGlucose, 0.01)
	assert.InDelta(suite.T(), (98.33+46.7)/28.7, dm.HbA1c, 0.01)
	assert.InDelta(suite.T(), 23.21, dm.GlucoseVariability, 0.01)

	// 90 and 75 are in range; 130 is a hyperglycemic sample and a peak.
	assert.Equal(suite.T(), float64(10), dm.TimeInRangeMinutes)
	assert.Equal(suite.T(), 1, dm.HyperglycemiaCount)
	assert.Equal(suite.T(), float64(15), dm.HyperglycemiaMinutes)
	assert.Equal(suite.T(), 0, dm.HypoglycemiaCount)
	assert.Len(suite.T(), dm.Events, 1)
	assert.Equal(suite.T(), defs.EventHyperGlycemia, dm.Events[0].Type)

	stored, err := suite.store.ReadSnapshot(context.Background(), "u1", "2023-03-14")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), dm.MetabolicScore, stored.MetabolicScore)
}

func (suite *PipelineTestSuite) TestComputeDayIgnoresOtherDays() {
	day := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC).UnixMilli()

	suite.seedDevice("u1", "s1", defs.SampleMap{
		day + 1000:              90,
		day + defs.DayMs + 1000: 250, // Next day, excluded.
	})

	dm, err := suite.pipeline.ComputeDay(context.Background(), "u1", day)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), dm.Samples, 1)
	assert.Equal(suite.T(), float64(90), dm.AverageGlucose)
}

func (suite *PipelineTestSuite) TestRecomputeReplacesSnapshot() {
	day := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC).UnixMilli()
	noon := day + 12*3_600_000

	suite.seedDevice("u1", "s1", defs.SampleMap{noon: 90})
	first, err := suite.pipeline.ComputeDay(context.Background(), "u1", day)
	assert.NoError(suite.T(), err)

	suite.seedDevice("u1", "s1", defs.SampleMap{noon: 90, noon + 900_000: 150})
	second, err := suite.pipeline.ComputeDay(context.Background(), "u1", day)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), first.AverageGlucose, second.AverageGlucose)

	stored, err := suite.store.ReadSnapshot(context.Background(), "u1", "2023-03-14")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), second.AverageGlucose, stored.AverageGlucose, "full recompute replaces the prior snapshot")
}
