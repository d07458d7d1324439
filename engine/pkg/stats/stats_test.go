package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type StatsTestSuite struct {
	suite.Suite
}

func TestStatsTestSuite(t *testing.T) {
	suite.Run(t, new(StatsTestSuite))
}

func (suite *StatsTestSuite) TestGlucoseSummary() {
	values := []float64{90, 130, 75}
	ss := GlucoseSummary(values)

	assert.InDelta(suite.T(), 98.33, ss.Average, 0.01, "averages do not equal")
	assert.InDelta(suite.T(), 23.21, ss.Deviation, 0.01, "deviations do not equal")
}

func (suite *StatsTestSuite) TestDeviationNonNegative() {
	ss := GlucoseSummary([]float64{105})
	assert.Equal(suite.T(), float64(0), ss.Deviation, "single sample must have zero deviation")

	ss = GlucoseSummary([]float64{60, 60, 60, 60})
	assert.Equal(suite.T(), float64(0), ss.Deviation, "constant series must have zero deviation")
}

func (suite *StatsTestSuite) TestAverageGlucoseEmptySentinel() {
	assert.Equal(suite.T(), float64(-1), AverageGlucose(nil))
	assert.Equal(suite.T(), float64(98), AverageGlucose([]float64{98}))
}

func (suite *StatsTestSuite) TestHbA1c() {
	assert.InDelta(suite.T(), (98.33+46.7)/28.7, HbA1c(98.33), 1e-9)
}

func (suite *StatsTestSuite) TestRangeAccounting() {
	// Every non-boundary sample lands in exactly one of the three buckets.
	values := []float64{65, 90, 105, 130, 55, 200, 75}

	in := int(TimeInRange(values) / 5)
	hyper := Hyperglycemia(values)
	hypo := Hypoglycemia(values)

	assert.Equal(suite.T(), len(values), in+hyper.Count+hypo.Count, "every sample accounted for exactly once")
	assert.Equal(suite.T(), 2, hyper.Count)
	assert.Equal(suite.T(), 2, hypo.Count)
}

func (suite *StatsTestSuite) TestScaleFactorsStayIndependent() {
	values := []float64{90, 90, 130, 60}

	assert.Equal(suite.T(), float64(10), TimeInRange(values), "five minutes per in-range sample")
	assert.Equal(suite.T(), float64(15), Hyperglycemia(values).Minutes, "fifteen minutes per hyper sample")
	assert.Equal(suite.T(), float64(15), Hypoglycemia(values).Minutes, "fifteen minutes per hypo sample")
}

func (suite *StatsTestSuite) TestGlucoseRushUnbrokenRun() {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 150
	}
	assert.Equal(suite.T(), 20, GlucoseRush(values), "single unbroken run above 140")
}

func (suite *StatsTestSuite) TestGlucoseRushBrokenRun() {
	values := []float64{150, 160, 120, 145, 150, 155, 100}
	assert.Equal(suite.T(), 3, GlucoseRush(values))
	assert.Equal(suite.T(), 0, GlucoseRush([]float64{100, 120, 140}))
	assert.Equal(suite.T(), 0, GlucoseRush(nil))
}

func (suite *StatsTestSuite) TestGlucoseDrops() {
	values := []float64{150, 139, 128, 130, 100}
	assert.Equal(suite.T(), 3, GlucoseDrops(values))
	assert.Equal(suite.T(), 0, GlucoseDrops([]float64{100, 95, 90}), "a 5/10 fall is not a drop")
}

func (suite *StatsTestSuite) TestGlucoseDropsIgnoresSampleSpacing() {
	// Drops are magnitude-only: identical values count the same regardless
	// of how far apart the readings were taken.
	assert.Equal(suite.T(), 1, GlucoseDrops([]float64{150, 120}))
}
