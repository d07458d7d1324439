package mg

import (
	"context"
	"glyco/engine/defs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	mongoURI = "mongodb://localhost:27017"
	testDB   = "test"
)

type MongoTestSuite struct {
	suite.Suite
	ms *MongoStore
}

func TestMongoTestSuiteIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.Run(t, new(MongoTestSuite))
}

func (suite *MongoTestSuite) SetupSuite() {
	ms, err := New(context.Background(), defs.MongoConfig{URI: mongoURI}, testDB, zap.NewExample())
	if err != nil {
		panic(err)
	}
	suite.ms = ms
}

func (suite *MongoTestSuite) AfterTest(_, _ string) {
	suite.T().Log("teardown test db")
	assert.NoError(suite.T(), suite.ms.Client.Database(testDB).Drop(context.Background()), "unable to drop test db")
}

func (suite *MongoTestSuite) TestDocByIDIntegration() {
	ctx := context.Background()
	id := primitive.NewObjectID()
	doc := defs.DeviceRecord{ID: &id, UserID: "u1", SensorID: "s1"}

	_, err := suite.ms.Upsert(ctx, DeviceCollection, bson.M{"_id": id}, &doc)
	assert.NoError(suite.T(), err)

	var fetched defs.DeviceRecord
	assert.NoError(suite.T(), suite.ms.DocByID(ctx, DeviceCollection, &id, &fetched), "unable to fetch document by id")
	assert.Equal(suite.T(), doc.UserID, fetched.UserID)
}

func (suite *MongoTestSuite) TestDeleteByIDIntegration() {
	ctx := context.Background()
	id := primitive.NewObjectID()
	doc := defs.DeviceRecord{ID: &id, UserID: "u1", SensorID: "s1"}

	_, err := suite.ms.Upsert(ctx, DeviceCollection, bson.M{"_id": id}, &doc)
	assert.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.ms.DeleteByID(ctx, DeviceCollection, &id), "unable to delete document by id")

	var fetched defs.DeviceRecord
	err = suite.ms.DocByID(ctx, DeviceCollection, &id, &fetched)
	assert.ErrorIs(suite.T(), err, mongo.ErrNoDocuments, "document must be gone")
}

func (suite *MongoTestSuite) TestUpsertDeviceIntegration() {
	ctx := context.Background()
	dr := &defs.DeviceRecord{
		UserID:         "u1",
		SensorID:       "s1",
		ActivationTime: 1000,
		Samples:        defs.SampleMap{1000: 90, 2000: 95},
		LatestReading:  defs.Reading{Timestamp: 2000, Value: 95},
	}

	_, err := suite.ms.UpsertDevice(ctx, dr)
	assert.NoError(suite.T(), err, "unable to write device to test db")

	fetched, err := suite.ms.ReadDevice(ctx, "u1", "s1")
	assert.NoError(suite.T(), err, "unable to read device from test db")
	assert.EqualValues(suite.T(), dr.Samples, fetched.Samples)
	assert.EqualValues(suite.T(), dr.LatestReading, fetched.LatestReading)

	// Second upsert replaces in place, no duplicate.
	dr.Samples[3000] = 100
	_, err = suite.ms.UpsertDevice(ctx, dr)
	assert.NoError(suite.T(), err)

	drs, err := suite.ms.ReadDevices(ctx, "u1")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), drs, 1, "not a unique entry")
	assert.Len(suite.T(), drs[0].Samples, 3)
}

func (suite *MongoTestSuite) TestSnapshotRoundTripIntegration() {
	ctx := context.Background()
	dm := &defs.DailyMetrics{
		UserID:         "u1",
		Date:           "2023-03-14",
		AverageGlucose: 98.33,
		MetabolicScore: 73,
		SpikeBeans:     []int{0, 1, 0, 0, 0, 0, 0},
		Events: []defs.GlucoseEvent{
			{Type: defs.EventHyperGlycemia, Timestamp: 1000, Value: 130},
		},
		Samples: defs.SampleMap{1000: 130},
	}

	_, err := suite.ms.WriteSnapshot(ctx, dm)
	assert.NoError(suite.T(), err, "unable to write snapshot to test db")

	fetched, err := suite.ms.ReadSnapshot(ctx, "u1", "2023-03-14")
	assert.NoError(suite.T(), err, "unable to read snapshot from test db")
	assert.EqualValues(suite.T(), dm.MetabolicScore, fetched.MetabolicScore)
	assert.EqualValues(suite.T(), dm.Events, fetched.Events)
	assert.EqualValues(suite.T(), dm.Samples, fetched.Samples)
}

func (suite *MongoTestSuite) TestSnapshotReplaceIntegration() {
	ctx := context.Background()

	_, err := suite.ms.WriteSnapshot(ctx, &defs.DailyMetrics{UserID: "u1", Date: "2023-03-14", MetabolicScore: 60})
	assert.NoError(suite.T(), err)
	_, err = suite.ms.WriteSnapshot(ctx, &defs.DailyMetrics{UserID: "u1", Date: "2023-03-14", MetabolicScore: 73})
	assert.NoError(suite.T(), err)

	dms, err := suite.ms.ReadRecentSnapshots(ctx, "u1", 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), dms, 1, "upsert must replace, not append")
	assert.Equal(suite.T(), float64(73), dms[0].MetabolicScore)
}

func (suite *MongoTestSuite) TestReadSnapshotSentinelIntegration() {
	dm, err := suite.ms.ReadSnapshot(context.Background(), "ghost", "2023-03-14")
	assert.NoError(suite.T(), err, "missing snapshot is not an error")
	assert.Equal(suite.T(), float64(-1), dm.MetabolicScore)
	assert.Equal(suite.T(), float64(-1), dm.AverageGlucose)
	assert.Empty(suite.T(), dm.Events)
}

func (suite *MongoTestSuite) TestReadRecentSnapshotsOrderIntegration() {
	ctx := context.Background()
	for _, date := range []string{"2023-03-12", "2023-03-14", "2023-03-13"} {
		_, err := suite.ms.WriteSnapshot(ctx, &defs.DailyMetrics{UserID: "u1", Date: date})
		assert.NoError(suite.T(), err)
	}

	dms, err := suite.ms.ReadRecentSnapshots(ctx, "u1", 2)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), dms, 2)
	assert.Equal(suite.T(), "2023-03-14", dms[0].Date)
	assert.Equal(suite.T(), "2023-03-13", dms[1].Date)
}
