package mg

import (
	"context"
	"fmt"
	"glyco/engine/defs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	DeviceCollection   = "devices"
	SnapshotCollection = "snapshots"
)

type DocumentStore interface {
	DocByID(ctx context.Context, collection string, id *primitive.ObjectID, doc interface{}) error
	DeleteByID(ctx context.Context, collection string, id *primitive.ObjectID) error
	Upsert(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error)
}

type DeviceStore interface {
	ReadDevice(ctx context.Context, userID, sensorID string) (*defs.DeviceRecord, error)
	ReadDevices(ctx context.Context, userID string) ([]defs.DeviceRecord, error)
	UpsertDevice(ctx context.Context, dr *defs.DeviceRecord) (*mongo.UpdateResult, error)
}

type SnapshotStore interface {
	WriteSnapshot(ctx context.Context, dm *defs.DailyMetrics) (*mongo.UpdateResult, error)
	ReadSnapshot(ctx context.Context, userID, date string) (*defs.DailyMetrics, error)
	ReadRecentSnapshots(ctx context.Context, userID string, limit int) ([]defs.DailyMetrics, error)
}

type MongoStore struct {
	Client *mongo.Client
	Logger *zap.Logger

	DBName string
}

func New(ctx context.Context, cfg defs.MongoConfig, dbName string, logger *zap.Logger) (*MongoStore, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" {
		opts = opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	mongoClient, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	return &MongoStore{
		Client: mongoClient,
		Logger: logger,
		DBName: dbName,
	}, nil
}

func (ms *MongoStore) DocByID(ctx context.Context, collection string, id *primitive.ObjectID, doc interface{}) error {
	sr := ms.Client.Database(ms.DBName).Collection(collection).FindOne(ctx, bson.M{"_id": id})
	return sr.Decode(doc)
}

func (ms *MongoStore) DeleteByID(ctx context.Context, collection string, id *primitive.ObjectID) error {
	ms.Logger.Debug(
		"deleting document by id",
		zap.String("collection", collection),
		zap.String("id", id.Hex()),
	)
	_, err := ms.Client.Database(ms.DBName).Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (ms *MongoStore) Upsert(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error) {
	ms.Logger.Debug(
		"upserting document",
		zap.String("collection", collection),
		zap.Any("filter", filter),
	)

	res, err := ms.Client.
		Database(ms.DBName).
		Collection(collection).
		UpdateOne(ctx, filter,
			bson.M{"$set": doc},
			options.Update().SetUpsert(true),
		)
	if err != nil {
		ms.Logger.Debug(
			"unable to upsert document",
			zap.String("collection", collection),
			zap.Any("filter", filter),
			zap.Error(err),
		)
		return nil, fmt.Errorf("unable to upsert document: %w", err)
	}

	return res, err
}

func (ms *MongoStore) ReadDevice(ctx context.Context, userID, sensorID string) (*defs.DeviceRecord, error) {
	var dr defs.DeviceRecord
	sr := ms.Client.
		Database(ms.DBName).
		Collection(DeviceCollection).
		FindOne(ctx, bson.M{"userId": userID, "sensorId": sensorID})
	if err := sr.Decode(&dr); err != nil {
		return nil, err
	}
	return &dr, nil
}

func (ms *MongoStore) ReadDevices(ctx context.Context, userID string) ([]defs.DeviceRecord, error) {
	cur, err := ms.Client.
		Database(ms.DBName).
		Collection(DeviceCollection).
		Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("unable to read devices: %w", err)
	}

	var drs []defs.DeviceRecord
	if err := cur.All(ctx, &drs); err != nil {
		return nil, fmt.Errorf("unable to decode devices: %w", err)
	}
	return drs, nil
}

func (ms *MongoStore) UpsertDevice(ctx context.Context, dr *defs.DeviceRecord) (*mongo.UpdateResult, error) {
	filter := bson.M{"userId": dr.UserID, "sensorId": dr.SensorID}
	return ms.Upsert(ctx, DeviceCollection, filter, dr)
}

// WriteSnapshot replaces any prior metrics for the (user, date) key; daily
// metrics are immutable per key, never merged.
func (ms *MongoStore) WriteSnapshot(ctx context.Context, dm *defs.DailyMetrics) (*mongo.UpdateResult, error) {
	filter := bson.M{"userId": dm.UserID, "date": dm.Date}
	return ms.Upsert(ctx, SnapshotCollection, filter, dm)
}

// ReadSnapshot returns the stored metrics, or the empty-metrics sentinel
// when the (user, date) key holds no snapshot.
func (ms *MongoStore) ReadSnapshot(ctx context.Context, userID, date string) (*defs.DailyMetrics, error) {
	var dm defs.DailyMetrics
	sr := ms.Client.
		Database(ms.DBName).
		Collection(SnapshotCollection).
		FindOne(ctx, bson.M{"userId": userID, "date": date})
	if err := sr.Decode(&dm); err != nil {
		if err == mongo.ErrNoDocuments {
			return defs.EmptyDailyMetrics(userID, date), nil
		}
		return nil, fmt.Errorf("unable to read snapshot: %w", err)
	}
	return &dm, nil
}

func (ms *MongoStore) ReadRecentSnapshots(ctx context.Context, userID string, limit int) ([]defs.DailyMetrics, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.D{primitive.E{Key: "date", Value: -1}})
	findOptions.SetLimit(int64(limit))

	cur, err := ms.Client.
		Database(ms.DBName).
		Collection(SnapshotCollection).
		Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to read snapshots: %w", err)
	}

	var dms []defs.DailyMetrics
	if err := cur.All(ctx, &dms); err != nil {
		return nil, fmt.Errorf("unable to decode snapshots: %w", err)
	}
	return dms, nil
}
