// Package mocks holds in-memory fakes for engine tests.
package mocks

import (
	"context"
	"glyco/engine/defs"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store is an in-memory stand-in for the Mongo store.
type Store struct {
	sync.Mutex

	Devices   map[string]*defs.DeviceRecord
	Snapshots map[string]*defs.DailyMetrics
}

func NewStore() *Store {
	return &Store{
		Devices:   make(map[string]*defs.DeviceRecord),
		Snapshots: make(map[string]*defs.DailyMetrics),
	}
}

func deviceKey(userID, sensorID string) string { return userID + "/" + sensorID }

func (s *Store) ReadDevice(_ context.Context, userID, sensorID string) (*defs.DeviceRecord, error) {
	s.Lock()
	defer s.Unlock()

	dr, ok := s.Devices[deviceKey(userID, sensorID)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *dr
	return &cp, nil
}

func (s *Store) ReadDevices(_ context.Context, userID string) ([]defs.DeviceRecord, error) {
	s.Lock()
	defer s.Unlock()

	drs := []defs.DeviceRecord{}
	for _, dr := range s.Devices {
		if dr.UserID == userID {
			drs = append(drs, *dr)
		}
	}
	return drs, nil
}

func (s *Store) UpsertDevice(_ context.Context, dr *defs.DeviceRecord) (*mongo.UpdateResult, error) {
	s.Lock()
	defer s.Unlock()

	cp := *dr
	s.Devices[deviceKey(dr.UserID, dr.SensorID)] = &cp
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (s *Store) WriteSnapshot(_ context.Context, dm *defs.DailyMetrics) (*mongo.UpdateResult, error) {
	s.Lock()
	defer s.Unlock()

	cp := *dm
	s.Snapshots[deviceKey(dm.UserID, dm.Date)] = &cp
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (s *Store) ReadSnapshot(_ context.Context, userID, date string) (*defs.DailyMetrics, error) {
	s.Lock()
	defer s.Unlock()

	dm, ok := s.Snapshots[deviceKey(userID, date)]
	if !ok {
		return defs.EmptyDailyMetrics(userID, date), nil
	}
	cp := *dm
	return &cp, nil
}

func (s *Store) ReadRecentSnapshots(_ context.Context, userID string, limit int) ([]defs.DailyMetrics, error) {
	s.Lock()
	defer s.Unlock()

	dms := []defs.DailyMetrics{}
	for _, dm := range s.Snapshots {
		if dm.UserID == userID {
			dms = append(dms, *dm)
		}
	}
	sort.Slice(dms, func(i, j int) bool { return dms[i].Date > dms[j].Date })
	if len(dms) > limit {
		dms = dms[:limit]
	}
	return dms, nil
}

// Notifier records reward notifications.
type Notifier struct {
	sync.Mutex

	Notified []string
}

func (n *Notifier) NotifyLog(_ context.Context, userID, kind string) error {
	n.Lock()
	defer n.Unlock()
	n.Notified = append(n.Notified, userID+"/"+kind)
	return nil
}
