package defs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SampleMap keys epoch-millisecond timestamps to glucose values in mg/dL.
type SampleMap map[int64]float64

// Reading is a single glucose sample.
type Reading struct {
	Timestamp int64   `bson:"timestamp" json:"timestamp"`
	Value     float64 `bson:"value" json:"value"`
}

func (r Reading) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// UserProfile carries display-only fields attached to a device record.
// The engine stores them opaquely and never reads them.
type UserProfile struct {
	Name      string `bson:"name,omitempty" json:"name,omitempty"`
	AvatarURL string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Unit      string `bson:"unit,omitempty" json:"unit,omitempty"`
}

// DeviceRecord holds every sample uploaded for one (user, sensor) pair.
// LatestReading always reflects the max-timestamp entry of Samples; it is
// recomputed synchronously on every mutation.
type DeviceRecord struct {
	ID                 *primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID             string              `bson:"userId" json:"userId"`
	SensorID           string              `bson:"sensorId" json:"sensorId"`
	ActivationTime     int64               `bson:"activationTime" json:"activationTime"`
	Samples            SampleMap           `bson:"samples" json:"samples"`
	LatestReading      Reading             `bson:"latestReading" json:"latestReading"`
	ManualReadingCount int                 `bson:"manualReadingCount" json:"manualReadingCount"`
	Profile            UserProfile         `bson:"profile,omitempty" json:"profile,omitempty"`
}

// Event types emitted by the detector.
const (
	EventHyperGlycemia  = "hyper_glycemia"
	EventGlucoseRush    = "glucose_rush"
	EventPeakDetection  = "peak_detection"
	EventGlucoseCrash   = "glucose_crash"
	EventHypoGlycemia   = "hypo_glycemia"
	EventValleyDetected = "valley_detection"
	EventUnknown        = "unknown_event"
)

// GlucoseEvent is one detected excursion in a day's series.
type GlucoseEvent struct {
	Type        string  `bson:"type" json:"type"`
	Timestamp   int64   `bson:"timestamp" json:"timestamp"`
	Value       float64 `bson:"value" json:"value"`
	Description string  `bson:"description" json:"description"`
}

// DailyMetrics is the computed snapshot for one (user, date) key. A full
// recompute replaces the prior value; it is never merged in place.
type DailyMetrics struct {
	ID     *primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID string              `bson:"userId" json:"userId"`
	Date   string              `bson:"date" json:"date"`

	GlucoseVariability        float64 `bson:"glucoseVariability" json:"glucoseVariability"`
	GlucoseVariabilityScore   float64 `bson:"glucoseVariabilityScore" json:"glucoseVariabilityScore"`
	GlucoseVariabilityPercent float64 `bson:"glucoseVariabilityPercent" json:"glucoseVariabilityPercent"`
	AverageGlucose            float64 `bson:"averageGlucose" json:"averageGlucose"`
	HbA1c                     float64 `bson:"hba1c" json:"hba1c"`

	TimeInRangeMinutes float64 `bson:"timeInRangeMinutes" json:"timeInRangeMinutes"`
	PercentageInTarget float64 `bson:"percentageInTarget" json:"percentageInTarget"`
	TimeInTargetScore  float64 `bson:"timeInTargetScore" json:"timeInTargetScore"`

	HyperglycemiaCount   int     `bson:"hyperglycemiaCount" json:"hyperglycemiaCount"`
	HyperglycemiaMinutes float64 `bson:"hyperglycemiaMinutes" json:"hyperglycemiaMinutes"`
	HypoglycemiaCount    int     `bson:"hypoglycemiaCount" json:"hypoglycemiaCount"`
	HypoglycemiaMinutes  float64 `bson:"hypoglycemiaMinutes" json:"hypoglycemiaMinutes"`

	GlucoseRush  int `bson:"glucoseRush" json:"glucoseRush"`
	GlucoseDrops int `bson:"glucoseDrops" json:"glucoseDrops"`

	CircadianFactor float64 `bson:"circadianFactor" json:"circadianFactor"`
	LongevityFactor float64 `bson:"longevityFactor" json:"longevityFactor"`
	FocusScore      float64 `bson:"focusScore" json:"focusScore"`
	AthleticScore   float64 `bson:"athleticScore" json:"athleticScore"`
	MetabolicScore  float64 `bson:"metabolicScore" json:"metabolicScore"`

	SpikeBeans []int `bson:"spikeBeans" json:"spikeBeans"`
	CrashBeans []int `bson:"crashBeans" json:"crashBeans"`

	Events        []GlucoseEvent `bson:"events" json:"events"`
	UnknownEvents []GlucoseEvent `bson:"unknownEvents" json:"unknownEvents"`

	Samples SampleMap `bson:"samples" json:"samples"`
}

// EmptyDailyMetrics is the sentinel returned for a (user, date) with no
// data: every numeric field is -1 and every collection is empty. Callers
// treat -1 as "no data", never as a computed value.
func EmptyDailyMetrics(userID, date string) *DailyMetrics {
	return &DailyMetrics{
		UserID:                    userID,
		Date:                      date,
		GlucoseVariability:        -1,
		GlucoseVariabilityScore:   -1,
		GlucoseVariabilityPercent: -1,
		AverageGlucose:            -1,
		HbA1c:                     -1,
		TimeInRangeMinutes:        -1,
		PercentageInTarget:        -1,
		TimeInTargetScore:         -1,
		HyperglycemiaCount:        -1,
		HyperglycemiaMinutes:      -1,
		HypoglycemiaCount:         -1,
		HypoglycemiaMinutes:       -1,
		GlucoseRush:               -1,
		GlucoseDrops:              -1,
		CircadianFactor:           -1,
		LongevityFactor:           -1,
		FocusScore:                -1,
		AthleticScore:             -1,
		MetabolicScore:            -1,
		SpikeBeans:                []int{},
		CrashBeans:                []int{},
		Events:                    []GlucoseEvent{},
		UnknownEvents:             []GlucoseEvent{},
		Samples:                   SampleMap{},
	}
}

// ScoreTrend compares the two most recent snapshots for a user.
type ScoreTrend struct {
	CurrentScore    float64 `json:"currentScore"`
	ScoreDifference float64 `json:"scoreDifference"`
	Trend           string  `json:"trend"`
}

// Trend directions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)
