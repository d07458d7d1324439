package defs

import (
	"fmt"

	"go.uber.org/zap"
)

const DefaultDB = "glyco"

// Glucose thresholds in mg/dL. These calibrate the metabolic score; they
// are fixed constants, not configuration.
const (
	TargetLow  = 70.0
	TargetHigh = 110.0

	RushThreshold  = 140.0
	CrashThreshold = 54.0

	NormalBandLow  = 70.0
	NormalBandHigh = 180.0
)

// Per-sample duration assumptions in minutes. Time-in-range and the
// hyper/hypo excursions scale by different constants; both feed the
// metabolic score and must stay independent.
const (
	TimeInRangeMinutesPerSample = 5.0
	ExcursionMinutesPerSample   = 15.0
)

const (
	// MergeOverlapMs guards against re-uploading the same recent window:
	// incoming samples within this distance of the current max are dropped.
	MergeOverlapMs int64 = 60_000

	// EventDedupMs collapses hyperglycemia peaks within 15 minutes.
	EventDedupMs int64 = 900_000

	// UnknownEventGapMs is the rolling gap between kept unknown-event
	// candidates.
	UnknownEventGapMs int64 = 7_200_000

	DayMs int64 = 86_400_000
)

// MaxGlucose bounds a valid sample value; readings are rejected outside
// [0, MaxGlucose].
const MaxGlucose = 400.0

// ErrValidation marks malformed input rejected before any mutation.
type ErrValidation struct {
	Reason string
}

func (e ErrValidation) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

type Config struct {
	Mongo    MongoConfig   `yaml:"mongo"`
	Rewards  RewardsConfig `yaml:"rewards"`
	Server   ServerConfig  `yaml:"server"`
	Timezone string        `yaml:"timezone"`
	Logger   *zap.Logger   `yaml:"_,omitempty"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RewardsConfig struct {
	Addr string `yaml:"address"`
}

type ServerConfig struct {
	Addr string `yaml:"address"`
}
