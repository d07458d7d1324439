// Package stats implements the statistical core over one day's ordered
// glucose values.
package stats

import (
	"glyco/engine/defs"

	"github.com/montanaflynn/stats"
)

// Summary holds the mean and population deviation of a window.
type Summary struct {
	Average   float64
	Deviation float64
}

func GlucoseSummary(values []float64) Summary {
	avg, _ := stats.Mean(values)
	dev, _ := stats.StandardDeviation(values)
	return Summary{Average: avg, Deviation: dev}
}

// AverageGlucose returns the window mean, or -1 for an empty window.
func AverageGlucose(values []float64) float64 {
	if len(values) == 0 {
		return -1
	}
	avg, _ := stats.Mean(values)
	return avg
}

// HbA1c estimates A1c from average glucose via the ADAG regression.
func HbA1c(avgGlucose float64) float64 {
	return (avgGlucose + 46.7) / 28.7
}

// TimeInRange returns minutes spent strictly between the target thresholds,
// at five minutes per in-range sample.
func TimeInRange(values []float64) float64 {
	in := 0
	for _, v := range values {
		if v > defs.TargetLow && v < defs.TargetHigh {
			in++
		}
	}
	return float64(in) * defs.TimeInRangeMinutesPerSample
}

// Excursion is a count of out-of-band samples and its duration at fifteen
// minutes per sample. The fifteen differs from the time-in-range scale on
// purpose; the two feed the metabolic score independently.
type Excursion struct {
	Count   int
	Minutes float64
}

func Hyperglycemia(values []float64) Excursion {
	n := 0
	for _, v := range values {
		if v > defs.TargetHigh {
			n++
		}
	}
	return Excursion{Count: n, Minutes: float64(n) * defs.ExcursionMinutesPerSample}
}

func Hypoglycemia(values []float64) Excursion {
	n := 0
	for _, v := range values {
		if v < defs.TargetLow {
			n++
		}
	}
	return Excursion{Count: n, Minutes: float64(n) * defs.ExcursionMinutesPerSample}
}

// GlucoseRush returns the length of the longest run of consecutive samples
// above the rush threshold.
func GlucoseRush(values []float64) int {
	longest, run := 0, 0
	for _, v := range values {
		if v > defs.RushThreshold {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// GlucoseDrops counts adjacent pairs falling by more than 10 mg/dL. The
// counter is magnitude-only: sample spacing does not gate it.
func GlucoseDrops(values []float64) int {
	drops := 0
	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] < -10 {
			drops++
		}
	}
	return drops
}
