// Package score combines statistical and event outputs into the composite
// daily scores.
package score

import (
	"glyco/engine/defs"
	"math"
	"time"
)

// Seven two-hour focus bins spanning 08:00-22:00 local time.
const (
	focusBins      = 7
	focusFirstHour = 8
	focusLastHour  = 22
	focusBinWeight = 10.0
)

// LongevityFactor weighs the circadian factor, variability and the number
// of rush/hyper peaks. Returns -1 when all three inputs are zero, and
// propagates the -1 sentinel from the circadian factor.
func LongevityFactor(circadian, variability float64, rushAndHyperPeaks int) float64 {
	if circadian == -1 {
		return -1
	}
	if circadian == 0 && variability == 0 && rushAndHyperPeaks == 0 {
		return -1
	}
	return 0.5*circadian + 0.3*variability + 0.2*float64(rushAndHyperPeaks)
}

func binIndex(ts int64, loc *time.Location) int {
	hour := time.UnixMilli(ts).In(loc).Hour()
	if hour < focusFirstHour || hour >= focusLastHour {
		return -1
	}
	return (hour - focusFirstHour) / 2
}

func binAverage(evs []defs.GlucoseEvent, loc *time.Location) float64 {
	hit := [focusBins]bool{}
	for _, ev := range evs {
		if idx := binIndex(ev.Timestamp, loc); idx >= 0 {
			hit[idx] = true
		}
	}
	total := 0.0
	for _, h := range hit {
		if h {
			total += focusBinWeight
		}
	}
	return total / focusBins
}

// FocusVector scores how clustered daytime excursions are: broad peaks and
// valleys are bucketed into the seven bins, each occupied bin weighs 10,
// and the two per-kind averages are averaged into a raw penalty. The final
// score is 10-raw clamped to [0, 10]. Propagates the -1 sentinel from the
// longevity factor.
func FocusVector(peaks, valleys []defs.GlucoseEvent, longevity float64, loc *time.Location) float64 {
	if longevity == -1 {
		return -1
	}
	raw := (binAverage(peaks, loc) + binAverage(valleys, loc)) / 2
	switch {
	case raw < 0:
		return 10
	case raw > 10:
		return 0
	}
	return 10 - raw
}

// AthleticVector scales time-in-range into a 0-10 score.
func AthleticVector(timeInRangeMinutes float64, sampleCount int) float64 {
	if sampleCount == 0 {
		return 0
	}
	v := timeInRangeMinutes / defs.ExcursionMinutesPerSample / float64(sampleCount) * 10
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return -1
	}
	return v
}

// Beans histograms event hours into the seven display bins as raw counts.
func Beans(evs []defs.GlucoseEvent, loc *time.Location) []int {
	beans := make([]int, focusBins)
	for _, ev := range evs {
		if idx := binIndex(ev.Timestamp, loc); idx >= 0 {
			beans[idx]++
		}
	}
	return beans
}

// Metabolic score weights; changing any of these recalibrates the score.
const (
	gviWeight   = 23.0
	agiWeight   = 23.0
	titiWeight  = 27.0
	focusWeight = 1.8
)

// MetabolicScore is the weighted composite of the glycemic-variability,
// average-glucose and time-in-target indices plus the focus vector,
// rounded to the nearest integer. Returns -1 for an empty window.
func MetabolicScore(variability, avgGlucose, timeInRangeMinutes float64, sampleCount int, focus float64) float64 {
	if sampleCount == 0 {
		return -1
	}

	gvi := 1.0
	if variability >= 12 {
		gvi = 1 - variability/100
	}

	agi := 1.0
	switch {
	case avgGlucose >= 114:
		agi = 1 - (avgGlucose-114)/114
	case avgGlucose <= 68:
		agi = 1 - (68-avgGlucose)/68
	}

	titi := (timeInRangeMinutes / defs.ExcursionMinutesPerSample) / float64(sampleCount)

	return math.Round(gvi*gviWeight + agi*agiWeight + titi*titiWeight + focus*focusWeight)
}

// PercentageInTarget is time in range over the five-minute-per-sample day
// span, as a percentage. Returns -1 for an empty window.
func PercentageInTarget(timeInRangeMinutes float64, sampleCount int) float64 {
	if sampleCount == 0 {
		return -1
	}
	return timeInRangeMinutes / (float64(sampleCount) * defs.TimeInRangeMinutesPerSample) * 100
}

// TimeInTargetScore grades the in-target percentage against a 70% goal.
func TimeInTargetScore(timeInRangeMinutes float64, sampleCount int) float64 {
	if sampleCount == 0 {
		return -1
	}
	return 100 * PercentageInTarget(timeInRangeMinutes, sampleCount) / 70
}

// GlucoseVariabilityScore rewards low deviation relative to the mean. A
// zero mean has no meaningful ratio and reports the -1 sentinel.
func GlucoseVariabilityScore(average, deviation float64, sampleCount int) float64 {
	if sampleCount == 0 || average == 0 {
		return -1
	}
	return 100 * (1 - deviation/average)
}

// GlucoseVariabilityPercent is the coefficient of variation as a percentage,
// -1 when the mean is zero.
func GlucoseVariabilityPercent(average, deviation float64, sampleCount int) float64 {
	if sampleCount == 0 || average == 0 {
		return -1
	}
	return 100 * deviation / average
}
