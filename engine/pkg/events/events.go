// Package events detects peaks, valleys and rise precursors in a day's
// glucose series.
package events

import (
	"glyco/engine/defs"
	"time"

	"github.com/montanaflynn/stats"
)

type direction int

const (
	peak direction = iota
	valley
)

// scan finds local extrema whose value satisfies pred. A flat plateau is
// resolved by walking forward to the next strictly different value and
// testing the boundary slope; the plateau reports its first index. When
// dedupMs > 0, a single left-to-right sweep keeps the first event of each
// cluster and drops any within dedupMs of the previous survivor.
func scan(times []int64, values []float64, dir direction, pred func(float64) bool, dedupMs int64, tag, desc string) []defs.GlucoseEvent {
	found := []defs.GlucoseEvent{}
	for i := 1; i < len(values)-1; i++ {
		j := i
		for j+1 < len(values) && values[j+1] == values[i] {
			j++
		}
		if j+1 >= len(values) {
			break
		}

		extremum := false
		switch dir {
		case peak:
			extremum = values[i] > values[i-1] && values[i] > values[j+1]
		case valley:
			extremum = values[i] < values[i-1] && values[i] < values[j+1]
		}

		if extremum && pred(values[i]) {
			found = append(found, defs.GlucoseEvent{
				Type:        tag,
				Timestamp:   times[i],
				Value:       values[i],
				Description: desc,
			})
		}
		i = j
	}

	if dedupMs <= 0 {
		return found
	}

	kept := []defs.GlucoseEvent{}
	var lastKept int64
	for _, ev := range found {
		if len(kept) > 0 && ev.Timestamp-lastKept < dedupMs {
			continue
		}
		kept = append(kept, ev)
		lastKept = ev.Timestamp
	}
	return kept
}

// HyperglycemiaPeaks are moderate peaks between 120 and 140 mg/dL,
// deduplicated to one per fifteen-minute cluster.
func HyperglycemiaPeaks(times []int64, values []float64) []defs.GlucoseEvent {
	return scan(times, values, peak,
		func(v float64) bool { return v > 120 && v < defs.RushThreshold },
		defs.EventDedupMs, defs.EventHyperGlycemia, "hyperglycemic peak between 120 and 140")
}

// RushPeaks are peaks above the rush threshold. No dedup: every rush counts.
func RushPeaks(times []int64, values []float64) []defs.GlucoseEvent {
	return scan(times, values, peak,
		func(v float64) bool { return v > defs.RushThreshold },
		0, defs.EventGlucoseRush, "glucose rush above 140")
}

// BroadPeaks feed the scorer only; they never appear in the day event list.
func BroadPeaks(times []int64, values []float64) []defs.GlucoseEvent {
	return scan(times, values, peak,
		func(v float64) bool { return v > defs.TargetHigh },
		0, defs.EventPeakDetection, "peak above target range")
}

// CrashValleys are severe lows below 54 mg/dL.
func CrashValleys(times []int64, values []float64) []defs.GlucoseEvent {
	return scan(times, values, valley,
		func(v float64) bool { return v < defs.CrashThreshold },
		0, defs.EventGlucoseCrash, "glucose crash below 54")
}

// HypoValleys are moderate lows in [54, 70).
func HypoValleys(times []int64, values []float64) []defs.GlucoseEvent {
	return scan(times, values, valley,
		func(v float64) bool { return v >= defs.CrashThreshold && v < defs.TargetLow },
		0, defs.EventHypoGlycemia, "hypoglycemic valley between 54 and 70")
}

// BroadValleys feed the scorer only.
func BroadValleys(times []int64, values []float64) []defs.GlucoseEvent {
	return scan(times, values, valley,
		func(v float64) bool { return v < defs.TargetLow+1 },
		0, defs.EventValleyDetected, "valley below target range")
}

// DayEvents is the persisted event list for one day: hyperglycemia and rush
// peaks followed by crash and hypoglycemia valleys, in detection order.
func DayEvents(times []int64, values []float64) []defs.GlucoseEvent {
	evs := []defs.GlucoseEvent{}
	evs = append(evs, HyperglycemiaPeaks(times, values)...)
	evs = append(evs, RushPeaks(times, values)...)
	evs = append(evs, CrashValleys(times, values)...)
	evs = append(evs, HypoValleys(times, values)...)
	return evs
}

// Empty-bucket fallbacks for the circadian partition.
const (
	defaultDayMean   = 80.0
	defaultNightMean = 90.0
)

// CircadianFactor partitions samples into a day bucket (local hour in
// [7, 16)) and its complement, and returns |dayMean-nightMean|/dayMean
// rounded to two decimals. A zero day mean reports the -1 sentinel.
func CircadianFactor(times []int64, values []float64, loc *time.Location) float64 {
	day := []float64{}
	night := []float64{}
	for i, ts := range times {
		hour := time.UnixMilli(ts).In(loc).Hour()
		if hour >= 7 && hour < 16 {
			day = append(day, values[i])
		} else {
			night = append(night, values[i])
		}
	}

	dayMean := defaultDayMean
	if len(day) > 0 {
		dayMean, _ = stats.Mean(day)
	}
	nightMean := defaultNightMean
	if len(night) > 0 {
		nightMean, _ = stats.Mean(night)
	}
	if dayMean == 0 {
		return -1
	}

	diff := dayMean - nightMean
	if diff < 0 {
		diff = -diff
	}
	factor, _ := stats.Round(diff/dayMean, 2)
	return factor
}

// UnknownEvents surfaces rise precursors not explained by a labeled peak.
// For each broad peak above 120 and above the window average, the rise
// onset is found by walking back while values are strictly climbing; the
// precursor is the latest sample more than fifteen minutes older than the
// onset. Candidates collapse to the first per rolling two-hour gap.
func UnknownEvents(times []int64, values []float64) []defs.GlucoseEvent {
	if len(values) == 0 {
		return []defs.GlucoseEvent{}
	}
	avg, _ := stats.Mean(values)

	candidates := []int{}
	for _, ev := range BroadPeaks(times, values) {
		if ev.Value <= 120 || ev.Value <= avg {
			continue
		}

		p := indexOf(times, ev.Timestamp)
		onset := p
		for onset > 0 && values[onset-1] < values[onset] {
			onset--
		}

		for k := len(times) - 1; k >= 0; k-- {
			if times[onset]-times[k] > defs.EventDedupMs {
				candidates = append(candidates, k)
				break
			}
		}
	}

	out := []defs.GlucoseEvent{}
	var lastKept int64
	for _, idx := range candidates {
		ts := times[idx]
		if len(out) > 0 && absDiff(ts, lastKept) <= defs.UnknownEventGapMs {
			continue
		}
		out = append(out, defs.GlucoseEvent{
			Type:        defs.EventUnknown,
			Timestamp:   ts,
			Value:       values[idx],
			Description: "possible unlogged event preceding a rise",
		})
		lastKept = ts
	}
	return out
}

func indexOf(times []int64, ts int64) int {
	for i, t := range times {
		if t == ts {
			return i
		}
	}
	return 0
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
