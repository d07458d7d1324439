// Package window slices sample maps into calendar-day and arbitrary
// [start, end) ranges.
package window

import (
	"glyco/engine/defs"
	"sort"
	"time"
)

// ExtractRange returns the subset of samples with timestamp in [start, end).
func ExtractRange(samples defs.SampleMap, start, end int64) defs.SampleMap {
	out := defs.SampleMap{}
	for ts, v := range samples {
		if ts >= start && ts < end {
			out[ts] = v
		}
	}
	return out
}

// DayStart returns the epoch-ms local midnight of the day containing ts.
func DayStart(ts int64, loc *time.Location) int64 {
	t := time.UnixMilli(ts).In(loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return midnight.UnixMilli()
}

// DayWindow returns the midnight-to-midnight window starting at dayStart.
func DayWindow(samples defs.SampleMap, dayStart int64) defs.SampleMap {
	return ExtractRange(samples, dayStart, dayStart+defs.DayMs)
}

// DayAndPrior returns the dayStart window together with the 24 hours
// preceding it, for delta reporting.
func DayAndPrior(samples defs.SampleMap, dayStart int64) (today, prior defs.SampleMap) {
	return DayWindow(samples, dayStart), DayWindow(samples, dayStart-defs.DayMs)
}

// Series flattens a sample map into ascending parallel slices.
func Series(samples defs.SampleMap) ([]int64, []float64) {
	times := make([]int64, 0, len(samples))
	for ts := range samples {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	values := make([]float64, len(times))
	for i, ts := range times {
		values[i] = samples[ts]
	}
	return times, values
}

// UTCDayKey buckets a timestamp into its UTC calendar day.
func UTCDayKey(ts int64) string {
	return time.UnixMilli(ts).UTC().Format("2006-01-02")
}
