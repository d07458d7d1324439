// Package aggregate implements the read path: merged multi-device sample
// sets summarized per calendar day and downsampled for display.
package aggregate

import (
	"glyco/engine/defs"
	"glyco/engine/pkg/window"
	"sort"

	"github.com/montanaflynn/stats"
)

// Display budget per day.
const maxDayPoints = 10

// DaySummary aggregates one UTC calendar day of readings.
type DaySummary struct {
	Date          string         `json:"date"`
	TotalReadings int            `json:"totalReadings"`
	Highest       defs.Reading   `json:"highest"`
	Lowest        defs.Reading   `json:"lowest"`
	NormalCount   int            `json:"normalCount"`
	NormalPercent float64        `json:"normalPercent"`
	NormalAverage float64        `json:"normalAverage"`
	LatestNormal  int64          `json:"latestNormal"`
	Points        []defs.Reading `json:"points"`
}

// Merge unions device sample maps; later maps win on identical keys.
func Merge(maps ...defs.SampleMap) defs.SampleMap {
	merged := defs.SampleMap{}
	for _, m := range maps {
		for ts, v := range m {
			merged[ts] = v
		}
	}
	return merged
}

// Summarize buckets samples in [start, end) by UTC day and aggregates each
// bucket, returning summaries in date order.
func Summarize(samples defs.SampleMap, start, end int64) []DaySummary {
	buckets := map[string][]defs.Reading{}
	for ts, v := range window.ExtractRange(samples, start, end) {
		key := window.UTCDayKey(ts)
		buckets[key] = append(buckets[key], defs.Reading{Timestamp: ts, Value: v})
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]DaySummary, 0, len(dates))
	for _, date := range dates {
		points := buckets[date]
		sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
		out = append(out, summarizeDay(date, points))
	}
	return out
}

func summarizeDay(date string, points []defs.Reading) DaySummary {
	ds := DaySummary{Date: date, TotalReadings: len(points)}

	var lowSeen bool
	normal := []float64{}
	for _, p := range points {
		if p.Value > ds.Highest.Value {
			ds.Highest = p
		}
		if p.Value > 0 && (!lowSeen || p.Value < ds.Lowest.Value) {
			ds.Lowest = p
			lowSeen = true
		}
		if p.Value >= defs.NormalBandLow && p.Value <= defs.NormalBandHigh {
			normal = append(normal, p.Value)
			ds.NormalCount++
			if p.Timestamp > ds.LatestNormal {
				ds.LatestNormal = p.Timestamp
			}
		}
	}

	if ds.NormalCount > 0 {
		ds.NormalPercent = float64(ds.NormalCount) / float64(len(points)) * 100
		ds.NormalAverage, _ = stats.Mean(normal)
	}

	if !lowSeen {
		ds.Lowest = fallbackLow(ds)
	}

	ds.Points = Downsample(points)
	return ds
}

// fallbackLow synthesizes a low when the day held no non-zero reading:
// 70% of the day's high floored at 70, else the normal-range average,
// else a literal 70.
func fallbackLow(ds DaySummary) defs.Reading {
	switch {
	case ds.Highest.Value > 0:
		low := ds.Highest.Value * 0.7
		if low < defs.NormalBandLow {
			low = defs.NormalBandLow
		}
		return defs.Reading{Value: low}
	case ds.NormalCount > 0:
		return defs.Reading{Value: ds.NormalAverage}
	}
	return defs.Reading{Value: defs.NormalBandLow}
}

// Downsample keeps a day's display list at or under ten points: small days
// pass through untouched, larger days keep the first and last chronological
// readings plus eight picked at a fixed stride.
func Downsample(points []defs.Reading) []defs.Reading {
	if len(points) <= maxDayPoints {
		return points
	}

	stride := len(points) / maxDayPoints
	out := make([]defs.Reading, 0, maxDayPoints)
	out = append(out, points[0])
	for k := 1; k <= maxDayPoints-2; k++ {
		out = append(out, points[k*stride])
	}
	return append(out, points[len(points)-1])
}
