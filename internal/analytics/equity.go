package analytics

import (
	"time"

	"tradecraft/internal/domain"
)

// Granularity selects the bucket width of an equity curve.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

const (
	hourLabelFormat = "01/02/2006 15:00"
	dayLabelFormat  = "01/02/2006"
)

// BuildCurve produces a time-ordered cumulative-P&L series. Per-trade P&L is
// bucketed by the closing leg's timestamp truncated to the granularity, the
// bucket range is zero-filled across the entire continuous span (calendar
// days, weekends included), and a running sum over the sorted buckets forms
// the curve. Only closed WIN/LOSS trades with at least two legs contribute;
// with no contributing trades both slices are empty.
//
// The builder is granularity-agnostic: choosing hourly buckets for
// single-day windows is the caller's policy.
func BuildCurve(trades []AnalyzedTrade, granularity Granularity) (labels []string, cumulative []float64) {
	pnlByBucket := make(map[time.Time]float64)
	for _, at := range trades {
		a := at.Analytics
		if a.Status != domain.StatusWin && a.Status != domain.StatusLoss {
			continue
		}
		if len(at.Trade.Legs) < 2 {
			continue
		}
		closing := at.Trade.LastLeg().ExecutedAt
		// Bucket keys are normalized to UTC: map equality on time.Time is
		// struct equality, so legs carrying different locations would
		// otherwise land in buckets the zero-fill walk never visits.
		pnlByBucket[truncate(closing.UTC(), granularity)] += a.RealizedPnL
	}
	if len(pnlByBucket) == 0 {
		return []string{}, []float64{}
	}

	var first, last time.Time
	for bucket := range pnlByBucket {
		if first.IsZero() || bucket.Before(first) {
			first = bucket
		}
		if bucket.After(last) {
			last = bucket
		}
	}

	format := dayLabelFormat
	if granularity == GranularityHour {
		format = hourLabelFormat
	}

	var equity float64
	for bucket := first; !bucket.After(last); bucket = next(bucket, granularity) {
		equity += pnlByBucket[bucket]
		labels = append(labels, bucket.Format(format))
		cumulative = append(cumulative, equity)
	}
	return labels, cumulative
}

func truncate(t time.Time, g Granularity) time.Time {
	if g == GranularityHour {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func next(t time.Time, g Granularity) time.Time {
	if g == GranularityHour {
		return t.Add(time.Hour)
	}
	return t.AddDate(0, 0, 1)
}
