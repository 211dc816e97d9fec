package analytics

import (
	"testing"
	"time"

	"tradecraft/internal/domain"
)

func TestBuildCurveDaily(t *testing.T) {
	jan := func(day int, pnlExit float64) AnalyzedTrade {
		at := time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC)
		return roundTrip(t, "AAPL", nil, 10, 50, pnlExit, at, time.Hour)
	}
	trades := []AnalyzedTrade{
		jan(1, 55), // +50 on 01/01
		jan(3, 48), // -20 on 01/03
	}

	labels, cumulative := BuildCurve(trades, GranularityDay)
	wantLabels := []string{"01/01/2024", "01/02/2024", "01/03/2024"}
	wantValues := []float64{50, 50, 30}
	if len(labels) != len(wantLabels) {
		t.Fatalf("Expected %d buckets, got %d (%v)", len(wantLabels), len(labels), labels)
	}
	for i := range wantLabels {
		if labels[i] != wantLabels[i] {
			t.Errorf("Bucket %d: expected label %q, got %q", i, wantLabels[i], labels[i])
		}
		if cumulative[i] != wantValues[i] {
			t.Errorf("Bucket %d: expected cumulative %f, got %f", i, wantValues[i], cumulative[i])
		}
	}
}

func TestBuildCurveHourly(t *testing.T) {
	at := func(hour int) time.Time { return time.Date(2024, 1, 5, hour, 15, 0, 0, time.UTC) }
	trades := []AnalyzedTrade{
		// Close times land at 10:15 and 13:45; buckets truncate to the hour.
		analyzed(t, "SPY", nil,
			leg(domain.ActionBuy, 10, 50, 0, at(9)),
			leg(domain.ActionSell, 10, 55, 0, at(10)),
		),
		analyzed(t, "SPY", nil,
			leg(domain.ActionBuy, 10, 50, 0, at(12)),
			leg(domain.ActionSell, 10, 49, 0, at(13).Add(30*time.Minute)),
		),
	}

	labels, cumulative := BuildCurve(trades, GranularityHour)
	wantLabels := []string{
		"01/05/2024 10:00",
		"01/05/2024 11:00",
		"01/05/2024 12:00",
		"01/05/2024 13:00",
	}
	wantValues := []float64{50, 50, 50, 40}
	if len(labels) != len(wantLabels) {
		t.Fatalf("Expected %d buckets, got %d (%v)", len(wantLabels), len(labels), labels)
	}
	for i := range wantLabels {
		if labels[i] != wantLabels[i] {
			t.Errorf("Bucket %d: expected label %q, got %q", i, wantLabels[i], labels[i])
		}
		if cumulative[i] != wantValues[i] {
			t.Errorf("Bucket %d: expected cumulative %f, got %f", i, wantValues[i], cumulative[i])
		}
	}
}

func TestBuildCurveExcludesOpenAndSingleLeg(t *testing.T) {
	open := analyzed(t, "TSLA", nil, leg(domain.ActionBuy, 10, 100, 0, baseTime))
	closed := roundTrip(t, "AAPL", nil, 10, 50, 60, baseTime, time.Hour)

	labels, cumulative := BuildCurve([]AnalyzedTrade{open, closed}, GranularityDay)
	if len(labels) != 1 || len(cumulative) != 1 {
		t.Fatalf("Expected a single bucket from the closed trade, got %v / %v", labels, cumulative)
	}
	if cumulative[0] != 100 {
		t.Errorf("Expected cumulative 100, got %f", cumulative[0])
	}
}

func TestBuildCurveEmpty(t *testing.T) {
	labels, cumulative := BuildCurve(nil, GranularityDay)
	if labels == nil || cumulative == nil {
		t.Error("Expected empty slices, not nil")
	}
	if len(labels) != 0 || len(cumulative) != 0 {
		t.Errorf("Expected empty curve, got %v / %v", labels, cumulative)
	}
}

func TestBuildCurveMixedLegLocations(t *testing.T) {
	// Legs may carry whatever location their source recorded; two closes on
	// the same UTC day must share one bucket regardless.
	cet := time.FixedZone("UTC+1", 3600)
	trades := []AnalyzedTrade{
		roundTrip(t, "AAPL", nil, 10, 50, 60, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), time.Hour), // +100
		roundTrip(t, "TSLA", nil, 10, 50, 60, time.Date(2024, 1, 5, 14, 0, 0, 0, cet), time.Hour),      // +100
	}

	labels, cumulative := BuildCurve(trades, GranularityDay)
	if len(labels) != 1 {
		t.Fatalf("Expected a single daily bucket, got %v", labels)
	}
	if labels[0] != "01/05/2024" {
		t.Errorf("Expected label 01/05/2024, got %q", labels[0])
	}
	if cumulative[0] != 200 {
		t.Errorf("Expected both trades' P&L in the bucket, got %f", cumulative[0])
	}
}

func TestBuildCurveMonotonicBuckets(t *testing.T) {
	trades := []AnalyzedTrade{
		roundTrip(t, "AAPL", nil, 10, 50, 60, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), time.Hour),
		roundTrip(t, "AAPL", nil, 10, 50, 60, time.Date(2024, 2, 9, 10, 0, 0, 0, time.UTC), time.Hour),
	}
	labels, _ := BuildCurve(trades, GranularityDay)
	// 02/01 through 02/09 inclusive, weekends included.
	if len(labels) != 9 {
		t.Errorf("Expected 9 continuous daily buckets, got %d (%v)", len(labels), labels)
	}
	for i := 1; i < len(labels); i++ {
		if labels[i] <= labels[i-1] {
			t.Errorf("Expected strictly increasing labels, got %q after %q", labels[i], labels[i-1])
		}
	}
}
