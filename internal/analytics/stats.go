package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"tradecraft/internal/domain"
)

// NoTagsLabel is the bucket untagged trades report under in per-tag
// breakdowns. It is never applied as a real tag on the trade itself.
const NoTagsLabel = "--NO TAGS--"

// Trading-hour axis for the per-hour P&L breakdown. Hours in this range are
// always present in ByHour, zero-filled like the weekday breakdown.
const (
	tradingHourStart = 9
	tradingHourEnd   = 18
)

// AnalyzedTrade pairs a trade with its aggregated figures so the statistics
// and equity-curve passes do not re-run aggregation per metric.
type AnalyzedTrade struct {
	Trade     *domain.Trade
	Analytics TradeAnalytics
}

// AnalyzeTrades aggregates every trade once. A trade with no legs is a
// precondition failure and aborts the whole batch.
func AnalyzeTrades(trades []*domain.Trade) ([]AnalyzedTrade, error) {
	out := make([]AnalyzedTrade, 0, len(trades))
	for _, t := range trades {
		a, err := Analyze(t.Legs)
		if err != nil {
			return nil, fmt.Errorf("trade %s: %w", t.ID, err)
		}
		out = append(out, AnalyzedTrade{Trade: t, Analytics: a})
	}
	return out, nil
}

// WinRate is a percentage with an explicit validity flag: with no closed
// trades the ratio is undefined and renders as a dash rather than zero.
type WinRate struct {
	Pct   float64
	Valid bool
}

func (w WinRate) String() string {
	if !w.Valid {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", w.Pct)
}

// Breakdown is a per-tag or per-symbol statistics row.
type Breakdown struct {
	Label       string
	Trades      int     // Closed (WIN/LOSS) trades in the bucket
	PnL         float64 // Summed realized P&L
	AvgPct      float64 // Plain mean of per-trade percentage returns
	WeightedPct float64 // Notional-weighted mean percentage return
}

// PortfolioStats holds portfolio-level metrics over a trade collection.
// Streak fields assume the input is ordered by close time; Summarize does
// not re-sort.
type PortfolioStats struct {
	TotalTrades int
	Wins        int
	Losses      int
	TotalPnL    float64 // Includes open trades' partial realized P&L
	WinRate     WinRate
	AvgWin      float64
	AvgLoss     float64
	AvgWinPct   float64
	AvgLossPct  float64
	Expectancy  float64
	// ProfitFactor is +Inf when there are gross wins and no gross losses,
	// and 0 when there are neither.
	ProfitFactor float64
	WinStreak    int
	LossStreak   int
	TopWin       float64
	TopLoss      float64
	TopWinPct    float64
	TopLossPct   float64
	AvgDailyVol  float64 // Trades per distinct calendar day with an entry
	AvgSize      float64 // Mean opening-leg quantity
	AvgWinHold   time.Duration
	AvgLossHold  time.Duration
	ByTag        []Breakdown
	BySymbol     []Breakdown
	ByWeekday    map[time.Weekday]float64 // P&L keyed by closing weekday, all seven present
	ByHour       map[int]float64          // P&L keyed by closing hour; trading hours 9-18 always present
}

// PctReturn is the per-trade percentage return derived from the aggregated
// average prices. Using the averages rather than first/second leg indexing
// keeps scale-ins and partial fills correct.
func (at AnalyzedTrade) PctReturn() float64 {
	if at.Analytics.AvgBuyPrice == 0 {
		return 0
	}
	return (at.Analytics.AvgSellPrice - at.Analytics.AvgBuyPrice) / at.Analytics.AvgBuyPrice * 100
}

// HoldTime is the span between the first and last execution. Only meaningful
// for closed trades.
func (at AnalyzedTrade) HoldTime() time.Duration {
	first, last := at.Trade.FirstLeg(), at.Trade.LastLeg()
	if first == nil || last == nil {
		return 0
	}
	return last.ExecutedAt.Sub(first.ExecutedAt)
}

// Summarize computes portfolio statistics over the given trades. Every
// ratio guards its denominator and reports a defined sentinel instead of
// panicking on degenerate input; Summarize(nil) is valid and returns zeros.
func Summarize(trades []AnalyzedTrade) PortfolioStats {
	stats := PortfolioStats{
		ByWeekday: make(map[time.Weekday]float64, 7),
		ByHour:    make(map[int]float64),
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		stats.ByWeekday[d] = 0
	}
	// 9 AM through 6 PM, the dashboard's trading-hour axis. Activity outside
	// the range still gets its own bucket rather than being dropped.
	for h := tradingHourStart; h <= tradingHourEnd; h++ {
		stats.ByHour[h] = 0
	}

	var (
		grossWin, grossLoss   float64
		winPctSum, lossPctSum float64
		winHoldSum            time.Duration
		lossHoldSum           time.Duration
		curWinRun, curLossRun int
		sizeSum               float64
		sizedTrades           int
		entryDays             = make(map[string]struct{})
	)

	for _, at := range trades {
		a := at.Analytics
		stats.TotalTrades++
		stats.TotalPnL += a.RealizedPnL

		if first := at.Trade.FirstLeg(); first != nil {
			sizeSum += first.Quantity
			sizedTrades++
			entryDays[first.ExecutedAt.Format("2006-01-02")] = struct{}{}
		}

		switch a.Status {
		case domain.StatusWin:
			stats.Wins++
			grossWin += a.RealizedPnL
			pct := at.PctReturn()
			winPctSum += pct
			winHoldSum += at.HoldTime()
			if stats.Wins == 1 || a.RealizedPnL > stats.TopWin {
				stats.TopWin = a.RealizedPnL
			}
			if stats.Wins == 1 || pct > stats.TopWinPct {
				stats.TopWinPct = pct
			}
			curWinRun++
			curLossRun = 0
		case domain.StatusLoss:
			stats.Losses++
			grossLoss += -a.RealizedPnL
			pct := at.PctReturn()
			lossPctSum += pct
			lossHoldSum += at.HoldTime()
			if stats.Losses == 1 || a.RealizedPnL < stats.TopLoss {
				stats.TopLoss = a.RealizedPnL
			}
			if stats.Losses == 1 || pct < stats.TopLossPct {
				stats.TopLossPct = pct
			}
			curLossRun++
			curWinRun = 0
		default:
			curWinRun = 0
			curLossRun = 0
		}
		if curWinRun > stats.WinStreak {
			stats.WinStreak = curWinRun
		}
		if curLossRun > stats.LossStreak {
			stats.LossStreak = curLossRun
		}

		if a.Status == domain.StatusWin || a.Status == domain.StatusLoss {
			anchor := at.Trade.AnchorTime()
			stats.ByWeekday[anchor.Weekday()] += a.RealizedPnL
			stats.ByHour[anchor.Hour()] += a.RealizedPnL
		}
	}

	closed := stats.Wins + stats.Losses
	if closed > 0 {
		stats.WinRate = WinRate{Pct: float64(stats.Wins) / float64(closed) * 100, Valid: true}
	}
	if stats.Wins > 0 {
		stats.AvgWin = grossWin / float64(stats.Wins)
		stats.AvgWinPct = winPctSum / float64(stats.Wins)
		stats.AvgWinHold = winHoldSum / time.Duration(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AvgLoss = -grossLoss / float64(stats.Losses)
		stats.AvgLossPct = lossPctSum / float64(stats.Losses)
		stats.AvgLossHold = lossHoldSum / time.Duration(stats.Losses)
	}
	if closed > 0 {
		winFrac := float64(stats.Wins) / float64(closed)
		stats.Expectancy = winFrac*stats.AvgWin + (1-winFrac)*stats.AvgLoss
	}
	switch {
	case grossLoss > 0:
		stats.ProfitFactor = grossWin / grossLoss
	case grossWin > 0:
		stats.ProfitFactor = math.Inf(1)
	default:
		stats.ProfitFactor = 0
	}
	if len(entryDays) > 0 {
		stats.AvgDailyVol = float64(stats.TotalTrades) / float64(len(entryDays))
	}
	if sizedTrades > 0 {
		stats.AvgSize = sizeSum / float64(sizedTrades)
	}

	stats.ByTag = breakdownBy(trades, func(at AnalyzedTrade) []string {
		if len(at.Trade.Tags) == 0 {
			return []string{NoTagsLabel}
		}
		return at.Trade.Tags.Slice()
	})
	stats.BySymbol = breakdownBy(trades, func(at AnalyzedTrade) []string {
		return []string{at.Trade.Symbol}
	})
	return stats
}

// breakdownBy groups closed trades into labeled buckets; a trade contributes
// to every label it carries.
func breakdownBy(trades []AnalyzedTrade, labels func(AnalyzedTrade) []string) []Breakdown {
	type bucket struct {
		count       int
		pnl         float64
		pctSum      float64
		weightedSum float64 // Σ(pct × notional)
		notionalSum float64
	}
	buckets := make(map[string]*bucket)

	for _, at := range trades {
		a := at.Analytics
		if a.Status != domain.StatusWin && a.Status != domain.StatusLoss {
			continue
		}
		pct := at.PctReturn()
		notional := math.Abs(a.BuyValue)
		for _, label := range labels(at) {
			b := buckets[label]
			if b == nil {
				b = &bucket{}
				buckets[label] = b
			}
			b.count++
			b.pnl += a.RealizedPnL
			b.pctSum += pct
			b.weightedSum += pct * notional
			b.notionalSum += notional
		}
	}

	out := make([]Breakdown, 0, len(buckets))
	for label, b := range buckets {
		row := Breakdown{
			Label:  label,
			Trades: b.count,
			PnL:    b.pnl,
			AvgPct: b.pctSum / float64(b.count),
		}
		if b.notionalSum > 0 {
			row.WeightedPct = b.weightedSum / b.notionalSum
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// FormatHold renders a duration for display using the largest non-zero unit,
// matching the journal's dashboard convention.
func FormatHold(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days == 1:
		return "1 DAY"
	case days > 1:
		return fmt.Sprintf("%d DAYS", days)
	case hours == 1:
		return "1 HR"
	case hours > 1:
		return fmt.Sprintf("%d HRS", hours)
	case mins >= 1:
		return fmt.Sprintf("%d MIN", mins)
	default:
		return "<1 MIN"
	}
}
