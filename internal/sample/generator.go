// Package sample generates deterministic development data for the journal.
// Generation is an explicit call with an injected seed, never an import-time
// side effect, so tests and seed runs are reproducible.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"tradecraft/internal/domain"
)

var (
	symbols = []string{"AAPL", "TSLA", "MSFT", "GOOG", "SPY", "QQQ"}
	tags    = []string{"swing", "daytrade", "earnings", "options", "longterm", "scalp"}
)

// Config controls the shape of the generated data set.
type Config struct {
	Seed         int64
	Days         int // How many calendar days back from Now to cover
	TradesPerDay int
	Now          time.Time // Reference "today"; zero means time.Now()
}

// Generate produces trades over the last cfg.Days weekdays. Roughly 20% of
// trades stay open with only their entry leg; the rest get an exit leg the
// same day, winning about half the time.
func Generate(cfg Config) ([]*domain.Trade, error) {
	if cfg.Days <= 0 {
		cfg.Days = 90
	}
	if cfg.TradesPerDay <= 0 {
		cfg.TradesPerDay = 2
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var trades []*domain.Trade
	for offset := cfg.Days; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for i := 0; i < cfg.TradesPerDay; i++ {
			trade, err := generateTrade(rng, day)
			if err != nil {
				return nil, err
			}
			trades = append(trades, trade)
		}
	}
	return trades, nil
}

func generateTrade(rng *rand.Rand, day time.Time) (*domain.Trade, error) {
	symbol := symbols[rng.Intn(len(symbols))]
	qty := float64(1 + rng.Intn(20))
	entryPrice := float64(90 + rng.Intn(21))
	openAt := time.Date(day.Year(), day.Month(), day.Day(), 9, 30+rng.Intn(30), 0, 0, day.Location())

	tagCount := 1 + rng.Intn(2)
	picked := make([]string, 0, tagCount)
	for _, idx := range rng.Perm(len(tags))[:tagCount] {
		picked = append(picked, tags[idx])
	}

	trade, err := domain.NewTrade(domain.TradeInput{
		Symbol:    symbol,
		AssetType: string(domain.AssetStock),
		Notes:     fmt.Sprintf("Sample trade on %s", symbol),
		Tags:      picked,
		Opening: domain.LegInput{
			Action:     string(domain.ActionBuy),
			Quantity:   qty,
			Price:      entryPrice,
			Fee:        round2(rng.Float64()),
			ExecutedAt: openAt,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sample trade generation: %w", err)
	}

	// ~20% stay open with only the entry leg.
	if rng.Float64() < 0.2 {
		return &trade, nil
	}

	move := float64(1 + rng.Intn(10))
	if rng.Float64() < 0.5 {
		move = -move
	}
	closeAt := openAt.Add(time.Duration(1+rng.Intn(6)) * time.Hour)
	exit, err := domain.NewLeg(trade.AssetType, domain.LegInput{
		Action:     string(domain.ActionSell),
		Quantity:   qty,
		Price:      math.Max(entryPrice+move, 1),
		Fee:        round2(rng.Float64()),
		ExecutedAt: closeAt,
	})
	if err != nil {
		return nil, fmt.Errorf("sample exit leg generation: %w", err)
	}
	exit.TradeID = trade.ID
	trade.Legs = append(trade.Legs, exit)
	trade.ClosedAt = closeAt
	return &trade, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
