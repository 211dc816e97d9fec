package app

import (
	"context"
	"sort"
	"testing"
	"time"

	"tradecraft/internal/analytics"
	"tradecraft/internal/domain"
	"tradecraft/internal/filter"
	"tradecraft/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// memoryRepo is an in-memory ports.TradeRepository mirroring the SQLite
// adapter's close-time maintenance.
type memoryRepo struct {
	trades map[string]*domain.Trade
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{trades: make(map[string]*domain.Trade)}
}

func (r *memoryRepo) CreateTrade(ctx context.Context, trade *domain.Trade) error {
	cp := *trade
	r.trades[trade.ID] = &cp
	return nil
}

func (r *memoryRepo) AppendLeg(ctx context.Context, tradeID string, leg domain.Leg) error {
	trade, ok := r.trades[tradeID]
	if !ok {
		return ports.ErrNotFound
	}
	leg.TradeID = tradeID
	trade.Legs = append(trade.Legs, leg)
	sort.SliceStable(trade.Legs, func(i, j int) bool {
		return trade.Legs[i].ExecutedAt.Before(trade.Legs[j].ExecutedAt)
	})
	closedAt, closed, err := analytics.CloseTime(trade.Legs)
	if err != nil {
		return err
	}
	trade.OpenedAt = trade.Legs[0].ExecutedAt
	if closed {
		trade.ClosedAt = closedAt
	} else {
		trade.ClosedAt = time.Time{}
	}
	return nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*domain.Trade, error) {
	trade, ok := r.trades[id]
	if !ok {
		return nil, nil
	}
	return trade, nil
}

func (r *memoryRepo) FindAll(ctx context.Context) ([]*domain.Trade, error) {
	out := make([]*domain.Trade, 0, len(r.trades))
	for _, trade := range r.trades {
		out = append(out, trade)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out, nil
}

func (r *memoryRepo) FindLegs(ctx context.Context, tradeID string) ([]domain.Leg, error) {
	trade, ok := r.trades[tradeID]
	if !ok {
		return []domain.Leg{}, nil
	}
	return trade.Legs, nil
}

func (r *memoryRepo) UpdateNotes(ctx context.Context, id string, notes string) error {
	trade, ok := r.trades[id]
	if !ok {
		return ports.ErrNotFound
	}
	trade.Notes = notes
	return nil
}

func (r *memoryRepo) SetTags(ctx context.Context, id string, tags domain.TagSet) error {
	trade, ok := r.trades[id]
	if !ok {
		return ports.ErrNotFound
	}
	trade.Tags = tags
	return nil
}

func (r *memoryRepo) DeleteTrade(ctx context.Context, id string) error {
	if _, ok := r.trades[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.trades, id)
	return nil
}

var testNow = time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC) // a Thursday

func newTestService(t *testing.T) (*JournalService, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc, err := NewJournalService(&mockLogger{}, repo, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return svc, repo
}

func openingInput(symbol string, at time.Time, tags ...string) domain.TradeInput {
	return domain.TradeInput{
		Symbol:    symbol,
		AssetType: "stock",
		Tags:      tags,
		Opening: domain.LegInput{
			Action:     "buy",
			Quantity:   10,
			Price:      100,
			ExecutedAt: at,
		},
	}
}

func closeAt(t *testing.T, svc *JournalService, tradeID string, price float64, at time.Time) {
	t.Helper()
	err := svc.AppendLeg(context.Background(), tradeID, domain.LegInput{
		Action:     "sell",
		Quantity:   10,
		Price:      price,
		ExecutedAt: at,
	})
	require.NoError(t, err)
}

func TestNewJournalServiceRequiresDependencies(t *testing.T) {
	_, err := NewJournalService(nil, newMemoryRepo())
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewJournalService(&mockLogger{}, nil)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestRecordTrade(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	trade, err := svc.RecordTrade(ctx, openingInput("aapl", testNow.Add(-time.Hour), "swing"))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", trade.Symbol, "symbol must be upper-cased")
	assert.NotEmpty(t, trade.ID)
	require.Len(t, trade.Legs, 1)

	stored, ok := repo.trades[trade.ID]
	require.True(t, ok)
	assert.Equal(t, trade.ID, stored.ID)
}

func TestRecordTradeValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordTrade(context.Background(), openingInput("bad symbol!", testNow))
	assert.ErrorIs(t, err, domain.ErrValidation)

	in := openingInput("AAPL", testNow)
	in.Opening.Quantity = 0
	_, err = svc.RecordTrade(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAppendLegChecksAssetType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	trade, err := svc.RecordTrade(ctx, openingInput("AAPL", testNow.Add(-time.Hour)))
	require.NoError(t, err)

	// Option-only actions are rejected for a stock trade.
	err = svc.AppendLeg(ctx, trade.ID, domain.LegInput{
		Action:     "sell_to_close",
		Quantity:   10,
		Price:      110,
		ExecutedAt: testNow,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.AppendLeg(ctx, "no-such-trade", domain.LegInput{
		Action:     "sell",
		Quantity:   10,
		Price:      110,
		ExecutedAt: testNow,
	})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestAppendLegClosesTrade(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	opened := testNow.Add(-3 * time.Hour)
	trade, err := svc.RecordTrade(ctx, openingInput("TSLA", opened))
	require.NoError(t, err)

	closeAt(t, svc, trade.ID, 110, opened.Add(time.Hour))

	stored := repo.trades[trade.ID]
	assert.True(t, stored.IsClosed())
	assert.True(t, stored.ClosedAt.Equal(opened.Add(time.Hour)))
}

func TestSetTagsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	trade, err := svc.RecordTrade(ctx, openingInput("AAPL", testNow))
	require.NoError(t, err)

	err = svc.SetTags(ctx, trade.ID, []string{"has space"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.SetTags(ctx, trade.ID, []string{"Swing", "swing", "earnings"}))
	found, err := svc.repo.FindByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"earnings", "swing"}, found.Tags.Slice())
}

func TestTradesSortedByAnchorTime(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// First trade opens earlier but closes later than the second one.
	early := testNow.Add(-6 * time.Hour)
	a, err := svc.RecordTrade(ctx, openingInput("AAPL", early))
	require.NoError(t, err)
	b, err := svc.RecordTrade(ctx, openingInput("TSLA", early.Add(time.Hour)))
	require.NoError(t, err)
	closeAt(t, svc, b.ID, 110, early.Add(2*time.Hour))
	closeAt(t, svc, a.ID, 110, early.Add(4*time.Hour))

	trades, err := svc.Trades(ctx, filter.Spec{})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "TSLA", trades[0].Trade.Symbol)
	assert.Equal(t, "AAPL", trades[1].Trade.Symbol)
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	opened := testNow.Add(-5 * time.Hour)
	win, err := svc.RecordTrade(ctx, openingInput("AAPL", opened, "swing"))
	require.NoError(t, err)
	closeAt(t, svc, win.ID, 110, opened.Add(time.Hour)) // +100

	loss, err := svc.RecordTrade(ctx, openingInput("TSLA", opened.Add(time.Hour), "daytrade"))
	require.NoError(t, err)
	closeAt(t, svc, loss.ID, 96, opened.Add(2*time.Hour)) // -40

	stats, err := svc.Summary(ctx, filter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 60.0, stats.TotalPnL, 1e-9)
	require.True(t, stats.WinRate.Valid)
	assert.InDelta(t, 50.0, stats.WinRate.Pct, 1e-9)

	// Filters narrow the summary.
	swing, err := svc.Summary(ctx, filter.Spec{Tags: []string{"swing"}})
	require.NoError(t, err)
	assert.Equal(t, 1, swing.TotalTrades)
	assert.InDelta(t, 100.0, swing.TotalPnL, 1e-9)
}

func TestCurveGranularityPolicy(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	opened := testNow.Add(-4 * time.Hour) // 11:00 today
	trade, err := svc.RecordTrade(ctx, openingInput("AAPL", opened))
	require.NoError(t, err)
	closeAt(t, svc, trade.ID, 110, opened.Add(time.Hour)) // closes 12:00 today

	// Single-day quick ranges get hourly buckets.
	labels, cumulative, err := svc.Curve(ctx, filter.Spec{QuickRange: filter.RangeToday})
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "03/07/2024 12:00", labels[0])
	assert.Equal(t, []float64{100}, cumulative)

	// Everything else gets daily buckets.
	labels, cumulative, err = svc.Curve(ctx, filter.Spec{})
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "03/07/2024", labels[0])
	assert.Equal(t, []float64{100}, cumulative)
}

func TestTotalPnLMatchesPerTradeSum(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	opened := testNow.Add(-8 * time.Hour)
	exits := []float64{110, 96, 103, 100}
	for i, exit := range exits {
		at := opened.Add(time.Duration(i) * time.Hour)
		trade, err := svc.RecordTrade(ctx, openingInput("AAPL", at))
		require.NoError(t, err)
		closeAt(t, svc, trade.ID, exit, at.Add(30*time.Minute))
	}

	trades, err := svc.Trades(ctx, filter.Spec{})
	require.NoError(t, err)
	var sum float64
	for _, tr := range trades {
		sum += tr.Analytics.RealizedPnL
	}

	stats, err := svc.Summary(ctx, filter.Spec{})
	require.NoError(t, err)
	assert.InDelta(t, sum, stats.TotalPnL, 1e-9)
}
