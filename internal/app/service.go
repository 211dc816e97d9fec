package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tradecraft/internal/analytics"
	"tradecraft/internal/domain"
	"tradecraft/internal/filter"
	"tradecraft/internal/ports"
)

// JournalService orchestrates the trading journal: recording trades and
// legs through the repository and producing filtered analytics over them.
type JournalService struct {
	logger ports.Logger
	repo   ports.TradeRepository
	now    func() time.Time // injectable clock for quick-range resolution
}

// Option customizes a JournalService.
type Option func(*JournalService)

// WithClock overrides the time source used to resolve quick ranges.
func WithClock(now func() time.Time) Option {
	return func(s *JournalService) { s.now = now }
}

// NewJournalService creates a new application service instance.
func NewJournalService(logger ports.Logger, repo ports.TradeRepository, opts ...Option) (*JournalService, error) {
	if logger == nil || repo == nil {
		return nil, fmt.Errorf("%w: journal service requires logger and repository", ports.ErrConfigurationError)
	}
	s := &JournalService{logger: logger, repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RecordTrade validates and persists a new trade with its opening leg.
func (s *JournalService) RecordTrade(ctx context.Context, in domain.TradeInput) (*domain.Trade, error) {
	trade, err := domain.NewTrade(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateTrade(ctx, &trade); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}
	s.logger.Info(ctx, "Trade recorded", map[string]interface{}{
		"tradeID": trade.ID, "symbol": trade.Symbol, "assetType": trade.AssetType,
	})
	return &trade, nil
}

// AppendLeg validates a new execution against the trade's asset type and
// appends it. The repository maintains the closing timestamp, including the
// reopen case.
func (s *JournalService) AppendLeg(ctx context.Context, tradeID string, in domain.LegInput) error {
	trade, err := s.repo.FindByID(ctx, tradeID)
	if err != nil {
		return err
	}
	if trade == nil {
		return fmt.Errorf("trade %s: %w", tradeID, ports.ErrNotFound)
	}
	leg, err := domain.NewLeg(trade.AssetType, in)
	if err != nil {
		return err
	}
	if err := s.repo.AppendLeg(ctx, tradeID, leg); err != nil {
		return fmt.Errorf("failed to append leg: %w", err)
	}
	s.logger.Info(ctx, "Leg appended", map[string]interface{}{
		"tradeID": tradeID, "action": leg.Action, "quantity": leg.Quantity,
	})
	return nil
}

// Import persists pre-built trades with their legs. Used by the seed
// command and data migrations.
func (s *JournalService) Import(ctx context.Context, trades []*domain.Trade) error {
	for _, t := range trades {
		if err := s.repo.CreateTrade(ctx, t); err != nil {
			return fmt.Errorf("failed to import trade %s: %w", t.ID, err)
		}
	}
	s.logger.Info(ctx, "Trades imported", map[string]interface{}{"count": len(trades)})
	return nil
}

// UpdateNotes replaces the journal entry of a trade.
func (s *JournalService) UpdateNotes(ctx context.Context, tradeID, notes string) error {
	return s.repo.UpdateNotes(ctx, tradeID, notes)
}

// SetTags validates and replaces the tag set of a trade.
func (s *JournalService) SetTags(ctx context.Context, tradeID string, tags []string) error {
	set, err := domain.NewTagSet(tags...)
	if err != nil {
		return err
	}
	return s.repo.SetTags(ctx, tradeID, set)
}

// DeleteTrade removes a trade and its legs.
func (s *JournalService) DeleteTrade(ctx context.Context, tradeID string) error {
	return s.repo.DeleteTrade(ctx, tradeID)
}

// Trades loads, filters and aggregates the journal. The result is ordered by
// anchor time ascending, which is the ordering the streak metrics assume.
func (s *JournalService) Trades(ctx context.Context, spec filter.Spec) ([]analytics.AnalyzedTrade, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	matched := filter.Apply(all, spec, s.now())
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].AnchorTime().Before(matched[j].AnchorTime())
	})
	analyzed, err := analytics.AnalyzeTrades(matched)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Trades loaded", map[string]interface{}{
		"total": len(all), "matched": len(matched),
	})
	return analyzed, nil
}

// Summary computes portfolio statistics over the filtered journal.
func (s *JournalService) Summary(ctx context.Context, spec filter.Spec) (analytics.PortfolioStats, error) {
	trades, err := s.Trades(ctx, spec)
	if err != nil {
		return analytics.PortfolioStats{}, err
	}
	return analytics.Summarize(trades), nil
}

// Curve builds the cumulative-P&L series for the filtered journal. Hourly
// buckets are used for single-day quick ranges (today, yesterday), daily
// buckets otherwise; this policy lives here, not in the builder.
func (s *JournalService) Curve(ctx context.Context, spec filter.Spec) (labels []string, cumulative []float64, err error) {
	trades, err := s.Trades(ctx, spec)
	if err != nil {
		return nil, nil, err
	}
	granularity := analytics.GranularityDay
	if spec.QuickRange.IsSingleDay() {
		granularity = analytics.GranularityHour
	}
	labels, cumulative = analytics.BuildCurve(trades, granularity)
	return labels, cumulative, nil
}
