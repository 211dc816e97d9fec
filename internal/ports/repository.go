package ports

import (
	"context"

	"tradecraft/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving journal
// trades with their execution legs.
type TradeRepository interface {
	// CreateTrade saves a new trade together with its opening leg.
	CreateTrade(ctx context.Context, trade *domain.Trade) error
	// AppendLeg adds an execution to an existing trade and maintains the
	// trade's closing timestamp: set when the leg nets the open quantity to
	// zero, cleared when a later leg moves it away from zero again.
	AppendLeg(ctx context.Context, tradeID string, leg domain.Leg) error
	// FindByID retrieves a trade with its legs eagerly loaded, ordered by
	// execution time ascending. Returns nil, nil when not found.
	FindByID(ctx context.Context, id string) (*domain.Trade, error)
	// FindAll retrieves all trades with legs loaded, ordered by opening time
	// ascending.
	FindAll(ctx context.Context) ([]*domain.Trade, error)
	// FindLegs retrieves the legs of a trade ordered by execution time
	// ascending.
	FindLegs(ctx context.Context, tradeID string) ([]domain.Leg, error)
	// UpdateNotes replaces the free-text journal entry of a trade.
	UpdateNotes(ctx context.Context, id string, notes string) error
	// SetTags replaces the tag set of a trade.
	SetTags(ctx context.Context, id string, tags domain.TagSet) error
	// DeleteTrade removes a trade; its legs are destroyed with it.
	DeleteTrade(ctx context.Context, id string) error
}
