package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	symbolPattern = regexp.MustCompile(`^[A-Z0-9._-]+$`)
	tagPattern    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

const maxNotesLen = 1000

// Trade is an identified position in one symbol, composed of one or more
// execution legs. The derived analytics (totals, averages, realized P&L,
// status) are never stored on the trade; they are computed on demand from
// the legs.
type Trade struct {
	ID        string    // Unique identifier for the trade
	Symbol    string    // Instrument symbol (e.g. "AAPL")
	AssetType AssetType // Instrument class
	OpenedAt  time.Time // Timestamp of the first leg
	ClosedAt  time.Time // Zero while any quantity remains open
	Notes     string    // Free-text journal entry
	Tags      TagSet    // Case-insensitive, deduplicated labels
	Legs      []Leg     // Ordered by ExecutedAt ascending
}

// TradeInput is the unvalidated boundary form of a trade.
type TradeInput struct {
	Symbol    string `validate:"required,symbol"`
	AssetType string `validate:"required"`
	Notes     string
	Tags      []string
	Opening   LegInput // Every trade carries its opening leg at creation
}

// NewTrade validates the input and returns a Trade holding its opening leg.
func NewTrade(in TradeInput) (Trade, error) {
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if err := validate.Struct(in); err != nil {
		return Trade{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	assetType := AssetType(in.AssetType)
	if !assetType.IsValid() {
		return Trade{}, fmt.Errorf("%w: unknown asset type %q", ErrValidation, in.AssetType)
	}
	if len(in.Notes) > maxNotesLen {
		return Trade{}, fmt.Errorf("%w: notes cannot exceed %d characters", ErrValidation, maxNotesLen)
	}
	tags, err := NewTagSet(in.Tags...)
	if err != nil {
		return Trade{}, err
	}
	opening, err := NewLeg(assetType, in.Opening)
	if err != nil {
		return Trade{}, fmt.Errorf("opening leg: %w", err)
	}

	id := uuid.NewString()
	opening.TradeID = id
	return Trade{
		ID:        id,
		Symbol:    in.Symbol,
		AssetType: assetType,
		OpenedAt:  opening.ExecutedAt,
		Notes:     in.Notes,
		Tags:      tags,
		Legs:      []Leg{opening},
	}, nil
}

// IsClosed reports whether the trade has a closing timestamp.
func (t *Trade) IsClosed() bool {
	return !t.ClosedAt.IsZero()
}

// AnchorTime is the timestamp trades are filtered and sorted by: the closing
// time when closed, else the opening time, so open trades still participate
// in today/this-week views by entry date.
func (t *Trade) AnchorTime() time.Time {
	if t.IsClosed() {
		return t.ClosedAt
	}
	return t.OpenedAt
}

// FirstLeg returns the earliest leg, or nil for a legless record.
func (t *Trade) FirstLeg() *Leg {
	if len(t.Legs) == 0 {
		return nil
	}
	return &t.Legs[0]
}

// LastLeg returns the latest leg, or nil for a legless record.
func (t *Trade) LastLeg() *Leg {
	if len(t.Legs) == 0 {
		return nil
	}
	return &t.Legs[len(t.Legs)-1]
}
