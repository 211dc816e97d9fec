package domain

// AssetType classifies the instrument a trade is taken in.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetOption AssetType = "option"
	AssetFuture AssetType = "future"
	AssetCrypto AssetType = "crypto"
	AssetForex  AssetType = "forex"
	AssetOther  AssetType = "other"
)

// IsValid reports whether the asset type is one of the known values.
func (a AssetType) IsValid() bool {
	switch a {
	case AssetStock, AssetOption, AssetFuture, AssetCrypto, AssetForex, AssetOther:
		return true
	}
	return false
}

// LegAction identifies the kind of execution a leg records.
type LegAction string

const (
	// Stock actions
	ActionBuy  LegAction = "buy"
	ActionSell LegAction = "sell"
	// Option actions
	ActionBuyToOpen   LegAction = "buy_to_open"
	ActionBuyToClose  LegAction = "buy_to_close"
	ActionSellToOpen  LegAction = "sell_to_open"
	ActionSellToClose LegAction = "sell_to_close"
	ActionAssign      LegAction = "assign"
	ActionExpire      LegAction = "expire"
	ActionExercise    LegAction = "exercise"
)

// actionsByAssetType restricts which actions a leg may carry per asset type.
// Asset types without an explicit entry accept the stock action set.
var actionsByAssetType = map[AssetType][]LegAction{
	AssetStock: {ActionBuy, ActionSell},
	AssetOption: {
		ActionBuyToOpen,
		ActionBuyToClose,
		ActionSellToOpen,
		ActionSellToClose,
		ActionAssign,
		ActionExpire,
		ActionExercise,
	},
}

// ValidActionsForAssetType returns the actions a leg on the given asset type
// may carry.
func ValidActionsForAssetType(a AssetType) []LegAction {
	if actions, ok := actionsByAssetType[a]; ok {
		return actions
	}
	return actionsByAssetType[AssetStock]
}

// ValidForAssetType reports whether the action is permitted on the asset type.
func (l LegAction) ValidForAssetType(a AssetType) bool {
	for _, action := range ValidActionsForAssetType(a) {
		if action == l {
			return true
		}
	}
	return false
}

// IsOpening reports whether the action adds to the position.
func (l LegAction) IsOpening() bool {
	return l == ActionBuy || l == ActionBuyToOpen
}

// IsClosing reports whether the action reduces the position. The terminal
// option events (assign, expire, exercise) close at the leg price with sell
// semantics.
func (l LegAction) IsClosing() bool {
	switch l {
	case ActionSell, ActionSellToClose, ActionAssign, ActionExpire, ActionExercise:
		return true
	}
	return false
}

// Status is the derived outcome of a trade. It is a pure function of the leg
// list and is never stored independently of the legs.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusWin       Status = "WIN"
	StatusLoss      Status = "LOSS"
	StatusBreakEven Status = "BREAK_EVEN"
)

// IsClosed reports whether the status represents a fully closed trade.
func (s Status) IsClosed() bool {
	return s == StatusWin || s == StatusLoss || s == StatusBreakEven
}
