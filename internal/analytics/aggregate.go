package analytics

import (
	"errors"
	"time"

	"tradecraft/internal/domain"
)

// ErrNoLegs is returned when aggregation is asked to analyze a trade with an
// empty leg list. Every trade owns at least its opening leg, so an empty list
// is a data-integrity bug at the caller and must surface loudly rather than
// produce silent zeros.
var ErrNoLegs = errors.New("trade has no legs")

// TradeAnalytics holds the per-trade figures derived from the leg list.
type TradeAnalytics struct {
	TotalBought  float64 // Sum of quantities over opening-direction legs
	TotalSold    float64 // Sum of quantities over closing-direction legs
	BuyValue     float64 // Quantity-weighted sum of opening prices
	SellValue    float64 // Quantity-weighted sum of closing prices
	AvgBuyPrice  float64 // BuyValue / TotalBought, 0 when nothing bought
	AvgSellPrice float64 // SellValue / TotalSold, 0 when nothing sold
	TotalFees    float64 // Sum of fees over all legs
	RealizedPnL  float64 // SellValue - BuyValue - TotalFees
	OpenQty      float64 // TotalBought - TotalSold; negative means over-selling
	Status       domain.Status
}

// Analyze computes TradeAnalytics from an ordered leg list. It is a pure
// function: no side effects, safe to call repeatedly and concurrently.
//
// While the trade is open, RealizedPnL is the partial realized P&L on the
// already-closed portion (whatever sells have occurred against the buys).
// It is not a mark-to-market figure; no live price feed exists here.
func Analyze(legs []domain.Leg) (TradeAnalytics, error) {
	if len(legs) == 0 {
		return TradeAnalytics{}, ErrNoLegs
	}

	var a TradeAnalytics
	for _, leg := range legs {
		switch {
		case leg.Action.IsOpening():
			a.TotalBought += leg.Quantity
			a.BuyValue += leg.Quantity * leg.Price
		case leg.Action.IsClosing():
			a.TotalSold += leg.Quantity
			a.SellValue += leg.Quantity * leg.Price
		}
		// Short option legs (sell_to_open / buy_to_close) fall through and
		// contribute fees only.
		a.TotalFees += leg.Fee
	}

	if a.TotalBought > 0 {
		a.AvgBuyPrice = a.BuyValue / a.TotalBought
	}
	if a.TotalSold > 0 {
		a.AvgSellPrice = a.SellValue / a.TotalSold
	}
	a.RealizedPnL = a.SellValue - a.BuyValue - a.TotalFees
	a.OpenQty = a.TotalBought - a.TotalSold

	switch {
	case a.OpenQty != 0:
		a.Status = domain.StatusOpen
	case a.RealizedPnL > 0:
		a.Status = domain.StatusWin
	case a.RealizedPnL < 0:
		a.Status = domain.StatusLoss
	default:
		a.Status = domain.StatusBreakEven
	}
	return a, nil
}

// CloseTime derives the closing timestamp implied by the leg list: the
// timestamp of the latest closing-direction leg, which is the one that
// brought the open quantity to zero. A trailing fees-only option leg
// (sell_to_open, buy_to_close) does not move the stamp. closed is false
// while any quantity remains open, so appending a leg that moves the net
// away from zero reopens the trade.
func CloseTime(legs []domain.Leg) (closedAt time.Time, closed bool, err error) {
	a, err := Analyze(legs)
	if err != nil {
		return time.Time{}, false, err
	}
	if a.OpenQty != 0 {
		return time.Time{}, false, nil
	}
	for i := len(legs) - 1; i >= 0; i-- {
		if legs[i].Action.IsClosing() {
			return legs[i].ExecutedAt, true, nil
		}
	}
	// Only quantity-neutral legs exist (e.g. nothing but short option
	// premium entries); the last execution is the best stamp available.
	return legs[len(legs)-1].ExecutedAt, true, nil
}
