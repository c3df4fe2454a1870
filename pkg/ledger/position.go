package ledger

import (
	"sort"
	"time"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/utility"
	"github.com/helioquant/helios/pkg/utility/fixed"
	"go.uber.org/zap"
)

// Position is the running net exposure to one instrument derived from applied
// fills. It is a pure accounting state machine: Apply mutates only the
// position itself and never publishes events. Not safe for concurrent use;
// a single writer owns each position.
type Position struct {
	TraderID       common.TraderID
	StrategyID     common.StrategyID
	AccountID      common.AccountID
	InstrumentID   common.InstrumentID
	ID             common.PositionID
	OpeningOrderID common.OrderID

	PricePrecision int
	SizePrecision  int
	Multiplier     fixed.Point
	IsInverse      bool
	BaseCurrency   common.Currency
	QuoteCurrency  common.Currency
	CostCurrency   common.Currency

	Entry common.OrderSide
	Side  common.PositionSide

	TsInit   time.Time
	TsOpened time.Time
	TsLast   time.Time
	TsClosed time.Time

	AvgPxOpen      fixed.Point
	AvgPxClose     fixed.Point
	RealizedPoints fixed.Point
	RealizedReturn fixed.Point

	netQty   fixed.Point
	quantity fixed.Point
	peakQty  fixed.Point
	buyQty   fixed.Point
	sellQty  fixed.Point

	// Closed quantity of the current flat-to-flat cycle, the weight used
	// for the AvgPxClose rolling mean.
	closedQty fixed.Point

	realizedPnl  fixed.Point
	commissions  map[common.Currency]fixed.Point
	fills        []common.Fill
	executionIDs map[utility.ExecutionID]struct{}
}

type Identifiers struct {
	TraderID       common.TraderID
	StrategyID     common.StrategyID
	AccountID      common.AccountID
	PositionID     common.PositionID
	OpeningOrderID common.OrderID
}

func NewPosition(ids Identifiers, instrument common.Instrument, tsInit time.Time) *Position {
	return &Position{
		TraderID:       ids.TraderID,
		StrategyID:     ids.StrategyID,
		AccountID:      ids.AccountID,
		ID:             ids.PositionID,
		OpeningOrderID: ids.OpeningOrderID,
		InstrumentID:   instrument.ID,
		PricePrecision: instrument.PricePrecision,
		SizePrecision:  instrument.SizePrecision,
		Multiplier:     instrument.Multiplier,
		IsInverse:      instrument.IsInverse,
		BaseCurrency:   instrument.BaseCurrency,
		QuoteCurrency:  instrument.QuoteCurrency,
		CostCurrency:   instrument.CostCurrency,
		Side:           common.PositionSideFlat,
		TsInit:         tsInit,
		commissions:    make(map[common.Currency]fixed.Point),
		executionIDs:   make(map[utility.ExecutionID]struct{}),
	}
}

func (p *Position) NetQty() fixed.Point   { return p.netQty }
func (p *Position) Quantity() fixed.Point { return p.quantity }
func (p *Position) PeakQty() fixed.Point  { return p.peakQty }
func (p *Position) Fills() []common.Fill  { return p.fills }
func (p *Position) FillCount() int        { return len(p.fills) }

func (p *Position) IsLong() bool   { return p.Side == common.PositionSideLong }
func (p *Position) IsShort() bool  { return p.Side == common.PositionSideShort }
func (p *Position) IsOpen() bool   { return p.quantity.IsPos() }
func (p *Position) IsClosed() bool { return p.quantity.IsZero() && !p.TsClosed.IsZero() }

// Duration is TsClosed - TsOpened once the position has closed, zero before.
func (p *Position) Duration() time.Duration {
	if p.TsClosed.IsZero() {
		return 0
	}
	return p.TsClosed.Sub(p.TsOpened)
}

// Apply feeds one fill into the position. Opposing fills are split into a
// closing portion (realizes pnl against AvgPxOpen) and an opening portion
// (the remainder of a flip); the split is internal and the call is atomic.
// Violated preconditions return an *IntegrityError with zero mutation.
func (p *Position) Apply(fill common.Fill) error {
	if fill.InstrumentID != p.InstrumentID {
		return &IntegrityError{PositionID: p.ID, Err: ErrInstrumentMismatch}
	}
	if _, seen := p.executionIDs[fill.ExecutionID]; seen {
		return &IntegrityError{PositionID: p.ID, Err: ErrDuplicateFill}
	}

	switch {
	case p.quantity.IsZero():
		// First fill of a flat-to-flat cycle, including a reopen of a
		// previously closed position.
		p.Entry = fill.Side
		p.TsOpened = fill.TimeStamp
		p.TsClosed = time.Time{}
		p.AvgPxOpen = fill.Price
		p.AvgPxClose = fixed.Zero
		p.RealizedPoints = fixed.Zero
		p.RealizedReturn = fixed.Zero
		p.closedQty = fixed.Zero

	case p.sameDirection(fill.Side):
		p.AvgPxOpen = rollingMean(p.AvgPxOpen, p.quantity, fill.Price, fill.Qty)

	default:
		closing := fixed.Min(p.quantity, fill.Qty)
		pnl := p.CalculatePnl(p.AvgPxOpen, fill.Price, closing)
		p.realizedPnl = p.realizedPnl.Add(pnl.Amount)
		p.AvgPxClose = rollingMean(p.AvgPxClose, p.closedQty, fill.Price, closing)
		p.closedQty = p.closedQty.Add(closing)

		if fill.Qty.Gt(closing) {
			// Flip: the remainder opens a fresh cycle in the fill direction.
			p.Entry = fill.Side
			p.TsOpened = fill.TimeStamp
			p.AvgPxOpen = fill.Price
			p.AvgPxClose = fixed.Zero
			p.RealizedPoints = fixed.Zero
			p.RealizedReturn = fixed.Zero
			p.closedQty = fixed.Zero
		}
	}

	if !fill.Commission.Amount.IsZero() {
		p.commissions[fill.Commission.Currency] = p.commissions[fill.Commission.Currency].Add(fill.Commission.Amount)
		if fill.Commission.Currency == p.CostCurrency {
			p.realizedPnl = p.realizedPnl.Sub(fill.Commission.Amount)
		}
	}

	if fill.Side == common.OrderSideBuy {
		p.buyQty = p.buyQty.Add(fill.Qty)
	} else {
		p.sellQty = p.sellQty.Add(fill.Qty)
	}
	p.netQty = p.buyQty.Sub(p.sellQty)
	p.quantity = p.netQty.Abs()
	p.peakQty = fixed.Max(p.peakQty, p.quantity)
	p.Side = sideOf(p.netQty)
	p.TsLast = fill.TimeStamp

	if p.quantity.IsZero() {
		p.TsClosed = fill.TimeStamp
		p.RealizedPoints = p.points(p.AvgPxOpen, p.AvgPxClose, p.Entry)
		p.RealizedReturn = p.returnFromPoints(p.RealizedPoints)
	}

	p.fills = append(p.fills, fill)
	p.executionIDs[fill.ExecutionID] = struct{}{}
	return nil
}

// CalculatePnl prices qty between avgOpen and avgClose in the cost currency.
// Inverse contracts carry exposure in the quote currency and use reciprocal
// pricing. The sign follows the current position side.
func (p *Position) CalculatePnl(avgOpen, avgClose, qty fixed.Point) common.Money {
	points := p.points(avgOpen, avgClose, p.directionSide())
	return common.NewMoney(points.Mul(qty).Mul(p.Multiplier), p.CostCurrency)
}

func (p *Position) UnrealizedPnl(lastPrice fixed.Point) common.Money {
	if p.quantity.IsZero() {
		return common.NewMoney(fixed.Zero, p.CostCurrency)
	}
	return p.CalculatePnl(p.AvgPxOpen, lastPrice, p.quantity)
}

func (p *Position) RealizedPnl() common.Money {
	return common.NewMoney(p.realizedPnl, p.CostCurrency)
}

func (p *Position) TotalPnl(lastPrice fixed.Point) common.Money {
	return common.NewMoney(p.realizedPnl.Add(p.UnrealizedPnl(lastPrice).Amount), p.CostCurrency)
}

// NotionalValue is the open exposure at the given price: quote-denominated
// for standard contracts, base-denominated for inverse ones.
func (p *Position) NotionalValue(lastPrice fixed.Point) common.Money {
	if p.IsInverse {
		return common.NewMoney(p.quantity.Mul(p.Multiplier).Mul(lastPrice.Inv()), p.BaseCurrency)
	}
	return common.NewMoney(p.quantity.Mul(p.Multiplier).Mul(lastPrice), p.QuoteCurrency)
}

// Commissions returns the per-currency totals, ordered by currency code.
func (p *Position) Commissions() []common.Money {
	out := make([]common.Money, 0, len(p.commissions))
	for currency, amount := range p.commissions {
		out = append(out, common.NewMoney(amount, currency))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

func (p *Position) Fields() []zap.Field {
	return []zap.Field{
		zap.String("position_id", p.ID.String()),
		zap.String("instrument_id", p.InstrumentID.String()),
		zap.String("side", p.Side.String()),
		zap.String("net_qty", p.netQty.String()),
		zap.String("quantity", p.quantity.String()),
		zap.String("peak_qty", p.peakQty.String()),
		zap.String("avg_px_open", p.AvgPxOpen.String()),
		zap.String("avg_px_close", p.AvgPxClose.String()),
		zap.String("realized_pnl", p.RealizedPnl().String()),
	}
}

func (p *Position) sameDirection(side common.OrderSide) bool {
	return (p.Side == common.PositionSideLong && side == common.OrderSideBuy) ||
		(p.Side == common.PositionSideShort && side == common.OrderSideSell)
}

// directionSide maps the position side to the entry order side used for pnl
// sign adjustment; a flat position prices as if long (qty is zero anyway).
func (p *Position) directionSide() common.OrderSide {
	if p.Side == common.PositionSideShort {
		return common.OrderSideSell
	}
	return common.OrderSideBuy
}

func (p *Position) points(avgOpen, avgClose fixed.Point, entry common.OrderSide) fixed.Point {
	var points fixed.Point
	if p.IsInverse {
		points = avgOpen.Inv().Sub(avgClose.Inv())
	} else {
		points = avgClose.Sub(avgOpen)
	}
	if entry == common.OrderSideSell {
		points = points.Neg()
	}
	return points
}

func (p *Position) returnFromPoints(points fixed.Point) fixed.Point {
	if p.AvgPxOpen.IsZero() {
		return fixed.Zero
	}
	if p.IsInverse {
		// Points are in reciprocal space; scale by the open price to get
		// the fractional return on the entry.
		return points.Mul(p.AvgPxOpen)
	}
	return points.Div(p.AvgPxOpen)
}

func rollingMean(avg, weight, price, qty fixed.Point) fixed.Point {
	if weight.IsZero() {
		return price
	}
	total := weight.Add(qty)
	return avg.Mul(weight).Add(price.Mul(qty)).Div(total)
}

func sideOf(netQty fixed.Point) common.PositionSide {
	switch {
	case netQty.IsPos():
		return common.PositionSideLong
	case netQty.IsNeg():
		return common.PositionSideShort
	default:
		return common.PositionSideFlat
	}
}
