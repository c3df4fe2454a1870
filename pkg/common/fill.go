package common

import (
	"time"

	"github.com/helioquant/helios/pkg/utility"
	"github.com/helioquant/helios/pkg/utility/fixed"
	"go.uber.org/zap"
)

// Fill is an immutable record of an executed quantity at a price for an order.
// Qty and Price are always positive; direction is carried by Side.
type Fill struct {
	InstrumentID InstrumentID        `json:"instrument_id"`
	OrderID      OrderID             `json:"order_id"`
	PositionID   PositionID          `json:"position_id"`
	Side         OrderSide           `json:"side"`
	Qty          fixed.Point         `json:"qty"`
	Price        fixed.Point         `json:"price"`
	Commission   Money               `json:"commission"`
	ExecutionID  utility.ExecutionID `json:"eid"`
	TraceID      utility.TraceID     `json:"tid,omitempty"`
	TimeStamp    time.Time           `json:"ts"`
}

// SignedQty is positive for buys, negative for sells.
func (f Fill) SignedQty() fixed.Point {
	if f.Side == OrderSideSell {
		return f.Qty.Neg()
	}
	return f.Qty
}

func (f Fill) Fields() []zap.Field {
	return []zap.Field{
		zap.String("instrument_id", f.InstrumentID.String()),
		zap.String("order_id", f.OrderID.String()),
		zap.String("position_id", f.PositionID.String()),
		zap.String("side", f.Side.String()),
		zap.String("qty", f.Qty.String()),
		zap.String("price", f.Price.String()),
		zap.String("commission", f.Commission.String()),
		zap.String("eid", f.ExecutionID.String()),
		zap.Time("ts", f.TimeStamp),
	}
}
