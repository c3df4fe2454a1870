package common

import (
	"time"

	"github.com/helioquant/helios/pkg/utility"
	"github.com/helioquant/helios/pkg/utility/fixed"
)

type OrderStatus string

const (
	OrderStatusSubmitted       OrderStatus = "submitted"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
)

type Order struct {
	ID           OrderID         `json:"id"`
	InstrumentID InstrumentID    `json:"instrument_id"`
	StrategyID   StrategyID      `json:"strategy_id,omitempty"`
	Side         OrderSide       `json:"side"`
	Qty          fixed.Point     `json:"qty"`
	Price        fixed.Point     `json:"price"`
	FilledQty    fixed.Point     `json:"filled_qty"`
	Status       OrderStatus     `json:"status"`
	TraceID      utility.TraceID `json:"tid,omitempty"`
	TimeStamp    time.Time       `json:"ts"`
}

func (o Order) IsFilled() bool { return o.FilledQty.IsPos() }
