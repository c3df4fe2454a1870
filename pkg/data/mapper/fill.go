package mapper

import (
	"time"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/utility/fixed"
)

// BinaryFill is the on-disk layout of one fill record. Every field is eight
// bytes wide so the struct has no padding and can be read straight out of the
// mapped file.
type BinaryFill struct {
	TimeStamp  int64 // unix nanoseconds
	Side       int64 // 0 buy, 1 sell
	Qty        float64
	Price      float64
	Commission float64
}

func (b BinaryFill) ToFill(fill *common.Fill, instrument common.InstrumentID, commissionCurrency common.Currency) {
	fill.InstrumentID = instrument
	fill.Side = common.OrderSideBuy
	if b.Side == 1 {
		fill.Side = common.OrderSideSell
	}
	fill.Qty = fixed.FromFloat64(b.Qty)
	fill.Price = fixed.FromFloat64(b.Price)
	fill.Commission = common.NewMoney(fixed.FromFloat64(b.Commission), commissionCurrency)
	fill.TimeStamp = time.Unix(0, b.TimeStamp)
}
