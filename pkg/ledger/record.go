package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/utility"
	"github.com/helioquant/helios/pkg/utility/fixed"
)

// Record is a flat key/value rendering of a position, suitable for report
// rows and cache persistence. ToRecord/FromRecord round-trip every public
// attribute; the fill history itself stays with the live position.
type Record map[string]string

const tsLayout = time.RFC3339Nano

func (p *Position) ToRecord() Record {
	rec := Record{
		"trader_id":        p.TraderID.String(),
		"strategy_id":      p.StrategyID.String(),
		"account_id":       p.AccountID.String(),
		"instrument_id":    p.InstrumentID.String(),
		"position_id":      p.ID.String(),
		"opening_order_id": p.OpeningOrderID.String(),
		"entry":            p.Entry.String(),
		"side":             p.Side.String(),
		"net_qty":          p.netQty.String(),
		"peak_qty":         p.peakQty.String(),
		"buy_qty":          p.buyQty.String(),
		"sell_qty":         p.sellQty.String(),
		"closed_qty":       p.closedQty.String(),
		"price_precision":  strconv.Itoa(p.PricePrecision),
		"size_precision":   strconv.Itoa(p.SizePrecision),
		"multiplier":       p.Multiplier.String(),
		"is_inverse":       strconv.FormatBool(p.IsInverse),
		"base_currency":    p.BaseCurrency.String(),
		"quote_currency":   p.QuoteCurrency.String(),
		"cost_currency":    p.CostCurrency.String(),
		"ts_init":          formatTs(p.TsInit),
		"ts_opened":        formatTs(p.TsOpened),
		"ts_last":          formatTs(p.TsLast),
		"ts_closed":        formatTs(p.TsClosed),
		"avg_px_open":      p.AvgPxOpen.String(),
		"avg_px_close":     p.AvgPxClose.String(),
		"realized_points":  p.RealizedPoints.String(),
		"realized_return":  p.RealizedReturn.String(),
		"realized_pnl":     p.realizedPnl.String(),
		"commissions":      formatCommissions(p.Commissions()),
	}
	return rec
}

func FromRecord(rec Record) (*Position, error) {
	p := &Position{
		TraderID:       common.TraderID(rec["trader_id"]),
		StrategyID:     common.StrategyID(rec["strategy_id"]),
		AccountID:      common.AccountID(rec["account_id"]),
		InstrumentID:   common.InstrumentID(rec["instrument_id"]),
		ID:             common.PositionID(rec["position_id"]),
		OpeningOrderID: common.OrderID(rec["opening_order_id"]),
		BaseCurrency:   common.Currency(rec["base_currency"]),
		QuoteCurrency:  common.Currency(rec["quote_currency"]),
		CostCurrency:   common.Currency(rec["cost_currency"]),
		commissions:    make(map[common.Currency]fixed.Point),
		executionIDs:   make(map[utility.ExecutionID]struct{}),
	}

	var err error
	if p.Entry, err = parseOrderSide(rec["entry"]); err != nil {
		return nil, err
	}
	if p.Side, err = parsePositionSide(rec["side"]); err != nil {
		return nil, err
	}
	if p.PricePrecision, err = strconv.Atoi(rec["price_precision"]); err != nil {
		return nil, fmt.Errorf("price_precision: %w", err)
	}
	if p.SizePrecision, err = strconv.Atoi(rec["size_precision"]); err != nil {
		return nil, fmt.Errorf("size_precision: %w", err)
	}
	if p.IsInverse, err = strconv.ParseBool(rec["is_inverse"]); err != nil {
		return nil, fmt.Errorf("is_inverse: %w", err)
	}

	for key, dst := range map[string]*fixed.Point{
		"net_qty":         &p.netQty,
		"peak_qty":        &p.peakQty,
		"buy_qty":         &p.buyQty,
		"sell_qty":        &p.sellQty,
		"closed_qty":      &p.closedQty,
		"multiplier":      &p.Multiplier,
		"avg_px_open":     &p.AvgPxOpen,
		"avg_px_close":    &p.AvgPxClose,
		"realized_points": &p.RealizedPoints,
		"realized_return": &p.RealizedReturn,
		"realized_pnl":    &p.realizedPnl,
	} {
		if *dst, err = fixed.FromString(rec[key]); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	p.quantity = p.netQty.Abs()

	for key, dst := range map[string]*time.Time{
		"ts_init":   &p.TsInit,
		"ts_opened": &p.TsOpened,
		"ts_last":   &p.TsLast,
		"ts_closed": &p.TsClosed,
	} {
		if *dst, err = parseTs(rec[key]); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	if err = parseCommissions(rec["commissions"], p.commissions); err != nil {
		return nil, err
	}
	return p, nil
}

func formatTs(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(tsLayout)
}

func parseTs(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(tsLayout, s)
}

// Commissions serialize as "CUR=amount" pairs joined with ';'.
func formatCommissions(commissions []common.Money) string {
	parts := make([]string, 0, len(commissions))
	for _, m := range commissions {
		parts = append(parts, fmt.Sprintf("%s=%s", m.Currency, m.Amount.String()))
	}
	return strings.Join(parts, ";")
}

func parseCommissions(s string, dst map[common.Currency]fixed.Point) error {
	if s == "" {
		return nil
	}
	for _, part := range strings.Split(s, ";") {
		currency, amount, found := strings.Cut(part, "=")
		if !found {
			return fmt.Errorf("commissions: malformed entry %q", part)
		}
		v, err := fixed.FromString(amount)
		if err != nil {
			return fmt.Errorf("commissions %s: %w", currency, err)
		}
		dst[common.Currency(currency)] = v
	}
	return nil
}

func parseOrderSide(s string) (common.OrderSide, error) {
	switch s {
	case "buy":
		return common.OrderSideBuy, nil
	case "sell":
		return common.OrderSideSell, nil
	default:
		return 0, fmt.Errorf("unknown order side %q", s)
	}
}

func parsePositionSide(s string) (common.PositionSide, error) {
	switch s {
	case "flat":
		return common.PositionSideFlat, nil
	case "long":
		return common.PositionSideLong, nil
	case "short":
		return common.PositionSideShort, nil
	default:
		return 0, fmt.Errorf("unknown position side %q", s)
	}
}
