package common

import (
	"github.com/helioquant/helios/pkg/utility/fixed"
	"go.uber.org/zap"
)

// Instrument describes the contract terms needed for position accounting.
// IsInverse marks contracts whose quantity is denominated in the quote
// currency, which switches pnl to reciprocal pricing.
type Instrument struct {
	ID             InstrumentID
	Venue          Venue
	PricePrecision int
	SizePrecision  int
	Multiplier     fixed.Point
	IsInverse      bool
	BaseCurrency   Currency
	QuoteCurrency  Currency
	CostCurrency   Currency
}

func (i Instrument) Fields() []zap.Field {
	return []zap.Field{
		zap.String("id", i.ID.String()),
		zap.String("venue", i.Venue.String()),
		zap.Int("price_precision", i.PricePrecision),
		zap.Int("size_precision", i.SizePrecision),
		zap.String("multiplier", i.Multiplier.String()),
		zap.Bool("is_inverse", i.IsInverse),
		zap.String("cost_currency", i.CostCurrency.String()),
	}
}
