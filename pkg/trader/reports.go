package trader

import (
	"sort"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
)

// Reports are pure read-only queries over cache snapshots; nothing here
// mutates state. A venue without an account yields an empty report rather
// than an error.

type AccountReport struct {
	Venue    common.Venue
	Balances []common.Money
}

func (r AccountReport) IsEmpty() bool { return len(r.Balances) == 0 }

func (t *Trader) GenerateOrdersReport() []common.Order {
	return t.store.Orders()
}

func (t *Trader) GenerateOrderFillsReport() []common.Order {
	var out []common.Order
	for _, order := range t.store.Orders() {
		if order.IsFilled() {
			out = append(out, order)
		}
	}
	return out
}

func (t *Trader) GeneratePositionsReport() []ledger.Record {
	positions := t.store.Positions()
	out := make([]ledger.Record, 0, len(positions))
	for _, position := range positions {
		out = append(out, position.ToRecord())
	}
	return out
}

func (t *Trader) GenerateAccountReport(venue common.Venue) AccountReport {
	report := AccountReport{Venue: venue}
	account, ok := t.store.AccountForVenue(venue)
	if !ok {
		return report
	}
	for currency, amount := range account.Balances {
		report.Balances = append(report.Balances, common.NewMoney(amount, currency))
	}
	sort.Slice(report.Balances, func(i, j int) bool {
		return report.Balances[i].Currency < report.Balances[j].Currency
	})
	return report
}
