package common

import (
	"github.com/helioquant/helios/pkg/utility/fixed"
)

type Account struct {
	ID       AccountID                `json:"id"`
	Venue    Venue                    `json:"venue"`
	Balances map[Currency]fixed.Point `json:"balances"`
}

func (a Account) Balance(currency Currency) fixed.Point {
	return a.Balances[currency]
}
