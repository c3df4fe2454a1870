package common

import (
	"fmt"

	"github.com/helioquant/helios/pkg/utility/fixed"
)

type Currency string

func (c Currency) String() string { return string(c) }

// Money is an amount denominated in a single currency. Arithmetic across
// currencies is a programming error and returns ErrCurrencyMismatch.
type Money struct {
	Amount   fixed.Point `json:"amount"`
	Currency Currency    `json:"currency"`
}

var ErrCurrencyMismatch = fmt.Errorf("currency mismatch")

func NewMoney(amount fixed.Point, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}
