package cache

import (
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
)

// Memory is the in-process Cache used for backtests. Insertion order is
// preserved so report rows come out in event order.
type Memory struct {
	orders        []common.Order
	positions     []*ledger.Position
	positionIndex map[common.PositionID]*ledger.Position
	accounts      map[common.Venue]common.Account
	strategies    map[common.StrategyID]StrategyState
}

func NewMemory() *Memory {
	return &Memory{
		positionIndex: make(map[common.PositionID]*ledger.Position),
		accounts:      make(map[common.Venue]common.Account),
		strategies:    make(map[common.StrategyID]StrategyState),
	}
}

func (m *Memory) AddOrder(order common.Order) {
	m.orders = append(m.orders, order)
}

func (m *Memory) Orders() []common.Order {
	out := make([]common.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *Memory) UpsertPosition(position *ledger.Position) {
	if _, ok := m.positionIndex[position.ID]; !ok {
		m.positions = append(m.positions, position)
	}
	m.positionIndex[position.ID] = position
}

func (m *Memory) Positions() []*ledger.Position {
	out := make([]*ledger.Position, len(m.positions))
	copy(out, m.positions)
	return out
}

func (m *Memory) PositionForID(id common.PositionID) (*ledger.Position, bool) {
	p, ok := m.positionIndex[id]
	return p, ok
}

func (m *Memory) AddAccount(account common.Account) {
	m.accounts[account.Venue] = account
}

func (m *Memory) AccountForVenue(venue common.Venue) (common.Account, bool) {
	account, ok := m.accounts[venue]
	return account, ok
}

func (m *Memory) UpdateStrategy(id common.StrategyID, state StrategyState) error {
	saved := make(StrategyState, len(state))
	for k, v := range state {
		saved[k] = v
	}
	m.strategies[id] = saved
	return nil
}

func (m *Memory) LoadStrategy(id common.StrategyID) (StrategyState, error) {
	state, ok := m.strategies[id]
	if !ok {
		return nil, ErrStrategyStateNotFound
	}
	out := make(StrategyState, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out, nil
}
