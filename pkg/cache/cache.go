package cache

import (
	"errors"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
)

var ErrStrategyStateNotFound = errors.New("no saved state for strategy")

// StrategyState is the durable key/value state a strategy saves and restores
// across sessions.
type StrategyState map[string]string

// Cache is the durable-state collaborator for orders, positions, accounts and
// strategy state. The core queries and updates it; the persistence format is
// the implementation's concern.
type Cache interface {
	AddOrder(order common.Order)
	Orders() []common.Order

	UpsertPosition(position *ledger.Position)
	Positions() []*ledger.Position
	PositionForID(id common.PositionID) (*ledger.Position, bool)

	AddAccount(account common.Account)
	AccountForVenue(venue common.Venue) (common.Account, bool)

	UpdateStrategy(id common.StrategyID, state StrategyState) error
	LoadStrategy(id common.StrategyID) (StrategyState, error)
}
