package cache

import (
	"testing"
	"time"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
	"github.com/helioquant/helios/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPosition(id common.PositionID) *ledger.Position {
	return ledger.NewPosition(
		ledger.Identifiers{
			TraderID:   "TRADER-001",
			StrategyID: "S-1",
			AccountID:  "SIM-001",
			PositionID: id,
		},
		common.Instrument{
			ID:            "EURUSD",
			Venue:         "SIM",
			Multiplier:    fixed.One,
			BaseCurrency:  "EUR",
			QuoteCurrency: "USD",
			CostCurrency:  "USD",
		},
		time.Now(),
	)
}

func TestMemory_PositionsUpsert(t *testing.T) {
	m := NewMemory()

	p := newTestPosition("P-1")
	m.UpsertPosition(p)
	m.UpsertPosition(p)

	assert.Len(t, m.Positions(), 1)

	got, ok := m.PositionForID("P-1")
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = m.PositionForID("P-missing")
	assert.False(t, ok)
}

func TestMemory_OrdersPreserveInsertionOrder(t *testing.T) {
	m := NewMemory()

	m.AddOrder(common.Order{ID: "O-1"})
	m.AddOrder(common.Order{ID: "O-2"})

	orders := m.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, common.OrderID("O-1"), orders[0].ID)
	assert.Equal(t, common.OrderID("O-2"), orders[1].ID)
}

func TestMemory_AccountForVenue(t *testing.T) {
	m := NewMemory()

	m.AddAccount(common.Account{ID: "A-1", Venue: "SIM"})

	account, ok := m.AccountForVenue("SIM")
	require.True(t, ok)
	assert.Equal(t, common.AccountID("A-1"), account.ID)

	_, ok = m.AccountForVenue("UNKNOWN")
	assert.False(t, ok)
}

func TestMemory_StrategyStateRoundTrip(t *testing.T) {
	m := NewMemory()

	state := StrategyState{"last_bar": "42", "mode": "paper"}
	require.NoError(t, m.UpdateStrategy("S-1", state))

	// Mutating the caller's map must not leak into the cache.
	state["mode"] = "live"

	loaded, err := m.LoadStrategy("S-1")
	require.NoError(t, err)
	assert.Equal(t, "paper", loaded["mode"])
	assert.Equal(t, "42", loaded["last_bar"])

	_, err = m.LoadStrategy("S-unknown")
	assert.ErrorIs(t, err, ErrStrategyStateNotFound)
}

func TestSQLite_StrategyStateRoundTrip(t *testing.T) {
	c, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.UpdateStrategy("S-1", StrategyState{"k1": "v1", "k2": "v2"}))
	require.NoError(t, c.UpdateStrategy("S-1", StrategyState{"k1": "v1b"}))

	state, err := c.LoadStrategy("S-1")
	require.NoError(t, err)
	assert.Equal(t, StrategyState{"k1": "v1b"}, state, "update replaces the previous state")

	_, err = c.LoadStrategy("S-unknown")
	assert.ErrorIs(t, err, ErrStrategyStateNotFound)
}

func TestSQLite_PositionRecordPersisted(t *testing.T) {
	c, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	p := newTestPosition("P-1")
	c.UpsertPosition(p)

	rec, err := c.LoadPositionRecord("P-1")
	require.NoError(t, err)
	assert.Equal(t, p.ToRecord(), rec)

	back, err := ledger.FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, p.ID, back.ID)
}
