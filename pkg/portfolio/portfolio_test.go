package portfolio

import (
	"testing"
	"time"

	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/cache"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
	"github.com/helioquant/helios/pkg/utility"
	"github.com/helioquant/helios/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPortfolio() (*Portfolio, *bus.MessageBus, cache.Cache) {
	msgBus := bus.NewMessageBus(zap.NewNop())
	store := cache.NewMemory()
	p := New("TRADER-001", "SIM-001", zap.NewNop(), msgBus, store)
	p.RegisterInstrument(common.Instrument{
		ID:            "EURUSD",
		Venue:         "SIM",
		Multiplier:    fixed.One,
		BaseCurrency:  "EUR",
		QuoteCurrency: "USD",
		CostCurrency:  "USD",
	})
	return p, msgBus, store
}

func newFill(position common.PositionID, side common.OrderSide, qty, price string) common.Fill {
	return common.Fill{
		InstrumentID: "EURUSD",
		OrderID:      "O-1",
		PositionID:   position,
		Side:         side,
		Qty:          fixed.MustFromString(qty),
		Price:        fixed.MustFromString(price),
		Commission:   common.NewMoney(fixed.Zero, "USD"),
		ExecutionID:  utility.NewExecutionID(),
		TimeStamp:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPortfolio_FirstFillOpensPosition(t *testing.T) {
	p, msgBus, store := newTestPortfolio()

	var topics []string
	_, err := msgBus.Subscribe("events.position.*", func(topic string, msg any) {
		topics = append(topics, topic)
		_, ok := msg.(*ledger.Position)
		assert.True(t, ok, "payload must be the position")
	})
	require.NoError(t, err)

	require.NoError(t, p.ApplyFill("S-1", newFill("P-1", common.OrderSideBuy, "100", "10")))

	position, ok := store.PositionForID("P-1")
	require.True(t, ok)
	assert.Equal(t, common.StrategyID("S-1"), position.StrategyID)
	assert.True(t, position.IsOpen())

	require.Len(t, topics, 1)
	assert.Equal(t, "events.position.opened.EURUSD", topics[0])
}

func TestPortfolio_CloseAndChangeTopics(t *testing.T) {
	p, msgBus, _ := newTestPortfolio()

	var topics []string
	_, err := msgBus.Subscribe("events.position.*", func(topic string, msg any) {
		topics = append(topics, topic)
	})
	require.NoError(t, err)

	require.NoError(t, p.ApplyFill("S-1", newFill("P-1", common.OrderSideBuy, "100", "10")))
	require.NoError(t, p.ApplyFill("S-1", newFill("P-1", common.OrderSideBuy, "50", "11")))
	require.NoError(t, p.ApplyFill("S-1", newFill("P-1", common.OrderSideSell, "150", "12")))

	require.Len(t, topics, 3)
	assert.Equal(t, "events.position.opened.EURUSD", topics[0])
	assert.Equal(t, "events.position.changed.EURUSD", topics[1])
	assert.Equal(t, "events.position.closed.EURUSD", topics[2])
}

func TestPortfolio_UnknownInstrumentRejected(t *testing.T) {
	p, _, store := newTestPortfolio()

	fill := newFill("P-1", common.OrderSideBuy, "100", "10")
	fill.InstrumentID = "GBPUSD"

	err := p.ApplyFill("S-1", fill)
	require.ErrorIs(t, err, ErrUnknownInstrument)

	_, ok := store.PositionForID("P-1")
	assert.False(t, ok, "no position may be created for a rejected fill")
}

func TestPortfolio_IntegrityErrorPropagates(t *testing.T) {
	p, _, _ := newTestPortfolio()

	fill := newFill("P-1", common.OrderSideBuy, "100", "10")
	require.NoError(t, p.ApplyFill("S-1", fill))

	dup := newFill("P-1", common.OrderSideSell, "50", "11")
	dup.ExecutionID = fill.ExecutionID

	err := p.ApplyFill("S-1", dup)
	require.ErrorIs(t, err, ledger.ErrDuplicateFill)

	position, ok := p.Position("P-1")
	require.True(t, ok)
	assert.True(t, position.Quantity().Eq(fixed.MustFromString("100")), "failed apply must not mutate")
}

func TestPortfolio_NetExposure(t *testing.T) {
	p, _, _ := newTestPortfolio()

	require.NoError(t, p.ApplyFill("S-1", newFill("P-1", common.OrderSideBuy, "100", "10")))
	fill := newFill("P-2", common.OrderSideSell, "30", "10")
	require.NoError(t, p.ApplyFill("S-2", fill))

	assert.True(t, p.NetExposure("EURUSD").Eq(fixed.MustFromString("70")))
	assert.Len(t, p.PositionsOpen(), 2)
}
