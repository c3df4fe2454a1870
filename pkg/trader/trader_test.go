package trader_test

import (
	"errors"
	"testing"
	"time"

	"github.com/helioquant/helios/pkg/actor"
	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/cache"
	"github.com/helioquant/helios/pkg/clock"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/component"
	"github.com/helioquant/helios/pkg/portfolio"
	"github.com/helioquant/helios/pkg/strategy"
	"github.com/helioquant/helios/pkg/trader"
	"github.com/helioquant/helios/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStrategy struct {
	*strategy.Strategy

	order    *[]string
	startErr error
	starts   int
	stops    int
	loaded   cache.StrategyState
}

func newStubStrategy(id common.StrategyID, order *[]string) *stubStrategy {
	s := &stubStrategy{order: order}
	s.Strategy = strategy.New(id, s)
	return s
}

func (s *stubStrategy) OnStart() error {
	s.starts++
	if s.order != nil {
		*s.order = append(*s.order, s.ID().String())
	}
	return s.startErr
}

func (s *stubStrategy) OnStop() error {
	s.stops++
	return nil
}

func (s *stubStrategy) SaveState() cache.StrategyState {
	return cache.StrategyState{"starts": "recorded"}
}

func (s *stubStrategy) LoadState(state cache.StrategyState) {
	s.loaded = state
}

type stubActor struct {
	*actor.Actor

	order *[]string
}

func newStubActor(id common.ActorID, order *[]string) *stubActor {
	a := &stubActor{order: order}
	a.Actor = actor.New(id, a)
	return a
}

func (a *stubActor) OnStart() error {
	if a.order != nil {
		*a.order = append(*a.order, a.ID().String())
	}
	return nil
}

type fillCountingStrategy struct {
	*strategy.Strategy

	instrument common.InstrumentID
	fills      int
}

func newFillCountingStrategy(id common.StrategyID, instrument common.InstrumentID) *fillCountingStrategy {
	s := &fillCountingStrategy{instrument: instrument}
	s.Strategy = strategy.New(id, s)
	return s
}

func (s *fillCountingStrategy) OnStart() error {
	_, err := s.SubscribeFills(s.instrument, func(fill common.Fill) { s.fills++ })
	return err
}

func newTestTrader(store cache.Cache) *trader.Trader {
	logger := zap.NewNop()
	msgBus := bus.NewMessageBus(logger)
	return trader.New(trader.Config{
		ID:           "TRADER-001",
		ClockFactory: clock.NewSimClockFactory(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Bus:          msgBus,
		Cache:        store,
		Portfolio:    portfolio.New("TRADER-001", "SIM-001", logger, msgBus, store),
		Logger:       logger,
	})
}

func TestTrader_AddStrategyWiresUnit(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s := newStubStrategy("S-1", nil)
	require.NoError(t, tr.AddStrategy(s))

	assert.Equal(t, component.Initialized, s.State())
	assert.Equal(t, common.TraderID("TRADER-001"), s.TraderID())
	assert.NotNil(t, s.Bus)
	assert.NotNil(t, s.Cache)
	assert.NotNil(t, s.Portfolio)
	assert.NotNil(t, s.Clock())
	assert.Equal(t, 1, tr.StrategyCount())
}

func TestTrader_PerUnitClockIsolation(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s1 := newStubStrategy("S-1", nil)
	s2 := newStubStrategy("S-2", nil)
	require.NoError(t, tr.AddStrategies(s1, s2))

	c1 := s1.Clock().(*clock.SimClock)
	c2 := s2.Clock().(*clock.SimClock)
	require.NotSame(t, c1, c2, "each unit must get an independent clock instance")

	c1.Advance(time.Hour)
	assert.True(t, c2.Now().Before(c1.Now()))
}

func TestTrader_DuplicateIdentityRejected(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	require.NoError(t, tr.AddStrategy(newStubStrategy("S-1", nil)))

	err := tr.AddStrategy(newStubStrategy("S-1", nil))
	require.ErrorIs(t, err, trader.ErrAlreadyRegistered)
	assert.Equal(t, 1, tr.StrategyCount())
}

func TestTrader_AddWhileRunningRejected(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	require.NoError(t, tr.AddStrategy(newStubStrategy("S-1", nil)))
	require.NoError(t, tr.Start())
	require.True(t, tr.IsRunning())

	late := newStubStrategy("S-late", nil)
	err := tr.AddStrategy(late)
	require.ErrorIs(t, err, trader.ErrTraderRunning)
	assert.Equal(t, 1, tr.StrategyCount(), "registry must be unchanged")
	assert.Equal(t, component.PreInitialized, late.State(), "rejected unit must not be wired")
}

func TestTrader_AddDisposedUnitRejected(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s := newStubStrategy("S-1", nil)
	require.NoError(t, s.Dispose())

	err := tr.AddStrategy(s)
	require.ErrorIs(t, err, trader.ErrUnitNotAddable)
	assert.Zero(t, tr.StrategyCount())
}

func TestTrader_StartCascadeOrder(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	var order []string
	require.NoError(t, tr.AddStrategy(newStubStrategy("S-1", &order)))
	require.NoError(t, tr.AddActor(newStubActor("A-1", &order)))
	require.NoError(t, tr.AddActor(newStubActor("A-2", &order)))
	require.NoError(t, tr.AddStrategy(newStubStrategy("S-2", &order)))

	require.NoError(t, tr.Start())

	assert.Equal(t, []string{"A-1", "A-2", "S-1", "S-2"}, order,
		"cascade must visit actors then strategies in registration order")
}

func TestTrader_StartWithNoStrategies(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	require.NoError(t, tr.AddActor(newStubActor("A-1", nil)))

	err := tr.Start()
	require.ErrorIs(t, err, trader.ErrNoStrategies)
	assert.False(t, tr.IsRunning())
}

func TestTrader_StartHookFailureIsFatal(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	bad := newStubStrategy("S-bad", nil)
	bad.startErr = errors.New("boom")
	require.NoError(t, tr.AddStrategy(bad))

	err := tr.Start()
	require.Error(t, err)
	assert.False(t, tr.IsRunning())
}

func TestTrader_StopCascadeTolerantOfStoppedChildren(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s := newStubStrategy("S-1", nil)
	require.NoError(t, tr.AddStrategy(s))
	require.NoError(t, tr.Start())

	// Child stopped out-of-band; the cascade must warn, not fail.
	require.NoError(t, s.Stop())
	require.NoError(t, tr.Stop())

	assert.Equal(t, 1, s.stops, "stop hook must run exactly once")
	assert.Equal(t, component.Stopped, tr.State())

	// Idempotent shutdown at the trader level too.
	require.NoError(t, tr.Stop())
	assert.Equal(t, 1, s.stops)
}

func TestTrader_BulkRegistrationPartialFailure(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	good := newStubStrategy("S-1", nil)
	dup := newStubStrategy("S-1", nil)
	alsoGood := newStubStrategy("S-2", nil)

	err := tr.AddStrategies(good, dup, alsoGood)
	require.ErrorIs(t, err, trader.ErrAlreadyRegistered)
	assert.Equal(t, 2, tr.StrategyCount(), "failures must not roll back earlier registrations")

	require.ErrorIs(t, tr.AddStrategies(), trader.ErrNoUnits)
}

func TestTrader_ClearStrategies(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s := newStubStrategy("S-1", nil)
	require.NoError(t, tr.AddStrategy(s))

	require.NoError(t, tr.ClearStrategies())
	assert.Zero(t, tr.StrategyCount())
	assert.True(t, s.IsDisposed())

	// The identity is free again after clearing.
	require.NoError(t, tr.AddStrategy(newStubStrategy("S-1", nil)))
}

func TestTrader_ClearWhileRunningRejected(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	require.NoError(t, tr.AddStrategy(newStubStrategy("S-1", nil)))
	require.NoError(t, tr.Start())

	require.ErrorIs(t, tr.ClearStrategies(), trader.ErrTraderRunning)
	assert.Equal(t, 1, tr.StrategyCount())
}

func TestTrader_SaveLoad(t *testing.T) {
	store := cache.NewMemory()
	tr := newTestTrader(store)

	s := newStubStrategy("S-1", nil)
	require.NoError(t, tr.AddStrategy(s))

	require.NoError(t, tr.Save())
	require.NoError(t, tr.Load())

	assert.Equal(t, cache.StrategyState{"starts": "recorded"}, s.loaded)
}

func TestTrader_LoadSkipsStrategiesWithoutState(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s := newStubStrategy("S-1", nil)
	require.NoError(t, tr.AddStrategy(s))

	require.NoError(t, tr.Load())
	assert.Nil(t, s.loaded)
}

func TestTrader_Reports(t *testing.T) {
	store := cache.NewMemory()
	tr := newTestTrader(store)

	store.AddOrder(common.Order{ID: "O-1", Status: common.OrderStatusSubmitted})
	store.AddOrder(common.Order{
		ID:        "O-2",
		Status:    common.OrderStatusFilled,
		FilledQty: fixed.MustFromString("100"),
	})
	store.AddAccount(common.Account{
		ID:    "A-1",
		Venue: "SIM",
		Balances: map[common.Currency]fixed.Point{
			"USD": fixed.MustFromString("10000"),
		},
	})

	assert.Len(t, tr.GenerateOrdersReport(), 2)

	fills := tr.GenerateOrderFillsReport()
	require.Len(t, fills, 1)
	assert.Equal(t, common.OrderID("O-2"), fills[0].ID)

	account := tr.GenerateAccountReport("SIM")
	require.Len(t, account.Balances, 1)
	assert.Equal(t, common.Currency("USD"), account.Balances[0].Currency)

	missing := tr.GenerateAccountReport("UNKNOWN")
	assert.True(t, missing.IsEmpty(), "missing account must yield an empty report, not an error")
}

func TestTrader_SubscribePassthrough(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	sub, err := tr.Subscribe("events.*", func(topic string, msg any) {})
	require.NoError(t, err)
	require.NoError(t, tr.Unsubscribe(sub))
	require.ErrorIs(t, tr.Unsubscribe(sub), bus.ErrUnknownSubscription)
}

// Two strategies of the same concrete type subscribing to the same instrument
// must both start and both receive each fill; their subscriptions are
// independent instances even though the wrapper closures share a code site.
func TestTrader_SameTypeStrategiesShareInstrument(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s1 := newFillCountingStrategy("S-1", "EURUSD")
	s2 := newFillCountingStrategy("S-2", "EURUSD")
	require.NoError(t, tr.AddStrategies(s1, s2))

	require.NoError(t, tr.Start())
	require.True(t, tr.IsRunning())

	s1.Bus.Publish(bus.FillTopic("EURUSD"), common.Fill{InstrumentID: "EURUSD"})

	assert.Equal(t, 1, s1.fills)
	assert.Equal(t, 1, s2.fills)
}

func TestTrader_DisposeCascades(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s := newStubStrategy("S-1", nil)
	a := newStubActor("A-1", nil)
	require.NoError(t, tr.AddStrategy(s))
	require.NoError(t, tr.AddActor(a))

	require.NoError(t, tr.Dispose())
	assert.True(t, tr.IsDisposed())
	assert.True(t, s.IsDisposed())
	assert.True(t, a.IsDisposed())

	// Terminal: nothing can be added or started afterwards.
	require.Error(t, tr.AddStrategy(newStubStrategy("S-2", nil)))
	require.NoError(t, tr.Start())
	assert.False(t, tr.IsRunning())
}

func TestTrader_ResetLoop(t *testing.T) {
	tr := newTestTrader(cache.NewMemory())

	s := newStubStrategy("S-1", nil)
	require.NoError(t, tr.AddStrategy(s))
	require.NoError(t, tr.Start())
	require.NoError(t, tr.Stop())
	require.NoError(t, tr.Reset())

	assert.Equal(t, component.Initialized, tr.State())

	require.NoError(t, tr.Start())
	assert.True(t, tr.IsRunning())
	assert.Equal(t, 2, s.starts)
}
