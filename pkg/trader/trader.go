package trader

import (
	"errors"
	"fmt"

	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/cache"
	"github.com/helioquant/helios/pkg/clock"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/component"
	"github.com/helioquant/helios/pkg/portfolio"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrAlreadyRegistered = errors.New("unit identity already registered")
	ErrUnitNotAddable    = errors.New("unit is running or disposed")
	ErrTraderRunning     = errors.New("trader is running, registry is frozen")
	ErrNoUnits           = errors.New("no units provided")
	ErrNoStrategies      = errors.New("no strategies registered")
)

// Trader owns the actor and strategy registries for one trading session and
// cascades lifecycle control to them uniformly. Registration order is
// significant: cascades visit actors first, then strategies, each in the
// order they were added.
type Trader struct {
	*component.Base

	id           common.TraderID
	clockFactory clock.Factory
	msgBus       *bus.MessageBus
	store        cache.Cache
	portfolio    *portfolio.Portfolio
	logger       *zap.Logger

	actors     []Unit
	strategies []StrategyUnit
	index      map[common.ComponentID]Unit
}

type Config struct {
	ID           common.TraderID
	ClockFactory clock.Factory
	Bus          *bus.MessageBus
	Cache        cache.Cache
	Portfolio    *portfolio.Portfolio
	Logger       *zap.Logger
}

func New(cfg Config) *Trader {
	t := &Trader{
		id:           cfg.ID,
		clockFactory: cfg.ClockFactory,
		msgBus:       cfg.Bus,
		store:        cfg.Cache,
		portfolio:    cfg.Portfolio,
		logger:       cfg.Logger,
		index:        make(map[common.ComponentID]Unit),
	}
	t.Base = component.NewBase(common.ComponentID(cfg.ID), t)
	t.Base.Wire(cfg.ID, cfg.ClockFactory.NewInstance(), cfg.Logger)
	return t
}

func (t *Trader) Portfolio() *portfolio.Portfolio { return t.portfolio }

func (t *Trader) ActorCount() int    { return len(t.actors) }
func (t *Trader) StrategyCount() int { return len(t.strategies) }

func (t *Trader) AddActor(a Unit) error {
	if err := t.register(a); err != nil {
		return err
	}
	t.actors = append(t.actors, a)
	t.logger.Info("actor registered", zap.String("id", a.ID().String()))
	return nil
}

func (t *Trader) AddStrategy(s StrategyUnit) error {
	if err := t.register(s); err != nil {
		return err
	}
	t.strategies = append(t.strategies, s)
	t.logger.Info("strategy registered", zap.String("id", s.ID().String()))
	return nil
}

// AddActors registers each actor through the singular path. Processing
// continues past failures; the aggregated error reports every rejected unit
// and earlier registrations are kept.
func (t *Trader) AddActors(actors ...Unit) error {
	if len(actors) == 0 {
		return ErrNoUnits
	}
	var err error
	for _, a := range actors {
		err = multierr.Append(err, t.AddActor(a))
	}
	return err
}

func (t *Trader) AddStrategies(strategies ...StrategyUnit) error {
	if len(strategies) == 0 {
		return ErrNoUnits
	}
	var err error
	for _, s := range strategies {
		err = multierr.Append(err, t.AddStrategy(s))
	}
	return err
}

func (t *Trader) ClearActors() error {
	if t.IsRunning() {
		t.logger.Error("cannot clear actors while running")
		return ErrTraderRunning
	}
	var err error
	for _, a := range t.actors {
		err = multierr.Append(err, a.Dispose())
		delete(t.index, a.ID())
	}
	t.actors = nil
	return err
}

func (t *Trader) ClearStrategies() error {
	if t.IsRunning() {
		t.logger.Error("cannot clear strategies while running")
		return ErrTraderRunning
	}
	var err error
	for _, s := range t.strategies {
		err = multierr.Append(err, s.Dispose())
		delete(t.index, s.ID())
	}
	t.strategies = nil
	return err
}

// Subscribe and Unsubscribe are passthroughs to the message bus, exposed at
// the trader for convenience.
func (t *Trader) Subscribe(pattern string, handler bus.Handler) (bus.Subscription, error) {
	return t.msgBus.Subscribe(pattern, handler)
}

func (t *Trader) Unsubscribe(sub bus.Subscription) error {
	return t.msgBus.Unsubscribe(sub)
}

// Save persists each registered strategy's durable state through the cache.
func (t *Trader) Save() error {
	var err error
	for _, s := range t.strategies {
		err = multierr.Append(err, t.store.UpdateStrategy(s.ID(), s.SaveState()))
	}
	return err
}

// Load restores each registered strategy's durable state from the cache.
// Strategies without saved state are skipped.
func (t *Trader) Load() error {
	var err error
	for _, s := range t.strategies {
		state, loadErr := t.store.LoadStrategy(s.ID())
		if errors.Is(loadErr, cache.ErrStrategyStateNotFound) {
			t.logger.Debug("no saved state", zap.String("strategy", s.ID().String()))
			continue
		}
		if loadErr != nil {
			err = multierr.Append(err, loadErr)
			continue
		}
		s.LoadState(state)
	}
	return err
}

// OnStart cascades to actors then strategies, fail-fast: a half-started
// trader must not reach the running state.
func (t *Trader) OnStart() error {
	if len(t.strategies) == 0 {
		t.logger.Error("cannot start with no strategies registered")
		return ErrNoStrategies
	}
	for _, unit := range t.units() {
		if err := unit.Start(); err != nil {
			return fmt.Errorf("start %s: %w", unit.ID(), err)
		}
	}
	return nil
}

// OnStop visits every child even when one fails; already-stopped children are
// tolerated by the component guards.
func (t *Trader) OnStop() error {
	var err error
	for _, unit := range t.units() {
		err = multierr.Append(err, unit.Stop())
	}
	return err
}

func (t *Trader) OnReset() error {
	var err error
	for _, unit := range t.units() {
		err = multierr.Append(err, unit.Reset())
	}
	return err
}

func (t *Trader) OnDispose() error {
	var err error
	for _, unit := range t.units() {
		err = multierr.Append(err, unit.Dispose())
	}
	return err
}

func (t *Trader) register(u Unit) error {
	if t.IsRunning() {
		t.logger.Error("cannot modify registry while running",
			zap.String("id", u.ID().String()))
		return ErrTraderRunning
	}
	if t.IsDisposed() {
		return fmt.Errorf("trader %s is disposed", t.id)
	}
	if _, dup := t.index[u.ID()]; dup {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, u.ID())
	}
	if u.IsRunning() || u.IsDisposed() {
		return fmt.Errorf("%w: %s in state %s", ErrUnitNotAddable, u.ID(), u.State())
	}

	if err := u.Register(RegisterContext{
		TraderID:  t.id,
		Portfolio: t.portfolio,
		Cache:     t.store,
		Bus:       t.msgBus,
		Clock:     t.clockFactory.NewInstance(),
		Logger:    t.logger.Named(u.ID().String()),
	}); err != nil {
		return err
	}
	t.index[u.ID()] = u
	return nil
}

// units returns the cascade order: actors first, then strategies, each in
// registration order.
func (t *Trader) units() []Unit {
	out := make([]Unit, 0, len(t.actors)+len(t.strategies))
	out = append(out, t.actors...)
	for _, s := range t.strategies {
		out = append(out, s)
	}
	return out
}
