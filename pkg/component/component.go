package component

import (
	"github.com/helioquant/helios/pkg/clock"
	"github.com/helioquant/helios/pkg/common"
	"go.uber.org/zap"
)

// Hooks are the overridable lifecycle callbacks invoked by the Base verbs. A
// hook error is fatal and propagates to the caller uncaught; the framework
// never swallows a lifecycle-hook failure.
type Hooks interface {
	OnStart() error
	OnStop() error
	OnReset() error
	OnDispose() error
}

// NopHooks can be embedded by components that only override some hooks.
type NopHooks struct{}

func (NopHooks) OnStart() error   { return nil }
func (NopHooks) OnStop() error    { return nil }
func (NopHooks) OnReset() error   { return nil }
func (NopHooks) OnDispose() error { return nil }

// Base is the finite-state machine every long-lived unit embeds. Illegal
// control calls are logged and treated as no-ops so shutdown sequences can be
// run defensively; only hook failures surface as errors.
type Base struct {
	id     common.ComponentID
	trader common.TraderID
	state  State
	clock  clock.Clock
	logger *zap.Logger
	hooks  Hooks
}

func NewBase(id common.ComponentID, hooks Hooks) *Base {
	return &Base{
		id:     id,
		state:  PreInitialized,
		logger: zap.NewNop(),
		hooks:  hooks,
	}
}

// Wire injects the shared services a component needs before it can start.
// Called once during registration; moves the component to Initialized.
func (b *Base) Wire(trader common.TraderID, clk clock.Clock, logger *zap.Logger) {
	b.trader = trader
	b.clock = clk
	b.logger = logger
	b.transition(Initialized)
}

func (b *Base) ID() common.ComponentID    { return b.id }
func (b *Base) TraderID() common.TraderID { return b.trader }
func (b *Base) State() State              { return b.state }
func (b *Base) IsRunning() bool           { return b.state == Running }
func (b *Base) IsDisposed() bool          { return b.state == Disposed }
func (b *Base) Clock() clock.Clock        { return b.clock }
func (b *Base) Logger() *zap.Logger       { return b.logger }

func (b *Base) Start() error {
	switch b.state {
	case Running:
		b.logger.Info("already running", zap.String("component", b.id.String()))
		return nil
	case Initialized, Stopped:
		b.transition(Starting)
		if err := b.hooks.OnStart(); err != nil {
			return err
		}
		b.transition(Running)
		return nil
	default:
		b.logger.Warn("start ignored",
			zap.String("component", b.id.String()),
			zap.String("state", b.state.String()))
		return nil
	}
}

func (b *Base) Stop() error {
	if b.state != Running {
		b.logger.Warn("stop ignored",
			zap.String("component", b.id.String()),
			zap.String("state", b.state.String()))
		return nil
	}
	b.transition(Stopping)
	if err := b.hooks.OnStop(); err != nil {
		return err
	}
	b.transition(Stopped)
	return nil
}

func (b *Base) Reset() error {
	switch b.state {
	case Initialized, Stopped:
		b.transition(Resetting)
		if err := b.hooks.OnReset(); err != nil {
			return err
		}
		b.transition(Initialized)
		return nil
	default:
		b.logger.Warn("reset ignored",
			zap.String("component", b.id.String()),
			zap.String("state", b.state.String()))
		return nil
	}
}

func (b *Base) Dispose() error {
	if b.state == Disposed {
		b.logger.Debug("already disposed", zap.String("component", b.id.String()))
		return nil
	}
	if err := b.hooks.OnDispose(); err != nil {
		return err
	}
	b.transition(Disposed)
	return nil
}

func (b *Base) transition(to State) {
	b.logger.Debug("state transition",
		zap.String("component", b.id.String()),
		zap.String("from", b.state.String()),
		zap.String("to", to.String()))
	b.state = to
}
