package trader

import (
	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/cache"
	"github.com/helioquant/helios/pkg/clock"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/component"
	"github.com/helioquant/helios/pkg/portfolio"
	"go.uber.org/zap"
)

// RegisterContext carries the shared services a trader injects into a unit at
// registration time. The Clock is a freshly constructed instance per unit so
// time-dependent hooks can be driven independently.
type RegisterContext struct {
	TraderID  common.TraderID
	Portfolio *portfolio.Portfolio
	Cache     cache.Cache
	Bus       *bus.MessageBus
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Unit is the capability every actor and strategy exposes to the trader. The
// trader cascades over Units without dispatching on concrete type.
type Unit interface {
	ID() common.ComponentID
	State() component.State
	IsRunning() bool
	IsDisposed() bool
	Start() error
	Stop() error
	Reset() error
	Dispose() error
	Register(ctx RegisterContext) error
}

// StrategyUnit additionally participates in the trader's save/load pass.
type StrategyUnit interface {
	Unit
	SaveState() cache.StrategyState
	LoadState(state cache.StrategyState)
}
