package actor

import (
	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/cache"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/component"
	"github.com/helioquant/helios/pkg/portfolio"
	"github.com/helioquant/helios/pkg/trader"
)

// Actor is the base for passive components that react to bus topics but make
// no trading decisions. Concrete actors embed Actor, pass themselves as the
// lifecycle hooks, and override only the hooks they need; the embedded
// NopHooks supplies the rest.
type Actor struct {
	*component.Base
	component.NopHooks

	Portfolio *portfolio.Portfolio
	Cache     cache.Cache
	Bus       *bus.MessageBus
}

func New(id common.ActorID, hooks component.Hooks) *Actor {
	if hooks == nil {
		hooks = component.NopHooks{}
	}
	return &Actor{Base: component.NewBase(id, hooks)}
}

// Register wires the shared services assigned by the owning trader.
func (a *Actor) Register(ctx trader.RegisterContext) error {
	a.Portfolio = ctx.Portfolio
	a.Cache = ctx.Cache
	a.Bus = ctx.Bus
	a.Wire(ctx.TraderID, ctx.Clock, ctx.Logger)
	return nil
}

var _ trader.Unit = (*Actor)(nil)
