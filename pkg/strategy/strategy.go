package strategy

import (
	"github.com/helioquant/helios/pkg/actor"
	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/cache"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/component"
	"github.com/helioquant/helios/pkg/ledger"
	"github.com/helioquant/helios/pkg/trader"
)

// Strategy is the base for trading components. Beyond the Actor capabilities
// it participates in the trader's save/load pass; embedders override
// SaveState/LoadState to persist whatever they need across sessions.
type Strategy struct {
	*actor.Actor
}

func New(id common.StrategyID, hooks component.Hooks) *Strategy {
	return &Strategy{Actor: actor.New(id, hooks)}
}

func (s *Strategy) SaveState() cache.StrategyState { return cache.StrategyState{} }

func (s *Strategy) LoadState(state cache.StrategyState) {}

// SubscribePositions routes the instrument's position lifecycle topics to the
// given handler. The returned token can be passed to the bus to unsubscribe.
func (s *Strategy) SubscribePositions(id common.InstrumentID, handler func(topic string, position *ledger.Position)) (bus.Subscription, error) {
	return s.Bus.Subscribe("events.position.*."+id.String(), func(topic string, msg any) {
		if position, ok := msg.(*ledger.Position); ok {
			handler(topic, position)
		}
	})
}

// SubscribeFills routes the instrument's fill topic to the given handler.
func (s *Strategy) SubscribeFills(id common.InstrumentID, handler func(fill common.Fill)) (bus.Subscription, error) {
	return s.Bus.Subscribe(bus.FillTopic(id), func(topic string, msg any) {
		if fill, ok := msg.(common.Fill); ok {
			handler(fill)
		}
	})
}

var _ trader.StrategyUnit = (*Strategy)(nil)
