package cmd

import (
	"go.uber.org/zap"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
	"github.com/helioquant/helios/pkg/strategy"
)

// demoStrategy accounts every inbound fill of one instrument against a single
// rolling position and logs the resulting lifecycle events. It is the
// reference wiring for a strategy, not a trading model.
type demoStrategy struct {
	*strategy.Strategy

	instrument common.InstrumentID
	position   common.PositionID
}

func newDemoStrategy(instrument common.InstrumentID) *demoStrategy {
	s := &demoStrategy{
		instrument: instrument,
		position:   common.PositionID("P-" + instrument.String()),
	}
	s.Strategy = strategy.New(common.StrategyID("DEMO-"+instrument.String()), s)
	return s
}

func (s *demoStrategy) OnStart() error {
	if _, err := s.SubscribeFills(s.instrument, s.onFill); err != nil {
		return err
	}
	_, err := s.SubscribePositions(s.instrument, s.onPosition)
	return err
}

func (s *demoStrategy) onFill(fill common.Fill) {
	fill.PositionID = s.position
	if err := s.Portfolio.ApplyFill(s.ID(), fill); err != nil {
		s.Logger().Error("fill rejected", append(fill.Fields(), zap.Error(err))...)
	}
}

func (s *demoStrategy) onPosition(topic string, position *ledger.Position) {
	s.Logger().Info("position event",
		append(position.Fields(), zap.String("topic", topic))...)
}
