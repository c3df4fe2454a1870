package portfolio

import (
	"errors"
	"fmt"

	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/cache"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
	"github.com/helioquant/helios/pkg/utility/fixed"
	"go.uber.org/zap"
)

var ErrUnknownInstrument = errors.New("instrument not registered")

// Portfolio routes inbound fills to the owning position, snapshots the result
// into the cache, and publishes position lifecycle topics on the bus. The
// position itself never publishes; this is the orchestration boundary.
type Portfolio struct {
	traderID  common.TraderID
	accountID common.AccountID

	logger      *zap.Logger
	msgBus      *bus.MessageBus
	store       cache.Cache
	instruments map[common.InstrumentID]common.Instrument
}

func New(traderID common.TraderID, accountID common.AccountID, logger *zap.Logger, msgBus *bus.MessageBus, store cache.Cache) *Portfolio {
	return &Portfolio{
		traderID:    traderID,
		accountID:   accountID,
		logger:      logger,
		msgBus:      msgBus,
		store:       store,
		instruments: make(map[common.InstrumentID]common.Instrument),
	}
}

func (p *Portfolio) RegisterInstrument(instrument common.Instrument) {
	p.instruments[instrument.ID] = instrument
	p.logger.Debug("instrument registered", zap.String("instrument_id", instrument.ID.String()))
}

func (p *Portfolio) Instrument(id common.InstrumentID) (common.Instrument, bool) {
	instrument, ok := p.instruments[id]
	return instrument, ok
}

// ApplyFill mutates the position identified by the fill, creating it on the
// first fill for an unseen position id. Integrity violations propagate and
// leave the position untouched.
func (p *Portfolio) ApplyFill(strategyID common.StrategyID, fill common.Fill) error {
	instrument, ok := p.instruments[fill.InstrumentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstrument, fill.InstrumentID)
	}

	position, exists := p.store.PositionForID(fill.PositionID)
	if !exists {
		position = ledger.NewPosition(ledger.Identifiers{
			TraderID:       p.traderID,
			StrategyID:     strategyID,
			AccountID:      p.accountID,
			PositionID:     fill.PositionID,
			OpeningOrderID: fill.OrderID,
		}, instrument, fill.TimeStamp)
	}

	wasOpen := position.IsOpen()
	if err := position.Apply(fill); err != nil {
		return err
	}
	p.store.UpsertPosition(position)

	switch {
	case !wasOpen && position.IsOpen():
		p.logger.Info("position opened", position.Fields()...)
		p.msgBus.Publish(bus.PositionOpenedTopic(fill.InstrumentID), position)
	case position.IsClosed():
		p.logger.Info("position closed", position.Fields()...)
		p.msgBus.Publish(bus.PositionClosedTopic(fill.InstrumentID), position)
	default:
		p.msgBus.Publish(bus.PositionChangedTopic(fill.InstrumentID), position)
	}
	return nil
}

func (p *Portfolio) Position(id common.PositionID) (*ledger.Position, bool) {
	return p.store.PositionForID(id)
}

func (p *Portfolio) PositionsOpen() []*ledger.Position {
	var out []*ledger.Position
	for _, position := range p.store.Positions() {
		if position.IsOpen() {
			out = append(out, position)
		}
	}
	return out
}

// NetExposure is the signed open quantity across all positions in an
// instrument.
func (p *Portfolio) NetExposure(id common.InstrumentID) fixed.Point {
	total := fixed.Zero
	for _, position := range p.store.Positions() {
		if position.InstrumentID == id {
			total = total.Add(position.NetQty())
		}
	}
	return total
}
