package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/utility"
	"github.com/helioquant/helios/pkg/utility/fixed"
)

// Feed reads fill frames from a websocket endpoint and delivers them into a
// single buffered queue. The feed only writes into the queue; decoding aside,
// nothing is mutated on the read goroutine — the consumer owns all state. The
// read loop exits on the first read error and closes the queue; reconnect
// policy belongs to venue adapters, not here.
type Feed struct {
	url    string
	logger *zap.Logger

	conn     *websocket.Conn
	queue    chan common.Fill
	done     chan struct{}
	stopOnce sync.Once

	// Statistics, atomic: read loop writes, consumer may print.
	recvCount atomic.Uint64
	dropCount atomic.Uint64
}

func New(url string, queueSize int, logger *zap.Logger) *Feed {
	return &Feed{
		url:    url,
		logger: logger,
		queue:  make(chan common.Fill, queueSize),
		done:   make(chan struct{}),
	}
}

func (f *Feed) Connect(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("unable to dial %q: %w", f.url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	f.conn = conn
	f.logger.Info("feed connected", zap.String("url", f.url))
	return nil
}

// Fills is the queue the consumer drains. It is closed when the read loop
// exits, so a plain range over it terminates with the feed.
func (f *Feed) Fills() <-chan common.Fill {
	return f.queue
}

// Start launches the read goroutine. Connect must have succeeded first.
func (f *Feed) Start() {
	go f.read()
}

// Stop closes the connection, which unblocks the read loop and closes the
// queue. Idempotent, and safe to call before Connect succeeded.
func (f *Feed) Stop() {
	f.stopOnce.Do(func() {
		close(f.done)
		if f.conn != nil {
			_ = f.conn.Close()
		}
	})
}

func (f *Feed) read() {
	defer close(f.queue)

	for {
		_, message, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Warn("feed read failed", zap.Error(err))
			} else {
				f.logger.Debug("feed closed", zap.Error(err))
			}
			return
		}
		f.recvCount.Add(1)

		fill, err := decodeFrame(message)
		if err != nil {
			f.dropCount.Add(1)
			f.logger.Warn("dropping malformed frame",
				zap.ByteString("raw", message),
				zap.Error(err))
			continue
		}

		// A send can park when the consumer stops draining; Stop must still
		// be able to take the loop down.
		select {
		case f.queue <- fill:
		case <-f.done:
			return
		}
	}
}

func (f *Feed) PrintStatistics() {
	f.logger.Info("feed statistics",
		zap.Uint64("received", f.recvCount.Load()),
		zap.Uint64("dropped", f.dropCount.Load()))
}

// frame is the wire representation of one fill. Quantities and prices travel
// as decimal strings so no precision is lost in transit.
type frame struct {
	InstrumentID       string `json:"instrument_id"`
	OrderID            string `json:"order_id"`
	Side               string `json:"side"`
	Qty                string `json:"qty"`
	Price              string `json:"price"`
	Commission         string `json:"commission"`
	CommissionCurrency string `json:"commission_ccy"`
	ExecutionID        string `json:"eid"`
	TimeStamp          int64  `json:"ts"` // unix nanoseconds
}

func decodeFrame(raw []byte) (common.Fill, error) {
	var fill common.Fill

	var fr frame
	if err := json.Unmarshal(raw, &fr); err != nil {
		return fill, fmt.Errorf("unable to decode frame: %w", err)
	}

	switch fr.Side {
	case "buy":
		fill.Side = common.OrderSideBuy
	case "sell":
		fill.Side = common.OrderSideSell
	default:
		return fill, fmt.Errorf("unknown side %q", fr.Side)
	}

	qty, err := fixed.FromString(fr.Qty)
	if err != nil {
		return fill, fmt.Errorf("invalid qty %q: %w", fr.Qty, err)
	}
	price, err := fixed.FromString(fr.Price)
	if err != nil {
		return fill, fmt.Errorf("invalid price %q: %w", fr.Price, err)
	}
	commission, err := fixed.FromString(fr.Commission)
	if err != nil {
		return fill, fmt.Errorf("invalid commission %q: %w", fr.Commission, err)
	}
	eid, err := utility.ParseExecutionID(fr.ExecutionID)
	if err != nil {
		return fill, fmt.Errorf("invalid execution id %q: %w", fr.ExecutionID, err)
	}

	fill.InstrumentID = common.InstrumentID(fr.InstrumentID)
	fill.OrderID = common.OrderID(fr.OrderID)
	fill.Qty = qty
	fill.Price = price
	fill.Commission = common.NewMoney(commission, common.Currency(fr.CommissionCurrency))
	fill.ExecutionID = eid
	fill.TraceID = utility.NewTraceID()
	fill.TimeStamp = time.Unix(0, fr.TimeStamp)

	return fill, nil
}
