package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/utility"
	"github.com/helioquant/helios/pkg/utility/fixed"
)

// Reader streams historical fills out of a duckdb database. Each symbol keeps
// its fills in a `<symbol>_fills` table sorted by timestamp.
type Reader struct {
	dataSourceName string
	db             *sql.DB
}

func NewReader(dataSourceName string) *Reader {
	return &Reader{
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	_ = r.db.Close()
}

// LoadFills invokes handler for every fill of the symbol inside the range, in
// timestamp order. A handler error aborts the scan and is returned wrapped.
func (r *Reader) LoadFills(ctx context.Context, symbol string, commissionCurrency common.Currency, from, to time.Time, handler func(fill common.Fill) error) error {

	query := fmt.Sprintf(`SELECT ts, side, qty, price, commission FROM %s_fills WHERE ts BETWEEN ? AND ? ORDER BY ts`, symbol)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var (
			timeStamp  time.Time
			side       string
			qty        float64
			price      float64
			commission float64
		)
		if err := rows.Scan(&timeStamp, &side, &qty, &price, &commission); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}

		fill := common.Fill{
			InstrumentID: common.InstrumentID(symbol),
			Side:         common.OrderSideBuy,
			Qty:          fixed.FromFloat64(qty),
			Price:        fixed.FromFloat64(price),
			Commission:   common.NewMoney(fixed.FromFloat64(commission), commissionCurrency),
			ExecutionID:  utility.NewExecutionID(),
			TraceID:      utility.NewTraceID(),
			TimeStamp:    timeStamp,
		}
		if side == "sell" {
			fill.Side = common.OrderSideSell
		}

		if err := handler(fill); err != nil {
			return fmt.Errorf("error processing fill: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning rows: %w", err)
	}

	return nil
}
