package mapper

import (
	"fmt"
	"time"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/utility"
)

const invalidIndex = -1

// FillReader replays the fills of one instrument from a binary source in
// timestamp order. The source must be sorted by timestamp; the reader binary
// searches the first record inside the requested range on first use.
type FillReader struct {
	source *Source[BinaryFill]

	instrument common.InstrumentID
	currency   common.Currency
	from       int64
	to         int64
	idx        int64
}

func NewFillReader(source *Source[BinaryFill], instrument common.InstrumentID, commissionCurrency common.Currency, from, to time.Time) *FillReader {
	return &FillReader{
		source:     source,
		instrument: instrument,
		currency:   commissionCurrency,
		from:       from.UnixNano(),
		to:         to.UnixNano(),
		idx:        invalidIndex,
	}
}

func (r *FillReader) Next() (common.Fill, error) {

	var fill common.Fill
	var record BinaryFill

	if r.idx == invalidIndex {
		if err := r.lookupStartIndex(); err != nil {
			return fill, err
		}
	}

	if err := r.source.Read(r.idx, &record); err != nil {
		return fill, fmt.Errorf("error reading entry at index %d: %w", r.idx, err)
	}
	r.idx++

	if record.TimeStamp < r.from {
		return fill, fmt.Errorf("timestamp is not from the proposed range")
	}

	if record.TimeStamp > r.to {
		return fill, ErrEOF
	}

	record.ToFill(&fill, r.instrument, r.currency)

	fill.ExecutionID = utility.NewExecutionID()
	fill.TraceID = utility.NewTraceID()

	return fill, nil
}

func (r *FillReader) lookupStartIndex() error {
	entryCount, err := r.source.EntryCount()
	if err != nil {
		return fmt.Errorf("error getting entry count: %w", err)
	}

	if entryCount == 0 {
		return fmt.Errorf("entry count is zero")
	}

	var entry BinaryFill

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		if err := r.source.Read(mid, &entry); err != nil {
			return fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.TimeStamp < r.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return fmt.Errorf("no entry found with timestamp >= from")
	}

	r.idx = low
	return nil
}
