package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/clock"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/data/duckdb"
	"github.com/helioquant/helios/pkg/data/mapper"
	"github.com/helioquant/helios/pkg/portfolio"
	"github.com/helioquant/helios/pkg/trader"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical fills through a trading session",
	Long: `Backtest replays the configured fill source in timestamp order through the
message bus. The demo strategy accounts each fill against its position and
the session ends with a positions report on stdout.

Sources:
  mapper: binary fill file, memory mapped (backtest.path)
  duckdb: <symbol>_fills table in a duckdb database (backtest.path, backtest.symbol)`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger := newLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info(fmt.Sprintf("helios backtest %s", version))
	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrument, err := cfg.Instrument.Instrument()
	if err != nil {
		return err
	}

	store, closeStore, err := openCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer closeStore()

	traderID := common.TraderID(cfg.Trader.ID)
	accountID := common.AccountID(cfg.Trader.Account)

	msgBus := bus.NewMessageBus(logger)
	pf := portfolio.New(traderID, accountID, logger, msgBus, store)
	pf.RegisterInstrument(instrument)

	tr := trader.New(trader.Config{
		ID:           traderID,
		ClockFactory: clock.NewSimClockFactory(cfg.Backtest.From),
		Bus:          msgBus,
		Cache:        store,
		Portfolio:    pf,
		Logger:       logger,
	})
	if err := tr.AddStrategy(newDemoStrategy(instrument.ID)); err != nil {
		return err
	}
	if err := tr.Load(); err != nil {
		return err
	}
	if err := tr.Start(); err != nil {
		return err
	}
	defer msgBus.PrintStatistics()

	if err := replayFills(ctx, cfg.Backtest, instrument, msgBus); err != nil {
		logger.Error("error during replay", zap.Error(err))
	}

	if err := tr.Stop(); err != nil {
		return err
	}
	if err := tr.Save(); err != nil {
		return err
	}

	return printPositionsReport(tr)
}

// replayFills publishes every fill of the configured range onto the bus, in
// timestamp order. Cancellation aborts between fills.
func replayFills(ctx context.Context, cfg BacktestConfig, instrument common.Instrument, msgBus *bus.MessageBus) error {
	switch cfg.Source {
	case "duckdb":
		reader := duckdb.NewReader(cfg.Path)
		if err := reader.Connect(); err != nil {
			return err
		}
		defer reader.Close()

		return reader.LoadFills(ctx, cfg.Symbol, instrument.CostCurrency, cfg.From, cfg.To,
			func(fill common.Fill) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				fill.InstrumentID = instrument.ID
				msgBus.Publish(bus.FillTopic(instrument.ID), fill)
				return nil
			})

	case "mapper", "":
		source, err := mapper.Open[mapper.BinaryFill](cfg.Path)
		if err != nil {
			return err
		}
		defer func() { _ = source.Close() }()

		reader := mapper.NewFillReader(source, instrument.ID, instrument.CostCurrency, cfg.From, cfg.To)
		for ctx.Err() == nil {
			fill, err := reader.Next()
			if errors.Is(err, mapper.ErrEOF) {
				return nil
			}
			if err != nil {
				return err
			}
			msgBus.Publish(bus.FillTopic(instrument.ID), fill)
		}
		return ctx.Err()

	default:
		return fmt.Errorf("unknown backtest source %q", cfg.Source)
	}
}

func printPositionsReport(tr *trader.Trader) error {
	report, err := json.MarshalIndent(tr.GeneratePositionsReport(), "", "  ")
	if err != nil {
		return fmt.Errorf("unable to render positions report: %w", err)
	}
	fmt.Println(string(report))
	return nil
}
