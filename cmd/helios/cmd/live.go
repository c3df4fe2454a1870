package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helioquant/helios/pkg/bus"
	"github.com/helioquant/helios/pkg/clock"
	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/feed"
	"github.com/helioquant/helios/pkg/portfolio"
	"github.com/helioquant/helios/pkg/trader"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Stream fills from a websocket feed through a trading session",
	Long: `Live connects to the configured websocket endpoint and drains its fill
queue into the message bus until the feed closes or the process is
interrupted. All accounting happens on this consumer goroutine.`,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger := newLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info(fmt.Sprintf("helios live %s", version))
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
		ClockFactory: clock.NewWallClockFactory(),
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

	f := feed.New(cfg.Live.URL, cfg.Live.QueueSize, logger)
	if err := f.Connect(ctx); err != nil {
		return err
	}
	f.Start()
	defer f.PrintStatistics()

	go func() {
		<-ctx.Done()
		f.Stop()
	}()

	// Single consumer: every mutation of the session happens here, in the
	// order fills arrived.
	for fill := range f.Fills() {
		msgBus.Publish(bus.FillTopic(fill.InstrumentID), fill)
	}

	if err := tr.Stop(); err != nil {
		return err
	}
	return tr.Save()
}
