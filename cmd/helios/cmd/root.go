package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helioquant/helios/internal/dbg"
	"github.com/helioquant/helios/pkg/cache"
)

var (
	cfgPath string
	dev     bool
)

var rootCmd = &cobra.Command{
	Use:   "helios",
	Short: "An event-driven position accounting and strategy orchestration core",
	Long: `Helios replays or streams fills through a trading session: fills feed a
position ledger, strategies react to position lifecycle events over the
message bus, and reports are generated from the cache when the session ends.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "helios.yaml", "path to the yaml configuration file")
	rootCmd.PersistentFlags().BoolVar(&dev, "dev", false, "use the dev logger (human readable, debug level)")
}

func newLogger() *zap.Logger {
	return dbg.NewLogger(dev)
}

func openCache(cfg CacheConfig) (cache.Cache, func(), error) {
	if cfg.Path == "" {
		return cache.NewMemory(), func() {}, nil
	}
	store, err := cache.NewSQLite(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
