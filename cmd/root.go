package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/csvinsight-cli/internal/config"
	"github.com/KaramelBytes/csvinsight-cli/internal/dashboard"
	"github.com/KaramelBytes/csvinsight-cli/internal/insight"
	"github.com/KaramelBytes/csvinsight-cli/internal/logging"
	"github.com/KaramelBytes/csvinsight-cli/internal/storage"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "csvinsight",
	Short: "csvinsight: explore CSV files from the terminal",
	Long: `csvinsight ingests CSV, TSV and XLSX files, profiles every column, and derives
summary cards and charts that follow your filters, grouping and saved views.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.csvinsight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logging.Setup(level, cfg.LogFormat)
}

// currentConfig returns the loaded configuration, loading it on demand.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func insightOptions(c *cfgpkg.Global) insight.Options {
	return insight.Options{
		HistogramBins: c.HistogramBins,
		MaxCharts:     c.MaxCharts,
		ScatterCap:    c.ScatterCap,
		TopCategories: c.TopCategories,
	}
}

// openManager builds a state manager over the data directory. Saved views are
// always file backed; the dataset is only persisted when persist is set.
func openManager(persist bool) (*dashboard.Manager, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, err
	}
	kv := storage.NewFileStore(c.DataDir)
	opts := []dashboard.Option{
		dashboard.WithViewStore(storage.NewViewStore(kv)),
		dashboard.WithInsightOptions(insightOptions(c)),
	}
	if persist {
		ds := storage.NewDatasetStore(kv)
		ds.RowCap = c.PersistRowCap
		ds.SampleRows = c.PersistSampleRows
		opts = append(opts, dashboard.WithDatasetStore(ds))
	}
	m := dashboard.New(opts...)
	m.Initialize()
	return m, nil
}
