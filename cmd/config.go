package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/csvinsight-cli/internal/config"
	"github.com/KaramelBytes/csvinsight-cli/internal/report"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set csvinsight configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_dir: %s\n", cfg.DataDir)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "persist_row_cap: %d\n", cfg.PersistRowCap)
		fmt.Fprintf(out, "persist_sample_rows: %d\n", cfg.PersistSampleRows)
		fmt.Fprintf(out, "histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Fprintf(out, "max_charts: %d\n", cfg.MaxCharts)
		fmt.Fprintf(out, "scatter_cap: %d\n", cfg.ScatterCap)
		fmt.Fprintf(out, "top_categories: %d\n", cfg.TopCategories)
		fmt.Fprintf(out, "batch_workers: %d\n", cfg.BatchWorkers)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	positive := func(dst *int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	switch key {
	case "data_dir":
		c.DataDir = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "output_format":
		f, err := report.ParseFormat(val)
		if err != nil {
			return err
		}
		c.OutputFormat = string(f)
	case "persist_row_cap":
		return positive(&c.PersistRowCap)
	case "persist_sample_rows":
		return positive(&c.PersistSampleRows)
	case "histogram_bins":
		return positive(&c.HistogramBins)
	case "max_charts":
		return positive(&c.MaxCharts)
	case "scatter_cap":
		return positive(&c.ScatterCap)
	case "top_categories":
		return positive(&c.TopCategories)
	case "batch_workers":
		return positive(&c.BatchWorkers)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
