package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/csvinsight-cli/internal/dashboard"
	"github.com/KaramelBytes/csvinsight-cli/internal/ingest"
	"github.com/KaramelBytes/csvinsight-cli/internal/report"
	"github.com/KaramelBytes/csvinsight-cli/internal/utils"
)

var (
	abState     stateFlags
	abOut       outputFlags
	abOutputDir string
	abSheet     string
	abWorkers   int
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files in parallel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		format, err := abOut.resolveFormat()
		if err != nil {
			return err
		}
		workers := c.BatchWorkers
		if abWorkers > 0 {
			workers = abWorkers
		}

		results := make([][]byte, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(1, workers))
		for i, path := range files {
			g.Go(func() error {
				m := dashboard.New(dashboard.WithInsightOptions(insightOptions(c)))
				opt := ingest.ReadOptions{ParseOptions: ingest.ParseOptions{Sheet: abSheet}}
				if err := m.LoadFile(ctx, path, opt); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := abState.apply(cmd.Flags(), m); err != nil {
					return err
				}
				b, err := report.New(m.Snapshot(), abOut.sampleRows).Render(format)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results[i] = b
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		used := map[string]int{}
		total := len(files)
		for i, path := range files {
			if abOutputDir == "" {
				if !abQuiet {
					fmt.Fprintf(out, "[%d/%d] %s\n", i+1, total, path)
				}
				fmt.Fprintln(out, string(results[i]))
				continue
			}
			dest := filepath.Join(abOutputDir, reportFileName(path, format, used))
			if err := utils.EnsureDir(abOutputDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := utils.SafeWriteFile(dest, results[i]); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] ✓ %s -> %s\n", i+1, total, path, dest)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, drops
// duplicates and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// reportFileName derives <base>.report.<ext>; repeated bases get __2, __3, ...
func reportFileName(path string, f report.Format, used map[string]int) string {
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	used[safe]++
	if n := used[safe]; n > 1 {
		safe = fmt.Sprintf("%s__%d", safe, n)
	}
	return safe + ".report." + formatExt(f)
}

func formatExt(f report.Format) string {
	switch f {
	case report.FormatJSON:
		return "json"
	case report.FormatYAML:
		return "yaml"
	case report.FormatText:
		return "txt"
	}
	return "md"
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abState.register(analyzeBatchCmd.Flags())
	analyzeBatchCmd.Flags().StringVar(&abOut.format, "format", "", "output format: markdown|text|json|yaml (default from config)")
	analyzeBatchCmd.Flags().IntVar(&abOut.sampleRows, "sample-rows", report.DefaultSampleRows, "number of filtered rows to include")
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "write one report per file into this directory")
	analyzeBatchCmd.Flags().StringVar(&abSheet, "sheet", "", "XLSX: sheet name to analyze (default first sheet)")
	analyzeBatchCmd.Flags().IntVar(&abWorkers, "workers", 0, "files analyzed in parallel (default batch_workers from config)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
