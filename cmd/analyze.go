package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvinsight-cli/internal/ingest"
)

var (
	anaState   stateFlags
	anaOut     outputFlags
	anaSheet   string
	anaView    string
	anaPersist bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX file and print its dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager(anaPersist)
		if err != nil {
			return err
		}
		opt := ingest.ReadOptions{ParseOptions: ingest.ParseOptions{Sheet: anaSheet}}
		if err := m.LoadFile(cmd.Context(), args[0], opt); err != nil {
			return err
		}
		if anaView != "" {
			if err := m.ApplyView(anaView); err != nil {
				return err
			}
		}
		if err := anaState.apply(cmd.Flags(), m); err != nil {
			return err
		}
		if err := anaOut.write(cmd, m.Snapshot()); err != nil {
			return err
		}
		if anaPersist {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved %s as the current dataset\n", m.Snapshot().DatasetName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaState.register(analyzeCmd.Flags())
	anaOut.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaSheet, "sheet", "", "XLSX: sheet name to analyze (default first sheet)")
	analyzeCmd.Flags().StringVar(&anaView, "view", "", "apply a saved view before the filter flags")
	analyzeCmd.Flags().BoolVar(&anaPersist, "persist", false, "save the file as the current dataset")
}
