package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvinsight-cli/internal/dashboard"
)

var (
	dsState stateFlags
	dsOut   outputFlags
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect or clear the current dataset",
}

var datasetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the dashboard of the current dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadCurrent()
		if err != nil {
			return err
		}
		if err := dsState.apply(cmd.Flags(), m); err != nil {
			return err
		}
		return dsOut.write(cmd, m.Snapshot())
	},
}

var datasetClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the current dataset (saved views are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager(true)
		if err != nil {
			return err
		}
		m.Clear()
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared current dataset")
		return nil
	},
}

// loadCurrent opens the persisted state and fails when no dataset is stored.
func loadCurrent() (*dashboard.Manager, error) {
	m, err := openManager(true)
	if err != nil {
		return nil, err
	}
	if !m.Snapshot().HasDataset() {
		return nil, fmt.Errorf("no current dataset (run 'csvinsight analyze <file> --persist' or 'csvinsight sample')")
	}
	return m, nil
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetShowCmd)
	datasetCmd.AddCommand(datasetClearCmd)
	dsState.register(datasetShowCmd.Flags())
	dsOut.register(datasetShowCmd)
}
