package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvinsight-cli/internal/sample"
)

var (
	sampleOut      outputFlags
	sampleDownload string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Load the bundled e-commerce sample as the current dataset",
	Long: `Load the bundled e-commerce sample as the current dataset and print its dashboard.
With --download the sample CSV is written to a file instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("download") {
			path := sampleDownload
			if path == "" {
				path = sample.DownloadName
			}
			if err := sample.WriteFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote sample dataset to %s\n", path)
			return nil
		}
		m, err := openManager(true)
		if err != nil {
			return err
		}
		if err := m.LoadSample(); err != nil {
			return err
		}
		return sampleOut.write(cmd, m.Snapshot())
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleOut.register(sampleCmd)
	sampleCmd.Flags().StringVar(&sampleDownload, "download", "", "write the sample CSV to this path instead of loading it")
}
