package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvinsight-cli/internal/dashboard"
	"github.com/KaramelBytes/csvinsight-cli/internal/report"
	"github.com/KaramelBytes/csvinsight-cli/internal/utils"
)

// outputFlags select how a dashboard snapshot is printed.
type outputFlags struct {
	format     string
	output     string
	sampleRows int
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "", "output format: markdown|text|json|yaml (default from config)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "optional path to write the report")
	cmd.Flags().IntVar(&o.sampleRows, "sample-rows", report.DefaultSampleRows, "number of filtered rows to include")
}

func (o *outputFlags) resolveFormat() (report.Format, error) {
	name := o.format
	if name == "" {
		if c, err := currentConfig(); err == nil {
			name = c.OutputFormat
		}
	}
	if name == "" {
		name = string(report.FormatMarkdown)
	}
	return report.ParseFormat(name)
}

// render builds the report bytes for s.
func (o *outputFlags) render(s dashboard.Snapshot) ([]byte, error) {
	f, err := o.resolveFormat()
	if err != nil {
		return nil, err
	}
	return report.New(s, o.sampleRows).Render(f)
}

// write prints s to --output when set, otherwise to the command's stdout.
func (o *outputFlags) write(cmd *cobra.Command, s dashboard.Snapshot) error {
	b, err := o.render(s)
	if err != nil {
		return err
	}
	return writeOrPrint(cmd.OutOrStdout(), o.output, b, "report")
}

func writeOrPrint(out io.Writer, path string, b []byte, what string) error {
	if path == "" {
		_, err := fmt.Fprintln(out, string(b))
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write %s: %w", what, err)
	}
	fmt.Fprintf(out, "✓ Wrote %s to %s\n", what, path)
	return nil
}
