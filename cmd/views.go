package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	viewsState  stateFlags
	viewsOut    outputFlags
	viewsExport string
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Manage saved filter and grouping views",
}

var viewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager(false)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		views := m.Snapshot().Views
		if len(views) == 0 {
			fmt.Fprintln(out, "(no views)")
			return nil
		}
		for _, v := range views {
			line := fmt.Sprintf("- %s: %s", v.ID, v.Name)
			if v.Grouping.GroupBy != "" {
				line += fmt.Sprintf(" (grouped by %s, %s)", v.Grouping.GroupBy, v.Grouping.Aggregation)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var viewsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current dataset's filters and grouping, adjusted by flags, as a view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager(true)
		if err != nil {
			return err
		}
		if err := viewsState.apply(cmd.Flags(), m); err != nil {
			return err
		}
		v := m.SaveCurrentView(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved view '%s' (%s)\n", v.Name, v.ID)
		return nil
	},
}

var viewsApplyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "Print the current dataset's dashboard under a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadCurrent()
		if err != nil {
			return err
		}
		if err := m.ApplyView(args[0]); err != nil {
			return err
		}
		return viewsOut.write(cmd, m.Snapshot())
	},
}

var viewsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager(false)
		if err != nil {
			return err
		}
		before := len(m.Snapshot().Views)
		m.DeleteView(args[0])
		if len(m.Snapshot().Views) == before {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: no view with id %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted view %s\n", args[0])
		return nil
	},
}

var viewsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved views as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager(false)
		if err != nil {
			return err
		}
		b, err := m.ExportViews()
		if err != nil {
			return err
		}
		return writeOrPrint(cmd.OutOrStdout(), viewsExport, b, "views")
	},
}

var viewsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace saved views with those from an export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read views: %w", err)
		}
		m, err := openManager(false)
		if err != nil {
			return err
		}
		views := m.ImportViewsJSON(raw)
		if len(views) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s holds no views; saved views are now empty\n", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d views\n", len(views))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
	viewsCmd.AddCommand(viewsListCmd, viewsSaveCmd, viewsApplyCmd, viewsDeleteCmd, viewsExportCmd, viewsImportCmd)
	viewsState.register(viewsSaveCmd.Flags())
	viewsOut.register(viewsApplyCmd)
	viewsExportCmd.Flags().StringVarP(&viewsExport, "output", "o", "", "write the export to this path instead of stdout")
}
