package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvinsight-cli/internal/dashboard"
)

// resetFlags restores every flag in the tree so values from a previous
// invocation do not leak into the next one.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	cfg = nil
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	require.NoError(t, err, "command %v failed: %s", args, out)
	return out
}

// isolateHome points HOME at a temp dir so config and data stay per test.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const ordersCSV = "date,category,amount\n2025-01-01,A,10\n2025-01-02,B,20\n2025-01-03,A,30\n"

type jsonReport struct {
	Name         string `json:"name"`
	Rows         int    `json:"rows"`
	FilteredRows int    `json:"filteredRows"`
	Charts       []struct {
		ID   string           `json:"id"`
		Data []map[string]any `json:"data"`
	} `json:"charts"`
}

func decodeReport(t *testing.T, out string) jsonReport {
	t.Helper()
	var r jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	return r
}

func TestCLI_AnalyzeWithFiltersAndGrouping(t *testing.T) {
	home := isolateHome(t)
	path := writeFile(t, filepath.Join(home, "orders.csv"), ordersCSV)

	out := runCmd(t, "analyze", path, "--group-by", "category", "--metric", "amount", "--format", "json")
	r := decodeReport(t, out)
	assert.Equal(t, "orders.csv", r.Name)
	assert.Equal(t, 3, r.FilteredRows)
	require.NotEmpty(t, r.Charts)
	assert.Equal(t, "group-main", r.Charts[0].ID)
	assert.Equal(t, "A", r.Charts[0].Data[0]["group"])
	assert.EqualValues(t, 40, r.Charts[0].Data[0]["value"])

	out = runCmd(t, "analyze", path, "--where", "amount > 15", "--format", "json")
	assert.Equal(t, 2, decodeReport(t, out).FilteredRows)

	out = runCmd(t, "analyze", path, "--category", "B", "--format", "json")
	assert.Equal(t, 1, decodeReport(t, out).FilteredRows)

	// nothing was persisted without --persist
	_, err := execCmd("dataset", "show")
	assert.Error(t, err)
}

func TestCLI_AnalyzeWritesOutputFile(t *testing.T) {
	home := isolateHome(t)
	path := writeFile(t, filepath.Join(home, "orders.csv"), ordersCSV)
	dest := filepath.Join(home, "out", "orders.md")

	out := runCmd(t, "analyze", path, "-o", dest)
	assert.Contains(t, out, "✓ Wrote report to")
	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(body), "[DATASET SUMMARY]")
	assert.Contains(t, string(body), "[HEAD AND SAMPLE ROWS]")
}

func TestCLI_AnalyzeRejectsBadInput(t *testing.T) {
	home := isolateHome(t)
	path := writeFile(t, filepath.Join(home, "orders.csv"), ordersCSV)

	_, err := execCmd("analyze", filepath.Join(home, "missing.csv"))
	assert.Error(t, err)
	_, err = execCmd("analyze", path, "--agg", "median")
	assert.Error(t, err)
	_, err = execCmd("analyze", path, "--view", "nope")
	assert.ErrorIs(t, err, dashboard.ErrUnknownView)
	_, err = execCmd("analyze", path, "--format", "html")
	assert.Error(t, err)
}

func TestCLI_SampleDatasetLifecycle(t *testing.T) {
	isolateHome(t)

	r := decodeReport(t, runCmd(t, "sample", "--format", "json"))
	assert.Equal(t, "sample-ecommerce.csv", r.Name)
	assert.Equal(t, 60, r.Rows)

	md := runCmd(t, "dataset", "show", "--category", "Toys")
	assert.Contains(t, md, "File: sample-ecommerce.csv")
	assert.Contains(t, md, "Rows: 60 (filtered 14)")

	assert.Contains(t, runCmd(t, "dataset", "clear"), "✓ Cleared current dataset")
	_, err := execCmd("dataset", "show")
	assert.Error(t, err)
}

func TestCLI_SampleDownload(t *testing.T) {
	home := isolateHome(t)
	dest := filepath.Join(home, "dl", "test-sample.csv")
	out := runCmd(t, "sample", "--download", dest)
	assert.Contains(t, out, "✓ Wrote sample dataset")

	path := filepath.Join(home, "dl", "copy.csv")
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	writeFile(t, path, string(b))
	r := decodeReport(t, runCmd(t, "analyze", path, "--format", "json"))
	assert.Equal(t, 60, r.Rows)
}

var viewIDPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func TestCLI_ViewsRoundTrip(t *testing.T) {
	home := isolateHome(t)
	runCmd(t, "sample", "--format", "json")

	out := runCmd(t, "views", "save", "Toys only", "--category", "Toys", "--group-by", "region")
	m := viewIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	list := runCmd(t, "views", "list")
	assert.Contains(t, list, id+": Toys only (grouped by region, sum)")

	applied := runCmd(t, "views", "apply", id)
	assert.Contains(t, applied, "Rows: 60 (filtered 14)")
	assert.Contains(t, applied, "Grouped by region (sum)")

	export := filepath.Join(home, "views.json")
	runCmd(t, "views", "export", "-o", export)

	assert.Contains(t, runCmd(t, "views", "delete", id), "✓ Deleted view")
	assert.Contains(t, runCmd(t, "views", "list"), "(no views)")
	assert.Contains(t, runCmd(t, "views", "delete", id), "no view with id")

	assert.Contains(t, runCmd(t, "views", "import", export), "✓ Imported 1 views")
	assert.Contains(t, runCmd(t, "views", "list"), "Toys only")

	bad := writeFile(t, filepath.Join(home, "bad.json"), `{"version":1,"views":"nope"}`)
	assert.Contains(t, runCmd(t, "views", "import", bad), "✓ Imported 0 views")

	_, err := execCmd("views", "apply", id)
	assert.ErrorIs(t, err, dashboard.ErrUnknownView)
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	isolateHome(t)
	runCmd(t, "config", "set", "max_charts", "3")
	runCmd(t, "config", "set", "output_format", "json")

	show := runCmd(t, "config", "show")
	assert.Contains(t, show, "max_charts: 3")
	assert.Contains(t, show, "output_format: json")

	// output_format now defaults to json
	r := decodeReport(t, runCmd(t, "sample"))
	assert.LessOrEqual(t, len(r.Charts), 3)

	_, err := execCmd("config", "set", "max_charts", "zero")
	assert.Error(t, err)
	_, err = execCmd("config", "set", "nope", "1")
	assert.Error(t, err)
}
