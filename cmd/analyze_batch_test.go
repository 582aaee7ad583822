package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvinsight-cli/internal/report"
)

func TestAnalyzeBatch_WritesReportsWithCollisionSuffix(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), "col1,col2\nA,1\nB,2\nC,3\n")
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), "col1,col2\nA,1\nB,2\n")
	outDir := filepath.Join(home, "reports")

	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--output-dir", outDir, "--format", "json", "--workers", "2")
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "[2/2]")

	first, err := os.ReadFile(filepath.Join(outDir, "metrics.report.json"))
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(outDir, "metrics__2.report.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, decodeReport(t, string(first)).Rows)
	assert.Equal(t, 2, decodeReport(t, string(second)).Rows)
}

func TestAnalyzeBatch_PrintsInInputOrder(t *testing.T) {
	home := isolateHome(t)
	b := writeFile(t, filepath.Join(home, "b.csv"), "x,y\n1,2\n")
	a := writeFile(t, filepath.Join(home, "a.csv"), "x,y\n1,2\n3,4\n")

	out := runCmd(t, "analyze-batch", b, a, "--sample-rows", "0")
	ia := strings.Index(out, "File: a.csv")
	ib := strings.Index(out, "File: b.csv")
	require.True(t, ia >= 0 && ib >= 0, out)
	assert.Less(t, ia, ib, "inputs are sorted before printing")
	assert.NotContains(t, out, "[HEAD AND SAMPLE ROWS]")
}

func TestAnalyzeBatch_FailsOnBadFile(t *testing.T) {
	home := isolateHome(t)
	good := writeFile(t, filepath.Join(home, "good.csv"), "x\n1\n")
	bad := writeFile(t, filepath.Join(home, "bad.csv"), "a,\"b\n1,2\n")

	_, err := execCmd("analyze-batch", good, bad)
	assert.Error(t, err)
	_, err = execCmd("analyze-batch", filepath.Join(home, "none*.csv"))
	assert.Error(t, err)
}

func TestReportFileName(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "m.report.md", reportFileName("x/m.csv", report.FormatMarkdown, used))
	assert.Equal(t, "m__2.report.md", reportFileName("y/m.tsv", report.FormatMarkdown, used))
	assert.Equal(t, "n.report.yaml", reportFileName("n.xlsx", report.FormatYAML, used))
	assert.Equal(t, "n__2.report.txt", reportFileName("n.csv", report.FormatText, used))
}
