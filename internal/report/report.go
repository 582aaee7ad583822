// Package report renders a dashboard snapshot for people and machines.
package report

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/csvinsight-cli/internal/dashboard"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
	"github.com/KaramelBytes/csvinsight-cli/internal/utils"
)

// Format selects a rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// DefaultSampleRows is how many filtered rows a report carries.
const DefaultSampleRows = 5

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported format %q (use markdown|text|json|yaml)", s)
}

// Column is one schema line of a report.
type Column struct {
	Key        string  `json:"key" yaml:"key"`
	Type       string  `json:"type" yaml:"type"`
	Missing    int     `json:"missing" yaml:"missing"`
	Uniqueness float64 `json:"uniqueness" yaml:"uniqueness"`
	Detail     string  `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Report is the printable form of a snapshot.
type Report struct {
	Name         string               `json:"name" yaml:"name"`
	Rows         int                  `json:"rows" yaml:"rows"`
	FilteredRows int                  `json:"filteredRows" yaml:"filteredRows"`
	ActiveView   string               `json:"activeView" yaml:"activeView"`
	Filters      model.FilterState    `json:"filters" yaml:"filters"`
	Grouping     model.GroupingConfig `json:"grouping" yaml:"grouping"`
	Schema       []Column             `json:"schema" yaml:"schema"`
	Summaries    []model.SummarySpec  `json:"summaries" yaml:"summaries"`
	Charts       []model.ChartSpec    `json:"charts" yaml:"charts"`
	Headers      []string             `json:"headers" yaml:"headers"`
	Samples      []model.Row          `json:"samples" yaml:"samples"`
}

// New builds a report from s, keeping the first sampleRows filtered rows.
func New(s dashboard.Snapshot, sampleRows int) *Report {
	if sampleRows < 0 {
		sampleRows = DefaultSampleRows
	}
	r := &Report{
		Name:         s.DatasetName,
		Rows:         len(s.Rows),
		FilteredRows: len(s.FilteredRows),
		ActiveView:   s.ActiveViewID,
		Filters:      s.Filters,
		Grouping:     s.Grouping,
		Summaries:    s.Summaries,
		Charts:       s.VisibleCharts(),
		Headers:      s.Headers,
		Samples:      s.FilteredRows[:min(sampleRows, len(s.FilteredRows))],
	}
	for _, m := range s.Metas {
		r.Schema = append(r.Schema, Column{
			Key:        m.Key,
			Type:       m.Type.String(),
			Missing:    m.MissingCount,
			Uniqueness: m.UniquenessRatio,
			Detail:     columnDetail(m),
		})
	}
	return r
}

// Render produces r in the requested format.
func (r *Report) Render(f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(r.Markdown()), nil
	case FormatText:
		return []byte(r.Terminal()), nil
	case FormatJSON:
		return utils.PrettyJSON(r)
	case FormatYAML:
		b, err := yaml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

func columnDetail(m model.ColumnMeta) string {
	switch {
	case m.Number != nil:
		n := m.Number
		return fmt.Sprintf("min %.4g, max %.4g, mean %.4g, median %.4g, p95 %.4g", n.Min, n.Max, n.Mean, n.Median, n.P95)
	case m.Date != nil:
		d := m.Date
		if d.MinDate == "" {
			return ""
		}
		return fmt.Sprintf("%s to %s, parsed %.0f%%", d.MinDate, d.MaxDate, d.ParseSuccessRate*100)
	case m.Boolean != nil:
		return fmt.Sprintf("true %d, false %d", m.Boolean.TrueCount, m.Boolean.FalseCount)
	case m.String != nil:
		if len(m.String.TopValues) == 0 {
			return ""
		}
		parts := make([]string, 0, len(m.String.TopValues))
		for _, v := range m.String.TopValues {
			parts = append(parts, fmt.Sprintf("%s(%d)", safeVal(v.Value), v.Count))
		}
		detail := "top: " + strings.Join(parts, ", ")
		if m.String.UniqueCount > len(m.String.TopValues) {
			detail += fmt.Sprintf("; unique=%d", m.String.UniqueCount)
		}
		return detail
	}
	return ""
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// truncate limits s to n runes including the trailing ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
