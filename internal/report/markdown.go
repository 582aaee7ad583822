package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// chart points listed per chart in text renderings
const maxChartPoints = 10

// Markdown renders a compact report suitable for sharing or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.FilteredRows < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (filtered %d)\n", r.Rows, r.FilteredRows))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Schema)))
	if r.ActiveView != "" {
		b.WriteString(fmt.Sprintf("View: %s\n", r.ActiveView))
	}
	if active := describeFilters(r.Filters); len(active) > 0 {
		b.WriteString("Filters: " + strings.Join(active, "; ") + "\n")
	}
	if r.Grouping.GroupBy != "" {
		b.WriteString(fmt.Sprintf("Grouping: %s of %s by %s\n", r.Grouping.Aggregation, orRows(r.Grouping.Metric), r.Grouping.GroupBy))
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Schema {
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, unique %.2f)", safeName(c.Key), c.Type, c.Missing, c.Uniqueness))
		if c.Detail != "" {
			b.WriteString(" — " + c.Detail)
		}
		b.WriteString("\n")
	}

	if len(r.Summaries) > 0 {
		b.WriteString("\n[SUMMARIES]\n")
		for _, s := range r.Summaries {
			b.WriteString(fmt.Sprintf("- %s: %s", s.Label, s.Value))
			if s.Hint != "" {
				b.WriteString(fmt.Sprintf(" (%s)", s.Hint))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Charts) > 0 {
		b.WriteString("\n[CHARTS]\n")
		for _, c := range r.Charts {
			b.WriteString(fmt.Sprintf("- %s [%s, %d points]", c.Title, c.Type, len(c.Data)))
			if c.Note != "" {
				b.WriteString(" " + c.Note)
			}
			b.WriteString("\n")
			for _, p := range c.Data[:min(maxChartPoints, len(c.Data))] {
				b.WriteString(fmt.Sprintf("  • %s: %s\n", formatCell(p[c.XKey]), formatCell(p[c.YKey])))
			}
			if len(c.Data) > maxChartPoints {
				b.WriteString(fmt.Sprintf("  • … %d more\n", len(c.Data)-maxChartPoints))
			}
		}
	}

	if len(r.Samples) > 0 && len(r.Headers) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range r.Headers {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range r.Headers {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, h := range r.Headers {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(truncate(row[h], 80)))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

// describeFilters lists the clauses that narrow rows.
func describeFilters(f model.FilterState) []string {
	var out []string
	if f.Search != "" {
		out = append(out, fmt.Sprintf("search %q", f.Search))
	}
	if f.CategoryColumn != "" {
		switch f.CategoryMode {
		case model.CategoryNone:
			out = append(out, f.CategoryColumn+" excludes all")
		case model.CategoryCustom:
			if len(f.CategoryValues) > 0 {
				out = append(out, fmt.Sprintf("%s in [%s]", f.CategoryColumn, strings.Join(f.CategoryValues, ", ")))
			}
		}
	}
	if f.NumericColumn != "" && f.NumericRange != nil && (f.NumericRange.Min != nil || f.NumericRange.Max != nil) {
		out = append(out, fmt.Sprintf("%s in [%s, %s]", f.NumericColumn, bound(f.NumericRange.Min), bound(f.NumericRange.Max)))
	}
	if f.DateColumn != "" && f.DateRange != nil && (f.DateRange.From != "" || f.DateRange.To != "") {
		out = append(out, fmt.Sprintf("%s from %s to %s", f.DateColumn, orOpen(f.DateRange.From), orOpen(f.DateRange.To)))
	}
	if sel := f.ChartSelection; sel != nil && len(sel.Values) > 0 {
		out = append(out, fmt.Sprintf("%s selected [%s]", sel.Column, strings.Join(sel.Values, ", ")))
	}
	if f.Expression != "" {
		out = append(out, "where "+f.Expression)
	}
	return out
}

func bound(v *float64) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%g", *v)
}

func orOpen(s string) string {
	if s == "" {
		return "*"
	}
	return s
}

func orRows(metric string) string {
	if metric == "" {
		return "rows"
	}
	return metric
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", x)
	case string:
		return safeVal(x)
	default:
		return fmt.Sprint(x)
	}
}
