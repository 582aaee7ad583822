// Package insight derives summary cards and a small set of charts from rows
// and their column metadata. Generation is deterministic and never fails;
// a chart without qualifying columns or data points is simply omitted.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/csvinsight-cli/internal/analysis"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// Options bounds the generated charts.
type Options struct {
	HistogramBins int
	MaxCharts     int
	ScatterCap    int
	TopCategories int
}

// DefaultOptions returns the standard chart limits.
func DefaultOptions() Options {
	return Options{
		HistogramBins: analysis.DefaultBins,
		MaxCharts:     6,
		ScatterCap:    2000,
		TopCategories: 10,
	}
}

// Result is the output of Generate.
type Result struct {
	Summaries []model.SummarySpec
	Charts    []model.ChartSpec
}

const (
	// category preferred for the bar chart must be at most this unique
	barCategoryUniqueness = 0.6
	unknownLabel          = "Unknown"
	dayLayout             = "2006-01-02"
	monthLayout           = "2006-01"
)

var counts = message.NewPrinter(language.English)

// Generate runs GenerateWith using DefaultOptions.
func Generate(rows []model.Row, metas []model.ColumnMeta) Result {
	return GenerateWith(rows, metas, DefaultOptions())
}

// GenerateWith builds summaries and charts. Charts are produced in a fixed
// priority order (time series, top categories, histogram, boolean pie,
// scatter) and then truncated to opt.MaxCharts.
func GenerateWith(rows []model.Row, metas []model.ColumnMeta, opt Options) Result {
	opt = opt.withDefaults()
	numeric := model.ColumnsOfType(metas, model.TypeNumber)
	dates := model.ColumnsOfType(metas, model.TypeDate)
	strs := model.ColumnsOfType(metas, model.TypeString)
	bools := model.ColumnsOfType(metas, model.TypeBoolean)
	topNumeric, hasTopNumeric := mostVariable(numeric)

	var res Result
	res.Summaries = summaries(rows, metas, topNumeric, hasTopNumeric, dates)

	if len(dates) > 0 && len(numeric) > 0 {
		d, n := dates[0].Key, numeric[0].Key
		if data := timeSeries(rows, d, n); len(data) > 0 {
			res.Charts = append(res.Charts, model.ChartSpec{
				ID:    fmt.Sprintf("timeseries-%s-%s", d, n),
				Title: fmt.Sprintf("%s over time", n),
				Type:  model.ChartTimeseries,
				XKey:  "period",
				YKey:  "value",
				Data:  data,
			})
		}
	}

	if len(strs) > 0 && len(numeric) > 0 {
		c := strs[0].Key
		for _, s := range strs {
			if s.UniquenessRatio < barCategoryUniqueness {
				c = s.Key
				break
			}
		}
		n := numeric[0].Key
		if data := topCategories(rows, c, n, opt.TopCategories); len(data) > 0 {
			res.Charts = append(res.Charts, model.ChartSpec{
				ID:                   fmt.Sprintf("bar-%s-%s", c, n),
				Title:                fmt.Sprintf("Top %s by total %s", c, n),
				Type:                 model.ChartBar,
				XKey:                 "category",
				YKey:                 "value",
				Data:                 data,
				InteractiveFilterKey: c,
			})
		}
	}

	if hasTopNumeric {
		k := topNumeric.Key
		if data := histogram(rows, k, opt.HistogramBins); len(data) > 0 {
			res.Charts = append(res.Charts, model.ChartSpec{
				ID:    "hist-" + k,
				Title: k + " distribution",
				Type:  model.ChartHistogram,
				XKey:  "label",
				YKey:  "count",
				Data:  data,
			})
		}
	}

	if len(bools) > 0 {
		b := bools[0].Key
		if data := booleanDistribution(rows, b); len(data) > 0 {
			res.Charts = append(res.Charts, model.ChartSpec{
				ID:                   "pie-" + b,
				Title:                b + " distribution",
				Type:                 model.ChartPie,
				XKey:                 "label",
				YKey:                 "value",
				Data:                 data,
				InteractiveFilterKey: b,
			})
		}
	}

	if len(numeric) >= 2 {
		x, y := numeric[0].Key, numeric[1].Key
		if data, note := scatter(rows, x, y, opt.ScatterCap); len(data) > 0 {
			res.Charts = append(res.Charts, model.ChartSpec{
				ID:    fmt.Sprintf("scatter-%s-%s", x, y),
				Title: fmt.Sprintf("%s vs %s", x, y),
				Type:  model.ChartScatter,
				XKey:  "x",
				YKey:  "y",
				Data:  data,
				Note:  note,
			})
		}
	}

	if len(res.Charts) > opt.MaxCharts {
		res.Charts = res.Charts[:opt.MaxCharts]
	}
	return res
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.HistogramBins <= 0 {
		o.HistogramBins = def.HistogramBins
	}
	if o.MaxCharts <= 0 {
		o.MaxCharts = def.MaxCharts
	}
	if o.ScatterCap <= 0 {
		o.ScatterCap = def.ScatterCap
	}
	if o.TopCategories <= 0 {
		o.TopCategories = def.TopCategories
	}
	return o
}

// mostVariable returns the numeric column with the largest variance; the
// earliest column wins ties.
func mostVariable(numeric []model.ColumnMeta) (model.ColumnMeta, bool) {
	var best model.ColumnMeta
	found := false
	bestVar := math.Inf(-1)
	for _, m := range numeric {
		v := 0.0
		if m.Number != nil {
			v = m.Number.Variance
		}
		if !found || v > bestVar {
			best, bestVar, found = m, v, true
		}
	}
	return best, found
}

func summaries(rows []model.Row, metas []model.ColumnMeta, top model.ColumnMeta, hasTop bool, dates []model.ColumnMeta) []model.SummarySpec {
	missing := 0
	for _, m := range metas {
		missing += m.MissingCount
	}
	out := []model.SummarySpec{
		{ID: "rows", Label: "Rows", Value: counts.Sprintf("%d", len(rows))},
		{ID: "cols", Label: "Columns", Value: counts.Sprintf("%d", len(metas))},
		{ID: "missing", Label: "Missing Values", Value: counts.Sprintf("%d", missing)},
	}
	if hasTop && top.Number != nil {
		s := top.Number
		out = append(out, model.SummarySpec{
			ID:    "variance",
			Label: "Most Variable Numeric",
			Value: top.Key,
			Hint:  fmt.Sprintf("%.2f / %.2f / %.2f", s.Min, s.Mean, s.Max),
		})
	}
	if len(dates) > 0 && dates[0].Date != nil {
		from, okFrom := isoDay(dates[0].Date.MinDate)
		to, okTo := isoDay(dates[0].Date.MaxDate)
		if okFrom && okTo {
			out = append(out, model.SummarySpec{
				ID:    "date-range",
				Label: "Date Range",
				Value: from + " → " + to,
			})
		}
	}
	return out
}

func isoDay(iso string) (string, bool) {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(dayLayout), true
}

// timeSeries sums numericCol per period. The period is a day for spans up to
// 90 days, a Sunday-started week up to 365 days, and a month beyond that.
func timeSeries(rows []model.Row, dateCol, numericCol string) []model.Record {
	var lo, hi time.Time
	seen := false
	for _, r := range rows {
		d, ok := analysis.ParseDate(r[dateCol])
		if !ok {
			continue
		}
		if !seen || d.Before(lo) {
			lo = d
		}
		if !seen || d.After(hi) {
			hi = d
		}
		seen = true
	}
	if !seen {
		return nil
	}
	spanDays := int(hi.Sub(lo).Hours() / 24)
	bucket := func(d time.Time) string { return d.Format(dayLayout) }
	switch {
	case spanDays > 365:
		bucket = func(d time.Time) string { return d.Format(monthLayout) }
	case spanDays > 90:
		bucket = func(d time.Time) string {
			return d.AddDate(0, 0, -int(d.Weekday())).Format(dayLayout)
		}
	}

	totals := make(map[string]float64)
	for _, r := range rows {
		d, ok := analysis.ParseDate(r[dateCol])
		if !ok {
			continue
		}
		v, ok := analysis.ParseNumber(r[numericCol])
		if !ok {
			continue
		}
		totals[bucket(d)] += v
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	// zero-padded keys sort chronologically
	sort.Strings(keys)
	data := make([]model.Record, 0, len(keys))
	for _, k := range keys {
		data = append(data, model.Record{"period": k, "value": analysis.Round(totals[k], 2)})
	}
	return data
}

func topCategories(rows []model.Row, categoryCol, numericCol string, limit int) []model.Record {
	totals := make(map[string]float64)
	var order []string
	for _, r := range rows {
		v, ok := analysis.ParseNumber(r[numericCol])
		if !ok {
			continue
		}
		c := strings.TrimSpace(r[categoryCol])
		if c == "" {
			c = unknownLabel
		}
		if _, ok := totals[c]; !ok {
			order = append(order, c)
		}
		totals[c] += v
	}
	sort.SliceStable(order, func(i, j int) bool { return totals[order[i]] > totals[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	data := make([]model.Record, 0, len(order))
	for _, c := range order {
		data = append(data, model.Record{"category": c, "value": analysis.Round(totals[c], 2)})
	}
	return data
}

func histogram(rows []model.Row, key string, bins int) []model.Record {
	var values []float64
	for _, r := range rows {
		if v, ok := analysis.ParseNumber(r[key]); ok {
			values = append(values, v)
		}
	}
	hist := analysis.Histogram(values, bins)
	data := make([]model.Record, 0, len(hist))
	for _, b := range hist {
		data = append(data, model.Record{
			"label": fmt.Sprintf("%.1f - %.1f", b.Start, b.End),
			"count": b.Count,
			"min":   b.Start,
			"max":   b.End,
		})
	}
	return data
}

func booleanDistribution(rows []model.Row, key string) []model.Record {
	tally := make(map[string]int)
	var order []string
	for _, r := range rows {
		label := unknownLabel
		if b, ok := analysis.ParseBool(r[key]); ok {
			label = "False"
			if b {
				label = "True"
			}
		}
		if _, ok := tally[label]; !ok {
			order = append(order, label)
		}
		tally[label]++
	}
	data := make([]model.Record, 0, len(order))
	for _, l := range order {
		data = append(data, model.Record{"label": l, "value": tally[l]})
	}
	return data
}

// scatter keeps the first limit pairs where both cells parse. The note holds
// the Pearson correlation of the plotted points when it is defined.
func scatter(rows []model.Row, xCol, yCol string, limit int) ([]model.Record, string) {
	var data []model.Record
	var xs, ys []float64
	for _, r := range rows {
		x, ok := analysis.ParseNumber(r[xCol])
		if !ok {
			continue
		}
		y, ok := analysis.ParseNumber(r[yCol])
		if !ok {
			continue
		}
		data = append(data, model.Record{"x": x, "y": y})
		xs = append(xs, x)
		ys = append(ys, y)
		if len(data) >= limit {
			break
		}
	}
	if len(xs) < 2 {
		return data, ""
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return data, ""
	}
	return data, fmt.Sprintf("r=%.2f", analysis.Round(r, 2))
}
