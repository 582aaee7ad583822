package model

import "fmt"

// CategoryMode controls how the category clause of a FilterState applies.
type CategoryMode string

const (
	CategoryAll    CategoryMode = "all"
	CategoryCustom CategoryMode = "custom"
	CategoryNone   CategoryMode = "none"
)

type DateRange struct {
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`
}

// NumericRange bounds are optional; a nil bound is open.
type NumericRange struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// ChartSelection narrows rows to the values clicked on an interactive chart.
type ChartSelection struct {
	Column string   `json:"column" yaml:"column"`
	Values []string `json:"values" yaml:"values"`
}

// FilterState is the declarative filter specification. Every clause is
// optional and all present clauses are AND-ed.
type FilterState struct {
	Search         string          `json:"search" yaml:"search"`
	DateColumn     string          `json:"dateColumn,omitempty" yaml:"dateColumn,omitempty"`
	DateRange      *DateRange      `json:"dateRange,omitempty" yaml:"dateRange,omitempty"`
	CategoryColumn string          `json:"categoryColumn,omitempty" yaml:"categoryColumn,omitempty"`
	CategoryMode   CategoryMode    `json:"categoryMode,omitempty" yaml:"categoryMode,omitempty"`
	CategoryValues []string        `json:"categoryValues" yaml:"categoryValues"`
	NumericColumn  string          `json:"numericColumn,omitempty" yaml:"numericColumn,omitempty"`
	NumericRange   *NumericRange   `json:"numericRange,omitempty" yaml:"numericRange,omitempty"`
	ChartSelection *ChartSelection `json:"chartSelection,omitempty" yaml:"chartSelection,omitempty"`
	Expression     string          `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// DefaultFilters is the empty filter: nothing is narrowed.
func DefaultFilters() FilterState {
	return FilterState{CategoryMode: CategoryAll, CategoryValues: []string{}}
}

// Normalize fills an absent category mode for state persisted before the
// mode existed: "custom" when values are present, otherwise "all".
func (f FilterState) Normalize() FilterState {
	if f.CategoryMode != "" {
		return f
	}
	if len(f.CategoryValues) > 0 {
		f.CategoryMode = CategoryCustom
	} else {
		f.CategoryMode = CategoryAll
	}
	return f
}

// AggType selects how grouped metric values are reduced.
type AggType string

const (
	AggSum   AggType = "sum"
	AggAvg   AggType = "avg"
	AggCount AggType = "count"
	AggMin   AggType = "min"
	AggMax   AggType = "max"
)

// ParseAggType validates s against the known aggregation kinds.
func ParseAggType(s string) (AggType, error) {
	switch a := AggType(s); a {
	case AggSum, AggAvg, AggCount, AggMin, AggMax:
		return a, nil
	}
	return "", fmt.Errorf("unknown aggregation %q (use sum|avg|count|min|max)", s)
}

type GroupingConfig struct {
	GroupBy     string  `json:"groupBy,omitempty" yaml:"groupBy,omitempty"`
	Metric      string  `json:"metric,omitempty" yaml:"metric,omitempty"`
	Aggregation AggType `json:"aggregation" yaml:"aggregation"`
}

func DefaultGrouping() GroupingConfig {
	return GroupingConfig{Aggregation: AggSum}
}

type ChartType string

const (
	ChartTimeseries ChartType = "timeseries"
	ChartBar        ChartType = "bar"
	ChartHistogram  ChartType = "histogram"
	ChartPie        ChartType = "pie"
	ChartScatter    ChartType = "scatter"
)

// Record is one plain data point of a chart.
type Record map[string]any

type ChartSpec struct {
	ID                   string    `json:"id" yaml:"id"`
	Title                string    `json:"title" yaml:"title"`
	Type                 ChartType `json:"type" yaml:"type"`
	XKey                 string    `json:"xKey" yaml:"xKey"`
	YKey                 string    `json:"yKey" yaml:"yKey"`
	Data                 []Record  `json:"data" yaml:"data"`
	InteractiveFilterKey string    `json:"interactiveFilterKey,omitempty" yaml:"interactiveFilterKey,omitempty"`
	Note                 string    `json:"note,omitempty" yaml:"note,omitempty"`
}

type SummarySpec struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Hint  string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// ViewConfig is a named snapshot of filter and grouping configuration. Views
// outlive any particular dataset.
type ViewConfig struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Filters    FilterState    `json:"filters" yaml:"filters"`
	Grouping   GroupingConfig `json:"grouping" yaml:"grouping"`
	ChartOrder []string       `json:"chartOrder" yaml:"chartOrder"`
}
