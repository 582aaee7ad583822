package dashboard

import "github.com/KaramelBytes/csvinsight-cli/internal/model"

// FilterPatch changes one aspect of the current FilterState.
type FilterPatch func(*model.FilterState)

func WithSearch(term string) FilterPatch {
	return func(f *model.FilterState) { f.Search = term }
}

// WithCategoryColumn selects the category column; an empty column clears the clause.
func WithCategoryColumn(column string) FilterPatch {
	return func(f *model.FilterState) { f.CategoryColumn = column }
}

func WithCategoryMode(mode model.CategoryMode) FilterPatch {
	return func(f *model.FilterState) { f.CategoryMode = mode }
}

// WithCategoryValues sets the explicit allow list used in custom mode.
func WithCategoryValues(values ...string) FilterPatch {
	return func(f *model.FilterState) { f.CategoryValues = append([]string{}, values...) }
}

// WithNumericRange filters column to [min, max]; nil bounds are open.
func WithNumericRange(column string, min, max *float64) FilterPatch {
	return func(f *model.FilterState) {
		f.NumericColumn = column
		f.NumericRange = &model.NumericRange{Min: min, Max: max}
	}
}

// WithoutNumericRange keeps the numeric column but drops its bounds.
func WithoutNumericRange() FilterPatch {
	return func(f *model.FilterState) { f.NumericRange = nil }
}

// WithDateRange filters column to the inclusive day range [from, to]; empty
// bounds are open.
func WithDateRange(column, from, to string) FilterPatch {
	return func(f *model.FilterState) {
		f.DateColumn = column
		f.DateRange = &model.DateRange{From: from, To: to}
	}
}

func WithoutDateRange() FilterPatch {
	return func(f *model.FilterState) { f.DateRange = nil }
}

// WithChartSelection narrows to the clicked values of an interactive chart.
// No values clears the selection.
func WithChartSelection(column string, values ...string) FilterPatch {
	return func(f *model.FilterState) {
		if len(values) == 0 {
			f.ChartSelection = nil
			return
		}
		f.ChartSelection = &model.ChartSelection{Column: column, Values: append([]string{}, values...)}
	}
}

func WithExpression(expr string) FilterPatch {
	return func(f *model.FilterState) { f.Expression = expr }
}

// GroupingPatch changes one aspect of the current GroupingConfig.
type GroupingPatch func(*model.GroupingConfig)

// GroupBy sets the grouping column; empty disables the main chart.
func GroupBy(column string) GroupingPatch {
	return func(g *model.GroupingConfig) { g.GroupBy = column }
}

func Metric(column string) GroupingPatch {
	return func(g *model.GroupingConfig) { g.Metric = column }
}

func Aggregation(agg model.AggType) GroupingPatch {
	return func(g *model.GroupingConfig) { g.Aggregation = agg }
}
