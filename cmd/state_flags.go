package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/KaramelBytes/csvinsight-cli/internal/dashboard"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// stateFlags are the filter and grouping flags shared by commands that
// derive a dashboard.
type stateFlags struct {
	search       string
	categoryCol  string
	categories   []string
	categoryMode string
	numericCol   string
	min          float64
	max          float64
	dateCol      string
	from         string
	to           string
	where        string
	groupBy      string
	metric       string
	agg          string
}

func (s *stateFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.search, "search", "", "keep rows where any cell contains this text (case-insensitive)")
	fs.StringVar(&s.categoryCol, "category-col", "", "column used by the category filter")
	fs.StringSliceVar(&s.categories, "category", nil, "allowed category values (repeatable; implies --category-mode custom)")
	fs.StringVar(&s.categoryMode, "category-mode", "", "category filter mode: all|custom|none")
	fs.StringVar(&s.numericCol, "numeric-col", "", "column used by the numeric range filter")
	fs.Float64Var(&s.min, "min", 0, "inclusive lower bound of the numeric range")
	fs.Float64Var(&s.max, "max", 0, "inclusive upper bound of the numeric range")
	fs.StringVar(&s.dateCol, "date-col", "", "column used by the date range filter")
	fs.StringVar(&s.from, "from", "", "first day of the date range (inclusive)")
	fs.StringVar(&s.to, "to", "", "last day of the date range (inclusive)")
	fs.StringVar(&s.where, "where", "", "boolean expression over columns, e.g. \"amount > 100 && region == 'West'\"")
	fs.StringVar(&s.groupBy, "group-by", "", "column to group the main chart by")
	fs.StringVar(&s.metric, "metric", "", "numeric column aggregated per group")
	fs.StringVar(&s.agg, "agg", "", "aggregation: sum|avg|count|min|max")
}

// apply patches m with every flag that was set on the command line.
func (s *stateFlags) apply(fs *pflag.FlagSet, m *dashboard.Manager) error {
	current := m.Snapshot().Filters
	var fp []dashboard.FilterPatch

	if fs.Changed("search") {
		fp = append(fp, dashboard.WithSearch(s.search))
	}
	if fs.Changed("category-col") {
		fp = append(fp, dashboard.WithCategoryColumn(s.categoryCol))
	}
	if fs.Changed("category") {
		fp = append(fp, dashboard.WithCategoryValues(s.categories...), dashboard.WithCategoryMode(model.CategoryCustom))
	}
	if fs.Changed("category-mode") {
		mode, err := parseCategoryMode(s.categoryMode)
		if err != nil {
			return err
		}
		fp = append(fp, dashboard.WithCategoryMode(mode))
	}

	hasMin, hasMax := fs.Changed("min"), fs.Changed("max")
	if fs.Changed("numeric-col") || hasMin || hasMax {
		col := current.NumericColumn
		if fs.Changed("numeric-col") {
			col = s.numericCol
		}
		if col == "" {
			return fmt.Errorf("--min/--max need a numeric column (set --numeric-col)")
		}
		var lo, hi *float64
		if hasMin {
			v := s.min
			lo = &v
		}
		if hasMax {
			v := s.max
			hi = &v
		}
		fp = append(fp, dashboard.WithNumericRange(col, lo, hi))
	}

	if fs.Changed("date-col") || fs.Changed("from") || fs.Changed("to") {
		col := current.DateColumn
		if fs.Changed("date-col") {
			col = s.dateCol
		}
		if col == "" {
			return fmt.Errorf("--from/--to need a date column (set --date-col)")
		}
		fp = append(fp, dashboard.WithDateRange(col, s.from, s.to))
	}

	if fs.Changed("where") {
		fp = append(fp, dashboard.WithExpression(s.where))
	}
	if len(fp) > 0 {
		m.PatchFilters(fp...)
	}

	var gp []dashboard.GroupingPatch
	if fs.Changed("group-by") {
		gp = append(gp, dashboard.GroupBy(s.groupBy))
	}
	if fs.Changed("metric") {
		gp = append(gp, dashboard.Metric(s.metric))
	}
	if fs.Changed("agg") {
		agg, err := model.ParseAggType(strings.ToLower(strings.TrimSpace(s.agg)))
		if err != nil {
			return err
		}
		gp = append(gp, dashboard.Aggregation(agg))
	}
	if len(gp) > 0 {
		m.SetGrouping(gp...)
	}
	return nil
}

func parseCategoryMode(s string) (model.CategoryMode, error) {
	switch m := model.CategoryMode(strings.ToLower(strings.TrimSpace(s))); m {
	case model.CategoryAll, model.CategoryCustom, model.CategoryNone:
		return m, nil
	}
	return "", fmt.Errorf("unsupported --category-mode: %s (use all|custom|none)", s)
}
