// Package filter narrows dataset rows by a declarative FilterState.
package filter

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/KaramelBytes/csvinsight-cli/internal/analysis"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// Evaluator is a FilterState prepared for repeated row matching. Set lookups,
// date bounds and the expression are resolved once.
type Evaluator struct {
	search string

	selectionCol string
	selection    map[string]struct{}

	categoryCol  string
	categoryNone bool
	categories   map[string]struct{}

	numericCol string
	numMin     *float64
	numMax     *float64

	dateCol  string
	hasDates bool
	from     *time.Time
	to       *time.Time

	expr *govaluate.EvaluableExpression
}

// NewEvaluator prepares f for matching. A category mode left empty is
// normalized first. An expression that does not compile imposes no
// constraint.
func NewEvaluator(f model.FilterState) *Evaluator {
	f = f.Normalize()
	e := &Evaluator{search: strings.ToLower(strings.TrimSpace(f.Search))}

	if sel := f.ChartSelection; sel != nil && len(sel.Values) > 0 {
		e.selectionCol = sel.Column
		e.selection = toSet(sel.Values)
	}

	if f.CategoryColumn != "" {
		e.categoryCol = f.CategoryColumn
		switch f.CategoryMode {
		case model.CategoryNone:
			e.categoryNone = true
		case model.CategoryCustom:
			if len(f.CategoryValues) > 0 {
				e.categories = toSet(f.CategoryValues)
			}
		}
	}

	if f.NumericColumn != "" && f.NumericRange != nil {
		e.numericCol = f.NumericColumn
		e.numMin = f.NumericRange.Min
		e.numMax = f.NumericRange.Max
	}

	if f.DateColumn != "" && f.DateRange != nil {
		e.dateCol = f.DateColumn
		e.hasDates = true
		// an unparseable bound is ignored rather than rejecting everything
		if t, ok := parseBound(f.DateRange.From); ok {
			e.from = &t
		}
		if t, ok := parseBound(f.DateRange.To); ok {
			e.to = &t
		}
	}

	if strings.TrimSpace(f.Expression) != "" {
		expr, err := govaluate.NewEvaluableExpression(f.Expression)
		if err != nil {
			slog.Debug("ignoring filter expression", "expression", f.Expression, "err", err)
		} else {
			e.expr = expr
		}
	}
	return e
}

func parseBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	return analysis.ParseDate(s)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Match reports whether row satisfies every clause.
func (e *Evaluator) Match(row model.Row) bool {
	if e.search != "" && !containsSearch(row, e.search) {
		return false
	}
	if e.selection != nil {
		if _, ok := e.selection[row[e.selectionCol]]; !ok {
			return false
		}
	}
	if e.categoryCol != "" {
		if e.categoryNone {
			return false
		}
		if e.categories != nil {
			if _, ok := e.categories[row[e.categoryCol]]; !ok {
				return false
			}
		}
	}
	if e.numericCol != "" {
		v, ok := analysis.ParseNumber(row[e.numericCol])
		if !ok {
			return false
		}
		if e.numMin != nil && v < *e.numMin {
			return false
		}
		if e.numMax != nil && v > *e.numMax {
			return false
		}
	}
	if e.hasDates {
		d, ok := analysis.ParseDate(row[e.dateCol])
		if !ok {
			return false
		}
		if e.from != nil && analysis.BeforeDay(d, *e.from) {
			return false
		}
		if e.to != nil && analysis.AfterDay(d, *e.to) {
			return false
		}
	}
	if e.expr != nil {
		result, err := e.expr.Evaluate(expressionParams(row))
		if err != nil {
			return false
		}
		b, ok := result.(bool)
		if !ok || !b {
			return false
		}
	}
	return true
}

// Apply returns the rows matching every clause of f, in their original order.
func Apply(rows []model.Row, f model.FilterState) []model.Row {
	e := NewEvaluator(f)
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if e.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsSearch(row model.Row, lowered string) bool {
	for _, v := range row {
		if strings.Contains(strings.ToLower(v), lowered) {
			return true
		}
	}
	return false
}

// expressionParams exposes cells to an expression: numbers where the cell
// parses as one, the raw string otherwise.
func expressionParams(row model.Row) map[string]any {
	params := make(map[string]any, len(row))
	for k, v := range row {
		if n, ok := analysis.ParseNumber(v); ok {
			params[k] = n
		} else {
			params[k] = v
		}
	}
	return params
}
