// Package grouping buckets rows by a key column and reduces a metric per bucket.
package grouping

import (
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/csvinsight-cli/internal/analysis"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// UnknownLabel is the bucket for rows without a group value.
const UnknownLabel = "Unknown"

// Point is one aggregated bucket.
type Point struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Group buckets rows by groupBy and aggregates metric within each bucket.
// Count contributes one per row whatever the metric; other aggregations only
// use metric cells that parse as numbers. Buckets are ordered chronologically
// when every label is a date, otherwise by value descending with first-seen
// order breaking ties. An empty groupBy yields nil.
func Group(rows []model.Row, groupBy, metric string, agg model.AggType) []Point {
	if groupBy == "" {
		return nil
	}
	buckets := make(map[string][]float64)
	var order []string
	for _, r := range rows {
		label := r[groupBy]
		if strings.TrimSpace(label) == "" {
			label = UnknownLabel
		}
		if _, ok := buckets[label]; !ok {
			order = append(order, label)
			buckets[label] = nil
		}
		if agg == model.AggCount {
			buckets[label] = append(buckets[label], 1)
			continue
		}
		if metric == "" {
			continue
		}
		if v, ok := analysis.ParseNumber(r[metric]); ok {
			buckets[label] = append(buckets[label], v)
		}
	}

	points := make([]Point, 0, len(order))
	for _, label := range order {
		points = append(points, Point{Label: label, Value: analysis.Aggregate(buckets[label], agg)})
	}

	if dates, ok := labelDates(points); ok {
		sort.SliceStable(points, func(i, j int) bool { return dates[points[i].Label].Before(dates[points[j].Label]) })
		return points
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

func labelDates(points []Point) (map[string]time.Time, bool) {
	dates := make(map[string]time.Time, len(points))
	for _, p := range points {
		d, ok := analysis.ParseDate(p.Label)
		if !ok {
			return nil, false
		}
		dates[p.Label] = d
	}
	return dates, true
}
