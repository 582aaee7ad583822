package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

func rows() []model.Row {
	return []model.Row{
		{"category": "A", "amount": "10"},
		{"category": "A", "amount": "20"},
		{"category": "B", "amount": "5"},
	}
}

func TestGroupSum(t *testing.T) {
	got := Group(rows(), "category", "amount", model.AggSum)
	assert.Equal(t, []Point{{Label: "A", Value: 30}, {Label: "B", Value: 5}}, got)
}

func TestGroupCountIgnoresMetric(t *testing.T) {
	got := Group(rows(), "category", "", model.AggCount)
	assert.Equal(t, []Point{{Label: "A", Value: 2}, {Label: "B", Value: 1}}, got)
}

func TestGroupWithoutColumn(t *testing.T) {
	assert.Empty(t, Group(rows(), "", "amount", model.AggSum))
}

func TestGroupUnknownAndUnparseable(t *testing.T) {
	in := []model.Row{
		{"category": "", "amount": "7"},
		{"category": "A", "amount": "oops"},
		{"category": "A", "amount": "3"},
	}
	got := Group(in, "category", "amount", model.AggAvg)
	assert.Equal(t, []Point{{Label: UnknownLabel, Value: 7}, {Label: "A", Value: 3}}, got)
}

func TestGroupTiesKeepFirstSeenOrder(t *testing.T) {
	in := []model.Row{
		{"k": "z", "v": "1"},
		{"k": "y", "v": "1"},
		{"k": "x", "v": "2"},
	}
	got := Group(in, "k", "v", model.AggMax)
	assert.Equal(t, []string{"x", "z", "y"}, labels(got))
}

func TestGroupDateLabelsSortChronologically(t *testing.T) {
	in := []model.Row{
		{"day": "2025-01-03", "v": "100"},
		{"day": "2025-01-01", "v": "1"},
		{"day": "2025-01-02", "v": "50"},
	}
	got := Group(in, "day", "v", model.AggSum)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, labels(got))
}

func labels(points []Point) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Label)
	}
	return out
}
