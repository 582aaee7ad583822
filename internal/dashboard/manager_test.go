package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvinsight-cli/internal/ingest"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
	"github.com/KaramelBytes/csvinsight-cli/internal/sample"
	"github.com/KaramelBytes/csvinsight-cli/internal/storage"
)

var fixtureHeaders = []string{"date", "category", "amount", "flag"}

func fixtureRows() []model.Row {
	return []model.Row{
		{"date": "2025-01-01", "category": "A", "amount": "10", "flag": "true"},
		{"date": "2025-01-02", "category": "B", "amount": "20", "flag": "false"},
		{"date": "2025-01-03", "category": "A", "amount": "30", "flag": "true"},
	}
}

func newTestManager(t *testing.T) (*Manager, *storage.MemoryStore) {
	t.Helper()
	kv := storage.NewMemoryStore()
	m := New(
		WithDatasetStore(storage.NewDatasetStore(kv)),
		WithViewStore(storage.NewViewStore(kv)),
	)
	m.Initialize()
	return m, kv
}

func chartIDs(charts []model.ChartSpec) []string {
	ids := make([]string, 0, len(charts))
	for _, c := range charts {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestInitializeEmpty(t *testing.T) {
	m, _ := newTestManager(t)
	s := m.Snapshot()
	assert.False(t, s.HasDataset())
	assert.Equal(t, DefaultViewID, s.ActiveViewID)
	assert.Empty(t, s.Views)
	assert.Empty(t, s.FilteredRows)
	assert.Nil(t, s.MainChart)
	assert.Equal(t, model.DefaultFilters(), s.Filters)
}

func TestSetDatasetSeedsFiltersAndDerives(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	s := m.Snapshot()

	assert.Equal(t, "orders.csv", s.DatasetName)
	assert.Equal(t, 100, s.LoadingProgress)
	assert.Equal(t, "date", s.Filters.DateColumn)
	// no column is below the uniqueness cutoff so the first string column is used
	assert.Equal(t, "category", s.Filters.CategoryColumn)
	assert.Equal(t, "amount", s.Filters.NumericColumn)
	require.NotNil(t, s.Filters.NumericRange)
	assert.Equal(t, 10.0, *s.Filters.NumericRange.Min)
	assert.Equal(t, 30.0, *s.Filters.NumericRange.Max)

	assert.Len(t, s.FilteredRows, 3)
	assert.Equal(t, []string{
		"timeseries-date-amount",
		"bar-category-amount",
		"hist-amount",
		"pie-flag",
	}, chartIDs(s.Charts))
	assert.Nil(t, s.MainChart)
	assert.Equal(t, s.Charts, s.VisibleCharts())
}

func TestResetFiltersSeedsWithoutFallbackOrRange(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	m.PatchFilters(WithSearch("b"))
	require.Len(t, m.Snapshot().FilteredRows, 1)

	m.ResetFilters()
	f := m.Snapshot().Filters
	assert.Empty(t, f.Search)
	assert.Equal(t, "date", f.DateColumn)
	assert.Empty(t, f.CategoryColumn)
	assert.Equal(t, "amount", f.NumericColumn)
	assert.Nil(t, f.NumericRange)
	assert.Len(t, m.Snapshot().FilteredRows, 3)
}

func TestPatchFiltersRecomputes(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())

	m.PatchFilters(WithCategoryMode(model.CategoryCustom), WithCategoryValues("A"))
	s := m.Snapshot()
	assert.Len(t, s.FilteredRows, 2)
	assert.Equal(t, "2", s.Summaries[0].Value)

	m.PatchFilters(WithChartSelection("flag", "false"))
	assert.Empty(t, m.Snapshot().FilteredRows)

	m.PatchFilters(WithChartSelection("flag"))
	assert.Nil(t, m.Snapshot().Filters.ChartSelection)
	assert.Len(t, m.Snapshot().FilteredRows, 2)

	lo := 15.0
	m.PatchFilters(WithNumericRange("amount", &lo, nil))
	assert.Len(t, m.Snapshot().FilteredRows, 1)

	m.PatchFilters(WithoutNumericRange(), WithDateRange("date", "2025-01-02", ""))
	assert.Len(t, m.Snapshot().FilteredRows, 1)

	m.PatchFilters(WithoutDateRange(), WithExpression("amount > 10"))
	assert.Len(t, m.Snapshot().FilteredRows, 1)
}

func TestSnapshotsAreIsolatedFromLaterPatches(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	m.PatchFilters(WithCategoryMode(model.CategoryCustom), WithCategoryValues("A"))
	before := m.Snapshot()

	m.PatchFilters(func(f *model.FilterState) { f.CategoryValues = append(f.CategoryValues, "B") })
	assert.Equal(t, []string{"A"}, before.Filters.CategoryValues)
	assert.Len(t, before.FilteredRows, 2)
	assert.Len(t, m.Snapshot().FilteredRows, 3)
}

func TestGroupingBuildsMainChart(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	m.SetGrouping(GroupBy("category"), Metric("amount"), Aggregation(model.AggSum))

	s := m.Snapshot()
	require.NotNil(t, s.MainChart)
	assert.Equal(t, "group-main", s.MainChart.ID)
	assert.Equal(t, "Grouped by category (sum)", s.MainChart.Title)
	assert.Equal(t, model.ChartBar, s.MainChart.Type)
	assert.Equal(t, []model.Record{
		{"group": "A", "value": 40.0},
		{"group": "B", "value": 20.0},
	}, s.MainChart.Data)

	visible := s.VisibleCharts()
	assert.Equal(t, "group-main", visible[0].ID)
	assert.Len(t, visible, len(s.Charts)+1)

	m.SetGrouping(Aggregation("median"))
	assert.Equal(t, model.AggSum, m.Snapshot().Grouping.Aggregation)

	m.SetGrouping(GroupBy(""))
	assert.Nil(t, m.Snapshot().MainChart)
}

func TestMainChartOmittedWhenNothingSurvivesFilters(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	m.SetGrouping(GroupBy("category"), Aggregation(model.AggCount))
	require.NotNil(t, m.Snapshot().MainChart)

	m.PatchFilters(WithSearch("no such value"))
	assert.Nil(t, m.Snapshot().MainChart)
}

func TestSetDatasetResetsGrouping(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	m.SetGrouping(GroupBy("category"))
	m.SetDataset("again.csv", fixtureHeaders, fixtureRows())
	assert.Equal(t, model.DefaultGrouping(), m.Snapshot().Grouping)
}

func TestViewsLifecycle(t *testing.T) {
	m, kv := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	m.PatchFilters(WithSearch("a"))
	m.SetGrouping(GroupBy("category"))

	v := m.SaveCurrentView("Only A")
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "Only A", v.Name)
	assert.Equal(t, "a", v.Filters.Search)
	assert.Equal(t, "category", v.Grouping.GroupBy)
	assert.Equal(t, chartIDs(m.Snapshot().Charts), v.ChartOrder)
	assert.Equal(t, v.ID, m.Snapshot().ActiveViewID)

	require.NoError(t, m.ApplyView(DefaultViewID))
	s := m.Snapshot()
	assert.Empty(t, s.Filters.Search)
	assert.Equal(t, model.DefaultGrouping(), s.Grouping)
	assert.Equal(t, DefaultViewID, s.ActiveViewID)

	require.NoError(t, m.ApplyView(v.ID))
	s = m.Snapshot()
	assert.Equal(t, "a", s.Filters.Search)
	assert.Equal(t, "category", s.Grouping.GroupBy)
	assert.Equal(t, v.ID, s.ActiveViewID)

	err := m.ApplyView("missing")
	assert.ErrorIs(t, err, ErrUnknownView)
	assert.Equal(t, v.ID, m.Snapshot().ActiveViewID)

	// persisted views survive a restart
	restarted := New(WithDatasetStore(storage.NewDatasetStore(kv)), WithViewStore(storage.NewViewStore(kv)))
	restarted.Initialize()
	require.Len(t, restarted.Snapshot().Views, 1)
	assert.Equal(t, v.ID, restarted.Snapshot().Views[0].ID)

	m.DeleteView(v.ID)
	s = m.Snapshot()
	assert.Empty(t, s.Views)
	assert.Equal(t, DefaultViewID, s.ActiveViewID)
	assert.Equal(t, "a", s.Filters.Search, "deleting a view keeps the current filters")
}

func TestExportImportViews(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	first := m.SaveCurrentView("first")
	m.SaveCurrentView("second")

	raw, err := m.ExportViews()
	require.NoError(t, err)

	other, _ := newTestManager(t)
	other.SaveCurrentView("replaced")
	imported := other.ImportViewsJSON(raw)
	require.Len(t, imported, 2)
	assert.Equal(t, first.ID, other.Snapshot().Views[0].ID)
	assert.Equal(t, "second", other.Snapshot().Views[1].Name)

	assert.Empty(t, other.ImportViewsJSON([]byte("not json")))
	assert.Empty(t, other.Snapshot().Views)
}

func TestClearKeepsViews(t *testing.T) {
	m, kv := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())
	m.SaveCurrentView("kept")
	m.Clear()

	s := m.Snapshot()
	assert.False(t, s.HasDataset())
	assert.Empty(t, s.FilteredRows)
	assert.Len(t, s.Views, 1)
	assert.Equal(t, DefaultViewID, s.ActiveViewID)

	_, err := kv.Get(storage.DatasetKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInitializeRestoresPersistedDataset(t *testing.T) {
	m, kv := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())

	restarted := New(WithDatasetStore(storage.NewDatasetStore(kv)))
	restarted.Initialize()
	s := restarted.Snapshot()
	require.True(t, s.HasDataset())
	assert.Equal(t, "orders.csv", s.DatasetName)
	assert.Len(t, s.Rows, 3)
	assert.Len(t, s.Metas, 4)
	assert.Len(t, s.FilteredRows, 3)
	assert.Empty(t, s.Filters.CategoryColumn)
	assert.Nil(t, s.Filters.NumericRange)
}

func TestLoadSample(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.LoadSample())
	s := m.Snapshot()
	assert.Equal(t, sample.Name, s.DatasetName)
	assert.Len(t, s.Rows, 60)
	assert.Equal(t, "order_date", s.Filters.DateColumn)
	assert.Equal(t, "category", s.Filters.CategoryColumn)
	assert.Equal(t, "amount", s.Filters.NumericColumn)
	assert.Len(t, s.FilteredRows, 60)

	opts := m.FilterOptions()
	assert.Equal(t, []string{"order_date"}, opts.DateColumns)
	assert.Contains(t, opts.CategoryColumns, "category")
	assert.Contains(t, opts.NumericColumns, "amount")
	assert.ElementsMatch(t, []string{"Garden", "Electronics", "Home", "Toys", "Books"}, opts.CategoryValues)
	assert.Equal(t, "Garden", opts.CategoryValues[0])
}

func TestFilterOptionsCapsDistinctValues(t *testing.T) {
	rows := make([]model.Row, 0, 300)
	for i := 0; i < 300; i++ {
		rows = append(rows, model.Row{"c": string(rune('a'+i%26)) + string(rune('a'+i/26)), "n": "1"})
	}
	rows = append(rows, model.Row{"c": " ", "n": "1"})
	s := Snapshot{Rows: rows, Filters: model.FilterState{CategoryColumn: "c"}}
	assert.Len(t, s.FilterOptions().CategoryValues, maxCategoryOptions)
}

func TestLoadFileKeepsStateOnError(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())

	err := m.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), ingest.ReadOptions{})
	require.Error(t, err)
	assert.Equal(t, "orders.csv", m.Snapshot().DatasetName)

	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name;Age\nAda;36\nAlan;41\n"), 0o644))
	var reported []int
	require.NoError(t, m.LoadFile(context.Background(), path, ingest.ReadOptions{Progress: func(p int) { reported = append(reported, p) }}))
	s := m.Snapshot()
	assert.Equal(t, "people.csv", s.DatasetName)
	assert.Equal(t, []string{"name", "age"}, s.Headers)
	assert.Equal(t, 100, reported[len(reported)-1])
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetDataset("orders.csv", fixtureHeaders, fixtureRows())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i%2 == 0 {
					m.PatchFilters(WithSearch([]string{"", "true", "b"}[j%3]))
					continue
				}
				s := m.Snapshot()
				assert.Equal(t, len(s.FilteredRows), expectedRows(s.Filters.Search))
			}
		}(i)
	}
	wg.Wait()
}

func expectedRows(search string) int {
	switch search {
	case "true":
		return 2
	case "b":
		return 1
	}
	return 3
}
