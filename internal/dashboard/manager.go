// Package dashboard owns the loaded dataset, its filter and grouping
// configuration and the saved views, and keeps the derived rows, summaries
// and charts consistent with them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/KaramelBytes/csvinsight-cli/internal/analysis"
	"github.com/KaramelBytes/csvinsight-cli/internal/filter"
	"github.com/KaramelBytes/csvinsight-cli/internal/grouping"
	"github.com/KaramelBytes/csvinsight-cli/internal/ingest"
	"github.com/KaramelBytes/csvinsight-cli/internal/insight"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
	"github.com/KaramelBytes/csvinsight-cli/internal/sample"
	"github.com/KaramelBytes/csvinsight-cli/internal/storage"
)

// DefaultViewID names the implicit view of seeded filters and default grouping.
const DefaultViewID = "default"

const (
	mainChartID = "group-main"
	// seeded category columns must be at most this unique
	seedCategoryUniqueness = 0.5
)

// ErrUnknownView is returned by ApplyView for an id that is not saved.
var ErrUnknownView = errors.New("unknown view")

// Derived is everything recomputed from rows, filters and grouping.
type Derived struct {
	FilteredRows []model.Row
	Summaries    []model.SummarySpec
	Charts       []model.ChartSpec
	MainChart    *model.ChartSpec
}

// Snapshot is an immutable view of the manager state. Callers must not
// modify the slices it holds.
type Snapshot struct {
	DatasetName     string
	Headers         []string
	Rows            []model.Row
	Metas           []model.ColumnMeta
	Filters         model.FilterState
	Grouping        model.GroupingConfig
	Views           []model.ViewConfig
	ActiveViewID    string
	LoadingProgress int
	Derived
}

// HasDataset reports whether a dataset is loaded.
func (s Snapshot) HasDataset() bool { return s.Headers != nil }

// VisibleCharts is the display order: the main chart, when present, first.
func (s Snapshot) VisibleCharts() []model.ChartSpec {
	if s.MainChart == nil {
		return s.Charts
	}
	out := make([]model.ChartSpec, 0, len(s.Charts)+1)
	out = append(out, *s.MainChart)
	return append(out, s.Charts...)
}

// Manager serializes state transitions. Every transition builds a complete
// new Snapshot before publishing it, so readers never see partial state.
type Manager struct {
	mu       sync.RWMutex
	state    *Snapshot
	datasets *storage.DatasetStore
	views    *storage.ViewStore
	insights insight.Options
}

type Option func(*Manager)

// WithDatasetStore persists every loaded dataset and restores it on Initialize.
func WithDatasetStore(s *storage.DatasetStore) Option {
	return func(m *Manager) { m.datasets = s }
}

// WithViewStore persists saved views.
func WithViewStore(s *storage.ViewStore) Option {
	return func(m *Manager) { m.views = s }
}

func WithInsightOptions(o insight.Options) Option {
	return func(m *Manager) { m.insights = o }
}

func New(opts ...Option) *Manager {
	m := &Manager{insights: insight.DefaultOptions()}
	for _, o := range opts {
		o(m)
	}
	m.state = emptySnapshot(nil)
	return m
}

func emptySnapshot(views []model.ViewConfig) *Snapshot {
	if views == nil {
		views = []model.ViewConfig{}
	}
	return &Snapshot{
		Filters:      model.DefaultFilters(),
		Grouping:     model.DefaultGrouping(),
		Views:        views,
		ActiveViewID: DefaultViewID,
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.state
}

// Initialize restores the persisted dataset, re-profiling it, and the saved views.
func (m *Manager) Initialize() {
	var views []model.ViewConfig
	if m.views != nil {
		views = m.views.Load()
	}
	next := emptySnapshot(views)
	if m.datasets != nil {
		if stored, ok := m.datasets.Load(); ok && len(stored.Rows) > 0 {
			next.DatasetName = stored.Name
			next.Headers = stored.Headers
			next.Rows = stored.Rows
			next.Metas = analysis.Profile(stored.Rows, stored.Headers)
			next.Filters = seedFilters(next.Metas, false)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publish(next)
}

// SetDataset replaces the dataset, re-seeds filters from the profiled
// columns, resets grouping and persists the dataset.
func (m *Manager) SetDataset(name string, headers []string, rows []model.Row) {
	if headers == nil {
		headers = []string{}
	}
	if rows == nil {
		rows = []model.Row{}
	}
	metas := analysis.Profile(rows, headers)

	m.mu.Lock()
	next := *m.state
	next.DatasetName = name
	next.Headers = headers
	next.Rows = rows
	next.Metas = metas
	next.Filters = seedFilters(metas, true)
	next.Grouping = model.DefaultGrouping()
	next.LoadingProgress = 100
	m.publish(&next)
	m.mu.Unlock()

	if m.datasets != nil {
		ds := model.Dataset{Name: name, Headers: headers, Rows: rows, Metas: metas}
		if err := m.datasets.Save(ds); err != nil {
			slog.Warn("persist dataset", "name", name, "err", err)
		}
	}
}

// LoadFile reads and parses path, then installs it as the dataset. On error
// the current dataset is left untouched.
func (m *Manager) LoadFile(ctx context.Context, path string, opt ingest.ReadOptions) error {
	progress := opt.Progress
	prev := m.Snapshot().LoadingProgress
	opt.Progress = func(p int) {
		m.setProgress(p)
		if progress != nil {
			progress(p)
		}
	}
	table, err := ingest.ReadFile(ctx, path, opt)
	if err != nil {
		m.setProgress(prev)
		return err
	}
	m.SetDataset(baseName(path), table.Headers, table.Rows)
	return nil
}

// LoadSample installs the bundled sample dataset.
func (m *Manager) LoadSample() error {
	table, err := sample.Load()
	if err != nil {
		return fmt.Errorf("load sample dataset: %w", err)
	}
	m.SetDataset(sample.Name, table.Headers, table.Rows)
	return nil
}

func (m *Manager) setProgress(p int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	next.LoadingProgress = p
	m.state = &next
}

// PatchFilters applies patches to the current filters and recomputes.
func (m *Manager) PatchFilters(patches ...FilterPatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	f := cloneFilters(next.Filters)
	for _, p := range patches {
		p(&f)
	}
	next.Filters = f.Normalize()
	m.publish(&next)
}

// ResetFilters re-seeds filters from the column metadata. Unlike a fresh
// load, no category fallback or numeric bounds are seeded.
func (m *Manager) ResetFilters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	next.Filters = seedFilters(next.Metas, false)
	m.publish(&next)
}

// SetGrouping applies patches to the grouping configuration and recomputes.
func (m *Manager) SetGrouping(patches ...GroupingPatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	g := next.Grouping
	for _, p := range patches {
		p(&g)
	}
	next.Grouping = sanitizeGrouping(g)
	m.publish(&next)
}

// Clear drops the dataset, in memory and persisted. Saved views are kept.
func (m *Manager) Clear() {
	if m.datasets != nil {
		if err := m.datasets.Clear(); err != nil {
			slog.Warn("clear persisted dataset", "err", err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = emptySnapshot(m.state.Views)
}

// SaveCurrentView stores the current filters and grouping under name and
// makes it the active view.
func (m *Manager) SaveCurrentView(name string) model.ViewConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	order := make([]string, 0, len(next.Charts))
	for _, c := range next.Charts {
		order = append(order, c.ID)
	}
	view := model.ViewConfig{
		ID:         uuid.NewString(),
		Name:       name,
		Filters:    cloneFilters(next.Filters),
		Grouping:   next.Grouping,
		ChartOrder: order,
	}
	views := make([]model.ViewConfig, 0, len(next.Views)+1)
	views = append(append(views, next.Views...), view)
	next.Views = views
	next.ActiveViewID = view.ID
	m.persistViews(views)
	m.publish(&next)
	return view
}

// ApplyView activates a saved view. DefaultViewID resets filters and
// grouping. An unknown id returns ErrUnknownView and changes nothing.
func (m *Manager) ApplyView(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	if id == DefaultViewID {
		next.Filters = seedFilters(next.Metas, false)
		next.Grouping = model.DefaultGrouping()
		next.ActiveViewID = DefaultViewID
		m.publish(&next)
		return nil
	}
	for _, v := range next.Views {
		if v.ID != id {
			continue
		}
		next.Filters = cloneFilters(v.Filters).Normalize()
		next.Grouping = sanitizeGrouping(v.Grouping)
		next.ActiveViewID = id
		m.publish(&next)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownView, id)
}

// DeleteView removes a saved view and falls back to the default view id.
// Filters and grouping stay as they are.
func (m *Manager) DeleteView(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	views := make([]model.ViewConfig, 0, len(next.Views))
	for _, v := range next.Views {
		if v.ID != id {
			views = append(views, v)
		}
	}
	next.Views = views
	next.ActiveViewID = DefaultViewID
	m.persistViews(views)
	m.publish(&next)
}

// ImportViews replaces the saved views.
func (m *Manager) ImportViews(views []model.ViewConfig) {
	if views == nil {
		views = []model.ViewConfig{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.state
	next.Views = views
	m.persistViews(views)
	m.publish(&next)
}

// ImportViewsJSON replaces the saved views with those in an export document.
// Malformed input imports nothing and yields an empty list.
func (m *Manager) ImportViewsJSON(raw []byte) []model.ViewConfig {
	views := storage.ImportViews(raw)
	m.ImportViews(views)
	return views
}

// ExportViews renders the saved views as an export document.
func (m *Manager) ExportViews() ([]byte, error) {
	return storage.ExportViews(m.Snapshot().Views)
}

func (m *Manager) persistViews(views []model.ViewConfig) {
	if m.views == nil {
		return
	}
	if err := m.views.Save(views); err != nil {
		slog.Warn("persist views", "err", err)
	}
}

// publish recomputes the derived bundle for next and installs it. Callers hold mu.
func (m *Manager) publish(next *Snapshot) {
	next.Derived = recompute(next.Rows, next.Metas, next.Filters, next.Grouping, m.insights)
	m.state = next
}

func recompute(rows []model.Row, metas []model.ColumnMeta, f model.FilterState, g model.GroupingConfig, opt insight.Options) Derived {
	if rows == nil {
		return Derived{}
	}
	filtered := filter.Apply(rows, f)
	ins := insight.GenerateWith(filtered, metas, opt)
	d := Derived{FilteredRows: filtered, Summaries: ins.Summaries, Charts: ins.Charts}
	if g.GroupBy == "" {
		return d
	}
	points := grouping.Group(filtered, g.GroupBy, g.Metric, g.Aggregation)
	if len(points) == 0 {
		return d
	}
	data := make([]model.Record, 0, len(points))
	for _, p := range points {
		data = append(data, model.Record{"group": p.Label, "value": p.Value})
	}
	d.MainChart = &model.ChartSpec{
		ID:    mainChartID,
		Title: fmt.Sprintf("Grouped by %s (%s)", g.GroupBy, g.Aggregation),
		Type:  model.ChartBar,
		XKey:  "group",
		YKey:  "value",
		Data:  data,
	}
	return d
}

// seedFilters picks default filter columns from profiled metadata: the first
// date column, the first low-uniqueness string column and the first numeric
// column. On a fresh load the category falls back to the first string column
// and the numeric range is seeded with the observed bounds.
func seedFilters(metas []model.ColumnMeta, fresh bool) model.FilterState {
	f := model.DefaultFilters()
	if d, ok := model.FirstOfType(metas, model.TypeDate); ok {
		f.DateColumn = d.Key
	}
	for _, s := range model.ColumnsOfType(metas, model.TypeString) {
		if s.UniquenessRatio < seedCategoryUniqueness {
			f.CategoryColumn = s.Key
			break
		}
	}
	if f.CategoryColumn == "" && fresh {
		if s, ok := model.FirstOfType(metas, model.TypeString); ok {
			f.CategoryColumn = s.Key
		}
	}
	if n, ok := model.FirstOfType(metas, model.TypeNumber); ok {
		f.NumericColumn = n.Key
		if fresh && n.Number != nil {
			lo, hi := n.Number.Min, n.Number.Max
			f.NumericRange = &model.NumericRange{Min: &lo, Max: &hi}
		}
	}
	return f
}

func sanitizeGrouping(g model.GroupingConfig) model.GroupingConfig {
	if _, err := model.ParseAggType(string(g.Aggregation)); err != nil {
		g.Aggregation = model.AggSum
	}
	return g
}

// cloneFilters copies the slices and pointers of f so later patches cannot
// reach into a published snapshot.
func cloneFilters(f model.FilterState) model.FilterState {
	f.CategoryValues = append([]string{}, f.CategoryValues...)
	if f.DateRange != nil {
		r := *f.DateRange
		f.DateRange = &r
	}
	if f.NumericRange != nil {
		r := *f.NumericRange
		f.NumericRange = &r
	}
	if f.ChartSelection != nil {
		s := *f.ChartSelection
		s.Values = append([]string{}, s.Values...)
		f.ChartSelection = &s
	}
	return f
}
