package dashboard

import (
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// maxCategoryOptions caps the distinct values offered for the category column.
const maxCategoryOptions = 200

// FilterOptions lists the columns a filter clause can target and the values
// offered for the current category column.
type FilterOptions struct {
	DateColumns     []string `json:"dateColumns" yaml:"dateColumns"`
	CategoryColumns []string `json:"categoryColumns" yaml:"categoryColumns"`
	NumericColumns  []string `json:"numericColumns" yaml:"numericColumns"`
	CategoryValues  []string `json:"categoryValues" yaml:"categoryValues"`
}

// FilterOptions derives filter choices from the current snapshot.
func (m *Manager) FilterOptions() FilterOptions {
	return m.Snapshot().FilterOptions()
}

func (s Snapshot) FilterOptions() FilterOptions {
	opts := FilterOptions{
		DateColumns:     keys(model.ColumnsOfType(s.Metas, model.TypeDate)),
		CategoryColumns: keys(model.ColumnsOfType(s.Metas, model.TypeString)),
		NumericColumns:  keys(model.ColumnsOfType(s.Metas, model.TypeNumber)),
		CategoryValues:  []string{},
	}
	col := s.Filters.CategoryColumn
	if col == "" {
		return opts
	}
	seen := make(map[string]struct{})
	for _, r := range s.Rows {
		v := r[col]
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		opts.CategoryValues = append(opts.CategoryValues, v)
		if len(opts.CategoryValues) >= maxCategoryOptions {
			break
		}
	}
	return opts
}

func keys(metas []model.ColumnMeta) []string {
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, m.Key)
	}
	return out
}

func baseName(path string) string {
	return filepath.Base(path)
}
