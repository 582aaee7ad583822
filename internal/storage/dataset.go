package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

const (
	DatasetKey = "csv-dashboard:last-dataset"

	DefaultRowCap     = 2000
	DefaultSampleRows = 200
)

// StoredDataset is the persisted form of the last loaded dataset. Column
// metadata is not stored; it is recomputed on load.
type StoredDataset struct {
	Name    string      `json:"name"`
	Headers []string    `json:"headers"`
	Rows    []model.Row `json:"rows"`
	Sample  []model.Row `json:"sample"`
}

// DatasetStore saves at most RowCap rows of a dataset plus a SampleRows preview.
type DatasetStore struct {
	kv         KV
	RowCap     int
	SampleRows int
}

func NewDatasetStore(kv KV) *DatasetStore {
	return &DatasetStore{kv: kv, RowCap: DefaultRowCap, SampleRows: DefaultSampleRows}
}

// Save persists d, truncating rows to RowCap.
func (s *DatasetStore) Save(d model.Dataset) error {
	payload := StoredDataset{
		Name:    d.Name,
		Headers: d.Headers,
		Rows:    head(d.Rows, s.RowCap),
		Sample:  head(d.Rows, s.SampleRows),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	return s.kv.Set(DatasetKey, b)
}

// Load returns the persisted dataset. Any failure, including a malformed
// payload, is reported as no dataset.
func (s *DatasetStore) Load() (*StoredDataset, bool) {
	b, err := s.kv.Get(DatasetKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("load persisted dataset", "err", err)
		}
		return nil, false
	}
	var d StoredDataset
	if err := json.Unmarshal(b, &d); err != nil {
		slog.Warn("discarding malformed persisted dataset", "err", err)
		return nil, false
	}
	if d.Headers == nil || d.Rows == nil {
		return nil, false
	}
	return &d, true
}

func (s *DatasetStore) Clear() error {
	return s.kv.Delete(DatasetKey)
}

func head(rows []model.Row, n int) []model.Row {
	if rows == nil {
		return []model.Row{}
	}
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
