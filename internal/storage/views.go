package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
	"github.com/KaramelBytes/csvinsight-cli/internal/utils"
)

const (
	ViewsKey          = "csv-dashboard:views"
	ViewSchemaVersion = 1
)

// StoredViews is the persisted and exported shape of saved views.
type StoredViews struct {
	Version int                `json:"version"`
	Views   []model.ViewConfig `json:"views"`
}

func emptyViews() StoredViews {
	return StoredViews{Version: ViewSchemaVersion, Views: []model.ViewConfig{}}
}

// MigrateViews accepts arbitrary bytes and returns the current shape. Input
// that is not a JSON object with a "views" array yields an empty list rather
// than an error.
func MigrateViews(raw []byte) StoredViews {
	if !gjson.ValidBytes(raw) {
		return emptyViews()
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return emptyViews()
	}
	list := doc.Get("views")
	if !list.IsArray() {
		return emptyViews()
	}
	var views []model.ViewConfig
	if err := json.Unmarshal([]byte(list.Raw), &views); err != nil {
		slog.Debug("discarding unreadable views", "err", err)
		return emptyViews()
	}
	if views == nil {
		views = []model.ViewConfig{}
	}
	return StoredViews{Version: ViewSchemaVersion, Views: views}
}

// ExportViews renders views as indented JSON in the persisted shape.
func ExportViews(views []model.ViewConfig) ([]byte, error) {
	if views == nil {
		views = []model.ViewConfig{}
	}
	return utils.PrettyJSON(StoredViews{Version: ViewSchemaVersion, Views: views})
}

// ImportViews reads exported JSON through the same migration as persisted state.
func ImportViews(raw []byte) []model.ViewConfig {
	return MigrateViews(raw).Views
}

type ViewStore struct {
	kv KV
}

func NewViewStore(kv KV) *ViewStore {
	return &ViewStore{kv: kv}
}

// Load never fails: a missing or unreadable entry is an empty list.
func (s *ViewStore) Load() []model.ViewConfig {
	b, err := s.kv.Get(ViewsKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("load views", "err", err)
		}
		return []model.ViewConfig{}
	}
	return MigrateViews(b).Views
}

func (s *ViewStore) Save(views []model.ViewConfig) error {
	if views == nil {
		views = []model.ViewConfig{}
	}
	b, err := json.Marshal(StoredViews{Version: ViewSchemaVersion, Views: views})
	if err != nil {
		return fmt.Errorf("marshal views: %w", err)
	}
	return s.kv.Set(ViewsKey, b)
}
