package sample

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvinsight-cli/internal/analysis"
	"github.com/KaramelBytes/csvinsight-cli/internal/ingest"
	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

func TestLoadProfilesExpectedTypes(t *testing.T) {
	table, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "order_date", "category", "region", "customer", "amount", "quantity", "returned"}, table.Headers)
	assert.Len(t, table.Rows, 60)

	types := map[string]model.ColumnType{}
	for _, m := range analysis.Profile(table.Rows, table.Headers) {
		types[m.Key] = m.Type
	}
	assert.Equal(t, model.TypeIDLike, types["order_id"])
	assert.Equal(t, model.TypeDate, types["order_date"])
	assert.Equal(t, model.TypeString, types["category"])
	assert.Equal(t, model.TypeNumber, types["amount"])
	assert.Equal(t, model.TypeNumber, types["quantity"])
	assert.Equal(t, model.TypeBoolean, types["returned"])
}

func TestDownloadRoundTripsThroughIngest(t *testing.T) {
	b := Download()
	assert.True(t, strings.HasPrefix(string(b), "\ufeffsep=,\n"))

	path := filepath.Join(t.TempDir(), "out", DownloadName)
	require.NoError(t, WriteFile(path))
	table, err := ingest.ReadFile(context.Background(), path, ingest.ReadOptions{})
	require.NoError(t, err)

	direct, err := Load()
	require.NoError(t, err)
	assert.Equal(t, direct.Headers, table.Headers)
	assert.Equal(t, direct.Rows, table.Rows)
}
