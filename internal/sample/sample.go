// Package sample bundles a small e-commerce dataset for zero-setup exploration.
package sample

import (
	_ "embed"
	"path/filepath"

	"github.com/KaramelBytes/csvinsight-cli/internal/ingest"
	"github.com/KaramelBytes/csvinsight-cli/internal/utils"
)

// Name is the dataset name used when the sample is loaded.
const Name = "sample-ecommerce.csv"

// DownloadName is the suggested filename for the exported sample.
const DownloadName = "test-sample.csv"

// downloadPreamble makes spreadsheet tools pick the comma delimiter.
const downloadPreamble = "\ufeffsep=,\n"

//go:embed sample.csv
var text string

// Text returns the raw sample CSV.
func Text() string { return text }

// Load parses the sample through the regular ingestion path.
func Load() (*ingest.Table, error) {
	return ingest.Parse(text)
}

// Download returns the sample as written to disk: a byte-order mark and a
// sep= directive followed by the CSV text.
func Download() []byte {
	return []byte(downloadPreamble + text)
}

// WriteFile writes the downloadable sample to path.
func WriteFile(path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, Download())
}
