package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ParseOptions carries format specific knobs.
type ParseOptions struct {
	// Sheet selects a worksheet for spreadsheet formats. Empty means the first sheet.
	Sheet string
}

// Format turns file content into a table.
type Format interface {
	Name() string
	CanParse(filename string) bool
	Parse(content []byte, opt ParseOptions) (*Table, error)
}

// ErrUnsupported indicates no registered format accepts the file.
var ErrUnsupported = errors.New("unsupported file format")

var registry []Format

// Register adds a format implementation to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// FormatFor selects a format based on the filename extension. Files with no
// extension are treated as delimited text.
func FormatFor(path string) (Format, error) {
	for _, f := range registry {
		if f.CanParse(path) {
			return f, nil
		}
	}
	if filepath.Ext(path) == "" {
		return csvFormat{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

// Formats lists the names of registered formats in registration order.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for _, f := range registry {
		names = append(names, f.Name())
	}
	return names
}

func init() {
	Register(csvFormat{})
	Register(tsvFormat{})
	Register(xlsxFormat{})
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

type csvFormat struct{}

func (csvFormat) Name() string { return "csv" }

func (csvFormat) CanParse(filename string) bool { return hasExt(filename, ".csv", ".txt") }

func (csvFormat) Parse(content []byte, _ ParseOptions) (*Table, error) {
	return Parse(string(content))
}

type tsvFormat struct{}

func (tsvFormat) Name() string { return "tsv" }

func (tsvFormat) CanParse(filename string) bool { return hasExt(filename, ".tsv", ".tab") }

func (tsvFormat) Parse(content []byte, _ ParseOptions) (*Table, error) {
	return ParseWithDelimiter(string(content), '\t')
}
