package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
)

const readChunkSize = 64 * 1024

// ReadOptions configures ReadFile.
type ReadOptions struct {
	ParseOptions
	// Progress, when set, receives percentages in [0,100] while the file is
	// read. 100 is reported once the table has been parsed.
	Progress func(percent int)
}

// ReadFile reads and parses a file with the format matching its extension.
// Failures to read are reported as *ReadError, failures to parse as *ParseError.
func ReadFile(ctx context.Context, path string, opt ReadOptions) (*Table, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, &ParseError{Reason: "unsupported format", Err: err}
	}
	content, err := readWithProgress(ctx, path, opt.Progress)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	table, err := format.Parse(content, opt.ParseOptions)
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			err = &ParseError{Reason: format.Name(), Err: err}
		}
		return nil, err
	}
	slog.Debug("file ingested", "path", path, "format", format.Name(), "columns", len(table.Headers), "rows", len(table.Rows))
	if opt.Progress != nil {
		opt.Progress(100)
	}
	return table, nil
}

func readWithProgress(ctx context.Context, path string, progress func(int)) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var total int64
	if info, err := f.Stat(); err == nil {
		total = info.Size()
	}
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	chunk := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := f.Read(chunk)
		buf.Write(chunk[:n])
		if progress != nil && total > 0 && n > 0 {
			progress(min(100, int(math.Round(float64(buf.Len())/float64(total)*100))))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
