package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// Table is the normalized result of ingestion.
type Table struct {
	Headers []string
	Rows    []model.Row
}

const (
	byteOrderMark   = "\ufeff"
	previewRows     = 10
	minAvgFieldSpan = 1.99
)

var (
	sepDirective = regexp.MustCompile(`^sep=[^\n]*\n`)
	// candidates tried when guessing a delimiter, in preference order
	sniffDelimiters = []rune{',', '\t', '|', ';'}
	// delimiters forced during collapse recovery
	recoveryDelimiters = []rune{',', ';', '\t'}
)

// Parse turns raw delimited text into a table. The delimiter is guessed from
// a preview of the input; if the result has collapsed into a single column it
// is re-parsed with forced delimiters and the widest header wins.
func Parse(text string) (*Table, error) {
	return parseText(text, 0)
}

// ParseWithDelimiter is Parse with a preferred delimiter instead of guessing.
// Collapse recovery still applies.
func ParseWithDelimiter(text string, delim rune) (*Table, error) {
	return parseText(text, delim)
}

func parseText(text string, delim rune) (*Table, error) {
	clean := cleanInput(text)
	if delim == 0 {
		delim = sniffDelimiter(clean)
	}
	records, err := readRecords(clean, delim)
	if err != nil {
		return nil, &ParseError{Reason: "malformed input", Err: err}
	}
	return FromRecords(recoverCollapsed(clean, records))
}

// FromRecords maps raw records onto normalized headers. The first record is
// the header row. Rows whose cells are all blank are dropped, short rows are
// padded with empty strings, extra cells are ignored.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &ParseError{Reason: "no header row", Err: ErrNoHeader}
	}
	headers := NormalizeHeaders(records[0])
	rows := make([]model.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(model.Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Table{Headers: headers, Rows: rows}, nil
}

func cleanInput(text string) string {
	text = strings.TrimPrefix(text, byteOrderMark)
	return sepDirective.ReplaceAllString(text, "")
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// readRecords parses text with a fixed delimiter. Stray quotes inside
// unquoted fields are tolerated; an unterminated quoted field is an error.
func readRecords(text string, delim rune) ([][]string, error) {
	records, err := readAll(text, delim, false, -1)
	if errors.Is(err, csv.ErrBareQuote) {
		records, err = readAll(text, delim, true, -1)
	}
	return records, err
}

func readAll(text string, delim rune, lazy bool, limit int) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazy
	var out [][]string
	for limit < 0 || len(out) < limit {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// sniffDelimiter picks the candidate whose preview rows have the most stable
// field count, preferring wider rows on ties. Falls back to ',' when no
// candidate averages at least two fields per row.
func sniffDelimiter(text string) rune {
	best := rune(0)
	bestDelta := math.Inf(1)
	bestAvg := math.Inf(-1)
	for _, d := range sniffDelimiters {
		preview, err := readAll(text, d, true, previewRows)
		if err != nil || len(preview) == 0 {
			continue
		}
		var total, delta float64
		counted := 0
		prev := -1
		for _, rec := range preview {
			if len(rec) == 1 && rec[0] == "" {
				continue
			}
			n := len(rec)
			total += float64(n)
			counted++
			if prev < 0 {
				prev = n
				continue
			}
			delta += math.Abs(float64(n - prev))
			prev = n
		}
		if counted == 0 {
			continue
		}
		avg := total / float64(counted)
		if delta <= bestDelta && avg > bestAvg && avg > minAvgFieldSpan {
			best, bestDelta, bestAvg = d, delta, avg
		}
	}
	if best == 0 {
		return ','
	}
	return best
}

// looksCollapsed reports whether the header row came back as a single cell
// that still contains a plausible delimiter.
func looksCollapsed(records [][]string) bool {
	if len(records) == 0 || len(records[0]) != 1 {
		return false
	}
	return strings.ContainsAny(records[0][0], ",;\t")
}

// recoverCollapsed returns the widest candidate among the primary parse and
// forced re-parses. Each line is tried as is first; if that still yields a
// single column the first cells are re-joined and parsed again, which handles
// rows that were wrapped in quotes as a whole.
func recoverCollapsed(text string, records [][]string) [][]string {
	if !looksCollapsed(records) {
		return records
	}
	best := records
	for _, d := range recoveryDelimiters {
		best = wider(best, reparse(text, d))
	}
	if headerWidth(best) > 1 {
		return best
	}
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		if len(rec) > 0 {
			lines = append(lines, rec[0])
		}
	}
	flat := strings.Join(lines, "\n")
	for _, d := range recoveryDelimiters {
		best = wider(best, reparse(flat, d))
	}
	return best
}

func reparse(text string, delim rune) [][]string {
	records, err := readRecords(text, delim)
	if err != nil {
		return nil
	}
	return records
}

// wider keeps the current candidate unless the challenger is strictly wider.
func wider(current, challenger [][]string) [][]string {
	if headerWidth(challenger) > headerWidth(current) {
		return challenger
	}
	return current
}

func headerWidth(records [][]string) int {
	if len(records) == 0 {
		return 0
	}
	return len(records[0])
}
