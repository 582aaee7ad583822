package model

import (
	"fmt"
	"time"
)

// Row maps a column key to its raw cell text. Cells are always strings; the
// semantic type of a column lives in its ColumnMeta, never on the cell.
type Row map[string]string

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is a rectangular table: every row carries exactly the header keys.
type Dataset struct {
	Name    string       `json:"name"`
	Headers []string     `json:"headers"`
	Rows    []Row        `json:"rows"`
	Metas   []ColumnMeta `json:"metas,omitempty"`
}

// ColumnType is the closed set of semantic column classifications.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeNumber
	TypeDate
	TypeBoolean
	TypeIDLike
)

var columnTypeNames = [...]string{
	TypeString:  "string",
	TypeNumber:  "number",
	TypeDate:    "date",
	TypeBoolean: "boolean",
	TypeIDLike:  "id-like",
}

func (t ColumnType) String() string {
	if t < 0 || int(t) >= len(columnTypeNames) {
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
	return columnTypeNames[t]
}

func (t ColumnType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(columnTypeNames) {
		return nil, fmt.Errorf("invalid column type %d", int(t))
	}
	return []byte(columnTypeNames[t]), nil
}

func (t *ColumnType) UnmarshalText(b []byte) error {
	for i, name := range columnTypeNames {
		if name == string(b) {
			*t = ColumnType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown column type %q", string(b))
}

// ColumnMeta is the inferred type and statistics for one column. It is
// computed once per dataset load and never patched incrementally.
type ColumnMeta struct {
	Key             string     `json:"key"`
	Type            ColumnType `json:"type"`
	MissingCount    int        `json:"missingCount"`
	UniquenessRatio float64    `json:"uniquenessRatio"`

	// Exactly one of the stats pointers is set, matching Type. String and
	// id-like columns both use StringStats.
	Number  *NumberStats  `json:"numberStats,omitempty"`
	Date    *DateStats    `json:"dateStats,omitempty"`
	Boolean *BooleanStats `json:"booleanStats,omitempty"`
	String  *StringStats  `json:"stringStats,omitempty"`
}

type NumberStats struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	P95          float64 `json:"p95"`
	Variance     float64 `json:"variance"`
	MissingCount int     `json:"missingCount"`
}

type DateStats struct {
	MinDate          string  `json:"minDate"`
	MaxDate          string  `json:"maxDate"`
	MissingCount     int     `json:"missingCount"`
	ParseSuccessRate float64 `json:"parseSuccessRate"`
}

type BooleanStats struct {
	TrueCount    int `json:"trueCount"`
	FalseCount   int `json:"falseCount"`
	MissingCount int `json:"missingCount"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type StringStats struct {
	UniqueCount  int          `json:"uniqueCount"`
	TopValues    []ValueCount `json:"topValues"`
	MissingCount int          `json:"missingCount"`
}

// ISOTime renders t the way date stats store their bounds.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ColumnsOfType returns metas of the given type in column order.
func ColumnsOfType(metas []ColumnMeta, t ColumnType) []ColumnMeta {
	var out []ColumnMeta
	for _, m := range metas {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// FirstOfType returns the first column of the given type, if any.
func FirstOfType(metas []ColumnMeta, t ColumnType) (ColumnMeta, bool) {
	for _, m := range metas {
		if m.Type == t {
			return m, true
		}
	}
	return ColumnMeta{}, false
}
