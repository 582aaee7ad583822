package analysis

import (
	"regexp"
	"sort"
	"time"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

const (
	boolThreshold   = 0.95
	numberThreshold = 0.85
	dateThreshold   = 0.75
	idUniqueness    = 0.98
	idMinCount      = 20
	topValueLimit   = 10
)

// Looks at the first non-missing value only. A single atypical first row
// flips the whole column; kept for compatibility with existing classifications.
var idHint = regexp.MustCompile(`(?i)id|uuid|code|key`)

// Profile classifies every column and computes its type-specific statistics.
// Columns are profiled independently and returned in header order.
func Profile(rows []model.Row, headers []string) []model.ColumnMeta {
	metas := make([]model.ColumnMeta, 0, len(headers))
	for _, key := range headers {
		metas = append(metas, profileColumn(rows, key))
	}
	return metas
}

func profileColumn(rows []model.Row, key string) model.ColumnMeta {
	missing := 0
	nonMissing := make([]string, 0, len(rows))
	for _, r := range rows {
		v := r[key]
		if IsMissing(v) {
			missing++
			continue
		}
		nonMissing = append(nonMissing, v)
	}

	counts, order := countValues(nonMissing)
	ratio := float64(len(counts)) / float64(max(1, len(nonMissing)))

	meta := model.ColumnMeta{
		Key:             key,
		Type:            DetectType(nonMissing, ratio),
		MissingCount:    missing,
		UniquenessRatio: Round(ratio, 2),
	}

	switch meta.Type {
	case model.TypeNumber:
		meta.Number = numberStats(nonMissing, missing)
	case model.TypeDate:
		meta.Date = dateStats(nonMissing, missing)
	case model.TypeBoolean:
		meta.Boolean = booleanStats(nonMissing, missing)
	case model.TypeString, model.TypeIDLike:
		meta.String = stringStats(counts, order, missing)
	}
	return meta
}

// DetectType decides a column type from its non-missing values and the
// unrounded uniqueness ratio. Order matters: boolean, number (unless it
// looks like an identifier), date, id-like, string.
func DetectType(nonMissing []string, uniquenessRatio float64) model.ColumnType {
	n := len(nonMissing)
	if n == 0 {
		return model.TypeString
	}
	var boolHits, numHits, dateHits int
	for _, v := range nonMissing {
		if _, ok := ParseBool(v); ok {
			boolHits++
		}
		if _, ok := ParseNumber(v); ok {
			numHits++
		}
		if _, ok := ParseDate(v); ok {
			dateHits++
		}
	}
	share := func(hits int) float64 { return float64(hits) / float64(n) }
	highlyUnique := uniquenessRatio > idUniqueness && n > idMinCount

	switch {
	case share(boolHits) > boolThreshold:
		return model.TypeBoolean
	case share(numHits) > numberThreshold:
		if highlyUnique && !idHint.MatchString(nonMissing[0]) {
			return model.TypeIDLike
		}
		return model.TypeNumber
	case share(dateHits) > dateThreshold:
		return model.TypeDate
	case highlyUnique:
		return model.TypeIDLike
	default:
		return model.TypeString
	}
}

// countValues counts distinct values and remembers first-seen order so ties
// resolve deterministically.
func countValues(values []string) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	return counts, order
}

// Unparseable values are dropped from the stats without touching the missing
// count.
func numberStats(values []string, missing int) *model.NumberStats {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := ParseNumber(v); ok {
			nums = append(nums, f)
		}
	}
	sorted := make([]float64, len(nums))
	copy(sorted, nums)
	sort.Float64s(sorted)

	s := &model.NumberStats{
		Mean:         Mean(nums),
		Median:       Median(nums),
		P95:          Quantile(sorted, 0.95),
		Variance:     Variance(nums),
		MissingCount: missing,
	}
	if len(sorted) > 0 {
		s.Min = sorted[0]
		s.Max = sorted[len(sorted)-1]
	}
	return s
}

func dateStats(values []string, missing int) *model.DateStats {
	var parsed []time.Time
	for _, v := range values {
		if t, ok := ParseDate(v); ok {
			parsed = append(parsed, t)
		}
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	s := &model.DateStats{
		MissingCount:     missing,
		ParseSuccessRate: float64(len(parsed)) / float64(max(1, len(values))),
	}
	if len(parsed) > 0 {
		s.MinDate = model.ISOTime(parsed[0])
		s.MaxDate = model.ISOTime(parsed[len(parsed)-1])
	}
	return s
}

func booleanStats(values []string, missing int) *model.BooleanStats {
	s := &model.BooleanStats{MissingCount: missing}
	for _, v := range values {
		b, ok := ParseBool(v)
		switch {
		case !ok:
		case b:
			s.TrueCount++
		default:
			s.FalseCount++
		}
	}
	return s
}

func stringStats(counts map[string]int, order []string, missing int) *model.StringStats {
	tops := make([]model.ValueCount, 0, len(order))
	for _, v := range order {
		tops = append(tops, model.ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(tops, func(i, j int) bool { return tops[i].Count > tops[j].Count })
	if len(tops) > topValueLimit {
		tops = tops[:topValueLimit]
	}
	return &model.StringStats{UniqueCount: len(counts), TopValues: tops, MissingCount: missing}
}
