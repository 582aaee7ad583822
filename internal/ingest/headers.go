package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

const missingHeaderPrefix = "column"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	headerJunk    = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// NormalizeHeaders turns raw header cells into unique column keys: trimmed,
// whitespace runs collapsed to '_', anything outside [a-zA-Z0-9_] removed,
// lowercased. Blank headers become column_<n> (1-based). A repeated key gets
// _2, _3, ... in first-seen order, skipping suffixes that are already taken.
// Normalizing an already normalized sequence returns it unchanged.
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]struct{}, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		base := normalizeOne(h, i)
		name := base
		if n := seen[base]; n > 0 {
			for suffix := n + 1; ; suffix++ {
				name = fmt.Sprintf("%s_%d", base, suffix)
				if _, taken := used[name]; !taken {
					break
				}
			}
		} else if _, taken := used[base]; taken {
			for suffix := 2; ; suffix++ {
				name = fmt.Sprintf("%s_%d", base, suffix)
				if _, taken := used[name]; !taken {
					break
				}
			}
		}
		seen[base]++
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

func normalizeOne(h string, index int) string {
	fallback := fmt.Sprintf("%s_%d", missingHeaderPrefix, index+1)
	s := strings.TrimSpace(h)
	if s == "" {
		return fallback
	}
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = strings.ToLower(headerJunk.ReplaceAllString(s, ""))
	if s == "" {
		return fallback
	}
	return s
}
