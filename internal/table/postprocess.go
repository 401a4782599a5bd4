package table

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// previewLen bounds how much of a discarded duplicate key is logged.
const previewLen = 35

// Dedup drops exact duplicate records, keeping the first occurrence. Two
// records are duplicates when their tab-joined values are identical. Each
// discarded record is logged at level.
func Dedup(records []Record, log *slog.Logger, level slog.Level) []Record {
	if log == nil {
		log = slog.Default()
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, dup := seen[key]; dup {
			log.Log(context.Background(), level, "duplicate record discarded", "key", preview(key))
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func preview(key string) string {
	runes := []rune(key)
	if len(runes) <= previewLen {
		return key
	}
	return string(runes[:previewLen])
}

// SortBy returns a sort key made of the given fields joined by "-". Missing
// fields contribute an empty string.
func SortBy(fields ...string) func(Record) string {
	return func(r Record) string {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i], _ = r.Get(f)
		}
		return strings.Join(parts, "-")
	}
}

// SortStable sorts records in place by plain string comparison of key, so
// lane "10" comes before lane "2". Equal keys keep their input order in both
// directions.
func SortStable(records []Record, key func(Record) string, reverse bool) {
	slices.SortStableFunc(records, func(a, b Record) int {
		c := strings.Compare(key(a), key(b))
		if reverse {
			return -c
		}
		return c
	})
}
