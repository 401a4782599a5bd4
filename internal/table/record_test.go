package table

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	r := NewRecord([]string{"Lane", "Sample ID", "Lane"}, []string{"1", "S1", "8"})

	assert.Equal(t, []string{"Lane", "Sample ID"}, r.Fields())
	assert.Equal(t, []string{"8", "S1"}, r.Values())
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get("Index")
	assert.False(t, ok)
}

func TestNewRecord_ShortValues(t *testing.T) {
	r := NewRecord([]string{"a", "b"}, []string{"1"})

	b, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "", b)
}

func TestRecord_MarshalJSONKeepsHeaderOrder(t *testing.T) {
	r := NewRecord([]string{"z", "a", "% PF"}, []string{"1", "2", `"q"`})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"2","% PF":"\"q\""}`, string(data))
}

func TestRecord_MapIsCopy(t *testing.T) {
	r := NewRecord([]string{"a"}, []string{"1"})
	m := r.Map()
	m["a"] = "changed"

	v, _ := r.Get("a")
	assert.Equal(t, "1", v)
}

func TestDedup(t *testing.T) {
	var logs bytes.Buffer
	long := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-this-is-cut"
	records := []Record{
		NewRecord([]string{"a", "b"}, []string{"1", "x"}),
		NewRecord([]string{"a", "b"}, []string{"1", long}),
		NewRecord([]string{"c", "d"}, []string{"1", "x"}),
		NewRecord([]string{"a", "b"}, []string{"1", long}),
	}

	out := Dedup(records, bufferLogger(&logs), slog.LevelWarn)

	require.Len(t, out, 2, "values decide equality, labels do not")
	assert.Equal(t, records[0], out[0])
	assert.Equal(t, records[1], out[1])
	assert.Contains(t, logs.String(), "1\\tABCDEFGHIJKLMNOPQRSTUVWXYZ0123456")
	assert.NotContains(t, logs.String(), "this-is-cut")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestDedup_Level(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	records := []Record{
		NewRecord([]string{"a"}, []string{"1"}),
		NewRecord([]string{"a"}, []string{"1"}),
	}

	out := Dedup(records, log, slog.LevelDebug)

	assert.Len(t, out, 1)
	assert.Empty(t, logs.String(), "debug discards are filtered at info level")
}

func TestDemultiplexStatsHeadersWith(t *testing.T) {
	headers := DemultiplexStatsHeadersWith(map[string][]string{
		SectionBarcodeLaneStatistics: {"Lane", "Sample ID"},
	})

	assert.Equal(t, []string{"Lane", "Sample ID"}, headers[SectionBarcodeLaneStatistics])
	assert.Equal(t, KnownSampleInformationHeader, headers[SectionSampleInformation])
	assert.Len(t, DemultiplexStatsHeaders()[SectionBarcodeLaneStatistics], len(KnownBarcodeLaneHeader))
}

func TestSortStable(t *testing.T) {
	mk := func(lane, tag string) Record {
		return NewRecord([]string{"Lane", "tag"}, []string{lane, tag})
	}
	tags := func(records []Record) []string {
		out := make([]string, len(records))
		for i, r := range records {
			out[i], _ = r.Get("tag")
		}
		return out
	}

	t.Run("lexicographic", func(t *testing.T) {
		records := []Record{mk("2", "two"), mk("10", "ten")}
		SortStable(records, SortBy("Lane"), false)
		assert.Equal(t, []string{"ten", "two"}, tags(records))
	})

	t.Run("stable", func(t *testing.T) {
		records := []Record{mk("1", "first"), mk("0", "zero"), mk("1", "second")}
		SortStable(records, SortBy("Lane"), false)
		assert.Equal(t, []string{"zero", "first", "second"}, tags(records))
	})

	t.Run("reverse keeps ties in order", func(t *testing.T) {
		records := []Record{mk("1", "first"), mk("2", "two"), mk("1", "second")}
		SortStable(records, SortBy("Lane"), true)
		assert.Equal(t, []string{"two", "first", "second"}, tags(records))
	})
}

func TestSortBy(t *testing.T) {
	r := NewRecord([]string{"Lane", "Sample ID"}, []string{"3", "P1_101"})

	assert.Equal(t, "3-P1_101-", SortBy("Lane", "Sample ID", "Index")(r))
	assert.Equal(t, "P1_101", SortBy("Sample ID")(r))
}
