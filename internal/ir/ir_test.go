package ir

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/roboco-io/fcmetrics/internal/flat"
	"github.com/roboco-io/fcmetrics/internal/metrics"
	"github.com/roboco-io/fcmetrics/internal/table"
)

func TestNewReport(t *testing.T) {
	r := NewReport("AC1B5UACXX")

	if r.Version != "1.0" {
		t.Errorf("expected version 1.0, got %s", r.Version)
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		t.Errorf("expected uuid id, got %q: %v", r.ID, err)
	}
	if r.Metadata.Flowcell != "AC1B5UACXX" {
		t.Errorf("expected flowcell AC1B5UACXX, got %s", r.Metadata.Flowcell)
	}
	if r.Metadata.Created == "" {
		t.Error("expected creation time to be set")
	}
	if len(r.Lanes) != 0 {
		t.Errorf("expected no lanes, got %d", len(r.Lanes))
	}
	if NewReport("x").ID == r.ID {
		t.Error("expected distinct ids")
	}
}

func TestReport_Lane(t *testing.T) {
	r := NewReport("FC")

	l := r.Lane("2")
	l.BcMetrics["ACGT"] = 10
	r.Lane("10")

	if r.Lane("2").BcMetrics["ACGT"] != 10 {
		t.Error("expected Lane to return the existing entry")
	}

	names := r.LaneNames()
	expected := []string{"10", "2"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d lanes, got %d", len(expected), len(names))
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("lane[%d]: expected %s, got %s", i, expected[i], names[i])
		}
	}
}

func TestReport_Tables(t *testing.T) {
	r := NewReport("FC")
	r.DemultiplexStats = map[string][]table.Record{
		"Sample_information": {
			table.NewRecord([]string{"Sample ID", "Recipe"}, []string{"P1", "R1"}),
		},
		"Barcode_lane_statistics": {
			table.NewRecord([]string{"Lane", "Index"}, []string{"1", "ACGT"}),
			table.NewRecord([]string{"Lane", "Index"}, []string{"2", "TTTT"}),
		},
	}

	tables := r.Tables()
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0].Caption != "Barcode_lane_statistics" {
		t.Errorf("expected sorted captions, got %s first", tables[0].Caption)
	}
	if tables[0].Rows() != 2 || tables[0].Cols() != 2 {
		t.Errorf("expected 2x2 table, got %dx%d", tables[0].Rows(), tables[0].Cols())
	}
	if got := tables[0].Cells[1][1]; got != "TTTT" {
		t.Errorf("expected TTTT at (1,1), got %q", got)
	}
}

func TestNewTableFromSection_HeaderOnly(t *testing.T) {
	sec := &table.Section{Name: "Empty", Header: []string{"a", "b"}}

	tb := NewTableFromSection(sec)
	if tb.Cols() != 2 || tb.Rows() != 0 {
		t.Errorf("expected header-only 2x0 table, got %dx%d", tb.Cols(), tb.Rows())
	}
}

func TestIlluminaMetrics_Empty(t *testing.T) {
	var m *IlluminaMetrics
	if !m.Empty() {
		t.Error("expected nil metrics to be empty")
	}

	summary := flat.Map(nil)
	m = &IlluminaMetrics{RunSummary: &summary}
	if m.Empty() {
		t.Error("expected metrics with run summary not to be empty")
	}
}

func TestReport_JSONSerialization(t *testing.T) {
	r := NewReport("AC1B5UACXX")
	r.RunInfo = flat.StringMap(map[string]string{"Id": "120924_SN1025_0222_AC1B5UACXX"})
	r.Lane("1").FilterMetrics = &metrics.FilterMetrics{Reads: 1000, ReadsAligned: 10, ReadsFailAlign: 990}
	r.SampleSheet = []table.Record{table.NewRecord([]string{"Lane", "SampleID"}, []string{"1", "P1"})}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var restored map[string]any
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if restored["_id"] != r.ID {
		t.Errorf("id mismatch: expected %s, got %v", r.ID, restored["_id"])
	}
	runInfo, ok := restored["RunInfo"].(map[string]any)
	if !ok || runInfo["Id"] != "120924_SN1025_0222_AC1B5UACXX" {
		t.Errorf("unexpected RunInfo: %v", restored["RunInfo"])
	}
	lanes := restored["lanes"].(map[string]any)
	lane := lanes["1"].(map[string]any)
	fm := lane["filter_metrics"].(map[string]any)
	if fm["reads_fail_align"] != float64(990) {
		t.Errorf("unexpected filter metrics: %v", fm)
	}
	if _, ok := restored["illumina"]; ok {
		t.Error("expected empty illumina metrics to be omitted")
	}
}
