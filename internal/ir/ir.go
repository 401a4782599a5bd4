// Package ir defines the flowcell run report. A report is the output of the
// run parser and the input of every serializer.
package ir

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/roboco-io/fcmetrics/internal/flat"
	"github.com/roboco-io/fcmetrics/internal/metrics"
	"github.com/roboco-io/fcmetrics/internal/table"
)

// Version is the report schema version.
const Version = "1.0"

// Report collects everything parsed from one run directory.
type Report struct {
	ID       string   `json:"_id"`
	Version  string   `json:"version"`
	Metadata Metadata `json:"metadata"`

	RunInfo           flat.Value                `json:"RunInfo"`
	RunParameters     flat.Value                `json:"RunParameters"`
	DemultiplexConfig map[string]flat.Value     `json:"DemultiplexConfig,omitempty"`
	SampleSheet       []table.Record            `json:"samplesheet_csv,omitempty"`
	RunInfoYAML       any                       `json:"run_info_yaml,omitempty"`
	Illumina          *IlluminaMetrics          `json:"illumina,omitempty"`
	DemultiplexStats  map[string][]table.Record `json:"DemultiplexStats,omitempty"`
	Lanes             map[string]*Lane          `json:"lanes"`
}

// Metadata identifies the run.
type Metadata struct {
	Flowcell   string `json:"name"`
	RunID      string `json:"RunInfo_Id,omitempty"`
	Path       string `json:"path,omitempty"`
	Instrument string `json:"instrument,omitempty"`
	Date       string `json:"date,omitempty"`
	Created    string `json:"creation_time"`
}

// IlluminaMetrics holds the RTA reports of a run.
type IlluminaMetrics struct {
	// Summary is keyed by read number.
	Summary map[string]flat.Value `json:"Summary,omitempty"`
	// Charts is keyed by chart file name without extension.
	Charts     map[string]flat.Value `json:"Charts,omitempty"`
	RunSummary *flat.Value           `json:"run_summary,omitempty"`
}

// Empty reports whether no RTA report was found.
func (m *IlluminaMetrics) Empty() bool {
	return m == nil || (len(m.Summary) == 0 && len(m.Charts) == 0 && m.RunSummary == nil)
}

// Lane holds the per-lane metrics files.
type Lane struct {
	FilterMetrics           *metrics.FilterMetrics `json:"filter_metrics"`
	BcMetrics               map[string]int         `json:"bc_metrics"`
	UndemultiplexedBarcodes map[string][]string    `json:"undemultiplexed_barcodes,omitempty"`
}

// NewReport creates a new report for a flowcell with the current version.
func NewReport(flowcell string) *Report {
	return &Report{
		ID:      uuid.NewString(),
		Version: Version,
		Metadata: Metadata{
			Flowcell: flowcell,
			Created:  time.Now().UTC().Format(time.RFC3339),
		},
		RunInfo:       flat.Map(nil),
		RunParameters: flat.Map(nil),
		Lanes:         make(map[string]*Lane),
	}
}

// Lane returns the entry for a lane, creating it if needed.
func (r *Report) Lane(name string) *Lane {
	l, ok := r.Lanes[name]
	if !ok {
		l = &Lane{BcMetrics: make(map[string]int)}
		r.Lanes[name] = l
	}
	return l
}

// LaneNames returns the lane keys in sorted order.
func (r *Report) LaneNames() []string {
	names := make([]string, 0, len(r.Lanes))
	for name := range r.Lanes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns the report sections as render-ready tables, sorted by
// section name.
func (r *Report) Tables() []*TableBlock {
	names := make([]string, 0, len(r.DemultiplexStats))
	for name := range r.DemultiplexStats {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]*TableBlock, 0, len(names))
	for _, name := range names {
		tables = append(tables, NewTableFromRecords(name, r.DemultiplexStats[name]))
	}
	return tables
}
