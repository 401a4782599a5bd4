package flowcell

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/roboco-io/fcmetrics/internal/metrics"
	"github.com/roboco-io/fcmetrics/internal/table"
)

// ParseFilterMetrics reads the pre-CASAVA phiX filter summary of every lane.
// A lane without a readable file maps to nil.
func (p *Parser) ParseFilterMetrics(fcName string) map[string]*metrics.FilterMetrics {
	p.log.Debug("parsing filter metrics", "flowcell", fcName)
	lanes := make(map[string]*metrics.FilterMetrics, len(p.opts.Lanes))
	for _, lane := range p.opts.Lanes {
		key := laneKey(lane)
		lanes[key] = nil

		pattern := fmt.Sprintf(`^%d_[0-9]+_[0-9A-Za-z]+(_nophix)?\.filter_metrics$`, lane)
		files, err := p.FilterFiles(pattern)
		if err != nil || len(files) == 0 {
			p.log.Warn("no filter metrics for lane", "lane", lane)
			continue
		}
		r, ok := p.openBytes(files[0])
		if !ok {
			continue
		}
		fm, err := metrics.ParseFilterMetrics(r)
		if err != nil {
			p.log.Warn("no filter metrics for lane", "lane", lane, "file", files[0], "error", err)
			continue
		}
		lanes[key] = &fm
	}
	return lanes
}

// ParseBcMetrics reads the barcode counts of every lane. A lane without a
// readable file maps to an empty count.
func (p *Parser) ParseBcMetrics(fcName string) map[string]map[string]int {
	p.log.Debug("parsing bc metrics", "flowcell", fcName)
	lanes := make(map[string]map[string]int, len(p.opts.Lanes))
	for _, lane := range p.opts.Lanes {
		key := laneKey(lane)
		lanes[key] = map[string]int{}

		pattern := fmt.Sprintf(`^%d_[0-9]+_[0-9A-Za-z]+(_nophix)?[._]bc[._]metrics$`, lane)
		files, err := p.FilterFiles(pattern)
		if err != nil || len(files) == 0 {
			p.log.Warn("no bc metrics for lane", "lane", lane)
			continue
		}
		r, ok := p.openBytes(files[0])
		if !ok {
			continue
		}
		counts, err := metrics.ParseBcMetrics(r)
		if err != nil {
			p.log.Warn("no bc metrics for lane", "lane", lane, "file", files[0], "error", err)
			continue
		}
		lanes[key] = counts
	}
	return lanes
}

// byLaneYield orders undetermined index rows by lane and then by count, with
// the count zero padded so it compares as a number within a lane.
func byLaneYield(r table.Record) string {
	lane, _ := r.Get(metrics.LaneField)
	count, _ := r.Get("count")
	if len(count) < 10 {
		count = strings.Repeat("0", 10-len(count)) + count
	}
	return lane + "-" + count
}

// ParseUndemultiplexedBarcodeMetrics reads the undetermined index tables of
// every Unaligned*/Basecall_Stats_* directory of the flowcell. Exact
// duplicates are dropped, rows are sorted by lane and count in descending
// order, and each lane is returned as one column per field.
func (p *Parser) ParseUndemultiplexedBarcodeMetrics(fcName string) map[string]map[string][]string {
	var rows []table.Record
	for _, path := range p.glob(p.basecallGlob(fcName, p.opts.Files.Undemultiplexed)) {
		p.log.Debug("parsing", "file", path)
		r, ok := p.openBytes(path)
		if !ok {
			continue
		}
		records, err := metrics.ParseUndemultiplexedBarcodes(r)
		if err != nil {
			p.log.Warn("reading file failed", "file", path, "error", err)
			continue
		}
		rows = append(rows, records...)
	}

	rows = table.Dedup(rows, p.log.With("metric", "undemultiplexed_barcodes"), slog.LevelWarn)
	table.SortStable(rows, byLaneYield, true)

	lanes := make(map[string]map[string][]string)
	for _, row := range rows {
		lane, _ := row.Get(metrics.LaneField)
		columns, ok := lanes[lane]
		if !ok {
			columns = make(map[string][]string)
			lanes[lane] = columns
		}
		for _, f := range row.Fields() {
			v, _ := row.Get(f)
			columns[f] = append(columns[f], v)
		}
	}
	return lanes
}

// DemultiplexStatsSections are the report sections kept from
// Demultiplex_Stats.htm.
var DemultiplexStatsSections = []string{
	table.SectionBarcodeLaneStatistics,
	table.SectionSampleInformation,
}

// tableOptions builds the Demultiplex_Stats.htm extraction settings from the
// parser options.
func (p *Parser) tableOptions() table.Options {
	opts := table.Options{
		HeadingTag:  p.opts.HeadingTag,
		Deduplicate: p.opts.Deduplicate,
		Reverse:     p.opts.ReverseSort,
		Logger:      p.log,
	}
	if len(p.opts.SortFields) > 0 {
		opts.SortKey = table.SortBy(p.opts.SortFields...)
	}
	if p.opts.StrictHeaders {
		opts.ExpectedHeaders = table.DemultiplexStatsHeadersWith(p.opts.ExpectedHeaders)
	}
	return opts
}

// ParseDemultiplexStatsHTM reads every Demultiplex_Stats.htm of the flowcell
// as one batch: rows accumulate across files, exact duplicates are dropped
// and rows are sorted by the configured fields.
func (p *Parser) ParseDemultiplexStatsHTM(fcName string) map[string][]table.Record {
	out := make(map[string][]table.Record, len(DemultiplexStatsSections))
	for _, name := range DemultiplexStatsSections {
		out[name] = []table.Record{}
	}

	batch := table.NewBatch(p.tableOptions())
	for _, path := range p.glob(p.basecallGlob(fcName, p.opts.Files.DemultiplexStats)) {
		p.log.Debug("parsing", "file", path)
		data, err := os.ReadFile(path)
		if err != nil {
			p.log.Warn("reading file failed", "file", path, "error", err)
			continue
		}
		if err := batch.Add(table.Document{Name: path, Content: data}); err != nil {
			p.log.Warn("reading file failed", "file", path, "error", err)
		}
	}

	p.log.Debug("report sections", "flowcell", fcName, "sections", batch.Names())
	sections := batch.Sections()
	for _, name := range DemultiplexStatsSections {
		if sec, ok := sections[name]; ok {
			out[name] = sec.Records
		}
	}
	return out
}
