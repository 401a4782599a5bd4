package flowcell

import (
	"github.com/roboco-io/fcmetrics/internal/flat"
	"github.com/roboco-io/fcmetrics/internal/ir"
)

// Report parses every known file of the run into one report. An empty
// fcName falls back to FlowcellID.
func (p *Parser) Report(fcName string) *ir.Report {
	if fcName == "" {
		fcName = p.FlowcellID()
	}
	p.log.Info("parsing run", "flowcell", fcName, "path", p.path)

	r := ir.NewReport(fcName)
	r.Metadata.Path = p.path

	r.RunInfo = p.ParseRunInfo()
	r.Metadata.RunID = scalar(r.RunInfo, "Id")
	r.Metadata.Instrument = scalar(r.RunInfo, "Instrument")
	r.Metadata.Date = scalar(r.RunInfo, "Date")

	r.RunParameters = p.ParseRunParameters()
	r.DemultiplexConfig = p.ParseDemultiplexConfig()
	r.SampleSheet = p.ParseSampleSheet()
	r.RunInfoYAML = p.ParseRunInfoYAML()
	if m := p.ParseIlluminaMetrics(); !m.Empty() {
		r.Illumina = m
	}
	r.DemultiplexStats = p.ParseDemultiplexStatsHTM(fcName)

	for lane, fm := range p.ParseFilterMetrics(fcName) {
		r.Lane(lane).FilterMetrics = fm
	}
	for lane, counts := range p.ParseBcMetrics(fcName) {
		r.Lane(lane).BcMetrics = counts
	}
	for lane, columns := range p.ParseUndemultiplexedBarcodeMetrics(fcName) {
		r.Lane(lane).UndemultiplexedBarcodes = columns
	}

	p.log.Info("run parsed", "flowcell", fcName, "lanes", len(r.Lanes))
	return r
}

func scalar(v flat.Value, key string) string {
	item, ok := v.Get(key)
	if !ok {
		return ""
	}
	s, _ := item.Scalar()
	return s
}
