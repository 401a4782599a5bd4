package flowcell

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/fcmetrics/internal/collect"
	"github.com/roboco-io/fcmetrics/internal/flat"
	"github.com/roboco-io/fcmetrics/internal/ir"
	"github.com/roboco-io/fcmetrics/internal/metrics"
	"github.com/roboco-io/fcmetrics/internal/parser"
	"github.com/roboco-io/fcmetrics/internal/table"
)

// ParseRunInfo collects RunInfo.xml: run id and number, flowcell, instrument,
// date, flowcell layout and reads.
func (p *Parser) ParseRunInfo() flat.Value {
	data, ok := p.readFile(p.opts.Files.RunInfo)
	if !ok {
		return flat.Map(nil)
	}
	v, err := collect.CollectDocument(collect.RunInfo(), bytes.NewReader(data), p.opts.Files.RunInfo)
	if err != nil {
		p.log.Warn("reading file failed", "file", p.opts.Files.RunInfo, "error", err)
		return flat.Map(nil)
	}
	return v
}

// ParseRunParameters flattens runParameters.xml.
func (p *Parser) ParseRunParameters() flat.Value {
	data, ok := p.readFile(p.opts.Files.RunParameters)
	if !ok {
		return flat.Map(nil)
	}
	v, err := flat.FlattenDocument(data)
	if err != nil {
		p.log.Warn("reading file failed", "file", p.opts.Files.RunParameters, "error", err)
		return flat.Map(nil)
	}
	return v
}

// ParseDemultiplexConfig flattens every Unaligned*/DemultiplexConfig.xml,
// keyed by the name of the directory holding it. Empty results are left out.
func (p *Parser) ParseDemultiplexConfig() map[string]flat.Value {
	cfg := make(map[string]flat.Value)
	pattern := filepath.Join(p.path, "Unaligned*", p.opts.Files.DemultiplexConfig)
	for _, path := range p.glob(pattern) {
		data, err := os.ReadFile(path)
		if err != nil {
			p.log.Warn("reading file failed", "file", path, "error", err)
			continue
		}
		v, err := flat.FlattenDocument(data)
		if err != nil {
			p.log.Warn("reading file failed", "file", path, "error", err)
			continue
		}
		if v.Len() > 0 {
			cfg[filepath.Base(filepath.Dir(path))] = v
		}
	}
	return cfg
}

// ParseSampleSheet reads SampleSheet.csv.
func (p *Parser) ParseSampleSheet() []table.Record {
	data, ok := p.readFile(p.opts.Files.SampleSheet)
	if !ok {
		return nil
	}
	records, err := metrics.ParseSampleSheet(bytes.NewReader(data))
	if err != nil {
		p.log.Warn("reading file failed", "file", p.opts.Files.SampleSheet, "error", err)
		return nil
	}
	return records
}

// ParseRunInfoYAML decodes run_info.yaml as plain YAML data.
func (p *Parser) ParseRunInfoYAML() any {
	data, ok := p.readFile(p.opts.Files.RunInfoYAML)
	if !ok {
		return nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		p.log.Warn("reading file failed", "file", p.opts.Files.RunInfoYAML, "error", err)
		return nil
	}
	return v
}

var readNumberPattern = regexp.MustCompile(`^read([0-9]+)\.xml$`)

// ParseIlluminaMetrics collects the RTA reports found anywhere under the run
// directory: per-read summaries keyed by read, chart files keyed by name,
// and run_summary.json when present.
func (p *Parser) ParseIlluminaMetrics() *ir.IlluminaMetrics {
	m := &ir.IlluminaMetrics{
		Summary: make(map[string]flat.Value),
		Charts:  make(map[string]flat.Value),
	}

	summary := collect.Summary().WithMissing(p.opts.MissingValues...)
	for _, path := range p.FilesOfFormat(parser.FormatRTASummary) {
		v, ok := p.collectFile(summary, path)
		if !ok {
			continue
		}
		read := readIndex(path, v)
		m.Summary = collect.MergeIndexed(m.Summary, read, v)
	}

	chart := collect.Chart().WithMissing(p.opts.MissingValues...)
	for _, path := range p.FilesOfFormat(parser.FormatRTAChart) {
		if v, ok := p.collectFile(chart, path); ok {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			m.Charts[name] = v
		}
	}
	p.log.Debug("found RTA files", "summaries", len(m.Summary), "charts", len(m.Charts))

	if files, _ := p.FilterFiles("^" + regexp.QuoteMeta(p.opts.Files.RunSummary) + "$"); len(files) > 0 {
		if v, ok := p.parseJSONFile(files[0]); ok {
			m.RunSummary = &v
		}
	}
	return m
}

func (p *Parser) collectFile(schema *collect.Schema, path string) (flat.Value, bool) {
	r, ok := p.openBytes(path)
	if !ok {
		return flat.Value{}, false
	}
	v, err := collect.CollectDocument(schema, r, path)
	if err != nil {
		p.log.Warn("reading file failed", "file", path, "error", err)
		return flat.Value{}, false
	}
	return v, true
}

// readIndex prefers the Read attribute of a summary over its file name.
func readIndex(path string, v flat.Value) string {
	if read, ok := v.Get("Read"); ok {
		if s, ok := read.Scalar(); ok && s != "" {
			return s
		}
	}
	if m := readNumberPattern.FindStringSubmatch(strings.ToLower(filepath.Base(path))); m != nil {
		return m[1]
	}
	return filepath.Base(path)
}

func (p *Parser) parseJSONFile(path string) (flat.Value, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.log.Warn("reading file failed", "file", path, "error", err)
		return flat.Value{}, false
	}
	if !gjson.ValidBytes(data) {
		p.log.Warn("reading file failed", "file", path, "error", "invalid JSON")
		return flat.Value{}, false
	}
	return jsonValue(gjson.ParseBytes(data)), true
}

// jsonValue converts parsed JSON into a flat value. Numbers and booleans
// keep their JSON text.
func jsonValue(r gjson.Result) flat.Value {
	switch {
	case r.IsObject():
		fields := make(map[string]flat.Value)
		r.ForEach(func(k, v gjson.Result) bool {
			fields[k.String()] = jsonValue(v)
			return true
		})
		return flat.Map(fields)
	case r.IsArray():
		var items []flat.Value
		r.ForEach(func(_, v gjson.Result) bool {
			items = append(items, jsonValue(v))
			return true
		})
		return flat.List(items...)
	case r.Type == gjson.Null:
		return flat.Null()
	case r.Type == gjson.String:
		return flat.Scalar(r.Str)
	default:
		return flat.Scalar(r.Raw)
	}
}
