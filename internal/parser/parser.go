// Package parser identifies sequencing run files and carries the options
// shared by the run parsers.
package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format represents a run file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatRunInfo
	FormatRunParameters
	FormatDemultiplexConfig
	FormatDemultiplexStats // CASAVA Demultiplex_Stats.htm
	FormatSampleSheet
	FormatRunInfoYAML
	FormatRunSummary // run_summary.json
	FormatRTASummary // RTA per-read summary, read<N>.xml
	FormatRTAChart
	FormatFilterMetrics
	FormatBcMetrics
	FormatUndemultiplexed
	FormatFastqScreen
	FormatXML // any other XML document
)

var formatNames = map[Format]string{
	FormatRunInfo:           "runinfo",
	FormatRunParameters:     "runparameters",
	FormatDemultiplexConfig: "demultiplexconfig",
	FormatDemultiplexStats:  "demultiplexstats",
	FormatSampleSheet:       "samplesheet",
	FormatRunInfoYAML:       "runinfo-yaml",
	FormatRunSummary:        "run-summary",
	FormatRTASummary:        "rta-summary",
	FormatRTAChart:          "rta-chart",
	FormatFilterMetrics:     "filter-metrics",
	FormatBcMetrics:         "bc-metrics",
	FormatUndemultiplexed:   "undemultiplexed",
	FormatFastqScreen:       "fastq-screen",
	FormatXML:               "xml",
}

// String returns the string representation of the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// IsXML reports whether files of this format are XML documents.
func (f Format) IsXML() bool {
	switch f {
	case FormatRunInfo, FormatRunParameters, FormatDemultiplexConfig,
		FormatRTASummary, FormatRTAChart, FormatXML:
		return true
	}
	return false
}

var (
	readSummaryPattern   = regexp.MustCompile(`^read[0-9]+\.xml$`)
	filterMetricsPattern = regexp.MustCompile(`\.filter_metrics$`)
	bcMetricsPattern     = regexp.MustCompile(`[._]bc[._]metrics$`)
	fastqScreenPattern   = regexp.MustCompile(`_screen\.txt$`)
)

// DetectFormat detects the run file format from the file name.
func DetectFormat(path string) Format {
	base := strings.ToLower(filepath.Base(path))
	switch base {
	case "runinfo.xml":
		return FormatRunInfo
	case "runparameters.xml":
		return FormatRunParameters
	case "demultiplexconfig.xml":
		return FormatDemultiplexConfig
	case "demultiplex_stats.htm", "demultiplex_stats.html":
		return FormatDemultiplexStats
	case "samplesheet.csv":
		return FormatSampleSheet
	case "run_info.yaml", "run_info.yml":
		return FormatRunInfoYAML
	case "run_summary.json":
		return FormatRunSummary
	case "undemultiplexed_stats.metrics":
		return FormatUndemultiplexed
	}

	switch {
	case readSummaryPattern.MatchString(base):
		return FormatRTASummary
	case filterMetricsPattern.MatchString(base):
		return FormatFilterMetrics
	case bcMetricsPattern.MatchString(base):
		return FormatBcMetrics
	case fastqScreenPattern.MatchString(base):
		return FormatFastqScreen
	case strings.HasSuffix(base, "chart.xml"):
		return FormatRTAChart
	case filepath.Ext(base) == ".xml":
		return FormatXML
	}
	return FormatUnknown
}

// sniffLen is how much of a file content detection looks at.
const sniffLen = 3072

// DetectFormatFromReader detects the format from the leading bytes of a
// file. XML documents are told apart by their root element.
func DetectFormatFromReader(r io.ReaderAt) (Format, error) {
	buf := make([]byte, sniffLen)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	if n < 4 {
		return FormatUnknown, fmt.Errorf("file too small to detect format")
	}
	buf = buf[:n]

	mtype := mimetype.Detect(buf)
	switch {
	case mtype.Is("text/html"):
		return FormatDemultiplexStats, nil
	case mtype.Is("text/xml"), mtype.Is("application/xml"):
		return formatFromRoot(buf), nil
	case mtype.Is("application/json"):
		return FormatRunSummary, nil
	case mtype.Is("text/csv"):
		return FormatSampleSheet, nil
	case mtype.Is("text/tab-separated-values"):
		if bytes.HasPrefix(buf, []byte("lane\t")) {
			return FormatUndemultiplexed, nil
		}
		return FormatBcMetrics, nil
	}

	// XML without a declaration is plain text to mimetype.
	if bytes.HasPrefix(bytes.TrimSpace(buf), []byte("<")) {
		return formatFromRoot(buf), nil
	}
	return FormatUnknown, nil
}

// RootElement returns the local name of the first element in an XML
// prefix, or "" if none is found.
func RootElement(prefix []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(prefix))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local
		}
	}
}

func formatFromRoot(prefix []byte) Format {
	switch RootElement(prefix) {
	case "RunInfo":
		return FormatRunInfo
	case "RunParameters":
		return FormatRunParameters
	case "DemultiplexConfig":
		return FormatDemultiplexConfig
	case "Summary":
		return FormatRTASummary
	case "Chart":
		return FormatRTAChart
	case "":
		return FormatUnknown
	default:
		return FormatXML
	}
}

// FileNames are the names of the run files read from fixed locations.
type FileNames struct {
	RunInfo           string
	RunParameters     string
	SampleSheet       string
	RunInfoYAML       string
	RunSummary        string
	DemultiplexConfig string
	DemultiplexStats  string
	Undemultiplexed   string
}

// DefaultFileNames returns the names written by the instrument and CASAVA.
func DefaultFileNames() FileNames {
	return FileNames{
		RunInfo:           "RunInfo.xml",
		RunParameters:     "runParameters.xml",
		SampleSheet:       "SampleSheet.csv",
		RunInfoYAML:       "run_info.yaml",
		RunSummary:        "run_summary.json",
		DemultiplexConfig: "DemultiplexConfig.xml",
		DemultiplexStats:  "Demultiplex_Stats.htm",
		Undemultiplexed:   "Undemultiplexed_stats.metrics",
	}
}

// WithDefaults fills empty names with the default ones.
func (f FileNames) WithDefaults() FileNames {
	d := DefaultFileNames()
	for _, pair := range []struct{ dst, def *string }{
		{&f.RunInfo, &d.RunInfo},
		{&f.RunParameters, &d.RunParameters},
		{&f.SampleSheet, &d.SampleSheet},
		{&f.RunInfoYAML, &d.RunInfoYAML},
		{&f.RunSummary, &d.RunSummary},
		{&f.DemultiplexConfig, &d.DemultiplexConfig},
		{&f.DemultiplexStats, &d.DemultiplexStats},
		{&f.Undemultiplexed, &d.Undemultiplexed},
	} {
		if *pair.dst == "" {
			*pair.dst = *pair.def
		}
	}
	return f
}

// Options contains run parser configuration options.
type Options struct {
	Files         FileNames
	Lanes         []int    // Lanes read for per-lane metrics files
	MissingValues []string // Chart and summary values recorded as missing
	Deduplicate   bool     // Drop exact duplicate report rows
	StrictHeaders bool     // Warn when a report header differs from the known one

	// HeadingTag names report sections in Demultiplex_Stats.htm.
	HeadingTag string
	// SortFields order report rows. Empty keeps document order.
	SortFields []string
	// ReverseSort sorts report rows in descending order.
	ReverseSort bool
	// ExpectedHeaders override the known report headers in strict mode.
	ExpectedHeaders map[string][]string

	Logger *slog.Logger
}

// DefaultSortFields order Demultiplex_Stats.htm rows by lane, sample and index.
var DefaultSortFields = []string{"Lane", "Sample ID", "Index"}

// DefaultLanes are the lanes of an eight-lane flowcell.
var DefaultLanes = []int{1, 2, 3, 4, 5, 6, 7, 8}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{
		Files:         DefaultFileNames(),
		Lanes:         append([]int(nil), DefaultLanes...),
		MissingValues: []string{"NaN"},
		Deduplicate:   true,
		StrictHeaders: true,
		HeadingTag:    "h2",
		SortFields:    append([]string(nil), DefaultSortFields...),
	}
}

// Log returns the configured logger or the default one.
func (o Options) Log() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
