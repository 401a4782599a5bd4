package parser

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected Format
	}{
		{
			name:     "run info",
			path:     "RunInfo.xml",
			expected: FormatRunInfo,
		},
		{
			name:     "run parameters lowercase r",
			path:     "/runs/120924_SN1025_0222_AC1B5UACXX/runParameters.xml",
			expected: FormatRunParameters,
		},
		{
			name:     "demultiplex config",
			path:     "Unaligned/DemultiplexConfig.xml",
			expected: FormatDemultiplexConfig,
		},
		{
			name:     "demultiplex stats",
			path:     "Unaligned/Basecall_Stats_C1B5UACXX/Demultiplex_Stats.htm",
			expected: FormatDemultiplexStats,
		},
		{
			name:     "sample sheet",
			path:     "SampleSheet.csv",
			expected: FormatSampleSheet,
		},
		{
			name:     "run info yaml",
			path:     "run_info.yaml",
			expected: FormatRunInfoYAML,
		},
		{
			name:     "run summary json",
			path:     "run_summary.json",
			expected: FormatRunSummary,
		},
		{
			name:     "read summary",
			path:     "Data/reports/Summary/read1.xml",
			expected: FormatRTASummary,
		},
		{
			name:     "chart",
			path:     "Data/reports/NumClusters Chart.xml",
			expected: FormatRTAChart,
		},
		{
			name:     "filter metrics",
			path:     "1_120924_C1B5UACXX_nophix.filter_metrics",
			expected: FormatFilterMetrics,
		},
		{
			name:     "bc metrics underscore",
			path:     "2_120924_C1B5UACXX_nophix_bc.metrics",
			expected: FormatBcMetrics,
		},
		{
			name:     "bc metrics dot",
			path:     "2_120924_C1B5UACXX.bc_metrics",
			expected: FormatBcMetrics,
		},
		{
			name:     "undemultiplexed",
			path:     "Undemultiplexed_stats.metrics",
			expected: FormatUndemultiplexed,
		},
		{
			name:     "fastq screen",
			path:     "P1_101_1_screen.txt",
			expected: FormatFastqScreen,
		},
		{
			name:     "other xml",
			path:     "Config/Effective.xml",
			expected: FormatXML,
		},
		{
			name:     "unknown extension",
			path:     "notes.docx",
			expected: FormatUnknown,
		},
		{
			name:     "no extension",
			path:     "README",
			expected: FormatUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectFormat(tc.path)
			if got != tc.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tc.path, got, tc.expected)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{FormatRunInfo, "runinfo"},
		{FormatDemultiplexStats, "demultiplexstats"},
		{FormatRTAChart, "rta-chart"},
		{FormatUnknown, "unknown"},
		{Format(999), "unknown"},
	}

	for _, tc := range tests {
		got := tc.format.String()
		if got != tc.expected {
			t.Errorf("Format(%d).String() = %q, want %q", int(tc.format), got, tc.expected)
		}
	}
}

func TestFormat_IsXML(t *testing.T) {
	if !FormatRunInfo.IsXML() {
		t.Error("expected runinfo to be XML")
	}
	if FormatDemultiplexStats.IsXML() {
		t.Error("expected demultiplex stats not to be XML")
	}
}

func TestDetectFormatFromReader(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected Format
	}{
		{
			name:     "run info with declaration",
			data:     `<?xml version="1.0"?>` + "\n" + `<RunInfo Version="2"><Run Id="x"/></RunInfo>`,
			expected: FormatRunInfo,
		},
		{
			name:     "summary without declaration",
			data:     `<Summary Read="1"><Lane key="1"/></Summary>`,
			expected: FormatRTASummary,
		},
		{
			name:     "other xml root",
			data:     `<?xml version="1.0"?>` + "\n" + `<Config><Item/></Config>`,
			expected: FormatXML,
		},
		{
			name:     "html report",
			data:     "<html><body><h2>Barcode lane statistics</h2><table></table></body></html>",
			expected: FormatDemultiplexStats,
		},
		{
			name:     "json",
			data:     `{"Run": {"Id": "x"}}`,
			expected: FormatRunSummary,
		},
		{
			name:     "undemultiplexed tsv",
			data:     "lane\tsequence\tcount\n1\tACGT\t10\n2\tTTTT\t5\n",
			expected: FormatUndemultiplexed,
		},
		{
			name:     "binary",
			data:     "\x00\x01\x02\x03\x04\x05\x06\x07",
			expected: FormatUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reader := bytes.NewReader([]byte(tc.data))
			got, err := DetectFormatFromReader(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("DetectFormatFromReader() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestDetectFormatFromReader_ShortData(t *testing.T) {
	reader := bytes.NewReader([]byte("<a"))

	_, err := DetectFormatFromReader(reader)
	if err == nil {
		t.Error("expected error for short data")
	}
}

func TestRootElement(t *testing.T) {
	tests := []struct {
		data     string
		expected string
	}{
		{`<?xml version="1.0"?><!-- c --><ns:Chart xmlns:ns="urn:x"/>`, "Chart"},
		{`<RunParameters><Setup/>`, "RunParameters"},
		{`plain text`, ""},
	}

	for _, tc := range tests {
		got := RootElement([]byte(tc.data))
		if got != tc.expected {
			t.Errorf("RootElement(%q) = %q, want %q", tc.data, got, tc.expected)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	want := Options{
		Files:         DefaultFileNames(),
		Lanes:         []int{1, 2, 3, 4, 5, 6, 7, 8},
		MissingValues: []string{"NaN"},
		Deduplicate:   true,
		StrictHeaders: true,
		HeadingTag:    "h2",
		SortFields:    []string{"Lane", "Sample ID", "Index"},
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("DefaultOptions() mismatch (-want +got):\n%s", diff)
	}

	opts.Lanes[0] = 9
	if DefaultLanes[0] != 1 {
		t.Error("expected DefaultOptions to copy the default lanes")
	}
	opts.SortFields[0] = "Index"
	if DefaultSortFields[0] != "Lane" {
		t.Error("expected DefaultOptions to copy the default sort fields")
	}
	if opts.Log() == nil {
		t.Error("expected a default logger")
	}
}

func TestFileNames_WithDefaults(t *testing.T) {
	got := FileNames{RunInfo: "CustomRunInfo.xml"}.WithDefaults()

	want := DefaultFileNames()
	want.RunInfo = "CustomRunInfo.xml"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WithDefaults() mismatch (-want +got):\n%s", diff)
	}
}
