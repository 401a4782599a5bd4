// Package metrics parses the small line-oriented metrics files that sit next
// to a sequencing run: barcode counts, filter summaries, fastq_screen output,
// undetermined index counts, sample sheets and pipeline bookkeeping files.
package metrics

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roboco-io/fcmetrics/internal/table"
)

// ParseError reports a line that does not have the expected shape.
type ParseError struct {
	Kind    string
	Line    int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s line %d: %s", e.Kind, e.Line, e.Message)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrEmpty is returned when a file that needs content has none.
var ErrEmpty = errors.New("empty metrics file")

// ParseBcMetrics reads "barcode<TAB>count" lines into a count per barcode.
func ParseBcMetrics(r io.Reader) (map[string]int, error) {
	counts := make(map[string]int)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\t\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		vals := strings.Split(text, "\t")
		if len(vals) < 2 {
			return nil, &ParseError{Kind: "bc_metrics", Line: line, Message: "expected barcode and count"}
		}
		n, err := strconv.Atoi(strings.TrimSpace(vals[1]))
		if err != nil {
			return nil, &ParseError{Kind: "bc_metrics", Line: line, Message: "invalid count", Cause: err}
		}
		counts[vals[0]] = n
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read bc metrics: %w", err)
	}
	return counts, nil
}

// FilterMetrics is the pre-CASAVA phiX filter summary of one lane.
type FilterMetrics struct {
	Reads          int `json:"reads" yaml:"reads"`
	ReadsAligned   int `json:"reads_aligned" yaml:"reads_aligned"`
	ReadsFailAlign int `json:"reads_fail_align" yaml:"reads_fail_align"`
}

// ParseFilterMetrics reads the three-line filter summary. The read total is
// the last word of line one; the aligned and failed counts are the second to
// last word of lines two and three.
func ParseFilterMetrics(r io.Reader) (FilterMetrics, error) {
	var fm FilterMetrics
	sc := bufio.NewScanner(r)

	fields := []struct {
		dst      *int
		fromLast int
	}{
		{&fm.Reads, 1},
		{&fm.ReadsAligned, 2},
		{&fm.ReadsFailAlign, 2},
	}
	for i, f := range fields {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return FilterMetrics{}, fmt.Errorf("read filter metrics: %w", err)
			}
			if i == 0 {
				return FilterMetrics{}, ErrEmpty
			}
			return FilterMetrics{}, &ParseError{Kind: "filter_metrics", Line: i + 1, Message: "unexpected end of file"}
		}
		words := strings.Split(strings.TrimRight(sc.Text(), "\r\n"), " ")
		if len(words) < f.fromLast {
			return FilterMetrics{}, &ParseError{Kind: "filter_metrics", Line: i + 1, Message: "too few words"}
		}
		n, err := strconv.Atoi(words[len(words)-f.fromLast])
		if err != nil {
			return FilterMetrics{}, &ParseError{Kind: "filter_metrics", Line: i + 1, Message: "invalid count", Cause: err}
		}
		*f.dst = n
	}
	return fm, nil
}

// ScreenHit is one fastq_screen library row, in percent of reads.
type ScreenHit struct {
	Unmapped                float64 `json:"Unmapped" yaml:"Unmapped"`
	MappedOneLibrary        float64 `json:"Mapped_One_Library" yaml:"Mapped_One_Library"`
	MappedMultipleLibraries float64 `json:"Mapped_Multiple_Libraries" yaml:"Mapped_Multiple_Libraries"`
}

// ParseFastqScreen reads fastq_screen output keyed by library. The first line
// is a banner and is skipped.
func ParseFastqScreen(r io.Reader) (map[string]ScreenHit, error) {
	hits := make(map[string]ScreenHit)
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read fastq_screen: %w", err)
		}
		return hits, nil
	}

	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\t\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		vals := strings.Split(text, "\t")
		if len(vals) < 4 {
			return nil, &ParseError{Kind: "fastq_screen", Line: line, Message: "expected library and three percentages"}
		}
		var nums [3]float64
		for i := range nums {
			f, err := strconv.ParseFloat(strings.TrimSpace(vals[i+1]), 64)
			if err != nil {
				return nil, &ParseError{Kind: "fastq_screen", Line: line, Message: "invalid percentage", Cause: err}
			}
			nums[i] = f
		}
		hits[vals[0]] = ScreenHit{
			Unmapped:                nums[0],
			MappedOneLibrary:        nums[1],
			MappedMultipleLibraries: nums[2],
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read fastq_screen: %w", err)
	}
	return hits, nil
}

// LaneField is the column undetermined index rows are grouped by.
const LaneField = "lane"

// ParseUndemultiplexedBarcodes reads a tab-separated undetermined index table
// with a header row. Each row becomes a record of its non-lane columns in
// file order followed by the lane.
func ParseUndemultiplexedBarcodes(r io.Reader) ([]table.Record, error) {
	rows, err := readDelimited(r, '\t')
	if err != nil {
		return nil, fmt.Errorf("read undemultiplexed barcodes: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	laneAt := -1
	fields := make([]string, 0, len(header))
	for i, h := range header {
		if h == LaneField {
			laneAt = i
			continue
		}
		fields = append(fields, h)
	}
	if laneAt < 0 {
		return nil, &ParseError{Kind: "undemultiplexed", Line: 1, Message: "no lane column"}
	}
	fields = append(fields, LaneField)

	records := make([]table.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		values := make([]string, 0, len(fields))
		for i := range header {
			if i != laneAt {
				values = append(values, cell(row, i))
			}
		}
		values = append(values, cell(row, laneAt))
		records = append(records, table.NewRecord(fields, values))
	}
	return records, nil
}

// ParseSampleSheet reads a comma-separated sample sheet with a header row.
func ParseSampleSheet(r io.Reader) ([]table.Record, error) {
	rows, err := readDelimited(r, ',')
	if err != nil {
		return nil, fmt.Errorf("read sample sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]table.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, table.NewRecord(header, row))
	}
	return records, nil
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// CheckpointLayout is the timestamp format written by pipeline checkpoints.
const CheckpointLayout = "2006-01-02T15:04:05.999999"

// ParseCheckpoints returns the ISO 8601 UTC timestamps found in a pipeline
// checkpoint file. Lines that are not timestamps are skipped.
func ParseCheckpoints(r io.Reader) ([]string, error) {
	var stamps []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if !strings.Contains(text, ".") {
			continue
		}
		ts, err := time.Parse(CheckpointLayout, text)
		if err != nil {
			continue
		}
		layout := "2006-01-02T15:04:05"
		if ts.Nanosecond() != 0 {
			layout += ".000000"
		}
		stamps = append(stamps, ts.Format(layout)+"Z")
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read checkpoints: %w", err)
	}
	return stamps, nil
}

// ParseSoftwareVersions reads "name version" lines. Lines with any other
// number of words are skipped.
func ParseSoftwareVersions(r io.Reader) (map[string]string, error) {
	versions := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		words := strings.Fields(sc.Text())
		if len(words) == 2 {
			versions[words[0]] = words[1]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read software versions: %w", err)
	}
	return versions, nil
}
