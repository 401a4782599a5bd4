package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/roboco-io/fcmetrics/internal/ir"
	"github.com/roboco-io/fcmetrics/internal/table"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgYellow)
)

// writeOutput formats v and writes it to stdout or the --output file.
func writeOutput(cmd *cobra.Command, v any) error {
	output, err := formatOutput(v, resolveFormat(), resolvePretty(cmd))
	if err != nil {
		return fmt.Errorf("출력 포맷팅 실패: %w", err)
	}

	if outputPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(output), 0644); err != nil {
		return fmt.Errorf("파일 저장 실패: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "저장 완료: %s\n", outputPath)
	}
	return nil
}

func resolveFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if appConfig.Output.Format != "" {
		return appConfig.Output.Format
	}
	return "json"
}

func resolvePretty(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("pretty"); f != nil && f.Changed {
		return prettyPrint
	}
	return appConfig.Output.Pretty
}

func formatOutput(v any, format string, pretty bool) (string, error) {
	switch format {
	case "json":
		var data []byte
		var err error
		if pretty {
			data, err = json.MarshalIndent(v, "", "  ")
		} else {
			data, err = json.Marshal(v)
		}
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "text":
		return formatAsText(v)

	case "dump":
		return dumpConfig.Sdump(v), nil

	case "markdown":
		return formatAsMarkdown(v)

	default:
		return "", fmt.Errorf("지원하지 않는 출력 형식: %s", format)
	}
}

func formatAsText(v any) (string, error) {
	var sb strings.Builder
	switch v := v.(type) {
	case *ir.Report:
		writeReportText(&sb, v)
	case map[string]*table.Section:
		for _, name := range sectionNames(v) {
			writeTableText(&sb, ir.NewTableFromSection(v[name]))
		}
	case []table.Record:
		writeTableText(&sb, ir.NewTableFromRecords("", v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		writePaths(&sb, "", gjson.ParseBytes(data))
	}
	return sb.String(), nil
}

func writeReportText(sb *strings.Builder, r *ir.Report) {
	meta := []struct{ label, value string }{
		{"플로우셀", r.Metadata.Flowcell},
		{"런 ID", r.Metadata.RunID},
		{"장비", r.Metadata.Instrument},
		{"날짜", r.Metadata.Date},
		{"경로", r.Metadata.Path},
	}
	for _, m := range meta {
		if m.value != "" {
			sb.WriteString(labelColor.Sprint(m.label+":") + " " + m.value + "\n")
		}
	}
	sb.WriteString("\n")

	if len(r.Lanes) > 0 {
		sb.WriteString(headingColor.Sprint("== 레인 ==") + "\n")
		for _, name := range r.LaneNames() {
			lane := r.Lanes[name]
			fmt.Fprintf(sb, "레인 %s:", name)
			if fm := lane.FilterMetrics; fm != nil {
				fmt.Fprintf(sb, " reads=%d aligned=%d fail_align=%d", fm.Reads, fm.ReadsAligned, fm.ReadsFailAlign)
			}
			fmt.Fprintf(sb, " barcodes=%d", len(lane.BcMetrics))
			if seqs := lane.UndemultiplexedBarcodes["sequence"]; len(seqs) > 0 {
				fmt.Fprintf(sb, " undetermined=%d", len(seqs))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	for _, t := range r.Tables() {
		writeTableText(sb, t)
	}
}

func writeTableText(sb *strings.Builder, t *ir.TableBlock) {
	if t.Caption != "" {
		sb.WriteString(headingColor.Sprint("== "+t.Caption+" ==") + "\n")
	}
	if t.Cols() == 0 {
		sb.WriteString("(비어 있음)\n\n")
		return
	}
	sb.WriteString(strings.Join(t.Header, " | ") + "\n")
	seps := make([]string, t.Cols())
	for j := range seps {
		seps[j] = "---"
	}
	sb.WriteString(strings.Join(seps, " | ") + "\n")
	for _, row := range t.Cells {
		sb.WriteString(strings.Join(row, " | ") + "\n")
	}
	if t.Rows() == 0 {
		sb.WriteString("(레코드 없음)\n")
	}
	sb.WriteString("\n")
}

// writePaths lists every leaf of a JSON document as "path: value", in
// document order.
func writePaths(sb *strings.Builder, prefix string, r gjson.Result) {
	if r.IsObject() || r.IsArray() {
		i := 0
		r.ForEach(func(k, v gjson.Result) bool {
			key := k.String()
			if r.IsArray() {
				key = fmt.Sprintf("[%d]", i)
			}
			i++
			writePaths(sb, joinPath(prefix, key, r.IsArray()), v)
			return true
		})
		if i == 0 && prefix != "" {
			fmt.Fprintf(sb, "%s: %s\n", labelColor.Sprint(prefix), r.Raw)
		}
		return
	}
	value := r.String()
	if r.Type == gjson.Null {
		value = "null"
	}
	if prefix == "" {
		sb.WriteString(value + "\n")
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", labelColor.Sprint(prefix), value)
}

func joinPath(prefix, key string, index bool) string {
	if prefix == "" || index {
		return prefix + key
	}
	return prefix + "." + key
}

func formatAsMarkdown(v any) (string, error) {
	var sb strings.Builder
	switch v := v.(type) {
	case *ir.Report:
		writeReportMarkdown(&sb, v)
	case map[string]*table.Section:
		for _, name := range sectionNames(v) {
			sb.WriteString("## " + name + "\n\n")
			writeMarkdownTable(&sb, ir.NewTableFromSection(v[name]))
		}
	case []table.Record:
		writeMarkdownTable(&sb, ir.NewTableFromRecords("", v))
	default:
		return "", fmt.Errorf("마크다운으로 출력할 수 없는 데이터입니다: %T", v)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func writeReportMarkdown(sb *strings.Builder, r *ir.Report) {
	sb.WriteString("# " + r.Metadata.Flowcell + "\n\n")
	meta := []struct{ label, value string }{
		{"Run ID", r.Metadata.RunID},
		{"Instrument", r.Metadata.Instrument},
		{"Date", r.Metadata.Date},
		{"Path", r.Metadata.Path},
	}
	for _, m := range meta {
		if m.value != "" {
			fmt.Fprintf(sb, "- **%s**: %s\n", m.label, m.value)
		}
	}
	sb.WriteString("\n")

	if len(r.Lanes) > 0 {
		lanes := &ir.TableBlock{
			Caption: "Lanes",
			Header:  []string{"Lane", "Reads", "Reads aligned", "Reads failing alignment", "Barcodes"},
		}
		for _, name := range r.LaneNames() {
			lane := r.Lanes[name]
			row := []string{name, "", "", "", fmt.Sprint(len(lane.BcMetrics))}
			if fm := lane.FilterMetrics; fm != nil {
				row[1] = fmt.Sprint(fm.Reads)
				row[2] = fmt.Sprint(fm.ReadsAligned)
				row[3] = fmt.Sprint(fm.ReadsFailAlign)
			}
			lanes.Cells = append(lanes.Cells, row)
		}
		sb.WriteString("## Lanes\n\n")
		writeMarkdownTable(sb, lanes)
	}

	for _, t := range r.Tables() {
		sb.WriteString("## " + t.Caption + "\n\n")
		writeMarkdownTable(sb, t)
	}
}

func writeMarkdownTable(sb *strings.Builder, t *ir.TableBlock) {
	if t.Cols() == 0 {
		return
	}

	writeMarkdownRow(sb, t.Header)
	sb.WriteString("|")
	for range t.Header {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, row := range t.Cells {
		writeMarkdownRow(sb, row)
	}
	sb.WriteString("\n")
}

func writeMarkdownRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, cell := range cells {
		text := strings.ReplaceAll(cell, "\n", " ")
		text = strings.ReplaceAll(text, "|", `\|`)
		fmt.Fprintf(sb, " %s |", text)
	}
	sb.WriteString("\n")
}

func sectionNames(sections map[string]*table.Section) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
