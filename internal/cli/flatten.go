package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboco-io/fcmetrics/internal/collect"
	"github.com/roboco-io/fcmetrics/internal/flat"
	"github.com/roboco-io/fcmetrics/internal/parser"
)

var collectSchema string

var flattenCmd = &cobra.Command{
	Use:   "flatten <xml-file>",
	Short: "XML 문서를 중첩 맵/리스트로 변환",
	Long: `XML 문서의 속성과 텍스트를 중첩된 맵과 리스트로 펼칩니다.

같은 이름의 자식 요소는 리스트로, 서로 다른 이름의 자식 요소는 맵으로 모입니다.

예시:
  fcmetrics flatten runParameters.xml
  fcmetrics flatten Unaligned/DemultiplexConfig.xml --format text`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
}

var collectCmd = &cobra.Command{
	Use:   "collect <xml-file>",
	Short: "스키마에 따라 XML 속성 수집",
	Long: `등록된 수집 스키마에 따라 XML 문서의 속성을 하나의 레코드로 모읍니다.

--schema를 생략하면 파일 이름과 루트 요소로 스키마를 고릅니다.
등록된 스키마 목록은 'fcmetrics schemas'로 확인할 수 있습니다.

예시:
  fcmetrics collect RunInfo.xml
  fcmetrics collect Data/reports/Summary/read1.xml --schema summary`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVarP(&collectSchema, "schema", "s", "", "수집 스키마 (runinfo, summary, chart)")

	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(collectCmd)
}

func runFlatten(cmd *cobra.Command, args []string) error {
	data, format, err := readInput(args[0])
	if err != nil {
		return err
	}
	if !format.IsXML() {
		return fmt.Errorf("XML 문서가 아닙니다: %s (%s)", args[0], format)
	}

	v, err := flat.FlattenDocument(data)
	if err != nil {
		return fmt.Errorf("문서 파싱 실패: %w", err)
	}
	return writeOutput(cmd, v)
}

func runCollect(cmd *cobra.Command, args []string) error {
	data, format, err := readInput(args[0])
	if err != nil {
		return err
	}

	name := collectSchema
	if name == "" {
		name = schemaForFormat(format)
		if name == "" {
			return fmt.Errorf("스키마를 추정할 수 없습니다: %s (%s), --schema를 지정하세요", args[0], format)
		}
		logger.Debug("schema detected", "file", args[0], "schema", name)
	}

	if !collect.DefaultRegistry.Has(name) {
		return fmt.Errorf("알 수 없는 스키마: %s (사용 가능: %s)", name, strings.Join(collect.List(), ", "))
	}
	schema, err := collect.Get(name)
	if err != nil {
		return err
	}
	schema = schema.WithMissing(appConfig.Collect.MissingValues...)

	v, err := collect.CollectDocument(schema, bytes.NewReader(data), args[0])
	if err != nil {
		return fmt.Errorf("문서 파싱 실패: %w", err)
	}
	return writeOutput(cmd, v)
}

// readInput reads a file and identifies it by name, falling back to its
// content when the name is not recognized.
func readInput(path string) ([]byte, parser.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, parser.FormatUnknown, fmt.Errorf("파일을 찾을 수 없습니다: %s", path)
		}
		return nil, parser.FormatUnknown, fmt.Errorf("파일 읽기 실패: %w", err)
	}

	format := parser.DetectFormat(path)
	if format == parser.FormatUnknown || format == parser.FormatXML {
		if sniffed, err := parser.DetectFormatFromReader(bytes.NewReader(data)); err == nil && sniffed != parser.FormatUnknown {
			format = sniffed
		}
	}
	logger.Debug("input file", "file", path, "format", format.String())
	return data, format, nil
}

func schemaForFormat(f parser.Format) string {
	switch f {
	case parser.FormatRunInfo:
		return "runinfo"
	case parser.FormatRTASummary:
		return "summary"
	case parser.FormatRTAChart:
		return "chart"
	}
	return ""
}
