package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboco-io/fcmetrics/internal/metrics"
	"github.com/roboco-io/fcmetrics/internal/parser"
)

var metricsKind string

// metricsParsers maps a --kind value to its parser.
var metricsParsers = map[string]func(io.Reader) (any, error){
	"bc": func(r io.Reader) (any, error) {
		return metrics.ParseBcMetrics(r)
	},
	"filter": func(r io.Reader) (any, error) {
		return metrics.ParseFilterMetrics(r)
	},
	"fastq-screen": func(r io.Reader) (any, error) {
		return metrics.ParseFastqScreen(r)
	},
	"undemultiplexed": func(r io.Reader) (any, error) {
		return metrics.ParseUndemultiplexedBarcodes(r)
	},
	"samplesheet": func(r io.Reader) (any, error) {
		return metrics.ParseSampleSheet(r)
	},
	"checkpoints": func(r io.Reader) (any, error) {
		return metrics.ParseCheckpoints(r)
	},
	"versions": func(r io.Reader) (any, error) {
		return metrics.ParseSoftwareVersions(r)
	},
}

var metricsKinds = []string{"bc", "filter", "fastq-screen", "undemultiplexed", "samplesheet", "checkpoints", "versions"}

var metricsCmd = &cobra.Command{
	Use:   "metrics <file>",
	Short: "레인별 메트릭 파일 파싱",
	Long: `런 디렉토리 옆의 텍스트 메트릭 파일을 읽습니다.

지원하는 종류:
  bc               바코드별 리드 수 (*.bc_metrics)
  filter           phiX 필터 요약 (*.filter_metrics)
  fastq-screen     fastq_screen 결과 (*_screen.txt)
  undemultiplexed  미분류 인덱스 통계 (Undemultiplexed_stats.metrics)
  samplesheet      샘플 시트 (SampleSheet.csv)
  checkpoints      파이프라인 체크포인트 시각
  versions         소프트웨어 버전 목록

--kind를 생략하면 파일 이름과 내용으로 종류를 추정합니다.

예시:
  fcmetrics metrics 1_120821_AC0YJ6ACXX.bc_metrics
  fcmetrics metrics sample_screen.txt --kind fastq-screen`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().StringVarP(&metricsKind, "kind", "k", "", "메트릭 종류 ("+strings.Join(metricsKinds, ", ")+")")

	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	data, format, err := readInput(args[0])
	if err != nil {
		return err
	}

	kind := metricsKind
	if kind == "" {
		kind = kindForFormat(format)
		if kind == "" {
			return fmt.Errorf("메트릭 종류를 추정할 수 없습니다: %s (%s), --kind를 지정하세요", args[0], format)
		}
	}

	parse, ok := metricsParsers[kind]
	if !ok {
		return fmt.Errorf("알 수 없는 메트릭 종류: %s (지원: %s)", kind, strings.Join(metricsKinds, ", "))
	}

	v, err := parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("메트릭 파싱 실패: %w", err)
	}
	return writeOutput(cmd, v)
}

func kindForFormat(f parser.Format) string {
	switch f {
	case parser.FormatBcMetrics:
		return "bc"
	case parser.FormatFilterMetrics:
		return "filter"
	case parser.FormatFastqScreen:
		return "fastq-screen"
	case parser.FormatUndemultiplexed:
		return "undemultiplexed"
	case parser.FormatSampleSheet:
		return "samplesheet"
	}
	return ""
}
