package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roboco-io/fcmetrics/internal/flowcell"
)

var parseFlowcell string

var parseCmd = &cobra.Command{
	Use:   "parse <run-dir>",
	Short: "런 디렉토리 전체를 런 리포트로 변환",
	Long: `런 디렉토리의 모든 메트릭 파일을 읽어 하나의 런 리포트를 만듭니다.

RunInfo.xml, runParameters.xml, SampleSheet.csv, RTA 리포트,
Demultiplex_Stats.htm과 레인별 메트릭 파일을 읽습니다.
없는 파일은 경고 후 건너뛰고, 손상된 파일도 경고 후 건너뜁니다.

환경 변수:
  FCMETRICS_FORMAT=xxx   출력 형식 (json, text, dump, markdown)
  FCMETRICS_STRICT=true  Demultiplex_Stats 헤더 검사

예시:
  fcmetrics parse /data/runs/120821_SN1018_0117_AC0YJ6ACXX
  fcmetrics parse ./run -o report.json
  fcmetrics parse ./run --flowcell AC0YJ6ACXX --format text`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFlowcell, "flowcell", "", "플로우셀 이름 (기본: 디렉토리 이름에서 추정)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	runDir := args[0]

	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return fmt.Errorf("런 디렉토리를 찾을 수 없습니다: %s", runDir)
	}

	opts := appConfig.ParserOptions()
	opts.Logger = logger

	p, err := flowcell.New(runDir, opts)
	if err != nil {
		return fmt.Errorf("런 디렉토리 열기 실패: %w", err)
	}
	logger.Debug("indexed run directory", "path", p.Path(), "files", len(p.Files()))

	report := p.Report(parseFlowcell)
	return writeOutput(cmd, report)
}
