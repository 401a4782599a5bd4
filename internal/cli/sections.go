package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roboco-io/fcmetrics/internal/table"
)

var (
	sectionsDedup   bool
	sectionsStrict  bool
	sectionsSort    []string
	sectionsHeading string
	sectionsReverse bool
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <htm-file>...",
	Short: "HTML 리포트의 표를 섹션별 레코드로 추출",
	Long: `HTML 리포트에서 제목 바로 뒤의 표를 읽어 섹션별 레코드로 모읍니다.

여러 파일을 주면 같은 이름의 섹션에 레코드가 누적됩니다.
읽을 수 없는 파일은 경고 후 건너뜁니다.

예시:
  fcmetrics sections Demultiplex_Stats.htm
  fcmetrics sections Unaligned*/Basecall_Stats_*/Demultiplex_Stats.htm --dedup
  fcmetrics sections report.htm --sort "Lane,Sample ID,Index" --format markdown
  fcmetrics sections report.htm --sort "# Reads" --reverse`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSections,
}

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsDedup, "dedup", false, "중복 레코드 제거")
	sectionsCmd.Flags().BoolVar(&sectionsStrict, "strict", false, "알려진 헤더와 다르면 경고")
	sectionsCmd.Flags().StringSliceVar(&sectionsSort, "sort", nil, "정렬 기준 필드 (쉼표로 구분)")
	sectionsCmd.Flags().BoolVar(&sectionsReverse, "reverse", false, "내림차순 정렬")
	sectionsCmd.Flags().StringVar(&sectionsHeading, "heading", "", "섹션 제목 태그 (기본: h2)")

	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	opts := sectionsOptions(cmd)
	opts.Logger = logger

	docs := make([]table.Document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("파일을 찾을 수 없습니다: %s", path)
			}
			return fmt.Errorf("파일 읽기 실패: %w", err)
		}
		docs = append(docs, table.Document{Name: path, Content: data})
	}

	sections, err := table.ExtractSections(docs, opts)
	if err != nil {
		if len(sections) == 0 {
			return fmt.Errorf("표 추출 실패: %w", err)
		}
		logger.Warn("some documents were skipped", "error", err)
	}
	return writeOutput(cmd, sections)
}

// sectionsOptions starts from the configured extraction settings and applies
// the flags that were given.
func sectionsOptions(cmd *cobra.Command) table.Options {
	cfg := *appConfig
	ds := cfg.DemultiplexStats
	flags := cmd.Flags()
	if flags.Changed("dedup") {
		ds.Deduplicate = sectionsDedup
	}
	if flags.Changed("strict") {
		ds.StrictHeaders = sectionsStrict
	}
	if flags.Changed("sort") {
		ds.SortFields = sectionsSort
	}
	if flags.Changed("reverse") {
		ds.Reverse = sectionsReverse
	}
	if flags.Changed("heading") {
		ds.HeadingTag = sectionsHeading
	}
	cfg.DemultiplexStats = ds
	return cfg.TableOptions()
}
