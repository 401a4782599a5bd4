package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/fcmetrics/internal/collect"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "등록된 수집 스키마 목록",
	Long: `collect 명령과 런 파서가 사용하는 수집 스키마 목록을 표시합니다.

각 스키마는 인식하는 XML 태그와 누락 값으로 취급하는 속성 값을 가집니다.

사용 예시:
  fcmetrics collect RunInfo.xml --schema runinfo
  fcmetrics collect Data/reports/Summary/read1.xml --schema summary`,
	RunE: runSchemas,
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}

func runSchemas(cmd *cobra.Command, args []string) error {
	return writeSchemas(cmd.OutOrStdout(), collect.DefaultRegistry)
}

func writeSchemas(out io.Writer, reg *collect.Registry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "스키마\t태그\t누락 값\t설명")
	fmt.Fprintln(w, "------\t----\t-------\t----")

	for _, name := range reg.List() {
		s, err := reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			s.Name, strings.Join(s.Tags(), ","), missingLabel(s.Missing), s.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n총 %d개 스키마\n", reg.Count())
	return err
}

func missingLabel(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}
