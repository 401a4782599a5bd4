// Package cli implements the fcmetrics command line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roboco-io/fcmetrics/internal/config"
)

var version = "dev"

var (
	verbose      bool
	quiet        bool
	configFile   string
	outputPath   string
	outputFormat string
	prettyPrint  bool
)

var (
	appConfig = config.DefaultConfig()
	logger    = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "fcmetrics [run-dir]",
	Short: "시퀀싱 런 디렉토리에서 메트릭 추출",
	Long: `fcmetrics는 Illumina 시퀀싱 런 디렉토리의 XML, HTML, 텍스트 메트릭 파일을
읽어 하나의 런 리포트로 정리합니다.

런 디렉토리를 인자로 주면 parse 명령과 같이 동작합니다.

예시:
  fcmetrics /data/runs/120821_SN1018_0117_AC0YJ6ACXX
  fcmetrics parse /data/runs/120821_SN1018_0117_AC0YJ6ACXX --format text
  fcmetrics sections Demultiplex_Stats.htm --format markdown`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runParse(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "버전 정보 표시",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fcmetrics %s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "상세 출력")
	flags.BoolVarP(&quiet, "quiet", "q", false, "조용한 모드 (오류만 출력)")
	flags.StringVar(&configFile, "config", "", "설정 파일 경로 (기본: ~/.fcmetrics/config.yaml)")
	flags.StringVarP(&outputPath, "output", "o", "", "출력 파일 경로 (기본: stdout)")
	flags.StringVar(&outputFormat, "format", "", "출력 형식 (json, text, dump, markdown)")
	flags.BoolVar(&prettyPrint, "pretty", true, "JSON 들여쓰기 적용")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// setup loads the configuration and installs the logger before any command
// runs.
func setup(cmd *cobra.Command, args []string) error {
	logger = newLogger(cmd.ErrOrStderr(), verbose, quiet)
	slog.SetDefault(logger)

	loader, err := configLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}
	appConfig = cfg
	return nil
}

func configLoader() (*config.Loader, error) {
	if configFile != "" {
		return config.NewLoaderWithPath(configFile), nil
	}
	return config.NewLoader()
}

// newLogger builds a text logger. Warnings are shown by default, --verbose
// adds debug output and --quiet keeps errors only.
func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
