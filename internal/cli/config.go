package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/fcmetrics/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 관리",
	Long: `fcmetrics 설정을 관리합니다.

설정 파일 위치: ~/.fcmetrics/config.yaml

하위 명령:
  show    현재 설정 표시
  init    기본 설정 파일 생성
  set     설정 값 변경
  path    설정 파일 경로 표시`,
	// Config commands must work even when the file is invalid.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd.ErrOrStderr(), verbose, quiet)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "현재 설정 표시",
	Long: `현재 적용된 설정을 표시합니다.

환경 변수가 설정되어 있으면 해당 값이 적용됩니다.
설정 파일이 없으면 기본값이 표시됩니다.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "기본 설정 파일 생성",
	Long: `기본 설정 파일을 ~/.fcmetrics/config.yaml에 생성합니다.

이미 설정 파일이 있는 경우 오류가 발생합니다.
기존 파일을 덮어쓰려면 --force 플래그를 사용하세요.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "설정 값 변경",
	Long: `설정 값을 변경합니다.

지원하는 키:
  lanes                             읽을 레인 번호 (쉼표로 구분, 1-8)
  output.format                     출력 형식 (json, text, dump, markdown)
  output.pretty                     JSON 들여쓰기 (true, false)
  demultiplex_stats.deduplicate     중복 레코드 제거 (true, false)
  demultiplex_stats.strict_headers  알려진 헤더와 비교 (true, false)
  demultiplex_stats.heading_tag     섹션 제목 태그 (h2, h3, ...)
  demultiplex_stats.sort_fields     정렬 기준 필드 (쉼표로 구분)
  demultiplex_stats.reverse         내림차순 정렬 (true, false)
  collect.missing_values            누락 값으로 취급할 속성 값 (쉼표로 구분)
  files.<name>                      런 파일 이름 (run_info, sample_sheet, ...)

예시:
  fcmetrics config set output.format text
  fcmetrics config set lanes 1,2,3,4
  fcmetrics config set files.run_info RunInfo.xml`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "설정 파일 경로 표시",
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := configLoader()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "오류: %v\n", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "기존 설정 파일 덮어쓰기")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := configLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	out := cmd.OutOrStdout()

	// Show config file status
	if loader.Exists() {
		fmt.Fprintf(out, "설정 파일: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(out, "설정 파일: (기본값 사용)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("설정 출력 실패: %w", err)
	}
	fmt.Fprintln(out, string(data))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "경고: %v\n\n", err)
	}

	// Show environment variable overrides
	fmt.Fprintln(out, "환경 변수:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	envVars := []struct {
		key  string
		desc string
	}{
		{config.EnvFormat, "출력 형식"},
		{config.EnvStrict, "Demultiplex_Stats 헤더 검사"},
	}

	for _, ev := range envVars {
		status := "(미설정)"
		if v := os.Getenv(ev.key); v != "" {
			status = v
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", ev.key, ev.desc, status)
	}
	return w.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := configLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n덮어쓰려면 --force 플래그를 사용하세요", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("설정 파일 생성 실패: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "설정 파일 생성됨: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := configLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("설정 저장 실패: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "설정 변경됨: %s = %s\n", key, value)
	return nil
}

func setConfigValue(cfg *config.Config, key, value string) error {
	if name, ok := strings.CutPrefix(key, "files."); ok {
		field := fileField(&cfg.Files, name)
		if field == nil {
			return fmt.Errorf("알 수 없는 파일 키: %s", name)
		}
		*field = value
		return nil
	}

	switch key {
	case "lanes":
		lanes, err := parseLanes(value)
		if err != nil {
			return err
		}
		cfg.Lanes = lanes

	case "output.format":
		validFormats := []string{"json", "text", "dump", "markdown"}
		if !contains(validFormats, value) {
			return fmt.Errorf("유효하지 않은 출력 형식: %s (지원: %s)", value, strings.Join(validFormats, ", "))
		}
		cfg.Output.Format = value

	case "output.pretty", "demultiplex_stats.deduplicate", "demultiplex_stats.strict_headers", "demultiplex_stats.reverse":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("유효하지 않은 불리언 값: %s", value)
		}
		switch key {
		case "output.pretty":
			cfg.Output.Pretty = b
		case "demultiplex_stats.deduplicate":
			cfg.DemultiplexStats.Deduplicate = b
		case "demultiplex_stats.reverse":
			cfg.DemultiplexStats.Reverse = b
		default:
			cfg.DemultiplexStats.StrictHeaders = b
		}

	case "demultiplex_stats.heading_tag":
		cfg.DemultiplexStats.HeadingTag = strings.ToLower(value)

	case "demultiplex_stats.sort_fields":
		cfg.DemultiplexStats.SortFields = splitList(value)

	case "collect.missing_values":
		cfg.Collect.MissingValues = splitList(value)

	default:
		return fmt.Errorf("알 수 없는 설정 키: %s\n지원하는 키: lanes, output.format, output.pretty, demultiplex_stats.*, collect.missing_values, files.*", key)
	}
	return nil
}

func fileField(f *config.FilesConfig, name string) *string {
	switch name {
	case "run_info":
		return &f.RunInfo
	case "run_parameters":
		return &f.RunParameters
	case "sample_sheet":
		return &f.SampleSheet
	case "run_info_yaml":
		return &f.RunInfoYAML
	case "run_summary":
		return &f.RunSummary
	case "demultiplex_config":
		return &f.DemultiplexConfig
	case "demultiplex_stats":
		return &f.DemultiplexStats
	case "undemultiplexed":
		return &f.Undemultiplexed
	}
	return nil
}

func parseLanes(value string) ([]int, error) {
	var lanes []int
	for _, s := range splitList(value) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 8 {
			return nil, fmt.Errorf("유효하지 않은 레인 번호: %s (1-8)", s)
		}
		lanes = append(lanes, n)
	}
	if len(lanes) == 0 {
		return nil, fmt.Errorf("레인 번호가 없습니다")
	}
	return lanes, nil
}

func splitList(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
