package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"

	"cetpaper/internal/config"
	"cetpaper/internal/importer"
	"cetpaper/internal/model"
	"cetpaper/internal/parser"
	"cetpaper/internal/server"
	"cetpaper/internal/store"
)

const usage = `用法: cetpaper [全局参数] <命令> [参数]

命令:
  serve            启动 HTTP 服务（默认）
  import [root]    批量导入真题目录（root 下包含 CET4/CET6 子目录）
  parse <file>     解析单个工作簿并输出试卷

全局参数:
`

var (
	configPath = flag.String("config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	dataDir    = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	driver     = flag.String("driver", "", "存储驱动 sqlite3 / postgres (覆盖配置文件)")
	dsn        = flag.String("dsn", "", "存储 DSN (覆盖配置文件)")
	workers    = flag.Int("workers", 0, "导入并发数 (覆盖配置文件)")
	verbose    = flag.Bool("v", false, "输出调试日志")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, info, err := config.LoadConfigWithInfo(*configPath)
	if err != nil {
		logger.Warn("加载配置失败，使用默认配置", "error", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	applyFlags(cfg, info)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := "serve", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, logger)
	case "import":
		err = runImport(ctx, cfg, logger, args)
	case "parse":
		err = runParse(cfg, logger, args, os.Stdout)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" 失败", "error", err)
		os.Exit(1)
	}
}

// applyFlags 命令行参数覆盖配置
func applyFlags(cfg *config.AppConfig, info config.LoadConfigInfo) {
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}
	if *dsn != "" {
		cfg.Store.DSN = *dsn
	}
	if *workers > 0 {
		cfg.Import.Workers = *workers
	}
}

// openStore 按配置打开存储；sqlite3 未配置 DSN 时使用 data_dir/cetpaper.db
func openStore(cfg *config.AppConfig, logger *slog.Logger) (*store.Store, error) {
	drv, err := store.ParseDriver(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}

	target := cfg.Store.DSN
	if drv == store.DriverSQLite && target == "" {
		dir, err := config.EnsureDataDir(cfg)
		if err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
		target = filepath.Join(dir, "cetpaper.db")
	}

	st, err := store.Open(drv, target)
	if err != nil {
		return nil, err
	}
	logger.Info("存储已就绪", "driver", drv, "target", redactDSN(drv, target))
	return st, nil
}

// redactDSN postgres DSN 可能含密码，日志中只保留驱动名
func redactDSN(drv store.Driver, target string) string {
	if drv == store.DriverPostgres {
		return "postgres://***"
	}
	return target
}

func runServe(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	srv := server.NewServer(cfg, st, logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("服务启动", "addr", addr, "sourceDir", cfg.Import.SourceDir, "dev", cfg.Server.DevMode)
	if err := srv.Run(ctx, addr); err != nil {
		return err
	}
	logger.Info("服务已停止")
	return nil
}

func runImport(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "只解析不入库")
	_ = fs.Parse(args)

	root := cfg.Import.SourceDir
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	var st *store.Store
	if !*dryRun {
		var err error
		if st, err = openStore(cfg, logger); err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
	}

	coord := importer.NewCoordinator(st, importer.ConfigFrom(cfg, logger))
	var summary *model.ImportSummary
	var lastErr string
	for evt := range coord.Import(ctx, importer.ImportOptions{Root: root, DryRun: *dryRun}) {
		switch evt.Type {
		case importer.EventFileDone, importer.EventSkip:
			fmt.Println(evt.Message)
		case importer.EventError:
			fmt.Println(evt.Message)
			lastErr = evt.Message
		case importer.EventDone:
			if s, ok := evt.Data.(model.ImportSummary); ok {
				summary = &s
			}
		}
	}

	if summary == nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.New(lastErr)
	}

	fmt.Printf("导入完成: 成功 %d，失败 %d，跳过 %d (批次 %s)\n", summary.Imported, summary.Failed, summary.Skipped, summary.BatchID)
	for _, f := range summary.Failures {
		fmt.Printf("  失败 %s: %s\n", f.File, f.Reason)
	}
	return nil
}

func runParse(cfg *config.AppConfig, logger *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	format := fs.String("format", "json", "输出格式 json / yaml")
	examFlag := fs.String("type", "", "考试类型 CET4 / CET6 (默认从路径推断)")
	year := fs.Int("year", 0, "年份 (默认从文件名识别)")
	month := fs.Int("month", 0, "月份 (默认从文件名识别)")
	paperNo := fs.Int("paper", 0, "套数 (默认从文件名识别)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("parse 需要一个文件路径")
	}
	path := fs.Arg(0)

	key, err := resolveKey(path, *examFlag, *year, *month, *paperNo)
	if err != nil {
		return err
	}

	opts := importer.ConfigFrom(cfg, logger).Parse
	paper, report, err := parser.ParseFile(path, key, opts)
	if err != nil {
		return err
	}
	for _, w := range report.Warnings {
		logger.Warn("题目不完整", "section", w.Section, "number", w.QuestionNumber.String(), "reason", w.Reason)
	}

	return writePaper(out, *format, paper, report)
}

// resolveKey 命令行参数优先，其余从路径推断
func resolveKey(path, examFlag string, year, month, paperNo int) (model.PaperKey, error) {
	var key model.PaperKey

	if examFlag != "" {
		t, err := model.ParseExamType(examFlag)
		if err != nil {
			return key, err
		}
		key.ExamType = t
	} else if t, ok := importer.ExamTypeFromPath(path); ok {
		key.ExamType = t
	} else {
		return key, fmt.Errorf("无法从路径推断考试类型，请使用 -type: %s", path)
	}

	meta, err := importer.ParseFilename(path)
	if err != nil && (year == 0 || month == 0) {
		return key, err
	}
	key.Year, key.Month, key.PaperNumber = meta.Year, meta.Month, meta.PaperNumber
	if year > 0 {
		key.Year = year
	}
	if month > 0 {
		key.Month = month
	}
	if paperNo > 0 {
		key.PaperNumber = paperNo
	}
	if key.PaperNumber == 0 {
		key.PaperNumber = 1
	}
	return key, nil
}

type parseOutput struct {
	Paper  *model.ExamPaper    `json:"paper" yaml:"paper"`
	Report *parser.PaperReport `json:"report" yaml:"report"`
}

func writePaper(out io.Writer, format string, paper *model.ExamPaper, report *parser.PaperReport) error {
	doc := parseOutput{Paper: paper, Report: report}
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("不支持的输出格式: %s", format)
	}
}
