package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"cetpaper/internal/model"
	"cetpaper/internal/parser"
)

// Config 批量导入配置
type Config struct {
	CET4Dir    string
	CET6Dir    string
	Workers    int
	Extensions []string
	Parse      parser.Options
	Logger     *slog.Logger

	// 回调：扫描跳过文件、开始解析、解析完成；OnStart/OnFile 可能在多个 worker 中并发调用
	OnSkip  func(SkippedFile)
	OnStart func(Candidate)
	OnFile  func(FileResult)
}

func (c *Config) defaults() {
	if c.CET4Dir == "" {
		c.CET4Dir = "CET4"
	}
	if c.CET6Dir == "" {
		c.CET6Dir = "CET6"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".xlsx", ".xlsm"}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Parse.Logger == nil {
		c.Parse.Logger = c.Logger
	}
}

// Candidate 待解析的文件
type Candidate struct {
	Path string
	Key  model.PaperKey
}

// SkippedFile 扫描阶段跳过的文件
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// FileResult 单个文件的解析结果：Paper 与 Err 二选一
type FileResult struct {
	Path   string              `json:"path"`
	Key    model.PaperKey      `json:"key"`
	Paper  *model.ExamPaper    `json:"paper,omitempty"`
	Report *parser.PaperReport `json:"report,omitempty"`
	Err    error               `json:"-"`
}

// OK 是否解析成功
func (r FileResult) OK() bool { return r.Err == nil && r.Paper != nil }

// BatchReport 一次批量导入的全部结果，Results 按扫描顺序排列
type BatchReport struct {
	Results []FileResult
	Skipped []SkippedFile
}

// Papers 成功解析的试卷
func (r *BatchReport) Papers() []*model.ExamPaper {
	var out []*model.ExamPaper
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res.Paper)
		}
	}
	return out
}

// Failures 解析失败的文件
func (r *BatchReport) Failures() []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Summary 面向用户的汇总：成功数量与失败原因
func (r *BatchReport) Summary() model.ImportSummary {
	s := model.ImportSummary{
		Failures: []model.FileFailure{},
		Skips:    []model.FileFailure{},
	}
	for _, res := range r.Results {
		if res.OK() {
			s.Imported++
			continue
		}
		s.Failed++
		s.Failures = append(s.Failures, model.FileFailure{File: res.Path, Reason: errorReason(res.Err)})
	}
	for _, sk := range r.Skipped {
		s.Skipped++
		s.Skips = append(s.Skips, model.FileFailure{File: sk.Path, Reason: sk.Reason})
	}
	return s
}

func errorReason(err error) string {
	if err == nil {
		return "no paper"
	}
	return err.Error()
}

// BatchImporter 按目录批量解析试卷
type BatchImporter struct {
	cfg Config
}

// NewBatchImporter 创建批量导入器
func NewBatchImporter(cfg Config) *BatchImporter {
	cfg.defaults()
	return &BatchImporter{cfg: cfg}
}

// Scan 枚举 CET4/CET6 两个子目录下的工作簿，返回待解析文件与跳过的文件
// 子目录不存在时只记录日志，不视为错误
func (b *BatchImporter) Scan(root string) ([]Candidate, []SkippedFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("stat source dir: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("source %s is not a directory", root)
	}

	var candidates []Candidate
	var skipped []SkippedFile

	dirs := []struct {
		examType model.ExamType
		name     string
	}{
		{model.ExamTypeCET4, b.cfg.CET4Dir},
		{model.ExamTypeCET6, b.cfg.CET6Dir},
	}

	for _, d := range dirs {
		dir := filepath.Join(root, d.name)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				b.cfg.Logger.Warn("试卷目录不存在", "exam_type", d.examType, "dir", dir)
				continue
			}
			return nil, nil, fmt.Errorf("read %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !b.hasWorkbookExt(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())

			if reason, skip := skipReason(entry.Name()); skip {
				skipped = append(skipped, b.skip(path, reason))
				continue
			}

			meta, err := ParseFilename(entry.Name())
			if err != nil {
				skipped = append(skipped, b.skip(path, err.Error()))
				continue
			}
			candidates = append(candidates, Candidate{Path: path, Key: meta.Key(d.examType)})
		}
	}

	return candidates, skipped, nil
}

func skipReason(name string) (string, bool) {
	switch {
	case IsLockFile(name):
		return "lock file", true
	case IsAnswerKey(name):
		return "answer key", true
	}
	return "", false
}

func (b *BatchImporter) skip(path, reason string) SkippedFile {
	sk := SkippedFile{Path: path, Reason: reason}
	b.cfg.Logger.Info("跳过文件", "path", path, "reason", reason)
	if b.cfg.OnSkip != nil {
		b.cfg.OnSkip(sk)
	}
	return sk
}

func (b *BatchImporter) hasWorkbookExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range b.cfg.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// ImportAll 扫描并解析 root 下的全部试卷
//
// 单个文件的失败记录在对应的 FileResult 中，不会中断批次；Results 保持扫描顺序。
// ctx 取消后不再提交新文件，已在处理的文件会运行完成，此时返回已处理部分与 ctx.Err()。
func (b *BatchImporter) ImportAll(ctx context.Context, root string) (*BatchReport, error) {
	candidates, skipped, err := b.Scan(root)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(candidates))
	submitted := make([]bool, len(candidates))

	var g errgroup.Group
	g.SetLimit(b.cfg.Workers)

	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		submitted[i] = true
		g.Go(func() error {
			if b.cfg.OnStart != nil {
				b.cfg.OnStart(c)
			}
			results[i] = b.importFile(c)
			if b.cfg.OnFile != nil {
				b.cfg.OnFile(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReport{Skipped: skipped}
	for i, res := range results {
		if submitted[i] {
			report.Results = append(report.Results, res)
		}
	}

	summary := report.Summary()
	b.cfg.Logger.Info("批量导入完成",
		"root", root,
		"imported", summary.Imported,
		"failed", summary.Failed,
		"skipped", summary.Skipped)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// importFile 单文件流水线；panic 也只记为该文件失败
func (b *BatchImporter) importFile(c Candidate) (res FileResult) {
	res = FileResult{Path: c.Path, Key: c.Key}
	defer func() {
		if r := recover(); r != nil {
			res.Paper = nil
			res.Err = parser.NewImportError(c.Path, fmt.Errorf("panic: %v", r))
			b.cfg.Logger.Error("解析文件异常", "path", c.Path, "panic", r)
		}
	}()

	paper, report, err := parser.ParseFile(c.Path, c.Key, b.cfg.Parse)
	res.Report = report
	if err != nil {
		res.Err = parser.NewImportError(c.Path, err)
		b.cfg.Logger.Warn("解析文件失败", "path", c.Path, "key", c.Key.String(), "error", err)
		return res
	}

	res.Paper = paper
	b.cfg.Logger.Debug("解析文件完成",
		"path", c.Path,
		"key", c.Key.String(),
		"questions", paper.TotalQuestions,
		"warnings", len(report.Warnings))
	return res
}
