package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cetpaper/internal/model"
	"cetpaper/internal/store"
)

// 进度事件类型
const (
	EventStart     = "start"
	EventSkip      = "skip"
	EventFileStart = "file_start"
	EventFileDone  = "file_done"
	EventError     = "error"
	EventDone      = "done"
)

// Coordinator 导入协调器：批量解析 + 写入存储 + 进度事件
type Coordinator struct {
	store  *store.Store
	cfg    Config
	logger *slog.Logger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, cfg Config) *Coordinator {
	cfg.defaults()
	return &Coordinator{
		store:  st,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	Root   string // 包含 CET4/CET6 子目录的根目录
	DryRun bool   // 只解析不入库
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/skip/file_start/file_done/error/done
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// FileDone file_done 事件数据
type FileDone struct {
	Path      string         `json:"path"`
	Key       model.PaperKey `json:"key"`
	PaperID   string         `json:"paperId,omitempty"`
	Title     string         `json:"title"`
	Questions int            `json:"questions"`
	Warnings  int            `json:"warnings"`
}

// Import 执行导入，返回进度通道；通道在导入结束后关闭，最后一个事件为 done 或 error
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 256)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

// doImport 执行导入逻辑
func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	batchID := uuid.NewString()

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: fmt.Sprintf("开始导入目录: %s", opts.Root),
		Data: map[string]string{
			"batchId": batchID,
			"root":    opts.Root,
		},
		Timestamp: time.Now(),
	})

	persist := c.store != nil && !opts.DryRun
	if persist {
		if err := c.store.CreateImportLog(batchID, opts.Root); err != nil {
			c.fail(ctx, progressChan, fmt.Errorf("创建导入日志失败: %w", err))
			return
		}
	}

	cfg := c.cfg
	cfg.OnSkip = func(sk SkippedFile) {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      EventSkip,
			Message:   fmt.Sprintf("跳过 %s: %s", filepath.Base(sk.Path), sk.Reason),
			Data:      sk,
			Timestamp: time.Now(),
		})
	}
	cfg.OnStart = func(cand Candidate) {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      EventFileStart,
			Message:   fmt.Sprintf("正在解析: %s", filepath.Base(cand.Path)),
			Data:      cand,
			Timestamp: time.Now(),
		})
	}
	cfg.OnFile = func(res FileResult) {
		if res.OK() {
			return
		}
		c.sendProgress(progressChan, ProgressEvent{
			Type:    EventError,
			Message: fmt.Sprintf("解析失败 %s: %v", filepath.Base(res.Path), res.Err),
			Data: model.FileFailure{
				File:   res.Path,
				Reason: errorReason(res.Err),
			},
			Timestamp: time.Now(),
		})
	}

	report, err := NewBatchImporter(cfg).ImportAll(ctx, opts.Root)
	if report == nil {
		if persist {
			if logErr := c.store.UpdateImportLog(batchID, 0, 0, 0, 0, store.ImportStatusFailed, err.Error()); logErr != nil {
				c.logger.Warn("更新导入日志失败", "batch", batchID, "error", logErr)
			}
		}
		c.fail(ctx, progressChan, err)
		return
	}

	summary := report.Summary()
	summary.BatchID = batchID

	if persist {
		c.persist(batchID, report, &summary, progressChan)
	} else {
		for _, res := range report.Results {
			if res.OK() {
				c.sendFileDone(progressChan, res, "")
			}
		}
	}

	status := store.ImportStatusCompleted
	errMsg := ""
	switch {
	case err != nil:
		status = store.ImportStatusPartial
		errMsg = err.Error()
	case summary.Failed > 0:
		status = store.ImportStatusPartial
	}

	if persist {
		total := summary.Imported + summary.Failed + summary.Skipped
		if err := c.store.UpdateImportLog(batchID, total, summary.Imported, summary.Failed, summary.Skipped, status, errMsg); err != nil {
			c.logger.Warn("更新导入日志失败", "batch", batchID, "error", err)
		}
		if err := c.store.SetConfig(store.ConfigLastImportBatch, batchID); err != nil {
			c.logger.Warn("记录最近导入批次失败", "batch", batchID, "error", err)
		}
		if err := c.store.SetConfig(store.ConfigLastImportAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
			c.logger.Warn("记录最近导入时间失败", "batch", batchID, "error", err)
		}
	}

	c.logger.Info("导入完成",
		"batch", batchID,
		"imported", summary.Imported,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", time.Since(startTime))

	c.sendFinal(ctx, progressChan, ProgressEvent{
		Type:      EventDone,
		Message:   fmt.Sprintf("导入完成: 成功 %d, 失败 %d, 跳过 %d", summary.Imported, summary.Failed, summary.Skipped),
		Data:      summary,
		Timestamp: time.Now(),
	})
}

// persist 按扫描顺序写入试卷；单个试卷写入失败计为该文件失败
func (c *Coordinator) persist(batchID string, report *BatchReport, summary *model.ImportSummary, progressChan chan ProgressEvent) {
	for _, sk := range report.Skipped {
		c.recordFile(store.ImportFile{
			ImportLogID: batchID,
			FilePath:    sk.Path,
			Status:      store.FileStatusSkipped,
			Reason:      sk.Reason,
		})
	}

	for _, res := range report.Results {
		if !res.OK() {
			c.recordFile(store.ImportFile{
				ImportLogID: batchID,
				FilePath:    res.Path,
				Status:      store.FileStatusFailed,
				Reason:      errorReason(res.Err),
			})
			c.recordSheets(batchID, "", res)
			continue
		}

		if err := c.store.SavePaper(res.Paper); err != nil {
			reason := fmt.Sprintf("保存试卷失败: %v", err)
			summary.Imported--
			summary.Failed++
			summary.Failures = append(summary.Failures, model.FileFailure{File: res.Path, Reason: reason})
			c.recordFile(store.ImportFile{
				ImportLogID: batchID,
				FilePath:    res.Path,
				Status:      store.FileStatusFailed,
				Reason:      reason,
			})
			c.sendProgress(progressChan, ProgressEvent{
				Type:      EventError,
				Message:   fmt.Sprintf("%s: %s", filepath.Base(res.Path), reason),
				Data:      model.FileFailure{File: res.Path, Reason: reason},
				Timestamp: time.Now(),
			})
			continue
		}

		c.recordFile(store.ImportFile{
			ImportLogID: batchID,
			FilePath:    res.Path,
			Status:      store.FileStatusImported,
			PaperID:     res.Paper.ID,
			Questions:   res.Paper.TotalQuestions,
		})
		c.recordSheets(batchID, res.Paper.ID, res)
		c.sendFileDone(progressChan, res, res.Paper.ID)
	}
}

func (c *Coordinator) recordFile(f store.ImportFile) {
	if err := c.store.InsertImportFile(f); err != nil {
		c.logger.Warn("记录导入文件失败", "path", f.FilePath, "error", err)
	}
}

func (c *Coordinator) recordSheets(batchID, paperID string, res FileResult) {
	if res.Report == nil {
		return
	}
	for _, sheet := range res.Report.Sheets {
		if err := c.store.InsertSheetMeta(store.NewSheetMeta(batchID, paperID, res.Path, sheet)); err != nil {
			c.logger.Warn("写入 Sheet 元信息失败", "path", res.Path, "sheet", sheet.SheetName, "error", err)
		}
	}
}

func (c *Coordinator) sendFileDone(ch chan ProgressEvent, res FileResult, paperID string) {
	warnings := 0
	if res.Report != nil {
		warnings = len(res.Report.Warnings)
	}
	c.sendProgress(ch, ProgressEvent{
		Type:    EventFileDone,
		Message: fmt.Sprintf("%s 导入成功: %d 题", res.Paper.Title, res.Paper.TotalQuestions),
		Data: FileDone{
			Path:      res.Path,
			Key:       res.Key,
			PaperID:   paperID,
			Title:     res.Paper.Title,
			Questions: res.Paper.TotalQuestions,
			Warnings:  warnings,
		},
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) fail(ctx context.Context, ch chan ProgressEvent, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	c.logger.Error("导入失败", "error", err)
	c.sendFinal(ctx, ch, ProgressEvent{
		Type:      EventError,
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
}

// sendFinal 结束事件不能丢：等待消费方读取，ctx 取消后退化为非阻塞发送
func (c *Coordinator) sendFinal(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
		c.sendProgress(ch, event)
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
