package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cetpaper/internal/importer"
)

// ImportRequest 导入请求（请求体可省略）
type ImportRequest struct {
	SourceDir string `json:"sourceDir"` // 为空时使用配置的 source_dir；否则必须位于 source_dir 之下
	DryRun    bool   `json:"dryRun"`    // 只解析不入库
}

// Import 批量导入真题目录 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
			return
		}
	}
	if h.sourceDir == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未配置导入目录"})
		return
	}
	root, ok := resolveImportRoot(h.sourceDir, req.SourceDir)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "导入目录必须位于配置的 source_dir 下"})
		return
	}

	if !h.beginImport() {
		c.JSON(http.StatusConflict, gin.H{"error": "已有导入任务在进行"})
		return
	}
	defer h.endImport()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	coordinator := importer.NewCoordinator(h.store, h.importCfg)
	progressChan := coordinator.Import(c.Request.Context(), importer.ImportOptions{
		Root:   root,
		DryRun: req.DryRun,
	})

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// resolveImportRoot 请求目录限定在 base 之内，相对路径按 base 解析
func resolveImportRoot(base, requested string) (string, bool) {
	base, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}
	if requested == "" {
		return base, true
	}
	if !filepath.IsAbs(requested) {
		requested = filepath.Join(base, requested)
	}
	requested = filepath.Clean(requested)
	rel, err := filepath.Rel(base, requested)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return requested, true
}

// ListImports 最近的导入批次
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		h.respondError(c, "获取导入日志失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": logs})
}

// GetImport 导入批次详情（含每个文件的结果）
// GET /api/imports/:id
func (h *Handler) GetImport(c *gin.Context) {
	id := c.Param("id")
	log, err := h.store.GetImportLog(id)
	if err != nil {
		h.respondError(c, "获取导入日志失败", err)
		return
	}
	files, err := h.store.ListImportFiles(id)
	if err != nil {
		h.respondError(c, "获取导入文件失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"import": log, "files": files})
}

func (h *Handler) beginImport() bool {
	h.importMu.Lock()
	defer h.importMu.Unlock()
	if h.importing {
		return false
	}
	h.importing = true
	return true
}

func (h *Handler) endImport() {
	h.importMu.Lock()
	h.importing = false
	h.importMu.Unlock()
}

func (h *Handler) isImporting() bool {
	h.importMu.Lock()
	defer h.importMu.Unlock()
	return h.importing
}
