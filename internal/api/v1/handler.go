package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"cetpaper/internal/config"
	"cetpaper/internal/importer"
	"cetpaper/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store     *store.Store
	importCfg importer.Config
	sourceDir string
	logger    *slog.Logger

	// 同一时间只允许一个导入批次
	importMu  sync.Mutex
	importing bool
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st *store.Store, cfg *config.AppConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     st,
		importCfg: importer.ConfigFrom(cfg, logger),
		sourceDir: cfg.Import.SourceDir,
		logger:    logger,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 批量导入
	router.POST("/import", h.Import)
	router.GET("/imports", h.ListImports)
	router.GET("/imports/:id", h.GetImport)

	// 试卷
	router.GET("/papers", h.ListPapers)
	router.GET("/papers/:id", h.GetPaper)
	router.GET("/papers/:id/sheets", h.ListPaperSheets)
	router.GET("/papers/:id/listening", h.GetListening)
	router.POST("/papers/:id/deactivate", h.DeactivatePaper)

	// 审阅导出
	router.GET("/papers/:id/export", h.ExportPaper)
}

// respondError 统一错误响应；ErrNotFound 映射为 404
func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msg + ": 不存在"})
		return
	}
	h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
