package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cetpaper/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized     bool                `json:"initialized"`     // 是否已有试卷
	TotalPapers     int                 `json:"totalPapers"`     // 试卷总数
	ActivePapers    int                 `json:"activePapers"`    // 上架试卷数
	Sessions        []store.SessionStat `json:"sessions"`        // 按考试场次统计
	SourceDir       string              `json:"sourceDir"`       // 配置的导入目录
	Importing       bool                `json:"importing"`       // 是否有导入在进行
	LastImportBatch string              `json:"lastImportBatch"` // 最后导入批次
	LastImportTime  string              `json:"lastImportTime"`  // 最后导入时间
	LastImport      *store.ImportLog    `json:"lastImport,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	sessions, err := h.store.ListSessions()
	if err != nil {
		h.respondError(c, "获取试卷统计失败", err)
		return
	}

	resp := StatusResponse{
		Sessions:  sessions,
		SourceDir: h.sourceDir,
		Importing: h.isImporting(),
	}
	for _, s := range sessions {
		resp.TotalPapers += s.Papers
		resp.ActivePapers += s.Active
	}
	resp.Initialized = resp.TotalPapers > 0

	cfg, err := h.store.GetAllConfig()
	if err != nil {
		h.respondError(c, "获取配置失败", err)
		return
	}
	resp.LastImportBatch = cfg[store.ConfigLastImportBatch]
	resp.LastImportTime = cfg[store.ConfigLastImportAt]

	if resp.LastImportBatch != "" {
		log, err := h.store.GetImportLog(resp.LastImportBatch)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.respondError(c, "获取导入日志失败", err)
			return
		}
		resp.LastImport = log
	}

	c.JSON(http.StatusOK, resp)
}
