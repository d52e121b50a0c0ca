package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cetpaper/internal/model"
	"cetpaper/internal/store"
)

// PaperSummary 列表中的试卷（不含题目）
type PaperSummary struct {
	ID string `json:"id"`
	model.PaperKey
	Title          string `json:"title"`
	TotalQuestions int    `json:"totalQuestions"`
	Active         bool   `json:"active"`
	SourceFile     string `json:"sourceFile,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

// PaperDetail 试卷详情（含题目与总分）
type PaperDetail struct {
	*model.ExamPaper
	TotalScore float64 `json:"totalScore"`
}

// ListeningResponse 听力练习数据
type ListeningResponse struct {
	PaperID    string                     `json:"paperId"`
	Title      string                     `json:"title"`
	AudioFiles map[model.AudioRole]string `json:"audioFiles"`
	Items      []*model.Question          `json:"items"`
}

// ListPapers 试卷列表
// GET /api/papers?examType=CET4&year=2023&month=12&active=true
func (h *Handler) ListPapers(c *gin.Context) {
	var filter store.PaperFilter
	if v := c.Query("examType"); v != "" {
		examType, err := model.ParseExamType(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的考试类型"})
			return
		}
		filter.ExamType = examType
	}
	for name, dst := range map[string]*int{"year": &filter.Year, "month": &filter.Month} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的参数 " + name})
			return
		}
		*dst = n
	}
	filter.ActiveOnly = c.Query("active") == "true"

	papers, err := h.store.ListPapers(filter)
	if err != nil {
		h.respondError(c, "获取试卷列表失败", err)
		return
	}

	items := make([]PaperSummary, 0, len(papers))
	for _, p := range papers {
		items = append(items, PaperSummary{
			ID:             p.ID,
			PaperKey:       p.PaperKey,
			Title:          p.Title,
			TotalQuestions: p.TotalQuestions,
			Active:         p.Active,
			SourceFile:     p.SourceFile,
			CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"papers": items, "total": len(items)})
}

// GetPaper 试卷详情（含题目）
// GET /api/papers/:id
func (h *Handler) GetPaper(c *gin.Context) {
	paper, err := h.store.GetPaper(c.Param("id"))
	if err != nil {
		h.respondError(c, "获取试卷失败", err)
		return
	}
	c.JSON(http.StatusOK, PaperDetail{ExamPaper: paper, TotalScore: paper.TotalScore()})
}

// ListPaperSheets 试卷最近一次导入的 Sheet 识别结果
// GET /api/papers/:id/sheets
func (h *Handler) ListPaperSheets(c *gin.Context) {
	metas, err := h.store.ListSheetMeta(c.Param("id"))
	if err != nil {
		h.respondError(c, "获取 Sheet 信息失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheets": metas})
}

// GetListening 听力练习：题目 + 音频片段
// GET /api/papers/:id/listening
func (h *Handler) GetListening(c *gin.Context) {
	paper, err := h.store.GetPaper(c.Param("id"))
	if err != nil {
		h.respondError(c, "获取试卷失败", err)
		return
	}
	if !paper.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "试卷已下架"})
		return
	}

	items, err := h.store.ListeningItems(paper.ID)
	if err != nil {
		h.respondError(c, "获取听力题目失败", err)
		return
	}
	c.JSON(http.StatusOK, ListeningResponse{
		PaperID:    paper.ID,
		Title:      paper.Title,
		AudioFiles: paper.AudioFiles,
		Items:      items,
	})
}

// DeactivatePaper 下架试卷
// POST /api/papers/:id/deactivate
func (h *Handler) DeactivatePaper(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeactivatePaper(id); err != nil {
		h.respondError(c, "下架试卷失败", err)
		return
	}
	h.logger.Info("paper deactivated", "id", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
